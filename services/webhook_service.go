package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/models"
	"github.com/Neuro316/Neuro-progeny-university/repository"
)

type WebhookResult struct {
	EventID   string
	EventType string
	Handled   bool
	Outcome   ReconcileOutcome
}

type WebhookService interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, *ServiceError)
}

type WebhookDeps struct {
	Gateway          PaymentGateway
	RequireSignature bool
	Paywalls         repository.PaywallRepository
	Reconciler       *EnrollmentReconciler
	Planner          *ChargePlanner
	Dispatcher       *NotificationDispatcher
	Publisher        *EnrollmentPublisher
}

type webhookServiceImpl struct {
	WebhookDeps
	logger *zap.Logger
}

func NewWebhookService(deps WebhookDeps, logger *zap.Logger) WebhookService {
	return &webhookServiceImpl{WebhookDeps: deps, logger: logger}
}

// HandleEvent authenticates and dispatches one delivery. Once the payment is
// recorded, later stages only log; the processor sees success so it does not
// redeliver an event whose critical write already happened.
func (s *webhookServiceImpl) HandleEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, *ServiceError) {
	if s.Gateway == nil {
		return nil, errStripeNotConfigured
	}

	event, serr := s.parseEvent(payload, signature)
	if serr != nil {
		return nil, serr
	}

	if s.Reconciler == nil {
		return nil, errDatabaseNotConfigured
	}

	result := &WebhookResult{EventID: event.ID, EventType: string(event.Type)}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		s.logger.Debug("Ignoring webhook event", zap.String("type", string(event.Type)))
		return result, nil
	}
	result.Handled = true

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, badRequest("Invalid payload")
	}
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, badRequest("Invalid payload")
	}

	co := s.completedCheckout(&session)
	log := s.logger.With(zap.String("session_id", co.SessionID))
	log.Info("Payment successful", zap.String("email", co.Email))

	rec, err := s.Reconciler.Reconcile(ctx, co)
	if err != nil {
		log.Error("Failed to record payment", zap.Error(err))
		return nil, internalError("Failed to record payment")
	}
	result.Outcome = rec.Outcome
	if rec.Outcome == OutcomeAlreadyProcessed {
		return result, nil
	}

	paywall := s.loadPaywall(ctx, co.Metadata.PaywallID)

	if s.Planner != nil {
		in := ChargePlanInput{
			PaywallID:           co.Metadata.PaywallID,
			AutoCharge:          co.Metadata.EquipmentAutoCharge,
			Deposit:             co.Metadata.EquipmentDeposit,
			DaysBefore:          co.Metadata.EquipmentChargeDaysBefore,
			CustomerEmail:       co.Email,
			StripeCustomerID:    co.StripeCustomerID,
			StripePaymentIntent: co.StripePaymentIntent,
		}
		if paywall != nil {
			if start, ok := paywall.Cohort.StartTime(); ok {
				in.CohortStart = &start
			}
		}
		if _, err := s.Planner.Plan(ctx, in); err != nil {
			log.Error("Failed to schedule equipment deposit", zap.Error(err))
		}
	}

	if s.Dispatcher != nil {
		s.Dispatcher.DispatchPaymentEmails(ctx, PaymentEmailInput{
			Email:   co.Email,
			Name:    co.Name,
			Paywall: paywall,
		})
	}

	s.Publisher.Publish(ctx, co, rec)
	return result, nil
}

func (s *webhookServiceImpl) parseEvent(payload []byte, signature string) (stripe.Event, *ServiceError) {
	if s.Gateway.HasWebhookSecret() && signature != "" {
		event, err := s.Gateway.ConstructEvent(payload, signature)
		if err != nil {
			s.logger.Warn("Webhook signature failed", zap.Error(err))
			return stripe.Event{}, badRequest("Invalid signature")
		}
		return event, nil
	}

	if s.RequireSignature {
		s.logger.Warn("Rejecting unsigned webhook delivery")
		return stripe.Event{}, badRequest("Invalid signature")
	}

	s.logger.Warn("Accepting unsigned webhook payload",
		zap.Bool("secret_configured", s.Gateway.HasWebhookSecret()),
		zap.Bool("signature_present", signature != ""),
	)
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, badRequest("Invalid payload")
	}
	return event, nil
}

// completedCheckout decodes the session once; metadata problems are logged
// and the affected fields dropped.
func (s *webhookServiceImpl) completedCheckout(session *stripe.CheckoutSession) CompletedCheckout {
	meta, err := DecodeCheckoutMetadata(session.Metadata)
	if err != nil {
		s.logger.Warn("Checkout metadata rejected", zap.String("session_id", session.ID), zap.Error(err))
	}

	co := CompletedCheckout{
		SessionID:   session.ID,
		AmountTotal: session.AmountTotal,
		Currency:    string(session.Currency),
		Metadata:    meta,
		RawMetadata: session.Metadata,
		Email:       session.CustomerEmail,
		Name:        meta.CustomerName,
	}
	if d := session.CustomerDetails; d != nil {
		if d.Email != "" {
			co.Email = d.Email
		}
		if d.Name != "" {
			co.Name = d.Name
		}
	}
	if session.Customer != nil && session.Customer.ID != "" {
		id := session.Customer.ID
		co.StripeCustomerID = &id
	}
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		id := session.PaymentIntent.ID
		co.StripePaymentIntent = &id
	}
	return co
}

// loadPaywall reads the paywall once for both the planner and the emails.
// Deactivated paywalls still resolve so existing buyers get their email.
func (s *webhookServiceImpl) loadPaywall(ctx context.Context, id *uuid.UUID) *models.Paywall {
	if id == nil || s.Paywalls == nil {
		return nil
	}
	lookupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	p, err := s.Paywalls.FindByID(lookupCtx, *id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to load paywall", zap.String("paywall_id", id.String()), zap.Error(err))
		}
		return nil
	}
	return p
}
