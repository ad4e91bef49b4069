package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/models"
	awspkg "github.com/Neuro316/Neuro-progeny-university/pkg/aws"
	"github.com/Neuro316/Neuro-progeny-university/repository"
)

const (
	defaultCourseDescription  = "Course enrollment"
	equipmentDepositLineDescr = "Refundable deposit for VR headset and HRV monitor"
)

type CheckoutService interface {
	CreateSession(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResponse, *ServiceError)
	GetActivePaywall(ctx context.Context, slug string) (*models.Paywall, *ServiceError)
}

type checkoutServiceImpl struct {
	gateway  PaymentGateway
	paywalls repository.PaywallRepository
	siteURL  string
	currency string
	metrics  MetricsRecorder
	logger   *zap.Logger
}

// NewCheckoutService wires the session builder. A nil gateway or store is
// reported per request as "not configured".
func NewCheckoutService(
	gateway PaymentGateway,
	paywalls repository.PaywallRepository,
	siteURL, currency string,
	metrics MetricsRecorder,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		gateway:  gateway,
		paywalls: paywalls,
		siteURL:  strings.TrimSuffix(siteURL, "/"),
		currency: currency,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *checkoutServiceImpl) CreateSession(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResponse, *ServiceError) {
	if s.gateway == nil {
		return nil, errStripeNotConfigured
	}
	if strings.TrimSpace(req.PaywallID) == "" {
		return nil, badRequest("Missing paywall_id")
	}
	if s.paywalls == nil {
		return nil, errDatabaseNotConfigured
	}

	id, err := uuid.Parse(strings.TrimSpace(req.PaywallID))
	if err != nil {
		return nil, notFound("Paywall not found or inactive")
	}

	paywall, err := s.paywalls.FindActiveByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to load paywall", zap.String("paywall_id", id.String()), zap.Error(err))
		}
		return nil, notFound("Paywall not found or inactive")
	}

	params := BuildCheckoutSessionParams(paywall, req, s.siteURL, s.currency)

	session, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		s.logger.Error("Checkout session creation failed",
			zap.String("paywall_id", paywall.ID.String()),
			zap.Error(err),
		)
		return nil, internalError(gatewayMessage(err))
	}

	s.logger.Info("Checkout session created",
		zap.String("session_id", session.ID),
		zap.String("paywall_id", paywall.ID.String()),
		zap.Int64("total_minor", CheckoutTotal(params)),
		zap.Bool("deposit_deferred", paywall.HasDeposit() && paywall.EquipmentAutoCharge),
	)
	recordCount(ctx, s.metrics, s.logger, awspkg.MetricCheckoutSessions, map[string]string{"Paywall": paywall.Slug})

	return &models.CheckoutResponse{SessionID: session.ID, URL: session.URL}, nil
}

// GetActivePaywall backs the public checkout page.
func (s *checkoutServiceImpl) GetActivePaywall(ctx context.Context, slug string) (*models.Paywall, *ServiceError) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, notFound("Paywall not found or inactive")
	}
	if s.paywalls == nil {
		return nil, errDatabaseNotConfigured
	}
	p, err := s.paywalls.FindActiveBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to load paywall", zap.String("slug", slug), zap.Error(err))
			return nil, internalError("Failed to load paywall")
		}
		return nil, notFound("Paywall not found or inactive")
	}
	return p, nil
}

// BuildCheckoutSessionParams turns a paywall into a hosted checkout request.
// A deposit collected now is a second line item; a deposit charged later
// keeps the card on file for an off-session charge instead.
func BuildCheckoutSessionParams(p *models.Paywall, req *models.CheckoutRequest, siteURL, currency string) *stripe.CheckoutSessionParams {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	description := defaultCourseDescription
	if p.Description != nil && *p.Description != "" {
		description = *p.Description
	}

	lineItems := []*stripe.CheckoutSessionLineItemParams{
		lineItem(p.DisplayName(), description, p.CoursePrice, currency),
	}
	if p.DepositDueAtCheckout() {
		lineItems = append(lineItems, lineItem(models.EquipmentDepositDescription, equipmentDepositLineDescr, p.EquipmentDeposit, currency))
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(fmt.Sprintf("%s/checkout/success?session_id={CHECKOUT_SESSION_ID}&paywall_id=%s", siteURL, p.ID)),
		CancelURL:          stripe.String(fmt.Sprintf("%s/checkout/%s?canceled=true", siteURL, p.Slug)),
	}

	customerName := ""
	if req != nil {
		if email := strings.TrimSpace(req.CustomerEmail); email != "" {
			params.CustomerEmail = stripe.String(email)
		}
		customerName = strings.TrimSpace(req.CustomerName)
	}

	if p.HasDeposit() && p.EquipmentAutoCharge {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			SetupFutureUsage: stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession)),
		}
	}

	for k, v := range MetadataFromPaywall(p, customerName).Encode() {
		params.AddMetadata(k, v)
	}
	return params
}

// CheckoutTotal is the amount, in minor units, the session charges today.
func CheckoutTotal(params *stripe.CheckoutSessionParams) int64 {
	var total int64
	for _, li := range params.LineItems {
		if li == nil || li.PriceData == nil || li.PriceData.UnitAmount == nil {
			continue
		}
		qty := int64(1)
		if li.Quantity != nil {
			qty = *li.Quantity
		}
		total += *li.PriceData.UnitAmount * qty
	}
	return total
}

func lineItem(name, description string, amount decimal.Decimal, currency string) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(currency),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name:        stripe.String(name),
				Description: stripe.String(description),
			},
			UnitAmount: stripe.Int64(toMinorUnits(amount)),
		},
		Quantity: stripe.Int64(1),
	}
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

// gatewayMessage unwraps a Stripe API error to its human-readable message.
func gatewayMessage(err error) string {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	return err.Error()
}
