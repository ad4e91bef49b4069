package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Neuro316/Neuro-progeny-university/models"
	awspkg "github.com/Neuro316/Neuro-progeny-university/pkg/aws"
	"github.com/Neuro316/Neuro-progeny-university/repository"
)

type ReconcileOutcome string

const (
	OutcomeAlreadyProcessed  ReconcileOutcome = "already_processed"
	OutcomeEnrolled          ReconcileOutcome = "enrolled"
	OutcomePaymentOnly       ReconcileOutcome = "payment_only"
	OutcomePendingEnrollment ReconcileOutcome = "pending_enrollment"
)

// CompletedCheckout is a checkout.session.completed event decoded at the
// webhook boundary.
type CompletedCheckout struct {
	SessionID           string
	StripeCustomerID    *string
	StripePaymentIntent *string
	Email               string
	Name                string
	AmountTotal         int64
	Currency            string
	Metadata            CheckoutMetadata
	RawMetadata         map[string]string
}

type ReconcileResult struct {
	Outcome ReconcileOutcome
	Payment *models.Payment
	UserID  *uuid.UUID
}

// EnrollmentReconciler records the payment and grants or queues course access.
type EnrollmentReconciler struct {
	payments    repository.PaymentRepository
	enrollments repository.EnrollmentRepository
	metrics     MetricsRecorder
	logger      *zap.Logger
}

func NewEnrollmentReconciler(
	payments repository.PaymentRepository,
	enrollments repository.EnrollmentRepository,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *EnrollmentReconciler {
	return &EnrollmentReconciler{payments: payments, enrollments: enrollments, metrics: metrics, logger: logger}
}

// Reconcile is idempotent per session id. Only a failed payment write is
// returned as an error; membership and pending-enrollment failures are
// logged and reflected in the outcome.
func (r *EnrollmentReconciler) Reconcile(ctx context.Context, co CompletedCheckout) (ReconcileResult, error) {
	log := r.logger.With(zap.String("session_id", co.SessionID))

	existing, err := r.payments.FindBySessionID(ctx, co.SessionID)
	switch {
	case err == nil:
		log.Info("Checkout session already processed")
		return ReconcileResult{Outcome: OutcomeAlreadyProcessed, Payment: existing}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return ReconcileResult{}, fmt.Errorf("lookup payment: %w", err)
	}

	payment := paymentFromCheckout(co)
	if err := r.payments.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Info("Concurrent delivery recorded this session first")
			return ReconcileResult{Outcome: OutcomeAlreadyProcessed}, nil
		}
		return ReconcileResult{}, fmt.Errorf("record payment: %w", err)
	}
	log.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.AmountTotal.StringFixed(2)),
		zap.String("currency", payment.Currency),
	)
	recordCount(ctx, r.metrics, r.logger, awspkg.MetricPaymentsRecorded, nil)

	result := ReconcileResult{Outcome: OutcomePaymentOnly, Payment: payment}
	if co.Email == "" {
		return result, nil
	}

	profile, err := r.enrollments.FindProfileByEmail(ctx, co.Email)
	switch {
	case err == nil:
		result.UserID = &profile.ID
		meta := co.Metadata
		if meta.CourseID == nil || meta.CohortID == nil {
			return result, nil
		}
		if err := r.EnsureMember(ctx, *meta.CohortID, profile.ID); err != nil {
			log.Error("Failed to add to cohort",
				zap.String("cohort_id", meta.CohortID.String()),
				zap.String("user_id", profile.ID.String()),
				zap.Error(err),
			)
			return result, nil
		}
		result.Outcome = OutcomeEnrolled
		recordCount(ctx, r.metrics, r.logger, awspkg.MetricEnrollments, nil)

	case errors.Is(err, repository.ErrNotFound):
		if err := r.createPending(ctx, co); err != nil {
			log.Error("Failed to create pending enrollment", zap.Error(err))
			return result, nil
		}
		result.Outcome = OutcomePendingEnrollment
		recordCount(ctx, r.metrics, r.logger, awspkg.MetricPendingEnrollments, nil)

	default:
		// An unknown lookup result must not queue a pending enrollment for
		// someone who may already have an account.
		log.Error("Profile lookup failed", zap.Error(err))
	}
	return result, nil
}

// EnsureMember adds the user to the cohort unless already a member. A
// concurrent insert of the same pair counts as success.
func (r *EnrollmentReconciler) EnsureMember(ctx context.Context, cohortID, userID uuid.UUID) error {
	exists, err := r.enrollments.MemberExists(ctx, cohortID, userID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = r.enrollments.AddMember(ctx, &models.CohortMember{
		CohortID: cohortID,
		UserID:   userID,
		Role:     models.MemberRoleParticipant,
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	return nil
}

func (r *EnrollmentReconciler) createPending(ctx context.Context, co CompletedCheckout) error {
	err := r.enrollments.CreatePendingEnrollment(ctx, &models.PendingEnrollment{
		Email:           co.Email,
		Name:            co.Name,
		PaywallID:       co.Metadata.PaywallID,
		CourseID:        co.Metadata.CourseID,
		CohortID:        co.Metadata.CohortID,
		StripeSessionID: co.SessionID,
		Status:          models.EnrollmentStatusPending,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil
	}
	return err
}

func paymentFromCheckout(co CompletedCheckout) *models.Payment {
	currency := co.Currency
	if currency == "" {
		currency = "usd"
	}

	var meta datatypes.JSONMap
	if len(co.RawMetadata) > 0 {
		meta = make(datatypes.JSONMap, len(co.RawMetadata))
		for k, v := range co.RawMetadata {
			meta[k] = v
		}
	}

	return &models.Payment{
		StripeSessionID:     co.SessionID,
		StripeCustomerID:    co.StripeCustomerID,
		StripePaymentIntent: co.StripePaymentIntent,
		PaywallID:           co.Metadata.PaywallID,
		CourseID:            co.Metadata.CourseID,
		CohortID:            co.Metadata.CohortID,
		CustomerEmail:       co.Email,
		CustomerName:        co.Name,
		AmountTotal:         fromMinorUnits(co.AmountTotal),
		Currency:            currency,
		Status:              models.PaymentStatusCompleted,
		Metadata:            meta,
	}
}
