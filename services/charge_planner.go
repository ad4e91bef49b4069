package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Neuro316/Neuro-progeny-university/models"
	awspkg "github.com/Neuro316/Neuro-progeny-university/pkg/aws"
	"github.com/Neuro316/Neuro-progeny-university/repository"
)

// ComputeChargeDate subtracts whole calendar days from the start date and
// returns midnight UTC of the result.
func ComputeChargeDate(start time.Time, daysBefore int) time.Time {
	y, m, d := start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysBefore)
}

// ParseDaysBefore reads the days-before-start offset. Empty, non-numeric and
// non-positive values fall back to the default of 14. A leading integer is
// accepted ("10 days" reads as 10). Negative offsets are rejected because they
// would place the charge after the cohort has started.
func ParseDaysBefore(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return models.DefaultChargeDaysBefore
	}
	return n
}

type ChargePlanInput struct {
	PaywallID           *uuid.UUID
	AutoCharge          bool
	Deposit             decimal.Decimal
	DaysBefore          int
	CohortStart         *time.Time
	CustomerEmail       string
	StripeCustomerID    *string
	StripePaymentIntent *string
}

type ChargePlanner struct {
	charges repository.ChargeRepository
	metrics MetricsRecorder
	logger  *zap.Logger
}

func NewChargePlanner(charges repository.ChargeRepository, metrics MetricsRecorder, logger *zap.Logger) *ChargePlanner {
	return &ChargePlanner{charges: charges, metrics: metrics, logger: logger}
}

// Plan records a future equipment-deposit charge. It returns nil without
// writing when the deposit is collected at checkout, is zero, or the cohort
// has no start date to count back from.
func (p *ChargePlanner) Plan(ctx context.Context, in ChargePlanInput) (*models.ScheduledCharge, error) {
	if !in.AutoCharge || !in.Deposit.IsPositive() {
		return nil, nil
	}
	if in.CohortStart == nil || in.CohortStart.IsZero() {
		p.logger.Debug("Skipping deposit schedule, cohort start date unknown")
		return nil, nil
	}
	if in.PaywallID == nil {
		p.logger.Warn("Skipping deposit schedule, no paywall on checkout")
		return nil, nil
	}

	days := in.DaysBefore
	if days <= 0 {
		days = models.DefaultChargeDaysBefore
	}
	chargeDate := ComputeChargeDate(*in.CohortStart, days)

	charge := &models.ScheduledCharge{
		StripeCustomerID:    in.StripeCustomerID,
		StripePaymentIntent: in.StripePaymentIntent,
		CustomerEmail:       in.CustomerEmail,
		Amount:              in.Deposit,
		Description:         models.EquipmentDepositDescription,
		ChargeDate:          datatypes.Date(chargeDate),
		PaywallID:           *in.PaywallID,
		Status:              models.ChargeStatusScheduled,
	}
	if err := p.charges.Create(ctx, charge); err != nil {
		return nil, err
	}

	p.logger.Info("Equipment deposit scheduled",
		zap.String("paywall_id", in.PaywallID.String()),
		zap.String("charge_date", chargeDate.Format(time.DateOnly)),
		zap.String("amount", in.Deposit.StringFixed(2)),
	)
	recordCount(ctx, p.metrics, p.logger, awspkg.MetricChargesScheduled, nil)
	return charge, nil
}
