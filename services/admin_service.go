package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/models"
	"github.com/Neuro316/Neuro-progeny-university/repository"
)

// AdminService backs the paywall editor and the audit listings.
type AdminService interface {
	ListPaywalls(ctx context.Context, page, limit int) ([]models.Paywall, int64, *ServiceError)
	GetPaywall(ctx context.Context, id uuid.UUID) (*models.Paywall, *ServiceError)
	CreatePaywall(ctx context.Context, req *models.PaywallRequest) (*models.Paywall, *ServiceError)
	UpdatePaywall(ctx context.Context, id uuid.UUID, req *models.PaywallRequest) (*models.Paywall, *ServiceError)
	DeactivatePaywall(ctx context.Context, id uuid.UUID) *ServiceError
	ListEmailLogs(ctx context.Context, filter models.EmailLogFilter) ([]models.EmailLog, int64, *ServiceError)
	ListPayments(ctx context.Context, page, limit int) ([]models.Payment, int64, *ServiceError)
}

type adminServiceImpl struct {
	paywalls  repository.PaywallRepository
	payments  repository.PaymentRepository
	emailLogs repository.EmailLogRepository
	logger    *zap.Logger
}

func NewAdminService(
	paywalls repository.PaywallRepository,
	payments repository.PaymentRepository,
	emailLogs repository.EmailLogRepository,
	logger *zap.Logger,
) AdminService {
	return &adminServiceImpl{paywalls: paywalls, payments: payments, emailLogs: emailLogs, logger: logger}
}

func (s *adminServiceImpl) ListPaywalls(ctx context.Context, page, limit int) ([]models.Paywall, int64, *ServiceError) {
	if s.paywalls == nil {
		return nil, 0, errDatabaseNotConfigured
	}
	paywalls, total, err := s.paywalls.List(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list paywalls", zap.Error(err))
		return nil, 0, internalError("Failed to list paywalls")
	}
	return paywalls, total, nil
}

func (s *adminServiceImpl) GetPaywall(ctx context.Context, id uuid.UUID) (*models.Paywall, *ServiceError) {
	if s.paywalls == nil {
		return nil, errDatabaseNotConfigured
	}
	p, err := s.paywalls.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Paywall not found")
		}
		s.logger.Error("Failed to get paywall", zap.String("paywall_id", id.String()), zap.Error(err))
		return nil, internalError("Failed to get paywall")
	}
	return p, nil
}

func (s *adminServiceImpl) CreatePaywall(ctx context.Context, req *models.PaywallRequest) (*models.Paywall, *ServiceError) {
	if s.paywalls == nil {
		return nil, errDatabaseNotConfigured
	}
	if serr := validatePaywallRequest(req); serr != nil {
		return nil, serr
	}

	p := &models.Paywall{IsActive: true}
	applyPaywallRequest(p, req)

	if err := s.paywalls.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Slug already in use"}
		}
		s.logger.Error("Failed to create paywall", zap.Error(err))
		return nil, internalError("Failed to create paywall")
	}

	s.logger.Info("Paywall created", zap.String("paywall_id", p.ID.String()), zap.String("slug", p.Slug))
	return p, nil
}

func (s *adminServiceImpl) UpdatePaywall(ctx context.Context, id uuid.UUID, req *models.PaywallRequest) (*models.Paywall, *ServiceError) {
	if serr := validatePaywallRequest(req); serr != nil {
		return nil, serr
	}

	p, serr := s.GetPaywall(ctx, id)
	if serr != nil {
		return nil, serr
	}
	applyPaywallRequest(p, req)

	if err := s.paywalls.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Slug already in use"}
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFound("Paywall not found")
		}
		s.logger.Error("Failed to update paywall", zap.String("paywall_id", id.String()), zap.Error(err))
		return nil, internalError("Failed to update paywall")
	}

	s.logger.Info("Paywall updated", zap.String("paywall_id", id.String()))
	return p, nil
}

// DeactivatePaywall hides the paywall from checkout. Payments that reference
// it are left as they are.
func (s *adminServiceImpl) DeactivatePaywall(ctx context.Context, id uuid.UUID) *ServiceError {
	if s.paywalls == nil {
		return errDatabaseNotConfigured
	}
	if err := s.paywalls.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Paywall not found")
		}
		s.logger.Error("Failed to deactivate paywall", zap.String("paywall_id", id.String()), zap.Error(err))
		return internalError("Failed to deactivate paywall")
	}
	s.logger.Info("Paywall deactivated", zap.String("paywall_id", id.String()))
	return nil
}

func (s *adminServiceImpl) ListEmailLogs(ctx context.Context, filter models.EmailLogFilter) ([]models.EmailLog, int64, *ServiceError) {
	if s.emailLogs == nil {
		return nil, 0, errDatabaseNotConfigured
	}
	logs, total, err := s.emailLogs.GetLogs(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list email logs", zap.Error(err))
		return nil, 0, internalError("Failed to list email logs")
	}
	return logs, total, nil
}

func (s *adminServiceImpl) ListPayments(ctx context.Context, page, limit int) ([]models.Payment, int64, *ServiceError) {
	if s.payments == nil {
		return nil, 0, errDatabaseNotConfigured
	}
	payments, total, err := s.payments.List(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list payments", zap.Error(err))
		return nil, 0, internalError("Failed to list payments")
	}
	return payments, total, nil
}

func validatePaywallRequest(req *models.PaywallRequest) *ServiceError {
	if req.CoursePrice.IsNegative() {
		return badRequest("course_price must not be negative")
	}
	if req.EquipmentDeposit.IsNegative() {
		return badRequest("equipment_deposit must not be negative")
	}
	if strings.ContainsAny(req.Slug, " /?#") {
		return badRequest("slug must not contain spaces or URL delimiters")
	}
	return nil
}

func applyPaywallRequest(p *models.Paywall, req *models.PaywallRequest) {
	p.Name = strings.TrimSpace(req.Name)
	p.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	p.Description = req.Description
	p.CourseID = req.CourseID
	p.CohortID = req.CohortID
	p.CoursePrice = req.CoursePrice.Round(2)
	p.EquipmentDeposit = req.EquipmentDeposit.Round(2)
	p.EquipmentAutoCharge = req.EquipmentAutoCharge
	p.EquipmentChargeDaysBefore = req.EquipmentChargeDaysBefore
	if p.EquipmentChargeDaysBefore == 0 {
		p.EquipmentChargeDaysBefore = models.DefaultChargeDaysBefore
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.ConfirmationEmailSubject = req.ConfirmationEmailSubject
	p.ConfirmationEmailBody = req.ConfirmationEmailBody
	p.WelcomeEmailSubject = req.WelcomeEmailSubject
	p.WelcomeEmailBody = req.WelcomeEmailBody
	// Relations are reloaded on the next read.
	p.Course = nil
	p.Cohort = nil
}
