package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Neuro316/Neuro-progeny-university/models"
)

// PaymentRepository is append-only: payments are never updated.
type PaymentRepository interface {
	FindBySessionID(ctx context.Context, sessionID string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	List(ctx context.Context, page, limit int) ([]models.Payment, int64, error)
}

type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) PaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).
		Where("stripe_session_id = ?", sessionID).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Create returns ErrDuplicate when the session was already recorded.
func (r *GormPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return translate(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *GormPaymentRepository) List(ctx context.Context, page, limit int) ([]models.Payment, int64, error) {
	page, limit = normalizePage(page, limit)

	var payments []models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
