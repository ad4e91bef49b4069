package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Neuro316/Neuro-progeny-university/models"
)

// ChargeRepository records future equipment-deposit charges. Executing
// them belongs to a separate billing job.
type ChargeRepository interface {
	Create(ctx context.Context, charge *models.ScheduledCharge) error
}

type GormChargeRepository struct {
	db *gorm.DB
}

func NewGormChargeRepository(db *gorm.DB) ChargeRepository {
	return &GormChargeRepository{db: db}
}

func (r *GormChargeRepository) Create(ctx context.Context, charge *models.ScheduledCharge) error {
	return translate(r.db.WithContext(ctx).Create(charge).Error)
}
