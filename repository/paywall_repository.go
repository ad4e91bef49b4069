package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Neuro316/Neuro-progeny-university/models"
)

// PaywallRepository is the paywall config store. Public lookups only see
// active paywalls; FindByID is used by the webhook and admin paths.
type PaywallRepository interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Paywall, error)
	FindActiveBySlug(ctx context.Context, slug string) (*models.Paywall, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Paywall, error)
	List(ctx context.Context, page, limit int) ([]models.Paywall, int64, error)
	Create(ctx context.Context, paywall *models.Paywall) error
	Update(ctx context.Context, paywall *models.Paywall) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type GormPaywallRepository struct {
	db *gorm.DB
}

func NewGormPaywallRepository(db *gorm.DB) PaywallRepository {
	return &GormPaywallRepository{db: db}
}

func (r *GormPaywallRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Course").Preload("Cohort")
}

func (r *GormPaywallRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Paywall, error) {
	var p models.Paywall
	err := r.withRelations(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormPaywallRepository) FindActiveBySlug(ctx context.Context, slug string) (*models.Paywall, error) {
	var p models.Paywall
	err := r.withRelations(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormPaywallRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Paywall, error) {
	var p models.Paywall
	if err := r.withRelations(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormPaywallRepository) List(ctx context.Context, page, limit int) ([]models.Paywall, int64, error) {
	page, limit = normalizePage(page, limit)

	var paywalls []models.Paywall
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Paywall{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&paywalls).Error
	if err != nil {
		return nil, 0, err
	}
	return paywalls, total, nil
}

func (r *GormPaywallRepository) Create(ctx context.Context, paywall *models.Paywall) error {
	return translate(r.db.WithContext(ctx).Omit("Course", "Cohort").Create(paywall).Error)
}

// Update writes every column, including zero values such as is_active=false.
func (r *GormPaywallRepository) Update(ctx context.Context, paywall *models.Paywall) error {
	result := r.db.WithContext(ctx).
		Model(paywall).
		Omit("Course", "Cohort", "CreatedAt").
		Select("*").
		Updates(paywall)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate hides a paywall from checkout. Recorded payments keep their reference.
func (r *GormPaywallRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Paywall{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
