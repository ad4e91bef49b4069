package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Neuro316/Neuro-progeny-university/models"
)

// CatalogRepository reads courses and cohorts owned by the dashboard.
type CatalogRepository interface {
	FindCourse(ctx context.Context, id uuid.UUID) (*models.Course, error)
	FindCohort(ctx context.Context, id uuid.UUID) (*models.Cohort, error)
}

type GormCatalogRepository struct {
	db *gorm.DB
}

func NewGormCatalogRepository(db *gorm.DB) CatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) FindCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var c models.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormCatalogRepository) FindCohort(ctx context.Context, id uuid.UUID) (*models.Cohort, error) {
	var c models.Cohort
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}
