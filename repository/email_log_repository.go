package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Neuro316/Neuro-progeny-university/models"
)

type EmailLogRepository interface {
	Save(ctx context.Context, log *models.EmailLog) error
	GetLogs(ctx context.Context, filter models.EmailLogFilter) ([]models.EmailLog, int64, error)
}

type emailLogRepository struct {
	db *gorm.DB
}

func NewEmailLogRepository(db *gorm.DB) EmailLogRepository {
	return &emailLogRepository{db: db}
}

func (r *emailLogRepository) Save(ctx context.Context, log *models.EmailLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *emailLogRepository) GetLogs(ctx context.Context, filter models.EmailLogFilter) ([]models.EmailLog, int64, error) {
	var logs []models.EmailLog
	var total int64

	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	query := r.db.WithContext(ctx).Model(&models.EmailLog{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.EmailType != "" {
		query = query.Where("email_type = ?", filter.EmailType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&logs).Error

	return logs, total, err
}
