package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Neuro316/Neuro-progeny-university/models"
)

// EnrollmentRepository covers account lookup, cohort membership and the
// pending-enrollment queue consumed at registration time.
type EnrollmentRepository interface {
	FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	MemberExists(ctx context.Context, cohortID, userID uuid.UUID) (bool, error)
	AddMember(ctx context.Context, member *models.CohortMember) error
	CreatePendingEnrollment(ctx context.Context, pending *models.PendingEnrollment) error
}

type GormEnrollmentRepository struct {
	db *gorm.DB
}

func NewGormEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

func (r *GormEnrollmentRepository) FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormEnrollmentRepository) MemberExists(ctx context.Context, cohortID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CohortMember{}).
		Where("cohort_id = ? AND user_id = ?", cohortID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddMember returns ErrDuplicate when the user is already in the cohort.
func (r *GormEnrollmentRepository) AddMember(ctx context.Context, member *models.CohortMember) error {
	return translate(r.db.WithContext(ctx).Create(member).Error)
}

func (r *GormEnrollmentRepository) CreatePendingEnrollment(ctx context.Context, pending *models.PendingEnrollment) error {
	return translate(r.db.WithContext(ctx).Create(pending).Error)
}
