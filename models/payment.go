package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	PaymentStatusCompleted = "completed"

	EnrollmentStatusPending = "pending"

	ChargeStatusScheduled = "scheduled"

	MemberRoleParticipant = "participant"

	EquipmentDepositDescription = "Equipment Deposit"
)

// Payment is the immutable record of a completed checkout session.
type Payment struct {
	ID                  uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StripeSessionID     string            `gorm:"type:varchar(255);uniqueIndex;not null" json:"stripe_session_id"`
	StripeCustomerID    *string           `gorm:"type:varchar(255)" json:"stripe_customer_id,omitempty"`
	StripePaymentIntent *string           `gorm:"type:varchar(255)" json:"stripe_payment_intent,omitempty"`
	PaywallID           *uuid.UUID        `gorm:"type:uuid;index" json:"paywall_id,omitempty"`
	CourseID            *uuid.UUID        `gorm:"type:uuid" json:"course_id,omitempty"`
	CohortID            *uuid.UUID        `gorm:"type:uuid" json:"cohort_id,omitempty"`
	CustomerEmail       string            `gorm:"type:varchar(320);index" json:"customer_email"`
	CustomerName        string            `gorm:"type:varchar(255)" json:"customer_name"`
	AmountTotal         decimal.Decimal   `gorm:"type:numeric(10,2);not null" json:"amount_total"`
	Currency            string            `gorm:"type:varchar(10);not null" json:"currency"`
	Status              string            `gorm:"type:varchar(20);not null" json:"status"`
	Metadata            datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt           time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

// PendingEnrollment holds a purchase whose email has no account yet.
type PendingEnrollment struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email           string     `gorm:"type:varchar(320);index;not null" json:"email"`
	Name            string     `gorm:"type:varchar(255)" json:"name"`
	PaywallID       *uuid.UUID `gorm:"type:uuid" json:"paywall_id,omitempty"`
	CourseID        *uuid.UUID `gorm:"type:uuid" json:"course_id,omitempty"`
	CohortID        *uuid.UUID `gorm:"type:uuid" json:"cohort_id,omitempty"`
	StripeSessionID string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"stripe_session_id"`
	Status          string     `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// CohortMember links an existing user to a cohort.
type CohortMember struct {
	CohortID uuid.UUID `gorm:"type:uuid;primaryKey" json:"cohort_id"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role     string    `gorm:"type:varchar(30);not null" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// ScheduledCharge is a future equipment-deposit charge executed by a separate job.
type ScheduledCharge struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StripeCustomerID    *string         `gorm:"type:varchar(255)" json:"stripe_customer_id,omitempty"`
	StripePaymentIntent *string         `gorm:"type:varchar(255)" json:"stripe_payment_intent,omitempty"`
	CustomerEmail       string          `gorm:"type:varchar(320)" json:"customer_email"`
	Amount              decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Description         string          `gorm:"type:varchar(255)" json:"description"`
	ChargeDate          datatypes.Date  `gorm:"type:date;not null;index" json:"charge_date"`
	PaywallID           uuid.UUID       `gorm:"type:uuid;not null" json:"paywall_id"`
	Status              string          `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
