package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultChargeDaysBefore is used when a paywall does not say how long before
// the cohort start an equipment deposit should be charged.
const DefaultChargeDaysBefore = 14

// Paywall is an administrator-defined checkout offer.
type Paywall struct {
	ID                        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                      string          `gorm:"type:varchar(200);not null" json:"name"`
	Slug                      string          `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Description               *string         `gorm:"type:text" json:"description,omitempty"`
	CourseID                  *uuid.UUID      `gorm:"type:uuid;index" json:"course_id,omitempty"`
	CohortID                  *uuid.UUID      `gorm:"type:uuid;index" json:"cohort_id,omitempty"`
	CoursePrice               decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"course_price"`
	EquipmentDeposit          decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"equipment_deposit"`
	EquipmentAutoCharge       bool            `gorm:"not null;default:false" json:"equipment_auto_charge"`
	EquipmentChargeDaysBefore int             `gorm:"not null;default:14" json:"equipment_charge_days_before"`
	IsActive                  bool            `gorm:"not null;index" json:"is_active"`
	ConfirmationEmailSubject  *string         `gorm:"type:text" json:"confirmation_email_subject,omitempty"`
	ConfirmationEmailBody     *string         `gorm:"type:text" json:"confirmation_email_body,omitempty"`
	WelcomeEmailSubject       *string         `gorm:"type:text" json:"welcome_email_subject,omitempty"`
	WelcomeEmailBody          *string         `gorm:"type:text" json:"welcome_email_body,omitempty"`
	CreatedAt                 time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Cohort *Cohort `gorm:"foreignKey:CohortID" json:"cohort,omitempty"`
}

// DisplayName is the product name shown on the checkout line item and in emails.
func (p *Paywall) DisplayName() string {
	if p.Course != nil && p.Course.Title != "" {
		return p.Course.Title
	}
	return p.Name
}

// HasDeposit reports whether an equipment deposit is configured.
func (p *Paywall) HasDeposit() bool {
	return p.EquipmentDeposit.IsPositive()
}

// DepositDueAtCheckout reports whether the deposit is collected as a second
// line item instead of being scheduled for later.
func (p *Paywall) DepositDueAtCheckout() bool {
	return p.HasDeposit() && !p.EquipmentAutoCharge
}

// DueToday is the amount charged by the checkout session itself.
func (p *Paywall) DueToday() decimal.Decimal {
	if p.DepositDueAtCheckout() {
		return p.CoursePrice.Add(p.EquipmentDeposit)
	}
	return p.CoursePrice
}

// ChargeDaysBefore returns the configured offset or the default.
func (p *Paywall) ChargeDaysBefore() int {
	if p.EquipmentChargeDaysBefore <= 0 {
		return DefaultChargeDaysBefore
	}
	return p.EquipmentChargeDaysBefore
}

// Course is a read-only projection of the course table owned by the dashboard.
type Course struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title               string    `gorm:"type:varchar(255);not null" json:"title"`
	Description         *string   `gorm:"type:text" json:"description,omitempty"`
	WelcomeEmailSubject *string   `gorm:"type:text" json:"welcome_email_subject,omitempty"`
	WelcomeEmailBody    *string   `gorm:"type:text" json:"welcome_email_body,omitempty"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Cohort is a time-boxed group of participants enrolled together in a course.
type Cohort struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID        *uuid.UUID      `gorm:"type:uuid;index" json:"course_id,omitempty"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	StartDate       *datatypes.Date `gorm:"type:date" json:"start_date,omitempty"`
	FacilitatorName *string         `gorm:"type:varchar(255)" json:"facilitator_name,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// StartTime returns the cohort start date, or false when unknown.
func (c *Cohort) StartTime() (time.Time, bool) {
	if c == nil || c.StartDate == nil {
		return time.Time{}, false
	}
	t := time.Time(*c.StartDate)
	if t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// Profile is the account record owned by the auth layer; looked up by email only.
type Profile struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string         `gorm:"type:varchar(320);index" json:"email"`
	FullName  *string        `gorm:"type:varchar(255)" json:"full_name,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PaywallRequest is the admin payload for creating or replacing a paywall.
type PaywallRequest struct {
	Name                      string          `json:"name" binding:"required,max=200"`
	Slug                      string          `json:"slug" binding:"required,max=120"`
	Description               *string         `json:"description"`
	CourseID                  *uuid.UUID      `json:"course_id"`
	CohortID                  *uuid.UUID      `json:"cohort_id"`
	CoursePrice               decimal.Decimal `json:"course_price"`
	EquipmentDeposit          decimal.Decimal `json:"equipment_deposit"`
	EquipmentAutoCharge       bool            `json:"equipment_auto_charge"`
	EquipmentChargeDaysBefore int             `json:"equipment_charge_days_before" binding:"gte=0,lte=365"`
	IsActive                  *bool           `json:"is_active"`
	ConfirmationEmailSubject  *string         `json:"confirmation_email_subject"`
	ConfirmationEmailBody     *string         `json:"confirmation_email_body"`
	WelcomeEmailSubject       *string         `json:"welcome_email_subject"`
	WelcomeEmailBody          *string         `json:"welcome_email_body"`
}
