package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"

	EmailTypePaymentConfirmation = "payment_confirmation"
	EmailTypePaywallWelcome      = "paywall_welcome"
	EmailTypeCourseWelcome       = "course_welcome"
	EmailTypeTest                = "test"

	EmailSourcePaywall = "paywall"
	EmailSourceCourse  = "course"
)

// EmailLog is an append-only audit row for every attempted send.
type EmailLog struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecipientEmail string     `gorm:"type:varchar(320);index;not null" json:"recipient_email"`
	RecipientName  *string    `gorm:"type:varchar(255)" json:"recipient_name,omitempty"`
	EmailType      string     `gorm:"type:varchar(50);index;not null" json:"email_type"`
	Subject        string     `gorm:"type:text" json:"subject"`
	Body           string     `gorm:"type:text" json:"body"`
	SourceType     string     `gorm:"type:varchar(30)" json:"source_type"`
	SourceID       *uuid.UUID `gorm:"type:uuid" json:"source_id,omitempty"`
	Status         string     `gorm:"type:varchar(20);index" json:"status"`
	ErrorMessage   *string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName keeps the singular table name used by the dashboard.
func (EmailLog) TableName() string { return "email_log" }

// EmailLogFilter narrows the admin email log listing.
type EmailLogFilter struct {
	Status    string
	EmailType string
	Page      int
	PageSize  int
}

// SendEmailRequest is the body of POST /api/send-email.
type SendEmailRequest struct {
	Type     string     `json:"type"`
	UserID   *uuid.UUID `json:"user_id"`
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	CourseID *uuid.UUID `json:"course_id"`
	CohortID *uuid.UUID `json:"cohort_id"`
}

// TestEmailRequest is the body of POST /api/test-email.
type TestEmailRequest struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	CustomBody string `json:"customBody"`
}

// EmailResponse is returned by both email endpoints.
type EmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// EmailMessage is one outgoing email. It is also the body of the retry
// queue message when a send fails.
type EmailMessage struct {
	To            string     `json:"to"`
	RecipientName *string    `json:"recipient_name,omitempty"`
	Subject       string     `json:"subject"`
	Body          string     `json:"body"`
	EmailType     string     `json:"email_type"`
	SourceType    string     `json:"source_type"`
	SourceID      *uuid.UUID `json:"source_id,omitempty"`
	Attempt       int        `json:"attempt"`
}
