package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	PaywallID     string `json:"paywall_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
}

// CheckoutResponse carries the hosted checkout redirect.
type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// EnrollmentEvent is published to SNS after a checkout is reconciled.
type EnrollmentEvent struct {
	Type            string     `json:"type"`
	StripeSessionID string     `json:"stripe_session_id"`
	PaymentID       string     `json:"payment_id,omitempty"`
	PaywallID       *uuid.UUID `json:"paywall_id,omitempty"`
	CourseID        *uuid.UUID `json:"course_id,omitempty"`
	CohortID        *uuid.UUID `json:"cohort_id,omitempty"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	Email           string     `json:"email"`
	Timestamp       time.Time  `json:"timestamp"`
}
