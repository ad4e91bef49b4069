package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/models"
)

const defaultConfirmationBody = "Hi {{name}},\n\n" +
	"Thank you for enrolling in {{course_name}}! We're excited to have you.\n\n" +
	"You'll receive access details and next steps shortly.\n\n" +
	"Warm regards,\nThe Neuro Progeny Team"

type PaymentEmailInput struct {
	Email   string
	Name    string
	Paywall *models.Paywall
}

type DispatchResult struct {
	ConfirmationSent bool
	WelcomeSent      bool
}

// NotificationDispatcher sends the emails that follow a completed checkout.
type NotificationDispatcher struct {
	mailer   *Mailer
	loginURL string
	logger   *zap.Logger
}

func NewNotificationDispatcher(mailer *Mailer, loginURL string, logger *zap.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{mailer: mailer, loginURL: loginURL, logger: logger}
}

// DispatchPaymentEmails sends the payment confirmation and, when the paywall
// has both a welcome subject and body, the paywall welcome email. Failures
// are logged by the mailer and never returned.
func (d *NotificationDispatcher) DispatchPaymentEmails(ctx context.Context, in PaymentEmailInput) DispatchResult {
	var res DispatchResult
	if in.Email == "" || in.Paywall == nil {
		return res
	}
	p := in.Paywall

	data := MergeData{
		Name:       in.Name,
		Email:      in.Email,
		CourseName: p.DisplayName(),
		LoginURL:   d.loginURL,
	}.withCohort(p.Cohort)

	subject := fmt.Sprintf("Welcome to %s!", data.CourseName)
	if s := deref(p.ConfirmationEmailSubject); s != "" {
		subject = ApplyMergeTags(s, data)
	}
	body := ApplyMergeTags(defaultConfirmationBody, data)
	if b := deref(p.ConfirmationEmailBody); b != "" {
		body = ApplyMergeTags(b, data)
	}

	sourceID := p.ID
	recipientName := optionalString(in.Name)

	err := d.mailer.Deliver(ctx, models.EmailMessage{
		To:            in.Email,
		RecipientName: recipientName,
		Subject:       subject,
		Body:          body,
		EmailType:     models.EmailTypePaymentConfirmation,
		SourceType:    models.EmailSourcePaywall,
		SourceID:      &sourceID,
	})
	res.ConfirmationSent = err == nil

	welcomeSubject, welcomeBody := deref(p.WelcomeEmailSubject), deref(p.WelcomeEmailBody)
	if welcomeSubject == "" || welcomeBody == "" {
		return res
	}

	err = d.mailer.Deliver(ctx, models.EmailMessage{
		To:            in.Email,
		RecipientName: recipientName,
		Subject:       ApplyMergeTags(welcomeSubject, data),
		Body:          ApplyMergeTags(welcomeBody, data),
		EmailType:     models.EmailTypePaywallWelcome,
		SourceType:    models.EmailSourcePaywall,
		SourceID:      &sourceID,
	})
	res.WelcomeSent = err == nil
	return res
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
