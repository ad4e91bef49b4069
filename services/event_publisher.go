package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/models"
	awspkg "github.com/Neuro316/Neuro-progeny-university/pkg/aws"
)

// EnrollmentPublisher announces reconciled checkouts on SNS so the wider app
// can react (channel sync, dashboards). Disabled when no topic is set.
type EnrollmentPublisher struct {
	sns      awspkg.SNSPublisher
	topicArn string
	logger   *zap.Logger
}

func NewEnrollmentPublisher(sns awspkg.SNSPublisher, topicArn string, logger *zap.Logger) *EnrollmentPublisher {
	return &EnrollmentPublisher{sns: sns, topicArn: topicArn, logger: logger}
}

func (p *EnrollmentPublisher) Publish(ctx context.Context, co CompletedCheckout, res ReconcileResult) {
	if p == nil || p.sns == nil || p.topicArn == "" {
		return
	}

	event := models.EnrollmentEvent{
		Type:            "enrollment_" + string(res.Outcome),
		StripeSessionID: co.SessionID,
		PaywallID:       co.Metadata.PaywallID,
		CourseID:        co.Metadata.CourseID,
		CohortID:        co.Metadata.CohortID,
		UserID:          res.UserID,
		Email:           co.Email,
		Timestamp:       time.Now().UTC(),
	}
	if res.Payment != nil {
		event.PaymentID = res.Payment.ID.String()
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal enrollment event", zap.Error(err))
		return
	}
	n := awspkg.Notification{
		TopicARN: p.topicArn,
		Body:     body,
		Attributes: map[string]string{
			"event_type": event.Type,
			"outcome":    string(res.Outcome),
			"paywall_id": uuidString(co.Metadata.PaywallID),
			"course_id":  uuidString(co.Metadata.CourseID),
		},
		// Replayed sessions collapse on FIFO topics.
		DedupID: co.SessionID,
		GroupID: enrollmentGroupID(co),
	}
	if err := p.sns.Publish(ctx, n); err != nil {
		p.logger.Error("Failed to publish enrollment event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	p.logger.Info("Published enrollment event", zap.String("type", event.Type))
}

// Events for one paywall stay ordered on FIFO topics.
func enrollmentGroupID(co CompletedCheckout) string {
	if co.Metadata.PaywallID != nil {
		return co.Metadata.PaywallID.String()
	}
	return "enrollments"
}
