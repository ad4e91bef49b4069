package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/models"
	awspkg "github.com/Neuro316/Neuro-progeny-university/pkg/aws"
	"github.com/Neuro316/Neuro-progeny-university/repository"
	"github.com/Neuro316/Neuro-progeny-university/sender"
)

// MaxEmailAttempts bounds sends per message, the first attempt included.
const MaxEmailAttempts = 3

// RetryBackoff is the queue delay added per failed attempt.
const RetryBackoff = 30 * time.Second

// RetryDelay is how long a message waits on the queue before the given
// attempt is made.
func RetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return time.Duration(attempt-1) * RetryBackoff
}

// Mailer sends one message, appends an email_log row and, when a retry
// queue is configured, re-enqueues failed sends. Logging and enqueueing are
// best effort; only the send error is returned.
type Mailer struct {
	sender  sender.EmailSender
	logs    repository.EmailLogRepository
	retry   awspkg.QueueSender
	metrics MetricsRecorder
	logger  *zap.Logger
}

func NewMailer(
	s sender.EmailSender,
	logs repository.EmailLogRepository,
	retry awspkg.QueueSender,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *Mailer {
	return &Mailer{sender: s, logs: logs, retry: retry, metrics: metrics, logger: logger}
}

func (m *Mailer) Deliver(ctx context.Context, msg models.EmailMessage) error {
	if msg.Attempt < 1 {
		msg.Attempt = 1
	}

	var err error
	if m.sender == nil {
		err = sender.ErrNotConfigured
	} else {
		_, err = m.sender.SendEmail(ctx, msg.To, msg.Subject, msg.Body)
	}

	m.saveLog(ctx, msg, err)

	if err == nil {
		m.logger.Info("Email sent",
			zap.String("to", msg.To),
			zap.String("email_type", msg.EmailType),
			zap.Int("attempt", msg.Attempt),
		)
		return nil
	}

	m.logger.Warn("Email send failed",
		zap.String("to", msg.To),
		zap.String("email_type", msg.EmailType),
		zap.Int("attempt", msg.Attempt),
		zap.Error(err),
	)
	recordCount(ctx, m.metrics, m.logger, awspkg.MetricEmailsFailed, map[string]string{"EmailType": msg.EmailType})

	if !errors.Is(err, sender.ErrNotConfigured) {
		m.enqueueRetry(ctx, msg)
	}
	return err
}

func (m *Mailer) saveLog(ctx context.Context, msg models.EmailMessage, sendErr error) {
	if m.logs == nil {
		return
	}

	entry := &models.EmailLog{
		RecipientEmail: msg.To,
		RecipientName:  msg.RecipientName,
		EmailType:      msg.EmailType,
		Subject:        msg.Subject,
		Body:           msg.Body,
		SourceType:     msg.SourceType,
		SourceID:       msg.SourceID,
		Status:         models.EmailStatusSent,
	}
	if sendErr != nil {
		entry.Status = models.EmailStatusFailed
		errMsg := sendErr.Error()
		entry.ErrorMessage = &errMsg
	}

	if err := m.logs.Save(ctx, entry); err != nil {
		m.logger.Debug("Email log write skipped", zap.Error(err))
	}
}

func (m *Mailer) enqueueRetry(ctx context.Context, msg models.EmailMessage) {
	if m.retry == nil || msg.Attempt >= MaxEmailAttempts || msg.EmailType == models.EmailTypeTest {
		return
	}
	next := msg
	next.Attempt = msg.Attempt + 1

	body, err := json.Marshal(next)
	if err != nil {
		m.logger.Warn("Failed to encode email retry", zap.Error(err))
		return
	}
	delay := RetryDelay(next.Attempt)
	if err := m.retry.SendMessage(ctx, string(body), delay); err != nil {
		m.logger.Warn("Failed to enqueue email retry", zap.String("to", msg.To), zap.Error(err))
		return
	}
	m.logger.Info("Email queued for retry",
		zap.String("to", msg.To),
		zap.Int("next_attempt", next.Attempt),
		zap.Duration("delay", delay),
	)
}
