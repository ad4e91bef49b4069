package worker

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/models"
	awspkg "github.com/Neuro316/Neuro-progeny-university/pkg/aws"
)

const retrySuffix = "_retry"

// Deliverer is satisfied by *services.Mailer.
type Deliverer interface {
	Deliver(ctx context.Context, msg models.EmailMessage) error
}

// Poller is satisfied by *aws.SQSConsumer.
type Poller interface {
	StartPolling(ctx context.Context, handler awspkg.MessageHandler) error
}

// EmailRetryWorker re-sends emails that failed during webhook handling.
type EmailRetryWorker struct {
	mailer Deliverer
	logger *zap.Logger
}

func NewEmailRetryWorker(mailer Deliverer, logger *zap.Logger) *EmailRetryWorker {
	return &EmailRetryWorker{mailer: mailer, logger: logger}
}

// Run blocks until ctx is cancelled.
func (w *EmailRetryWorker) Run(ctx context.Context, queue Poller) error {
	w.logger.Info("Email retry worker started")
	err := queue.StartPolling(ctx, w.Handle)
	w.logger.Info("Email retry worker stopped")
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Handle processes one queued message. Every message is consumed: a failed
// resend has already been re-enqueued by the mailer with the next attempt
// number, and an unparseable body would never succeed.
func (w *EmailRetryWorker) Handle(ctx context.Context, body string) error {
	var msg models.EmailMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		w.logger.Error("Dropping malformed email retry message", zap.Error(err))
		return nil
	}
	if msg.To == "" {
		w.logger.Warn("Dropping email retry message without recipient")
		return nil
	}

	if !strings.HasSuffix(msg.EmailType, retrySuffix) {
		msg.EmailType += retrySuffix
	}

	if err := w.mailer.Deliver(ctx, msg); err != nil {
		w.logger.Warn("Email retry failed",
			zap.String("to", msg.To),
			zap.Int("attempt", msg.Attempt),
			zap.Error(err),
		)
	}
	return nil
}
