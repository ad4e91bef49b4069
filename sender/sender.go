package sender

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Neuro316/Neuro-progeny-university/config"
)

// ErrNotConfigured is returned when no mail transport has credentials.
var ErrNotConfigured = errors.New("email transport not configured")

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (SendResult, error)
}

// FromConfig picks Gmail when its OAuth credentials are present and falls
// back to SMTP.
func FromConfig(cfg *config.Config) (EmailSender, error) {
	switch {
	case cfg.GmailConfigured():
		return NewGmailSender(GmailConfig{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			RefreshToken: cfg.GmailRefreshToken,
			SenderEmail:  cfg.SenderAddress(),
			SenderName:   cfg.MailSenderName,
		}), nil
	case cfg.SMTPConfigured():
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailSenderName), nil
	default:
		return nil, ErrNotConfigured
	}
}

// htmlDocument wraps a plain-text body in the HTML shell every message uses.
// Newlines become <br>; the body is otherwise passed through as authored.
func htmlDocument(body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"></head>\n")
	b.WriteString("<body style=\"font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;\">\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "<br>"))
	b.WriteString("\n</body>\n</html>")
	return b.String()
}

func formatFrom(name, addr string) string {
	if name == "" {
		return addr
	}
	return name + " <" + addr + ">"
}
