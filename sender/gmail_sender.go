package sender

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jordan-wright/email"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	gmailSendURL   = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"
	gmailSendScope = "https://www.googleapis.com/auth/gmail.send"
)

type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	SenderEmail  string
	SenderName   string

	// Overridable for tests.
	TokenURL   string
	SendURL    string
	HTTPClient *http.Client
}

// GmailSender sends through the Gmail API using a long-lived refresh token.
// Access tokens are cached and refreshed by the oauth2 token source.
type GmailSender struct {
	from       string
	sendURL    string
	tokens     oauth2.TokenSource
	baseClient *http.Client
}

func NewGmailSender(cfg GmailConfig) *GmailSender {
	endpoint := google.Endpoint
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{gmailSendScope},
	}

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 15 * time.Second}
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	sendURL := cfg.SendURL
	if sendURL == "" {
		sendURL = gmailSendURL
	}

	return &GmailSender{
		from:       formatFrom(cfg.SenderName, cfg.SenderEmail),
		sendURL:    sendURL,
		tokens:     conf.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: cfg.RefreshToken}),
		baseClient: base,
	}
}

type gmailSendResponse struct {
	ID string `json:"id"`
}

func (g *GmailSender) SendEmail(ctx context.Context, to, subject, body string) (SendResult, error) {
	raw, err := g.buildRaw(to, subject, body)
	if err != nil {
		return SendResult{}, err
	}

	payload, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to encode gmail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.sendURL, bytes.NewReader(payload))
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout:   g.baseClient.Timeout,
		Transport: &oauth2.Transport{Source: g.tokens, Base: g.baseClient.Transport},
	}
	resp, err := client.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("gmail request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return SendResult{}, fmt.Errorf("gmail send error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out gmailSendResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return SendResult{}, fmt.Errorf("failed to decode gmail response: %w", err)
	}

	return SendResult{MessageID: out.ID, SentAt: time.Now()}, nil
}

// buildRaw renders the RFC 822 message and encodes it base64url without padding.
func (g *GmailSender) buildRaw(to, subject, body string) (string, error) {
	e := email.NewEmail()
	e.From = g.from
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(htmlDocument(body))

	msg, err := e.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to build mime message: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(msg), nil
}
