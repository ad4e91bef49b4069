package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	awspkg "github.com/Neuro316/Neuro-progeny-university/pkg/aws"
)

// credentialsSecret is the Secrets Manager entry consulted when AWS_USE_SECRETS=true.
const credentialsSecret = "enrollment/CREDENTIALS"

type Config struct {
	Port   string `env:"PORT" envDefault:"8088"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	DatabaseURL      string `env:"DATABASE_URL"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB"`
	PostgresHost     string `env:"POSTGRES_HOST"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	PostgresTimeZone string `env:"POSTGRES_TIMEZONE" envDefault:"UTC"`
	DBAutoMigrate    bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`

	StripeSecretKey        string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret    string `env:"STRIPE_WEBHOOK_SECRET"`
	StripeRequireSignature bool   `env:"STRIPE_REQUIRE_SIGNATURE" envDefault:"false"`
	CheckoutCurrency       string `env:"CHECKOUT_CURRENCY" envDefault:"usd"`

	SiteURL string `env:"SITE_URL" envDefault:"http://localhost:3000"`

	GmailClientID     string `env:"GMAIL_CLIENT_ID"`
	GmailClientSecret string `env:"GMAIL_CLIENT_SECRET"`
	GmailRefreshToken string `env:"GMAIL_REFRESH_TOKEN"`
	GmailSenderEmail  string `env:"GMAIL_SENDER_EMAIL"`
	MailSenderName    string `env:"MAIL_SENDER_NAME" envDefault:"Neuro Progeny"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	PaywallCacheTTL time.Duration `env:"PAYWALL_CACHE_TTL" envDefault:"5m"`

	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`

	EnrollmentSNSTopicARN string `env:"ENROLLMENT_SNS_TOPIC_ARN"`
	EmailRetryQueueURL    string `env:"EMAIL_RETRY_QUEUE_URL"`
	AWSUseSecrets         bool   `env:"AWS_USE_SECRETS" envDefault:"false"`
	CloudWatchEnabled     bool   `env:"CLOUDWATCH_ENABLED" envDefault:"false"`

	CloudWatchLogsEnabled bool   `env:"CLOUDWATCH_LOGS_ENABLED" envDefault:"false"`
	CloudWatchLogGroup    string `env:"CLOUDWATCH_LOG_GROUP" envDefault:"/neuro-progeny/enrollment-service"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// Load reads .env (when present) and the process environment. Missing
// integrations are not errors here; each endpoint reports its own
// "not configured" state.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.SiteURL = strings.TrimSuffix(cfg.SiteURL, "/")
	cfg.CheckoutCurrency = strings.ToLower(cfg.CheckoutCurrency)
	return cfg, nil
}

// ApplySecrets overrides credentials from Secrets Manager when AWS_USE_SECRETS=true.
func (c *Config) ApplySecrets(ctx context.Context, sm awspkg.SecretGetter) error {
	if !c.AWSUseSecrets || sm == nil {
		return nil
	}
	raw, err := sm.GetSecret(ctx, credentialsSecret)
	if err != nil {
		return err
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return fmt.Errorf("decode %s: %w", credentialsSecret, err)
	}
	override := func(key string, dst *string) {
		if v, ok := m[key]; ok && v != "" {
			*dst = v
		}
	}
	override("STRIPE_SECRET_KEY", &c.StripeSecretKey)
	override("STRIPE_WEBHOOK_SECRET", &c.StripeWebhookSecret)
	override("GMAIL_CLIENT_ID", &c.GmailClientID)
	override("GMAIL_CLIENT_SECRET", &c.GmailClientSecret)
	override("GMAIL_REFRESH_TOKEN", &c.GmailRefreshToken)
	override("DATABASE_URL", &c.DatabaseURL)
	override("ADMIN_JWT_SECRET", &c.AdminJWTSecret)
	return nil
}

// DatabaseConfigured reports whether enough settings exist to open a connection.
func (c *Config) DatabaseConfigured() bool {
	if c.DatabaseURL != "" {
		return true
	}
	return c.PostgresUser != "" && c.PostgresDB != "" && c.PostgresHost != ""
}

// DSN returns the gorm/pgx connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

// MigrationURL returns a postgres:// URL for golang-migrate.
func (c *Config) MigrationURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   c.PostgresHost + ":" + c.PostgresPort,
		Path:   "/" + c.PostgresDB,
	}
	q := u.Query()
	q.Set("sslmode", c.PostgresSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != ""
}

func (c *Config) GmailConfigured() bool {
	return c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != ""
}

func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

// LoginURL is the sign-in link used by the {{login_url}} merge tag.
func (c *Config) LoginURL() string {
	return c.SiteURL + "/login"
}

// SenderAddress is the mailbox used as From and as the default test recipient.
func (c *Config) SenderAddress() string {
	if c.GmailSenderEmail != "" {
		return c.GmailSenderEmail
	}
	return c.SMTPUser
}
