package main

import (
	"context"
	"errors"
	"io"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Neuro316/Neuro-progeny-university/config"
	"github.com/Neuro316/Neuro-progeny-university/database"
	"github.com/Neuro316/Neuro-progeny-university/logger"
	awspkg "github.com/Neuro316/Neuro-progeny-university/pkg/aws"
	"github.com/Neuro316/Neuro-progeny-university/repository"
	"github.com/Neuro316/Neuro-progeny-university/sender"
	"github.com/Neuro316/Neuro-progeny-university/services"
)

// app holds every collaborator. Integrations without configuration stay nil
// and the endpoints that need them answer "not configured".
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	db      *gorm.DB
	redis   *redis.Client
	awsCfg  *sdkaws.Config
	metrics *awspkg.MetricsClient
	retryQ  *awspkg.SQSConsumer

	paywalls repository.PaywallRepository
	mailer   *services.Mailer

	checkout services.CheckoutService
	webhook  services.WebhookService
	email    services.EmailService
	admin    services.AdminService
}

func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	sink, sinkErr := cloudWatchLogSink(cfg)
	log, err := logger.New(cfg.AppEnv, sink)
	if err != nil {
		return nil, nil, err
	}
	if sinkErr != nil {
		log.Warn("CloudWatch Logs unavailable, logging to stdout only", zap.Error(sinkErr))
	}
	return cfg, log, nil
}

// cloudWatchLogSink returns nil, nil when CLOUDWATCH_LOGS_ENABLED is off.
func cloudWatchLogSink(cfg *config.Config) (io.Writer, error) {
	if !cfg.CloudWatchLogsEnabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	w, err := awspkg.NewCloudWatchLogsWriter(ctx, awsCfg, cfg.CloudWatchLogGroup, "enrollment-service")
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (a *app) needsAWS() bool {
	cfg := a.cfg
	return cfg.AWSUseSecrets || cfg.CloudWatchEnabled || cfg.EnrollmentSNSTopicARN != "" || cfg.EmailRetryQueueURL != ""
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: log}

	if a.needsAWS() {
		awsCfg, err := awspkg.LoadAWSConfig(ctx)
		if err != nil {
			log.Warn("AWS config load failed (non-fatal)", zap.Error(err))
		} else {
			a.awsCfg = &awsCfg
		}
	}

	if a.awsCfg != nil && cfg.AWSUseSecrets {
		if err := cfg.ApplySecrets(ctx, awspkg.NewSecretsClient(*a.awsCfg)); err != nil {
			log.Warn("Secrets Manager lookup failed, using environment", zap.Error(err))
		}
	}

	db, err := database.Connect(cfg, log)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		log.Warn("Database not configured; payment endpoints will report 500")
	case err != nil:
		return nil, err
	default:
		a.db = db
		if cfg.DBAutoMigrate {
			if err := database.AutoMigrate(db); err != nil {
				return nil, err
			}
		}
	}

	if a.awsCfg != nil {
		a.metrics = awspkg.NewMetricsClient(*a.awsCfg, cfg.CloudWatchEnabled)
		if cfg.EmailRetryQueueURL != "" {
			a.retryQ = awspkg.NewSQSConsumer(*a.awsCfg, cfg.EmailRetryQueueURL, log)
		}
	}

	if cfg.RedisAddr != "" && a.db != nil {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unreachable; paywall reads fall through to Postgres", zap.Error(err))
		}
		cancel()
	}

	a.wireServices()
	return a, nil
}

func (a *app) wireServices() {
	cfg, log := a.cfg, a.logger

	var (
		paywalls    repository.PaywallRepository
		payments    repository.PaymentRepository
		enrollments repository.EnrollmentRepository
		charges     repository.ChargeRepository
		emailLogs   repository.EmailLogRepository
		catalog     repository.CatalogRepository
	)
	if a.db != nil {
		paywalls = repository.NewGormPaywallRepository(a.db)
		if a.redis != nil {
			paywalls = repository.NewCachedPaywallRepository(paywalls, a.redis, cfg.PaywallCacheTTL, log)
		}
		payments = repository.NewGormPaymentRepository(a.db)
		enrollments = repository.NewGormEnrollmentRepository(a.db)
		charges = repository.NewGormChargeRepository(a.db)
		emailLogs = repository.NewEmailLogRepository(a.db)
		catalog = repository.NewGormCatalogRepository(a.db)
	}
	a.paywalls = paywalls

	var gateway services.PaymentGateway
	if cfg.StripeConfigured() {
		gateway = services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		if cfg.StripeWebhookSecret == "" {
			log.Warn("STRIPE_WEBHOOK_SECRET not set; webhook signatures will not be verified")
		}
	} else {
		log.Warn("Stripe not configured; checkout and webhook will report 500")
	}

	mailSender, err := sender.FromConfig(cfg)
	if err != nil {
		log.Warn("Email transport not configured", zap.Error(err))
	}

	var retry awspkg.QueueSender
	if a.retryQ != nil {
		retry = a.retryQ
	}
	var sns awspkg.SNSPublisher
	if a.awsCfg != nil && cfg.EnrollmentSNSTopicARN != "" {
		sns = awspkg.NewSNSClient(*a.awsCfg)
	}

	a.mailer = services.NewMailer(mailSender, emailLogs, retry, a.metrics, log)
	dispatcher := services.NewNotificationDispatcher(a.mailer, cfg.LoginURL(), log)

	var reconciler *services.EnrollmentReconciler
	var planner *services.ChargePlanner
	if a.db != nil {
		reconciler = services.NewEnrollmentReconciler(payments, enrollments, a.metrics, log)
		planner = services.NewChargePlanner(charges, a.metrics, log)
	}

	a.checkout = services.NewCheckoutService(gateway, paywalls, cfg.SiteURL, cfg.CheckoutCurrency, a.metrics, log)
	a.webhook = services.NewWebhookService(services.WebhookDeps{
		Gateway:          gateway,
		RequireSignature: cfg.StripeRequireSignature,
		Paywalls:         paywalls,
		Reconciler:       reconciler,
		Planner:          planner,
		Dispatcher:       dispatcher,
		Publisher:        services.NewEnrollmentPublisher(sns, cfg.EnrollmentSNSTopicARN, log),
	}, log)
	a.email = services.NewEmailService(a.mailer, catalog, cfg.LoginURL(), cfg.SenderAddress(), log)
	a.admin = services.NewAdminService(paywalls, payments, emailLogs, log)
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("Redis close error", zap.Error(err))
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.logger.Error("Database close error", zap.Error(err))
			}
		}
	}
}
