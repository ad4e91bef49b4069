package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Neuro316/Neuro-progeny-university/controllers"
	"github.com/Neuro316/Neuro-progeny-university/middleware"
	"github.com/Neuro316/Neuro-progeny-university/routes"
	"github.com/Neuro316/Neuro-progeny-university/views"
	"github.com/Neuro316/Neuro-progeny-university/worker"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

func serveCmd() *cobra.Command {
	var withWorker bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(withWorker)
		},
	}
	cmd.Flags().BoolVar(&withWorker, "retry-worker", false, "also poll the email retry queue in this process")
	return cmd
}

func runServe(withWorker bool) error {
	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("Startup failed", zap.Error(err))
		return err
	}
	defer a.close()

	if cfg.AnthropicAPIKey == "" {
		log.Info("ANTHROPIC_API_KEY not set")
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	tmpl, err := views.Templates()
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(rate.Limit(5), 10, 3*time.Minute)
	limiter.StartCleanup(ctx)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MetricsMiddleware(a.metrics, log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Timeout(requestTimeout))

	routes.RegisterRoutes(r, routes.Controllers{
		Checkout: controllers.NewCheckoutController(a.checkout, cfg.LoginURL(), log),
		Webhook:  controllers.NewWebhookController(a.webhook, log),
		Email:    controllers.NewEmailController(a.email),
		Admin:    controllers.NewAdminController(a.admin, log),
	}, routes.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AdminJWTSecret: cfg.AdminJWTSecret,
		RateLimiter:    limiter,
	})

	workerDone := make(chan struct{})
	if withWorker && a.retryQ != nil {
		go func() {
			defer close(workerDone)
			if err := worker.NewEmailRetryWorker(a.mailer, log).Run(ctx, a.retryQ); err != nil {
				log.Error("Email retry worker exited", zap.Error(err))
			}
		}()
	} else {
		close(workerDone)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Enrollment service started", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
		return err
	}

	log.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	<-workerDone

	log.Info("Enrollment service stopped gracefully")
	return nil
}
