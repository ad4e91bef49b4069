package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Neuro316/Neuro-progeny-university/controllers"
	"github.com/Neuro316/Neuro-progeny-university/middleware"
)

const serviceName = "enrollment-service"

type Controllers struct {
	Checkout *controllers.CheckoutController
	Webhook  *controllers.WebhookController
	Email    *controllers.EmailController
	Admin    *controllers.AdminController
}

type Options struct {
	AllowedOrigins []string
	AdminJWTSecret string
	// RateLimiter guards the public POST endpoints; nil disables it.
	RateLimiter *middleware.RateLimiter
}

func checkoutCORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func RegisterRoutes(router *gin.Engine, c Controllers, opts Options) {
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "OK", "service": serviceName})
	})

	limit := func(ctx *gin.Context) { ctx.Next() }
	if opts.RateLimiter != nil {
		limit = opts.RateLimiter.Middleware()
	}

	// Public pages
	router.GET("/checkout/success", c.Checkout.CheckoutSuccess)
	router.GET("/checkout/:slug", c.Checkout.CheckoutPage)

	api := router.Group("/api")
	{
		checkout := api.Group("/checkout", checkoutCORS(opts.AllowedOrigins))
		checkout.POST("", limit, c.Checkout.CreateCheckout)
		checkout.OPTIONS("", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

		api.POST("/webhook/stripe", c.Webhook.HandleStripe)

		api.POST("/send-email", limit, c.Email.SendEmail)
		api.POST("/test-email", limit, c.Email.TestEmail)
	}

	// Admin only
	admin := router.Group("/api/admin", middleware.JWTAuth(opts.AdminJWTSecret), middleware.AdminOnly())
	{
		admin.GET("/paywalls", c.Admin.ListPaywalls)
		admin.POST("/paywalls", c.Admin.CreatePaywall)
		admin.GET("/paywalls/:id", c.Admin.GetPaywall)
		admin.PUT("/paywalls/:id", c.Admin.UpdatePaywall)
		admin.DELETE("/paywalls/:id", c.Admin.DeactivatePaywall)
		admin.GET("/email-logs", c.Admin.ListEmailLogs)
		admin.GET("/payments", c.Admin.ListPayments)
	}
}
