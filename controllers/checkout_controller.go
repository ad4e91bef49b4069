package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/models"
	"github.com/Neuro316/Neuro-progeny-university/services"
	"github.com/Neuro316/Neuro-progeny-university/views"
)

const pageNotAvailable = "This enrollment page is not available."

// CheckoutController serves the checkout API and the public checkout pages.
type CheckoutController struct {
	checkoutService services.CheckoutService
	loginURL        string
	logger          *zap.Logger
}

func NewCheckoutController(svc services.CheckoutService, loginURL string, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{checkoutService: svc, loginURL: loginURL, logger: logger}
}

// CreateCheckout handles POST /api/checkout.
func (cc *CheckoutController) CreateCheckout(ctx *gin.Context) {
	var req models.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		// Configuration errors still take precedence over a bad body.
		req = models.CheckoutRequest{}
	}

	resp, svcErr := cc.checkoutService.CreateSession(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// CheckoutPage handles GET /checkout/:slug.
func (cc *CheckoutController) CheckoutPage(ctx *gin.Context) {
	p, svcErr := cc.checkoutService.GetActivePaywall(ctx.Request.Context(), ctx.Param("slug"))
	if svcErr != nil {
		status := svcErr.StatusCode
		if status != http.StatusNotFound {
			cc.logger.Warn("Checkout page unavailable", zap.String("slug", ctx.Param("slug")), zap.String("error", svcErr.Message))
		}
		ctx.HTML(status, "not_found.html", gin.H{"Message": pageNotAvailable})
		return
	}

	ctx.HTML(http.StatusOK, "checkout.html", views.NewCheckoutPage(p, ctx.Query("canceled") == "true"))
}

// CheckoutSuccess handles GET /checkout/success.
func (cc *CheckoutController) CheckoutSuccess(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "success.html", gin.H{"LoginURL": cc.loginURL})
}
