package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Neuro316/Neuro-progeny-university/models"
	"github.com/Neuro316/Neuro-progeny-university/services"
)

type EmailController struct {
	emailService services.EmailService
}

func NewEmailController(svc services.EmailService) *EmailController {
	return &EmailController{emailService: svc}
}

// SendEmail handles POST /api/send-email.
func (ec *EmailController) SendEmail(ctx *gin.Context) {
	var req models.SendEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	resp, svcErr := ec.emailService.SendTemplated(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// TestEmail handles POST /api/test-email. An empty body sends the default
// test message to the sender mailbox.
func (ec *EmailController) TestEmail(ctx *gin.Context) {
	var req models.TestEmailRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}
	}

	resp, svcErr := ec.emailService.SendTest(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
