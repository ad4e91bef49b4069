package controllers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/middleware"
	"github.com/Neuro316/Neuro-progeny-university/models"
	"github.com/Neuro316/Neuro-progeny-university/services"
)

type AdminController struct {
	adminService services.AdminService
	logger       *zap.Logger
}

func NewAdminController(svc services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{adminService: svc, logger: logger}
}

const (
	maxPageSize     = 100
	defaultPage     = 1
	defaultPageSize = 20
)

func parsePaginationParams(ctx *gin.Context) (int, int) {
	page := defaultPage
	pageSize := defaultPageSize

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("page_size", "20")); err == nil && l > 0 {
		pageSize = l
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}
	return page, pageSize
}

func paged(data any, total int64, page, pageSize int) gin.H {
	return gin.H{
		"data":        data,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": int(math.Ceil(float64(total) / float64(pageSize))),
	}
}

func paywallID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid paywall id"})
		return uuid.Nil, false
	}
	return id, true
}

// ListPaywalls handles GET /api/admin/paywalls.
func (ac *AdminController) ListPaywalls(ctx *gin.Context) {
	page, pageSize := parsePaginationParams(ctx)
	paywalls, total, svcErr := ac.adminService.ListPaywalls(ctx.Request.Context(), page, pageSize)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, paged(paywalls, total, page, pageSize))
}

// GetPaywall handles GET /api/admin/paywalls/:id.
func (ac *AdminController) GetPaywall(ctx *gin.Context) {
	id, ok := paywallID(ctx)
	if !ok {
		return
	}
	p, svcErr := ac.adminService.GetPaywall(ctx.Request.Context(), id)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"paywall": p})
}

// CreatePaywall handles POST /api/admin/paywalls.
func (ac *AdminController) CreatePaywall(ctx *gin.Context) {
	var req models.PaywallRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	p, svcErr := ac.adminService.CreatePaywall(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ac.logger.Info("Paywall created by admin",
		zap.String("paywall_id", p.ID.String()),
		zap.String("requested_by", ctx.GetString(middleware.SubjectContextKey)),
	)
	ctx.JSON(http.StatusCreated, gin.H{"paywall": p})
}

// UpdatePaywall handles PUT /api/admin/paywalls/:id.
func (ac *AdminController) UpdatePaywall(ctx *gin.Context) {
	id, ok := paywallID(ctx)
	if !ok {
		return
	}
	var req models.PaywallRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	p, svcErr := ac.adminService.UpdatePaywall(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"paywall": p})
}

// DeactivatePaywall handles DELETE /api/admin/paywalls/:id.
func (ac *AdminController) DeactivatePaywall(ctx *gin.Context) {
	id, ok := paywallID(ctx)
	if !ok {
		return
	}
	if svcErr := ac.adminService.DeactivatePaywall(ctx.Request.Context(), id); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ac.logger.Info("Paywall deactivated by admin",
		zap.String("paywall_id", id.String()),
		zap.String("requested_by", ctx.GetString(middleware.SubjectContextKey)),
	)
	ctx.JSON(http.StatusOK, gin.H{"message": "Paywall deactivated"})
}

// ListEmailLogs handles GET /api/admin/email-logs.
func (ac *AdminController) ListEmailLogs(ctx *gin.Context) {
	page, pageSize := parsePaginationParams(ctx)
	filter := models.EmailLogFilter{
		Status:    ctx.Query("status"),
		EmailType: ctx.Query("email_type"),
		Page:      page,
		PageSize:  pageSize,
	}

	logs, total, svcErr := ac.adminService.ListEmailLogs(ctx.Request.Context(), filter)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, paged(logs, total, page, pageSize))
}

// ListPayments handles GET /api/admin/payments.
func (ac *AdminController) ListPayments(ctx *gin.Context) {
	page, pageSize := parsePaginationParams(ctx)
	payments, total, svcErr := ac.adminService.ListPayments(ctx.Request.Context(), page, pageSize)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, paged(payments, total, page, pageSize))
}
