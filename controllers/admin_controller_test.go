package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/controllers"
	"github.com/Neuro316/Neuro-progeny-university/models"
	"github.com/Neuro316/Neuro-progeny-university/services"
)

type mockAdminService struct {
	listFn   func(ctx context.Context, page, limit int) ([]models.Paywall, int64, *services.ServiceError)
	getFn    func(ctx context.Context, id uuid.UUID) (*models.Paywall, *services.ServiceError)
	createFn func(ctx context.Context, req *models.PaywallRequest) (*models.Paywall, *services.ServiceError)
	updateFn func(ctx context.Context, id uuid.UUID, req *models.PaywallRequest) (*models.Paywall, *services.ServiceError)
	deactFn  func(ctx context.Context, id uuid.UUID) *services.ServiceError
	logsFn   func(ctx context.Context, f models.EmailLogFilter) ([]models.EmailLog, int64, *services.ServiceError)
	paysFn   func(ctx context.Context, page, limit int) ([]models.Payment, int64, *services.ServiceError)
}

func (m *mockAdminService) ListPaywalls(ctx context.Context, page, limit int) ([]models.Paywall, int64, *services.ServiceError) {
	return m.listFn(ctx, page, limit)
}
func (m *mockAdminService) GetPaywall(ctx context.Context, id uuid.UUID) (*models.Paywall, *services.ServiceError) {
	return m.getFn(ctx, id)
}
func (m *mockAdminService) CreatePaywall(ctx context.Context, req *models.PaywallRequest) (*models.Paywall, *services.ServiceError) {
	return m.createFn(ctx, req)
}
func (m *mockAdminService) UpdatePaywall(ctx context.Context, id uuid.UUID, req *models.PaywallRequest) (*models.Paywall, *services.ServiceError) {
	return m.updateFn(ctx, id, req)
}
func (m *mockAdminService) DeactivatePaywall(ctx context.Context, id uuid.UUID) *services.ServiceError {
	return m.deactFn(ctx, id)
}
func (m *mockAdminService) ListEmailLogs(ctx context.Context, f models.EmailLogFilter) ([]models.EmailLog, int64, *services.ServiceError) {
	return m.logsFn(ctx, f)
}
func (m *mockAdminService) ListPayments(ctx context.Context, page, limit int) ([]models.Payment, int64, *services.ServiceError) {
	return m.paysFn(ctx, page, limit)
}

func setupAdminRouter(svc services.AdminService) *gin.Engine {
	r := gin.New()
	ac := controllers.NewAdminController(svc, zap.NewNop())

	r.Use(func(c *gin.Context) {
		c.Set("subject", "admin-user")
		c.Set("role", "admin")
		c.Next()
	})

	r.GET("/paywalls", ac.ListPaywalls)
	r.POST("/paywalls", ac.CreatePaywall)
	r.GET("/paywalls/:id", ac.GetPaywall)
	r.PUT("/paywalls/:id", ac.UpdatePaywall)
	r.DELETE("/paywalls/:id", ac.DeactivatePaywall)
	r.GET("/email-logs", ac.ListEmailLogs)
	r.GET("/payments", ac.ListPayments)
	return r
}

func TestController_ListPaywalls_Pagination(t *testing.T) {
	var gotPage, gotLimit int
	svc := &mockAdminService{
		listFn: func(_ context.Context, page, limit int) ([]models.Paywall, int64, *services.ServiceError) {
			gotPage, gotLimit = page, limit
			return []models.Paywall{{Name: "A"}}, 45, nil
		},
	}
	r := setupAdminRouter(svc)

	w := do(r, http.MethodGet, "/paywalls?page=2&page_size=500", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, gotPage)
	assert.Equal(t, 100, gotLimit)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 45, resp["total"])
	assert.EqualValues(t, 1, resp["total_pages"])
}

func TestController_CreatePaywall(t *testing.T) {
	svc := &mockAdminService{
		createFn: func(_ context.Context, req *models.PaywallRequest) (*models.Paywall, *services.ServiceError) {
			return &models.Paywall{ID: uuid.New(), Name: req.Name, Slug: req.Slug, CoursePrice: req.CoursePrice}, nil
		},
	}
	r := setupAdminRouter(svc)

	w := do(r, http.MethodPost, "/paywalls", []byte(`{"name":"Capacity","slug":"capacity","course_price":"499.00"}`), nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"capacity"`)

	w = do(r, http.MethodPost, "/paywalls", []byte(`{"slug":"capacity"}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_PaywallByID(t *testing.T) {
	id := uuid.New()
	svc := &mockAdminService{
		getFn: func(_ context.Context, got uuid.UUID) (*models.Paywall, *services.ServiceError) {
			if got != id {
				return nil, &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Paywall not found"}
			}
			return &models.Paywall{ID: id}, nil
		},
		deactFn: func(_ context.Context, got uuid.UUID) *services.ServiceError { return nil },
	}
	r := setupAdminRouter(svc)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/paywalls/"+id.String(), nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/paywalls/"+uuid.NewString(), nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/paywalls/nope", nil, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/paywalls/"+id.String(), nil, nil).Code)
}

func TestController_ListEmailLogs_Filters(t *testing.T) {
	var got models.EmailLogFilter
	svc := &mockAdminService{
		logsFn: func(_ context.Context, f models.EmailLogFilter) ([]models.EmailLog, int64, *services.ServiceError) {
			got = f
			return nil, 0, nil
		},
	}
	r := setupAdminRouter(svc)

	w := do(r, http.MethodGet, "/email-logs?status=failed&email_type=payment_confirmation", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "failed", got.Status)
	assert.Equal(t, "payment_confirmation", got.EmailType)
	assert.Equal(t, 20, got.PageSize)
}
