package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/models"
	"github.com/Neuro316/Neuro-progeny-university/services"
)

func newAdmin(paywalls *memPaywalls) (services.AdminService, *memPayments, *memEmailLogs) {
	payments := newMemPayments()
	logs := &memEmailLogs{}
	return services.NewAdminService(paywalls, payments, logs, zap.NewNop()), payments, logs
}

func TestCreatePaywall(t *testing.T) {
	svc, _, _ := newAdmin(newMemPaywalls())

	p, serr := svc.CreatePaywall(context.Background(), &models.PaywallRequest{
		Name:             " Capacity ",
		Slug:             "Capacity-101",
		CoursePrice:      decimal.RequireFromString("499.999"),
		EquipmentDeposit: decimal.NewFromInt(250),
	})
	require.Nil(t, serr)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "Capacity", p.Name)
	assert.Equal(t, "capacity-101", p.Slug)
	assert.Equal(t, "500.00", p.CoursePrice.StringFixed(2))
	assert.Equal(t, 14, p.EquipmentChargeDaysBefore)
	assert.True(t, p.IsActive)
}

func TestCreatePaywall_Validation(t *testing.T) {
	svc, _, _ := newAdmin(newMemPaywalls())

	tests := []struct {
		name string
		req  models.PaywallRequest
	}{
		{"negative price", models.PaywallRequest{Name: "A", Slug: "a", CoursePrice: decimal.NewFromInt(-1)}},
		{"negative deposit", models.PaywallRequest{Name: "A", Slug: "a", EquipmentDeposit: decimal.NewFromInt(-5)}},
		{"slug with slash", models.PaywallRequest{Name: "A", Slug: "a/b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, serr := svc.CreatePaywall(context.Background(), &tt.req)
			require.NotNil(t, serr)
			assert.Equal(t, http.StatusBadRequest, serr.StatusCode)
		})
	}
}

func TestCreatePaywall_DuplicateSlug(t *testing.T) {
	existing := newPaywall(100, 0, false)
	svc, _, _ := newAdmin(newMemPaywalls(existing))

	_, serr := svc.CreatePaywall(context.Background(), &models.PaywallRequest{Name: "Other", Slug: existing.Slug})
	require.NotNil(t, serr)
	assert.Equal(t, http.StatusConflict, serr.StatusCode)
	assert.Equal(t, "Slug already in use", serr.Message)
}

func TestUpdatePaywall(t *testing.T) {
	existing := newPaywall(100, 0, false)
	store := newMemPaywalls(existing)
	svc, _, _ := newAdmin(store)
	inactive := false

	p, serr := svc.UpdatePaywall(context.Background(), existing.ID, &models.PaywallRequest{
		Name:                      "Renamed",
		Slug:                      existing.Slug,
		CoursePrice:               decimal.NewFromInt(150),
		EquipmentDeposit:          decimal.NewFromInt(300),
		EquipmentAutoCharge:       true,
		EquipmentChargeDaysBefore: 7,
		IsActive:                  &inactive,
	})
	require.Nil(t, serr)
	assert.Equal(t, "Renamed", p.Name)
	assert.False(t, p.IsActive)
	assert.Equal(t, 7, p.EquipmentChargeDaysBefore)
	assert.Nil(t, p.Course)

	_, err := store.FindActiveByID(context.Background(), existing.ID)
	assert.Error(t, err)
}

func TestUpdatePaywall_NotFound(t *testing.T) {
	svc, _, _ := newAdmin(newMemPaywalls())
	_, serr := svc.UpdatePaywall(context.Background(), uuid.New(), &models.PaywallRequest{Name: "A", Slug: "a"})
	require.NotNil(t, serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
}

func TestDeactivatePaywall(t *testing.T) {
	existing := newPaywall(100, 0, false)
	store := newMemPaywalls(existing)
	svc, _, _ := newAdmin(store)

	require.Nil(t, svc.DeactivatePaywall(context.Background(), existing.ID))
	_, err := store.FindActiveByID(context.Background(), existing.ID)
	assert.Error(t, err)

	// Still visible to the admin listing.
	got, serr := svc.GetPaywall(context.Background(), existing.ID)
	require.Nil(t, serr)
	assert.False(t, got.IsActive)

	serr = svc.DeactivatePaywall(context.Background(), uuid.New())
	require.NotNil(t, serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
}

func TestListPaymentsAndEmailLogs(t *testing.T) {
	svc, payments, logs := newAdmin(newMemPaywalls())
	require.NoError(t, payments.Create(context.Background(), &models.Payment{StripeSessionID: "cs_1"}))
	logs.logs = []models.EmailLog{
		{RecipientEmail: "a@example.com", Status: models.EmailStatusSent},
		{RecipientEmail: "b@example.com", Status: models.EmailStatusFailed},
	}

	list, total, serr := svc.ListPayments(context.Background(), 1, 10)
	require.Nil(t, serr)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	failed, total, serr := svc.ListEmailLogs(context.Background(), models.EmailLogFilter{Status: models.EmailStatusFailed})
	require.Nil(t, serr)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "b@example.com", failed[0].RecipientEmail)
}

func TestListEmailLogs_StoreError(t *testing.T) {
	svc := services.NewAdminService(newMemPaywalls(), newMemPayments(), &failingLogs{}, zap.NewNop())
	_, _, serr := svc.ListEmailLogs(context.Background(), models.EmailLogFilter{})
	require.NotNil(t, serr)
	assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
}

type failingLogs struct{ memEmailLogs }

func (f *failingLogs) GetLogs(context.Context, models.EmailLogFilter) ([]models.EmailLog, int64, error) {
	return nil, 0, errors.New("timeout")
}

func TestAdmin_NoDatabase(t *testing.T) {
	svc := services.NewAdminService(nil, nil, nil, zap.NewNop())

	_, _, serr := svc.ListPaywalls(context.Background(), 1, 10)
	require.NotNil(t, serr)
	assert.Equal(t, "Database not configured", serr.Message)

	_, serr = svc.UpdatePaywall(context.Background(), uuid.New(), &models.PaywallRequest{Name: "A", Slug: "a"})
	require.NotNil(t, serr)
	assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)

	_, _, serr = svc.ListPayments(context.Background(), 1, 10)
	require.NotNil(t, serr)
}
