package views_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Neuro316/Neuro-progeny-university/models"
	"github.com/Neuro316/Neuro-progeny-university/views"
)

func render(t *testing.T, name string, data any) string {
	t.Helper()
	tmpl, err := views.Templates()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, name, data))
	return buf.String()
}

func TestCheckoutPage_DepositLater(t *testing.T) {
	start := datatypes.Date(time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))
	p := &models.Paywall{
		ID:                        uuid.New(),
		Name:                      "Capacity",
		CoursePrice:               decimal.NewFromInt(500),
		EquipmentDeposit:          decimal.NewFromInt(250),
		EquipmentAutoCharge:       true,
		EquipmentChargeDaysBefore: 14,
		Cohort:                    &models.Cohort{Name: "Spring", StartDate: &start},
	}

	html := render(t, "checkout.html", views.NewCheckoutPage(p, false))
	assert.Contains(t, html, "Cohort: Spring, starting March 15, 2026")
	assert.Contains(t, html, "<th>$500.00</th>")
	assert.Contains(t, html, "charged to the same card 14 days before")
	assert.NotContains(t, html, "Checkout was canceled")
	assert.Contains(t, html, p.ID.String())
}

func TestCheckoutPage_DepositNowAndCanceled(t *testing.T) {
	p := &models.Paywall{
		ID:               uuid.New(),
		Name:             "Capacity",
		CoursePrice:      decimal.NewFromInt(500),
		EquipmentDeposit: decimal.NewFromInt(250),
	}

	html := render(t, "checkout.html", views.NewCheckoutPage(p, true))
	assert.Contains(t, html, "Checkout was canceled")
	assert.Contains(t, html, "Equipment deposit (refundable)")
	assert.Contains(t, html, "<th>$750.00</th>")
	assert.NotContains(t, html, "days before your cohort starts")
}

func TestNotFoundAndSuccessPages(t *testing.T) {
	html := render(t, "not_found.html", map[string]string{"Message": "This enrollment page is not available."})
	assert.Contains(t, html, "This enrollment page is not available.")

	html = render(t, "success.html", map[string]string{"LoginURL": "https://lms.example.com/login"})
	assert.Contains(t, html, `href="https://lms.example.com/login"`)
}

func TestCheckoutPage_ConnectionErrorMessage(t *testing.T) {
	p := &models.Paywall{ID: uuid.New(), Name: "Capacity", CoursePrice: decimal.NewFromInt(500)}

	html := render(t, "checkout.html", views.NewCheckoutPage(p, false))
	assert.Contains(t, html, "Connection error. Please try again.")
	assert.Contains(t, html, "catch (_)")
	assert.Contains(t, html, "button.disabled = false")
}
