package views

import (
	"embed"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/Neuro316/Neuro-progeny-university/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const startDateLayout = "January 2, 2006"

// Templates parses every embedded page for gin's HTML renderer.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"money": money,
	}).ParseFS(templateFS, "templates/*.html")
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// CheckoutPage is the view model of GET /checkout/:slug.
type CheckoutPage struct {
	PaywallID      string
	Title          string
	Description    string
	CohortName     string
	StartDate      string
	CoursePrice    decimal.Decimal
	Deposit        decimal.Decimal
	DepositNow     bool
	DepositLater   bool
	DaysBefore     int
	DueToday       decimal.Decimal
	Canceled       bool
	CheckoutAPIURL string
}

func NewCheckoutPage(p *models.Paywall, canceled bool) CheckoutPage {
	page := CheckoutPage{
		PaywallID:      p.ID.String(),
		Title:          p.DisplayName(),
		CoursePrice:    p.CoursePrice,
		Deposit:        p.EquipmentDeposit,
		DepositNow:     p.DepositDueAtCheckout(),
		DepositLater:   p.HasDeposit() && p.EquipmentAutoCharge,
		DaysBefore:     p.ChargeDaysBefore(),
		DueToday:       p.DueToday(),
		Canceled:       canceled,
		CheckoutAPIURL: "/api/checkout",
	}
	if p.Description != nil {
		page.Description = *p.Description
	}
	if p.Cohort != nil {
		page.CohortName = p.Cohort.Name
		if start, ok := p.Cohort.StartTime(); ok {
			page.StartDate = start.Format(startDateLayout)
		}
	}
	return page
}
