package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Neuro316/Neuro-progeny-university/models"
)

// Session metadata keys. The processor stores them as opaque strings and
// hands them back on the completed-checkout event.
const (
	MetaPaywallID        = "paywall_id"
	MetaCourseID         = "course_id"
	MetaCohortID         = "cohort_id"
	MetaEquipmentDeposit = "equipment_deposit"
	MetaAutoCharge       = "equipment_auto_charge"
	MetaChargeDaysBefore = "equipment_charge_days_before"
	MetaCustomerName     = "customer_name"

	// MaxCustomerNameLength bounds customer_name in runes. The processor
	// rejects metadata values over 500 characters.
	MaxCustomerNameLength = 255
)

// CheckoutMetadata is what a checkout session carries from the paywall to the
// webhook.
type CheckoutMetadata struct {
	PaywallID                 *uuid.UUID
	CourseID                  *uuid.UUID
	CohortID                  *uuid.UUID
	EquipmentDeposit          decimal.Decimal
	EquipmentAutoCharge       bool
	EquipmentChargeDaysBefore int
	CustomerName              string
}

// MetadataFromPaywall snapshots the paywall's purchase terms.
func MetadataFromPaywall(p *models.Paywall, customerName string) CheckoutMetadata {
	id := p.ID
	return CheckoutMetadata{
		PaywallID:                 &id,
		CourseID:                  p.CourseID,
		CohortID:                  p.CohortID,
		EquipmentDeposit:          p.EquipmentDeposit,
		EquipmentAutoCharge:       p.EquipmentAutoCharge,
		EquipmentChargeDaysBefore: p.ChargeDaysBefore(),
		CustomerName:              customerName,
	}
}

// Encode renders the metadata as the processor's string map. Absent ids are
// sent as empty strings.
func (m CheckoutMetadata) Encode() map[string]string {
	out := map[string]string{
		MetaPaywallID:        uuidString(m.PaywallID),
		MetaCourseID:         uuidString(m.CourseID),
		MetaCohortID:         uuidString(m.CohortID),
		MetaEquipmentDeposit: m.EquipmentDeposit.String(),
		MetaAutoCharge:       strconv.FormatBool(m.EquipmentAutoCharge),
		MetaChargeDaysBefore: strconv.Itoa(m.EquipmentChargeDaysBefore),
	}
	if name := truncateRunes(m.CustomerName, MaxCustomerNameLength); name != "" {
		out[MetaCustomerName] = name
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

type rawCheckoutMetadata struct {
	PaywallID        string `validate:"omitempty,uuid"`
	CourseID         string `validate:"omitempty,uuid"`
	CohortID         string `validate:"omitempty,uuid"`
	EquipmentDeposit string `validate:"omitempty,numeric"`
	AutoCharge       string `validate:"omitempty,oneof=true false"`
	ChargeDaysBefore string
	CustomerName     string `validate:"max=255"`
}

var metadataValidator = validator.New()

// DecodeCheckoutMetadata parses the string map once. Fields that fail
// validation are dropped and reported in the returned error; the rest of the
// metadata is still usable.
func DecodeCheckoutMetadata(raw map[string]string) (CheckoutMetadata, error) {
	r := rawCheckoutMetadata{
		PaywallID:        strings.TrimSpace(raw[MetaPaywallID]),
		CourseID:         strings.TrimSpace(raw[MetaCourseID]),
		CohortID:         strings.TrimSpace(raw[MetaCohortID]),
		EquipmentDeposit: strings.TrimSpace(raw[MetaEquipmentDeposit]),
		AutoCharge:       strings.TrimSpace(raw[MetaAutoCharge]),
		ChargeDaysBefore: strings.TrimSpace(raw[MetaChargeDaysBefore]),
		CustomerName:     raw[MetaCustomerName],
	}

	var invalid []string
	if err := metadataValidator.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return CheckoutMetadata{}, fmt.Errorf("validate metadata: %w", err)
		}
		for _, fe := range verrs {
			invalid = append(invalid, fe.Field())
			switch fe.Field() {
			case "PaywallID":
				r.PaywallID = ""
			case "CourseID":
				r.CourseID = ""
			case "CohortID":
				r.CohortID = ""
			case "EquipmentDeposit":
				r.EquipmentDeposit = ""
			case "AutoCharge":
				r.AutoCharge = ""
			case "CustomerName":
				r.CustomerName = ""
			}
		}
	}

	m := CheckoutMetadata{
		PaywallID:                 parseUUIDPtr(r.PaywallID),
		CourseID:                  parseUUIDPtr(r.CourseID),
		CohortID:                  parseUUIDPtr(r.CohortID),
		EquipmentAutoCharge:       r.AutoCharge == "true",
		EquipmentChargeDaysBefore: ParseDaysBefore(r.ChargeDaysBefore),
		CustomerName:              r.CustomerName,
	}
	if r.EquipmentDeposit != "" {
		d, err := decimal.NewFromString(r.EquipmentDeposit)
		if err != nil || d.IsNegative() {
			invalid = append(invalid, "EquipmentDeposit")
		} else {
			m.EquipmentDeposit = d
		}
	}

	if len(invalid) > 0 {
		return m, fmt.Errorf("invalid checkout metadata fields: %s", strings.Join(invalid, ", "))
	}
	return m, nil
}

func uuidString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func parseUUIDPtr(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
