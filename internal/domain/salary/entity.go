package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// Structure is one effective-dated salary structure. At most one structure per
// employee is active on any date; older rows are history.
type Structure struct {
	ID                string
	EmployeeID        string
	CompanyID         string
	EffectiveFrom     time.Time
	EffectiveTo       *time.Time
	Basic             decimal.Decimal
	DearnessAllowance decimal.Decimal
	HRA               decimal.Decimal
	SpecialAllowance  decimal.Decimal
	Conveyance        decimal.Decimal
	Medical           decimal.Decimal
	OtherAllowances   decimal.Decimal

	// Optional statutory wage bases. Nil means derive from the components:
	// PF on basic + DA, ESI on gross.
	PFWageBase  *decimal.Decimal
	ESIWageBase *decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveOn reports whether the structure covers date.
func (s Structure) ActiveOn(date time.Time) bool {
	if s.EffectiveFrom.After(date) {
		return false
	}
	return s.EffectiveTo == nil || !s.EffectiveTo.Before(date)
}

// BasicPlusDA is the wage used by PF and gratuity.
func (s Structure) BasicPlusDA() decimal.Decimal {
	return s.Basic.Add(s.DearnessAllowance)
}

// MonthlyGross is the unprorated sum of fixed components.
func (s Structure) MonthlyGross() decimal.Decimal {
	return s.Basic.
		Add(s.DearnessAllowance).
		Add(s.HRA).
		Add(s.SpecialAllowance).
		Add(s.Conveyance).
		Add(s.Medical).
		Add(s.OtherAllowances)
}
