package statutory

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialYear returns the starting calendar year of the April..March financial year containing t.
func FinancialYear(t time.Time) int {
	if t.Month() >= time.April {
		return t.Year()
	}
	return t.Year() - 1
}

// MonthIndex maps a calendar month to its position in the financial year (April = 0, March = 11).
func MonthIndex(m time.Month) int {
	return (int(m) + 8) % 12
}

// MonthsRemaining counts payroll months left in the financial year, m included.
func MonthsRemaining(m time.Month) int {
	return 12 - MonthIndex(m)
}

// Validity is the financial-year window a rate row applies to.
type Validity struct {
	EffectiveFrom int
	EffectiveTo   *int
}

func (v Validity) Covers(fy int) bool {
	if v.EffectiveFrom > fy {
		return false
	}
	return v.EffectiveTo == nil || *v.EffectiveTo >= fy
}

type PFRule struct {
	Validity
	ID             string
	EmployeeRate   decimal.Decimal
	EmployerRate   decimal.Decimal // EPF + EPS
	EPSRate        decimal.Decimal
	WageCeiling    decimal.Decimal
	EPSWageCeiling decimal.Decimal
	CreatedAt      time.Time
}

type ESIRule struct {
	Validity
	ID           string
	EmployeeRate decimal.Decimal
	EmployerRate decimal.Decimal
	WageCeiling  decimal.Decimal
	CreatedAt    time.Time
}

// PTSlab is one gross band of a professional tax table. MaxGross nil means no upper bound.
// MonthlyAmounts is indexed April..March.
type PTSlab struct {
	MinGross       decimal.Decimal
	MaxGross       *decimal.Decimal
	MonthlyAmounts [12]decimal.Decimal
}

func (s PTSlab) Matches(gross decimal.Decimal) bool {
	if gross.LessThan(s.MinGross) {
		return false
	}
	return s.MaxGross == nil || gross.LessThanOrEqual(*s.MaxGross)
}

// PTTable is the professional tax schedule of one state. A table without slabs means the
// state levies no professional tax.
type PTTable struct {
	Validity
	ID        string
	State     string
	Slabs     []PTSlab
	CreatedAt time.Time
}

type LWFRate struct {
	Validity
	ID             string
	State          string
	EmployeeAmount decimal.Decimal
	EmployerAmount decimal.Decimal
	Months         []time.Month
	CreatedAt      time.Time
}

func (r LWFRate) DueIn(m time.Month) bool {
	for _, due := range r.Months {
		if due == m {
			return true
		}
	}
	return false
}

type Regime string

const (
	RegimeOld Regime = "old"
	RegimeNew Regime = "new"
)

func (r Regime) Valid() bool {
	return r == RegimeOld || r == RegimeNew
}

// TaxSlab taxes income above From and up to To (nil for the top slab) at Rate percent.
type TaxSlab struct {
	From decimal.Decimal
	To   *decimal.Decimal
	Rate decimal.Decimal
}

type TDSTable struct {
	Validity
	ID                string
	Regime            Regime
	Slabs             []TaxSlab
	StandardDeduction decimal.Decimal
	RebateLimit       decimal.Decimal
	RebateMax         decimal.Decimal
	CessRate          decimal.Decimal
	AllowsExemptions  bool
	CreatedAt         time.Time
}

type Section string

const (
	Section80C   Section = "80C"
	Section80D   Section = "80D"
	Section80G   Section = "80G"
	Section80TTA Section = "80TTA"
	Section24B   Section = "24B"
	Section80EE  Section = "80EE"
)

var Sections = []Section{Section80C, Section80D, Section80G, Section80TTA, Section24B, Section80EE}

// ExemptionCaps limits each declared section. A section without a cap is allowed in full.
type ExemptionCaps struct {
	Validity
	ID   string
	Caps map[Section]decimal.Decimal
}

// Declaration is an employee's investment declaration for one financial year.
type Declaration struct {
	ID            string
	EmployeeID    string
	FinancialYear int
	Regime        *Regime
	Amounts       map[Section]decimal.Decimal
}

// Tables is every rate row on file, across all years.
type Tables struct {
	PF   []PFRule
	ESI  []ESIRule
	PT   []PTTable
	LWF  []LWFRate
	TDS  []TDSTable
	Caps []ExemptionCaps
}

// TaxComputation is the annual projection behind one month's TDS, kept on the payslip for audit.
type TaxComputation struct {
	Regime            Regime          `json:"regime"`
	FinancialYear     int             `json:"financial_year"`
	AnnualGross       decimal.Decimal `json:"annual_gross"`
	StandardDeduction decimal.Decimal `json:"standard_deduction"`
	Exemptions        decimal.Decimal `json:"exemptions"`
	AnnualTaxable     decimal.Decimal `json:"annual_taxable"`
	TaxBeforeRebate   decimal.Decimal `json:"tax_before_rebate"`
	Rebate            decimal.Decimal `json:"rebate"`
	Cess              decimal.Decimal `json:"cess"`
	AnnualTax         decimal.Decimal `json:"annual_tax"`
	DeductedYTD       decimal.Decimal `json:"deducted_ytd"`
	MonthsRemaining   int             `json:"months_remaining"`
	Monthly           decimal.Decimal `json:"monthly"`
}
