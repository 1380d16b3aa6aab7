package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a payroll period.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusProcessing Status = "processing"
	StatusLocked     Status = "locked"
	StatusFinalized  Status = "finalized"
	StatusPaid       Status = "paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusProcessing, StatusLocked, StatusFinalized, StatusPaid:
		return true
	}
	return false
}

// Reportable reports whether statutory reports may be built from a period in this state.
func (s Status) Reportable() bool {
	return s == StatusFinalized || s == StatusLocked || s == StatusPaid
}

// Period is one payroll run, unique per (company, month, year).
type Period struct {
	ID          string
	CompanyID   string
	PeriodMonth int
	PeriodYear  int
	Status      Status
	// StatusBeforeLock is the state Unlock returns to.
	StatusBeforeLock *Status

	AttendanceLocked    bool
	PreCheckCompleted   bool
	PreCheckWarnings    []string
	EarningsApplied     bool
	DeductionsApplied   bool
	PayslipsGenerated   bool
	PayslipsDistributed bool

	Totals

	InitiatedBy      *string
	ProcessedBy      *string
	ProcessedAt      *time.Time
	FinalizedBy      *string
	FinalizedAt      *time.Time
	PaidBy           *string
	PaidAt           *time.Time
	PaymentReference *string
	LockedBy         *string
	LockedAt         *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Totals are the period aggregates, always equal to the sums over non-voided payslips.
type Totals struct {
	EmployeeCount              int
	TotalGross                 decimal.Decimal
	TotalDeductions            decimal.Decimal
	TotalNet                   decimal.Decimal
	TotalEmployerContributions decimal.Decimal
}

// Start is the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.PeriodYear, time.Month(p.PeriodMonth), 1, 0, 0, 0, 0, time.UTC)
}

// End is the last day of the period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

func (p Period) FinancialYear() int {
	return statutory.FinancialYear(p.Start())
}

// Ordinal orders periods chronologically.
func Ordinal(month, year int) int {
	return year*12 + month - 1
}

// Settings is the per-company payroll configuration.
type Settings struct {
	CompanyID         string
	DefaultRegime     statutory.Regime
	PayNonWorkingDays bool
	UpdatedAt         time.Time
}

type EarningKey string

const (
	EarningBasic             EarningKey = "basic"
	EarningDearnessAllowance EarningKey = "dearness_allowance"
	EarningHRA               EarningKey = "hra"
	EarningSpecialAllowance  EarningKey = "special_allowance"
	EarningConveyance        EarningKey = "conveyance"
	EarningMedical           EarningKey = "medical"
	EarningArrears           EarningKey = "arrears"
	EarningBonus             EarningKey = "bonus"
	EarningIncentive         EarningKey = "incentive"
	EarningOtherAllowances   EarningKey = "other_allowances"
)

var EarningKeys = []EarningKey{
	EarningBasic, EarningDearnessAllowance, EarningHRA, EarningSpecialAllowance, EarningConveyance,
	EarningMedical, EarningArrears, EarningBonus, EarningIncentive, EarningOtherAllowances,
}

type DeductionKey string

const (
	DeductionPF              DeductionKey = "pf"
	DeductionESI             DeductionKey = "esi"
	DeductionProfessionalTax DeductionKey = "professional_tax"
	DeductionLWF             DeductionKey = "lwf"
	DeductionTDS             DeductionKey = "tds"
	DeductionLoanEMI         DeductionKey = "loan_emi"
	DeductionSalaryAdvance   DeductionKey = "salary_advance"
	DeductionOther           DeductionKey = "other_deductions"
)

var DeductionKeys = []DeductionKey{
	DeductionPF, DeductionESI, DeductionProfessionalTax, DeductionLWF, DeductionTDS,
	DeductionLoanEMI, DeductionSalaryAdvance, DeductionOther,
}

type ContributionKey string

const (
	ContributionPFEmployer  ContributionKey = "pf_employer"
	ContributionEPS         ContributionKey = "eps"
	ContributionESIEmployer ContributionKey = "esi_employer"
	ContributionLWFEmployer ContributionKey = "lwf_employer"
)

var ContributionKeys = []ContributionKey{
	ContributionPFEmployer, ContributionEPS, ContributionESIEmployer, ContributionLWFEmployer,
}

// Earnings is a closed map of earning components. Amounts are rounded to two decimals and
// never negative; keys outside EarningKeys land in other_allowances.
type Earnings map[EarningKey]decimal.Decimal

func (e Earnings) Add(key EarningKey, amount decimal.Decimal) {
	if !knownEarning(key) {
		key = EarningOtherAllowances
	}
	e[key] = money.Round2(e[key].Add(money.NonNegative(amount)))
}

// Normalize folds unknown keys into other_allowances and fills missing keys with zero.
func (e Earnings) Normalize() Earnings {
	out := make(Earnings, len(EarningKeys))
	for _, k := range EarningKeys {
		out[k] = decimal.Zero
	}
	for k, v := range e {
		out.Add(k, v)
	}
	return out
}

func (e Earnings) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range e {
		total = total.Add(v)
	}
	return money.Round2(total)
}

func knownEarning(key EarningKey) bool {
	for _, k := range EarningKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Deductions is the closed map of employee deductions; unknown keys land in other_deductions.
type Deductions map[DeductionKey]decimal.Decimal

func (d Deductions) Add(key DeductionKey, amount decimal.Decimal) {
	if !knownDeduction(key) {
		key = DeductionOther
	}
	d[key] = money.Round2(d[key].Add(money.NonNegative(amount)))
}

func (d Deductions) Normalize() Deductions {
	out := make(Deductions, len(DeductionKeys))
	for _, k := range DeductionKeys {
		out[k] = decimal.Zero
	}
	for k, v := range d {
		out.Add(k, v)
	}
	return out
}

func (d Deductions) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range d {
		total = total.Add(v)
	}
	return money.Round2(total)
}

func knownDeduction(key DeductionKey) bool {
	for _, k := range DeductionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Contributions are employer-side statutory amounts; they are not part of the employee's net.
type Contributions map[ContributionKey]decimal.Decimal

func (c Contributions) Add(key ContributionKey, amount decimal.Decimal) {
	c[key] = money.Round2(c[key].Add(money.NonNegative(amount)))
}

func (c Contributions) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range c {
		total = total.Add(v)
	}
	return money.Round2(total)
}

const WarningNegativeNet = "negative_net"
const WarningZeroAttendance = "zero_attendance"

// Payslip is the result of one employee in one period, unique per (period, employee).
type Payslip struct {
	ID              string
	PayrollPeriodID string
	CompanyID       string
	EmployeeID      string
	PeriodMonth     int
	PeriodYear      int

	Earnings              Earnings
	Deductions            Deductions
	EmployerContributions Contributions

	GrossSalary                decimal.Decimal
	TotalDeductions            decimal.Decimal
	NetSalary                  decimal.Decimal
	TotalEmployerContributions decimal.Decimal

	DaysInPeriod    int
	DaysWorked      decimal.Decimal
	DaysPresent     int
	DaysAbsent      int
	HalfDays        int
	ProRationFactor decimal.Decimal
	PFWage          decimal.Decimal
	ESIApplicable   bool
	Tax             *statutory.TaxComputation

	NegativeNet bool
	Warnings    []string

	IsVoided   bool
	VoidReason *string
	VoidedBy   *string
	VoidedAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined fields
	EmployeeCode string
	EmployeeName string
}

// Recalculate derives the totals from the component maps.
func (p *Payslip) Recalculate() {
	p.GrossSalary = p.Earnings.Total()
	p.TotalDeductions = p.Deductions.Total()
	p.NetSalary = p.GrossSalary.Sub(p.TotalDeductions)
	p.TotalEmployerContributions = p.EmployerContributions.Total()
	p.NegativeNet = p.NetSalary.IsNegative()
}

type SupplementType string

const (
	SupplementArrears   SupplementType = "arrears"
	SupplementBonus     SupplementType = "bonus"
	SupplementIncentive SupplementType = "incentive"
	SupplementOther     SupplementType = "other"
)

// EarningKey maps a supplement to the earnings component it is paid through.
func (t SupplementType) EarningKey() EarningKey {
	switch t {
	case SupplementArrears:
		return EarningArrears
	case SupplementBonus:
		return EarningBonus
	case SupplementIncentive:
		return EarningIncentive
	}
	return EarningOtherAllowances
}

type SupplementStatus string

const (
	SupplementPending  SupplementStatus = "pending"
	SupplementApproved SupplementStatus = "approved"
	SupplementRejected SupplementStatus = "rejected"
)

// Supplement is a one-off payment; only approved ones are paid through a payslip.
type Supplement struct {
	ID          string
	CompanyID   string
	EmployeeID  string
	Type        SupplementType
	Status      SupplementStatus
	Amount      decimal.Decimal
	PeriodMonth int
	PeriodYear  int
	Processed   bool
	PayslipID   *string
}

// YearToDate sums earlier non-voided payslips of the same financial year.
type YearToDate struct {
	TaxableIncome decimal.Decimal
	TDSDeducted   decimal.Decimal
}
