package settlement

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Editable reports whether line items may still change.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusPending
}

// Terminal reports whether the settlement is closed for good.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// SalarySource names where the last drawn salary was read from.
type SalarySource string

const (
	SourcePayslip   SalarySource = "payslip"
	SourceStructure SalarySource = "salary_structure"
	SourceNone      SalarySource = "none"
)

// GratuityCalculation keeps the inputs of a gratuity figure for audit.
type GratuityCalculation struct {
	LastDrawnSalary decimal.Decimal `json:"last_drawn_salary"`
	Source          SalarySource    `json:"source"`
	GratuityPerYear decimal.Decimal `json:"gratuity_per_year"`
	UncappedAmount  decimal.Decimal `json:"uncapped_amount"`
	Cap             decimal.Decimal `json:"cap"`
	Capped          bool            `json:"capped"`
	Formula         string          `json:"formula"`
}

// Gratuity is the outcome of a gratuity computation.
type Gratuity struct {
	EmployeeID     string              `json:"employee_id"`
	JoiningDate    string              `json:"joining_date"`
	ExitDate       string              `json:"exit_date"`
	Eligible       bool                `json:"eligible"`
	YearsOfService decimal.Decimal     `json:"years_of_service"`
	CompletedYears int                 `json:"completed_years"`
	GratuityAmount decimal.Decimal     `json:"gratuity_amount"`
	Reason         string              `json:"reason,omitempty"`
	Warnings       []string            `json:"warnings,omitempty"`
	Calculation    GratuityCalculation `json:"calculation"`
}

// ReimbursementLine is one claim folded into a settlement's other payments.
type ReimbursementLine struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Status   string          `json:"status"`
}

type Settlement struct {
	ID              string
	CompanyID       string
	EmployeeID      string
	EmployeeCode    string
	EmployeeName    string
	SettlementDate  time.Time
	LastWorkingDate time.Time
	Status          Status

	// Additions
	NoticePeriodAmount  decimal.Decimal
	EarnedLeaveDays     decimal.Decimal
	EarnedLeaveAmount   decimal.Decimal
	GratuityAmount      decimal.Decimal
	BonusAmount         decimal.Decimal
	ManualOtherPayments decimal.Decimal
	ReimbursementAmount decimal.Decimal
	OtherPayments       decimal.Decimal // manual other payments + reimbursements

	// Deductions
	UnpaidLeaveDeduction decimal.Decimal
	OutstandingLoans     decimal.Decimal
	OutstandingAdvances  decimal.Decimal
	OtherDeductions      decimal.Decimal

	GrossAmount     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetAmount       decimal.Decimal

	LastDrawnSalary       decimal.Decimal
	PendingReimbursements []ReimbursementLine
	GratuityCalculation   *Gratuity
	Warnings              []string
	Remarks               *string

	CreatedBy        *string
	ApprovedBy       *string
	ApprovedAt       *time.Time
	PaidBy           *string
	PaidAt           *time.Time
	PaymentReference *string
	CancelledBy      *string
	CancelledAt      *time.Time
	CancelReason     *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Recalculate rounds every line item and derives the totals from them.
func (s *Settlement) Recalculate() {
	for _, d := range []*decimal.Decimal{
		&s.NoticePeriodAmount, &s.EarnedLeaveAmount, &s.GratuityAmount, &s.BonusAmount,
		&s.ManualOtherPayments, &s.ReimbursementAmount, &s.UnpaidLeaveDeduction,
		&s.OutstandingLoans, &s.OutstandingAdvances, &s.OtherDeductions,
	} {
		*d = money.Round2(money.NonNegative(*d))
	}

	s.OtherPayments = s.ManualOtherPayments.Add(s.ReimbursementAmount)
	s.GrossAmount = money.Sum(s.NoticePeriodAmount, s.EarnedLeaveAmount, s.GratuityAmount, s.BonusAmount, s.OtherPayments)
	s.TotalDeductions = money.Sum(s.UnpaidLeaveDeduction, s.OutstandingLoans, s.OutstandingAdvances, s.OtherDeductions)
	s.NetAmount = s.GrossAmount.Sub(s.TotalDeductions)
}
