package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PERIOD DTOs ==========

type InitiatePayrollRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
}

func (r *InitiatePayrollRequest) Validate() error {
	return validatePeriod(r.PeriodMonth, r.PeriodYear)
}

type GeneratePayrollRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
}

func (r *GeneratePayrollRequest) Validate() error {
	return validatePeriod(r.PeriodMonth, r.PeriodYear)
}

func validatePeriod(month, year int) error {
	var errs validator.ValidationErrors

	if month < 1 || month > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if year < 2020 || year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be between 2020 and 2100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type FinalizePayrollRequest struct {
	ID               string `json:"-"`
	OverridePreCheck bool   `json:"override_pre_check"`
}

type MarkPaidRequest struct {
	ID               string `json:"-"`
	PaymentReference string `json:"payment_reference"`
}

func (r *MarkPaidRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PaymentReference) {
		errs = append(errs, validator.ValidationError{Field: "payment_reference", Message: "is required"})
	} else if len(r.PaymentReference) > 100 {
		errs = append(errs, validator.ValidationError{Field: "payment_reference", Message: "must be at most 100 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type VoidPayslipRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *VoidPayslipRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodFilter struct {
	PeriodYear *int    `json:"period_year,omitempty"`
	Status     *string `json:"status,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *PeriodFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !Status(*f.Status).Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "is not a payroll status"})
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodResponse struct {
	ID                         string          `json:"id"`
	CompanyID                  string          `json:"company_id"`
	PeriodMonth                int             `json:"period_month"`
	PeriodYear                 int             `json:"period_year"`
	Status                     string          `json:"status"`
	AttendanceLocked           bool            `json:"attendance_locked"`
	PreCheckCompleted          bool            `json:"pre_check_completed"`
	PreCheckWarnings           []string        `json:"pre_check_warnings,omitempty"`
	EarningsApplied            bool            `json:"earnings_applied"`
	DeductionsApplied          bool            `json:"deductions_applied"`
	PayslipsGenerated          bool            `json:"payslips_generated"`
	PayslipsDistributed        bool            `json:"payslips_distributed"`
	EmployeeCount              int             `json:"employee_count"`
	TotalGross                 decimal.Decimal `json:"total_gross"`
	TotalDeductions            decimal.Decimal `json:"total_deductions"`
	TotalNet                   decimal.Decimal `json:"total_net"`
	TotalEmployerContributions decimal.Decimal `json:"total_employer_contributions"`
	ProcessedBy                *string         `json:"processed_by,omitempty"`
	ProcessedAt                *string         `json:"processed_at,omitempty"`
	FinalizedBy                *string         `json:"finalized_by,omitempty"`
	FinalizedAt                *string         `json:"finalized_at,omitempty"`
	PaidBy                     *string         `json:"paid_by,omitempty"`
	PaidAt                     *string         `json:"paid_at,omitempty"`
	PaymentReference           *string         `json:"payment_reference,omitempty"`
	LockedBy                   *string         `json:"locked_by,omitempty"`
	LockedAt                   *string         `json:"locked_at,omitempty"`
}

type ListPeriodResponse struct {
	Data       []PeriodResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

type PreCheckResponse struct {
	PayrollID string   `json:"payroll_id"`
	Completed bool     `json:"completed"`
	Warnings  []string `json:"warnings"`
}

// ========== GENERATION DTOs ==========

type ItemOutcome string

const (
	OutcomeCreated ItemOutcome = "created"
	OutcomeSkipped ItemOutcome = "skipped"
	OutcomeFailed  ItemOutcome = "failed"
)

type GenerateItem struct {
	EmployeeID   string      `json:"employee_id"`
	EmployeeCode string      `json:"employee_code"`
	Outcome      ItemOutcome `json:"outcome"`
	PayslipID    *string     `json:"payslip_id,omitempty"`
	Reason       string      `json:"reason,omitempty"`
}

// GenerateResult is the batch summary of a generation run. Employees that already had a
// payslip and employees that failed are both counted as skipped; only failures add to Errors.
type GenerateResult struct {
	PayrollID    string         `json:"payroll_id"`
	Status       string         `json:"status"`
	CreatedCount int            `json:"created_count"`
	SkippedCount int            `json:"skipped_count"`
	Errors       []string       `json:"errors"`
	Interrupted  bool           `json:"interrupted,omitempty"`
	Items        []GenerateItem `json:"items"`
}

// ========== PAYSLIP DTOs ==========

type PayslipResponse struct {
	ID                         string                              `json:"id"`
	PayrollPeriodID            string                              `json:"payroll_period_id"`
	EmployeeID                 string                              `json:"employee_id"`
	EmployeeCode               string                              `json:"employee_code"`
	EmployeeName               string                              `json:"employee_name"`
	PeriodMonth                int                                 `json:"period_month"`
	PeriodYear                 int                                 `json:"period_year"`
	Earnings                   map[EarningKey]decimal.Decimal      `json:"earnings"`
	Deductions                 map[DeductionKey]decimal.Decimal    `json:"deductions"`
	EmployerContributions      map[ContributionKey]decimal.Decimal `json:"employer_contributions"`
	GrossSalary                decimal.Decimal                     `json:"gross_salary"`
	TotalDeductions            decimal.Decimal                     `json:"total_deductions"`
	NetSalary                  decimal.Decimal                     `json:"net_salary"`
	TotalEmployerContributions decimal.Decimal                     `json:"total_employer_contributions"`
	DaysInPeriod               int                                 `json:"days_in_period"`
	DaysWorked                 decimal.Decimal                     `json:"days_worked"`
	DaysPresent                int                                 `json:"days_present"`
	DaysAbsent                 int                                 `json:"days_absent"`
	ProRationFactor            decimal.Decimal                     `json:"pro_ration_factor"`
	Tax                        *statutory.TaxComputation           `json:"tax_computation,omitempty"`
	NegativeNet                bool                                `json:"negative_net"`
	Warnings                   []string                            `json:"warnings,omitempty"`
	IsVoided                   bool                                `json:"is_voided"`
	VoidReason                 *string                             `json:"void_reason,omitempty"`
}

func NewPeriodResponse(p Period) PeriodResponse {
	return PeriodResponse{
		ID:                         p.ID,
		CompanyID:                  p.CompanyID,
		PeriodMonth:                p.PeriodMonth,
		PeriodYear:                 p.PeriodYear,
		Status:                     string(p.Status),
		AttendanceLocked:           p.AttendanceLocked,
		PreCheckCompleted:          p.PreCheckCompleted,
		PreCheckWarnings:           p.PreCheckWarnings,
		EarningsApplied:            p.EarningsApplied,
		DeductionsApplied:          p.DeductionsApplied,
		PayslipsGenerated:          p.PayslipsGenerated,
		PayslipsDistributed:        p.PayslipsDistributed,
		EmployeeCount:              p.EmployeeCount,
		TotalGross:                 p.TotalGross,
		TotalDeductions:            p.TotalDeductions,
		TotalNet:                   p.TotalNet,
		TotalEmployerContributions: p.TotalEmployerContributions,
		ProcessedBy:                p.ProcessedBy,
		ProcessedAt:                formatTime(p.ProcessedAt),
		FinalizedBy:                p.FinalizedBy,
		FinalizedAt:                formatTime(p.FinalizedAt),
		PaidBy:                     p.PaidBy,
		PaidAt:                     formatTime(p.PaidAt),
		PaymentReference:           p.PaymentReference,
		LockedBy:                   p.LockedBy,
		LockedAt:                   formatTime(p.LockedAt),
	}
}

func NewPayslipResponse(p Payslip) PayslipResponse {
	return PayslipResponse{
		ID:                         p.ID,
		PayrollPeriodID:            p.PayrollPeriodID,
		EmployeeID:                 p.EmployeeID,
		EmployeeCode:               p.EmployeeCode,
		EmployeeName:               p.EmployeeName,
		PeriodMonth:                p.PeriodMonth,
		PeriodYear:                 p.PeriodYear,
		Earnings:                   p.Earnings,
		Deductions:                 p.Deductions,
		EmployerContributions:      p.EmployerContributions,
		GrossSalary:                p.GrossSalary,
		TotalDeductions:            p.TotalDeductions,
		NetSalary:                  p.NetSalary,
		TotalEmployerContributions: p.TotalEmployerContributions,
		DaysInPeriod:               p.DaysInPeriod,
		DaysWorked:                 p.DaysWorked,
		DaysPresent:                p.DaysPresent,
		DaysAbsent:                 p.DaysAbsent,
		ProRationFactor:            p.ProRationFactor,
		Tax:                        p.Tax,
		NegativeNet:                p.NegativeNet,
		Warnings:                   p.Warnings,
		IsVoided:                   p.IsVoided,
		VoidReason:                 p.VoidReason,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
