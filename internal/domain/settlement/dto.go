package settlement

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ========== GRATUITY ==========

type GratuityRequest struct {
	EmployeeID string `json:"-"`
	ExitDate   string `json:"exit_date"`
}

func (r *GratuityRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if _, ok := validator.IsValidDate(r.ExitDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "exit_date", Message: "exit_date must be YYYY-MM-DD"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== SETTLEMENT REQUESTS ==========

// LineItems are the amounts only the caller can supply. Nil leaves a value unchanged.
type LineItems struct {
	NoticePeriodAmount   *decimal.Decimal `json:"notice_period_amount,omitempty"`
	UnpaidLeaveDeduction *decimal.Decimal `json:"unpaid_leave_deduction,omitempty"`
	BonusAmount          *decimal.Decimal `json:"bonus_amount,omitempty"`
	OtherPayments        *decimal.Decimal `json:"other_payments,omitempty"`
	OtherDeductions      *decimal.Decimal `json:"other_deductions,omitempty"`
	Remarks              *string          `json:"remarks,omitempty"`
}

func (l LineItems) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	amounts := []struct {
		field string
		value *decimal.Decimal
	}{
		{"notice_period_amount", l.NoticePeriodAmount},
		{"unpaid_leave_deduction", l.UnpaidLeaveDeduction},
		{"bonus_amount", l.BonusAmount},
		{"other_payments", l.OtherPayments},
		{"other_deductions", l.OtherDeductions},
	}
	for _, a := range amounts {
		if a.value != nil && a.value.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: a.field, Message: a.field + " cannot be negative"})
		}
	}
	if l.Remarks != nil && len(*l.Remarks) > 500 {
		errs = append(errs, validator.ValidationError{Field: "remarks", Message: "remarks must not exceed 500 characters"})
	}
	return errs
}

// Apply copies the supplied items onto s.
func (l LineItems) Apply(s *Settlement) {
	if l.NoticePeriodAmount != nil {
		s.NoticePeriodAmount = *l.NoticePeriodAmount
	}
	if l.UnpaidLeaveDeduction != nil {
		s.UnpaidLeaveDeduction = *l.UnpaidLeaveDeduction
	}
	if l.BonusAmount != nil {
		s.BonusAmount = *l.BonusAmount
	}
	if l.OtherPayments != nil {
		s.ManualOtherPayments = *l.OtherPayments
	}
	if l.OtherDeductions != nil {
		s.OtherDeductions = *l.OtherDeductions
	}
	if l.Remarks != nil {
		s.Remarks = l.Remarks
	}
}

type CreateSettlementRequest struct {
	EmployeeID      string `json:"employee_id"`
	SettlementDate  string `json:"settlement_date"`
	LastWorkingDate string `json:"last_working_date"`
	LineItems
}

func (r *CreateSettlementRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	settlementDate, okSettlement := validator.IsValidDate(r.SettlementDate)
	if !okSettlement {
		errs = append(errs, validator.ValidationError{Field: "settlement_date", Message: "settlement_date must be YYYY-MM-DD"})
	}
	lastWorking, okLast := validator.IsValidDate(r.LastWorkingDate)
	if !okLast {
		errs = append(errs, validator.ValidationError{Field: "last_working_date", Message: "last_working_date must be YYYY-MM-DD"})
	}
	if okSettlement && okLast && settlementDate.Before(lastWorking) {
		errs = append(errs, validator.ValidationError{Field: "settlement_date", Message: "settlement_date cannot be before last_working_date"})
	}
	errs = r.LineItems.validate(errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateSettlementRequest struct {
	ID string `json:"-"`
	LineItems
}

func (r *UpdateSettlementRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	errs = r.LineItems.validate(errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MarkSettlementPaidRequest struct {
	ID               string `json:"-"`
	PaymentReference string `json:"payment_reference"`
}

func (r *MarkSettlementPaidRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PaymentReference) {
		errs = append(errs, validator.ValidationError{Field: "payment_reference", Message: "payment_reference is required"})
	} else if len(r.PaymentReference) > 100 {
		errs = append(errs, validator.ValidationError{Field: "payment_reference", Message: "payment_reference must not exceed 100 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CancelSettlementRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *CancelSettlementRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SettlementFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *SettlementFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 100"})
	}
	if f.Status != nil && !Status(*f.Status).Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "unknown settlement status"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSES ==========

type SettlementResponse struct {
	ID              string `json:"id"`
	EmployeeID      string `json:"employee_id"`
	EmployeeCode    string `json:"employee_code"`
	EmployeeName    string `json:"employee_name"`
	SettlementDate  string `json:"settlement_date"`
	LastWorkingDate string `json:"last_working_date"`
	Status          string `json:"status"`

	NoticePeriodAmount   decimal.Decimal `json:"notice_period_amount"`
	EarnedLeaveDays      decimal.Decimal `json:"earned_leave_days"`
	EarnedLeaveAmount    decimal.Decimal `json:"earned_leave_amount"`
	GratuityAmount       decimal.Decimal `json:"gratuity_amount"`
	BonusAmount          decimal.Decimal `json:"bonus_amount"`
	OtherPayments        decimal.Decimal `json:"other_payments"`
	UnpaidLeaveDeduction decimal.Decimal `json:"unpaid_leave_deduction"`
	OutstandingLoans     decimal.Decimal `json:"outstanding_loans"`
	OutstandingAdvances  decimal.Decimal `json:"outstanding_advances"`
	OtherDeductions      decimal.Decimal `json:"other_deductions"`
	GrossAmount          decimal.Decimal `json:"gross_amount"`
	TotalDeductions      decimal.Decimal `json:"total_deductions"`
	NetAmount            decimal.Decimal `json:"net_amount"`

	LastDrawnSalary       decimal.Decimal     `json:"last_drawn_salary"`
	PendingReimbursements []ReimbursementLine `json:"pending_reimbursements"`
	GratuityCalculation   *Gratuity           `json:"gratuity_calculation,omitempty"`
	Warnings              []string            `json:"warnings,omitempty"`
	Remarks               *string             `json:"remarks,omitempty"`

	ApprovedBy       *string `json:"approved_by,omitempty"`
	ApprovedAt       *string `json:"approved_at,omitempty"`
	PaidBy           *string `json:"paid_by,omitempty"`
	PaidAt           *string `json:"paid_at,omitempty"`
	PaymentReference *string `json:"payment_reference,omitempty"`
	CancelledAt      *string `json:"cancelled_at,omitempty"`
	CancelReason     *string `json:"cancel_reason,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

type ListSettlementResponse struct {
	Data       []SettlementResponse `json:"data"`
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
}

func NewSettlementResponse(s Settlement) SettlementResponse {
	lines := s.PendingReimbursements
	if lines == nil {
		lines = []ReimbursementLine{}
	}
	return SettlementResponse{
		ID:                    s.ID,
		EmployeeID:            s.EmployeeID,
		EmployeeCode:          s.EmployeeCode,
		EmployeeName:          s.EmployeeName,
		SettlementDate:        s.SettlementDate.Format(dateLayout),
		LastWorkingDate:       s.LastWorkingDate.Format(dateLayout),
		Status:                string(s.Status),
		NoticePeriodAmount:    s.NoticePeriodAmount,
		EarnedLeaveDays:       s.EarnedLeaveDays,
		EarnedLeaveAmount:     s.EarnedLeaveAmount,
		GratuityAmount:        s.GratuityAmount,
		BonusAmount:           s.BonusAmount,
		OtherPayments:         s.OtherPayments,
		UnpaidLeaveDeduction:  s.UnpaidLeaveDeduction,
		OutstandingLoans:      s.OutstandingLoans,
		OutstandingAdvances:   s.OutstandingAdvances,
		OtherDeductions:       s.OtherDeductions,
		GrossAmount:           s.GrossAmount,
		TotalDeductions:       s.TotalDeductions,
		NetAmount:             s.NetAmount,
		LastDrawnSalary:       s.LastDrawnSalary,
		PendingReimbursements: lines,
		GratuityCalculation:   s.GratuityCalculation,
		Warnings:              s.Warnings,
		Remarks:               s.Remarks,
		ApprovedBy:            s.ApprovedBy,
		ApprovedAt:            formatTime(s.ApprovedAt),
		PaidBy:                s.PaidBy,
		PaidAt:                formatTime(s.PaidAt),
		PaymentReference:      s.PaymentReference,
		CancelledAt:           formatTime(s.CancelledAt),
		CancelReason:          s.CancelReason,
		CreatedAt:             s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             s.UpdatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
