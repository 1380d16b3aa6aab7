package payroll

import (
	"context"
	"time"
)

// PayrollService is the payroll lifecycle controller. Company and actor come from the JWT
// claims carried by ctx.
type PayrollService interface {
	InitiatePayroll(ctx context.Context, req InitiatePayrollRequest) (PeriodResponse, error)
	GetPayroll(ctx context.Context, id string) (PeriodResponse, error)
	ListPayrolls(ctx context.Context, filter PeriodFilter) (ListPeriodResponse, error)

	LockAttendance(ctx context.Context, id string) (PeriodResponse, error)
	UnlockAttendance(ctx context.Context, id string) (PeriodResponse, error)
	// AttendanceEditable reports whether attendance on date may still change.
	AttendanceEditable(ctx context.Context, date time.Time) (bool, error)
	RunPreCheck(ctx context.Context, id string) (PreCheckResponse, error)

	GeneratePayroll(ctx context.Context, req GeneratePayrollRequest) (GenerateResult, error)
	FinalizePayroll(ctx context.Context, req FinalizePayrollRequest) (PeriodResponse, error)
	MarkPaid(ctx context.Context, req MarkPaidRequest) (PeriodResponse, error)
	MarkDistributed(ctx context.Context, id string) (PeriodResponse, error)
	Lock(ctx context.Context, id string) (PeriodResponse, error)
	Unlock(ctx context.Context, id string) (PeriodResponse, error)

	ListPayslips(ctx context.Context, periodID string) ([]PayslipResponse, error)
	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
	VoidPayslip(ctx context.Context, req VoidPayslipRequest) (PeriodResponse, error)

	// ResumeInterrupted re-runs generation for processing periods left incomplete for longer
	// than staleAfter. It runs without request claims.
	ResumeInterrupted(ctx context.Context, staleAfter time.Duration) (int, error)
}
