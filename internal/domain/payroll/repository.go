package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll.
// All methods include companyID parameter to prevent cross-company data access attacks.
type PayrollRepository interface {
	// Settings
	GetSettings(ctx context.Context, companyID string) (Settings, error)

	// Periods

	// UpsertPeriod inserts the period unless one exists for (company, month, year); either way
	// the stored row is returned and created tells which happened.
	UpsertPeriod(ctx context.Context, period Period) (stored Period, created bool, err error)
	GetPeriodByID(ctx context.Context, companyID, id string) (Period, error)
	GetPeriodByMonth(ctx context.Context, companyID string, month, year int) (Period, error)
	ListPeriods(ctx context.Context, companyID string, filter PeriodFilter) ([]Period, int64, error)
	// UpdatePeriod persists status, stage flags and actor stamps. Totals are owned by RecomputeTotals.
	UpdatePeriod(ctx context.Context, period Period) error
	// RecomputeTotals rewrites the period aggregates from its non-voided payslips in one statement.
	RecomputeTotals(ctx context.Context, companyID, periodID string) (Totals, error)
	// ListStaleProcessing returns, across companies, periods still processing with attendance
	// locked and payslips incomplete that were last touched before staleBefore.
	ListStaleProcessing(ctx context.Context, staleBefore time.Time) ([]Period, error)
	// PreviousReportable returns up to limit reportable periods before (month, year), newest first.
	PreviousReportable(ctx context.Context, companyID string, month, year, limit int) ([]Period, error)

	// Payslips

	// InsertPayslip stores the payslip unless a non-voided one exists for (period, employee),
	// in which case inserted is false and nothing changes.
	InsertPayslip(ctx context.Context, payslip Payslip) (stored Payslip, inserted bool, err error)
	GetPayslip(ctx context.Context, companyID, id string) (Payslip, error)
	ListPayslips(ctx context.Context, companyID, periodID string, includeVoided bool) ([]Payslip, error)
	// PayslipEmployeeIDs returns the employees holding a non-voided payslip in the period.
	PayslipEmployeeIDs(ctx context.Context, companyID, periodID string) (map[string]bool, error)
	VoidPayslip(ctx context.Context, companyID, id, reason, voidedBy string) error
	// LatestFinalizedPayslip returns the employee's newest non-voided payslip in a finalized
	// or paid period.
	LatestFinalizedPayslip(ctx context.Context, companyID, employeeID string) (Payslip, error)
	// YearToDate sums the employee's non-voided payslips of financial year fy in periods
	// before (month, year).
	YearToDate(ctx context.Context, companyID, employeeID string, fy, month, year int) (YearToDate, error)

	// Supplements
	PendingSupplements(ctx context.Context, companyID, employeeID string, month, year int) ([]Supplement, error)
	MarkSupplementsProcessed(ctx context.Context, ids []string, payslipID string) error
	ReleaseSupplements(ctx context.Context, payslipID string) error
}
