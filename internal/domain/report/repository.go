package report

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
)

// PayslipRow is a payslip joined with the employee's statutory and bank details.
type PayslipRow struct {
	Payslip              payroll.Payslip
	PAN                  *string
	UAN                  *string
	ESICNumber           *string
	WorkState            string
	BankName             string
	BankIFSC             string
	BankAccountEncrypted []byte
	BankAccountHolder    *string
}

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// PayslipRows returns the non-voided payslips of a period ordered by employee code.
	PayslipRows(ctx context.Context, companyID, periodID string) ([]PayslipRow, error)
}
