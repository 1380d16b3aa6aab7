package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/report"
)

// ReportRepository joins non-voided payslips with employee records held by the other
// memory repositories.
type ReportRepository struct {
	payrolls  *PayrollRepository
	employees *EmployeeRepository
}

func NewReportRepository(payrolls *PayrollRepository, employees *EmployeeRepository) *ReportRepository {
	return &ReportRepository{payrolls: payrolls, employees: employees}
}

func (r *ReportRepository) PayslipRows(ctx context.Context, companyID, periodID string) ([]report.PayslipRow, error) {
	payslips, err := r.payrolls.ListPayslips(ctx, companyID, periodID, false)
	if err != nil {
		return nil, err
	}

	rows := make([]report.PayslipRow, 0, len(payslips))
	for _, p := range payslips {
		row := report.PayslipRow{Payslip: p}
		if e, err := r.employees.GetByID(ctx, companyID, p.EmployeeID); err == nil {
			row.PAN = e.PAN
			row.UAN = e.UAN
			row.ESICNumber = e.ESICNumber
			row.WorkState = e.WorkState
			row.BankName = e.BankName
			row.BankIFSC = e.BankIFSC
			row.BankAccountEncrypted = e.BankAccountEncrypted
			row.BankAccountHolder = e.BankAccountHolder
		}
		rows = append(rows, row)
	}
	return rows, nil
}
