package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
)

type reportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepository{db: db}
}

// PayslipRows implements report.ReportRepository.
func (r *reportRepository) PayslipRows(ctx context.Context, companyID, periodID string) ([]report.PayslipRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `,
			e.pan, e.uan, e.esic_number, e.work_state,
			e.bank_name, e.bank_ifsc, e.bank_account_encrypted, e.bank_account_holder
		FROM payslips ps
		JOIN employees e ON e.id = ps.employee_id
		WHERE ps.company_id = $1 AND ps.payroll_period_id = $2 AND NOT ps.is_voided
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, companyID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payslip rows: %w", err)
	}
	defer rows.Close()

	var result []report.PayslipRow
	for rows.Next() {
		var row report.PayslipRow
		p, err := scanPayslip(rows,
			&row.PAN, &row.UAN, &row.ESICNumber, &row.WorkState,
			&row.BankName, &row.BankIFSC, &row.BankAccountEncrypted, &row.BankAccountHolder,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip row: %w", err)
		}
		row.Payslip = p
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payslip rows: %w", err)
	}

	return result, nil
}
