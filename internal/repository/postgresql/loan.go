package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type loanRepository struct {
	db *database.DB
}

func NewLoanRepository(db *database.DB) loan.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `
	l.id, l.company_id, l.employee_id, e.employee_code, l.type, l.principal, l.tenure_months,
	l.emi_amount, l.outstanding_amount, l.status, l.disbursed_at, l.created_at
`

func (r *loanRepository) queryLoans(ctx context.Context, query string, args ...any) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		var l loan.Loan
		if err := rows.Scan(
			&l.ID, &l.CompanyID, &l.EmployeeID, &l.EmployeeCode, &l.Type, &l.Principal, &l.TenureMonths,
			&l.EMIAmount, &l.OutstandingAmount, &l.Status, &l.DisbursedAt, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// Recoverable implements loan.LoanRepository.
func (r *loanRepository) Recoverable(ctx context.Context, companyID, employeeID string) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + `
		FROM loans l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.company_id = $1 AND l.employee_id = $2
			AND l.status IN ('approved', 'active')
			AND l.outstanding_amount > 0
		ORDER BY l.created_at
	`
	return r.queryLoans(ctx, query, companyID, employeeID)
}

// AwaitingDisbursement implements loan.LoanRepository.
func (r *loanRepository) AwaitingDisbursement(ctx context.Context, companyID string) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + `
		FROM loans l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.company_id = $1 AND l.status = 'approved' AND l.disbursed_at IS NULL
		ORDER BY e.employee_code, l.created_at
	`
	return r.queryLoans(ctx, query, companyID)
}

// DueInstallments implements loan.LoanRepository.
func (r *loanRepository) DueInstallments(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]loan.EMI, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT li.id, li.loan_id, l.type, li.installment_no, li.due_date, li.amount, li.status, li.payslip_id
		FROM loan_installments li
		JOIN loans l ON l.id = li.loan_id
		WHERE l.company_id = $1 AND l.employee_id = $2
			AND l.status IN ('approved', 'active')
			AND l.outstanding_amount > 0
			AND li.status = 'pending'
			AND li.due_date BETWEEN $3 AND $4
		ORDER BY li.due_date, li.installment_no
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list due installments: %w", err)
	}
	defer rows.Close()

	var emis []loan.EMI
	for rows.Next() {
		var emi loan.EMI
		if err := rows.Scan(&emi.ID, &emi.LoanID, &emi.LoanType, &emi.InstallmentNo, &emi.DueDate, &emi.Amount, &emi.Status, &emi.PayslipID); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		emis = append(emis, emi)
	}
	return emis, rows.Err()
}

// MarkInstallmentPaid implements loan.LoanRepository.
func (r *loanRepository) MarkInstallmentPaid(ctx context.Context, emiID, payslipID string) error {
	q := GetQuerier(ctx, r.db)

	var loanID string
	var amount decimal.Decimal
	err := q.QueryRow(ctx, `
		UPDATE loan_installments
		SET status = 'paid', payslip_id = $2, paid_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING loan_id, amount
	`, emiID, payslipID).Scan(&loanID, &amount)
	if err != nil {
		return r.installmentError(ctx, emiID, err)
	}

	// Reduce the outstanding balance and close the loan once fully recovered.
	_, err = q.Exec(ctx, `
		UPDATE loans
		SET outstanding_amount = GREATEST(outstanding_amount - $2, 0),
			status = CASE WHEN outstanding_amount - $2 <= 0 THEN 'closed' ELSE 'active' END,
			updated_at = NOW()
		WHERE id = $1
	`, loanID, amount)
	if err != nil {
		return fmt.Errorf("failed to update loan outstanding: %w", err)
	}
	return nil
}

func (r *loanRepository) installmentError(ctx context.Context, emiID string, err error) error {
	q := GetQuerier(ctx, r.db)

	var status string
	if lookupErr := q.QueryRow(ctx, `SELECT status FROM loan_installments WHERE id = $1`, emiID).Scan(&status); lookupErr != nil {
		return loan.ErrEMINotFound
	}
	if status == string(loan.EMIStatusPaid) {
		return loan.ErrEMIAlreadyPaid
	}
	return fmt.Errorf("failed to mark installment paid: %w", err)
}

// RevertInstallments implements loan.LoanRepository.
func (r *loanRepository) RevertInstallments(ctx context.Context, payslipID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH reverted AS (
			UPDATE loan_installments
			SET status = 'pending', payslip_id = NULL, paid_at = NULL
			WHERE payslip_id = $1 AND status = 'paid'
			RETURNING loan_id, amount
		), per_loan AS (
			SELECT loan_id, SUM(amount) AS amount FROM reverted GROUP BY loan_id
		)
		UPDATE loans l
		SET outstanding_amount = l.outstanding_amount + per_loan.amount,
			status = 'active',
			updated_at = NOW()
		FROM per_loan
		WHERE l.id = per_loan.loan_id
	`

	if _, err := q.Exec(ctx, query, payslipID); err != nil {
		return fmt.Errorf("failed to revert installments: %w", err)
	}
	return nil
}

// PendingReimbursements implements loan.LoanRepository.
func (r *loanRepository) PendingReimbursements(ctx context.Context, companyID, employeeID string) ([]loan.Reimbursement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, category, amount, status
		FROM reimbursements
		WHERE company_id = $1 AND employee_id = $2 AND status IN ('pending', 'approved')
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, companyID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reimbursements: %w", err)
	}
	defer rows.Close()

	var claims []loan.Reimbursement
	for rows.Next() {
		var c loan.Reimbursement
		if err := rows.Scan(&c.ID, &c.EmployeeID, &c.Category, &c.Amount, &c.Status); err != nil {
			return nil, fmt.Errorf("failed to scan reimbursement: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}
