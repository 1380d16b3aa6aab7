package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/settlement"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settlementRepository struct {
	db *database.DB
}

func NewSettlementRepository(db *database.DB) settlement.SettlementRepository {
	return &settlementRepository{db: db}
}

const settlementColumns = `
	s.id, s.company_id, s.employee_id, e.employee_code, e.full_name, s.settlement_date, s.last_working_date, s.status,
	s.notice_period_amount, s.earned_leave_days, s.earned_leave_amount, s.gratuity_amount, s.bonus_amount,
	s.manual_other_payments, s.reimbursement_amount, s.other_payments,
	s.unpaid_leave_deduction, s.outstanding_loans, s.outstanding_advances, s.other_deductions,
	s.gross_amount, s.total_deductions, s.net_amount, s.last_drawn_salary,
	s.pending_reimbursements, s.gratuity_calculation, s.warnings, s.remarks,
	s.created_by, s.approved_by, s.approved_at, s.paid_by, s.paid_at, s.payment_reference,
	s.cancelled_by, s.cancelled_at, s.cancel_reason, s.created_at, s.updated_at
`

func scanSettlement(row pgx.Row) (settlement.Settlement, error) {
	var s settlement.Settlement
	var reimbursements, gratuity, warnings []byte
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.EmployeeID, &s.EmployeeCode, &s.EmployeeName, &s.SettlementDate, &s.LastWorkingDate, &s.Status,
		&s.NoticePeriodAmount, &s.EarnedLeaveDays, &s.EarnedLeaveAmount, &s.GratuityAmount, &s.BonusAmount,
		&s.ManualOtherPayments, &s.ReimbursementAmount, &s.OtherPayments,
		&s.UnpaidLeaveDeduction, &s.OutstandingLoans, &s.OutstandingAdvances, &s.OtherDeductions,
		&s.GrossAmount, &s.TotalDeductions, &s.NetAmount, &s.LastDrawnSalary,
		&reimbursements, &gratuity, &warnings, &s.Remarks,
		&s.CreatedBy, &s.ApprovedBy, &s.ApprovedAt, &s.PaidBy, &s.PaidAt, &s.PaymentReference,
		&s.CancelledBy, &s.CancelledAt, &s.CancelReason, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return settlement.Settlement{}, err
	}

	if err := fromJSONB(reimbursements, &s.PendingReimbursements); err != nil {
		return settlement.Settlement{}, err
	}
	if err := fromJSONB(warnings, &s.Warnings); err != nil {
		return settlement.Settlement{}, err
	}
	if len(gratuity) > 0 && string(gratuity) != "null" {
		s.GratuityCalculation = new(settlement.Gratuity)
		if err := fromJSONB(gratuity, s.GratuityCalculation); err != nil {
			return settlement.Settlement{}, err
		}
	}
	return s, nil
}

// settlementJSON encodes the JSONB columns of a settlement.
func settlementJSON(s settlement.Settlement) (reimbursements, gratuity, warnings []byte, err error) {
	lines := s.PendingReimbursements
	if lines == nil {
		lines = []settlement.ReimbursementLine{}
	}
	if reimbursements, err = toJSONB(lines); err != nil {
		return nil, nil, nil, err
	}
	if s.GratuityCalculation != nil {
		if gratuity, err = toJSONB(s.GratuityCalculation); err != nil {
			return nil, nil, nil, err
		}
	}
	if warnings, err = toJSONB(s.Warnings); err != nil {
		return nil, nil, nil, err
	}
	return reimbursements, gratuity, warnings, nil
}

func (r *settlementRepository) Create(ctx context.Context, s settlement.Settlement) (settlement.Settlement, error) {
	q := GetQuerier(ctx, r.db)

	reimbursements, gratuity, warnings, err := settlementJSON(s)
	if err != nil {
		return settlement.Settlement{}, err
	}

	query := `
		INSERT INTO settlements (
			id, company_id, employee_id, settlement_date, last_working_date, status,
			notice_period_amount, earned_leave_days, earned_leave_amount, gratuity_amount, bonus_amount,
			manual_other_payments, reimbursement_amount, other_payments,
			unpaid_leave_deduction, outstanding_loans, outstanding_advances, other_deductions,
			gross_amount, total_deductions, net_amount, last_drawn_salary,
			pending_reimbursements, gratuity_calculation, warnings, remarks, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		)
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		s.ID, s.CompanyID, s.EmployeeID, s.SettlementDate, s.LastWorkingDate, s.Status,
		s.NoticePeriodAmount, s.EarnedLeaveDays, s.EarnedLeaveAmount, s.GratuityAmount, s.BonusAmount,
		s.ManualOtherPayments, s.ReimbursementAmount, s.OtherPayments,
		s.UnpaidLeaveDeduction, s.OutstandingLoans, s.OutstandingAdvances, s.OtherDeductions,
		s.GrossAmount, s.TotalDeductions, s.NetAmount, s.LastDrawnSalary,
		reimbursements, gratuity, warnings, s.Remarks, s.CreatedBy,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uk_settlements_employee_lwd") {
			return settlement.Settlement{}, settlement.ErrSettlementAlreadyExists
		}
		return settlement.Settlement{}, fmt.Errorf("failed to create settlement: %w", err)
	}
	return s, nil
}

func (r *settlementRepository) GetByID(ctx context.Context, companyID, id string) (settlement.Settlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + settlementColumns + `
		FROM settlements s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.id = $1 AND s.company_id = $2
	`

	s, err := scanSettlement(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settlement.Settlement{}, settlement.ErrSettlementNotFound
		}
		return settlement.Settlement{}, fmt.Errorf("failed to get settlement: %w", err)
	}
	return s, nil
}

func (r *settlementRepository) List(ctx context.Context, companyID string, filter settlement.SettlementFilter) ([]settlement.Settlement, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM settlements s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.company_id = $1
	`
	args := []any{companyID}
	argIdx := 2

	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND s.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND s.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count settlements: %w", err)
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`SELECT %s %s
		ORDER BY s.created_at DESC
		LIMIT $%d OFFSET $%d
	`, settlementColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	settlements := []settlement.Settlement{}
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, totalCount, nil
}

func (r *settlementRepository) Update(ctx context.Context, s settlement.Settlement) error {
	q := GetQuerier(ctx, r.db)

	reimbursements, gratuity, warnings, err := settlementJSON(s)
	if err != nil {
		return err
	}

	query := `
		UPDATE settlements SET
			settlement_date = $3, last_working_date = $4, status = $5,
			notice_period_amount = $6, earned_leave_days = $7, earned_leave_amount = $8,
			gratuity_amount = $9, bonus_amount = $10,
			manual_other_payments = $11, reimbursement_amount = $12, other_payments = $13,
			unpaid_leave_deduction = $14, outstanding_loans = $15, outstanding_advances = $16, other_deductions = $17,
			gross_amount = $18, total_deductions = $19, net_amount = $20, last_drawn_salary = $21,
			pending_reimbursements = $22, gratuity_calculation = $23, warnings = $24, remarks = $25,
			approved_by = $26, approved_at = $27, paid_by = $28, paid_at = $29, payment_reference = $30,
			cancelled_by = $31, cancelled_at = $32, cancel_reason = $33,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query,
		s.ID, s.CompanyID, s.SettlementDate, s.LastWorkingDate, s.Status,
		s.NoticePeriodAmount, s.EarnedLeaveDays, s.EarnedLeaveAmount,
		s.GratuityAmount, s.BonusAmount,
		s.ManualOtherPayments, s.ReimbursementAmount, s.OtherPayments,
		s.UnpaidLeaveDeduction, s.OutstandingLoans, s.OutstandingAdvances, s.OtherDeductions,
		s.GrossAmount, s.TotalDeductions, s.NetAmount, s.LastDrawnSalary,
		reimbursements, gratuity, warnings, s.Remarks,
		s.ApprovedBy, s.ApprovedAt, s.PaidBy, s.PaidAt, s.PaymentReference,
		s.CancelledBy, s.CancelledAt, s.CancelReason,
	)
	if err != nil {
		if isUniqueViolation(err, "uk_settlements_employee_lwd") {
			return settlement.ErrSettlementAlreadyExists
		}
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return settlement.ErrSettlementNotFound
	}
	return nil
}
