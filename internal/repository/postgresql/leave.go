package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
)

type leaveRepository struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepository{db: db}
}

// BalancesForYear implements leave.LeaveRepository.
func (r *leaveRepository) BalancesForYear(ctx context.Context, companyID, employeeID string, year int) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lq.employee_id, lq.leave_type_id, lt.code, lq.year, lq.available_quota
		FROM leave_quotas lq
		JOIN leave_types lt ON lt.id = lq.leave_type_id
		WHERE lq.company_id = $1 AND lq.employee_id = $2 AND lq.year = $3
		ORDER BY lt.code
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get leave balances: %w", err)
	}
	defer rows.Close()

	var balances []leave.Balance
	for rows.Next() {
		var b leave.Balance
		if err := rows.Scan(&b.EmployeeID, &b.LeaveTypeID, &b.LeaveTypeCode, &b.Year, &b.Available); err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// PendingOverlapping implements leave.LeaveRepository.
func (r *leaveRepository) PendingOverlapping(ctx context.Context, companyID string, start, end time.Time) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lr.id, lr.employee_id, e.employee_code, lr.leave_type_id, lr.start_date, lr.end_date, lr.status
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
		WHERE lr.company_id = $1
			AND lr.status = $2
			AND lr.start_date <= $4
			AND lr.end_date >= $3
		ORDER BY e.employee_code, lr.start_date
	`

	rows, err := q.Query(ctx, query, companyID, leave.LeaveRequestStatusWaitingApproval, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		var req leave.Request
		if err := rows.Scan(&req.ID, &req.EmployeeID, &req.EmployeeCode, &req.LeaveTypeID, &req.StartDate, &req.EndDate, &req.Status); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
