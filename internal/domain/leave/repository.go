package leave

import (
	"context"
	"time"
)

type LeaveRepository interface {
	// BalancesForYear returns the employee's balances with the leave type code joined in.
	BalancesForYear(ctx context.Context, companyID, employeeID string, year int) ([]Balance, error)
	// PendingOverlapping returns waiting-approval requests that overlap [start, end].
	PendingOverlapping(ctx context.Context, companyID string, start, end time.Time) ([]Request, error)
}
