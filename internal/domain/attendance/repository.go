package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// ListForPeriod returns the employee's records with start <= date <= end ordered by date.
	ListForPeriod(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]Record, error)
}
