package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	// Aggregate summarises the employee's attendance over [start, end].
	Aggregate(ctx context.Context, companyID, employeeID string, start, end time.Time, policy Policy) (Aggregate, error)
}
