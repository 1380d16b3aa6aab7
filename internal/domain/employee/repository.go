package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, companyID, id string) (Employee, error)
	// ListPayrollEligible returns employees hired by end who had not left before start,
	// ordered by employee code.
	ListPayrollEligible(ctx context.Context, companyID string, start, end time.Time) ([]Employee, error)
}
