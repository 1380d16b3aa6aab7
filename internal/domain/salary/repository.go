package salary

import (
	"context"
	"time"
)

// StructureRepository is read-only: salary structures are owned by HR processes.
type StructureRepository interface {
	// ActiveOn returns the structure with the latest effective_from <= date that has not ended
	// before date, or ErrStructureNotFound.
	ActiveOn(ctx context.Context, companyID, employeeID string, date time.Time) (Structure, error)
}
