// Package memory holds map-backed implementations of the repository interfaces. They back the
// service tests and keep the same contracts as the PostgreSQL repositories, including the
// natural-key uniqueness rules.
package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
)

type transactor struct{}

// NewTransactor returns a transactor that runs fn directly; the stores have no rollback.
func NewTransactor() database.Transactor {
	return transactor{}
}

func (transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
