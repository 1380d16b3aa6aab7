package statutory

import "context"

// RateTableRepository reads the versioned rate rows. Rows are insert-only; a new rate is a
// new row with a later EffectiveFrom.
type RateTableRepository interface {
	LoadTables(ctx context.Context) (Tables, error)
	// SeedDefaults inserts rows whose natural key (kind, state/regime, effective_from) is absent
	// and leaves existing rows untouched.
	SeedDefaults(ctx context.Context, tables Tables) error
}

type DeclarationRepository interface {
	GetDeclaration(ctx context.Context, companyID, employeeID string, financialYear int) (Declaration, error)
}

// RateBookSource hands out the rate book of a financial year.
type RateBookSource interface {
	ForYear(ctx context.Context, fy int) (*RateBook, error)
}
