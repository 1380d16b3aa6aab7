package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
)

type RateTableRepository struct {
	mu     sync.Mutex
	tables statutory.Tables
}

func NewRateTableRepository(tables statutory.Tables) *RateTableRepository {
	return &RateTableRepository{tables: tables}
}

func (r *RateTableRepository) LoadTables(ctx context.Context) (statutory.Tables, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tables, nil
}

func (r *RateTableRepository) SeedDefaults(ctx context.Context, tables statutory.Tables) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tables.PF) == 0 {
		r.tables = tables
	}
	return nil
}

type DeclarationRepository struct {
	mu           sync.Mutex
	declarations []statutory.Declaration
}

func NewDeclarationRepository(declarations ...statutory.Declaration) *DeclarationRepository {
	return &DeclarationRepository{declarations: declarations}
}

func (r *DeclarationRepository) GetDeclaration(ctx context.Context, companyID, employeeID string, financialYear int) (statutory.Declaration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.declarations {
		if d.EmployeeID == employeeID && d.FinancialYear == financialYear {
			return d, nil
		}
	}
	return statutory.Declaration{}, statutory.ErrDeclarationNotFound
}
