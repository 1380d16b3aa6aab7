package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type salaryRepository struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) salary.StructureRepository {
	return &salaryRepository{db: db}
}

// ActiveOn implements salary.StructureRepository.
func (r *salaryRepository) ActiveOn(ctx context.Context, companyID, employeeID string, date time.Time) (salary.Structure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, company_id, effective_from, effective_to,
			   basic, dearness_allowance, hra, special_allowance, conveyance, medical, other_allowances,
			   pf_wage_base, esi_wage_base, created_at, updated_at
		FROM salary_structures
		WHERE company_id = $1 AND employee_id = $2
			AND effective_from <= $3
			AND (effective_to IS NULL OR effective_to >= $3)
		ORDER BY effective_from DESC
		LIMIT 1
	`

	var s salary.Structure
	err := q.QueryRow(ctx, query, companyID, employeeID, date).Scan(
		&s.ID, &s.EmployeeID, &s.CompanyID, &s.EffectiveFrom, &s.EffectiveTo,
		&s.Basic, &s.DearnessAllowance, &s.HRA, &s.SpecialAllowance, &s.Conveyance, &s.Medical, &s.OtherAllowances,
		&s.PFWageBase, &s.ESIWageBase, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.Structure{}, salary.ErrStructureNotFound
		}
		return salary.Structure{}, fmt.Errorf("failed to get salary structure: %w", err)
	}
	return s, nil
}
