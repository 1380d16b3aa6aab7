package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, company_id, employee_code, full_name, hire_date, resignation_date, employment_status,
	pan, uan, esic_number, work_state, pf_opted_out, pf_on_capped, esi_exempt, lwf_applicable,
	bank_name, bank_ifsc, bank_account_encrypted, bank_account_holder, created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.EmployeeCode, &e.FullName, &e.HireDate, &e.ResignationDate, &e.EmploymentStatus,
		&e.PAN, &e.UAN, &e.ESICNumber, &e.WorkState, &e.PFOptedOut, &e.PFOnCapped, &e.ESIExempt, &e.LWFApplicable,
		&e.BankName, &e.BankIFSC, &e.BankAccountEncrypted, &e.BankAccountHolder, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
	`

	e, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// ListPayrollEligible implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListPayrollEligible(ctx context.Context, companyID string, start, end time.Time) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE company_id = $1
			AND deleted_at IS NULL
			AND hire_date <= $3
			AND (resignation_date IS NULL OR resignation_date >= $2)
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll eligible employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}
