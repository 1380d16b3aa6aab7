package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== SETTINGS ==========

func (r *payrollRepository) GetSettings(ctx context.Context, companyID string) (payroll.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT company_id, default_regime, pay_non_working_days, updated_at
		FROM payroll_settings
		WHERE company_id = $1
	`

	var s payroll.Settings
	err := q.QueryRow(ctx, query, companyID).Scan(&s.CompanyID, &s.DefaultRegime, &s.PayNonWorkingDays, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Settings{}, payroll.ErrSettingsNotFound
		}
		return payroll.Settings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}
	return s, nil
}

// ========== PERIODS ==========

const periodColumns = `
	id, company_id, period_month, period_year, status, status_before_lock,
	attendance_locked, pre_check_completed, pre_check_warnings, earnings_applied, deductions_applied,
	payslips_generated, payslips_distributed,
	employee_count, total_gross, total_deductions, total_net, total_employer_contributions,
	initiated_by, processed_by, processed_at, finalized_by, finalized_at,
	paid_by, paid_at, payment_reference, locked_by, locked_at, created_at, updated_at
`

func scanPeriod(row pgx.Row) (payroll.Period, error) {
	var p payroll.Period
	var warnings []byte
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.PeriodMonth, &p.PeriodYear, &p.Status, &p.StatusBeforeLock,
		&p.AttendanceLocked, &p.PreCheckCompleted, &warnings, &p.EarningsApplied, &p.DeductionsApplied,
		&p.PayslipsGenerated, &p.PayslipsDistributed,
		&p.EmployeeCount, &p.TotalGross, &p.TotalDeductions, &p.TotalNet, &p.TotalEmployerContributions,
		&p.InitiatedBy, &p.ProcessedBy, &p.ProcessedAt, &p.FinalizedBy, &p.FinalizedAt,
		&p.PaidBy, &p.PaidAt, &p.PaymentReference, &p.LockedBy, &p.LockedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return payroll.Period{}, err
	}
	if err := fromJSONB(warnings, &p.PreCheckWarnings); err != nil {
		return payroll.Period{}, err
	}
	return p, nil
}

func (r *payrollRepository) queryPeriods(ctx context.Context, query string, args ...any) ([]payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *payrollRepository) UpsertPeriod(ctx context.Context, period payroll.Period) (payroll.Period, bool, error) {
	q := GetQuerier(ctx, r.db)

	warnings, err := toJSONB(period.PreCheckWarnings)
	if err != nil {
		return payroll.Period{}, false, err
	}

	query := `
		INSERT INTO payroll_periods (id, company_id, period_month, period_year, status, pre_check_warnings, initiated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT uk_payroll_periods_company_month DO NOTHING
	`

	tag, err := q.Exec(ctx, query, period.ID, period.CompanyID, period.PeriodMonth, period.PeriodYear, period.Status, warnings, period.InitiatedBy)
	if err != nil {
		return payroll.Period{}, false, fmt.Errorf("failed to upsert payroll period: %w", err)
	}

	stored, err := r.GetPeriodByMonth(ctx, period.CompanyID, period.PeriodMonth, period.PeriodYear)
	if err != nil {
		return payroll.Period{}, false, err
	}
	return stored, tag.RowsAffected() == 1, nil
}

func (r *payrollRepository) GetPeriodByID(ctx context.Context, companyID, id string) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE id = $1 AND company_id = $2`

	p, err := scanPeriod(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPayrollNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to get payroll period: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) GetPeriodByMonth(ctx context.Context, companyID string, month, year int) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3
	`

	p, err := scanPeriod(q.QueryRow(ctx, query, companyID, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPayrollNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to get payroll period: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) ListPeriods(ctx context.Context, companyID string, filter payroll.PeriodFilter) ([]payroll.Period, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := ` FROM payroll_periods WHERE company_id = $1`
	args := []any{companyID}
	argIdx := 2

	if filter.PeriodYear != nil {
		baseQuery += fmt.Sprintf(" AND period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll periods: %w", err)
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`SELECT %s %s
		ORDER BY period_year DESC, period_month DESC
		LIMIT $%d OFFSET $%d
	`, periodColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	periods, err := r.queryPeriods(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	return periods, totalCount, nil
}

func (r *payrollRepository) UpdatePeriod(ctx context.Context, period payroll.Period) error {
	q := GetQuerier(ctx, r.db)

	warnings, err := toJSONB(period.PreCheckWarnings)
	if err != nil {
		return err
	}

	query := `
		UPDATE payroll_periods SET
			status = $3, status_before_lock = $4,
			attendance_locked = $5, pre_check_completed = $6, pre_check_warnings = $7,
			earnings_applied = $8, deductions_applied = $9,
			payslips_generated = $10, payslips_distributed = $11,
			processed_by = $12, processed_at = $13, finalized_by = $14, finalized_at = $15,
			paid_by = $16, paid_at = $17, payment_reference = $18, locked_by = $19, locked_at = $20,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query,
		period.ID, period.CompanyID, period.Status, period.StatusBeforeLock,
		period.AttendanceLocked, period.PreCheckCompleted, warnings,
		period.EarningsApplied, period.DeductionsApplied,
		period.PayslipsGenerated, period.PayslipsDistributed,
		period.ProcessedBy, period.ProcessedAt, period.FinalizedBy, period.FinalizedAt,
		period.PaidBy, period.PaidAt, period.PaymentReference, period.LockedBy, period.LockedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func (r *payrollRepository) RecomputeTotals(ctx context.Context, companyID, periodID string) (payroll.Totals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods p SET
			employee_count = s.employee_count,
			total_gross = s.total_gross,
			total_deductions = s.total_deductions,
			total_net = s.total_net,
			total_employer_contributions = s.total_employer_contributions,
			updated_at = NOW()
		FROM (
			SELECT COUNT(*) AS employee_count,
				COALESCE(SUM(gross_salary), 0) AS total_gross,
				COALESCE(SUM(total_deductions), 0) AS total_deductions,
				COALESCE(SUM(net_salary), 0) AS total_net,
				COALESCE(SUM(total_employer_contributions), 0) AS total_employer_contributions
			FROM payslips
			WHERE payroll_period_id = $1 AND company_id = $2 AND NOT is_voided
		) s
		WHERE p.id = $1 AND p.company_id = $2
		RETURNING p.employee_count, p.total_gross, p.total_deductions, p.total_net, p.total_employer_contributions
	`

	var t payroll.Totals
	err := q.QueryRow(ctx, query, periodID, companyID).Scan(
		&t.EmployeeCount, &t.TotalGross, &t.TotalDeductions, &t.TotalNet, &t.TotalEmployerContributions,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Totals{}, payroll.ErrPayrollNotFound
		}
		return payroll.Totals{}, fmt.Errorf("failed to recompute payroll totals: %w", err)
	}
	return t, nil
}

func (r *payrollRepository) ListStaleProcessing(ctx context.Context, staleBefore time.Time) ([]payroll.Period, error) {
	query := `SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE status = 'processing' AND attendance_locked AND NOT payslips_generated
			AND updated_at < $1
		ORDER BY updated_at
	`
	return r.queryPeriods(ctx, query, staleBefore)
}

func (r *payrollRepository) PreviousReportable(ctx context.Context, companyID string, month, year, limit int) ([]payroll.Period, error) {
	query := `SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE company_id = $1
			AND status IN ('finalized', 'locked', 'paid')
			AND period_year * 12 + period_month - 1 < $2
		ORDER BY period_year DESC, period_month DESC
		LIMIT $3
	`
	return r.queryPeriods(ctx, query, companyID, payroll.Ordinal(month, year), limit)
}

// ========== PAYSLIPS ==========

const payslipColumns = `
	ps.id, ps.payroll_period_id, ps.company_id, ps.employee_id, ps.period_month, ps.period_year,
	ps.earnings, ps.deductions, ps.employer_contributions,
	ps.gross_salary, ps.total_deductions, ps.net_salary, ps.total_employer_contributions,
	ps.days_in_period, ps.days_worked, ps.days_present, ps.days_absent, ps.half_days,
	ps.pro_ration_factor, ps.pf_wage, ps.esi_applicable, ps.tax_computation,
	ps.negative_net, ps.warnings, ps.is_voided, ps.void_reason, ps.voided_by, ps.voided_at,
	ps.created_at, ps.updated_at, e.employee_code, e.full_name
`

// scanPayslip reads payslipColumns followed by any extra destinations.
func scanPayslip(row pgx.Row, extra ...any) (payroll.Payslip, error) {
	var p payroll.Payslip
	var earnings, deductions, contributions, tax, warnings []byte
	dest := []any{
		&p.ID, &p.PayrollPeriodID, &p.CompanyID, &p.EmployeeID, &p.PeriodMonth, &p.PeriodYear,
		&earnings, &deductions, &contributions,
		&p.GrossSalary, &p.TotalDeductions, &p.NetSalary, &p.TotalEmployerContributions,
		&p.DaysInPeriod, &p.DaysWorked, &p.DaysPresent, &p.DaysAbsent, &p.HalfDays,
		&p.ProRationFactor, &p.PFWage, &p.ESIApplicable, &tax,
		&p.NegativeNet, &warnings, &p.IsVoided, &p.VoidReason, &p.VoidedBy, &p.VoidedAt,
		&p.CreatedAt, &p.UpdatedAt, &p.EmployeeCode, &p.EmployeeName,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return payroll.Payslip{}, err
	}

	p.Earnings = make(payroll.Earnings)
	p.Deductions = make(payroll.Deductions)
	p.EmployerContributions = make(payroll.Contributions)
	if err := fromJSONB(earnings, &p.Earnings); err != nil {
		return payroll.Payslip{}, err
	}
	if err := fromJSONB(deductions, &p.Deductions); err != nil {
		return payroll.Payslip{}, err
	}
	if err := fromJSONB(contributions, &p.EmployerContributions); err != nil {
		return payroll.Payslip{}, err
	}
	if err := fromJSONB(warnings, &p.Warnings); err != nil {
		return payroll.Payslip{}, err
	}
	if len(tax) > 0 && string(tax) != "null" {
		p.Tax = new(statutory.TaxComputation)
		if err := fromJSONB(tax, p.Tax); err != nil {
			return payroll.Payslip{}, err
		}
	}
	return p, nil
}

func (r *payrollRepository) InsertPayslip(ctx context.Context, payslip payroll.Payslip) (payroll.Payslip, bool, error) {
	q := GetQuerier(ctx, r.db)

	earnings, err := toJSONB(payslip.Earnings)
	if err != nil {
		return payroll.Payslip{}, false, err
	}
	deductions, err := toJSONB(payslip.Deductions)
	if err != nil {
		return payroll.Payslip{}, false, err
	}
	contributions, err := toJSONB(payslip.EmployerContributions)
	if err != nil {
		return payroll.Payslip{}, false, err
	}
	warnings, err := toJSONB(payslip.Warnings)
	if err != nil {
		return payroll.Payslip{}, false, err
	}
	var tax []byte
	if payslip.Tax != nil {
		if tax, err = toJSONB(payslip.Tax); err != nil {
			return payroll.Payslip{}, false, err
		}
	}

	// A voided row for the same employee is overwritten in place; a live one is left alone.
	query := `
		INSERT INTO payslips (
			id, payroll_period_id, company_id, employee_id, period_month, period_year,
			earnings, deductions, employer_contributions,
			gross_salary, total_deductions, net_salary, total_employer_contributions,
			days_in_period, days_worked, days_present, days_absent, half_days,
			pro_ration_factor, pf_wage, esi_applicable, tax_computation, negative_net, warnings
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24
		)
		ON CONFLICT ON CONSTRAINT uk_payslips_period_employee DO UPDATE SET
			id = EXCLUDED.id,
			earnings = EXCLUDED.earnings,
			deductions = EXCLUDED.deductions,
			employer_contributions = EXCLUDED.employer_contributions,
			gross_salary = EXCLUDED.gross_salary,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			total_employer_contributions = EXCLUDED.total_employer_contributions,
			days_in_period = EXCLUDED.days_in_period,
			days_worked = EXCLUDED.days_worked,
			days_present = EXCLUDED.days_present,
			days_absent = EXCLUDED.days_absent,
			half_days = EXCLUDED.half_days,
			pro_ration_factor = EXCLUDED.pro_ration_factor,
			pf_wage = EXCLUDED.pf_wage,
			esi_applicable = EXCLUDED.esi_applicable,
			tax_computation = EXCLUDED.tax_computation,
			negative_net = EXCLUDED.negative_net,
			warnings = EXCLUDED.warnings,
			is_voided = FALSE,
			void_reason = NULL,
			voided_by = NULL,
			voided_at = NULL,
			created_at = NOW(),
			updated_at = NOW()
		WHERE payslips.is_voided
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		payslip.ID, payslip.PayrollPeriodID, payslip.CompanyID, payslip.EmployeeID, payslip.PeriodMonth, payslip.PeriodYear,
		earnings, deductions, contributions,
		payslip.GrossSalary, payslip.TotalDeductions, payslip.NetSalary, payslip.TotalEmployerContributions,
		payslip.DaysInPeriod, payslip.DaysWorked, payslip.DaysPresent, payslip.DaysAbsent, payslip.HalfDays,
		payslip.ProRationFactor, payslip.PFWage, payslip.ESIApplicable, tax, payslip.NegativeNet, warnings,
	).Scan(&payslip.CreatedAt, &payslip.UpdatedAt)
	if err == nil {
		return payslip, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return payroll.Payslip{}, false, fmt.Errorf("failed to insert payslip: %w", err)
	}

	existing, err := r.payslipByEmployee(ctx, payslip.CompanyID, payslip.PayrollPeriodID, payslip.EmployeeID)
	if err != nil {
		return payroll.Payslip{}, false, err
	}
	return existing, false, nil
}

func (r *payrollRepository) payslipByEmployee(ctx context.Context, companyID, periodID, employeeID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslips ps
		JOIN employees e ON e.id = ps.employee_id
		WHERE ps.company_id = $1 AND ps.payroll_period_id = $2 AND ps.employee_id = $3
	`

	p, err := scanPayslip(q.QueryRow(ctx, query, companyID, periodID, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) GetPayslip(ctx context.Context, companyID, id string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslips ps
		JOIN employees e ON e.id = ps.employee_id
		WHERE ps.id = $1 AND ps.company_id = $2
	`

	p, err := scanPayslip(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) ListPayslips(ctx context.Context, companyID, periodID string, includeVoided bool) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslips ps
		JOIN employees e ON e.id = ps.employee_id
		WHERE ps.company_id = $1 AND ps.payroll_period_id = $2 AND ($3 OR NOT ps.is_voided)
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, companyID, periodID, includeVoided)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var payslips []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, p)
	}
	return payslips, rows.Err()
}

func (r *payrollRepository) PayslipEmployeeIDs(ctx context.Context, companyID, periodID string) (map[string]bool, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT employee_id FROM payslips
		WHERE company_id = $1 AND payroll_period_id = $2 AND NOT is_voided
	`, companyID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip employees: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan payslip employee: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (r *payrollRepository) VoidPayslip(ctx context.Context, companyID, id, reason, voidedBy string) error {
	q := GetQuerier(ctx, r.db)

	var isVoided bool
	err := q.QueryRow(ctx, `SELECT is_voided FROM payslips WHERE id = $1 AND company_id = $2 FOR UPDATE`, id, companyID).Scan(&isVoided)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.ErrPayslipNotFound
		}
		return fmt.Errorf("failed to check payslip: %w", err)
	}
	if isVoided {
		return payroll.ErrPayslipAlreadyVoided
	}

	_, err = q.Exec(ctx, `
		UPDATE payslips
		SET is_voided = TRUE, void_reason = $3, voided_by = $4, voided_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`, id, companyID, reason, voidedBy)
	if err != nil {
		return fmt.Errorf("failed to void payslip: %w", err)
	}
	return nil
}

func (r *payrollRepository) LatestFinalizedPayslip(ctx context.Context, companyID, employeeID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslips ps
		JOIN employees e ON e.id = ps.employee_id
		JOIN payroll_periods pp ON pp.id = ps.payroll_period_id
		WHERE ps.company_id = $1 AND ps.employee_id = $2 AND NOT ps.is_voided
			AND pp.status IN ('finalized', 'paid')
		ORDER BY ps.period_year DESC, ps.period_month DESC
		LIMIT 1
	`

	p, err := scanPayslip(q.QueryRow(ctx, query, companyID, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get latest payslip: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) YearToDate(ctx context.Context, companyID, employeeID string, fy, month, year int) (payroll.YearToDate, error) {
	q := GetQuerier(ctx, r.db)

	from := payroll.Ordinal(int(time.April), fy)
	to := min(payroll.Ordinal(month, year), payroll.Ordinal(int(time.March), fy+1)+1)

	query := `
		SELECT COALESCE(SUM(gross_salary), 0), COALESCE(SUM((deductions->>'tds')::numeric), 0)
		FROM payslips
		WHERE company_id = $1 AND employee_id = $2 AND NOT is_voided
			AND period_year * 12 + period_month - 1 >= $3
			AND period_year * 12 + period_month - 1 < $4
	`

	var ytd payroll.YearToDate
	if err := q.QueryRow(ctx, query, companyID, employeeID, from, to).Scan(&ytd.TaxableIncome, &ytd.TDSDeducted); err != nil {
		return payroll.YearToDate{}, fmt.Errorf("failed to sum year to date: %w", err)
	}
	ytd.TaxableIncome = money.Round2(ytd.TaxableIncome)
	ytd.TDSDeducted = money.Round2(ytd.TDSDeducted)
	return ytd, nil
}

// ========== SUPPLEMENTS ==========

func (r *payrollRepository) PendingSupplements(ctx context.Context, companyID, employeeID string, month, year int) ([]payroll.Supplement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, type, status, amount, period_month, period_year, processed, payslip_id
		FROM payroll_supplements
		WHERE company_id = $1 AND employee_id = $2 AND NOT processed AND status = 'approved'
			AND period_year * 12 + period_month - 1 <= $3
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, payroll.Ordinal(month, year))
	if err != nil {
		return nil, fmt.Errorf("failed to list supplements: %w", err)
	}
	defer rows.Close()

	var supplements []payroll.Supplement
	for rows.Next() {
		var s payroll.Supplement
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.EmployeeID, &s.Type, &s.Status, &s.Amount, &s.PeriodMonth, &s.PeriodYear, &s.Processed, &s.PayslipID); err != nil {
			return nil, fmt.Errorf("failed to scan supplement: %w", err)
		}
		supplements = append(supplements, s)
	}
	return supplements, rows.Err()
}

func (r *payrollRepository) MarkSupplementsProcessed(ctx context.Context, ids []string, payslipID string) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_supplements
		SET processed = TRUE, payslip_id = $2
		WHERE id = ANY($1::uuid[]) AND NOT processed
	`, ids, payslipID)
	if err != nil {
		return fmt.Errorf("failed to mark supplements processed: %w", err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("only %d of %d supplements were pending", tag.RowsAffected(), len(ids))
	}
	return nil
}

func (r *payrollRepository) ReleaseSupplements(ctx context.Context, payslipID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `
		UPDATE payroll_supplements SET processed = FALSE, payslip_id = NULL WHERE payslip_id = $1
	`, payslipID); err != nil {
		return fmt.Errorf("failed to release supplements: %w", err)
	}
	return nil
}
