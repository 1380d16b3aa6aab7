package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type rateKind string

const (
	rateKindPF   rateKind = "pf"
	rateKindESI  rateKind = "esi"
	rateKindPT   rateKind = "pt"
	rateKindLWF  rateKind = "lwf"
	rateKindTDS  rateKind = "tds"
	rateKindCaps rateKind = "caps"
)

type pfPayload struct {
	EmployeeRate   decimal.Decimal `json:"employee_rate"`
	EmployerRate   decimal.Decimal `json:"employer_rate"`
	EPSRate        decimal.Decimal `json:"eps_rate"`
	WageCeiling    decimal.Decimal `json:"wage_ceiling"`
	EPSWageCeiling decimal.Decimal `json:"eps_wage_ceiling"`
}

type esiPayload struct {
	EmployeeRate decimal.Decimal `json:"employee_rate"`
	EmployerRate decimal.Decimal `json:"employer_rate"`
	WageCeiling  decimal.Decimal `json:"wage_ceiling"`
}

type ptSlabPayload struct {
	MinGross       decimal.Decimal     `json:"min_gross"`
	MaxGross       *decimal.Decimal    `json:"max_gross,omitempty"`
	MonthlyAmounts [12]decimal.Decimal `json:"monthly_amounts"`
}

type lwfPayload struct {
	EmployeeAmount decimal.Decimal `json:"employee_amount"`
	EmployerAmount decimal.Decimal `json:"employer_amount"`
	Months         []time.Month    `json:"months"`
}

type taxSlabPayload struct {
	From decimal.Decimal  `json:"from"`
	To   *decimal.Decimal `json:"to,omitempty"`
	Rate decimal.Decimal  `json:"rate"`
}

type tdsPayload struct {
	Slabs             []taxSlabPayload `json:"slabs"`
	StandardDeduction decimal.Decimal  `json:"standard_deduction"`
	RebateLimit       decimal.Decimal  `json:"rebate_limit"`
	RebateMax         decimal.Decimal  `json:"rebate_max"`
	CessRate          decimal.Decimal  `json:"cess_rate"`
	AllowsExemptions  bool             `json:"allows_exemptions"`
}

// rateRow is one statutory_rates row before its payload is decoded.
type rateRow struct {
	ID        string
	Kind      rateKind
	Scope     string
	Validity  statutory.Validity
	Payload   []byte
	CreatedAt time.Time
}

type rateTableRepository struct {
	db *database.DB
}

func NewRateTableRepository(db *database.DB) statutory.RateTableRepository {
	return &rateTableRepository{db: db}
}

// LoadTables implements statutory.RateTableRepository.
func (r *rateTableRepository) LoadTables(ctx context.Context) (statutory.Tables, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, kind, scope, effective_from, effective_to, payload, created_at
		FROM statutory_rates
		ORDER BY kind, scope, effective_from
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return statutory.Tables{}, fmt.Errorf("failed to load statutory rates: %w", err)
	}
	defer rows.Close()

	var tables statutory.Tables
	for rows.Next() {
		var row rateRow
		if err := rows.Scan(&row.ID, &row.Kind, &row.Scope, &row.Validity.EffectiveFrom, &row.Validity.EffectiveTo, &row.Payload, &row.CreatedAt); err != nil {
			return statutory.Tables{}, fmt.Errorf("failed to scan statutory rate: %w", err)
		}
		if err := appendRate(&tables, row); err != nil {
			return statutory.Tables{}, fmt.Errorf("statutory rate %s: %w", row.ID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return statutory.Tables{}, fmt.Errorf("failed to iterate statutory rates: %w", err)
	}

	return tables, nil
}

func appendRate(tables *statutory.Tables, row rateRow) error {
	switch row.Kind {
	case rateKindPF:
		var p pfPayload
		if err := fromJSONB(row.Payload, &p); err != nil {
			return err
		}
		tables.PF = append(tables.PF, statutory.PFRule{
			Validity:       row.Validity,
			ID:             row.ID,
			EmployeeRate:   p.EmployeeRate,
			EmployerRate:   p.EmployerRate,
			EPSRate:        p.EPSRate,
			WageCeiling:    p.WageCeiling,
			EPSWageCeiling: p.EPSWageCeiling,
			CreatedAt:      row.CreatedAt,
		})
	case rateKindESI:
		var p esiPayload
		if err := fromJSONB(row.Payload, &p); err != nil {
			return err
		}
		tables.ESI = append(tables.ESI, statutory.ESIRule{
			Validity:     row.Validity,
			ID:           row.ID,
			EmployeeRate: p.EmployeeRate,
			EmployerRate: p.EmployerRate,
			WageCeiling:  p.WageCeiling,
			CreatedAt:    row.CreatedAt,
		})
	case rateKindPT:
		var p []ptSlabPayload
		if err := fromJSONB(row.Payload, &p); err != nil {
			return err
		}
		t := statutory.PTTable{Validity: row.Validity, ID: row.ID, State: row.Scope, CreatedAt: row.CreatedAt}
		for _, s := range p {
			t.Slabs = append(t.Slabs, statutory.PTSlab{MinGross: s.MinGross, MaxGross: s.MaxGross, MonthlyAmounts: s.MonthlyAmounts})
		}
		tables.PT = append(tables.PT, t)
	case rateKindLWF:
		var p lwfPayload
		if err := fromJSONB(row.Payload, &p); err != nil {
			return err
		}
		tables.LWF = append(tables.LWF, statutory.LWFRate{
			Validity:       row.Validity,
			ID:             row.ID,
			State:          row.Scope,
			EmployeeAmount: p.EmployeeAmount,
			EmployerAmount: p.EmployerAmount,
			Months:         p.Months,
			CreatedAt:      row.CreatedAt,
		})
	case rateKindTDS:
		var p tdsPayload
		if err := fromJSONB(row.Payload, &p); err != nil {
			return err
		}
		t := statutory.TDSTable{
			Validity:          row.Validity,
			ID:                row.ID,
			Regime:            statutory.Regime(row.Scope),
			StandardDeduction: p.StandardDeduction,
			RebateLimit:       p.RebateLimit,
			RebateMax:         p.RebateMax,
			CessRate:          p.CessRate,
			AllowsExemptions:  p.AllowsExemptions,
			CreatedAt:         row.CreatedAt,
		}
		for _, s := range p.Slabs {
			t.Slabs = append(t.Slabs, statutory.TaxSlab{From: s.From, To: s.To, Rate: s.Rate})
		}
		tables.TDS = append(tables.TDS, t)
	case rateKindCaps:
		caps := make(map[statutory.Section]decimal.Decimal)
		if err := fromJSONB(row.Payload, &caps); err != nil {
			return err
		}
		tables.Caps = append(tables.Caps, statutory.ExemptionCaps{Validity: row.Validity, ID: row.ID, Caps: caps})
	default:
		return fmt.Errorf("unknown rate kind %q", row.Kind)
	}
	return nil
}

// SeedDefaults implements statutory.RateTableRepository.
func (r *rateTableRepository) SeedDefaults(ctx context.Context, tables statutory.Tables) error {
	rows, err := rateRows(tables)
	if err != nil {
		return err
	}

	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO statutory_rates (id, kind, scope, effective_from, effective_to, payload)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT ON CONSTRAINT uk_statutory_rates_kind_scope_from DO NOTHING
		`
		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(query, row.ID, row.Kind, row.Scope, row.Validity.EffectiveFrom, row.Validity.EffectiveTo, row.Payload)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to seed statutory rates: %w", err)
		}
		return nil
	})
}

func rateRows(tables statutory.Tables) ([]rateRow, error) {
	var rows []rateRow
	add := func(kind rateKind, scope string, v statutory.Validity, payload any) error {
		b, err := toJSONB(payload)
		if err != nil {
			return err
		}
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate rate id: %w", err)
		}
		rows = append(rows, rateRow{ID: id.String(), Kind: kind, Scope: scope, Validity: v, Payload: b})
		return nil
	}

	var errs []error
	for _, r := range tables.PF {
		errs = append(errs, add(rateKindPF, "", r.Validity, pfPayload{
			EmployeeRate:   r.EmployeeRate,
			EmployerRate:   r.EmployerRate,
			EPSRate:        r.EPSRate,
			WageCeiling:    r.WageCeiling,
			EPSWageCeiling: r.EPSWageCeiling,
		}))
	}
	for _, r := range tables.ESI {
		errs = append(errs, add(rateKindESI, "", r.Validity, esiPayload{
			EmployeeRate: r.EmployeeRate,
			EmployerRate: r.EmployerRate,
			WageCeiling:  r.WageCeiling,
		}))
	}
	for _, t := range tables.PT {
		slabs := make([]ptSlabPayload, 0, len(t.Slabs))
		for _, s := range t.Slabs {
			slabs = append(slabs, ptSlabPayload{MinGross: s.MinGross, MaxGross: s.MaxGross, MonthlyAmounts: s.MonthlyAmounts})
		}
		errs = append(errs, add(rateKindPT, t.State, t.Validity, slabs))
	}
	for _, r := range tables.LWF {
		errs = append(errs, add(rateKindLWF, r.State, r.Validity, lwfPayload{
			EmployeeAmount: r.EmployeeAmount,
			EmployerAmount: r.EmployerAmount,
			Months:         r.Months,
		}))
	}
	for _, t := range tables.TDS {
		p := tdsPayload{
			StandardDeduction: t.StandardDeduction,
			RebateLimit:       t.RebateLimit,
			RebateMax:         t.RebateMax,
			CessRate:          t.CessRate,
			AllowsExemptions:  t.AllowsExemptions,
		}
		for _, s := range t.Slabs {
			p.Slabs = append(p.Slabs, taxSlabPayload{From: s.From, To: s.To, Rate: s.Rate})
		}
		errs = append(errs, add(rateKindTDS, string(t.Regime), t.Validity, p))
	}
	for _, c := range tables.Caps {
		errs = append(errs, add(rateKindCaps, "", c.Validity, c.Caps))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return rows, nil
}

type declarationRepository struct {
	db *database.DB
}

func NewDeclarationRepository(db *database.DB) statutory.DeclarationRepository {
	return &declarationRepository{db: db}
}

// GetDeclaration implements statutory.DeclarationRepository.
func (r *declarationRepository) GetDeclaration(ctx context.Context, companyID, employeeID string, financialYear int) (statutory.Declaration, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, financial_year, regime, amounts
		FROM tax_declarations
		WHERE company_id = $1 AND employee_id = $2 AND financial_year = $3
	`

	var d statutory.Declaration
	var amounts []byte
	err := q.QueryRow(ctx, query, companyID, employeeID, financialYear).Scan(&d.ID, &d.EmployeeID, &d.FinancialYear, &d.Regime, &amounts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return statutory.Declaration{}, statutory.ErrDeclarationNotFound
		}
		return statutory.Declaration{}, fmt.Errorf("failed to get tax declaration: %w", err)
	}

	d.Amounts = make(map[statutory.Section]decimal.Decimal)
	if err := fromJSONB(amounts, &d.Amounts); err != nil {
		return statutory.Declaration{}, err
	}
	return d, nil
}
