package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	"github.com/shopspring/decimal"
)

type PayrollRepository struct {
	mu          sync.Mutex
	settings    map[string]payroll.Settings
	periods     map[string]payroll.Period
	payslips    map[string]payroll.Payslip
	supplements map[string]payroll.Supplement
}

func NewPayrollRepository() *PayrollRepository {
	return &PayrollRepository{
		settings:    make(map[string]payroll.Settings),
		periods:     make(map[string]payroll.Period),
		payslips:    make(map[string]payroll.Payslip),
		supplements: make(map[string]payroll.Supplement),
	}
}

// Seeding helpers

func (r *PayrollRepository) PutSettings(s payroll.Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[s.CompanyID] = s
}

func (r *PayrollRepository) PutPeriod(p payroll.Period) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.periods[p.ID] = p
}

func (r *PayrollRepository) PutPayslip(p payroll.Payslip) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Recalculate()
	r.payslips[p.ID] = p
}

func (r *PayrollRepository) PutSupplement(s payroll.Supplement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supplements[s.ID] = s
}

func (r *PayrollRepository) Supplement(id string) payroll.Supplement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.supplements[id]
}

// Settings

func (r *PayrollRepository) GetSettings(ctx context.Context, companyID string) (payroll.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[companyID]
	if !ok {
		return payroll.Settings{}, payroll.ErrSettingsNotFound
	}
	return s, nil
}

// Periods

func (r *PayrollRepository) UpsertPeriod(ctx context.Context, period payroll.Period) (payroll.Period, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.CompanyID == period.CompanyID && p.PeriodMonth == period.PeriodMonth && p.PeriodYear == period.PeriodYear {
			return p, false, nil
		}
	}
	period.Totals = zeroTotals()
	period.CreatedAt = time.Now()
	period.UpdatedAt = period.CreatedAt
	r.periods[period.ID] = period
	return period, true, nil
}

func (r *PayrollRepository) GetPeriodByID(ctx context.Context, companyID, id string) (payroll.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok || p.CompanyID != companyID {
		return payroll.Period{}, payroll.ErrPayrollNotFound
	}
	return p, nil
}

func (r *PayrollRepository) GetPeriodByMonth(ctx context.Context, companyID string, month, year int) (payroll.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.CompanyID == companyID && p.PeriodMonth == month && p.PeriodYear == year {
			return p, nil
		}
	}
	return payroll.Period{}, payroll.ErrPayrollNotFound
}

func (r *PayrollRepository) ListPeriods(ctx context.Context, companyID string, filter payroll.PeriodFilter) ([]payroll.Period, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Period
	for _, p := range r.periods {
		if p.CompanyID != companyID {
			continue
		}
		if filter.PeriodYear != nil && p.PeriodYear != *filter.PeriodYear {
			continue
		}
		if filter.Status != nil && string(p.Status) != *filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return payroll.Ordinal(out[i].PeriodMonth, out[i].PeriodYear) > payroll.Ordinal(out[j].PeriodMonth, out[j].PeriodYear)
	})
	total := int64(len(out))
	if filter.Limit > 0 {
		from := (filter.Page - 1) * filter.Limit
		if from > len(out) {
			from = len(out)
		}
		to := from + filter.Limit
		if to > len(out) {
			to = len(out)
		}
		out = out[from:to]
	}
	return out, total, nil
}

func (r *PayrollRepository) UpdatePeriod(ctx context.Context, period payroll.Period) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.periods[period.ID]
	if !ok || stored.CompanyID != period.CompanyID {
		return payroll.ErrPayrollNotFound
	}
	period.Totals = stored.Totals
	period.UpdatedAt = time.Now()
	r.periods[period.ID] = period
	return nil
}

func (r *PayrollRepository) RecomputeTotals(ctx context.Context, companyID, periodID string) (payroll.Totals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[periodID]
	if !ok || p.CompanyID != companyID {
		return payroll.Totals{}, payroll.ErrPayrollNotFound
	}
	t := zeroTotals()
	for _, s := range r.payslips {
		if s.PayrollPeriodID != periodID || s.IsVoided {
			continue
		}
		t.EmployeeCount++
		t.TotalGross = t.TotalGross.Add(s.GrossSalary)
		t.TotalDeductions = t.TotalDeductions.Add(s.TotalDeductions)
		t.TotalNet = t.TotalNet.Add(s.NetSalary)
		t.TotalEmployerContributions = t.TotalEmployerContributions.Add(s.TotalEmployerContributions)
	}
	p.Totals = t
	r.periods[periodID] = p
	return t, nil
}

func (r *PayrollRepository) ListStaleProcessing(ctx context.Context, staleBefore time.Time) ([]payroll.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Period
	for _, p := range r.periods {
		if p.Status == payroll.StatusProcessing && p.AttendanceLocked && !p.PayslipsGenerated && p.UpdatedAt.Before(staleBefore) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PayrollRepository) PreviousReportable(ctx context.Context, companyID string, month, year, limit int) ([]payroll.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := payroll.Ordinal(month, year)
	var out []payroll.Period
	for _, p := range r.periods {
		if p.CompanyID == companyID && p.Status.Reportable() && payroll.Ordinal(p.PeriodMonth, p.PeriodYear) < current {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return payroll.Ordinal(out[i].PeriodMonth, out[i].PeriodYear) > payroll.Ordinal(out[j].PeriodMonth, out[j].PeriodYear)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Payslips

func (r *PayrollRepository) InsertPayslip(ctx context.Context, payslip payroll.Payslip) (payroll.Payslip, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.payslips {
		if s.PayrollPeriodID == payslip.PayrollPeriodID && s.EmployeeID == payslip.EmployeeID && !s.IsVoided {
			return s, false, nil
		}
	}
	payslip.CreatedAt = time.Now()
	r.payslips[payslip.ID] = payslip
	return payslip, true, nil
}

func (r *PayrollRepository) GetPayslip(ctx context.Context, companyID, id string) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.payslips[id]
	if !ok || s.CompanyID != companyID {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return s, nil
}

func (r *PayrollRepository) ListPayslips(ctx context.Context, companyID, periodID string, includeVoided bool) ([]payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Payslip
	for _, s := range r.payslips {
		if s.CompanyID != companyID || s.PayrollPeriodID != periodID || (s.IsVoided && !includeVoided) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

func (r *PayrollRepository) PayslipEmployeeIDs(ctx context.Context, companyID, periodID string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool)
	for _, s := range r.payslips {
		if s.CompanyID == companyID && s.PayrollPeriodID == periodID && !s.IsVoided {
			out[s.EmployeeID] = true
		}
	}
	return out, nil
}

func (r *PayrollRepository) VoidPayslip(ctx context.Context, companyID, id, reason, voidedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.payslips[id]
	if !ok || s.CompanyID != companyID {
		return payroll.ErrPayslipNotFound
	}
	if s.IsVoided {
		return payroll.ErrPayslipAlreadyVoided
	}
	now := time.Now()
	s.IsVoided = true
	s.VoidReason = &reason
	s.VoidedBy = &voidedBy
	s.VoidedAt = &now
	r.payslips[id] = s
	return nil
}

func (r *PayrollRepository) LatestFinalizedPayslip(ctx context.Context, companyID, employeeID string) (payroll.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		best  payroll.Payslip
		found bool
	)
	for _, s := range r.payslips {
		p, ok := r.periods[s.PayrollPeriodID]
		if !ok || s.CompanyID != companyID || s.EmployeeID != employeeID || s.IsVoided {
			continue
		}
		if p.Status != payroll.StatusFinalized && p.Status != payroll.StatusPaid {
			continue
		}
		if !found || payroll.Ordinal(s.PeriodMonth, s.PeriodYear) > payroll.Ordinal(best.PeriodMonth, best.PeriodYear) {
			best, found = s, true
		}
	}
	if !found {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return best, nil
}

func (r *PayrollRepository) YearToDate(ctx context.Context, companyID, employeeID string, fy, month, year int) (payroll.YearToDate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ytd := payroll.YearToDate{TaxableIncome: decimal.Zero, TDSDeducted: decimal.Zero}
	current := payroll.Ordinal(month, year)
	for _, s := range r.payslips {
		if s.CompanyID != companyID || s.EmployeeID != employeeID || s.IsVoided {
			continue
		}
		p := payroll.Period{PeriodMonth: s.PeriodMonth, PeriodYear: s.PeriodYear}
		if p.FinancialYear() != fy || payroll.Ordinal(s.PeriodMonth, s.PeriodYear) >= current {
			continue
		}
		ytd.TaxableIncome = ytd.TaxableIncome.Add(s.GrossSalary)
		ytd.TDSDeducted = ytd.TDSDeducted.Add(s.Deductions[payroll.DeductionTDS])
	}
	ytd.TaxableIncome = money.Round2(ytd.TaxableIncome)
	ytd.TDSDeducted = money.Round2(ytd.TDSDeducted)
	return ytd, nil
}

// Supplements

func (r *PayrollRepository) PendingSupplements(ctx context.Context, companyID, employeeID string, month, year int) ([]payroll.Supplement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := payroll.Ordinal(month, year)
	var out []payroll.Supplement
	for _, s := range r.supplements {
		if s.CompanyID == companyID && s.EmployeeID == employeeID && !s.Processed &&
			s.Status == payroll.SupplementApproved && payroll.Ordinal(s.PeriodMonth, s.PeriodYear) <= current {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PayrollRepository) MarkSupplementsProcessed(ctx context.Context, ids []string, payslipID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		s, ok := r.supplements[id]
		if !ok || s.Processed {
			return fmt.Errorf("supplement %s is not pending", id)
		}
		s.Processed = true
		s.PayslipID = &payslipID
		r.supplements[id] = s
	}
	return nil
}

func (r *PayrollRepository) ReleaseSupplements(ctx context.Context, payslipID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.supplements {
		if s.PayslipID != nil && *s.PayslipID == payslipID {
			s.Processed = false
			s.PayslipID = nil
			r.supplements[id] = s
		}
	}
	return nil
}

func zeroTotals() payroll.Totals {
	return payroll.Totals{
		TotalGross:                 decimal.Zero,
		TotalDeductions:            decimal.Zero,
		TotalNet:                   decimal.Zero,
		TotalEmployerContributions: decimal.Zero,
	}
}
