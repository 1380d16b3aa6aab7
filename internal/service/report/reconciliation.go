package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// reconciliationDepth is the number of earlier periods compared against.
const reconciliationDepth = 2

// Reconciliation compares a period against the two reportable periods before it. A
// missing earlier period is compared as a zero baseline.
func (s *ReportServiceImpl) Reconciliation(ctx context.Context, req report.ReportRequest) (report.ReconciliationReport, error) {
	// Validate request
	if err := req.Validate(); err != nil {
		return report.ReconciliationReport{}, err
	}

	// Get company ID from context
	companyID, err := s.getCompanyIDFromContext(ctx)
	if err != nil {
		return report.ReconciliationReport{}, err
	}

	current, err := s.reportablePeriod(ctx, companyID, req.Month, req.Year)
	if err != nil {
		return report.ReconciliationReport{}, err
	}

	previous, err := s.payrollRepo.PreviousReportable(ctx, companyID, req.Month, req.Year, reconciliationDepth)
	if err != nil {
		return report.ReconciliationReport{}, fmt.Errorf("failed to get previous periods: %w", err)
	}

	// Load payslips of all periods in parallel
	periods := append([]payroll.Period{current}, previous...)
	rows := make([][]report.PayslipRow, len(periods))

	g, gCtx := errgroup.WithContext(ctx)
	for i, period := range periods {
		i, period := i, period
		g.Go(func() error {
			r, err := s.reportRepo.PayslipRows(gCtx, companyID, period.ID)
			if err != nil {
				return fmt.Errorf("failed to get payslips for %02d/%d: %w", period.PeriodMonth, period.PeriodYear, err)
			}
			rows[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report.ReconciliationReport{}, err
	}

	out := report.ReconciliationReport{
		Header:      s.header(current),
		Current:     summarize(&current, current.PeriodMonth, current.PeriodYear, rows[0]),
		Comparisons: make([]report.Comparison, 0, reconciliationDepth),
	}

	baselines := make([][]report.PayslipRow, reconciliationDepth)
	month, year := current.PeriodMonth, current.PeriodYear
	for i := 0; i < reconciliationDepth; i++ {
		var baseline report.PeriodSummary
		if i < len(previous) {
			baseline = summarize(&previous[i], previous[i].PeriodMonth, previous[i].PeriodYear, rows[i+1])
			baselines[i] = rows[i+1]
			month, year = previous[i].PeriodMonth, previous[i].PeriodYear
		} else {
			month, year = precedingMonth(month, year)
			baseline = summarize(nil, month, year, nil)
		}
		out.Comparisons = append(out.Comparisons, report.Comparison{
			Baseline: baseline,
			Variance: variance(out.Current, baseline),
		})
	}

	out.Employees = employeeVariances(rows[0], baselines)
	return out, nil
}

func summarize(period *payroll.Period, month, year int, rows []report.PayslipRow) report.PeriodSummary {
	sum := report.PeriodSummary{
		PeriodMonth: month,
		PeriodYear:  year,
		Headcount:   len(rows),
		GrossSalary: decimal.Zero,
		NetSalary:   decimal.Zero,
	}
	if period != nil {
		id := period.ID
		sum.PayrollID = &id
	}
	for _, r := range rows {
		sum.GrossSalary = sum.GrossSalary.Add(r.Payslip.GrossSalary)
		sum.NetSalary = sum.NetSalary.Add(r.Payslip.NetSalary)
	}
	return sum
}

func variance(current, baseline report.PeriodSummary) report.Variance {
	v := report.Variance{
		Headcount: current.Headcount - baseline.Headcount,
		Gross:     current.GrossSalary.Sub(baseline.GrossSalary),
		Net:       current.NetSalary.Sub(baseline.NetSalary),
	}
	v.HeadcountPct = percentChange(decimal.NewFromInt(int64(v.Headcount)), decimal.NewFromInt(int64(baseline.Headcount)))
	v.GrossPct = percentChange(v.Gross, baseline.GrossSalary)
	v.NetPct = percentChange(v.Net, baseline.NetSalary)
	return v
}

// percentChange is nil when base is zero.
func percentChange(diff, base decimal.Decimal) *decimal.Decimal {
	if base.IsZero() {
		return nil
	}
	pct := money.Round2(diff.Mul(money.Hundred).Div(base))
	return &pct
}

func employeeVariances(current []report.PayslipRow, baselines [][]report.PayslipRow) []report.EmployeeVariance {
	byCode := map[string]*report.EmployeeVariance{}
	entry := func(p payroll.Payslip) *report.EmployeeVariance {
		ev, ok := byCode[p.EmployeeCode]
		if !ok {
			ev = &report.EmployeeVariance{
				EmployeeCode: p.EmployeeCode,
				EmployeeName: p.EmployeeName,
				Current:      zeroFigures(),
				Previous:     make([]report.EmployeeFigures, len(baselines)),
			}
			for i := range ev.Previous {
				ev.Previous[i] = zeroFigures()
			}
			byCode[p.EmployeeCode] = ev
		}
		return ev
	}

	for _, r := range current {
		entry(r.Payslip).Current = figures(r.Payslip)
	}
	for i, rows := range baselines {
		for _, r := range rows {
			entry(r.Payslip).Previous[i] = figures(r.Payslip)
		}
	}

	out := make([]report.EmployeeVariance, 0, len(byCode))
	for _, ev := range byCode {
		ev.GrossVariance = ev.Current.GrossSalary
		ev.NetVariance = ev.Current.NetSalary
		if len(ev.Previous) > 0 {
			ev.GrossVariance = ev.GrossVariance.Sub(ev.Previous[0].GrossSalary)
			ev.NetVariance = ev.NetVariance.Sub(ev.Previous[0].NetSalary)
		}
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out
}

func figures(p payroll.Payslip) report.EmployeeFigures {
	return report.EmployeeFigures{Present: true, GrossSalary: p.GrossSalary, NetSalary: p.NetSalary}
}

func zeroFigures() report.EmployeeFigures {
	return report.EmployeeFigures{GrossSalary: decimal.Zero, NetSalary: decimal.Zero}
}

func precedingMonth(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}
