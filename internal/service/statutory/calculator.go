// Package statutory computes the statutory deductions of one payslip. Every calculator is a
// pure function: missing or zero inputs yield zero and no result is ever negative.
package statutory

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	"github.com/shopspring/decimal"
)

type PFOptions struct {
	OptedOut bool
	// CapWage limits the contribution wage to the rule's wage ceiling.
	CapWage bool
}

type PFResult struct {
	Wage          decimal.Decimal
	Employee      decimal.Decimal
	EmployerEPF   decimal.Decimal
	EPS           decimal.Decimal
	EmployerTotal decimal.Decimal
}

// PF computes provident fund on the basic (+DA) wage. The employer share is split into the
// pension scheme part, computed on a wage capped at the EPS ceiling, and the EPF remainder.
func PF(wage decimal.Decimal, rule statutory.PFRule, opts PFOptions) PFResult {
	wage = money.NonNegative(wage)
	if opts.OptedOut || wage.IsZero() {
		return PFResult{Wage: decimal.Zero, Employee: decimal.Zero, EmployerEPF: decimal.Zero, EPS: decimal.Zero, EmployerTotal: decimal.Zero}
	}
	if opts.CapWage && rule.WageCeiling.IsPositive() {
		wage = money.Min(wage, rule.WageCeiling)
	}

	employerTotal := money.Percent(wage, rule.EmployerRate)
	epsWage := wage
	if rule.EPSWageCeiling.IsPositive() {
		epsWage = money.Min(wage, rule.EPSWageCeiling)
	}
	eps := money.Min(money.Percent(epsWage, rule.EPSRate), employerTotal)

	return PFResult{
		Wage:          money.Round2(wage),
		Employee:      money.Percent(wage, rule.EmployeeRate),
		EmployerEPF:   employerTotal.Sub(eps),
		EPS:           eps,
		EmployerTotal: employerTotal,
	}
}

type ESIResult struct {
	Applicable bool
	Employee   decimal.Decimal
	Employer   decimal.Decimal
}

// ESI computes insurance contributions on gross. Coverage is decided on eligibilityWage
// (gross when nil): above the ceiling nothing is deducted.
func ESI(gross decimal.Decimal, eligibilityWage *decimal.Decimal, rule statutory.ESIRule) ESIResult {
	gross = money.NonNegative(gross)
	wage := money.ValueOr(eligibilityWage, gross)
	if !wage.IsPositive() || !gross.IsPositive() || wage.GreaterThan(rule.WageCeiling) {
		return ESIResult{Employee: decimal.Zero, Employer: decimal.Zero}
	}
	return ESIResult{
		Applicable: true,
		Employee:   money.Percent(gross, rule.EmployeeRate),
		Employer:   money.Percent(gross, rule.EmployerRate),
	}
}

// PT returns the professional tax of the slab matching monthly gross for the given month.
func PT(table statutory.PTTable, gross decimal.Decimal, month time.Month) decimal.Decimal {
	gross = money.NonNegative(gross)
	for _, slab := range table.Slabs {
		if slab.Matches(gross) {
			return money.Round2(money.NonNegative(slab.MonthlyAmounts[statutory.MonthIndex(month)]))
		}
	}
	return decimal.Zero
}

// LWF returns the fixed employee and employer welfare fund amounts due in month.
func LWF(rate statutory.LWFRate, month time.Month) (employee, employer decimal.Decimal) {
	if !rate.DueIn(month) {
		return decimal.Zero, decimal.Zero
	}
	return money.Round2(money.NonNegative(rate.EmployeeAmount)), money.Round2(money.NonNegative(rate.EmployerAmount))
}
