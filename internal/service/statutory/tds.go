package statutory

import (
	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	"github.com/shopspring/decimal"
)

type TDSInput struct {
	Table         statutory.TDSTable
	FinancialYear int
	// MonthlyTaxable is this month's recurring taxable earnings, projected over the remaining months.
	MonthlyTaxable decimal.Decimal
	// OneOffTaxable is paid this month only (arrears, bonus, incentive) and is counted once.
	OneOffTaxable decimal.Decimal
	// PriorIncomeYTD is taxable income already paid in earlier months of the financial year.
	PriorIncomeYTD  decimal.Decimal
	DeductedYTD     decimal.Decimal
	MonthsRemaining int
	Declaration     *statutory.Declaration
	Caps            statutory.ExemptionCaps
}

// TDS projects annual income, taxes it through the regime slabs and spreads the tax still
// owed over the remaining months, this one included.
func TDS(in TDSInput) statutory.TaxComputation {
	months := in.MonthsRemaining
	if months < 1 {
		months = 1
	}

	monthly := money.NonNegative(in.MonthlyTaxable)
	annualGross := money.Round2(money.NonNegative(in.PriorIncomeYTD).
		Add(monthly.Mul(decimal.NewFromInt(int64(months)))).
		Add(money.NonNegative(in.OneOffTaxable)))
	standard := money.Min(money.NonNegative(in.Table.StandardDeduction), annualGross)

	exemptions := decimal.Zero
	if in.Table.AllowsExemptions {
		exemptions = Exemptions(in.Declaration, in.Caps)
	}

	taxable := money.NonNegative(annualGross.Sub(standard).Sub(exemptions))
	tax := SlabTax(in.Table.Slabs, taxable)

	rebate := decimal.Zero
	if taxable.LessThanOrEqual(in.Table.RebateLimit) {
		rebate = money.Min(tax, money.NonNegative(in.Table.RebateMax))
	}
	afterRebate := tax.Sub(rebate)
	cess := money.Percent(afterRebate, in.Table.CessRate)
	annualTax := afterRebate.Add(cess)

	deducted := money.NonNegative(in.DeductedYTD)
	monthlyTDS := money.Round2(money.NonNegative(annualTax.Sub(deducted)).Div(decimal.NewFromInt(int64(months))))

	return statutory.TaxComputation{
		Regime:            in.Table.Regime,
		FinancialYear:     in.FinancialYear,
		AnnualGross:       annualGross,
		StandardDeduction: standard,
		Exemptions:        exemptions,
		AnnualTaxable:     taxable,
		TaxBeforeRebate:   tax,
		Rebate:            rebate,
		Cess:              cess,
		AnnualTax:         annualTax,
		DeductedYTD:       deducted,
		MonthsRemaining:   months,
		Monthly:           monthlyTDS,
	}
}

// Exemptions sums the declared sections, each limited by its cap.
func Exemptions(decl *statutory.Declaration, caps statutory.ExemptionCaps) decimal.Decimal {
	if decl == nil {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, section := range statutory.Sections {
		declared := money.NonNegative(decl.Amounts[section])
		if limit, ok := caps.Caps[section]; ok {
			declared = money.Min(declared, limit)
		}
		total = total.Add(declared)
	}
	return money.Round2(total)
}

// SlabTax applies progressive slab rates to taxable income.
func SlabTax(slabs []statutory.TaxSlab, taxable decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	for _, slab := range slabs {
		if taxable.LessThanOrEqual(slab.From) {
			continue
		}
		upper := taxable
		if slab.To != nil {
			upper = money.Min(taxable, *slab.To)
		}
		tax = tax.Add(upper.Sub(slab.From).Mul(slab.Rate).Div(money.Hundred))
	}
	return money.Round2(tax)
}
