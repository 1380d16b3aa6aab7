package statutory

import (
	"time"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amtPtr(s string) *decimal.Decimal {
	d := amt(s)
	return &d
}

func fyPtr(fy int) *int {
	return &fy
}

// flatMonths returns the same amount for every month, with an optional different February amount.
func flatMonths(monthly, february string) [12]decimal.Decimal {
	var out [12]decimal.Decimal
	for i := range out {
		out[i] = amt(monthly)
	}
	out[MonthIndex(time.February)] = amt(february)
	return out
}

// DefaultTables is the seed rate data from FY 2024-25 onward.
func DefaultTables() Tables {
	return Tables{
		PF: []PFRule{{
			Validity:       Validity{EffectiveFrom: 2024},
			EmployeeRate:   amt("12"),
			EmployerRate:   amt("12"),
			EPSRate:        amt("8.33"),
			WageCeiling:    amt("15000"),
			EPSWageCeiling: amt("15000"),
		}},
		ESI: []ESIRule{{
			Validity:     Validity{EffectiveFrom: 2024},
			EmployeeRate: amt("0.75"),
			EmployerRate: amt("3.25"),
			WageCeiling:  amt("21000"),
		}},
		PT: []PTTable{
			{
				Validity: Validity{EffectiveFrom: 2024},
				State:    "MH",
				Slabs: []PTSlab{
					{MinGross: amt("0"), MaxGross: amtPtr("7500"), MonthlyAmounts: flatMonths("0", "0")},
					{MinGross: amt("7500.01"), MaxGross: amtPtr("10000"), MonthlyAmounts: flatMonths("175", "175")},
					{MinGross: amt("10000.01"), MonthlyAmounts: flatMonths("200", "300")},
				},
			},
			{
				Validity: Validity{EffectiveFrom: 2024},
				State:    "KA",
				Slabs: []PTSlab{
					{MinGross: amt("0"), MaxGross: amtPtr("24999.99"), MonthlyAmounts: flatMonths("0", "0")},
					{MinGross: amt("25000"), MonthlyAmounts: flatMonths("200", "300")},
				},
			},
			{
				Validity: Validity{EffectiveFrom: 2024},
				State:    "WB",
				Slabs: []PTSlab{
					{MinGross: amt("0"), MaxGross: amtPtr("10000"), MonthlyAmounts: flatMonths("0", "0")},
					{MinGross: amt("10000.01"), MaxGross: amtPtr("15000"), MonthlyAmounts: flatMonths("110", "110")},
					{MinGross: amt("15000.01"), MaxGross: amtPtr("25000"), MonthlyAmounts: flatMonths("130", "130")},
					{MinGross: amt("25000.01"), MaxGross: amtPtr("40000"), MonthlyAmounts: flatMonths("150", "150")},
					{MinGross: amt("40000.01"), MonthlyAmounts: flatMonths("200", "200")},
				},
			},
			{Validity: Validity{EffectiveFrom: 2024}, State: "DL"},
		},
		LWF: []LWFRate{
			{
				Validity:       Validity{EffectiveFrom: 2024},
				State:          "MH",
				EmployeeAmount: amt("25"),
				EmployerAmount: amt("75"),
				Months:         []time.Month{time.June, time.December},
			},
			{
				Validity:       Validity{EffectiveFrom: 2024},
				State:          "KA",
				EmployeeAmount: amt("50"),
				EmployerAmount: amt("100"),
				Months:         []time.Month{time.December},
			},
			{
				Validity:       Validity{EffectiveFrom: 2024},
				State:          "WB",
				EmployeeAmount: amt("3"),
				EmployerAmount: amt("15"),
				Months:         []time.Month{time.June, time.December},
			},
			{
				Validity:       Validity{EffectiveFrom: 2024},
				State:          "DL",
				EmployeeAmount: amt("0.75"),
				EmployerAmount: amt("2.25"),
				Months:         []time.Month{time.June, time.December},
			},
		},
		TDS: []TDSTable{
			{
				Validity: Validity{EffectiveFrom: 2024},
				Regime:   RegimeOld,
				Slabs: []TaxSlab{
					{From: amt("0"), To: amtPtr("250000"), Rate: amt("0")},
					{From: amt("250000"), To: amtPtr("500000"), Rate: amt("5")},
					{From: amt("500000"), To: amtPtr("1000000"), Rate: amt("20")},
					{From: amt("1000000"), Rate: amt("30")},
				},
				StandardDeduction: amt("50000"),
				RebateLimit:       amt("500000"),
				RebateMax:         amt("12500"),
				CessRate:          amt("4"),
				AllowsExemptions:  true,
			},
			{
				Validity: Validity{EffectiveFrom: 2024, EffectiveTo: fyPtr(2024)},
				Regime:   RegimeNew,
				Slabs: []TaxSlab{
					{From: amt("0"), To: amtPtr("300000"), Rate: amt("0")},
					{From: amt("300000"), To: amtPtr("700000"), Rate: amt("5")},
					{From: amt("700000"), To: amtPtr("1000000"), Rate: amt("10")},
					{From: amt("1000000"), To: amtPtr("1200000"), Rate: amt("15")},
					{From: amt("1200000"), To: amtPtr("1500000"), Rate: amt("20")},
					{From: amt("1500000"), Rate: amt("30")},
				},
				StandardDeduction: amt("75000"),
				RebateLimit:       amt("700000"),
				RebateMax:         amt("25000"),
				CessRate:          amt("4"),
			},
			{
				Validity: Validity{EffectiveFrom: 2025},
				Regime:   RegimeNew,
				Slabs: []TaxSlab{
					{From: amt("0"), To: amtPtr("400000"), Rate: amt("0")},
					{From: amt("400000"), To: amtPtr("800000"), Rate: amt("5")},
					{From: amt("800000"), To: amtPtr("1200000"), Rate: amt("10")},
					{From: amt("1200000"), To: amtPtr("1600000"), Rate: amt("15")},
					{From: amt("1600000"), To: amtPtr("2000000"), Rate: amt("20")},
					{From: amt("2000000"), To: amtPtr("2400000"), Rate: amt("25")},
					{From: amt("2400000"), Rate: amt("30")},
				},
				StandardDeduction: amt("75000"),
				RebateLimit:       amt("1200000"),
				RebateMax:         amt("60000"),
				CessRate:          amt("4"),
			},
		},
		Caps: []ExemptionCaps{{
			Validity: Validity{EffectiveFrom: 2024},
			Caps: map[Section]decimal.Decimal{
				Section80C:   amt("150000"),
				Section80D:   amt("25000"),
				Section80TTA: amt("10000"),
				Section24B:   amt("200000"),
				Section80EE:  amt("50000"),
			},
		}},
	}
}
