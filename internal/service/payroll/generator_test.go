package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	statcalc "github.com/cmlabs-hris/hris-payroll/internal/service/statutory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func juneInput(t *testing.T) PayslipInput {
	t.Helper()
	emp := testEmployee("e1", "EMP001")
	emp.LWFApplicable = true
	return PayslipInput{
		Period:   payroll.Period{ID: "p-2025-06", CompanyID: testCompanyID, PeriodMonth: 6, PeriodYear: 2025},
		Employee: emp,
		Structure: salary.Structure{
			EmployeeID:       "e1",
			CompanyID:        testCompanyID,
			Basic:            dec("10000"),
			HRA:              dec("4000"),
			SpecialAllowance: dec("2000"),
		},
		Attendance: attendance.Aggregate{
			EmployeeID:      "e1",
			TotalDays:       30,
			PresentDays:     15,
			AbsentDays:      15,
			WorkingDays:     dec("15"),
			ProRationFactor: dec("0.5"),
		},
		Book:   statutory.NewRateBook(statutory.DefaultTables(), 2025),
		Regime: statutory.RegimeNew,
		YTD:    payroll.YearToDate{TaxableIncome: decimal.Zero, TDSDeducted: decimal.Zero},
	}
}

func TestBuildPayslip_HalfMonthWithESIAndLWF(t *testing.T) {
	slip, err := BuildPayslip(juneInput(t))
	require.NoError(t, err)

	assert.True(t, slip.Earnings[payroll.EarningBasic].Equal(dec("5000")))
	assert.True(t, slip.Earnings[payroll.EarningHRA].Equal(dec("2000")))
	assert.True(t, slip.GrossSalary.Equal(dec("8000")))

	assert.True(t, slip.PFWage.Equal(dec("5000")))
	assert.True(t, slip.Deductions[payroll.DeductionPF].Equal(dec("600")))
	assert.True(t, slip.EmployerContributions[payroll.ContributionEPS].Equal(dec("416.5")))
	assert.True(t, slip.EmployerContributions[payroll.ContributionPFEmployer].Equal(dec("183.5")))

	assert.True(t, slip.ESIApplicable)
	assert.True(t, slip.Deductions[payroll.DeductionESI].Equal(dec("60")))
	assert.True(t, slip.EmployerContributions[payroll.ContributionESIEmployer].Equal(dec("260")))

	assert.True(t, slip.Deductions[payroll.DeductionProfessionalTax].Equal(dec("175")))
	assert.True(t, slip.Deductions[payroll.DeductionLWF].Equal(dec("25")))
	assert.True(t, slip.EmployerContributions[payroll.ContributionLWFEmployer].Equal(dec("75")))
	assert.True(t, slip.Deductions[payroll.DeductionTDS].IsZero())

	assert.True(t, slip.TotalDeductions.Equal(dec("860")))
	assert.True(t, slip.NetSalary.Equal(dec("7140")))
	assert.True(t, slip.TotalEmployerContributions.Equal(dec("935")))
	assert.Empty(t, slip.Warnings)
	assert.Equal(t, 30, slip.DaysInPeriod)
}

func TestBuildPayslip_PFOptions(t *testing.T) {
	in := juneInput(t)
	in.Attendance.ProRationFactor = decimal.NewFromInt(1)
	in.Structure.Basic = dec("20000")

	t.Run("capped wage", func(t *testing.T) {
		capped := in
		capped.Employee.PFOnCapped = true
		slip, err := BuildPayslip(capped)
		require.NoError(t, err)
		assert.True(t, slip.PFWage.Equal(dec("15000")))
		assert.True(t, slip.Deductions[payroll.DeductionPF].Equal(dec("1800")))
	})

	t.Run("uncapped wage", func(t *testing.T) {
		slip, err := BuildPayslip(in)
		require.NoError(t, err)
		assert.True(t, slip.Deductions[payroll.DeductionPF].Equal(dec("2400")))
		assert.True(t, slip.EmployerContributions[payroll.ContributionEPS].Equal(dec("1249.5")))
		assert.True(t, slip.EmployerContributions[payroll.ContributionPFEmployer].Equal(dec("1150.5")))
	})

	t.Run("opted out and ESI exempt", func(t *testing.T) {
		out := in
		out.Employee.PFOptedOut = true
		out.Employee.ESIExempt = true
		slip, err := BuildPayslip(out)
		require.NoError(t, err)
		assert.True(t, slip.Deductions[payroll.DeductionPF].IsZero())
		assert.True(t, slip.Deductions[payroll.DeductionESI].IsZero())
		assert.True(t, slip.EmployerContributions[payroll.ContributionEPS].IsZero())
	})

	t.Run("explicit PF wage base", func(t *testing.T) {
		based := in
		base := dec("12000")
		based.Structure.PFWageBase = &base
		slip, err := BuildPayslip(based)
		require.NoError(t, err)
		assert.True(t, slip.PFWage.Equal(dec("12000")))
		assert.True(t, slip.Deductions[payroll.DeductionPF].Equal(dec("1440")))
	})
}

func TestBuildPayslip_SupplementsRaiseTaxableGrossOnly(t *testing.T) {
	in := juneInput(t)
	in.Supplements = []payroll.Supplement{
		{ID: "s1", Type: payroll.SupplementArrears, Amount: dec("3000")},
		{ID: "s2", Type: payroll.SupplementIncentive, Amount: dec("1000")},
	}

	slip, err := BuildPayslip(in)
	require.NoError(t, err)

	assert.True(t, slip.Earnings[payroll.EarningArrears].Equal(dec("3000")))
	assert.True(t, slip.Earnings[payroll.EarningIncentive].Equal(dec("1000")))
	assert.True(t, slip.GrossSalary.Equal(dec("12000")))
	// statutory deductions stay on the fixed pay
	assert.True(t, slip.Deductions[payroll.DeductionESI].Equal(dec("60")))
	assert.True(t, slip.Deductions[payroll.DeductionProfessionalTax].Equal(dec("175")))
	// 10 months of the 8,000 fixed pay, supplements once
	require.NotNil(t, slip.Tax)
	assert.True(t, slip.Tax.AnnualGross.Equal(dec("84000")))
}

func TestBuildPayslip_AprilBonusNotAnnualised(t *testing.T) {
	in := juneInput(t)
	in.Period = payroll.Period{ID: "p-2025-04", CompanyID: testCompanyID, PeriodMonth: 4, PeriodYear: 2025}
	in.Attendance.ProRationFactor = decimal.NewFromInt(1)
	in.Structure.Basic = dec("50000")
	in.Structure.HRA = decimal.Zero
	in.Structure.SpecialAllowance = decimal.Zero
	in.Supplements = []payroll.Supplement{{ID: "s1", Type: payroll.SupplementBonus, Amount: dec("500000")}}

	slip, err := BuildPayslip(in)
	require.NoError(t, err)

	assert.True(t, slip.Earnings[payroll.EarningBonus].Equal(dec("500000")))
	require.NotNil(t, slip.Tax)
	assert.Equal(t, 12, slip.Tax.MonthsRemaining)
	assert.True(t, slip.Tax.AnnualGross.Equal(dec("1100000")))
	assert.True(t, slip.Deductions[payroll.DeductionTDS].IsZero())
}

func TestBuildPayslip_TaxUsesYearToDate(t *testing.T) {
	in := juneInput(t)
	in.Attendance.ProRationFactor = decimal.NewFromInt(1)
	in.Structure.Basic = dec("100000")
	in.Structure.HRA = dec("50000")
	in.YTD = payroll.YearToDate{TaxableIncome: dec("320000"), TDSDeducted: dec("20000")}

	slip, err := BuildPayslip(in)
	require.NoError(t, err)

	table, err := in.Book.TDS(statutory.RegimeNew)
	require.NoError(t, err)
	want := statcalc.TDS(statcalc.TDSInput{
		Table:           table,
		FinancialYear:   2025,
		MonthlyTaxable:  slip.GrossSalary,
		PriorIncomeYTD:  in.YTD.TaxableIncome,
		DeductedYTD:     in.YTD.TDSDeducted,
		MonthsRemaining: 10,
		Caps:            in.Book.Caps(),
	})
	require.NotNil(t, slip.Tax)
	assert.True(t, want.Monthly.Equal(slip.Deductions[payroll.DeductionTDS]))
	assert.True(t, slip.Tax.DeductedYTD.Equal(dec("20000")))
	assert.True(t, slip.Deductions[payroll.DeductionTDS].IsPositive())
}

func TestBuildPayslip_Installments(t *testing.T) {
	in := juneInput(t)
	in.Installments = []loan.EMI{
		{ID: "emi-1", LoanType: loan.TypeLoan, Amount: dec("1000")},
		{ID: "emi-2", LoanType: loan.TypeAdvance, Amount: dec("500")},
	}

	slip, err := BuildPayslip(in)
	require.NoError(t, err)
	assert.True(t, slip.Deductions[payroll.DeductionLoanEMI].Equal(dec("1000")))
	assert.True(t, slip.Deductions[payroll.DeductionSalaryAdvance].Equal(dec("500")))
	assert.True(t, slip.NetSalary.Equal(dec("5640")))
}

func TestBuildPayslip_MissingStateTable(t *testing.T) {
	in := juneInput(t)
	in.Employee.WorkState = "ZZ"

	_, err := BuildPayslip(in)
	assert.ErrorIs(t, err, statutory.ErrRateTableMissing)
}

func TestRegimeFor(t *testing.T) {
	old, bogus := statutory.RegimeOld, statutory.Regime("flat")
	settings := payroll.Settings{DefaultRegime: statutory.RegimeNew}

	r, err := regimeFor(nil, settings)
	require.NoError(t, err)
	assert.Equal(t, statutory.RegimeNew, r)

	r, err = regimeFor(&statutory.Declaration{Regime: &old}, settings)
	require.NoError(t, err)
	assert.Equal(t, statutory.RegimeOld, r)

	_, err = regimeFor(&statutory.Declaration{Regime: &bogus}, settings)
	assert.ErrorIs(t, err, statutory.ErrInvalidRegime)

	_, err = regimeFor(nil, payroll.Settings{})
	assert.ErrorIs(t, err, statutory.ErrInvalidRegime)
}

func TestBuildPayslip_PeriodMonthDrivesPT(t *testing.T) {
	in := juneInput(t)
	in.Period.PeriodMonth = int(time.February)
	in.Period.PeriodYear = 2026
	in.Attendance.ProRationFactor = decimal.NewFromInt(1)

	slip, err := BuildPayslip(in)
	require.NoError(t, err)
	assert.True(t, slip.Deductions[payroll.DeductionProfessionalTax].Equal(dec("300")))
}
