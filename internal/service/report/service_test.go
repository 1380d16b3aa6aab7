package report

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/crypto"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-payroll/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompanyID = "company-1"

func authCtx(t *testing.T) context.Context {
	t.Helper()
	tok := jwt.New()
	require.NoError(t, tok.Set("company_id", testCompanyID))
	require.NoError(t, tok.Set("user_id", "user-1"))
	return jwtauth.NewContext(context.Background(), tok, nil)
}

func dec(s string) decimal.Decimal { return money.MustParse(s) }

func strPtr(s string) *string { return &s }

func testCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	c, err := crypto.NewCipher(make([]byte, 32))
	require.NoError(t, err)
	return c
}

type slipFixture struct {
	periodID     string
	month        int
	employeeID   string
	code         string
	name         string
	earnings     payroll.Earnings
	deductions   payroll.Deductions
	contribution payroll.Contributions
	pfWage       string
	tax          *statutory.TaxComputation
}

func putSlip(r *memory.PayrollRepository, s slipFixture) {
	p := payroll.Payslip{
		ID:                    s.periodID + "-" + s.employeeID,
		PayrollPeriodID:       s.periodID,
		CompanyID:             testCompanyID,
		EmployeeID:            s.employeeID,
		EmployeeCode:          s.code,
		EmployeeName:          s.name,
		PeriodMonth:           s.month,
		PeriodYear:            2025,
		Earnings:              s.earnings.Normalize(),
		Deductions:            s.deductions.Normalize(),
		EmployerContributions: s.contribution,
		PFWage:                dec(s.pfWage),
		Tax:                   s.tax,
	}
	r.PutPayslip(p)
}

// newTestService seeds May 2025 (finalized), April 2025 (locked) and June 2025 (processing).
// March has no payroll.
func newTestService(t *testing.T, decryptor Decryptor) (*ReportServiceImpl, *memory.PayrollRepository) {
	t.Helper()
	cipher := testCipher(t)
	account, err := cipher.EncryptString("123456789012")
	require.NoError(t, err)

	employees := memory.NewEmployeeRepository(
		employee.Employee{
			ID: "emp-1", CompanyID: testCompanyID, EmployeeCode: "EMP001", FullName: "Asha Rao",
			PAN: strPtr("ABCPE1234F"), UAN: strPtr("100200300400"), WorkState: "MH",
			BankName: "HDFC Bank", BankIFSC: "HDFC0001234", BankAccountEncrypted: account,
		},
		employee.Employee{
			ID: "emp-2", CompanyID: testCompanyID, EmployeeCode: "EMP002", FullName: "Vikram Shetty",
			ESICNumber: strPtr("3100123456"), WorkState: "KA",
		},
		employee.Employee{
			ID: "emp-3", CompanyID: testCompanyID, EmployeeCode: "EMP003", FullName: "Leena Das", WorkState: "MH",
		},
	)

	payrolls := memory.NewPayrollRepository()
	payrolls.PutPeriod(payroll.Period{ID: "p-apr", CompanyID: testCompanyID, PeriodMonth: 4, PeriodYear: 2025, Status: payroll.StatusLocked})
	payrolls.PutPeriod(payroll.Period{ID: "p-may", CompanyID: testCompanyID, PeriodMonth: 5, PeriodYear: 2025, Status: payroll.StatusFinalized})
	payrolls.PutPeriod(payroll.Period{ID: "p-jun", CompanyID: testCompanyID, PeriodMonth: 6, PeriodYear: 2025, Status: payroll.StatusProcessing})

	emp1Earnings := payroll.Earnings{payroll.EarningBasic: dec("15000"), payroll.EarningHRA: dec("6000"), payroll.EarningSpecialAllowance: dec("4000")}
	emp1Contrib := payroll.Contributions{payroll.ContributionPFEmployer: dec("550.5"), payroll.ContributionEPS: dec("1249.5")}

	putSlip(payrolls, slipFixture{
		periodID: "p-may", month: 5, employeeID: "emp-1", code: "EMP001", name: "Asha Rao",
		earnings:     emp1Earnings,
		deductions:   payroll.Deductions{payroll.DeductionPF: dec("1800"), payroll.DeductionProfessionalTax: dec("200"), payroll.DeductionTDS: dec("500")},
		contribution: emp1Contrib,
		pfWage:       "15000",
		tax:          &statutory.TaxComputation{Regime: statutory.RegimeNew, AnnualTax: dec("6000")},
	})
	putSlip(payrolls, slipFixture{
		periodID: "p-may", month: 5, employeeID: "emp-2", code: "EMP002", name: "Vikram Shetty",
		earnings: payroll.Earnings{payroll.EarningBasic: dec("12000"), payroll.EarningHRA: dec("4800")},
		deductions: payroll.Deductions{
			payroll.DeductionPF: dec("1440"), payroll.DeductionESI: dec("126"),
			payroll.DeductionProfessionalTax: dec("175"), payroll.DeductionTDS: dec("100"),
		},
		contribution: payroll.Contributions{
			payroll.ContributionPFEmployer: dec("440.4"), payroll.ContributionEPS: dec("999.6"),
			payroll.ContributionESIEmployer: dec("546"),
		},
		pfWage: "12000",
	})
	putSlip(payrolls, slipFixture{
		periodID: "p-apr", month: 4, employeeID: "emp-1", code: "EMP001", name: "Asha Rao",
		earnings:     emp1Earnings,
		deductions:   payroll.Deductions{payroll.DeductionPF: dec("1800"), payroll.DeductionProfessionalTax: dec("200")},
		contribution: emp1Contrib,
		pfWage:       "15000",
	})
	putSlip(payrolls, slipFixture{
		periodID: "p-apr", month: 4, employeeID: "emp-3", code: "EMP003", name: "Leena Das",
		earnings: payroll.Earnings{payroll.EarningBasic: dec("10000")},
		pfWage:   "0",
	})

	if decryptor == nil {
		decryptor = cipher
	}
	svc := NewReportService(payrolls, memory.NewReportRepository(payrolls, employees), decryptor).(*ReportServiceImpl)
	return svc, payrolls
}

var may = report.ReportRequest{Month: 5, Year: 2025}

func TestPFReport(t *testing.T) {
	svc, _ := newTestService(t, nil)

	out, err := svc.PFReport(authCtx(t), may)
	require.NoError(t, err)

	assert.Equal(t, "p-may", out.PayrollID)
	assert.Equal(t, "finalized", out.Status)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "EMP001", out.Rows[0].EmployeeCode)
	assert.Equal(t, "100200300400", *out.Rows[0].UAN)
	assert.True(t, out.Rows[0].Total.Equal(dec("3600")))
	assert.Nil(t, out.Rows[1].UAN)

	assert.Equal(t, 2, out.Totals.Employees)
	assert.True(t, out.Totals.PFWage.Equal(dec("27000")))
	assert.True(t, out.Totals.EmployeeShare.Equal(dec("3240")))
	assert.True(t, out.Totals.EmployerEPF.Equal(dec("990.9")))
	assert.True(t, out.Totals.EPS.Equal(dec("2249.1")))
	assert.True(t, out.Totals.Total.Equal(dec("6480")))
	assert.Equal(t, 1, out.Totals.MissingUAN)
}

func TestESIReport_OnlyCoveredEmployees(t *testing.T) {
	svc, _ := newTestService(t, nil)

	out, err := svc.ESIReport(authCtx(t), may)
	require.NoError(t, err)

	require.Len(t, out.Rows, 1)
	assert.Equal(t, "EMP002", out.Rows[0].EmployeeCode)
	assert.Equal(t, "3100123456", *out.Rows[0].ESICNumber)
	assert.True(t, out.Totals.GrossSalary.Equal(dec("16800")))
	assert.True(t, out.Totals.EmployeeShare.Equal(dec("126")))
	assert.True(t, out.Totals.EmployerShare.Equal(dec("546")))
	assert.True(t, out.Totals.Total.Equal(dec("672")))
	assert.Zero(t, out.Totals.MissingIPNo)
}

func TestTDSReport_CountsMissingPAN(t *testing.T) {
	svc, _ := newTestService(t, nil)

	out, err := svc.TDSReport(authCtx(t), may)
	require.NoError(t, err)

	require.Len(t, out.Rows, 2)
	assert.Equal(t, statutory.RegimeNew, out.Rows[0].Regime)
	assert.True(t, out.Rows[0].AnnualTax.Equal(dec("6000")))
	assert.True(t, out.Rows[1].AnnualTax.IsZero())
	assert.True(t, out.Totals.TDS.Equal(dec("600")))
	assert.Equal(t, 1, out.Totals.MissingPAN)
}

func TestTDSReport_MalformedPANCountsAsMissing(t *testing.T) {
	svc, _ := newTestService(t, nil)
	rows, err := svc.reportRepo.PayslipRows(authCtx(t), testCompanyID, "p-may")
	require.NoError(t, err)
	rows[0].PAN = strPtr("ABC123")
	svc.reportRepo = stubRows(rows)

	out, err := svc.TDSReport(authCtx(t), may)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Totals.MissingPAN)
}

type stubRows []report.PayslipRow

func (s stubRows) PayslipRows(ctx context.Context, companyID, periodID string) ([]report.PayslipRow, error) {
	return s, nil
}

func TestPTReport_ByState(t *testing.T) {
	svc, _ := newTestService(t, nil)

	out, err := svc.PTReport(authCtx(t), may)
	require.NoError(t, err)

	require.Len(t, out.Rows, 2)
	assert.True(t, out.Totals.PT.Equal(dec("375")))
	assert.True(t, out.Totals.ByState["MH"].Equal(dec("200")))
	assert.True(t, out.Totals.ByState["KA"].Equal(dec("175")))
}

func TestSalaryRegister(t *testing.T) {
	svc, _ := newTestService(t, nil)

	out, err := svc.SalaryRegister(authCtx(t), may)
	require.NoError(t, err)

	require.Len(t, out.Rows, 2)
	assert.Equal(t, 2, out.Totals.Employees)
	assert.True(t, out.Totals.GrossSalary.Equal(dec("41800")))
	assert.True(t, out.Totals.TotalDeductions.Equal(dec("4341")))
	assert.True(t, out.Totals.NetSalary.Equal(dec("37459")))
	assert.True(t, out.Totals.Earnings[payroll.EarningBasic].Equal(dec("27000")))
	assert.True(t, out.Totals.Earnings[payroll.EarningBonus].IsZero())
	assert.True(t, out.Totals.EmployerContributions[payroll.ContributionEPS].Equal(dec("2249.1")))
	assert.True(t, out.Totals.TotalEmployerContributions.Equal(dec("3786")))

	// Register totals agree with the per-row sums.
	gross := decimal.Zero
	for _, r := range out.Rows {
		gross = gross.Add(r.GrossSalary)
	}
	assert.True(t, gross.Equal(out.Totals.GrossSalary))
}

func TestBankTransfer(t *testing.T) {
	t.Run("masked by default", func(t *testing.T) {
		svc, _ := newTestService(t, nil)

		out, err := svc.BankTransfer(authCtx(t), report.BankTransferRequest{ReportRequest: may})
		require.NoError(t, err)

		assert.True(t, out.Masked)
		require.Len(t, out.Rows, 1)
		assert.Equal(t, "XXXXXXXX9012", out.Rows[0].AccountNumber)
		assert.Equal(t, "Asha Rao", out.Rows[0].AccountHolder)
		assert.Equal(t, "HDFC0001234", out.Rows[0].IFSC)
		assert.True(t, out.Totals.Amount.Equal(dec("22500")))
		assert.Equal(t, []string{"emp EMP002 has no bank account on file"}, out.Warnings)
	})

	t.Run("invalid ifsc still listed", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		rows, err := svc.reportRepo.PayslipRows(authCtx(t), testCompanyID, "p-may")
		require.NoError(t, err)
		rows[0].BankIFSC = "HDFC1234"
		svc.reportRepo = stubRows(rows)

		out, err := svc.BankTransfer(authCtx(t), report.BankTransferRequest{ReportRequest: may})
		require.NoError(t, err)
		require.Len(t, out.Rows, 1)
		assert.Contains(t, out.Warnings, `emp EMP001 has an invalid IFSC "HDFC1234"`)
	})

	t.Run("unmasked", func(t *testing.T) {
		svc, _ := newTestService(t, nil)

		out, err := svc.BankTransfer(authCtx(t), report.BankTransferRequest{ReportRequest: may, Unmasked: true})
		require.NoError(t, err)

		assert.False(t, out.Masked)
		require.Len(t, out.Rows, 1)
		assert.Equal(t, "123456789012", out.Rows[0].AccountNumber)
	})

	t.Run("wrong key", func(t *testing.T) {
		key := make([]byte, 32)
		key[0] = 1
		other, err := crypto.NewCipher(key)
		require.NoError(t, err)
		svc, _ := newTestService(t, other)

		out, err := svc.BankTransfer(authCtx(t), report.BankTransferRequest{ReportRequest: may})
		require.NoError(t, err)

		assert.Empty(t, out.Rows)
		assert.Contains(t, out.Warnings, "emp EMP001 bank account could not be read")
	})

	t.Run("no decryptor", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		svc.decryptor = nil

		_, err := svc.BankTransfer(authCtx(t), report.BankTransferRequest{ReportRequest: may})
		assert.ErrorIs(t, err, report.ErrDecryptorMissing)
	})
}

func TestReports_RequireReportablePeriod(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := authCtx(t)

	_, err := svc.PFReport(ctx, report.ReportRequest{Month: 6, Year: 2025})
	assert.ErrorIs(t, err, report.ErrPeriodNotReportable)

	_, err = svc.SalaryRegister(ctx, report.ReportRequest{Month: 7, Year: 2025})
	assert.ErrorIs(t, err, report.ErrPeriodNotReportable)

	_, err = svc.Reconciliation(ctx, report.ReportRequest{Month: 6, Year: 2025})
	assert.ErrorIs(t, err, report.ErrPeriodNotReportable)

	_, err = svc.ESIReport(ctx, report.ReportRequest{Month: 13, Year: 2025})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestReports_RequireClaims(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.PTReport(context.Background(), may)
	assert.Error(t, err)
}

func TestReconciliation(t *testing.T) {
	svc, _ := newTestService(t, nil)

	out, err := svc.Reconciliation(authCtx(t), may)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Current.Headcount)
	assert.True(t, out.Current.GrossSalary.Equal(dec("41800")))
	assert.True(t, out.Current.NetSalary.Equal(dec("37459")))

	require.Len(t, out.Comparisons, 2)

	april := out.Comparisons[0]
	require.NotNil(t, april.Baseline.PayrollID)
	assert.Equal(t, "p-apr", *april.Baseline.PayrollID)
	assert.Equal(t, 4, april.Baseline.PeriodMonth)
	assert.True(t, april.Baseline.GrossSalary.Equal(dec("35000")))
	assert.Equal(t, 0, april.Variance.Headcount)
	require.NotNil(t, april.Variance.HeadcountPct)
	assert.True(t, april.Variance.HeadcountPct.IsZero())
	assert.True(t, april.Variance.Gross.Equal(dec("6800")))
	assert.True(t, april.Variance.GrossPct.Equal(dec("19.43")))
	assert.True(t, april.Variance.Net.Equal(dec("4459")))
	assert.True(t, april.Variance.NetPct.Equal(dec("13.51")))

	march := out.Comparisons[1]
	assert.Nil(t, march.Baseline.PayrollID)
	assert.Equal(t, 3, march.Baseline.PeriodMonth)
	assert.Equal(t, 2025, march.Baseline.PeriodYear)
	assert.Equal(t, 0, march.Baseline.Headcount)
	assert.Nil(t, march.Variance.GrossPct)
	assert.Nil(t, march.Variance.NetPct)
	assert.Nil(t, march.Variance.HeadcountPct)
	assert.True(t, march.Variance.Gross.Equal(dec("41800")))

	require.Len(t, out.Employees, 3)
	assert.Equal(t, "EMP001", out.Employees[0].EmployeeCode)
	assert.True(t, out.Employees[0].NetVariance.Equal(dec("-500")))
	assert.True(t, out.Employees[0].GrossVariance.IsZero())

	joiner := out.Employees[1]
	assert.Equal(t, "EMP002", joiner.EmployeeCode)
	assert.False(t, joiner.Previous[0].Present)
	assert.True(t, joiner.GrossVariance.Equal(dec("16800")))

	leaver := out.Employees[2]
	assert.Equal(t, "EMP003", leaver.EmployeeCode)
	assert.Equal(t, "Leena Das", leaver.EmployeeName)
	assert.False(t, leaver.Current.Present)
	assert.True(t, leaver.Previous[0].Present)
	assert.True(t, leaver.GrossVariance.Equal(dec("-10000")))
	require.Len(t, leaver.Previous, 2)
	assert.False(t, leaver.Previous[1].Present)
}

func TestReconciliation_YearBoundary(t *testing.T) {
	svc, payrolls := newTestService(t, nil)
	payrolls.PutPeriod(payroll.Period{ID: "p-jan", CompanyID: testCompanyID, PeriodMonth: 1, PeriodYear: 2026, Status: payroll.StatusPaid})

	out, err := svc.Reconciliation(authCtx(t), report.ReportRequest{Month: 1, Year: 2026})
	require.NoError(t, err)

	assert.Equal(t, 0, out.Current.Headcount)
	require.Len(t, out.Comparisons, 2)
	assert.Equal(t, "p-may", *out.Comparisons[0].Baseline.PayrollID)
	assert.Equal(t, "p-apr", *out.Comparisons[1].Baseline.PayrollID)
	assert.True(t, out.Comparisons[0].Variance.GrossPct.Equal(dec("-100")))
}

func TestPrecedingMonth(t *testing.T) {
	m, y := precedingMonth(1, 2025)
	assert.Equal(t, 12, m)
	assert.Equal(t, 2024, y)

	m, y = precedingMonth(7, 2025)
	assert.Equal(t, 6, m)
	assert.Equal(t, 2025, y)
}
