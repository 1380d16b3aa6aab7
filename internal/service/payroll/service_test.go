package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	"github.com/cmlabs-hris/hris-payroll/internal/repository/memory"
	attendanceservice "github.com/cmlabs-hris/hris-payroll/internal/service/attendance"
	statcalc "github.com/cmlabs-hris/hris-payroll/internal/service/statutory"
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

type fixture struct {
	svc        payroll.PayrollService
	impl       *PayrollServiceImpl
	payrolls   *memory.PayrollRepository
	salaries   *memory.SalaryRepository
	attendance *memory.AttendanceRepository
	loans      *memory.LoanRepository
	leaves     *memory.LeaveRepository
}

func testEmployee(id, code string) employee.Employee {
	return employee.Employee{
		ID:               id,
		CompanyID:        testCompanyID,
		EmployeeCode:     code,
		FullName:         "Employee " + code,
		HireDate:         time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		EmploymentStatus: employee.EmploymentStatusActive,
		WorkState:        "MH",
	}
}

func testStructure(employeeID string) salary.Structure {
	return salary.Structure{
		ID:               "ss-" + employeeID,
		EmployeeID:       employeeID,
		CompanyID:        testCompanyID,
		EffectiveFrom:    time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
		Basic:            dec("15000"),
		HRA:              dec("6000"),
		SpecialAllowance: dec("4000"),
	}
}

func newFixture(t *testing.T, employees ...employee.Employee) *fixture {
	t.Helper()
	f := &fixture{
		payrolls:   memory.NewPayrollRepository(),
		salaries:   memory.NewSalaryRepository(),
		attendance: memory.NewAttendanceRepository(),
		loans:      memory.NewLoanRepository(),
		leaves:     memory.NewLeaveRepository(),
	}
	rates := statcalc.NewRateBookProvider(memory.NewRateTableRepository(statutory.DefaultTables()))
	svc := NewPayrollService(
		memory.NewTransactor(),
		f.payrolls,
		memory.NewEmployeeRepository(employees...),
		f.salaries,
		attendanceservice.NewAttendanceService(f.attendance),
		f.loans,
		f.leaves,
		memory.NewDeclarationRepository(),
		rates,
		payroll.Settings{DefaultRegime: statutory.RegimeNew, PayNonWorkingDays: true},
	)
	f.svc = svc
	f.impl = svc.(*PayrollServiceImpl)
	return f
}

// presentAllMonth records every day of the month as present.
func (f *fixture) presentAllMonth(employeeID string, year int, month time.Month) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d := start; d.Month() == month; d = d.AddDate(0, 0, 1) {
		f.attendance.Put(attendance.Record{
			ID:         employeeID + d.Format("20060102"),
			EmployeeID: employeeID,
			CompanyID:  testCompanyID,
			Date:       d,
			Status:     attendance.StatusPresent,
		})
	}
}

// readyPeriod initiates May 2025 and locks its attendance.
func (f *fixture) readyPeriod(t *testing.T) payroll.PeriodResponse {
	t.Helper()
	ctx := authCtx(t)
	p, err := f.svc.InitiatePayroll(ctx, payroll.InitiatePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)
	p, err = f.svc.LockAttendance(ctx, p.ID)
	require.NoError(t, err)
	return p
}

func (f *fixture) assertTotalsMatchPayslips(t *testing.T, periodID string) {
	t.Helper()
	ctx := authCtx(t)
	period, err := f.svc.GetPayroll(ctx, periodID)
	require.NoError(t, err)
	slips, err := f.svc.ListPayslips(ctx, periodID)
	require.NoError(t, err)

	count, gross, ded, net := 0, decimal.Zero, decimal.Zero, decimal.Zero
	for _, s := range slips {
		if s.IsVoided {
			continue
		}
		count++
		gross = gross.Add(s.GrossSalary)
		ded = ded.Add(s.TotalDeductions)
		net = net.Add(s.NetSalary)
	}
	assert.Equal(t, count, period.EmployeeCount)
	assert.True(t, gross.Equal(period.TotalGross), "gross %s vs %s", gross, period.TotalGross)
	assert.True(t, ded.Equal(period.TotalDeductions))
	assert.True(t, net.Equal(period.TotalNet))
}

func TestGeneratePayroll_MissingStructureSkipsEmployee(t *testing.T) {
	f := newFixture(t,
		testEmployee("e1", "EMP001"),
		testEmployee("e2", "EMP002"),
		testEmployee("e3", "EMP003"),
	)
	for _, id := range []string{"e1", "e2", "e3"} {
		f.presentAllMonth(id, 2025, time.May)
	}
	f.salaries.Put(testStructure("e1"))
	f.salaries.Put(testStructure("e2"))
	period := f.readyPeriod(t)

	result, err := f.svc.GeneratePayroll(authCtx(t), payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)

	assert.Equal(t, period.ID, result.PayrollID)
	assert.Equal(t, 2, result.CreatedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, []string{"no salary structure for emp EMP003"}, result.Errors)
	assert.Equal(t, string(payroll.StatusProcessing), result.Status)
	require.Len(t, result.Items, 3)
	assert.Equal(t, payroll.OutcomeFailed, result.Items[2].Outcome)

	got, err := f.svc.GetPayroll(authCtx(t), period.ID)
	require.NoError(t, err)
	assert.False(t, got.PayslipsGenerated)
	assert.True(t, got.EarningsApplied)
	assert.NotNil(t, got.ProcessedBy)
	f.assertTotalsMatchPayslips(t, period.ID)
}

func TestGeneratePayroll_PayslipFigures(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"))
	f.presentAllMonth("e1", 2025, time.May)
	f.salaries.Put(testStructure("e1"))
	period := f.readyPeriod(t)

	_, err := f.svc.GeneratePayroll(authCtx(t), payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)

	slips, err := f.svc.ListPayslips(authCtx(t), period.ID)
	require.NoError(t, err)
	require.Len(t, slips, 1)
	s := slips[0]

	assert.True(t, s.ProRationFactor.Equal(decimal.NewFromInt(1)))
	assert.True(t, s.Earnings[payroll.EarningBasic].Equal(dec("15000")))
	assert.True(t, s.GrossSalary.Equal(dec("25000")))
	assert.True(t, s.Deductions[payroll.DeductionPF].Equal(dec("1800")))
	assert.True(t, s.Deductions[payroll.DeductionESI].IsZero())
	assert.True(t, s.Deductions[payroll.DeductionProfessionalTax].Equal(dec("200")))
	assert.True(t, s.Deductions[payroll.DeductionTDS].IsZero())
	assert.True(t, s.EmployerContributions[payroll.ContributionEPS].Equal(dec("1249.5")))
	assert.True(t, s.EmployerContributions[payroll.ContributionPFEmployer].Equal(dec("550.5")))
	assert.True(t, s.TotalDeductions.Equal(dec("2000")))
	assert.True(t, s.NetSalary.Equal(dec("23000")))
	require.NotNil(t, s.Tax)
	assert.Equal(t, statutory.RegimeNew, s.Tax.Regime)
	assert.Equal(t, 11, s.Tax.MonthsRemaining)

	sum := decimal.Zero
	for _, v := range s.Earnings {
		sum = sum.Add(v)
	}
	assert.True(t, sum.Equal(s.GrossSalary))
}

func TestGeneratePayroll_Idempotent(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"), testEmployee("e2", "EMP002"))
	f.presentAllMonth("e1", 2025, time.May)
	f.presentAllMonth("e2", 2025, time.May)
	f.salaries.Put(testStructure("e1"))
	period := f.readyPeriod(t)
	req := payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025}

	first, err := f.svc.GeneratePayroll(authCtx(t), req)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CreatedCount)

	// the missing structure is fixed, the rerun only fills the gap
	f.salaries.Put(testStructure("e2"))
	second, err := f.svc.GeneratePayroll(authCtx(t), req)
	require.NoError(t, err)
	assert.Equal(t, 1, second.CreatedCount)
	assert.Equal(t, 1, second.SkippedCount)
	assert.Empty(t, second.Errors)
	assert.Equal(t, string(payroll.StatusFinalized), second.Status)

	third, err := f.svc.GeneratePayroll(authCtx(t), req)
	require.NoError(t, err)
	assert.Equal(t, 0, third.CreatedCount)
	assert.Equal(t, 2, third.SkippedCount)
	assert.Empty(t, third.Errors)

	got, err := f.svc.GetPayroll(authCtx(t), period.ID)
	require.NoError(t, err)
	assert.True(t, got.PayslipsGenerated)
	assert.Equal(t, string(payroll.StatusFinalized), got.Status)
	require.NotNil(t, got.FinalizedBy)
	assert.Equal(t, "user-1", *got.FinalizedBy)
	assert.NotNil(t, got.FinalizedAt)
	assert.Equal(t, 2, got.EmployeeCount)
	f.assertTotalsMatchPayslips(t, period.ID)
}

func TestGeneratePayroll_RequiresAttendanceLock(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"))

	_, err := f.svc.GeneratePayroll(authCtx(t), payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	assert.ErrorIs(t, err, payroll.ErrAttendanceNotLocked)

	stored, err := f.payrolls.GetPeriodByMonth(context.Background(), testCompanyID, 5, 2025)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusDraft, stored.Status)
}

func TestGeneratePayroll_FrozenPeriods(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"))
	f.salaries.Put(testStructure("e1"))
	period := f.readyPeriod(t)
	ctx := authCtx(t)
	req := payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025}

	_, err := f.svc.Lock(ctx, period.ID)
	require.NoError(t, err)
	_, err = f.svc.GeneratePayroll(ctx, req)
	assert.ErrorIs(t, err, payroll.ErrPeriodLocked)

	_, err = f.svc.Unlock(ctx, period.ID)
	require.NoError(t, err)
	first, err := f.svc.GeneratePayroll(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CreatedCount)
	assert.Equal(t, string(payroll.StatusFinalized), first.Status)

	again, err := f.svc.GeneratePayroll(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 0, again.CreatedCount)
	assert.Equal(t, 1, again.SkippedCount)
	assert.Empty(t, again.Errors)
	require.Len(t, again.Items, 1)
	assert.Equal(t, payroll.OutcomeSkipped, again.Items[0].Outcome)

	_, err = f.svc.MarkPaid(ctx, payroll.MarkPaidRequest{ID: period.ID, PaymentReference: "NEFT-7"})
	require.NoError(t, err)
	paid, err := f.svc.GeneratePayroll(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 0, paid.CreatedCount)
	assert.Equal(t, string(payroll.StatusPaid), paid.Status)
	f.assertTotalsMatchPayslips(t, period.ID)
}

func TestGeneratePayroll_SupplementsAndInstallments(t *testing.T) {
	// EMP002 has no structure, so the period stays open for the void below
	f := newFixture(t, testEmployee("e1", "EMP001"), testEmployee("e2", "EMP002"))
	f.presentAllMonth("e1", 2025, time.May)
	f.salaries.Put(testStructure("e1"))
	f.payrolls.PutSupplement(payroll.Supplement{
		ID: "sup-1", CompanyID: testCompanyID, EmployeeID: "e1",
		Type: payroll.SupplementBonus, Status: payroll.SupplementApproved, Amount: dec("5000"), PeriodMonth: 5, PeriodYear: 2025,
	})
	f.payrolls.PutSupplement(payroll.Supplement{
		ID: "sup-2", CompanyID: testCompanyID, EmployeeID: "e1",
		Type: payroll.SupplementIncentive, Status: payroll.SupplementPending, Amount: dec("7000"), PeriodMonth: 5, PeriodYear: 2025,
	})
	f.loans.PutLoan(loan.Loan{
		ID: "loan-1", CompanyID: testCompanyID, EmployeeID: "e1", Type: loan.TypeLoan,
		Principal: dec("20000"), EMIAmount: dec("2000"), OutstandingAmount: dec("20000"), Status: loan.StatusActive,
	})
	f.loans.PutInstallment(loan.EMI{
		ID: "emi-1", LoanID: "loan-1", InstallmentNo: 1, Amount: dec("2000"),
		DueDate: time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC), Status: loan.EMIStatusPending,
	})
	period := f.readyPeriod(t)

	_, err := f.svc.GeneratePayroll(authCtx(t), payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)

	slips, err := f.svc.ListPayslips(authCtx(t), period.ID)
	require.NoError(t, err)
	require.Len(t, slips, 1)
	s := slips[0]
	assert.True(t, s.Earnings[payroll.EarningBonus].Equal(dec("5000")))
	assert.True(t, s.Earnings[payroll.EarningIncentive].IsZero(), "unapproved supplements are not paid")
	assert.True(t, s.GrossSalary.Equal(dec("30000")))
	assert.True(t, s.Deductions[payroll.DeductionLoanEMI].Equal(dec("2000")))

	assert.True(t, f.payrolls.Supplement("sup-1").Processed)
	assert.False(t, f.payrolls.Supplement("sup-2").Processed)
	assert.Equal(t, loan.EMIStatusPaid, f.loans.Installment("emi-1").Status)
	assert.True(t, f.loans.Loan("loan-1").OutstandingAmount.Equal(dec("18000")))

	// voiding releases what the payslip consumed
	_, err = f.svc.VoidPayslip(authCtx(t), payroll.VoidPayslipRequest{ID: s.ID, Reason: "wrong bonus"})
	require.NoError(t, err)
	assert.False(t, f.payrolls.Supplement("sup-1").Processed)
	assert.Equal(t, loan.EMIStatusPending, f.loans.Installment("emi-1").Status)
	assert.True(t, f.loans.Loan("loan-1").OutstandingAmount.Equal(dec("20000")))

	got, err := f.svc.GetPayroll(authCtx(t), period.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.EmployeeCount)
	assert.False(t, got.PayslipsGenerated)

	again, err := f.svc.GeneratePayroll(authCtx(t), payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, 1, again.CreatedCount)
	f.assertTotalsMatchPayslips(t, period.ID)
}

func TestGeneratePayroll_NegativeNetIsFlagged(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"))
	f.presentAllMonth("e1", 2025, time.May)
	f.salaries.Put(testStructure("e1"))
	f.loans.PutLoan(loan.Loan{
		ID: "adv-1", CompanyID: testCompanyID, EmployeeID: "e1", Type: loan.TypeAdvance,
		OutstandingAmount: dec("40000"), Status: loan.StatusActive,
	})
	f.loans.PutInstallment(loan.EMI{
		ID: "emi-1", LoanID: "adv-1", Amount: dec("40000"),
		DueDate: time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC), Status: loan.EMIStatusPending,
	})
	period := f.readyPeriod(t)

	_, err := f.svc.GeneratePayroll(authCtx(t), payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)

	slips, err := f.svc.ListPayslips(authCtx(t), period.ID)
	require.NoError(t, err)
	require.Len(t, slips, 1)
	assert.True(t, slips[0].NegativeNet)
	assert.Contains(t, slips[0].Warnings, payroll.WarningNegativeNet)
	assert.True(t, slips[0].Deductions[payroll.DeductionSalaryAdvance].Equal(dec("40000")))
	assert.True(t, slips[0].NetSalary.Equal(slips[0].GrossSalary.Sub(slips[0].TotalDeductions)))
}

func TestGeneratePayroll_ZeroAttendanceStillProducesPayslip(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"))
	f.salaries.Put(testStructure("e1"))
	period := f.readyPeriod(t)

	result, err := f.svc.GeneratePayroll(authCtx(t), payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedCount)

	slips, err := f.svc.ListPayslips(authCtx(t), period.ID)
	require.NoError(t, err)
	require.Len(t, slips, 1)
	assert.True(t, slips[0].ProRationFactor.IsZero())
	assert.True(t, slips[0].GrossSalary.IsZero())
	assert.Contains(t, slips[0].Warnings, payroll.WarningZeroAttendance)
}

func TestGeneratePayroll_CompanySettingsOverrideDefaults(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"))
	f.presentAllMonth("e1", 2025, time.May)
	f.salaries.Put(testStructure("e1"))
	f.payrolls.PutSettings(payroll.Settings{CompanyID: testCompanyID, DefaultRegime: statutory.RegimeOld, PayNonWorkingDays: true})
	period := f.readyPeriod(t)

	_, err := f.svc.GeneratePayroll(authCtx(t), payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)

	slips, err := f.svc.ListPayslips(authCtx(t), period.ID)
	require.NoError(t, err)
	require.Len(t, slips, 1)
	require.NotNil(t, slips[0].Tax)
	assert.Equal(t, statutory.RegimeOld, slips[0].Tax.Regime)
}

func TestGeneratePayroll_CancelledBeforeFirstEmployee(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"))
	f.salaries.Put(testStructure("e1"))
	period := f.readyPeriod(t)

	ctx, cancel := context.WithCancel(authCtx(t))
	cancel()
	result, err := f.svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)
	assert.True(t, result.Interrupted)
	assert.Equal(t, 0, result.CreatedCount)

	// the resume job picks the period up once it has gone stale
	f.impl.now = func() time.Time { return time.Now().Add(time.Hour) }
	resumed, err := f.impl.ResumeInterrupted(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed)

	got, err := f.svc.GetPayroll(authCtx(t), period.ID)
	require.NoError(t, err)
	assert.True(t, got.PayslipsGenerated)
	assert.Equal(t, 1, got.EmployeeCount)
}

func TestFinalizePayroll(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"), testEmployee("e2", "EMP002"))
	f.salaries.Put(testStructure("e1"))
	period := f.readyPeriod(t)
	ctx := authCtx(t)

	_, err := f.svc.FinalizePayroll(ctx, payroll.FinalizePayrollRequest{ID: period.ID})
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition, "draft periods cannot be finalized")

	_, err = f.svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)

	_, err = f.svc.FinalizePayroll(ctx, payroll.FinalizePayrollRequest{ID: period.ID})
	assert.ErrorIs(t, err, payroll.ErrPayslipsIncomplete)

	got, err := f.svc.FinalizePayroll(ctx, payroll.FinalizePayrollRequest{ID: period.ID, OverridePreCheck: true})
	require.NoError(t, err)
	assert.Equal(t, string(payroll.StatusFinalized), got.Status)
	assert.True(t, got.PreCheckCompleted)
	assert.False(t, got.PayslipsGenerated)
	assert.NotNil(t, got.FinalizedAt)
	assert.Equal(t, "user-1", *got.FinalizedBy)
	assert.Equal(t, 1, got.EmployeeCount)
}

func TestFinalizePayroll_RequiresAttendanceLock(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"))
	f.payrolls.PutPeriod(payroll.Period{
		ID: "p-may", CompanyID: testCompanyID, PeriodMonth: 5, PeriodYear: 2025,
		Status: payroll.StatusProcessing, PreCheckCompleted: true,
	})

	_, err := f.svc.FinalizePayroll(authCtx(t), payroll.FinalizePayrollRequest{ID: "p-may", OverridePreCheck: true})
	assert.ErrorIs(t, err, payroll.ErrAttendanceNotLocked)

	stored, err := f.payrolls.GetPeriodByID(context.Background(), testCompanyID, "p-may")
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusProcessing, stored.Status)
}

func TestMarkPaidAndDistribute(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"))
	f.salaries.Put(testStructure("e1"))
	period := f.readyPeriod(t)
	ctx := authCtx(t)

	_, err := f.svc.MarkPaid(ctx, payroll.MarkPaidRequest{ID: period.ID, PaymentReference: "NEFT-1"})
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
	_, err = f.svc.MarkDistributed(ctx, period.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)

	result, err := f.svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, string(payroll.StatusFinalized), result.Status)

	_, err = f.svc.MarkPaid(ctx, payroll.MarkPaidRequest{ID: period.ID})
	assert.Error(t, err, "payment reference is required")

	paid, err := f.svc.MarkPaid(ctx, payroll.MarkPaidRequest{ID: period.ID, PaymentReference: "NEFT-1"})
	require.NoError(t, err)
	assert.Equal(t, string(payroll.StatusPaid), paid.Status)
	assert.Equal(t, "NEFT-1", *paid.PaymentReference)

	dist, err := f.svc.MarkDistributed(ctx, period.ID)
	require.NoError(t, err)
	assert.True(t, dist.PayslipsDistributed)

	_, err = f.svc.LockAttendance(ctx, period.ID)
	assert.ErrorIs(t, err, payroll.ErrPeriodFinalized)
}

func TestLockUnlockRestoresStatus(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"), testEmployee("e2", "EMP002"))
	f.salaries.Put(testStructure("e1"))
	period := f.readyPeriod(t)
	ctx := authCtx(t)

	_, err := f.svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)

	locked, err := f.svc.Lock(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, string(payroll.StatusLocked), locked.Status)
	assert.NotNil(t, locked.LockedAt)

	_, err = f.svc.Lock(ctx, period.ID)
	assert.ErrorIs(t, err, payroll.ErrPeriodLocked)

	unlocked, err := f.svc.Unlock(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, string(payroll.StatusProcessing), unlocked.Status)
	assert.Nil(t, unlocked.LockedAt)

	_, err = f.svc.Unlock(ctx, period.ID)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotLocked)
}

func TestVoidPayslip_OnlyWhileProcessing(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"))
	f.salaries.Put(testStructure("e1"))
	period := f.readyPeriod(t)
	ctx := authCtx(t)

	_, err := f.svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)
	slips, err := f.svc.ListPayslips(ctx, period.ID)
	require.NoError(t, err)
	require.Len(t, slips, 1)

	_, err = f.svc.VoidPayslip(ctx, payroll.VoidPayslipRequest{ID: slips[0].ID})
	assert.Error(t, err, "reason is required")

	// a full run finalizes the period
	_, err = f.svc.VoidPayslip(ctx, payroll.VoidPayslipRequest{ID: slips[0].ID, Reason: "late correction"})
	assert.ErrorIs(t, err, payroll.ErrPeriodFinalized)
}

func TestRunPreCheck(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"), testEmployee("e2", "EMP002"))
	f.salaries.Put(testStructure("e1"))
	f.loans.PutLoan(loan.Loan{ID: "loan-9", CompanyID: testCompanyID, EmployeeID: "e1", EmployeeCode: "EMP001", Type: loan.TypeLoan, Status: loan.StatusApproved})
	f.leaves.PutPending(leave.Request{
		ID: "lr-1", EmployeeID: "e1", EmployeeCode: "EMP001", Status: leave.LeaveRequestStatusWaitingApproval,
		StartDate: time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.May, 22, 0, 0, 0, 0, time.UTC),
	})
	period := f.readyPeriod(t)

	res, err := f.svc.RunPreCheck(authCtx(t), period.ID)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	require.Len(t, res.Warnings, 3)
	assert.Equal(t, "no salary structure for emp EMP002", res.Warnings[0])
	assert.Contains(t, res.Warnings[1], "loan-9")
	assert.Contains(t, res.Warnings[2], "lr-1")

	clean := newFixture(t, testEmployee("e1", "EMP001"))
	clean.salaries.Put(testStructure("e1"))
	p := clean.readyPeriod(t)
	res, err = clean.svc.RunPreCheck(authCtx(t), p.ID)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Empty(t, res.Warnings)
}

func TestAttendanceEditable(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"))
	ctx := authCtx(t)
	may := time.Date(2025, time.May, 14, 0, 0, 0, 0, time.UTC)

	ok, err := f.svc.AttendanceEditable(ctx, may)
	require.NoError(t, err)
	assert.True(t, ok)

	period := f.readyPeriod(t)
	ok, err = f.svc.AttendanceEditable(ctx, may)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.UnlockAttendance(ctx, period.ID)
	require.NoError(t, err)
	ok, err = f.svc.AttendanceEditable(ctx, may)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlockAttendance_OnlyWhileDraft(t *testing.T) {
	f := newFixture(t, testEmployee("e1", "EMP001"), testEmployee("e2", "EMP002"))
	f.salaries.Put(testStructure("e1"))
	period := f.readyPeriod(t)
	ctx := authCtx(t)
	may := time.Date(2025, time.May, 14, 0, 0, 0, 0, time.UTC)

	result, err := f.svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)
	require.Equal(t, string(payroll.StatusProcessing), result.Status)

	_, err = f.svc.UnlockAttendance(ctx, period.ID)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotEditable)

	got, err := f.svc.GetPayroll(ctx, period.ID)
	require.NoError(t, err)
	assert.True(t, got.AttendanceLocked)
	ok, err := f.svc.AttendanceEditable(ctx, may)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInitiatePayroll_UpsertByNaturalKey(t *testing.T) {
	f := newFixture(t)
	ctx := authCtx(t)

	a, err := f.svc.InitiatePayroll(ctx, payroll.InitiatePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)
	b, err := f.svc.InitiatePayroll(ctx, payroll.InitiatePayrollRequest{PeriodMonth: 5, PeriodYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	_, err = f.svc.InitiatePayroll(ctx, payroll.InitiatePayrollRequest{PeriodMonth: 13, PeriodYear: 2025})
	assert.Error(t, err)

	list, err := f.svc.ListPayrolls(ctx, payroll.PeriodFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
}

func TestGetPayroll_OtherCompany(t *testing.T) {
	f := newFixture(t)
	f.payrolls.PutPeriod(payroll.Period{ID: "foreign", CompanyID: "company-2", PeriodMonth: 5, PeriodYear: 2025, Status: payroll.StatusDraft})

	_, err := f.svc.GetPayroll(authCtx(t), "foreign")
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)
}
