package payroll

import (
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/salary"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPeriodBounds(t *testing.T) {
	p := Period{PeriodMonth: 2, PeriodYear: 2024}
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), p.Start())
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), p.End())
	assert.Equal(t, 2023, p.FinancialYear())
}

func TestEarnings_UnknownKeyFoldsIntoOther(t *testing.T) {
	e := Earnings{}
	e.Add(EarningBasic, decimal.RequireFromString("1000.005"))
	e.Add("shift_allowance", decimal.NewFromInt(250))
	e.Add(EarningOtherAllowances, decimal.NewFromInt(50))
	e.Add(EarningHRA, decimal.NewFromInt(-10))

	assert.True(t, e[EarningBasic].Equal(decimal.RequireFromString("1000.01")))
	assert.True(t, e[EarningOtherAllowances].Equal(decimal.NewFromInt(300)))
	assert.True(t, e[EarningHRA].IsZero())
	_, stray := e["shift_allowance"]
	assert.False(t, stray)

	n := Earnings{"legacy": decimal.NewFromInt(5)}.Normalize()
	assert.Len(t, n, len(EarningKeys))
	assert.True(t, n[EarningOtherAllowances].Equal(decimal.NewFromInt(5)))
}

func TestDeductions_Normalize(t *testing.T) {
	d := Deductions{"canteen": decimal.NewFromInt(120), DeductionPF: decimal.NewFromInt(1800)}.Normalize()
	assert.Len(t, d, len(DeductionKeys))
	assert.True(t, d[DeductionOther].Equal(decimal.NewFromInt(120)))
	assert.True(t, d.Total().Equal(decimal.NewFromInt(1920)))
}

func TestPayslip_Recalculate(t *testing.T) {
	p := Payslip{
		Earnings:              Earnings{EarningBasic: decimal.NewFromInt(1000)},
		Deductions:            Deductions{DeductionLoanEMI: decimal.NewFromInt(1500)},
		EmployerContributions: Contributions{ContributionPFEmployer: decimal.NewFromInt(120)},
	}
	p.Recalculate()

	assert.True(t, p.NetSalary.Equal(decimal.NewFromInt(-500)))
	assert.True(t, p.NegativeNet)
	assert.True(t, p.TotalEmployerContributions.Equal(decimal.NewFromInt(120)))
	assert.True(t, p.NetSalary.Equal(p.GrossSalary.Sub(p.TotalDeductions)))
}

func TestEmployeeError(t *testing.T) {
	err := &EmployeeError{EmployeeCode: "EMP003", Kind: ErrorKindConfig, Err: salary.ErrStructureNotFound}
	assert.Equal(t, "no salary structure for emp EMP003", err.Error())
	assert.True(t, errors.Is(err, salary.ErrStructureNotFound))

	err = &EmployeeError{EmployeeCode: "EMP004", Kind: ErrorKindInternal, Err: errors.New("boom")}
	assert.Equal(t, "emp EMP004: boom", err.Error())
}

func TestStatus_Reportable(t *testing.T) {
	assert.True(t, StatusFinalized.Reportable())
	assert.True(t, StatusLocked.Reportable())
	assert.True(t, StatusPaid.Reportable())
	assert.False(t, StatusProcessing.Reportable())
	assert.False(t, StatusDraft.Reportable())
}
