package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	statcalc "github.com/cmlabs-hris/hris-payroll/internal/service/statutory"
	"github.com/shopspring/decimal"
)

// PayslipInput is everything BuildPayslip needs for one employee.
type PayslipInput struct {
	Period       payroll.Period
	Employee     employee.Employee
	Structure    salary.Structure
	Attendance   attendance.Aggregate
	Book         *statutory.RateBook
	Regime       statutory.Regime
	Declaration  *statutory.Declaration
	YTD          payroll.YearToDate
	Supplements  []payroll.Supplement
	Installments []loan.EMI
}

// BuildPayslip computes one payslip. Fixed components are scaled by the pro-ration factor;
// PF, ESI and PT are charged on the scaled fixed pay, supplements are then added to earnings.
// TDS projects the fixed pay over the remaining months and counts supplements once. Due loan installments are deducted last.
//
// A missing rate table for the employee is returned as statutory.ErrRateTableMissing.
func BuildPayslip(in PayslipInput) (payroll.Payslip, error) {
	factor := in.Attendance.ProRationFactor
	scale := func(d decimal.Decimal) decimal.Decimal {
		return money.Round2(money.NonNegative(d).Mul(factor))
	}
	month := time.Month(in.Period.PeriodMonth)

	slip := payroll.Payslip{
		PayrollPeriodID:       in.Period.ID,
		CompanyID:             in.Period.CompanyID,
		EmployeeID:            in.Employee.ID,
		EmployeeCode:          in.Employee.EmployeeCode,
		EmployeeName:          in.Employee.FullName,
		PeriodMonth:           in.Period.PeriodMonth,
		PeriodYear:            in.Period.PeriodYear,
		Earnings:              payroll.Earnings{}.Normalize(),
		Deductions:            payroll.Deductions{}.Normalize(),
		EmployerContributions: payroll.Contributions{},
		DaysInPeriod:          in.Attendance.TotalDays,
		DaysWorked:            in.Attendance.WorkingDays,
		DaysPresent:           in.Attendance.PresentDays,
		DaysAbsent:            in.Attendance.AbsentDays,
		HalfDays:              in.Attendance.HalfDays,
		ProRationFactor:       factor,
	}
	for _, k := range payroll.ContributionKeys {
		slip.EmployerContributions[k] = decimal.Zero
	}

	s := in.Structure
	slip.Earnings.Add(payroll.EarningBasic, scale(s.Basic))
	slip.Earnings.Add(payroll.EarningDearnessAllowance, scale(s.DearnessAllowance))
	slip.Earnings.Add(payroll.EarningHRA, scale(s.HRA))
	slip.Earnings.Add(payroll.EarningSpecialAllowance, scale(s.SpecialAllowance))
	slip.Earnings.Add(payroll.EarningConveyance, scale(s.Conveyance))
	slip.Earnings.Add(payroll.EarningMedical, scale(s.Medical))
	slip.Earnings.Add(payroll.EarningOtherAllowances, scale(s.OtherAllowances))
	fixedGross := slip.Earnings.Total()

	if factor.IsZero() {
		slip.Warnings = append(slip.Warnings, payroll.WarningZeroAttendance)
	}

	// Provident fund
	if !in.Employee.PFOptedOut {
		rule, err := in.Book.PF()
		if err != nil {
			return payroll.Payslip{}, err
		}
		wage := slip.Earnings[payroll.EarningBasic].Add(slip.Earnings[payroll.EarningDearnessAllowance])
		if s.PFWageBase != nil {
			wage = scale(*s.PFWageBase)
		}
		pf := statcalc.PF(wage, rule, statcalc.PFOptions{CapWage: in.Employee.PFOnCapped})
		slip.PFWage = pf.Wage
		slip.Deductions.Add(payroll.DeductionPF, pf.Employee)
		slip.EmployerContributions.Add(payroll.ContributionPFEmployer, pf.EmployerEPF)
		slip.EmployerContributions.Add(payroll.ContributionEPS, pf.EPS)
	}

	// Employee state insurance
	if !in.Employee.ESIExempt {
		rule, err := in.Book.ESI()
		if err != nil {
			return payroll.Payslip{}, err
		}
		eligibility := s.MonthlyGross()
		if s.ESIWageBase != nil {
			eligibility = *s.ESIWageBase
		}
		esi := statcalc.ESI(fixedGross, &eligibility, rule)
		slip.ESIApplicable = esi.Applicable
		slip.Deductions.Add(payroll.DeductionESI, esi.Employee)
		slip.EmployerContributions.Add(payroll.ContributionESIEmployer, esi.Employer)
	}

	// Professional tax
	pt, err := in.Book.PT(in.Employee.WorkState)
	if err != nil {
		return payroll.Payslip{}, err
	}
	slip.Deductions.Add(payroll.DeductionProfessionalTax, statcalc.PT(pt, fixedGross, month))

	// Labour welfare fund
	if in.Employee.LWFApplicable {
		rate, err := in.Book.LWF(in.Employee.WorkState)
		if err != nil {
			return payroll.Payslip{}, err
		}
		emp, er := statcalc.LWF(rate, month)
		slip.Deductions.Add(payroll.DeductionLWF, emp)
		slip.EmployerContributions.Add(payroll.ContributionLWFEmployer, er)
	}

	oneOff := decimal.Zero
	for _, sup := range in.Supplements {
		slip.Earnings.Add(sup.Type.EarningKey(), sup.Amount)
		oneOff = oneOff.Add(money.NonNegative(sup.Amount))
	}

	// Income tax
	table, err := in.Book.TDS(in.Regime)
	if err != nil {
		return payroll.Payslip{}, err
	}
	tax := statcalc.TDS(statcalc.TDSInput{
		Table:           table,
		FinancialYear:   in.Book.FinancialYear,
		MonthlyTaxable:  fixedGross,
		OneOffTaxable:   oneOff,
		PriorIncomeYTD:  in.YTD.TaxableIncome,
		DeductedYTD:     in.YTD.TDSDeducted,
		MonthsRemaining: statutory.MonthsRemaining(month),
		Declaration:     in.Declaration,
		Caps:            in.Book.Caps(),
	})
	slip.Tax = &tax
	slip.Deductions.Add(payroll.DeductionTDS, tax.Monthly)

	for _, emi := range in.Installments {
		key := payroll.DeductionLoanEMI
		if emi.LoanType == loan.TypeAdvance {
			key = payroll.DeductionSalaryAdvance
		}
		slip.Deductions.Add(key, emi.Amount)
	}

	slip.Recalculate()
	if slip.NegativeNet {
		slip.Warnings = append(slip.Warnings, payroll.WarningNegativeNet)
	}

	return slip, nil
}

// regimeFor picks the employee's declared regime, falling back to the company default.
func regimeFor(decl *statutory.Declaration, settings payroll.Settings) (statutory.Regime, error) {
	if decl != nil && decl.Regime != nil {
		if !decl.Regime.Valid() {
			return "", fmt.Errorf("%w: %q", statutory.ErrInvalidRegime, *decl.Regime)
		}
		return *decl.Regime, nil
	}
	if !settings.DefaultRegime.Valid() {
		return "", fmt.Errorf("%w: company default %q", statutory.ErrInvalidRegime, settings.DefaultRegime)
	}
	return settings.DefaultRegime, nil
}
