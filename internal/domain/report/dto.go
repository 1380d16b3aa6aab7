package report

import (
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// REQUESTS
// ========================================

type ReportRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *ReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if r.Year < 2020 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2020 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BankTransferRequest struct {
	ReportRequest
	Unmasked bool `json:"unmasked"`
}

// Header identifies the period a report was built from.
type Header struct {
	PayrollID   string `json:"payroll_id"`
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
	Status      string `json:"status"`
	GeneratedAt string `json:"generated_at"`
}

// ========================================
// PROVIDENT FUND
// ========================================

type PFRow struct {
	EmployeeID    string          `json:"employee_id"`
	EmployeeCode  string          `json:"employee_code"`
	EmployeeName  string          `json:"employee_name"`
	UAN           *string         `json:"uan"`
	PFWage        decimal.Decimal `json:"pf_wage"`
	EmployeeShare decimal.Decimal `json:"employee_share"`
	EmployerEPF   decimal.Decimal `json:"employer_epf"`
	EPS           decimal.Decimal `json:"eps"`
	Total         decimal.Decimal `json:"total"`
}

type PFTotals struct {
	Employees     int             `json:"employees"`
	MissingUAN    int             `json:"missing_uan"`
	PFWage        decimal.Decimal `json:"pf_wage"`
	EmployeeShare decimal.Decimal `json:"employee_share"`
	EmployerEPF   decimal.Decimal `json:"employer_epf"`
	EPS           decimal.Decimal `json:"eps"`
	Total         decimal.Decimal `json:"total"`
}

type PFReport struct {
	Header
	Totals PFTotals `json:"totals"`
	Rows   []PFRow  `json:"rows"`
}

// ========================================
// EMPLOYEE STATE INSURANCE
// ========================================

type ESIRow struct {
	EmployeeID    string          `json:"employee_id"`
	EmployeeCode  string          `json:"employee_code"`
	EmployeeName  string          `json:"employee_name"`
	ESICNumber    *string         `json:"esic_number"`
	GrossSalary   decimal.Decimal `json:"gross_salary"`
	EmployeeShare decimal.Decimal `json:"employee_share"`
	EmployerShare decimal.Decimal `json:"employer_share"`
	Total         decimal.Decimal `json:"total"`
}

type ESITotals struct {
	Employees     int             `json:"employees"`
	MissingIPNo   int             `json:"missing_ip_number"`
	GrossSalary   decimal.Decimal `json:"gross_salary"`
	EmployeeShare decimal.Decimal `json:"employee_share"`
	EmployerShare decimal.Decimal `json:"employer_share"`
	Total         decimal.Decimal `json:"total"`
}

type ESIReport struct {
	Header
	Totals ESITotals `json:"totals"`
	Rows   []ESIRow  `json:"rows"`
}

// ========================================
// INCOME TAX
// ========================================

type TDSRow struct {
	EmployeeID   string           `json:"employee_id"`
	EmployeeCode string           `json:"employee_code"`
	EmployeeName string           `json:"employee_name"`
	PAN          *string          `json:"pan"`
	Regime       statutory.Regime `json:"regime"`
	GrossSalary  decimal.Decimal  `json:"gross_salary"`
	AnnualTax    decimal.Decimal  `json:"annual_tax"`
	TDS          decimal.Decimal  `json:"tds"`
}

type TDSTotals struct {
	Employees   int             `json:"employees"`
	GrossSalary decimal.Decimal `json:"gross_salary"`
	TDS         decimal.Decimal `json:"tds"`
	MissingPAN  int             `json:"missing_pan"`
}

type TDSReport struct {
	Header
	Totals TDSTotals `json:"totals"`
	Rows   []TDSRow  `json:"rows"`
}

// ========================================
// PROFESSIONAL TAX
// ========================================

type PTRow struct {
	EmployeeID   string          `json:"employee_id"`
	EmployeeCode string          `json:"employee_code"`
	EmployeeName string          `json:"employee_name"`
	State        string          `json:"state"`
	GrossSalary  decimal.Decimal `json:"gross_salary"`
	PT           decimal.Decimal `json:"professional_tax"`
}

type PTTotals struct {
	Employees int                        `json:"employees"`
	PT        decimal.Decimal            `json:"professional_tax"`
	ByState   map[string]decimal.Decimal `json:"by_state"`
}

type PTReport struct {
	Header
	Totals PTTotals `json:"totals"`
	Rows   []PTRow  `json:"rows"`
}

// ========================================
// SALARY REGISTER
// ========================================

type SalaryRegisterRow struct {
	EmployeeID            string                                      `json:"employee_id"`
	EmployeeCode          string                                      `json:"employee_code"`
	EmployeeName          string                                      `json:"employee_name"`
	DaysInPeriod          int                                         `json:"days_in_period"`
	DaysWorked            decimal.Decimal                             `json:"days_worked"`
	Earnings              map[payroll.EarningKey]decimal.Decimal      `json:"earnings"`
	Deductions            map[payroll.DeductionKey]decimal.Decimal    `json:"deductions"`
	EmployerContributions map[payroll.ContributionKey]decimal.Decimal `json:"employer_contributions"`
	GrossSalary           decimal.Decimal                             `json:"gross_salary"`
	TotalDeductions       decimal.Decimal                             `json:"total_deductions"`
	NetSalary             decimal.Decimal                             `json:"net_salary"`
}

type SalaryRegisterTotals struct {
	Employees                  int                                         `json:"employees"`
	Earnings                   map[payroll.EarningKey]decimal.Decimal      `json:"earnings"`
	Deductions                 map[payroll.DeductionKey]decimal.Decimal    `json:"deductions"`
	EmployerContributions      map[payroll.ContributionKey]decimal.Decimal `json:"employer_contributions"`
	GrossSalary                decimal.Decimal                             `json:"gross_salary"`
	TotalDeductions            decimal.Decimal                             `json:"total_deductions"`
	NetSalary                  decimal.Decimal                             `json:"net_salary"`
	TotalEmployerContributions decimal.Decimal                             `json:"total_employer_contributions"`
}

type SalaryRegister struct {
	Header
	Totals SalaryRegisterTotals `json:"totals"`
	Rows   []SalaryRegisterRow  `json:"rows"`
}

// ========================================
// BANK TRANSFER
// ========================================

type BankTransferRow struct {
	EmployeeID    string          `json:"employee_id"`
	EmployeeCode  string          `json:"employee_code"`
	EmployeeName  string          `json:"employee_name"`
	AccountHolder string          `json:"account_holder"`
	BankName      string          `json:"bank_name"`
	IFSC          string          `json:"ifsc"`
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
}

type BankTransferTotals struct {
	Employees int             `json:"employees"`
	Amount    decimal.Decimal `json:"amount"`
}

type BankTransferReport struct {
	Header
	Masked   bool               `json:"masked"`
	Totals   BankTransferTotals `json:"totals"`
	Rows     []BankTransferRow  `json:"rows"`
	Warnings []string           `json:"warnings,omitempty"`
}

// ========================================
// RECONCILIATION
// ========================================

// PeriodSummary is a period's headline figures. PayrollID is nil for a zero baseline.
type PeriodSummary struct {
	PayrollID   *string         `json:"payroll_id"`
	PeriodMonth int             `json:"period_month"`
	PeriodYear  int             `json:"period_year"`
	Headcount   int             `json:"headcount"`
	GrossSalary decimal.Decimal `json:"gross_salary"`
	NetSalary   decimal.Decimal `json:"net_salary"`
}

// Variance is current minus baseline. Percentages are nil when the baseline is zero.
type Variance struct {
	Headcount    int              `json:"headcount"`
	HeadcountPct *decimal.Decimal `json:"headcount_pct"`
	Gross        decimal.Decimal  `json:"gross"`
	GrossPct     *decimal.Decimal `json:"gross_pct"`
	Net          decimal.Decimal  `json:"net"`
	NetPct       *decimal.Decimal `json:"net_pct"`
}

type Comparison struct {
	Baseline PeriodSummary `json:"baseline"`
	Variance Variance      `json:"variance"`
}

// EmployeeFigures is one employee's gross and net in one period, zero when absent.
type EmployeeFigures struct {
	Present     bool            `json:"present"`
	GrossSalary decimal.Decimal `json:"gross_salary"`
	NetSalary   decimal.Decimal `json:"net_salary"`
}

type EmployeeVariance struct {
	EmployeeCode  string            `json:"employee_code"`
	EmployeeName  string            `json:"employee_name"`
	Current       EmployeeFigures   `json:"current"`
	Previous      []EmployeeFigures `json:"previous"`
	GrossVariance decimal.Decimal   `json:"gross_variance"`
	NetVariance   decimal.Decimal   `json:"net_variance"`
}

type ReconciliationReport struct {
	Header
	Current     PeriodSummary      `json:"current"`
	Comparisons []Comparison       `json:"comparisons"`
	Employees   []EmployeeVariance `json:"employees"`
}
