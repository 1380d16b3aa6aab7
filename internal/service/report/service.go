package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/crypto"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
)

// Decryptor opens sealed bank account numbers.
type Decryptor interface {
	DecryptString(data []byte) (string, error)
}

type ReportServiceImpl struct {
	payrollRepo payroll.PayrollRepository
	reportRepo  report.ReportRepository
	decryptor   Decryptor
	now         func() time.Time
}

// NewReportService wires the report builders. decryptor may be nil, in which case the
// bank transfer report is unavailable.
func NewReportService(payrollRepo payroll.PayrollRepository, reportRepo report.ReportRepository, decryptor Decryptor) report.ReportService {
	return &ReportServiceImpl{
		payrollRepo: payrollRepo,
		reportRepo:  reportRepo,
		decryptor:   decryptor,
		now:         time.Now,
	}
}

// getCompanyIDFromContext extracts company_id from JWT claims
func (s *ReportServiceImpl) getCompanyIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", fmt.Errorf("company_id claim is missing or invalid")
	}

	return companyID, nil
}

// load resolves a reportable period and its payslip rows.
func (s *ReportServiceImpl) load(ctx context.Context, req report.ReportRequest) (payroll.Period, []report.PayslipRow, error) {
	// Validate request
	if err := req.Validate(); err != nil {
		return payroll.Period{}, nil, err
	}

	// Get company ID from context
	companyID, err := s.getCompanyIDFromContext(ctx)
	if err != nil {
		return payroll.Period{}, nil, err
	}

	period, err := s.reportablePeriod(ctx, companyID, req.Month, req.Year)
	if err != nil {
		return payroll.Period{}, nil, err
	}

	rows, err := s.reportRepo.PayslipRows(ctx, companyID, period.ID)
	if err != nil {
		return payroll.Period{}, nil, fmt.Errorf("failed to get payslip data: %w", err)
	}
	return period, rows, nil
}

func (s *ReportServiceImpl) reportablePeriod(ctx context.Context, companyID string, month, year int) (payroll.Period, error) {
	period, err := s.payrollRepo.GetPeriodByMonth(ctx, companyID, month, year)
	if errors.Is(err, payroll.ErrPayrollNotFound) {
		return payroll.Period{}, fmt.Errorf("%w: no payroll for %02d/%d", report.ErrPeriodNotReportable, month, year)
	}
	if err != nil {
		return payroll.Period{}, err
	}
	if !period.Status.Reportable() {
		return payroll.Period{}, fmt.Errorf("%w: period %02d/%d is %s", report.ErrPeriodNotReportable, month, year, period.Status)
	}
	return period, nil
}

func (s *ReportServiceImpl) header(period payroll.Period) report.Header {
	return report.Header{
		PayrollID:   period.ID,
		PeriodMonth: period.PeriodMonth,
		PeriodYear:  period.PeriodYear,
		Status:      string(period.Status),
		GeneratedAt: s.now().Format(time.RFC3339),
	}
}

// PFReport lists employees with a PF deduction.
func (s *ReportServiceImpl) PFReport(ctx context.Context, req report.ReportRequest) (report.PFReport, error) {
	period, rows, err := s.load(ctx, req)
	if err != nil {
		return report.PFReport{}, err
	}

	out := report.PFReport{
		Header: s.header(period),
		Totals: report.PFTotals{PFWage: decimal.Zero, EmployeeShare: decimal.Zero, EmployerEPF: decimal.Zero, EPS: decimal.Zero, Total: decimal.Zero},
		Rows:   []report.PFRow{},
	}
	for _, r := range rows {
		p := r.Payslip
		employeeShare := p.Deductions[payroll.DeductionPF]
		if !employeeShare.IsPositive() {
			continue
		}
		row := report.PFRow{
			EmployeeID:    p.EmployeeID,
			EmployeeCode:  p.EmployeeCode,
			EmployeeName:  p.EmployeeName,
			UAN:           r.UAN,
			PFWage:        p.PFWage,
			EmployeeShare: employeeShare,
			EmployerEPF:   p.EmployerContributions[payroll.ContributionPFEmployer],
			EPS:           p.EmployerContributions[payroll.ContributionEPS],
		}
		row.Total = row.EmployeeShare.Add(row.EmployerEPF).Add(row.EPS)
		out.Rows = append(out.Rows, row)

		out.Totals.Employees++
		out.Totals.PFWage = out.Totals.PFWage.Add(row.PFWage)
		out.Totals.EmployeeShare = out.Totals.EmployeeShare.Add(row.EmployeeShare)
		out.Totals.EmployerEPF = out.Totals.EmployerEPF.Add(row.EmployerEPF)
		out.Totals.EPS = out.Totals.EPS.Add(row.EPS)
		out.Totals.Total = out.Totals.Total.Add(row.Total)
		if r.UAN == nil || !validator.IsValidUAN(*r.UAN) {
			out.Totals.MissingUAN++
		}
	}
	return out, nil
}

// ESIReport lists employees with an ESI deduction.
func (s *ReportServiceImpl) ESIReport(ctx context.Context, req report.ReportRequest) (report.ESIReport, error) {
	period, rows, err := s.load(ctx, req)
	if err != nil {
		return report.ESIReport{}, err
	}

	out := report.ESIReport{
		Header: s.header(period),
		Totals: report.ESITotals{GrossSalary: decimal.Zero, EmployeeShare: decimal.Zero, EmployerShare: decimal.Zero, Total: decimal.Zero},
		Rows:   []report.ESIRow{},
	}
	for _, r := range rows {
		p := r.Payslip
		employeeShare := p.Deductions[payroll.DeductionESI]
		if !employeeShare.IsPositive() {
			continue
		}
		row := report.ESIRow{
			EmployeeID:    p.EmployeeID,
			EmployeeCode:  p.EmployeeCode,
			EmployeeName:  p.EmployeeName,
			ESICNumber:    r.ESICNumber,
			GrossSalary:   p.GrossSalary,
			EmployeeShare: employeeShare,
			EmployerShare: p.EmployerContributions[payroll.ContributionESIEmployer],
		}
		row.Total = row.EmployeeShare.Add(row.EmployerShare)
		out.Rows = append(out.Rows, row)

		out.Totals.Employees++
		out.Totals.GrossSalary = out.Totals.GrossSalary.Add(row.GrossSalary)
		out.Totals.EmployeeShare = out.Totals.EmployeeShare.Add(row.EmployeeShare)
		out.Totals.EmployerShare = out.Totals.EmployerShare.Add(row.EmployerShare)
		out.Totals.Total = out.Totals.Total.Add(row.Total)
		if r.ESICNumber == nil || !validator.IsValidESICNumber(*r.ESICNumber) {
			out.Totals.MissingIPNo++
		}
	}
	return out, nil
}

// TDSReport lists employees with income tax deducted.
func (s *ReportServiceImpl) TDSReport(ctx context.Context, req report.ReportRequest) (report.TDSReport, error) {
	period, rows, err := s.load(ctx, req)
	if err != nil {
		return report.TDSReport{}, err
	}

	out := report.TDSReport{
		Header: s.header(period),
		Totals: report.TDSTotals{GrossSalary: decimal.Zero, TDS: decimal.Zero},
		Rows:   []report.TDSRow{},
	}
	for _, r := range rows {
		p := r.Payslip
		tds := p.Deductions[payroll.DeductionTDS]
		if !tds.IsPositive() {
			continue
		}
		row := report.TDSRow{
			EmployeeID:   p.EmployeeID,
			EmployeeCode: p.EmployeeCode,
			EmployeeName: p.EmployeeName,
			PAN:          r.PAN,
			GrossSalary:  p.GrossSalary,
			AnnualTax:    decimal.Zero,
			TDS:          tds,
		}
		if p.Tax != nil {
			row.Regime = p.Tax.Regime
			row.AnnualTax = p.Tax.AnnualTax
		}
		out.Rows = append(out.Rows, row)

		out.Totals.Employees++
		out.Totals.GrossSalary = out.Totals.GrossSalary.Add(row.GrossSalary)
		out.Totals.TDS = out.Totals.TDS.Add(row.TDS)
		if r.PAN == nil || !validator.IsValidPAN(*r.PAN) {
			out.Totals.MissingPAN++
		}
	}
	return out, nil
}

// PTReport lists employees with professional tax deducted, totalled per state.
func (s *ReportServiceImpl) PTReport(ctx context.Context, req report.ReportRequest) (report.PTReport, error) {
	period, rows, err := s.load(ctx, req)
	if err != nil {
		return report.PTReport{}, err
	}

	out := report.PTReport{
		Header: s.header(period),
		Totals: report.PTTotals{PT: decimal.Zero, ByState: map[string]decimal.Decimal{}},
		Rows:   []report.PTRow{},
	}
	for _, r := range rows {
		p := r.Payslip
		pt := p.Deductions[payroll.DeductionProfessionalTax]
		if !pt.IsPositive() {
			continue
		}
		out.Rows = append(out.Rows, report.PTRow{
			EmployeeID:   p.EmployeeID,
			EmployeeCode: p.EmployeeCode,
			EmployeeName: p.EmployeeName,
			State:        r.WorkState,
			GrossSalary:  p.GrossSalary,
			PT:           pt,
		})

		out.Totals.Employees++
		out.Totals.PT = out.Totals.PT.Add(pt)
		out.Totals.ByState[r.WorkState] = out.Totals.ByState[r.WorkState].Add(pt)
	}
	return out, nil
}

// SalaryRegister lists every payslip with all components.
func (s *ReportServiceImpl) SalaryRegister(ctx context.Context, req report.ReportRequest) (report.SalaryRegister, error) {
	period, rows, err := s.load(ctx, req)
	if err != nil {
		return report.SalaryRegister{}, err
	}

	totals := report.SalaryRegisterTotals{
		Earnings:                   payroll.Earnings{}.Normalize(),
		Deductions:                 payroll.Deductions{}.Normalize(),
		EmployerContributions:      map[payroll.ContributionKey]decimal.Decimal{},
		GrossSalary:                decimal.Zero,
		TotalDeductions:            decimal.Zero,
		NetSalary:                  decimal.Zero,
		TotalEmployerContributions: decimal.Zero,
	}
	for _, k := range payroll.ContributionKeys {
		totals.EmployerContributions[k] = decimal.Zero
	}

	out := report.SalaryRegister{Header: s.header(period), Rows: make([]report.SalaryRegisterRow, 0, len(rows))}
	for _, r := range rows {
		p := r.Payslip
		out.Rows = append(out.Rows, report.SalaryRegisterRow{
			EmployeeID:            p.EmployeeID,
			EmployeeCode:          p.EmployeeCode,
			EmployeeName:          p.EmployeeName,
			DaysInPeriod:          p.DaysInPeriod,
			DaysWorked:            p.DaysWorked,
			Earnings:              p.Earnings,
			Deductions:            p.Deductions,
			EmployerContributions: p.EmployerContributions,
			GrossSalary:           p.GrossSalary,
			TotalDeductions:       p.TotalDeductions,
			NetSalary:             p.NetSalary,
		})

		for k, v := range p.Earnings {
			totals.Earnings[k] = totals.Earnings[k].Add(v)
		}
		for k, v := range p.Deductions {
			totals.Deductions[k] = totals.Deductions[k].Add(v)
		}
		for k, v := range p.EmployerContributions {
			totals.EmployerContributions[k] = totals.EmployerContributions[k].Add(v)
		}
		totals.Employees++
		totals.GrossSalary = totals.GrossSalary.Add(p.GrossSalary)
		totals.TotalDeductions = totals.TotalDeductions.Add(p.TotalDeductions)
		totals.NetSalary = totals.NetSalary.Add(p.NetSalary)
		totals.TotalEmployerContributions = totals.TotalEmployerContributions.Add(p.TotalEmployerContributions)
	}
	out.Totals = totals
	return out, nil
}

// BankTransfer lists the net pay to credit per employee. Account numbers are masked
// unless req.Unmasked is set.
func (s *ReportServiceImpl) BankTransfer(ctx context.Context, req report.BankTransferRequest) (report.BankTransferReport, error) {
	if s.decryptor == nil {
		return report.BankTransferReport{}, report.ErrDecryptorMissing
	}

	period, rows, err := s.load(ctx, req.ReportRequest)
	if err != nil {
		return report.BankTransferReport{}, err
	}

	out := report.BankTransferReport{
		Header: s.header(period),
		Masked: !req.Unmasked,
		Totals: report.BankTransferTotals{Amount: decimal.Zero},
		Rows:   []report.BankTransferRow{},
	}
	for _, r := range rows {
		p := r.Payslip
		if !p.NetSalary.IsPositive() {
			continue
		}
		if len(r.BankAccountEncrypted) == 0 {
			out.Warnings = append(out.Warnings, fmt.Sprintf("emp %s has no bank account on file", p.EmployeeCode))
			continue
		}
		account, err := s.decryptor.DecryptString(r.BankAccountEncrypted)
		if err != nil {
			slog.Error("failed to decrypt bank account", "payroll_id", period.ID, "employee_code", p.EmployeeCode, "error", err)
			out.Warnings = append(out.Warnings, fmt.Sprintf("emp %s bank account could not be read", p.EmployeeCode))
			continue
		}
		if !validator.IsValidIFSC(r.BankIFSC) {
			out.Warnings = append(out.Warnings, fmt.Sprintf("emp %s has an invalid IFSC %q", p.EmployeeCode, r.BankIFSC))
		}
		if !req.Unmasked {
			account = crypto.Mask(account, 4)
		}

		holder := p.EmployeeName
		if r.BankAccountHolder != nil && *r.BankAccountHolder != "" {
			holder = *r.BankAccountHolder
		}
		out.Rows = append(out.Rows, report.BankTransferRow{
			EmployeeID:    p.EmployeeID,
			EmployeeCode:  p.EmployeeCode,
			EmployeeName:  p.EmployeeName,
			AccountHolder: holder,
			BankName:      r.BankName,
			IFSC:          r.BankIFSC,
			AccountNumber: account,
			Amount:        p.NetSalary,
		})
		out.Totals.Employees++
		out.Totals.Amount = out.Totals.Amount.Add(p.NetSalary)
	}

	if req.Unmasked {
		slog.Info("unmasked bank transfer report generated", "payroll_id", period.ID, "rows", len(out.Rows))
	}
	return out, nil
}
