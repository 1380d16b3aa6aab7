package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

// SystemActor stamps transitions made by background jobs.
const SystemActor = "system"

type PayrollServiceImpl struct {
	tx                database.Transactor
	payrollRepo       payroll.PayrollRepository
	employeeRepo      employee.EmployeeRepository
	salaryRepo        salary.StructureRepository
	attendanceService attendance.AttendanceService
	loanRepo          loan.LoanRepository
	leaveRepo         leave.LeaveRepository
	declarationRepo   statutory.DeclarationRepository
	rates             statutory.RateBookSource
	defaults          payroll.Settings
	now               func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	salaryRepo salary.StructureRepository,
	attendanceService attendance.AttendanceService,
	loanRepo loan.LoanRepository,
	leaveRepo leave.LeaveRepository,
	declarationRepo statutory.DeclarationRepository,
	rates statutory.RateBookSource,
	defaults payroll.Settings,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:                tx,
		payrollRepo:       payrollRepo,
		employeeRepo:      employeeRepo,
		salaryRepo:        salaryRepo,
		attendanceService: attendanceService,
		loanRepo:          loanRepo,
		leaveRepo:         leaveRepo,
		declarationRepo:   declarationRepo,
		rates:             rates,
		defaults:          defaults,
		now:               time.Now,
	}
}

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *PayrollServiceImpl) timestamp() *time.Time {
	now := s.now().UTC()
	return &now
}

func (s *PayrollServiceImpl) settings(ctx context.Context, companyID string) (payroll.Settings, error) {
	settings, err := s.payrollRepo.GetSettings(ctx, companyID)
	if errors.Is(err, payroll.ErrSettingsNotFound) {
		settings = s.defaults
		settings.CompanyID = companyID
		return settings, nil
	}
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}
	return settings, nil
}

// eligibleEmployees returns the employees on the rolls during the period in employee-code order.
func (s *PayrollServiceImpl) eligibleEmployees(ctx context.Context, companyID string, period payroll.Period) ([]employee.Employee, error) {
	all, err := s.employeeRepo.ListPayrollEligible(ctx, companyID, period.Start(), period.End())
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	employees := make([]employee.Employee, 0, len(all))
	for _, emp := range all {
		if emp.EmployedDuring(period.Start(), period.End()) {
			employees = append(employees, emp)
		}
	}
	sort.SliceStable(employees, func(i, j int) bool {
		return employees[i].EmployeeCode < employees[j].EmployeeCode
	})
	return employees, nil
}

func logTransition(period payroll.Period, from payroll.Status, actor string) {
	slog.Info("payroll status changed",
		"payroll_id", period.ID,
		"company_id", period.CompanyID,
		"from", from,
		"to", period.Status,
		"actor", actor,
	)
}

// ========== PERIODS ==========

func (s *PayrollServiceImpl) InitiatePayroll(ctx context.Context, req payroll.InitiatePayrollRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.initiate(ctx, companyID, userID, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) initiate(ctx context.Context, companyID, userID string, month, year int) (payroll.Period, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return payroll.Period{}, fmt.Errorf("failed to generate payroll id: %w", err)
	}

	stored, created, err := s.payrollRepo.UpsertPeriod(ctx, payroll.Period{
		ID:          id.String(),
		CompanyID:   companyID,
		PeriodMonth: month,
		PeriodYear:  year,
		Status:      payroll.StatusDraft,
		InitiatedBy: strPtr(userID),
	})
	if err != nil {
		return payroll.Period{}, fmt.Errorf("failed to initiate payroll: %w", err)
	}
	if created {
		slog.Info("payroll period initiated", "payroll_id", stored.ID, "company_id", companyID, "month", month, "year", year, "actor", userID)
	}
	return stored, nil
}

func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, companyID, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return payroll.NewPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) ListPayrolls(ctx context.Context, filter payroll.PeriodFilter) (payroll.ListPeriodResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPeriodResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListPeriodResponse{}, err
	}

	periods, total, err := s.payrollRepo.ListPeriods(ctx, companyID, filter)
	if err != nil {
		return payroll.ListPeriodResponse{}, err
	}

	data := make([]payroll.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		data = append(data, payroll.NewPeriodResponse(p))
	}
	return payroll.ListPeriodResponse{Data: data, TotalCount: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// openPeriod loads a period that still accepts run changes (draft or processing).
func (s *PayrollServiceImpl) openPeriod(ctx context.Context, id string) (payroll.Period, string, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.Period{}, "", err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, companyID, id)
	if err != nil {
		return payroll.Period{}, "", err
	}
	if err := ensureOpen(period); err != nil {
		return payroll.Period{}, "", err
	}
	return period, userID, nil
}

func ensureOpen(period payroll.Period) error {
	switch period.Status {
	case payroll.StatusLocked:
		return payroll.ErrPeriodLocked
	case payroll.StatusFinalized, payroll.StatusPaid:
		return payroll.ErrPeriodFinalized
	}
	return nil
}

func (s *PayrollServiceImpl) LockAttendance(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	return s.setAttendanceLock(ctx, id, true)
}

func (s *PayrollServiceImpl) UnlockAttendance(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	return s.setAttendanceLock(ctx, id, false)
}

func (s *PayrollServiceImpl) setAttendanceLock(ctx context.Context, id string, locked bool) (payroll.PeriodResponse, error) {
	period, userID, err := s.openPeriod(ctx, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	// payslips already computed from the locked records
	if !locked && period.Status != payroll.StatusDraft {
		return payroll.PeriodResponse{}, fmt.Errorf("%w: attendance cannot be unlocked once processing started", payroll.ErrPeriodNotEditable)
	}

	period.AttendanceLocked = locked
	if err := s.payrollRepo.UpdatePeriod(ctx, period); err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("failed to update attendance lock: %w", err)
	}
	slog.Info("payroll attendance lock changed", "payroll_id", period.ID, "attendance_locked", locked, "actor", userID)
	return payroll.NewPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) AttendanceEditable(ctx context.Context, date time.Time) (bool, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return false, err
	}

	period, err := s.payrollRepo.GetPeriodByMonth(ctx, companyID, int(date.Month()), date.Year())
	if errors.Is(err, payroll.ErrPayrollNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if period.AttendanceLocked {
		return false, nil
	}
	return period.Status == payroll.StatusDraft || period.Status == payroll.StatusProcessing, nil
}

func (s *PayrollServiceImpl) RunPreCheck(ctx context.Context, id string) (payroll.PreCheckResponse, error) {
	period, userID, err := s.openPeriod(ctx, id)
	if err != nil {
		return payroll.PreCheckResponse{}, err
	}

	warnings, err := s.preCheck(ctx, period)
	if err != nil {
		return payroll.PreCheckResponse{}, err
	}

	period.PreCheckWarnings = warnings
	period.PreCheckCompleted = len(warnings) == 0
	if err := s.payrollRepo.UpdatePeriod(ctx, period); err != nil {
		return payroll.PreCheckResponse{}, fmt.Errorf("failed to save pre-check: %w", err)
	}
	slog.Info("payroll pre-check finished", "payroll_id", period.ID, "warnings", len(warnings), "actor", userID)

	if warnings == nil {
		warnings = []string{}
	}
	return payroll.PreCheckResponse{PayrollID: period.ID, Completed: period.PreCheckCompleted, Warnings: warnings}, nil
}

// ========== GENERATION ==========

func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GenerateResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.GenerateResult{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.GenerateResult{}, err
	}

	period, err := s.initiate(ctx, companyID, userID, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.GenerateResult{}, err
	}
	return s.generate(ctx, period, userID)
}

// generate creates the missing payslips of the period. Employees that already hold a payslip
// are skipped, so the run can be repeated after an interruption. A failure for one employee is
// logged and reported in the result without stopping the batch. Cancelling ctx stops before the
// next employee; payslips written so far stay. Once every eligible employee is covered the
// period is finalized; running again on a finalized or paid period changes nothing.
func (s *PayrollServiceImpl) generate(ctx context.Context, period payroll.Period, actor string) (payroll.GenerateResult, error) {
	switch period.Status {
	case payroll.StatusLocked:
		return payroll.GenerateResult{}, payroll.ErrPeriodLocked
	case payroll.StatusFinalized, payroll.StatusPaid:
		return s.settled(ctx, period)
	}
	if !period.AttendanceLocked {
		return payroll.GenerateResult{}, payroll.ErrAttendanceNotLocked
	}

	companyID := period.CompanyID
	if period.Status == payroll.StatusDraft {
		period.Status = payroll.StatusProcessing
		period.ProcessedBy = strPtr(actor)
		period.ProcessedAt = s.timestamp()
		if err := s.payrollRepo.UpdatePeriod(ctx, period); err != nil {
			return payroll.GenerateResult{}, fmt.Errorf("failed to start processing: %w", err)
		}
		logTransition(period, payroll.StatusDraft, actor)
	}

	settings, err := s.settings(ctx, companyID)
	if err != nil {
		return payroll.GenerateResult{}, err
	}
	book, err := s.rates.ForYear(ctx, period.FinancialYear())
	if err != nil {
		return payroll.GenerateResult{}, err
	}
	employees, err := s.eligibleEmployees(ctx, companyID, period)
	if err != nil {
		return payroll.GenerateResult{}, err
	}
	existing, err := s.payrollRepo.PayslipEmployeeIDs(ctx, companyID, period.ID)
	if err != nil {
		return payroll.GenerateResult{}, fmt.Errorf("failed to list existing payslips: %w", err)
	}

	result := payroll.GenerateResult{
		PayrollID: period.ID,
		Errors:    []string{},
		Items:     make([]payroll.GenerateItem, 0, len(employees)),
	}
	policy := attendance.Policy{PayNonWorkingDays: settings.PayNonWorkingDays}

	for _, emp := range employees {
		if ctx.Err() != nil {
			result.Interrupted = true
			slog.Warn("payroll generation interrupted", "payroll_id", period.ID, "next_employee_code", emp.EmployeeCode)
			break
		}

		item := payroll.GenerateItem{EmployeeID: emp.ID, EmployeeCode: emp.EmployeeCode}
		if existing[emp.ID] {
			item.Outcome = payroll.OutcomeSkipped
			item.Reason = payroll.ErrPayslipAlreadyExists.Error()
			result.SkippedCount++
			result.Items = append(result.Items, item)
			continue
		}

		slip, recordErrs, err := s.generateOne(ctx, period, emp, book, settings, policy)
		for _, re := range recordErrs {
			result.Errors = append(result.Errors, fmt.Sprintf("emp %s: attendance %s", emp.EmployeeCode, re.Error()))
		}
		switch {
		case errors.Is(err, payroll.ErrPayslipAlreadyExists):
			item.Outcome = payroll.OutcomeSkipped
			item.Reason = err.Error()
			result.SkippedCount++
		case err != nil:
			empErr := &payroll.EmployeeError{EmployeeID: emp.ID, EmployeeCode: emp.EmployeeCode, Kind: classify(err), Err: err}
			item.Outcome = payroll.OutcomeFailed
			item.Reason = empErr.Error()
			result.SkippedCount++
			result.Errors = append(result.Errors, empErr.Error())
			slog.Error("payslip generation failed",
				"payroll_id", period.ID,
				"employee_code", emp.EmployeeCode,
				"kind", empErr.Kind,
				"error", err,
			)
		default:
			item.Outcome = payroll.OutcomeCreated
			item.PayslipID = &slip.ID
			result.CreatedCount++
			existing[emp.ID] = true
			if slip.NegativeNet {
				slog.Warn("payslip has negative net", "payroll_id", period.ID, "employee_code", emp.EmployeeCode, "net", slip.NetSalary.String())
			}
		}
		result.Items = append(result.Items, item)
	}

	// Bookkeeping must land even when the batch was cancelled.
	fin := context.WithoutCancel(ctx)
	allCovered := len(employees) > 0
	for _, emp := range employees {
		if !existing[emp.ID] {
			allCovered = false
			break
		}
	}

	err = s.tx.WithinTx(fin, func(ctx context.Context) error {
		totals, err := s.payrollRepo.RecomputeTotals(ctx, companyID, period.ID)
		if err != nil {
			return err
		}
		period.Totals = totals
		period.EarningsApplied = totals.EmployeeCount > 0
		period.DeductionsApplied = totals.EmployeeCount > 0
		period.PayslipsGenerated = allCovered
		if allCovered {
			period.Status = payroll.StatusFinalized
			period.FinalizedBy = strPtr(actor)
			period.FinalizedAt = s.timestamp()
		}
		return s.payrollRepo.UpdatePeriod(ctx, period)
	})
	if err != nil {
		return payroll.GenerateResult{}, fmt.Errorf("failed to update payroll totals: %w", err)
	}
	if allCovered {
		logTransition(period, payroll.StatusProcessing, actor)
	}

	result.Status = string(period.Status)
	slog.Info("payroll generation finished",
		"payroll_id", period.ID,
		"created", result.CreatedCount,
		"skipped", result.SkippedCount,
		"errors", len(result.Errors),
		"payslips_generated", period.PayslipsGenerated,
	)
	return result, nil
}

// settled reports a finalized or paid period as fully covered without touching it.
func (s *PayrollServiceImpl) settled(ctx context.Context, period payroll.Period) (payroll.GenerateResult, error) {
	employees, err := s.eligibleEmployees(ctx, period.CompanyID, period)
	if err != nil {
		return payroll.GenerateResult{}, err
	}

	result := payroll.GenerateResult{
		PayrollID: period.ID,
		Status:    string(period.Status),
		Errors:    []string{},
		Items:     make([]payroll.GenerateItem, 0, len(employees)),
	}
	for _, emp := range employees {
		result.Items = append(result.Items, payroll.GenerateItem{
			EmployeeID:   emp.ID,
			EmployeeCode: emp.EmployeeCode,
			Outcome:      payroll.OutcomeSkipped,
			Reason:       payroll.ErrPeriodFinalized.Error(),
		})
	}
	result.SkippedCount = len(employees)
	return result, nil
}

// generateOne computes and stores one payslip together with the supplements and loan
// installments it consumes, in a single transaction.
func (s *PayrollServiceImpl) generateOne(
	ctx context.Context,
	period payroll.Period,
	emp employee.Employee,
	book *statutory.RateBook,
	settings payroll.Settings,
	policy attendance.Policy,
) (payroll.Payslip, []attendance.RecordError, error) {
	companyID := period.CompanyID
	fy := period.FinancialYear()
	var (
		stored     payroll.Payslip
		recordErrs []attendance.RecordError
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		structure, err := s.salaryRepo.ActiveOn(ctx, companyID, emp.ID, period.End())
		if err != nil {
			return fmt.Errorf("resolve salary structure: %w", err)
		}

		agg, err := s.attendanceService.Aggregate(ctx, companyID, emp.ID, period.Start(), period.End(), policy)
		if err != nil {
			return fmt.Errorf("aggregate attendance: %w", err)
		}
		recordErrs = agg.RecordErrors

		var decl *statutory.Declaration
		d, err := s.declarationRepo.GetDeclaration(ctx, companyID, emp.ID, fy)
		switch {
		case err == nil:
			decl = &d
		case !errors.Is(err, statutory.ErrDeclarationNotFound):
			return fmt.Errorf("load tax declaration: %w", err)
		}
		regime, err := regimeFor(decl, settings)
		if err != nil {
			return err
		}

		ytd, err := s.payrollRepo.YearToDate(ctx, companyID, emp.ID, fy, period.PeriodMonth, period.PeriodYear)
		if err != nil {
			return fmt.Errorf("load year to date: %w", err)
		}
		supplements, err := s.payrollRepo.PendingSupplements(ctx, companyID, emp.ID, period.PeriodMonth, period.PeriodYear)
		if err != nil {
			return fmt.Errorf("load supplements: %w", err)
		}
		installments, err := s.loanRepo.DueInstallments(ctx, companyID, emp.ID, period.Start(), period.End())
		if err != nil {
			return fmt.Errorf("load loan installments: %w", err)
		}

		slip, err := BuildPayslip(PayslipInput{
			Period:       period,
			Employee:     emp,
			Structure:    structure,
			Attendance:   agg,
			Book:         book,
			Regime:       regime,
			Declaration:  decl,
			YTD:          ytd,
			Supplements:  supplements,
			Installments: installments,
		})
		if err != nil {
			return err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate payslip id: %w", err)
		}
		slip.ID = id.String()

		saved, inserted, err := s.payrollRepo.InsertPayslip(ctx, slip)
		if err != nil {
			return fmt.Errorf("insert payslip: %w", err)
		}
		if !inserted {
			return payroll.ErrPayslipAlreadyExists
		}

		if len(supplements) > 0 {
			ids := make([]string, 0, len(supplements))
			for _, sup := range supplements {
				ids = append(ids, sup.ID)
			}
			if err := s.payrollRepo.MarkSupplementsProcessed(ctx, ids, saved.ID); err != nil {
				return fmt.Errorf("mark supplements processed: %w", err)
			}
		}
		for _, emi := range installments {
			if err := s.loanRepo.MarkInstallmentPaid(ctx, emi.ID, saved.ID); err != nil {
				return fmt.Errorf("recover installment %s: %w", emi.ID, err)
			}
		}

		stored = saved
		return nil
	})
	if err != nil {
		return payroll.Payslip{}, recordErrs, err
	}
	return stored, recordErrs, nil
}

func classify(err error) payroll.ErrorKind {
	switch {
	case errors.Is(err, salary.ErrStructureNotFound),
		errors.Is(err, statutory.ErrRateTableMissing),
		errors.Is(err, statutory.ErrInvalidRegime):
		return payroll.ErrorKindConfig
	case errors.Is(err, attendance.ErrInvalidPeriod):
		return payroll.ErrorKindData
	}
	return payroll.ErrorKindInternal
}

// ResumeInterrupted implements payroll.PayrollService.
func (s *PayrollServiceImpl) ResumeInterrupted(ctx context.Context, staleAfter time.Duration) (int, error) {
	periods, err := s.payrollRepo.ListStaleProcessing(ctx, s.now().Add(-staleAfter))
	if err != nil {
		return 0, fmt.Errorf("failed to list interrupted payrolls: %w", err)
	}

	resumed := 0
	for _, period := range periods {
		if ctx.Err() != nil {
			break
		}
		result, err := s.generate(ctx, period, SystemActor)
		if err != nil {
			slog.Error("failed to resume payroll", "payroll_id", period.ID, "company_id", period.CompanyID, "error", err)
			continue
		}
		resumed++
		slog.Info("payroll resumed", "payroll_id", period.ID, "created", result.CreatedCount, "errors", len(result.Errors))
	}
	return resumed, nil
}

// ========== TRANSITIONS ==========

func (s *PayrollServiceImpl) FinalizePayroll(ctx context.Context, req payroll.FinalizePayrollRequest) (payroll.PeriodResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, companyID, req.ID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	if err := ensureOpen(period); err != nil {
		return payroll.PeriodResponse{}, err
	}
	if period.Status != payroll.StatusProcessing {
		return payroll.PeriodResponse{}, fmt.Errorf("%w: cannot finalize a %s period", payroll.ErrInvalidTransition, period.Status)
	}
	if !period.AttendanceLocked {
		return payroll.PeriodResponse{}, payroll.ErrAttendanceNotLocked
	}

	employees, err := s.eligibleEmployees(ctx, companyID, period)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	existing, err := s.payrollRepo.PayslipEmployeeIDs(ctx, companyID, period.ID)
	if err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("failed to list existing payslips: %w", err)
	}
	missing := 0
	for _, emp := range employees {
		if !existing[emp.ID] {
			missing++
		}
	}

	if missing > 0 && !period.PreCheckCompleted {
		if !req.OverridePreCheck {
			return payroll.PeriodResponse{}, fmt.Errorf("%w: %d employees without payslip", payroll.ErrPayslipsIncomplete, missing)
		}
		period.PreCheckCompleted = true
		slog.Warn("payroll finalized with pre-check override", "payroll_id", period.ID, "missing_payslips", missing, "actor", userID)
	}

	period.PayslipsGenerated = missing == 0
	period.Status = payroll.StatusFinalized
	period.FinalizedBy = strPtr(userID)
	period.FinalizedAt = s.timestamp()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		totals, err := s.payrollRepo.RecomputeTotals(ctx, companyID, period.ID)
		if err != nil {
			return err
		}
		period.Totals = totals
		return s.payrollRepo.UpdatePeriod(ctx, period)
	})
	if err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("failed to finalize payroll: %w", err)
	}

	logTransition(period, payroll.StatusProcessing, userID)
	return payroll.NewPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, req payroll.MarkPaidRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, companyID, req.ID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	switch period.Status {
	case payroll.StatusFinalized:
	case payroll.StatusLocked:
		return payroll.PeriodResponse{}, payroll.ErrPeriodLocked
	default:
		return payroll.PeriodResponse{}, fmt.Errorf("%w: cannot mark a %s period as paid", payroll.ErrInvalidTransition, period.Status)
	}

	period.Status = payroll.StatusPaid
	period.PaidBy = strPtr(userID)
	period.PaidAt = s.timestamp()
	period.PaymentReference = strPtr(req.PaymentReference)
	if err := s.payrollRepo.UpdatePeriod(ctx, period); err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("failed to mark payroll paid: %w", err)
	}

	logTransition(period, payroll.StatusFinalized, userID)
	return payroll.NewPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) MarkDistributed(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, companyID, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	if period.Status != payroll.StatusFinalized && period.Status != payroll.StatusPaid {
		return payroll.PeriodResponse{}, fmt.Errorf("%w: payslips of a %s period cannot be distributed", payroll.ErrInvalidTransition, period.Status)
	}

	period.PayslipsDistributed = true
	if err := s.payrollRepo.UpdatePeriod(ctx, period); err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("failed to mark payslips distributed: %w", err)
	}
	slog.Info("payslips distributed", "payroll_id", period.ID, "actor", userID)
	return payroll.NewPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) Lock(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, companyID, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	if period.Status == payroll.StatusLocked {
		return payroll.PeriodResponse{}, payroll.ErrPeriodLocked
	}

	from := period.Status
	period.StatusBeforeLock = &from
	period.Status = payroll.StatusLocked
	period.LockedBy = strPtr(userID)
	period.LockedAt = s.timestamp()
	if err := s.payrollRepo.UpdatePeriod(ctx, period); err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("failed to lock payroll: %w", err)
	}

	logTransition(period, from, userID)
	return payroll.NewPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) Unlock(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, companyID, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	if period.Status != payroll.StatusLocked {
		return payroll.PeriodResponse{}, payroll.ErrPeriodNotLocked
	}

	restore := payroll.StatusDraft
	if period.StatusBeforeLock != nil {
		restore = *period.StatusBeforeLock
	}
	period.Status = restore
	period.StatusBeforeLock = nil
	period.LockedBy = nil
	period.LockedAt = nil
	if err := s.payrollRepo.UpdatePeriod(ctx, period); err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("failed to unlock payroll: %w", err)
	}

	logTransition(period, payroll.StatusLocked, userID)
	return payroll.NewPeriodResponse(period), nil
}

// ========== PAYSLIPS ==========

func (s *PayrollServiceImpl) ListPayslips(ctx context.Context, periodID string) ([]payroll.PayslipResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.payrollRepo.GetPeriodByID(ctx, companyID, periodID); err != nil {
		return nil, err
	}
	slips, err := s.payrollRepo.ListPayslips(ctx, companyID, periodID, true)
	if err != nil {
		return nil, err
	}

	out := make([]payroll.PayslipResponse, 0, len(slips))
	for _, p := range slips {
		out = append(out, payroll.NewPayslipResponse(p))
	}
	return out, nil
}

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	slip, err := s.payrollRepo.GetPayslip(ctx, companyID, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return payroll.NewPayslipResponse(slip), nil
}

// VoidPayslip withdraws a payslip of a processing period so it can be regenerated. The
// supplements and installments it consumed are released and the totals recomputed.
func (s *PayrollServiceImpl) VoidPayslip(ctx context.Context, req payroll.VoidPayslipRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	slip, err := s.payrollRepo.GetPayslip(ctx, companyID, req.ID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	if slip.IsVoided {
		return payroll.PeriodResponse{}, payroll.ErrPayslipAlreadyVoided
	}

	period, err := s.payrollRepo.GetPeriodByID(ctx, companyID, slip.PayrollPeriodID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	if err := ensureOpen(period); err != nil {
		return payroll.PeriodResponse{}, err
	}
	if period.Status != payroll.StatusProcessing {
		return payroll.PeriodResponse{}, payroll.ErrPeriodNotEditable
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.payrollRepo.VoidPayslip(ctx, companyID, slip.ID, req.Reason, userID); err != nil {
			return err
		}
		if err := s.payrollRepo.ReleaseSupplements(ctx, slip.ID); err != nil {
			return err
		}
		if err := s.loanRepo.RevertInstallments(ctx, slip.ID); err != nil {
			return err
		}
		totals, err := s.payrollRepo.RecomputeTotals(ctx, companyID, period.ID)
		if err != nil {
			return err
		}
		period.Totals = totals
		period.PayslipsGenerated = false
		return s.payrollRepo.UpdatePeriod(ctx, period)
	})
	if err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("failed to void payslip: %w", err)
	}

	slog.Info("payslip voided", "payroll_id", period.ID, "payslip_id", slip.ID, "employee_code", slip.EmployeeCode, "actor", userID)
	return payroll.NewPeriodResponse(period), nil
}
