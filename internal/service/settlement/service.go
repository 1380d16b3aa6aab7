package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/settlement"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var thirty = decimal.NewFromInt(30)

type SettlementServiceImpl struct {
	tx             database.Transactor
	settlementRepo settlement.SettlementRepository
	employeeRepo   employee.EmployeeRepository
	salaryRepo     salary.StructureRepository
	payrollRepo    payroll.PayrollRepository
	loanRepo       loan.LoanRepository
	leaveRepo      leave.LeaveRepository
	now            func() time.Time
}

func NewSettlementService(
	tx database.Transactor,
	settlementRepo settlement.SettlementRepository,
	employeeRepo employee.EmployeeRepository,
	salaryRepo salary.StructureRepository,
	payrollRepo payroll.PayrollRepository,
	loanRepo loan.LoanRepository,
	leaveRepo leave.LeaveRepository,
) settlement.SettlementService {
	return &SettlementServiceImpl{
		tx:             tx,
		settlementRepo: settlementRepo,
		employeeRepo:   employeeRepo,
		salaryRepo:     salaryRepo,
		payrollRepo:    payrollRepo,
		loanRepo:       loanRepo,
		leaveRepo:      leaveRepo,
		now:            time.Now,
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

func (s *SettlementServiceImpl) timestamp() *time.Time {
	now := s.now().UTC()
	return &now
}

// lastDrawnSalary reads basic + DA from the latest finalized payslip, falling back to the
// salary structure active on asOf.
func (s *SettlementServiceImpl) lastDrawnSalary(ctx context.Context, companyID, employeeID string, asOf time.Time) (decimal.Decimal, settlement.SalarySource, error) {
	slip, err := s.payrollRepo.LatestFinalizedPayslip(ctx, companyID, employeeID)
	switch {
	case err == nil:
		wage := slip.Earnings[payroll.EarningBasic].Add(slip.Earnings[payroll.EarningDearnessAllowance])
		if wage.IsPositive() {
			return wage, settlement.SourcePayslip, nil
		}
	case !errors.Is(err, payroll.ErrPayslipNotFound):
		return decimal.Zero, settlement.SourceNone, fmt.Errorf("failed to load last finalized payslip: %w", err)
	}

	structure, err := s.salaryRepo.ActiveOn(ctx, companyID, employeeID, asOf)
	switch {
	case err == nil:
		if wage := structure.BasicPlusDA(); wage.IsPositive() {
			return wage, settlement.SourceStructure, nil
		}
	case !errors.Is(err, salary.ErrStructureNotFound):
		return decimal.Zero, settlement.SourceNone, fmt.Errorf("failed to resolve salary structure: %w", err)
	}

	return decimal.Zero, settlement.SourceNone, nil
}

func (s *SettlementServiceImpl) gratuity(ctx context.Context, companyID string, emp employee.Employee, exit time.Time) (settlement.Gratuity, error) {
	wage, source, err := s.lastDrawnSalary(ctx, companyID, emp.ID, exit)
	if err != nil {
		return settlement.Gratuity{}, err
	}
	return CalculateGratuity(GratuityInput{
		EmployeeID:      emp.ID,
		JoiningDate:     emp.HireDate,
		ExitDate:        exit,
		LastDrawnSalary: wage,
		Source:          source,
	})
}

// ========== GRATUITY ==========

func (s *SettlementServiceImpl) CalculateGratuity(ctx context.Context, req settlement.GratuityRequest) (settlement.Gratuity, error) {
	if err := req.Validate(); err != nil {
		return settlement.Gratuity{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return settlement.Gratuity{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, companyID, req.EmployeeID)
	if err != nil {
		return settlement.Gratuity{}, err
	}
	exit, _ := time.Parse(dateLayout, req.ExitDate)

	return s.gratuity(ctx, companyID, emp, exit)
}

// ========== SETTLEMENTS ==========

// refresh recomputes every line derived from other records: loans and advances, pending
// reimbursements, encashable leave and gratuity. Caller-supplied items are kept.
func (s *SettlementServiceImpl) refresh(ctx context.Context, st *settlement.Settlement, emp employee.Employee) error {
	companyID := st.CompanyID

	loans, err := s.loanRepo.Recoverable(ctx, companyID, emp.ID)
	if err != nil {
		return fmt.Errorf("failed to load loans: %w", err)
	}
	st.OutstandingLoans, st.OutstandingAdvances = loan.Outstanding(loans)

	claims, err := s.loanRepo.PendingReimbursements(ctx, companyID, emp.ID)
	if err != nil {
		return fmt.Errorf("failed to load reimbursements: %w", err)
	}
	st.ReimbursementAmount = loan.PendingReimbursementTotal(claims)
	st.PendingReimbursements = make([]settlement.ReimbursementLine, 0, len(claims))
	for _, c := range claims {
		if c.Status != loan.ReimbursementStatusPending && c.Status != loan.ReimbursementStatusApproved {
			continue
		}
		st.PendingReimbursements = append(st.PendingReimbursements, settlement.ReimbursementLine{
			ID:       c.ID,
			Category: c.Category,
			Amount:   c.Amount,
			Status:   string(c.Status),
		})
	}

	g, err := s.gratuity(ctx, companyID, emp, st.LastWorkingDate)
	if err != nil {
		return err
	}
	st.GratuityCalculation = &g
	st.GratuityAmount = g.GratuityAmount
	st.LastDrawnSalary = g.Calculation.LastDrawnSalary
	st.Warnings = append([]string(nil), g.Warnings...)

	balances, err := s.leaveRepo.BalancesForYear(ctx, companyID, emp.ID, st.LastWorkingDate.Year())
	if err != nil {
		return fmt.Errorf("failed to load leave balances: %w", err)
	}
	st.EarnedLeaveDays = leave.EncashableDays(balances)
	st.EarnedLeaveAmount = money.Round2(st.EarnedLeaveDays.Mul(st.LastDrawnSalary).Div(thirty))
	if st.EarnedLeaveDays.IsPositive() && st.LastDrawnSalary.IsZero() {
		st.Warnings = append(st.Warnings, "earned leave balance could not be encashed without a last drawn salary")
	}

	st.Recalculate()
	return nil
}

func (s *SettlementServiceImpl) CreateSettlement(ctx context.Context, req settlement.CreateSettlementRequest) (settlement.SettlementResponse, error) {
	if err := req.Validate(); err != nil {
		return settlement.SettlementResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return settlement.SettlementResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, companyID, req.EmployeeID)
	if err != nil {
		return settlement.SettlementResponse{}, err
	}

	settlementDate, _ := time.Parse(dateLayout, req.SettlementDate)
	lastWorking, _ := time.Parse(dateLayout, req.LastWorkingDate)

	id, err := uuid.NewV7()
	if err != nil {
		return settlement.SettlementResponse{}, fmt.Errorf("failed to generate settlement id: %w", err)
	}

	st := settlement.Settlement{
		ID:              id.String(),
		CompanyID:       companyID,
		EmployeeID:      emp.ID,
		EmployeeCode:    emp.EmployeeCode,
		EmployeeName:    emp.FullName,
		SettlementDate:  settlementDate,
		LastWorkingDate: lastWorking,
		Status:          settlement.StatusDraft,
		CreatedBy:       strPtr(userID),
	}
	req.LineItems.Apply(&st)

	var created settlement.Settlement
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.refresh(ctx, &st, emp); err != nil {
			return err
		}
		created, err = s.settlementRepo.Create(ctx, st)
		return err
	})
	if err != nil {
		return settlement.SettlementResponse{}, err
	}

	slog.Info("settlement created",
		"settlement_id", created.ID,
		"employee_code", created.EmployeeCode,
		"net_amount", created.NetAmount.String(),
		"actor", userID,
	)
	return settlement.NewSettlementResponse(created), nil
}

func (s *SettlementServiceImpl) GetSettlement(ctx context.Context, id string) (settlement.SettlementResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return settlement.SettlementResponse{}, err
	}

	st, err := s.settlementRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return settlement.SettlementResponse{}, err
	}
	return settlement.NewSettlementResponse(st), nil
}

func (s *SettlementServiceImpl) ListSettlements(ctx context.Context, filter settlement.SettlementFilter) (settlement.ListSettlementResponse, error) {
	if err := filter.Validate(); err != nil {
		return settlement.ListSettlementResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return settlement.ListSettlementResponse{}, err
	}

	items, total, err := s.settlementRepo.List(ctx, companyID, filter)
	if err != nil {
		return settlement.ListSettlementResponse{}, err
	}

	data := make([]settlement.SettlementResponse, 0, len(items))
	for _, st := range items {
		data = append(data, settlement.NewSettlementResponse(st))
	}
	return settlement.ListSettlementResponse{Data: data, TotalCount: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// editable loads a settlement whose line items may still change.
func (s *SettlementServiceImpl) editable(ctx context.Context, id string) (settlement.Settlement, string, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return settlement.Settlement{}, "", err
	}

	st, err := s.settlementRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return settlement.Settlement{}, "", err
	}
	if st.Status.Terminal() {
		return settlement.Settlement{}, "", settlement.ErrSettlementImmutable
	}
	if !st.Status.Editable() {
		return settlement.Settlement{}, "", settlement.ErrSettlementNotEditable
	}
	return st, userID, nil
}

func (s *SettlementServiceImpl) UpdateSettlement(ctx context.Context, req settlement.UpdateSettlementRequest) (settlement.SettlementResponse, error) {
	if err := req.Validate(); err != nil {
		return settlement.SettlementResponse{}, err
	}

	st, userID, err := s.editable(ctx, req.ID)
	if err != nil {
		return settlement.SettlementResponse{}, err
	}

	req.LineItems.Apply(&st)
	st.Recalculate()
	if err := s.settlementRepo.Update(ctx, st); err != nil {
		return settlement.SettlementResponse{}, fmt.Errorf("failed to update settlement: %w", err)
	}

	slog.Info("settlement updated", "settlement_id", st.ID, "net_amount", st.NetAmount.String(), "actor", userID)
	return settlement.NewSettlementResponse(st), nil
}

func (s *SettlementServiceImpl) RecalculateSettlement(ctx context.Context, id string) (settlement.SettlementResponse, error) {
	st, userID, err := s.editable(ctx, id)
	if err != nil {
		return settlement.SettlementResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, st.CompanyID, st.EmployeeID)
	if err != nil {
		return settlement.SettlementResponse{}, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.refresh(ctx, &st, emp); err != nil {
			return err
		}
		return s.settlementRepo.Update(ctx, st)
	})
	if err != nil {
		return settlement.SettlementResponse{}, fmt.Errorf("failed to recalculate settlement: %w", err)
	}

	slog.Info("settlement recalculated", "settlement_id", st.ID, "net_amount", st.NetAmount.String(), "actor", userID)
	return settlement.NewSettlementResponse(st), nil
}

// transition moves a settlement to `to` when its current status is one of from.
func (s *SettlementServiceImpl) transition(
	ctx context.Context,
	id string,
	to settlement.Status,
	from []settlement.Status,
	apply func(st *settlement.Settlement, userID string),
) (settlement.SettlementResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return settlement.SettlementResponse{}, err
	}

	st, err := s.settlementRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return settlement.SettlementResponse{}, err
	}
	if st.Status.Terminal() {
		return settlement.SettlementResponse{}, settlement.ErrSettlementImmutable
	}

	allowed := false
	for _, f := range from {
		if st.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return settlement.SettlementResponse{}, fmt.Errorf("%w: %s to %s", settlement.ErrInvalidTransition, st.Status, to)
	}

	prev := st.Status
	st.Status = to
	if apply != nil {
		apply(&st, userID)
	}
	if err := s.settlementRepo.Update(ctx, st); err != nil {
		return settlement.SettlementResponse{}, fmt.Errorf("failed to update settlement status: %w", err)
	}

	slog.Info("settlement status changed", "settlement_id", st.ID, "from", prev, "to", to, "actor", userID)
	return settlement.NewSettlementResponse(st), nil
}

func (s *SettlementServiceImpl) SubmitSettlement(ctx context.Context, id string) (settlement.SettlementResponse, error) {
	return s.transition(ctx, id, settlement.StatusPending, []settlement.Status{settlement.StatusDraft}, nil)
}

func (s *SettlementServiceImpl) ApproveSettlement(ctx context.Context, id string) (settlement.SettlementResponse, error) {
	return s.transition(ctx, id, settlement.StatusApproved,
		[]settlement.Status{settlement.StatusDraft, settlement.StatusPending},
		func(st *settlement.Settlement, userID string) {
			st.ApprovedBy = strPtr(userID)
			st.ApprovedAt = s.timestamp()
		})
}

func (s *SettlementServiceImpl) MarkSettlementPaid(ctx context.Context, req settlement.MarkSettlementPaidRequest) (settlement.SettlementResponse, error) {
	if err := req.Validate(); err != nil {
		return settlement.SettlementResponse{}, err
	}
	return s.transition(ctx, req.ID, settlement.StatusPaid,
		[]settlement.Status{settlement.StatusApproved},
		func(st *settlement.Settlement, userID string) {
			st.PaidBy = strPtr(userID)
			st.PaidAt = s.timestamp()
			st.PaymentReference = strPtr(req.PaymentReference)
		})
}

func (s *SettlementServiceImpl) CancelSettlement(ctx context.Context, req settlement.CancelSettlementRequest) (settlement.SettlementResponse, error) {
	if err := req.Validate(); err != nil {
		return settlement.SettlementResponse{}, err
	}
	return s.transition(ctx, req.ID, settlement.StatusCancelled,
		[]settlement.Status{settlement.StatusDraft, settlement.StatusPending, settlement.StatusApproved},
		func(st *settlement.Settlement, userID string) {
			st.CancelledBy = strPtr(userID)
			st.CancelledAt = s.timestamp()
			st.CancelReason = strPtr(req.Reason)
		})
}
