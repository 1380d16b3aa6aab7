package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/loan"
	"github.com/shopspring/decimal"
)

type LoanRepository struct {
	mu             sync.Mutex
	loans          map[string]loan.Loan
	installments   map[string]loan.EMI
	reimbursements []loan.Reimbursement
}

func NewLoanRepository() *LoanRepository {
	return &LoanRepository{
		loans:        make(map[string]loan.Loan),
		installments: make(map[string]loan.EMI),
	}
}

func (r *LoanRepository) PutLoan(l loan.Loan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans[l.ID] = l
}

func (r *LoanRepository) PutInstallment(e loan.EMI) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loans[e.LoanID]; ok {
		e.LoanType = l.Type
	}
	r.installments[e.ID] = e
}

func (r *LoanRepository) PutReimbursement(c loan.Reimbursement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reimbursements = append(r.reimbursements, c)
}

func (r *LoanRepository) Loan(id string) loan.Loan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loans[id]
}

func (r *LoanRepository) Installment(id string) loan.EMI {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.installments[id]
}

func (r *LoanRepository) Recoverable(ctx context.Context, companyID, employeeID string) ([]loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []loan.Loan
	for _, l := range r.loans {
		if l.CompanyID == companyID && l.EmployeeID == employeeID && l.Status.Recoverable() && l.OutstandingAmount.IsPositive() {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LoanRepository) DueInstallments(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]loan.EMI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []loan.EMI
	for _, e := range r.installments {
		l, ok := r.loans[e.LoanID]
		if !ok || l.CompanyID != companyID || l.EmployeeID != employeeID || !l.Status.Recoverable() {
			continue
		}
		if e.Status != loan.EMIStatusPending || e.DueDate.Before(start) || e.DueDate.After(end) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LoanRepository) MarkInstallmentPaid(ctx context.Context, emiID, payslipID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.installments[emiID]
	if !ok {
		return loan.ErrEMINotFound
	}
	if e.Status == loan.EMIStatusPaid {
		return loan.ErrEMIAlreadyPaid
	}
	e.Status = loan.EMIStatusPaid
	e.PayslipID = &payslipID
	r.installments[emiID] = e

	l := r.loans[e.LoanID]
	l.OutstandingAmount = decimal.Max(decimal.Zero, l.OutstandingAmount.Sub(e.Amount))
	if l.OutstandingAmount.IsZero() {
		l.Status = loan.StatusClosed
	} else {
		l.Status = loan.StatusActive
	}
	r.loans[l.ID] = l
	return nil
}

func (r *LoanRepository) RevertInstallments(ctx context.Context, payslipID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.installments {
		if e.PayslipID == nil || *e.PayslipID != payslipID {
			continue
		}
		e.Status = loan.EMIStatusPending
		e.PayslipID = nil
		r.installments[id] = e

		l := r.loans[e.LoanID]
		l.OutstandingAmount = l.OutstandingAmount.Add(e.Amount)
		l.Status = loan.StatusActive
		r.loans[l.ID] = l
	}
	return nil
}

func (r *LoanRepository) AwaitingDisbursement(ctx context.Context, companyID string) ([]loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []loan.Loan
	for _, l := range r.loans {
		if l.CompanyID == companyID && l.Status == loan.StatusApproved && l.DisbursedAt == nil {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LoanRepository) PendingReimbursements(ctx context.Context, companyID, employeeID string) ([]loan.Reimbursement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []loan.Reimbursement
	for _, c := range r.reimbursements {
		if c.EmployeeID != employeeID {
			continue
		}
		if c.Status == loan.ReimbursementStatusPending || c.Status == loan.ReimbursementStatusApproved {
			out = append(out, c)
		}
	}
	return out, nil
}
