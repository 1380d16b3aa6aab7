package loan

import (
	"context"
	"time"
)

type LoanRepository interface {
	// Recoverable returns approved/active loans and advances with a positive outstanding amount.
	Recoverable(ctx context.Context, companyID, employeeID string) ([]Loan, error)
	// DueInstallments returns pending installments due within [start, end] of recoverable loans.
	DueInstallments(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]EMI, error)
	// MarkInstallmentPaid flags the installment as recovered through payslipID and reduces the
	// loan outstanding; a loan that reaches zero is closed.
	MarkInstallmentPaid(ctx context.Context, emiID, payslipID string) error
	// RevertInstallments undoes MarkInstallmentPaid for every installment recovered through payslipID.
	RevertInstallments(ctx context.Context, payslipID string) error
	// AwaitingDisbursement returns approved loans that have not been disbursed yet.
	AwaitingDisbursement(ctx context.Context, companyID string) ([]Loan, error)
	PendingReimbursements(ctx context.Context, companyID, employeeID string) ([]Reimbursement, error)
}
