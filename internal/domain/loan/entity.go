package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeLoan    Type = "loan"
	TypeAdvance Type = "advance"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusActive   Status = "active"
	StatusClosed   Status = "closed"
	StatusRejected Status = "rejected"
)

// Recoverable reports whether a loan in this status still owes money to the company.
func (s Status) Recoverable() bool {
	return s == StatusApproved || s == StatusActive
}

type Loan struct {
	ID                string
	CompanyID         string
	EmployeeID        string
	EmployeeCode      string
	Type              Type
	Principal         decimal.Decimal
	TenureMonths      int
	EMIAmount         decimal.Decimal
	OutstandingAmount decimal.Decimal
	Status            Status
	DisbursedAt       *time.Time
	CreatedAt         time.Time
}

type EMIStatus string

const (
	EMIStatusPending EMIStatus = "pending"
	EMIStatusPaid    EMIStatus = "paid"
)

// EMI is one installment of a loan.
type EMI struct {
	ID            string
	LoanID        string
	LoanType      Type
	InstallmentNo int
	DueDate       time.Time
	Amount        decimal.Decimal
	Status        EMIStatus
	PayslipID     *string
}

type ReimbursementStatus string

const (
	ReimbursementStatusPending  ReimbursementStatus = "pending"
	ReimbursementStatusApproved ReimbursementStatus = "approved"
	ReimbursementStatusPaid     ReimbursementStatus = "paid"
	ReimbursementStatusRejected ReimbursementStatus = "rejected"
)

type Reimbursement struct {
	ID         string
	EmployeeID string
	Category   string
	Amount     decimal.Decimal
	Status     ReimbursementStatus
}

// Outstanding splits recoverable balances into loans and advances.
func Outstanding(loans []Loan) (outstandingLoans, outstandingAdvances decimal.Decimal) {
	outstandingLoans, outstandingAdvances = decimal.Zero, decimal.Zero
	for _, l := range loans {
		if !l.Status.Recoverable() || !l.OutstandingAmount.IsPositive() {
			continue
		}
		if l.Type == TypeAdvance {
			outstandingAdvances = outstandingAdvances.Add(l.OutstandingAmount)
		} else {
			outstandingLoans = outstandingLoans.Add(l.OutstandingAmount)
		}
	}
	return outstandingLoans, outstandingAdvances
}

// PendingReimbursementTotal sums pending and approved claims.
func PendingReimbursementTotal(claims []Reimbursement) decimal.Decimal {
	total := decimal.Zero
	for _, c := range claims {
		if c.Status == ReimbursementStatusPending || c.Status == ReimbursementStatusApproved {
			total = total.Add(c.Amount)
		}
	}
	return total
}
