package leave

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Leave type codes that are encashed at exit.
const (
	CodePrivilegeLeave = "PL"
	CodeEarnedLeave    = "EL"
)

// IsEncashable reports whether leave of the given type code is paid out in a settlement.
func IsEncashable(code string) bool {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case CodePrivilegeLeave, CodeEarnedLeave:
		return true
	}
	return false
}

// Balance is the remaining quota of one leave type for one employee.
type Balance struct {
	EmployeeID    string
	LeaveTypeID   string
	LeaveTypeCode string
	Year          int
	Available     decimal.Decimal
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusWaitingApproval LeaveRequestStatus = "waiting_approval"
	LeaveRequestStatusApproved        LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected        LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled       LeaveRequestStatus = "cancelled"
)

// Request is the slice of a leave request the payroll pre-check looks at.
type Request struct {
	ID           string
	EmployeeID   string
	EmployeeCode string
	LeaveTypeID  string
	StartDate    time.Time
	EndDate      time.Time
	Status       LeaveRequestStatus
}

// EncashableDays sums the available days across PL/EL balances.
func EncashableDays(balances []Balance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		if IsEncashable(b.LeaveTypeCode) && b.Available.IsPositive() {
			total = total.Add(b.Available)
		}
	}
	return total
}
