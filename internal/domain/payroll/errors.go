package payroll

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/salary"
)

var (
	ErrPayrollNotFound      = errors.New("payroll period not found")
	ErrPayrollAlreadyExists = errors.New("payroll period already exists")
	ErrPayslipNotFound      = errors.New("payslip not found")
	ErrPayslipAlreadyExists = errors.New("payslip already exists for this employee and period")
	ErrSettingsNotFound     = errors.New("payroll settings not found")
	ErrInvalidPeriod        = errors.New("invalid payroll period")
	ErrAttendanceNotLocked  = errors.New("attendance must be locked before payslips are generated")
	ErrPeriodLocked         = errors.New("payroll period is locked")
	ErrPeriodNotLocked      = errors.New("payroll period is not locked")
	ErrPeriodFinalized      = errors.New("payroll period is already finalized")
	ErrPeriodNotEditable    = errors.New("payroll period no longer accepts changes")
	ErrInvalidTransition    = errors.New("invalid payroll status transition")
	ErrPayslipsIncomplete   = errors.New("employees without payslip and pre-check not completed")
	ErrPayslipAlreadyVoided = errors.New("payslip already voided")
)

// ErrorKind classifies a per-employee failure during generation.
type ErrorKind string

const (
	ErrorKindConfig   ErrorKind = "config"
	ErrorKindData     ErrorKind = "data"
	ErrorKindInternal ErrorKind = "internal"
)

// EmployeeError is a failure isolated to one employee; the batch goes on without them.
type EmployeeError struct {
	EmployeeID   string
	EmployeeCode string
	Kind         ErrorKind
	Err          error
}

func (e *EmployeeError) Error() string {
	if errors.Is(e.Err, salary.ErrStructureNotFound) {
		return fmt.Sprintf("no salary structure for emp %s", e.EmployeeCode)
	}
	return fmt.Sprintf("emp %s: %v", e.EmployeeCode, e.Err)
}

func (e *EmployeeError) Unwrap() error {
	return e.Err
}
