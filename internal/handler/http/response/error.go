package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/settlement"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, jwt.ErrCompanyIDRequired):
		Unauthorized(w, "Token carries no company")
	case errors.Is(err, jwt.ErrInsufficientAccess):
		Forbidden(w, "Insufficient access")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrPayrollAlreadyExists):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrPayslipAlreadyExists):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrPayslipAlreadyVoided):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrAttendanceNotLocked),
		errors.Is(err, payroll.ErrPeriodLocked),
		errors.Is(err, payroll.ErrPeriodNotLocked),
		errors.Is(err, payroll.ErrPeriodFinalized),
		errors.Is(err, payroll.ErrPeriodNotEditable),
		errors.Is(err, payroll.ErrInvalidTransition),
		errors.Is(err, payroll.ErrPayslipsIncomplete):
		Conflict(w, err.Error())

	// Settlement domain errors
	case errors.Is(err, settlement.ErrSettlementNotFound):
		NotFound(w, "Settlement not found")
	case errors.Is(err, settlement.ErrSettlementAlreadyExists),
		errors.Is(err, settlement.ErrSettlementImmutable),
		errors.Is(err, settlement.ErrSettlementNotEditable),
		errors.Is(err, settlement.ErrInvalidTransition):
		Conflict(w, err.Error())
	case errors.Is(err, settlement.ErrInvalidExitDate):
		BadRequest(w, err.Error(), nil)

	// Report errors
	case errors.Is(err, report.ErrPeriodNotReportable):
		Conflict(w, err.Error())
	case errors.Is(err, report.ErrDecryptorMissing):
		ServiceUnavailable(w, err.Error())

	// Master data errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, salary.ErrStructureNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, loan.ErrEMINotFound):
		NotFound(w, err.Error())
	case errors.Is(err, loan.ErrEMIAlreadyPaid):
		Conflict(w, err.Error())
	case errors.Is(err, statutory.ErrInvalidRegime):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, statutory.ErrRateTableMissing):
		UnprocessableEntity(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
