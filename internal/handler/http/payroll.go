package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Periods
	InitiatePayroll(w http.ResponseWriter, r *http.Request)
	ListPayrolls(w http.ResponseWriter, r *http.Request)
	GetPayroll(w http.ResponseWriter, r *http.Request)

	// Lifecycle
	GeneratePayroll(w http.ResponseWriter, r *http.Request)
	RunPreCheck(w http.ResponseWriter, r *http.Request)
	LockAttendance(w http.ResponseWriter, r *http.Request)
	UnlockAttendance(w http.ResponseWriter, r *http.Request)
	FinalizePayroll(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	MarkDistributed(w http.ResponseWriter, r *http.Request)
	Lock(w http.ResponseWriter, r *http.Request)
	Unlock(w http.ResponseWriter, r *http.Request)

	// Payslips
	ListPayslips(w http.ResponseWriter, r *http.Request)
	GetPayslip(w http.ResponseWriter, r *http.Request)
	VoidPayslip(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== PERIODS ==========

func (h *payrollHandlerImpl) InitiatePayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.InitiatePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.InitiatePayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll period initiated", result)
}

func (h *payrollHandlerImpl) ListPayrolls(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter payroll.PeriodFilter

	if v := query.Get("period_year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "period_year must be a number", nil)
			return
		}
		filter.PeriodYear = &year
	}
	if v := query.Get("status"); v != "" {
		filter.Status = &v
	}
	filter.Page, _ = strconv.Atoi(query.Get("page"))
	filter.Limit, _ = strconv.Atoi(query.Get("limit"))

	result, err := h.payrollService.ListPayrolls(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, result.Data, result.Page, result.Limit, result.TotalCount)
}

func (h *payrollHandlerImpl) GetPayroll(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.payrollService.GetPayroll(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== LIFECYCLE ==========

func (h *payrollHandlerImpl) GeneratePayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.GeneratePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.GeneratePayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll generated", result)
}

func (h *payrollHandlerImpl) RunPreCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.payrollService.RunPreCheck(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) LockAttendance(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.payrollService.LockAttendance, "Attendance locked")
}

func (h *payrollHandlerImpl) UnlockAttendance(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.payrollService.UnlockAttendance, "Attendance unlocked")
}

func (h *payrollHandlerImpl) FinalizePayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.FinalizePayrollRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	req.ID = id

	result, err := h.payrollService.FinalizePayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll finalized", result)
}

func (h *payrollHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	var req payroll.MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	req.ID = id

	result, err := h.payrollService.MarkPaid(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll marked as paid", result)
}

func (h *payrollHandlerImpl) MarkDistributed(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.payrollService.MarkDistributed, "Payslips marked as distributed")
}

func (h *payrollHandlerImpl) Lock(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.payrollService.Lock, "Payroll locked")
}

func (h *payrollHandlerImpl) Unlock(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.payrollService.Unlock, "Payroll unlocked")
}

// transition runs a body-less state change on the period named in the URL.
func (h *payrollHandlerImpl) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id string) (payroll.PeriodResponse, error),
	message string,
) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	result, err := fn(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// urlID reads an identifier minted by this service from the URL. Anything that is not a
// UUIDv7 cannot exist, so it is answered with 404 before reaching storage.
func urlID(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	id := chi.URLParam(r, key)
	if !validator.IsValidUUID(id) {
		response.NotFound(w, "Resource not found")
		return "", false
	}
	return id, true
}

// ========== PAYSLIPS ==========

func (h *payrollHandlerImpl) ListPayslips(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.payrollService.ListPayslips(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "payslipID")
	if !ok {
		return
	}
	result, err := h.payrollService.GetPayslip(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) VoidPayslip(w http.ResponseWriter, r *http.Request) {
	var req payroll.VoidPayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	id, ok := urlID(w, r, "payslipID")
	if !ok {
		return
	}
	req.ID = id

	result, err := h.payrollService.VoidPayslip(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip voided", result)
}
