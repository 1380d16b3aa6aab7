package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/settlement"
	"github.com/cmlabs-hris/hris-payroll/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type SettlementHandler interface {
	// Gratuity
	CalculateGratuity(w http.ResponseWriter, r *http.Request)

	// Settlements
	CreateSettlement(w http.ResponseWriter, r *http.Request)
	ListSettlements(w http.ResponseWriter, r *http.Request)
	GetSettlement(w http.ResponseWriter, r *http.Request)
	UpdateSettlement(w http.ResponseWriter, r *http.Request)
	RecalculateSettlement(w http.ResponseWriter, r *http.Request)

	// Workflow
	SubmitSettlement(w http.ResponseWriter, r *http.Request)
	ApproveSettlement(w http.ResponseWriter, r *http.Request)
	MarkSettlementPaid(w http.ResponseWriter, r *http.Request)
	CancelSettlement(w http.ResponseWriter, r *http.Request)
}

type settlementHandlerImpl struct {
	settlementService settlement.SettlementService
}

func NewSettlementHandler(settlementService settlement.SettlementService) SettlementHandler {
	return &settlementHandlerImpl{settlementService: settlementService}
}

// CalculateGratuity handles GET /employees/{id}/gratuity?exit_date=YYYY-MM-DD
func (h *settlementHandlerImpl) CalculateGratuity(w http.ResponseWriter, r *http.Request) {
	req := settlement.GratuityRequest{
		EmployeeID: chi.URLParam(r, "id"),
		ExitDate:   r.URL.Query().Get("exit_date"),
	}

	result, err := h.settlementService.CalculateGratuity(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== SETTLEMENTS ==========

func (h *settlementHandlerImpl) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlement.CreateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.settlementService.CreateSettlement(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Settlement created", result)
}

func (h *settlementHandlerImpl) ListSettlements(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter settlement.SettlementFilter

	if v := query.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := query.Get("status"); v != "" {
		filter.Status = &v
	}
	filter.Page, _ = strconv.Atoi(query.Get("page"))
	filter.Limit, _ = strconv.Atoi(query.Get("limit"))

	result, err := h.settlementService.ListSettlements(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, result.Data, result.Page, result.Limit, result.TotalCount)
}

func (h *settlementHandlerImpl) GetSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.settlementService.GetSettlement(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *settlementHandlerImpl) UpdateSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlement.UpdateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	req.ID = id

	result, err := h.settlementService.UpdateSettlement(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *settlementHandlerImpl) RecalculateSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.settlementService.RecalculateSettlement(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement recalculated", result)
}

// ========== WORKFLOW ==========

func (h *settlementHandlerImpl) SubmitSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.settlementService.SubmitSettlement(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement submitted for approval", result)
}

func (h *settlementHandlerImpl) ApproveSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.settlementService.ApproveSettlement(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement approved", result)
}

func (h *settlementHandlerImpl) MarkSettlementPaid(w http.ResponseWriter, r *http.Request) {
	var req settlement.MarkSettlementPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	req.ID = id

	result, err := h.settlementService.MarkSettlementPaid(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement marked as paid", result)
}

func (h *settlementHandlerImpl) CancelSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlement.CancelSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	req.ID = id

	result, err := h.settlementService.CancelSettlement(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement cancelled", result)
}
