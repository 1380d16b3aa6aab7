package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/jwt"
)

type ReportHandler interface {
	// Statutory returns
	GetPFReport(w http.ResponseWriter, r *http.Request)
	GetESIReport(w http.ResponseWriter, r *http.Request)
	GetTDSReport(w http.ResponseWriter, r *http.Request)
	GetPTReport(w http.ResponseWriter, r *http.Request)

	// Registers
	GetSalaryRegister(w http.ResponseWriter, r *http.Request)
	GetBankTransfer(w http.ResponseWriter, r *http.Request)

	// Reconciliation
	GetReconciliation(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// parseReportRequest reads the month and year query parameters.
func parseReportRequest(w http.ResponseWriter, r *http.Request) (report.ReportRequest, bool) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		response.BadRequest(w, "invalid month parameter", nil)
		return report.ReportRequest{}, false
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "invalid year parameter", nil)
		return report.ReportRequest{}, false
	}

	return report.ReportRequest{Month: month, Year: year}, true
}

// GetPFReport handles GET /reports/pf
func (h *reportHandlerImpl) GetPFReport(w http.ResponseWriter, r *http.Request) {
	req, ok := parseReportRequest(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.PFReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetESIReport handles GET /reports/esi
func (h *reportHandlerImpl) GetESIReport(w http.ResponseWriter, r *http.Request) {
	req, ok := parseReportRequest(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.ESIReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetTDSReport handles GET /reports/tds
func (h *reportHandlerImpl) GetTDSReport(w http.ResponseWriter, r *http.Request) {
	req, ok := parseReportRequest(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.TDSReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetPTReport handles GET /reports/pt
func (h *reportHandlerImpl) GetPTReport(w http.ResponseWriter, r *http.Request) {
	req, ok := parseReportRequest(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.PTReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetSalaryRegister handles GET /reports/salary-register
func (h *reportHandlerImpl) GetSalaryRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := parseReportRequest(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.SalaryRegister(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetBankTransfer handles GET /reports/bank-transfer. Full account numbers are for owners only.
func (h *reportHandlerImpl) GetBankTransfer(w http.ResponseWriter, r *http.Request) {
	base, ok := parseReportRequest(w, r)
	if !ok {
		return
	}
	req := report.BankTransferRequest{ReportRequest: base, Unmasked: r.URL.Query().Get("unmasked") == "true"}

	if req.Unmasked {
		claims, err := jwt.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}
		if claims.Role != jwt.RoleOwner {
			response.Forbidden(w, "Unmasked account numbers require owner role")
			return
		}
	}

	result, err := h.reportService.BankTransfer(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetReconciliation handles GET /reports/reconciliation
func (h *reportHandlerImpl) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	req, ok := parseReportRequest(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.Reconciliation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
