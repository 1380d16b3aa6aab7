package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	"github.com/cmlabs-hris/hris-payroll/internal/repository/memory"
	reportService "github.com/cmlabs-hris/hris-payroll/internal/service/report"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	routerTestSecret  = "test-secret-key-for-jwt"
	routerTestCompany = "company-1"
)

func newTestRouter(t *testing.T) (*chi.Mux, *jwt.Verifier) {
	t.Helper()

	employees := memory.NewEmployeeRepository(employee.Employee{
		ID: "emp-1", CompanyID: routerTestCompany, EmployeeCode: "EMP001", FullName: "Asha Rao", WorkState: "MH",
	})
	payrolls := memory.NewPayrollRepository()
	payrolls.PutPeriod(payroll.Period{ID: "p-may", CompanyID: routerTestCompany, PeriodMonth: 5, PeriodYear: 2025, Status: payroll.StatusFinalized})
	payrolls.PutPeriod(payroll.Period{ID: "p-jun", CompanyID: routerTestCompany, PeriodMonth: 6, PeriodYear: 2025, Status: payroll.StatusProcessing})
	payrolls.PutPayslip(payroll.Payslip{
		ID:                    "slip-1",
		PayrollPeriodID:       "p-may",
		CompanyID:             routerTestCompany,
		EmployeeID:            "emp-1",
		EmployeeCode:          "EMP001",
		EmployeeName:          "Asha Rao",
		PeriodMonth:           5,
		PeriodYear:            2025,
		Earnings:              payroll.Earnings{payroll.EarningBasic: money.MustParse("15000")}.Normalize(),
		Deductions:            payroll.Deductions{payroll.DeductionPF: money.MustParse("1800")}.Normalize(),
		EmployerContributions: payroll.Contributions{payroll.ContributionPFEmployer: money.MustParse("550.5"), payroll.ContributionEPS: money.MustParse("1249.5")},
		PFWage:                money.MustParse("15000"),
	})

	reports := reportService.NewReportService(payrolls, memory.NewReportRepository(payrolls, employees), nil)
	verifier := jwt.NewVerifier(routerTestSecret, time.Minute)

	router := NewRouter(
		RouterOptions{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), LogLevel: slog.LevelError},
		verifier,
		NewPayrollHandler(nil),
		NewSettlementHandler(nil),
		NewReportHandler(reports),
	)
	return router, verifier
}

func signToken(t *testing.T, verifier *jwt.Verifier, role jwt.Role) string {
	t.Helper()
	_, token, err := verifier.JWTAuth().Encode(map[string]interface{}{
		"type":       "access",
		"user_id":    "user-1",
		"company_id": routerTestCompany,
		"role":       string(role),
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return token
}

func doRequest(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestRouter_Authentication(t *testing.T) {
	router, verifier := newTestRouter(t)

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/v1/reports/pf?month=5&year=2025", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		other := jwt.NewVerifier("another-secret", time.Minute)
		rec := doRequest(router, http.MethodGet, "/api/v1/reports/pf?month=5&year=2025", signToken(t, other, jwt.RoleOwner))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("employee role cannot reach payroll", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/v1/reports/pf?month=5&year=2025", signToken(t, verifier, jwt.RoleEmployee))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
	})

	t.Run("manager cannot mark a payroll paid", func(t *testing.T) {
		rec := doRequest(router, http.MethodPost, "/api/v1/payrolls/p-may/mark-paid", signToken(t, verifier, jwt.RoleManager))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRouter_RejectsMalformedIDs(t *testing.T) {
	router, verifier := newTestRouter(t)
	owner := signToken(t, verifier, jwt.RoleOwner)

	for _, path := range []string{
		"/api/v1/payrolls/p-may",
		"/api/v1/payrolls/0196b1a0-0000-4000-8000-000000000000/payslips",
		"/api/v1/settlements/42",
	} {
		rec := doRequest(router, http.MethodGet, path, owner)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "NOT_FOUND", errorCode(t, rec), path)
	}
}

func TestRouter_Reports(t *testing.T) {
	router, verifier := newTestRouter(t)
	manager := signToken(t, verifier, jwt.RoleManager)

	t.Run("pf report of a finalized period", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/v1/reports/pf?month=5&year=2025", manager)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				PayrollID string `json:"payroll_id"`
				Totals    struct {
					Employees int             `json:"employees"`
					Total     decimal.Decimal `json:"total"`
				} `json:"totals"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "p-may", body.Data.PayrollID)
		assert.Equal(t, 1, body.Data.Totals.Employees)
		assert.True(t, body.Data.Totals.Total.Equal(money.MustParse("3600")))
	})

	t.Run("processing period is not reportable", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/v1/reports/esi?month=6&year=2025", manager)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("month must be a number", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/v1/reports/tds?month=may&year=2025", manager)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("month out of range", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/v1/reports/pt?month=13&year=2025", manager)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	})

	t.Run("unmasked bank transfer needs owner", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/api/v1/reports/bank-transfer?month=5&year=2025&unmasked=true", manager)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bank transfer without encryption key", func(t *testing.T) {
		owner := signToken(t, verifier, jwt.RoleOwner)
		rec := doRequest(router, http.MethodGet, "/api/v1/reports/bank-transfer?month=5&year=2025", owner)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
