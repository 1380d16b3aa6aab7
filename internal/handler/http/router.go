package http

import (
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the process-level settings the router needs.
type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
}

func NewRouter(
	opts RouterOptions,
	verifier *jwt.Verifier,
	payrollHandler PayrollHandler,
	settlementHandler SettlementHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(verifier.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RequirePayrollRole)

			r.Route("/payrolls", func(r chi.Router) {
				r.Post("/", payrollHandler.InitiatePayroll)
				r.Get("/", payrollHandler.ListPayrolls)
				r.Post("/generate", payrollHandler.GeneratePayroll)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetPayroll)
					r.Post("/pre-check", payrollHandler.RunPreCheck)
					r.Post("/lock-attendance", payrollHandler.LockAttendance)
					r.Post("/unlock-attendance", payrollHandler.UnlockAttendance)
					r.Post("/finalize", payrollHandler.FinalizePayroll)
					r.Post("/mark-distributed", payrollHandler.MarkDistributed)
					r.Get("/payslips", payrollHandler.ListPayslips)
					r.Get("/payslips/{payslipID}", payrollHandler.GetPayslip)
					r.Post("/payslips/{payslipID}/void", payrollHandler.VoidPayslip)

					// Owner only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireOwner)
						r.Post("/mark-paid", payrollHandler.MarkPaid)
						r.Post("/lock", payrollHandler.Lock)
						r.Post("/unlock", payrollHandler.Unlock)
					})
				})
			})

			r.Get("/employees/{id}/gratuity", settlementHandler.CalculateGratuity)

			r.Route("/settlements", func(r chi.Router) {
				r.Post("/", settlementHandler.CreateSettlement)
				r.Get("/", settlementHandler.ListSettlements)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", settlementHandler.GetSettlement)
					r.Put("/", settlementHandler.UpdateSettlement)
					r.Post("/recalculate", settlementHandler.RecalculateSettlement)
					r.Post("/submit", settlementHandler.SubmitSettlement)
					r.Post("/cancel", settlementHandler.CancelSettlement)

					// Owner only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireOwner)
						r.Post("/approve", settlementHandler.ApproveSettlement)
						r.Post("/pay", settlementHandler.MarkSettlementPaid)
					})
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/pf", reportHandler.GetPFReport)
				r.Get("/esi", reportHandler.GetESIReport)
				r.Get("/tds", reportHandler.GetTDSReport)
				r.Get("/pt", reportHandler.GetPTReport)
				r.Get("/salary-register", reportHandler.GetSalaryRegister)
				r.Get("/bank-transfer", reportHandler.GetBankTransfer)
				r.Get("/reconciliation", reportHandler.GetReconciliation)
			})
		})
	})
	return r
}
