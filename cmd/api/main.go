package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	schema "github.com/cmlabs-hris/hris-payroll/db"
	"github.com/cmlabs-hris/hris-payroll/internal/config"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
	appHTTP "github.com/cmlabs-hris/hris-payroll/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/crypto"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-payroll/internal/service/attendance"
	payrollService "github.com/cmlabs-hris/hris-payroll/internal/service/payroll"
	reportService "github.com/cmlabs-hris/hris-payroll/internal/service/report"
	settlementService "github.com/cmlabs-hris/hris-payroll/internal/service/settlement"
	statutoryService "github.com/cmlabs-hris/hris-payroll/internal/service/statutory"
	"github.com/go-chi/httplog/v3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, schema.Migrations, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Repositories
	transactor := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	salaryRepo := postgresql.NewSalaryRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	loanRepo := postgresql.NewLoanRepository(db)
	rateRepo := postgresql.NewRateTableRepository(db)
	declarationRepo := postgresql.NewDeclarationRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	settlementRepo := postgresql.NewSettlementRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	// Services
	rates := statutoryService.NewRateBookProvider(rateRepo)
	if err := rates.SeedDefaults(ctx); err != nil {
		return err
	}

	var decryptor reportService.Decryptor
	if cfg.Crypto.DataEncryptionKey != "" {
		key, err := crypto.ParseKey(cfg.Crypto.DataEncryptionKey)
		if err != nil {
			return fmt.Errorf("data encryption key: %w", err)
		}
		cipher, err := crypto.NewCipher(key)
		if err != nil {
			return fmt.Errorf("data encryption key: %w", err)
		}
		decryptor = cipher
	} else {
		slog.Warn("DATA_ENCRYPTION_KEY not set, bank transfer report disabled")
	}

	defaults := payroll.Settings{
		DefaultRegime:     statutory.Regime(cfg.Payroll.DefaultRegime),
		PayNonWorkingDays: cfg.Payroll.PayNonWorkingDays,
	}
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo)
	payrollSvc := payrollService.NewPayrollService(
		transactor,
		payrollRepo,
		employeeRepo,
		salaryRepo,
		attendanceSvc,
		loanRepo,
		leaveRepo,
		declarationRepo,
		rates,
		defaults,
	)
	settlementSvc := settlementService.NewSettlementService(
		transactor,
		settlementRepo,
		employeeRepo,
		salaryRepo,
		payrollRepo,
		loanRepo,
		leaveRepo,
	)
	reportSvc := reportService.NewReportService(payrollRepo, reportRepo, decryptor)

	// Background jobs
	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(payrollSvc, rates, cron.PayrollJobConfig{
		ResumeInterval:      cfg.Payroll.ResumeInterval,
		ResumeStaleAfter:    cfg.Payroll.ResumeStaleAfter,
		RateRefreshInterval: cfg.Payroll.RateRefreshInterval,
	}).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// HTTP
	verifier := jwt.NewVerifier(cfg.JWT.Secret, cfg.JWT.Skew)
	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{Logger: logger, LogLevel: cfg.SlogLevel(), AllowedOrigins: cfg.App.CORSOrigins},
		verifier,
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewSettlementHandler(settlementSvc),
		appHTTP.NewReportHandler(reportSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
