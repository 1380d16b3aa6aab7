package report

import "context"

// ReportService builds read-only reports over finalized payroll periods.
type ReportService interface {
	PFReport(ctx context.Context, req ReportRequest) (PFReport, error)
	ESIReport(ctx context.Context, req ReportRequest) (ESIReport, error)
	TDSReport(ctx context.Context, req ReportRequest) (TDSReport, error)
	PTReport(ctx context.Context, req ReportRequest) (PTReport, error)
	SalaryRegister(ctx context.Context, req ReportRequest) (SalaryRegister, error)
	BankTransfer(ctx context.Context, req BankTransferRequest) (BankTransferReport, error)
	// Reconciliation compares the period with the two reportable periods before it.
	Reconciliation(ctx context.Context, req ReportRequest) (ReconciliationReport, error)
}
