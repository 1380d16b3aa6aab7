package settlement

import "context"

type SettlementService interface {
	CalculateGratuity(ctx context.Context, req GratuityRequest) (Gratuity, error)

	CreateSettlement(ctx context.Context, req CreateSettlementRequest) (SettlementResponse, error)
	GetSettlement(ctx context.Context, id string) (SettlementResponse, error)
	ListSettlements(ctx context.Context, filter SettlementFilter) (ListSettlementResponse, error)
	UpdateSettlement(ctx context.Context, req UpdateSettlementRequest) (SettlementResponse, error)
	// RecalculateSettlement refreshes loans, reimbursements, leave and gratuity from their sources.
	RecalculateSettlement(ctx context.Context, id string) (SettlementResponse, error)

	SubmitSettlement(ctx context.Context, id string) (SettlementResponse, error)
	ApproveSettlement(ctx context.Context, id string) (SettlementResponse, error)
	MarkSettlementPaid(ctx context.Context, req MarkSettlementPaidRequest) (SettlementResponse, error)
	CancelSettlement(ctx context.Context, req CancelSettlementRequest) (SettlementResponse, error)
}
