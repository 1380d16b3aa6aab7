package settlement

import "context"

type SettlementRepository interface {
	// Create returns ErrSettlementAlreadyExists when a non-cancelled settlement exists for the
	// same employee and last working date.
	Create(ctx context.Context, s Settlement) (Settlement, error)
	GetByID(ctx context.Context, companyID, id string) (Settlement, error)
	List(ctx context.Context, companyID string, filter SettlementFilter) ([]Settlement, int64, error)
	Update(ctx context.Context, s Settlement) error
}
