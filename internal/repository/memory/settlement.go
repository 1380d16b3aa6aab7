package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/settlement"
)

type SettlementRepository struct {
	mu          sync.Mutex
	settlements map[string]settlement.Settlement
}

func NewSettlementRepository() *SettlementRepository {
	return &SettlementRepository{settlements: make(map[string]settlement.Settlement)}
}

func (r *SettlementRepository) Create(ctx context.Context, s settlement.Settlement) (settlement.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.settlements {
		if existing.CompanyID == s.CompanyID &&
			existing.EmployeeID == s.EmployeeID &&
			existing.LastWorkingDate.Equal(s.LastWorkingDate) &&
			existing.Status != settlement.StatusCancelled {
			return settlement.Settlement{}, settlement.ErrSettlementAlreadyExists
		}
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	r.settlements[s.ID] = s
	return s, nil
}

func (r *SettlementRepository) GetByID(ctx context.Context, companyID, id string) (settlement.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settlements[id]
	if !ok || s.CompanyID != companyID {
		return settlement.Settlement{}, settlement.ErrSettlementNotFound
	}
	return s, nil
}

func (r *SettlementRepository) List(ctx context.Context, companyID string, filter settlement.SettlementFilter) ([]settlement.Settlement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []settlement.Settlement
	for _, s := range r.settlements {
		if s.CompanyID != companyID {
			continue
		}
		if filter.EmployeeID != nil && s.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(s.Status) != *filter.Status {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	total := int64(len(out))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(out) {
		return []settlement.Settlement{}, total, nil
	}
	end := min(start+filter.Limit, len(out))
	return out[start:end], total, nil
}

func (r *SettlementRepository) Update(ctx context.Context, s settlement.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.settlements[s.ID]
	if !ok || stored.CompanyID != s.CompanyID {
		return settlement.ErrSettlementNotFound
	}
	s.CreatedAt = stored.CreatedAt
	s.UpdatedAt = time.Now()
	r.settlements[s.ID] = s
	return nil
}
