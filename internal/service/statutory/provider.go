package statutory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/statutory"
)

// RateBookProvider loads rate tables once per financial year and shares the snapshot between
// concurrent payroll runs and report builds.
type RateBookProvider struct {
	repo statutory.RateTableRepository

	mu    sync.RWMutex
	books map[int]*statutory.RateBook
}

func NewRateBookProvider(repo statutory.RateTableRepository) *RateBookProvider {
	return &RateBookProvider{
		repo:  repo,
		books: make(map[int]*statutory.RateBook),
	}
}

func (p *RateBookProvider) ForYear(ctx context.Context, fy int) (*statutory.RateBook, error) {
	p.mu.RLock()
	book, ok := p.books[fy]
	p.mu.RUnlock()
	if ok {
		return book, nil
	}

	tables, err := p.repo.LoadTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rate tables: %w", err)
	}
	book = statutory.NewRateBook(tables, fy)

	p.mu.Lock()
	defer p.mu.Unlock()
	if cached, ok := p.books[fy]; ok {
		return cached, nil
	}
	p.books[fy] = book
	return book, nil
}

// Invalidate drops every cached snapshot so the next lookup reloads the tables.
func (p *RateBookProvider) Invalidate() {
	p.mu.Lock()
	n := len(p.books)
	p.books = make(map[int]*statutory.RateBook)
	p.mu.Unlock()
	slog.Debug("rate book cache invalidated", "dropped", n)
}

// SeedDefaults inserts the built-in rate rows that are not on file yet.
func (p *RateBookProvider) SeedDefaults(ctx context.Context) error {
	if err := p.repo.SeedDefaults(ctx, statutory.DefaultTables()); err != nil {
		return fmt.Errorf("seed rate tables: %w", err)
	}
	p.Invalidate()
	return nil
}
