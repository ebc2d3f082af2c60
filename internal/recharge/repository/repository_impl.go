package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/smallbiznis/rechargemock/internal/recharge/domain"
)

type repo struct {
	mu    sync.RWMutex
	byID  map[string]int
	items []domain.Transaction
}

func Provide() domain.Repository {
	return &repo{byID: make(map[string]int)}
}

func (r *repo) Insert(ctx context.Context, tx domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[tx.TransactionID]; exists {
		return fmt.Errorf("insert %s: %w", tx.TransactionID, domain.ErrDuplicateID)
	}
	r.byID[tx.TransactionID] = len(r.items)
	r.items = append(r.items, clone(tx))
	return nil
}

func (r *repo) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	tx := clone(r.items[idx])
	return &tx, nil
}

func (r *repo) Recent(ctx context.Context, offset, limit int) ([]domain.Transaction, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := len(r.items)
	to := max(0, min(total-offset, total))
	from := max(0, min(to-limit, to))

	out := make([]domain.Transaction, 0, to-from)
	for i := to - 1; i >= from; i-- {
		out = append(out, clone(r.items[i]))
	}
	return out, total, nil
}

func (r *repo) Stats(ctx context.Context) (domain.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := domain.Stats{Total: len(r.items)}
	for _, tx := range r.items {
		if tx.Status == domain.StatusCompleted {
			stats.Completed++
		}
	}
	return stats, nil
}

func clone(tx domain.Transaction) domain.Transaction {
	if tx.PackageID != nil {
		id := *tx.PackageID
		tx.PackageID = &id
	}
	return tx
}
