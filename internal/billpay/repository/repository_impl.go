package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/smallbiznis/rechargemock/internal/billpay/domain"
)

type repo struct {
	mu   sync.RWMutex
	byID map[string]*domain.Transaction
}

func Provide() domain.Repository {
	return &repo{byID: make(map[string]*domain.Transaction)}
}

func (r *repo) Insert(ctx context.Context, tx domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[tx.TransactionID]; exists {
		return fmt.Errorf("insert %s: %w", tx.TransactionID, domain.ErrDuplicateID)
	}
	stored := clone(tx)
	r.byID[tx.TransactionID] = &stored
	return nil
}

func (r *repo) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	out := clone(*tx)
	return &out, nil
}

func (r *repo) Update(ctx context.Context, id string, fn func(*domain.Transaction) error) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := clone(*tx)
	if err := fn(&next); err != nil {
		return nil, err
	}
	r.byID[id] = &next
	out := clone(next)
	return &out, nil
}

func (r *repo) Stats(ctx context.Context) (domain.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := domain.Stats{Total: len(r.byID)}
	for _, tx := range r.byID {
		switch tx.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusCompleted:
			stats.Completed++
		case domain.StatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

func clone(tx domain.Transaction) domain.Transaction {
	if tx.CustomerPhone != nil {
		v := *tx.CustomerPhone
		tx.CustomerPhone = &v
	}
	if tx.Note != nil {
		v := *tx.Note
		tx.Note = &v
	}
	return tx
}
