package domain

import "context"

type Repository interface {
	Insert(ctx context.Context, tx Transaction) error
	// FindByID returns nil when no transaction has the id.
	FindByID(ctx context.Context, id string) (*Transaction, error)
	// Update applies fn to the stored record atomically. The record is left
	// unchanged when fn returns an error.
	Update(ctx context.Context, id string, fn func(*Transaction) error) (*Transaction, error)
	Stats(ctx context.Context) (Stats, error)
}
