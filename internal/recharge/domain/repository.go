package domain

import "context"

type Repository interface {
	Insert(ctx context.Context, tx Transaction) error
	// FindByID returns nil when no transaction has the id.
	FindByID(ctx context.Context, id string) (*Transaction, error)
	// Recent skips the offset newest records and returns up to limit of the
	// next ones, newest first, with the store size.
	Recent(ctx context.Context, offset, limit int) ([]Transaction, int, error)
	Stats(ctx context.Context) (Stats, error)
}
