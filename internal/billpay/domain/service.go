package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/rechargemock/internal/validation"
)

type Service interface {
	Submit(context.Context, validation.BillPaymentInput) (Transaction, error)
	GetByID(ctx context.Context, id string) (Transaction, error)
	Verify(context.Context, VerifyRequest) (Verification, error)
	Stats(context.Context) Stats
}

var (
	ErrNotFound        = errors.New("transaction_not_found")
	ErrDuplicateID     = errors.New("duplicate_transaction_id")
	ErrAlreadyResolved = errors.New("transaction_already_resolved")
)
