package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/rechargemock/internal/validation"
)

const (
	DefaultHistoryLimit = 50
	Currency            = "BDT"
)

type Service interface {
	Submit(context.Context, validation.RechargeInput) (Transaction, error)
	GetByID(ctx context.Context, id string) (Transaction, error)
	History(context.Context, HistoryRequest) (HistoryPage, error)
	Balance(context.Context, BalanceRequest) (Balance, error)
	Stats(context.Context) Stats
}

var (
	ErrNotFound          = errors.New("transaction_not_found")
	ErrInvalidPagination = errors.New("invalid_pagination")
	ErrDuplicateID       = errors.New("duplicate_transaction_id")
)

// FailureError is a simulated operator-side failure. The recharge is not
// stored; Reference identifies the attempt.
type FailureError struct {
	Code      string
	Message   string
	Reference string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("recharge failed: %s: %s", e.Code, e.Message)
}

func AsFailure(err error) (*FailureError, bool) {
	var failure *FailureError
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}
