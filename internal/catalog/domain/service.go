package domain

import "errors"

type Service interface {
	// Operators returns operators keyed by their lowercase key.
	Operators() map[string]Operator
	// OperatorKeys returns operator keys in catalog order.
	OperatorKeys() []string
	// LookupOperator matches key case-insensitively.
	LookupOperator(key string) (Operator, bool)
	// Providers returns bill providers in catalog order.
	Providers() []BillProvider
	ProviderCodes() []string
	// ProviderByCode matches code exactly.
	ProviderByCode(code string) (BillProvider, bool)
}

var (
	ErrEmptyOperators     = errors.New("catalog_operators_empty")
	ErrEmptyProviders     = errors.New("catalog_providers_empty")
	ErrDuplicateOperator  = errors.New("catalog_duplicate_operator")
	ErrDuplicateProvider  = errors.New("catalog_duplicate_provider")
	ErrInvalidOperator    = errors.New("catalog_invalid_operator")
	ErrInvalidProvider    = errors.New("catalog_invalid_provider")
	ErrInvalidAmountRange = errors.New("catalog_invalid_amount_range")
)
