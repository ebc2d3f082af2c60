package domain

import "strings"

// ProcessingClass decides how long a bill payment stays pending.
type ProcessingClass string

const (
	ProcessingInstant ProcessingClass = "instant"
	ProcessingDelayed ProcessingClass = "delayed"

	// ProcessingTimeInstant is the provider label for instant settlement.
	ProcessingTimeInstant = "Instant"
)

// Operator is a mobile network operator eligible for recharge.
type Operator struct {
	Key        string  `mapstructure:"key" json:"-"`
	Name       string  `mapstructure:"name" json:"name"`
	Code       string  `mapstructure:"code" json:"code"`
	Commission float64 `mapstructure:"commission" json:"commission"`
}

// BillProvider is a utility biller accepting bill payments.
type BillProvider struct {
	ID             int     `mapstructure:"id" json:"id"`
	Code           string  `mapstructure:"code" json:"code"`
	Name           string  `mapstructure:"name" json:"name"`
	Category       string  `mapstructure:"category" json:"category"`
	MinAmount      float64 `mapstructure:"min_amount" json:"min_amount"`
	MaxAmount      float64 `mapstructure:"max_amount" json:"max_amount"`
	FeePercentage  float64 `mapstructure:"fee_percentage" json:"fee_percentage"`
	ProcessingTime string  `mapstructure:"processing_time" json:"processing_time"`
}

// Class reports Instant only for the exact "Instant" label.
func (p BillProvider) Class() ProcessingClass {
	if strings.TrimSpace(p.ProcessingTime) == ProcessingTimeInstant {
		return ProcessingInstant
	}
	return ProcessingDelayed
}

// InRange reports whether amount is within the provider's inclusive bounds.
func (p BillProvider) InRange(amount float64) bool {
	return amount >= p.MinAmount && amount <= p.MaxAmount
}

// Catalog is the immutable set of operators and providers.
type Catalog struct {
	Operators []Operator     `mapstructure:"operators"`
	Providers []BillProvider `mapstructure:"providers"`
}
