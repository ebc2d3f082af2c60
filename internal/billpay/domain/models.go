package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// FailureMessage is recorded on payments the simulator failed.
const FailureMessage = "Payment processing failed. Please try again."

type Transaction struct {
	TransactionID      string    `json:"transaction_id"`
	ProviderCode       string    `json:"provider_code"`
	ProviderName       string    `json:"provider_name"`
	AccountNumber      string    `json:"account_number"`
	CustomerName       string    `json:"customer_name"`
	Amount             float64   `json:"amount"`
	ServiceFee         float64   `json:"service_fee"`
	TotalAmount        float64   `json:"total_amount"`
	CustomerPhone      *string   `json:"customer_phone"`
	Note               *string   `json:"note"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	ConfirmationNumber string    `json:"confirmation_number,omitempty"`
	ErrorMessage       string    `json:"error_message,omitempty"`
}

type VerifyRequest struct {
	ProviderCode  string
	AccountNumber string
}

// Verification describes a biller account that can be paid.
type Verification struct {
	ProviderCode   string  `json:"provider_code"`
	ProviderName   string  `json:"provider_name"`
	Category       string  `json:"category"`
	AccountNumber  string  `json:"account_number"`
	MinAmount      float64 `json:"min_amount"`
	MaxAmount      float64 `json:"max_amount"`
	FeePercentage  float64 `json:"fee_percentage"`
	ProcessingTime string  `json:"processing_time"`
	Verified       bool    `json:"verified"`
}

type Stats struct {
	Total     int
	Pending   int
	Completed int
	Failed    int
}
