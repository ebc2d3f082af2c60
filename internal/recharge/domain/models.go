package domain

import "time"

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Transaction is a recharge that completed. Failed recharges are never stored.
type Transaction struct {
	TransactionID         string    `json:"transaction_id"`
	ExternalTransactionID string    `json:"external_transaction_id"`
	PhoneNumber           string    `json:"phone_number"`
	Amount                float64   `json:"amount"`
	Operator              string    `json:"operator"`
	OperatorCode          string    `json:"operator_code"`
	PackageID             *string   `json:"package_id"`
	Status                Status    `json:"status"`
	Commission            float64   `json:"commission"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
	// ProcessingTime is the simulated processing delay in milliseconds.
	ProcessingTime int64 `json:"processing_time"`
}

type HistoryRequest struct {
	Limit  int
	Offset int
}

type HistoryPage struct {
	Transactions []Transaction
	Total        int
	Limit        int
	Offset       int
}

type BalanceRequest struct {
	PhoneNumber string
	Operator    string
}

type Balance struct {
	PhoneNumber string    `json:"phone_number"`
	Operator    string    `json:"operator"`
	Balance     int       `json:"balance"`
	Currency    string    `json:"currency"`
	LastUpdated time.Time `json:"last_updated"`
}

// Stats summarises the store for the aggregate status endpoint.
type Stats struct {
	Total     int
	Completed int
}
