package models

import (
	"time"
)

// TransactionStatus is the lifecycle state of an investment payment attempt.
// Statuses only ever advance; see Rank.
type TransactionStatus string

const (
	TransactionPending    TransactionStatus = "pending"
	TransactionProcessing TransactionStatus = "processing"
	TransactionCompleted  TransactionStatus = "completed"
	TransactionFailed     TransactionStatus = "failed"
)

var transactionStatusRank = map[TransactionStatus]int{
	TransactionPending:    0,
	TransactionProcessing: 1,
	TransactionCompleted:  2,
	TransactionFailed:     2,
}

// Rank orders statuses for the monotonic-advance guarantee. Completed and
// failed are both terminal.
func (s TransactionStatus) Rank() int {
	return transactionStatusRank[s]
}

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	_, ok := transactionStatusRank[s]
	return ok
}

// Transaction records an investment payment attempt against a property.
// Transactions are never deleted.
type Transaction struct {
	ID                string            `json:"id" db:"id"`
	PropertyID        string            `json:"property_id" db:"property_id"`
	PropertyName      string            `json:"property_name" db:"property_name"`
	Amount            float64           `json:"amount" db:"amount"`
	Status            TransactionStatus `json:"status" db:"status"`
	PaymentMethodID   string            `json:"payment_method_id" db:"payment_method_id"`
	PaymentMethodType PaymentMethodType `json:"payment_method_type" db:"payment_method_type"`
	ExpectedROI       float64           `json:"expected_roi" db:"expected_roi"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}
