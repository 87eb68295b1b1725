package domain

import "time"

// Event types
const (
	EventTypeTransactionCompleted = "transaction.completed"
	EventTypeTransactionFailed    = "transaction.failed"
	EventTypeTransactionReversed  = "transaction.reversed"
	EventTypeAccountCreated       = "account.created"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
	AggregateTypeAccount     = "account"
)

// OutboxEvent represents an event to be published. Events produced by the
// ledger engine are written in the same database transaction as the state
// change they describe. Payload holds a TransactionEvent or an
// AccountCreatedEvent when the event is being written; events read back from
// storage carry the decoded JSON instead.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionEvent payload for completed/failed/reversed transactions.
type TransactionEvent struct {
	TransactionID string `json:"transaction_id"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	StatusMotive  string `json:"status_motive,omitempty"`
	PayerID       string `json:"payer_id"`
	PayeeID       string `json:"payee_id,omitempty"`
	Amount        string `json:"amount"`
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	UserID    string `json:"user_id"`
}
