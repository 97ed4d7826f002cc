// internal/domain/transaction.go
package domain

import "time"

// TransactionType defines the kind of a balance-affecting event.
type TransactionType string

const (
	TransactionTypeInitial      TransactionType = "initial"       // balance at card creation
	TransactionTypeAddBalance   TransactionType = "add_balance"   // quick top-up
	TransactionTypeManualUpdate TransactionType = "manual_update" // explicit balance overwrite
	TransactionTypeUse          TransactionType = "use"           // single-credit consumption
)

// Transaction represents one immutable ledger entry. Entries are only ever
// appended; they are never mutated or deleted outside a card deletion.
type Transaction struct {
	ID        int64           `db:"id" json:"id"`                             // Primary key, BIGSERIAL in DB
	CardID    int64           `db:"card_id" json:"card_id"`                   // Owning card
	Amount    int64           `db:"amount" json:"amount"`                     // Signed credit delta
	Type      TransactionType `db:"transaction_type" json:"transaction_type"` // Event kind
	Timestamp time.Time       `db:"timestamp" json:"timestamp"`               // Set at append time
}

// NewTransaction creates a new Transaction instance.
func NewTransaction(cardID, amount int64, txType TransactionType) *Transaction {
	return &Transaction{
		CardID:    cardID,
		Amount:    amount,
		Type:      txType,
		Timestamp: time.Now().UTC(),
	}
}
