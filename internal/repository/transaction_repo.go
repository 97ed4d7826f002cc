// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"svpay-balance/internal/domain"
)

// TransactionRepository defines the interface for ledger operations.
type TransactionRepository interface {
	// CreateTransaction appends a new ledger entry and fills in its id.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByCardID retrieves up to limit entries for a card,
	// newest first.
	GetTransactionsByCardID(ctx context.Context, q DBExecutor, cardID int64, limit int) ([]domain.Transaction, error)
	// DeleteTransactionsByCardID removes all entries for a card. Only used
	// when the card itself is deleted.
	DeleteTransactionsByCardID(ctx context.Context, q DBExecutor, cardID int64) error
}
