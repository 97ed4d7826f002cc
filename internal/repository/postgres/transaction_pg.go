// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"svpay-balance/internal/domain"
	"svpay-balance/internal/repository"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction appends a new ledger entry using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (card_id, amount, transaction_type, timestamp)
              VALUES ($1, $2, $3, $4) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		transaction.CardID,
		transaction.Amount,
		transaction.Type,
		transaction.Timestamp,
	).Scan(&transaction.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionsByCardID retrieves up to limit entries for a card, newest
// first. Unknown card ids yield an empty slice, not an error.
func (r *TransactionRepository) GetTransactionsByCardID(ctx context.Context, q repository.DBExecutor, cardID int64, limit int) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT id, card_id, amount, transaction_type, timestamp
		FROM transactions
		WHERE card_id = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT $2`
	if err := q.SelectContext(ctx, &transactions, query, cardID, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for card %d: %w", cardID, err)
	}
	return transactions, nil
}

// DeleteTransactionsByCardID removes all ledger entries for a card.
func (r *TransactionRepository) DeleteTransactionsByCardID(ctx context.Context, q repository.DBExecutor, cardID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE card_id = $1`, cardID); err != nil {
		return fmt.Errorf("failed to delete transactions for card %d: %w", cardID, err)
	}
	return nil
}
