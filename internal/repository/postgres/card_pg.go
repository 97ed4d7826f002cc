// internal/repository/postgres/card_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"svpay-balance/internal/domain"
	"svpay-balance/internal/repository"
	"svpay-balance/internal/util"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// CardRepository implements repository.CardRepository for PostgreSQL.
type CardRepository struct {
	// Methods receive a DBExecutor directly so they run against either the
	// pool or a transaction.
}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(db *sqlx.DB) repository.CardRepository {
	return &CardRepository{}
}

const cardColumns = `id, rfid_uid, name, balance, created_at, updated_at`

// ListCards returns all cards ordered by id. A non-empty search filters by a
// case-insensitive substring match on name or rfid_uid.
func (r *CardRepository) ListCards(ctx context.Context, q repository.DBExecutor, search string) ([]domain.Card, error) {
	cards := []domain.Card{}

	if search == "" {
		query := `SELECT ` + cardColumns + ` FROM cards ORDER BY id`
		if err := q.SelectContext(ctx, &cards, query); err != nil {
			return nil, fmt.Errorf("failed to list cards: %w", err)
		}
		return cards, nil
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE name ILIKE $1 OR rfid_uid ILIKE $1 ORDER BY id`
	if err := q.SelectContext(ctx, &cards, query, "%"+search+"%"); err != nil {
		return nil, fmt.Errorf("failed to search cards for %q: %w", search, err)
	}
	return cards, nil
}

// GetCardByID retrieves a card by its internal id using the provided DBExecutor.
func (r *CardRepository) GetCardByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Card, error) {
	var card domain.Card
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	if err := q.GetContext(ctx, &card, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card by ID %d: %w", id, err)
	}
	return &card, nil
}

// GetCardByIDForUpdate retrieves a card by id and locks its row for the
// duration of the surrounding transaction.
func (r *CardRepository) GetCardByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Card, error) {
	var card domain.Card
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 FOR UPDATE`
	if err := q.GetContext(ctx, &card, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to lock card %d: %w", id, err)
	}
	return &card, nil
}

// GetCardByTag retrieves a card by its RFID UID. This is the scanner's hot
// path; the lookup is indexed by the rfid_uid unique constraint.
func (r *CardRepository) GetCardByTag(ctx context.Context, q repository.DBExecutor, rfidUID string) (*domain.Card, error) {
	var card domain.Card
	query := `SELECT ` + cardColumns + ` FROM cards WHERE rfid_uid = $1`
	if err := q.GetContext(ctx, &card, query, rfidUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card by UID %q: %w", rfidUID, err)
	}
	return &card, nil
}

// GetCardByTagForUpdate retrieves a card by RFID UID and locks its row.
// Concurrent consumers of the same card serialize on this lock.
func (r *CardRepository) GetCardByTagForUpdate(ctx context.Context, q repository.DBExecutor, rfidUID string) (*domain.Card, error) {
	var card domain.Card
	query := `SELECT ` + cardColumns + ` FROM cards WHERE rfid_uid = $1 FOR UPDATE`
	if err := q.GetContext(ctx, &card, query, rfidUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to lock card with UID %q: %w", rfidUID, err)
	}
	return &card, nil
}

// CreateCard inserts a new card using the provided DBExecutor. A duplicate
// rfid_uid maps to util.ErrDuplicateTag.
func (r *CardRepository) CreateCard(ctx context.Context, q repository.DBExecutor, card *domain.Card) error {
	query := `INSERT INTO cards (rfid_uid, name, balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query, card.RFIDUID, card.Name, card.Balance, card.CreatedAt, card.UpdatedAt).Scan(&card.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return util.ErrDuplicateTag
		}
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// UpdateCard persists the card's mutable fields using the provided DBExecutor.
func (r *CardRepository) UpdateCard(ctx context.Context, q repository.DBExecutor, card *domain.Card) error {
	query := `UPDATE cards SET name = $1, balance = $2, updated_at = $3 WHERE id = $4`
	result, err := q.ExecContext(ctx, query, card.Name, card.Balance, card.UpdatedAt, card.ID)
	if err != nil {
		return fmt.Errorf("failed to update card %d: %w", card.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating card %d: %w", card.ID, err)
	}
	if rowsAffected == 0 {
		return util.ErrCardNotFound
	}
	return nil
}

// DeleteCard removes a card by id using the provided DBExecutor.
func (r *CardRepository) DeleteCard(ctx context.Context, q repository.DBExecutor, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after deleting card %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrCardNotFound
	}
	return nil
}
