// internal/repository/card_repo.go
package repository

import (
	"context"

	"svpay-balance/internal/domain"
)

// CardRepository defines the interface for card data operations.
type CardRepository interface {
	// ListCards returns all cards ordered by id, optionally filtered by a
	// case-insensitive substring match on name or rfid_uid.
	ListCards(ctx context.Context, q DBExecutor, search string) ([]domain.Card, error)
	// GetCardByID retrieves a card by its internal id.
	GetCardByID(ctx context.Context, q DBExecutor, id int64) (*domain.Card, error)
	// GetCardByIDForUpdate retrieves a card by id with a row lock; must be
	// called on a transaction executor.
	GetCardByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Card, error)
	// GetCardByTag retrieves a card by its RFID UID.
	GetCardByTag(ctx context.Context, q DBExecutor, rfidUID string) (*domain.Card, error)
	// GetCardByTagForUpdate retrieves a card by RFID UID with a row lock;
	// must be called on a transaction executor.
	GetCardByTagForUpdate(ctx context.Context, q DBExecutor, rfidUID string) (*domain.Card, error)
	// CreateCard inserts a new card and fills in its id.
	CreateCard(ctx context.Context, q DBExecutor, card *domain.Card) error
	// UpdateCard persists the card's name, balance and updated_at.
	UpdateCard(ctx context.Context, q DBExecutor, card *domain.Card) error
	// DeleteCard removes a card by id.
	DeleteCard(ctx context.Context, q DBExecutor, id int64) error
}
