// internal/service/card_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"svpay-balance/internal/domain"
	"svpay-balance/internal/repository"
	"svpay-balance/internal/util"
	"svpay-balance/pkg/db"
)

// DefaultHistoryLimit caps transaction history queries when the caller does
// not supply a limit.
const DefaultHistoryLimit = 50

// CardService defines the interface for card-related business logic.
type CardService interface {
	ListCards(ctx context.Context, search string) ([]domain.Card, error)
	GetCard(ctx context.Context, id int64) (*domain.Card, error)
	GetCardByTag(ctx context.Context, rfidUID string) (*domain.Card, error)
	CreateCard(ctx context.Context, rfidUID, name string, balance int64) (*domain.Card, error)
	UpdateCard(ctx context.Context, id int64, name *string, balance *int64) (*domain.Card, error)
	AddBalance(ctx context.Context, id, amount int64) (*domain.Card, error)
	Consume(ctx context.Context, rfidUID string) (*domain.Card, error)
	DeleteCard(ctx context.Context, id int64) error
	GetTransactionHistory(ctx context.Context, cardID int64, limit int) ([]domain.Transaction, error)
}

// cardService implements the CardService interface. Every balance mutation
// and its ledger append commit in one database transaction.
type cardService struct {
	dbBeginner      db.DBTxBeginner       // For starting transactions (e.g. *sqlx.DB)
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g. *sqlx.DB)
	cardRepo        repository.CardRepository
	transactionRepo repository.TransactionRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewCardService creates a new instance of CardService.
func NewCardService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	cardRepo repository.CardRepository,
	transactionRepo repository.TransactionRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) CardService {
	return &cardService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		cardRepo:        cardRepo,
		transactionRepo: transactionRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// ListCards returns all cards, optionally filtered by search.
func (s *cardService) ListCards(ctx context.Context, search string) ([]domain.Card, error) {
	cards, err := s.cardRepo.ListCards(ctx, s.dbExecutor, search)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// GetCard returns the card with the given internal id.
func (s *cardService) GetCard(ctx context.Context, id int64) (*domain.Card, error) {
	card, err := s.cardRepo.GetCardByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("get card %d: %w", id, err)
	}
	return card, nil
}

// GetCardByTag returns the card with the given RFID UID.
func (s *cardService) GetCardByTag(ctx context.Context, rfidUID string) (*domain.Card, error) {
	card, err := s.cardRepo.GetCardByTag(ctx, s.dbExecutor, rfidUID)
	if err != nil {
		return nil, fmt.Errorf("get card by tag %q: %w", rfidUID, err)
	}
	return card, nil
}

// CreateCard inserts a new card and appends its initial ledger entry. The
// initial entry is written even for a zero balance so every card's history
// starts with one. A duplicate tag rolls back both writes.
func (s *cardService) CreateCard(ctx context.Context, rfidUID, name string, balance int64) (*domain.Card, error) {
	if rfidUID == "" || name == "" {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("create card: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("create card: transaction controller does not implement DBExecutor")
	}

	card := domain.NewCard(rfidUID, name, balance)
	if err := s.cardRepo.CreateCard(ctx, txExecutor, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	entry := domain.NewTransaction(card.ID, balance, domain.TransactionTypeInitial)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, entry); err != nil {
		return nil, fmt.Errorf("create card: failed to log initial transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create card: failed to commit transaction: %w", err)
	}

	return card, nil
}

// UpdateCard applies a partial update. Only supplied fields change; a
// supplied balance logs a manual_update entry carrying the difference to the
// previous balance. With neither field supplied the card is returned as is.
func (s *cardService) UpdateCard(ctx context.Context, id int64, name *string, balance *int64) (*domain.Card, error) {
	if name == nil && balance == nil {
		return s.GetCard(ctx, id)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("update card: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("update card: transaction controller does not implement DBExecutor")
	}

	card, err := s.cardRepo.GetCardByIDForUpdate(ctx, txExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("update card: failed to get card %d: %w", id, err)
	}

	if name != nil {
		card.Name = *name
	}

	var diff int64
	if balance != nil {
		diff = *balance - card.Balance
		card.Balance = *balance
	}
	card.UpdatedAt = time.Now().UTC()

	if err := s.cardRepo.UpdateCard(ctx, txExecutor, card); err != nil {
		return nil, fmt.Errorf("update card: failed to update card %d: %w", id, err)
	}

	if balance != nil {
		entry := domain.NewTransaction(card.ID, diff, domain.TransactionTypeManualUpdate)
		if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, entry); err != nil {
			return nil, fmt.Errorf("update card: failed to log manual update: %w", err)
		}
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("update card: failed to commit transaction: %w", err)
	}

	return card, nil
}

// AddBalance increments a card's balance by a positive amount and logs an
// add_balance entry.
func (s *cardService) AddBalance(ctx context.Context, id, amount int64) (*domain.Card, error) {
	if amount <= 0 {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("add balance: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("add balance: transaction controller does not implement DBExecutor")
	}

	card, err := s.cardRepo.GetCardByIDForUpdate(ctx, txExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("add balance: failed to get card %d: %w", id, err)
	}

	card.Balance += amount
	card.UpdatedAt = time.Now().UTC()

	if err := s.cardRepo.UpdateCard(ctx, txExecutor, card); err != nil {
		return nil, fmt.Errorf("add balance: failed to update card %d: %w", id, err)
	}

	entry := domain.NewTransaction(card.ID, amount, domain.TransactionTypeAddBalance)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, entry); err != nil {
		return nil, fmt.Errorf("add balance: failed to log transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("add balance: failed to commit transaction: %w", err)
	}

	return card, nil
}

// Consume decrements a card's balance by exactly one credit. The row lock
// taken by GetCardByTagForUpdate linearizes concurrent consumers of the same
// card: when only one credit remains, exactly one caller wins and the rest
// see ErrInsufficientBalance.
func (s *cardService) Consume(ctx context.Context, rfidUID string) (*domain.Card, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("consume: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("consume: transaction controller does not implement DBExecutor")
	}

	card, err := s.cardRepo.GetCardByTagForUpdate(ctx, txExecutor, rfidUID)
	if err != nil {
		return nil, fmt.Errorf("consume: failed to get card by tag %q: %w", rfidUID, err)
	}

	if card.Balance <= 0 {
		return nil, util.ErrInsufficientBalance
	}

	card.Balance--
	card.UpdatedAt = time.Now().UTC()

	if err := s.cardRepo.UpdateCard(ctx, txExecutor, card); err != nil {
		return nil, fmt.Errorf("consume: failed to update card %d: %w", card.ID, err)
	}

	entry := domain.NewTransaction(card.ID, -1, domain.TransactionTypeUse)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, entry); err != nil {
		return nil, fmt.Errorf("consume: failed to log transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("consume: failed to commit transaction: %w", err)
	}

	return card, nil
}

// DeleteCard removes a card and all of its ledger entries in one transaction.
func (s *cardService) DeleteCard(ctx context.Context, id int64) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("delete card: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("delete card: transaction controller does not implement DBExecutor")
	}

	if _, err := s.cardRepo.GetCardByIDForUpdate(ctx, txExecutor, id); err != nil {
		return fmt.Errorf("delete card: failed to get card %d: %w", id, err)
	}

	if err := s.transactionRepo.DeleteTransactionsByCardID(ctx, txExecutor, id); err != nil {
		return fmt.Errorf("delete card: failed to delete transactions for card %d: %w", id, err)
	}

	if err := s.cardRepo.DeleteCard(ctx, txExecutor, id); err != nil {
		return fmt.Errorf("delete card: failed to delete card %d: %w", id, err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("delete card: failed to commit transaction: %w", err)
	}

	return nil
}

// GetTransactionHistory returns up to limit entries for a card, newest first.
func (s *cardService) GetTransactionHistory(ctx context.Context, cardID int64, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	transactions, err := s.transactionRepo.GetTransactionsByCardID(ctx, s.dbExecutor, cardID, limit)
	if err != nil {
		return nil, fmt.Errorf("get transaction history for card %d: %w", cardID, err)
	}
	return transactions, nil
}
