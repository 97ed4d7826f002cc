// internal/repository/postgres/card_pg_test.go
package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svpay-balance/internal/domain"
	"svpay-balance/internal/util"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func cardRows(cards ...domain.Card) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "rfid_uid", "name", "balance", "created_at", "updated_at"})
	for _, c := range cards {
		rows.AddRow(c.ID, c.RFIDUID, c.Name, c.Balance, c.CreatedAt, c.UpdatedAt)
	}
	return rows
}

func TestCardRepository_GetCardByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCardRepository(db)
	now := time.Now().UTC()

	t.Run("Found", func(t *testing.T) {
		expected := domain.Card{ID: 1, RFIDUID: "04A1B2C3", Name: "Alice", Balance: 5, CreatedAt: now, UpdatedAt: now}
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, rfid_uid, name, balance, created_at, updated_at FROM cards WHERE id = $1`)).
			WithArgs(int64(1)).
			WillReturnRows(cardRows(expected))

		card, err := repo.GetCardByID(context.Background(), db, 1)

		require.NoError(t, err)
		assert.Equal(t, expected, *card)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, rfid_uid, name, balance, created_at, updated_at FROM cards WHERE id = $1`)).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		card, err := repo.GetCardByID(context.Background(), db, 99)

		assert.ErrorIs(t, err, util.ErrCardNotFound)
		assert.Nil(t, card)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCardRepository_GetCardByTag(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCardRepository(db)
	now := time.Now().UTC()

	t.Run("Found", func(t *testing.T) {
		expected := domain.Card{ID: 1, RFIDUID: "04A1B2C3", Name: "Alice", Balance: 5, CreatedAt: now, UpdatedAt: now}
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, rfid_uid, name, balance, created_at, updated_at FROM cards WHERE rfid_uid = $1`)).
			WithArgs("04A1B2C3").
			WillReturnRows(cardRows(expected))

		card, err := repo.GetCardByTag(context.Background(), db, "04A1B2C3")

		require.NoError(t, err)
		assert.Equal(t, "04A1B2C3", card.RFIDUID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, rfid_uid, name, balance, created_at, updated_at FROM cards WHERE rfid_uid = $1`)).
			WithArgs("DEADBEEF").
			WillReturnError(sql.ErrNoRows)

		card, err := repo.GetCardByTag(context.Background(), db, "DEADBEEF")

		assert.ErrorIs(t, err, util.ErrCardNotFound)
		assert.Nil(t, card)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCardRepository_GetCardByTagForUpdate_TakesRowLock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCardRepository(db)
	now := time.Now().UTC()

	expected := domain.Card{ID: 1, RFIDUID: "04A1B2C3", Name: "Alice", Balance: 1, CreatedAt: now, UpdatedAt: now}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, rfid_uid, name, balance, created_at, updated_at FROM cards WHERE rfid_uid = $1 FOR UPDATE`)).
		WithArgs("04A1B2C3").
		WillReturnRows(cardRows(expected))

	card, err := repo.GetCardByTagForUpdate(context.Background(), db, "04A1B2C3")

	require.NoError(t, err)
	assert.Equal(t, int64(1), card.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepository_ListCards(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCardRepository(db)
	now := time.Now().UTC()

	t.Run("AllOrderedByID", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, rfid_uid, name, balance, created_at, updated_at FROM cards ORDER BY id`)).
			WillReturnRows(cardRows(
				domain.Card{ID: 1, RFIDUID: "04A1B2C3", Name: "Alice", Balance: 5, CreatedAt: now, UpdatedAt: now},
				domain.Card{ID: 2, RFIDUID: "04FFEE00", Name: "Bob", Balance: 0, CreatedAt: now, UpdatedAt: now},
			))

		cards, err := repo.ListCards(context.Background(), db, "")

		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, int64(1), cards[0].ID)
		assert.Equal(t, int64(2), cards[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SearchUsesSubstringPattern", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, rfid_uid, name, balance, created_at, updated_at FROM cards WHERE name ILIKE $1 OR rfid_uid ILIKE $1 ORDER BY id`)).
			WithArgs("%ali%").
			WillReturnRows(cardRows(
				domain.Card{ID: 1, RFIDUID: "04A1B2C3", Name: "Alice", Balance: 5, CreatedAt: now, UpdatedAt: now},
			))

		cards, err := repo.ListCards(context.Background(), db, "ali")

		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "Alice", cards[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoMatchesReturnsEmptySlice", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, rfid_uid, name, balance, created_at, updated_at FROM cards WHERE name ILIKE $1 OR rfid_uid ILIKE $1 ORDER BY id`)).
			WithArgs("%zzz%").
			WillReturnRows(cardRows())

		cards, err := repo.ListCards(context.Background(), db, "zzz")

		require.NoError(t, err)
		assert.NotNil(t, cards)
		assert.Empty(t, cards)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCardRepository_CreateCard(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCardRepository(db)

	t.Run("AssignsID", func(t *testing.T) {
		card := domain.NewCard("04A1B2C3", "Alice", 10)
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO cards (rfid_uid, name, balance, created_at, updated_at)`)).
			WithArgs(card.RFIDUID, card.Name, card.Balance, card.CreatedAt, card.UpdatedAt).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

		err := repo.CreateCard(context.Background(), db, card)

		require.NoError(t, err)
		assert.Equal(t, int64(7), card.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateTagMapsToConflict", func(t *testing.T) {
		card := domain.NewCard("04A1B2C3", "Mallory", 0)
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO cards (rfid_uid, name, balance, created_at, updated_at)`)).
			WithArgs(card.RFIDUID, card.Name, card.Balance, card.CreatedAt, card.UpdatedAt).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.CreateCard(context.Background(), db, card)

		assert.ErrorIs(t, err, util.ErrDuplicateTag)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCardRepository_UpdateCard(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCardRepository(db)

	t.Run("Updated", func(t *testing.T) {
		card := &domain.Card{ID: 1, Name: "Alice", Balance: 15, UpdatedAt: time.Now().UTC()}
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE cards SET name = $1, balance = $2, updated_at = $3 WHERE id = $4`)).
			WithArgs(card.Name, card.Balance, card.UpdatedAt, card.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateCard(context.Background(), db, card)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingRowMapsToNotFound", func(t *testing.T) {
		card := &domain.Card{ID: 99, Name: "Ghost", Balance: 0, UpdatedAt: time.Now().UTC()}
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE cards SET name = $1, balance = $2, updated_at = $3 WHERE id = $4`)).
			WithArgs(card.Name, card.Balance, card.UpdatedAt, card.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateCard(context.Background(), db, card)

		assert.ErrorIs(t, err, util.ErrCardNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCardRepository_DeleteCard(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCardRepository(db)

	t.Run("Deleted", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cards WHERE id = $1`)).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteCard(context.Background(), db, 1)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingRowMapsToNotFound", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cards WHERE id = $1`)).
			WithArgs(int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteCard(context.Background(), db, 99)

		assert.ErrorIs(t, err, util.ErrCardNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
