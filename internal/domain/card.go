// internal/domain/card.go
package domain

import "time"

// Card represents an RFID-tagged balance card.
type Card struct {
	ID        int64     `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB
	RFIDUID   string    `db:"rfid_uid" json:"rfid_uid"`     // Unique tag identifier read by the scanner
	Name      string    `db:"name" json:"name"`             // Display name shown in management UIs
	Balance   int64     `db:"balance" json:"balance"`       // Remaining wash credits
	CreatedAt time.Time `db:"created_at" json:"created_at"` // Timestamp of creation
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"` // Timestamp of last mutation
}

// NewCard creates a new Card instance.
func NewCard(rfidUID, name string, balance int64) *Card {
	now := time.Now().UTC()
	return &Card{
		RFIDUID:   rfidUID,
		Name:      name,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
