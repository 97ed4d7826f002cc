// internal/repository/user_repo.go
package repository

import (
	"context"

	"svpay-balance/internal/domain"
)

// UserRepository defines the interface for operator account data operations.
type UserRepository interface {
	// CreateUser adds a new operator account and fills in its id.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByUsername retrieves an operator account by username.
	GetUserByUsername(ctx context.Context, q DBExecutor, username string) (*domain.User, error)
}
