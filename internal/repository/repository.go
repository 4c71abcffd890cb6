package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/tokend/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email exists already has to return apperrors.ErrUserAlreadyExists
	// Uniqueness is guaranteed by the db constraint, not by a pre-check
	CreateUser(ctx context.Context, email string, hashedPassword string) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// Refresh token ledger interface
// A token is valid for refresh only while its row exists and is not expired
type RefreshTokenRepo interface {
	// Save issued token
	// Token string must be unique, the db constraint guards it
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Return the token row even if it expired
	// If no row exists must return apperrors.ErrRefreshTokenNotFound
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Delete the row matching the token string in a single statement
	// If no row matched must return apperrors.ErrRefreshTokenNotFound
	Revoke(ctx context.Context, tokenString string) error

	// Delete every row of the user, return how many were deleted
	// Zero deleted rows is not an error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Storage aggregates repositories over one db handle
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo

	// Run fn inside a db transaction
	// Commits if fn returns nil, rolls back otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
