package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger row for an issued refresh token
// The signed token carries its own expiry too, but this row is the
// authority: no row means the token is revoked
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by AuthService on login
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
