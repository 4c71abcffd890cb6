package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	HashedPassword string

	// Inactive users can't login or refresh tokens
	// No endpoint flips it yet, but every auth path checks it
	IsActive bool
}
