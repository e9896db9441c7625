package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is owned by the auth service; this backend only reads it.
type User struct {
	Id            uuid.UUID
	Email         string
	FullName      string
	EmailVerified bool
	CreatedAt     time.Time
}
