package token

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is what a verified session token asserts: which principal it was
// issued for and for how long. Nothing else is trusted from the payload.
type Claims struct {
	Subject   uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service mints and verifies signed, time-limited session tokens.
// Implementations include JWTService (HS256) and PasetoService (v4.local);
// the backend is selected once at startup.
type Service interface {
	Issue(subject uuid.UUID, ttl time.Duration) (string, error)
	Verify(tokenStr string) (*Claims, error)
}
