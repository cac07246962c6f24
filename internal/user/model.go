package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role classifies a principal. Set at creation and never changed by any flow.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTrainer Role = "TRAINER"
	RoleTrainee Role = "TRAINEE"
)

// ParseRole normalizes and validates a role string. An empty input defaults
// to TRAINEE, matching the registration form behavior.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleTrainee, nil
	}
	switch r := Role(strings.ToUpper(s)); r {
	case RoleAdmin, RoleTrainer, RoleTrainee:
		return r, nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	Name         string    `json:"name"`
	Phone        *string   `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
