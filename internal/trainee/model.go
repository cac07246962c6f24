package trainee

import (
	"time"

	"github.com/google/uuid"
)

// Trainee is the role-scoped profile owned by a TRAINEE principal.
type Trainee struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	TrainerID        *uuid.UUID `json:"trainer_id,omitempty"`
	Age              *int       `json:"age,omitempty"`
	Gender           *string    `json:"gender,omitempty"`
	FitnessLevel     string     `json:"fitness_level"`
	Height           *float64   `json:"height,omitempty"`
	Weight           *float64   `json:"weight,omitempty"`
	Goals            *string    `json:"goals,omitempty"`
	MembershipStatus string     `json:"membership_status"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Age          *int     `json:"age"`
	Gender       *string  `json:"gender"`
	FitnessLevel *string  `json:"fitness_level"`
	Height       *float64 `json:"height"`
	Weight       *float64 `json:"weight"`
	Goals        *string  `json:"goals"`
}
