package trainer

import (
	"time"

	"github.com/google/uuid"
)

// Trainer is the role-scoped profile owned by a TRAINER principal.
type Trainer struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Specialization  *string   `json:"specialization,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	ExperienceYears int       `json:"experience_years"`
	Certifications  *string   `json:"certifications,omitempty"`
	HourlyRate      float64   `json:"hourly_rate"`
	Rating          float64   `json:"rating"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Specialization  *string  `json:"specialization"`
	Bio             *string  `json:"bio"`
	ExperienceYears *int     `json:"experience_years"`
	Certifications  *string  `json:"certifications"`
	HourlyRate      *float64 `json:"hourly_rate"`
}
