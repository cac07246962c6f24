package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database row backing a principal. Email is stored lower-cased
// and guarded by a unique index; duplicate registrations fail at insert time
// instead of relying on a prior existence read.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Name         string    `bun:"name,notnull"`
	Phone        *string   `bun:"phone"`
	Role         string    `bun:"role,notnull"`
	IsActive     bool      `bun:"is_active,notnull,default:true"`
	IsVerified   bool      `bun:"is_verified,notnull,default:false"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Trainer extends a TRAINER principal with coaching attributes.
// UserID is a lookup back-reference, not an ownership pointer.
type Trainer struct {
	bun.BaseModel `bun:"table:trainers"`

	ID              uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID          uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Specialization  *string   `bun:"specialization"`
	Bio             *string   `bun:"bio"`
	ExperienceYears int       `bun:"experience_years,notnull,default:0"`
	Certifications  *string   `bun:"certifications"`
	HourlyRate      float64   `bun:"hourly_rate,notnull,default:0"`
	Rating          float64   `bun:"rating,notnull,default:0"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Trainee extends a TRAINEE principal with fitness attributes.
type Trainee struct {
	bun.BaseModel `bun:"table:trainees"`

	ID               uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID           uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	TrainerID        *uuid.UUID `bun:"trainer_id,type:uuid"`
	Age              *int       `bun:"age"`
	Gender           *string    `bun:"gender"`
	FitnessLevel     string     `bun:"fitness_level,notnull,default:'BEGINNER'"`
	Height           *float64   `bun:"height"`
	Weight           *float64   `bun:"weight"`
	Goals            *string    `bun:"goals"`
	MembershipStatus string     `bun:"membership_status,notnull,default:'ACTIVE'"`
	CreatedAt        time.Time  `bun:"created_at,notnull,default:current_timestamp"`
}
