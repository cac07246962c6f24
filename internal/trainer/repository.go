package trainer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/gymtrack/gymtrack-api/internal/database"
)

var ErrNotFound = errors.New("trainer profile not found")

// Repository handles trainer profile persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// GetByUserID retrieves the profile owned by the given principal.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Trainer, error) {
	dbTrainer := new(database.Trainer)
	err := r.db.NewSelect().
		Model(dbTrainer).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trainer by user id: %w", err)
	}

	return mapDBTrainerToModel(dbTrainer), nil
}

// Update applies the non-nil fields of upd to the profile owned by userID
// and returns the updated profile.
func (r *Repository) Update(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*Trainer, error) {
	q := r.db.NewUpdate().
		Model((*database.Trainer)(nil)).
		Where("user_id = ?", userID)

	changed := false
	if upd.Specialization != nil {
		q = q.Set("specialization = ?", *upd.Specialization)
		changed = true
	}
	if upd.Bio != nil {
		q = q.Set("bio = ?", *upd.Bio)
		changed = true
	}
	if upd.ExperienceYears != nil {
		q = q.Set("experience_years = ?", *upd.ExperienceYears)
		changed = true
	}
	if upd.Certifications != nil {
		q = q.Set("certifications = ?", *upd.Certifications)
		changed = true
	}
	if upd.HourlyRate != nil {
		q = q.Set("hourly_rate = ?", *upd.HourlyRate)
		changed = true
	}

	if changed {
		result, err := q.Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to update trainer: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	return r.GetByUserID(ctx, userID)
}

func mapDBTrainerToModel(dbt *database.Trainer) *Trainer {
	return &Trainer{
		ID:              dbt.ID,
		UserID:          dbt.UserID,
		Specialization:  dbt.Specialization,
		Bio:             dbt.Bio,
		ExperienceYears: dbt.ExperienceYears,
		Certifications:  dbt.Certifications,
		HourlyRate:      dbt.HourlyRate,
		Rating:          dbt.Rating,
		CreatedAt:       dbt.CreatedAt,
	}
}
