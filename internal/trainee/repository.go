package trainee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/gymtrack/gymtrack-api/internal/database"
)

var ErrNotFound = errors.New("trainee profile not found")

// Repository handles trainee profile persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// GetByUserID retrieves the profile owned by the given principal.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Trainee, error) {
	dbTrainee := new(database.Trainee)
	err := r.db.NewSelect().
		Model(dbTrainee).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trainee by user id: %w", err)
	}

	return mapDBTraineeToModel(dbTrainee), nil
}

// Update applies the non-nil fields of upd to the profile owned by userID
// and returns the updated profile.
func (r *Repository) Update(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*Trainee, error) {
	q := r.db.NewUpdate().
		Model((*database.Trainee)(nil)).
		Where("user_id = ?", userID)

	changed := false
	if upd.Age != nil {
		q = q.Set("age = ?", *upd.Age)
		changed = true
	}
	if upd.Gender != nil {
		q = q.Set("gender = ?", *upd.Gender)
		changed = true
	}
	if upd.FitnessLevel != nil {
		q = q.Set("fitness_level = ?", *upd.FitnessLevel)
		changed = true
	}
	if upd.Height != nil {
		q = q.Set("height = ?", *upd.Height)
		changed = true
	}
	if upd.Weight != nil {
		q = q.Set("weight = ?", *upd.Weight)
		changed = true
	}
	if upd.Goals != nil {
		q = q.Set("goals = ?", *upd.Goals)
		changed = true
	}

	if changed {
		result, err := q.Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to update trainee: %w", err)
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

// ListByTrainerID returns all trainees assigned to a trainer.
func (r *Repository) ListByTrainerID(ctx context.Context, trainerID uuid.UUID) ([]*Trainee, error) {
	var dbTrainees []*database.Trainee
	err := r.db.NewSelect().
		Model(&dbTrainees).
		Where("trainer_id = ?", trainerID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainees: %w", err)
	}

	trainees := make([]*Trainee, 0, len(dbTrainees))
	for _, dbt := range dbTrainees {
		trainees = append(trainees, mapDBTraineeToModel(dbt))
	}
	return trainees, nil
}

func mapDBTraineeToModel(dbt *database.Trainee) *Trainee {
	return &Trainee{
		ID:               dbt.ID,
		UserID:           dbt.UserID,
		TrainerID:        dbt.TrainerID,
		Age:              dbt.Age,
		Gender:           dbt.Gender,
		FitnessLevel:     dbt.FitnessLevel,
		Height:           dbt.Height,
		Weight:           dbt.Weight,
		Goals:            dbt.Goals,
		MembershipStatus: dbt.MembershipStatus,
		CreatedAt:        dbt.CreatedAt,
	}
}
