package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/gymtrack/gymtrack-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and, for TRAINER/TRAINEE roles, the matching
// role profile in the same transaction. Either both rows land or neither
// does; no orphan principals on a failed profile insert.
func (r *Repository) Create(ctx context.Context, email, passwordHash, name string, role Role, phone *string) (*User, error) {
	dbUser := &database.User{
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Name:         name,
		Phone:        phone,
		Role:         string(role),
		IsActive:     true,
		IsVerified:   false,
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(dbUser).
			Returning("*").
			Exec(ctx); err != nil {
			return err
		}

		switch role {
		case RoleTrainer:
			profile := &database.Trainer{UserID: dbUser.ID}
			if _, err := tx.NewInsert().Model(profile).Exec(ctx); err != nil {
				return err
			}
		case RoleTrainee:
			profile := &database.Trainee{UserID: dbUser.ID}
			if _, err := tx.NewInsert().Model(profile).Exec(ctx); err != nil {
				return err
			}
		}
		// ADMIN has no role profile

		return nil
	})

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email. The lookup is case-insensitive
// because emails are stored lower-cased.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", strings.ToLower(email)).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// List returns all users, newest first. Admin-only surface.
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	var dbUsers []*database.User
	err := r.db.NewSelect().
		Model(&dbUsers).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, 0, len(dbUsers))
	for _, dbu := range dbUsers {
		users = append(users, mapDBUserToModel(dbu))
	}
	return users, nil
}

// SetActive toggles the is_active gate on a principal.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user active flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		Name:         dbu.Name,
		Phone:        dbu.Phone,
		Role:         Role(dbu.Role),
		IsActive:     dbu.IsActive,
		IsVerified:   dbu.IsVerified,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
