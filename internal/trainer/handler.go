package trainer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/gymtrack/gymtrack-api/internal/auth"
	"github.com/gymtrack/gymtrack-api/internal/httputil"
	"github.com/gymtrack/gymtrack-api/internal/logging"
	"github.com/gymtrack/gymtrack-api/internal/trainee"
)

// TraineeLister is the slice of the trainee repository the trainer surface
// needs: listing the trainees assigned to a trainer.
type TraineeLister interface {
	ListByTrainerID(ctx context.Context, trainerID uuid.UUID) ([]*trainee.Trainee, error)
}

// Handler serves the trainer endpoints. All routes are gated to the
// TRAINER role by the router.
type Handler struct {
	repo     *Repository
	trainees TraineeLister
}

func NewHandler(repo *Repository, trainees TraineeLister) *Handler {
	return &Handler{repo: repo, trainees: trainees}
}

// GetProfile returns the authenticated trainer's own profile
// @Summary      Get trainer profile
// @Tags         trainer
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      401 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope
// @Router       /trainer/profile [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	principal, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.repo.GetByUserID(r.Context(), principal.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "Trainer profile not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get trainer profile", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, "OK", profile, http.StatusOK)
}

// UpdateProfile updates the authenticated trainer's own profile
// @Summary      Update trainer profile
// @Tags         trainer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ProfileUpdate true "Fields to update"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope
// @Failure      401 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope
// @Router       /trainer/profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	principal, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var upd ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.repo.Update(r.Context(), principal.ID, upd)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "Trainer profile not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to update trainer profile", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, "Profile updated successfully", profile, http.StatusOK)
}

// ListTrainees returns the trainees assigned to the authenticated trainer
// @Summary      List assigned trainees
// @Tags         trainer
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      401 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope
// @Router       /trainer/trainees [get]
func (h *Handler) ListTrainees(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	principal, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.repo.GetByUserID(r.Context(), principal.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "Trainer profile not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get trainer profile", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	trainees, err := h.trainees.ListByTrainerID(r.Context(), profile.ID)
	if err != nil {
		logger.Error("failed to list trainees", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, "OK", trainees, http.StatusOK)
}
