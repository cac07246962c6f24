package trainee

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gymtrack/gymtrack-api/internal/auth"
	"github.com/gymtrack/gymtrack-api/internal/httputil"
	"github.com/gymtrack/gymtrack-api/internal/logging"
)

// Handler serves the trainee profile endpoints. All routes are gated to the
// TRAINEE role by the router.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// GetProfile returns the authenticated trainee's own profile
// @Summary      Get trainee profile
// @Tags         trainee
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      401 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope
// @Router       /trainee/profile [get]
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
			httputil.RespondError(w, "Trainee profile not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get trainee profile", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, "OK", profile, http.StatusOK)
}

// UpdateProfile updates the authenticated trainee's own profile
// @Summary      Update trainee profile
// @Tags         trainee
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ProfileUpdate true "Fields to update"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope
// @Failure      401 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope
// @Router       /trainee/profile [put]
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
			httputil.RespondError(w, "Trainee profile not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to update trainee profile", "error", err.Error())
		httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, "Profile updated successfully", profile, http.StatusOK)
}
