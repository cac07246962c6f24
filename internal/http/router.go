package http

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/gymtrack/gymtrack-api/internal/auth"
	"github.com/gymtrack/gymtrack-api/internal/config"
	"github.com/gymtrack/gymtrack-api/internal/httputil"
	"github.com/gymtrack/gymtrack-api/internal/logging"
	"github.com/gymtrack/gymtrack-api/internal/trainee"
	"github.com/gymtrack/gymtrack-api/internal/trainer"
	"github.com/gymtrack/gymtrack-api/internal/user"
)

// UserLister is the admin-surface slice of the user repository.
type UserLister interface {
	List(ctx context.Context) ([]*user.User, error)
}

// NewRouter creates and configures the HTTP router. Role requirements are
// declared here, per route group, not inside the guard.
func NewRouter(
	cfg *config.Config,
	authHandler *auth.Handler,
	authMiddleware *auth.Middleware,
	traineeHandler *trainee.Handler,
	trainerHandler *trainer.Handler,
	users UserLister,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
	})

	// Trainee surface
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Use(authMiddleware.RequireRole(user.RoleTrainee))
		r.Get("/trainee/profile", traineeHandler.GetProfile)
		r.Put("/trainee/profile", traineeHandler.UpdateProfile)
	})

	// Trainer surface
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Use(authMiddleware.RequireRole(user.RoleTrainer))
		r.Get("/trainer/profile", trainerHandler.GetProfile)
		r.Put("/trainer/profile", trainerHandler.UpdateProfile)
		r.Get("/trainer/trainees", trainerHandler.ListTrainees)
	})

	// Admin surface
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Use(authMiddleware.RequireRole(user.RoleAdmin))
		r.Get("/admin/users", handleListUsers(users))
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200 {object} httputil.Envelope
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondSuccess(w, "API is running", nil, http.StatusOK)
}

// handleListUsers returns every principal's public fields
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      401 {object} httputil.Envelope
// @Failure      403 {object} httputil.Envelope
// @Router       /admin/users [get]
func handleListUsers(users UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		list, err := users.List(r.Context())
		if err != nil {
			logger.Error("failed to list users", "error", err.Error())
			httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		httputil.RespondSuccess(w, "OK", list, http.StatusOK)
	}
}
