package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gymtrack/gymtrack-api/internal/httputil"
	"github.com/gymtrack/gymtrack-api/internal/logging"
	"github.com/gymtrack/gymtrack-api/internal/user"
)

// RateLimiter throttles authentication attempts per client IP and purpose.
type RateLimiter interface {
	Check(ctx context.Context, ip, purpose string) (exceeded bool, err error)
	Record(ctx context.Context, ip, purpose string) error
}

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service     *Service
	rateLimiter RateLimiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter RateLimiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
	AdminCode string `json:"admin_code,omitempty"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is the public view of a principal. The credential digest is
// never part of any response.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Phone *string   `json:"phone,omitempty"`
	Role  user.Role `json:"role"`
}

// LoginResponse is the data payload of a successful login
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	User         UserResponse `json:"user"`
	Profile      any          `json:"profile"`
}

func publicUser(u *user.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Phone: u.Phone,
		Role:  u.Role,
	}
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new account with a role. ADMIN registration requires the admin code.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration fields"
// @Success      201 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Missing fields or short password"
// @Failure      403 {object} httputil.Envelope "Invalid admin code"
// @Failure      409 {object} httputil.Envelope "Email already exists"
// @Failure      500 {object} httputil.Envelope
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	if exceeded := h.checkRateLimit(r.Context(), logger, ip, "register"); exceeded {
		httputil.RespondError(w, "Too many requests, please try again later", http.StatusTooManyRequests)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	newUser, err := h.service.Register(r.Context(), RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Phone:     req.Phone,
		Role:      req.Role,
		AdminCode: req.AdminCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("registration failed: email already exists")
			httputil.RespondError(w, "Email already exists", http.StatusConflict)
		case errors.Is(err, ErrInvalidAdminCode):
			logger.Warn("registration failed: invalid admin code")
			httputil.RespondError(w, "Invalid admin code", http.StatusForbidden)
		case errors.Is(err, ErrEmailRequired),
			errors.Is(err, ErrPasswordRequired),
			errors.Is(err, ErrNameRequired),
			errors.Is(err, ErrPasswordTooShort),
			errors.Is(err, ErrInvalidEmailFormat),
			errors.Is(err, ErrInvalidRole):
			logger.Warn("registration failed: validation error", "error", err.Error())
			httputil.RespondError(w, capitalize(err.Error()), http.StatusBadRequest)
		default:
			logger.Error("registration failed: internal error", "error", err.Error())
			httputil.RespondError(w, "Failed to register user", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID, "role", newUser.Role)

	httputil.RespondSuccess(w, "User registered successfully", publicUser(newUser), http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate and receive an access/refresh token pair with the role profile attached
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Invalid request body"
// @Failure      401 {object} httputil.Envelope "Invalid credentials"
// @Failure      403 {object} httputil.Envelope "Account disabled"
// @Failure      500 {object} httputil.Envelope
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	if exceeded := h.checkRateLimit(r.Context(), logger, ip, "login"); exceeded {
		httputil.RespondError(w, "Too many requests, please try again later", http.StatusTooManyRequests)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.RespondError(w, "Missing email or password", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			logger.Warn("login failed: invalid credentials")
			httputil.RespondError(w, "Invalid credentials", http.StatusUnauthorized)
		case errors.Is(err, ErrAccountDisabled):
			logger.Warn("login failed: account disabled")
			httputil.RespondError(w, "Account disabled", http.StatusForbidden)
		default:
			logger.Error("login failed: internal error", "error", err.Error())
			httputil.RespondError(w, "Failed to login", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user logged in successfully", "user_id", result.User.ID)

	httputil.RespondSuccess(w, "Login successful", LoginResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		TokenType:    result.Tokens.TokenType,
		ExpiresIn:    result.Tokens.ExpiresIn,
		User:         publicUser(result.User),
		Profile:      result.Profile,
	}, http.StatusOK)
}

// Refresh handles access token refresh
// @Summary      Refresh access token
// @Description  Exchange a refresh token for a new token pair. The old refresh token is revoked.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "Refresh token"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope
// @Failure      401 {object} httputil.Envelope "Invalid or expired refresh token"
// @Failure      500 {object} httputil.Envelope
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	refreshToken := strings.TrimSpace(req.RefreshToken)
	if refreshToken == "" {
		httputil.RespondError(w, "Refresh token required", http.StatusBadRequest)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrRefreshTokenNotFound),
			errors.Is(err, ErrRefreshTokenRevoked),
			errors.Is(err, ErrRefreshTokenExpired):
			logger.Warn("token refresh failed: invalid or expired token", "error", err.Error())
			httputil.RespondError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		case errors.Is(err, ErrAccountDisabled):
			logger.Warn("token refresh failed: account disabled")
			httputil.RespondError(w, "Account disabled", http.StatusForbidden)
		default:
			logger.Error("token refresh failed: internal error", "error", err.Error())
			httputil.RespondError(w, "Failed to refresh token", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("access token refreshed successfully")

	httputil.RespondSuccess(w, "Token refreshed successfully", tokens, http.StatusOK)
}

// Logout handles user logout
// @Summary      User logout
// @Description  Revoke the presented refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest false "Refresh token"
// @Success      200 {object} httputil.Envelope
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RefreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.RefreshToken != "" {
		if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
			logger.Warn("failed to revoke refresh token", "error", err.Error())
		}
	}

	logger.Info("user logged out")

	httputil.RespondSuccess(w, "Logged out", nil, http.StatusOK)
}

// checkRateLimit reports whether the request should be rejected. Limiter
// failures are logged and fail open; a Redis outage must not lock out logins.
func (h *Handler) checkRateLimit(ctx context.Context, logger *logging.Logger, ip, purpose string) bool {
	if h.rateLimiter == nil {
		return false
	}

	exceeded, err := h.rateLimiter.Check(ctx, ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		return false
	}
	if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		return true
	}

	if err := h.rateLimiter.Record(ctx, ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return false
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr format is "IP:port", extract just the IP
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
