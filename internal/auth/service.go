package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gymtrack/gymtrack-api/internal/logging"
	"github.com/gymtrack/gymtrack-api/internal/provider"
	"github.com/gymtrack/gymtrack-api/internal/token"
	"github.com/gymtrack/gymtrack-api/internal/user"
)

const minPasswordLength = 6

// UserStore is the slice of the user repository the orchestrator needs.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, name string, role user.Role, phone *string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// ProfileResolver loads the role-scoped profile attached to login responses.
// It returns nil for roles without a profile (ADMIN) or when none exists yet.
type ProfileResolver func(ctx context.Context, role user.Role, userID uuid.UUID) (any, error)

// Service composes the credential provider, token service, and identity
// store into the register/login/refresh flows.
type Service struct {
	users                UserStore
	refreshTokens        RefreshTokenRepository
	credentials          provider.Provider
	tokens               token.Service
	profiles             ProfileResolver
	logger               *logging.Logger
	adminCode            string
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
}

func NewService(
	users UserStore,
	refreshTokens RefreshTokenRepository,
	credentials provider.Provider,
	tokens token.Service,
	profiles ProfileResolver,
	logger *logging.Logger,
	adminCode string,
	accessTokenDuration time.Duration,
	refreshTokenDuration time.Duration,
) *Service {
	return &Service{
		users:                users,
		refreshTokens:        refreshTokens,
		credentials:          credentials,
		tokens:               tokens,
		profiles:             profiles,
		logger:               logger,
		adminCode:            adminCode,
		accessTokenDuration:  accessTokenDuration,
		refreshTokenDuration: refreshTokenDuration,
	}
}

// RegisterInput carries the registration request fields.
type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	Phone     string
	Role      string
	AdminCode string
}

// LoginResult is what a successful login returns: the token pair, the
// principal's public fields, and the role-scoped profile when one exists.
type LoginResult struct {
	Tokens  *Tokens
	User    *user.User
	Profile any
}

// Register creates a new principal and, for TRAINER/TRAINEE, the matching
// role profile. ADMIN registrations must present the configured admin code.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	if in.Email == "" {
		return nil, ErrEmailRequired
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrNameRequired
	}

	role, err := user.ParseRole(in.Role)
	if err != nil {
		return nil, ErrInvalidRole
	}

	if role == user.RoleAdmin {
		if subtle.ConstantTimeCompare([]byte(in.AdminCode), []byte(s.adminCode)) != 1 {
			return nil, ErrInvalidAdminCode
		}
	}

	credential, err := s.credentials.Enroll(ctx, strings.ToLower(in.Email), in.Password)
	if err != nil {
		if errors.Is(err, provider.ErrEmailExists) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to enroll credential: %w", err)
	}

	var phone *string
	if in.Phone != "" {
		phone = &in.Phone
	}

	// Duplicate emails surface here as a unique-constraint violation; there
	// is deliberately no prior existence check.
	newUser, err := s.users.Create(ctx, in.Email, credential, in.Name, role, phone)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login verifies credentials and returns a token pair plus the principal.
// Unknown email and wrong password are indistinguishable to the caller;
// the inactive gate applies only after the credential verified.
func (s *Service) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	if email == "" || plaintext == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.credentials.Verify(ctx, existing.Email, plaintext, existing.PasswordHash); err != nil {
		if errors.Is(err, provider.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify credential: %w", err)
	}

	if !existing.IsActive {
		return nil, ErrAccountDisabled
	}

	tokens, err := s.generateTokens(ctx, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	var profile any
	if s.profiles != nil {
		profile, err = s.profiles(ctx, existing.Role, existing.ID)
		if err != nil {
			// A missing profile must not block login; log and continue.
			s.logger.Warn("failed to resolve role profile", "user_id", existing.ID, "error", err)
			profile = nil
		}
	}

	return &LoginResult{
		Tokens:  tokens,
		User:    existing,
		Profile: profile,
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued. Revoked, expired, and unknown tokens all fail.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	rt, err := s.refreshTokens.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) ||
			errors.Is(err, ErrRefreshTokenRevoked) ||
			errors.Is(err, ErrRefreshTokenExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if !rt.IsValid() {
		if rt.IsRevoked() {
			return nil, ErrRefreshTokenRevoked
		}
		return nil, ErrRefreshTokenExpired
	}

	// Revoke before reissuing to prevent replay of the old token.
	if err := s.refreshTokens.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old refresh token: %w", err)
	}

	// A token whose subject no longer exists must not refresh.
	existing, err := s.users.GetByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !existing.IsActive {
		return nil, ErrAccountDisabled
	}

	tokens, err := s.generateTokens(ctx, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokens, nil
}

// Logout revokes a refresh token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	err := s.refreshTokens.RevokeRefreshToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, ErrRefreshTokenNotFound) {
		return err
	}
	return nil
}

// generateTokens creates an access token and a stored refresh token.
func (s *Service) generateTokens(ctx context.Context, userID uuid.UUID) (*Tokens, error) {
	accessToken, err := s.tokens.Issue(userID, s.accessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := generateRandomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	expiresAt := time.Now().Add(s.refreshTokenDuration)
	if err := s.refreshTokens.StoreRefreshToken(ctx, userID, refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTokenDuration.Seconds()),
	}, nil
}

// generateRandomToken creates a cryptographically secure random token
func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
