package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymtrack/gymtrack-api/internal/auth"
	"github.com/gymtrack/gymtrack-api/internal/config"
	"github.com/gymtrack/gymtrack-api/internal/httputil"
	"github.com/gymtrack/gymtrack-api/internal/logging"
	"github.com/gymtrack/gymtrack-api/internal/password"
	"github.com/gymtrack/gymtrack-api/internal/provider"
	"github.com/gymtrack/gymtrack-api/internal/token"
	"github.com/gymtrack/gymtrack-api/internal/trainee"
	"github.com/gymtrack/gymtrack-api/internal/trainer"
	"github.com/gymtrack/gymtrack-api/internal/user"
)

const routerTestAdminCode = "let-me-in"

// memoryUserStore backs the router test without Postgres.
type memoryUserStore struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{
		byID:    map[uuid.UUID]*user.User{},
		byEmail: map[string]uuid.UUID{},
	}
}

func (s *memoryUserStore) Create(ctx context.Context, email, passwordHash, name string, role user.Role, phone *string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := strings.ToLower(email)
	if _, exists := s.byEmail[normalized]; exists {
		return nil, user.ErrDuplicateEmail
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        normalized,
		PasswordHash: passwordHash,
		Name:         name,
		Phone:        phone,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.byID[u.ID] = u
	s.byEmail[normalized] = u.ID
	return u, nil
}

func (s *memoryUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	return s.byID[id], nil
}

func (s *memoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (s *memoryUserStore) List(ctx context.Context) ([]*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*user.User, 0, len(s.byID))
	for _, u := range s.byID {
		list = append(list, u)
	}
	return list, nil
}

// memoryRefreshStore keeps refresh tokens in a map.
type memoryRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]*auth.RefreshToken
}

func newMemoryRefreshStore() *memoryRefreshStore {
	return &memoryRefreshStore{tokens: map[string]*auth.RefreshToken{}}
}

func (r *memoryRefreshStore) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenStr string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[tokenStr] = &auth.RefreshToken{UserID: userID, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	return nil
}

func (r *memoryRefreshStore) GetRefreshToken(ctx context.Context, tokenStr string) (*auth.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[tokenStr]
	if !ok {
		return nil, auth.ErrRefreshTokenNotFound
	}
	if rt.IsRevoked() {
		return nil, auth.ErrRefreshTokenRevoked
	}
	return rt, nil
}

func (r *memoryRefreshStore) RevokeRefreshToken(ctx context.Context, tokenStr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[tokenStr]
	if !ok {
		return auth.ErrRefreshTokenNotFound
	}
	now := time.Now()
	rt.RevokedAt = &now
	return nil
}

func (r *memoryRefreshStore) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: "8080",
			Env:  "prod",
		},
	}

	logger := logging.NewLogger(true)
	tokenService, err := token.NewJWTService([]byte("test-secret-that-is-long-enough"))
	require.NoError(t, err)

	users := newMemoryUserStore()
	authService := auth.NewService(
		users,
		newMemoryRefreshStore(),
		provider.NewLocalProvider(password.NewHasher()),
		tokenService,
		nil,
		logger,
		routerTestAdminCode,
		30*time.Minute,
		7*24*time.Hour,
	)

	return NewRouter(
		cfg,
		auth.NewHandler(authService, nil, logger),
		auth.NewMiddleware(tokenService, users),
		trainee.NewHandler(nil),
		trainer.NewHandler(nil, nil),
		users,
		logger,
	)
}

func doJSON(t *testing.T, router http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router http.Handler, email, role, adminCode string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":      email,
		"password":   "secret123",
		"name":       "Test User",
		"role":       role,
		"admin_code": adminCode,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope httputil.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data := envelope.Data.(map[string]any)
	return data["access_token"].(string)
}

func TestRouterHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouterSwaggerDisabledInProduction(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/swagger/index.html", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterRoleGates(t *testing.T) {
	router := newTestRouter(t)

	traineeToken := registerAndLogin(t, router, "trainee@example.com", "TRAINEE", "")
	adminToken := registerAndLogin(t, router, "admin@example.com", "ADMIN", routerTestAdminCode)

	// No token at all
	rec := doJSON(t, router, http.MethodGet, "/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authenticated but wrong role
	rec = doJSON(t, router, http.MethodGet, "/admin/users", traineeToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(t, router, http.MethodGet, "/trainer/profile", traineeToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Matching role passes
	rec = doJSON(t, router, http.MethodGet, "/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope httputil.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	list := envelope.Data.([]any)
	assert.Len(t, list, 2)
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestRouterRejectsGarbageToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/trainee/profile", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
