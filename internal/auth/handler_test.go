package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymtrack/gymtrack-api/internal/httputil"
	"github.com/gymtrack/gymtrack-api/internal/logging"
	"github.com/gymtrack/gymtrack-api/internal/password"
	"github.com/gymtrack/gymtrack-api/internal/provider"
	"github.com/gymtrack/gymtrack-api/internal/token"
)

type handlerFixture struct {
	handler *Handler
	limiter *fakeRateLimiter
}

func newHandlerFixture(t *testing.T, limiter *fakeRateLimiter) *handlerFixture {
	t.Helper()

	tokenService, err := token.NewJWTService([]byte("test-secret-that-is-long-enough"))
	require.NoError(t, err)

	logger := logging.NewLogger(true)
	svc := NewService(
		newFakeUserStore(),
		newFakeRefreshTokenRepository(),
		provider.NewLocalProvider(password.NewHasher()),
		tokenService,
		nil,
		logger,
		testAdminCode,
		30*time.Minute,
		7*24*time.Hour,
	)

	var rl RateLimiter
	if limiter != nil {
		rl = limiter
	}

	return &handlerFixture{
		handler: NewHandler(svc, rl, logger),
		limiter: limiter,
	}
}

func (f *handlerFixture) post(t *testing.T, handlerFunc http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httputil.Envelope {
	t.Helper()
	var envelope httputil.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestHandlerRegister(t *testing.T) {
	f := newHandlerFixture(t, nil)

	rec := f.post(t, f.handler.Register, RegisterRequest{
		Email:    "member@example.com",
		Password: "secret123",
		Name:     "Member",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	assert.Equal(t, "User registered successfully", envelope.Message)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "member@example.com", data["email"])
	assert.Equal(t, "TRAINEE", data["role"])
	assert.NotContains(t, rec.Body.String(), "secret123")
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestHandlerRegisterErrors(t *testing.T) {
	f := newHandlerFixture(t, nil)

	// Validation failure
	rec := f.post(t, f.handler.Register, RegisterRequest{
		Email:    "member@example.com",
		Password: "123",
		Name:     "Member",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Admin code gate
	rec = f.post(t, f.handler.Register, RegisterRequest{
		Email:     "admin@example.com",
		Password:  "secret123",
		Name:      "Admin",
		Role:      "ADMIN",
		AdminCode: "wrong",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Duplicate email
	ok := f.post(t, f.handler.Register, RegisterRequest{
		Email:    "member@example.com",
		Password: "secret123",
		Name:     "Member",
	})
	require.Equal(t, http.StatusCreated, ok.Code)

	rec = f.post(t, f.handler.Register, RegisterRequest{
		Email:    "member@example.com",
		Password: "other456",
		Name:     "Other",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already exists", decodeEnvelope(t, rec).Message)

	// Malformed body
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	f.handler.Register(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerLoginFlow(t *testing.T) {
	f := newHandlerFixture(t, nil)

	rec := f.post(t, f.handler.Register, RegisterRequest{
		Email:    "member@example.com",
		Password: "secret123",
		Name:     "Member",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.post(t, f.handler.Login, LoginRequest{
		Email:    "member@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "Login successful", envelope.Message)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])
	assert.Equal(t, "Bearer", data["token_type"])

	userData, ok := data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "member@example.com", userData["email"])
	assert.NotContains(t, userData, "password_hash")

	// Wrong password
	rec = f.post(t, f.handler.Login, LoginRequest{
		Email:    "member@example.com",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeEnvelope(t, rec).Message)

	// Missing fields never reach the credential check
	rec = f.post(t, f.handler.Login, LoginRequest{Email: "member@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerRefreshAndLogout(t *testing.T) {
	f := newHandlerFixture(t, nil)

	rec := f.post(t, f.handler.Register, RegisterRequest{
		Email:    "member@example.com",
		Password: "secret123",
		Name:     "Member",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.post(t, f.handler.Login, LoginRequest{
		Email:    "member@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec).Data.(map[string]any)
	refreshToken := data["refresh_token"].(string)

	// Refresh rotates
	rec = f.post(t, f.handler.Refresh, RefreshRequest{RefreshToken: refreshToken})
	require.Equal(t, http.StatusOK, rec.Code)

	rotated := decodeEnvelope(t, rec).Data.(map[string]any)
	newRefresh := rotated["refresh_token"].(string)
	assert.NotEqual(t, refreshToken, newRefresh)

	// The spent token is unusable
	rec = f.post(t, f.handler.Refresh, RefreshRequest{RefreshToken: refreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logout revokes the current token
	rec = f.post(t, f.handler.Logout, RefreshRequest{RefreshToken: newRefresh})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.post(t, f.handler.Refresh, RefreshRequest{RefreshToken: newRefresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Missing token
	rec = f.post(t, f.handler.Refresh, RefreshRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerRateLimit(t *testing.T) {
	f := newHandlerFixture(t, newFakeRateLimiter(3))

	for i := 0; i < 3; i++ {
		rec := f.post(t, f.handler.Login, LoginRequest{
			Email:    "member@example.com",
			Password: "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := f.post(t, f.handler.Login, LoginRequest{
		Email:    "member@example.com",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Registration counts separately from login.
	rec = f.post(t, f.handler.Register, RegisterRequest{
		Email:    "member@example.com",
		Password: "secret123",
		Name:     "Member",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "10.0.0.1:39312", "10.0.0.1"},
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, "10.0.0.1:39312", "203.0.113.7"},
		{"x-real-ip", map[string]string{"X-Real-IP": "203.0.113.9"}, "10.0.0.1:39312", "203.0.113.9"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, getClientIP(req))
		})
	}
}
