package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gymtrack/gymtrack-api/internal/user"
)

// fakeUserStore is an in-memory UserStore with the same duplicate and
// not-found semantics as the Postgres repository.
type fakeUserStore struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    map[uuid.UUID]*user.User{},
		byEmail: map[string]uuid.UUID{},
	}
}

func (s *fakeUserStore) Create(ctx context.Context, email, passwordHash, name string, role user.Role, phone *string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := strings.ToLower(email)
	if _, exists := s.byEmail[normalized]; exists {
		return nil, user.ErrDuplicateEmail
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        normalized,
		PasswordHash: passwordHash,
		Name:         name,
		Phone:        phone,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[u.ID] = u
	s.byEmail[normalized] = u.ID
	return u, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	return s.byID[id], nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.byID[id]; ok {
		delete(s.byEmail, u.Email)
		delete(s.byID, id)
	}
}

func (s *fakeUserStore) setActive(id uuid.UUID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.byID[id]; ok {
		u.IsActive = active
	}
}

// fakeRefreshTokenRepository mirrors the Redis repository's lookup
// semantics: revoked beats expired beats found.
type fakeRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

func newFakeRefreshTokenRepository() *fakeRefreshTokenRepository {
	return &fakeRefreshTokenRepository{tokens: map[string]*RefreshToken{}}
}

func (r *fakeRefreshTokenRepository) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[hashToken(token)] = &RefreshToken{
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *fakeRefreshTokenRepository) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[hashToken(token)]
	if !ok {
		return nil, ErrRefreshTokenNotFound
	}
	if rt.IsRevoked() {
		return nil, ErrRefreshTokenRevoked
	}
	if rt.IsExpired() {
		return nil, ErrRefreshTokenExpired
	}
	return rt, nil
}

func (r *fakeRefreshTokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[hashToken(token)]
	if !ok {
		return ErrRefreshTokenNotFound
	}
	now := time.Now()
	rt.RevokedAt = &now
	return nil
}

func (r *fakeRefreshTokenRepository) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, rt := range r.tokens {
		if rt.UserID == userID {
			rt.RevokedAt = &now
		}
	}
	return nil
}

// fakeRateLimiter counts attempts per ip/purpose with a fixed limit.
type fakeRateLimiter struct {
	mu     sync.Mutex
	limit  int
	counts map[string]int
}

func newFakeRateLimiter(limit int) *fakeRateLimiter {
	return &fakeRateLimiter{limit: limit, counts: map[string]int{}}
}

func (l *fakeRateLimiter) Check(ctx context.Context, ip, purpose string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[ip+":"+purpose] >= l.limit, nil
}

func (l *fakeRateLimiter) Record(ctx context.Context, ip, purpose string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[ip+":"+purpose]++
	return nil
}
