package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisRepository handles refresh token persistence in Redis. Expiration is
// enforced twice: via key TTL and via the stored expires_at, so a token
// outliving its TTL by clock skew still fails validation.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func refreshTokenKey(tokenHash string) string {
	return fmt.Sprintf("refresh_token:%s", tokenHash)
}

func revokedTokenKey(tokenHash string) string {
	return fmt.Sprintf("refresh_token:revoked:%s", tokenHash)
}

func userTokensKey(userID uuid.UUID) string {
	return fmt.Sprintf("user_tokens:%s", userID.String())
}

// StoreRefreshToken stores a refresh token in Redis with TTL
func (r *RedisRepository) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	tokenHash := hashToken(token)
	tokenKey := refreshTokenKey(tokenHash)

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("token expiration time is in the past")
	}

	pipe := r.client.Pipeline()

	pipe.HSet(ctx, tokenKey, map[string]interface{}{
		"user_id":    userID.String(),
		"expires_at": expiresAt.Unix(),
		"created_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, tokenKey, ttl)

	// Track the token under its owner so all of a user's sessions can be
	// revoked at once.
	pipe.SAdd(ctx, userTokensKey(userID), tokenHash)
	pipe.Expire(ctx, userTokensKey(userID), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves a refresh token by its hash
func (r *RedisRepository) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	tokenHash := hashToken(token)

	revoked, err := r.client.Exists(ctx, revokedTokenKey(tokenHash)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked > 0 {
		return nil, ErrRefreshTokenRevoked
	}

	data, err := r.client.HGetAll(ctx, refreshTokenKey(tokenHash)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrRefreshTokenNotFound
	}

	userID, err := uuid.Parse(data["user_id"])
	if err != nil {
		return nil, ErrRefreshTokenNotFound
	}

	expiresAtUnix, _ := strconv.ParseInt(data["expires_at"], 10, 64)
	expiresAt := time.Unix(expiresAtUnix, 0)

	if time.Now().After(expiresAt) {
		return nil, ErrRefreshTokenExpired
	}

	createdAtUnix, _ := strconv.ParseInt(data["created_at"], 10, 64)

	return &RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Unix(createdAtUnix, 0),
		RevokedAt: nil,
	}, nil
}

// RevokeRefreshToken marks a refresh token as revoked
func (r *RedisRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	tokenHash := hashToken(token)
	tokenKey := refreshTokenKey(tokenHash)

	exists, err := r.client.Exists(ctx, tokenKey).Result()
	if err != nil {
		return fmt.Errorf("failed to check token existence: %w", err)
	}
	if exists == 0 {
		return ErrRefreshTokenNotFound
	}

	// The revocation marker lives exactly as long as the token would have.
	ttl, err := r.client.TTL(ctx, tokenKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get token TTL: %w", err)
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	if err := r.client.Set(ctx, revokedTokenKey(tokenHash), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// RevokeAllUserTokens revokes all refresh tokens for a user
func (r *RedisRepository) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	tokenHashes, err := r.client.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to get user tokens: %w", err)
	}
	if len(tokenHashes) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, tokenHash := range tokenHashes {
		ttl, _ := r.client.TTL(ctx, refreshTokenKey(tokenHash)).Result()
		if ttl <= 0 {
			ttl = 7 * 24 * time.Hour
		}
		pipe.Set(ctx, revokedTokenKey(tokenHash), "1", ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke all user tokens: %w", err)
	}

	return nil
}
