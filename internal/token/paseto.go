package token

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

// PasetoService is the PASETO v4.local backend
// (symmetric encryption with XChaCha20-Poly1305).
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
}

func NewPasetoService(symmetricKey []byte) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{
		symmetricKey: key,
	}, nil
}

// Issue creates a token bound to the subject, valid for ttl from now.
func (s *PasetoService) Issue(subject uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetSubject(subject.String())
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(ttl))

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// Verify decrypts and validates a token and returns its claims.
func (s *PasetoService) Verify(tokenStr string) (*Claims, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		// The parser checks expiration by default; distinguish expired from invalid
		if errors.Is(err, &paseto.RuleError{}) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	subjectStr, err := token.GetSubject()
	if err != nil {
		return nil, ErrInvalidToken
	}
	subject, err := uuid.Parse(subjectStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}

	// The exact expiry instant is already invalid.
	if !time.Now().Before(expiresAt) {
		return nil, ErrExpiredToken
	}

	return &Claims{
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
