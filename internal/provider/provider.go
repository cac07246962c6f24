// Package provider abstracts credential custody. The authentication service
// depends only on the Provider interface; whether passwords are verified
// against a local argon2id digest or by a delegated identity service is a
// deployment choice, not a second authentication protocol. Session tokens
// are always minted locally and roles are always re-validated server-side.
package provider

import (
	"context"
	"errors"

	"github.com/gymtrack/gymtrack-api/internal/password"
)

var (
	// ErrInvalidCredentials means the password did not verify against the
	// enrolled credential. Callers must not distinguish this from an
	// unknown email in their responses.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailExists is returned by Enroll when the provider already holds
	// a credential for the email.
	ErrEmailExists = errors.New("email already enrolled")
)

// Provider enrolls a verifiable credential for an email and later verifies
// password attempts against it. The returned credential is an opaque string
// stored on the principal: a digest for the local variant, a
// provider-assigned subject id for the delegated one.
type Provider interface {
	Enroll(ctx context.Context, email, plaintext string) (credential string, err error)
	Verify(ctx context.Context, email, plaintext, credential string) error
}

// LocalProvider keeps credential custody in-process: the credential is a
// salted argon2id digest and verification never leaves the server.
type LocalProvider struct {
	hasher *password.Hasher
}

func NewLocalProvider(hasher *password.Hasher) *LocalProvider {
	return &LocalProvider{hasher: hasher}
}

func (p *LocalProvider) Enroll(ctx context.Context, email, plaintext string) (string, error) {
	return p.hasher.Hash(plaintext)
}

func (p *LocalProvider) Verify(ctx context.Context, email, plaintext, credential string) error {
	if !p.hasher.Verify(plaintext, credential) {
		return ErrInvalidCredentials
	}
	return nil
}
