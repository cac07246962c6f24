package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const identityToolkitBaseURL = "https://identitytoolkit.googleapis.com/v1"

// FirebaseProvider delegates credential custody to the Google Identity
// Toolkit password endpoints. The provider-issued id/refresh tokens are
// discarded: the caller still mints its own session tokens, so the
// delegated service only answers "is this password right for this email".
type FirebaseProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewFirebaseProvider(apiKey string) *FirebaseProvider {
	return &FirebaseProvider{
		apiKey:  apiKey,
		baseURL: identityToolkitBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type identityRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type identityResponse struct {
	LocalID      string `json:"localId"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type identityError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Enroll creates the account at the identity service. The returned
// credential is the provider-assigned subject id, not a digest.
func (p *FirebaseProvider) Enroll(ctx context.Context, email, plaintext string) (string, error) {
	resp, err := p.call(ctx, "accounts:signUp", email, plaintext)
	if err != nil {
		return "", err
	}
	return resp.LocalID, nil
}

// Verify asks the identity service to check the password. The stored
// credential is not consulted; the provider owns verification.
func (p *FirebaseProvider) Verify(ctx context.Context, email, plaintext, credential string) error {
	_, err := p.call(ctx, "accounts:signInWithPassword", email, plaintext)
	return err
}

func (p *FirebaseProvider) call(ctx context.Context, endpoint, email, plaintext string) (*identityResponse, error) {
	body, err := json.Marshal(identityRequest{
		Email:             email,
		Password:          plaintext,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode identity request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", p.baseURL, endpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build identity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr identityError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
		}
		return nil, mapIdentityError(apiErr.Error.Message, resp.StatusCode)
	}

	var out identityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	return &out, nil
}

func mapIdentityError(message string, status int) error {
	switch {
	case strings.HasPrefix(message, "EMAIL_EXISTS"):
		return ErrEmailExists
	case strings.HasPrefix(message, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(message, "INVALID_PASSWORD"),
		strings.HasPrefix(message, "INVALID_LOGIN_CREDENTIALS"):
		return ErrInvalidCredentials
	default:
		return fmt.Errorf("identity provider error %q (status %d)", message, status)
	}
}
