// Package supabase is a thin client for the auth provider's REST API
// (GoTrue). The platform never mints or verifies tokens itself: every
// credential check is a synchronous call to the provider, with no retries
// and no local caching.
package supabase

import (
	"bytes"         // Request body buffers
	"encoding/json" // JSON bodies
	"errors"        // Sentinel errors
	"fmt"           // Error wrapping
	"io"            // Response draining
	"net/http"      // HTTP client
	"time"          // Client timeout

	"github.com/google/uuid" // Provider-issued identities
)

// Provider errors, mapped to the HTTP taxonomy at the api layer
var (
	ErrInvalidCredentials = errors.New("incorrect email or password") // Sign-in rejected
	ErrInvalidToken       = errors.New("invalid token")               // Token rejected
	ErrUnavailable        = errors.New("auth provider unavailable")   // Network-level failure
)

// Client calls the provider's REST endpoints using the service key
type Client struct {
	baseURL string       // Provider base URL, no trailing slash
	apiKey  string       // Service role key
	http    *http.Client // Underlying HTTP client
}

// NewClient builds a provider client for the given project URL and key
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second}, // Fail fast, no retries
	}
}

// AuthUser is the provider's view of an identity
type AuthUser struct {
	ID    uuid.UUID `json:"id"`    // Provider-issued UUID
	Email string    `json:"email"` // Registered email
}

// TokenResponse is the provider's sign-in result
type TokenResponse struct {
	AccessToken string   `json:"access_token"` // Bearer credential for subsequent calls
	TokenType   string   `json:"token_type"`   // Always "bearer"
	User        AuthUser `json:"user"`         // The signed-in identity
}

// SignInWithPassword exchanges an email/password pair for an access token.
// A provider-side rejection is ErrInvalidCredentials; a network failure is
// ErrUnavailable.
func (c *Client) SignInWithPassword(email, password string) (*TokenResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"email":    email,    // Credential email
		"password": password, // Credential password, passed through verbatim
	})
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)                 // Project key
	req.Header.Set("Content-Type", "application/json") // JSON body
	resp, err := c.http.Do(req)
	if err != nil {
		// Network error or timeout: the provider is unreachable
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) // Drain for connection reuse
		return nil, ErrInvalidCredentials
	}
	var tok TokenResponse // Decode the token payload
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("%w: bad token response: %v", ErrUnavailable, err)
	}
	return &tok, nil
}

// UserFromToken resolves a bearer credential to the identity it belongs to.
// This is the verification step behind every authorized call.
func (c *Client) UserFromToken(accessToken string) (*AuthUser, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)                     // Project key
	req.Header.Set("Authorization", "Bearer "+accessToken) // The credential under test
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) // Drain for connection reuse
		return nil, ErrInvalidToken
	}
	var user AuthUser // Decode the identity payload
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: bad user response: %v", ErrUnavailable, err)
	}
	return &user, nil
}

// AdminCreateUser registers a new identity with the provider using the admin
// API, auto-confirming the email since these are internal users. The returned
// UUID becomes the local profile's primary key.
func (c *Client) AdminCreateUser(email, password string) (*AuthUser, error) {
	body, _ := json.Marshal(map[string]any{
		"email":         email,    // New identity email
		"password":      password, // Initial password
		"email_confirm": true,     // Skip the confirmation mail for internal users
	})
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/auth/v1/admin/users", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)                  // Project key
	req.Header.Set("Authorization", "Bearer "+c.apiKey) // Admin calls authenticate with the service key
	req.Header.Set("Content-Type", "application/json")  // JSON body
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(resp.Body) // Provider error text for the caller
		return nil, fmt.Errorf("failed to create auth user: %s", detail)
	}
	var user AuthUser // Decode the new identity
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: bad create response: %v", ErrUnavailable, err)
	}
	return &user, nil
}

// AdminDeleteUser removes an identity from the provider. Used both for
// explicit user deletion and as the compensating step when a local profile
// insert fails after the identity was already created.
func (c *Client) AdminDeleteUser(id uuid.UUID) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/auth/v1/admin/users/"+id.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)                  // Project key
	req.Header.Set("Authorization", "Bearer "+c.apiKey) // Admin calls authenticate with the service key
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) // Drain for connection reuse
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to delete auth user: status %d", resp.StatusCode)
	}
	return nil
}
