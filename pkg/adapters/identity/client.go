// Package identity wraps the hosted identity provider's REST API. Sign-in
// is the only operation the site performs; everything else about accounts
// lives with the provider.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/ports"
)

// ErrInvalidCredentials is returned when the provider rejects the
// email/password pair.
var ErrInvalidCredentials = errors.New("invalid email or password")

type Client struct {
	// Endpoint is the API origin; tests point it at a local server.
	Endpoint string

	apiKey string
	http   *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		Endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// SignIn exchanges an email/password pair for an identity session. The
// returned ID token's claims are read without signature verification: the
// token came over TLS from the provider that minted it and is consumed in
// the same process, never accepted back from a client.
func (c *Client) SignIn(ctx context.Context, email, password string) (*ports.IdentitySession, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/accounts:signInWithPassword?key=%s", c.Endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}

	var payload struct {
		IDToken   string `json:"idToken"`
		Email     string `json:"email"`
		LocalID   string `json:"localId"`
		ExpiresIn string `json:"expiresIn"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode sign-in response: %w", err)
	}
	if payload.IDToken == "" {
		return nil, errors.New("sign-in response missing token")
	}

	session := &ports.IdentitySession{
		UserID:  payload.LocalID,
		Email:   payload.Email,
		IDToken: payload.IDToken,
	}
	if seconds, err := strconv.ParseInt(payload.ExpiresIn, 10, 64); err == nil {
		session.ExpiresIn = seconds
	}

	// Prefer the token's own claims when the response fields are sparse.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(payload.IDToken, claims); err == nil {
		if session.UserID == "" {
			if sub, err := claims.GetSubject(); err == nil {
				session.UserID = sub
			}
		}
		if session.ExpiresIn == 0 {
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				session.ExpiresIn = int64(time.Until(exp.Time).Seconds())
			}
		}
	}

	return session, nil
}
