package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/adapters/identity"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/config"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/ports"
)

const sessionCookie = "auth_token"

type AuthHandler struct {
	identity     ports.IdentityProvider
	jwtSecret    []byte
	isProduction bool
}

func NewAuthHandler(cfg *config.Config, provider ports.IdentityProvider) *AuthHandler {
	return &AuthHandler{
		identity:     provider,
		jwtSecret:    []byte(cfg.JWTSecret),
		isProduction: cfg.IsProduction(),
	}
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email/password with the identity provider and sets the
// session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	session, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Printf("login: sign-in failed: %v", err)
		writeError(w, http.StatusBadGateway, "Sign-in unavailable")
		return
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	claims := &jwt.RegisteredClaims{
		Subject:   session.Email,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		log.Printf("login: failed signing JWT: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Expires:  expiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	log.Printf("Login successful for user: %s", session.Email)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"userId":  session.UserID,
		"email":   session.Email,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Attribution echoes the signed-in user's current attribution record, or
// null when absent/expired.
func (h *AuthHandler) Attribution(w http.ResponseWriter, r *http.Request) {
	record := attributionFromRequest(r)
	if record == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"attribution": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attribution": record})
}
