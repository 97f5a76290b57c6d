package handler

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/config"
)

type contextKey string

// UserEmailKey carries the authenticated user's email in the request
// context.
const UserEmailKey contextKey = "user_email"

type Middleware struct {
	jwtSecret []byte
}

func NewMiddleware(cfg *config.Config) *Middleware {
	return &Middleware{
		jwtSecret: []byte(cfg.JWTSecret),
	}
}

// AuthMiddleware verifies the JWT token from the session cookie.
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
			return m.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), UserEmailKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
