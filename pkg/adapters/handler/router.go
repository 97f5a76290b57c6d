package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/config"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/ports"
)

// Services groups the dependencies the router wires into handlers.
type Services struct {
	Redirects ports.RedirectService
	Checkouts ports.CheckoutService
	Purchases ports.PurchaseService
	Sink      ports.AnalyticsSink
	Identity  ports.IdentityProvider
	Notifier  ports.Notifier
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, svc Services) http.Handler {
	// Initialize Handlers
	h := NewHTTPHandler(svc.Redirects, svc.Checkouts, svc.Purchases, svc.Sink, cfg.IsProduction())
	ch := NewContactHandler(svc.Notifier)
	authHandler := NewAuthHandler(cfg, svc.Identity)

	// Initialize Middleware
	mw := NewMiddleware(cfg)

	// Setup Router
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		res := map[string]string{
			"message": "ok",
		}
		_ = json.NewEncoder(w).Encode(&res)
	})

	// Attribution pipeline
	mux.HandleFunc("GET /redirect", h.Redirect)
	mux.HandleFunc("GET /api/redirect", h.Redirect)
	mux.HandleFunc("POST /api/create-checkout", h.CreateCheckout)
	mux.HandleFunc("GET /api/purchase-redirect", h.PurchaseRedirect)
	mux.HandleFunc("POST /api/stripe/webhook", h.StripeWebhook)
	mux.HandleFunc("POST /api/analytics/track", h.Track)

	// Site forms
	mux.HandleFunc("POST /api/contact", ch.Contact)
	mux.HandleFunc("POST /api/newsletter", ch.Newsletter)

	// Auth
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/account/attribution", authHandler.Attribution)
	mux.Handle("/api/account/", mw.AuthMiddleware(protectedMux))

	return mux
}
