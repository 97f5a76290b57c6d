package handler

import (
	"net/http"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/adapters/analytics"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/adapters/checkout"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/adapters/handler"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/adapters/identity"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/adapters/notify"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/config"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/services"
)

var mux http.Handler

func init() {
	cfg := config.Load()

	// Note: on serverless the sink is flushed per-invocation by the
	// platform draining goroutines; Close is never called.
	sink := analytics.NewClient(cfg.PostHogEndpoint, cfg.PostHogAPIKey)
	provider := checkout.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	mux = handler.NewRouter(cfg, handler.Services{
		Redirects: services.NewRedirectService(cfg.BaseURL, sink),
		Checkouts: services.NewCheckoutService(cfg.BaseURL, provider, sink),
		Purchases: services.NewPurchaseService(cfg.BaseURL, cfg.FrontendURL, provider, sink),
		Sink:      sink,
		Identity:  identity.NewClient(cfg.IdentityEndpoint, cfg.IdentityAPIKey),
		Notifier:  notify.NewDiscordNotifier(cfg.DiscordWebhookURL),
	})
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
