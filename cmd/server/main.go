package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/adapters/analytics"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/adapters/checkout"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/adapters/handler"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/adapters/identity"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/adapters/notify"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/config"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/services"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize external collaborators. The analytics sink's lifecycle is
	// owned here: constructed once, flushed on shutdown.
	sink := analytics.NewClient(cfg.PostHogEndpoint, cfg.PostHogAPIKey)
	provider := checkout.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	identityClient := identity.NewClient(cfg.IdentityEndpoint, cfg.IdentityAPIKey)
	notifier := notify.NewDiscordNotifier(cfg.DiscordWebhookURL)

	// Initialize Services
	redirects := services.NewRedirectService(cfg.BaseURL, sink)
	checkouts := services.NewCheckoutService(cfg.BaseURL, provider, sink)
	purchases := services.NewPurchaseService(cfg.BaseURL, cfg.FrontendURL, provider, sink)

	// Initialize Router
	mux := handler.NewRouter(cfg, handler.Services{
		Redirects: redirects,
		Checkouts: checkouts,
		Purchases: purchases,
		Sink:      sink,
		Identity:  identityClient,
		Notifier:  notifier,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if err := sink.Close(shutdownCtx); err != nil {
		log.Printf("Analytics flush: %v", err)
	}
}
