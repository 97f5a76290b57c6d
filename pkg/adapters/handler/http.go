package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/attribution"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/domain"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/ports"
)

type HTTPHandler struct {
	redirects    ports.RedirectService
	checkouts    ports.CheckoutService
	purchases    ports.PurchaseService
	sink         ports.AnalyticsSink
	isProduction bool
}

func NewHTTPHandler(redirects ports.RedirectService, checkouts ports.CheckoutService, purchases ports.PurchaseService, sink ports.AnalyticsSink, isProduction bool) *HTTPHandler {
	return &HTTPHandler{
		redirects:    redirects,
		checkouts:    checkouts,
		purchases:    purchases,
		sink:         sink,
		isProduction: isProduction,
	}
}

// CreateCheckoutRequest payload
type CreateCheckoutRequest struct {
	ProductSlug   string `json:"productSlug"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	SuccessURL    string `json:"successUrl,omitempty"`
	CancelURL     string `json:"cancelUrl,omitempty"`
}

// Redirect serves a marketing click: validate, stamp attribution, 302.
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := h.redirects.Resolve(r.Context(), ports.RedirectRequest{
		ProductSlug: query.Get("p"),
		UserRef:     query.Get("u"),
		SourceTag:   query.Get("source"),
		Meta:        extractRequestMeta(r),
	})
	if err != nil {
		var verrs domain.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			log.Printf("redirect: validation failed: %v", err)
			writeJSON(w, http.StatusBadRequest, apiError{
				Success: false,
				Error:   "Invalid request parameters",
				Details: verrs,
			})
		case errors.Is(err, domain.ErrUnknownProduct):
			log.Printf("redirect: unknown product slug %q", query.Get("p"))
			writeError(w, http.StatusBadRequest, "Unknown product")
		default:
			log.Printf("redirect: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	// Cookie write is best-effort: an encoding failure costs attribution,
	// never the redirect.
	if encoded, err := attribution.EncodeCookie(result.Record); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     attribution.CookieName,
			Value:    encoded,
			MaxAge:   int(attribution.CookieMaxAge.Seconds()),
			Path:     "/",
			HttpOnly: true,
			Secure:   h.isProduction,
			SameSite: http.SameSiteLaxMode,
		})
	} else {
		log.Printf("redirect: encode attribution cookie: %v", err)
	}

	setNoCache(w)
	http.Redirect(w, r, result.DestinationURL, http.StatusFound)
}

// CreateCheckout starts a provider checkout session, reading attribution
// from the request cookie.
func (h *HTTPHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req CreateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.checkouts.Start(r.Context(), ports.CheckoutRequest{
		ProductSlug:   req.ProductSlug,
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		Attribution:   attributionFromRequest(r),
		Meta:          extractRequestMeta(r),
	})
	if err != nil {
		var verrs domain.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			writeJSON(w, http.StatusBadRequest, apiError{
				Success: false,
				Error:   "Invalid request parameters",
				Details: verrs,
			})
		case errors.Is(err, domain.ErrNoPrice):
			writeError(w, http.StatusBadRequest, "Unknown product or no price configuration")
		default:
			log.Printf("checkout: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to create checkout session")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"checkoutUrl": result.CheckoutURL,
		"sessionId":   result.SessionID,
	})
}

// PurchaseRedirect handles the browser's return navigation after payment.
func (h *HTTPHandler) PurchaseRedirect(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, apiError{
			Success: false,
			Error:   "Invalid request parameters",
			Details: domain.ValidationErrors{{
				Field:   "session_id",
				Message: "Session id is required",
			}},
		})
		return
	}

	result, err := h.purchases.ReconcileReturn(r.Context(), sessionID, extractRequestMeta(r))
	if err != nil {
		log.Printf("purchase redirect: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid or incomplete purchase")
		return
	}

	setNoCache(w)
	http.Redirect(w, r, result.DestinationURL, http.StatusFound)
}

// StripeWebhook handles the provider's server-to-server callback. Malformed
// deliveries are rejected; an attribution miss is still acknowledged so the
// provider doesn't retry over a tracking-only failure.
func (h *HTTPHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unreadable payload")
		return
	}

	err = h.purchases.ReconcileWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case err == nil, errors.Is(err, domain.ErrNoAttribution):
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	default:
		log.Printf("webhook: %v", err)
		writeError(w, http.StatusBadRequest, "Webhook verification failed")
	}
}

// Track ingests client-side analytics events, JSON or text/plain beacons.
// Past basic validation it always reports success so a collector problem
// never surfaces in the browser.
func (h *HTTPHandler) Track(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unreadable payload")
		return
	}

	event, err := domain.ParseEvent(body)
	if err != nil {
		// Unknown kinds come from newer or stale clients; drop them without
		// surfacing an error in the browser.
		if errors.Is(err, domain.ErrUnknownEventType) {
			log.Printf("track: %v", err)
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
		writeError(w, http.StatusBadRequest, "Missing required analytics fields")
		return
	}

	if err := h.sink.SubmitAndWait(r.Context(), event); err != nil {
		log.Printf("track: submit %s event: %v", event.Kind(), err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// extractRequestMeta pulls the header fields attached to analytics events.
func extractRequestMeta(r *http.Request) domain.RequestMeta {
	sourceIP := r.Header.Get("X-Forwarded-For")
	if sourceIP == "" {
		sourceIP = r.Header.Get("X-Real-Ip")
	}
	if sourceIP == "" {
		sourceIP = "unknown"
	}
	if i := strings.IndexByte(sourceIP, ','); i >= 0 {
		sourceIP = strings.TrimSpace(sourceIP[:i])
	}
	return domain.RequestMeta{
		Referrer:  r.Header.Get("Referer"),
		UserAgent: r.UserAgent(),
		SourceIP:  sourceIP,
	}
}

// attributionFromRequest reads the attribution cookie, treating malformed
// or expired records as absent.
func attributionFromRequest(r *http.Request) *domain.AttributionRecord {
	cookie, err := r.Cookie(attribution.CookieName)
	if err != nil {
		return nil
	}
	record := attribution.DecodeCookie(cookie.Value)
	if record == nil || attribution.Expired(*record) {
		return nil
	}
	return record
}
