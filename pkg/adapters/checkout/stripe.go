// Package checkout implements the external checkout provider contract
// against the Stripe HTTP API: one form-encoded POST to create a session,
// one GET to read it back, and HMAC verification of webhook deliveries.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/ports"
)

const defaultBaseURL = "https://api.stripe.com"

var (
	// ErrMissingSignature is returned when a webhook arrives without the
	// signature header.
	ErrMissingSignature = errors.New("missing webhook signature")

	// ErrInvalidSignature is returned when the signature header doesn't
	// verify against the endpoint secret.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrInvalidPayload is returned for webhook bodies that aren't a
	// well-formed provider event.
	ErrInvalidPayload = errors.New("invalid webhook payload")
)

type StripeClient struct {
	// BaseURL is the API origin; tests point it at a local server.
	BaseURL string

	webhookSecret string
	http          *http.Client
}

// NewStripeClient builds a provider client. The secret key rides on every
// request via a bearer-token transport.
func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: secretKey})
	return &StripeClient{
		BaseURL:       defaultBaseURL,
		webhookSecret: webhookSecret,
		http:          oauth2.NewClient(context.Background(), source),
	}
}

// CreateSession creates a hosted checkout session. The attribution reference
// rides in client_reference_id and the metadata fields so the webhook can
// recover it either way.
func (c *StripeClient) CreateSession(ctx context.Context, params ports.CheckoutSessionParams) (*ports.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(params.Currency))
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	if params.Description != "" {
		form.Set("line_items[0][price_data][product_data][description]", params.Description)
	}
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.AmountCents, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}
	if params.ClientReferenceID != "" {
		form.Set("client_reference_id", params.ClientReferenceID)
	}
	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var session sessionPayload
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	return &ports.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// GetSession retrieves a session after payment for return-navigation
// reconciliation.
func (c *StripeClient) GetSession(ctx context.Context, sessionID string) (*ports.CheckoutSessionDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}

	var session sessionPayload
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	details := session.details()
	return &details, nil
}

// VerifyWebhook checks the Stripe-Signature header against the endpoint
// secret and parses the event payload.
func (c *StripeClient) VerifyWebhook(payload []byte, signatureHeader string) (*ports.WebhookEvent, error) {
	if signatureHeader == "" {
		return nil, ErrMissingSignature
	}
	if err := verifySignature(payload, signatureHeader, c.webhookSecret); err != nil {
		return nil, err
	}

	var event webhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrInvalidPayload)
	}

	return &ports.WebhookEvent{
		ID:      event.ID,
		Type:    event.Type,
		Session: event.Data.Object.details(),
	}, nil
}

func (c *StripeClient) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe returned %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("stripe returned %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

type sessionPayload struct {
	ID                string            `json:"id"`
	URL               string            `json:"url"`
	PaymentIntent     string            `json:"payment_intent"`
	PaymentStatus     string            `json:"payment_status"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	Customer          string            `json:"customer"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
	CustomerDetails   struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

func (s sessionPayload) details() ports.CheckoutSessionDetails {
	return ports.CheckoutSessionDetails{
		ID:                s.ID,
		PaymentIntentID:   s.PaymentIntent,
		PaymentStatus:     s.PaymentStatus,
		AmountTotal:       s.AmountTotal,
		Currency:          s.Currency,
		CustomerID:        s.Customer,
		CustomerEmail:     s.CustomerDetails.Email,
		ClientReferenceID: s.ClientReferenceID,
		Metadata:          s.Metadata,
	}
}

type webhookPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object sessionPayload `json:"object"`
	} `json:"data"`
}
