package ports

import (
	"context"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/domain"
)

// AnalyticsSink delivers events to the external collector.
type AnalyticsSink interface {
	// Submit is fire-and-forget: delivery is attempted in the background
	// with a bounded timeout and any failure is logged and discarded.
	Submit(event domain.Event)

	// SubmitAndWait attempts delivery before returning, for call sites that
	// want the event on the wire (webhooks, client track requests).
	SubmitAndWait(ctx context.Context, event domain.Event) error

	// Close waits for in-flight deliveries, bounded by ctx.
	Close(ctx context.Context) error
}

// CheckoutSessionParams describes the session to create with the external
// checkout provider.
type CheckoutSessionParams struct {
	ProductSlug       string
	ProductName       string
	Description       string
	AmountCents       int64
	Currency          string
	SuccessURL        string
	CancelURL         string
	CustomerEmail     string
	ClientReferenceID string
	Metadata          map[string]string
}

// CheckoutSession is the provider's handle for a created session.
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutSessionDetails is the provider's view of a session after payment.
type CheckoutSessionDetails struct {
	ID                string
	PaymentIntentID   string
	PaymentStatus     string
	AmountTotal       int64
	Currency          string
	CustomerID        string
	CustomerEmail     string
	ClientReferenceID string
	Metadata          map[string]string
}

// WebhookEvent is a verified provider callback.
type WebhookEvent struct {
	ID      string
	Type    string
	Session CheckoutSessionDetails
}

// CheckoutProvider is the external payment collaborator.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*CheckoutSessionDetails, error)
	VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

// IdentitySession is the result of a sign-in call to the identity provider.
type IdentitySession struct {
	UserID    string
	Email     string
	IDToken   string
	ExpiresIn int64 // seconds
}

// IdentityProvider is the hosted identity collaborator. Sign-in is the only
// call this system makes; account management lives with the provider.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*IdentitySession, error)
}

// Notifier forwards operator-facing messages (contact form submissions).
type Notifier interface {
	Send(ctx context.Context, content string) error
}

// RedirectRequest carries the untrusted query parameters of a marketing click.
type RedirectRequest struct {
	ProductSlug string
	UserRef     string
	SourceTag   string
	Meta        domain.RequestMeta
}

// RedirectResult is a validated, resolved redirect.
type RedirectResult struct {
	DestinationURL string
	Record         domain.AttributionRecord
}

// RedirectService resolves marketing clicks into attributed redirects.
type RedirectService interface {
	Resolve(ctx context.Context, req RedirectRequest) (*RedirectResult, error)
}

// CheckoutRequest starts a checkout for a product, carrying whatever
// attribution the browser presented (nil when absent or expired).
type CheckoutRequest struct {
	ProductSlug   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Attribution   *domain.AttributionRecord
	Meta          domain.RequestMeta
}

// CheckoutResult points the browser at the provider's checkout page.
type CheckoutResult struct {
	SessionID   string
	CheckoutURL string
}

// CheckoutService assembles provider checkout sessions.
type CheckoutService interface {
	Start(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

// PurchaseResult is where the browser lands after a reconciled purchase.
type PurchaseResult struct {
	DestinationURL string
	Attributed     bool
}

// PurchaseService reconciles provider callbacks back to their originating
// clicks.
type PurchaseService interface {
	// ReconcileWebhook verifies and processes a provider webhook delivery.
	// Returns domain.ErrNoAttribution when the payload was valid but carried
	// no recoverable attribution.
	ReconcileWebhook(ctx context.Context, payload []byte, signatureHeader string) error

	// ReconcileReturn processes the browser's post-payment return
	// navigation and resolves where to send it.
	ReconcileReturn(ctx context.Context, sessionID string, meta domain.RequestMeta) (*PurchaseResult, error)
}
