package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Event kinds. These are the event names as they appear in the collector.
const (
	EventRedirectToProduct = "redirect_to_product"
	EventProductPageView   = "product_page_view"
	EventCheckoutStarted   = "checkout_started"
	EventPurchaseCompleted = "purchase_completed"
)

// Event is a typed analytics event. Events are immutable and write-only:
// they are submitted to the sink and never read back.
type Event interface {
	Kind() string
	Base() BaseEvent
	Properties() map[string]interface{}
}

// BaseEvent holds the fields shared by every event variant.
type BaseEvent struct {
	EventType string `json:"event_type"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
	Product   string `json:"product"`
	UserID    string `json:"user_id,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	SourceIP  string `json:"source_ip,omitempty"`
	Source    string `json:"source,omitempty"`
}

func (b BaseEvent) Kind() string    { return b.EventType }
func (b BaseEvent) Base() BaseEvent { return b }

// DistinctID picks the identifier the collector keys the event on: the user
// reference when known, otherwise the correlation id.
func (b BaseEvent) DistinctID() string {
	if b.UserID != "" {
		return b.UserID
	}
	return b.RequestID
}

func (b BaseEvent) baseProperties() map[string]interface{} {
	props := map[string]interface{}{
		"request_id": b.RequestID,
		"product":    b.Product,
		"timestamp":  b.Timestamp,
	}
	if b.UserID != "" {
		props["user_id"] = b.UserID
	}
	if b.Referrer != "" {
		props["referrer"] = b.Referrer
	}
	if b.UserAgent != "" {
		props["user_agent"] = b.UserAgent
	}
	if b.SourceIP != "" {
		props["source_ip"] = b.SourceIP
	}
	if b.Source != "" {
		props["source"] = b.Source
	}
	return props
}

// RedirectEvent is fired when the redirect endpoint serves a marketing click.
type RedirectEvent struct {
	BaseEvent
	DestinationURL string `json:"destination_url"`
	RedirectStatus int    `json:"redirect_status"`
}

func (e RedirectEvent) Properties() map[string]interface{} {
	props := e.baseProperties()
	props["destination_url"] = e.DestinationURL
	props["redirect_status"] = e.RedirectStatus
	return props
}

// PageViewEvent is fired when a product page is viewed, with a flag marking
// views that arrived through a tracked redirect.
type PageViewEvent struct {
	BaseEvent
	PageURL      string `json:"page_url"`
	FromRedirect bool   `json:"from_redirect"`
}

func (e PageViewEvent) Properties() map[string]interface{} {
	props := e.baseProperties()
	props["page_url"] = e.PageURL
	props["from_redirect"] = e.FromRedirect
	return props
}

// CheckoutStartedEvent is fired when a checkout session is created.
type CheckoutStartedEvent struct {
	BaseEvent
	CheckoutSessionID string `json:"checkout_session_id"`
	AmountCents       int64  `json:"amount_cents"`
	Currency          string `json:"currency"`
}

func (e CheckoutStartedEvent) Properties() map[string]interface{} {
	props := e.baseProperties()
	props["checkout_session_id"] = e.CheckoutSessionID
	props["amount_cents"] = e.AmountCents
	props["currency"] = e.Currency
	return props
}

// PurchaseCompletedEvent is fired when the payment provider reports a
// completed checkout, joined back to its originating click.
type PurchaseCompletedEvent struct {
	BaseEvent
	CheckoutSessionID string `json:"checkout_session_id"`
	PaymentIntentID   string `json:"payment_intent_id"`
	AmountPaidCents   int64  `json:"amount_paid_cents"`
	Currency          string `json:"currency"`
	CustomerID        string `json:"customer_id,omitempty"`
	CustomerEmail     string `json:"customer_email,omitempty"`
}

func (e PurchaseCompletedEvent) Properties() map[string]interface{} {
	props := e.baseProperties()
	props["checkout_session_id"] = e.CheckoutSessionID
	props["payment_intent_id"] = e.PaymentIntentID
	props["amount_paid_cents"] = e.AmountPaidCents
	props["currency"] = e.Currency
	if e.CustomerID != "" {
		props["customer_id"] = e.CustomerID
	}
	if e.CustomerEmail != "" {
		props["customer_email"] = e.CustomerEmail
	}
	return props
}

// ErrUnknownEventType is returned by ParseEvent for unrecognized kinds.
var ErrUnknownEventType = errors.New("unknown event type")

// ParseEvent decodes a JSON payload into its typed event variant. The
// event_type field discriminates; request_id is required for correlation.
func ParseEvent(data []byte) (Event, error) {
	var head struct {
		EventType string `json:"event_type"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}
	if head.EventType == "" || head.RequestID == "" {
		return nil, errors.New("missing required analytics fields")
	}

	var (
		event Event
		err   error
	)
	switch head.EventType {
	case EventRedirectToProduct:
		var e RedirectEvent
		err = json.Unmarshal(data, &e)
		event = e
	case EventProductPageView:
		var e PageViewEvent
		err = json.Unmarshal(data, &e)
		event = e
	case EventCheckoutStarted:
		var e CheckoutStartedEvent
		err = json.Unmarshal(data, &e)
		event = e
	case EventPurchaseCompleted:
		var e PurchaseCompletedEvent
		err = json.Unmarshal(data, &e)
		event = e
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, head.EventType)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s event: %w", head.EventType, err)
	}
	return event, nil
}
