package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/attribution"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/domain"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/ports"
)

// checkoutCompleted is the only provider event type the pipeline acts on.
const checkoutCompleted = "checkout.session.completed"

type PurchaseService struct {
	baseURL     string
	frontendURL string
	provider    ports.CheckoutProvider
	sink        ports.AnalyticsSink
}

func NewPurchaseService(baseURL, frontendURL string, provider ports.CheckoutProvider, sink ports.AnalyticsSink) *PurchaseService {
	return &PurchaseService{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		provider:    provider,
		sink:        sink,
	}
}

// ReconcileWebhook verifies a provider webhook delivery and attributes the
// completed purchase. An attribution miss is reported as
// domain.ErrNoAttribution so the handler can acknowledge the delivery while
// logging it distinctly from a malformed payload.
func (s *PurchaseService) ReconcileWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.provider.VerifyWebhook(payload, signatureHeader)
	if err != nil {
		return fmt.Errorf("verify webhook: %w", err)
	}

	if event.Type != checkoutCompleted {
		log.Printf("purchase: ignoring webhook event type %s", event.Type)
		return nil
	}

	record := recordFromSession(event.Session)
	if record == nil {
		log.Printf("purchase: no attribution data in session %s", event.Session.ID)
		return domain.ErrNoAttribution
	}

	purchase := purchaseEvent(*record, event.Session, domain.RequestMeta{})
	if err := s.sink.SubmitAndWait(ctx, purchase); err != nil {
		// Best-effort delivery: the provider must not see attribution
		// failures as webhook failures.
		log.Printf("purchase: submit event for session %s: %v", event.Session.ID, err)
	}
	return nil
}

// ReconcileReturn processes the browser's return navigation after payment
// and resolves the destination for the confirmation redirect. Attribution
// problems never fail the confirmation; the flow degrades to unattributed.
func (s *PurchaseService) ReconcileReturn(ctx context.Context, sessionID string, meta domain.RequestMeta) (*ports.PurchaseResult, error) {
	session, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if session.PaymentStatus != "paid" && session.PaymentStatus != "no_payment_required" {
		return nil, fmt.Errorf("session %s not paid: %s", sessionID, session.PaymentStatus)
	}

	attributed := false
	slug := session.Metadata["product"]
	if record := recordFromSession(*session); record != nil {
		if slug == "" {
			slug = record.Product
		}
		purchase := purchaseEvent(*record, *session, meta)
		if err := s.sink.SubmitAndWait(ctx, purchase); err != nil {
			log.Printf("purchase: submit event for session %s: %v", session.ID, err)
		} else {
			attributed = true
		}
	} else {
		log.Printf("purchase: no attribution data in session %s", session.ID)
	}

	return &ports.PurchaseResult{
		DestinationURL: s.destinationFor(slug),
		Attributed:     attributed,
	}, nil
}

// destinationFor picks the post-purchase landing URL: the purchased
// product's page when known, otherwise the site frontend.
func (s *PurchaseService) destinationFor(slug string) string {
	product, ok := domain.ProductBySlug(slug)
	if !ok {
		return s.frontendURL
	}
	if strings.HasPrefix(product.URL, "http") {
		return product.URL
	}
	return s.baseURL + product.URL
}

// recordFromSession recovers attribution from a provider session, trying the
// metadata JSON blob first, then the individual metadata fields, then the
// opaque client reference.
func recordFromSession(session ports.CheckoutSessionDetails) *domain.AttributionRecord {
	if blob := session.Metadata["attribution_data"]; blob != "" {
		var record domain.AttributionRecord
		if err := json.Unmarshal([]byte(blob), &record); err == nil && record.Valid() {
			return &record
		}
		log.Printf("purchase: malformed attribution_data in session %s", session.ID)
	}

	if session.Metadata["product"] != "" && session.Metadata["request_id"] != "" {
		ts := session.Metadata["attribution_timestamp"]
		if ts == "" {
			ts = attribution.Timestamp()
		}
		return &domain.AttributionRecord{
			Product:       session.Metadata["product"],
			UserRef:       session.Metadata["user_id"],
			CorrelationID: session.Metadata["request_id"],
			CreatedAt:     ts,
		}
	}

	if session.ClientReferenceID != "" {
		if ref := attribution.DecodeReference(session.ClientReferenceID); ref != nil {
			record := ref.Record()
			if record.Valid() {
				return &record
			}
		}
	}
	return nil
}

func purchaseEvent(record domain.AttributionRecord, session ports.CheckoutSessionDetails, meta domain.RequestMeta) domain.PurchaseCompletedEvent {
	return domain.PurchaseCompletedEvent{
		BaseEvent: domain.BaseEvent{
			EventType: domain.EventPurchaseCompleted,
			RequestID: record.CorrelationID,
			Timestamp: attribution.Timestamp(),
			Product:   record.Product,
			UserID:    record.UserRef,
			Referrer:  meta.Referrer,
			UserAgent: meta.UserAgent,
			SourceIP:  meta.SourceIP,
		},
		CheckoutSessionID: session.ID,
		PaymentIntentID:   session.PaymentIntentID,
		AmountPaidCents:   session.AmountTotal,
		Currency:          session.Currency,
		CustomerID:        session.CustomerID,
		CustomerEmail:     session.CustomerEmail,
	}
}
