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

// successPath is where the provider sends the browser after payment. The
// placeholder is substituted by the provider with the real session id.
const successPath = "/api/purchase-redirect?session_id={CHECKOUT_SESSION_ID}"

type CheckoutService struct {
	baseURL  string
	provider ports.CheckoutProvider
	sink     ports.AnalyticsSink
}

func NewCheckoutService(baseURL string, provider ports.CheckoutProvider, sink ports.AnalyticsSink) *CheckoutService {
	return &CheckoutService{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		provider: provider,
		sink:     sink,
	}
}

// Start assembles and creates a provider checkout session for a product,
// embedding the caller's attribution so it survives the round trip through
// the provider. Attribution problems degrade to an unattributed session;
// only a missing product or provider failure blocks checkout.
func (s *CheckoutService) Start(ctx context.Context, req ports.CheckoutRequest) (*ports.CheckoutResult, error) {
	if req.ProductSlug == "" {
		return nil, domain.ValidationErrors{{
			Field:   "productSlug",
			Message: "Product slug is required",
		}}
	}

	price, ok := domain.PriceBySlug(req.ProductSlug)
	if !ok {
		return nil, domain.ErrNoPrice
	}

	successBase := strings.TrimSuffix(req.SuccessURL, "/")
	if successBase == "" {
		successBase = s.baseURL
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = successBase + "/products/" + req.ProductSlug
	}

	metadata := map[string]string{
		"product": req.ProductSlug,
	}
	clientRef := ""
	if req.Attribution != nil {
		record := *req.Attribution
		metadata["user_id"] = record.UserRef
		metadata["request_id"] = record.CorrelationID
		metadata["attribution_timestamp"] = record.CreatedAt
		if encoded, err := json.Marshal(record); err == nil {
			metadata["attribution_data"] = string(encoded)
		}

		ref, err := attribution.EncodeReference(record)
		if err != nil {
			// Degrade to metadata-only attribution rather than failing
			// checkout over an oversized reference.
			log.Printf("checkout: encode reference for %s: %v", record.CorrelationID, err)
		} else {
			clientRef = ref
		}
	}

	session, err := s.provider.CreateSession(ctx, ports.CheckoutSessionParams{
		ProductSlug:       req.ProductSlug,
		ProductName:       price.Name,
		Description:       fmt.Sprintf("Access to %s", price.Name),
		AmountCents:       price.AmountCents,
		Currency:          price.Currency,
		SuccessURL:        successBase + successPath,
		CancelURL:         cancelURL,
		CustomerEmail:     req.CustomerEmail,
		ClientReferenceID: clientRef,
		Metadata:          metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if req.Attribution != nil {
		event := domain.CheckoutStartedEvent{
			BaseEvent: domain.BaseEvent{
				EventType: domain.EventCheckoutStarted,
				RequestID: req.Attribution.CorrelationID,
				Timestamp: attribution.Timestamp(),
				Product:   req.ProductSlug,
				UserID:    req.Attribution.UserRef,
				Referrer:  req.Meta.Referrer,
				UserAgent: req.Meta.UserAgent,
				SourceIP:  req.Meta.SourceIP,
			},
			CheckoutSessionID: session.ID,
			AmountCents:       price.AmountCents,
			Currency:          price.Currency,
		}
		s.sink.Submit(event)
	}

	return &ports.CheckoutResult{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}
