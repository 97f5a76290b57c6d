package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/attribution"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/domain"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/ports"
)

func completedSession(metadata map[string]string, clientRef string) ports.CheckoutSessionDetails {
	return ports.CheckoutSessionDetails{
		ID:                "cs_test_123",
		PaymentIntentID:   "pi_test_456",
		PaymentStatus:     "paid",
		AmountTotal:       1200,
		Currency:          "usd",
		CustomerID:        "cus_789",
		CustomerEmail:     "buyer@example.com",
		ClientReferenceID: clientRef,
		Metadata:          metadata,
	}
}

func TestReconcileWebhookFromMetadata(t *testing.T) {
	record := attribution.NewRecord("quickread", "user123")
	blob, _ := json.Marshal(record)

	provider := &fakeProvider{webhook: &ports.WebhookEvent{
		ID:      "evt_1",
		Type:    "checkout.session.completed",
		Session: completedSession(map[string]string{"attribution_data": string(blob)}, ""),
	}}
	sink := &captureSink{}
	svc := NewPurchaseService("https://useworkframe.com", "https://useworkframe.com", provider, sink)

	if err := svc.ReconcileWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("ReconcileWebhook: %v", err)
	}

	events := sink.captured()
	if len(events) != 1 {
		t.Fatalf("expected 1 purchase event, got %d", len(events))
	}
	purchase, ok := events[0].(domain.PurchaseCompletedEvent)
	if !ok {
		t.Fatalf("expected PurchaseCompletedEvent, got %T", events[0])
	}
	if purchase.RequestID != record.CorrelationID {
		t.Error("purchase should join back to the originating correlation id")
	}
	if purchase.Product != "quickread" || purchase.AmountPaidCents != 1200 {
		t.Errorf("unexpected event %+v", purchase)
	}
	if purchase.PaymentIntentID != "pi_test_456" || purchase.CustomerEmail != "buyer@example.com" {
		t.Errorf("provider fields not carried: %+v", purchase)
	}
}

func TestReconcileWebhookFromClientReference(t *testing.T) {
	record := attribution.NewRecord("zettelkasten", "")
	ref, err := attribution.EncodeReference(record)
	if err != nil {
		t.Fatalf("EncodeReference: %v", err)
	}

	provider := &fakeProvider{webhook: &ports.WebhookEvent{
		Type:    "checkout.session.completed",
		Session: completedSession(nil, ref),
	}}
	sink := &captureSink{}
	svc := NewPurchaseService("https://useworkframe.com", "https://useworkframe.com", provider, sink)

	if err := svc.ReconcileWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("ReconcileWebhook: %v", err)
	}
	events := sink.captured()
	if len(events) != 1 {
		t.Fatalf("expected 1 purchase event, got %d", len(events))
	}
	if events[0].Base().RequestID != record.CorrelationID {
		t.Error("client reference correlation id not recovered")
	}
}

func TestReconcileWebhookNoAttribution(t *testing.T) {
	provider := &fakeProvider{webhook: &ports.WebhookEvent{
		Type:    "checkout.session.completed",
		Session: completedSession(nil, ""),
	}}
	sink := &captureSink{}
	svc := NewPurchaseService("https://useworkframe.com", "https://useworkframe.com", provider, sink)

	err := svc.ReconcileWebhook(context.Background(), []byte(`{}`), "sig")
	if !errors.Is(err, domain.ErrNoAttribution) {
		t.Fatalf("expected ErrNoAttribution, got %v", err)
	}
	if len(sink.captured()) != 0 {
		t.Error("no event should fire without attribution")
	}
}

func TestReconcileWebhookVerifyFailure(t *testing.T) {
	provider := &fakeProvider{verifyErr: errors.New("bad signature")}
	svc := NewPurchaseService("https://useworkframe.com", "https://useworkframe.com", provider, &captureSink{})

	err := svc.ReconcileWebhook(context.Background(), []byte(`{}`), "sig")
	if err == nil || errors.Is(err, domain.ErrNoAttribution) {
		t.Fatalf("expected verification error, got %v", err)
	}
}

func TestReconcileWebhookIgnoresOtherEvents(t *testing.T) {
	provider := &fakeProvider{webhook: &ports.WebhookEvent{Type: "invoice.paid"}}
	sink := &captureSink{}
	svc := NewPurchaseService("https://useworkframe.com", "https://useworkframe.com", provider, sink)

	if err := svc.ReconcileWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unhandled event types should ack cleanly, got %v", err)
	}
	if len(sink.captured()) != 0 {
		t.Error("no event should fire for unhandled types")
	}
}

func TestReconcileReturn(t *testing.T) {
	record := attribution.NewRecord("quickread", "user123")
	blob, _ := json.Marshal(record)
	session := completedSession(map[string]string{
		"product":          "quickread",
		"attribution_data": string(blob),
	}, "")

	provider := &fakeProvider{session: &session}
	sink := &captureSink{}
	svc := NewPurchaseService("https://useworkframe.com", "https://useworkframe.com", provider, sink)

	result, err := svc.ReconcileReturn(context.Background(), "cs_test_123", domain.RequestMeta{})
	if err != nil {
		t.Fatalf("ReconcileReturn: %v", err)
	}
	if !result.Attributed {
		t.Error("expected attributed result")
	}
	if result.DestinationURL == "" {
		t.Error("destination missing")
	}
	if len(sink.captured()) != 1 {
		t.Errorf("expected 1 purchase event, got %d", len(sink.captured()))
	}
}

func TestReconcileReturnUnpaid(t *testing.T) {
	session := completedSession(nil, "")
	session.PaymentStatus = "unpaid"
	provider := &fakeProvider{session: &session}
	svc := NewPurchaseService("https://useworkframe.com", "https://useworkframe.com", provider, &captureSink{})

	if _, err := svc.ReconcileReturn(context.Background(), "cs_test_123", domain.RequestMeta{}); err == nil {
		t.Fatal("unpaid session should not reconcile")
	}
}

func TestReconcileReturnWithoutAttribution(t *testing.T) {
	// Valid paid session, no attribution anywhere: confirmation still works,
	// falling back to the product named in metadata.
	session := completedSession(map[string]string{"product": "chat"}, "")
	delete(session.Metadata, "request_id")
	provider := &fakeProvider{session: &session}
	sink := &captureSink{}
	svc := NewPurchaseService("https://useworkframe.com", "https://useworkframe.com/home", provider, sink)

	result, err := svc.ReconcileReturn(context.Background(), "cs_test_123", domain.RequestMeta{})
	if err != nil {
		t.Fatalf("ReconcileReturn: %v", err)
	}
	if result.Attributed {
		t.Error("result should be unattributed")
	}
	if result.DestinationURL != "https://useworkframe.com/products/chat" {
		t.Errorf("destination = %q", result.DestinationURL)
	}
	if len(sink.captured()) != 0 {
		t.Error("no purchase event without attribution")
	}
}

func TestExpiredRecordNotUsedForAttribution(t *testing.T) {
	// A browser presenting a 10-day-old cookie must start an unattributed
	// checkout; the expiry gate lives where the cookie is read.
	stale := domain.AttributionRecord{
		Product:       "quickread",
		CorrelationID: "old-rid",
		CreatedAt:     "2020-01-01T00:00:00Z",
	}
	if !attribution.Expired(stale) {
		t.Fatal("ten-day-old record should be expired")
	}
}
