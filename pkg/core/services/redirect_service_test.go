package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/domain"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/ports"
)

// captureSink records submitted events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *captureSink) Submit(event domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *captureSink) SubmitAndWait(ctx context.Context, event domain.Event) error {
	s.Submit(event)
	return nil
}

func (s *captureSink) Close(ctx context.Context) error { return nil }

func (s *captureSink) captured() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.events...)
}

func TestResolveHappyPath(t *testing.T) {
	sink := &captureSink{}
	svc := NewRedirectService("https://useworkframe.com", sink)

	result, err := svc.Resolve(context.Background(), ports.RedirectRequest{
		ProductSlug: "quickread",
		UserRef:     "user123",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if !strings.HasPrefix(result.DestinationURL, "https://chatgpt.com/") {
		t.Errorf("destination = %q, want the QuickRead URL", result.DestinationURL)
	}
	if result.Record.Product != "quickread" || result.Record.UserRef != "user123" {
		t.Errorf("unexpected record %+v", result.Record)
	}
	if result.Record.CorrelationID == "" || result.Record.CreatedAt == "" {
		t.Error("record missing correlation id or timestamp")
	}

	events := sink.captured()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	event, ok := events[0].(domain.RedirectEvent)
	if !ok {
		t.Fatalf("expected RedirectEvent, got %T", events[0])
	}
	if event.Kind() != domain.EventRedirectToProduct {
		t.Errorf("event kind = %q", event.Kind())
	}
	if event.RedirectStatus != 302 {
		t.Errorf("redirect status = %d, want 302", event.RedirectStatus)
	}
	if event.RequestID != result.Record.CorrelationID {
		t.Error("event correlation id should match the record")
	}
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name      string
		req       ports.RedirectRequest
		wantField string
	}{
		{
			name:      "missing product",
			req:       ports.RedirectRequest{UserRef: "user123"},
			wantField: "p",
		},
		{
			name:      "bad slug format",
			req:       ports.RedirectRequest{ProductSlug: "Invalid*Slug"},
			wantField: "p",
		},
		{
			name:      "bad user ref",
			req:       ports.RedirectRequest{ProductSlug: "quickread", UserRef: "has spaces"},
			wantField: "u",
		},
		{
			name:      "bad source tag",
			req:       ports.RedirectRequest{ProductSlug: "quickread", SourceTag: "bad tag!"},
			wantField: "source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &captureSink{}
			svc := NewRedirectService("https://useworkframe.com", sink)

			_, err := svc.Resolve(context.Background(), tt.req)
			var verrs domain.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation errors, got %v", err)
			}
			found := false
			for _, fe := range verrs {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %+v", tt.wantField, verrs)
			}
			if len(sink.captured()) != 0 {
				t.Error("no event should fire on validation failure")
			}
		})
	}
}

func TestResolveUnknownProduct(t *testing.T) {
	sink := &captureSink{}
	svc := NewRedirectService("https://useworkframe.com", sink)

	_, err := svc.Resolve(context.Background(), ports.RedirectRequest{
		ProductSlug: "not-a-real-product",
	})
	if !errors.Is(err, domain.ErrUnknownProduct) {
		t.Fatalf("expected ErrUnknownProduct, got %v", err)
	}
	if len(sink.captured()) != 0 {
		t.Error("no event should fire for unknown products")
	}
}

func TestResolveRelativeURL(t *testing.T) {
	svc := NewRedirectService("https://useworkframe.com", &captureSink{})

	result, err := svc.Resolve(context.Background(), ports.RedirectRequest{
		ProductSlug: "chat",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.DestinationURL != "https://useworkframe.com/products/chat" {
		t.Errorf("destination = %q", result.DestinationURL)
	}
}

func TestResolveSourceTag(t *testing.T) {
	svc := NewRedirectService("https://useworkframe.com", &captureSink{})

	result, err := svc.Resolve(context.Background(), ports.RedirectRequest{
		ProductSlug: "zettelkasten",
		SourceTag:   "newsletter",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	parsed, err := url.Parse(result.DestinationURL)
	if err != nil {
		t.Fatalf("parse destination: %v", err)
	}
	if got := parsed.Query().Get("utm_source"); got != "newsletter" {
		t.Errorf("utm_source = %q, want newsletter", got)
	}
	// The product URL's own query parameters survive the annotation.
	if got := parsed.Query().Get("duplicate"); got != "true" {
		t.Errorf("existing query parameter lost: duplicate = %q", got)
	}
}
