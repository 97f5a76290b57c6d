package attribution

import (
	"strings"
	"testing"
	"time"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/domain"
)

func TestCookieRoundTrip(t *testing.T) {
	record := NewRecord("quickread", "user123")

	encoded, err := EncodeCookie(record)
	if err != nil {
		t.Fatalf("EncodeCookie: %v", err)
	}

	decoded := DecodeCookie(encoded)
	if decoded == nil {
		t.Fatal("DecodeCookie returned nil")
	}
	if *decoded != record {
		t.Errorf("round trip mismatch: got %+v, want %+v", *decoded, record)
	}
}

func TestCookieRoundTripAnonymous(t *testing.T) {
	record := NewRecord("zettelkasten", "")

	encoded, err := EncodeCookie(record)
	if err != nil {
		t.Fatalf("EncodeCookie: %v", err)
	}
	decoded := DecodeCookie(encoded)
	if decoded == nil {
		t.Fatal("DecodeCookie returned nil")
	}
	if decoded.UserRef != "" {
		t.Errorf("UserRef = %q, want empty", decoded.UserRef)
	}
}

func TestDecodeCookieFailures(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"not json", "%7Bnope"},
		{"bad percent encoding", "%zz"},
		{"missing rid", `%7B%22p%22%3A%22quickread%22%2C%22ts%22%3A%222024-01-01T00%3A00%3A00Z%22%7D`},
		{"empty object", "%7B%7D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeCookie(tt.value); got != nil {
				t.Errorf("DecodeCookie(%q) = %+v, want nil", tt.value, got)
			}
		})
	}
}

func TestExpiredBoundary(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt time.Time
		want      bool
	}{
		{"7 days 1 second ago", now.Add(-(7*24*time.Hour + time.Second)), true},
		{"6 days 23 hours ago", now.Add(-(6*24*time.Hour + 23*time.Hour)), false},
		{"just now", now, false},
		{"10 days ago", now.Add(-10 * 24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := domain.AttributionRecord{
				Product:       "quickread",
				CorrelationID: "rid",
				CreatedAt:     tt.createdAt.Format(time.RFC3339Nano),
			}
			if got := expiredAt(record, now); got != tt.want {
				t.Errorf("expiredAt = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpiredUnparseableTimestamp(t *testing.T) {
	record := domain.AttributionRecord{
		Product:       "quickread",
		CorrelationID: "rid",
		CreatedAt:     "not-a-timestamp",
	}
	if !Expired(record) {
		t.Error("record with unparseable timestamp should count as expired")
	}
}

func TestReferenceRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		product string
		userRef string
	}{
		{"with user", "quickread", "user123"},
		{"anonymous", "quickread", ""},
		{"user with underscore", "zettelkasten", "user_123_abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := NewRecord(tt.product, tt.userRef)
			ref, err := EncodeReference(record)
			if err != nil {
				t.Fatalf("EncodeReference: %v", err)
			}
			if len(ref) > 200 {
				t.Errorf("reference length %d exceeds provider limit", len(ref))
			}

			decoded := DecodeReference(ref)
			if decoded == nil {
				t.Fatal("DecodeReference returned nil")
			}
			if decoded.Product != tt.product {
				t.Errorf("Product = %q, want %q", decoded.Product, tt.product)
			}
			if decoded.UserRef != tt.userRef {
				t.Errorf("UserRef = %q, want %q", decoded.UserRef, tt.userRef)
			}
			if decoded.CorrelationID != record.CorrelationID {
				t.Errorf("CorrelationID = %q, want %q", decoded.CorrelationID, record.CorrelationID)
			}
		})
	}
}

func TestEncodeReferenceTooLong(t *testing.T) {
	record := domain.AttributionRecord{
		Product:       "quickread",
		UserRef:       strings.Repeat("u", 100),
		CorrelationID: strings.Repeat("f", 64),
		CreatedAt:     Timestamp(),
	}
	if _, err := EncodeReference(record); err != ErrReferenceTooLong {
		t.Errorf("expected ErrReferenceTooLong, got %v", err)
	}
}

func TestDecodeLegacyReference(t *testing.T) {
	ref := DecodeReference("quickread_user123_abcdef0123456789_1718000000000")
	if ref == nil {
		t.Fatal("legacy reference did not decode")
	}
	if ref.Product != "quickread" || ref.UserRef != "user123" || ref.CorrelationID != "abcdef0123456789" {
		t.Errorf("unexpected decode: %+v", ref)
	}

	anon := DecodeReference("quickread_anon_abcdef0123456789_1718000000000")
	if anon == nil {
		t.Fatal("legacy anonymous reference did not decode")
	}
	if anon.UserRef != "" {
		t.Errorf("anon sentinel should decode to empty user ref, got %q", anon.UserRef)
	}
}

func TestDecodeReferenceFailures(t *testing.T) {
	tests := []string{
		"",
		"v1.!!!not-base64!!!",
		"v1." + "e30", // {} — missing required fields
		"too_few",
		"just-one-segment",
	}
	for _, ref := range tests {
		if got := DecodeReference(ref); got != nil {
			t.Errorf("DecodeReference(%q) = %+v, want nil", ref, got)
		}
	}
}

func TestNewCorrelationID(t *testing.T) {
	a := NewCorrelationID()
	b := NewCorrelationID()
	if len(a) != 32 {
		t.Errorf("correlation id length = %d, want 32 hex chars", len(a))
	}
	if a == b {
		t.Error("correlation ids should not collide")
	}
}
