package attribution

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/domain"
)

// Cookie settings for the attribution cookie.
const (
	CookieName   = "wf_attribution"
	CookieMaxAge = 7 * 24 * time.Hour
)

// TTL is how long an attribution record stays usable. Records older than
// this are treated as absent everywhere.
const TTL = 7 * 24 * time.Hour

// Reference scheme for the provider's client_reference_id field. The v1
// scheme is base64url(JSON), which stays unambiguous no matter what the
// encoded fields contain; the underscore-joined legacy scheme is still
// decoded so references minted by the old site reconcile.
const (
	refPrefix    = "v1."
	maxRefLength = 200 // provider field limit
	anonSentinel = "anon"
)

// ErrReferenceTooLong is returned when an encoded reference would exceed the
// provider's field limit. Callers degrade to an unattributed checkout rather
// than truncating mid-encoding.
var ErrReferenceTooLong = errors.New("attribution reference exceeds provider limit")

// Reference is the attribution payload carried through the external checkout
// provider and echoed back after payment.
type Reference struct {
	Product       string `json:"p"`
	UserRef       string `json:"u,omitempty"`
	CorrelationID string `json:"rid"`
	Timestamp     string `json:"ts"`
}

// NewRecord mints an attribution record for a fresh marketing click.
func NewRecord(product, userRef string) domain.AttributionRecord {
	return domain.AttributionRecord{
		Product:       product,
		UserRef:       userRef,
		CorrelationID: NewCorrelationID(),
		CreatedAt:     Timestamp(),
	}
}

// EncodeCookie serializes a record to its cookie value: JSON, then
// percent-encoded so the value is cookie-safe.
func EncodeCookie(r domain.AttributionRecord) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(b)), nil
}

// DecodeCookie parses a cookie value back into a record. Returns nil on any
// decode or validation failure; a bad cookie is the same as no cookie.
func DecodeCookie(value string) *domain.AttributionRecord {
	if value == "" {
		return nil
	}
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return nil
	}
	var r domain.AttributionRecord
	if err := json.Unmarshal([]byte(decoded), &r); err != nil {
		return nil
	}
	if !r.Valid() {
		return nil
	}
	return &r
}

// Expired reports whether the record is older than the attribution TTL.
// Records with an unparseable timestamp count as expired.
func Expired(r domain.AttributionRecord) bool {
	return expiredAt(r, time.Now())
}

func expiredAt(r domain.AttributionRecord, now time.Time) bool {
	created, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return true
	}
	return now.Sub(created) > TTL
}

// EncodeReference builds the opaque string embedded in the checkout
// provider's client reference field. The timestamp is refreshed so the
// reference marks when checkout began, not when the click landed.
func EncodeReference(r domain.AttributionRecord) (string, error) {
	ref := Reference{
		Product:       r.Product,
		UserRef:       r.UserRef,
		CorrelationID: r.CorrelationID,
		Timestamp:     Timestamp(),
	}
	b, err := json.Marshal(ref)
	if err != nil {
		return "", err
	}
	encoded := refPrefix + base64.RawURLEncoding.EncodeToString(b)
	if len(encoded) > maxRefLength {
		return "", ErrReferenceTooLong
	}
	return encoded, nil
}

// DecodeReference parses a client reference back into its attribution
// payload. Returns nil when the shape doesn't match either scheme.
func DecodeReference(ref string) *Reference {
	if strings.HasPrefix(ref, refPrefix) {
		b, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(ref, refPrefix))
		if err != nil {
			return nil
		}
		var r Reference
		if err := json.Unmarshal(b, &r); err != nil {
			return nil
		}
		if r.Product == "" || r.CorrelationID == "" {
			return nil
		}
		return &r
	}
	return decodeLegacyReference(ref)
}

// decodeLegacyReference handles the old product_userref_rid_millis join
// format. Splitting is ambiguous when the user reference itself contains an
// underscore; those references decode wrong, which is why the format was
// replaced.
func decodeLegacyReference(ref string) *Reference {
	parts := strings.Split(ref, "_")
	if len(parts) < 4 {
		return nil
	}
	userRef := parts[1]
	if userRef == anonSentinel {
		userRef = ""
	}
	ts := ""
	if millis, err := strconv.ParseInt(parts[3], 10, 64); err == nil {
		ts = time.UnixMilli(millis).UTC().Format(time.RFC3339Nano)
	}
	return &Reference{
		Product:       parts[0],
		UserRef:       userRef,
		CorrelationID: parts[2],
		Timestamp:     ts,
	}
}

// Record converts a decoded reference back into an attribution record.
func (r Reference) Record() domain.AttributionRecord {
	return domain.AttributionRecord{
		Product:       r.Product,
		UserRef:       r.UserRef,
		CorrelationID: r.CorrelationID,
		CreatedAt:     r.Timestamp,
	}
}
