package attribution

import (
	"crypto/rand"
	"encoding/hex"
	mathrand "math/rand"
	"time"
)

// NewCorrelationID returns 128 bits of randomness, hex-encoded. Correlation
// ids are opaque join keys, not security tokens, so if the system random
// source is unavailable we fall back to best-effort randomness rather than
// failing the redirect.
func NewCorrelationID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		for i := range b {
			b[i] = byte(mathrand.Intn(256))
		}
	}
	return hex.EncodeToString(b)
}

// Timestamp returns the current time as an ISO-8601 string.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
