package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownProduct is returned for slugs outside the product allowlist.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrNoPrice is returned when a product has no checkout pricing.
	ErrNoPrice = errors.New("product has no price configuration")

	// ErrNoAttribution marks a valid purchase callback that carried no
	// recoverable attribution data. Callers degrade to an unattributed flow.
	ErrNoAttribution = errors.New("no attribution data")
)

// FieldError describes a single validation problem, reported back to the
// caller with the offending field and the value received.
type FieldError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Received string `json:"received,omitempty"`
}

// ValidationErrors aggregates per-field validation problems for a request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	fields := make([]string, len(v))
	for i, fe := range v {
		fields[i] = fe.Field
	}
	return fmt.Sprintf("invalid request parameters: %s", strings.Join(fields, ", "))
}
