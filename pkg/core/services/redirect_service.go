package services

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/attribution"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/domain"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/ports"
)

// sourceParam is the query parameter a traffic-source tag is attached under
// on the destination URL.
const sourceParam = "utm_source"

type RedirectService struct {
	baseURL string
	sink    ports.AnalyticsSink
}

func NewRedirectService(baseURL string, sink ports.AnalyticsSink) *RedirectService {
	return &RedirectService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		sink:    sink,
	}
}

// Resolve validates a marketing click, mints its attribution record, and
// fires the redirect event. Validation is the only failure that blocks the
// redirect; analytics delivery happens in the background.
func (s *RedirectService) Resolve(ctx context.Context, req ports.RedirectRequest) (*ports.RedirectResult, error) {
	slug, userRef, sourceTag, errs := validateRedirectParams(req)
	if len(errs) > 0 {
		return nil, errs
	}

	product, ok := domain.ProductBySlug(slug)
	if !ok {
		return nil, domain.ErrUnknownProduct
	}

	record := attribution.NewRecord(slug, userRef)

	destination, err := buildDestination(s.baseURL, product.URL, sourceTag)
	if err != nil {
		return nil, err
	}

	event := domain.RedirectEvent{
		BaseEvent: domain.BaseEvent{
			EventType: domain.EventRedirectToProduct,
			RequestID: record.CorrelationID,
			Timestamp: record.CreatedAt,
			Product:   slug,
			UserID:    userRef,
			Referrer:  req.Meta.Referrer,
			UserAgent: req.Meta.UserAgent,
			SourceIP:  req.Meta.SourceIP,
			Source:    sourceTag,
		},
		DestinationURL: destination,
		RedirectStatus: http.StatusFound,
	}
	s.sink.Submit(event)

	return &ports.RedirectResult{
		DestinationURL: destination,
		Record:         record,
	}, nil
}

func validateRedirectParams(req ports.RedirectRequest) (slug, userRef, sourceTag string, errs domain.ValidationErrors) {
	slug = domain.SanitizeInput(req.ProductSlug)
	if req.ProductSlug == "" {
		errs = append(errs, domain.FieldError{
			Field:   "p",
			Message: "Product slug is required",
		})
	} else if slug == "" || !domain.ValidProductSlug(slug) {
		errs = append(errs, domain.FieldError{
			Field:    "p",
			Message:  "Invalid product slug format",
			Received: req.ProductSlug,
		})
	}

	if req.UserRef != "" {
		userRef = domain.SanitizeInput(req.UserRef)
		if userRef == "" || !domain.ValidUserRef(userRef) {
			userRef = ""
			errs = append(errs, domain.FieldError{
				Field:    "u",
				Message:  "Invalid user reference format",
				Received: req.UserRef,
			})
		}
	}

	if req.SourceTag != "" {
		sourceTag = domain.SanitizeInput(req.SourceTag)
		if sourceTag == "" || !domain.ValidSourceTag(sourceTag) {
			sourceTag = ""
			errs = append(errs, domain.FieldError{
				Field:    "source",
				Message:  "Invalid source tag format",
				Received: req.SourceTag,
			})
		}
	}

	return slug, userRef, sourceTag, errs
}

// buildDestination resolves a product URL against the site origin and
// attaches the traffic-source tag when present. Absolute product URLs are
// used verbatim.
func buildDestination(baseURL, productURL, sourceTag string) (string, error) {
	destination := productURL
	if !strings.HasPrefix(destination, "http") {
		destination = baseURL + destination
	}
	if sourceTag == "" {
		return destination, nil
	}

	parsed, err := url.Parse(destination)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set(sourceParam, sourceTag)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
