package domain

// AttributionRecord is the correlation tuple that follows a marketing click
// from the redirect endpoint through checkout and back to the purchase
// webhook. The short JSON keys match the cookie format the site has always
// set, so records survive a deploy.
type AttributionRecord struct {
	Product       string `json:"p"`
	UserRef       string `json:"u,omitempty"`
	CorrelationID string `json:"rid"`
	CreatedAt     string `json:"ts"` // ISO-8601
}

// Valid reports whether all required fields are present. UserRef is optional.
func (r AttributionRecord) Valid() bool {
	return r.Product != "" && r.CorrelationID != "" && r.CreatedAt != ""
}

// RequestMeta carries the request headers we attach to analytics events.
type RequestMeta struct {
	Referrer  string
	UserAgent string
	SourceIP  string
}
