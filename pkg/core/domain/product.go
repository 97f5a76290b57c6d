package domain

import "sort"

// ProductConfig maps an allowlisted slug to its destination.
//
// The mapping is the sole open-redirect defense: the redirect endpoint only
// ever sends the browser to a URL stored here, keyed by exact slug match.
type ProductConfig struct {
	Slug        string `json:"slug"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PriceConfig holds the checkout pricing for purchasable products. Products
// without an entry cannot start a checkout session.
type PriceConfig struct {
	AmountCents int64
	Currency    string
	Name        string
}

var productMapping = map[string]ProductConfig{
	"quickread": {
		Slug:        "quickread",
		URL:         "https://chatgpt.com/g/g-689bf5fb269481918fccb4ffc7c32451-quickread",
		Name:        "QuickRead",
		Description: "Choose your next book with confidence",
	},
	"zettelkasten": {
		Slug:        "zettelkasten",
		URL:         "https://www.notion.so/Zettelkasten-26de70b7724b8088870acb39d8538f9e?duplicate=true&from=stripe",
		Name:        "Zettelkasten",
		Description: "Note-taking and knowledge management system",
	},
	"chat": {
		Slug:        "chat",
		URL:         "/products/chat",
		Name:        "Chat on a Page",
		Description: "AI chat interface for productivity",
	},
	"topic-atomizer": {
		Slug:        "topic-atomizer",
		URL:         "/products/topic-atomizer",
		Name:        "Topic Atomizer",
		Description: "Break down complex topics into digestible parts",
	},
	"chat-on-a-page": {
		Slug:        "chat-on-a-page",
		URL:         "/products/chat-on-a-page",
		Name:        "Chat on a Page",
		Description: "Embedded chat functionality",
	},
}

var priceMapping = map[string]PriceConfig{
	"quickread": {
		AmountCents: 1200, // $12.00
		Currency:    "usd",
		Name:        "QuickRead by WorkFrame",
	},
	"zettelkasten": {
		AmountCents: 2500, // $25.00
		Currency:    "usd",
		Name:        "Zettelkasten by WorkFrame",
	},
}

// ProductBySlug looks up a product by exact slug membership.
func ProductBySlug(slug string) (ProductConfig, bool) {
	p, ok := productMapping[slug]
	return p, ok
}

// PriceBySlug looks up checkout pricing by exact slug membership.
func PriceBySlug(slug string) (PriceConfig, bool) {
	p, ok := priceMapping[slug]
	return p, ok
}

// ProductSlugs returns all allowlisted slugs, sorted.
func ProductSlugs() []string {
	slugs := make([]string, 0, len(productMapping))
	for slug := range productMapping {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
