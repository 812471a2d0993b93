package query

import "fmt"

// All is the unset sentinel for facet filters and account selections.
// A facet holding All (or the empty string) contributes no retrieval
// restriction.
const All = "All"

// MaxTopK is the maximum number of neighbors a single request may ask for.
const MaxTopK = 50

// DefaultTopK is used when a request does not specify top_k.
const DefaultTopK = 5

// Facets are the structured retrieval filters. Each field is either a
// concrete vocabulary value or All/empty, meaning "no restriction".
type Facets struct {
	Account        string
	AccountType    string
	DocumentType   string
	SolutionLine   string
	RelatedProduct string
}

// IsSet reports whether a facet value is a concrete restriction.
func IsSet(v string) bool { return v != "" && v != All }

// WithAccount returns a copy of the facets with the account substituted.
// Used by the multi-account fan-out.
func (f Facets) WithAccount(account string) Facets {
	f.Account = account
	return f
}

// Request is an immutable single-scope search request. A new Request is
// built for every search; re-search never mutates an existing one.
type Request struct {
	text         string
	facets       Facets
	topK         int
	minRelevance float64
}

// New validates and creates a search request.
func New(text string, facets Facets, topK int, minRelevance float64) (Request, error) {
	if text == "" {
		return Request{}, fmt.Errorf("query text is required")
	}
	if topK == 0 {
		topK = DefaultTopK
	}
	if topK < 0 || topK > MaxTopK {
		return Request{}, fmt.Errorf("top_k must be between 1 and %d", MaxTopK)
	}
	if minRelevance < 0 || minRelevance > 1 {
		return Request{}, fmt.Errorf("min_relevance must be between 0 and 1")
	}
	return Request{text: text, facets: facets, topK: topK, minRelevance: minRelevance}, nil
}

// Text returns the free-text query.
func (r Request) Text() string { return r.text }

// Facets returns the structured filters.
func (r Request) Facets() Facets { return r.facets }

// TopK returns the neighbor count ceiling.
func (r Request) TopK() int { return r.topK }

// MinRelevance returns the post-synthesis display threshold.
func (r Request) MinRelevance() float64 { return r.minRelevance }
