package chi

import (
	"github.com/lexhub/contractqa/internal/domain/query"
)

// searchRequest is the POST /search body.
type searchRequest struct {
	Query          string  `json:"query"`
	Account        string  `json:"account,omitempty"`
	AccountType    string  `json:"account_type,omitempty"`
	DocumentType   string  `json:"document_type,omitempty"`
	SolutionLine   string  `json:"solution_line,omitempty"`
	RelatedProduct string  `json:"related_product,omitempty"`
	TopK           int     `json:"top_k,omitempty"`
	MinRelevance   float64 `json:"min_relevance,omitempty"`
}

func (r *searchRequest) facets() query.Facets {
	return query.Facets{
		Account:        r.Account,
		AccountType:    r.AccountType,
		DocumentType:   r.DocumentType,
		SolutionLine:   r.SolutionLine,
		RelatedProduct: r.RelatedProduct,
	}
}

// multiSearchRequest is the POST /search/multi body. Accounts are
// explicit; the account facet comes from the fan-out, not the body.
type multiSearchRequest struct {
	Query          string   `json:"query"`
	Accounts       []string `json:"accounts"`
	AccountType    string   `json:"account_type,omitempty"`
	DocumentType   string   `json:"document_type,omitempty"`
	SolutionLine   string   `json:"solution_line,omitempty"`
	RelatedProduct string   `json:"related_product,omitempty"`
	TopK           int      `json:"top_k,omitempty"`
	MinRelevance   float64  `json:"min_relevance,omitempty"`
}

func (r *multiSearchRequest) facets() query.Facets {
	return query.Facets{
		AccountType:    r.AccountType,
		DocumentType:   r.DocumentType,
		SolutionLine:   r.SolutionLine,
		RelatedProduct: r.RelatedProduct,
	}
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeInternalError    = "internal_error"
)

// facetsResponse is the GET /facets body: the legal vocabulary for each
// facet, each implicitly prefixed with the "All" sentinel by clients.
type facetsResponse struct {
	Accounts        []string `json:"accounts"`
	AccountTypes    []string `json:"account_types"`
	DocumentTypes   []string `json:"document_types"`
	SolutionLines   []string `json:"solution_lines"`
	RelatedProducts []string `json:"related_products"`
}

// cacheEnabledRequest is the PUT /cache/enabled body.
type cacheEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

type cacheClearResponse struct {
	Removed int `json:"removed"`
}
