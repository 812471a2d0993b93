// Package retrieve turns query text plus facet filters into ranked chunks.
package retrieve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lexhub/contractqa/internal/domain/chunk"
	"github.com/lexhub/contractqa/internal/domain/filter"
	"github.com/lexhub/contractqa/internal/domain/query"
	"github.com/lexhub/contractqa/internal/logger"
)

// Service embeds a query and runs a filtered KNN search.
type Service struct {
	embed Embedder
	index Index
}

// New creates a retrieval service.
func New(embed Embedder, index Index) *Service {
	return &Service{embed: embed, index: index}
}

// Retrieve returns the top-K chunks for the query text, ascending by
// distance as ordered by the index. An embedding failure yields an empty
// result, not an error: zero chunks is a valid outcome the caller must
// handle either way.
func (s *Service) Retrieve(ctx context.Context, text string, facets query.Facets, topK int) ([]chunk.Chunk, error) {
	vector, err := s.embed.Embed(ctx, text)
	if err != nil || len(vector) == 0 {
		logger.FromContext(ctx).Warn("query embedding failed, returning no results", zap.Error(err))
		return nil, nil
	}

	filters, err := filterFromFacets(facets)
	if err != nil {
		return nil, fmt.Errorf("build facet filter: %w", err)
	}

	chunks, err := s.index.SearchKNN(ctx, vector, filters, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return chunks, nil
}

// filterFromFacets builds the conjunctive filter expression. Unset and
// "All" facets contribute no condition.
func filterFromFacets(f query.Facets) (filter.Expression, error) {
	pairs := []struct {
		key   string
		value string
	}{
		{"account", f.Account},
		{"account_type", f.AccountType},
		{"document_type", f.DocumentType},
		{"solution_line", f.SolutionLine},
		{"related_product", f.RelatedProduct},
	}

	var must []filter.Condition
	for _, p := range pairs {
		if !query.IsSet(p.value) {
			continue
		}
		cond, err := filter.NewMatch(p.key, p.value)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, cond)
	}

	return filter.NewExpression(must)
}
