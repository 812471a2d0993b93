package pipeline

import (
	"context"
	"fmt"

	"github.com/lexhub/contractqa/internal/domain/answer"
	"github.com/lexhub/contractqa/internal/domain/chunk"
	"github.com/lexhub/contractqa/internal/domain/query"
)

// shape converts the raw pipeline tuple into the display SearchResult:
// relevance scores per chunk, min_relevance display filtering, and signed
// download URLs. Snippet IDs index the raw pre-filter chunk list so detail
// views can resolve them against the cached entry.
func (s *Service) shape(ctx context.Context, req query.Request, raw answer.Raw, elapsed float64) answer.SearchResult {
	snippets := make([]answer.Snippet, 0, len(raw.Chunks))

	for i, c := range raw.Chunks {
		score := chunk.Relevance(s.metric, c.Distance)
		if score < req.MinRelevance() {
			continue
		}

		snippet := answer.Snippet{
			ID:             fmt.Sprintf("chunk_%d", i),
			Title:          snippetTitle(c.Meta),
			Content:        c.Meta.Text,
			Source:         c.Meta.SourcePath,
			Section:        c.Meta.DocumentType,
			RelevanceScore: score,
			Distance:       c.Distance,
			Metadata:       c.Meta,
		}
		if s.signer != nil && c.Meta.SourcePath != "" {
			snippet.DownloadURL = s.signer.SignURL(ctx, c.Meta.SourcePath)
		}

		snippets = append(snippets, snippet)
	}

	return answer.SearchResult{
		Query:          req.Text(),
		Summary:        raw.Answer,
		Snippets:       snippets,
		AccountFilter:  req.Facets().Account,
		TotalDocuments: len(snippets),
		ProcessingTime: elapsed,
	}
}

func snippetTitle(m chunk.Metadata) string {
	if m.ContractTitle != "" {
		return m.ContractTitle
	}
	if m.FileName != "" {
		return m.FileName
	}
	return m.SourcePath
}
