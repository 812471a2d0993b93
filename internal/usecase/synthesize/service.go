// Package synthesize turns retrieved chunks into a grounded answer.
package synthesize

import (
	"context"
	"fmt"

	"github.com/lexhub/contractqa/internal/domain/answer"
	"github.com/lexhub/contractqa/internal/domain/chunk"
)

// Service builds grounded prompts and requests completions.
type Service struct {
	llm Completer
}

// New creates a synthesis service.
func New(llm Completer) *Service {
	return &Service{llm: llm}
}

// Synthesize sends exactly one completion request for the query over the
// given chunks and returns the answer text plus a map from citation marker
// to the originating chunk's metadata. The chunk list must be non-empty;
// the pipeline short-circuits before reaching this call otherwise.
func (s *Service) Synthesize(ctx context.Context, queryText string, chunks []chunk.Chunk) (string, answer.Citations, error) {
	if len(chunks) == 0 {
		return "", nil, fmt.Errorf("no chunks to synthesize from")
	}

	text, err := s.llm.Complete(ctx, systemInstruction, buildPrompt(queryText, chunks))
	if err != nil {
		return "", nil, fmt.Errorf("synthesize answer: %w", err)
	}

	citations := make(answer.Citations, len(chunks))
	for i, c := range chunks {
		citations[fmt.Sprintf("[%d]", i+1)] = c.Meta
	}

	return text, citations, nil
}
