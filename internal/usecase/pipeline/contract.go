package pipeline

import (
	"context"

	"github.com/lexhub/contractqa/internal/domain/answer"
	"github.com/lexhub/contractqa/internal/domain/chunk"
	"github.com/lexhub/contractqa/internal/domain/query"
)

// Retriever returns the ranked chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, text string, facets query.Facets, topK int) ([]chunk.Chunk, error)
}

// Synthesizer produces a grounded answer over retrieved chunks.
type Synthesizer interface {
	Synthesize(ctx context.Context, queryText string, chunks []chunk.Chunk) (string, answer.Citations, error)
}

// Cache stores complete raw pipeline results per request.
type Cache interface {
	GetOrCompute(ctx context.Context, req query.Request, compute func(context.Context) (answer.Raw, error)) (answer.Raw, bool, error)
}

// Signer mints a time-limited download URL for a stored-object path.
// An empty string means "no download available".
type Signer interface {
	SignURL(ctx context.Context, path string) string
}
