package retrieve

import (
	"context"

	"github.com/lexhub/contractqa/internal/domain/chunk"
	"github.com/lexhub/contractqa/internal/domain/filter"
)

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index runs nearest-neighbor queries against the vector index.
type Index interface {
	SearchKNN(ctx context.Context, vector []float32, filters filter.Expression, topK int) ([]chunk.Chunk, error)
}
