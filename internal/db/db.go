package db

import (
	"context"
	"time"

	"github.com/lexhub/contractqa/internal/domain/filter"
)

// Store is the database facade for the vector index backend. Consumers
// depend on the narrow sub-interfaces, not on Store itself.
type Store interface {
	Pinger
	KVStore
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations (query embedding cache).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Searcher provides nearest-neighbor search over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// KNNQuery describes a K-nearest-neighbor query with an optional
// metadata pre-filter.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	Filters      filter.Expression
	K            int
	ReturnFields []string
}

// SearchResult holds raw FT.SEARCH output.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit: the document key, the raw index distance
// (as reported by the index, no similarity transform), and its fields.
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
