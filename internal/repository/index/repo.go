// Package index reads ranked chunk neighbors from the vector index.
package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lexhub/contractqa/internal/db"
	"github.com/lexhub/contractqa/internal/domain/chunk"
	"github.com/lexhub/contractqa/internal/domain/filter"
)

// store is the consumer interface for index search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/retrieve.Index.
type Repo struct {
	store     store
	indexName string
}

// New creates an index repository over the given search index.
func New(s store, indexName string) *Repo {
	return &Repo{store: s, indexName: indexName}
}

var returnFields = []string{
	"text",
	"source_path",
	"file_name",
	"account",
	"document_type",
	"contract_title",
	"solution_line",
	"dates",
	"parties",
	"__vector_score",
}

// SearchKNN performs a KNN search with facet pre-filtering and returns
// ranked chunks ascending by distance, as ordered by the index.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, filters filter.Expression, topK int) ([]chunk.Chunk, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName,
		Filters:      filters,
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.indexName, err)
	}

	return parseKNNResults(sr), nil
}

// parseKNNResults converts db.SearchResult into []chunk.Chunk.
func parseKNNResults(sr *db.SearchResult) []chunk.Chunk {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	chunks := make([]chunk.Chunk, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		chunks = append(chunks, chunk.Chunk{
			Meta:     parseEntryFields(entry),
			Distance: entry.Distance,
		})
	}
	return chunks
}

// parseEntryFields parses a chunk entry from flat hash fields. Known
// fields fill the named metadata slots; everything else lands in Extra.
func parseEntryFields(entry db.SearchEntry) chunk.Metadata {
	meta := chunk.Metadata{}

	for k, v := range entry.Fields {
		switch k {
		case "text":
			meta.Text = v
		case "source_path", "s3_path":
			meta.SourcePath = v
		case "file_name":
			meta.FileName = v
		case "account":
			meta.Account = v
		case "document_type":
			meta.DocumentType = v
		case "contract_title":
			meta.ContractTitle = v
		case "solution_line":
			meta.SolutionLine = v
		case "dates":
			meta.Dates = parseStringList(v)
		case "parties":
			meta.Parties = parseStringList(v)
		default:
			if meta.Extra == nil {
				meta.Extra = make(map[string]string)
			}
			meta.Extra[k] = v
		}
	}

	if meta.FileName == "" && meta.SourcePath != "" {
		meta.FileName = baseName(meta.SourcePath)
	}

	return meta
}

// parseStringList decodes a JSON array field; a plain string value
// degrades to a single-element list instead of failing the entry.
func parseStringList(v string) []string {
	if v == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(v), &list); err != nil {
		return []string{v}
	}
	return list
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
