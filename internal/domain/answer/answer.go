package answer

import (
	"fmt"

	"github.com/lexhub/contractqa/internal/domain/chunk"
)

// NoAnswer is the summary sentinel returned when retrieval finds nothing
// and synthesis is skipped.
const NoAnswer = "No answer generated"

// Citations maps a bracketed citation marker ("[1]", "[2]", ...) to the
// metadata of the chunk it grounds.
type Citations map[string]chunk.Metadata

// Raw is the unformatted single-scope pipeline output: the synthesized
// answer, its citation map, compute latency, and the ranked raw chunks.
// This is the unit the result cache stores.
type Raw struct {
	Answer    string        `json:"answer"`
	Citations Citations     `json:"citations"`
	LatencyMS float64       `json:"latency_ms"`
	Chunks    []chunk.Chunk `json:"chunks"`
}

// Snippet is a retrieved chunk shaped for display. ID is stable within
// the result so detail views can look the chunk back up.
type Snippet struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	Source         string         `json:"source"`
	Section        string         `json:"section,omitempty"`
	RelevanceScore float64        `json:"relevance_score"`
	Distance       float64        `json:"distance"`
	DownloadURL    string         `json:"download_url,omitempty"`
	Metadata       chunk.Metadata `json:"metadata"`
}

// SearchResult is the complete single-scope outcome. Summary starting
// with "Error: " signals a degraded result; the pipeline boundary never
// surfaces a raised error instead of one of these.
type SearchResult struct {
	Query          string    `json:"query"`
	Summary        string    `json:"summary"`
	Snippets       []Snippet `json:"snippets"`
	AccountFilter  string    `json:"account_filter,omitempty"`
	TotalDocuments int       `json:"total_documents"`
	ProcessingTime float64   `json:"processing_time"`
}

// ErrorResult builds the degraded SearchResult for a failed search.
func ErrorResult(queryText, account string, elapsed float64, err error) SearchResult {
	return SearchResult{
		Query:          queryText,
		Summary:        fmt.Sprintf("Error: %v", err),
		AccountFilter:  account,
		ProcessingTime: elapsed,
	}
}

// MultiResult is the multi-account outcome: one SearchResult per
// requested account (error-flavored on per-account failure, never
// omitted) plus the cross-account comparison table.
type MultiResult struct {
	Query               string                  `json:"query"`
	AccountResults      map[string]SearchResult `json:"account_results"`
	TabularSummary      string                  `json:"tabular_summary"`
	TotalProcessingTime float64                 `json:"total_processing_time"`
}
