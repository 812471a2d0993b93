package pipeline

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/lexhub/contractqa/internal/domain/answer"
	"github.com/lexhub/contractqa/internal/domain/chunk"
	"github.com/lexhub/contractqa/internal/domain/query"
)

type mockRetriever struct {
	retrieveFn func(ctx context.Context, text string, facets query.Facets, topK int) ([]chunk.Chunk, error)
	calls      int
}

func (m *mockRetriever) Retrieve(ctx context.Context, text string, facets query.Facets, topK int) ([]chunk.Chunk, error) {
	m.calls++
	return m.retrieveFn(ctx, text, facets, topK)
}

type mockSynthesizer struct {
	synthesizeFn func(ctx context.Context, queryText string, chunks []chunk.Chunk) (string, answer.Citations, error)
	calls        int
	lastChunks   []chunk.Chunk
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, queryText string, chunks []chunk.Chunk) (string, answer.Citations, error) {
	m.calls++
	m.lastChunks = chunks
	return m.synthesizeFn(ctx, queryText, chunks)
}

// passCache runs compute directly, recording nothing.
type passCache struct{}

func (passCache) GetOrCompute(ctx context.Context, _ query.Request, compute func(context.Context) (answer.Raw, error)) (answer.Raw, bool, error) {
	raw, err := compute(ctx)
	return raw, false, err
}

type stubSigner struct{ url string }

func (s stubSigner) SignURL(context.Context, string) string { return s.url }

func mustRequest(t *testing.T, text string, facets query.Facets, topK int, minRelevance float64) query.Request {
	t.Helper()
	req, err := query.New(text, facets, topK, minRelevance)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	return req
}

func TestRun_EndToEnd(t *testing.T) {
	retriever := &mockRetriever{
		retrieveFn: func(_ context.Context, _ string, facets query.Facets, topK int) ([]chunk.Chunk, error) {
			if facets.Account != "Aetna" {
				t.Errorf("unexpected account facet: %s", facets.Account)
			}
			if topK != 3 {
				t.Errorf("unexpected topK: %d", topK)
			}
			return []chunk.Chunk{
				{Meta: chunk.Metadata{Text: "Retained 7 years.", SourcePath: "s3://c/aetna/msa.pdf", ContractTitle: "MSA"}, Distance: 0.05},
				{Meta: chunk.Metadata{Text: "Backups 90 days.", SourcePath: "s3://c/aetna/dpa.pdf"}, Distance: 0.12},
			}, nil
		},
	}
	synth := &mockSynthesizer{
		synthesizeFn: func(_ context.Context, _ string, chunks []chunk.Chunk) (string, answer.Citations, error) {
			return "Retention is 7 years [1].", answer.Citations{"[1]": chunks[0].Meta}, nil
		},
	}

	svc := New(retriever, synth, passCache{}, stubSigner{url: "https://signed.example/msa.pdf"}, chunk.MetricCosine)
	req := mustRequest(t, "What are the data retention requirements?", query.Facets{Account: "Aetna"}, 3, 0)

	res := svc.Run(context.Background(), req)

	if res.TotalDocuments != 2 {
		t.Fatalf("expected 2 documents, got %d", res.TotalDocuments)
	}
	if !strings.Contains(res.Summary, "[1]") {
		t.Errorf("summary missing citation marker: %q", res.Summary)
	}
	if math.Abs(res.Snippets[0].RelevanceScore-0.95) > 1e-9 {
		t.Errorf("snippet 0 relevance = %f, want 0.95", res.Snippets[0].RelevanceScore)
	}
	if math.Abs(res.Snippets[1].RelevanceScore-0.88) > 1e-9 {
		t.Errorf("snippet 1 relevance = %f, want 0.88", res.Snippets[1].RelevanceScore)
	}
	if res.Snippets[0].ID != "chunk_0" || res.Snippets[1].ID != "chunk_1" {
		t.Errorf("unexpected snippet IDs: %s, %s", res.Snippets[0].ID, res.Snippets[1].ID)
	}
	if res.Snippets[0].Title != "MSA" {
		t.Errorf("expected contract title as snippet title, got %q", res.Snippets[0].Title)
	}
	if res.Snippets[0].DownloadURL != "https://signed.example/msa.pdf" {
		t.Errorf("expected signed URL, got %q", res.Snippets[0].DownloadURL)
	}
	if res.AccountFilter != "Aetna" {
		t.Errorf("unexpected account filter: %s", res.AccountFilter)
	}
	if res.ProcessingTime < 0 {
		t.Errorf("negative processing time: %f", res.ProcessingTime)
	}
}

func TestRun_EmptyRetrievalShortCircuits(t *testing.T) {
	retriever := &mockRetriever{
		retrieveFn: func(_ context.Context, _ string, _ query.Facets, _ int) ([]chunk.Chunk, error) {
			return nil, nil
		},
	}
	synth := &mockSynthesizer{
		synthesizeFn: func(_ context.Context, _ string, _ []chunk.Chunk) (string, answer.Citations, error) {
			return "should not run", nil, nil
		},
	}

	svc := New(retriever, synth, passCache{}, nil, chunk.MetricCosine)
	res := svc.Run(context.Background(), mustRequest(t, "q", query.Facets{}, 5, 0))

	if synth.calls != 0 {
		t.Fatal("synthesizer must not run on empty retrieval")
	}
	if res.TotalDocuments != 0 {
		t.Fatalf("expected 0 documents, got %d", res.TotalDocuments)
	}
	if res.Summary != answer.NoAnswer {
		t.Fatalf("expected no-answer sentinel, got %q", res.Summary)
	}
}

func TestRun_MinRelevanceFiltersAfterSynthesis(t *testing.T) {
	// Cosine distances giving relevance scores 0.9, 0.4, 0.1.
	retriever := &mockRetriever{
		retrieveFn: func(_ context.Context, _ string, _ query.Facets, _ int) ([]chunk.Chunk, error) {
			return []chunk.Chunk{
				{Meta: chunk.Metadata{Text: "a"}, Distance: 0.1},
				{Meta: chunk.Metadata{Text: "b"}, Distance: 0.6},
				{Meta: chunk.Metadata{Text: "c"}, Distance: 0.9},
			}, nil
		},
	}
	synth := &mockSynthesizer{
		synthesizeFn: func(_ context.Context, _ string, _ []chunk.Chunk) (string, answer.Citations, error) {
			return "answer [1]", answer.Citations{}, nil
		},
	}

	svc := New(retriever, synth, passCache{}, nil, chunk.MetricCosine)
	res := svc.Run(context.Background(), mustRequest(t, "q", query.Facets{}, 5, 0.5))

	// The synthesizer always sees the full unfiltered chunk set.
	if len(synth.lastChunks) != 3 {
		t.Fatalf("synthesizer saw %d chunks, want 3", len(synth.lastChunks))
	}
	if res.TotalDocuments != 1 {
		t.Fatalf("expected 1 displayed snippet, got %d", res.TotalDocuments)
	}
	if math.Abs(res.Snippets[0].RelevanceScore-0.9) > 1e-9 {
		t.Errorf("surviving snippet relevance = %f, want 0.9", res.Snippets[0].RelevanceScore)
	}
	// The snippet ID still points at the pre-filter position.
	if res.Snippets[0].ID != "chunk_0" {
		t.Errorf("unexpected snippet ID: %s", res.Snippets[0].ID)
	}
}

func TestRun_EmbeddingFailureYieldsEmptyResult(t *testing.T) {
	// Retriever models its embedding-failure contract: empty, no error.
	retriever := &mockRetriever{
		retrieveFn: func(_ context.Context, _ string, _ query.Facets, _ int) ([]chunk.Chunk, error) {
			return nil, nil
		},
	}
	synth := &mockSynthesizer{
		synthesizeFn: func(_ context.Context, _ string, _ []chunk.Chunk) (string, answer.Citations, error) {
			return "", nil, errors.New("should not run")
		},
	}

	svc := New(retriever, synth, passCache{}, nil, chunk.MetricCosine)
	res := svc.Run(context.Background(), mustRequest(t, "q", query.Facets{}, 5, 0))

	if res.TotalDocuments != 0 {
		t.Fatalf("expected 0 documents, got %d", res.TotalDocuments)
	}
	if strings.HasPrefix(res.Summary, "Error:") {
		t.Fatalf("embedding failure must not produce an error summary, got %q", res.Summary)
	}
}

func TestRun_ErrorsBecomeErrorResults(t *testing.T) {
	retriever := &mockRetriever{
		retrieveFn: func(_ context.Context, _ string, _ query.Facets, _ int) ([]chunk.Chunk, error) {
			return nil, errors.New("index down")
		},
	}
	synth := &mockSynthesizer{
		synthesizeFn: func(_ context.Context, _ string, _ []chunk.Chunk) (string, answer.Citations, error) {
			return "", nil, nil
		},
	}

	svc := New(retriever, synth, passCache{}, nil, chunk.MetricCosine)
	res := svc.Run(context.Background(), mustRequest(t, "q", query.Facets{Account: "Aetna"}, 5, 0))

	if !strings.HasPrefix(res.Summary, "Error: ") {
		t.Fatalf("expected error summary, got %q", res.Summary)
	}
	if !strings.Contains(res.Summary, "index down") {
		t.Errorf("summary missing failure detail: %q", res.Summary)
	}
	if res.TotalDocuments != 0 || len(res.Snippets) != 0 {
		t.Error("error result must carry zero documents")
	}
	if res.AccountFilter != "Aetna" {
		t.Errorf("unexpected account filter: %s", res.AccountFilter)
	}
}

func TestRun_CachedResultSkipsCompute(t *testing.T) {
	cached := answer.Raw{
		Answer:    "cached answer [1]",
		Citations: answer.Citations{},
		LatencyMS: 42,
		Chunks:    []chunk.Chunk{{Meta: chunk.Metadata{Text: "a"}, Distance: 0.2}},
	}
	cache := &spyCache{raw: cached}

	retriever := &mockRetriever{
		retrieveFn: func(_ context.Context, _ string, _ query.Facets, _ int) ([]chunk.Chunk, error) {
			t.Fatal("retriever must not run on cache hit")
			return nil, nil
		},
	}
	synth := &mockSynthesizer{
		synthesizeFn: func(_ context.Context, _ string, _ []chunk.Chunk) (string, answer.Citations, error) {
			t.Fatal("synthesizer must not run on cache hit")
			return "", nil, nil
		},
	}

	svc := New(retriever, synth, cache, nil, chunk.MetricCosine)
	res := svc.Run(context.Background(), mustRequest(t, "q", query.Facets{}, 5, 0))

	if res.Summary != "cached answer [1]" {
		t.Fatalf("unexpected summary: %q", res.Summary)
	}
	if res.TotalDocuments != 1 {
		t.Fatalf("expected 1 document from cached chunks, got %d", res.TotalDocuments)
	}
}

// spyCache returns a fixed hit without invoking compute.
type spyCache struct{ raw answer.Raw }

func (s *spyCache) GetOrCompute(_ context.Context, _ query.Request, _ func(context.Context) (answer.Raw, error)) (answer.Raw, bool, error) {
	return s.raw, true, nil
}
