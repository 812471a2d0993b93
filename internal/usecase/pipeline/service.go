// Package pipeline composes retrieval, synthesis, caching, and result
// shaping into a single-scope search.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lexhub/contractqa/internal/domain/answer"
	"github.com/lexhub/contractqa/internal/domain/chunk"
	"github.com/lexhub/contractqa/internal/domain/query"
	"github.com/lexhub/contractqa/internal/logger"
	"github.com/lexhub/contractqa/internal/metrics"
)

// Service runs the single-scope search pipeline.
type Service struct {
	retriever Retriever
	synth     Synthesizer
	cache     Cache
	signer    Signer
	metric    chunk.Metric
}

// New creates a pipeline service. signer may be nil when object storage
// is not configured; snippets then carry no download URL.
func New(retriever Retriever, synth Synthesizer, cache Cache, signer Signer, metric chunk.Metric) *Service {
	return &Service{
		retriever: retriever,
		synth:     synth,
		cache:     cache,
		signer:    signer,
		metric:    metric,
	}
}

// Run executes embed, retrieve, synthesize, and shape for one request.
// It never returns an error: every failure becomes a SearchResult whose
// summary is prefixed "Error: ". ProcessingTime is wall-clock seconds
// including cache lookups.
func (s *Service) Run(ctx context.Context, req query.Request) answer.SearchResult {
	start := time.Now()

	raw, hit, err := s.cache.GetOrCompute(ctx, req, func(ctx context.Context) (answer.Raw, error) {
		return s.compute(ctx, req)
	})

	elapsed := time.Since(start).Seconds()

	if err != nil {
		logger.FromContext(ctx).Error("search pipeline failed",
			zap.String("account", req.Facets().Account),
			zap.Error(err))
		metrics.SearchRequestsTotal.WithLabelValues("single", "error").Inc()
		return answer.ErrorResult(req.Text(), req.Facets().Account, elapsed, err)
	}

	if hit {
		logger.FromContext(ctx).Debug("search served from cache",
			zap.String("account", req.Facets().Account))
	}

	metrics.SearchRequestsTotal.WithLabelValues("single", "success").Inc()
	metrics.SearchDuration.WithLabelValues("single").Observe(elapsed)

	return s.shape(ctx, req, raw, elapsed)
}

// compute is the uncached pipeline body: retrieve, then synthesize over
// the full unfiltered chunk set. Zero retrieved chunks short-circuit to
// the no-answer sentinel without calling the synthesizer.
func (s *Service) compute(ctx context.Context, req query.Request) (answer.Raw, error) {
	computeStart := time.Now()

	chunks, err := s.retriever.Retrieve(ctx, req.Text(), req.Facets(), req.TopK())
	if err != nil {
		return answer.Raw{}, err
	}

	if len(chunks) == 0 {
		return answer.Raw{
			Answer:    answer.NoAnswer,
			Citations: answer.Citations{},
			LatencyMS: float64(time.Since(computeStart).Milliseconds()),
		}, nil
	}

	text, citations, err := s.synth.Synthesize(ctx, req.Text(), chunks)
	if err != nil {
		return answer.Raw{}, err
	}

	return answer.Raw{
		Answer:    text,
		Citations: citations,
		LatencyMS: float64(time.Since(computeStart).Milliseconds()),
		Chunks:    chunks,
	}, nil
}
