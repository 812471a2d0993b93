// Package aggregate fans a query out across accounts and reduces the
// per-account answers into a comparison table.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/lexhub/contractqa/internal/domain"
	"github.com/lexhub/contractqa/internal/domain/answer"
	"github.com/lexhub/contractqa/internal/domain/query"
	"github.com/lexhub/contractqa/internal/logger"
	"github.com/lexhub/contractqa/internal/metrics"
	"github.com/lexhub/contractqa/internal/usecase/synthesize"
)

// Pipeline runs a single-scope search, never returning an error.
type Pipeline interface {
	Run(ctx context.Context, req query.Request) answer.SearchResult
}

// Service runs the multi-account fan-out with a bounded worker pool.
type Service struct {
	pipeline Pipeline
	llm      synthesize.Completer
	pool     *ants.Pool
}

// New creates an aggregator with the given pool size.
func New(pipeline Pipeline, llm synthesize.Completer, workers int) (*Service, error) {
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Service{pipeline: pipeline, llm: llm, pool: pool}, nil
}

// Release shuts down the worker pool. The service must not be used after.
func (s *Service) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// RunMulti runs the single-scope pipeline once per named account and
// reduces the answers into a markdown comparison table. The "All"
// sentinel is skipped: multi-account search operates over explicit
// accounts only. Per-account failures surface as error-flavored results
// for that account; every requested account appears in the output map.
// Total processing time is wall-clock across the whole fan-out plus the
// reduction call.
func (s *Service) RunMulti(
	ctx context.Context,
	text string,
	accounts []string,
	facets query.Facets,
	topK int,
	minRelevance float64,
) (answer.MultiResult, error) {
	start := time.Now()

	named := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if a == "" || a == query.All {
			continue
		}
		named = append(named, a)
	}
	if len(named) == 0 {
		return answer.MultiResult{}, fmt.Errorf("%w: no accounts selected", domain.ErrNoAccounts)
	}

	results := make(map[string]answer.SearchResult, len(named))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, account := range named {
		account := account
		wg.Add(1)
		submit := func() {
			defer wg.Done()
			res := s.runAccount(ctx, text, account, facets, topK, minRelevance)
			mu.Lock()
			results[account] = res
			mu.Unlock()
		}
		if err := s.pool.Submit(submit); err != nil {
			// Pool rejected the task (released or overloaded): run inline
			// so the account still gets a result.
			submit()
		}
	}
	wg.Wait()

	table := s.reduce(ctx, text, named, results)

	elapsed := time.Since(start).Seconds()
	metrics.SearchRequestsTotal.WithLabelValues("multi", "success").Inc()
	metrics.SearchDuration.WithLabelValues("multi").Observe(elapsed)

	return answer.MultiResult{
		Query:               text,
		AccountResults:      results,
		TabularSummary:      table,
		TotalProcessingTime: elapsed,
	}, nil
}

// runAccount executes one per-account sub-search, isolating failures to
// this account only.
func (s *Service) runAccount(
	ctx context.Context,
	text, account string,
	facets query.Facets,
	topK int,
	minRelevance float64,
) answer.SearchResult {
	req, err := query.New(text, facets.WithAccount(account), topK, minRelevance)
	if err != nil {
		return answer.ErrorResult(text, account, 0, err)
	}
	return s.pipeline.Run(ctx, req)
}

const reduceInstruction = `You compare contract answers across clients.
Produce a markdown table with exactly three columns: Client | Answer | Summary.
"Answer" is a short categorical judgment such as Yes, No, Yes with limitations, or Unclear.
"Summary" is a one-sentence restatement of that client's finding. One row per client, no extra prose.`

// reduce requests one completion that folds all per-account answers into
// a comparison table. On failure it degrades to a heuristic verdict table
// built from the collected answers, which are never discarded.
func (s *Service) reduce(ctx context.Context, text string, named []string, results map[string]answer.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nPer-client answers:\n\n", text)
	for _, account := range named {
		fmt.Fprintf(&b, "%s:\n%s\n\n", account, results[account].Summary)
	}

	table, err := s.llm.Complete(ctx, reduceInstruction, b.String())
	if err != nil {
		logger.FromContext(ctx).Warn("comparison reduction failed", zap.Error(err))
		return fallbackTable(named, results)
	}
	return table
}

// fallbackTable builds the comparison table locally when the reduction
// call fails.
func fallbackTable(named []string, results map[string]answer.SearchResult) string {
	sorted := make([]string, len(named))
	copy(sorted, named)
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString("Comparison synthesis unavailable; showing per-client verdicts.\n\n")
	b.WriteString("| Client | Answer | Summary |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, account := range sorted {
		summary := results[account].Summary
		fmt.Fprintf(&b, "| %s | %s | %s |\n", account, verdict(summary), firstSentence(summary))
	}
	return b.String()
}
