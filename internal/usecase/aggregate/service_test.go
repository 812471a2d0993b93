package aggregate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/lexhub/contractqa/internal/domain"
	"github.com/lexhub/contractqa/internal/domain/answer"
	"github.com/lexhub/contractqa/internal/domain/query"
)

type mockPipeline struct {
	runFn func(ctx context.Context, req query.Request) answer.SearchResult

	mu       sync.Mutex
	accounts []string
}

func (m *mockPipeline) Run(ctx context.Context, req query.Request) answer.SearchResult {
	m.mu.Lock()
	m.accounts = append(m.accounts, req.Facets().Account)
	m.mu.Unlock()
	return m.runFn(ctx, req)
}

type mockCompleter struct {
	completeFn func(ctx context.Context, system, user string) (string, error)

	mu    sync.Mutex
	calls int
	user  string
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.user = user
	m.mu.Unlock()
	return m.completeFn(ctx, system, user)
}

func newTestService(t *testing.T, p *mockPipeline, llm *mockCompleter) *Service {
	t.Helper()
	svc, err := New(p, llm, 2)
	if err != nil {
		t.Fatalf("create aggregator: %v", err)
	}
	t.Cleanup(svc.Release)
	return svc
}

func TestRunMulti_HappyPath(t *testing.T) {
	p := &mockPipeline{
		runFn: func(_ context.Context, req query.Request) answer.SearchResult {
			return answer.SearchResult{
				Query:         req.Text(),
				Summary:       "Yes, retention is 7 years for " + req.Facets().Account,
				AccountFilter: req.Facets().Account,
			}
		},
	}
	llm := &mockCompleter{
		completeFn: func(_ context.Context, _, _ string) (string, error) {
			return "| Client | Answer | Summary |\n| Acme | Yes | 7 years |", nil
		},
	}

	svc := newTestService(t, p, llm)
	res, err := svc.RunMulti(context.Background(), "retention?", []string{"Acme", "Globex"}, query.Facets{DocumentType: "MSA"}, 5, 0)
	if err != nil {
		t.Fatalf("RunMulti failed: %v", err)
	}

	if len(res.AccountResults) != 2 {
		t.Fatalf("expected 2 account results, got %d", len(res.AccountResults))
	}
	for _, account := range []string{"Acme", "Globex"} {
		if _, ok := res.AccountResults[account]; !ok {
			t.Errorf("missing result for %s", account)
		}
	}
	if !strings.Contains(res.TabularSummary, "| Client | Answer | Summary |") {
		t.Errorf("unexpected table: %q", res.TabularSummary)
	}
	if llm.calls != 1 {
		t.Fatalf("expected 1 reduction call, got %d", llm.calls)
	}
	// The reduction prompt carries every per-account answer.
	if !strings.Contains(llm.user, "Acme") || !strings.Contains(llm.user, "Globex") {
		t.Errorf("reduction prompt missing accounts: %q", llm.user)
	}
	if res.TotalProcessingTime < 0 {
		t.Errorf("negative total time: %f", res.TotalProcessingTime)
	}
}

func TestRunMulti_AllSentinelExcluded(t *testing.T) {
	p := &mockPipeline{
		runFn: func(_ context.Context, req query.Request) answer.SearchResult {
			return answer.SearchResult{Summary: "ok", AccountFilter: req.Facets().Account}
		},
	}
	llm := &mockCompleter{
		completeFn: func(_ context.Context, _, _ string) (string, error) { return "table", nil },
	}

	svc := newTestService(t, p, llm)
	res, err := svc.RunMulti(context.Background(), "q", []string{"All", "Acme", "Globex"}, query.Facets{}, 5, 0)
	if err != nil {
		t.Fatalf("RunMulti failed: %v", err)
	}

	if len(res.AccountResults) != 2 {
		t.Fatalf("expected 2 account results, got %d", len(res.AccountResults))
	}
	if _, ok := res.AccountResults["All"]; ok {
		t.Fatal("the All sentinel must never be queried as a literal account")
	}
	for _, a := range p.accounts {
		if a == "All" {
			t.Fatal("pipeline was invoked with the All sentinel")
		}
	}
}

func TestRunMulti_NoAccounts(t *testing.T) {
	p := &mockPipeline{runFn: func(_ context.Context, _ query.Request) answer.SearchResult {
		return answer.SearchResult{}
	}}
	llm := &mockCompleter{completeFn: func(_ context.Context, _, _ string) (string, error) { return "", nil }}

	svc := newTestService(t, p, llm)
	if _, err := svc.RunMulti(context.Background(), "q", []string{"All", ""}, query.Facets{}, 5, 0); !errors.Is(err, domain.ErrNoAccounts) {
		t.Fatalf("expected ErrNoAccounts, got %v", err)
	}
}

func TestRunMulti_PerAccountFailureIsolated(t *testing.T) {
	p := &mockPipeline{
		runFn: func(_ context.Context, req query.Request) answer.SearchResult {
			account := req.Facets().Account
			if account == "BadCo" {
				return answer.ErrorResult(req.Text(), account, 0.1, errors.New("index down"))
			}
			return answer.SearchResult{Summary: "Yes for " + account, AccountFilter: account}
		},
	}
	llm := &mockCompleter{
		completeFn: func(_ context.Context, _, _ string) (string, error) { return "table", nil },
	}

	svc := newTestService(t, p, llm)
	res, err := svc.RunMulti(context.Background(), "q", []string{"Acme", "BadCo", "Globex"}, query.Facets{}, 5, 0)
	if err != nil {
		t.Fatalf("RunMulti failed: %v", err)
	}

	if len(res.AccountResults) != 3 {
		t.Fatalf("expected 3 account results, got %d", len(res.AccountResults))
	}
	if !strings.HasPrefix(res.AccountResults["BadCo"].Summary, "Error: ") {
		t.Errorf("expected error-flavored result for BadCo, got %q", res.AccountResults["BadCo"].Summary)
	}
	for _, account := range []string{"Acme", "Globex"} {
		if strings.HasPrefix(res.AccountResults[account].Summary, "Error:") {
			t.Errorf("failure leaked into %s: %q", account, res.AccountResults[account].Summary)
		}
	}
	// The reduction still sees all 3 entries, BadCo included.
	if !strings.Contains(llm.user, "BadCo") {
		t.Errorf("reduction prompt missing failed account: %q", llm.user)
	}
}

func TestRunMulti_ReductionFailureFallsBack(t *testing.T) {
	p := &mockPipeline{
		runFn: func(_ context.Context, req query.Request) answer.SearchResult {
			return answer.SearchResult{
				Summary:       "Yes, data is retained for 7 years. Further detail follows.",
				AccountFilter: req.Facets().Account,
			}
		},
	}
	llm := &mockCompleter{
		completeFn: func(_ context.Context, _, _ string) (string, error) {
			return "", errors.New("llm down")
		},
	}

	svc := newTestService(t, p, llm)
	res, err := svc.RunMulti(context.Background(), "q", []string{"Acme", "Globex"}, query.Facets{}, 5, 0)
	if err != nil {
		t.Fatalf("RunMulti failed: %v", err)
	}

	// Per-account results survive the reduction failure.
	if len(res.AccountResults) != 2 {
		t.Fatalf("expected 2 account results, got %d", len(res.AccountResults))
	}
	if !strings.Contains(res.TabularSummary, "| Client | Answer | Summary |") {
		t.Errorf("fallback table missing header: %q", res.TabularSummary)
	}
	if !strings.Contains(res.TabularSummary, "| Acme | Yes |") {
		t.Errorf("fallback table missing verdict row: %q", res.TabularSummary)
	}
	if !strings.Contains(res.TabularSummary, "Yes, data is retained for 7 years.") {
		t.Errorf("fallback table missing first sentence: %q", res.TabularSummary)
	}
}

func TestVerdict(t *testing.T) {
	cases := []struct {
		summary string
		want    string
	}{
		{"Yes, retention is defined.", "Yes"},
		{"Data shall be retained for 7 years.", "Yes"},
		{"No, the contract does not permit offshoring.", "No"},
		{"This is not mentioned in the excerpts.", "No"},
		{"Yes, with limitations on subprocessors.", "Yes with limitations"},
		{"Permitted subject to written approval.", "Yes with limitations"},
		{"Error: index down", "Unclear"},
		{answer.NoAnswer, "Unclear"},
		{"", "Unclear"},
	}
	for _, c := range cases {
		if got := verdict(c.summary); got != c.want {
			t.Errorf("verdict(%q) = %q, want %q", c.summary, got, c.want)
		}
	}
}
