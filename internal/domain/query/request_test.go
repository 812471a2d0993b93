package query

import "testing"

func TestNew_Valid(t *testing.T) {
	req, err := New("retention requirements", Facets{Account: "Aetna"}, 10, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Text() != "retention requirements" {
		t.Errorf("unexpected text: %s", req.Text())
	}
	if req.Facets().Account != "Aetna" {
		t.Errorf("unexpected account: %s", req.Facets().Account)
	}
	if req.TopK() != 10 {
		t.Errorf("unexpected top_k: %d", req.TopK())
	}
	if req.MinRelevance() != 0.5 {
		t.Errorf("unexpected min_relevance: %f", req.MinRelevance())
	}
}

func TestNew_DefaultTopK(t *testing.T) {
	req, err := New("q", Facets{}, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TopK() != DefaultTopK {
		t.Errorf("expected default top_k %d, got %d", DefaultTopK, req.TopK())
	}
}

func TestNew_Invalid(t *testing.T) {
	cases := []struct {
		name         string
		text         string
		topK         int
		minRelevance float64
	}{
		{"empty text", "", 5, 0},
		{"negative top_k", "q", -1, 0},
		{"top_k too large", "q", MaxTopK + 1, 0},
		{"negative min_relevance", "q", 5, -0.1},
		{"min_relevance above 1", "q", 5, 1.1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := New(c.text, Facets{}, c.topK, c.minRelevance); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIsSet(t *testing.T) {
	if IsSet("") || IsSet(All) {
		t.Error("empty and All must be unset")
	}
	if !IsSet("Aetna") {
		t.Error("concrete value must be set")
	}
}

func TestWithAccount(t *testing.T) {
	base := Facets{Account: "Aetna", DocumentType: "MSA"}
	sub := base.WithAccount("Globex")

	if sub.Account != "Globex" || sub.DocumentType != "MSA" {
		t.Errorf("unexpected substituted facets: %+v", sub)
	}
	if base.Account != "Aetna" {
		t.Error("WithAccount must not mutate the receiver")
	}
}
