package filter

import "testing"

func TestNewMatch(t *testing.T) {
	cond, err := NewMatch("account", "Aetna")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cond.Key() != "account" {
		t.Errorf("unexpected key: %s", cond.Key())
	}
	if len(cond.Values()) != 1 || cond.Values()[0] != "Aetna" {
		t.Errorf("unexpected values: %v", cond.Values())
	}
}

func TestNewMembership(t *testing.T) {
	cond, err := NewMembership("document_type", []string{"MSA", "NDA"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cond.Values()) != 2 {
		t.Errorf("unexpected values: %v", cond.Values())
	}
}

func TestNewMembership_Invalid(t *testing.T) {
	if _, err := NewMembership("", []string{"v"}); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewMembership("k", nil); err == nil {
		t.Error("expected error for no values")
	}
	if _, err := NewMembership("k", []string{""}); err == nil {
		t.Error("expected error for empty value")
	}
}

func TestNewExpression(t *testing.T) {
	cond, _ := NewMatch("account", "Aetna")

	expr, err := NewExpression([]Condition{cond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.IsEmpty() {
		t.Error("expression with a condition must not be empty")
	}
	if len(expr.Must()) != 1 {
		t.Errorf("unexpected conditions: %v", expr.Must())
	}

	empty, err := NewExpression(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !empty.IsEmpty() {
		t.Error("nil conditions must give an empty expression")
	}
}

func TestNewExpression_TooMany(t *testing.T) {
	conds := make([]Condition, MaxConditions+1)
	for i := range conds {
		conds[i], _ = NewMatch("k", "v")
	}
	if _, err := NewExpression(conds); err == nil {
		t.Error("expected error for too many conditions")
	}
}
