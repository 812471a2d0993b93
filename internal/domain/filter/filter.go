package filter

import "fmt"

// MaxConditions is the maximum number of conditions in an expression.
const MaxConditions = 16

// Expression is a conjunction of facet conditions. An empty expression
// means "search the whole corpus".
type Expression struct {
	must []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must []Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Expression{must: must}, nil
}

// Must returns the conjunctive conditions.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// Condition is a single facet clause: the metadata key must equal one of
// the allowed values. A single value is plain equality; multiple values
// are set membership (used for multi-valued facets such as account).
type Condition struct {
	key    string
	values []string
}

// NewMatch creates an exact equality condition.
func NewMatch(key, value string) (Condition, error) {
	return NewMembership(key, []string{value})
}

// NewMembership creates a "value is one of" condition.
func NewMembership(key string, values []string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for key %q", key)
	}
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("empty value for key %q", key)
		}
	}
	return Condition{key: key, values: values}, nil
}

// Key returns the metadata field name.
func (c Condition) Key() string { return c.key }

// Values returns the allowed values.
func (c Condition) Values() []string { return c.values }
