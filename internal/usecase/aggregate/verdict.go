package aggregate

import (
	"strings"

	"github.com/lexhub/contractqa/internal/domain/answer"
)

// verdict derives a short categorical judgment from an answer text.
func verdict(summary string) string {
	lower := strings.ToLower(summary)

	switch {
	case summary == "" || summary == answer.NoAnswer || strings.HasPrefix(summary, "Error:"):
		return "Unclear"
	case containsAny(lower, "yes, with", "with limitation", "subject to", "except", "unless", "provided that"):
		return "Yes with limitations"
	case containsAny(lower, "not mentioned", "not specified", "no provision", "does not", "not permitted", "prohibited", "no,"):
		return "No"
	case containsAny(lower, "yes", "is permitted", "is allowed", "must", "shall", "required"):
		return "Yes"
	default:
		return "Unclear"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// firstSentence trims an answer to its first sentence for table display.
func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "\n"); i > 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ". "); i > 0 {
		return s[:i+1]
	}
	return s
}
