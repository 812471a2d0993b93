package synthesize

import (
	"fmt"
	"strings"

	"github.com/lexhub/contractqa/internal/domain/chunk"
)

// systemInstruction is sent with every synthesis request.
const systemInstruction = `You are a contract analysis assistant answering questions from retrieved contract excerpts.
Ground every statement in the provided excerpts and cite them with their bracketed markers, e.g. [1] or [2].
Prefer affirmative, actionable findings over "not mentioned" hedging. When the excerpts only partially cover the question, state what was found and explicitly name what is missing.
Do not invent terms that are not in the excerpts.`

// buildPrompt enumerates every chunk with a sequential citation marker tied
// to its source path, then appends the question.
func buildPrompt(queryText string, chunks []chunk.Chunk) string {
	var b strings.Builder

	b.WriteString("Contract excerpts:\n\n")
	for i, c := range chunks {
		source := c.Meta.SourcePath
		if source == "" {
			source = c.Meta.FileName
		}
		fmt.Fprintf(&b, "[%d] (%s):\n%s\n\n", i+1, source, c.Meta.Text)
	}

	b.WriteString("Question: ")
	b.WriteString(queryText)
	return b.String()
}
