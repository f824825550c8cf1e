package simplify

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Complexity selects how aggressively text is simplified.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityAdvanced Complexity = "advanced"
)

// NormalizeComplexity maps unknown or empty values to ComplexityModerate.
func NormalizeComplexity(c Complexity) Complexity {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityAdvanced:
		return c
	default:
		return ComplexityModerate
	}
}

var complexityInstructions = map[Complexity]string{
	ComplexitySimple:   "Rewrite the text for a reading age of about 9. Use short sentences, everyday words, and explain any term a child would not know. Keep every fact.",
	ComplexityModerate: "Rewrite the text in plain language for a general adult audience. Prefer short sentences and common words, define jargon on first use, and keep every fact.",
	ComplexityAdvanced: "Lightly edit the text for clarity and concision, keeping its register and technical vocabulary. Keep every fact.",
}

// buildSystemPrompt returns the simplification system instruction for a
// (normalized) complexity level.
func buildSystemPrompt(c Complexity) string {
	return "You are a text simplification assistant for a browser reading aid. " +
		complexityInstructions[c] +
		" Respond with the rewritten text only: no preamble, no headings, no commentary."
}

// buildUserPrompt wraps one piece of source text, with chunk position context
// when the document is being processed in parts.
func buildUserPrompt(text string, chunkIndex, chunkCount int) string {
	if chunkCount <= 1 {
		return text
	}
	return fmt.Sprintf("This is part %d of %d of a longer document. Rewrite this part so it reads naturally when appended to the previous parts.\n\n%s",
		chunkIndex+1, chunkCount, text)
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// estimateTokens returns an approximate token count for prompt budget
// accounting, or 0 if the tokenizer is unavailable (it may need to fetch its
// encoding data on first use).
func estimateTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	if encoding == nil {
		return 0
	}
	return len(encoding.Encode(text, nil, nil))
}
