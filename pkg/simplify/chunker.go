package simplify

import (
	"strings"
	"unicode"
)

// TextChunk is one bounded-size, sentence-aligned piece of a larger text.
// Ordering is significant: chunk N+1's UI append depends on chunk N's
// accumulated output.
type TextChunk struct {
	Index   int
	Content string
	IsFirst bool
	IsLast  bool
}

// Split divides text into sentence-aligned chunks not exceeding maxChunkSize.
//
// If the text fits within maxChunkSize it is returned as a single chunk.
// Otherwise the text is split on sentence terminators (., !, ? followed by
// whitespace or end-of-string) and sentences are greedily packed into chunks.
// A single sentence longer than maxChunkSize forms its own oversized chunk
// rather than being split mid-sentence. If sentence splitting yields nothing,
// the whole text becomes one chunk. The packing is deterministic for
// identical input.
func Split(text string, maxChunkSize int) []TextChunk {
	if maxChunkSize <= 0 || len(text) <= maxChunkSize {
		return []TextChunk{{Index: 0, Content: text, IsFirst: true, IsLast: true}}
	}

	sentences := splitSentences(text)
	if len(sentences) <= 1 {
		// No usable sentence boundaries; carry the text verbatim as one
		// oversized chunk rather than trimming or splitting mid-sentence.
		return []TextChunk{{Index: 0, Content: text, IsFirst: true, IsLast: true}}
	}

	var contents []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+1+len(sentence) > maxChunkSize {
			contents = append(contents, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		contents = append(contents, current.String())
	}

	if len(contents) == 0 {
		return []TextChunk{{Index: 0, Content: text, IsFirst: true, IsLast: true}}
	}

	chunks := make([]TextChunk, len(contents))
	for i, content := range contents {
		chunks[i] = TextChunk{
			Index:   i,
			Content: content,
			IsFirst: i == 0,
			IsLast:  i == len(contents)-1,
		}
	}
	return chunks
}

// splitSentences splits text on sentence terminators followed by whitespace
// or end-of-string. Terminator runs (e.g. "?!", "...") stay attached to
// their sentence. Empty sentences are dropped.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		// Absorb the full terminator run.
		end := i
		for end+1 < len(runes) && isTerminator(runes[end+1]) {
			end++
		}
		if end+1 < len(runes) && !unicode.IsSpace(runes[end+1]) {
			// Mid-token punctuation (e.g. "3.5", "e.g.x") is not a boundary.
			i = end
			continue
		}

		sentence := strings.TrimSpace(string(runes[start : end+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = end + 1
		i = end
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
