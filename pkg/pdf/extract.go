// Package pdf extracts plain text from PDF documents so they can be fed
// through simplification.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is the extracted text plus its word count.
type Document struct {
	Text      string
	WordCount int
}

// ExtractText pulls the text content out of a PDF. Pages that yield no text
// are skipped; a document with no extractable text returns an error.
func ExtractText(data []byte) (*Document, error) {
	conf := model.NewDefaultConfiguration()

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}
	if err := api.OptimizeContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to optimize PDF: %w", err)
	}

	var builder strings.Builder
	for page := 1; page <= ctx.PageCount; page++ {
		reader, err := pdfcpu.ExtractPageContent(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", page, err)
		}
		if reader == nil {
			continue
		}
		content, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d content: %w", page, err)
		}
		text := contentStreamText(content)
		if text != "" {
			if builder.Len() > 0 {
				builder.WriteString("\n\n")
			}
			builder.WriteString(text)
		}
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return nil, fmt.Errorf("no extractable text in PDF")
	}
	return &Document{Text: text, WordCount: len(strings.Fields(text))}, nil
}

// contentStreamText walks a page content stream and collects the string
// literals shown by Tj and TJ operators, inserting breaks at text
// positioning operators.
func contentStreamText(content []byte) string {
	var out strings.Builder
	var pending []string

	i := 0
	for i < len(content) {
		c := content[i]
		switch {
		case c == '(':
			literal, next := readStringLiteral(content, i)
			pending = append(pending, literal)
			i = next
		case c == 'T' && i+1 < len(content):
			op := content[i+1]
			if op == 'j' || op == 'J' {
				for _, lit := range pending {
					out.WriteString(lit)
				}
				if len(pending) > 0 {
					out.WriteString(" ")
				}
				pending = nil
				i += 2
				continue
			}
			if op == 'd' || op == 'D' || op == '*' {
				// Positioning operators move to a new line; drop
				// literals that never reached a show operator.
				pending = nil
			}
			i += 2
		default:
			i++
		}
	}

	return strings.TrimSpace(collapseSpaces(out.String()))
}

// readStringLiteral reads a parenthesized PDF string starting at open,
// handling escape sequences and balanced nested parens. It returns the
// decoded text and the index just past the closing paren.
func readStringLiteral(content []byte, open int) (string, int) {
	var out strings.Builder
	depth := 1
	i := open + 1

	for i < len(content) && depth > 0 {
		c := content[i]
		switch c {
		case '\\':
			if i+1 < len(content) {
				next := content[i+1]
				switch next {
				case 'n':
					out.WriteByte('\n')
				case 't':
					out.WriteByte('\t')
				case 'r', 'b', 'f':
					out.WriteByte(' ')
				case '(', ')', '\\':
					out.WriteByte(next)
				default:
					// Octal escapes and line continuations are
					// dropped rather than decoded.
				}
				i += 2
				continue
			}
			i++
		case '(':
			depth++
			out.WriteByte(c)
			i++
		case ')':
			depth--
			if depth > 0 {
				out.WriteByte(c)
			}
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.String(), i
}

// collapseSpaces squeezes runs of spaces while preserving newlines.
func collapseSpaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}
