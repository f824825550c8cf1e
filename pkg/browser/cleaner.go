package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ReadableContent is the human-visible portion of a page, stripped of
// markup and noise elements.
type ReadableContent struct {
	Title       string
	Description string
	Text        string
	Truncated   bool
}

// ExtractReadable parses rawHTML and collects the visible text, skipping
// scripts, styles, and similar noise. maxLength bounds the collected text;
// a maxLength of 0 or less means unlimited.
func ExtractReadable(rawHTML string, maxLength int) (*ReadableContent, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result := &ReadableContent{
		Title:       extractTitle(doc),
		Description: extractMetaDescription(doc),
	}

	var builder strings.Builder
	var currentLength int
	result.Truncated = collectText(doc, &builder, &currentLength, maxLength)
	result.Text = strings.TrimSpace(builder.String())
	return result, nil
}

// collectText walks the node tree appending visible text, with paragraph
// breaks between block-level elements.
func collectText(n *html.Node, builder *strings.Builder, currentLength *int, maxLength int) bool {
	if maxLength > 0 && *currentLength >= maxLength {
		return true
	}

	if n.Type == html.CommentNode {
		return false
	}

	if n.Type == html.ElementNode && isNoiseElement(strings.ToLower(n.Data)) {
		return false
	}

	if n.Type == html.TextNode {
		return appendText(n.Data, builder, currentLength, maxLength)
	}

	blockBreak := n.Type == html.ElementNode && isBlockElement(strings.ToLower(n.Data))
	if blockBreak && builder.Len() > 0 {
		builder.WriteString("\n")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if collectText(c, builder, currentLength, maxLength) {
			return true
		}
	}
	return false
}

// appendText writes one text node's trimmed content, truncating at the
// length limit.
func appendText(data string, builder *strings.Builder, currentLength *int, maxLength int) bool {
	text := strings.Join(strings.Fields(data), " ")
	if text == "" {
		return false
	}

	if builder.Len() > 0 && !strings.HasSuffix(builder.String(), "\n") {
		builder.WriteString(" ")
	}

	if maxLength > 0 && *currentLength+len(text) > maxLength {
		remaining := maxLength - *currentLength
		if remaining > 0 {
			builder.WriteString(text[:remaining])
		}
		builder.WriteString("...")
		*currentLength = maxLength
		return true
	}

	builder.WriteString(text)
	*currentLength += len(text)
	return false
}

// isNoiseElement returns true for elements whose content is never readable.
func isNoiseElement(tagName string) bool {
	noise := map[string]bool{
		"script":   true,
		"style":    true,
		"noscript": true,
		"iframe":   true,
		"embed":    true,
		"object":   true,
		"svg":      true,
		"head":     true,
		"template": true,
	}
	return noise[tagName]
}

// isBlockElement returns true for block-level elements, which separate
// paragraphs in the extracted text.
func isBlockElement(tagName string) bool {
	blocks := map[string]bool{
		"div":        true,
		"p":          true,
		"section":    true,
		"article":    true,
		"header":     true,
		"footer":     true,
		"nav":        true,
		"main":       true,
		"aside":      true,
		"h1":         true,
		"h2":         true,
		"h3":         true,
		"h4":         true,
		"h5":         true,
		"h6":         true,
		"ul":         true,
		"ol":         true,
		"li":         true,
		"table":      true,
		"tr":         true,
		"td":         true,
		"th":         true,
		"form":       true,
		"fieldset":   true,
		"blockquote": true,
		"pre":        true,
		"br":         true,
	}
	return blocks[tagName]
}

// extractTitle returns the document's <title> text, if any.
func extractTitle(doc *html.Node) string {
	var title string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
			if title != "" {
				return
			}
		}
	}
	traverse(doc)
	return title
}

// extractMetaDescription returns the meta description content, if any.
func extractMetaDescription(doc *html.Node) string {
	var description string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var isDescription bool
			var content string
			for _, attr := range n.Attr {
				if attr.Key == "name" && attr.Val == "description" {
					isDescription = true
				}
				if attr.Key == "content" {
					content = attr.Val
				}
			}
			if isDescription && content != "" {
				description = strings.TrimSpace(content)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
			if description != "" {
				return
			}
		}
	}
	traverse(doc)
	return description
}
