// Package browser provides the page-scripting sandbox the assistant core
// uses to read and mutate live page content, plus a readable-content
// extractor for feeding page text into the language model.
//
// The orchestration packages (command, form, assistant) depend only on the
// Sandbox interface, which keeps them UI-framework-agnostic and unit-testable
// with a fake sandbox. The single production implementation is backed by
// Playwright.
package browser

import (
	"context"
	"encoding/json"
)

// Sandbox executes scripts in an isolated page context and exposes
// navigation. Script results come back as JSON so callers can decode into
// their own structures.
type Sandbox interface {
	// Run executes scriptSource in the page and returns its result encoded
	// as JSON. Scripts should be expressions or IIFEs returning
	// JSON-serializable values.
	Run(ctx context.Context, scriptSource string) (json.RawMessage, error)

	// Navigate loads the given URL in the page.
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the URL of the current page.
	CurrentURL() string
}

// RunInto executes a script and decodes its JSON result into out.
func RunInto(ctx context.Context, sandbox Sandbox, scriptSource string, out interface{}) error {
	raw, err := sandbox.Run(ctx, scriptSource)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
