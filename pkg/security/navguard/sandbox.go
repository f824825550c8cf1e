package navguard

import (
	"context"
	"encoding/json"

	"github.com/darkaengl/aura-sub000/pkg/browser"
)

// GuardedSandbox enforces the guard's rules on every navigation while
// passing script execution through untouched.
type GuardedSandbox struct {
	inner browser.Sandbox
	guard *Guard
}

// Wrap returns a sandbox whose Navigate is checked against guard.
func Wrap(inner browser.Sandbox, guard *Guard) *GuardedSandbox {
	return &GuardedSandbox{inner: inner, guard: guard}
}

// Run executes a script in the underlying sandbox.
func (s *GuardedSandbox) Run(ctx context.Context, scriptSource string) (json.RawMessage, error) {
	return s.inner.Run(ctx, scriptSource)
}

// Navigate checks the target against the guard before delegating.
func (s *GuardedSandbox) Navigate(ctx context.Context, url string) error {
	if err := s.guard.Check(url); err != nil {
		return err
	}
	return s.inner.Navigate(ctx, url)
}

// CurrentURL returns the underlying page's URL.
func (s *GuardedSandbox) CurrentURL() string {
	return s.inner.CurrentURL()
}
