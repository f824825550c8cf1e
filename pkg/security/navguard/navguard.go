// Package navguard enforces glob-based allow and deny rules on navigation
// targets, so the assistant can be restricted to approved sites.
package navguard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Violation is returned when a navigation target is rejected by the rules.
type Violation struct {
	URL     string
	Pattern string
	Denied  bool
}

func (v *Violation) Error() string {
	if v.Denied {
		return fmt.Sprintf("navigation to '%s' blocked by denied pattern '%s'", v.URL, v.Pattern)
	}
	return fmt.Sprintf("navigation to '%s' does not match any allowed pattern", v.URL)
}

// Guard evaluates navigation targets against compiled glob rules. Denied
// patterns take precedence; an empty allow list permits everything not
// explicitly denied.
type Guard struct {
	allowed []compiledPattern
	denied  []compiledPattern
}

type compiledPattern struct {
	source string
	g      glob.Glob
}

// New compiles the allow and deny pattern lists into a Guard. Patterns are
// matched against the normalized host plus path, e.g. "*.gov.example/*".
func New(allowed, denied []string) (*Guard, error) {
	guard := &Guard{}

	for _, pattern := range allowed {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		guard.allowed = append(guard.allowed, compiledPattern{source: pattern, g: g})
	}

	for _, pattern := range denied {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		guard.denied = append(guard.denied, compiledPattern{source: pattern, g: g})
	}

	return guard, nil
}

// Check returns nil when rawURL may be navigated to, or a *Violation
// describing which rule rejected it.
func (gd *Guard) Check(rawURL string) error {
	target := normalize(rawURL)

	for _, pattern := range gd.denied {
		if pattern.g.Match(target) {
			return &Violation{URL: rawURL, Pattern: pattern.source, Denied: true}
		}
	}

	if len(gd.allowed) == 0 {
		return nil
	}

	for _, pattern := range gd.allowed {
		if pattern.g.Match(target) {
			return nil
		}
	}

	return &Violation{URL: rawURL}
}

// normalize reduces a URL to host plus path with no scheme, lowercased host,
// and no trailing slash, so patterns do not need to account for scheme or
// case variations.
func normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		// Bare hostnames and unparseable inputs are matched as written,
		// minus any scheme prefix.
		trimmed := rawURL
		if idx := strings.Index(trimmed, "://"); idx >= 0 {
			trimmed = trimmed[idx+3:]
		}
		return strings.TrimSuffix(strings.ToLower(trimmed), "/")
	}

	target := strings.ToLower(u.Host) + u.Path
	return strings.TrimSuffix(target, "/")
}
