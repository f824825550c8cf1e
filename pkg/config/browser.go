package config

import (
	"sync"
)

// SectionIDBrowser is the identifier for the browser settings section.
const SectionIDBrowser = "browser"

// BrowserSection holds embedded-browser and navigation-policy settings.
type BrowserSection struct {
	Headless           bool
	HomeURL            string
	AllowedURLPatterns []string
	DeniedURLPatterns  []string
	SynonymsFile       string

	mu sync.RWMutex
}

// NewBrowserSection creates a browser section with defaults.
func NewBrowserSection() *BrowserSection {
	return &BrowserSection{}
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"headless":             s.Headless,
		"home_url":             s.HomeURL,
		"allowed_url_patterns": toAnySlice(s.AllowedURLPatterns),
		"denied_url_patterns":  toAnySlice(s.DeniedURLPatterns),
		"synonyms_file":        s.SynonymsFile,
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := data["headless"].(bool); ok {
		s.Headless = v
	}
	if v, ok := data["home_url"].(string); ok {
		s.HomeURL = v
	}
	if v, ok := data["allowed_url_patterns"].([]any); ok {
		s.AllowedURLPatterns = toStringSlice(v)
	}
	if v, ok := data["denied_url_patterns"].([]any); ok {
		s.DeniedURLPatterns = toStringSlice(v)
	}
	if v, ok := data["synonyms_file"].(string); ok {
		s.SynonymsFile = v
	}
	return nil
}

// Validate checks the current configuration. Pattern syntax is verified
// where the patterns are compiled, at startup.
func (s *BrowserSection) Validate() error {
	return nil
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func toStringSlice(in []any) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
