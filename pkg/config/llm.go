package config

import (
	"fmt"
	"sync"
)

// SectionIDLLM is the identifier for the LLM settings section.
const SectionIDLLM = "llm"

// LLMSection holds provider settings: the remote primary, the local
// secondary used for fallback, and optional per-feature model overrides.
type LLMSection struct {
	PrimaryModel     string
	PrimaryBaseURL   string
	SecondaryModel   string
	SecondaryBaseURL string

	// Per-feature overrides; empty means the primary model.
	SimplifyModel string
	ClassifyModel string
	PlanModel     string
	SuggestModel  string

	mu sync.RWMutex
}

// NewLLMSection creates an LLM section with local-server defaults for the
// secondary provider.
func NewLLMSection() *LLMSection {
	return &LLMSection{
		SecondaryBaseURL: "http://localhost:11434/v1",
	}
}

// ID returns the section identifier.
func (s *LLMSection) ID() string {
	return SectionIDLLM
}

// Data returns the current configuration data.
func (s *LLMSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"primary_model":      s.PrimaryModel,
		"primary_base_url":   s.PrimaryBaseURL,
		"secondary_model":    s.SecondaryModel,
		"secondary_base_url": s.SecondaryBaseURL,
		"simplify_model":     s.SimplifyModel,
		"classify_model":     s.ClassifyModel,
		"plan_model":         s.PlanModel,
		"suggest_model":      s.SuggestModel,
	}
}

// SetData updates the configuration from the provided data.
func (s *LLMSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	assign := func(key string, dst *string) {
		if value, ok := data[key].(string); ok {
			*dst = value
		}
	}
	assign("primary_model", &s.PrimaryModel)
	assign("primary_base_url", &s.PrimaryBaseURL)
	assign("secondary_model", &s.SecondaryModel)
	assign("secondary_base_url", &s.SecondaryBaseURL)
	assign("simplify_model", &s.SimplifyModel)
	assign("classify_model", &s.ClassifyModel)
	assign("plan_model", &s.PlanModel)
	assign("suggest_model", &s.SuggestModel)
	return nil
}

// Validate checks the current configuration. A secondary model without a
// base URL cannot be reached.
func (s *LLMSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.SecondaryModel != "" && s.SecondaryBaseURL == "" {
		return fmt.Errorf("secondary_model is set but secondary_base_url is empty")
	}
	return nil
}

// ModelFor returns the per-feature model override, or the primary model
// when the feature has none.
func (s *LLMSection) ModelFor(feature string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var override string
	switch feature {
	case "simplify":
		override = s.SimplifyModel
	case "classify":
		override = s.ClassifyModel
	case "plan":
		override = s.PlanModel
	case "suggest":
		override = s.SuggestModel
	}
	if override != "" {
		return override
	}
	return s.PrimaryModel
}
