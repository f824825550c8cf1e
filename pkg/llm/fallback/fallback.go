// Package fallback wraps a per-feature primary provider with a single
// automatic fallback attempt.
//
// Each assistant feature (simplification, classification, planning, chat,
// suggestions) may be served by its own provider; features without an
// explicit mapping use the wrapper's default provider. When the primary call
// fails, a caller-supplied fallback function is invoked exactly once with the
// original messages and the failure cause, typically re-issuing the request
// against a secondary (local) provider with a relaxed instruction. If the
// fallback also fails, both errors propagate.
package fallback

import (
	"context"
	"fmt"

	"github.com/darkaengl/aura-sub000/pkg/llm"
	"github.com/darkaengl/aura-sub000/pkg/logging"
	"github.com/darkaengl/aura-sub000/pkg/types"
)

// Feature identifies the assistant capability a completion serves. The
// feature name keys provider and credential resolution in configuration.
type Feature string

const (
	FeatureSimplify Feature = "simplify"
	FeatureClassify Feature = "classify"
	FeaturePlan     Feature = "plan"
	FeatureChat     Feature = "chat"
	FeatureSuggest  Feature = "suggest"
)

// Func is invoked after a primary provider failure. It receives the original
// messages and the failure cause and returns a replacement completion.
type Func func(ctx context.Context, messages []*types.Message, cause error) (*types.Message, error)

// Wrapper routes completions to per-feature providers with one fallback
// attempt on failure.
type Wrapper struct {
	def      llm.Provider
	features map[Feature]llm.Provider
	onFail   Func
	logger   *logging.Logger
}

// Option configures a Wrapper.
type Option func(*Wrapper)

// WithFeatureProvider maps a feature to a dedicated primary provider.
func WithFeatureProvider(feature Feature, provider llm.Provider) Option {
	return func(w *Wrapper) {
		w.features[feature] = provider
	}
}

// WithFallback sets the function invoked after a primary failure.
func WithFallback(fn Func) Option {
	return func(w *Wrapper) {
		w.onFail = fn
	}
}

// WithLogger attaches a component logger.
func WithLogger(logger *logging.Logger) Option {
	return func(w *Wrapper) {
		w.logger = logger
	}
}

// New creates a wrapper with def as the default provider for features
// without an explicit mapping.
func New(def llm.Provider, opts ...Option) *Wrapper {
	w := &Wrapper{
		def:      def,
		features: make(map[Feature]llm.Provider),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ProviderFor returns the primary provider serving a feature.
func (w *Wrapper) ProviderFor(feature Feature) llm.Provider {
	if p, ok := w.features[feature]; ok {
		return p
	}
	return w.def
}

// Complete invokes the feature's primary provider, falling back exactly once
// on failure. With no fallback configured the primary error propagates
// unchanged.
func (w *Wrapper) Complete(ctx context.Context, feature Feature, messages []*types.Message) (*types.Message, error) {
	primary := w.ProviderFor(feature)

	reply, err := primary.Complete(ctx, messages)
	if err == nil {
		return reply, nil
	}

	if w.onFail == nil {
		return nil, err
	}

	if w.logger != nil {
		w.logger.Warnf("feature %q primary provider failed, attempting fallback: %v", feature, err)
	}

	reply, fbErr := w.onFail(ctx, messages, err)
	if fbErr != nil {
		return nil, fmt.Errorf("fallback failed (%v) after primary failure: %w", fbErr, err)
	}
	return reply, nil
}

// Bind returns an llm.Provider view of one feature, suitable for components
// that accept a plain provider (the simplification pipeline).
func (w *Wrapper) Bind(feature Feature) llm.Provider {
	return &boundProvider{w: w, feature: feature}
}

type boundProvider struct {
	w       *Wrapper
	feature Feature
}

func (b *boundProvider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	return b.w.Complete(ctx, b.feature, messages)
}

func (b *boundProvider) GetModelInfo() *types.ModelInfo {
	return b.w.ProviderFor(b.feature).GetModelInfo()
}

func (b *boundProvider) GetModel() string {
	return b.w.ProviderFor(b.feature).GetModel()
}

// rawJSONInstruction is appended by ToSecondary so weaker local models return
// parseable output.
const rawJSONInstruction = "Respond with raw JSON only. No markdown, no code fences, no commentary."

// ToSecondary builds a fallback Func that replays the request against a
// secondary provider with a relaxed instruction demanding raw-JSON-only
// output.
func ToSecondary(secondary llm.Provider) Func {
	return func(ctx context.Context, messages []*types.Message, cause error) (*types.Message, error) {
		relaxed := make([]*types.Message, 0, len(messages)+1)
		relaxed = append(relaxed, messages...)
		relaxed = append(relaxed, types.NewSystemMessage(rawJSONInstruction))
		return secondary.Complete(ctx, relaxed)
	}
}
