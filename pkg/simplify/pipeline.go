// Package simplify implements the page-text simplification pipeline: bounded
// sentence-aligned chunking, single-shot and chunked LLM calls, incremental
// progress emission, and stale-run discard via request tokens.
package simplify

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/darkaengl/aura-sub000/pkg/llm"
	"github.com/darkaengl/aura-sub000/pkg/logging"
	"github.com/darkaengl/aura-sub000/pkg/tracker"
	"github.com/darkaengl/aura-sub000/pkg/types"
)

const (
	// DefaultChunkThreshold is the text length above which chunked mode is used.
	DefaultChunkThreshold = 8000

	// DefaultChunkSize bounds each chunk in chunked mode.
	DefaultChunkSize = 3000
)

// TextData describes the source document being simplified.
type TextData struct {
	Text      string
	Title     string
	URL       string
	WordCount int
}

// Options configure one simplification run.
type Options struct {
	Complexity Complexity
}

// Metadata carries word counts and source details for a completed run.
type Metadata struct {
	OriginalWordCount   int    `json:"originalWordCount"`
	SimplifiedWordCount int    `json:"simplifiedWordCount"`
	Title               string `json:"title"`
	URL                 string `json:"url"`
	ChunkCount          int    `json:"chunks"`
	PromptTokens        int    `json:"promptTokens,omitempty"`
}

// Result is the immutable outcome of one completed (non-discarded) run.
type Result struct {
	OriginalText         string     `json:"originalText"`
	SimplifiedText       string     `json:"simplifiedText"`
	ComplexityLevel      Complexity `json:"complexityLevel"`
	WordReductionPercent float64    `json:"wordReductionPercent"`
	Metadata             Metadata   `json:"metadata"`
	ProviderUsed         string     `json:"providerUsed"`
}

// Progress reports one chunk's completion so the UI can render partial
// output incrementally.
type Progress struct {
	ChunkIndex           int
	ChunkCount           int
	SimplifiedSoFar      string
	WordReductionPercent float64
}

// ProgressFunc consumes incremental progress during chunked runs.
type ProgressFunc func(Progress)

// Pipeline orchestrates simplification runs against a pluggable provider,
// honoring the request tracker's staleness signal.
type Pipeline struct {
	tracker        *tracker.Tracker
	logger         *logging.Logger
	chunkThreshold int
	chunkSize      int
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithChunkThreshold overrides the chunked-mode threshold.
func WithChunkThreshold(n int) PipelineOption {
	return func(p *Pipeline) {
		p.chunkThreshold = n
	}
}

// WithChunkSize overrides the chunk size bound.
func WithChunkSize(n int) PipelineOption {
	return func(p *Pipeline) {
		p.chunkSize = n
	}
}

// WithLogger attaches a component logger.
func WithLogger(logger *logging.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a pipeline bound to the workflow's request tracker.
func NewPipeline(tr *tracker.Tracker, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		tracker:        tr,
		chunkThreshold: DefaultChunkThreshold,
		chunkSize:      DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tracker returns the request tracker this pipeline consults.
func (p *Pipeline) Tracker() *tracker.Tracker {
	return p.tracker
}

// Simplify runs one simplification under the given token.
//
// A stale token (on entry, between chunks, or after any provider call) is
// not an error: the run is silently discarded and (nil, nil) returned.
// Provider failures propagate to the caller; retry and fallback belong to
// the provider wrapper, not this component.
func (p *Pipeline) Simplify(ctx context.Context, data TextData, opts Options, token tracker.Token, provider llm.Provider, onProgress ProgressFunc) (*Result, error) {
	complexity := NormalizeComplexity(opts.Complexity)

	// A token can already be stale before any work starts.
	if !p.tracker.IsCurrent(token) {
		p.debugf("run %d discarded before start", token)
		return nil, nil
	}

	originalWords := data.WordCount
	if originalWords <= 0 {
		originalWords = countWords(data.Text)
	}

	var simplified string
	var discarded bool
	var chunkCount int
	var promptTokens int
	var err error

	if len(data.Text) > p.chunkThreshold {
		simplified, chunkCount, promptTokens, discarded, err = p.runChunked(ctx, data, complexity, token, provider, originalWords, onProgress)
	} else {
		simplified, promptTokens, discarded, err = p.runSingle(ctx, data.Text, complexity, token, provider)
		chunkCount = 1
	}
	if err != nil {
		return nil, err
	}
	if discarded {
		return nil, nil
	}

	simplifiedWords := countWords(simplified)
	result := &Result{
		OriginalText:         data.Text,
		SimplifiedText:       simplified,
		ComplexityLevel:      complexity,
		WordReductionPercent: wordReduction(originalWords, simplifiedWords),
		Metadata: Metadata{
			OriginalWordCount:   originalWords,
			SimplifiedWordCount: simplifiedWords,
			Title:               data.Title,
			URL:                 data.URL,
			ChunkCount:          chunkCount,
			PromptTokens:        promptTokens,
		},
		ProviderUsed: provider.GetModel(),
	}

	p.debugf("run %d complete: %d chunks, %d -> %d words (%.1f%% reduction)",
		token, chunkCount, originalWords, simplifiedWords, result.WordReductionPercent)
	return result, nil
}

// runSingle performs single-shot simplification.
func (p *Pipeline) runSingle(ctx context.Context, text string, complexity Complexity, token tracker.Token, provider llm.Provider) (string, int, bool, error) {
	system := buildSystemPrompt(complexity)
	user := buildUserPrompt(text, 0, 1)
	promptTokens := estimateTokens(system + user)

	reply, err := provider.Complete(ctx, []*types.Message{
		types.NewSystemMessage(system),
		types.NewUserMessage(user),
	})
	if err != nil {
		return "", 0, false, fmt.Errorf("simplification failed: %w", err)
	}

	// The token may have gone stale while the call was in flight.
	if !p.tracker.IsCurrent(token) {
		p.debugf("run %d discarded after provider call", token)
		return "", 0, true, nil
	}

	return strings.TrimSpace(reply.Content), promptTokens, false, nil
}

// runChunked processes chunks strictly sequentially: later chunks' UI
// appends depend on earlier chunks' accumulated text, so chunks are never
// issued in parallel.
func (p *Pipeline) runChunked(ctx context.Context, data TextData, complexity Complexity, token tracker.Token, provider llm.Provider, originalWords int, onProgress ProgressFunc) (string, int, int, bool, error) {
	chunks := Split(data.Text, p.chunkSize)
	system := buildSystemPrompt(complexity)

	var accumulated strings.Builder
	var promptTokens int

	for _, chunk := range chunks {
		if !p.tracker.IsCurrent(token) {
			p.debugf("run %d discarded before chunk %d/%d", token, chunk.Index+1, len(chunks))
			return "", 0, 0, true, nil
		}

		user := buildUserPrompt(chunk.Content, chunk.Index, len(chunks))
		promptTokens += estimateTokens(system + user)

		reply, err := provider.Complete(ctx, []*types.Message{
			types.NewSystemMessage(system),
			types.NewUserMessage(user),
		})
		if err != nil {
			return "", 0, 0, false, fmt.Errorf("simplification failed at chunk %d of %d: %w", chunk.Index+1, len(chunks), err)
		}

		if !p.tracker.IsCurrent(token) {
			p.debugf("run %d discarded after chunk %d/%d", token, chunk.Index+1, len(chunks))
			return "", 0, 0, true, nil
		}

		if accumulated.Len() > 0 {
			accumulated.WriteString("\n\n")
		}
		accumulated.WriteString(strings.TrimSpace(reply.Content))

		if onProgress != nil {
			soFar := accumulated.String()
			onProgress(Progress{
				ChunkIndex:           chunk.Index,
				ChunkCount:           len(chunks),
				SimplifiedSoFar:      soFar,
				WordReductionPercent: wordReduction(originalWords, countWords(soFar)),
			})
		}
	}

	return accumulated.String(), len(chunks), promptTokens, false, nil
}

// countWords splits on whitespace and drops empty tokens.
func countWords(text string) int {
	return len(strings.Fields(text))
}

// wordReduction computes the percentage reduction against the original
// full-document word count, rounded to one decimal place.
func wordReduction(original, simplified int) float64 {
	if original <= 0 {
		return 0
	}
	return math.Round(float64(original-simplified)/float64(original)*1000) / 10
}

func (p *Pipeline) debugf(format string, v ...interface{}) {
	if p.logger != nil {
		p.logger.Debugf(format, v...)
	}
}
