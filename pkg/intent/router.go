// Package intent classifies user utterances and turns action requests into
// structured command plans.
package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/darkaengl/aura-sub000/pkg/command"
	"github.com/darkaengl/aura-sub000/pkg/llm"
	"github.com/darkaengl/aura-sub000/pkg/logging"
	"github.com/darkaengl/aura-sub000/pkg/types"
)

// Intent is the coarse category of a user utterance.
type Intent string

const (
	// IntentQuestion means the user wants information, not page actions.
	IntentQuestion Intent = "question"

	// IntentAction means the user wants the page manipulated.
	IntentAction Intent = "action"

	// IntentUnknown means the classifier produced neither category.
	IntentUnknown Intent = "unknown"
)

const classifySystemPrompt = `You are an intent classifier for a browser assistant.
Classify the user's message as exactly one word: "question" if they are asking for information, or "action" if they want the assistant to do something on the current web page (navigate, click, fill a form, select an option).
Reply with only that single word.`

const planSystemPrompt = `You convert a user's request into page commands.
Respond with a single JSON object, or a JSON array of objects, and nothing else. Each object has an "action" field plus the fields listed:
- {"action": "search_and_navigate", "topic": "<what to find>"} finds and opens the most relevant link or button.
- {"action": "agree_and_start_form"} accepts terms checkboxes and starts filling the form.
- {"action": "start_form_filling"} starts filling the form on the current page.
- {"action": "click", "selector": "<css selector>"}
- {"action": "fill", "selector": "<css selector>", "value": "<text>"}
- {"action": "select", "selector": "<css selector>", "value": "<visible option text>"}
If you are unsure what the user wants, respond with {"action": "search_and_navigate", "topic": "<the user's words>"}.`

// PlanKind discriminates the outcome of PlanActions.
type PlanKind int

const (
	// PlanCommands means the provider produced a valid command list.
	PlanCommands PlanKind = iota

	// PlanAnswer means the provider answered in prose; Answer holds it.
	PlanAnswer

	// PlanParseError means the output looked like JSON but did not parse;
	// Answer holds the raw text and Err the decode failure. Callers treat
	// it like PlanAnswer.
	PlanParseError
)

// Plan is the discriminated result of turning an utterance into commands.
type Plan struct {
	Kind     PlanKind
	Commands []command.Command
	Answer   string
	Err      error
}

// Router drives classification and action planning through feature-scoped
// providers.
type Router struct {
	classifier llm.Provider
	planner    llm.Provider
	logger     *logging.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *logging.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// NewRouter creates a Router using classifier for Classify and planner for
// PlanActions.
func NewRouter(classifier, planner llm.Provider, opts ...RouterOption) *Router {
	r := &Router{classifier: classifier, planner: planner}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify asks the classification provider to categorize the utterance.
// The reply is lower-cased and matched exactly, then leniently by substring,
// before falling back to IntentUnknown.
func (r *Router) Classify(ctx context.Context, utterance string) (Intent, error) {
	messages := []*types.Message{
		types.NewSystemMessage(classifySystemPrompt),
		types.NewUserMessage(utterance),
	}

	response, err := r.classifier.Complete(ctx, messages)
	if err != nil {
		return IntentUnknown, fmt.Errorf("intent classification failed: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(response.Content))
	switch answer {
	case "question":
		return IntentQuestion, nil
	case "action":
		return IntentAction, nil
	}
	if strings.Contains(answer, "question") {
		return IntentQuestion, nil
	}
	if strings.Contains(answer, "action") {
		return IntentAction, nil
	}

	if r.logger != nil {
		r.logger.Debugf("classifier produced no recognizable intent: %q", answer)
	}
	return IntentUnknown, nil
}

// PlanActions asks the planning provider for a command list. Output that is
// not JSON is treated as a plain chat answer, never an error; only provider
// failure itself returns a non-nil error.
func (r *Router) PlanActions(ctx context.Context, utterance string) (*Plan, error) {
	messages := []*types.Message{
		types.NewSystemMessage(planSystemPrompt),
		types.NewUserMessage(utterance),
	}

	response, err := r.planner.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("action planning failed: %w", err)
	}

	return parsePlan(response.Content), nil
}

// parsePlan normalizes raw provider output into a Plan. Code fences are
// stripped first; text that does not start with a JSON bracket is a plain
// answer; bracketed text that fails to parse is a parse error carrying the
// original text.
func parsePlan(raw string) *Plan {
	text := stripCodeFence(raw)
	trimmed := strings.TrimSpace(text)

	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return &Plan{Kind: PlanAnswer, Answer: strings.TrimSpace(raw)}
	}

	commands, err := command.DecodeList(trimmed)
	if err != nil {
		return &Plan{Kind: PlanParseError, Answer: strings.TrimSpace(raw), Err: err}
	}
	return &Plan{Kind: PlanCommands, Commands: commands}
}

// stripCodeFence removes a surrounding markdown code fence, with or without
// a language tag.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		first := strings.TrimSpace(trimmed[:idx])
		// A short first line is a language tag, not content.
		if len(first) <= 10 && !strings.ContainsAny(first, "{}[]") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
