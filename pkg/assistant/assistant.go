// Package assistant owns the application context: the request tracker, the
// form and voice singletons, and the routing from user input to the
// simplification pipeline or the command executor.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/darkaengl/aura-sub000/pkg/browser"
	"github.com/darkaengl/aura-sub000/pkg/command"
	"github.com/darkaengl/aura-sub000/pkg/form"
	"github.com/darkaengl/aura-sub000/pkg/intent"
	"github.com/darkaengl/aura-sub000/pkg/llm/fallback"
	"github.com/darkaengl/aura-sub000/pkg/logging"
	"github.com/darkaengl/aura-sub000/pkg/simplify"
	"github.com/darkaengl/aura-sub000/pkg/tracker"
	"github.com/darkaengl/aura-sub000/pkg/types"
)

// suggestionContentLimit bounds how much page text is sent to the
// suggestion provider.
const suggestionContentLimit = 4000

const chatSystemPrompt = `You are Aura, a browser assistant helping people use government and service websites.
Answer briefly and plainly. If the question is about the page the user is viewing, use the page context when provided.`

const suggestSystemPrompt = `The user just navigated to a web page. Based on its content, suggest up to three short next steps they might want to take, one per line.
Keep each suggestion under ten words and phrase it as something the user could say.`

// Assistant coordinates every user-facing operation. It owns the single
// request tracker, form manager, and event sink the components share.
type Assistant struct {
	tracker  *tracker.Tracker
	pipeline *simplify.Pipeline
	wrapper  *fallback.Wrapper
	router   *intent.Router
	executor *command.Executor
	forms    *form.Manager
	sandbox  browser.Sandbox
	events   types.EventSink
	sink     *logging.Sink
	logger   *logging.Logger
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithEvents sets the sink that receives user-visible events.
func WithEvents(sink types.EventSink) Option {
	return func(a *Assistant) {
		a.events = sink
	}
}

// WithResultSink sets the persistence sink that archives completed
// simplification results.
func WithResultSink(sink *logging.Sink) Option {
	return func(a *Assistant) {
		a.sink = sink
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *logging.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// New assembles the assistant core around one sandbox and one provider
// wrapper. The tracker, pipeline, router, executor, and form manager are
// constructed here so their single-instance invariants hold by ownership.
func New(sandbox browser.Sandbox, wrapper *fallback.Wrapper, opts ...Option) *Assistant {
	a := &Assistant{
		tracker: &tracker.Tracker{},
		wrapper: wrapper,
		sandbox: sandbox,
		events:  types.NopSink,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.pipeline = simplify.NewPipeline(a.tracker, simplify.WithLogger(a.logger))
	a.forms = form.NewManager(sandbox, form.WithEvents(a.events), form.WithLogger(a.logger))
	a.router = intent.NewRouter(
		wrapper.Bind(fallback.FeatureClassify),
		wrapper.Bind(fallback.FeaturePlan),
		intent.WithLogger(a.logger),
	)
	a.executor = command.NewExecutor(sandbox, a.forms,
		command.WithEvents(a.events),
		command.WithLogger(a.logger),
	)
	return a
}

// Forms exposes the form manager for the voice controller.
func (a *Assistant) Forms() *form.Manager {
	return a.forms
}

// SetSynonyms replaces the executor's search synonym table.
func (a *Assistant) SetSynonyms(table command.SynonymTable) {
	a.executor = command.NewExecutor(a.sandbox, a.forms,
		command.WithEvents(a.events),
		command.WithLogger(a.logger),
		command.WithSynonyms(table),
	)
}

// HandleInput routes one input envelope. Cancellation tears down any active
// form session; voice and typed text follow the same path as
// HandleChatMessage.
func (a *Assistant) HandleInput(ctx context.Context, input *types.Input) {
	if input == nil {
		return
	}
	if input.IsCancel() {
		a.forms.Cancel()
		return
	}
	if input.IsVoice() && a.logger != nil {
		a.logger.Infof("voice input: %q", input.Content)
	}
	a.HandleChatMessage(ctx, input.Content)
}

// HandleChatMessage routes one free-text message. An active form session
// consumes it first; otherwise it is classified and dispatched to either a
// chat answer or a planned command chain.
func (a *Assistant) HandleChatMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if a.forms.SubmitAnswer(ctx, text) {
		return
	}

	// A failed classification degrades to a chat answer rather than an
	// error; the router already reported the intent as unknown.
	kind, err := a.router.Classify(ctx, text)
	if err != nil && a.logger != nil {
		a.logger.Warnf("classification failed, answering as chat: %v", err)
	}

	switch kind {
	case intent.IntentAction:
		a.runPlannedActions(ctx, text)
	default:
		// Questions and unclassifiable input both get a chat answer.
		a.answerQuestion(ctx, text)
	}
}

// Agree runs the agreement-acknowledgement routine directly, bypassing
// classification. The voice controller calls this for agreement phrases.
func (a *Assistant) Agree(ctx context.Context) error {
	result := a.executor.Execute(ctx, []command.Command{command.AgreeAndStartForm{}})
	for _, step := range result.Steps {
		if !step.OK {
			return fmt.Errorf("%s", step.Message)
		}
	}
	return nil
}

// Simplify rewrites a document at the requested complexity. A newer call
// supersedes older in-flight ones through the shared tracker; superseded
// runs are silently discarded.
func (a *Assistant) Simplify(ctx context.Context, data simplify.TextData, complexity simplify.Complexity) (*simplify.Result, error) {
	token := a.tracker.Issue()
	provider := a.wrapper.Bind(fallback.FeatureSimplify)

	onProgress := func(p simplify.Progress) {
		event := types.NewStatusEvent(p.SimplifiedSoFar)
		event.Type = types.EventTypeSimplifyProgress
		event.Step = p.ChunkIndex + 1
		event.Total = p.ChunkCount
		a.events.Emit(event)
	}

	result, err := a.pipeline.Simplify(ctx, data, simplify.Options{Complexity: complexity}, token, provider, onProgress)
	if err != nil {
		a.events.Emit(types.NewErrorEvent(err))
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	if a.sink != nil {
		a.sink.Save("simplification", result)
	}
	return result, nil
}

// SimplifyPage simplifies the readable content of the current page.
func (a *Assistant) SimplifyPage(ctx context.Context, complexity simplify.Complexity) (*simplify.Result, error) {
	html, err := a.pageHTML(ctx)
	if err != nil {
		a.events.Emit(types.NewErrorEvent(err))
		return nil, err
	}

	content, err := browser.ExtractReadable(html, 0)
	if err != nil {
		a.events.Emit(types.NewErrorEvent(err))
		return nil, err
	}

	data := simplify.TextData{
		Text:  content.Text,
		Title: content.Title,
		URL:   a.sandbox.CurrentURL(),
	}
	return a.Simplify(ctx, data, complexity)
}

// answerQuestion gets a plain chat answer and emits it.
func (a *Assistant) answerQuestion(ctx context.Context, text string) {
	messages := []*types.Message{
		types.NewSystemMessage(chatSystemPrompt),
		types.NewUserMessage(text),
	}

	response, err := a.wrapper.Complete(ctx, fallback.FeatureChat, messages)
	if err != nil {
		a.events.Emit(types.NewErrorEvent(err))
		return
	}
	a.events.Emit(types.NewChatEvent(response.Content))
}

// runPlannedActions plans and executes a command chain, falling back to a
// chat answer when the plan comes back as prose.
func (a *Assistant) runPlannedActions(ctx context.Context, text string) {
	plan, err := a.router.PlanActions(ctx, text)
	if err != nil {
		a.events.Emit(types.NewErrorEvent(err))
		return
	}

	switch plan.Kind {
	case intent.PlanCommands:
		result := a.executor.Execute(ctx, plan.Commands)
		if result.Navigated {
			a.suggestNextSteps(ctx)
		}
	default:
		// Prose and unparseable output are both shown as chat.
		if plan.Answer != "" {
			a.events.Emit(types.NewChatEvent(plan.Answer))
		}
	}
}

// suggestNextSteps reads the landed page and asks the suggestion provider
// for follow-up actions. Failures are logged, never surfaced; suggestions
// are best-effort.
func (a *Assistant) suggestNextSteps(ctx context.Context) {
	html, err := a.pageHTML(ctx)
	if err != nil {
		if a.logger != nil {
			a.logger.Warnf("suggestion pass skipped: %v", err)
		}
		return
	}

	content, err := browser.ExtractReadable(html, suggestionContentLimit)
	if err != nil || content.Text == "" {
		return
	}

	pageContext := content.Text
	if content.Title != "" {
		pageContext = content.Title + "\n\n" + pageContext
	}
	messages := []*types.Message{
		types.NewSystemMessage(suggestSystemPrompt),
		types.NewUserMessage(pageContext),
	}

	response, err := a.wrapper.Complete(ctx, fallback.FeatureSuggest, messages)
	if err != nil {
		if a.logger != nil {
			a.logger.Warnf("suggestion generation failed: %v", err)
		}
		return
	}
	if suggestion := strings.TrimSpace(response.Content); suggestion != "" {
		a.events.Emit(types.NewSuggestionEvent(suggestion))
	}
}

// pageHTML serializes the current page through the sandbox.
func (a *Assistant) pageHTML(ctx context.Context) (string, error) {
	var html string
	if err := browser.RunInto(ctx, a.sandbox, "document.documentElement.outerHTML", &html); err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}
