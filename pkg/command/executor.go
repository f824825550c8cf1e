package command

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/darkaengl/aura-sub000/pkg/browser"
	"github.com/darkaengl/aura-sub000/pkg/logging"
	"github.com/darkaengl/aura-sub000/pkg/types"
)

// FormStarter begins a guided form-filling session on the current page. The
// form package provides the production implementation.
type FormStarter interface {
	StartForm(ctx context.Context) error
}

// StepReport records the outcome of one command in a chain.
type StepReport struct {
	Index   int // 1-based position in the chain
	Message string
	OK      bool
}

// Result summarizes an executed command chain.
type Result struct {
	Steps []StepReport

	// Navigated is true when at least one search_and_navigate step ran,
	// which signals the caller to generate next-step suggestions.
	Navigated bool

	// Halted is true when a chain-fatal step stopped execution early.
	Halted bool
}

// Executor runs command chains against a page sandbox, one command at a
// time, reporting each step through an event sink. Soft failures (selector
// not found, no search match) are reported and the chain continues; only
// malformed commands or unexpected sandbox errors halt it.
type Executor struct {
	sandbox  browser.Sandbox
	forms    FormStarter
	synonyms SynonymTable
	events   types.EventSink
	logger   *logging.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithSynonyms replaces the built-in synonym table.
func WithSynonyms(table SynonymTable) ExecutorOption {
	return func(e *Executor) {
		e.synonyms = table
	}
}

// WithEvents sets the sink that receives step commentary.
func WithEvents(sink types.EventSink) ExecutorOption {
	return func(e *Executor) {
		e.events = sink
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *logging.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an Executor over the given sandbox and form starter.
func NewExecutor(sandbox browser.Sandbox, forms FormStarter, opts ...ExecutorOption) *Executor {
	e := &Executor{
		sandbox:  sandbox,
		forms:    forms,
		synonyms: DefaultSynonyms(),
		events:   types.NopSink,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the chain strictly in order. Every step's outcome is emitted
// as a command step event and collected into the Result.
func (e *Executor) Execute(ctx context.Context, commands []Command) *Result {
	result := &Result{}
	total := len(commands)

	for i, cmd := range commands {
		if err := ctx.Err(); err != nil {
			result.Halted = true
			e.report(result, i+1, total, false, "stopped: "+err.Error())
			return result
		}

		switch c := cmd.(type) {
		case SearchAndNavigate:
			result.Navigated = true
			message, ok := e.runSearchAndNavigate(ctx, c)
			e.report(result, i+1, total, ok, message)
		case AgreeAndStartForm:
			message, ok := e.runAgree(ctx)
			e.report(result, i+1, total, ok, message)
		case StartFormFilling:
			message, ok := e.runStartForm(ctx)
			e.report(result, i+1, total, ok, message)
		case Click:
			message, ok := e.runSelectorScript(ctx, fmt.Sprintf(clickSelectorScript, jsString(c.Selector)), "clicked "+c.Selector)
			e.report(result, i+1, total, ok, message)
		case Fill:
			message, ok := e.runSelectorScript(ctx, fmt.Sprintf(fillSelectorScript, jsString(c.Selector), jsString(c.Value)), "filled "+c.Selector)
			e.report(result, i+1, total, ok, message)
		case Select:
			message, ok := e.runSelectorScript(ctx, fmt.Sprintf(selectOptionScript, jsString(c.Selector), jsString(c.OptionText)), fmt.Sprintf("selected '%s' in %s", c.OptionText, c.Selector))
			e.report(result, i+1, total, ok, message)
		case Unsupported:
			e.report(result, i+1, total, false, fmt.Sprintf("skipped unsupported action '%s'", c.Action))
		case Malformed:
			result.Halted = true
			e.report(result, i+1, total, false, "malformed command, stopping here")
			return result
		}
	}
	return result
}

// report records one step outcome and pushes it to the event sink.
func (e *Executor) report(result *Result, step, total int, ok bool, message string) {
	result.Steps = append(result.Steps, StepReport{Index: step, Message: message, OK: ok})
	e.events.Emit(types.NewCommandStepEvent(step, total, message))
	if e.logger != nil {
		e.logger.Debugf("command step %d/%d ok=%v: %s", step, total, ok, message)
	}
}

// directURLPattern matches full URLs and bare domains like "services.example"
// or "example.com/path".
var directURLPattern = regexp.MustCompile(`^(https?://\S+|[\w-]+(\.[\w-]+)+(/\S*)?)$`)

func (e *Executor) runSearchAndNavigate(ctx context.Context, cmd SearchAndNavigate) (string, bool) {
	topic := strings.TrimSpace(cmd.Topic)

	if directURLPattern.MatchString(topic) {
		url := topic
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			url = "https://" + url
		}
		if err := e.sandbox.Navigate(ctx, url); err != nil {
			return fmt.Sprintf("could not open %s: %v", url, err), false
		}
		return "opened " + url, true
	}

	var candidates []clickable
	if err := browser.RunInto(ctx, e.sandbox, collectClickablesScript, &candidates); err != nil {
		return fmt.Sprintf("could not scan the page: %v", err), false
	}

	best, score := bestMatch(candidates, searchVariants(topic, e.synonyms))
	if score <= 0 {
		return fmt.Sprintf("nothing on this page matched '%s'", topic), false
	}

	var clickResult struct {
		OK   bool   `json:"ok"`
		Text string `json:"text"`
	}
	if err := browser.RunInto(ctx, e.sandbox, fmt.Sprintf(clickByIndexScript, best.Index), &clickResult); err != nil {
		return fmt.Sprintf("could not click the match for '%s': %v", topic, err), false
	}
	if !clickResult.OK {
		return fmt.Sprintf("the match for '%s' disappeared before it could be clicked", topic), false
	}

	label := clickResult.Text
	if label == "" {
		label = best.Text
	}
	return fmt.Sprintf("clicked '%s'", label), true
}

func (e *Executor) runAgree(ctx context.Context) (string, bool) {
	var agreed struct {
		Labels []string `json:"labels"`
	}
	if err := browser.RunInto(ctx, e.sandbox, agreeCheckboxesScript, &agreed); err != nil {
		return fmt.Sprintf("could not check agreement boxes: %v", err), false
	}

	var message string
	if len(agreed.Labels) == 0 {
		message = "no agreement checkboxes found"
	} else {
		message = "acknowledged: " + strings.Join(agreed.Labels, "; ")
	}

	if err := e.forms.StartForm(ctx); err != nil {
		return message + "; could not start the form: " + err.Error(), false
	}
	return message, true
}

func (e *Executor) runStartForm(ctx context.Context) (string, bool) {
	if err := e.forms.StartForm(ctx); err != nil {
		return "could not start the form: " + err.Error(), false
	}
	return "started form filling", true
}

// runSelectorScript executes a click/fill/select script and translates its
// {ok, reason} result into commentary.
func (e *Executor) runSelectorScript(ctx context.Context, script, okMessage string) (string, bool) {
	var res struct {
		OK     bool   `json:"ok"`
		Reason string `json:"reason"`
	}
	if err := browser.RunInto(ctx, e.sandbox, script, &res); err != nil {
		return fmt.Sprintf("page script failed: %v", err), false
	}
	if !res.OK {
		switch res.Reason {
		case "not_found":
			return "element not found", false
		case "not_a_select":
			return "element is not a dropdown", false
		case "no_matching_option":
			return "no matching option", false
		default:
			return "step failed", false
		}
	}
	return okMessage, true
}

// clickable mirrors the objects collectClickablesScript returns.
type clickable struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Href  string  `json:"href"`
	Y     float64 `json:"y"`
}

// searchVariants expands a topic into the lowercase phrasings used for
// scoring: the whole topic, its space-stripped form, each word longer than
// two characters, and synonyms for the topic and for each word.
func searchVariants(topic string, synonyms SynonymTable) []string {
	lower := strings.ToLower(strings.TrimSpace(topic))
	if lower == "" {
		return nil
	}

	seen := map[string]bool{}
	var variants []string
	add := func(v string) {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		variants = append(variants, v)
	}

	add(lower)
	add(strings.ReplaceAll(lower, " ", ""))
	for _, syn := range synonyms.lookup(lower) {
		add(syn)
	}
	for _, word := range strings.Fields(lower) {
		if len(word) > 2 {
			add(word)
			for _, syn := range synonyms.lookup(word) {
				add(syn)
			}
		}
	}
	return variants
}

// bestMatch scores every candidate by the summed length of the variants
// found in its text and href, breaking ties by vertical position (higher on
// the page wins).
func bestMatch(candidates []clickable, variants []string) (clickable, int) {
	type scored struct {
		c     clickable
		score int
	}

	results := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		haystack := strings.ToLower(c.Text + " " + c.Href)
		score := 0
		for _, v := range variants {
			if strings.Contains(haystack, v) {
				score += len(v)
			}
		}
		if score > 0 {
			results = append(results, scored{c: c, score: score})
		}
	}
	if len(results) == 0 {
		return clickable{}, 0
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].c.Y < results[j].c.Y
	})
	return results[0].c, results[0].score
}

// jsString renders s as a JS string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
