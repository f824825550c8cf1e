// Package form implements the guided form-filling session: one session at a
// time walks the user through the fillable fields of a page, one field per
// answer, with skip and cancel keywords.
package form

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/darkaengl/aura-sub000/pkg/browser"
	"github.com/darkaengl/aura-sub000/pkg/logging"
	"github.com/darkaengl/aura-sub000/pkg/types"
)

// Field describes one fillable element discovered on the page.
type Field struct {
	Selector  string   `json:"selector"`
	Label     string   `json:"label"`
	Tag       string   `json:"tag"`
	InputType string   `json:"inputType"`
	Required  bool     `json:"required"`
	Options   []string `json:"options,omitempty"`
}

// Snapshot is the externally visible state of the active session.
type Snapshot struct {
	Fields       []Field
	CurrentIndex int
	Answers      map[string]string
}

var (
	cancelKeywords = map[string]bool{"cancel": true, "stop": true, "abort": true, "quit": true}
	skipKeywords   = map[string]bool{"skip": true, "next": true, "na": true, "n/a": true}
)

// session is the internal state; only the Manager touches it.
type session struct {
	fields       []Field
	currentIndex int
	answers      map[string]string
}

// Manager owns the single form session. Starting a session while one is
// active re-prompts the current field and leaves the session untouched.
type Manager struct {
	mu      sync.Mutex
	sandbox browser.Sandbox
	events  types.EventSink
	logger  *logging.Logger
	session *session
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithEvents sets the sink that receives prompts and status messages.
func WithEvents(sink types.EventSink) ManagerOption {
	return func(m *Manager) {
		m.events = sink
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *logging.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given page sandbox.
func NewManager(sandbox browser.Sandbox, opts ...ManagerOption) *Manager {
	m := &Manager{sandbox: sandbox, events: types.NopSink}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartForm begins a session on the current page. When a session is already
// active it returns that session's state unchanged, re-prompting the current
// field. With no fillable fields it reports failure and leaves no session.
func (m *Manager) StartForm(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.promptCurrentLocked()
		return nil
	}

	var fields []Field
	if err := browser.RunInto(ctx, m.sandbox, discoverFieldsScript, &fields); err != nil {
		return fmt.Errorf("failed to scan form fields: %w", err)
	}
	if len(fields) == 0 {
		m.events.Emit(types.NewStatusEvent("No fillable fields found on this page."))
		return fmt.Errorf("no fillable fields found")
	}

	m.session = &session{fields: fields, answers: make(map[string]string)}
	if m.logger != nil {
		m.logger.Infof("form session started with %d fields", len(fields))
	}
	m.events.Emit(types.NewStatusEvent(fmt.Sprintf("Found %d fields to fill. Say 'skip' to skip a field or 'cancel' to stop.", len(fields))))
	m.promptCurrentLocked()
	return nil
}

// Active reports whether a session is in progress.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// State returns a copy of the active session's state, or false when no
// session exists.
func (m *Manager) State() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return Snapshot{}, false
	}

	snapshot := Snapshot{
		Fields:       append([]Field(nil), m.session.fields...),
		CurrentIndex: m.session.currentIndex,
		Answers:      make(map[string]string, len(m.session.answers)),
	}
	for k, v := range m.session.answers {
		snapshot.Answers[k] = v
	}
	return snapshot, true
}

// SubmitAnswer routes one user answer to the current field. It returns false
// when no session is active, so the caller can handle the text some other
// way. Cancel keywords destroy the session; skip keywords advance without
// writing; anything else is written to the field and the session advances
// whether or not the write succeeded.
func (m *Manager) SubmitAnswer(ctx context.Context, text string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return false
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	if cancelKeywords[normalized] {
		m.session = nil
		m.events.Emit(types.NewStatusEvent("Form filling cancelled."))
		return true
	}

	field := m.session.fields[m.session.currentIndex]
	if skipKeywords[normalized] {
		m.events.Emit(types.NewStatusEvent(fmt.Sprintf("Skipped %s.", field.Label)))
		m.advanceLocked()
		return true
	}

	value := strings.TrimSpace(text)
	if err := m.writeField(ctx, field, value); err != nil {
		m.events.Emit(types.NewStatusEvent(fmt.Sprintf("Could not fill %s: %v. Moving on.", field.Label, err)))
		if m.logger != nil {
			m.logger.Warnf("field write failed for %s: %v", field.Selector, err)
		}
	} else {
		m.session.answers[field.Selector] = value
		m.events.Emit(types.NewStatusEvent(fmt.Sprintf("Filled %s.", field.Label)))
	}

	m.advanceLocked()
	return true
}

// Cancel destroys any active session without touching the page.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return
	}
	m.session = nil
	m.events.Emit(types.NewStatusEvent("Form filling cancelled."))
}

// advanceLocked moves to the next field, completing and destroying the
// session past the last one. Callers hold m.mu.
func (m *Manager) advanceLocked() {
	m.session.currentIndex++
	if m.session.currentIndex >= len(m.session.fields) {
		answered := len(m.session.answers)
		total := len(m.session.fields)
		m.session = nil
		m.events.Emit(types.NewStatusEvent(fmt.Sprintf("Form complete: %d of %d fields filled. Review and submit when ready.", answered, total)))
		return
	}
	m.promptCurrentLocked()
}

// promptCurrentLocked emits the prompt for the current field. Callers hold
// m.mu.
func (m *Manager) promptCurrentLocked() {
	field := m.session.fields[m.session.currentIndex]
	prompt := fmt.Sprintf("Field %d of %d: %s?", m.session.currentIndex+1, len(m.session.fields), field.Label)
	if len(field.Options) > 0 {
		prompt += " Options: " + strings.Join(field.Options, ", ")
	}
	m.events.Emit(types.NewFormPromptEvent(prompt))
}

// writeField applies one answer through the sandbox.
func (m *Manager) writeField(ctx context.Context, field Field, value string) error {
	script := fmt.Sprintf(writeFieldScript, jsString(field.Selector), jsString(value))

	var res struct {
		OK     bool   `json:"ok"`
		Reason string `json:"reason"`
	}
	if err := browser.RunInto(ctx, m.sandbox, script, &res); err != nil {
		return err
	}
	if !res.OK {
		switch res.Reason {
		case "not_found":
			return fmt.Errorf("element not found")
		case "no_matching_option":
			return fmt.Errorf("no option matches %q", value)
		default:
			return fmt.Errorf("write failed")
		}
	}
	return nil
}

// jsString renders s as a JS string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
