package types

import "time"

// EventType defines the type of event emitted by the assistant core.
type EventType string

const (
	EventTypeStatus           EventType = "status"            // EventTypeStatus indicates a human-readable status update.
	EventTypeChat             EventType = "chat"              // EventTypeChat indicates a chat answer to display to the user.
	EventTypeCommandStep      EventType = "command_step"      // EventTypeCommandStep indicates commentary for one command in an executing chain.
	EventTypeSimplifyProgress EventType = "simplify_progress" // EventTypeSimplifyProgress indicates a partial simplification result is ready to render.
	EventTypeFormPrompt       EventType = "form_prompt"       // EventTypeFormPrompt indicates the form session is asking for the next field value.
	EventTypeSuggestion       EventType = "suggestion"        // EventTypeSuggestion indicates generated next-step suggestions after navigation.
	EventTypeError            EventType = "error"             // EventTypeError indicates an error surfaced to the user.
)

// Event represents a single user-visible occurrence emitted while the core is
// working: running commentary from the command executor, incremental
// simplification progress, form prompts, chat answers, and errors.
type Event struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// Error contains error information for error events.
	Error error

	// Content holds the text content of the event.
	Content string

	// Type indicates the kind of event.
	Type EventType

	// Step and Total describe chain position for command step events
	// (1-indexed; zero when not applicable).
	Step  int
	Total int

	// Timestamp records when the event was created.
	Timestamp time.Time
}

// EventSink consumes events as they are emitted. Implementations must be
// cheap and non-blocking; the core calls them inline.
type EventSink interface {
	Emit(event *Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(event *Event)

// Emit calls f(event).
func (f EventSinkFunc) Emit(event *Event) {
	f(event)
}

// NopSink discards all events.
var NopSink EventSink = EventSinkFunc(func(*Event) {})

// NewStatusEvent creates a status event.
func NewStatusEvent(content string) *Event {
	return &Event{Type: EventTypeStatus, Content: content, Timestamp: time.Now()}
}

// NewChatEvent creates a chat answer event.
func NewChatEvent(content string) *Event {
	return &Event{Type: EventTypeChat, Content: content, Timestamp: time.Now()}
}

// NewCommandStepEvent creates commentary for one step of a command chain.
func NewCommandStepEvent(step, total int, content string) *Event {
	return &Event{Type: EventTypeCommandStep, Step: step, Total: total, Content: content, Timestamp: time.Now()}
}

// NewFormPromptEvent creates a form field prompt event.
func NewFormPromptEvent(content string) *Event {
	return &Event{Type: EventTypeFormPrompt, Content: content, Timestamp: time.Now()}
}

// NewSuggestionEvent creates a next-step suggestion event.
func NewSuggestionEvent(content string) *Event {
	return &Event{Type: EventTypeSuggestion, Content: content, Timestamp: time.Now()}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(err error) *Event {
	return &Event{Type: EventTypeError, Error: err, Content: err.Error(), Timestamp: time.Now()}
}

// IsError returns true if this is an error event.
func (e *Event) IsError() bool {
	return e.Type == EventTypeError
}
