package types

// InputType defines the type of input being routed into the assistant.
type InputType string

const (
	InputTypeCancel     InputType = "cancel"      // InputTypeCancel indicates a cancellation request.
	InputTypeUserInput  InputType = "user_input"  // InputTypeUserInput indicates a typed text input from the user.
	InputTypeVoiceInput InputType = "voice_input" // InputTypeVoiceInput indicates a transcribed voice utterance.
)

// Input represents input routed to the assistant from the UI or the voice
// controller. Voice and typed inputs follow the same handling path; the
// distinction is kept for logging.
type Input struct {
	// Metadata holds optional additional information about the input.
	Metadata map[string]interface{}

	// Content is the text content of the input.
	Content string

	// Type indicates the kind of input.
	Type InputType
}

// NewCancelInput creates a new cancellation input.
func NewCancelInput() *Input {
	return &Input{Type: InputTypeCancel}
}

// NewUserInput creates a new typed text input.
func NewUserInput(content string) *Input {
	return &Input{Type: InputTypeUserInput, Content: content}
}

// NewVoiceInput creates a new transcribed voice input.
func NewVoiceInput(content string) *Input {
	return &Input{Type: InputTypeVoiceInput, Content: content}
}

// IsCancel returns true if this is a cancellation input.
func (i *Input) IsCancel() bool {
	return i.Type == InputTypeCancel
}

// IsVoice returns true if this input came from the voice controller.
func (i *Input) IsVoice() bool {
	return i.Type == InputTypeVoiceInput
}
