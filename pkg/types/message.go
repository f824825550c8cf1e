package types

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single chat-completion message exchanged with a provider.
type Message struct {
	// Role indicates who authored the message (system, user, assistant).
	Role MessageRole

	// Content is the text content of the message.
	Content string
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant-role message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// ModelInfo describes the model behind a provider.
type ModelInfo struct {
	// Provider is the provider family name (e.g. "openai").
	Provider string

	// Name is the model name (e.g. "gpt-4o").
	Name string

	// Metadata holds provider-specific details such as a non-default base URL.
	Metadata map[string]interface{}
}
