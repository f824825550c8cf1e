// Package command defines the page-manipulation command set and the executor
// that runs an ordered command chain against a page sandbox.
package command

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Command is a single page-manipulation step. The set of variants is closed;
// the executor matches exhaustively over them.
type Command interface {
	// Describe returns a short human-readable summary for commentary.
	Describe() string

	isCommand()
}

// SearchAndNavigate navigates to a topic, either directly (when the topic
// looks like a URL or bare domain) or by a relevance-scored search over the
// page's clickable elements.
type SearchAndNavigate struct {
	Topic string
}

func (c SearchAndNavigate) Describe() string { return fmt.Sprintf("find '%s'", c.Topic) }
func (SearchAndNavigate) isCommand()         {}

// AgreeAndStartForm checks agreement checkboxes on the page and then starts
// guided form filling.
type AgreeAndStartForm struct{}

func (AgreeAndStartForm) Describe() string { return "accept terms and start the form" }
func (AgreeAndStartForm) isCommand()       {}

// StartFormFilling begins a guided form-filling session on the current page.
type StartFormFilling struct{}

func (StartFormFilling) Describe() string { return "start filling the form" }
func (StartFormFilling) isCommand()       {}

// Click clicks the element matching Selector.
type Click struct {
	Selector string
}

func (c Click) Describe() string { return fmt.Sprintf("click '%s'", c.Selector) }
func (Click) isCommand()         {}

// Fill writes Value into the element matching Selector.
type Fill struct {
	Selector string
	Value    string
}

func (c Fill) Describe() string { return fmt.Sprintf("fill '%s'", c.Selector) }
func (Fill) isCommand()         {}

// Select chooses the option whose visible text matches OptionText in the
// select element matching Selector.
type Select struct {
	Selector   string
	OptionText string
}

func (c Select) Describe() string { return fmt.Sprintf("select '%s' in '%s'", c.OptionText, c.Selector) }
func (Select) isCommand()         {}

// Unsupported carries an action name the executor does not know. It is
// reported and skipped without halting the chain.
type Unsupported struct {
	Action string
	Raw    json.RawMessage
}

func (c Unsupported) Describe() string { return fmt.Sprintf("unsupported action '%s'", c.Action) }
func (Unsupported) isCommand()         {}

// Malformed carries a command object with no usable action field. Executing
// it halts the remaining chain.
type Malformed struct {
	Raw json.RawMessage
}

func (Malformed) Describe() string { return "malformed command" }
func (Malformed) isCommand()       {}

// wireCommand is the provider-facing JSON shape of one command.
type wireCommand struct {
	Action   string `json:"action"`
	Topic    string `json:"topic,omitempty"`
	Selector string `json:"selector,omitempty"`
	Value    string `json:"value,omitempty"`
}

// Decode converts one raw JSON command object into its variant. Objects with
// a missing or empty action decode to Malformed; known actions with missing
// required fields also decode to Malformed; unknown actions decode to
// Unsupported.
func Decode(raw json.RawMessage) Command {
	var wire wireCommand
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Malformed{Raw: raw}
	}

	action := strings.ToLower(strings.TrimSpace(wire.Action))
	switch action {
	case "":
		return Malformed{Raw: raw}
	case "search_and_navigate":
		if wire.Topic == "" {
			return Malformed{Raw: raw}
		}
		return SearchAndNavigate{Topic: wire.Topic}
	case "agree_and_start_form":
		return AgreeAndStartForm{}
	case "start_form_filling":
		return StartFormFilling{}
	case "click":
		if wire.Selector == "" {
			return Malformed{Raw: raw}
		}
		return Click{Selector: wire.Selector}
	case "fill":
		if wire.Selector == "" {
			return Malformed{Raw: raw}
		}
		return Fill{Selector: wire.Selector, Value: wire.Value}
	case "select":
		if wire.Selector == "" {
			return Malformed{Raw: raw}
		}
		return Select{Selector: wire.Selector, OptionText: wire.Value}
	default:
		return Unsupported{Action: wire.Action, Raw: raw}
	}
}

// DecodeList parses provider output that may be a single JSON object or a
// JSON array of objects, normalizing both to a list of commands.
func DecodeList(text string) ([]Command, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty command payload")
	}

	var rawList []json.RawMessage
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &rawList); err != nil {
			return nil, fmt.Errorf("failed to parse command array: %w", err)
		}
	} else {
		var single json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return nil, fmt.Errorf("failed to parse command object: %w", err)
		}
		rawList = []json.RawMessage{single}
	}

	commands := make([]Command, 0, len(rawList))
	for _, raw := range rawList {
		commands = append(commands, Decode(raw))
	}
	if len(commands) == 0 {
		return nil, fmt.Errorf("command array is empty")
	}
	return commands, nil
}
