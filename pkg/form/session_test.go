package form

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/darkaengl/aura-sub000/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoFieldsJSON = `[
	{"selector": "#name", "label": "Full name", "tag": "input", "inputType": "text", "required": true},
	{"selector": "#state", "label": "State", "tag": "select", "inputType": "", "required": false, "options": ["Oregon", "Washington"]}
]`

// scriptedSandbox answers the discovery script with a canned field list and
// write scripts with a canned result.
type scriptedSandbox struct {
	fieldsJSON  string
	writeResult string
	writeErr    error
	writes      []string
}

func (s *scriptedSandbox) Run(ctx context.Context, scriptSource string) (json.RawMessage, error) {
	if strings.Contains(scriptSource, "querySelectorAll('input, textarea, select')") {
		return json.RawMessage(s.fieldsJSON), nil
	}
	s.writes = append(s.writes, scriptSource)
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	if s.writeResult == "" {
		return json.RawMessage(`{"ok": true}`), nil
	}
	return json.RawMessage(s.writeResult), nil
}

func (s *scriptedSandbox) Navigate(ctx context.Context, url string) error { return nil }
func (s *scriptedSandbox) CurrentURL() string                             { return "https://example.com" }

func collectEvents(events *[]*types.Event) types.EventSink {
	return types.EventSinkFunc(func(e *types.Event) {
		*events = append(*events, e)
	})
}

func TestStartFormDiscoversFields(t *testing.T) {
	var events []*types.Event
	manager := NewManager(&scriptedSandbox{fieldsJSON: twoFieldsJSON}, WithEvents(collectEvents(&events)))

	require.NoError(t, manager.StartForm(context.Background()))
	assert.True(t, manager.Active())

	state, ok := manager.State()
	require.True(t, ok)
	assert.Len(t, state.Fields, 2)
	assert.Equal(t, 0, state.CurrentIndex)

	// The first prompt names the first field.
	var prompts []string
	for _, e := range events {
		if e.Type == types.EventTypeFormPrompt {
			prompts = append(prompts, e.Content)
		}
	}
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Field 1 of 2")
	assert.Contains(t, prompts[0], "Full name")
}

func TestStartFormSingleton(t *testing.T) {
	manager := NewManager(&scriptedSandbox{fieldsJSON: twoFieldsJSON})
	require.NoError(t, manager.StartForm(context.Background()))

	first, ok := manager.State()
	require.True(t, ok)

	// Starting again returns the same session unchanged.
	require.NoError(t, manager.StartForm(context.Background()))
	second, ok := manager.State()
	require.True(t, ok)

	assert.Equal(t, first.Fields, second.Fields)
	assert.Equal(t, first.CurrentIndex, second.CurrentIndex)
}

func TestStartFormNoFields(t *testing.T) {
	manager := NewManager(&scriptedSandbox{fieldsJSON: `[]`})

	err := manager.StartForm(context.Background())
	assert.Error(t, err)
	assert.False(t, manager.Active())
}

func TestSubmitAnswerFillsAndAdvances(t *testing.T) {
	sandbox := &scriptedSandbox{fieldsJSON: twoFieldsJSON}
	var events []*types.Event
	manager := NewManager(sandbox, WithEvents(collectEvents(&events)))
	require.NoError(t, manager.StartForm(context.Background()))

	consumed := manager.SubmitAnswer(context.Background(), "Ada Lovelace")
	assert.True(t, consumed)
	require.Len(t, sandbox.writes, 1)
	assert.Contains(t, sandbox.writes[0], `"Ada Lovelace"`)

	state, ok := manager.State()
	require.True(t, ok)
	assert.Equal(t, 1, state.CurrentIndex)
	assert.Equal(t, "Ada Lovelace", state.Answers["#name"])
}

func TestSubmitAnswerCompletesSession(t *testing.T) {
	sandbox := &scriptedSandbox{fieldsJSON: twoFieldsJSON}
	var events []*types.Event
	manager := NewManager(sandbox, WithEvents(collectEvents(&events)))
	require.NoError(t, manager.StartForm(context.Background()))

	manager.SubmitAnswer(context.Background(), "Ada Lovelace")
	manager.SubmitAnswer(context.Background(), "Oregon")

	assert.False(t, manager.Active())

	var sawCompletion bool
	for _, e := range events {
		if strings.Contains(e.Content, "Form complete") {
			sawCompletion = true
		}
	}
	assert.True(t, sawCompletion)
}

func TestSubmitAnswerSkip(t *testing.T) {
	sandbox := &scriptedSandbox{fieldsJSON: twoFieldsJSON}
	manager := NewManager(sandbox)
	require.NoError(t, manager.StartForm(context.Background()))

	consumed := manager.SubmitAnswer(context.Background(), "skip")
	assert.True(t, consumed)
	assert.Empty(t, sandbox.writes)

	state, ok := manager.State()
	require.True(t, ok)
	assert.Equal(t, 1, state.CurrentIndex)
	assert.Empty(t, state.Answers)
}

func TestSubmitAnswerCancel(t *testing.T) {
	tests := []string{"cancel", "STOP", " abort ", "quit"}
	for _, keyword := range tests {
		t.Run(keyword, func(t *testing.T) {
			manager := NewManager(&scriptedSandbox{fieldsJSON: twoFieldsJSON})
			require.NoError(t, manager.StartForm(context.Background()))

			consumed := manager.SubmitAnswer(context.Background(), keyword)
			assert.True(t, consumed)
			assert.False(t, manager.Active())
		})
	}
}

func TestSubmitAnswerWriteFailureStillAdvances(t *testing.T) {
	sandbox := &scriptedSandbox{fieldsJSON: twoFieldsJSON, writeErr: fmt.Errorf("page crashed")}
	var events []*types.Event
	manager := NewManager(sandbox, WithEvents(collectEvents(&events)))
	require.NoError(t, manager.StartForm(context.Background()))

	consumed := manager.SubmitAnswer(context.Background(), "Ada Lovelace")
	assert.True(t, consumed)

	state, ok := manager.State()
	require.True(t, ok)
	assert.Equal(t, 1, state.CurrentIndex)
	assert.Empty(t, state.Answers)
}

func TestSubmitAnswerNoSession(t *testing.T) {
	manager := NewManager(&scriptedSandbox{fieldsJSON: twoFieldsJSON})
	assert.False(t, manager.SubmitAnswer(context.Background(), "hello"))
}

func TestSelectPromptListsOptions(t *testing.T) {
	var events []*types.Event
	manager := NewManager(&scriptedSandbox{fieldsJSON: twoFieldsJSON}, WithEvents(collectEvents(&events)))
	require.NoError(t, manager.StartForm(context.Background()))
	manager.SubmitAnswer(context.Background(), "skip")

	var lastPrompt string
	for _, e := range events {
		if e.Type == types.EventTypeFormPrompt {
			lastPrompt = e.Content
		}
	}
	assert.Contains(t, lastPrompt, "State")
	assert.Contains(t, lastPrompt, "Oregon, Washington")
}

func TestCancelIdempotent(t *testing.T) {
	manager := NewManager(&scriptedSandbox{fieldsJSON: twoFieldsJSON})
	require.NoError(t, manager.StartForm(context.Background()))

	manager.Cancel()
	manager.Cancel()
	assert.False(t, manager.Active())
}
