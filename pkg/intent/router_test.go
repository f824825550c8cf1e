package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/darkaengl/aura-sub000/pkg/command"
	"github.com/darkaengl/aura-sub000/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cannedProvider returns a fixed response or error for every Complete call.
type cannedProvider struct {
	response string
	err      error
	calls    int
}

func (p *cannedProvider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return types.NewAssistantMessage(p.response), nil
}

func (p *cannedProvider) GetModelInfo() *types.ModelInfo {
	return &types.ModelInfo{Provider: "canned", Name: "canned"}
}

func (p *cannedProvider) GetModel() string { return "canned" }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Intent
	}{
		{name: "exact question", response: "question", want: IntentQuestion},
		{name: "exact action", response: "action", want: IntentAction},
		{name: "uppercase with whitespace", response: "  Question\n", want: IntentQuestion},
		{name: "substring fallback", response: "This looks like an action request.", want: IntentAction},
		{name: "question substring", response: "category: question", want: IntentQuestion},
		{name: "unrecognized", response: "banana", want: IntentUnknown},
		{name: "empty", response: "", want: IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(&cannedProvider{response: tt.response}, &cannedProvider{})
			got, err := router.Classify(context.Background(), "do the thing")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyProviderError(t *testing.T) {
	wantErr := errors.New("provider down")
	router := NewRouter(&cannedProvider{err: wantErr}, &cannedProvider{})

	got, err := router.Classify(context.Background(), "hello")
	assert.Equal(t, IntentUnknown, got)
	assert.ErrorIs(t, err, wantErr)
}

func TestPlanActionsSingleObject(t *testing.T) {
	planner := &cannedProvider{response: `{"action": "click", "selector": "#go"}`}
	router := NewRouter(&cannedProvider{}, planner)

	plan, err := router.PlanActions(context.Background(), "press go")
	require.NoError(t, err)
	assert.Equal(t, PlanCommands, plan.Kind)
	require.Len(t, plan.Commands, 1)
	assert.Equal(t, command.Click{Selector: "#go"}, plan.Commands[0])
}

func TestPlanActionsArray(t *testing.T) {
	planner := &cannedProvider{response: `[
		{"action": "search_and_navigate", "topic": "vehicle registration"},
		{"action": "agree_and_start_form"}
	]`}
	router := NewRouter(&cannedProvider{}, planner)

	plan, err := router.PlanActions(context.Background(), "renew my registration")
	require.NoError(t, err)
	assert.Equal(t, PlanCommands, plan.Kind)
	require.Len(t, plan.Commands, 2)
}

func TestPlanActionsFencedJSON(t *testing.T) {
	planner := &cannedProvider{response: "```json\n{\"action\": \"click\", \"selector\": \"#go\"}\n```"}
	router := NewRouter(&cannedProvider{}, planner)

	plan, err := router.PlanActions(context.Background(), "press go")
	require.NoError(t, err)
	assert.Equal(t, PlanCommands, plan.Kind)
}

func TestPlanActionsProseBecomesAnswer(t *testing.T) {
	planner := &cannedProvider{response: "You can renew your registration at the county office."}
	router := NewRouter(&cannedProvider{}, planner)

	plan, err := router.PlanActions(context.Background(), "how do I renew")
	require.NoError(t, err)
	assert.Equal(t, PlanAnswer, plan.Kind)
	assert.Equal(t, "You can renew your registration at the county office.", plan.Answer)
	assert.Empty(t, plan.Commands)
}

func TestPlanActionsBrokenJSONIsParseErrorNotError(t *testing.T) {
	planner := &cannedProvider{response: `{"action": "click", "selector":`}
	router := NewRouter(&cannedProvider{}, planner)

	plan, err := router.PlanActions(context.Background(), "press go")
	require.NoError(t, err)
	assert.Equal(t, PlanParseError, plan.Kind)
	assert.NotEmpty(t, plan.Answer)
	assert.Error(t, plan.Err)
}

func TestPlanActionsProviderError(t *testing.T) {
	wantErr := errors.New("timeout")
	router := NewRouter(&cannedProvider{}, &cannedProvider{err: wantErr})

	_, err := router.PlanActions(context.Background(), "press go")
	assert.ErrorIs(t, err, wantErr)
}
