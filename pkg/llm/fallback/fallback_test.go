package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/darkaengl/aura-sub000/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns canned replies or errors and counts calls.
type fakeProvider struct {
	reply *types.Message
	err   error
	calls int
	last  []*types.Message
}

func (f *fakeProvider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	f.calls++
	f.last = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) GetModelInfo() *types.ModelInfo {
	return &types.ModelInfo{Provider: "fake", Name: "fake-model"}
}

func (f *fakeProvider) GetModel() string { return "fake-model" }

func TestCompleteUsesPrimary(t *testing.T) {
	primary := &fakeProvider{reply: types.NewAssistantMessage("ok")}
	w := New(primary)

	reply, err := w.Complete(context.Background(), FeatureChat, []*types.Message{types.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Content)
	assert.Equal(t, 1, primary.calls)
}

func TestFeatureProviderOverridesDefault(t *testing.T) {
	def := &fakeProvider{reply: types.NewAssistantMessage("default")}
	classify := &fakeProvider{reply: types.NewAssistantMessage("classify")}
	w := New(def, WithFeatureProvider(FeatureClassify, classify))

	reply, err := w.Complete(context.Background(), FeatureClassify, []*types.Message{types.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "classify", reply.Content)
	assert.Equal(t, 0, def.calls)
}

func TestExactlyOneFallbackAttempt(t *testing.T) {
	primary := &fakeProvider{err: errors.New("remote down")}
	secondary := &fakeProvider{reply: types.NewAssistantMessage("local answer")}

	fallbackCalls := 0
	w := New(primary, WithFallback(func(ctx context.Context, messages []*types.Message, cause error) (*types.Message, error) {
		fallbackCalls++
		assert.ErrorContains(t, cause, "remote down")
		return secondary.Complete(ctx, messages)
	}))

	reply, err := w.Complete(context.Background(), FeatureChat, []*types.Message{types.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "local answer", reply.Content)
	assert.Equal(t, 1, fallbackCalls)
}

func TestFallbackFailurePropagatesBothErrors(t *testing.T) {
	primary := &fakeProvider{err: errors.New("remote down")}
	w := New(primary, WithFallback(func(ctx context.Context, messages []*types.Message, cause error) (*types.Message, error) {
		return nil, errors.New("local down too")
	}))

	_, err := w.Complete(context.Background(), FeatureChat, []*types.Message{types.NewUserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote down")
	assert.Contains(t, err.Error(), "local down too")
}

func TestNoFallbackConfigured(t *testing.T) {
	cause := errors.New("remote down")
	primary := &fakeProvider{err: cause}
	w := New(primary)

	_, err := w.Complete(context.Background(), FeatureChat, []*types.Message{types.NewUserMessage("hi")})
	assert.ErrorIs(t, err, cause)
}

func TestToSecondaryAppendsRelaxedInstruction(t *testing.T) {
	secondary := &fakeProvider{reply: types.NewAssistantMessage(`{"action":"click"}`)}
	fn := ToSecondary(secondary)

	_, err := fn(context.Background(), []*types.Message{types.NewUserMessage("plan this")}, errors.New("boom"))
	require.NoError(t, err)
	require.Len(t, secondary.last, 2)
	assert.Equal(t, types.RoleSystem, secondary.last[1].Role)
	assert.Contains(t, secondary.last[1].Content, "raw JSON")
}

func TestBindImplementsProvider(t *testing.T) {
	primary := &fakeProvider{reply: types.NewAssistantMessage("bound")}
	w := New(primary)

	p := w.Bind(FeatureSimplify)
	reply, err := p.Complete(context.Background(), []*types.Message{types.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "bound", reply.Content)
	assert.Equal(t, "fake-model", p.GetModel())
}
