package voice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStream lets tests push sample batches into the controller.
type fakeStream struct {
	ch        chan []int16
	rate      int
	closeOnce sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{ch: make(chan []int16, 16), rate: 16000}
}

func (s *fakeStream) push(batch []int16) { s.ch <- batch }

func (s *fakeStream) Samples() <-chan []int16 { return s.ch }
func (s *fakeStream) SampleRate() int         { return s.rate }
func (s *fakeStream) Channels() int           { return 1 }
func (s *fakeStream) Close() error {
	s.closeOnce.Do(func() { close(s.ch) })
	return nil
}

// fakeMic hands out a fresh stream per Open and records how many times it
// was opened.
type fakeMic struct {
	mu      sync.Mutex
	streams []*fakeStream
}

func (m *fakeMic) Open(ctx context.Context) (Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := newFakeStream()
	m.streams = append(m.streams, s)
	return s, nil
}

func (m *fakeMic) opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streams)
}

func (m *fakeMic) stream(i int) *fakeStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= len(m.streams) {
		return nil
	}
	return m.streams[i]
}

// fakeTranscriber returns canned transcripts in order, repeating the last.
type fakeTranscriber struct {
	mu    sync.Mutex
	texts []string
	calls int
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, wav []byte, rate int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if len(t.texts) == 0 {
		return "", nil
	}
	text := t.texts[0]
	if len(t.texts) > 1 {
		t.texts = t.texts[1:]
	}
	return text, nil
}

func (t *fakeTranscriber) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// fakeForms pretends a form session is (in)active and records answers.
type fakeForms struct {
	mu      sync.Mutex
	active  bool
	answers []string
}

func (f *fakeForms) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeForms) SubmitAnswer(ctx context.Context, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return false
	}
	f.answers = append(f.answers, text)
	return true
}

// routeRecorder captures routed transcripts.
type routeRecorder struct {
	mu    sync.Mutex
	texts []string
}

func (r *routeRecorder) route(ctx context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

func (r *routeRecorder) routed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

// testTimings keeps silence detection fast and restarts effectively
// disabled unless a test overrides them.
func testTimings() Timings {
	return Timings{
		SilenceDelay:      25 * time.Millisecond,
		MaxDuration:       time.Hour,
		RestartAfterEmpty: time.Hour,
		RestartAfterForm:  time.Hour,
		RestartAfterAgree: time.Hour,
		RestartAfterChat:  time.Hour,
	}
}

func loudBatch() []int16 {
	batch := make([]int16, 256)
	for i := range batch {
		batch[i] = 16000
	}
	return batch
}

func quietBatch() []int16 {
	return make([]int16, 256)
}

func TestStopContinuousModeIdempotent(t *testing.T) {
	mic := &fakeMic{}
	c := NewController(mic, &fakeTranscriber{}, &fakeForms{}, nil, nil, WithTimings(testTimings()))

	require.NoError(t, c.StartContinuousMode(context.Background()))
	assert.True(t, c.IsContinuous())

	c.StopContinuousMode()
	first := c.State()
	c.StopContinuousMode()
	second := c.State()

	assert.Equal(t, StateStopped, first)
	assert.Equal(t, first, second)
	assert.False(t, c.IsContinuous())
}

func TestStopContinuousModeBeforeStart(t *testing.T) {
	c := NewController(&fakeMic{}, &fakeTranscriber{}, &fakeForms{}, nil, nil)
	c.StopContinuousMode()
	assert.Equal(t, StateStopped, c.State())
}

func TestSilenceStopsRecordingAndRoutesTranscript(t *testing.T) {
	mic := &fakeMic{}
	transcriber := &fakeTranscriber{texts: []string{"show me my taxes"}}
	recorder := &routeRecorder{}
	c := NewController(mic, transcriber, &fakeForms{}, recorder.route, nil, WithTimings(testTimings()))
	defer c.StopContinuousMode()

	require.NoError(t, c.StartContinuousMode(context.Background()))
	stream := mic.stream(0)
	require.NotNil(t, stream)

	stream.push(loudBatch())
	stream.push(quietBatch())

	require.Eventually(t, func() bool {
		return len(recorder.routed()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "show me my taxes", recorder.routed()[0])
	assert.Equal(t, 1, transcriber.callCount())
}

func TestLoudAudioCancelsSilenceTimer(t *testing.T) {
	timings := testTimings()
	timings.SilenceDelay = 150 * time.Millisecond

	mic := &fakeMic{}
	transcriber := &fakeTranscriber{texts: []string{"hello"}}
	c := NewController(mic, transcriber, &fakeForms{}, nil, nil, WithTimings(timings))
	defer c.StopContinuousMode()

	require.NoError(t, c.StartContinuousMode(context.Background()))
	stream := mic.stream(0)

	// Quiet audio arms the timer; loud audio before it fires cancels it.
	stream.push(quietBatch())
	require.Eventually(t, func() bool {
		return c.State() == StateSilenceWaiting
	}, time.Second, time.Millisecond)

	stream.push(loudBatch())
	require.Eventually(t, func() bool {
		return c.State() == StateRecording
	}, time.Second, time.Millisecond)

	// With the timer cancelled, nothing has been transcribed yet.
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, transcriber.callCount())
}

func TestMaxDurationCeiling(t *testing.T) {
	timings := testTimings()
	timings.SilenceDelay = time.Hour
	timings.MaxDuration = 40 * time.Millisecond

	mic := &fakeMic{}
	transcriber := &fakeTranscriber{texts: []string{"long speech"}}
	recorder := &routeRecorder{}
	c := NewController(mic, transcriber, &fakeForms{}, recorder.route, nil, WithTimings(timings))
	defer c.StopContinuousMode()

	require.NoError(t, c.StartContinuousMode(context.Background()))
	mic.stream(0).push(loudBatch())

	require.Eventually(t, func() bool {
		return transcriber.callCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStopPhraseEndsContinuousMode(t *testing.T) {
	mic := &fakeMic{}
	transcriber := &fakeTranscriber{texts: []string{"stop listening"}}
	recorder := &routeRecorder{}
	c := NewController(mic, transcriber, &fakeForms{}, recorder.route, nil, WithTimings(testTimings()))

	require.NoError(t, c.StartContinuousMode(context.Background()))
	stream := mic.stream(0)
	stream.push(loudBatch())
	stream.push(quietBatch())

	require.Eventually(t, func() bool {
		return !c.IsContinuous()
	}, time.Second, 5*time.Millisecond)

	assert.Empty(t, recorder.routed())
	assert.Equal(t, StateStopped, c.State())
}

func TestAgreementPhraseBypassesRouter(t *testing.T) {
	mic := &fakeMic{}
	transcriber := &fakeTranscriber{texts: []string{"I agree to the terms"}}
	recorder := &routeRecorder{}

	var agreeCalls int
	var mu sync.Mutex
	agree := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		agreeCalls++
		return nil
	}

	c := NewController(mic, transcriber, &fakeForms{}, recorder.route, agree, WithTimings(testTimings()))
	defer c.StopContinuousMode()

	require.NoError(t, c.StartContinuousMode(context.Background()))
	stream := mic.stream(0)
	stream.push(loudBatch())
	stream.push(quietBatch())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return agreeCalls == 1
	}, time.Second, 5*time.Millisecond)

	assert.Empty(t, recorder.routed())
}

func TestActiveFormSessionReceivesTranscript(t *testing.T) {
	mic := &fakeMic{}
	transcriber := &fakeTranscriber{texts: []string{"Ada Lovelace"}}
	recorder := &routeRecorder{}
	forms := &fakeForms{active: true}

	c := NewController(mic, transcriber, forms, recorder.route, nil, WithTimings(testTimings()))
	defer c.StopContinuousMode()

	require.NoError(t, c.StartContinuousMode(context.Background()))
	stream := mic.stream(0)
	stream.push(loudBatch())
	stream.push(quietBatch())

	require.Eventually(t, func() bool {
		forms.mu.Lock()
		defer forms.mu.Unlock()
		return len(forms.answers) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "Ada Lovelace", forms.answers[0])
	assert.Empty(t, recorder.routed())
}

func TestEmptyTranscriptRestartsListening(t *testing.T) {
	timings := testTimings()
	timings.RestartAfterEmpty = 10 * time.Millisecond

	mic := &fakeMic{}
	transcriber := &fakeTranscriber{texts: []string{""}}
	c := NewController(mic, transcriber, &fakeForms{}, nil, nil, WithTimings(timings))
	defer c.StopContinuousMode()

	require.NoError(t, c.StartContinuousMode(context.Background()))
	stream := mic.stream(0)
	stream.push(loudBatch())
	stream.push(quietBatch())

	require.Eventually(t, func() bool {
		return mic.opens() >= 2
	}, time.Second, 5*time.Millisecond)
	assert.True(t, c.IsContinuous())
}

func TestStartWhileActiveIsNoOp(t *testing.T) {
	mic := &fakeMic{}
	c := NewController(mic, &fakeTranscriber{}, &fakeForms{}, nil, nil, WithTimings(testTimings()))
	defer c.StopContinuousMode()

	require.NoError(t, c.StartContinuousMode(context.Background()))
	require.NoError(t, c.StartContinuousMode(context.Background()))

	assert.Equal(t, 1, mic.opens())
}
