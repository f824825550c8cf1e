package voice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/darkaengl/aura-sub000/pkg/logging"
	"github.com/darkaengl/aura-sub000/pkg/types"
)

// State is the controller's position in the listening cycle.
type State string

const (
	StateStopped        State = "stopped"
	StateRecording      State = "recording"
	StateSilenceWaiting State = "silence_waiting"
	StateProcessing     State = "processing"
)

// DefaultSilenceThresholdDB is the level below which audio counts as
// silence.
const DefaultSilenceThresholdDB = -50.0

// Timings are the controller's timer durations. Zero fields take defaults.
type Timings struct {
	// SilenceDelay is how long the level must stay below threshold before
	// recording stops.
	SilenceDelay time.Duration

	// MaxDuration force-stops a recording regardless of level.
	MaxDuration time.Duration

	// Restart delays after each processing outcome, applied only in
	// continuous mode.
	RestartAfterEmpty time.Duration
	RestartAfterForm  time.Duration
	RestartAfterAgree time.Duration
	RestartAfterChat  time.Duration
}

// DefaultTimings returns the production timer durations.
func DefaultTimings() Timings {
	return Timings{
		SilenceDelay:      2000 * time.Millisecond,
		MaxDuration:       15000 * time.Millisecond,
		RestartAfterEmpty: 2000 * time.Millisecond,
		RestartAfterForm:  2200 * time.Millisecond,
		RestartAfterAgree: 2500 * time.Millisecond,
		RestartAfterChat:  3000 * time.Millisecond,
	}
}

func (t Timings) withDefaults() Timings {
	def := DefaultTimings()
	if t.SilenceDelay == 0 {
		t.SilenceDelay = def.SilenceDelay
	}
	if t.MaxDuration == 0 {
		t.MaxDuration = def.MaxDuration
	}
	if t.RestartAfterEmpty == 0 {
		t.RestartAfterEmpty = def.RestartAfterEmpty
	}
	if t.RestartAfterForm == 0 {
		t.RestartAfterForm = def.RestartAfterForm
	}
	if t.RestartAfterAgree == 0 {
		t.RestartAfterAgree = def.RestartAfterAgree
	}
	if t.RestartAfterChat == 0 {
		t.RestartAfterChat = def.RestartAfterChat
	}
	return t
}

// Controller supervises the repeating record, silence-detect, transcribe,
// route cycle. At most one recording is live at a time; a generation counter
// invalidates timers and stream readers from superseded recordings.
type Controller struct {
	mu sync.Mutex

	mic         Microphone
	transcriber Transcriber
	forms       FormAnswerer
	route       RouteFunc
	agree       AgreeFunc
	events      types.EventSink
	logger      *logging.Logger
	thresholdDB float64
	timings     Timings

	state      State
	continuous bool
	generation uint64
	ctx        context.Context

	stream     Stream
	samples    []int16
	sampleRate int
	channels   int

	silenceTimer *time.Timer
	maxTimer     *time.Timer
	restartTimer *time.Timer
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithSilenceThreshold overrides the silence level in dB.
func WithSilenceThreshold(db float64) ControllerOption {
	return func(c *Controller) {
		c.thresholdDB = db
	}
}

// WithTimings overrides the timer durations.
func WithTimings(t Timings) ControllerOption {
	return func(c *Controller) {
		c.timings = t.withDefaults()
	}
}

// WithEvents sets the sink that receives status announcements.
func WithEvents(sink types.EventSink) ControllerOption {
	return func(c *Controller) {
		c.events = sink
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *logging.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController wires the collaborators the voice loop dispatches to. route
// receives transcripts that are neither stop phrases, form answers, nor
// agreement phrases; agree runs the acknowledgement routine.
func NewController(mic Microphone, transcriber Transcriber, forms FormAnswerer, route RouteFunc, agree AgreeFunc, opts ...ControllerOption) *Controller {
	c := &Controller{
		mic:         mic,
		transcriber: transcriber,
		forms:       forms,
		route:       route,
		agree:       agree,
		events:      types.NopSink,
		thresholdDB: DefaultSilenceThresholdDB,
		timings:     DefaultTimings(),
		state:       StateStopped,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current cycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsContinuous reports whether continuous mode is active.
func (c *Controller) IsContinuous() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.continuous
}

// StartContinuousMode activates continuous listening. Calling it while
// already active is a no-op.
func (c *Controller) StartContinuousMode(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.continuous {
		return nil
	}
	c.continuous = true
	c.ctx = ctx

	if err := c.startRecordingLocked(); err != nil {
		c.continuous = false
		return err
	}
	c.events.Emit(types.NewStatusEvent("Listening. Say 'stop listening' to turn voice mode off."))
	return nil
}

// StopContinuousMode deactivates continuous mode, cancels every outstanding
// timer, and releases any live microphone stream. It is idempotent and
// discards audio captured by an unfinished recording. A transcription or
// routed call already in flight is not aborted; only its restart is
// suppressed.
func (c *Controller) StopContinuousMode() {
	c.mu.Lock()
	c.continuous = false
	c.generation++
	c.cancelTimersLocked()
	if c.restartTimer != nil {
		c.restartTimer.Stop()
		c.restartTimer = nil
	}
	stream := c.stream
	c.stream = nil
	c.samples = nil
	c.state = StateStopped
	c.mu.Unlock()

	if stream != nil {
		stream.Close()
	}
	if c.logger != nil {
		c.logger.Infof("continuous voice mode stopped")
	}
}

// StopRecording manually ends the current recording and processes whatever
// was captured.
func (c *Controller) StopRecording() {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	c.finishRecording(gen)
}

// startRecordingLocked opens the microphone and starts the capture cycle.
// Callers hold c.mu.
func (c *Controller) startRecordingLocked() error {
	if c.state != StateStopped {
		return nil
	}

	stream, err := c.mic.Open(c.ctx)
	if err != nil {
		return fmt.Errorf("failed to open microphone: %w", err)
	}

	c.generation++
	gen := c.generation
	c.stream = stream
	c.samples = nil
	c.sampleRate = stream.SampleRate()
	c.channels = stream.Channels()
	c.state = StateRecording

	c.maxTimer = time.AfterFunc(c.timings.MaxDuration, func() {
		c.finishRecording(gen)
	})

	go c.consume(gen, stream)
	return nil
}

// consume drains the stream, accumulating samples and driving silence
// detection from each batch's level.
func (c *Controller) consume(gen uint64, stream Stream) {
	for batch := range stream.Samples() {
		c.mu.Lock()
		if c.generation != gen || (c.state != StateRecording && c.state != StateSilenceWaiting) {
			c.mu.Unlock()
			return
		}

		c.samples = append(c.samples, batch...)

		if batchDecibels(batch) > c.thresholdDB {
			if c.silenceTimer != nil {
				c.silenceTimer.Stop()
				c.silenceTimer = nil
			}
			c.state = StateRecording
		} else if c.silenceTimer == nil {
			c.state = StateSilenceWaiting
			c.silenceTimer = time.AfterFunc(c.timings.SilenceDelay, func() {
				c.finishRecording(gen)
			})
		}
		c.mu.Unlock()
	}
}

// finishRecording stops capture for the given generation, encodes the audio,
// and hands it to transcription. Late timers from superseded recordings are
// ignored.
func (c *Controller) finishRecording(gen uint64) {
	c.mu.Lock()
	if c.generation != gen || (c.state != StateRecording && c.state != StateSilenceWaiting) {
		c.mu.Unlock()
		return
	}

	c.cancelTimersLocked()
	stream := c.stream
	c.stream = nil
	samples := c.samples
	c.samples = nil
	rate := c.sampleRate
	channels := c.channels
	ctx := c.ctx
	c.state = StateProcessing
	c.mu.Unlock()

	if stream != nil {
		stream.Close()
	}

	go c.process(ctx, gen, samples, rate, channels)
}

// process transcribes one recording and routes the transcript.
func (c *Controller) process(ctx context.Context, gen uint64, samples []int16, rate, channels int) {
	var text string
	var err error
	if len(samples) > 0 {
		wav := EncodeWAV(samples, rate, channels)
		text, err = c.transcriber.Transcribe(ctx, wav, rate)
	}
	if err != nil && c.logger != nil {
		c.logger.Warnf("transcription failed: %v", err)
	}

	c.mu.Lock()
	if c.generation == gen && c.state == StateProcessing {
		c.state = StateStopped
	}
	continuous := c.continuous
	c.mu.Unlock()

	c.handleTranscript(ctx, gen, strings.TrimSpace(text), err, continuous)
}

// handleTranscript dispatches one transcript in priority order: stop
// phrases, the active form session, agreement phrases, then the normal chat
// pipeline.
func (c *Controller) handleTranscript(ctx context.Context, gen uint64, text string, err error, continuous bool) {
	switch {
	case err != nil || text == "":
		if continuous {
			c.events.Emit(types.NewStatusEvent("I didn't catch that. Listening again."))
			c.scheduleRestart(gen, c.timings.RestartAfterEmpty)
		} else {
			c.events.Emit(types.NewStatusEvent("I couldn't make out any speech."))
		}

	case isStopPhrase(text):
		c.StopContinuousMode()

	case c.forms != nil && c.forms.Active():
		c.forms.SubmitAnswer(ctx, text)
		if continuous {
			c.scheduleRestart(gen, c.timings.RestartAfterForm)
		}

	case isAgreementPhrase(text):
		if c.agree != nil {
			if agreeErr := c.agree(ctx); agreeErr != nil {
				c.events.Emit(types.NewErrorEvent(agreeErr))
			}
		}
		if continuous {
			c.scheduleRestart(gen, c.timings.RestartAfterAgree)
		}

	default:
		if c.route != nil {
			c.route(ctx, text)
		}
		if continuous {
			c.scheduleRestart(gen, c.timings.RestartAfterChat)
		}
	}
}

// scheduleRestart arms the restart timer, replacing any pending one. The
// restart only fires while continuous mode is still active.
func (c *Controller) scheduleRestart(gen uint64, delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.continuous || c.generation != gen {
		return
	}
	if c.restartTimer != nil {
		c.restartTimer.Stop()
	}
	c.restartTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.continuous || c.state != StateStopped {
			return
		}
		if err := c.startRecordingLocked(); err != nil {
			c.events.Emit(types.NewErrorEvent(err))
			c.continuous = false
		}
	})
}

// cancelTimersLocked clears the silence and ceiling timers. Callers hold
// c.mu.
func (c *Controller) cancelTimersLocked() {
	if c.silenceTimer != nil {
		c.silenceTimer.Stop()
		c.silenceTimer = nil
	}
	if c.maxTimer != nil {
		c.maxTimer.Stop()
		c.maxTimer = nil
	}
}
