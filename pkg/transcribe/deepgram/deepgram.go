// Package deepgram transcribes captured WAV audio through the Deepgram
// prerecorded REST API.
package deepgram

import (
	"bytes"
	"context"
	"fmt"
	"os"

	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"github.com/darkaengl/aura-sub000/pkg/logging"
)

// DefaultModel is the transcription model used when none is configured.
const DefaultModel = "nova-2"

// Transcriber sends audio buffers to Deepgram and returns the top
// transcript. Zero-length or unintelligible audio yields an empty string,
// not an error.
type Transcriber struct {
	rest   *api.Client
	model  string
	logger *logging.Logger
}

// Option configures a Transcriber.
type Option func(*Transcriber)

// WithModel overrides the transcription model.
func WithModel(model string) Option {
	return func(t *Transcriber) {
		t.model = model
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *logging.Logger) Option {
	return func(t *Transcriber) {
		t.logger = logger
	}
}

// New creates a Transcriber. The API key falls back to the DEEPGRAM_API_KEY
// environment variable when empty.
func New(apiKey string, opts ...Option) (*Transcriber, error) {
	if apiKey == "" {
		apiKey = os.Getenv("DEEPGRAM_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram API key not provided and DEEPGRAM_API_KEY not set")
	}

	t := &Transcriber{
		rest:  api.New(client.NewREST(apiKey, &interfaces.ClientOptions{})),
		model: DefaultModel,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Transcribe submits one WAV buffer and returns the best transcript.
func (t *Transcriber) Transcribe(ctx context.Context, wavAudio []byte, sampleRate int) (string, error) {
	if len(wavAudio) == 0 {
		return "", nil
	}

	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       t.model,
		SmartFormat: true,
		Punctuate:   true,
		SampleRate:  sampleRate,
	}

	response, err := t.rest.FromStream(ctx, bytes.NewReader(wavAudio), options)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	if response == nil || len(response.Results.Channels) == 0 || len(response.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}

	transcript := response.Results.Channels[0].Alternatives[0].Transcript
	if t.logger != nil {
		t.logger.Debugf("transcribed %d bytes of audio into %d characters", len(wavAudio), len(transcript))
	}
	return transcript, nil
}
