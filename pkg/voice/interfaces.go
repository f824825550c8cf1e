// Package voice implements the continuous voice interaction loop: record
// until silence, transcribe, route the transcript, and restart listening
// until a stop phrase or an explicit stop.
package voice

import "context"

// Transcriber converts captured WAV audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wavAudio []byte, sampleRate int) (string, error)
}

// Stream is one live microphone capture. Samples delivers batches of 16-bit
// PCM samples until the stream is closed; the channel closes with it.
type Stream interface {
	Samples() <-chan []int16
	SampleRate() int
	Channels() int
	Close() error
}

// Microphone opens capture streams.
type Microphone interface {
	Open(ctx context.Context) (Stream, error)
}

// FormAnswerer lets the controller route transcripts into an active
// form-filling session. SubmitAnswer returns false when no session is
// active.
type FormAnswerer interface {
	Active() bool
	SubmitAnswer(ctx context.Context, text string) bool
}

// RouteFunc forwards a transcript into the normal chat pipeline.
type RouteFunc func(ctx context.Context, text string)

// AgreeFunc runs the agreement-acknowledgement routine directly.
type AgreeFunc func(ctx context.Context) error
