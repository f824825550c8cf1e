package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/darkaengl/aura-sub000/pkg/voice"
)

const (
	micSampleRate = 16000
	micChannels   = 1

	// micBatchSamples is 200ms of audio per batch, matching the cadence the
	// level meter expects.
	micBatchSamples = micSampleRate / 5
)

// fileMicrophone reads signed 16-bit little-endian PCM from a file or FIFO.
// It exists so voice mode can be driven by any external capture tool
// (e.g. arecord writing to a named pipe) without binding to an audio stack.
type fileMicrophone struct {
	path string
}

func newFileMicrophone(path string) *fileMicrophone {
	return &fileMicrophone{path: path}
}

// Open starts reading PCM batches from the configured path. Each Open call
// reopens the source, so a FIFO keeps producing fresh recordings.
func (m *fileMicrophone) Open(ctx context.Context) (voice.Stream, error) {
	f, err := os.Open(m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio source %s: %w", m.path, err)
	}

	s := &fileStream{
		file:    f,
		samples: make(chan []int16, 8),
		done:    make(chan struct{}),
	}
	go s.pump(ctx)
	return s, nil
}

type fileStream struct {
	file      *os.File
	samples   chan []int16
	done      chan struct{}
	closeOnce sync.Once
}

func (s *fileStream) Samples() <-chan []int16 { return s.samples }
func (s *fileStream) SampleRate() int         { return micSampleRate }
func (s *fileStream) Channels() int           { return micChannels }

func (s *fileStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.file.Close()
	})
	return nil
}

// pump converts raw bytes into sample batches until the source drains or the
// stream is closed.
func (s *fileStream) pump(ctx context.Context) {
	defer close(s.samples)

	buf := make([]byte, micBatchSamples*2)
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		n, err := io.ReadFull(s.file, buf)
		if n >= 2 {
			batch := make([]int16, n/2)
			for i := range batch {
				batch[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
			}
			select {
			case s.samples <- batch:
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}
