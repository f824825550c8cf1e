package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sink is the fire-and-forget persistence collaborator. Named payloads
// (interaction logs, transcripts, simplification records) are written as
// timestamped JSON files; failures are reported but never fatal.
type Sink struct {
	dir    string
	logger *Logger
}

// NewSink creates a sink writing under dir. If dir is empty, payloads go to
// a "data" directory next to the session logs.
func NewSink(dir string, logger *Logger) (*Sink, error) {
	if dir == "" {
		logDir, err := GetLogDirectory()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(logDir, "data")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create sink directory: %w", err)
	}
	return &Sink{dir: dir, logger: logger}, nil
}

// Save persists a named payload. Errors are swallowed after being logged;
// callers never need to handle them.
func (s *Sink) Save(name string, data interface{}) {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		if s.logger != nil {
			s.logger.Warnf("sink: failed to marshal %q: %v", name, err)
		}
		return
	}

	filename := fmt.Sprintf("%s-%s.json", name, time.Now().Format("20060102-150405.000"))
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, payload, 0600); err != nil {
		if s.logger != nil {
			s.logger.Warnf("sink: failed to write %q: %v", path, err)
		}
	}
}

// Dir returns the directory the sink writes to.
func (s *Sink) Dir() string {
	return s.dir
}
