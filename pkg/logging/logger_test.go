package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// setupTestDir points the package at a temporary log directory and resets
// global state, returning a cleanup function.
func setupTestDir(t *testing.T) (cleanup func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "aura-logging-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	origLogDir := logDir
	origInitErr := initErr
	origSessionID := sessionID

	logDir = tempDir
	initErr = nil
	sessionID = ""
	sessionIDOnce = sync.Once{}

	// Mark directory init as done so NewLogger uses tempDir as-is.
	initOnce = sync.Once{}
	initOnce.Do(func() {})

	return func() {
		logDir = origLogDir
		initErr = origInitErr
		sessionID = origSessionID
		sessionIDOnce = sync.Once{}
		initOnce = sync.Once{}
		os.RemoveAll(tempDir)
	}
}

func TestNewLogger(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger, err := NewLogger("test-component")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.component != "test-component" {
		t.Errorf("Expected component 'test-component', got %q", logger.component)
	}

	if logger.sessionID == "" {
		t.Error("Expected non-empty session ID")
	}

	if _, err := os.Stat(logger.logPath); os.IsNotExist(err) {
		t.Errorf("Log file does not exist at %s", logger.logPath)
	}
}

func TestLoggerFormatting(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debugf("Debug message")
	logger.Infof("Info message %d", 123)
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	// Give file system time to flush
	time.Sleep(50 * time.Millisecond)

	content, err := os.ReadFile(logger.logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	logContent := string(content)

	expectedPatterns := []string{
		"[test] [DEBUG] Debug message",
		"[test] [INFO] Info message 123",
		"[test] [WARN] Warning message",
		"[test] [ERROR] Error message",
	}

	for _, pattern := range expectedPatterns {
		if !strings.Contains(logContent, pattern) {
			t.Errorf("Log content missing expected pattern: %q\nContent:\n%s", pattern, logContent)
		}
	}
}

func TestMultipleComponentsShareSession(t *testing.T) {
	cleanup := setupTestDir(t)
	defer cleanup()

	logger1, err := NewLogger("component1")
	if err != nil {
		t.Fatalf("Failed to create logger1: %v", err)
	}
	defer logger1.Close()

	logger2, err := NewLogger("component2")
	if err != nil {
		t.Fatalf("Failed to create logger2: %v", err)
	}
	defer logger2.Close()

	if logger1.SessionID() != logger2.SessionID() {
		t.Error("Expected loggers to share a session ID")
	}
	if logger1.LogPath() != logger2.LogPath() {
		t.Error("Expected loggers to share a log file")
	}
}

func TestSinkSave(t *testing.T) {
	tempDir := t.TempDir()

	sink, err := NewSink(tempDir, nil)
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}

	sink.Save("interaction", map[string]string{"utterance": "go to gmail"})

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to list sink dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 saved file, got %d", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "interaction-") {
		t.Errorf("Unexpected file name %q", entries[0].Name())
	}

	data, err := os.ReadFile(filepath.Join(tempDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Saved payload is not valid JSON: %v", err)
	}
	if decoded["utterance"] != "go to gmail" {
		t.Errorf("Unexpected payload: %v", decoded)
	}
}

func TestSinkNeverFails(t *testing.T) {
	sink := &Sink{dir: "/nonexistent/path/that/cannot/exist"}

	// Save must swallow write failures.
	sink.Save("log", map[string]int{"n": 1})

	// Unmarshalable payloads are swallowed too.
	sink.Save("bad", func() {})
}
