package config

import (
	"fmt"
	"sync"
)

// SectionIDVoice is the identifier for the voice settings section.
const SectionIDVoice = "voice"

// VoiceSection holds the tunables for continuous voice mode.
type VoiceSection struct {
	SilenceThresholdDB float64
	SilenceDelayMS     int
	MaxRecordingMS     int
	TranscriptionModel string

	mu sync.RWMutex
}

// NewVoiceSection creates a voice section with production defaults.
func NewVoiceSection() *VoiceSection {
	return &VoiceSection{
		SilenceThresholdDB: -50,
		SilenceDelayMS:     2000,
		MaxRecordingMS:     15000,
		TranscriptionModel: "nova-2",
	}
}

// ID returns the section identifier.
func (s *VoiceSection) ID() string {
	return SectionIDVoice
}

// Data returns the current configuration data.
func (s *VoiceSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"silence_threshold_db": s.SilenceThresholdDB,
		"silence_delay_ms":     s.SilenceDelayMS,
		"max_recording_ms":     s.MaxRecordingMS,
		"transcription_model":  s.TranscriptionModel,
	}
}

// SetData updates the configuration from the provided data. JSON numbers
// arrive as float64.
func (s *VoiceSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := data["silence_threshold_db"].(float64); ok {
		s.SilenceThresholdDB = v
	}
	if v, ok := data["silence_delay_ms"].(float64); ok {
		s.SilenceDelayMS = int(v)
	}
	if v, ok := data["max_recording_ms"].(float64); ok {
		s.MaxRecordingMS = int(v)
	}
	if v, ok := data["transcription_model"].(string); ok {
		s.TranscriptionModel = v
	}
	return nil
}

// Validate checks the current configuration.
func (s *VoiceSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.SilenceDelayMS <= 0 {
		return fmt.Errorf("silence_delay_ms must be positive")
	}
	if s.MaxRecordingMS <= s.SilenceDelayMS {
		return fmt.Errorf("max_recording_ms must exceed silence_delay_ms")
	}
	return nil
}
