package config

import (
	"fmt"
	"sync"
)

// Section is one named group of settings that knows how to serialize itself
// to and from the store's generic map form.
type Section interface {
	// ID returns the stable section identifier used as the storage key.
	ID() string

	// Data returns the current settings as a serializable map.
	Data() map[string]any

	// SetData applies stored settings, ignoring unknown keys.
	SetData(data map[string]any) error

	// Validate checks the current settings.
	Validate() error
}

// Manager binds registered sections to a Store. It is constructed at
// startup and injected where needed; there is no process-wide instance.
type Manager struct {
	store    Store
	sections map[string]Section
	mu       sync.RWMutex
}

// NewManager creates a Manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sections: make(map[string]Section),
	}
}

// RegisterSection adds a section. Registering a duplicate ID is an error.
func (m *Manager) RegisterSection(section Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := section.ID()
	if _, exists := m.sections[id]; exists {
		return fmt.Errorf("section %q already registered", id)
	}
	m.sections[id] = section
	return nil
}

// GetSection returns a registered section by ID.
func (m *Manager) GetSection(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	section, ok := m.sections[id]
	return section, ok
}

// LoadAll populates every registered section from the store and validates
// it.
func (m *Manager) LoadAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, section := range m.sections {
		data, err := m.store.GetSection(id)
		if err != nil {
			return fmt.Errorf("failed to load section %q: %w", id, err)
		}
		if err := section.SetData(data); err != nil {
			return fmt.Errorf("failed to apply section %q: %w", id, err)
		}
		if err := section.Validate(); err != nil {
			return fmt.Errorf("invalid section %q: %w", id, err)
		}
	}
	return nil
}

// SaveAll writes every registered section through the store to disk.
func (m *Manager) SaveAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, section := range m.sections {
		if err := m.store.SetSection(id, section.Data()); err != nil {
			return fmt.Errorf("failed to stage section %q: %w", id, err)
		}
	}
	return m.store.Save()
}
