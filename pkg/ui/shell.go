// Package ui provides the terminal chat shell for the assistant: a
// transcript viewport, an input box, and live rendering of the event
// stream while commands, forms, and simplification runs execute.
package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/darkaengl/aura-sub000/pkg/types"
)

// SubmitFunc handles one line of user input. It blocks until the assistant
// has finished; the shell keeps rendering events in the meantime.
type SubmitFunc func(ctx context.Context, text string)

// Shell is the interactive terminal front end.
type Shell struct {
	submit  SubmitFunc
	events  <-chan *types.Event
	program *tea.Program
}

// New creates a shell that sends input to submit and renders events as they
// arrive on the channel.
func New(submit SubmitFunc, events <-chan *types.Event) *Shell {
	return &Shell{
		submit: submit,
		events: events,
	}
}

// Run starts the shell and blocks until the user exits.
func (s *Shell) Run(ctx context.Context) error {
	m := initialModel(ctx, s.submit)

	s.program = tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	go func() {
		for event := range s.events {
			s.program.Send(event)
		}
	}()

	if _, err := s.program.Run(); err != nil {
		return fmt.Errorf("failed to run shell: %w", err)
	}
	return nil
}
