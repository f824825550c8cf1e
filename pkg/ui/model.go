package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/darkaengl/aura-sub000/pkg/types"
)

// model holds the state of the chat shell.
type model struct {
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	ctx    context.Context
	submit SubmitFunc

	transcript *strings.Builder
	lastAnswer string
	toast      string

	busy   bool
	width  int
	height int
	ready  bool
}

// submitDoneMsg signals that the assistant finished handling one message.
type submitDoneMsg struct{}

func initialModel(ctx context.Context, submit SubmitFunc) model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question or describe what you want to do..."
	ta.Focus()
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	return model{
		textarea:   ta,
		spinner:    sp,
		ctx:        ctx,
		submit:     submit,
		transcript: &strings.Builder{},
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+y":
			m.copyLastAnswer()
			return m, nil
		case "enter":
			if cmd := m.submitInput(); cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case *types.Event:
		m.appendEvent(msg)
		return m, nil

	case submitDoneMsg:
		m.busy = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

func (m *model) View() string {
	if !m.ready {
		return "Starting Aura..."
	}

	status := "ctrl+y copy answer · esc quit"
	if m.busy {
		status = m.spinner.View() + " working..."
	}
	if m.toast != "" {
		status = m.toast
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		headerStyle.Render("  Aura"),
		m.viewport.View(),
		inputBoxStyle.Width(m.width-2).Render(m.textarea.View()),
		statusBarStyle.Render(status),
	)
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := 3
	chromeHeight := inputHeight + 2 // header and status bar
	if !m.ready {
		m.viewport = viewport.New(width, height-chromeHeight-1)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = height - chromeHeight - 1
	}
	m.textarea.SetWidth(width - 6)
	m.viewport.SetContent(m.transcript.String())
	m.viewport.GotoBottom()
}

// submitInput sends the current input line to the assistant in the
// background so the shell stays responsive.
func (m *model) submitInput() tea.Cmd {
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" || m.busy {
		return nil
	}

	m.textarea.Reset()
	m.toast = ""
	m.appendLine(userStyle.Render("you: ") + text)
	m.busy = true

	submit := m.submit
	ctx := m.ctx
	return func() tea.Msg {
		submit(ctx, text)
		return submitDoneMsg{}
	}
}

// appendEvent renders one assistant event into the transcript.
func (m *model) appendEvent(event *types.Event) {
	switch event.Type {
	case types.EventTypeChat:
		m.lastAnswer = event.Content
		m.appendLine(answerStyle.Render("aura: " + event.Content))
	case types.EventTypeCommandStep:
		m.appendLine(stepStyle.Render(fmt.Sprintf("  [%d/%d] %s", event.Step, event.Total, event.Content)))
	case types.EventTypeSimplifyProgress:
		m.lastAnswer = event.Content
		m.appendLine(statusStyle.Render(fmt.Sprintf("  simplifying %d/%d...", event.Step, event.Total)))
	case types.EventTypeFormPrompt:
		m.appendLine(promptStyle.Render("form: " + event.Content))
	case types.EventTypeSuggestion:
		m.appendLine(suggestionStyle.Render("next: " + event.Content))
	case types.EventTypeError:
		m.appendLine(errorStyle.Render(fmt.Sprintf("error: %v", event.Error)))
	default:
		m.appendLine(statusStyle.Render(event.Content))
	}
}

func (m *model) appendLine(line string) {
	m.transcript.WriteString(line)
	m.transcript.WriteString("\n")
	if m.ready {
		m.viewport.SetContent(m.transcript.String())
		m.viewport.GotoBottom()
	}
}

func (m *model) copyLastAnswer() {
	if m.lastAnswer == "" {
		m.toast = "nothing to copy yet"
		return
	}
	if err := clipboard.WriteAll(m.lastAnswer); err != nil {
		m.toast = "copy failed: " + err.Error()
		return
	}
	m.toast = "answer copied to clipboard"
}
