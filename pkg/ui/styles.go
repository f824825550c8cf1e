package ui

import "github.com/charmbracelet/lipgloss"

// Color Palette
// Single source of truth for shell colors.
var (
	skyBlue     = lipgloss.Color("#A3C9F9") // soft blue - primary accent
	mintGreen   = lipgloss.Color("#A8E6CF") // soft mint - progress and success
	amber       = lipgloss.Color("#FFD3A5") // warm amber - prompts and suggestions
	mutedGray   = lipgloss.Color("#6B7280") // muted gray - secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // bright white - primary text
	softRed     = lipgloss.Color("#FFB3BA") // soft red - errors
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(skyBlue).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(skyBlue).
			Bold(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	stepStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	promptStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(amber)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(softRed)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(skyBlue).
			Padding(0, 1)
)
