package view

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
)

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// LoginRequiredMsg asks the main model to show the sign-in screen.
type LoginRequiredMsg struct{}

func loginRequired() tea.Msg {
	return LoginRequiredMsg{}
}

// SessionChangedMsg carries the session established on the sign-in screen.
type SessionChangedMsg struct {
	Session auth.Session
}

const actionTimeout = 30 * time.Second

// ActionCtx bounds a single storage round trip started from a view.
func ActionCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), actionTimeout)
}

var (
	padded       = lipgloss.NewStyle().Padding(1)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return s
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return s
}

func errorLine(err error) string {
	if err == nil {
		return ""
	}

	return errorStyle.Render("Error: " + err.Error())
}
