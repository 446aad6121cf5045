package view

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
)

// LoginModel signs the user in with a bearer token issued by the invoicer
// API.
type LoginModel struct {
	CommonModel
	verifier *auth.Verifier
	current  auth.Session

	input textinput.Model
	err   error
}

func NewLoginModel(verifier *auth.Verifier, current auth.Session) LoginModel {
	ti := textinput.New()
	ti.Placeholder = "paste access token"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 4096
	ti.Width = 50
	ti.Focus()

	return LoginModel{
		verifier: verifier,
		current:  current,
		input:    ti,
	}
}

func (m LoginModel) Title() string { return "Sign In" }

func (m LoginModel) ShortHelp() string {
	if m.current.Authenticated() {
		return "Enter: sign in | Ctrl+O: sign out | Esc: back"
	}

	return "Enter: sign in | Esc: back"
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "ctrl+o":
			if m.current.Authenticated() {
				return m, sessionChanged(auth.Anonymous)
			}
		case "enter":
			sess, err := m.verifier.Verify(strings.TrimSpace(m.input.Value()))
			if err != nil {
				slog.Warn("sign-in rejected", "error", err)
				m.err = err

				return m, nil
			}

			return m, sessionChanged(sess)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func sessionChanged(sess auth.Session) tea.Cmd {
	return func() tea.Msg {
		return SessionChangedMsg{Session: sess}
	}
}

func (m LoginModel) View() string {
	status := mutedStyle.Render("Not signed in. Saved templates need an account.")
	if m.current.Authenticated() {
		status = successStyle.Render("Signed in as " + sessionName(m.current))
	}

	return padded.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Sign In"),
		"",
		status,
		"",
		m.input.View(),
		"",
		errorLine(m.err),
	))
}

// sessionName is how a signed-in owner is shown on screen.
func sessionName(s auth.Session) string {
	if s.Email != "" {
		return s.Email
	}

	return s.OwnerID.String()
}
