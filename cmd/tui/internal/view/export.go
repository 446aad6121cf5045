package view

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/editor"
	"github.com/MrJamesThe3rd/invoicer/internal/export"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

const exportTimeout = 2 * time.Minute

// ExportModel runs the print and image exports. Each export holds the
// session guard for its action while it runs, so pressing the key again is
// refused until it finishes.
type ExportModel struct {
	CommonModel
	session       *editor.Session
	renderer      *render.Renderer
	exportService *export.Service
	printer       export.Printer
	downloads     export.DirDownloader
	notices       *Notices

	spinner spinner.Model
	result  string
	err     error
}

func NewExportModel(
	session *editor.Session,
	renderer *render.Renderer,
	svc *export.Service,
	printer export.Printer,
	downloads export.DirDownloader,
	notices *Notices,
) ExportModel {
	return ExportModel{
		session:       session,
		renderer:      renderer,
		exportService: svc,
		printer:       printer,
		downloads:     downloads,
		notices:       notices,
		spinner:       newSpinner(),
	}
}

func (m ExportModel) Title() string { return "Export" }

func (m ExportModel) ShortHelp() string {
	return "p: print | i: save PNG | Esc: back"
}

func (m ExportModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "p":
			return m.start(editor.ActionPrint, m.printCmd)
		case "i":
			return m.start(editor.ActionPNG, m.pngCmd)
		}

	case exportDoneMsg:
		m.err = msg.err
		m.result = msg.result

		return m, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{} })

	case noticeExpiredMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ExportModel) start(action editor.Action, run func(release func()) tea.Cmd) (tea.Model, tea.Cmd) {
	release, err := m.session.Guard().Begin(action)
	if err != nil {
		slog.Warn("export not started", "action", action, "error", err)
		m.err = err

		return m, nil
	}

	m.err = nil
	m.result = ""

	return m, run(release)
}

func (m ExportModel) View() string {
	option := func(key, label string, action editor.Action) string {
		if m.session.Guard().Busy(action) {
			return mutedStyle.Render(fmt.Sprintf("%s. %s", key, label)) + " " + m.spinner.View()
		}

		return fmt.Sprintf("%s. %s", key, label)
	}

	lines := []string{
		titleStyle.Render("Export Invoice"),
		"",
		option("p", "Print (send to "+m.printerName()+")", editor.ActionPrint),
		option("i", "Save as PNG in "+m.downloads.Dir, editor.ActionPNG),
		"",
	}

	switch {
	case m.err != nil:
		lines = append(lines, errorLine(m.err))
	case m.result != "":
		lines = append(lines, successStyle.Render(m.result))
	}

	if n := m.notices.View(m.spinner.View()); n != "" {
		lines = append(lines, "", n)
	}

	return padded.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m ExportModel) printerName() string {
	if s, ok := m.printer.(fmt.Stringer); ok {
		return s.String()
	}

	return "printer"
}

type exportDoneMsg struct {
	result string
	err    error
}

type noticeExpiredMsg struct{}

func (m ExportModel) surface() (*render.Surface, error) {
	s, err := m.renderer.Render(m.session.Document())
	if err != nil {
		slog.Error("failed to render invoice for export", "error", err)
		return nil, err
	}

	return s, nil
}

func (m ExportModel) printCmd(release func()) tea.Cmd {
	return func() tea.Msg {
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		surface, err := m.surface()
		if err != nil {
			return exportDoneMsg{err: err}
		}

		if err := m.exportService.Print(ctx, surface, m.printer); err != nil {
			return exportDoneMsg{err: err}
		}

		return exportDoneMsg{result: "Invoice sent to the printer."}
	}
}

func (m ExportModel) pngCmd(release func()) tea.Cmd {
	return func() tea.Msg {
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		surface, err := m.surface()
		if err != nil {
			return exportDoneMsg{err: err}
		}

		name, err := m.exportService.ExportPNG(ctx, surface, m.downloads)
		if err != nil {
			return exportDoneMsg{err: err}
		}

		return exportDoneMsg{result: "Saved " + m.downloads.Path(name)}
	}
}
