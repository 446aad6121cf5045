package view

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/editor"
	"github.com/MrJamesThe3rd/invoicer/internal/i18n"
	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate"
)

type templatesState int

const (
	templatesStateList templatesState = iota
	templatesStateSave
	templatesStateConfirm
	templatesStateWorking
)

// templateValues backs the save and confirm forms; see detailValues.
type templateValues struct {
	name    string
	confirm bool
}

type TemplatesModel struct {
	CommonModel
	session     *editor.Session
	templateSvc *savedtemplate.Service
	auth        auth.Session

	state     templatesState
	table     table.Model
	templates []*savedtemplate.Template
	loading   bool

	form    *huh.Form
	values  *templateValues
	pending editor.Action
	target  *savedtemplate.Template

	spinner spinner.Model
	status  string
	err     error
}

func NewTemplatesModel(session *editor.Session, svc *savedtemplate.Service, sess auth.Session) TemplatesModel {
	columns := []table.Column{
		{Title: "Name", Width: 40},
		{Title: "Saved", Width: 28},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(tableStyles())

	return TemplatesModel{
		session:     session,
		templateSvc: svc,
		auth:        sess,
		table:       t,
		values:      &templateValues{},
		spinner:     newSpinner(),
		loading:     true,
	}
}

func (m TemplatesModel) Title() string { return "Templates" }

func (m TemplatesModel) ShortHelp() string {
	switch m.state {
	case templatesStateSave, templatesStateConfirm:
		return "Esc: cancel | Enter: confirm"
	case templatesStateWorking:
		return "Working..."
	}

	if m.loading || m.session.Guard().Busy(editor.ActionList) {
		return "s: save current | Enter: load | d: delete | Esc: back"
	}

	return "s: save current | Enter: load | d: delete | r: refresh | Esc: back"
}

func (m TemplatesModel) Init() tea.Cmd {
	if !m.auth.Authenticated() {
		return loginRequired
	}

	return tea.Batch(m.spinner.Tick, m.listCmd())
}

func (m TemplatesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case templatesListedMsg:
		m.loading = false

		if msg.err != nil {
			return m.fail(editor.ActionList, msg.err)
		}

		m.templates = msg.templates
		m.refreshTable()

		return m, nil

	case templateDoneMsg:
		m.state = templatesStateList

		if msg.err != nil {
			return m.fail(msg.action, msg.err)
		}

		m.err = nil
		m.status = msg.status

		if msg.reload {
			m.loading = true
			return m, m.listCmd()
		}

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	switch m.state {
	case templatesStateSave, templatesStateConfirm:
		return m.updateForm(msg)
	case templatesStateWorking:
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "r":
		if m.loading || m.session.Guard().Busy(editor.ActionList) {
			return m, nil
		}

		m.loading = true
		m.status = ""
		m.err = nil

		return m, m.listCmd()
	case "s":
		m.values = &templateValues{}
		m.pending = editor.ActionSave
		m.form = m.buildSaveForm()
		m.state = templatesStateSave

		return m, m.form.Init()
	case "enter":
		return m.confirm(editor.ActionLoad, "Replace the current invoice with %q?")
	case "d":
		return m.confirm(editor.ActionDelete, "Delete %q?")
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

// fail logs and shows err, or hands over to the sign-in screen when the
// session is no longer accepted.
func (m TemplatesModel) fail(action editor.Action, err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, auth.ErrAuthRequired) {
		slog.Warn("template action needs sign-in", "action", action)
		return m, loginRequired
	}

	slog.Error("failed to run template action", "action", action, "error", err)

	m.err = err
	m.status = ""

	return m, nil
}

func (m TemplatesModel) confirm(action editor.Action, question string) (tea.Model, tea.Cmd) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.templates) {
		return m, nil
	}

	m.target = m.templates[cursor]
	m.pending = action
	m.values = &templateValues{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf(question, m.target.Name)).
				Affirmative("Yes").
				Negative("No").
				Value(&m.values.confirm),
		),
	).WithWidth(60).WithShowHelp(false)
	m.state = templatesStateConfirm

	return m, m.form.Init()
}

func (m TemplatesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = templatesStateList
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == templatesStateConfirm && !m.values.confirm {
		m.state = templatesStateList
		return m, nil
	}

	release, err := m.session.Guard().Begin(m.pending)
	if err != nil {
		slog.Warn("template action not started", "action", m.pending, "error", err)
		m.state = templatesStateList
		m.err = err

		return m, nil
	}

	m.state = templatesStateWorking
	m.err = nil

	switch m.pending {
	case editor.ActionSave:
		return m, m.saveCmd(m.values.name, release)
	case editor.ActionLoad:
		return m, m.loadCmd(m.target, release)
	case editor.ActionDelete:
		return m, m.deleteCmd(m.target, release)
	}

	release()
	m.state = templatesStateList

	return m, nil
}

func (m TemplatesModel) buildSaveForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Template Name").
				Description(fmt.Sprintf("Up to %d characters", savedtemplate.MaxNameLength)).
				Validate(validateTemplateName).
				Value(&m.values.name),
		),
	).WithWidth(60).WithShowHelp(false)
}

func validateTemplateName(s string) error {
	switch n := utf8.RuneCountInString(strings.TrimSpace(s)); {
	case n == 0:
		return errors.New("name is required")
	case n > savedtemplate.MaxNameLength:
		return fmt.Errorf("name must be at most %d characters", savedtemplate.MaxNameLength)
	}

	return nil
}

func (m *TemplatesModel) refreshTable() {
	lang := string(m.session.Document().Locale)

	rows := make([]table.Row, len(m.templates))
	for i, t := range m.templates {
		rows[i] = table.Row{t.Name, i18n.FormatDateTime(lang, t.CreatedAt)}
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m TemplatesModel) View() string {
	switch m.state {
	case templatesStateSave, templatesStateConfirm:
		return padded.Render(m.form.View())
	case templatesStateWorking:
		return padded.Render(m.spinner.View() + " Working...")
	}

	header := titleStyle.Render("Saved Templates") + mutedStyle.Render("  "+m.auth.Email)

	var body string

	switch {
	case m.loading:
		body = m.spinner.View() + " Loading templates..."
	case len(m.templates) == 0:
		body = mutedStyle.Render("No templates yet. Press s to save the current invoice.")
	default:
		body = m.table.View()
	}

	footer := m.status
	if m.err != nil {
		footer = errorLine(m.err)
	} else if footer != "" {
		footer = successStyle.Render(footer)
	}

	return padded.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", footer))
}

type templatesListedMsg struct {
	templates []*savedtemplate.Template
	err       error
}

type templateDoneMsg struct {
	action editor.Action
	status string
	reload bool
	err    error
}

func (m TemplatesModel) listCmd() tea.Cmd {
	return func() tea.Msg {
		var templates []*savedtemplate.Template

		err := m.session.Guard().Run(editor.ActionList, func() error {
			ctx, cancel := ActionCtx()
			defer cancel()

			var err error
			templates, err = m.templateSvc.List(ctx, m.auth)

			return err
		})

		return templatesListedMsg{templates: templates, err: err}
	}
}

func (m TemplatesModel) saveCmd(name string, release func()) tea.Cmd {
	return func() tea.Msg {
		defer release()

		ctx, cancel := ActionCtx()
		defer cancel()

		t, err := m.templateSvc.Save(ctx, m.auth, name, m.session.Document())
		if err != nil {
			return templateDoneMsg{action: editor.ActionSave, err: err}
		}

		return templateDoneMsg{action: editor.ActionSave, status: fmt.Sprintf("Saved %q.", t.Name), reload: true}
	}
}

func (m TemplatesModel) loadCmd(target *savedtemplate.Template, release func()) tea.Cmd {
	return func() tea.Msg {
		defer release()

		ctx, cancel := ActionCtx()
		defer cancel()

		t, err := m.templateSvc.Get(ctx, m.auth, target.ID)
		if err != nil {
			return templateDoneMsg{action: editor.ActionLoad, err: err}
		}

		doc, err := m.templateSvc.Load(t)
		if err != nil {
			return templateDoneMsg{action: editor.ActionLoad, err: err}
		}

		if err := m.session.Replace(doc); err != nil {
			return templateDoneMsg{action: editor.ActionLoad, err: err}
		}

		return templateDoneMsg{action: editor.ActionLoad, status: fmt.Sprintf("Loaded %q.", t.Name)}
	}
}

func (m TemplatesModel) deleteCmd(target *savedtemplate.Template, release func()) tea.Cmd {
	return func() tea.Msg {
		defer release()

		ctx, cancel := ActionCtx()
		defer cancel()

		if err := m.templateSvc.Delete(ctx, m.auth, target.ID); err != nil {
			return templateDoneMsg{action: editor.ActionDelete, err: err}
		}

		return templateDoneMsg{action: editor.ActionDelete, status: fmt.Sprintf("Deleted %q.", target.Name), reload: true}
	}
}
