package view

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/editor"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type detailsState int

const (
	detailsStateForm detailsState = iota
	detailsStateResult
)

// detailFields is the order in which edited fields are applied.
var detailFields = []editor.Field{
	editor.FieldCompanyName,
	editor.FieldCompanyAddress,
	editor.FieldCompanyPhone,
	editor.FieldCompanyEmail,
	editor.FieldClientName,
	editor.FieldClientAddress,
	editor.FieldClientPhone,
	editor.FieldClientEmail,
	editor.FieldInvoiceNumber,
	editor.FieldInvoiceDate,
	editor.FieldDueDate,
	editor.FieldBankName,
	editor.FieldBankAccountNumber,
	editor.FieldBankAccountName,
	editor.FieldNotes,
	editor.FieldTermsAndConditions,
}

// detailValues is shared by every copy of the model so the form keeps
// writing to the same place.
type detailValues struct {
	fields map[editor.Field]*string
	theme  string
	locale string
}

type DetailsModel struct {
	CommonModel
	session *editor.Session

	state  detailsState
	form   *huh.Form
	values *detailValues
	err    error
}

func NewDetailsModel(session *editor.Session) DetailsModel {
	values := &detailValues{
		fields: make(map[editor.Field]*string, len(detailFields)),
		locale: string(session.Document().Locale),
	}

	for _, f := range detailFields {
		v, _ := session.Field(f)
		values.fields[f] = new(v)
	}

	m := DetailsModel{
		session: session,
		values:  values,
	}
	m.form = m.buildForm()

	return m
}

func (m DetailsModel) Title() string { return "Invoice Details" }

func (m DetailsModel) ShortHelp() string {
	if m.state == detailsStateResult {
		return "Esc: back to menu"
	}

	return "Esc: back | Enter: next | Shift+Tab: previous"
}

func (m DetailsModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m DetailsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	if m.state == detailsStateResult {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.err = m.apply(); m.err != nil {
		slog.Warn("invoice details partly rejected", "error", m.err)
	}

	m.state = detailsStateResult

	return m, nil
}

// apply writes every edited value into the session. Fields are applied one
// at a time so a single rejected value does not discard the others.
func (m DetailsModel) apply() error {
	var errs []error

	for _, f := range detailFields {
		if err := m.session.SetField(f, *m.values.fields[f]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f, err))
		}
	}

	if m.values.theme != "" {
		if t, ok := invoice.FindTheme(m.values.theme); ok {
			if err := m.session.ApplyTheme(t); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if err := m.session.SetLocale(invoice.Locale(m.values.locale)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (m DetailsModel) buildForm() *huh.Form {
	input := func(f editor.Field, title string) *huh.Input {
		return huh.NewInput().
			Key(string(f)).
			Title(title).
			Value(m.values.fields[f])
	}

	text := func(f editor.Field, title string) *huh.Text {
		return huh.NewText().
			Key(string(f)).
			Title(title).
			Lines(3).
			Value(m.values.fields[f])
	}

	themes := []huh.Option[string]{huh.NewOption("Keep current colors", "")}
	for _, t := range invoice.Themes {
		themes = append(themes, huh.NewOption(t.Name, t.Key))
	}

	return huh.NewForm(
		huh.NewGroup(
			input(editor.FieldCompanyName, "Company Name"),
			text(editor.FieldCompanyAddress, "Company Address"),
			input(editor.FieldCompanyPhone, "Phone"),
			input(editor.FieldCompanyEmail, "Email"),
		).Title("From"),
		huh.NewGroup(
			input(editor.FieldClientName, "Client Name"),
			text(editor.FieldClientAddress, "Client Address"),
			input(editor.FieldClientPhone, "Phone"),
			input(editor.FieldClientEmail, "Email"),
		).Title("Bill To"),
		huh.NewGroup(
			input(editor.FieldInvoiceNumber, "Invoice Number"),
			input(editor.FieldInvoiceDate, "Invoice Date").Placeholder("YYYY-MM-DD").Validate(validateDate),
			input(editor.FieldDueDate, "Due Date").Placeholder("YYYY-MM-DD").Validate(validateDate),
		).Title("Invoice"),
		huh.NewGroup(
			input(editor.FieldBankName, "Bank Name"),
			input(editor.FieldBankAccountNumber, "Account Number"),
			input(editor.FieldBankAccountName, "Account Name"),
		).Title("Payment"),
		huh.NewGroup(
			text(editor.FieldNotes, "Notes"),
			text(editor.FieldTermsAndConditions, "Terms & Conditions"),
		).Title("Notes"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("theme").
				Title("Theme").
				Options(themes...).
				Value(&m.values.theme),
			huh.NewSelect[string]().
				Key("locale").
				Title("Preview Language").
				Options(
					huh.NewOption("Bahasa Indonesia", string(invoice.LocaleID)),
					huh.NewOption("English", string(invoice.LocaleEN)),
				).
				Value(&m.values.locale),
		).Title("Appearance"),
	).WithWidth(60).WithShowHelp(false)
}

func (m DetailsModel) View() string {
	if m.state == detailsStateForm {
		return padded.Render(m.form.View())
	}

	if m.err != nil {
		return padded.Render(lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Render("Some changes were rejected:"),
			"",
			errorStyle.Render(m.err.Error()),
		))
	}

	return padded.Render(successStyle.Render("Details updated."))
}

func validateDate(s string) error {
	if s == "" {
		return nil
	}

	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return errors.New("use YYYY-MM-DD")
	}

	return nil
}
