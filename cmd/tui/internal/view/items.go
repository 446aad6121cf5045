package view

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/editor"
	"github.com/MrJamesThe3rd/invoicer/internal/i18n"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type itemsState int

const (
	itemsStateTable itemsState = iota
	itemsStateEdit
	itemsStateFilePick
	itemsStateImporting
)

// itemValues backs the edit form; see detailValues.
type itemValues struct {
	id             string
	description    string
	subDescription string
	details        string
	quantity       string
	price          string
}

type ItemsModel struct {
	CommonModel
	session       *editor.Session
	importService *importer.Service

	state      itemsState
	table      table.Model
	ids        []string
	form       *huh.Form
	values     *itemValues
	filePicker filepicker.Model

	status string
	err    error
}

func NewItemsModel(session *editor.Session, impSvc *importer.Service) ItemsModel {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Description", Width: 36},
		{Title: "Qty", Width: 5},
		{Title: "Price", Width: 16},
		{Title: "Total", Width: 18},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(tableStyles())

	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	m := ItemsModel{
		session:       session,
		importService: impSvc,
		table:         t,
		filePicker:    fp,
	}
	m.refreshTable()

	return m
}

func (m ItemsModel) Title() string { return "Line Items" }

func (m ItemsModel) ShortHelp() string {
	switch m.state {
	case itemsStateEdit:
		return "Esc: cancel | Enter: next"
	case itemsStateFilePick:
		return "Esc: cancel | Enter: select file"
	case itemsStateImporting:
		return "Importing..."
	}

	return "a: add | e/Enter: edit | d: delete | i: import CSV | Esc: back"
}

func (m ItemsModel) Init() tea.Cmd {
	return nil
}

func (m ItemsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(itemsImportedMsg); ok {
		m.state = itemsStateTable
		m.err = result.err

		if result.err != nil {
			slog.Warn("line item import failed", "error", result.err)
		} else {
			m.status = fmt.Sprintf("Imported %d line items.", result.count)
		}

		m.refreshTable()

		return m, nil
	}

	switch m.state {
	case itemsStateEdit:
		return m.updateEdit(msg)
	case itemsStateFilePick:
		return m.updateFilePick(msg)
	case itemsStateImporting:
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "a":
		item, err := m.session.AddItem()
		if err != nil {
			slog.Error("failed to add line item", "error", err)
			m.err = err
			return m, nil
		}

		m.refreshTable()
		m.table.GotoBottom()

		return m.startEdit(item)
	case "e", "enter":
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}

		return m.startEdit(item)
	case "d":
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}

		m.status = ""
		if m.err = m.session.RemoveItem(item.ID); m.err != nil {
			slog.Warn("line item not removed", "id", item.ID, "error", m.err)
		}

		m.refreshTable()

		return m, nil
	case "i":
		m.state = itemsStateFilePick
		m.status = ""
		m.err = nil

		return m, m.filePicker.Init()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ItemsModel) startEdit(item invoice.LineItem) (tea.Model, tea.Cmd) {
	m.values = &itemValues{
		id:             item.ID,
		description:    item.Description,
		subDescription: item.SubDescription,
		details:        item.Details,
		quantity:       strconv.Itoa(item.Quantity),
		price:          item.Price.String(),
	}
	m.form = m.buildEditForm()
	m.state = itemsStateEdit
	m.status = ""
	m.err = nil

	return m, m.form.Init()
}

func (m ItemsModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = itemsStateTable
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = itemsStateTable

	item, err := m.values.lineItem()
	if err == nil {
		err = m.session.UpdateItem(item)
	}

	if err != nil {
		slog.Warn("line item change rejected", "id", m.values.id, "error", err)
	}

	m.err = err
	m.refreshTable()

	return m, nil
}

func (m ItemsModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = itemsStateTable
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		release, err := m.session.Guard().Begin(editor.ActionImport)
		if err != nil {
			slog.Warn("line item import not started", "error", err)
			m.state = itemsStateTable
			m.err = err

			return m, nil
		}

		m.state = itemsStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path, release)
	}

	return m, cmd
}

func (m ItemsModel) buildEditForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.values.description),
			huh.NewInput().
				Key("subDescription").
				Title("Subtitle").
				Value(&m.values.subDescription),
			huh.NewText().
				Key("details").
				Title("Details").
				Description("One bullet per line").
				Lines(4).
				Value(&m.values.details),
			huh.NewInput().
				Key("quantity").
				Title("Quantity").
				Validate(validateQuantity).
				Value(&m.values.quantity),
			huh.NewInput().
				Key("price").
				Title("Unit Price (Rp)").
				Validate(validatePrice).
				Value(&m.values.price),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (v *itemValues) lineItem() (invoice.LineItem, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(v.quantity))
	if err != nil {
		return invoice.LineItem{}, fmt.Errorf("quantity: %w", err)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(v.price))
	if err != nil {
		return invoice.LineItem{}, fmt.Errorf("price: %w", err)
	}

	return invoice.LineItem{
		ID:             v.id,
		Description:    v.description,
		SubDescription: v.subDescription,
		Details:        v.details,
		Quantity:       qty,
		Price:          price,
	}, nil
}

func validateQuantity(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return errors.New("enter a whole number of at least 1")
	}

	return nil
}

func validatePrice(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return errors.New("enter a price of 0 or more")
	}

	return nil
}

func (m *ItemsModel) refreshTable() {
	doc := m.session.Document()

	rows := make([]table.Row, len(doc.Items))
	m.ids = make([]string, len(doc.Items))

	for i, item := range doc.Items {
		m.ids[i] = item.ID
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			item.Description,
			strconv.Itoa(item.Quantity),
			i18n.FormatCurrency(item.Price),
			i18n.FormatCurrency(item.Total()),
		}
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m ItemsModel) selectedItem() (invoice.LineItem, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.ids) {
		return invoice.LineItem{}, false
	}

	for _, item := range m.session.Document().Items {
		if item.ID == m.ids[cursor] {
			return item, true
		}
	}

	return invoice.LineItem{}, false
}

func (m ItemsModel) View() string {
	switch m.state {
	case itemsStateEdit:
		return padded.Render(m.form.View())
	case itemsStateFilePick:
		return padded.Render(lipgloss.JoinVertical(lipgloss.Left,
			"Pick a CSV file with description, quantity and price columns:",
			"",
			m.filePicker.View(),
		))
	case itemsStateImporting:
		return padded.Render(m.status)
	}

	total := m.session.Document().Total()

	footer := m.status
	if m.err != nil {
		footer = errorLine(m.err)
	}

	return padded.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.table.View(),
		"",
		titleStyle.Render("Total: "+i18n.FormatCurrency(total)),
		footer,
	))
}

type itemsImportedMsg struct {
	count int
	err   error
}

func (m ItemsModel) importCmd(path string, release func()) tea.Cmd {
	return func() tea.Msg {
		defer release()

		f, err := os.Open(path)
		if err != nil {
			return itemsImportedMsg{err: err}
		}
		defer f.Close()

		items, err := m.importService.Import(f)
		if err != nil {
			return itemsImportedMsg{err: err}
		}

		if err := m.session.AppendItems(items); err != nil {
			return itemsImportedMsg{err: err}
		}

		return itemsImportedMsg{count: len(items)}
	}
}
