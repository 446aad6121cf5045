package view

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/MrJamesThe3rd/invoicer/internal/editor"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

const (
	previewWidth     = 84
	defaultPreviewHt = 30
)

// PreviewModel shows a terminal rendition of the invoice. It is rebuilt from
// the session every time the screen opens.
type PreviewModel struct {
	CommonModel
	viewport viewport.Model
}

func NewPreviewModel(session *editor.Session, width, height int) PreviewModel {
	if height <= 0 {
		height = defaultPreviewHt
	}

	w := min(previewWidth, max(width-4, 40))
	if width <= 0 {
		w = previewWidth
	}

	vp := viewport.New(w, max(height-6, 10))
	vp.SetContent(renderPreview(render.Project(session.Document()), w))

	return PreviewModel{
		CommonModel: CommonModel{Width: width, Height: height},
		viewport:    vp,
	}
}

func (m PreviewModel) Title() string { return "Preview" }

func (m PreviewModel) ShortHelp() string { return "↑/↓: scroll | Esc: back" }

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

func (m PreviewModel) View() string {
	return padded.Render(m.viewport.View())
}

func renderPreview(v render.View, width int) string {
	primary := lipgloss.Color(v.Palette.Primary)
	accent := lipgloss.Color(v.Palette.Accent)

	banner := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(primary).
		Padding(0, 1).
		Width(width)

	heading := lipgloss.NewStyle().Bold(true).Foreground(accent)
	half := lipgloss.NewStyle().Width(width / 2)

	var sections []string

	sections = append(sections, banner.Render(v.L("invoice")+"  "+v.Company.Name))

	meta := []string{v.L("invoiceNo") + " " + v.Number}
	if v.IssueDate != "" {
		meta = append(meta, v.L("date")+" "+v.IssueDate)
	}

	if v.DueDate != "" {
		meta = append(meta, v.L("dueDate")+" "+v.DueDate)
	}

	sections = append(sections, strings.Join(meta, "   "), "")

	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
		half.Render(partyBlock(v.Company, heading.Render(v.Company.Name))),
		half.Render(partyBlock(v.Client, heading.Render(v.L("billTo"))+"\n"+v.Client.Name)),
	), "")

	rows := make([][]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		desc := r.Description
		if r.SubDescription != "" {
			desc += "\n" + r.SubDescription
		}

		for _, d := range r.Details {
			desc += "\n• " + d
		}

		rows = append(rows, []string{desc, strconv.Itoa(r.Quantity), r.Price, r.Total})
	}

	items := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(v.L("description"), v.L("quantity"), v.L("price"), v.L("total")).
		Rows(rows...).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(primary)
			}

			if col > 0 {
				s = s.Align(lipgloss.Right)
			}

			return s
		})

	sections = append(sections, items.Render())

	totals := lipgloss.NewStyle().Width(width).Align(lipgloss.Right)
	sections = append(sections,
		totals.Render(v.L("subtotal")+"  "+v.Subtotal),
		totals.Render(heading.Render(v.L("grandTotal")+"  "+v.Total)),
		"",
	)

	if v.Bank != nil {
		sections = append(sections,
			heading.Render(v.L("payment")),
			v.L("bankName")+" "+v.Bank.Name,
			v.L("accountNumber")+" "+v.Bank.AccountNumber,
			v.L("accountName")+" "+v.Bank.AccountName,
			"",
		)
	}

	if v.Notes != "" {
		sections = append(sections, heading.Render(v.L("notes")), v.Notes, "")
	}

	if v.Terms != "" {
		sections = append(sections, heading.Render(v.L("terms")), v.Terms, "")
	}

	if v.Signature != "" {
		sections = append(sections, heading.Render(v.L("signature"))+" ✓", "")
	}

	sections = append(sections, mutedStyle.Width(width).Align(lipgloss.Center).Render(v.Footer))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func partyBlock(p render.Party, title string) string {
	lines := []string{title}

	if p.Address != "" {
		lines = append(lines, p.Address)
	}

	if contact := p.Contact(); contact != "" {
		lines = append(lines, contact)
	}

	return strings.Join(lines, "\n")
}
