package view

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gabriel-vasile/mimetype"

	"github.com/MrJamesThe3rd/invoicer/internal/editor"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

type imagesState int

const (
	imagesStateSlots imagesState = iota
	imagesStateFilePick
	imagesStateUploading
)

var slotTitles = map[invoice.ImageSlot]string{
	invoice.SlotHeader:    "Header Image",
	invoice.SlotLogo:      "Company Logo",
	invoice.SlotSignature: "Signature",
}

type ImagesModel struct {
	CommonModel
	session *editor.Session

	state      imagesState
	cursor     int
	filePicker filepicker.Model

	status string
	err    error
}

func NewImagesModel(session *editor.Session) ImagesModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImagesModel{
		session:    session,
		filePicker: fp,
	}
}

func (m ImagesModel) Title() string { return "Images" }

func (m ImagesModel) ShortHelp() string {
	switch m.state {
	case imagesStateFilePick:
		return "Esc: cancel | Enter: select file"
	case imagesStateUploading:
		return "Uploading..."
	}

	return "↑/↓: choose | Enter: upload | x: remove | Esc: back"
}

func (m ImagesModel) Init() tea.Cmd {
	return nil
}

func (m ImagesModel) slot() invoice.ImageSlot {
	return invoice.Slots[m.cursor]
}

func (m ImagesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(imageUploadedMsg); ok {
		m.state = imagesStateSlots
		m.err = result.err

		if result.err != nil {
			slog.Warn("image upload rejected", "slot", result.slot, "error", result.err)
		} else {
			m.status = fmt.Sprintf("%s updated.", slotTitles[result.slot])
		}

		return m, nil
	}

	switch m.state {
	case imagesStateFilePick:
		return m.updateFilePick(msg)
	case imagesStateUploading:
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(invoice.Slots)-1 {
			m.cursor++
		}
	case "enter":
		m.state = imagesStateFilePick
		m.status = ""
		m.err = nil

		return m, m.filePicker.Init()
	case "x":
		m.err = m.session.ClearImage(m.slot())
		if m.err != nil {
			slog.Error("failed to clear image", "slot", m.slot(), "error", m.err)
		} else {
			m.status = fmt.Sprintf("%s removed.", slotTitles[m.slot()])
		}
	}

	return m, nil
}

func (m ImagesModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = imagesStateSlots
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		release, err := m.session.Guard().Begin(editor.ActionUpload)
		if err != nil {
			slog.Warn("image upload not started", "error", err)
			m.state = imagesStateSlots
			m.err = err

			return m, nil
		}

		m.state = imagesStateUploading
		m.status = fmt.Sprintf("Uploading %s...", path)

		return m, m.uploadCmd(m.slot(), path, release)
	}

	return m, cmd
}

func (m ImagesModel) View() string {
	switch m.state {
	case imagesStateFilePick:
		return padded.Render(lipgloss.JoinVertical(lipgloss.Left,
			fmt.Sprintf("Pick an image for %s (max 5 MB):", slotTitles[m.slot()]),
			"",
			m.filePicker.View(),
		))
	case imagesStateUploading:
		return padded.Render(m.status)
	}

	doc := m.session.Document()

	var b strings.Builder

	for i, slot := range invoice.Slots {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		state := mutedStyle.Render("not set")
		if uri := doc.Image(slot); uri != "" {
			state = successStyle.Render(imageSummary(uri))
		}

		fmt.Fprintf(&b, "%s%-14s %s\n", cursor, slotTitles[slot], state)
	}

	footer := m.status
	if m.err != nil {
		footer = errorLine(m.err)
	}

	return padded.Render(lipgloss.JoinVertical(lipgloss.Left, b.String(), footer))
}

// imageSummary describes a stored data URI by type and approximate size
// without decoding it.
func imageSummary(uri string) string {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return "set"
	}

	contentType, _, _ := strings.Cut(meta, ";")

	return fmt.Sprintf("%s, %d KB", contentType, base64.StdEncoding.DecodedLen(len(payload))/1024)
}

type imageUploadedMsg struct {
	slot invoice.ImageSlot
	err  error
}

func (m ImagesModel) uploadCmd(slot invoice.ImageSlot, path string, release func()) tea.Cmd {
	return func() tea.Msg {
		defer release()

		info, err := os.Stat(path)
		if err != nil {
			return imageUploadedMsg{slot: slot, err: err}
		}

		if info.Size() > invoice.MaxImageSize {
			return imageUploadedMsg{slot: slot, err: invoice.ErrImageTooLarge}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return imageUploadedMsg{slot: slot, err: err}
		}

		// A local file has no declared type, so the sniffed one stands in.
		contentType := mimetype.Detect(data).String()

		return imageUploadedMsg{slot: slot, err: m.session.SetImage(slot, contentType, data)}
	}
}
