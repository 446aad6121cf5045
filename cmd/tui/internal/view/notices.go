package view

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// noticeTTL is how long success and failure notices stay on screen.
// Progress notices stay until they are dismissed.
const noticeTTL = 4 * time.Second

type noticeKind int

const (
	noticeProgress noticeKind = iota
	noticeSuccess
	noticeFailure
)

type notice struct {
	id   int
	kind noticeKind
	text string
	at   time.Time
}

// Notices is the toast area of the TUI. It implements export.Notifier and
// may be written to from the commands that run exports.
type Notices struct {
	mu     sync.Mutex
	nextID int
	items  []notice
	now    func() time.Time
}

func NewNotices() *Notices {
	return &Notices{now: time.Now}
}

func (n *Notices) add(kind noticeKind, text string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.items = append(n.items, notice{id: n.nextID, kind: kind, text: text, at: n.now()})

	return n.nextID
}

func (n *Notices) remove(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, item := range n.items {
		if item.id == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return
		}
	}
}

func (n *Notices) Progress(msg string) func() {
	id := n.add(noticeProgress, msg)

	var once sync.Once

	return func() {
		once.Do(func() { n.remove(id) })
	}
}

func (n *Notices) Success(msg string) {
	n.add(noticeSuccess, msg)
}

func (n *Notices) Failure(msg string, err error) {
	if err != nil {
		msg += ": " + err.Error()
	}

	n.add(noticeFailure, msg)
}

// active drops expired notices and returns the rest, oldest first.
func (n *Notices) active() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	kept := n.items[:0]

	for _, item := range n.items {
		if item.kind != noticeProgress && now.Sub(item.at) >= noticeTTL {
			continue
		}

		kept = append(kept, item)
	}

	n.items = kept

	return append([]notice(nil), kept...)
}

var noticeBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

// View renders the current notices, or nothing when there are none.
func (n *Notices) View(spin string) string {
	items := n.active()
	if len(items) == 0 {
		return ""
	}

	lines := make([]string, len(items))

	for i, item := range items {
		switch item.kind {
		case noticeProgress:
			lines[i] = spin + " " + item.text
		case noticeSuccess:
			lines[i] = successStyle.Render("✓ " + item.text)
		case noticeFailure:
			lines[i] = errorStyle.Render("✗ " + item.text)
		}
	}

	return noticeBox.Render(strings.Join(lines, "\n"))
}
