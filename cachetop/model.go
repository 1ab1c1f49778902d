package cachetop

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kvcached/cached/clipboard"
	"github.com/kvcached/cached/highlight"
)

// Model is the Bubble Tea model for the cachetop TUI.
type Model struct {
	target string
	client *Client

	events []Event
	cursor int
	follow bool
	width  int
	height int
	err    error

	filterMode   bool
	filterQuery  string
	filterCursor int
}

type eventMsg struct{ ev Event }
type errMsg struct{ err error }
type connectedMsg struct{ client *Client }

// New creates a new Model targeting a running cached server's address.
func New(target string) Model {
	return Model{target: target, follow: true}
}

// Init starts the connection to the server.
func (m Model) Init() tea.Cmd { return connect(m.target) }

func connect(target string) tea.Cmd {
	return func() tea.Msg {
		c, err := Dial(target)
		if err != nil {
			return errMsg{err: err}
		}
		return connectedMsg{client: c}
	}
}

func recvEvent(c *Client) tea.Cmd {
	return func() tea.Msg {
		ev, err := c.ReadEvent()
		if err != nil {
			return errMsg{err: err}
		}
		return eventMsg{ev: ev}
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case connectedMsg:
		m.client = msg.client
		return m, recvEvent(msg.client)

	case eventMsg:
		m.events = append(m.events, msg.ev)
		if m.follow {
			m.cursor = max(len(visible(m.events, m.filterQuery))-1, 0)
		}
		return m, recvEvent(m.client)

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.filterMode {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.client != nil {
			_ = m.client.Close()
		}
		return m, tea.Quit
	case "/":
		m.filterMode = true
		m.filterQuery = ""
		m.filterCursor = 0
		return m, nil
	case "esc":
		m.filterQuery = ""
		m.cursor = 0
		return m, nil
	case "y":
		return m.copySelected(), nil
	case "j", "down":
		return m.navigate(1), nil
	case "k", "up":
		return m.navigate(-1), nil
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filterMode = false
		m.cursor = 0
		return m, nil
	case "ctrl+c":
		if m.client != nil {
			_ = m.client.Close()
		}
		return m, tea.Quit
	case "backspace":
		if m.filterCursor > 0 {
			runes := []rune(m.filterQuery)
			m.filterQuery = string(runes[:m.filterCursor-1]) + string(runes[m.filterCursor:])
			m.filterCursor--
		}
		return m, nil
	case "left":
		if m.filterCursor > 0 {
			m.filterCursor--
		}
		return m, nil
	case "right":
		if m.filterCursor < len([]rune(m.filterQuery)) {
			m.filterCursor++
		}
		return m, nil
	}

	r := msg.Runes
	if len(r) == 0 {
		return m, nil
	}
	runes := []rune(m.filterQuery)
	m.filterQuery = string(runes[:m.filterCursor]) + string(r) + string(runes[m.filterCursor:])
	m.filterCursor += len(r)
	return m, nil
}

func (m Model) navigate(delta int) Model {
	n := len(visible(m.events, m.filterQuery))
	if n == 0 {
		return m
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	m.follow = m.cursor == n-1
	return m
}

func (m Model) selected() (Event, bool) {
	idx := visible(m.events, m.filterQuery)
	if m.cursor < 0 || m.cursor >= len(idx) {
		return Event{}, false
	}
	return m.events[idx[m.cursor]], true
}

func (m Model) copySelected() Model {
	ev, ok := m.selected()
	if !ok || len(ev.Args) == 0 {
		return m
	}
	_ = clipboard.Copy(context.Background(), ev.Args[len(ev.Args)-1])
	return m
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.err != nil {
		return friendlyError(m.err, m.width)
	}
	if len(m.events) == 0 {
		return "Waiting for commands..."
	}

	footer := m.renderFooter()
	footerLines := strings.Count(footer, "\n") + 1
	listHeight := max(m.height-4-footerLines, 3)

	return strings.Join([]string{
		m.renderList(listHeight),
		m.renderDetail(),
		footer,
	}, "\n")
}

func (m Model) renderFooter() string {
	if m.filterMode {
		return "  / " + renderInputWithCursor(m.filterQuery, m.filterCursor)
	}
	line := "q: quit  j/k: navigate  y: copy value  /: filter"
	if m.filterQuery != "" {
		line += fmt.Sprintf("  [filter: %s]  esc: clear", m.filterQuery)
	}
	return line
}

func (m Model) renderDetail() string {
	ev, ok := m.selected()
	if !ok {
		return ""
	}
	var val string
	if len(ev.Args) > 0 {
		val = highlight.Value([]byte(ev.Args[len(ev.Args)-1]))
	}
	return lipgloss.NewStyle().Faint(true).Render(val)
}
