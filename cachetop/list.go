package cachetop

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("243"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	commandStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
)

const (
	timeColWidth    = 12
	commandColWidth = 11
)

func (m Model) renderList(height int) string {
	idx := visible(m.events, m.filterQuery)

	var b strings.Builder
	b.WriteString(headerStyle.Render(padRight("TIME", timeColWidth) + " " + padRight("COMMAND", commandColWidth) + " ARGS"))
	b.WriteByte('\n')

	start := 0
	if len(idx) > height {
		start = len(idx) - height
	}
	if m.cursor < start {
		start = m.cursor
	}
	end := min(start+height, len(idx))

	for i := start; i < end; i++ {
		ev := m.events[idx[i]]
		row := padRight(formatTime(ev.Time), timeColWidth) + " " +
			commandStyle.Render(padRight(strings.ToUpper(ev.Command), commandColWidth)) + " " +
			truncate(strings.Join(ev.Args, " "), 80)
		if i == m.cursor {
			row = selectedStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteByte('\n')
	}

	b.WriteString(headerStyle.Render(strconv.Itoa(len(idx)) + " events"))
	return strings.TrimRight(b.String(), "\n")
}
