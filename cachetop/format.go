package cachetop

import (
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func formatTime(t time.Time) string {
	return t.In(time.Local).Format("15:04:05.000") //nolint:gosmopolitan // TUI displays local time
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

var reSpaces = regexp.MustCompile(`\s+`)

func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return s[:maxLen]
	}
	return s[:maxLen-1] + "…"
}

// renderInputWithCursor renders a text input with a block cursor at the
// given rune position.
func renderInputWithCursor(text string, cursorPos int) string {
	runes := []rune(text)
	if cursorPos >= len(runes) {
		return text + "█"
	}
	return string(runes[:cursorPos]) + "█" + string(runes[cursorPos:])
}

func friendlyError(err error, width int) string {
	msg := err.Error()
	text := "Could not connect to cached.\n"
	if strings.Contains(msg, "connection refused") {
		text += "Is the server running?\n\n"
	}
	text += "Error: " + msg
	return lipgloss.NewStyle().Width(width).Render(text)
}
