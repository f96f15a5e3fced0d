package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mindcare-backend/internal/client"
)

const roleLabelWidth = 11

// renderTranscript renders messages into lines for the scroll region.
func renderTranscript(msgs []client.Message, width int) []string {
	maxWidth := max(20, width-2)

	var lines []string
	for _, msg := range msgs {
		header := userRoleStyle.Render(pad(" YOU", roleLabelWidth))
		textStyle := lipgloss.NewStyle()
		if msg.Sender == client.SenderAI {
			header = aiRoleStyle.Render(pad(" MINDCARE", roleLabelWidth))
			textStyle = aiTextStyle
		}
		lines = append(lines, header)

		for _, wl := range wrapText(msg.Text, maxWidth-1) {
			lines = append(lines, " "+textStyle.Render(wl))
		}

		lines = append(lines, "")
	}
	return lines
}

// wrapText breaks text at word boundaries to fit maxWidth cells.
func wrapText(text string, maxWidth int) []string {
	if text == "" {
		return nil
	}
	wrapped := lipgloss.NewStyle().Width(maxWidth).Render(text)
	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
