package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Field is one labelled line of a [Banner].
type Field struct {
	Label string
	Value string
}

var box = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#1DB954")).
	Padding(0, 2)

// Banner renders title above fields, with labels aligned, inside a rounded box.
func Banner(title string, fields ...Field) string {
	width := 0
	for _, f := range fields {
		width = max(width, lipgloss.Width(f.Label))
	}

	label := Styles.help.Width(width + 2)
	lines := []string{Styles.Title(title), ""}
	for _, f := range fields {
		lines = append(lines, label.Render(f.Label)+f.Value)
	}

	return box.Render(strings.Join(lines, "\n"))
}
