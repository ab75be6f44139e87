package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type tableController interface {
	NextColumn()
	PrevColumn()
	SortActiveColumn(desc bool)
	HideActiveColumn() bool
	ShowAllColumns()
	FilterBySelectedValue() bool
	ClearFilter() bool
	TableMeta() string
	Prefs() TablePrefs
}

const tableSeparator = "│"

func tableSeparatorWidth() int {
	return lipgloss.Width(tableSeparator)
}

func formatHeaderLabel(label string) string {
	return strings.ToUpper(label)
}

func renderActiveHeaderLabel(label string) string {
	return "[" + label + "]"
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	sep := lipgloss.NewStyle().Foreground(ColorMuted).Render(tableSeparator)
	parts := make([]string, 0, 2*len(cells))
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		if i > 0 {
			parts = append(parts, sep)
		}
		parts = append(parts, style.Width(widths[i]).MaxWidth(widths[i]).Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

func renderTableDivider(widths []int) string {
	segments := make([]string, len(widths))
	for i, w := range widths {
		segments[i] = strings.Repeat("─", w)
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Join(segments, "┼"))
}
