package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
)

// Theme is the palette used by the CLI.
type Theme struct {
	Primary   lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Border    lipgloss.Color
}

// CurrentTheme is the palette in effect.
var CurrentTheme = Theme{
	Primary:   lipgloss.Color("#7aa2f7"),
	Text:      lipgloss.Color("#c0caf5"),
	TextMuted: lipgloss.Color("#808080"),
	Success:   lipgloss.Color("#9ece6a"),
	Error:     lipgloss.Color("#f7768e"),
	Border:    lipgloss.Color("#565f89"),
}

// SetTheme sets the current theme
func SetTheme(t Theme) {
	CurrentTheme = t
}

func Heading(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary).Render(s)
}

func Muted(s string) string {
	return lipgloss.NewStyle().Foreground(CurrentTheme.TextMuted).Render(s)
}

func Success(s string) string {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Success).Render(s)
}

func Error(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Error).Render(s)
}

// DefaultCellWidth bounds table cells; longer values are cut with an ellipsis.
const DefaultCellWidth = 48

// Table renders rows under headers with the theme's border and header
// styles. Cells wider than maxCell are truncated; maxCell <= 0 disables
// truncation.
func Table(headers []string, rows [][]string, maxCell int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(CurrentTheme.Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(CurrentTheme.Primary)
			}
			return s
		})

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = Truncate(cell, maxCell)
		}
		t.Row(cells...)
	}
	return t.Render()
}

// Truncate shortens s to width display cells, ANSI sequences preserved.
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
