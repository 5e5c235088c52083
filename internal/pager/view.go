package pager

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/agentview/internal/display"
	"github.com/grovetools/core/tui/theme"
	"github.com/mattn/go-runewidth"
)

// Painter turns engine lines into terminal text.
type Painter struct {
	Styles       display.Styles
	Shades       Shades
	Match        lipgloss.Style
	CurrentMatch lipgloss.Style
	Watched      lipgloss.Style
}

// DefaultPainter returns the theme-based painter with the given shades.
func DefaultPainter(shades Shades) Painter {
	colors := theme.DefaultColors
	return Painter{
		Styles:       display.DefaultStyles(),
		Shades:       shades,
		Match:        lipgloss.NewStyle().Underline(true).Foreground(colors.Yellow),
		CurrentMatch: lipgloss.NewStyle().Reverse(true).Foreground(colors.Yellow),
		Watched:      lipgloss.NewStyle().Bold(true).Foreground(colors.Red),
	}
}

// Body renders the viewport, padded to its height.
func (p Painter) Body(e *Engine, now time.Time) string {
	rows := make([]string, 0, e.height)
	current, hasCurrent := e.CurrentMatch()
	for i, l := range e.Visible() {
		idx := e.offset + i
		rows = append(rows, p.row(e, l, idx, current, hasCurrent, now))
	}
	for len(rows) < e.height {
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}

func (p Painter) row(e *Engine, l Line, idx int, current Match, hasCurrent bool, now time.Time) string {
	base := p.Styles.Style(l.Style)
	if e.IsWatched(l) {
		base = p.Watched
	}
	bg, glowing := p.Shades.For(e.Glow(idx, now))
	if glowing {
		base = base.Background(bg)
	}

	var b strings.Builder
	pos := 0
	for _, m := range matchesOn(e.matches, idx) {
		if m.Col < pos || m.Col+m.Len > len(l.Text) {
			continue
		}
		b.WriteString(base.Render(l.Text[pos:m.Col]))
		hl := p.Match
		if hasCurrent && m == current {
			hl = p.CurrentMatch
		}
		b.WriteString(hl.Render(l.Text[m.Col : m.Col+m.Len]))
		pos = m.Col + m.Len
	}
	b.WriteString(base.Render(l.Text[pos:]))

	if glowing {
		if pad := e.width - 1 - runewidth.StringWidth(l.Text); pad > 0 {
			b.WriteString(lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", pad)))
		}
	}
	return b.String()
}
