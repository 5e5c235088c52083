package pager

import (
	"strings"

	"github.com/grovetools/agentview/internal/display"
	"github.com/mattn/go-runewidth"
)

// Line is one screen row. Cont marks the second and later chunks of a raw
// line that was wider than the view.
type Line struct {
	display.StyledLine
	Cont bool
}

// IsSeparator reports whether the row starts a turn.
func (l Line) IsSeparator() bool {
	return !l.Cont && l.Turn >= 0
}

// Wrap cuts raw lines into chunks of at most width-1 cells. Chunks keep the
// style and turn tag of their raw line. A width below 2 disables wrapping.
func Wrap(raw []display.StyledLine, width int) []Line {
	out := make([]Line, 0, len(raw))
	limit := width - 1
	for _, rl := range raw {
		if limit < 1 || runewidth.StringWidth(rl.Text) <= limit {
			out = append(out, Line{StyledLine: rl})
			continue
		}
		for i, chunk := range chunks(rl.Text, limit) {
			l := Line{StyledLine: rl, Cont: i > 0}
			l.Text = chunk
			out = append(out, l)
		}
	}
	return out
}

// chunks splits s into pieces no wider than limit cells. A rune wider than
// the remaining space starts the next piece.
func chunks(s string, limit int) []string {
	var (
		out []string
		b   strings.Builder
		w   int
	)
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > limit && w > 0 {
			out = append(out, b.String())
			b.Reset()
			w = 0
		}
		b.WriteRune(r)
		w += rw
	}
	if b.Len() > 0 || len(out) == 0 {
		out = append(out, b.String())
	}
	return out
}
