package pager

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/agentview/internal/display"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// rawTurns builds n turns of one separator and body lines each.
func rawTurns(n, body int) []display.StyledLine {
	var out []display.StyledLine
	for turn := 1; turn <= n; turn++ {
		out = append(out, display.StyledLine{
			Text:  fmt.Sprintf("── Turn %d ──", turn),
			Style: display.StyleSeparator,
			Turn:  turn,
		})
		for i := 0; i < body; i++ {
			out = append(out, display.StyledLine{
				Text:  fmt.Sprintf("turn %d line %d", turn, i),
				Style: display.StyleAssistant,
				Turn:  -1,
			})
		}
	}
	return out
}

func newEngine(raw []display.StyledLine, height int, follow bool) *Engine {
	e := NewEngine(80, height, follow)
	e.Replace(raw)
	return e
}

func TestScrollClamp(t *testing.T) {
	e := newEngine(rawTurns(4, 5), 6, false)
	require.Len(t, e.Lines(), 24)

	e.ScrollUp(3)
	assert.Equal(t, 0, e.Offset())
	e.ScrollDown(100)
	assert.Equal(t, 18, e.Offset())
	e.PageDown()
	assert.Equal(t, 18, e.Offset())
	e.HalfPageUp()
	assert.Equal(t, 15, e.Offset())
	e.Top()
	assert.Equal(t, 0, e.Offset())
	e.Bottom()
	assert.Equal(t, 18, e.Offset())
}

func TestScrollClampRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 100; iter++ {
		height := 1 + rng.Intn(30)
		e := newEngine(rawTurns(rng.Intn(6), rng.Intn(8)), height, rng.Intn(2) == 0)
		for step := 0; step < 50; step++ {
			switch rng.Intn(9) {
			case 0:
				e.ScrollDown(rng.Intn(10))
			case 1:
				e.ScrollUp(rng.Intn(10))
			case 2:
				e.PageDown()
			case 3:
				e.PageUp()
			case 4:
				e.NextTurn()
			case 5:
				e.PrevTurn()
			case 6:
				e.SetSize(10+rng.Intn(80), 1+rng.Intn(30))
			case 7:
				e.Append(rawTurns(rng.Intn(8), rng.Intn(8)), t0)
			case 8:
				e.Bottom()
			}
			upper := max(0, len(e.Lines())-e.Height())
			require.GreaterOrEqual(t, e.Offset(), 0)
			require.LessOrEqual(t, e.Offset(), upper)
		}
	}
}

func TestTurnJumps(t *testing.T) {
	raw := rawTurns(3, 2)
	// A separator long enough to wrap must only be stopped at once.
	raw[3].Text = "── Turn 2 " + strings.Repeat("─", 30)
	e := NewEngine(20, 3, false)
	e.Replace(raw)

	var seps []int
	for i, l := range e.Lines() {
		if l.IsSeparator() {
			seps = append(seps, i)
		}
	}
	require.Len(t, seps, 3)

	e.NextTurn()
	assert.Equal(t, seps[1], e.Offset())
	assert.Equal(t, 2, e.TopTurn())
	e.NextTurn()
	assert.Equal(t, min(seps[2], len(e.Lines())-3), e.Offset())
	e.PrevTurn()
	assert.Equal(t, seps[1], e.Offset())
	assert.Equal(t, 3, e.TurnCount())
}

func TestFollowRules(t *testing.T) {
	e := newEngine(rawTurns(4, 5), 6, true)
	assert.Equal(t, 18, e.Offset(), "following starts at the bottom")

	e.ScrollUp(1)
	assert.False(t, e.Following())
	e.Bottom()
	assert.True(t, e.Following())
	e.PrevTurn()
	assert.False(t, e.Following())
	e.ToggleFollow()
	assert.True(t, e.Following())
	assert.Equal(t, 18, e.Offset())

	e.Append(rawTurns(5, 5), t0)
	assert.Equal(t, 24, e.Offset(), "new content snaps while following")

	e.Top()
	e.Append(rawTurns(6, 5), t0)
	assert.Equal(t, 0, e.Offset(), "far from the bottom the view stays put")

	e.ScrollDown(28)
	e.ScrollUp(3)
	require.False(t, e.Following())
	e.Append(rawTurns(7, 5), t0)
	assert.Equal(t, 36, e.Offset(), "within a page of the bottom the view snaps")
}

func TestHighlightFade(t *testing.T) {
	e := newEngine(rawTurns(1, 3), 10, true)
	e.Append(rawTurns(2, 3), t0)

	assert.Equal(t, 0, e.Glow(3, t0), "old lines do not glow")
	assert.Equal(t, 3, e.Glow(4, t0))
	assert.Equal(t, 2, e.Glow(4, t0.Add(700*time.Millisecond)))
	assert.Equal(t, 1, e.Glow(4, t0.Add(1400*time.Millisecond)))
	assert.Equal(t, 0, e.Glow(4, t0.Add(2*time.Second)))

	assert.True(t, e.Animating(t0.Add(time.Second)))
	assert.False(t, e.Animating(t0.Add(3*time.Second)))
	e.ScrollUp(1)
	assert.False(t, e.Animating(t0.Add(time.Second)), "no repaint while paused")
}

func TestResizeReanchors(t *testing.T) {
	raw := rawTurns(5, 3)
	for i := range raw {
		if raw[i].Turn < 0 {
			raw[i].Text = strings.Repeat("x", 50)
		}
	}
	e := NewEngine(80, 4, false)
	e.Replace(raw)
	e.NextTurn()
	e.NextTurn()
	require.Equal(t, 3, e.TopTurn())

	e.SetSize(20, 4)
	assert.Equal(t, 3, e.TopTurn())
	assert.True(t, e.Lines()[e.Offset()].IsSeparator())
	assert.Equal(t, 3, e.Lines()[e.Offset()].Turn)
}

func TestReplaceKeepsTopTurn(t *testing.T) {
	e := newEngine(rawTurns(4, 3), 3, false)
	e.NextTurn()
	e.NextTurn()
	require.Equal(t, 3, e.TopTurn())

	e.Replace(rawTurns(4, 6))
	assert.Equal(t, 3, e.TopTurn())
	assert.Equal(t, 14, e.Offset())
}

func TestWatchPausesOnce(t *testing.T) {
	e := newEngine(rawTurns(2, 3), 4, true)
	e.SetWatch("done")

	raw := rawTurns(3, 3)
	raw = append(raw, display.StyledLine{Text: "Build DONE", Style: display.StyleAssistant, Turn: -1})
	raw = append(raw, rawTurns(1, 4)...)
	e.Append(raw, t0)

	assert.True(t, e.WatchFired())
	assert.False(t, e.Following())
	hit := len(rawTurns(3, 3))
	assert.LessOrEqual(t, e.Offset(), hit)
	assert.Greater(t, e.Offset()+e.Height(), hit, "the matching line is in view")

	e.Bottom()
	e.Append(append(raw, display.StyledLine{Text: "DONE again", Turn: -1}), t0)
	assert.True(t, e.Following(), "a term pauses only once")

	e.SetWatch("again")
	assert.False(t, e.WatchFired())
	assert.True(t, e.IsWatched(Line{StyledLine: display.StyledLine{Text: "once AGAIN"}}))
}

func TestYankText(t *testing.T) {
	e := newEngine(rawTurns(2, 2), 2, false)
	assert.Equal(t, "── Turn 1 ──", e.YankText())
	require.True(t, e.Search("turn 2 line 1"))
	assert.Equal(t, "turn 2 line 1", e.YankText())
}
