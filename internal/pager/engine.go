// Package pager is the interactive transcript viewer: a scroll/search engine
// over wrapped lines and the bubbletea model that drives it.
package pager

import (
	"regexp"
	"time"

	"github.com/grovetools/agentview/internal/display"
)

// Fade steps for newly arrived lines.
const fadeSteps = 3

// DefaultFade is how long new lines glow.
const DefaultFade = 2 * time.Second

// Engine holds the view state of the pager. It is not safe for concurrent use.
type Engine struct {
	width  int
	height int
	offset int

	raw   []display.StyledLine
	lines []Line

	pattern    *regexp.Regexp
	searchTerm string
	matches    []Match
	current    int

	watch      *regexp.Regexp
	watchTerm  string
	watchFired bool

	autoFollow    bool
	highlightFrom int
	highlightAt   time.Time
	fade          time.Duration
}

// NewEngine creates an empty engine. follow sets the initial auto-follow.
func NewEngine(width, height int, follow bool) *Engine {
	return &Engine{
		width:         width,
		height:        height,
		current:       -1,
		autoFollow:    follow,
		highlightFrom: -1,
		fade:          DefaultFade,
	}
}

// SetFade overrides DefaultFade.
func (e *Engine) SetFade(d time.Duration) {
	if d > 0 {
		e.fade = d
	}
}

// Lines returns the wrapped lines.
func (e *Engine) Lines() []Line { return e.lines }

// Offset returns the index of the top visible line.
func (e *Engine) Offset() int { return e.offset }

// Height returns the viewport height in rows.
func (e *Engine) Height() int { return e.height }

// Following reports whether auto-follow is on.
func (e *Engine) Following() bool { return e.autoFollow }

// Visible returns the lines in the viewport.
func (e *Engine) Visible() []Line {
	end := min(e.offset+e.height, len(e.lines))
	if e.offset >= end {
		return nil
	}
	return e.lines[e.offset:end]
}

func (e *Engine) maxOffset() int {
	return max(0, len(e.lines)-e.height)
}

func (e *Engine) setOffset(n int) {
	e.offset = min(max(n, 0), e.maxOffset())
}

func (e *Engine) centre(line int) {
	e.autoFollow = false
	e.setOffset(line - e.height/2)
}

// Append installs re-rendered content that extends what was shown. Lines
// past the previous end glow, the watch term is checked against them, and
// the view snaps to the bottom when following or within a page of it.
func (e *Engine) Append(raw []display.StyledLine, now time.Time) {
	prev := len(e.lines)
	nearBottom := e.maxOffset()-e.offset <= e.height

	e.raw = raw
	e.lines = Wrap(raw, e.width)
	e.refreshMatches()

	if len(e.lines) > prev {
		e.highlightFrom = prev
		e.highlightAt = now
		if hit := e.checkWatch(prev); hit >= 0 {
			e.centre(hit)
			return
		}
	}
	if e.autoFollow || nearBottom {
		e.setOffset(e.maxOffset())
		return
	}
	e.setOffset(e.offset)
}

// Replace installs content that was re-rendered with different options and
// keeps the turn at the top of the view in place.
func (e *Engine) Replace(raw []display.StyledLine) {
	anchor := e.TopTurn()
	e.raw = raw
	e.lines = Wrap(raw, e.width)
	e.highlightFrom = -1
	e.refreshMatches()
	e.reanchor(anchor)
}

// SetSize re-wraps for a new viewport and re-anchors to the top turn.
func (e *Engine) SetSize(width, height int) {
	anchor := e.TopTurn()
	e.width = width
	e.height = max(height, 1)
	if e.highlightFrom >= 0 {
		// Map the glow boundary through the re-wrap by raw line.
		e.highlightFrom = e.wrappedIndex(e.rawIndex(e.highlightFrom))
	}
	e.lines = Wrap(e.raw, e.width)
	e.refreshMatches()
	e.reanchor(anchor)
}

func (e *Engine) reanchor(turn int) {
	if e.autoFollow {
		e.setOffset(e.maxOffset())
		return
	}
	if i := e.turnLine(turn); i >= 0 {
		e.setOffset(i)
		return
	}
	e.setOffset(e.offset)
}

// rawIndex maps a wrapped line index to the raw line it came from.
func (e *Engine) rawIndex(wrapped int) int {
	n := -1
	for i := 0; i <= wrapped && i < len(e.lines); i++ {
		if !e.lines[i].Cont {
			n++
		}
	}
	return n
}

// wrappedIndex maps a raw line index to its first chunk after re-wrapping at
// the current width.
func (e *Engine) wrappedIndex(raw int) int {
	if raw < 0 {
		return 0
	}
	return len(Wrap(e.raw[:min(raw, len(e.raw))], e.width))
}

// TopTurn returns the number of the turn whose separator is at or above the
// top of the view, or 0 before the first separator.
func (e *Engine) TopTurn() int {
	for i := min(e.offset, len(e.lines)-1); i >= 0; i-- {
		if e.lines[i].IsSeparator() {
			return e.lines[i].Turn
		}
	}
	return 0
}

// TurnCount returns the number of turn separators.
func (e *Engine) TurnCount() int {
	n := 0
	for _, l := range e.lines {
		if l.IsSeparator() {
			n++
		}
	}
	return n
}

func (e *Engine) turnLine(turn int) int {
	for i, l := range e.lines {
		if l.IsSeparator() && l.Turn == turn {
			return i
		}
	}
	return -1
}

// ScrollDown moves the view down n lines.
func (e *Engine) ScrollDown(n int) {
	e.setOffset(e.offset + n)
}

// ScrollUp moves the view up n lines and stops following.
func (e *Engine) ScrollUp(n int) {
	e.autoFollow = false
	e.setOffset(e.offset - n)
}

// HalfPageDown scrolls down half a page.
func (e *Engine) HalfPageDown() { e.ScrollDown(max(e.height/2, 1)) }

// HalfPageUp scrolls up half a page.
func (e *Engine) HalfPageUp() { e.ScrollUp(max(e.height/2, 1)) }

// PageDown scrolls down a page.
func (e *Engine) PageDown() { e.ScrollDown(max(e.height, 1)) }

// PageUp scrolls up a page.
func (e *Engine) PageUp() { e.ScrollUp(max(e.height, 1)) }

// Top jumps to the first line and stops following.
func (e *Engine) Top() {
	e.autoFollow = false
	e.offset = 0
}

// Bottom jumps to the last page and starts following.
func (e *Engine) Bottom() {
	e.autoFollow = true
	e.setOffset(e.maxOffset())
}

// ToggleFollow flips auto-follow, snapping to the bottom when turned on.
func (e *Engine) ToggleFollow() {
	if e.autoFollow {
		e.autoFollow = false
		return
	}
	e.Bottom()
}

// NextTurn moves the next turn separator to the top of the view.
func (e *Engine) NextTurn() {
	for i := e.offset + 1; i < len(e.lines); i++ {
		if e.lines[i].IsSeparator() {
			e.setOffset(i)
			return
		}
	}
}

// PrevTurn moves the previous turn separator to the top of the view and
// stops following.
func (e *Engine) PrevTurn() {
	for i := min(e.offset, len(e.lines)) - 1; i >= 0; i-- {
		if e.lines[i].IsSeparator() {
			e.autoFollow = false
			e.setOffset(i)
			return
		}
	}
}

// SetWatch sets the interactive watch term. An empty term clears it. A new
// term may pause the view again.
func (e *Engine) SetWatch(term string) {
	if term == e.watchTerm {
		return
	}
	e.watchTerm = term
	e.watchFired = false
	e.watch = nil
	if term != "" {
		e.watch = compileTerm(term)
	}
}

// WatchTerm returns the interactive watch term.
func (e *Engine) WatchTerm() string { return e.watchTerm }

// WatchFired reports whether the watch term has paused the view.
func (e *Engine) WatchFired() bool { return e.watchFired }

// IsWatched reports whether line matches the watch term.
func (e *Engine) IsWatched(l Line) bool {
	return e.watch != nil && e.watch.MatchString(l.Text)
}

// checkWatch looks for the first watched line at or after from. The first
// hit for a term turns auto-follow off and is returned; later hits are
// ignored.
func (e *Engine) checkWatch(from int) int {
	if e.watch == nil || e.watchFired {
		return -1
	}
	for i := from; i < len(e.lines); i++ {
		if e.IsWatched(e.lines[i]) {
			e.watchFired = true
			e.autoFollow = false
			return i
		}
	}
	return -1
}

// Glow returns the fade step of line i at now: fadeSteps right after
// arrival, falling to 0 once the fade is over.
func (e *Engine) Glow(i int, now time.Time) int {
	if e.highlightFrom < 0 || i < e.highlightFrom {
		return 0
	}
	elapsed := now.Sub(e.highlightAt)
	if elapsed < 0 || elapsed >= e.fade {
		return 0
	}
	return fadeSteps - int(elapsed*fadeSteps/e.fade)
}

// Animating reports whether a fade is in flight and should be repainted.
func (e *Engine) Animating(now time.Time) bool {
	return e.autoFollow && e.highlightFrom >= 0 && now.Sub(e.highlightAt) < e.fade
}

// YankText returns the text to copy: the current match's line, or the top
// visible line.
func (e *Engine) YankText() string {
	if m, ok := e.CurrentMatch(); ok && m.Line < len(e.lines) {
		return e.lines[m.Line].Text
	}
	if e.offset < len(e.lines) {
		return e.lines[e.offset].Text
	}
	return ""
}
