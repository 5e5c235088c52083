package pager

import (
	"regexp"
	"sort"
)

// Match is one search hit. Col and Len are byte offsets into the wrapped
// line's text.
type Match struct {
	Line int
	Col  int
	Len  int
}

// compileTerm compiles term as a case-insensitive regular expression, or as
// a case-insensitive literal when it is not a valid expression.
func compileTerm(term string) *regexp.Regexp {
	if re, err := regexp.Compile("(?i)" + term); err == nil {
		return re
	}
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
}

// findMatches collects every non-empty match in line order.
func findMatches(re *regexp.Regexp, lines []Line) []Match {
	var out []Match
	for i, l := range lines {
		for _, loc := range re.FindAllStringIndex(l.Text, -1) {
			if loc[1] > loc[0] {
				out = append(out, Match{Line: i, Col: loc[0], Len: loc[1] - loc[0]})
			}
		}
	}
	return out
}

// matchesOn returns the matches that fall on line.
func matchesOn(matches []Match, line int) []Match {
	start := sort.Search(len(matches), func(i int) bool { return matches[i].Line >= line })
	end := start
	for end < len(matches) && matches[end].Line == line {
		end++
	}
	return matches[start:end]
}

// Search compiles term and jumps to the first match at or after the top of
// the view, wrapping to the first match overall. It reports whether anything
// matched.
func (e *Engine) Search(term string) bool {
	if term == "" {
		e.ClearSearch()
		return false
	}
	e.pattern = compileTerm(term)
	e.searchTerm = term
	e.matches = findMatches(e.pattern, e.lines)
	e.current = -1
	if len(e.matches) == 0 {
		return false
	}
	e.current = 0
	for i, m := range e.matches {
		if m.Line >= e.offset {
			e.current = i
			break
		}
	}
	e.centre(e.matches[e.current].Line)
	return true
}

// NextMatch moves to the following match, wrapping at the end.
func (e *Engine) NextMatch() {
	if len(e.matches) == 0 {
		return
	}
	e.current = (e.current + 1) % len(e.matches)
	e.centre(e.matches[e.current].Line)
}

// PrevMatch moves to the preceding match, wrapping at the start.
func (e *Engine) PrevMatch() {
	if len(e.matches) == 0 {
		return
	}
	e.current = (e.current - 1 + len(e.matches)) % len(e.matches)
	e.centre(e.matches[e.current].Line)
}

// ClearSearch drops the pattern and its matches.
func (e *Engine) ClearSearch() {
	e.pattern = nil
	e.searchTerm = ""
	e.matches = nil
	e.current = -1
}

// Matches returns the current match index and the match count. The index is
// -1 when there is no current match.
func (e *Engine) Matches() (int, int) {
	return e.current, len(e.matches)
}

// SearchTerm returns the committed search term.
func (e *Engine) SearchTerm() string {
	return e.searchTerm
}

// CurrentMatch returns the current match, if any.
func (e *Engine) CurrentMatch() (Match, bool) {
	if e.current < 0 || e.current >= len(e.matches) {
		return Match{}, false
	}
	return e.matches[e.current], true
}

// refreshMatches recomputes matches after the wrapped lines changed, keeping
// the current index when it is still valid.
func (e *Engine) refreshMatches() {
	if e.pattern == nil {
		return
	}
	e.matches = findMatches(e.pattern, e.lines)
	if e.current >= len(e.matches) {
		e.current = len(e.matches) - 1
	}
	if e.current < 0 && len(e.matches) > 0 {
		e.current = 0
	}
}
