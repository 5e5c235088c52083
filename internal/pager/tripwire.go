package pager

import (
	"regexp"
	"strings"

	"github.com/grovetools/agentview/internal/transcript"
)

// Tripwire matches newly ingested entries against a watch pattern. It checks
// entry text and the command, path and content of tool invocations.
type Tripwire struct {
	pattern string
	re      *regexp.Regexp
}

// NewTripwire compiles pattern the same way search terms are compiled.
// An empty pattern returns nil.
func NewTripwire(pattern string) *Tripwire {
	if pattern == "" {
		return nil
	}
	return &Tripwire{pattern: pattern, re: compileTerm(pattern)}
}

// Pattern returns the watch pattern.
func (t *Tripwire) Pattern() string { return t.pattern }

// Check returns the first matching line of the entry.
func (t *Tripwire) Check(e transcript.Entry) (string, bool) {
	if t == nil {
		return "", false
	}
	if line, ok := t.match(transcript.EntryText(e)); ok {
		return line, true
	}
	if a, ok := e.(*transcript.AssistantEntry); ok {
		for _, tu := range a.ToolUses {
			for _, field := range []string{tu.Command, tu.FilePath, tu.Content, tu.OldContent} {
				if line, ok := t.match(field); ok {
					return line, true
				}
			}
		}
	}
	return "", false
}

// CheckAll returns the first match across entries.
func (t *Tripwire) CheckAll(entries []transcript.Entry) (string, bool) {
	for _, e := range entries {
		if line, ok := t.Check(e); ok {
			return line, true
		}
	}
	return "", false
}

func (t *Tripwire) match(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, line := range strings.Split(text, "\n") {
		if t.re.MatchString(line) {
			return strings.TrimRight(line, "\r"), true
		}
	}
	return "", false
}
