package transcript

import (
	"time"
)

// Turn is one logical exchange: an authored user message plus every entry up
// to the next authored user message. Turns are derived from entries and are
// never edited in place.
type Turn struct {
	Number            int
	Entries           []Entry
	UserMessage       *UserEntry
	AssistantMessages []*AssistantEntry
	ToolUses          []ToolUse
}

// StartTime is the timestamp of the first entry in the turn.
func (t Turn) StartTime() time.Time {
	if len(t.Entries) == 0 {
		return time.Time{}
	}
	return t.Entries[0].Common().Timestamp
}

// EndTime is the timestamp of the last entry in the turn.
func (t Turn) EndTime() time.Time {
	if len(t.Entries) == 0 {
		return time.Time{}
	}
	return t.Entries[len(t.Entries)-1].Common().Timestamp
}

func (t Turn) Duration() time.Duration {
	return t.EndTime().Sub(t.StartTime())
}

// BuildTurns groups entries into turns. A user entry with non-blank text
// starts a new turn; tool-result-only user entries and everything else join
// the turn in progress. Concatenating the entries of all turns in order
// yields the input exactly.
func BuildTurns(entries []Entry) []Turn {
	var turns []Turn
	var pending []Entry

	flush := func() {
		if len(pending) == 0 {
			return
		}
		turns = append(turns, newTurn(len(turns)+1, pending))
		pending = nil
	}

	for _, e := range entries {
		if u, ok := e.(*UserEntry); ok && u.HasAuthoredText() {
			flush()
		}
		pending = append(pending, e)
	}
	flush()
	return turns
}

func newTurn(number int, entries []Entry) Turn {
	t := Turn{Number: number, Entries: entries}
	for _, e := range entries {
		switch v := e.(type) {
		case *UserEntry:
			if t.UserMessage == nil && v.HasAuthoredText() {
				t.UserMessage = v
			}
		case *AssistantEntry:
			t.AssistantMessages = append(t.AssistantMessages, v)
			t.ToolUses = append(t.ToolUses, v.ToolUses...)
		case *SystemEntry, *SummaryEntry, *MetadataEntry:
		}
	}
	return t
}

// Conversation is a session's ordered entries and the turns derived from them.
type Conversation struct {
	SessionID string
	Entries   []Entry
	Turns     []Turn
}

// NewConversation builds a conversation from entries. An empty sessionID is
// taken from the first entry.
func NewConversation(sessionID string, entries []Entry) *Conversation {
	if sessionID == "" && len(entries) > 0 {
		sessionID = entries[0].Common().SessionID
	}
	return &Conversation{
		SessionID: sessionID,
		Entries:   entries,
		Turns:     BuildTurns(entries),
	}
}

// Usage sums token usage across all assistant entries.
func (c *Conversation) Usage() TokenUsage {
	var total TokenUsage
	for _, e := range c.Entries {
		if a, ok := e.(*AssistantEntry); ok {
			total.Add(a.Usage)
		}
	}
	return total
}

// TurnAt returns the turn with the given number.
func (c *Conversation) TurnAt(number int) (Turn, bool) {
	if number < 1 || number > len(c.Turns) {
		return Turn{}, false
	}
	return c.Turns[number-1], true
}

// Tail returns the last n turns. n <= 0 returns all of them.
func (c *Conversation) Tail(n int) []Turn {
	if n <= 0 || n >= len(c.Turns) {
		return c.Turns
	}
	return c.Turns[len(c.Turns)-n:]
}
