package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, lines ...string) []Entry {
	t.Helper()
	p := NewParser(WithParserClock(fixedClock))
	var entries []Entry
	for _, l := range lines {
		e := p.ParseLine([]byte(l))
		require.NotNil(t, e, "line did not decode: %s", l)
		entries = append(entries, e)
	}
	return entries
}

func TestResolveToolNamesIdempotent(t *testing.T) {
	entries := decodeAll(t,
		userLine(t, "u1", "fix bug"),
		assistantToolLine(t, "a1", "m1", "t1", "Edit"),
		toolResultLine(t, "u2", "t1", "ok"),
		toolResultLine(t, "u3", "missing", "orphan"),
	)

	once := ResolveToolNames(entries)
	twice := ResolveToolNames(once)
	assert.Equal(t, once, twice)

	assert.Same(t, entries[0], once[0])
	assert.Same(t, entries[1], once[1])
	assert.NotSame(t, entries[2], once[2])
	assert.Same(t, entries[3], once[3])

	assert.Equal(t, "", entries[2].(*UserEntry).ToolResults()[0].ToolName, "input must not be mutated")
	assert.Equal(t, "Edit", once[2].(*UserEntry).ToolResults()[0].ToolName)
	assert.Equal(t, "", once[3].(*UserEntry).ToolResults()[0].ToolName)
}

func TestResolveToolNamesForwardReference(t *testing.T) {
	// A result may be logged before the call that produced it.
	entries := decodeAll(t,
		toolResultLine(t, "u1", "t9", "early"),
		assistantToolLine(t, "a1", "m1", "t9", "Read"),
	)
	out := ResolveToolNames(entries)
	assert.Equal(t, "Read", out[0].(*UserEntry).ToolResults()[0].ToolName)
}

func TestSuppressDuplicateUsage(t *testing.T) {
	entries := decodeAll(t,
		assistantTextLine(t, "a1", "m1", "first"),
		assistantToolLine(t, "a2", "m1", "t1", "Bash"),
		assistantTextLine(t, "a3", "m2", "other"),
		assistantTextLine(t, "a4", "m1", "third"),
	)

	out := SuppressDuplicateUsage(entries)
	require.Len(t, out, 4)

	byMessage := map[string]int{}
	for i, e := range out {
		a := e.(*AssistantEntry)
		if a.Usage == nil {
			continue
		}
		byMessage[a.MessageID]++
		if a.MessageID == "m1" {
			assert.Equal(t, 0, i, "usage must stay on the earliest entry")
		}
	}
	assert.Equal(t, map[string]int{"m1": 1, "m2": 1}, byMessage)

	assert.Equal(t, "third", out[3].(*AssistantEntry).Text, "later duplicates are kept")
	assert.NotNil(t, entries[3].(*AssistantEntry).Usage, "input must not be mutated")
	assert.Equal(t, out, SuppressDuplicateUsage(out))

	conv := NewConversation("", out)
	assert.Equal(t, 20, conv.Usage().InputTokens)
	assert.Equal(t, 10, conv.Usage().OutputTokens)
}

func TestSuppressDuplicateUsageIgnoresEmptyMessageID(t *testing.T) {
	line := `{"type":"assistant","uuid":"x","sessionId":"s","message":{"content":"a","usage":{"input_tokens":1}}}`
	entries := decodeAll(t, line, strings.Replace(line, `"uuid":"x"`, `"uuid":"y"`, 1))
	out := SuppressDuplicateUsage(entries)
	assert.NotNil(t, out[0].(*AssistantEntry).Usage)
	assert.NotNil(t, out[1].(*AssistantEntry).Usage)
}
