package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineVariants(t *testing.T) {
	p := NewParser(WithParserClock(fixedClock))

	tests := []struct {
		name string
		line string
		kind Kind
	}{
		{"user", `{"type":"user","uuid":"1","sessionId":"s","message":{"role":"user","content":"hi"}}`, KindUser},
		{"assistant", `{"type":"assistant","uuid":"2","sessionId":"s","message":{"role":"assistant","content":[{"type":"text","text":"yo"}]}}`, KindAssistant},
		{"system", `{"type":"system","uuid":"3","sessionId":"s","content":"compacted"}`, KindSystem},
		{"summary", `{"type":"summary","leafUuid":"4","sessionId":"s","summary":"Fixing tests"}`, KindSummary},
		{"other", `{"type":"file-history-snapshot","uuid":"5","sessionId":"s"}`, KindMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := p.ParseLine([]byte(tt.line))
			require.NotNil(t, e)
			assert.Equal(t, tt.kind, e.Kind())
		})
	}
}

func TestParseLineDropsUnusable(t *testing.T) {
	p := NewParser()
	assert.Nil(t, p.ParseLine([]byte(`{not json`)))
	assert.Nil(t, p.ParseLine([]byte(`{"type":"user","sessionId":"s"}`)))
	assert.Nil(t, p.ParseLine([]byte(`{"type":"user","uuid":"x"}`)))
	assert.Nil(t, p.ParseLine([]byte("   ")))
}

func TestTimestampFallsBackToNow(t *testing.T) {
	p := NewParser(WithParserClock(fixedClock))

	e := p.ParseLine([]byte(`{"type":"user","uuid":"1","sessionId":"s","timestamp":"yesterday","message":{"content":"hi"}}`))
	require.NotNil(t, e)
	assert.Equal(t, testTime, e.Common().Timestamp)

	e = p.ParseLine([]byte(`{"type":"user","uuid":"1","sessionId":"s","timestamp":"2025-01-02T03:04:05.678+02:00","message":{"content":"hi"}}`))
	require.NotNil(t, e)
	assert.Equal(t, 2025, e.Common().Timestamp.Year())
	assert.Equal(t, 678000000, e.Common().Timestamp.Nanosecond())
}

func TestParseReaderRecordsErrors(t *testing.T) {
	long := "{" + strings.Repeat("x", 500)
	input := userLine(t, "u1", "hello") + "garbage\n" + long + "\n" + assistantTextLine(t, "a1", "m1", "hi")

	entries, errs, err := NewParser().ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	require.Len(t, errs, 2)
	assert.Equal(t, 2, errs[0].LineNumber)
	assert.Equal(t, 3, errs[1].LineNumber)
	assert.Len(t, []rune(errs[1].Raw), maxRawErrorLen)
	assert.NotEmpty(t, errs[0].Message)
}

func TestParseReaderHandlesUnterminatedLastLine(t *testing.T) {
	input := userLine(t, "u1", "hello") + strings.TrimSuffix(assistantTextLine(t, "a1", "m1", "hi"), "\n")
	entries, errs, err := NewParser().ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Len(t, entries, 2)
}

func TestParseFileScenarioResolvesEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	content := userLine(t, "u1", "fix bug") +
		assistantToolLine(t, "a1", "m1", "t1", "Edit") +
		toolResultLine(t, "u2", "t1", "ok")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, errs, err := NewParser().ParseFile(path)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, entries, 3)

	turns := BuildTurns(entries)
	require.Len(t, turns, 1)

	result, ok := entries[2].(*UserEntry)
	require.True(t, ok)
	results := result.ToolResults()
	require.Len(t, results, 1)
	assert.Equal(t, "Edit", results[0].ToolName)

	a := entries[1].(*AssistantEntry)
	require.Len(t, a.ToolUses, 1)
	assert.Equal(t, "/tmp/x.go", a.ToolUses[0].FilePath)
	assert.Equal(t, "b", a.ToolUses[0].Content)
	assert.Equal(t, "a", a.ToolUses[0].OldContent)
}

func TestParseFileMissing(t *testing.T) {
	_, _, err := NewParser().ParseFile(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}

func TestParseContentShapes(t *testing.T) {
	p := NewParser()
	line := `{"type":"assistant","uuid":"a","sessionId":"s","message":{"id":"m","content":[` +
		`{"type":"thinking","thinking":"hmm"},` +
		`{"type":"thinking","text":"also"},` +
		`{"type":"text","text":"one"},` +
		`{"type":"text","text":"two"},` +
		`{"type":"tool_use","id":"t","name":"Bash","input":{"command":"ls -la"}}]}}`
	e := p.ParseLine([]byte(line))
	a, ok := e.(*AssistantEntry)
	require.True(t, ok)
	assert.Equal(t, "one\ntwo", a.Text)
	require.Len(t, a.Reasoning, 2)
	assert.Equal(t, 3, a.Reasoning[0].CharCount)
	assert.Equal(t, "also", a.Reasoning[1].Text)
	require.Len(t, a.ToolUses, 1)
	assert.Equal(t, "ls -la", a.ToolUses[0].Command)

	line = `{"type":"user","uuid":"u","sessionId":"s","message":{"content":[` +
		`{"type":"tool_result","tool_use_id":"t","is_error":true,"content":[{"type":"text","text":"boom"}]}]}}`
	u, ok := p.ParseLine([]byte(line)).(*UserEntry)
	require.True(t, ok)
	assert.False(t, u.HasAuthoredText())
	results := u.ToolResults()
	require.Len(t, results, 1)
	assert.True(t, results[0].IsError)
	assert.Equal(t, "boom", results[0].Content)
}

func TestCodexDecoder(t *testing.T) {
	lines := []string{
		`{"timestamp":"2025-03-01T12:00:00Z","type":"session_meta","payload":{"id":"codex-1","cwd":"/work"}}`,
		`{"timestamp":"2025-03-01T12:00:01Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"<environment_context>x</environment_context>"}]}}`,
		`{"timestamp":"2025-03-01T12:00:02Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"list files"}]}}`,
		`{"timestamp":"2025-03-01T12:00:03Z","type":"event_msg","payload":{"type":"agent_reasoning","text":"thinking about ls"}}`,
		`{"timestamp":"2025-03-01T12:00:04Z","type":"response_item","payload":{"type":"function_call","name":"shell","call_id":"c1","arguments":"{\"command\":[\"bash\",\"-lc\",\"ls\"]}"}}`,
		`{"timestamp":"2025-03-01T12:00:05Z","type":"response_item","payload":{"type":"function_call_output","call_id":"c1","output":"{\"output\":\"a.go\",\"metadata\":{\"exit_code\":1}}"}}`,
		`{"timestamp":"2025-03-01T12:00:06Z","type":"event_msg","payload":{"type":"agent_message","message":"Done."}}`,
	}
	p := NewParser(WithDecoder(NewCodexDecoder(fixedClock)))
	entries, errs, err := p.ParseReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	assert.Empty(t, errs)

	var kinds []Kind
	for _, e := range entries {
		kinds = append(kinds, e.Kind())
		assert.Equal(t, "codex-1", e.Common().SessionID)
		assert.NotEmpty(t, e.Common().ID)
	}
	assert.Equal(t, []Kind{KindMetadata, KindUser, KindAssistant, KindAssistant, KindUser, KindAssistant}, kinds)

	call := entries[3].(*AssistantEntry)
	require.Len(t, call.ToolUses, 1)
	assert.Equal(t, "ls", call.ToolUses[0].Command)

	out := entries[4].(*UserEntry).ToolResults()
	require.Len(t, out, 1)
	assert.Equal(t, "shell", out[0].ToolName)
	assert.True(t, out[0].IsError)
	assert.Equal(t, "a.go", out[0].Content)

	turns := BuildTurns(entries)
	require.Len(t, turns, 2)
	assert.Equal(t, "list files", turns[1].UserMessage.Text)
}

func TestProviderForPath(t *testing.T) {
	assert.Equal(t, "codex", ProviderForPath("/home/u/.codex/sessions/2025/01/01/rollout.jsonl"))
	assert.Equal(t, "claude", ProviderForPath("/home/u/.claude/projects/p/s.jsonl"))
}
