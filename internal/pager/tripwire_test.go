package pager

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/agentview/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	liveUserLine = `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-03-01T12:00:00Z","message":{"role":"user","content":"run the build"}}` + "\n"
	liveDoneLine = `{"type":"assistant","uuid":"a1","sessionId":"s1","timestamp":"2025-03-01T12:00:03Z","message":{"id":"m1","role":"assistant","content":[{"type":"text","text":"Compiling\nBuild DONE"}]}}` + "\n"
)

func TestTripwireDuringFollow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s1.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(liveUserLine), 0o644))

	tailer, err := transcript.OpenTail(path, transcript.WithoutWatcher(), transcript.WithClock(func() time.Time { return t0 }))
	require.NoError(t, err)
	defer tailer.Close()

	tw := NewTripwire("DONE")
	_, hit := tw.CheckAll(tailer.Poll().New)
	assert.False(t, hit)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString(liveDoneLine)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	batch := tailer.Poll()
	require.Len(t, batch.New, 1)
	line, hit := tw.CheckAll(batch.New)
	assert.True(t, hit)
	assert.Equal(t, "Build DONE", line)
}

func TestTripwireToolFields(t *testing.T) {
	entry := &transcript.AssistantEntry{
		ToolUses: []transcript.ToolUse{
			{Name: "Bash", Command: "make deploy"},
			{Name: "Write", FilePath: "/srv/app.go", Content: "package app\n// FIXME later\n"},
		},
	}
	tests := []struct {
		pattern string
		want    string
		hit     bool
	}{
		{"deploy", "make deploy", true},
		{`app\.go$`, "/srv/app.go", true},
		{"fixme", "// FIXME later", true},
		{"rollback", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			line, hit := NewTripwire(tt.pattern).Check(entry)
			assert.Equal(t, tt.hit, hit)
			assert.Equal(t, tt.want, line)
		})
	}
}

func TestNilTripwire(t *testing.T) {
	tw := NewTripwire("")
	assert.Nil(t, tw)
	_, hit := tw.CheckAll([]transcript.Entry{&transcript.UserEntry{Text: "anything"}})
	assert.False(t, hit)
}
