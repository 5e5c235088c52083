package transcript

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSession = "sess-1"

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testTime }

func mustLine(t *testing.T, v map[string]any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b) + "\n"
}

func userLine(t *testing.T, id, text string) string {
	return mustLine(t, map[string]any{
		"type":      "user",
		"uuid":      id,
		"sessionId": testSession,
		"timestamp": "2025-03-01T12:00:00.000Z",
		"message":   map[string]any{"role": "user", "content": text},
	})
}

func toolResultLine(t *testing.T, id, toolUseID, content string) string {
	return mustLine(t, map[string]any{
		"type":      "user",
		"uuid":      id,
		"sessionId": testSession,
		"timestamp": "2025-03-01T12:00:02.000Z",
		"message": map[string]any{
			"role": "user",
			"content": []any{
				map[string]any{"type": "tool_result", "tool_use_id": toolUseID, "content": content},
			},
		},
	})
}

func assistantTextLine(t *testing.T, id, msgID, text string) string {
	return mustLine(t, map[string]any{
		"type":      "assistant",
		"uuid":      id,
		"sessionId": testSession,
		"timestamp": "2025-03-01T12:00:01.000Z",
		"message": map[string]any{
			"id":      msgID,
			"role":    "assistant",
			"content": []any{map[string]any{"type": "text", "text": text}},
			"usage":   map[string]any{"input_tokens": 10, "output_tokens": 5},
		},
	})
}

func assistantToolLine(t *testing.T, id, msgID, toolUseID, name string) string {
	return mustLine(t, map[string]any{
		"type":      "assistant",
		"uuid":      id,
		"sessionId": testSession,
		"timestamp": "2025-03-01T12:00:01.500Z",
		"message": map[string]any{
			"id":   msgID,
			"role": "assistant",
			"content": []any{map[string]any{
				"type":  "tool_use",
				"id":    toolUseID,
				"name":  name,
				"input": map[string]any{"file_path": "/tmp/x.go", "old_string": "a", "new_string": "b"},
			}},
			"usage": map[string]any{"input_tokens": 20, "output_tokens": 7},
		},
	})
}

func thinkingLine(t *testing.T, id string) string {
	return mustLine(t, map[string]any{
		"type":      "assistant",
		"uuid":      id,
		"sessionId": testSession,
		"timestamp": "2025-03-01T12:00:01.000Z",
		"message": map[string]any{
			"role":    "assistant",
			"content": []any{map[string]any{"type": "thinking", "thinking": "pondering"}},
		},
	})
}

// sampleLines returns n alternating user/assistant lines.
func sampleLines(t *testing.T, n int) []string {
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			lines = append(lines, userLine(t, fmt.Sprintf("u%d", i), fmt.Sprintf("question %d", i)))
		} else {
			lines = append(lines, assistantTextLine(t, fmt.Sprintf("a%d", i), fmt.Sprintf("m%d", i), fmt.Sprintf("answer %d", i)))
		}
	}
	return lines
}
