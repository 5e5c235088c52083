package formatters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatWriteToolEdit(t *testing.T) {
	args := map[string]any{
		"file_path":  "/src/main.go",
		"old_string": "    a := 1\n    b := 2\n    c := 3",
		"new_string": "    a := 10",
	}
	lines := FormatWriteTool(args, 2, "summary")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0].Text, "Editing /src/main.go")
	assert.Equal(t, Line{Text: "  - a := 1", Kind: Removed}, lines[1])
	assert.Equal(t, Line{Text: "  - ... (1 more lines removed)", Kind: Removed}, lines[3])
	assert.Equal(t, Line{Text: "  + a := 10", Kind: Added}, lines[4])
}

func TestFormatWriteToolWrite(t *testing.T) {
	args := map[string]any{"file_path": "/a.txt", "content": "1\n2\n3\n4\n5\n6"}

	summary := FormatWriteTool(args, 0, "summary")
	require.Len(t, summary, 2)
	assert.Equal(t, "  + (6 lines)", summary[1].Text)

	full := FormatWriteTool(args, 0, "full")
	assert.Len(t, full, 7)
	assert.Equal(t, Added, full[6].Kind)
}

func TestFormatWriteToolUnknownInput(t *testing.T) {
	assert.Nil(t, FormatWriteTool(map[string]any{"file_path": "x"}, 0, "full"))
	assert.Nil(t, FormatWriteTool(map[string]any{"content": 42}, 0, "full"))
}

func TestFormatReadTool(t *testing.T) {
	lines := FormatReadTool(map[string]any{"file_path": "/x.go", "offset": 10, "limit": 20}, "summary")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0].Text, "Reading /x.go (offset: 10, limit: 20)")
	assert.Nil(t, FormatReadTool(map[string]any{}, "summary"))
}

func TestFormatTodoWriteTool(t *testing.T) {
	args := map[string]any{"todos": []any{
		map[string]any{"content": "a", "status": "completed"},
		map[string]any{"content": "b", "status": "in_progress"},
		map[string]any{"content": "c", "status": "pending"},
	}}
	lines := FormatTodoWriteTool(args, "summary")
	require.Len(t, lines, 4)
	assert.Equal(t, "  [✓] a", lines[1].Text)
	assert.Equal(t, "  [→] b", lines[2].Text)
	assert.Equal(t, "  [ ] c", lines[3].Text)
}

func TestFormatBashTool(t *testing.T) {
	lines := FormatBashTool(map[string]any{"command": "go test ./...\necho ok", "description": "run tests"}, "full")
	assert.Equal(t, []Line{{Text: "  $ go test ./..."}, {Text: "  $ echo ok"}, {Text: "  # run tests"}}, lines)
}

func TestStripCommonIndent(t *testing.T) {
	assert.Equal(t, "a\n  b\n\nc", stripCommonIndent("  a\n    b\n \n  c"))
	assert.Equal(t, "a\n b", stripCommonIndent("a\n b"))
}

func TestDefaults(t *testing.T) {
	f := Defaults(3)
	for _, name := range []string{"Write", "Edit", "Read", "TodoWrite", "Bash"} {
		assert.Contains(t, f, name)
	}
}
