package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grovetools/core/tui/theme"
)

// LineKind tells the renderer how to style a formatted line.
type LineKind int

const (
	Plain LineKind = iota
	Added
	Removed
)

// Line is one line of formatted tool input.
type Line struct {
	Text string
	Kind LineKind
}

// ToolFormatter formats the input of a tool call. A nil result means the
// input was not understood and the caller should fall back to the default.
type ToolFormatter func(args map[string]any, detailLevel string) []Line

// decodeArgs converts loosely typed tool arguments into a typed struct.
func decodeArgs(args map[string]any, v any) bool {
	raw, err := json.Marshal(args)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// stripCommonIndent removes common leading whitespace from all lines
func stripCommonIndent(text string) string {
	lines := strings.Split(text, "\n")

	// Find minimum indent (ignoring empty lines)
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return text
	}

	for i, line := range lines {
		if len(line) >= minIndent && strings.TrimSpace(line) != "" {
			lines[i] = line[minIndent:]
		} else if strings.TrimSpace(line) == "" {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// capped returns at most maxLines lines (0 means all) and how many were cut.
func capped(lines []string, maxLines int) ([]string, int) {
	if maxLines > 0 && len(lines) > maxLines {
		return lines[:maxLines], len(lines) - maxLines
	}
	return lines, 0
}

// FormatWriteTool formats the input for Write or Edit tools, showing a diff-like view.
func FormatWriteTool(args map[string]any, maxLines int, detailLevel string) []Line {
	var data struct {
		FilePath  string `json:"file_path"`
		Content   string `json:"content"`
		OldString string `json:"old_string"`
		NewString string `json:"new_string"`
	}
	if !decodeArgs(args, &data) {
		return nil
	}

	var out []Line
	switch {
	case data.OldString != "" || data.NewString != "":
		out = append(out, Line{Text: fmt.Sprintf("%s Editing %s", theme.IconFile, data.FilePath)})

		oldLines, more := capped(strings.Split(stripCommonIndent(data.OldString), "\n"), maxLines)
		for _, l := range oldLines {
			out = append(out, Line{Text: "  - " + l, Kind: Removed})
		}
		if more > 0 {
			out = append(out, Line{Text: fmt.Sprintf("  - ... (%d more lines removed)", more), Kind: Removed})
		}

		newLines, more := capped(strings.Split(stripCommonIndent(data.NewString), "\n"), maxLines)
		for _, l := range newLines {
			out = append(out, Line{Text: "  + " + l, Kind: Added})
		}
		if more > 0 {
			out = append(out, Line{Text: fmt.Sprintf("  + ... (%d more lines added)", more), Kind: Added})
		}

	case data.Content != "":
		out = append(out, Line{Text: fmt.Sprintf("%s Writing to %s", theme.IconFilePlus, data.FilePath)})
		lines := strings.Split(stripCommonIndent(data.Content), "\n")
		if detailLevel == "full" || len(lines) <= 5 {
			shown, more := capped(lines, maxLines)
			for _, l := range shown {
				out = append(out, Line{Text: "  + " + l, Kind: Added})
			}
			if more > 0 {
				out = append(out, Line{Text: fmt.Sprintf("  + ... (%d more lines)", more), Kind: Added})
			}
		} else {
			out = append(out, Line{Text: fmt.Sprintf("  + (%d lines)", len(lines)), Kind: Added})
		}

	default:
		return nil
	}
	return out
}

// FormatReadTool formats the input for Read tool with minimal details.
func FormatReadTool(args map[string]any, detailLevel string) []Line {
	var data struct {
		FilePath string `json:"file_path"`
		Offset   int    `json:"offset"`
		Limit    int    `json:"limit"`
	}
	if !decodeArgs(args, &data) || data.FilePath == "" {
		return nil
	}

	text := fmt.Sprintf("%s Reading %s", theme.IconFile, data.FilePath)
	var extra []string
	if data.Offset > 0 {
		extra = append(extra, fmt.Sprintf("offset: %d", data.Offset))
	}
	if data.Limit > 0 {
		extra = append(extra, fmt.Sprintf("limit: %d", data.Limit))
	}
	if len(extra) > 0 {
		text += " (" + strings.Join(extra, ", ") + ")"
	}
	return []Line{{Text: text}}
}

// FormatTodoWriteTool formats the input for TodoWrite, showing a checklist.
func FormatTodoWriteTool(args map[string]any, detailLevel string) []Line {
	var data struct {
		Todos []struct {
			Content    string `json:"content"`
			Status     string `json:"status"`
			ActiveForm string `json:"activeForm"`
		} `json:"todos"`
	}
	if !decodeArgs(args, &data) || len(data.Todos) == 0 {
		return nil
	}

	out := []Line{{Text: fmt.Sprintf("%s TODO List Updated:", theme.IconChecklist)}}
	for _, item := range data.Todos {
		checkbox := "[ ]"
		switch item.Status {
		case "completed":
			checkbox = "[✓]"
		case "in_progress":
			checkbox = "[→]"
		}
		out = append(out, Line{Text: fmt.Sprintf("  %s %s", checkbox, item.Content)})
	}
	return out
}

// FormatBashTool shows the full command, one line per command line.
func FormatBashTool(args map[string]any, detailLevel string) []Line {
	cmd, _ := args["command"].(string)
	if cmd == "" {
		return nil
	}
	var out []Line
	for _, l := range strings.Split(strings.TrimSpace(cmd), "\n") {
		out = append(out, Line{Text: "  $ " + l})
	}
	if desc, ok := args["description"].(string); ok && desc != "" {
		out = append(out, Line{Text: "  # " + desc})
	}
	return out
}

// MakeWriteFormatter creates a Write formatter with the given max lines setting.
func MakeWriteFormatter(maxLines int) ToolFormatter {
	return func(args map[string]any, detailLevel string) []Line {
		return FormatWriteTool(args, maxLines, detailLevel)
	}
}

// Defaults returns the built-in formatters keyed by tool name.
func Defaults(maxDiffLines int) map[string]ToolFormatter {
	write := MakeWriteFormatter(maxDiffLines)
	return map[string]ToolFormatter{
		"Write":        write,
		"Edit":         write,
		"MultiEdit":    write,
		"NotebookEdit": write,
		"Read":         FormatReadTool,
		"TodoWrite":    FormatTodoWriteTool,
		"Bash":         FormatBashTool,
		"shell":        FormatBashTool,
	}
}
