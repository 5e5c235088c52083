package display

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/grovetools/agentview/internal/formatters"
	"github.com/grovetools/agentview/internal/transcript"
	"github.com/grovetools/core/tui/theme"
)

// Formatting constants for output
const (
	treeChar        = "⎿" // Tree connector for sub-content
	unknownToolName = "tool"
	compactAfter    = 5
	tabWidth        = 4
)

// StyledLine is one rendered row before width wrapping. Turn is the turn
// number on separator lines and -1 everywhere else.
type StyledLine struct {
	Text  string
	Style StyleTag
	Turn  int
}

// Options controls what the renderer includes.
type Options struct {
	ShowToolDetail bool
	ShowThinking   bool
	MaxDiffLines   int
	Formatters     map[string]formatters.ToolFormatter
}

func (o Options) detailLevel() string {
	if o.ShowToolDetail {
		return "full"
	}
	return "summary"
}

type renderer struct {
	opts  Options
	lines []StyledLine
}

// Render converts a conversation into styled lines. Every turn begins with a
// separator line carrying its number.
func Render(conv *transcript.Conversation, opts Options) []StyledLine {
	if opts.Formatters == nil {
		opts.Formatters = formatters.Defaults(opts.MaxDiffLines)
	}
	r := &renderer{opts: opts}
	if conv == nil {
		return nil
	}
	for _, turn := range conv.Turns {
		r.turn(turn)
	}
	return r.lines
}

func (r *renderer) add(style StyleTag, text string) {
	r.lines = append(r.lines, StyledLine{Text: text, Style: style, Turn: -1})
}

func (r *renderer) blank() {
	if n := len(r.lines); n > 0 && r.lines[n-1].Text == "" {
		return
	}
	r.add(StyleNormal, "")
}

// block adds multi-line text with prefix on the first line and an indent of
// the same width on the rest.
func (r *renderer) block(style StyleTag, prefix, text string) {
	indent := strings.Repeat(" ", ansi.StringWidth(prefix))
	for i, line := range splitLines(text) {
		if i == 0 {
			r.add(style, prefix+line)
		} else {
			r.add(style, indent+line)
		}
	}
}

func (r *renderer) turn(turn transcript.Turn) {
	r.lines = append(r.lines, StyledLine{
		Text:  separatorText(turn),
		Style: StyleSeparator,
		Turn:  turn.Number,
	})
	for _, e := range turn.Entries {
		switch v := e.(type) {
		case *transcript.UserEntry:
			r.user(v)
		case *transcript.AssistantEntry:
			r.assistant(v)
		case *transcript.SystemEntry:
			if strings.TrimSpace(v.Text) != "" {
				r.block(StyleSystem, "· ", v.Text)
				r.blank()
			}
		case *transcript.SummaryEntry:
			r.block(StyleSummary, theme.IconLightbulb+" Summary: ", v.Summary)
			r.blank()
		case *transcript.MetadataEntry:
			// bookkeeping records are not shown
		}
	}
}

func separatorText(turn transcript.Turn) string {
	parts := []string{fmt.Sprintf("── Turn %d", turn.Number)}
	if start := turn.StartTime(); !start.IsZero() {
		parts = append(parts, start.Local().Format("15:04:05"))
	}
	if d := turn.Duration(); d > 0 {
		parts = append(parts, d.Round(time.Second).String())
	}
	if n := len(turn.ToolUses); n > 0 {
		parts = append(parts, fmt.Sprintf("%d tools", n))
	}
	return strings.Join(parts, " · ") + " ──"
}

func (r *renderer) user(u *transcript.UserEntry) {
	for _, b := range u.Blocks {
		switch v := b.(type) {
		case transcript.ToolResultBlock:
			r.toolResult(v)
		case transcript.TextBlock, transcript.ToolUseBlock, transcript.ReasoningBlock:
		}
	}
	if u.HasAuthoredText() {
		r.block(StyleUser, theme.IconChevron+" ", u.Text)
		r.blank()
	}
}

func (r *renderer) assistant(a *transcript.AssistantEntry) {
	if len(a.Blocks) == 0 && a.Text != "" {
		r.block(StyleAssistant, theme.IconRobot+" ", a.Text)
		r.blank()
		return
	}
	for _, b := range a.Blocks {
		switch v := b.(type) {
		case transcript.TextBlock:
			if strings.TrimSpace(v.Text) == "" {
				continue
			}
			r.block(StyleAssistant, theme.IconRobot+" ", v.Text)
			r.blank()
		case transcript.ToolUseBlock:
			r.toolUse(v)
		case transcript.ReasoningBlock:
			r.reasoning(v)
		case transcript.ToolResultBlock:
			r.toolResult(v)
		}
	}
}

func (r *renderer) reasoning(b transcript.ReasoningBlock) {
	if !r.opts.ShowThinking {
		r.add(StyleThinking, fmt.Sprintf("∴ Thinking… (%d chars)", b.CharCount))
		r.blank()
		return
	}
	r.add(StyleThinking, "∴ Thinking…")
	for _, line := range splitLines(b.Text) {
		if strings.TrimSpace(line) == "" {
			r.add(StyleThinking, "")
			continue
		}
		r.add(StyleThinking, "  "+line)
	}
	r.blank()
}

func (r *renderer) toolUse(b transcript.ToolUseBlock) {
	r.add(StyleTool, theme.IconRobot+" "+formatToolCall(b))
	if !r.opts.ShowToolDetail {
		return
	}
	lines := r.formatToolInput(b)
	for _, l := range lines {
		style := StyleToolResult
		switch l.Kind {
		case formatters.Added:
			style = StyleDiffAdded
		case formatters.Removed:
			style = StyleDiffRemoved
		}
		r.add(style, sanitize(l.Text))
	}
}

// formatToolInput uses the tool's formatter when there is one, and lists the
// arguments otherwise.
func (r *renderer) formatToolInput(b transcript.ToolUseBlock) []formatters.Line {
	if f, ok := r.opts.Formatters[b.Name]; ok {
		if lines := f(b.Args, r.opts.detailLevel()); lines != nil {
			return lines
		}
	}
	keys := make([]string, 0, len(b.Args))
	for k := range b.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []formatters.Line
	for _, k := range keys {
		val := fmt.Sprint(b.Args[k])
		for i, line := range splitLines(val) {
			if i == 0 {
				out = append(out, formatters.Line{Text: fmt.Sprintf("  %s: %s", k, line)})
			} else {
				out = append(out, formatters.Line{Text: "    " + line})
			}
		}
	}
	return out
}

func (r *renderer) toolResult(b transcript.ToolResultBlock) {
	name := b.ToolName
	if name == "" {
		name = unknownToolName
	}
	style := StyleToolResult
	if b.IsError {
		style = StyleToolError
	}
	lead := "  " + treeChar + "  "
	cont := strings.Repeat(" ", ansi.StringWidth(lead))

	output := strings.TrimSpace(b.Content)
	lines := splitLines(output)
	if output == "" {
		lines = nil
	}

	switch {
	case r.opts.ShowToolDetail:
		r.add(style, fmt.Sprintf("%s%s → %d lines", lead, name, len(lines)))
		for _, line := range lines {
			r.add(style, cont+line)
		}
	case b.IsError:
		first := ""
		if len(lines) > 0 {
			first = lines[0]
		}
		r.add(style, fmt.Sprintf("%s%s failed: %s", lead, name, first))
	case len(lines) > compactAfter:
		r.add(style, fmt.Sprintf("%s(%d lines)", lead, len(lines)))
	default:
		first := true
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if first {
				r.add(style, lead+line)
				first = false
			} else {
				r.add(style, cont+line)
			}
		}
	}
	r.blank()
}

// formatToolCall renders a call as ToolName(key_arg).
func formatToolCall(b transcript.ToolUseBlock) string {
	name := capitalizeFirst(b.Name)
	if name == "" {
		name = capitalizeFirst(unknownToolName)
	}
	if arg := extractKeyArg(b.Args); arg != "" {
		return fmt.Sprintf("%s(%s)", name, sanitize(arg))
	}
	return name
}

// capitalizeFirst capitalizes the first letter of a string.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// extractKeyArg extracts the most relevant argument for inline display.
func extractKeyArg(args map[string]any) string {
	if cmd := (transcript.ToolUseBlock{Args: args}).Flatten().Command; cmd != "" {
		cmd = strings.TrimSpace(strings.SplitN(cmd, "\n", 2)[0])
		return ansi.Truncate(cmd, 60, "...")
	}
	for _, key := range []string{"file_path", "filePath", "notebook_path", "path"} {
		if p, ok := args[key].(string); ok && p != "" {
			return shortenPath(p)
		}
	}
	if pattern, ok := args["pattern"].(string); ok {
		return pattern
	}
	if query, ok := args["query"].(string); ok {
		return ansi.Truncate(query, 40, "...")
	}
	if url, ok := args["url"].(string); ok {
		return url
	}
	if desc, ok := args["description"].(string); ok {
		return ansi.Truncate(desc, 40, "...")
	}
	return ""
}

// shortenPath shortens a file path for display, keeping the filename and some context.
func shortenPath(path string) string {
	if len(path) <= 50 {
		return path
	}

	parts := strings.Split(path, "/")
	if len(parts) <= 3 {
		return path
	}

	// Show .../<parent>/<file>
	shortened := ".../" + strings.Join(parts[len(parts)-2:], "/")
	if len(shortened) > 50 {
		return ".../" + parts[len(parts)-1]
	}
	return shortened
}

// splitLines sanitizes text and splits it into lines.
func splitLines(text string) []string {
	return strings.Split(sanitize(text), "\n")
}

// sanitize removes escape sequences and carriage returns and expands tabs so
// that every byte of a line is printable.
func sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
