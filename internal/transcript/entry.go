// Package transcript decodes agent transcript logs into typed entries,
// groups them into turns and tails live log files.
package transcript

import (
	"strings"
	"time"
)

// Kind identifies the variant of an Entry.
type Kind int

const (
	KindUser Kind = iota
	KindAssistant
	KindSystem
	KindSummary
	KindMetadata
)

// String returns the transcript type name for the kind.
func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAssistant:
		return "assistant"
	case KindSystem:
		return "system"
	case KindSummary:
		return "summary"
	case KindMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// Header holds the fields common to every transcript line.
type Header struct {
	ID          string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`
	SessionID   string    `json:"sessionId"`
	ProjectPath string    `json:"cwd,omitempty"`
	ParentID    string    `json:"parentUuid,omitempty"`
	Version     string    `json:"version,omitempty"`
	GitBranch   string    `json:"gitBranch,omitempty"`
	IsSideChain bool      `json:"isSidechain,omitempty"`
}

// Common returns the header itself so every variant that embeds it
// satisfies Entry.
func (h Header) Common() Header { return h }

// Entry is one decoded transcript line. The set of variants is closed:
// *UserEntry, *AssistantEntry, *SystemEntry, *SummaryEntry and *MetadataEntry.
type Entry interface {
	Common() Header
	Kind() Kind
}

// UserEntry is a message authored by the user or a tool-result carrier.
type UserEntry struct {
	Header
	Text   string         `json:"text"`
	Blocks []ContentBlock `json:"blocks,omitempty"`
}

// AssistantEntry is one assistant completion record.
type AssistantEntry struct {
	Header
	Text       string           `json:"text,omitempty"`
	ToolUses   []ToolUse        `json:"toolUses,omitempty"`
	Usage      *TokenUsage      `json:"usage,omitempty"`
	MessageID  string           `json:"messageId,omitempty"`
	Blocks     []ContentBlock   `json:"blocks,omitempty"`
	Reasoning  []ReasoningBlock `json:"reasoning,omitempty"`
	StopReason string           `json:"stopReason,omitempty"`
	Model      string           `json:"model,omitempty"`
}

// SystemEntry carries a system notice.
type SystemEntry struct {
	Header
	Text string `json:"text"`
}

// SummaryEntry carries a compaction summary.
type SummaryEntry struct {
	Header
	Summary string `json:"summary"`
}

// MetadataEntry is the catch-all for line types that are not otherwise modelled.
type MetadataEntry struct {
	Header
	Type string `json:"type"`
}

func (*UserEntry) Kind() Kind      { return KindUser }
func (*AssistantEntry) Kind() Kind { return KindAssistant }
func (*SystemEntry) Kind() Kind    { return KindSystem }
func (*SummaryEntry) Kind() Kind   { return KindSummary }
func (*MetadataEntry) Kind() Kind  { return KindMetadata }

// HasAuthoredText reports whether the user entry carries human-written text,
// as opposed to only tool results.
func (u *UserEntry) HasAuthoredText() bool {
	return strings.TrimSpace(u.Text) != ""
}

// ToolResults returns the tool result blocks of the entry in order.
func (u *UserEntry) ToolResults() []ToolResultBlock {
	var results []ToolResultBlock
	for _, b := range u.Blocks {
		if tr, ok := b.(ToolResultBlock); ok {
			results = append(results, tr)
		}
	}
	return results
}

// ContentBlock is a typed sub-unit of a message. The set of variants is closed:
// TextBlock, ToolUseBlock, ToolResultBlock and ReasoningBlock.
type ContentBlock interface {
	BlockType() string
}

// TextBlock holds plain message text.
type TextBlock struct {
	Text string `json:"text"`
}

// ToolUseBlock is a recorded tool invocation.
type ToolUseBlock struct {
	ToolUseID string         `json:"id"`
	Name      string         `json:"name"`
	Args      map[string]any `json:"input,omitempty"`
}

// ToolResultBlock is the output of a tool invocation. ToolName is empty until
// resolved against the matching ToolUseBlock.
type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	ToolName  string `json:"toolName,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// ReasoningBlock holds extended thinking text.
type ReasoningBlock struct {
	Text      string `json:"text"`
	CharCount int    `json:"charCount"`
}

func (TextBlock) BlockType() string       { return "text" }
func (ToolUseBlock) BlockType() string    { return "tool_use" }
func (ToolResultBlock) BlockType() string { return "tool_result" }
func (ReasoningBlock) BlockType() string  { return "thinking" }

// ToolUse is a flattened view of a ToolUseBlock with the commonly displayed
// arguments pulled out.
type ToolUse struct {
	Name       string `json:"name"`
	FilePath   string `json:"filePath,omitempty"`
	Content    string `json:"content,omitempty"`
	OldContent string `json:"oldContent,omitempty"`
	Command    string `json:"command,omitempty"`
	ToolUseID  string `json:"toolUseId,omitempty"`
}

// Flatten derives the ToolUse view of the block.
func (b ToolUseBlock) Flatten() ToolUse {
	tu := ToolUse{Name: b.Name, ToolUseID: b.ToolUseID}
	tu.FilePath = firstString(b.Args, "file_path", "filePath", "path", "notebook_path")
	tu.Content = firstString(b.Args, "content", "new_string", "new_source")
	tu.OldContent = firstString(b.Args, "old_string")
	switch cmd := b.Args["command"].(type) {
	case string:
		tu.Command = cmd
	case []any:
		parts := make([]string, 0, len(cmd))
		for _, p := range cmd {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		tu.Command = strings.Join(parts, " ")
	}
	return tu
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// TokenUsage represents token usage information.
type TokenUsage struct {
	InputTokens              int    `json:"input_tokens"`
	OutputTokens             int    `json:"output_tokens"`
	CacheCreationInputTokens int    `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int    `json:"cache_read_input_tokens"`
	ServiceTier              string `json:"service_tier,omitempty"`
}

// Add accumulates other into u.
func (u *TokenUsage) Add(other *TokenUsage) {
	if other == nil {
		return
	}
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// EntryText returns the primary human-readable text of any entry variant.
func EntryText(e Entry) string {
	switch v := e.(type) {
	case *UserEntry:
		return v.Text
	case *AssistantEntry:
		return v.Text
	case *SystemEntry:
		return v.Text
	case *SummaryEntry:
		return v.Summary
	case *MetadataEntry:
		return ""
	default:
		return ""
	}
}
