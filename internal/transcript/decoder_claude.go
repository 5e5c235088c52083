package transcript

import (
	"encoding/json"
	"strings"
	"time"
)

// ClaudeDecoder decodes Claude Code transcript lines.
type ClaudeDecoder struct {
	now func() time.Time
}

// NewClaudeDecoder creates a new Claude decoder. A nil clock uses time.Now.
func NewClaudeDecoder(now func() time.Time) *ClaudeDecoder {
	if now == nil {
		now = time.Now
	}
	return &ClaudeDecoder{now: now}
}

// Provider returns the provider name.
func (d *ClaudeDecoder) Provider() string {
	return "claude"
}

// claudeLine is the raw shape of one Claude JSONL record.
type claudeLine struct {
	Type        string          `json:"type"`
	UUID        string          `json:"uuid"`
	ID          string          `json:"id"`
	LeafUUID    string          `json:"leafUuid"`
	ParentUUID  string          `json:"parentUuid"`
	SessionID   string          `json:"sessionId"`
	Timestamp   string          `json:"timestamp"`
	Cwd         string          `json:"cwd"`
	Version     string          `json:"version"`
	GitBranch   string          `json:"gitBranch"`
	IsSidechain bool            `json:"isSidechain"`
	Summary     string          `json:"summary"`
	Content     json.RawMessage `json:"content"`
	Message     *claudeMessage  `json:"message"`
}

// claudeMessage represents a Claude message
type claudeMessage struct {
	ID         string          `json:"id"`
	Role       string          `json:"role"`
	Model      string          `json:"model"`
	Content    json.RawMessage `json:"content"` // Can be string or []block
	StopReason *string         `json:"stop_reason"`
	Usage      *TokenUsage     `json:"usage"`
}

// DecodeLine decodes a single Claude JSONL line.
func (d *ClaudeDecoder) DecodeLine(line []byte) (Entry, error) {
	var raw claudeLine
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, err
	}

	id := raw.UUID
	if id == "" {
		id = raw.ID
	}
	if id == "" && raw.Type == "summary" {
		id = raw.LeafUUID
	}
	if id == "" || raw.SessionID == "" {
		return nil, nil
	}

	header := Header{
		ID:          id,
		Timestamp:   parseTimestamp(raw.Timestamp, d.now),
		SessionID:   raw.SessionID,
		ProjectPath: raw.Cwd,
		ParentID:    raw.ParentUUID,
		Version:     raw.Version,
		GitBranch:   raw.GitBranch,
		IsSideChain: raw.IsSidechain,
	}

	switch raw.Type {
	case "user":
		entry := &UserEntry{Header: header}
		if raw.Message != nil {
			entry.Text, entry.Blocks = parseContent(raw.Message.Content)
		}
		return entry, nil

	case "assistant":
		entry := &AssistantEntry{Header: header}
		if raw.Message != nil {
			entry.MessageID = raw.Message.ID
			entry.Model = raw.Message.Model
			entry.Usage = raw.Message.Usage
			if raw.Message.StopReason != nil {
				entry.StopReason = *raw.Message.StopReason
			}
			entry.Text, entry.Blocks = parseContent(raw.Message.Content)
			for _, b := range entry.Blocks {
				switch v := b.(type) {
				case ToolUseBlock:
					entry.ToolUses = append(entry.ToolUses, v.Flatten())
				case ReasoningBlock:
					entry.Reasoning = append(entry.Reasoning, v)
				}
			}
		}
		return entry, nil

	case "system":
		entry := &SystemEntry{Header: header}
		entry.Text, _ = parseContent(raw.Content)
		if entry.Text == "" && raw.Message != nil {
			entry.Text, _ = parseContent(raw.Message.Content)
		}
		return entry, nil

	case "summary":
		return &SummaryEntry{Header: header, Summary: raw.Summary}, nil

	default:
		return &MetadataEntry{Header: header, Type: raw.Type}, nil
	}
}

// parseContent decodes message content that is either a bare string or an
// array of typed blocks. It returns the joined text of all text blocks.
func parseContent(content json.RawMessage) (string, []ContentBlock) {
	if len(content) == 0 {
		return "", nil
	}

	// Try string content first (user messages)
	var strContent string
	if err := json.Unmarshal(content, &strContent); err == nil {
		if strContent == "" {
			return "", nil
		}
		return strContent, []ContentBlock{TextBlock{Text: strContent}}
	}

	var contentArray []json.RawMessage
	if err := json.Unmarshal(content, &contentArray); err != nil {
		return "", nil
	}

	var blocks []ContentBlock
	var texts []string
	for _, rawItem := range contentArray {
		var item struct {
			Type      string          `json:"type"`
			Text      string          `json:"text"`
			Thinking  string          `json:"thinking"`
			ID        string          `json:"id"`
			Name      string          `json:"name"`
			Input     map[string]any  `json:"input"`
			ToolUseID string          `json:"tool_use_id"`
			Content   json.RawMessage `json:"content"`
			IsError   bool            `json:"is_error"`
		}
		if err := json.Unmarshal(rawItem, &item); err != nil {
			continue
		}

		switch item.Type {
		case "text":
			if item.Text != "" {
				blocks = append(blocks, TextBlock{Text: item.Text})
				texts = append(texts, item.Text)
			}
		case "thinking", "redacted_thinking":
			text := item.Thinking
			if text == "" {
				text = item.Text
			}
			if text != "" {
				blocks = append(blocks, ReasoningBlock{Text: text, CharCount: len([]rune(text))})
			}
		case "tool_use":
			blocks = append(blocks, ToolUseBlock{
				ToolUseID: item.ID,
				Name:      item.Name,
				Args:      item.Input,
			})
		case "tool_result":
			blocks = append(blocks, ToolResultBlock{
				ToolUseID: item.ToolUseID,
				Content:   toolResultText(item.Content),
				IsError:   item.IsError,
			})
		}
	}

	return strings.Join(texts, "\n"), blocks
}

// toolResultText flattens tool_result content, which is either a string or
// an array of text blocks.
func toolResultText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(content, &parts); err != nil {
		return ""
	}
	var texts []string
	for _, p := range parts {
		if p.Type == "text" && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}
