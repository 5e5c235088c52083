package transcript

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CodexDecoder decodes Codex CLI rollout lines. Codex records carry no
// per-line id, so ids are derived from the line bytes; the session id comes
// from the session_meta record and is remembered for subsequent lines.
type CodexDecoder struct {
	now       func() time.Time
	sessionID string
	cwd       string
}

// NewCodexDecoder creates a new Codex decoder. A nil clock uses time.Now.
func NewCodexDecoder(now func() time.Time) *CodexDecoder {
	if now == nil {
		now = time.Now
	}
	return &CodexDecoder{now: now}
}

// Provider returns the provider name.
func (d *CodexDecoder) Provider() string {
	return "codex"
}

type codexLine struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type codexPayload struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Cwd       string `json:"cwd"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	Message   string `json:"message"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	CallID    string `json:"call_id"`
	Output    string `json:"output"`
	Content   []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// DecodeLine decodes a single Codex JSONL line.
func (d *CodexDecoder) DecodeLine(line []byte) (Entry, error) {
	var raw codexLine
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, err
	}
	var payload codexPayload
	if len(raw.Payload) > 0 {
		if err := json.Unmarshal(raw.Payload, &payload); err != nil {
			return nil, err
		}
	}

	if raw.Type == "session_meta" {
		d.sessionID = payload.ID
		d.cwd = payload.Cwd
	}
	if d.sessionID == "" {
		return nil, nil
	}

	header := Header{
		ID:          uuid.NewSHA1(uuid.NameSpaceOID, line).String(),
		Timestamp:   parseTimestamp(raw.Timestamp, d.now),
		SessionID:   d.sessionID,
		ProjectPath: d.cwd,
	}

	switch raw.Type {
	case "event_msg":
		switch payload.Type {
		case "agent_reasoning":
			if payload.Text == "" {
				return nil, nil
			}
			rb := ReasoningBlock{Text: payload.Text, CharCount: len([]rune(payload.Text))}
			return &AssistantEntry{
				Header:    header,
				Blocks:    []ContentBlock{rb},
				Reasoning: []ReasoningBlock{rb},
			}, nil
		case "agent_message":
			if payload.Message == "" {
				return nil, nil
			}
			return &AssistantEntry{
				Header: header,
				Text:   payload.Message,
				Blocks: []ContentBlock{TextBlock{Text: payload.Message}},
			}, nil
		}
		return &MetadataEntry{Header: header, Type: raw.Type + ":" + payload.Type}, nil

	case "response_item":
		switch payload.Type {
		case "message":
			// Assistant messages are taken from event_msg/agent_message.
			if payload.Role != "user" && payload.Role != "" {
				return nil, nil
			}
			var texts []string
			var blocks []ContentBlock
			for _, c := range payload.Content {
				if c.Type != "input_text" && c.Type != "output_text" {
					continue
				}
				if c.Text == "" {
					continue
				}
				if strings.Contains(c.Text, "<environment_context>") || strings.Contains(c.Text, "<user_instructions>") {
					return nil, nil
				}
				texts = append(texts, c.Text)
				blocks = append(blocks, TextBlock{Text: c.Text})
			}
			if len(texts) == 0 {
				return nil, nil
			}
			return &UserEntry{Header: header, Text: strings.Join(texts, "\n"), Blocks: blocks}, nil

		case "function_call":
			var args map[string]any
			_ = json.Unmarshal([]byte(payload.Arguments), &args)
			if args == nil {
				args = map[string]any{}
			}
			// Format: ["bash", "-lc", "actual command"]
			if cmdArr, ok := args["command"].([]any); ok && len(cmdArr) > 0 {
				if len(cmdArr) >= 3 {
					args["command"], _ = cmdArr[2].(string)
				} else {
					args["command"], _ = cmdArr[len(cmdArr)-1].(string)
				}
			}
			block := ToolUseBlock{ToolUseID: payload.CallID, Name: payload.Name, Args: args}
			return &AssistantEntry{
				Header:   header,
				Blocks:   []ContentBlock{block},
				ToolUses: []ToolUse{block.Flatten()},
			}, nil

		case "function_call_output":
			var outputData struct {
				Output   string `json:"output"`
				Metadata struct {
					ExitCode int `json:"exit_code"`
				} `json:"metadata"`
			}
			result := ToolResultBlock{ToolUseID: payload.CallID, Content: payload.Output}
			if err := json.Unmarshal([]byte(payload.Output), &outputData); err == nil {
				result.Content = outputData.Output
				result.IsError = outputData.Metadata.ExitCode != 0
			}
			return &UserEntry{Header: header, Blocks: []ContentBlock{result}}, nil
		}
		return &MetadataEntry{Header: header, Type: raw.Type + ":" + payload.Type}, nil
	}

	return &MetadataEntry{Header: header, Type: raw.Type}, nil
}
