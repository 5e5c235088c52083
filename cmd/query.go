package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/grovetools/agentview/internal/transcript"
	grovelogging "github.com/grovetools/core/logging"
	"github.com/spf13/cobra"
)

var ulogQuery = grovelogging.NewUnifiedLogger("agentview.cmd.query")

// queryEntry is the JSON shape of one queried entry.
type queryEntry struct {
	ID        string                 `json:"id"`
	Role      string                 `json:"role"`
	Turn      int                    `json:"turn"`
	Timestamp time.Time              `json:"timestamp"`
	Text      string                 `json:"text,omitempty"`
	ToolUses  []transcript.ToolUse   `json:"toolUses,omitempty"`
	Results   []string               `json:"toolResults,omitempty"`
	Usage     *transcript.TokenUsage `json:"usage,omitempty"`
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <session-id|path>",
		Short: "Query entries from a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			role, _ := cmd.Flags().GetString("role")
			jsonOutput, _ := cmd.Flags().GetBool("json")

			role = strings.ToLower(role)
			switch role {
			case "", "user", "assistant", "system", "summary":
			default:
				return fmt.Errorf("invalid --role %q: expected user, assistant, system or summary", role)
			}

			info, conv, err := loadConversation(args[0])
			if err != nil {
				return err
			}

			filtered := queryEntries(conv, role)

			if jsonOutput {
				data, err := json.MarshalIndent(filtered, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal entries: %w", err)
				}
				ulogQuery.Info("Query results").
					Field("entry_count", len(filtered)).
					Field("session_id", info.SessionID).
					Field("role_filter", role).
					Pretty(string(data) + "\n").
					PrettyOnly().
					Log(ctx)
				return nil
			}

			summaryMsg := fmt.Sprintf("Found %d entries", len(filtered))
			if role != "" {
				summaryMsg += fmt.Sprintf(" with role '%s'", role)
			}
			summaryMsg += fmt.Sprintf(" in session %s:\n\n", info.SessionID)

			ulogQuery.Info("Query results").
				Field("entry_count", len(filtered)).
				Field("session_id", info.SessionID).
				Field("role_filter", role).
				Pretty(summaryMsg).
				PrettyOnly().
				Log(ctx)

			for _, e := range filtered {
				ulogQuery.Info("Entry").
					Field("session_id", info.SessionID).
					Field("entry_id", e.ID).
					Field("role", e.Role).
					Field("timestamp", e.Timestamp).
					Pretty(fmt.Sprintf("[%s] #%d %s: %s\n", e.Timestamp.Local().Format("15:04:05"), e.Turn, e.Role, summarize(e))).
					PrettyOnly().
					Log(ctx)
			}
			return nil
		},
	}

	cmd.Flags().String("role", "", "Filter by entry role (user, assistant, system, summary)")
	cmd.Flags().Bool("json", false, "Output in JSON format")

	return cmd
}

// queryEntries flattens the conversation's entries, tagged with their turn
// number. Metadata entries are never listed.
func queryEntries(conv *transcript.Conversation, role string) []queryEntry {
	var out []queryEntry
	for _, turn := range conv.Turns {
		for _, e := range turn.Entries {
			if e.Kind() == transcript.KindMetadata {
				continue
			}
			if role != "" && e.Kind().String() != role {
				continue
			}
			h := e.Common()
			qe := queryEntry{
				ID:        h.ID,
				Role:      e.Kind().String(),
				Turn:      turn.Number,
				Timestamp: h.Timestamp,
				Text:      transcript.EntryText(e),
			}
			switch v := e.(type) {
			case *transcript.AssistantEntry:
				qe.ToolUses = v.ToolUses
				qe.Usage = v.Usage
			case *transcript.UserEntry:
				for _, r := range v.ToolResults() {
					name := r.ToolName
					if name == "" {
						name = "tool"
					}
					qe.Results = append(qe.Results, name)
				}
			case *transcript.SystemEntry, *transcript.SummaryEntry, *transcript.MetadataEntry:
			}
			out = append(out, qe)
		}
	}
	return out
}

// summarize returns a one-line description of an entry.
func summarize(e queryEntry) string {
	text := strings.TrimSpace(e.Text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + " …"
	}
	var extra []string
	for _, tu := range e.ToolUses {
		extra = append(extra, tu.Name)
	}
	if len(extra) > 0 {
		text = strings.TrimSpace(text + " [tools: " + strings.Join(extra, ", ") + "]")
	}
	if len(e.Results) > 0 {
		text = strings.TrimSpace(text + " [results: " + strings.Join(e.Results, ", ") + "]")
	}
	return text
}
