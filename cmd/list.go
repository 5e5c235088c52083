package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grovetools/agentview/internal/display"
	"github.com/grovetools/agentview/internal/session"
	grovelogging "github.com/grovetools/core/logging"
	"github.com/spf13/cobra"
)

var ulogList = grovelogging.NewUnifiedLogger("agentview.cmd.list")

func newListCmd() *cobra.Command {
	var jsonOutput bool
	var projectFilter string

	cmd := &cobra.Command{
		Use:   "list [flags]",
		Short: "List available session transcripts",
		Long:  "List Claude and Codex session transcripts, newest first, optionally filtered by project name",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := session.NewScanner().ScanContext(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to scan for sessions: %w", err)
			}

			if projectFilter != "" {
				sessions = filterSessions(sessions, projectFilter)
			}

			if len(sessions) == 0 {
				msg := "No session transcripts found\n"
				if projectFilter != "" {
					msg = fmt.Sprintf("No session transcripts found for project matching '%s'\n", projectFilter)
				}
				ulogList.Info("No sessions").
					Field("project_filter", projectFilter).
					Pretty(msg).
					PrettyOnly().
					Emit()
				return nil
			}

			if jsonOutput {
				data, err := json.MarshalIndent(sessions, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal sessions to JSON: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			return display.PrintSessionsTable(sessions, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().StringVarP(&projectFilter, "project", "p", "", "Filter sessions by project, worktree, or ecosystem name (case-insensitive substring match)")

	return cmd
}

func filterSessions(sessions []session.SessionInfo, filter string) []session.SessionInfo {
	filter = strings.ToLower(filter)
	var filtered []session.SessionInfo
	for _, s := range sessions {
		for _, field := range []string{s.ProjectName, s.Worktree, s.Ecosystem} {
			if field != "" && strings.Contains(strings.ToLower(field), filter) {
				filtered = append(filtered, s)
				break
			}
		}
	}
	return filtered
}
