package cmd

import (
	"fmt"

	"github.com/grovetools/agentview/internal/display"
	"github.com/grovetools/agentview/internal/transcript"
	grovelogging "github.com/grovetools/core/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var ulogTail = grovelogging.NewUnifiedLogger("agentview.cmd.tail")

func newTailCmd() *cobra.Command {
	var rf renderFlags
	var turns int

	cmd := &cobra.Command{
		Use:   "tail <session-id|path>",
		Short: "Render the last turns of a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			opts, err := rf.options(cfg)
			if err != nil {
				return err
			}

			info, conv, err := loadConversation(args[0])
			if err != nil {
				return err
			}

			last := conv.Tail(turns)
			ulogTail.Info("Tail turns").
				Field("session_id", info.SessionID).
				Field("turn_count", len(last)).
				Field("total_turns", len(conv.Turns)).
				Pretty(fmt.Sprintf("Showing last %d of %d turns from session %s:\n\n", len(last), len(conv.Turns), info.SessionID)).
				PrettyOnly().
				Emit()

			partial := &transcript.Conversation{SessionID: conv.SessionID, Entries: conv.Entries, Turns: last}
			out := cmd.OutOrStdout()
			return display.WriteLines(out, display.Render(partial, opts), display.DefaultStyles(), isTerminal(out))
		},
	}

	rf.register(cmd)
	cmd.Flags().IntVarP(&turns, "turns", "n", 3, "Number of turns to show (0 for all)")

	return cmd
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
