package cmd

import (
	"fmt"
	"os"

	"github.com/grovetools/agentview/internal/display"
	"github.com/grovetools/agentview/internal/pager"
	grovelogging "github.com/grovetools/core/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var ulogDump = grovelogging.NewUnifiedLogger("agentview.cmd.dump")

func newDumpCmd() *cobra.Command {
	var rf renderFlags
	var width int
	var noColor bool

	cmd := &cobra.Command{
		Use:   "dump <session-id|path>",
		Short: "Render a whole transcript without the pager",
		Long:  "Render every turn of a transcript to stdout. <session-id|path> can be a session ID, a unique ID prefix, or a path to a log file.",
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

			ulogDump.Info("Dumping transcript").
				Field("session_id", info.SessionID).
				Field("turns", len(conv.Turns)).
				Field("entries", len(conv.Entries)).
				Pretty(fmt.Sprintf("=== Session: %s ===\nProject: %s\n\n", info.SessionID, info.ProjectName)).
				PrettyOnly().
				Emit()

			lines := display.Render(conv, opts)

			fd := int(os.Stdout.Fd())
			tty := term.IsTerminal(fd)
			if width == 0 && tty {
				if w, _, err := term.GetSize(fd); err == nil {
					width = w
				}
			}
			if width > 0 {
				lines = unwrap(pager.Wrap(lines, width))
			}

			return display.WriteLines(cmd.OutOrStdout(), lines, display.DefaultStyles(), tty && !noColor)
		},
	}

	rf.register(cmd)
	cmd.Flags().IntVar(&width, "width", 0, "Wrap lines to this many cells (default: terminal width, no wrapping when not a terminal)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable styling")

	return cmd
}

// unwrap drops the wrap metadata so wrapped rows can be written as lines.
func unwrap(lines []pager.Line) []display.StyledLine {
	out := make([]display.StyledLine, len(lines))
	for i, l := range lines {
		out[i] = l.StyledLine
	}
	return out
}
