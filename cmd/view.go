package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/agentview/internal/marks"
	"github.com/grovetools/agentview/internal/pager"
	"github.com/grovetools/agentview/internal/session"
	"github.com/grovetools/agentview/internal/transcript"
	"github.com/spf13/cobra"
)

func newViewCmd() *cobra.Command {
	var rf renderFlags
	var follow bool
	var watch string

	cmd := &cobra.Command{
		Use:   "view <session-id|path>",
		Short: "Open a transcript in the interactive pager",
		Long: `Open a transcript in the interactive pager.

With --follow the view tracks the end of the file as the agent writes to it.
With --watch the pager exits with status 3 as soon as newly written output
matches PATTERN, printing the matching line to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			opts, err := rf.options(cfg)
			if err != nil {
				return err
			}

			info, err := session.ResolveSessionInfo(args[0])
			if err != nil {
				return err
			}

			tailer, err := transcript.OpenTail(info.LogFilePath,
				transcript.WithThinkingWindow(cfg.Pager.ThinkingWindow()),
			)
			if err != nil {
				return fmt.Errorf("failed to open transcript: %w", err)
			}
			defer tailer.Close()

			tailer.Poll()
			if !follow && len(tailer.Entries()) == 0 {
				return fmt.Errorf("%s: %w", info.LogFilePath, transcript.ErrEmptyTranscript)
			}

			var store marks.Store
			if fs, err := marks.Open(cfg.Pager.MarksFile); err != nil {
				logger.WithError(err).Debug("Bookmarks unavailable")
			} else {
				store = fs
			}

			model := pager.New(tailer, pager.Options{
				SessionID:    info.SessionID,
				Live:         follow,
				Tripwire:     pager.NewTripwire(watch),
				Render:       opts,
				TickInterval: cfg.Pager.Tick(),
				PollEvery:    cfg.Pager.PollEveryTicks,
				Fade:         cfg.Pager.Fade(),
				ChordTimeout: cfg.Pager.ChordTimeout(),
				Shades:       pager.DefaultShades(cfg.Pager.ProbeTimeout()),
				Marks:        store,
			})

			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("pager failed: %w", err)
			}

			if line, ok := model.Triggered(); ok {
				return &WatchTriggeredError{Pattern: watch, Line: line}
			}
			return nil
		},
	}

	rf.register(cmd)
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow the end of the transcript as it grows")
	cmd.Flags().StringVarP(&watch, "watch", "w", "", "Exit with status 3 when new output matches PATTERN (regular expression or literal)")

	return cmd
}
