package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/agentview/config"
	"github.com/grovetools/agentview/internal/display"
	"github.com/grovetools/agentview/internal/pager"
	"github.com/grovetools/agentview/internal/session"
	"github.com/grovetools/agentview/internal/transcript"
	grovelogging "github.com/grovetools/core/logging"
	"github.com/spf13/cobra"
)

var ulogFollow = grovelogging.NewUnifiedLogger("agentview.cmd.follow")

const (
	resolveRetries = 5
	resolveBackoff = 2 * time.Second
)

func newFollowCmd() *cobra.Command {
	var rf renderFlags
	var watch string
	var backlog bool

	cmd := &cobra.Command{
		Use:   "follow <session-id|path>",
		Short: "Print new transcript output as the agent writes it",
		Long: `Print rendered output as it is appended to a transcript, without the pager.

With --watch the command exits with status 3 as soon as new output matches
PATTERN, printing the matching line to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			opts, err := rf.options(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			info, err := resolveWithRetry(ctx, args[0])
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

			ulogFollow.Info("Following transcript").
				Field("session_id", info.SessionID).
				Field("path", info.LogFilePath).
				Field("watch", watch).
				Pretty(fmt.Sprintf("Following session %s (Ctrl-C to stop)\n", info.SessionID)).
				PrettyOnly().
				Emit()

			f := &follower{
				tailer:   tailer,
				tripwire: pager.NewTripwire(watch),
				opts:     opts,
				out:      cmd.OutOrStdout(),
				color:    isTerminal(cmd.OutOrStdout()),
				styles:   display.DefaultStyles(),
			}
			return f.run(ctx, cfg.Pager, backlog)
		},
	}

	rf.register(cmd)
	cmd.Flags().StringVarP(&watch, "watch", "w", "", "Exit with status 3 when new output matches PATTERN (regular expression or literal)")
	cmd.Flags().BoolVar(&backlog, "backlog", false, "Print the existing transcript before following")

	return cmd
}

// resolveWithRetry waits briefly for sessions that have not written their
// log yet.
func resolveWithRetry(ctx context.Context, spec string) (*session.SessionInfo, error) {
	info, err := session.ResolveSessionInfo(spec)
	for attempt := 0; attempt < resolveRetries && errors.Is(err, session.ErrSessionNotFound); attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(resolveBackoff):
		}
		info, err = session.ResolveSessionInfo(spec)
	}
	if err != nil {
		return nil, fmt.Errorf("could not find session for '%s': %w", spec, err)
	}
	return info, nil
}

type follower struct {
	tailer   *transcript.Tailer
	tripwire *pager.Tripwire
	opts     display.Options
	out      io.Writer
	color    bool
	styles   display.Styles
	printed  int
}

// run polls on the pager's schedule until ctx is done or the tripwire fires.
func (f *follower) run(ctx context.Context, pc config.PagerConfig, backlog bool) error {
	first := f.tailer.Poll()
	lines := display.Render(first.Conversation, f.opts)
	if backlog {
		if err := display.WriteLines(f.out, lines, f.styles, f.color); err != nil {
			return err
		}
	}
	f.printed = len(lines)

	ticker := time.NewTicker(pc.Tick())
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		ticks++
		if ticks%pc.PollEveryTicks != 0 && !f.tailer.Woken() {
			continue
		}
		if err := f.ingest(f.tailer.Poll()); err != nil {
			return err
		}
	}
}

// ingest prints the rendered lines past those already printed, then checks
// the new entries against the tripwire.
func (f *follower) ingest(b transcript.Batch) error {
	if len(b.New) == 0 {
		return nil
	}
	lines := display.Render(b.Conversation, f.opts)
	if f.printed < len(lines) {
		if err := display.WriteLines(f.out, lines[f.printed:], f.styles, f.color); err != nil {
			return err
		}
		f.printed = len(lines)
	}
	if line, ok := f.tripwire.CheckAll(b.New); ok {
		return &WatchTriggeredError{Pattern: f.tripwire.Pattern(), Line: line}
	}
	return nil
}
