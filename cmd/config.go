package cmd

import (
	"fmt"
	"time"

	agview_config "github.com/grovetools/agentview/config"
	"github.com/grovetools/agentview/internal/display"
	"github.com/grovetools/agentview/internal/formatters"
	"github.com/grovetools/agentview/internal/session"
	"github.com/grovetools/agentview/internal/transcript"
	core_config "github.com/grovetools/core/config"
	grovelogging "github.com/grovetools/core/logging"
	"github.com/spf13/cobra"
)

var logger = grovelogging.NewLogger("agentview.cmd")

// loadConfig reads the agview extension from grove.yml. A missing or
// unreadable configuration yields the defaults.
func loadConfig() agview_config.Config {
	var cfg agview_config.Config
	coreCfg, err := core_config.LoadDefault()
	if err != nil {
		logger.WithError(err).Debug("No grove config, using defaults")
		return cfg.WithDefaults()
	}
	if err := coreCfg.UnmarshalExtension("agview", &cfg); err != nil {
		logger.WithError(err).Debug("Invalid agview config, using defaults")
		return agview_config.Defaults()
	}
	return cfg.WithDefaults()
}

// renderFlags are the rendering flags shared by the output commands.
type renderFlags struct {
	detail   string
	thinking bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.detail, "detail", "", "Set detail level for output ('summary' or 'full'). Overrides config.")
	cmd.Flags().BoolVar(&f.thinking, "thinking", false, "Show reasoning text instead of a placeholder")
}

// options merges the flags over the configuration.
func (f renderFlags) options(cfg agview_config.Config) (display.Options, error) {
	tc := cfg.Transcript
	if f.detail != "" {
		if f.detail != "summary" && f.detail != "full" {
			return display.Options{}, fmt.Errorf("invalid --detail %q: expected 'summary' or 'full'", f.detail)
		}
		tc.DetailLevel = f.detail
	}
	return display.Options{
		ShowToolDetail: tc.FullDetail(),
		ShowThinking:   tc.ShowThinking || f.thinking,
		MaxDiffLines:   tc.MaxDiffLines,
		Formatters:     formatters.Defaults(tc.MaxDiffLines),
	}, nil
}

// loadConversation resolves spec and parses the whole transcript. An empty
// transcript is an error.
func loadConversation(spec string) (*session.SessionInfo, *transcript.Conversation, error) {
	info, err := session.ResolveSessionInfo(spec)
	if err != nil {
		return nil, nil, err
	}

	parser := transcript.NewParser(transcript.WithDecoder(transcript.DecoderFor(info.Provider, time.Now)))
	entries, _, err := parser.ParseFile(info.LogFilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", info.LogFilePath, transcript.ErrEmptyTranscript)
	}
	return info, transcript.NewConversation(info.SessionID, entries), nil
}
