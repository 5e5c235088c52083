package config

import (
	"time"

	"github.com/grovetools/agentview/internal/marks"
)

//go:generate go run ../tools/schema-generator

// TranscriptConfig defines settings for transcript rendering.
type TranscriptConfig struct {
	// DetailLevel controls the verbosity of transcript output.
	// "summary" (default): Shows a one-line summary of tool calls.
	// "full": Shows full tool inputs and outputs.
	DetailLevel string `yaml:"detail_level,omitempty" jsonschema:"enum=summary,enum=full"`

	// MaxDiffLines controls how many lines of a diff to show before truncating.
	// 0 (default): Show all diff lines without truncation.
	// >0: Show at most this many lines, then summarize the rest.
	MaxDiffLines int `yaml:"max_diff_lines,omitempty"`

	// ShowThinking shows reasoning text instead of a one-line placeholder.
	ShowThinking bool `yaml:"show_thinking,omitempty"`
}

// PagerConfig defines timing and storage settings for the interactive pager.
type PagerConfig struct {
	// TickMS is the interval of the pager's main loop.
	TickMS int `yaml:"tick_ms,omitempty"`

	// PollEveryTicks is how many ticks pass between reads of a live file.
	PollEveryTicks int `yaml:"poll_every_ticks,omitempty"`

	// FadeMS is how long newly arrived lines glow.
	FadeMS int `yaml:"fade_ms,omitempty"`

	// ThinkingWindowMS is how recently the file must have grown for the
	// agent to count as thinking.
	ThinkingWindowMS int `yaml:"thinking_window_ms,omitempty"`

	// ProbeTimeoutMS bounds the terminal background colour query.
	ProbeTimeoutMS int `yaml:"probe_timeout_ms,omitempty"`

	// ChordTimeoutMS is how long the first key of a chord waits.
	ChordTimeoutMS int `yaml:"chord_timeout_ms,omitempty"`

	// MarksFile is the bookmark store. Defaults to marks.DefaultPath.
	MarksFile string `yaml:"marks_file,omitempty"`
}

// Config is the top-level configuration structure for agview.
type Config struct {
	Transcript TranscriptConfig `yaml:"transcript,omitempty"`
	Pager      PagerConfig      `yaml:"pager,omitempty"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Transcript: TranscriptConfig{
			DetailLevel: "summary",
		},
		Pager: PagerConfig{
			TickMS:           50,
			PollEveryTicks:   10,
			FadeMS:           2000,
			ThinkingWindowMS: 5000,
			ProbeTimeoutMS:   150,
			ChordTimeoutMS:   1000,
			MarksFile:        marks.DefaultPath,
		},
	}
}

// WithDefaults fills every unset field from Defaults.
func (c Config) WithDefaults() Config {
	d := Defaults()
	if c.Transcript.DetailLevel == "" {
		c.Transcript.DetailLevel = d.Transcript.DetailLevel
	}
	p := &c.Pager
	setInt(&p.TickMS, d.Pager.TickMS)
	setInt(&p.PollEveryTicks, d.Pager.PollEveryTicks)
	setInt(&p.FadeMS, d.Pager.FadeMS)
	setInt(&p.ThinkingWindowMS, d.Pager.ThinkingWindowMS)
	setInt(&p.ProbeTimeoutMS, d.Pager.ProbeTimeoutMS)
	setInt(&p.ChordTimeoutMS, d.Pager.ChordTimeoutMS)
	if p.MarksFile == "" {
		p.MarksFile = d.Pager.MarksFile
	}
	return c
}

func setInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

// FullDetail reports whether tool calls are rendered with their inputs.
func (t TranscriptConfig) FullDetail() bool {
	return t.DetailLevel == "full"
}

// Tick returns TickMS as a duration.
func (p PagerConfig) Tick() time.Duration { return ms(p.TickMS) }

// Fade returns FadeMS as a duration.
func (p PagerConfig) Fade() time.Duration { return ms(p.FadeMS) }

// ThinkingWindow returns ThinkingWindowMS as a duration.
func (p PagerConfig) ThinkingWindow() time.Duration { return ms(p.ThinkingWindowMS) }

// ProbeTimeout returns ProbeTimeoutMS as a duration.
func (p PagerConfig) ProbeTimeout() time.Duration { return ms(p.ProbeTimeoutMS) }

// ChordTimeout returns ChordTimeoutMS as a duration.
func (p PagerConfig) ChordTimeout() time.Duration { return ms(p.ChordTimeoutMS) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
