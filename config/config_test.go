package config

import (
	"testing"
	"time"

	"github.com/grovetools/agentview/internal/marks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWithDefaultsKeepsSetValues(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(`
transcript:
  detail_level: full
  max_diff_lines: 12
pager:
  tick_ms: 20
  marks_file: /tmp/marks.yaml
`), &cfg))

	cfg = cfg.WithDefaults()
	assert.True(t, cfg.Transcript.FullDetail())
	assert.Equal(t, 12, cfg.Transcript.MaxDiffLines)
	assert.Equal(t, 20*time.Millisecond, cfg.Pager.Tick())
	assert.Equal(t, "/tmp/marks.yaml", cfg.Pager.MarksFile)

	assert.Equal(t, 10, cfg.Pager.PollEveryTicks)
	assert.Equal(t, 2*time.Second, cfg.Pager.Fade())
	assert.Equal(t, 5*time.Second, cfg.Pager.ThinkingWindow())
	assert.Equal(t, 150*time.Millisecond, cfg.Pager.ProbeTimeout())
	assert.Equal(t, time.Second, cfg.Pager.ChordTimeout())
}

func TestWithDefaultsOnEmpty(t *testing.T) {
	assert.Equal(t, Defaults(), Config{}.WithDefaults())
	assert.False(t, Config{}.WithDefaults().Transcript.FullDetail())
	assert.Equal(t, marks.DefaultPath, Config{}.WithDefaults().Pager.MarksFile)
}
