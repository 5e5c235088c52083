package pager

import (
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"
)

func TestNewShadesBlendTowardAccent(t *testing.T) {
	bg, err := colorful.Hex("#000000")
	require.NoError(t, err)
	accent, err := colorful.Hex("#ff0000")
	require.NoError(t, err)

	shades := NewShades(bg, accent)
	prev := bg.DistanceLab(accent)
	for step := 1; step <= fadeSteps; step++ {
		c, ok := shades.For(step)
		require.True(t, ok)
		got, err := colorful.Hex(string(c))
		require.NoError(t, err)
		d := got.DistanceLab(accent)
		assert.Less(t, d, prev, "step %d is closer to the accent", step)
		prev = d
	}

	_, ok := shades.For(0)
	assert.False(t, ok)
	_, ok = shades.For(fadeSteps + 1)
	assert.False(t, ok)
}

func TestProbeBackgroundWithoutTerminal(t *testing.T) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.Skip("stdout is a terminal")
	}
	c := ProbeBackground(10 * time.Millisecond)
	assert.Equal(t, defaultBackground, c.Hex())
}

func TestLateBackgroundAnswerIsJoined(t *testing.T) {
	fallback, _ := colorful.Hex(defaultBackground)
	white, _ := colorful.Hex("#ffffff")

	var finished atomic.Bool
	slow := func() (colorful.Color, bool) {
		time.Sleep(80 * time.Millisecond)
		finished.Store(true)
		return white, true
	}

	c := probeWith(slow, 5*time.Millisecond, fallback)
	assert.Equal(t, defaultBackground, c.Hex(), "a late answer is not used")
	assert.True(t, finished.Load(), "the query has released the terminal before returning")
}

func TestPromptBackgroundAnswerIsUsed(t *testing.T) {
	fallback, _ := colorful.Hex(defaultBackground)
	white, _ := colorful.Hex("#ffffff")

	c := probeWith(func() (colorful.Color, bool) { return white, true }, time.Second, fallback)
	assert.Equal(t, "#ffffff", c.Hex())

	c = probeWith(func() (colorful.Color, bool) { return colorful.Color{}, false }, time.Second, fallback)
	assert.Equal(t, defaultBackground, c.Hex())
}
