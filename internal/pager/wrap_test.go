package pager

import (
	"strings"
	"testing"

	"github.com/grovetools/agentview/internal/display"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	raw := []display.StyledLine{
		{Text: "short", Style: display.StyleUser, Turn: -1},
		{Text: strings.Repeat("a", 20), Style: display.StyleSeparator, Turn: 4},
		{Text: "", Style: display.StyleNormal, Turn: -1},
	}
	lines := Wrap(raw, 10)
	require.Len(t, lines, 5)

	assert.Equal(t, "short", lines[0].Text)
	assert.False(t, lines[0].Cont)

	assert.Equal(t, strings.Repeat("a", 9), lines[1].Text)
	assert.True(t, lines[1].IsSeparator())
	assert.Equal(t, strings.Repeat("a", 9), lines[2].Text)
	assert.True(t, lines[2].Cont)
	assert.False(t, lines[2].IsSeparator())
	assert.Equal(t, 4, lines[2].Turn)
	assert.Equal(t, display.StyleSeparator, lines[2].Style)
	assert.Equal(t, "aa", lines[3].Text)

	assert.Equal(t, "", lines[4].Text)
}

func TestWrapWideRunes(t *testing.T) {
	raw := []display.StyledLine{{Text: "日本語のテキスト", Turn: -1}}
	lines := Wrap(raw, 6)
	var joined strings.Builder
	for _, l := range lines {
		assert.LessOrEqual(t, runewidth.StringWidth(l.Text), 5)
		joined.WriteString(l.Text)
	}
	assert.Equal(t, raw[0].Text, joined.String())
	assert.Len(t, lines, 4)
}

func TestWrapDisabledForTinyWidth(t *testing.T) {
	raw := []display.StyledLine{{Text: strings.Repeat("x", 40), Turn: -1}}
	assert.Len(t, Wrap(raw, 0), 1)
	assert.Len(t, Wrap(raw, 1), 1)
}
