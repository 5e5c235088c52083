package display

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/core/tui/theme"
)

// StyleTag names the visual role of a rendered line.
type StyleTag int

const (
	StyleNormal StyleTag = iota
	StyleSeparator
	StyleUser
	StyleAssistant
	StyleTool
	StyleToolResult
	StyleToolError
	StyleThinking
	StyleSystem
	StyleSummary
	StyleMeta
	StyleDiffAdded
	StyleDiffRemoved
)

// Styles maps style tags to lipgloss styles.
type Styles map[StyleTag]lipgloss.Style

// DefaultStyles returns the theme-based styles.
func DefaultStyles() Styles {
	colors := theme.DefaultColors
	muted := lipgloss.NewStyle().Foreground(colors.MutedText)
	return Styles{
		StyleNormal:      lipgloss.NewStyle(),
		StyleSeparator:   lipgloss.NewStyle().Foreground(colors.Violet).Bold(true),
		StyleUser:        lipgloss.NewStyle().Foreground(colors.Yellow),
		StyleAssistant:   lipgloss.NewStyle().Foreground(colors.LightText),
		StyleTool:        lipgloss.NewStyle().Foreground(colors.Green),
		StyleToolResult:  muted,
		StyleToolError:   lipgloss.NewStyle().Foreground(colors.Red),
		StyleThinking:    muted.Italic(true),
		StyleSystem:      muted,
		StyleSummary:     lipgloss.NewStyle().Foreground(colors.Violet).Italic(true),
		StyleMeta:        muted,
		StyleDiffAdded:   lipgloss.NewStyle().Foreground(colors.Green),
		StyleDiffRemoved: lipgloss.NewStyle().Foreground(colors.Red),
	}
}

// Style returns the style for tag, or an empty style when unknown.
func (s Styles) Style(tag StyleTag) lipgloss.Style {
	if st, ok := s[tag]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// Render styles a line's text.
func (s Styles) Render(line StyledLine) string {
	return s.Style(line.Style).Render(line.Text)
}
