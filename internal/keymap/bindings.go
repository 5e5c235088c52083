package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// Bindings holds the named-key bindings of the pager. It also serves as the
// help.KeyMap for the help overlay, so punctuation and chord keys appear in
// the help text even though they are matched separately.
type Bindings struct {
	Quit           key.Binding
	Down           key.Binding
	Up             key.Binding
	HalfPageDown   key.Binding
	HalfPageUp     key.Binding
	PageDown       key.Binding
	PageUp         key.Binding
	Top            key.Binding
	Bottom         key.Binding
	NextTurn       key.Binding
	PrevTurn       key.Binding
	Search         key.Binding
	NextMatch      key.Binding
	PrevMatch      key.Binding
	ClearSearch    key.Binding
	Watch          key.Binding
	ToggleDetail   key.Binding
	ToggleThinking key.Binding
	ToggleFollow   key.Binding
	ToggleMark     key.Binding
	Yank           key.Binding
	Help           key.Binding
}

// DefaultBindings returns the default key bindings. Vim and less users should
// both feel at home.
func DefaultBindings() Bindings {
	return Bindings{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/C-c", "quit"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down", "ctrl+e", "enter"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up", "ctrl+y"),
			key.WithHelp("k/↑", "scroll up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("d", "ctrl+d"),
			key.WithHelp("d/C-d", "half page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("u", "ctrl+u"),
			key.WithHelp("u/C-u", "half page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("f", "pgdown", " ", "ctrl+f"),
			key.WithHelp("f/space/PgDn", "page down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("b", "pgup", "ctrl+b"),
			key.WithHelp("b/PgUp", "page up"),
		),
		Top: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("gg/Home", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G/End", "go to bottom"),
		),
		NextTurn: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("]]/}/Tab", "next turn"),
		),
		PrevTurn: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("[[/{/S-Tab", "previous turn"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "previous match"),
		),
		ClearSearch: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "clear search"),
		),
		Watch: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "watch for text"),
		),
		ToggleDetail: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle tool detail"),
		),
		ToggleThinking: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "toggle reasoning"),
		),
		ToggleFollow: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "toggle follow"),
		),
		ToggleMark: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "bookmark session"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy line"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp returns the bindings shown in the status line hint.
func (b Bindings) ShortHelp() []key.Binding {
	return []key.Binding{b.Search, b.NextTurn, b.ToggleFollow, b.Help, b.Quit}
}

// FullHelp returns the bindings shown in the help overlay, grouped by column.
func (b Bindings) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Scrolling
		{b.Down, b.Up, b.HalfPageDown, b.HalfPageUp, b.PageDown, b.PageUp, b.Top, b.Bottom},
		// Navigation
		{b.NextTurn, b.PrevTurn, b.Search, b.NextMatch, b.PrevMatch, b.ClearSearch, b.Watch},
		// Display
		{b.ToggleDetail, b.ToggleThinking, b.ToggleFollow, b.ToggleMark, b.Yank, b.Help, b.Quit},
	}
}

// named pairs each matchable binding with its action, in match order.
func (b Bindings) named() []namedBinding {
	return []namedBinding{
		{b.Quit, ActionQuit},
		{b.Down, ActionScrollDown},
		{b.Up, ActionScrollUp},
		{b.HalfPageDown, ActionHalfPageDown},
		{b.HalfPageUp, ActionHalfPageUp},
		{b.PageDown, ActionPageDown},
		{b.PageUp, ActionPageUp},
		{b.Top, ActionTop},
		{b.Bottom, ActionBottom},
		{b.NextTurn, ActionNextTurn},
		{b.PrevTurn, ActionPrevTurn},
		{b.NextMatch, ActionNextMatch},
		{b.PrevMatch, ActionPrevMatch},
		{b.ClearSearch, ActionClearSearch},
		{b.Watch, actionStartWatch},
		{b.ToggleDetail, ActionToggleToolDetail},
		{b.ToggleThinking, ActionToggleThinking},
		{b.ToggleFollow, ActionToggleFollow},
		{b.ToggleMark, ActionToggleMark},
		{b.Yank, ActionYank},
	}
}

type namedBinding struct {
	binding key.Binding
	action  Action
}

// defaultRunes are the punctuation bindings, matched on the typed rune.
func defaultRunes() map[rune]Action {
	return map[rune]Action{
		'/': actionStartSearch,
		'?': actionShowHelp,
		'}': ActionNextTurn,
		'{': ActionPrevTurn,
	}
}

// defaultChords are the two-key sequences, keyed by the key strings.
func defaultChords() map[[2]string]Action {
	return map[[2]string]Action{
		{"g", "g"}: ActionTop,
		{"]", "]"}: ActionNextTurn,
		{"[", "["}: ActionPrevTurn,
	}
}
