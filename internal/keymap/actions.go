// Package keymap turns raw key events into pager actions. It owns the input
// mode (normal, search, watch, help) and the pending half of two-key chords.
package keymap

// Action is a pager command produced by the key map.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionScrollDown
	ActionScrollUp
	ActionHalfPageDown
	ActionHalfPageUp
	ActionPageDown
	ActionPageUp
	ActionTop
	ActionBottom
	ActionNextTurn
	ActionPrevTurn
	ActionNextMatch
	ActionPrevMatch
	ActionClearSearch
	ActionToggleToolDetail
	ActionToggleThinking
	ActionToggleFollow
	ActionToggleMark
	ActionYank

	// Emitted while collecting input.
	ActionInputChanged
	ActionSearchCommit
	ActionSearchCancel
	ActionWatchCommit
	ActionWatchCancel

	// Mode switches. These are consumed by the map and never emitted.
	actionStartSearch
	actionStartWatch
	actionShowHelp
)

var actionNames = map[Action]string{
	ActionNone:             "none",
	ActionQuit:             "quit",
	ActionScrollDown:       "scroll-down",
	ActionScrollUp:         "scroll-up",
	ActionHalfPageDown:     "half-page-down",
	ActionHalfPageUp:       "half-page-up",
	ActionPageDown:         "page-down",
	ActionPageUp:           "page-up",
	ActionTop:              "top",
	ActionBottom:           "bottom",
	ActionNextTurn:         "next-turn",
	ActionPrevTurn:         "prev-turn",
	ActionNextMatch:        "next-match",
	ActionPrevMatch:        "prev-match",
	ActionClearSearch:      "clear-search",
	ActionToggleToolDetail: "toggle-tool-detail",
	ActionToggleThinking:   "toggle-thinking",
	ActionToggleFollow:     "toggle-follow",
	ActionToggleMark:       "toggle-mark",
	ActionYank:             "yank",
	ActionInputChanged:     "input-changed",
	ActionSearchCommit:     "search-commit",
	ActionSearchCancel:     "search-cancel",
	ActionWatchCommit:      "watch-commit",
	ActionWatchCancel:      "watch-cancel",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "internal"
}

// Event is one action with the input term it carries, if any.
type Event struct {
	Action Action
	Term   string
}

// Mode is the key map's input mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeWatch
	ModeHelp
)

func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeWatch:
		return "watch"
	case ModeHelp:
		return "help"
	default:
		return "normal"
	}
}
