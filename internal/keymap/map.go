package keymap

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultChordTimeout is how long the first key of a chord waits for its
// second key before it is handled on its own.
const DefaultChordTimeout = time.Second

// chordState is either idle or awaitingSecond.
type chordState interface{ isChordState() }

type idle struct{}

type awaitingSecond struct {
	first tea.KeyMsg
	since time.Time
}

func (idle) isChordState()           {}
func (awaitingSecond) isChordState() {}

// Map translates key events into Events. It is not safe for concurrent use.
type Map struct {
	Bindings Bindings

	named        []namedBinding
	runes        map[rune]Action
	chords       map[[2]string]Action
	prefixes     map[string]bool
	chordTimeout time.Duration
	now          func() time.Time

	mode      Mode
	chord     chordState
	term      []rune
	watchTerm string
}

// Option configures a Map.
type Option func(*Map)

// WithChordTimeout overrides DefaultChordTimeout.
func WithChordTimeout(d time.Duration) Option {
	return func(m *Map) {
		if d > 0 {
			m.chordTimeout = d
		}
	}
}

// WithClock sets the clock used to time chords.
func WithClock(now func() time.Time) Option {
	return func(m *Map) { m.now = now }
}

// WithWatchTerm seeds the confirmed watch term.
func WithWatchTerm(term string) Option {
	return func(m *Map) { m.watchTerm = term }
}

// New creates a key map with the default bindings.
func New(opts ...Option) *Map {
	m := &Map{
		Bindings:     DefaultBindings(),
		runes:        defaultRunes(),
		chords:       defaultChords(),
		prefixes:     map[string]bool{},
		chordTimeout: DefaultChordTimeout,
		now:          time.Now,
		chord:        idle{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.named = m.Bindings.named()
	for seq := range m.chords {
		m.prefixes[seq[0]] = true
	}
	return m
}

// Mode returns the current input mode.
func (m *Map) Mode() Mode { return m.mode }

// Term returns the text typed so far in search or watch mode.
func (m *Map) Term() string { return string(m.term) }

// WatchTerm returns the last confirmed watch term.
func (m *Map) WatchTerm() string { return m.watchTerm }

// Pending reports whether the first key of a chord is waiting.
func (m *Map) Pending() bool {
	_, waiting := m.chord.(awaitingSecond)
	return waiting
}

// Process handles one key event and returns the resulting events, which may
// be none (a mode switch or a pending chord prefix) or several (a failed chord
// releases its first key before the second).
func (m *Map) Process(msg tea.KeyMsg) []Event {
	switch m.mode {
	case ModeSearch, ModeWatch:
		return m.processInput(msg)
	case ModeHelp:
		m.mode = ModeNormal
		return nil
	default:
		return m.processNormal(msg)
	}
}

// Flush releases a chord prefix that has waited longer than the chord
// timeout. Call it once per tick after draining key events.
//
// A prefix stays pending across ticks until the timeout, so a chord typed
// slower than one input cycle still completes. A timeout no longer than the
// tick interval confines chords to a single cycle.
func (m *Map) Flush(now time.Time) []Event {
	pending, ok := m.chord.(awaitingSecond)
	if !ok || now.Sub(pending.since) < m.chordTimeout {
		return nil
	}
	m.chord = idle{}
	return m.single(pending.first)
}

func (m *Map) processNormal(msg tea.KeyMsg) []Event {
	k := msg.String()

	switch st := m.chord.(type) {
	case awaitingSecond:
		m.chord = idle{}
		if action, ok := m.chords[[2]string{st.first.String(), k}]; ok {
			return m.emit(action)
		}
		// Not a chord: the first key stands alone, then the second key is
		// handled from scratch in whatever mode that left us in.
		events := m.single(st.first)
		return append(events, m.Process(msg)...)
	case idle:
	}

	if m.prefixes[k] {
		m.chord = awaitingSecond{first: msg, since: m.now()}
		return nil
	}
	return m.single(msg)
}

// single resolves a key as a standalone binding.
func (m *Map) single(msg tea.KeyMsg) []Event {
	for _, nb := range m.named {
		if key.Matches(msg, nb.binding) {
			return m.emit(nb.action)
		}
	}
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if action, ok := m.runes[msg.Runes[0]]; ok {
			return m.emit(action)
		}
	}
	return nil
}

// emit intercepts mode switches and wraps everything else as an event.
func (m *Map) emit(action Action) []Event {
	switch action {
	case actionStartSearch:
		m.mode = ModeSearch
		m.term = nil
		return nil
	case actionStartWatch:
		m.mode = ModeWatch
		m.term = []rune(m.watchTerm)
		return nil
	case actionShowHelp:
		m.mode = ModeHelp
		return nil
	case ActionNone:
		return nil
	}
	return []Event{{Action: action}}
}

func (m *Map) processInput(msg tea.KeyMsg) []Event {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.mode = ModeNormal
		m.term = nil
		return []Event{{Action: ActionQuit}}

	case tea.KeyEnter:
		term := string(m.term)
		mode := m.mode
		m.mode = ModeNormal
		m.term = nil
		if mode == ModeWatch {
			m.watchTerm = term
			return []Event{{Action: ActionWatchCommit, Term: term}}
		}
		if term == "" {
			return []Event{{Action: ActionClearSearch}}
		}
		return []Event{{Action: ActionSearchCommit, Term: term}}

	case tea.KeyEsc:
		mode := m.mode
		m.mode = ModeNormal
		m.term = nil
		if mode == ModeWatch {
			return []Event{{Action: ActionWatchCancel, Term: m.watchTerm}}
		}
		return []Event{{Action: ActionSearchCancel}}

	case tea.KeyBackspace, tea.KeyCtrlH:
		if len(m.term) == 0 {
			return nil
		}
		m.term = m.term[:len(m.term)-1]
		return []Event{{Action: ActionInputChanged, Term: string(m.term)}}

	case tea.KeyCtrlU:
		m.term = nil
		return []Event{{Action: ActionInputChanged}}

	case tea.KeySpace:
		m.term = append(m.term, ' ')
		return []Event{{Action: ActionInputChanged, Term: string(m.term)}}

	case tea.KeyRunes:
		m.term = append(m.term, msg.Runes...)
		return []Event{{Action: ActionInputChanged, Term: string(m.term)}}
	}
	return nil
}
