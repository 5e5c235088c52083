package pager

import (
	"fmt"
	"os"
	"strings"
	"time"

	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/agentview/internal/display"
	"github.com/grovetools/agentview/internal/keymap"
	"github.com/grovetools/agentview/internal/marks"
	"github.com/grovetools/agentview/internal/transcript"
	grovelogging "github.com/grovetools/core/logging"
	"github.com/grovetools/core/tui/theme"
)

var logger = grovelogging.NewLogger("agentview.pager")

const (
	DefaultTickInterval = 50 * time.Millisecond
	DefaultPollEvery    = 10
)

// Source is the live transcript the pager reads. *transcript.Tailer
// implements it.
type Source interface {
	Poll() transcript.Batch
	Tick(now time.Time)
	IsThinking() bool
	ThinkingSince() time.Time
	Woken() bool
	Conversation() *transcript.Conversation
}

// Options configures the pager model.
type Options struct {
	SessionID    string
	Live         bool
	WatchTerm    string
	Tripwire     *Tripwire
	Render       display.Options
	TickInterval time.Duration
	PollEvery    int
	Fade         time.Duration
	ChordTimeout time.Duration
	Shades       Shades
	Marks        marks.Store
	Clock        func() time.Time
}

type tickMsg time.Time

// Model is the bubbletea model of the pager.
type Model struct {
	src     Source
	opts    Options
	keys    *keymap.Map
	engine  *Engine
	painter Painter
	help    help.Model

	pending []tea.KeyMsg
	ticks   int
	conv    *transcript.Conversation

	thinking  bool
	marked    bool
	flash     string
	triggered string
	quitting  bool

	width  int
	height int
	dirty  bool
	frame  string
}

// New creates the pager over src, showing what src has ingested so far.
func New(src Source, opts Options) *Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.PollEvery <= 0 {
		opts.PollEvery = DefaultPollEvery
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	m := &Model{
		src:  src,
		opts: opts,
		keys: keymap.New(
			keymap.WithChordTimeout(opts.ChordTimeout),
			keymap.WithWatchTerm(opts.WatchTerm),
			keymap.WithClock(opts.Clock),
		),
		engine:  NewEngine(0, 1, opts.Live),
		painter: DefaultPainter(opts.Shades),
		help:    help.New(),
		conv:    src.Conversation(),
		dirty:   true,
	}
	m.engine.SetFade(opts.Fade)
	m.engine.SetWatch(opts.WatchTerm)
	m.engine.Replace(display.Render(m.conv, opts.Render))
	if opts.Marks != nil {
		m.marked = opts.Marks.IsMarked(opts.SessionID)
	}
	return m
}

// Engine exposes the view state.
func (m *Model) Engine() *Engine { return m.engine }

// Triggered returns the line that matched the tripwire, if any.
func (m *Model) Triggered() (string, bool) {
	return m.triggered, m.triggered != ""
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the tick loop.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Keys are buffered and handled on the next tick.
		m.pending = append(m.pending, msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.engine.SetSize(msg.Width, msg.Height-1)
		m.dirty = true
		return m, nil

	case tickMsg:
		return m.onTick(time.Time(msg))
	}
	return m, nil
}

func (m *Model) onTick(now time.Time) (tea.Model, tea.Cmd) {
	m.ticks++
	var cmds []tea.Cmd

	if len(m.pending) > 0 {
		m.dirty = true
	}
	for _, k := range m.pending {
		cmds = append(cmds, m.applyAll(m.keys.Process(k))...)
	}
	m.pending = m.pending[:0]
	cmds = append(cmds, m.applyAll(m.keys.Flush(now))...)

	if m.opts.Live {
		if m.ticks%m.opts.PollEvery == 0 || m.src.Woken() {
			m.ingest(m.src.Poll(), now)
		}
		m.src.Tick(now)
		if thinking := m.src.IsThinking(); thinking || thinking != m.thinking {
			m.thinking = thinking
			m.dirty = true
		}
	}
	if m.engine.Animating(now) {
		m.dirty = true
	}

	if m.quitting || m.triggered != "" {
		if len(cmds) == 0 {
			return m, tea.Quit
		}
		return m, tea.Sequence(tea.Batch(cmds...), tea.Quit)
	}
	cmds = append(cmds, m.tick())
	return m, tea.Batch(cmds...)
}

// ingest installs a batch. Only entries that arrive after the pager opened
// are checked against the tripwire.
func (m *Model) ingest(b transcript.Batch, now time.Time) {
	if len(b.New) == 0 {
		return
	}
	m.conv = b.Conversation
	if line, ok := m.opts.Tripwire.CheckAll(b.New); ok {
		logger.WithField("line", line).Debug("Watch pattern matched")
		m.triggered = line
	}
	m.engine.Append(display.Render(m.conv, m.opts.Render), now)
	m.dirty = true
}

func (m *Model) applyAll(events []keymap.Event) []tea.Cmd {
	var cmds []tea.Cmd
	for _, ev := range events {
		if cmd := m.apply(ev); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(events) > 0 {
		m.dirty = true
	}
	return cmds
}

func (m *Model) apply(ev keymap.Event) tea.Cmd {
	e := m.engine
	m.flash = ""
	switch ev.Action {
	case keymap.ActionQuit:
		m.quitting = true
	case keymap.ActionScrollDown:
		e.ScrollDown(1)
	case keymap.ActionScrollUp:
		e.ScrollUp(1)
	case keymap.ActionHalfPageDown:
		e.HalfPageDown()
	case keymap.ActionHalfPageUp:
		e.HalfPageUp()
	case keymap.ActionPageDown:
		e.PageDown()
	case keymap.ActionPageUp:
		e.PageUp()
	case keymap.ActionTop:
		e.Top()
	case keymap.ActionBottom:
		e.Bottom()
	case keymap.ActionNextTurn:
		e.NextTurn()
	case keymap.ActionPrevTurn:
		e.PrevTurn()
	case keymap.ActionNextMatch:
		e.NextMatch()
	case keymap.ActionPrevMatch:
		e.PrevMatch()
	case keymap.ActionClearSearch:
		e.ClearSearch()
	case keymap.ActionSearchCommit:
		if !e.Search(ev.Term) {
			m.flash = "Pattern not found: " + ev.Term
		}
	case keymap.ActionWatchCommit:
		e.SetWatch(ev.Term)
	case keymap.ActionToggleFollow:
		e.ToggleFollow()
	case keymap.ActionToggleToolDetail:
		m.opts.Render.ShowToolDetail = !m.opts.Render.ShowToolDetail
		e.Replace(display.Render(m.conv, m.opts.Render))
	case keymap.ActionToggleThinking:
		m.opts.Render.ShowThinking = !m.opts.Render.ShowThinking
		e.Replace(display.Render(m.conv, m.opts.Render))
	case keymap.ActionToggleMark:
		m.toggleMark()
	case keymap.ActionYank:
		if text := e.YankText(); text != "" {
			m.flash = "Copied to clipboard"
			return copyCmd(text)
		}
	}
	return nil
}

func (m *Model) toggleMark() {
	if m.opts.Marks == nil || m.opts.SessionID == "" {
		return
	}
	marked, err := m.opts.Marks.Toggle(m.opts.SessionID)
	if err != nil {
		logger.WithError(err).Debug("Failed to toggle bookmark")
		m.flash = "Bookmark not saved"
		return
	}
	m.marked = marked
}

// copyCmd writes text to the clipboard with an OSC 52 sequence.
func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		seq := osc52.New(text).Limit(100 * 1024)
		termName := strings.ToLower(os.Getenv("TERM"))
		if os.Getenv("TMUX") != "" || strings.HasPrefix(termName, "tmux") {
			seq = seq.Tmux()
		} else if strings.HasPrefix(termName, "screen") {
			seq = seq.Screen()
		}
		_, _ = seq.WriteTo(os.Stdout)
		return nil
	}
}

// View returns the current frame, re-rendering only when something changed.
func (m *Model) View() string {
	if !m.dirty && m.frame != "" {
		return m.frame
	}
	now := m.opts.Clock()

	var body string
	if m.keys.Mode() == keymap.ModeHelp {
		body = lipgloss.Place(m.width, m.engine.Height(), lipgloss.Center, lipgloss.Center,
			m.help.FullHelpView(m.keys.Bindings.FullHelp()))
	} else {
		body = m.painter.Body(m.engine, now)
	}
	m.frame = body + "\n" + m.statusLine(now)
	m.dirty = false
	return m.frame
}

func (m *Model) statusLine(now time.Time) string {
	colors := theme.DefaultColors
	muted := lipgloss.NewStyle().Foreground(colors.MutedText)

	switch m.keys.Mode() {
	case keymap.ModeSearch:
		return "/" + m.keys.Term()
	case keymap.ModeWatch:
		return "watch: " + m.keys.Term()
	}

	var parts []string
	if id := m.opts.SessionID; id != "" {
		if len(id) > 8 {
			id = id[:8]
		}
		parts = append(parts, id)
	}
	parts = append(parts, fmt.Sprintf("turn %d/%d", m.engine.TopTurn(), m.engine.TurnCount()))

	if m.engine.Following() {
		parts = append(parts, lipgloss.NewStyle().Foreground(colors.Green).Render("FOLLOW"))
	} else {
		parts = append(parts, lipgloss.NewStyle().Foreground(colors.Yellow).Render("PAUSED"))
	}

	if m.thinking {
		since := m.src.ThinkingSince()
		frames := spinner.MiniDot.Frames
		frame := frames[int(now.Sub(since)/spinner.MiniDot.FPS)%len(frames)]
		parts = append(parts, fmt.Sprintf("%s thinking %ds", frame, int(now.Sub(since).Seconds())))
	}

	if cur, total := m.engine.Matches(); total > 0 {
		parts = append(parts, fmt.Sprintf("match %d/%d", cur+1, total))
	}
	if term := m.engine.WatchTerm(); term != "" {
		parts = append(parts, "watch: "+term)
	}
	if m.conv != nil {
		u := m.conv.Usage()
		parts = append(parts, fmt.Sprintf("%s in · %s out", formatTokens(u.InputTokens+u.CacheReadInputTokens+u.CacheCreationInputTokens), formatTokens(u.OutputTokens)))
	}
	if m.marked {
		parts = append(parts, lipgloss.NewStyle().Foreground(colors.Yellow).Render("★"))
	}
	if m.flash != "" {
		parts = append(parts, m.flash)
	}
	return muted.Render(strings.Join(parts, " │ ")) + "  " + muted.Render(m.help.ShortHelpView(m.keys.Bindings.ShortHelp()))
}

func formatTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
