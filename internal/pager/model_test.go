package pager

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/agentview/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	conv     *transcript.Conversation
	batches  []transcript.Batch
	thinking bool
	polls    int
}

func (f *fakeSource) Poll() transcript.Batch {
	f.polls++
	if len(f.batches) == 0 {
		return transcript.Batch{Conversation: f.conv}
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	f.conv = b.Conversation
	return b
}

func (f *fakeSource) Tick(time.Time)                         {}
func (f *fakeSource) IsThinking() bool                       { return f.thinking }
func (f *fakeSource) ThinkingSince() time.Time               { return t0 }
func (f *fakeSource) Woken() bool                            { return false }
func (f *fakeSource) Conversation() *transcript.Conversation { return f.conv }

func header(id string, offset time.Duration) transcript.Header {
	return transcript.Header{ID: id, SessionID: "s1", Timestamp: t0.Add(offset)}
}

// sampleEntries builds n user/assistant exchanges.
func sampleEntries(n int) []transcript.Entry {
	var out []transcript.Entry
	for i := 0; i < n; i++ {
		out = append(out,
			&transcript.UserEntry{Header: header(fmt.Sprintf("u%d", i), time.Duration(i)*time.Minute), Text: fmt.Sprintf("question %d", i)},
			&transcript.AssistantEntry{Header: header(fmt.Sprintf("a%d", i), time.Duration(i)*time.Minute+time.Second), Text: fmt.Sprintf("answer %d\nwith a second line", i)},
		)
	}
	return out
}

func newTestModel(t *testing.T, src *fakeSource, opts Options) *Model {
	t.Helper()
	opts.SessionID = "s1"
	opts.Clock = func() time.Time { return t0 }
	opts.PollEvery = 1
	m := New(src, opts)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 6})
	return m
}

func tick(m *Model) tea.Cmd {
	_, cmd := m.Update(tickMsg(t0))
	return cmd
}

func press(m *Model, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
	}
}

func runeMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModelKeysWaitForTick(t *testing.T) {
	src := &fakeSource{conv: transcript.NewConversation("s1", sampleEntries(5))}
	m := newTestModel(t, src, Options{})
	require.Equal(t, 0, m.Engine().Offset())
	require.False(t, m.Engine().Following())

	press(m, runeMsg('G'))
	assert.Equal(t, 0, m.Engine().Offset(), "keys are applied on the next tick")

	tick(m)
	assert.True(t, m.Engine().Following())
	assert.Equal(t, len(m.Engine().Lines())-5, m.Engine().Offset())
}

func TestModelTripwireQuits(t *testing.T) {
	initial := sampleEntries(1)
	initial = append(initial, &transcript.AssistantEntry{Header: header("old", 2*time.Second), Text: "earlier DONE"})
	src := &fakeSource{conv: transcript.NewConversation("s1", initial)}
	m := newTestModel(t, src, Options{Live: true, Tripwire: NewTripwire("DONE")})

	cmd := tick(m)
	_, fired := m.Triggered()
	assert.False(t, fired, "history does not trip the wire")
	require.NotNil(t, cmd)

	done := &transcript.AssistantEntry{Header: header("a-new", time.Hour), Text: "Build DONE"}
	entries := append(append([]transcript.Entry{}, initial...), done)
	src.batches = append(src.batches, transcript.Batch{
		New:          []transcript.Entry{done},
		Conversation: transcript.NewConversation("s1", entries),
	})

	cmd = tick(m)
	line, fired := m.Triggered()
	assert.True(t, fired)
	assert.Equal(t, "Build DONE", line)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelStaticViewDoesNotPoll(t *testing.T) {
	initial := sampleEntries(1)
	src := &fakeSource{conv: transcript.NewConversation("s1", initial), thinking: true}
	m := newTestModel(t, src, Options{Tripwire: NewTripwire("DONE")})
	before := len(m.Engine().Lines())

	done := &transcript.AssistantEntry{Header: header("a-new", time.Hour), Text: "Build DONE"}
	src.batches = append(src.batches, transcript.Batch{
		New:          []transcript.Entry{done},
		Conversation: transcript.NewConversation("s1", append(append([]transcript.Entry{}, initial...), done)),
	})

	for i := 0; i < 3; i++ {
		tick(m)
	}
	assert.Equal(t, 0, src.polls)
	assert.Len(t, m.Engine().Lines(), before)
	_, fired := m.Triggered()
	assert.False(t, fired)
	assert.NotContains(t, m.View(), "thinking")
}

func TestModelViewIsCached(t *testing.T) {
	src := &fakeSource{conv: transcript.NewConversation("s1", sampleEntries(2))}
	m := newTestModel(t, src, Options{})

	first := m.View()
	assert.False(t, m.dirty)
	assert.Contains(t, first, "question 0")
	assert.Contains(t, first, "PAUSED")

	tick(m)
	assert.False(t, m.dirty, "an idle tick does not invalidate the frame")
	assert.Equal(t, first, m.View())

	press(m, runeMsg('j'))
	tick(m)
	assert.True(t, m.dirty)
}

func TestModelSearchAndHelp(t *testing.T) {
	src := &fakeSource{conv: transcript.NewConversation("s1", sampleEntries(4))}
	m := newTestModel(t, src, Options{})

	press(m, runeMsg('/'), runeMsg('a'), runeMsg('n'), runeMsg('s'))
	tick(m)
	assert.Contains(t, m.View(), "/ans")

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	tick(m)
	_, total := m.Engine().Matches()
	assert.Equal(t, 4, total)
	assert.Contains(t, m.View(), "match 1/4")

	press(m, runeMsg('?'))
	tick(m)
	assert.Contains(t, m.View(), "go to bottom")
	press(m, runeMsg('x'))
	tick(m)
	assert.NotContains(t, m.View(), "go to bottom")
}

func TestModelTogglesReRender(t *testing.T) {
	entries := []transcript.Entry{
		&transcript.UserEntry{Header: header("u1", 0), Text: "think first"},
		&transcript.AssistantEntry{
			Header:    header("a1", time.Second),
			Reasoning: []transcript.ReasoningBlock{{Text: "secret plan", CharCount: 11}},
			Blocks:    []transcript.ContentBlock{transcript.ReasoningBlock{Text: "secret plan", CharCount: 11}},
		},
	}
	src := &fakeSource{conv: transcript.NewConversation("s1", entries)}
	m := newTestModel(t, src, Options{})
	assert.NotContains(t, m.View(), "secret plan")
	assert.Contains(t, m.View(), "(11 chars)")

	press(m, runeMsg('r'))
	tick(m)
	assert.Contains(t, m.View(), "secret plan")
}

func TestModelQuit(t *testing.T) {
	src := &fakeSource{conv: transcript.NewConversation("s1", sampleEntries(1))}
	m := newTestModel(t, src, Options{})
	press(m, runeMsg('q'))
	cmd := tick(m)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

type memMarks map[string]bool

func (s memMarks) IsMarked(id string) bool { return s[id] }
func (s memMarks) Toggle(id string) (bool, error) {
	s[id] = !s[id]
	return s[id], nil
}

func TestModelToggleMark(t *testing.T) {
	store := memMarks{}
	src := &fakeSource{conv: transcript.NewConversation("s1", sampleEntries(1))}
	m := newTestModel(t, src, Options{Marks: store})
	assert.NotContains(t, m.View(), "★")

	press(m, runeMsg('m'))
	tick(m)
	assert.True(t, store["s1"])
	assert.Contains(t, m.View(), "★")
}
