package agentlogs

import (
	"context"
	"sync"
	"time"

	"github.com/grovetools/agentview/internal/transcript"
)

// Update is one delivery from a Monitor: the entries appended since the
// previous update and the conversation as it now stands.
type Update struct {
	New          []Entry
	Conversation *Conversation
	Thinking     bool
}

// Monitor polls a transcript and delivers updates on a channel.
type Monitor struct {
	tailer   *transcript.Tailer
	interval time.Duration
	updates  chan Update

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor opens the transcript at path. The first update carries the
// existing contents.
func NewMonitor(path string, checkInterval time.Duration) (*Monitor, error) {
	tailer, err := transcript.OpenTail(path)
	if err != nil {
		return nil, err
	}
	if checkInterval <= 0 {
		checkInterval = 500 * time.Millisecond
	}
	return &Monitor{
		tailer:   tailer,
		interval: checkInterval,
		updates:  make(chan Update, 16),
	}, nil
}

// Updates returns the channel updates are delivered on. It is closed when
// the monitor stops.
func (m *Monitor) Updates() <-chan Update {
	return m.updates
}

// Start begins polling until ctx is cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go m.loop(ctx)
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()
	defer close(m.updates)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	first := true
	for {
		b := m.tailer.Poll()
		if first || len(b.New) > 0 {
			first = false
			u := Update{New: b.New, Conversation: b.Conversation, Thinking: m.tailer.IsThinking()}
			select {
			case m.updates <- u:
			case <-ctx.Done():
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop halts polling and releases the transcript.
func (m *Monitor) Stop() error {
	if m.cancel != nil {
		m.cancel()
		m.wg.Wait()
	}
	return m.tailer.Close()
}
