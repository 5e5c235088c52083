package transcript

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	grovelogging "github.com/grovetools/core/logging"
	"github.com/sirupsen/logrus"
)

// DefaultThinkingWindow is how recently the file must have grown for the
// assistant to be considered thinking.
const DefaultThinkingWindow = 5 * time.Second

// Batch is the result of one poll: the entries that arrived and a snapshot
// of the conversation rebuilt from every entry seen so far. Neither is
// modified by later polls.
type Batch struct {
	New          []Entry
	Conversation *Conversation
}

// Tailer incrementally reads a growing transcript file. It is the only owner
// of the accumulated entry list and must be driven from a single goroutine.
type Tailer struct {
	path           string
	decoder        Decoder
	now            func() time.Time
	thinkingWindow time.Duration
	useWatcher     bool
	logger         *logrus.Entry

	primed     bool
	offset     int64
	lastSize   int64
	lastGrowth time.Time
	entries    []Entry
	conv       *Conversation

	thinking      bool
	thinkingSince time.Time

	watcher *fsnotify.Watcher
}

// TailOption configures a Tailer.
type TailOption func(*Tailer)

// WithClock sets the clock used for thinking-state decisions.
func WithClock(now func() time.Time) TailOption {
	return func(t *Tailer) { t.now = now }
}

// WithTailDecoder sets the line decoder. The default is chosen from the path.
func WithTailDecoder(d Decoder) TailOption {
	return func(t *Tailer) { t.decoder = d }
}

// WithThinkingWindow overrides DefaultThinkingWindow.
func WithThinkingWindow(d time.Duration) TailOption {
	return func(t *Tailer) { t.thinkingWindow = d }
}

// WithoutWatcher disables the fsnotify wake-up; the tailer then relies on
// polling alone.
func WithoutWatcher() TailOption {
	return func(t *Tailer) { t.useWatcher = false }
}

// OpenTail prepares to tail path. Nothing is read until the first Poll.
func OpenTail(path string, opts ...TailOption) (*Tailer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat transcript: %w", err)
	}

	t := &Tailer{
		path:           path,
		now:            time.Now,
		thinkingWindow: DefaultThinkingWindow,
		useWatcher:     true,
		logger:         grovelogging.NewLogger("agentview.tail"),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.decoder == nil {
		t.decoder = DecoderFor(ProviderForPath(path), t.now)
	}
	t.conv = NewConversation("", nil)

	if t.useWatcher {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			t.logger.WithError(err).Debug("File watcher unavailable, polling only")
		} else if err := w.Add(path); err != nil {
			t.logger.WithError(err).Debug("Failed to watch transcript, polling only")
			w.Close()
		} else {
			t.watcher = w
		}
	}

	return t, nil
}

// Path returns the tailed file path.
func (t *Tailer) Path() string {
	return t.path
}

// Poll reads any newly completed lines. It never blocks on the writer and
// never returns an error: I/O failures are retried on the next call.
func (t *Tailer) Poll() Batch {
	now := t.now()
	decoded, err := t.readNew(now)
	if err != nil {
		t.logger.WithError(err).Debug("Transient read failure, retrying next poll")
	}

	if len(decoded) == 0 {
		t.updateThinking(now)
		return Batch{Conversation: t.conv}
	}

	prev := len(t.entries)
	combined := make([]Entry, 0, prev+len(decoded))
	combined = append(combined, t.entries...)
	combined = append(combined, decoded...)
	combined = ResolveToolNames(combined)
	combined = SuppressDuplicateUsage(combined)

	t.entries = combined
	t.conv = NewConversation(t.conv.SessionID, combined)
	t.updateThinking(now)

	t.logger.WithFields(logrus.Fields{
		"new":    len(decoded),
		"total":  len(combined),
		"offset": t.offset,
	}).Debug("Ingested transcript lines")

	return Batch{New: combined[prev:], Conversation: t.conv}
}

// readNew reads complete lines appended since the last call. A trailing line
// without a newline is left in the file for the next call.
func (t *Tailer) readNew(now time.Time) ([]Entry, error) {
	info, err := os.Stat(t.path)
	if err != nil {
		return nil, err
	}
	size := info.Size()
	switch {
	case !t.primed:
		// History already on disk counts as activity only if recently written.
		t.primed = true
		if size > 0 {
			t.lastGrowth = info.ModTime()
		}
	case size > t.lastSize:
		t.lastGrowth = now
	}
	t.lastSize = size
	if size <= t.offset {
		return nil, nil
	}

	f, err := os.Open(t.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, size-t.offset)
	n, err := f.ReadAt(buf, t.offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	buf = buf[:n]

	end := bytes.LastIndexByte(buf, '\n')
	if end < 0 {
		return nil, nil
	}
	complete := buf[:end+1]
	t.offset += int64(len(complete))

	var out []Entry
	for len(complete) > 0 {
		i := bytes.IndexByte(complete, '\n')
		line := bytes.TrimSpace(complete[:i])
		complete = complete[i+1:]
		if len(line) == 0 {
			continue
		}
		entry, err := t.decoder.DecodeLine(line)
		if err != nil || entry == nil {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// Tick re-evaluates the thinking state without reading the file, so it
// decays between polls.
func (t *Tailer) Tick(now time.Time) {
	t.updateThinking(now)
}

func (t *Tailer) updateThinking(now time.Time) {
	active := !t.lastGrowth.IsZero() && now.Sub(t.lastGrowth) <= t.thinkingWindow && awaitingAnswer(t.entries)
	switch {
	case active && !t.thinking:
		t.thinking = true
		t.thinkingSince = now
	case !active:
		t.thinking = false
		t.thinkingSince = time.Time{}
	}
}

// awaitingAnswer reports whether the last non-metadata entry shows the
// assistant has not produced visible output yet.
func awaitingAnswer(entries []Entry) bool {
	for i := len(entries) - 1; i >= 0; i-- {
		switch v := entries[i].(type) {
		case *MetadataEntry:
			continue
		case *UserEntry:
			return true
		case *AssistantEntry:
			return v.Text == "" && len(v.ToolUses) == 0
		default:
			return false
		}
	}
	return false
}

// IsThinking reports whether the assistant appears to be working on a reply.
func (t *Tailer) IsThinking() bool {
	return t.thinking
}

// ThinkingSince returns when the current thinking period started, or the
// zero time when not thinking.
func (t *Tailer) ThinkingSince() time.Time {
	return t.thinkingSince
}

// Woken drains pending file-change notifications and reports whether any
// write happened since the last call.
func (t *Tailer) Woken() bool {
	if t.watcher == nil {
		return false
	}
	woke := false
	for {
		select {
		case ev, ok := <-t.watcher.Events:
			if !ok {
				return woke
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				woke = true
			}
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return woke
			}
			t.logger.WithError(err).Debug("File watcher error")
		default:
			return woke
		}
	}
}

// Conversation returns the latest conversation snapshot.
func (t *Tailer) Conversation() *Conversation {
	return t.conv
}

// Entries returns every entry ingested so far.
func (t *Tailer) Entries() []Entry {
	return t.entries
}

// Offset returns the number of bytes consumed.
func (t *Tailer) Offset() int64 {
	return t.offset
}

// Close releases the file watcher.
func (t *Tailer) Close() error {
	if t.watcher != nil {
		return t.watcher.Close()
	}
	return nil
}
