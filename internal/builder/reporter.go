package builder

import "sync"

// Level classifies a log entry.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
	LevelCancel
	LevelSuccess
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelCancel:
		return "cancel"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// Entry is one human-readable log line.
type Entry struct {
	Level   Level
	Message string
}

// Reporter receives progress and log events from a run. Implementations
// are called from the goroutine executing the run.
type Reporter interface {
	Progress(percent int, status string)
	Log(e Entry)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Progress(int, string) {}
func (NopReporter) Log(Entry)            {}

// EventKind tells progress and log events apart.
type EventKind int

const (
	EventProgress EventKind = iota
	EventLog
)

// Event is a Reporter call captured as a value.
type Event struct {
	Kind    EventKind
	Percent int
	Status  string
	Entry   Entry
}

// ChannelReporter forwards events onto a buffered channel without stalling
// the run. Progress events are dropped once the buffer is three quarters full
// or log entries are waiting; log entries that do not fit are held back and
// delivered in order as room appears. Close flushes held entries, so the
// consumer must keep reading until the channel is closed.
type ChannelReporter struct {
	ch            chan Event
	progressLimit int

	mu      sync.Mutex
	pending []Event
	closed  bool
}

// NewChannelReporter creates a reporter with the given buffer size.
func NewChannelReporter(buffer int) *ChannelReporter {
	if buffer <= 0 {
		buffer = 256
	}
	limit := buffer - max(1, buffer/4)
	return &ChannelReporter{ch: make(chan Event, buffer), progressLimit: max(1, limit)}
}

// Events returns the receive side of the channel.
func (c *ChannelReporter) Events() <-chan Event {
	return c.ch
}

// Close delivers held log entries and closes the channel. Later events are
// discarded.
func (c *ChannelReporter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, e := range c.pending {
		c.ch <- e
	}
	c.pending = nil
	close(c.ch)
}

// flushLocked moves held entries onto the channel while it has room and
// reports whether none are left.
func (c *ChannelReporter) flushLocked() bool {
	for len(c.pending) > 0 {
		select {
		case c.ch <- c.pending[0]:
			c.pending = c.pending[1:]
		default:
			return false
		}
	}
	return true
}

func (c *ChannelReporter) Progress(percent int, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.flushLocked() || len(c.ch) >= c.progressLimit {
		return
	}
	select {
	case c.ch <- Event{Kind: EventProgress, Percent: percent, Status: status}:
	default:
	}
}

func (c *ChannelReporter) Log(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	ev := Event{Kind: EventLog, Entry: e}
	if c.flushLocked() {
		select {
		case c.ch <- ev:
			return
		default:
		}
	}
	c.pending = append(c.pending, ev)
}
