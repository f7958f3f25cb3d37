package viewer

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// SinkKind selects where the module's diagnostic text goes.
type SinkKind string

const (
	SinkNone      SinkKind = "none"
	SinkCollector SinkKind = "collector"
)

// ParseSinkKind parses a configured sink name. The empty string means SinkNone.
func ParseSinkKind(s string) (SinkKind, error) {
	switch SinkKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", SinkNone:
		return SinkNone, nil
	case SinkCollector:
		return SinkCollector, nil
	default:
		return "", fmt.Errorf("unknown diagnostics sink %q (use %q or %q)", s, SinkNone, SinkCollector)
	}
}

// DiagnosticSink receives the text the external module writes to its
// standard output and error streams.
type DiagnosticSink interface {
	Print(line string)
	PrintErr(line string)
}

// NopSink drops everything.
type NopSink struct{}

func (NopSink) Print(string)    {}
func (NopSink) PrintErr(string) {}

// Stream identifies which module stream a line came from.
type Stream string

const (
	StreamOut Stream = "out"
	StreamErr Stream = "err"
)

// Line is one collected diagnostic line.
type Line struct {
	Stream Stream    `json:"stream"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// DefaultCollectorLimit bounds how many lines a Collector keeps.
const DefaultCollectorLimit = 1000

// Collector keeps the most recent diagnostic lines in memory and optionally
// forwards each one as it arrives.
type Collector struct {
	mu      sync.Mutex
	lines   []Line
	limit   int
	forward func(Line)
	now     func() time.Time
}

// NewCollector returns a Collector keeping at most limit lines.
// A non-positive limit means DefaultCollectorLimit.
func NewCollector(limit int) *Collector {
	if limit <= 0 {
		limit = DefaultCollectorLimit
	}
	return &Collector{limit: limit, now: time.Now}
}

// Forward installs fn to be called, outside the lock, for every new line.
func (c *Collector) Forward(fn func(Line)) {
	c.mu.Lock()
	c.forward = fn
	c.mu.Unlock()
}

func (c *Collector) Print(line string)    { c.add(StreamOut, line) }
func (c *Collector) PrintErr(line string) { c.add(StreamErr, line) }

func (c *Collector) add(stream Stream, text string) {
	l := Line{Stream: stream, Text: text, At: c.now().UTC()}

	c.mu.Lock()
	if len(c.lines) >= c.limit {
		// drop the oldest
		copy(c.lines, c.lines[1:])
		c.lines = c.lines[:len(c.lines)-1]
	}
	c.lines = append(c.lines, l)
	fwd := c.forward
	c.mu.Unlock()

	Logger().Debug("module output", "stream", stream, "text", text)
	if fwd != nil {
		fwd(l)
	}
}

// Lines returns a copy of the collected lines, oldest first.
func (c *Collector) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines currently held.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// NewSink builds the sink for a configured kind.
func NewSink(kind SinkKind, limit int) DiagnosticSink {
	if kind == SinkCollector {
		return NewCollector(limit)
	}
	return NopSink{}
}
