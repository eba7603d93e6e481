package search

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDebounce is the quiet period before a typed value is committed.
const DefaultDebounce = 500 * time.Millisecond

// Tag identifies one pushed value. Only the newest tag can settle.
type Tag uint64

// SettleMsg is delivered when the quiet period for a tag has elapsed.
type SettleMsg struct {
	Tag Tag
}

// Debouncer turns a rapidly changing raw value into a committed value that
// only changes after the raw value has been stable for Delay.
//
// It holds no timers itself: each Push hands back a tag, the caller arranges
// for Settle(tag) after Delay (Cmd does this for Bubble Tea), and stale tags
// are ignored.
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	latest    Tag
	pending   string
	committed string
	primed    bool
}

// NewDebouncer returns a Debouncer with the given delay, DefaultDebounce when zero.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Push records value as the newest raw value and returns its tag.
func (d *Debouncer) Push(value string) Tag {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.latest++
	d.pending = value
	return d.latest
}

// Prime commits value immediately, as if it had settled.
func (d *Debouncer) Prime(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.committed = value
	d.pending = value
	d.primed = true
}

// Settle commits the pending value when tag is still the newest tag and the
// value differs from the last committed one.
func (d *Debouncer) Settle(tag Tag) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if tag != d.latest {
		return "", false
	}
	if d.primed && d.pending == d.committed {
		return "", false
	}
	d.committed = d.pending
	d.primed = true
	return d.committed, true
}

// Committed returns the last committed value.
func (d *Debouncer) Committed() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.committed
}

// Cmd schedules the SettleMsg for tag after the quiet period.
func (d *Debouncer) Cmd(tag Tag) tea.Cmd {
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return SettleMsg{Tag: tag}
	})
}
