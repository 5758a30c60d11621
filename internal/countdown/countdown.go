// Package countdown implements the session clock: a remaining-seconds
// counter that is decremented by ticks and raises an expiry callback when
// it reaches zero.
//
// The timer holds no goroutines. The host delivers ticks, usually through
// the Bubble Tea adapter (Cmd and TickMsg). Every Start issues a new tag and
// ticks carrying an older tag are dropped, so a restart never leaves a
// second tick source running.
package countdown

import (
	"fmt"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
)

// DefaultInterval is the wall-clock time between ticks.
const DefaultInterval = time.Second

var lastID atomic.Int64

func nextID() int {
	return int(lastID.Add(1))
}

// TickMsg is delivered to the Bubble Tea program once per interval while
// the timer runs.
type TickMsg struct {
	// ID identifies the timer that scheduled this tick.
	ID int

	// Tag identifies the Start call that scheduled this tick.
	Tag uint64
}

// Timer counts down whole seconds.
type Timer struct {
	id        int
	interval  time.Duration
	remaining int
	running   bool
	expired   bool
	tag       uint64
	onExpire  func()
}

// Option configures a Timer.
type Option func(*Timer)

// WithInterval overrides DefaultInterval. Tests use a short interval.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// New creates a stopped timer. onExpire may be nil.
func New(onExpire func(), opts ...Option) *Timer {
	t := &Timer{
		id:       nextID(),
		interval: DefaultInterval,
		onExpire: onExpire,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the timer's unique id.
func (t *Timer) ID() int { return t.id }

// Tag returns the tag of the most recent Start.
func (t *Timer) Tag() uint64 { return t.tag }

// Remaining returns the seconds left on the clock.
func (t *Timer) Remaining() int { return t.remaining }

// Running reports whether ticks are currently accepted.
func (t *Timer) Running() bool { return t.running }

// Expired reports whether the current run reached zero.
func (t *Timer) Expired() bool { return t.expired }

// Start (re)starts the countdown from seconds. Any tick scheduled by an
// earlier Start becomes stale. A non-positive duration expires immediately.
func (t *Timer) Start(seconds int) uint64 {
	t.tag++
	t.expired = false
	if seconds <= 0 {
		t.remaining = 0
		t.running = false
		t.expire()
		return t.tag
	}
	t.remaining = seconds
	t.running = true
	return t.tag
}

// Stop halts the countdown. Calling Stop on a stopped timer is a no-op.
func (t *Timer) Stop() {
	t.running = false
}

// Tick consumes one elapsed second. Ticks for another Start, or arriving
// while stopped, are ignored. It reports whether another tick should be
// scheduled.
func (t *Timer) Tick(tag uint64) bool {
	if !t.running || tag != t.tag {
		return false
	}
	t.remaining--
	if t.remaining <= 0 {
		t.remaining = 0
		t.running = false
		t.expire()
		return false
	}
	return true
}

func (t *Timer) expire() {
	if t.expired {
		return
	}
	t.expired = true
	if t.onExpire != nil {
		t.onExpire()
	}
}

// Cmd schedules the next tick for the current run. It returns nil when the
// timer is stopped.
func (t *Timer) Cmd() tea.Cmd {
	if !t.running {
		return nil
	}
	id, tag := t.id, t.tag
	return tea.Tick(t.interval, func(time.Time) tea.Msg {
		return TickMsg{ID: id, Tag: tag}
	})
}

// Owns reports whether msg was scheduled by this timer (for any run).
func (t *Timer) Owns(msg TickMsg) bool {
	return msg.ID == t.id
}

// Format renders seconds as H:MM:SS, or M:SS below one hour.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
