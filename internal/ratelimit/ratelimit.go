package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// LimitError is returned when a window budget is exhausted.
type LimitError struct {
	Window string
	Limit  int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d requests per %s", e.Limit, e.Window)
}

// Limiter caps call volume across two rolling windows, per-minute and
// per-day. Each window zeroes its counter once its interval has fully
// elapsed since the last reset. Counter updates are guarded by a mutex
// since tool calls run on their own goroutines.
type Limiter struct {
	mu  sync.Mutex
	now func() time.Time

	perMinute int
	perDay    int

	minute          int
	day             int
	lastMinuteReset time.Time
	lastDayReset    time.Time
}

func New(perMinute, perDay int) *Limiter {
	return NewWithClock(perMinute, perDay, time.Now)
}

// NewWithClock builds a limiter with an injected time source for tests.
func NewWithClock(perMinute, perDay int, clock func() time.Time) *Limiter {
	t := clock()
	return &Limiter{
		now:             clock,
		perMinute:       perMinute,
		perDay:          perDay,
		lastMinuteReset: t,
		lastDayReset:    t,
	}
}

// Allow rolls over any expired window, then either refuses the call
// (leaving the counters untouched) or counts it against both windows.
func (l *Limiter) Allow() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastMinuteReset) >= time.Minute {
		l.minute = 0
		l.lastMinuteReset = now
	}
	if now.Sub(l.lastDayReset) >= 24*time.Hour {
		l.day = 0
		l.lastDayReset = now
	}

	if l.minute >= l.perMinute {
		return &LimitError{Window: "minute", Limit: l.perMinute}
	}
	if l.day >= l.perDay {
		return &LimitError{Window: "day", Limit: l.perDay}
	}

	l.minute++
	l.day++
	return nil
}

// SeedDay preloads the day counter, so a restarted server does not
// forget budget already spent within the current day window.
func (l *Limiter) SeedDay(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > l.day {
		l.day = n
	}
}

// Snapshot reports the current counter values.
func (l *Limiter) Snapshot() (minute, day int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.minute, l.day
}
