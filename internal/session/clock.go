package session

import (
	"fmt"
	"sync"
	"time"
)

// Countdown is the session's repeating one-second timer. Each tick decrements
// the remaining seconds; when the value reaches zero the expiry callback
// fires exactly once and the timer stops itself. Late ticks delivered after
// expiry (scheduling jitter) are absorbed — the expired latch is checked and
// set inside the same locked step as the decrement, so a second expiry signal
// cannot be emitted under any interleaving.
//
// Callbacks are invoked outside the countdown lock, so they may safely call
// back into Stop.
type Countdown struct {
	period   time.Duration
	onTick   func(remaining int)
	onExpire func()

	mu        sync.Mutex
	remaining int
	stopCh    chan struct{}
	stopped   bool
	expired   bool
}

// NewCountdown creates a countdown of the given length in seconds with the
// standard one-second period. Callbacks may be nil.
func NewCountdown(seconds int, onTick func(remaining int), onExpire func()) *Countdown {
	return newCountdown(seconds, time.Second, onTick, onExpire)
}

func newCountdown(seconds int, period time.Duration, onTick func(int), onExpire func()) *Countdown {
	return &Countdown{
		period:    period,
		onTick:    onTick,
		onExpire:  onExpire,
		remaining: seconds,
		stopCh:    make(chan struct{}),
	}
}

// Start launches the tick loop. Call at most once.
func (c *Countdown) Start() {
	go c.run()
}

func (c *Countdown) run() {
	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			if done := c.tick(); done {
				return
			}
		}
	}
}

// tick performs one decrement step and reports whether the loop should exit.
// Split out so tests can drive the countdown without real time.
func (c *Countdown) tick() bool {
	c.mu.Lock()
	if c.stopped || c.expired {
		c.mu.Unlock()
		return true
	}
	if c.remaining > 0 {
		c.remaining--
	}
	remaining := c.remaining
	expire := remaining == 0
	if expire {
		c.expired = true
	}
	onTick, onExpire := c.onTick, c.onExpire
	c.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
	if expire {
		if onExpire != nil {
			onExpire()
		}
		return true
	}
	return false
}

// Stop cancels the countdown. Idempotent; safe after expiry and safe to call
// from inside the expiry callback.
func (c *Countdown) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.stopCh)
	}
	c.mu.Unlock()
}

// Remaining returns the current remaining seconds.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Expired reports whether the expiry callback has fired.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// FormatClock renders seconds as a zero-padded MM:SS display string.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
