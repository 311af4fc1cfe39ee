package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownTickDecrements(t *testing.T) {
	var ticks []int
	c := newCountdown(3, time.Second, func(remaining int) {
		ticks = append(ticks, remaining)
	}, nil)

	assert.False(t, c.tick())
	assert.False(t, c.tick())
	assert.True(t, c.tick())

	assert.Equal(t, []int{2, 1, 0}, ticks)
	assert.Equal(t, 0, c.Remaining())
	assert.True(t, c.Expired())
}

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	expiries := 0
	c := newCountdown(1, time.Second, nil, func() {
		expiries++
	})

	assert.True(t, c.tick())
	// Late ticks after expiry are absorbed.
	assert.True(t, c.tick())
	assert.True(t, c.tick())

	assert.Equal(t, 1, expiries)
}

func TestCountdownStopPreventsExpiry(t *testing.T) {
	expired := false
	c := newCountdown(2, time.Second, nil, func() {
		expired = true
	})

	c.tick()
	c.Stop()

	assert.True(t, c.tick())
	assert.False(t, expired)
	assert.Equal(t, 1, c.Remaining())
}

func TestCountdownStopIdempotent(t *testing.T) {
	c := newCountdown(5, time.Second, nil, nil)
	c.Stop()
	assert.NotPanics(t, func() { c.Stop() })
}

func TestCountdownStopFromExpiryCallback(t *testing.T) {
	var c *Countdown
	c = newCountdown(1, time.Second, nil, func() {
		c.Stop()
	})

	assert.NotPanics(t, func() { c.tick() })
	assert.True(t, c.Expired())
}

func TestCountdownRunLoop(t *testing.T) {
	var mu sync.Mutex
	done := make(chan struct{})
	var ticks []int

	c := newCountdown(3, time.Millisecond, func(remaining int) {
		mu.Lock()
		ticks = append(ticks, remaining)
		mu.Unlock()
	}, func() {
		close(done)
	})
	c.Start()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("countdown did not expire")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{2, 1, 0}, ticks)
}

func TestCountdownZeroLength(t *testing.T) {
	expired := false
	c := newCountdown(0, time.Second, nil, func() {
		expired = true
	})

	assert.True(t, c.tick())
	assert.True(t, expired)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "00:09", FormatClock(9))
	assert.Equal(t, "01:00", FormatClock(60))
	assert.Equal(t, "25:30", FormatClock(1530))
	assert.Equal(t, "90:00", FormatClock(5400))
	assert.Equal(t, "00:00", FormatClock(-5))
}
