package workout

import (
	"sync"
	"time"
)

// Countdown is the rest timer between sets: a fixed number of seconds
// that ticks down once per second and stops itself at zero. It is purely
// observational state; it never blocks or gates set edits.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	stop      chan struct{}
	stopped   bool
}

// StartCountdown starts a countdown from the given number of seconds.
func StartCountdown(seconds int) *Countdown {
	c := &Countdown{
		remaining: seconds,
		stop:      make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Countdown) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.remaining--
			done := c.remaining <= 0
			if done {
				c.remaining = 0
				c.stopped = true
			}
			c.mu.Unlock()
			if done {
				return
			}
		}
	}
}

// Remaining returns the seconds left on the countdown.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Active reports whether the countdown is still running.
func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.stopped && c.remaining > 0
}

// Stop cancels the countdown. Safe to call more than once.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stop)
}
