package workout

import "testing"

// TestCountdownStop verifies a fresh countdown reports its full duration,
// stops cleanly, and tolerates repeated stops.
func TestCountdownStop(t *testing.T) {
	c := StartCountdown(90)
	if got := c.Remaining(); got <= 0 || got > 90 {
		t.Errorf("Remaining() = %d, want in (0, 90]", got)
	}
	if !c.Active() {
		t.Error("fresh countdown not active")
	}
	c.Stop()
	if c.Active() {
		t.Error("countdown still active after Stop")
	}
	c.Stop() // second stop must not panic
}
