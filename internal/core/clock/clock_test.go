package clock

import (
	"testing"
	"time"
)

func TestClock_ScaleAppliesToDeltaOnly(t *testing.T) {
	c := New()
	c.SetScale(0.5)
	f := c.Advance(100 * time.Millisecond)
	if f.Delta != 50*time.Millisecond {
		t.Fatalf("Delta = %s, want 50ms", f.Delta)
	}
	if f.Unscaled != 100*time.Millisecond {
		t.Fatalf("Unscaled = %s, want 100ms", f.Unscaled)
	}
	if f.Tick != 1 {
		t.Fatalf("Tick = %d, want 1", f.Tick)
	}
}

func TestClock_PauseKeepsUnscaledRunning(t *testing.T) {
	c := New()
	c.Advance(time.Second)
	c.Pause()
	f := c.Advance(time.Second)
	if f.Delta != 0 {
		t.Fatalf("paused Delta = %s, want 0", f.Delta)
	}
	if f.Elapsed != time.Second || f.RealElapsed != 2*time.Second {
		t.Fatalf("Elapsed=%s RealElapsed=%s", f.Elapsed, f.RealElapsed)
	}
	c.Resume()
	if f = c.Advance(time.Second); f.Elapsed != 2*time.Second {
		t.Fatalf("Elapsed after resume = %s", f.Elapsed)
	}
}

func TestClock_NegativeInputsClamp(t *testing.T) {
	c := New()
	c.SetScale(-3)
	if c.Scale() != 0 {
		t.Fatalf("Scale = %v, want 0", c.Scale())
	}
	if f := c.Advance(-time.Second); f.Unscaled != 0 {
		t.Fatalf("Unscaled = %s, want 0", f.Unscaled)
	}
}
