// Package clock turns wall-clock tick intervals into game frames carrying
// both scaled and unscaled time.
package clock

import "time"

// Frame is the timing snapshot handed to every system for one tick.
type Frame struct {
	Tick        uint64
	Delta       time.Duration // scaled by the time scale, zero while paused
	Unscaled    time.Duration // real time since the previous tick
	Elapsed     time.Duration // sum of Delta
	RealElapsed time.Duration // sum of Unscaled
}

// Clock accumulates scaled and unscaled time. Not safe for concurrent use;
// owned by the game loop goroutine.
type Clock struct {
	scale  float64
	paused bool
	frame  Frame
}

func New() *Clock {
	return &Clock{scale: 1}
}

// Advance moves the clock forward by one tick of real duration d.
func (c *Clock) Advance(d time.Duration) Frame {
	if d < 0 {
		d = 0
	}
	scaled := time.Duration(0)
	if !c.paused {
		scaled = time.Duration(float64(d) * c.scale)
	}
	c.frame.Tick++
	c.frame.Delta = scaled
	c.frame.Unscaled = d
	c.frame.Elapsed += scaled
	c.frame.RealElapsed += d
	return c.frame
}

// Frame returns the most recent frame.
func (c *Clock) Frame() Frame { return c.frame }

// SetScale sets the time scale. Negative values are clamped to zero.
func (c *Clock) SetScale(s float64) {
	if s < 0 {
		s = 0
	}
	c.scale = s
}

func (c *Clock) Scale() float64 { return c.scale }

// Pause freezes scaled time; unscaled time keeps flowing.
func (c *Clock) Pause() { c.paused = true }

func (c *Clock) Resume() { c.paused = false }

func (c *Clock) Paused() bool { return c.paused }
