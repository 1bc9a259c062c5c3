// Package tween animates node transforms over time: sequences of timed steps
// advanced by an Animate-phase engine.
package tween

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Target is anything with a position and a scale.
type Target interface {
	Position() mgl64.Vec3
	SetPosition(pos mgl64.Vec3)
	Scale() mgl64.Vec3
	SetScale(s mgl64.Vec3)
}

type step struct {
	dur   time.Duration
	begin func()
	apply func(p float64)
	call  func()
}

// Sequence is an ordered list of steps. Build it with the chaining methods,
// then hand it to Engine.Play or drive it with Advance.
type Sequence struct {
	steps      []step
	cur        int
	elapsed    time.Duration
	begun      bool
	ease       Ease
	onComplete []func()
	done       bool
	killed     bool
	playing    bool
}

func NewSequence() *Sequence {
	return &Sequence{ease: OutQuad}
}

// SetEase changes the curve used by every step. nil restores OutQuad.
func (s *Sequence) SetEase(e Ease) *Sequence {
	if e == nil {
		e = OutQuad
	}
	s.ease = e
	return s
}

func lerp(from, to mgl64.Vec3, p float64) mgl64.Vec3 {
	if p >= 1 {
		return to
	}
	return from.Add(to.Sub(from).Mul(p))
}

// ScaleTo animates t's scale to `to`. The start scale is read when the step
// begins.
func (s *Sequence) ScaleTo(t Target, to mgl64.Vec3, d time.Duration) *Sequence {
	var from mgl64.Vec3
	s.steps = append(s.steps, step{
		dur:   d,
		begin: func() { from = t.Scale() },
		apply: func(p float64) { t.SetScale(lerp(from, to, p)) },
	})
	return s
}

// MoveTo animates t's position to `to`.
func (s *Sequence) MoveTo(t Target, to mgl64.Vec3, d time.Duration) *Sequence {
	var from mgl64.Vec3
	s.steps = append(s.steps, step{
		dur:   d,
		begin: func() { from = t.Position() },
		apply: func(p float64) { t.SetPosition(lerp(from, to, p)) },
	})
	return s
}

// MoveYTo animates only the Y coordinate of t's position.
func (s *Sequence) MoveYTo(t Target, y float64, d time.Duration) *Sequence {
	var from float64
	s.steps = append(s.steps, step{
		dur:   d,
		begin: func() { from = t.Position().Y() },
		apply: func(p float64) {
			pos := t.Position()
			if p >= 1 {
				pos[1] = y
			} else {
				pos[1] = from + (y-from)*p
			}
			t.SetPosition(pos)
		},
	})
	return s
}

// Interval waits for d.
func (s *Sequence) Interval(d time.Duration) *Sequence {
	s.steps = append(s.steps, step{dur: d})
	return s
}

// Callback runs fn when the sequence reaches this point.
func (s *Sequence) Callback(fn func()) *Sequence {
	s.steps = append(s.steps, step{call: fn})
	return s
}

// OnComplete registers fn to run once after the last step. Killed sequences
// never complete.
func (s *Sequence) OnComplete(fn func()) *Sequence {
	s.onComplete = append(s.onComplete, fn)
	return s
}

// Duration is the sum of all step durations.
func (s *Sequence) Duration() time.Duration {
	var d time.Duration
	for _, st := range s.steps {
		d += st.dur
	}
	return d
}

// Kill stops the sequence where it is. Nil-safe.
func (s *Sequence) Kill() {
	if s == nil {
		return
	}
	s.killed = true
}

func (s *Sequence) Killed() bool { return s != nil && s.killed }

// Done reports whether the sequence completed or was killed.
func (s *Sequence) Done() bool { return s == nil || s.done || s.killed }

// Step returns the index of the running step.
func (s *Sequence) Step() int { return s.cur }

func (s *Sequence) Len() int { return len(s.steps) }

// Advance moves the sequence forward by dt. Time left over when a step ends
// carries into the next one. It reports whether the sequence is still
// running.
func (s *Sequence) Advance(dt time.Duration) bool {
	if s.Done() {
		return false
	}
	for s.cur < len(s.steps) {
		st := &s.steps[s.cur]
		if !s.begun {
			s.begun = true
			if st.begin != nil {
				st.begin()
			}
		}
		remaining := st.dur - s.elapsed
		if dt < remaining {
			s.elapsed += dt
			if st.apply != nil {
				st.apply(s.ease(float64(s.elapsed) / float64(st.dur)))
			}
			return true
		}
		dt -= remaining
		if st.apply != nil {
			st.apply(1)
		}
		if st.call != nil {
			st.call()
		}
		if s.killed {
			return false
		}
		s.cur++
		s.elapsed = 0
		s.begun = false
	}
	s.done = true
	for _, fn := range s.onComplete {
		fn()
	}
	return false
}
