package popup

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/tween"
)

// Sequencer drives one pop-up through Advancing, Holding and Returning.
// The owner moves it back to Idle with Finish once the instance is released.
type Sequencer struct {
	target tween.Target
	engine *tween.Engine
	state  State
	kind   Kind
	seq    *tween.Sequence
	steps  int
}

func NewSequencer(target tween.Target, engine *tween.Engine) *Sequencer {
	return &Sequencer{target: target, engine: engine}
}

func (s *Sequencer) State() State { return s.state }

func (s *Sequencer) Kind() Kind { return s.kind }

// Busy reports whether the sequence still needs the instance.
func (s *Sequencer) Busy() bool { return s.state == Advancing || s.state == Holding }

// Step returns the running transition step and the step count. Outside
// Advancing, i equals n.
func (s *Sequencer) Step() (i, n int) {
	if s.state != Advancing || s.seq == nil {
		return s.steps, s.steps
	}
	return s.seq.Step(), s.steps
}

// Play starts kind from the target's current position. A sequence already in
// flight is killed first.
func (s *Sequencer) Play(kind Kind, settings Settings) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	s.seq.Kill()

	tr := settings.Transition(kind)
	seq := tween.NewSequence().SetEase(settings.Ease)
	pos := s.target.Position()
	switch kind {
	case ScaleAndFade:
		seq.ScaleTo(s.target, mgl64.Vec3{}, tr.Duration)
	case SlideUp:
		seq.MoveTo(s.target, pos.Add(tr.Offset), tr.Duration)
	case SlideDown:
		seq.MoveTo(s.target, pos.Sub(tr.Offset), tr.Duration)
	case Bounce:
		n := tr.Repeat
		if n < 1 {
			n = 1
		}
		leg := tr.Duration / time.Duration(n)
		for i := 0; i < n; i++ {
			seq.MoveYTo(s.target, pos.Y()+tr.Height, leg).
				MoveYTo(s.target, pos.Y(), leg)
		}
	}
	s.steps = seq.Len()

	seq.Callback(func() { s.state = Holding }).
		Interval(settings.HideDelay).
		Callback(func() { s.state = Returning })

	s.seq = seq
	s.kind = kind
	s.state = Advancing
	s.engine.Play(seq)
	return nil
}

// Cancel kills the running sequence and drops back to Idle without
// touching the target.
func (s *Sequencer) Cancel() {
	s.seq.Kill()
	s.seq = nil
	s.state = Idle
}

// Finish is called once the instance is back in its pool.
func (s *Sequencer) Finish() {
	s.seq = nil
	s.state = Idle
}
