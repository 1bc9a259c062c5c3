package tween

import (
	"fmt"

	"github.com/zencore/toolkit/internal/core/clock"
	coresys "github.com/zencore/toolkit/internal/core/system"
	"go.uber.org/zap"
)

// Engine advances every playing sequence by the frame's scaled delta.
type Engine struct {
	active   []*Sequence
	updating bool
	log      *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{active: make([]*Sequence, 0, 64), log: log}
}

func (e *Engine) Phase() coresys.Phase { return coresys.PhaseAnimate }

// Play schedules s. Sequences started during Update begin on the next tick.
// Playing the same sequence twice is a no-op.
func (e *Engine) Play(s *Sequence) *Sequence {
	if s == nil || s.playing || s.Done() {
		return s
	}
	s.playing = true
	e.active = append(e.active, s)
	return s
}

// Len returns the number of playing sequences.
func (e *Engine) Len() int { return len(e.active) }

// KillAll kills every playing sequence. Called from a callback, the killed
// sequences are dropped at the end of the current Update.
func (e *Engine) KillAll() {
	for _, s := range e.active {
		s.Kill()
	}
	if e.updating {
		return
	}
	for i, s := range e.active {
		s.playing = false
		e.active[i] = nil
	}
	e.active = e.active[:0]
}

func (e *Engine) Update(f clock.Frame) {
	e.updating = true
	defer func() { e.updating = false }()
	n := len(e.active)
	keep := e.active[:0]
	for i := 0; i < n; i++ {
		s := e.active[i]
		if e.advance(s, f) {
			keep = append(keep, s)
			continue
		}
		s.playing = false
	}
	keep = append(keep, e.active[n:]...)
	for i := len(keep); i < len(e.active); i++ {
		e.active[i] = nil
	}
	e.active = keep
}

func (e *Engine) advance(s *Sequence, f clock.Frame) (running bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("tween callback panicked", zap.String("panic", fmt.Sprint(r)))
			s.Kill()
			running = false
		}
	}()
	return s.Advance(f.Delta)
}
