package system

import "github.com/zencore/toolkit/internal/core/clock"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput     Phase = iota // 0: external input, spawn requests
	PhasePreUpdate              // 1: deliver last tick's events
	PhaseUpdate                 // 2: simulation (particles, audio, timers)
	PhaseAnimate                // 3: tween sequences, pop-up state machines
	PhaseMonitor                // 4: completion polling, auto-return
	PhaseCleanup                // 5: destroy queued nodes
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhaseAnimate:
		return "animate"
	case PhaseMonitor:
		return "monitor"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every tick-driven system implements.
type System interface {
	Phase() Phase
	Update(f clock.Frame)
}

// Func adapts a plain function into a System.
type Func struct {
	P  Phase
	Fn func(f clock.Frame)
}

func (s Func) Phase() Phase         { return s.P }
func (s Func) Update(f clock.Frame) { s.Fn(f) }
