package system

import (
	"fmt"

	"github.com/zencore/toolkit/internal/core/clock"
	coresys "github.com/zencore/toolkit/internal/core/system"
	"go.uber.org/zap"
)

// Command is work handed to the game loop from another goroutine.
type Command func()

// InputSystem drains commands posted from other goroutines (signal
// handlers, consoles) and runs them on the game loop. Phase 0 (Input).
type InputSystem struct {
	in         chan Command
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(queueSize, maxPerTick int, log *zap.Logger) *InputSystem {
	if log == nil {
		log = zap.NewNop()
	}
	if maxPerTick <= 0 {
		maxPerTick = queueSize
	}
	return &InputSystem{
		in:         make(chan Command, queueSize),
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// Post queues cmd without blocking. It reports false when the queue is full.
// Safe for concurrent use.
func (s *InputSystem) Post(cmd Command) bool {
	select {
	case s.in <- cmd:
		return true
	default:
		s.log.Warn("input queue full, command dropped")
		return false
	}
}

func (s *InputSystem) Update(_ clock.Frame) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case cmd := <-s.in:
			s.run(cmd)
		default:
			return
		}
	}
}

func (s *InputSystem) run(cmd Command) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("command panicked", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	cmd()
}
