package system

import (
	"time"

	"github.com/zencore/toolkit/internal/config"
	"github.com/zencore/toolkit/internal/core/clock"
	"github.com/zencore/toolkit/internal/core/event"
	coresys "github.com/zencore/toolkit/internal/core/system"
)

// CountdownSystem is the level timer. It counts down in scaled time, so it
// stands still while the clock is paused; freezes are measured in real time.
// Phase 2 (Update).
type CountdownSystem struct {
	levelTime time.Duration
	maxTime   time.Duration
	critical  time.Duration
	remaining time.Duration
	running   bool

	frozen       bool
	freezeLeft   time.Duration
	runAfterThaw bool

	bus *event.Bus
}

func NewCountdownSystem(cfg config.TimerConfig, bus *event.Bus) *CountdownSystem {
	s := &CountdownSystem{
		levelTime: cfg.LevelTime,
		maxTime:   cfg.MaxTime,
		critical:  cfg.Critical,
		bus:       bus,
	}
	s.Reset()
	return s
}

func (s *CountdownSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CountdownSystem) Start() {
	if s.frozen {
		s.runAfterThaw = true
		return
	}
	s.running = true
}

func (s *CountdownSystem) Stop() {
	s.running = false
	s.runAfterThaw = false
}

// Reset restores the level time and stops the timer.
func (s *CountdownSystem) Reset() {
	s.remaining = s.levelTime
	s.running = false
	s.frozen = false
	s.freezeLeft = 0
	s.runAfterThaw = false
	s.updated()
}

// AddTime extends the timer, never past the configured maximum.
func (s *CountdownSystem) AddTime(d time.Duration) {
	s.remaining += d
	if s.maxTime > 0 && s.remaining > s.maxTime {
		s.remaining = s.maxTime
	}
	s.updated()
}

// SubtractTime shortens the timer; reaching zero finishes it.
func (s *CountdownSystem) SubtractTime(d time.Duration) {
	s.remaining -= d
	if s.remaining <= 0 {
		s.finish()
	}
	s.updated()
}

// FreezeFor stops the countdown for d of real time. A new freeze replaces
// the one in progress.
func (s *CountdownSystem) FreezeFor(d time.Duration) {
	if !s.frozen {
		s.runAfterThaw = s.running
	}
	s.frozen = true
	s.freezeLeft = d
	s.running = false
}

func (s *CountdownSystem) Frozen() bool { return s.frozen }

func (s *CountdownSystem) Running() bool { return s.running }

func (s *CountdownSystem) Remaining() time.Duration { return s.remaining }

func (s *CountdownSystem) LevelTime() time.Duration { return s.levelTime }

func (s *CountdownSystem) IsCritical() bool { return s.remaining <= s.critical }

func (s *CountdownSystem) Update(f clock.Frame) {
	if s.frozen {
		s.freezeLeft -= f.Unscaled
		if s.freezeLeft > 0 {
			return
		}
		s.frozen = false
		s.running = s.runAfterThaw
		s.runAfterThaw = false
	}
	if !s.running || f.Delta <= 0 {
		return
	}
	s.remaining -= f.Delta
	if s.remaining <= 0 {
		s.finish()
		return
	}
	s.updated()
}

func (s *CountdownSystem) finish() {
	s.remaining = 0
	s.running = false
	s.runAfterThaw = false
	event.Emit(s.bus, event.TimeFinished{})
}

func (s *CountdownSystem) updated() {
	event.Emit(s.bus, event.TimerUpdated{Remaining: s.remaining, Total: s.levelTime})
}
