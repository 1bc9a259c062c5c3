package system

import (
	"github.com/zencore/toolkit/internal/core/clock"
	"github.com/zencore/toolkit/internal/core/event"
)

// PauseController pauses and resumes the game clock.
type PauseController struct {
	clock *clock.Clock
	bus   *event.Bus
}

func NewPauseController(c *clock.Clock, bus *event.Bus) *PauseController {
	return &PauseController{clock: c, bus: bus}
}

func (p *PauseController) Pause() {
	if p.clock.Paused() {
		return
	}
	p.clock.Pause()
	event.Emit(p.bus, event.PauseChanged{Paused: true})
}

func (p *PauseController) Resume() {
	if !p.clock.Paused() {
		return
	}
	p.clock.Resume()
	event.Emit(p.bus, event.PauseChanged{Paused: false})
}

func (p *PauseController) Toggle() {
	if p.clock.Paused() {
		p.Resume()
		return
	}
	p.Pause()
}

func (p *PauseController) Paused() bool { return p.clock.Paused() }
