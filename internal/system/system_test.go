package system

import (
	"testing"
	"time"

	"github.com/zencore/toolkit/internal/config"
	"github.com/zencore/toolkit/internal/core/clock"
	"github.com/zencore/toolkit/internal/core/event"
	"github.com/zencore/toolkit/internal/scene"
)

const sec = time.Second

func newCountdown(bus *event.Bus) *CountdownSystem {
	return NewCountdownSystem(config.TimerConfig{
		LevelTime: 10 * sec,
		MaxTime:   15 * sec,
		Critical:  3 * sec,
	}, bus)
}

func frame(scaled, unscaled time.Duration) clock.Frame {
	return clock.Frame{Delta: scaled, Unscaled: unscaled}
}

func TestCountdown_CountsOnlyWhileRunning(t *testing.T) {
	c := newCountdown(nil)
	c.Update(frame(sec, sec))
	if c.Remaining() != 10*sec {
		t.Fatalf("counted before Start")
	}
	c.Start()
	c.Update(frame(2*sec, 2*sec))
	if c.Remaining() != 8*sec {
		t.Fatalf("remaining = %v", c.Remaining())
	}
	c.Update(frame(0, sec))
	if c.Remaining() != 8*sec {
		t.Fatalf("counted while paused")
	}
	c.Stop()
	c.Update(frame(sec, sec))
	if c.Remaining() != 8*sec || c.Running() {
		t.Fatalf("counted after Stop")
	}
}

func TestCountdown_AddAndSubtractClamp(t *testing.T) {
	bus := event.NewBus()
	finished := 0
	event.Subscribe(bus, func(event.TimeFinished) { finished++ })
	c := newCountdown(bus)
	c.Start()

	c.AddTime(20 * sec)
	if c.Remaining() != 15*sec {
		t.Fatalf("AddTime not clamped: %v", c.Remaining())
	}
	c.SubtractTime(13 * sec)
	if !c.IsCritical() || c.Remaining() != 2*sec {
		t.Fatalf("remaining=%v critical=%v", c.Remaining(), c.IsCritical())
	}
	c.SubtractTime(time.Minute)
	if c.Remaining() != 0 || c.Running() {
		t.Fatalf("remaining=%v running=%v", c.Remaining(), c.Running())
	}
	bus.SwapBuffers()
	bus.DispatchAll()
	if finished != 1 {
		t.Fatalf("finished = %d", finished)
	}
}

func TestCountdown_FinishesOnce(t *testing.T) {
	bus := event.NewBus()
	var updates []event.TimerUpdated
	finished := 0
	event.Subscribe(bus, func(e event.TimerUpdated) { updates = append(updates, e) })
	event.Subscribe(bus, func(event.TimeFinished) { finished++ })
	c := newCountdown(bus)
	bus.SwapBuffers()
	bus.DispatchAll()
	updates = nil

	c.Start()
	for i := 0; i < 12; i++ {
		c.Update(frame(sec, sec))
	}
	bus.SwapBuffers()
	bus.DispatchAll()
	if finished != 1 || len(updates) != 9 {
		t.Fatalf("finished=%d updates=%d", finished, len(updates))
	}
	if last := updates[len(updates)-1]; last.Remaining != sec || last.Total != 10*sec {
		t.Fatalf("last update = %+v", last)
	}
}

func TestCountdown_FreezeUsesRealTime(t *testing.T) {
	c := newCountdown(nil)
	c.Start()
	c.FreezeFor(2 * sec)
	if c.Running() || !c.Frozen() {
		t.Fatalf("freeze did not stop the timer")
	}

	c.Update(frame(0, sec))
	c.Update(frame(5*sec, 500*time.Millisecond))
	if c.Remaining() != 10*sec || !c.Frozen() {
		t.Fatalf("remaining=%v frozen=%v", c.Remaining(), c.Frozen())
	}
	c.Update(frame(sec, 500*time.Millisecond))
	if c.Frozen() || !c.Running() || c.Remaining() != 9*sec {
		t.Fatalf("after thaw: frozen=%v running=%v remaining=%v", c.Frozen(), c.Running(), c.Remaining())
	}
}

func TestCountdown_FreezeKeepsStoppedTimerStopped(t *testing.T) {
	c := newCountdown(nil)
	c.FreezeFor(sec)
	c.Update(frame(sec, 2*sec))
	if c.Running() {
		t.Fatalf("thaw started a stopped timer")
	}
	c.Reset()
	if c.Remaining() != 10*sec || c.Frozen() {
		t.Fatalf("Reset left state behind")
	}
}

func TestPauseController(t *testing.T) {
	bus := event.NewBus()
	var got []bool
	event.Subscribe(bus, func(e event.PauseChanged) { got = append(got, e.Paused) })
	clk := clock.New()
	p := NewPauseController(clk, bus)

	p.Pause()
	p.Pause()
	if f := clk.Advance(time.Second); f.Delta != 0 || f.Unscaled != time.Second {
		t.Fatalf("paused frame = %+v", f)
	}
	p.Toggle()
	if p.Paused() {
		t.Fatalf("Toggle did not resume")
	}
	p.Resume()

	bus.SwapBuffers()
	bus.DispatchAll()
	if len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("events = %v", got)
	}
}

func TestEventDispatchSystem_DeliversNextTick(t *testing.T) {
	bus := event.NewBus()
	s := NewEventDispatchSystem(bus)
	n := 0
	event.Subscribe(bus, func(event.TimeFinished) { n++ })

	event.Emit(bus, event.TimeFinished{})
	if n != 0 {
		t.Fatalf("delivered on emit")
	}
	s.Update(clock.Frame{})
	s.Update(clock.Frame{})
	if n != 1 {
		t.Fatalf("delivered %d times", n)
	}
}

func TestCleanupSystem_FlushesScene(t *testing.T) {
	sc := scene.New(nil)
	_ = sc.Define("crate", scene.DefaultPrototype())
	n, _ := sc.Instantiate("crate", nil)
	sc.Destroy(n)
	NewCleanupSystem(sc).Update(clock.Frame{})
	if sc.Count() != 0 {
		t.Fatalf("count = %d", sc.Count())
	}
	if _, err := sc.Instantiate("crate", nil); err != nil {
		t.Fatalf("Instantiate after flush: %v", err)
	}
}

func TestInputSystem_RunsPostedCommands(t *testing.T) {
	s := NewInputSystem(2, 1, nil)
	ran := 0
	if !s.Post(func() { ran++ }) || !s.Post(func() { panic("bad") }) {
		t.Fatalf("Post failed with room in the queue")
	}
	if s.Post(func() { ran++ }) {
		t.Fatalf("Post succeeded on a full queue")
	}
	s.Update(clock.Frame{})
	if ran != 1 {
		t.Fatalf("ran = %d after first tick", ran)
	}
	s.Update(clock.Frame{})
	s.Update(clock.Frame{})
	if ran != 1 {
		t.Fatalf("ran = %d", ran)
	}
}
