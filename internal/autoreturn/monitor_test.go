package autoreturn

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/core/clock"
	"github.com/zencore/toolkit/internal/core/event"
	"github.com/zencore/toolkit/internal/pool"
)

type spark struct {
	active    bool
	destroyed bool
}

func (s *spark) SetActive(a bool) { s.active = a }
func (s *spark) SetPosition(mgl64.Vec3) {}
func (s *spark) SetRotation(mgl64.Quat) {}
func (s *spark) Destroyed() bool { return s.destroyed }

func newSparkPool(t *testing.T, n int) *pool.Pool[*spark] {
	t.Helper()
	p, err := pool.New[*spark](pool.KeyFor[*spark]("spark"), pool.FactoryFuncs[*spark]{
		Name: "spark",
		New:  func() (*spark, error) { return &spark{}, nil },
	}, n)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	return p
}

func tick(m *Monitor, n int) {
	for i := 0; i < n; i++ {
		m.Update(clock.Frame{})
	}
}

func TestMonitor_ReleasesOnFirstNotBusyTick(t *testing.T) {
	p := newSparkPool(t, 1)
	e, _ := p.Acquire()
	h := pool.NewHandle(p, e)

	busyTicks := 3
	polls := 0
	done := 0
	m := NewMonitor(nil, nil)
	Watch(m, h, func() bool {
		polls++
		return polls <= busyTicks
	}, func() { done++ })

	tick(m, busyTicks)
	if !e.active || p.IdleCount() != 0 {
		t.Fatalf("entity released while busy")
	}
	tick(m, 1)
	if e.active || p.IdleCount() != 1 {
		t.Fatalf("entity not released on first idle tick")
	}
	if done != 1 || m.Len() != 0 {
		t.Fatalf("done=%d len=%d", done, m.Len())
	}
	tick(m, 3)
	if polls != busyTicks+1 {
		t.Fatalf("predicate polled after release: %d", polls)
	}
}

func TestMonitor_IndependentTasks(t *testing.T) {
	p := newSparkPool(t, 2)
	a, _ := p.Acquire()
	b, _ := p.Acquire()
	aBusy, bBusy := true, true

	m := NewMonitor(nil, nil)
	Watch(m, pool.NewHandle(p, a), func() bool { return aBusy }, nil)
	Watch(m, pool.NewHandle(p, b), func() bool { return bBusy }, nil)

	bBusy = false
	tick(m, 1)
	if b.active || !a.active {
		t.Fatalf("a=%v b=%v", a.active, b.active)
	}
	if m.Len() != 1 {
		t.Fatalf("len = %d, want 1", m.Len())
	}
}

func TestMonitor_CancelPreventsRelease(t *testing.T) {
	p := newSparkPool(t, 1)
	e, _ := p.Acquire()
	m := NewMonitor(nil, nil)
	id := Watch(m, pool.NewHandle(p, e), func() bool { return false }, nil)

	if !m.Cancel(id) || m.Cancel(id) {
		t.Fatalf("Cancel not idempotent")
	}
	tick(m, 2)
	if !e.active || p.IdleCount() != 0 {
		t.Fatalf("cancelled task released its entity")
	}
}

func TestMonitor_DestroyedEntityTreatedAsDone(t *testing.T) {
	p := newSparkPool(t, 1)
	e, _ := p.Acquire()
	m := NewMonitor(nil, nil)
	done := false
	Watch(m, pool.NewHandle(p, e), func() bool { return true }, func() { done = true })

	e.destroyed = true
	tick(m, 1)
	if !done || m.Len() != 0 {
		t.Fatalf("destroyed entity still monitored")
	}
	if p.IdleCount() != 0 {
		t.Fatalf("destroyed entity pooled")
	}
}

func TestMonitor_PanickingPredicateReleases(t *testing.T) {
	p := newSparkPool(t, 1)
	e, _ := p.Acquire()
	m := NewMonitor(nil, nil)
	var missing *spark
	Watch(m, pool.NewHandle(p, e), func() bool { return missing.active }, nil)

	tick(m, 1)
	if p.IdleCount() != 1 {
		t.Fatalf("entity not released after panic")
	}
}

func TestMonitor_EmitsEntityReturned(t *testing.T) {
	bus := event.NewBus()
	var got []event.EntityReturned
	event.Subscribe(bus, func(e event.EntityReturned) { got = append(got, e) })

	p := newSparkPool(t, 1)
	e, _ := p.Acquire()
	h := pool.NewHandle(p, e)
	m := NewMonitor(bus, nil)
	Watch(m, h, func() bool { return false }, nil)
	tick(m, 1)

	bus.SwapBuffers()
	bus.DispatchAll()
	if len(got) != 1 || got[0].Handle != h.ID || got[0].Origin != h.Origin() {
		t.Fatalf("events = %+v", got)
	}
}

func TestMonitor_TaskAddedDuringReleaseWaitsOneTick(t *testing.T) {
	m := NewMonitor(nil, nil)
	secondPolled := 0
	m.MonitorAndRelease(Task{
		Busy: func() bool { return false },
		Release: func() {
			m.MonitorAndRelease(Task{Busy: func() bool { secondPolled++; return true }})
		},
	})
	tick(m, 1)
	if secondPolled != 0 || m.Len() != 1 {
		t.Fatalf("polled=%d len=%d", secondPolled, m.Len())
	}
	tick(m, 1)
	if secondPolled != 1 {
		t.Fatalf("new task not polled on next tick")
	}
}
