package tween

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/core/clock"
)

type box struct {
	pos   mgl64.Vec3
	scale mgl64.Vec3
}

func (b *box) Position() mgl64.Vec3 { return b.pos }
func (b *box) SetPosition(p mgl64.Vec3) { b.pos = p }
func (b *box) Scale() mgl64.Vec3 { return b.scale }
func (b *box) SetScale(s mgl64.Vec3) { b.scale = s }

const ms = time.Millisecond

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEase_Endpoints(t *testing.T) {
	for name, e := range builtin {
		if !near(e(0), 0) || !near(e(1), 1) {
			t.Errorf("%s: e(0)=%v e(1)=%v", name, e(0), e(1))
		}
	}
	if _, ok := Builtin("nope"); ok {
		t.Fatalf("unknown curve found")
	}
}

func TestSequence_MoveToLinear(t *testing.T) {
	b := &box{}
	s := NewSequence().SetEase(Linear).MoveTo(b, mgl64.Vec3{10, 0, 0}, 100*ms)

	if !s.Advance(50 * ms) {
		t.Fatalf("finished early")
	}
	if !near(b.pos.X(), 5) {
		t.Fatalf("midpoint x = %v", b.pos.X())
	}
	if s.Advance(50 * ms) {
		t.Fatalf("still running at end")
	}
	if b.pos != (mgl64.Vec3{10, 0, 0}) || !s.Done() {
		t.Fatalf("pos=%v done=%v", b.pos, s.Done())
	}
}

func TestSequence_LeftoverTimeCarriesOver(t *testing.T) {
	b := &box{}
	s := NewSequence().SetEase(Linear).
		MoveYTo(b, 1, 100*ms).
		MoveYTo(b, 0, 100*ms)

	s.Advance(70 * ms)
	s.Advance(70 * ms)
	if s.Step() != 1 || !near(b.pos.Y(), 0.6) {
		t.Fatalf("step=%d y=%v", s.Step(), b.pos.Y())
	}
}

func TestSequence_IndependentOfTickSize(t *testing.T) {
	run := func(tick time.Duration) (mgl64.Vec3, int) {
		b := &box{scale: mgl64.Vec3{1, 1, 1}}
		calls := 0
		s := NewSequence().
			ScaleTo(b, mgl64.Vec3{2, 2, 2}, 150*ms).
			Callback(func() { calls++ }).
			MoveTo(b, mgl64.Vec3{0, 3, 0}, 150*ms).
			Interval(100 * ms)
		for s.Advance(tick) {
		}
		return b.pos.Add(b.scale), calls
	}
	coarse, c1 := run(400 * ms)
	fine, c2 := run(10 * ms)
	if coarse != fine || c1 != 1 || c2 != 1 {
		t.Fatalf("coarse=%v fine=%v calls=%d/%d", coarse, fine, c1, c2)
	}
}

func TestSequence_StartCapturedWhenStepBegins(t *testing.T) {
	b := &box{}
	s := NewSequence().SetEase(Linear).
		Interval(100*ms).
		MoveTo(b, mgl64.Vec3{2, 0, 0}, 100*ms)

	s.Advance(100 * ms)
	b.pos = mgl64.Vec3{1, 0, 0}
	s.Advance(50 * ms)
	if !near(b.pos.X(), 1.5) {
		t.Fatalf("x = %v, want 1.5", b.pos.X())
	}
}

func TestSequence_CompleteOnceKillNever(t *testing.T) {
	done := 0
	s := NewSequence().Interval(10 * ms).OnComplete(func() { done++ })
	s.Advance(time.Second)
	s.Advance(time.Second)
	if done != 1 {
		t.Fatalf("OnComplete ran %d times", done)
	}

	killed := NewSequence().Interval(10 * ms).OnComplete(func() { done++ })
	killed.Kill()
	if killed.Advance(time.Second) || done != 1 {
		t.Fatalf("killed sequence completed")
	}
	var nilSeq *Sequence
	nilSeq.Kill()
}

func TestSequence_CallbackCanKill(t *testing.T) {
	b := &box{}
	var s *Sequence
	s = NewSequence().
		Callback(func() { s.Kill() }).
		MoveTo(b, mgl64.Vec3{1, 1, 1}, 10*ms)
	s.Advance(time.Second)
	if b.pos != (mgl64.Vec3{}) || !s.Killed() {
		t.Fatalf("steps ran after kill")
	}
}

func TestEngine_UsesScaledDelta(t *testing.T) {
	b := &box{}
	e := NewEngine(nil)
	s := e.Play(NewSequence().SetEase(Linear).MoveTo(b, mgl64.Vec3{1, 0, 0}, 100*ms))
	e.Play(s)
	if e.Len() != 1 {
		t.Fatalf("Len = %d after double Play", e.Len())
	}

	e.Update(clock.Frame{Delta: 0, Unscaled: 50 * ms})
	if b.pos.X() != 0 {
		t.Fatalf("advanced while paused")
	}
	e.Update(clock.Frame{Delta: 100 * ms, Unscaled: 50 * ms})
	if b.pos.X() != 1 || e.Len() != 0 {
		t.Fatalf("x=%v len=%d", b.pos.X(), e.Len())
	}
}

func TestEngine_PanickingCallbackKillsSequence(t *testing.T) {
	e := NewEngine(nil)
	after := false
	s := e.Play(NewSequence().
		Callback(func() { panic("boom") }).
		Callback(func() { after = true }))
	other := e.Play(NewSequence().Interval(time.Second))

	e.Update(clock.Frame{Delta: 10 * ms})
	if after || !s.Killed() || e.Len() != 1 || other.Done() {
		t.Fatalf("after=%v killed=%v len=%d", after, s.Killed(), e.Len())
	}
}

func TestEngine_PlayDuringUpdateWaitsATick(t *testing.T) {
	e := NewEngine(nil)
	b := &box{}
	late := NewSequence().SetEase(Linear).MoveTo(b, mgl64.Vec3{1, 0, 0}, 100*ms)
	e.Play(NewSequence().Callback(func() { e.Play(late) }))

	e.Update(clock.Frame{Delta: 50 * ms})
	if b.pos.X() != 0 || e.Len() != 1 {
		t.Fatalf("late sequence advanced in the tick it was played")
	}
	e.Update(clock.Frame{Delta: 50 * ms})
	if !near(b.pos.X(), 0.5) {
		t.Fatalf("x = %v", b.pos.X())
	}
}

func TestEngine_KillAll(t *testing.T) {
	e := NewEngine(nil)
	a := e.Play(NewSequence().Interval(time.Second))
	e.KillAll()
	if e.Len() != 0 || !a.Killed() {
		t.Fatalf("KillAll left %d", e.Len())
	}
}
