package audio

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/zencore/toolkit/internal/autoreturn"
	"github.com/zencore/toolkit/internal/core/clock"
	"github.com/zencore/toolkit/internal/core/event"
	coresys "github.com/zencore/toolkit/internal/core/system"
	"github.com/zencore/toolkit/internal/persist"
	"github.com/zencore/toolkit/internal/pool"
	"github.com/zencore/toolkit/internal/scene"
)

const tickLen = 100 * time.Millisecond

type rig struct {
	manager *Manager
	monitor *autoreturn.Monitor
	runner  *coresys.Runner
	clock   *clock.Clock
	bus     *event.Bus
}

func newRig(t *testing.T, prefs persist.Prefs, maxSources int) *rig {
	t.Helper()
	r := &rig{runner: coresys.NewRunner(), clock: clock.New(), bus: event.NewBus()}
	monitor := autoreturn.NewMonitor(r.bus, nil)
	m, err := NewManager(
		pool.NewRegistry[*Emitter](nil),
		scene.New(nil),
		Config{MaxSources: maxSources, SampleRate: 1000},
		prefs, monitor, r.bus, rand.New(rand.NewSource(1)), nil,
	)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	m.Register(
		Sound{Name: "coin", Clips: []Clip{{Frequency: 220, Duration: 150 * time.Millisecond}}, Volume: 0.8},
		Sound{Name: "music", Clips: []Clip{{Frequency: 110, Duration: time.Second}}, Volume: 0.5, Loop: true},
	)
	r.manager = m
	r.monitor = monitor
	r.runner.Register(monitor, m)
	return r
}

func (r *rig) tick(n int) {
	for i := 0; i < n; i++ {
		r.runner.Tick(r.clock.Advance(tickLen))
	}
}

func TestManager_PlayUnknownSound(t *testing.T) {
	r := newRig(t, nil, 2)
	if _, err := r.manager.Play("boom"); !errors.Is(err, ErrSoundNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestManager_EmitterReturnsWhenDrained(t *testing.T) {
	r := newRig(t, nil, 2)
	h, err := r.manager.Play("coin")
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !h.Entity.Playing() || h.Entity.Level() != 0.8 {
		t.Fatalf("playing=%v level=%v", h.Entity.Playing(), h.Entity.Level())
	}

	r.tick(1)
	if h.Released() || r.manager.Playing() != 1 {
		t.Fatalf("returned before the clip ended")
	}
	r.tick(1)
	if !h.Released() || r.manager.Playing() != 0 {
		t.Fatalf("not returned after the clip ended")
	}
	if r.manager.Pulled() != 200 {
		t.Fatalf("pulled = %d samples, want 200", r.manager.Pulled())
	}
}

func TestManager_KeepsPlayingWhilePaused(t *testing.T) {
	r := newRig(t, nil, 2)
	h, _ := r.manager.Play("coin")
	r.clock.Pause()
	r.tick(2)
	if !h.Released() {
		t.Fatalf("audio stalled while the clock was paused")
	}
}

func TestManager_CapExhausts(t *testing.T) {
	r := newRig(t, nil, 2)
	for i := 0; i < 2; i++ {
		if _, err := r.manager.Play("music"); err != nil {
			t.Fatalf("Play %d: %v", i, err)
		}
	}
	if _, err := r.manager.Play("coin"); !errors.Is(err, pool.ErrPoolExhausted) {
		t.Fatalf("err = %v, want ErrPoolExhausted", err)
	}
}

func TestManager_StopByName(t *testing.T) {
	r := newRig(t, nil, 4)
	music, _ := r.manager.Play("music")
	coin, _ := r.manager.Play("coin")
	r.tick(1)

	if n := r.manager.Stop("music"); n != 1 {
		t.Fatalf("Stop stopped %d", n)
	}
	r.tick(1)
	if !music.Released() || !coin.Released() {
		t.Fatalf("music=%v coin=%v", music.Released(), coin.Released())
	}
	r.tick(20)
	if r.manager.Playing() != 0 {
		t.Fatalf("playing = %d", r.manager.Playing())
	}
}

func TestManager_StopAll(t *testing.T) {
	r := newRig(t, nil, 4)
	r.manager.Play("music")
	r.manager.Play("music")
	r.manager.StopAll()
	r.tick(1)
	if r.manager.Playing() != 0 || r.manager.Pool().IdleCount() != 4 {
		t.Fatalf("playing=%d idle=%d", r.manager.Playing(), r.manager.Pool().IdleCount())
	}
}

func TestManager_SetVolume(t *testing.T) {
	r := newRig(t, nil, 2)
	h, _ := r.manager.Play("music")
	r.manager.SetVolume("music", 0.25)
	if h.Entity.Level() != 0.25 || h.Entity.Silent() {
		t.Fatalf("level=%v silent=%v", h.Entity.Level(), h.Entity.Silent())
	}
	r.manager.SetVolume("music", -3)
	if !h.Entity.Silent() {
		t.Fatalf("zero volume not silent")
	}
	r.manager.SetVolume("coin", 1)
	if h.Entity.Level() != 0 {
		t.Fatalf("other sound's volume leaked")
	}
}

func TestManager_MutePersists(t *testing.T) {
	ctx := context.Background()
	prefs := persist.NewMemoryPrefs()
	r := newRig(t, prefs, 2)
	var changes []event.MuteChanged
	event.Subscribe(r.bus, func(e event.MuteChanged) { changes = append(changes, e) })

	r.manager.SetMuted(true)
	r.manager.SetMuted(true)
	if v, _ := persist.LoadBool(ctx, prefs, MuteKey, false); !v {
		t.Fatalf("mute flag not saved")
	}
	r.bus.SwapBuffers()
	r.bus.DispatchAll()
	if len(changes) != 1 || !changes[0].Muted {
		t.Fatalf("changes = %+v", changes)
	}

	again := newRig(t, prefs, 2)
	if !again.manager.Muted() {
		t.Fatalf("mute flag not restored")
	}
}

func TestManager_EarlyReleaseStopsEmitter(t *testing.T) {
	r := newRig(t, nil, 2)
	h, err := r.manager.Play("music")
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	r.tick(1)
	if !h.Release() {
		t.Fatalf("Release failed")
	}
	if h.Entity.Playing() || r.manager.Playing() != 0 || r.monitor.Len() != 0 {
		t.Fatalf("still running: playing=%v active=%d watching=%d",
			h.Entity.Playing(), r.manager.Playing(), r.monitor.Len())
	}
	if p := r.manager.Pool(); p.IdleCount() != 2 {
		t.Fatalf("idle = %d, want 2", p.IdleCount())
	}

	released := r.manager.Pool().Stats().Released
	r.tick(3)
	if got := r.manager.Pool().Stats().Released; got != released {
		t.Fatalf("released again by the monitor: %d -> %d", released, got)
	}
}
