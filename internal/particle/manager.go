package particle

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/autoreturn"
	"github.com/zencore/toolkit/internal/core/clock"
	"github.com/zencore/toolkit/internal/core/event"
	coresys "github.com/zencore/toolkit/internal/core/system"
	"github.com/zencore/toolkit/internal/pool"
	"github.com/zencore/toolkit/internal/scene"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var ErrEffectNotFound = errors.New("particle: effect not found")

// Manager owns the effect families and ages every playing effect in the
// Update phase. Finished effects go back to their family via the monitor.
type Manager struct {
	scene   *scene.Scene
	family  *pool.Family[*Effect]
	monitor *autoreturn.Monitor
	bus     *event.Bus
	log     *zap.Logger
	warn    *rate.Limiter
	active  map[*Effect]*pool.FamilyHandle[*Effect]
}

func NewManager(sc *scene.Scene, monitor *autoreturn.Monitor, bus *event.Bus, rng *rand.Rand, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		scene:   sc,
		family:  pool.NewFamily[*Effect](log, rng),
		monitor: monitor,
		bus:     bus,
		log:     log,
		warn:    rate.NewLimiter(rate.Every(time.Second), 3),
		active:  make(map[*Effect]*pool.FamilyHandle[*Effect], 64),
	}
}

func (m *Manager) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (m *Manager) Family() *pool.Family[*Effect] { return m.family }

// Define registers a family and pre-creates its effects. Member templates
// unknown to the scene are defined with the default prototype.
func (m *Manager) Define(def Definition) error {
	members := make([]pool.Factory[*Effect], 0, len(def.Members))
	for _, mem := range def.Members {
		if mem.Template != "" && !m.scene.Defined(mem.Template) {
			if err := m.scene.Define(mem.Template, scene.DefaultPrototype()); err != nil {
				return err
			}
		}
		members = append(members, Factory{Scene: m.scene, Member: mem})
	}
	if err := m.family.InitializeFamily(def.Name, members, def.Count); err != nil {
		return fmt.Errorf("effect family %q: %w", def.Name, err)
	}
	return nil
}

func (m *Manager) HasEffect(name string) bool { return m.family.HasFamily(name) }

// ActiveCount returns how many effects are playing or fading out.
func (m *Manager) ActiveCount() int { return len(m.active) }

// PlayNamed takes an effect from family name, places it and plays it.
func (m *Manager) PlayNamed(name string, pos mgl64.Vec3, rot mgl64.Quat) (*pool.FamilyHandle[*Effect], error) {
	if !m.family.HasFamily(name) {
		if m.warn.Allow() {
			m.log.Warn("particle effect not found", zap.String("effect", name))
		}
		return nil, fmt.Errorf("%w: %s", ErrEffectNotFound, name)
	}
	e, err := m.family.Acquire(name)
	if err != nil {
		return nil, err
	}
	if rot == (mgl64.Quat{}) {
		rot = mgl64.QuatIdent()
	}
	e.SetPosition(pos)
	e.SetRotation(rot)
	e.Play()

	h := pool.NewFamilyHandle(m.family, name, e)
	m.active[e] = h
	autoreturn.WatchFamily(m.monitor, h, e.IsAlive, func() { delete(m.active, e) })
	h.BeforeRelease(e.Halt)
	event.Emit(m.bus, event.EffectPlayed{Handle: h.ID, Name: name, Position: pos})
	return h, nil
}

// Stop ends emission of the effect behind h. It returns to its family once
// its particles die.
func (m *Manager) Stop(h *pool.FamilyHandle[*Effect]) bool {
	if h.Released() {
		return false
	}
	if _, ok := m.active[h.Entity]; !ok {
		return false
	}
	h.Entity.Stop()
	return true
}

// StopAll stops every active effect.
func (m *Manager) StopAll() {
	for e := range m.active {
		e.Stop()
	}
}

func (m *Manager) Update(f clock.Frame) {
	for e := range m.active {
		e.Advance(f.Delta)
	}
}
