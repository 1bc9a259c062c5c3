package world

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/audio"
	"github.com/zencore/toolkit/internal/core/clock"
	"github.com/zencore/toolkit/internal/particle"
	"github.com/zencore/toolkit/internal/pool"
	"github.com/zencore/toolkit/internal/popup"
	"github.com/zencore/toolkit/internal/scene"
	"go.uber.org/zap"
)

// Releaser is any live handle: *pool.Handle or *pool.FamilyHandle.
type Releaser interface {
	Release() bool
	Released() bool
}

// DefineProp registers a prop template and pre-fills its pool.
func (w *World) DefineProp(template string, proto scene.Prototype, initial int) error {
	if !w.scene.Defined(template) {
		if err := w.scene.Define(template, proto); err != nil {
			return fmt.Errorf("prop %s: %w", template, err)
		}
	}
	if initial <= 0 {
		initial = w.cfg.Pools.DefaultInitial
	}
	_, err := w.props.GetOrCreate(template, scene.NodeFactory{Scene: w.scene, Name: template}, initial)
	return err
}

func (w *World) propPool(template string) (*pool.Pool[*scene.Node], error) {
	p, err := w.props.Get(template)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, pool.ErrPoolNotFound) && w.scene.Defined(template) {
		return w.props.GetOrCreate(template, scene.NodeFactory{Scene: w.scene, Name: template}, 0)
	}
	return nil, err
}

// AcquireAt takes a prop of template from its pool and places it at pos.
// The caller owns it until Release.
func (w *World) AcquireAt(template string, pos mgl64.Vec3) (*pool.Handle[*scene.Node], error) {
	return w.AcquireAtRotated(template, pos, mgl64.QuatIdent())
}

func (w *World) AcquireAtRotated(template string, pos mgl64.Vec3, rot mgl64.Quat) (*pool.Handle[*scene.Node], error) {
	p, err := w.propPool(template)
	if err != nil {
		return nil, err
	}
	n, err := p.AcquireAtRotated(pos, rot)
	if err != nil {
		return nil, err
	}
	return pool.NewHandle(p, n), nil
}

// Release returns a handle's entity to where it came from. Nil and already
// released handles are ignored.
func (w *World) Release(h Releaser) bool {
	if h == nil || h.Released() {
		return false
	}
	return h.Release()
}

// PlayNamed plays a particle effect. Failures are logged and yield nil.
func (w *World) PlayNamed(name string, pos mgl64.Vec3, rot mgl64.Quat) *pool.FamilyHandle[*particle.Effect] {
	h, err := w.particles.PlayNamed(name, pos, rot)
	if err != nil {
		w.log.Debug("play effect failed", zap.String("effect", name), zap.Error(err))
		return nil
	}
	return h
}

// StopEffect ends emission; the effect returns once its particles die.
func (w *World) StopEffect(h *pool.FamilyHandle[*particle.Effect]) bool {
	if h == nil {
		return false
	}
	return w.particles.Stop(h)
}

// ShowText shows a floating text pop-up. Failures are logged and yield nil.
func (w *World) ShowText(pos mgl64.Vec3, text string, kind popup.Kind) *pool.Handle[*popup.Text] {
	h, err := w.texts.Show(pos, text, kind)
	if err != nil {
		w.log.Warn("show text failed", zap.Stringer("kind", kind), zap.Error(err))
		return nil
	}
	return h
}

// ShowIcon shows a floating icon pop-up. Failures are logged and yield nil.
func (w *World) ShowIcon(pos mgl64.Vec3, sprite string, kind popup.Kind) *pool.Handle[*popup.Icon] {
	h, err := w.icons.Show(pos, sprite, kind)
	if err != nil {
		w.log.Warn("show icon failed", zap.Stringer("kind", kind), zap.Error(err))
		return nil
	}
	return h
}

// PlaySound plays a registered sound. Failures are logged and yield nil.
func (w *World) PlaySound(name string) *pool.Handle[*audio.Emitter] {
	h, err := w.audio.Play(name)
	if err != nil {
		w.log.Debug("play sound failed", zap.String("sound", name), zap.Error(err))
		return nil
	}
	return h
}

// Tick advances the clock by dt of real time and runs every system once.
func (w *World) Tick(dt time.Duration) clock.Frame {
	f := w.clock.Advance(dt)
	w.runner.Tick(f)
	return f
}

// Stats is a point-in-time summary for logs.
type Stats struct {
	Tick       uint64
	Nodes      int
	Effects    int
	TextPopups int
	IconPopups int
	Sounds     int
	Watching   int
	Tweens     int
	Remaining  time.Duration
	Pools      []pool.Snapshot
}

func (w *World) Stats() Stats {
	return Stats{
		Tick:       w.clock.Frame().Tick,
		Nodes:      w.scene.Count(),
		Effects:    w.particles.ActiveCount(),
		TextPopups: w.texts.Active(),
		IconPopups: w.icons.Active(),
		Sounds:     w.audio.Playing(),
		Watching:   w.monitor.Len(),
		Tweens:     w.tweens.Len(),
		Remaining:  w.countdown.Remaining(),
		Pools:      w.pools.Snapshot(),
	}
}

// Close stops all sound and animation and clears every pool. Entities still
// out become orphans.
func (w *World) Close() {
	w.tweens.KillAll()
	w.audio.Close()
	w.pools.ClearAll()
	w.scene.Flush()
	w.log.Info("world closed", zap.Uint64("tick", w.clock.Frame().Tick))
}
