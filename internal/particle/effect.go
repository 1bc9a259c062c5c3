// Package particle plays pooled particle effects grouped into named families
// and returns each instance once its last particle has died.
package particle

import (
	"time"

	"github.com/zencore/toolkit/internal/scene"
)

// Member is one template a family can build effects from.
type Member struct {
	Template string
	Duration time.Duration // emission time of one cycle
	Lifetime time.Duration // how long an emitted particle lives
	Loop     bool
}

// Definition is a named family with its member templates. Count effects of
// every member are created up front.
type Definition struct {
	Name    string
	Count   int
	Members []Member
}

// Effect is a particle system attached to a scene node. It emits for
// Duration (forever when looping) and stays alive until the particles
// emitted last have lived out their Lifetime.
type Effect struct {
	*scene.Node
	member   Member
	playing  bool
	emitting bool
	age      time.Duration
	lastEmit time.Duration
}

func NewEffect(n *scene.Node, m Member) *Effect {
	return &Effect{Node: n, member: m}
}

func (e *Effect) Member() Member { return e.member }

// Play restarts emission from the beginning.
func (e *Effect) Play() {
	e.playing = true
	e.emitting = true
	e.age = 0
	e.lastEmit = 0
}

// Stop ends emission. Particles already emitted keep living.
func (e *Effect) Stop() {
	if !e.emitting {
		return
	}
	e.emitting = false
	e.lastEmit = e.age
}

// Halt kills the effect outright, live particles included.
func (e *Effect) Halt() {
	e.playing = false
	e.emitting = false
}

func (e *Effect) Emitting() bool { return e.emitting }

// IsAlive reports whether the effect is emitting or still has live particles.
func (e *Effect) IsAlive() bool {
	if !e.playing {
		return false
	}
	return e.emitting || e.age < e.lastEmit+e.member.Lifetime
}

// Advance ages the effect by dt.
func (e *Effect) Advance(dt time.Duration) {
	if !e.playing {
		return
	}
	e.age += dt
	if e.emitting && !e.member.Loop && e.age >= e.member.Duration {
		e.emitting = false
		e.lastEmit = e.member.Duration
	}
	if !e.IsAlive() {
		e.playing = false
	}
}

// Factory builds effects of one member template.
type Factory struct {
	Scene  *scene.Scene
	Member Member
}

func (f Factory) Template() string { return f.Member.Template }

func (f Factory) Instantiate() (*Effect, error) {
	n, err := f.Scene.Instantiate(f.Member.Template, nil)
	if err != nil {
		return nil, err
	}
	return NewEffect(n, f.Member), nil
}

func (f Factory) Destroy(e *Effect) { f.Scene.Destroy(e.Node) }
