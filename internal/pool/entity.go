// Package pool recycles scene entities: a LIFO pool per template, a keyed
// registry of pools, and a family pool of named FIFO queues.
//
// Pools are owned by the game loop goroutine and hold no locks.
package pool

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Entity is the capability a pooled type must provide. Idle entities are kept
// deactivated; activation is the only state transition pools manage.
type Entity interface {
	comparable
	SetActive(active bool)
	SetPosition(pos mgl64.Vec3)
	SetRotation(rot mgl64.Quat)
}

// Destroyable is implemented by entities that can be destroyed behind the
// pool's back. Destroyed entities are forgotten instead of reused.
type Destroyable interface {
	Destroyed() bool
}

func isDestroyed(e any) bool {
	d, ok := e.(Destroyable)
	return ok && d.Destroyed()
}

// Factory builds and destroys entities for one template.
type Factory[T any] interface {
	Template() string
	Instantiate() (T, error)
	Destroy(e T)
}

// FactoryFuncs adapts plain functions into a Factory. Free may be nil.
type FactoryFuncs[T any] struct {
	Name string
	New  func() (T, error)
	Free func(T)
}

func (f FactoryFuncs[T]) Template() string { return f.Name }

func (f FactoryFuncs[T]) Instantiate() (T, error) {
	if f.New == nil {
		var zero T
		return zero, fmt.Errorf("%w: %s has no constructor", ErrTemplateInvalid, f.Name)
	}
	return f.New()
}

func (f FactoryFuncs[T]) Destroy(e T) {
	if f.Free != nil {
		f.Free(e)
	}
}

// Key identifies a pool by entity kind and template name, so the same
// template pooled as two different kinds yields two pools.
type Key struct {
	Kind     string
	Template string
}

func (k Key) String() string { return k.Kind + "_" + k.Template }

// KeyFor builds the key for pooling T from template.
func KeyFor[T any](template string) Key {
	return Key{Kind: KindOf[T](), Template: template}
}

// KindOf names the entity type T, e.g. "popup.Text" for *popup.Text.
func KindOf[T any]() string {
	var zero T
	return strings.TrimLeft(fmt.Sprintf("%T", zero), "*")
}

// Stats are cumulative counters for one pool or family.
type Stats struct {
	Created   int
	Acquired  int
	Released  int
	Destroyed int
	Ignored   int // zero, foreign, double or orphan releases
}

// Snapshot is a point-in-time view of one pool, for logs and tests.
type Snapshot struct {
	Key    Key
	Idle   int
	Active int
	Stats  Stats
}
