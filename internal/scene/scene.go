// Package scene is the entity factory behind every pooled object: templates,
// nodes with a transform, and deferred destruction through the ECS world.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/core/ecs"
	"github.com/zencore/toolkit/internal/pool"
	"go.uber.org/zap"
)

// Prototype is the immutable template a node is instantiated from.
type Prototype struct {
	Scale    mgl64.Vec3
	Rotation mgl64.Quat
}

// DefaultPrototype has unit scale and identity rotation.
func DefaultPrototype() Prototype {
	return Prototype{Scale: mgl64.Vec3{1, 1, 1}, Rotation: mgl64.QuatIdent()}
}

// Transform is the spatial component of a node.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// Meta holds a node's identity and activation flag.
type Meta struct {
	Template string
	Parent   *Node
	Active   bool
}

// Scene owns the node stores. Not safe for concurrent use.
type Scene struct {
	world      *ecs.World
	transforms *ecs.PtrComponentStore[Transform]
	metas      *ecs.PtrComponentStore[Meta]
	nodes      *ecs.PtrComponentStore[Node]
	templates  map[string]Prototype
	log        *zap.Logger
}

func New(log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scene{
		world:      ecs.NewWorld(),
		transforms: ecs.NewPtrComponentStore[Transform](),
		metas:      ecs.NewPtrComponentStore[Meta](),
		nodes:      ecs.NewPtrComponentStore[Node](),
		templates:  make(map[string]Prototype, 16),
		log:        log,
	}
	s.world.Registry().Register(s.transforms, s.metas, s.nodes)
	return s
}

// Define registers (or replaces) a template. Nodes already instantiated keep
// the values they were created with.
func (s *Scene) Define(name string, p Prototype) error {
	if name == "" {
		return fmt.Errorf("%w: empty template name", pool.ErrTemplateInvalid)
	}
	if p.Scale == (mgl64.Vec3{}) {
		p.Scale = mgl64.Vec3{1, 1, 1}
	}
	if p.Rotation == (mgl64.Quat{}) {
		p.Rotation = mgl64.QuatIdent()
	}
	s.templates[name] = p
	return nil
}

// Defined reports whether a template is registered under name.
func (s *Scene) Defined(name string) bool {
	_, ok := s.templates[name]
	return ok
}

// Instantiate creates an inactive node from template under parent (which may
// be nil).
func (s *Scene) Instantiate(template string, parent *Node) (*Node, error) {
	if template == "" {
		return nil, fmt.Errorf("%w: empty template name", pool.ErrTemplateInvalid)
	}
	proto, ok := s.templates[template]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not defined", pool.ErrTemplateInvalid, template)
	}
	if parent != nil && !s.Alive(parent) {
		return nil, fmt.Errorf("%w: parent of %q is destroyed", pool.ErrTemplateInvalid, template)
	}

	id := s.world.CreateEntity()
	n := &Node{id: id, scene: s}
	s.transforms.Set(id, &Transform{Rotation: proto.Rotation, Scale: proto.Scale})
	s.metas.Set(id, &Meta{Template: template, Parent: parent})
	s.nodes.Set(id, n)
	return n, nil
}

// Destroy deactivates n and queues it for removal at the next Flush.
func (s *Scene) Destroy(n *Node) {
	if n == nil || n.scene != s || !s.world.Alive(n.id) {
		return
	}
	s.metas.MustGet(n.id).Active = false
	s.world.MarkForDestruction(n.id)
}

// Alive reports whether n belongs to this scene and is not destroyed or
// queued for destruction.
func (s *Scene) Alive(n *Node) bool {
	return n != nil && n.scene == s && s.world.Alive(n.id)
}

// Count returns the number of live nodes.
func (s *Scene) Count() int {
	return s.nodes.Len() - s.world.PendingDestruction()
}

// ActiveCount returns the number of live, active nodes.
func (s *Scene) ActiveCount() int {
	return ecs.Count2(s.metas, s.nodes, func(m *Meta, _ *Node) bool { return m.Active })
}

// EachActive calls fn for every active node. Order is unspecified.
func (s *Scene) EachActive(fn func(*Node)) {
	ecs.Each2(s.metas, s.nodes, func(_ ecs.EntityID, m *Meta, n *Node) {
		if m.Active {
			fn(n)
		}
	})
}

// Flush removes every node queued by Destroy and returns how many went.
func (s *Scene) Flush() int {
	n := s.world.FlushDestroyQueue()
	if n > 0 {
		s.log.Debug("scene flush", zap.Int("destroyed", n))
	}
	return n
}
