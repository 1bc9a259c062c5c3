package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/core/ecs"
)

// Node is a handle to a scene entity. Accessors on a destroyed node read zero
// values and setters are dropped.
type Node struct {
	id    ecs.EntityID
	scene *Scene
}

func (n *Node) ID() ecs.EntityID { return n.id }

func (n *Node) Scene() *Scene { return n.scene }

// Destroyed reports whether the node was destroyed or queued for destruction.
func (n *Node) Destroyed() bool { return !n.scene.Alive(n) }

func (n *Node) Template() string { return n.scene.metas.MustGet(n.id).Template }

func (n *Node) Parent() *Node { return n.scene.metas.MustGet(n.id).Parent }

func (n *Node) Active() bool { return n.scene.metas.MustGet(n.id).Active }

func (n *Node) SetActive(active bool) {
	if m, ok := n.scene.metas.Get(n.id); ok && n.scene.world.Alive(n.id) {
		m.Active = active
	}
}

func (n *Node) transform() (*Transform, bool) {
	if !n.scene.world.Alive(n.id) {
		return nil, false
	}
	return n.scene.transforms.Get(n.id)
}

func (n *Node) Position() mgl64.Vec3 { return n.scene.transforms.MustGet(n.id).Position }

func (n *Node) SetPosition(pos mgl64.Vec3) {
	if t, ok := n.transform(); ok {
		t.Position = pos
	}
}

// WorldPosition adds the positions of every ancestor.
func (n *Node) WorldPosition() mgl64.Vec3 {
	pos := n.Position()
	for p := n.Parent(); p != nil; p = p.Parent() {
		pos = pos.Add(p.Position())
	}
	return pos
}

func (n *Node) Rotation() mgl64.Quat { return n.scene.transforms.MustGet(n.id).Rotation }

func (n *Node) SetRotation(rot mgl64.Quat) {
	if t, ok := n.transform(); ok {
		t.Rotation = rot
	}
}

func (n *Node) Scale() mgl64.Vec3 { return n.scene.transforms.MustGet(n.id).Scale }

func (n *Node) SetScale(s mgl64.Vec3) {
	if t, ok := n.transform(); ok {
		t.Scale = s
	}
}
