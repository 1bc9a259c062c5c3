package scene

// NodeFactory builds plain nodes of one template for a pool.
type NodeFactory struct {
	Scene  *Scene
	Name   string
	Parent *Node
}

func (f NodeFactory) Template() string { return f.Name }

func (f NodeFactory) Instantiate() (*Node, error) {
	return f.Scene.Instantiate(f.Name, f.Parent)
}

func (f NodeFactory) Destroy(n *Node) { f.Scene.Destroy(n) }
