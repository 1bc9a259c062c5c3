package pool

// Clearer is implemented by registries and family pools.
type Clearer interface {
	ClearAll()
	Snapshot() []Snapshot
}

// Directory collects every registry and family pool of a subsystem so
// teardown and reporting can walk them without knowing their entity types.
type Directory struct {
	entries []Clearer
}

func NewDirectory() *Directory {
	return &Directory{entries: make([]Clearer, 0, 8)}
}

func (d *Directory) Register(c ...Clearer) {
	d.entries = append(d.entries, c...)
}

// ClearAll clears every registered registry and family, in registration order.
func (d *Directory) ClearAll() {
	for _, c := range d.entries {
		c.ClearAll()
	}
}

func (d *Directory) Snapshot() []Snapshot {
	var out []Snapshot
	for _, c := range d.entries {
		out = append(out, c.Snapshot()...)
	}
	return out
}
