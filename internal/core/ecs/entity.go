package ecs

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// IDAllocator hands out generational node IDs backed by a free list.
// Freed indices are reused most-recent first.
type IDAllocator struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
	live        int
}

func NewIDAllocator() *IDAllocator {
	a := &IDAllocator{
		generations: make([]uint32, 1, 256),
		freeList:    make([]uint32, 0, 64),
		nextIndex:   1, // index 0 is reserved so the zero EntityID never names a node
	}
	return a
}

func (a *IDAllocator) Create() EntityID {
	a.live++
	if len(a.freeList) > 0 {
		idx := a.freeList[len(a.freeList)-1]
		a.freeList = a.freeList[:len(a.freeList)-1]
		return NewEntityID(idx, a.generations[idx])
	}
	idx := a.nextIndex
	a.nextIndex++
	if int(idx) >= len(a.generations) {
		a.generations = append(a.generations, 0)
	}
	return NewEntityID(idx, a.generations[idx])
}

func (a *IDAllocator) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= a.nextIndex {
		return false
	}
	return a.generations[idx] == id.Generation()
}

func (a *IDAllocator) Destroy(id EntityID) {
	if !a.Alive(id) {
		return // already destroyed (stale reference)
	}
	idx := id.Index()
	a.generations[idx]++
	a.freeList = append(a.freeList, idx)
	a.live--
}

// Live returns the number of allocated, not yet destroyed IDs.
func (a *IDAllocator) Live() int { return a.live }
