package ecs

// World owns the ID allocator, the component registry, and a deferred
// destruction queue flushed by CleanupSystem each tick.
type World struct {
	ids          *IDAllocator
	registry     *Registry
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		ids:          NewIDAllocator(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
		queued:       make(map[EntityID]struct{}, 64),
	}
}

func (w *World) IDs() *IDAllocator   { return w.ids }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.ids.Create()
}

// Alive reports whether id is allocated and not queued for destruction.
func (w *World) Alive(id EntityID) bool {
	if _, pending := w.queued[id]; pending {
		return false
	}
	return w.ids.Alive(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
// Queuing the same entity twice is a no-op.
func (w *World) MarkForDestruction(id EntityID) {
	if !w.ids.Alive(id) {
		return
	}
	if _, ok := w.queued[id]; ok {
		return
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// PendingDestruction returns how many entities wait for the next flush.
func (w *World) PendingDestruction() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys all queued entities and clears their components.
// Called by CleanupSystem at the end of each tick.
func (w *World) FlushDestroyQueue() int {
	n := len(w.destroyQueue)
	for _, id := range w.destroyQueue {
		w.registry.RemoveAll(id)
		w.ids.Destroy(id)
		delete(w.queued, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}
