package pool

import "github.com/google/uuid"

// Handle is what a caller holds while an entity is active: the entity and the
// pool it must go back to. Release is idempotent.
type Handle[T Entity] struct {
	ID       uuid.UUID
	Entity   T
	pool     *Pool[T]
	before   []func()
	released bool
}

// NewHandle wraps an entity acquired from p.
func NewHandle[T Entity](p *Pool[T], e T) *Handle[T] {
	return &Handle[T]{ID: uuid.New(), Entity: e, pool: p}
}

// BeforeRelease registers fn to run when the handle is released, ahead of the
// entity going back to its pool. Owners of the entity's runtime state hook
// their teardown here, so an early release leaves nothing running on an idle
// entity.
func (h *Handle[T]) BeforeRelease(fn func()) {
	h.before = append(h.before, fn)
}

// Release returns the entity to its pool. Only the first call has an effect;
// nil handles are ignored.
func (h *Handle[T]) Release() bool {
	if h == nil || h.released {
		return false
	}
	h.released = true
	runHooks(h.before)
	h.before = nil
	return h.pool.Release(h.Entity)
}

func (h *Handle[T]) Released() bool { return h == nil || h.released }

// Origin names the pool the entity came from.
func (h *Handle[T]) Origin() string { return h.pool.Key().String() }

// FamilyHandle is the family-pool counterpart of Handle. It carries the family
// name explicitly so release never has to recover it from the entity.
type FamilyHandle[T Entity] struct {
	ID       uuid.UUID
	Entity   T
	Family   string
	families *Family[T]
	before   []func()
	released bool
}

func NewFamilyHandle[T Entity](f *Family[T], name string, e T) *FamilyHandle[T] {
	return &FamilyHandle[T]{ID: uuid.New(), Entity: e, Family: name, families: f}
}

func (h *FamilyHandle[T]) BeforeRelease(fn func()) {
	h.before = append(h.before, fn)
}

func (h *FamilyHandle[T]) Release() bool {
	if h == nil || h.released {
		return false
	}
	h.released = true
	runHooks(h.before)
	h.before = nil
	return h.families.Release(h.Family, h.Entity)
}

func runHooks(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

func (h *FamilyHandle[T]) Released() bool { return h == nil || h.released }

func (h *FamilyHandle[T]) Origin() string { return h.Family }
