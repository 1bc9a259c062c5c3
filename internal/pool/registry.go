package pool

import (
	"fmt"

	"go.uber.org/zap"
)

// Registry maps template names to pools of one entity kind. A registry per
// pooled type keeps lookups free of runtime type assertions.
type Registry[T Entity] struct {
	kind  string
	pools map[Key]*Pool[T]
	order []Key
	opts  []Option
	log   *zap.Logger
}

// NewRegistry builds an empty registry. opts apply to every pool it creates.
func NewRegistry[T Entity](log *zap.Logger, opts ...Option) *Registry[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry[T]{
		kind:  KindOf[T](),
		pools: make(map[Key]*Pool[T]),
		opts:  append([]Option{WithLogger(log)}, opts...),
		log:   log,
	}
}

func (r *Registry[T]) Kind() string { return r.kind }

// GetOrCreate returns the pool registered for template, creating and
// registering it on first request. Repeated calls return the same pool; the
// factory and initial count of later calls are ignored.
func (r *Registry[T]) GetOrCreate(template string, factory Factory[T], initial int, opts ...Option) (*Pool[T], error) {
	key := Key{Kind: r.kind, Template: template}
	if p, ok := r.pools[key]; ok {
		return p, nil
	}
	if template == "" {
		return nil, fmt.Errorf("%w: empty template name for %s", ErrTemplateInvalid, r.kind)
	}

	all := append(append([]Option(nil), r.opts...), opts...)
	p, err := New(key, factory, initial, all...)
	if err != nil {
		r.log.Error("create pool", zap.Stringer("pool", key), zap.Error(err))
		return nil, err
	}
	r.pools[key] = p
	r.order = append(r.order, key)
	r.log.Debug("pool created", zap.Stringer("pool", key), zap.Int("initial", initial))
	return p, nil
}

// Get looks up a pool without creating one.
func (r *Registry[T]) Get(template string) (*Pool[T], error) {
	key := Key{Kind: r.kind, Template: template}
	if p, ok := r.pools[key]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, key)
}

// ClearAll clears every pool and empties the registry.
func (r *Registry[T]) ClearAll() {
	for _, key := range r.order {
		r.pools[key].Clear()
	}
	clear(r.pools)
	r.order = r.order[:0]
}

func (r *Registry[T]) Len() int { return len(r.pools) }

// Snapshot reports every pool in creation order.
func (r *Registry[T]) Snapshot() []Snapshot {
	out := make([]Snapshot, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.pools[key].Snapshot())
	}
	return out
}
