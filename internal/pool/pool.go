package pool

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type options struct {
	limit int
	log   *zap.Logger
}

// Option configures a Pool.
type Option func(*options)

// WithCap bounds the number of entities a pool may own. Zero means unbounded.
func WithCap(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// Pool is a LIFO pool of entities built from one template. The most recently
// released entity is the next one handed out.
type Pool[T Entity] struct {
	key     Key
	factory Factory[T]
	idle    []T
	members map[T]bool // entity -> idle
	limit   int
	stats   Stats
	log     *zap.Logger
	warn    *rate.Limiter
}

// New builds a pool and pre-populates it with initial idle entities. It fails
// with ErrTemplateInvalid when the factory is missing or cannot instantiate, or
// when initial exceeds the cap.
func New[T Entity](key Key, factory Factory[T], initial int, opts ...Option) (*Pool[T], error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: %s has no factory", ErrTemplateInvalid, key)
	}
	if initial < 0 {
		initial = 0
	}
	if o.limit > 0 && initial > o.limit {
		return nil, fmt.Errorf("%w: %s wants %d initial entities but is capped at %d",
			ErrTemplateInvalid, key, initial, o.limit)
	}

	p := &Pool[T]{
		key:     key,
		factory: factory,
		idle:    make([]T, 0, initial),
		members: make(map[T]bool, initial),
		limit:   o.limit,
		log:     o.log,
		warn:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for i := 0; i < initial; i++ {
		e, err := p.create()
		if err != nil {
			p.Clear()
			return nil, err
		}
		e.SetActive(false)
		p.members[e] = true
		p.idle = append(p.idle, e)
	}
	return p, nil
}

func (p *Pool[T]) create() (T, error) {
	e, err := p.factory.Instantiate()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: instantiate %s: %v", ErrTemplateInvalid, p.key, err)
	}
	var zero T
	if e == zero {
		return zero, fmt.Errorf("%w: %s produced a nil entity", ErrTemplateInvalid, p.key)
	}
	p.stats.Created++
	return e, nil
}

func (p *Pool[T]) Key() Key { return p.key }

// Acquire returns an active entity, reusing the last released one when
// possible and constructing a new one otherwise.
func (p *Pool[T]) Acquire() (T, error) {
	var zero T
	for len(p.idle) > 0 {
		n := len(p.idle) - 1
		e := p.idle[n]
		p.idle[n] = zero
		p.idle = p.idle[:n]
		if isDestroyed(e) {
			delete(p.members, e)
			continue
		}
		p.members[e] = false
		p.stats.Acquired++
		e.SetActive(true)
		return e, nil
	}

	if p.limit > 0 && len(p.members) >= p.limit {
		if p.warn.Allow() {
			p.log.Warn("pool exhausted", zap.Stringer("pool", p.key), zap.Int("cap", p.limit))
		}
		return zero, fmt.Errorf("%w: %s (cap %d)", ErrPoolExhausted, p.key, p.limit)
	}

	e, err := p.create()
	if err != nil {
		return zero, err
	}
	p.members[e] = false
	p.stats.Acquired++
	e.SetActive(true)
	return e, nil
}

// AcquireAt acquires an entity and places it at pos.
func (p *Pool[T]) AcquireAt(pos mgl64.Vec3) (T, error) {
	e, err := p.Acquire()
	if err != nil {
		return e, err
	}
	e.SetPosition(pos)
	return e, nil
}

// AcquireAtRotated acquires an entity and places it at pos with rotation rot.
func (p *Pool[T]) AcquireAtRotated(pos mgl64.Vec3, rot mgl64.Quat) (T, error) {
	e, err := p.Acquire()
	if err != nil {
		return e, err
	}
	e.SetPosition(pos)
	e.SetRotation(rot)
	return e, nil
}

// Release deactivates e and returns it to the idle stack. Zero values,
// entities this pool does not own, and entities already idle are ignored.
// It reports whether e was pooled.
func (p *Pool[T]) Release(e T) bool {
	var zero T
	if e == zero {
		p.stats.Ignored++
		return false
	}
	idle, ok := p.members[e]
	if !ok {
		p.stats.Ignored++
		p.log.Debug("release of foreign entity ignored", zap.Stringer("pool", p.key))
		return false
	}
	if idle {
		p.stats.Ignored++
		return false
	}
	if isDestroyed(e) {
		delete(p.members, e)
		p.stats.Ignored++
		p.log.Debug("destroyed entity dropped on release", zap.Stringer("pool", p.key))
		return false
	}
	e.SetActive(false)
	p.members[e] = true
	p.idle = append(p.idle, e)
	p.stats.Released++
	return true
}

// Owns reports whether e originated from this pool and was not cleared.
func (p *Pool[T]) Owns(e T) bool {
	_, ok := p.members[e]
	return ok
}

// Clear destroys every idle entity. Active entities become orphans: they stay
// valid, but releasing them afterwards is a no-op.
func (p *Pool[T]) Clear() {
	var zero T
	for i, e := range p.idle {
		p.idle[i] = zero
		if !isDestroyed(e) {
			p.factory.Destroy(e)
		}
		p.stats.Destroyed++
	}
	p.idle = p.idle[:0]
	clear(p.members)
}

func (p *Pool[T]) IdleCount() int   { return len(p.idle) }
func (p *Pool[T]) ActiveCount() int { return len(p.members) - len(p.idle) }
func (p *Pool[T]) Size() int        { return len(p.members) }
func (p *Pool[T]) Cap() int         { return p.limit }
func (p *Pool[T]) Stats() Stats     { return p.stats }

func (p *Pool[T]) Snapshot() Snapshot {
	return Snapshot{Key: p.key, Idle: p.IdleCount(), Active: p.ActiveCount(), Stats: p.stats}
}
