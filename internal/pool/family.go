package pool

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gammazero/deque"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Family keeps one FIFO queue per name. Each name has a set of member
// templates; when its queue runs dry a new entity is built from a member
// chosen at random.
type Family[T Entity] struct {
	kind     string
	families map[string]*familyQueue[T]
	order    []string
	origin   map[T]Factory[T]
	out      map[T]string // active entity -> family it was acquired from
	queued   map[T]string // idle entity -> family queue holding it
	rng      *rand.Rand
	log      *zap.Logger
	warn     *rate.Limiter
}

type familyQueue[T Entity] struct {
	name    string
	members []Factory[T]
	queue   deque.Deque[T]
	stats   Stats
}

// NewFamily builds an empty family pool. rng drives the overflow member
// choice; nil seeds one from the clock.
func NewFamily[T Entity](log *zap.Logger, rng *rand.Rand) *Family[T] {
	if log == nil {
		log = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Family[T]{
		kind:     KindOf[T](),
		families: make(map[string]*familyQueue[T]),
		origin:   make(map[T]Factory[T]),
		out:      make(map[T]string),
		queued:   make(map[T]string),
		rng:      rng,
		log:      log,
		warn:     rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// InitializeFamily registers name and pre-creates countPerMember entities of
// every member. Population walks the members in order once per round, so the
// queue order is reproducible. A name that already exists is left untouched.
func (f *Family[T]) InitializeFamily(name string, members []Factory[T], countPerMember int) error {
	if name == "" {
		return fmt.Errorf("%w: empty family name", ErrTemplateInvalid)
	}
	if len(members) == 0 {
		return fmt.Errorf("%w: family %s has no members", ErrTemplateInvalid, name)
	}
	for i, m := range members {
		if m == nil {
			return fmt.Errorf("%w: family %s member %d is nil", ErrTemplateInvalid, name, i)
		}
	}
	if _, ok := f.families[name]; ok {
		f.log.Debug("family already initialized", zap.String("family", name))
		return nil
	}
	if countPerMember < 0 {
		countPerMember = 0
	}

	fq := &familyQueue[T]{name: name, members: append([]Factory[T](nil), members...)}
	for round := 0; round < countPerMember; round++ {
		for _, m := range fq.members {
			e, err := f.create(fq, m)
			if err != nil {
				f.destroyQueue(fq)
				return err
			}
			e.SetActive(false)
			fq.queue.PushBack(e)
			f.queued[e] = name
		}
	}
	f.families[name] = fq
	f.order = append(f.order, name)
	f.log.Debug("family initialized",
		zap.String("family", name),
		zap.Int("members", len(members)),
		zap.Int("queued", fq.queue.Len()),
	)
	return nil
}

func (f *Family[T]) create(fq *familyQueue[T], m Factory[T]) (T, error) {
	var zero T
	e, err := m.Instantiate()
	if err != nil {
		return zero, fmt.Errorf("%w: family %s member %s: %v", ErrTemplateInvalid, fq.name, m.Template(), err)
	}
	if e == zero {
		return zero, fmt.Errorf("%w: family %s member %s produced a nil entity", ErrTemplateInvalid, fq.name, m.Template())
	}
	f.origin[e] = m
	fq.stats.Created++
	return e, nil
}

// Acquire dequeues the oldest idle entity of name, or builds a new one from a
// random member when the queue is empty.
func (f *Family[T]) Acquire(name string) (T, error) {
	var zero T
	fq, ok := f.families[name]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrUnknownFamily, name)
	}

	for fq.queue.Len() > 0 {
		e := fq.queue.PopFront()
		delete(f.queued, e)
		if isDestroyed(e) {
			delete(f.origin, e)
			continue
		}
		return f.activate(fq, e), nil
	}

	m := fq.members[f.rng.Intn(len(fq.members))]
	e, err := f.create(fq, m)
	if err != nil {
		return zero, err
	}
	return f.activate(fq, e), nil
}

func (f *Family[T]) activate(fq *familyQueue[T], e T) T {
	f.out[e] = fq.name
	fq.stats.Acquired++
	e.SetActive(true)
	return e
}

// Release puts e back on name's queue. For an unknown name the entity is
// destroyed rather than parked in an untracked queue, and so is an orphan
// left behind by ClearAll. Zero values, idle entities and entities that were
// never acquired here are ignored.
func (f *Family[T]) Release(name string, e T) bool {
	var zero T
	if e == zero {
		return false
	}
	if _, idle := f.queued[e]; idle {
		return false
	}
	from, active := f.out[e]

	fq, ok := f.families[name]
	if !ok {
		if f.warn.Allow() {
			f.log.Warn("release into unknown family, destroying entity",
				zap.String("family", name),
				zap.Error(ErrUnknownFamily),
			)
		}
		if active {
			delete(f.out, e)
			if src, ok := f.families[from]; ok {
				src.stats.Destroyed++
			}
		}
		f.destroy(e)
		return false
	}
	if !active {
		fq.stats.Ignored++
		if _, orphan := f.origin[e]; orphan {
			f.destroy(e)
		}
		return false
	}

	delete(f.out, e)
	if isDestroyed(e) {
		delete(f.origin, e)
		fq.stats.Ignored++
		return false
	}
	e.SetActive(false)
	fq.queue.PushBack(e)
	f.queued[e] = name
	fq.stats.Released++
	return true
}

func (f *Family[T]) destroy(e T) {
	e.SetActive(false)
	if m, ok := f.origin[e]; ok {
		delete(f.origin, e)
		if !isDestroyed(e) {
			m.Destroy(e)
		}
	}
}

func (f *Family[T]) destroyQueue(fq *familyQueue[T]) {
	for fq.queue.Len() > 0 {
		e := fq.queue.PopFront()
		delete(f.queued, e)
		f.destroy(e)
		fq.stats.Destroyed++
	}
}

func (f *Family[T]) HasFamily(name string) bool {
	_, ok := f.families[name]
	return ok
}

// ActiveCount returns how many entities are currently handed out.
func (f *Family[T]) ActiveCount() int { return len(f.out) }

// QueuedCount returns the idle entities waiting in name's queue.
func (f *Family[T]) QueuedCount(name string) int {
	if fq, ok := f.families[name]; ok {
		return fq.queue.Len()
	}
	return 0
}

// Queued returns name's idle entities, oldest first.
func (f *Family[T]) Queued(name string) []T {
	fq, ok := f.families[name]
	if !ok {
		return nil
	}
	out := make([]T, 0, fq.queue.Len())
	for i := 0; i < fq.queue.Len(); i++ {
		out = append(out, fq.queue.At(i))
	}
	return out
}

// Names returns the family names in initialization order.
func (f *Family[T]) Names() []string {
	return append([]string(nil), f.order...)
}

// ClearAll destroys every queued entity and forgets all families. Active
// entities become orphans; they keep their factory so that releasing them
// later destroys them.
func (f *Family[T]) ClearAll() {
	for _, name := range f.order {
		f.destroyQueue(f.families[name])
	}
	for e := range f.origin {
		if _, out := f.out[e]; !out {
			delete(f.origin, e)
		}
	}
	clear(f.families)
	clear(f.out)
	clear(f.queued)
	f.order = f.order[:0]
}

func (f *Family[T]) Snapshot() []Snapshot {
	active := make(map[string]int, len(f.order))
	for _, name := range f.out {
		active[name]++
	}
	out := make([]Snapshot, 0, len(f.order))
	for _, name := range f.order {
		fq := f.families[name]
		out = append(out, Snapshot{
			Key:    Key{Kind: f.kind, Template: name},
			Idle:   fq.queue.Len(),
			Active: active[name],
			Stats:  fq.stats,
		})
	}
	return out
}
