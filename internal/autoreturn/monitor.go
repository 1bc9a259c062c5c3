// Package autoreturn releases entities back to their pools once a completion
// predicate reports they are no longer busy.
package autoreturn

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/zencore/toolkit/internal/core/clock"
	"github.com/zencore/toolkit/internal/core/event"
	coresys "github.com/zencore/toolkit/internal/core/system"
	"github.com/zencore/toolkit/internal/pool"
	"go.uber.org/zap"
)

// TaskID identifies one monitored entity.
type TaskID uint64

// Task describes a monitored entity. Busy is polled once per tick; the first
// tick it returns false, Release runs and then Done.
type Task struct {
	Handle  uuid.UUID
	Origin  string
	Busy    func() bool
	Gone    func() bool // optional: entity destroyed externally
	Release func()
	Done    func() // optional: drop the entity from caller bookkeeping
}

type task struct {
	id TaskID
	Task
}

// Monitor polls every watched entity once per tick in the Monitor phase.
// Each watch keeps its own state; nothing is shared between tasks.
type Monitor struct {
	tasks  []*task
	index  map[TaskID]*task
	nextID TaskID
	bus    *event.Bus
	log    *zap.Logger
}

func NewMonitor(bus *event.Bus, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		tasks: make([]*task, 0, 64),
		index: make(map[TaskID]*task, 64),
		bus:   bus,
		log:   log,
	}
}

func (m *Monitor) Phase() coresys.Phase { return coresys.PhaseMonitor }

// MonitorAndRelease schedules t. The entity stays untouched until Busy turns
// false, its Gone reports true, or Busy panics.
func (m *Monitor) MonitorAndRelease(t Task) TaskID {
	m.nextID++
	tk := &task{id: m.nextID, Task: t}
	m.tasks = append(m.tasks, tk)
	m.index[tk.id] = tk
	return tk.id
}

// Cancel stops watching id without releasing anything. It reports whether the
// task was still pending.
func (m *Monitor) Cancel(id TaskID) bool {
	tk, ok := m.index[id]
	if !ok {
		return false
	}
	delete(m.index, id)
	tk.Release = nil
	tk.Done = nil
	return true
}

// Watching reports whether id is still pending.
func (m *Monitor) Watching(id TaskID) bool {
	_, ok := m.index[id]
	return ok
}

// Len returns the number of pending tasks.
func (m *Monitor) Len() int { return len(m.index) }

func (m *Monitor) Update(_ clock.Frame) {
	keep := m.tasks[:0]
	// Tasks added by callbacks during this pass land past n and wait a tick.
	n := len(m.tasks)
	for i := 0; i < n; i++ {
		tk := m.tasks[i]
		if _, live := m.index[tk.id]; !live {
			continue
		}
		if m.stillBusy(tk) {
			keep = append(keep, tk)
			continue
		}
		delete(m.index, tk.id)
		m.finish(tk)
	}
	keep = append(keep, m.tasks[n:]...)
	for i := len(keep); i < len(m.tasks); i++ {
		m.tasks[i] = nil
	}
	m.tasks = keep
}

func (m *Monitor) stillBusy(tk *task) (busy bool) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Warn("busy check panicked, releasing",
				zap.String("origin", tk.Origin),
				zap.String("panic", fmt.Sprint(r)),
			)
			busy = false
		}
	}()
	if tk.Gone != nil && tk.Gone() {
		return false
	}
	if tk.Busy == nil {
		return false
	}
	return tk.Busy()
}

func (m *Monitor) finish(tk *task) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("auto-return release panicked",
				zap.String("origin", tk.Origin),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	if tk.Release != nil {
		tk.Release()
	}
	if tk.Done != nil {
		tk.Done()
	}
	event.Emit(m.bus, event.EntityReturned{Handle: tk.Handle, Origin: tk.Origin})
}

func goneFunc(e any) func() bool {
	if d, ok := e.(pool.Destroyable); ok {
		return d.Destroyed
	}
	return nil
}

// Watch monitors a pool handle and releases it once busy reports false.
// Releasing the handle first cancels the task and runs done.
func Watch[T pool.Entity](m *Monitor, h *pool.Handle[T], busy func() bool, done func()) TaskID {
	id := m.MonitorAndRelease(Task{
		Handle:  h.ID,
		Origin:  h.Origin(),
		Busy:    busy,
		Gone:    goneFunc(h.Entity),
		Release: func() { h.Release() },
		Done:    done,
	})
	h.BeforeRelease(m.canceller(id, done))
	return id
}

// WatchFamily monitors a family handle; release goes to the family named on
// the handle.
func WatchFamily[T pool.Entity](m *Monitor, h *pool.FamilyHandle[T], busy func() bool, done func()) TaskID {
	id := m.MonitorAndRelease(Task{
		Handle:  h.ID,
		Origin:  h.Origin(),
		Busy:    busy,
		Gone:    goneFunc(h.Entity),
		Release: func() { h.Release() },
		Done:    done,
	})
	h.BeforeRelease(m.canceller(id, done))
	return id
}

// canceller drops task id when its handle is released by someone other than
// the monitor. A task the monitor is already finishing is left alone.
func (m *Monitor) canceller(id TaskID, done func()) func() {
	return func() {
		if m.Cancel(id) && done != nil {
			done()
		}
	}
}
