package popup

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/autoreturn"
	"github.com/zencore/toolkit/internal/core/event"
	"github.com/zencore/toolkit/internal/pool"
	"github.com/zencore/toolkit/internal/tween"
	"go.uber.org/zap"
)

// PopUp is what a Manager needs from its pooled type.
type PopUp[C any] interface {
	pool.Entity
	Position() mgl64.Vec3
	Destroyed() bool
	SetContent(c C) error
	PlayPulse(p Pulse, ease tween.Ease)
	Sequencer() *Sequencer
	ResetProperties()
}

// Manager shows pop-ups of one template. Each shown instance is handed to the
// monitor and comes back to the pool when its sequencer reaches Returning.
type Manager[T PopUp[C], C any] struct {
	pool     *pool.Pool[T]
	monitor  *autoreturn.Monitor
	settings Settings
	bus      *event.Bus
	log      *zap.Logger
	active   map[T]autoreturn.TaskID
}

type ManagerConfig struct {
	Template string
	PoolSize int
	Settings Settings
}

func NewManager[T PopUp[C], C any](
	reg *pool.Registry[T],
	factory pool.Factory[T],
	cfg ManagerConfig,
	monitor *autoreturn.Monitor,
	bus *event.Bus,
	log *zap.Logger,
) (*Manager[T, C], error) {
	if log == nil {
		log = zap.NewNop()
	}
	p, err := reg.GetOrCreate(cfg.Template, factory, cfg.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("popup pool: %w", err)
	}
	if cfg.Settings.Transitions == nil {
		cfg.Settings = DefaultSettings()
	}
	return &Manager[T, C]{
		pool:     p,
		monitor:  monitor,
		settings: cfg.Settings,
		bus:      bus,
		log:      log,
		active:   make(map[T]autoreturn.TaskID, cfg.PoolSize),
	}, nil
}

func (m *Manager[T, C]) Pool() *pool.Pool[T] { return m.pool }

func (m *Manager[T, C]) Settings() Settings { return m.settings }

// Active returns how many pop-ups are currently shown.
func (m *Manager[T, C]) Active() int { return len(m.active) }

// Show acquires a pop-up at pos, applies content and plays kind.
func (m *Manager[T, C]) Show(pos mgl64.Vec3, content C, kind Kind) (*pool.Handle[T], error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	e, err := m.pool.AcquireAt(pos)
	if err != nil {
		return nil, err
	}
	if err := e.SetContent(content); err != nil {
		m.pool.Release(e)
		return nil, err
	}
	e.PlayPulse(m.settings.Pulse, m.settings.Ease)
	if err := e.Sequencer().Play(kind, m.settings); err != nil {
		e.ResetProperties()
		m.pool.Release(e)
		return nil, err
	}

	h := pool.NewHandle(m.pool, e)
	id := m.monitor.MonitorAndRelease(autoreturn.Task{
		Handle:  h.ID,
		Origin:  h.Origin(),
		Busy:    e.Sequencer().Busy,
		Gone:    e.Destroyed,
		Release: func() { h.Release() },
	})
	m.active[e] = id
	// Runs on auto-return and on an early release by the caller alike.
	h.BeforeRelease(func() {
		m.monitor.Cancel(id)
		delete(m.active, e)
		e.ResetProperties()
		e.Sequencer().Finish()
	})
	event.Emit(m.bus, event.PopUpShown{Handle: h.ID, Kind: kind.String(), Position: pos})
	return h, nil
}

// HideAll cancels every shown pop-up; the monitor returns them on its next
// pass.
func (m *Manager[T, C]) HideAll() {
	for e := range m.active {
		e.Sequencer().Cancel()
	}
}
