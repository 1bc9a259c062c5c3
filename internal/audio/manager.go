package audio

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/zencore/toolkit/internal/autoreturn"
	"github.com/zencore/toolkit/internal/core/clock"
	"github.com/zencore/toolkit/internal/core/event"
	coresys "github.com/zencore/toolkit/internal/core/system"
	"github.com/zencore/toolkit/internal/persist"
	"github.com/zencore/toolkit/internal/pool"
	"github.com/zencore/toolkit/internal/scene"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var ErrSoundNotFound = errors.New("audio: sound not found")

const (
	MuteKey         = "AudioMuted"
	emitterTemplate = "audio_source"
	chunk           = 512
)

type Config struct {
	MaxSources int
	SampleRate int
}

// Manager owns the emitter pool and the mixer. Update pulls the mixer for
// the frame's unscaled duration, so sounds keep playing while paused.
type Manager struct {
	sounds  map[string]Sound
	pool    *pool.Pool[*Emitter]
	mixer   *beep.Mixer
	master  *effects.Volume
	sr      beep.SampleRate
	buf     [][2]float64
	muted   bool
	prefs   persist.Prefs
	monitor *autoreturn.Monitor
	bus     *event.Bus
	rng     *rand.Rand
	log     *zap.Logger
	warn    *rate.Limiter
	active  map[*Emitter]*pool.Handle[*Emitter]
	pulled  int
}

func NewManager(
	reg *pool.Registry[*Emitter],
	sc *scene.Scene,
	cfg Config,
	prefs persist.Prefs,
	monitor *autoreturn.Monitor,
	bus *event.Bus,
	rng *rand.Rand,
	log *zap.Logger,
) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.MaxSources <= 0 {
		return nil, fmt.Errorf("audio: max sources must be positive, got %d", cfg.MaxSources)
	}
	if !sc.Defined(emitterTemplate) {
		if err := sc.Define(emitterTemplate, scene.DefaultPrototype()); err != nil {
			return nil, err
		}
	}
	p, err := reg.GetOrCreate(emitterTemplate, emitterFactory{scene: sc, name: emitterTemplate},
		cfg.MaxSources, pool.WithCap(cfg.MaxSources))
	if err != nil {
		return nil, fmt.Errorf("audio pool: %w", err)
	}

	mixer := &beep.Mixer{}
	m := &Manager{
		sounds:  make(map[string]Sound),
		pool:    p,
		mixer:   mixer,
		master:  &effects.Volume{Streamer: mixer, Base: 2},
		sr:      beep.SampleRate(cfg.SampleRate),
		buf:     make([][2]float64, chunk),
		prefs:   prefs,
		monitor: monitor,
		bus:     bus,
		rng:     rng,
		log:     log,
		warn:    rate.NewLimiter(rate.Every(time.Second), 3),
		active:  make(map[*Emitter]*pool.Handle[*Emitter], cfg.MaxSources),
	}
	if prefs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		muted, err := persist.LoadBool(ctx, prefs, MuteKey, false)
		if err != nil {
			log.Warn("load mute flag", zap.Error(err))
		}
		m.muted = muted
		m.master.Silent = muted
	}
	return m, nil
}

func (m *Manager) Phase() coresys.Phase { return coresys.PhaseUpdate }

// Register adds or replaces sound definitions.
func (m *Manager) Register(sounds ...Sound) {
	for _, s := range sounds {
		if s.Pitch == 0 {
			s.Pitch = 1
		}
		m.sounds[s.Name] = s
	}
}

func (m *Manager) Has(name string) bool {
	_, ok := m.sounds[name]
	return ok
}

func (m *Manager) Pool() *pool.Pool[*Emitter] { return m.pool }

// Playing returns how many emitters are busy.
func (m *Manager) Playing() int { return len(m.active) }

// Play starts a random clip of the named sound on a free emitter.
func (m *Manager) Play(name string) (*pool.Handle[*Emitter], error) {
	s, ok := m.sounds[name]
	if !ok {
		if m.warn.Allow() {
			m.log.Warn("sound not found", zap.String("sound", name))
		}
		return nil, fmt.Errorf("%w: %s", ErrSoundNotFound, name)
	}
	if len(s.Clips) == 0 {
		return nil, fmt.Errorf("%w: %s has no clips", ErrSoundNotFound, name)
	}
	clip := s.Clips[m.rng.Intn(len(s.Clips))]

	e, err := m.pool.Acquire()
	if err != nil {
		return nil, err
	}
	stream, err := e.start(s, clip, m.sr)
	if err != nil {
		m.pool.Release(e)
		return nil, fmt.Errorf("sound %s: %w", name, err)
	}
	m.mixer.Add(stream)

	h := pool.NewHandle(m.pool, e)
	m.active[e] = h
	autoreturn.Watch(m.monitor, h, e.Playing, func() { delete(m.active, e) })
	h.BeforeRelease(e.Stop)
	event.Emit(m.bus, event.SoundPlayed{Handle: h.ID, Name: name})
	return h, nil
}

// Stop stops every emitter playing the named sound.
func (m *Manager) Stop(name string) int {
	n := 0
	for e := range m.active {
		if e.Sound() == name && e.Playing() {
			e.Stop()
			n++
		}
	}
	return n
}

func (m *Manager) StopAll() {
	for e := range m.active {
		e.Stop()
	}
}

// SetVolume changes the volume of the named sound's playing emitters.
func (m *Manager) SetVolume(name string, v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	for e := range m.active {
		if e.Sound() == name && e.Playing() {
			e.setLevel(v)
		}
	}
}

// SetMuted silences the master output and persists the flag.
func (m *Manager) SetMuted(muted bool) {
	if m.muted == muted {
		return
	}
	m.muted = muted
	m.master.Silent = muted
	if m.prefs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := persist.SaveBool(ctx, m.prefs, MuteKey, muted); err != nil {
			m.log.Warn("save mute flag", zap.Error(err))
		}
	}
	event.Emit(m.bus, event.MuteChanged{Muted: muted})
}

func (m *Manager) Muted() bool { return m.muted }

// Pulled returns the number of samples mixed so far.
func (m *Manager) Pulled() int { return m.pulled }

// Update mixes f.Unscaled worth of samples. There is no output device; the
// mixed samples are discarded.
func (m *Manager) Update(f clock.Frame) {
	n := m.sr.N(f.Unscaled)
	for n > 0 {
		k := min(n, len(m.buf))
		m.master.Stream(m.buf[:k])
		n -= k
		m.pulled += k
	}
}

// Close stops all emitters and empties the mixer.
func (m *Manager) Close() {
	m.StopAll()
	m.mixer.Clear()
}
