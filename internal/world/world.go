// Package world wires the scene, the pools and the systems that drive them
// into one tick-driven facade. Everything here runs on the game loop
// goroutine; only InputSystem.Post may be called from elsewhere.
package world

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/zencore/toolkit/internal/audio"
	"github.com/zencore/toolkit/internal/autoreturn"
	"github.com/zencore/toolkit/internal/config"
	"github.com/zencore/toolkit/internal/core/clock"
	"github.com/zencore/toolkit/internal/core/event"
	coresys "github.com/zencore/toolkit/internal/core/system"
	"github.com/zencore/toolkit/internal/data"
	"github.com/zencore/toolkit/internal/particle"
	"github.com/zencore/toolkit/internal/persist"
	"github.com/zencore/toolkit/internal/pool"
	"github.com/zencore/toolkit/internal/popup"
	"github.com/zencore/toolkit/internal/scene"
	"github.com/zencore/toolkit/internal/system"
	"github.com/zencore/toolkit/internal/tween"
	"go.uber.org/zap"
)

const (
	defaultTextTemplate = "popup_text"
	defaultIconTemplate = "popup_icon"

	inputQueueSize  = 64
	inputMaxPerTick = 16
)

// World owns every runtime subsystem.
type World struct {
	cfg *config.Config
	log *zap.Logger

	scene   *scene.Scene
	clock   *clock.Clock
	runner  *coresys.Runner
	bus     *event.Bus
	monitor *autoreturn.Monitor
	tweens  *tween.Engine
	pools   *pool.Directory

	props     *pool.Registry[*scene.Node]
	particles *particle.Manager
	texts     *popup.Manager[*popup.Text, string]
	icons     *popup.Manager[*popup.Icon, string]
	audio     *audio.Manager

	countdown *system.CountdownSystem
	pause     *system.PauseController
	input     *system.InputSystem
}

// New builds a world from cfg and the content catalog. prefs and curves may
// be nil.
func New(cfg *config.Config, cat *data.Catalog, prefs persist.Prefs, curves Curves, log *zap.Logger) (*World, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cat == nil {
		cat = &data.Catalog{}
	}

	seed := cfg.Particles.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	w := &World{
		cfg:    cfg,
		log:    log,
		scene:  scene.New(log),
		clock:  clock.New(),
		runner: coresys.NewRunner(),
		bus:    event.NewBus(),
		tweens: tween.NewEngine(log),
		pools:  pool.NewDirectory(),
		input:  system.NewInputSystem(inputQueueSize, inputMaxPerTick, log),
	}
	w.clock.SetScale(cfg.Runtime.TimeScale)
	w.monitor = autoreturn.NewMonitor(w.bus, log)

	var propOpts []pool.Option
	if cfg.Pools.DefaultCap > 0 {
		propOpts = append(propOpts, pool.WithCap(cfg.Pools.DefaultCap))
	}
	w.props = pool.NewRegistry[*scene.Node](log, propOpts...)
	for _, p := range cat.Props {
		if err := w.DefineProp(p.Template, p.Prototype(), p.Initial); err != nil {
			return nil, err
		}
	}

	w.particles = particle.NewManager(w.scene, w.monitor, w.bus, rng, log)
	for _, def := range cat.ParticleDefinitions() {
		if err := w.particles.Define(def); err != nil {
			return nil, fmt.Errorf("particle %s: %w", def.Name, err)
		}
	}

	settings, err := popupSettings(cfg.Popup, curves)
	if err != nil {
		return nil, err
	}
	if err := w.buildPopups(cat.Popups, settings); err != nil {
		return nil, err
	}

	emitters := pool.NewRegistry[*audio.Emitter](log)
	w.audio, err = audio.NewManager(emitters, w.scene, audio.Config{
		MaxSources: cfg.Audio.MaxSources,
		SampleRate: cfg.Audio.SampleRate,
	}, prefs, w.monitor, w.bus, rng, log)
	if err != nil {
		return nil, err
	}
	w.audio.Register(cat.SoundDefinitions()...)

	w.countdown = system.NewCountdownSystem(cfg.Timer, w.bus)
	w.pause = system.NewPauseController(w.clock, w.bus)

	w.pools.Register(w.props, w.particles.Family(), emitters)

	w.runner.Register(
		w.input,
		system.NewEventDispatchSystem(w.bus),
		w.particles,
		w.audio,
		w.countdown,
		w.tweens,
		w.monitor,
		system.NewCleanupSystem(w.scene),
	)
	return w, nil
}

func (w *World) buildPopups(entries data.PopupEntries, settings popup.Settings) error {
	text := entries.Text
	if text.Template == "" {
		text.Template = defaultTextTemplate
	}
	icon := entries.Icon
	if icon.Template == "" {
		icon.Template = defaultIconTemplate
	}
	for _, e := range []data.TemplateEntry{text, icon} {
		if err := w.scene.Define(e.Template, e.Prototype()); err != nil {
			return fmt.Errorf("popup template %s: %w", e.Template, err)
		}
	}

	size := func(e data.TemplateEntry) int {
		if e.Initial > 0 {
			return e.Initial
		}
		return w.cfg.Popup.PoolSize
	}

	texts := pool.NewRegistry[*popup.Text](w.log)
	tm, err := popup.NewManager[*popup.Text, string](texts,
		popup.TextFactory{Scene: w.scene, Engine: w.tweens, Name: text.Template},
		popup.ManagerConfig{Template: text.Template, PoolSize: size(text), Settings: settings},
		w.monitor, w.bus, w.log)
	if err != nil {
		return err
	}

	icons := pool.NewRegistry[*popup.Icon](w.log)
	im, err := popup.NewManager[*popup.Icon, string](icons,
		popup.IconFactory{Scene: w.scene, Engine: w.tweens, Name: icon.Template},
		popup.ManagerConfig{Template: icon.Template, PoolSize: size(icon), Settings: settings},
		w.monitor, w.bus, w.log)
	if err != nil {
		return err
	}

	w.texts, w.icons = tm, im
	w.pools.Register(texts, icons)
	return nil
}

func (w *World) Scene() *scene.Scene                        { return w.scene }
func (w *World) Clock() *clock.Clock                        { return w.clock }
func (w *World) Bus() *event.Bus                            { return w.bus }
func (w *World) Monitor() *autoreturn.Monitor               { return w.monitor }
func (w *World) Tweens() *tween.Engine                      { return w.tweens }
func (w *World) Particles() *particle.Manager               { return w.particles }
func (w *World) Texts() *popup.Manager[*popup.Text, string] { return w.texts }
func (w *World) Icons() *popup.Manager[*popup.Icon, string] { return w.icons }
func (w *World) Audio() *audio.Manager                      { return w.audio }
func (w *World) Countdown() *system.CountdownSystem         { return w.countdown }
func (w *World) Pause() *system.PauseController             { return w.pause }
func (w *World) Input() *system.InputSystem                 { return w.input }
