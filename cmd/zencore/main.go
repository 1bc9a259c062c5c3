package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/config"
	"github.com/zencore/toolkit/internal/core/event"
	"github.com/zencore/toolkit/internal/data"
	"github.com/zencore/toolkit/internal/persist"
	"github.com/zencore/toolkit/internal/popup"
	"github.com/zencore/toolkit/internal/scripting"
	"github.com/zencore/toolkit/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(tick time.Duration) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            zencore toolkit v0.1.0         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      pooled effects · pop-ups · audio     \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mtick:\033[0m %s\n\n", tick)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/zencore.toml"
	if p := os.Getenv("ZENCORE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Runtime.TickRate)

	// 3. Content
	printSection("content")
	cat, err := data.LoadCatalog(cfg.Data.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	printStat("particle families", len(cat.Particles))
	printStat("sounds", len(cat.Sounds))
	printStat("props", len(cat.Props))

	luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printStat("easing curves", len(luaEngine.Curves()))
	fmt.Println()

	// 4. Preferences
	printSection("preferences")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var store persist.Prefs = persist.NewMemoryPrefs()
	if cfg.Database.Enabled {
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		store = persist.NewPrefsRepo(db)
	} else {
		printOK("in-memory store")
	}
	codec, err := persist.NewCodec(cfg.Prefs.Secret)
	if err != nil {
		return fmt.Errorf("prefs codec: %w", err)
	}
	if codec.Sealed() {
		printOK("values sealed")
	}
	prefs := persist.NewSealedPrefs(store, codec)
	fmt.Println()

	// 5. World
	w, err := world.New(cfg, cat, prefs, luaEngine, log)
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}
	defer w.Close()

	event.Subscribe(w.Bus(), func(e event.PauseChanged) {
		log.Info("pause changed", zap.Bool("paused", e.Paused))
	})
	event.Subscribe(w.Bus(), func(event.TimeFinished) {
		log.Info("level timer finished")
	})
	w.Countdown().Start()

	// 6. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	toggleCh := make(chan os.Signal, 1)
	signal.Notify(toggleCh, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		for sig := range toggleCh {
			if sig == syscall.SIGUSR1 {
				w.Input().Post(w.Pause().Toggle)
			} else {
				w.Input().Post(func() { w.Audio().SetMuted(!w.Audio().Muted()) })
			}
		}
	}()

	ticker := time.NewTicker(cfg.Runtime.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("game loop running (tick: %s)", cfg.Runtime.TickRate))
	if cfg.Runtime.Demo {
		printReady("demo spawner on")
	}
	fmt.Println()

	var demo *spawner
	if cfg.Runtime.Demo {
		demo = newSpawner(w, cat, cfg.Runtime.TickRate)
	}
	statsEvery := int(5 * time.Second / cfg.Runtime.TickRate)
	if statsEvery < 1 {
		statsEvery = 1
	}

	last := time.Now()
	for n := 1; ; n++ {
		select {
		case now := <-ticker.C:
			w.Tick(now.Sub(last))
			last = now
			if demo != nil {
				demo.tick()
			}
			if n%statsEvery == 0 {
				logStats(log, w.Stats())
			}
		case sig := <-shutdownCh:
			signal.Stop(toggleCh)
			close(toggleCh)
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			logStats(log, w.Stats())
			return nil
		}
	}
}

func logStats(log *zap.Logger, s world.Stats) {
	log.Info("stats",
		zap.Uint64("tick", s.Tick),
		zap.Int("nodes", s.Nodes),
		zap.Int("effects", s.Effects),
		zap.Int("text_popups", s.TextPopups),
		zap.Int("icon_popups", s.IconPopups),
		zap.Int("sounds", s.Sounds),
		zap.Int("watching", s.Watching),
		zap.Duration("remaining", s.Remaining),
	)
	for _, p := range s.Pools {
		log.Debug("pool",
			zap.Stringer("key", p.Key),
			zap.Int("idle", p.Idle),
			zap.Int("active", p.Active),
			zap.Int("created", p.Stats.Created),
			zap.Int("acquired", p.Stats.Acquired),
			zap.Int("released", p.Stats.Released),
		)
	}
}

// spawner drives the world with random effects, sounds and pop-ups.
type spawner struct {
	w     *world.World
	cat   *data.Catalog
	rng   *rand.Rand
	every int
	n     int
	score int
}

func newSpawner(w *world.World, cat *data.Catalog, tick time.Duration) *spawner {
	every := int(750 * time.Millisecond / tick)
	if every < 1 {
		every = 1
	}
	return &spawner{w: w, cat: cat, rng: rand.New(rand.NewSource(time.Now().UnixNano())), every: every}
}

func (s *spawner) tick() {
	s.n++
	if s.n%s.every != 0 || s.w.Pause().Paused() {
		return
	}
	pos := mgl64.Vec3{s.rng.Float64()*20 - 10, 0, s.rng.Float64()*20 - 10}

	if len(s.cat.Particles) > 0 {
		p := s.cat.Particles[s.rng.Intn(len(s.cat.Particles))]
		s.w.PlayNamed(p.Name, pos, mgl64.QuatIdent())
	}
	if len(s.cat.Sounds) > 0 {
		snd := s.cat.Sounds[s.rng.Intn(len(s.cat.Sounds))]
		if !snd.Loop {
			s.w.PlaySound(snd.Name)
		}
	}
	gain := 1 + s.rng.Intn(50)
	s.score += gain
	kind := popup.Kind(s.rng.Intn(4))
	s.w.ShowText(pos.Add(mgl64.Vec3{0, 1, 0}), fmt.Sprintf("+%d", gain), kind)
	if gain > 40 {
		s.w.ShowIcon(pos.Add(mgl64.Vec3{0, 2, 0}), "star", popup.Bounce)
		s.w.Countdown().AddTime(5 * time.Second)
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
