// catalogctl inspects and maintains zencore content and preferences.
//
// Usage:
//
//	go run ./cmd/catalogctl <command> [-config path] [-catalog path] [-out path]
//
// Commands: check, fmt, curves, prefs-get, prefs-set, prefs-reset
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/zencore/toolkit/internal/config"
	"github.com/zencore/toolkit/internal/data"
	"github.com/zencore/toolkit/internal/persist"
	"github.com/zencore/toolkit/internal/scripting"
	"github.com/zencore/toolkit/internal/tween"
	"gopkg.in/yaml.v3"
)

type options struct {
	cfg     *config.Config
	catalog string
	out     string
	args    []string
}

func writeYAML(path string, data interface{}, comment string) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if comment != "" {
		fmt.Fprintln(f, comment)
		fmt.Fprintln(f)
	}
	_, err = f.Write(out)
	return err
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func check(o options) error {
	cat, err := data.LoadCatalog(o.catalog)
	if err != nil {
		return err
	}
	members := 0
	for _, p := range cat.Particles {
		members += len(p.Members)
	}
	fmt.Printf("%s: ok\n", o.catalog)
	fmt.Printf("  particle families %d (%d member templates)\n", len(cat.Particles), members)
	fmt.Printf("  sounds            %d\n", len(cat.Sounds))
	fmt.Printf("  props             %d\n", len(cat.Props))
	return nil
}

// format rewrites the catalog with particles and sounds sorted by name.
func format(o options) error {
	cat, err := data.LoadCatalog(o.catalog)
	if err != nil {
		return err
	}
	sort.Slice(cat.Particles, func(i, j int) bool { return cat.Particles[i].Name < cat.Particles[j].Name })
	sort.Slice(cat.Sounds, func(i, j int) bool { return cat.Sounds[i].Name < cat.Sounds[j].Name })
	out := o.out
	if out == "" {
		out = o.catalog
	}
	return writeYAML(out, cat, "# zencore content catalog")
}

// ---------------------------------------------------------------------------
// Curves
// ---------------------------------------------------------------------------

func curves(o options) error {
	e, err := scripting.NewEngine(o.cfg.Scripting.Dir, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	names := append([]string{"linear", "in_quad", "out_quad", "in_out_sine"}, e.Curves()...)
	fmt.Printf("%-14s %6s %6s %6s %6s %6s\n", "curve", "0", "0.25", "0.5", "0.75", "1")
	for _, name := range names {
		var ease tween.Ease
		if ease, _ = e.Ease(name); ease == nil {
			continue
		}
		fmt.Printf("%-14s", name)
		for _, p := range []float64{0, 0.25, 0.5, 0.75, 1} {
			fmt.Printf(" %6.3f", ease(p))
		}
		fmt.Println()
	}
	return nil
}

// ---------------------------------------------------------------------------
// Preferences
// ---------------------------------------------------------------------------

func withPrefs(o options, fn func(ctx context.Context, p persist.Prefs) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if !o.cfg.Database.Enabled {
		return fmt.Errorf("database disabled in config; in-memory preferences do not outlive the process")
	}
	db, err := persist.NewDB(ctx, o.cfg.Database, nil)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := persist.RunMigrations(ctx, db.Pool, nil); err != nil {
		return err
	}
	codec, err := persist.NewCodec(o.cfg.Prefs.Secret)
	if err != nil {
		return err
	}
	return fn(ctx, persist.NewSealedPrefs(persist.NewPrefsRepo(db), codec))
}

func prefsGet(o options) error {
	if len(o.args) != 1 {
		return fmt.Errorf("usage: prefs-get <key>")
	}
	return withPrefs(o, func(ctx context.Context, p persist.Prefs) error {
		v, ok, err := p.Load(ctx, o.args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: not set", o.args[0])
		}
		fmt.Println(v)
		return nil
	})
}

func prefsSet(o options) error {
	if len(o.args) != 2 {
		return fmt.Errorf("usage: prefs-set <key> <value>")
	}
	return withPrefs(o, func(ctx context.Context, p persist.Prefs) error {
		return p.Save(ctx, o.args[0], o.args[1])
	})
}

func prefsReset(o options) error {
	return withPrefs(o, func(ctx context.Context, p persist.Prefs) error {
		return p.DeleteAll(ctx)
	})
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: catalogctl <command> [flags] [args]

Commands:
  check                   validate the catalog and print a summary
  fmt                     rewrite the catalog sorted by name (-out to write elsewhere)
  curves                  sample built-in and Lua easing curves
  prefs-get <key>         print a stored preference
  prefs-set <key> <value> store a preference
  prefs-reset             delete every stored preference

Flags:
  -config path   config file (default config/zencore.toml)
  -catalog path  catalog file (default from config)
  -out path      output file for fmt`)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	cfgPath := fs.String("config", "config/zencore.toml", "config file")
	catPath := fs.String("catalog", "", "catalog file")
	out := fs.String("out", "", "output file")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	o := options{cfg: cfg, catalog: cfg.Data.Catalog, out: *out, args: fs.Args()}
	if *catPath != "" {
		o.catalog = *catPath
	}

	commands := map[string]func(options) error{
		"check":       check,
		"fmt":         format,
		"curves":      curves,
		"prefs-get":   prefsGet,
		"prefs-set":   prefsSet,
		"prefs-reset": prefsReset,
	}
	fn, ok := commands[strings.ToLower(cmd)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err := fn(o); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
