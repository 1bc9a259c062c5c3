package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zencore.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runtime.TickRate != 16*time.Millisecond || cfg.Audio.MaxSources != 16 {
		t.Fatalf("defaults not applied: %+v", cfg.Runtime)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[runtime]
tick_rate = "50ms"
demo = true

[popup]
hide_delay = "2s"

[popup.transitions.bounce]
duration = "900ms"
height = 3.5
repeat = 2

[audio]
max_sources = 4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runtime.TickRate != 50*time.Millisecond || !cfg.Runtime.Demo {
		t.Fatalf("runtime = %+v", cfg.Runtime)
	}
	if cfg.Popup.HideDelay != 2*time.Second || cfg.Popup.PulseMultiplier != 1.2 {
		t.Fatalf("popup = %+v", cfg.Popup)
	}
	b := cfg.Popup.Transitions["bounce"]
	if b.Duration != 900*time.Millisecond || b.Height != 3.5 || b.Repeat != 2 {
		t.Fatalf("bounce = %+v", b)
	}
	if cfg.Audio.MaxSources != 4 || cfg.Audio.SampleRate != 44100 {
		t.Fatalf("audio = %+v", cfg.Audio)
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"syntax":     "[runtime\n",
		"tick":       "[runtime]\ntick_rate = \"0s\"\n",
		"sources":    "[audio]\nmax_sources = 0\n",
		"level_time": "[timer]\nlevel_time = \"5m\"\nmax_time = \"1m\"\n",
		"pool_cap":   "[pools]\ndefault_initial = 10\ndefault_cap = 4\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
