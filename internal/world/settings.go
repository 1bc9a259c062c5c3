package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/config"
	"github.com/zencore/toolkit/internal/popup"
	"github.com/zencore/toolkit/internal/tween"
)

// Curves resolves easing curves by name. *scripting.Engine implements it.
type Curves interface {
	Ease(name string) (tween.Ease, bool)
}

func resolveEase(curves Curves, name string) (tween.Ease, error) {
	if name == "" {
		return tween.OutQuad, nil
	}
	if curves != nil {
		if e, ok := curves.Ease(name); ok {
			return e, nil
		}
	}
	if e, ok := tween.Builtin(name); ok {
		return e, nil
	}
	return nil, fmt.Errorf("unknown ease %q", name)
}

// popupSettings overlays the [popup] config section on the defaults.
func popupSettings(cfg config.PopupConfig, curves Curves) (popup.Settings, error) {
	s := popup.DefaultSettings()
	if cfg.HideDelay > 0 {
		s.HideDelay = cfg.HideDelay
	}
	if cfg.PulseDuration > 0 {
		s.Pulse.Duration = cfg.PulseDuration
	}
	if cfg.PulseMultiplier > 0 {
		s.Pulse.Multiplier = cfg.PulseMultiplier
	}
	ease, err := resolveEase(curves, cfg.Ease)
	if err != nil {
		return s, fmt.Errorf("popup: %w", err)
	}
	s.Ease = ease

	for name, tc := range cfg.Transitions {
		kind, err := popup.ParseKind(name)
		if err != nil {
			return s, fmt.Errorf("popup transition %q: %w", name, err)
		}
		tr := s.Transitions[kind]
		if tc.Duration > 0 {
			tr.Duration = tc.Duration
		}
		if tc.Offset != [3]float64{} {
			tr.Offset = mgl64.Vec3(tc.Offset)
		}
		if tc.Height > 0 {
			tr.Height = tc.Height
		}
		if tc.Repeat > 0 {
			tr.Repeat = tc.Repeat
		}
		s.Transitions[kind] = tr
	}
	return s, nil
}
