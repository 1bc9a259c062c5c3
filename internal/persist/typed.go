package persist

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// The Load helpers return def when the key is missing. A stored value that
// does not parse also yields def, together with the parse error.

func LoadString(ctx context.Context, p Prefs, key, def string) (string, error) {
	v, ok, err := p.Load(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

func SaveString(ctx context.Context, p Prefs, key, v string) error {
	return p.Save(ctx, key, v)
}

func LoadBool(ctx context.Context, p Prefs, key string, def bool) (bool, error) {
	return load(ctx, p, key, def, strconv.ParseBool)
}

func SaveBool(ctx context.Context, p Prefs, key string, v bool) error {
	return p.Save(ctx, key, strconv.FormatBool(v))
}

func LoadInt(ctx context.Context, p Prefs, key string, def int) (int, error) {
	return load(ctx, p, key, def, strconv.Atoi)
}

func SaveInt(ctx context.Context, p Prefs, key string, v int) error {
	return p.Save(ctx, key, strconv.Itoa(v))
}

func LoadFloat(ctx context.Context, p Prefs, key string, def float64) (float64, error) {
	return load(ctx, p, key, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func SaveFloat(ctx context.Context, p Prefs, key string, v float64) error {
	return p.Save(ctx, key, strconv.FormatFloat(v, 'g', -1, 64))
}

func LoadVec2(ctx context.Context, p Prefs, key string, def mgl64.Vec2) (mgl64.Vec2, error) {
	return load(ctx, p, key, def, func(s string) (v mgl64.Vec2, err error) {
		err = parseFloats(s, "vec2", v[:])
		return v, err
	})
}

func SaveVec2(ctx context.Context, p Prefs, key string, v mgl64.Vec2) error {
	return p.Save(ctx, key, formatFloats(v[:]))
}

func LoadVec3(ctx context.Context, p Prefs, key string, def mgl64.Vec3) (mgl64.Vec3, error) {
	return load(ctx, p, key, def, func(s string) (v mgl64.Vec3, err error) {
		err = parseFloats(s, "vec3", v[:])
		return v, err
	})
}

func SaveVec3(ctx context.Context, p Prefs, key string, v mgl64.Vec3) error {
	return p.Save(ctx, key, formatFloats(v[:]))
}

// Colors are RGBA in the 0..1 range.
func LoadColor(ctx context.Context, p Prefs, key string, def mgl64.Vec4) (mgl64.Vec4, error) {
	return load(ctx, p, key, def, func(s string) (v mgl64.Vec4, err error) {
		err = parseFloats(s, "color", v[:])
		return v, err
	})
}

func SaveColor(ctx context.Context, p Prefs, key string, v mgl64.Vec4) error {
	return p.Save(ctx, key, formatFloats(v[:]))
}

// Times are stored as RFC 3339 with nanoseconds.
func LoadTime(ctx context.Context, p Prefs, key string, def time.Time) (time.Time, error) {
	return load(ctx, p, key, def, func(s string) (time.Time, error) {
		return time.Parse(time.RFC3339Nano, s)
	})
}

func SaveTime(ctx context.Context, p Prefs, key string, v time.Time) error {
	return p.Save(ctx, key, v.Format(time.RFC3339Nano))
}

func formatFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, c := range v {
		parts[i] = strconv.FormatFloat(c, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// parseFloats fills dst from a comma separated list of exactly len(dst)
// components. dst is zeroed on error.
func parseFloats(s, what string, dst []float64) error {
	parts := strings.Split(s, ",")
	if len(parts) != len(dst) {
		return fmt.Errorf("%s %q: want %d components", what, s, len(dst))
	}
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			clear(dst)
			return fmt.Errorf("%s %q: %w", what, s, err)
		}
		dst[i] = f
	}
	return nil
}

func load[T any](ctx context.Context, p Prefs, key string, def T, parse func(string) (T, error)) (T, error) {
	raw, ok, err := p.Load(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	v, err := parse(raw)
	if err != nil {
		return def, fmt.Errorf("pref %s: %w", key, err)
	}
	return v, nil
}
