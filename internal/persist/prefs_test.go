package persist

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func TestMemoryPrefs_CRUD(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPrefs()

	if _, ok, _ := p.Load(ctx, "Level"); ok {
		t.Fatalf("empty store returned a value")
	}
	_ = p.Save(ctx, "Level", "3")
	_ = p.Save(ctx, "AudioMuted", "true")
	if v, ok, _ := p.Load(ctx, "Level"); !ok || v != "3" {
		t.Fatalf("Load = %q, %v", v, ok)
	}
	_ = p.Delete(ctx, "Level")
	if has, _ := p.Has(ctx, "Level"); has {
		t.Fatalf("deleted key still present")
	}
	if keys := p.Keys(); len(keys) != 1 || keys[0] != "AudioMuted" {
		t.Fatalf("Keys = %v", keys)
	}
	_ = p.DeleteAll(ctx)
	if len(p.Keys()) != 0 {
		t.Fatalf("DeleteAll left keys")
	}
}

func TestTyped_DefaultsAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPrefs()

	if v, err := LoadBool(ctx, p, "AudioMuted", true); err != nil || !v {
		t.Fatalf("missing bool = %v, %v", v, err)
	}
	if v, _ := LoadInt(ctx, p, "Level", 1); v != 1 {
		t.Fatalf("missing int = %d", v)
	}

	_ = SaveBool(ctx, p, "AudioMuted", false)
	_ = SaveInt(ctx, p, "Level", 12)
	_ = SaveFloat(ctx, p, "Volume", 0.25)
	_ = SaveVec3(ctx, p, "Spawn", mgl64.Vec3{1, -2.5, 3})
	_ = SaveString(ctx, p, "Name", "zen")

	if v, _ := LoadBool(ctx, p, "AudioMuted", true); v {
		t.Fatalf("bool not stored")
	}
	if v, _ := LoadInt(ctx, p, "Level", 1); v != 12 {
		t.Fatalf("int = %d", v)
	}
	if v, _ := LoadFloat(ctx, p, "Volume", 1); v != 0.25 {
		t.Fatalf("float = %v", v)
	}
	if v, _ := LoadVec3(ctx, p, "Spawn", mgl64.Vec3{}); v != (mgl64.Vec3{1, -2.5, 3}) {
		t.Fatalf("vec3 = %v", v)
	}
	if v, _ := LoadString(ctx, p, "Name", ""); v != "zen" {
		t.Fatalf("string = %q", v)
	}
}

func TestTyped_BadValueGivesDefaultAndError(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPrefs()
	_ = p.Save(ctx, "Level", "twelve")
	_ = p.Save(ctx, "Spawn", "1,2")

	if v, err := LoadInt(ctx, p, "Level", 4); err == nil || v != 4 {
		t.Fatalf("LoadInt = %d, %v", v, err)
	}
	if v, err := LoadVec3(ctx, p, "Spawn", mgl64.Vec3{9, 9, 9}); err == nil || v != (mgl64.Vec3{9, 9, 9}) {
		t.Fatalf("LoadVec3 = %v, %v", v, err)
	}
}

func TestTyped_Vec2ColorAndTime(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPrefs()
	def := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	if v, err := LoadTime(ctx, p, "LastPlayed", def); err != nil || !v.Equal(def) {
		t.Fatalf("missing time = %v, %v", v, err)
	}

	played := time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.FixedZone("CET", 3600))
	_ = SaveTime(ctx, p, "LastPlayed", played)
	_ = SaveVec2(ctx, p, "Cursor", mgl64.Vec2{0.5, -8})
	_ = SaveColor(ctx, p, "Tint", mgl64.Vec4{1, 0.25, 0, 0.75})

	if v, err := LoadTime(ctx, p, "LastPlayed", def); err != nil || !v.Equal(played) {
		t.Fatalf("time = %v, %v", v, err)
	}
	if v, _ := LoadVec2(ctx, p, "Cursor", mgl64.Vec2{}); v != (mgl64.Vec2{0.5, -8}) {
		t.Fatalf("vec2 = %v", v)
	}
	if v, _ := LoadColor(ctx, p, "Tint", mgl64.Vec4{}); v != (mgl64.Vec4{1, 0.25, 0, 0.75}) {
		t.Fatalf("color = %v", v)
	}

	_ = p.Save(ctx, "LastPlayed", "yesterday")
	_ = p.Save(ctx, "Cursor", "1,2,3")
	if v, err := LoadTime(ctx, p, "LastPlayed", def); err == nil || !v.Equal(def) {
		t.Fatalf("bad time = %v, %v", v, err)
	}
	if v, err := LoadVec2(ctx, p, "Cursor", mgl64.Vec2{7, 7}); err == nil || v != (mgl64.Vec2{7, 7}) {
		t.Fatalf("bad vec2 = %v, %v", v, err)
	}
}

func TestCodec_PassthroughWithoutSecret(t *testing.T) {
	c, err := NewCodec("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Sealed() || c.Key("AudioMuted") != "AudioMuted" {
		t.Fatalf("empty secret should not hide keys")
	}
	if v, _ := c.Seal("k", "v"); v != "v" {
		t.Fatalf("Seal = %q", v)
	}
}

func TestSealedPrefs_HidesKeysAndValues(t *testing.T) {
	ctx := context.Background()
	c, err := NewCodec("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	store := NewMemoryPrefs()
	p := NewSealedPrefs(store, c)

	if err := SaveBool(ctx, p, "AudioMuted", true); err != nil {
		t.Fatalf("SaveBool: %v", err)
	}
	keys := store.Keys()
	if len(keys) != 1 || strings.Contains(keys[0], "Audio") || len(keys[0]) != 64 {
		t.Fatalf("stored keys = %v", keys)
	}
	raw, _, _ := store.Load(ctx, keys[0])
	if raw == "true" {
		t.Fatalf("value stored in clear")
	}
	if v, err := LoadBool(ctx, p, "AudioMuted", false); err != nil || !v {
		t.Fatalf("LoadBool = %v, %v", v, err)
	}
	if has, _ := p.Has(ctx, "AudioMuted"); !has {
		t.Fatalf("Has = false")
	}
}

func TestSealedPrefs_DetectsTampering(t *testing.T) {
	ctx := context.Background()
	c, _ := NewCodec("secret")
	store := NewMemoryPrefs()
	p := NewSealedPrefs(store, c)
	_ = SaveInt(ctx, p, "Level", 7)
	_ = SaveInt(ctx, p, "Coins", 900)

	// Swap the sealed values: each is bound to its own key.
	level, coins := c.Key("Level"), c.Key("Coins")
	lv, _, _ := store.Load(ctx, level)
	cv, _, _ := store.Load(ctx, coins)
	_ = store.Save(ctx, level, cv)
	_ = store.Save(ctx, coins, lv)

	if _, _, err := p.Load(ctx, "Level"); !errors.Is(err, ErrCorruptValue) {
		t.Fatalf("swapped value err = %v", err)
	}
	_ = store.Save(ctx, coins, "not base64!")
	if _, _, err := p.Load(ctx, "Coins"); !errors.Is(err, ErrCorruptValue) {
		t.Fatalf("garbage value err = %v", err)
	}

	other, _ := NewCodec("another secret")
	if other.Key("Level") == level {
		t.Fatalf("key hash ignores the secret")
	}
}
