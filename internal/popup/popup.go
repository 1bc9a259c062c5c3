// Package popup shows floating text and icon pop-ups: pooled nodes that pulse,
// play a transition, hold, and return to their pool on their own.
package popup

import (
	"errors"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/scene"
	"github.com/zencore/toolkit/internal/tween"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidContent = errors.New("popup: invalid content")
	ErrUnknownKind    = errors.New("popup: unknown animation kind")
)

// Base is the part shared by every pop-up: the node, its baseline scale, the
// pulse and the sequencer.
type Base struct {
	*scene.Node
	engine   *tween.Engine
	baseline mgl64.Vec3
	pulse    *tween.Sequence
	seq      *Sequencer
}

func newBase(n *scene.Node, engine *tween.Engine) Base {
	return Base{
		Node:     n,
		engine:   engine,
		baseline: n.Scale(),
		seq:      NewSequencer(n, engine),
	}
}

func (b *Base) Sequencer() *Sequencer { return b.seq }

func (b *Base) Baseline() mgl64.Vec3 { return b.baseline }

// PlayPulse restarts the appear punch.
func (b *Base) PlayPulse(p Pulse, ease tween.Ease) {
	b.pulse.Kill()
	if p.Duration <= 0 || p.Multiplier <= 0 {
		b.pulse = nil
		return
	}
	half := p.Duration / 2
	b.pulse = b.engine.Play(tween.NewSequence().SetEase(ease).
		ScaleTo(b.Node, b.baseline.Mul(p.Multiplier), half).
		ScaleTo(b.Node, b.baseline, half))
}

// ResetProperties stops every animation and restores the baseline transform.
func (b *Base) ResetProperties() {
	b.pulse.Kill()
	b.pulse = nil
	b.seq.Cancel()
	b.SetScale(b.baseline)
	b.SetRotation(mgl64.QuatIdent())
}

// Text is a pop-up showing a line of text.
type Text struct {
	Base
	text string
}

func NewText(n *scene.Node, engine *tween.Engine) *Text {
	return &Text{Base: newBase(n, engine)}
}

// SetContent stores s in NFC form. Blank strings are rejected.
func (t *Text) SetContent(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrInvalidContent
	}
	t.text = norm.NFC.String(s)
	return nil
}

func (t *Text) Content() string { return t.text }

func (t *Text) ResetProperties() {
	t.Base.ResetProperties()
	t.text = ""
}

// Icon is a pop-up showing a sprite, referenced by name.
type Icon struct {
	Base
	sprite string
}

func NewIcon(n *scene.Node, engine *tween.Engine) *Icon {
	return &Icon{Base: newBase(n, engine)}
}

func (i *Icon) SetContent(sprite string) error {
	if sprite == "" {
		return ErrInvalidContent
	}
	i.sprite = sprite
	return nil
}

func (i *Icon) Content() string { return i.sprite }

func (i *Icon) ResetProperties() {
	i.Base.ResetProperties()
	i.sprite = ""
}

// TextFactory builds text pop-ups from a scene template.
type TextFactory struct {
	Scene  *scene.Scene
	Engine *tween.Engine
	Name   string
}

func (f TextFactory) Template() string { return f.Name }

func (f TextFactory) Instantiate() (*Text, error) {
	n, err := f.Scene.Instantiate(f.Name, nil)
	if err != nil {
		return nil, err
	}
	return NewText(n, f.Engine), nil
}

func (f TextFactory) Destroy(t *Text) { f.Scene.Destroy(t.Node) }

// IconFactory builds icon pop-ups from a scene template.
type IconFactory struct {
	Scene  *scene.Scene
	Engine *tween.Engine
	Name   string
}

func (f IconFactory) Template() string { return f.Name }

func (f IconFactory) Instantiate() (*Icon, error) {
	n, err := f.Scene.Instantiate(f.Name, nil)
	if err != nil {
		return nil, err
	}
	return NewIcon(n, f.Engine), nil
}

func (f IconFactory) Destroy(i *Icon) { f.Scene.Destroy(i.Node) }
