// Package audio plays named sounds through a capped pool of emitters mixed
// into one beep stream.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/zencore/toolkit/internal/scene"
)

// Clip is a synthesized tone.
type Clip struct {
	Frequency float64
	Duration  time.Duration
}

// Sound is a named set of clips; Play picks one at random.
type Sound struct {
	Name   string
	Clips  []Clip
	Volume float64 // 0..1
	Pitch  float64 // playback rate, 1 = unchanged
	Loop   bool
}

// Emitter is a pooled audio source attached to a scene node.
type Emitter struct {
	*scene.Node
	ctrl    *beep.Ctrl
	volume  *effects.Volume
	sound   string
	level   float64
	playing bool
}

func NewEmitter(n *scene.Node) *Emitter {
	return &Emitter{Node: n}
}

// Sound returns the name of the sound last played.
func (e *Emitter) Sound() string { return e.sound }

// Playing reports whether the emitter's stream has not drained or been
// stopped.
func (e *Emitter) Playing() bool { return e.playing }

// start builds the stream for clip and returns it for the mixer.
func (e *Emitter) start(s Sound, clip Clip, sr beep.SampleRate) (beep.Streamer, error) {
	tone, err := generators.SineTone(sr, clip.Frequency)
	if err != nil {
		return nil, err
	}
	// A looping sound is the endless tone itself.
	src := tone
	if !s.Loop {
		src = beep.Take(sr.N(clip.Duration), tone)
	}
	if s.Pitch > 0 && s.Pitch != 1 {
		src = beep.ResampleRatio(3, s.Pitch, src)
	}
	e.volume = &effects.Volume{Streamer: src, Base: 2}
	e.sound = s.Name
	e.playing = true
	e.setLevel(s.Volume)

	e.ctrl = &beep.Ctrl{Streamer: beep.Seq(e.volume, beep.Callback(func() { e.playing = false }))}
	return e.ctrl, nil
}

func (e *Emitter) setLevel(v float64) {
	e.level = v
	if e.volume == nil {
		return
	}
	if v <= 0 {
		e.volume.Volume = 0
		e.volume.Silent = true
		return
	}
	e.volume.Volume = math.Log2(v)
	e.volume.Silent = false
}

// Level returns the linear volume in effect.
func (e *Emitter) Level() float64 { return e.level }

// Silent reports whether the emitter is currently producing silence.
func (e *Emitter) Silent() bool { return e.volume == nil || e.volume.Silent }

// Stop cuts the stream; the mixer drops it on its next pull.
func (e *Emitter) Stop() {
	if e.ctrl != nil {
		e.ctrl.Streamer = nil
	}
	e.playing = false
}

type emitterFactory struct {
	scene *scene.Scene
	name  string
}

func (f emitterFactory) Template() string { return f.name }

func (f emitterFactory) Instantiate() (*Emitter, error) {
	n, err := f.scene.Instantiate(f.name, nil)
	if err != nil {
		return nil, err
	}
	return NewEmitter(n), nil
}

func (f emitterFactory) Destroy(e *Emitter) {
	e.Stop()
	f.scene.Destroy(e.Node)
}
