package popup

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/tween"
)

// Transition is the motion of one Kind. Offset applies to the slides,
// Height and Repeat to Bounce.
type Transition struct {
	Duration time.Duration
	Offset   mgl64.Vec3
	Height   float64
	Repeat   int
}

// Pulse is the scale punch played when a pop-up appears: up to
// baseline*Multiplier over half of Duration, back over the other half.
type Pulse struct {
	Duration   time.Duration
	Multiplier float64
}

type Settings struct {
	HideDelay   time.Duration
	Pulse       Pulse
	Transitions map[Kind]Transition
	Ease        tween.Ease
}

const defaultDuration = 500 * time.Millisecond

func DefaultSettings() Settings {
	slide := mgl64.Vec3{0, 2, 0}
	return Settings{
		HideDelay: time.Second,
		Pulse:     Pulse{Duration: 300 * time.Millisecond, Multiplier: 1.2},
		Transitions: map[Kind]Transition{
			ScaleAndFade: {Duration: defaultDuration},
			SlideUp:      {Duration: defaultDuration, Offset: slide},
			SlideDown:    {Duration: defaultDuration, Offset: slide},
			Bounce:       {Duration: defaultDuration, Height: 2, Repeat: 3},
		},
		Ease: tween.OutQuad,
	}
}

// Transition returns the configured transition for k, falling back to the
// default one.
func (s Settings) Transition(k Kind) Transition {
	if tr, ok := s.Transitions[k]; ok {
		if tr.Duration <= 0 {
			tr.Duration = defaultDuration
		}
		return tr
	}
	return DefaultSettings().Transitions[k]
}
