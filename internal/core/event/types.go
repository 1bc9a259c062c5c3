package event

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// EntityReturned is emitted when the completion monitor hands an entity back
// to its pool.
type EntityReturned struct {
	Handle uuid.UUID
	Origin string // pool key or family name
}

type EffectPlayed struct {
	Handle   uuid.UUID
	Name     string
	Position mgl64.Vec3
}

type PopUpShown struct {
	Handle   uuid.UUID
	Kind     string
	Position mgl64.Vec3
}

type SoundPlayed struct {
	Handle uuid.UUID
	Name   string
}

type PauseChanged struct {
	Paused bool
}

type MuteChanged struct {
	Muted bool
}

type TimerUpdated struct {
	Remaining time.Duration
	Total     time.Duration
}

type TimeFinished struct{}
