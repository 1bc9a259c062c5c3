package system

import (
	"github.com/zencore/toolkit/internal/core/clock"
	coresys "github.com/zencore/toolkit/internal/core/system"
	"github.com/zencore/toolkit/internal/scene"
)

// CleanupSystem flushes the scene's deferred destruction queue at tick end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	scene *scene.Scene
}

func NewCleanupSystem(sc *scene.Scene) *CleanupSystem {
	return &CleanupSystem{scene: sc}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ clock.Frame) {
	s.scene.Flush()
}
