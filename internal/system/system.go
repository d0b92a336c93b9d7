package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput      Phase = iota // 0: poll input
	PhasePreUpdate               // 1: hot reload, before anything resolves assets
	PhaseUpdate                  // 2: game logic
	PhasePostUpdate              // 3: animation, audio
	PhaseRender                  // 4: draw
	PhaseCleanup                 // 5: garbage collection
)

// System is one per-frame step.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
