package renderer

import "fmt"

// State is the lifecycle state of a Renderer.
type State int

const (
	// StateStopped is the initial state. Time is zero and no frames are scheduled.
	StateStopped State = iota

	// StateRunning advances time and schedules a frame after every frame.
	StateRunning

	// StatePaused keeps the accumulated time but schedules no frames.
	StatePaused

	// StateDisposed means every resource has been released. Only Reload and Dispose are valid.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// idle reports whether the state is one where changes must be drawn by a forced redraw.
func (s State) idle() bool {
	return s == StatePaused || s == StateStopped
}

// MouseTarget selects the element pointer and touch listeners are attached to.
type MouseTarget int

const (
	// MouseTargetSurface listens on the drawing surface. This is the default.
	MouseTargetSurface MouseTarget = iota

	// MouseTargetContainer listens on the element the surface is mounted in.
	MouseTargetContainer

	// MouseTargetGlobal listens on the window.
	MouseTargetGlobal
)

func (m MouseTarget) String() string {
	switch m {
	case MouseTargetSurface:
		return "surface"
	case MouseTargetContainer:
		return "container"
	case MouseTargetGlobal:
		return "global"
	default:
		return fmt.Sprintf("mousetarget(%d)", int(m))
	}
}

// ParseMouseTarget maps a mouse target name to its value. "canvas" and "window" are accepted as
// aliases of "surface" and "global".
//
// Parameters:
//   - name: the target name
//
// Returns:
//   - MouseTarget: the parsed target
//   - error: an error for unknown names
func ParseMouseTarget(name string) (MouseTarget, error) {
	switch name {
	case "", "surface", "canvas":
		return MouseTargetSurface, nil
	case "container":
		return MouseTargetContainer, nil
	case "global", "window":
		return MouseTargetGlobal, nil
	}
	return MouseTargetSurface, fmt.Errorf("renderer: unknown mouse target %q", name)
}
