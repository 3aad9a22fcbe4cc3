// Package pointer turns raw pointer and touch positions into the normalized, smoothed coordinate
// fed to the mouse uniform.
package pointer

import (
	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/host"
)

// Center is the position both coordinates start at before any pointer input.
var Center = common.V2(0.5, 0.5)

// State is the latest raw pointer position and its smoothed counterpart, both normalized to
// [0,1] over the tracked rectangle with the origin at the bottom-left.
type State struct {
	Raw      common.Vec2
	Smoothed common.Vec2
}

// Tracker records pointer positions from host events and smooths them once per frame.
type Tracker struct {
	state State
}

// NewTracker returns a Tracker centered on the surface.
func NewTracker() *Tracker {
	return &Tracker{state: State{Raw: Center, Smoothed: Center}}
}

// State returns the current raw and smoothed positions.
func (t *Tracker) State() State {
	return t.state
}

// Set overrides the raw position. The smoothed position follows over the next frames.
//
// Parameters:
//   - pos: the normalized position
func (t *Tracker) Set(pos common.Vec2) {
	t.state.Raw = pos
}

// Reset moves both positions back to the center.
func (t *Tracker) Reset() {
	t.state = State{Raw: Center, Smoothed: Center}
}

// OnPointerMove normalizes a client-space position against rect, flipping y so the bottom edge
// is 0. Positions outside rect produce values outside [0,1]. An empty rect is ignored.
//
// Parameters:
//   - clientX: the pointer x in client pixels
//   - clientY: the pointer y in client pixels
//   - rect: the tracked rectangle in client pixels
func (t *Tracker) OnPointerMove(clientX, clientY float32, rect common.Rect) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return
	}
	t.state.Raw = common.Vec2{
		X: (clientX - rect.Left) / rect.Width,
		Y: (rect.Height - (clientY - rect.Top)) / rect.Height,
	}
}

// OnTouchMove tracks the first touch point. When preventScroll is set the event's default
// handling is suppressed through prevent.
//
// Parameters:
//   - touches: the active touch points
//   - rect: the tracked rectangle in client pixels
//   - preventScroll: whether to suppress the default touch handling
//   - prevent: suppresses the default handling; may be nil
func (t *Tracker) OnTouchMove(touches []host.Touch, rect common.Rect, preventScroll bool, prevent func()) {
	if preventScroll && prevent != nil {
		prevent()
	}
	if len(touches) == 0 {
		return
	}
	t.OnPointerMove(touches[0].ClientX, touches[0].ClientY, rect)
}

// Advance moves the smoothed position toward the raw one by (1-factor) of the remaining distance
// and returns it. A factor of 0 snaps to the raw position.
//
// Parameters:
//   - factor: the smoothing factor in [0,1)
//
// Returns:
//   - common.Vec2: the new smoothed position
func (t *Tracker) Advance(factor float32) common.Vec2 {
	t.state.Smoothed = common.Vec2{
		X: common.Approach(t.state.Smoothed.X, t.state.Raw.X, factor),
		Y: common.Approach(t.state.Smoothed.Y, t.state.Raw.Y, factor),
	}
	return t.state.Smoothed
}
