// Package surface sizes a drawing surface's backing store from its container and coalesces the
// bursts of layout events that trigger resizing.
package surface

import (
	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/chewxy/math32"
)

// DefaultMaxPixelRatio caps the device pixel ratio used for the backing store unless configured.
const DefaultMaxPixelRatio float32 = 2

// Result is the outcome of a Recompute.
type Result struct {
	// Width and Height are the backing store size in device pixels.
	Width  int
	Height int

	// Changed is false when the size and cap match the previous computation.
	Changed bool
}

// Controller derives backing store sizes and remembers the last one so redundant reallocations
// can be skipped.
type Controller struct {
	width    int
	height   int
	ratioCap float32
	valid    bool
}

// NewController returns a Controller whose first Recompute always reports a change.
func NewController() *Controller {
	return &Controller{}
}

// Recompute sizes the backing store as floor(css * min(dpr, cap)). A non-positive cap leaves the
// device pixel ratio uncapped.
//
// Parameters:
//   - css: the container size in CSS pixels
//   - dpr: the device pixel ratio
//   - ratioCap: the maximum pixel ratio to honor
//
// Returns:
//   - Result: the backing store size and whether it differs from the previous one
func (c *Controller) Recompute(css common.Size, dpr, ratioCap float32) Result {
	ratio := dpr
	if ratioCap > 0 {
		ratio = math32.Min(dpr, ratioCap)
	}
	if ratio <= 0 {
		ratio = 1
	}
	w := int(math32.Floor(math32.Max(css.Width, 0) * ratio))
	h := int(math32.Floor(math32.Max(css.Height, 0) * ratio))

	changed := !c.valid || w != c.width || h != c.height || ratioCap != c.ratioCap
	c.width, c.height, c.ratioCap, c.valid = w, h, ratioCap, true
	return Result{Width: w, Height: h, Changed: changed}
}

// Reset forgets the previous size so the next Recompute reports a change.
func (c *Controller) Reset() {
	c.valid = false
}

// Size returns the last computed backing store size.
func (c *Controller) Size() (int, int) {
	return c.width, c.height
}
