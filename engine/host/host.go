// Package host defines the environment a renderer lives in: the element tree it is mounted into,
// the drawing surface, input events, frame scheduling and the clock. Desktop (GLFW) and browser
// (js/wasm) implementations are provided, and hosttest offers a deterministic fake.
package host

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
)

// EventKind identifies the input or layout event a listener is registered for.
type EventKind int

const (
	// PointerMove fires when the mouse pointer moves.
	PointerMove EventKind = iota

	// TouchMove fires when one or more touch points move.
	TouchMove

	// Resize fires when the viewport changes size.
	Resize

	// Scroll fires when the page or a scrollable ancestor scrolls.
	Scroll
)

func (k EventKind) String() string {
	switch k {
	case PointerMove:
		return "pointermove"
	case TouchMove:
		return "touchmove"
	case Resize:
		return "resize"
	case Scroll:
		return "scroll"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Touch is a single touch point in client coordinates.
type Touch struct {
	ClientX float32
	ClientY float32
}

// Event carries the data of a dispatched host event. Coordinates are in client (CSS) pixels
// with the origin at the top-left of the viewport.
type Event struct {
	Kind    EventKind
	ClientX float32
	ClientY float32
	Touches []Touch

	// Prevent suppresses the host's default handling of the event, if it has any.
	Prevent func()
}

// PreventDefault suppresses the host's default handling of the event, such as touch scrolling.
func (e Event) PreventDefault() {
	if e.Prevent != nil {
		e.Prevent()
	}
}

// Listener receives dispatched events.
type Listener func(ev Event)

// FrameFunc is invoked by the host before the next repaint with the host clock reading.
type FrameFunc func(now time.Duration)

// ErrNotFound is returned by Lookup when no element matches a selector.
var ErrNotFound = errors.New("host: element not found")

// EventTarget is anything listeners can be attached to.
type EventTarget interface {
	// AddEventListener registers a listener for one kind of event.
	//
	// Parameters:
	//   - kind: the event kind to listen for
	//   - fn: the listener
	//
	// Returns:
	//   - func(): removes the listener; safe to call more than once
	AddEventListener(kind EventKind, fn Listener) (remove func())
}

// Element is a node of the host's layout tree that can contain a surface.
type Element interface {
	EventTarget

	// ClientSize returns the inner layout size of the element in CSS pixels.
	//
	// Returns:
	//   - common.Size: the client size
	ClientSize() common.Size

	// BoundingRect returns the element's rectangle relative to the viewport.
	//
	// Returns:
	//   - common.Rect: the bounding rectangle
	BoundingRect() common.Rect

	// IsRoot reports whether the element is the document root (body or window).
	//
	// Returns:
	//   - bool: true for the root element
	IsRoot() bool

	// Style returns the computed value of a style property, or "" if unset.
	Style(prop string) string

	// SetStyle sets an inline style property.
	SetStyle(prop, value string)

	// Contains reports whether other is this element or one of its descendants.
	Contains(other Element) bool

	// Append adds child as the last child of this element.
	Append(child Element)

	// Remove detaches child from this element. Removing a non-child is a no-op.
	Remove(child Element)
}

// Surface is a drawable element that owns a graphics context.
type Surface interface {
	Element

	// SetBackingSize sets the drawing buffer size in device pixels.
	//
	// Parameters:
	//   - width: buffer width in device pixels
	//   - height: buffer height in device pixels
	SetBackingSize(width, height int)

	// BackingSize returns the drawing buffer size in device pixels.
	//
	// Returns:
	//   - int: buffer width
	//   - int: buffer height
	BackingSize() (int, int)

	// Parent returns the element the surface is attached to, or nil when detached.
	Parent() Element

	// GraphicsContext returns the surface's graphics backend, creating it on first use or after
	// the previous one was released.
	//
	// Returns:
	//   - graphics.Backend: the backend
	//   - error: an error if no context can be created
	GraphicsContext() (graphics.Backend, error)
}

// Host is the environment capability a renderer is driven by. All callbacks (listeners, frames,
// timers, resize observers) run on the host's single event loop.
type Host interface {
	// Lookup resolves a selector to an element. "", "body" and "window" resolve to the root.
	//
	// Parameters:
	//   - selector: the element selector
	//
	// Returns:
	//   - Element: the matching element
	//   - error: ErrNotFound (wrapped) if nothing matches
	Lookup(selector string) (Element, error)

	// Root returns the document root element.
	Root() Element

	// CreateSurface creates a new, detached surface.
	CreateSurface() Surface

	// PixelRatio returns the ratio of device pixels to CSS pixels.
	PixelRatio() float32

	// ViewportSize returns the visible viewport size in CSS pixels.
	ViewportSize() common.Size

	// Global returns the window-level event target.
	Global() EventTarget

	// ObserveResize calls fn whenever one of elems changes size.
	//
	// Parameters:
	//   - fn: the callback
	//   - elems: the elements to observe
	//
	// Returns:
	//   - func(): stops observing
	ObserveResize(fn func(), elems ...Element) (disconnect func())

	// RequestFrame schedules cb to run once before the next repaint.
	RequestFrame(cb FrameFunc)

	// Now returns the monotonic host clock.
	Now() time.Duration

	// AfterFunc runs fn on the event loop once d has elapsed.
	//
	// Parameters:
	//   - d: the delay
	//   - fn: the callback
	//
	// Returns:
	//   - func(): cancels the timer if it has not fired yet
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// IsRootSelector reports whether a selector names the document root.
func IsRootSelector(selector string) bool {
	switch selector {
	case "", "body", "window":
		return true
	}
	return false
}
