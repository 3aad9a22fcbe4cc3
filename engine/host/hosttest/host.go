// Package hosttest provides a deterministic host.Host for tests: a manual clock, a manual frame
// pump, in-memory elements and a recording graphics backend.
package hosttest

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
	"github.com/Carmen-Shannon/oxy-shader/engine/graphics/graphicstest"
	"github.com/Carmen-Shannon/oxy-shader/engine/host"
)

// Host is a fake host.Host. Nothing happens until the test advances the clock or pumps frames.
type Host struct {
	// Backend is handed out by every surface's GraphicsContext.
	Backend *graphicstest.Backend

	// ContextErr, when set, makes GraphicsContext fail.
	ContextErr error

	Ratio    float32
	Viewport common.Size

	now       time.Duration
	root      *Element
	global    *Element
	elements  map[string]*Element
	frames    []host.FrameFunc
	timers    []*timer
	nextTimer int
	observers map[int]*observer
	nextObs   int
}

type timer struct {
	id int
	at time.Duration
	fn func()
}

type observer struct {
	fn    func()
	elems []host.Element
}

var _ host.Host = &Host{}

// New returns a fake host with an 800x600 viewport and a pixel ratio of 1.
func New() *Host {
	h := &Host{
		Backend:   graphicstest.New(),
		Ratio:     1,
		Viewport:  common.Size{Width: 800, Height: 600},
		elements:  make(map[string]*Element),
		observers: make(map[int]*observer),
	}
	h.root = &Element{host: h, root: true, style: make(map[string]string)}
	h.global = &Element{host: h, root: true, style: make(map[string]string)}
	return h
}

// AddElement creates an element under the root, reachable through Lookup(selector).
//
// Parameters:
//   - selector: the lookup key
//   - rect: the element's bounding rectangle; its size is also the client size
//
// Returns:
//   - *Element: the new element
func (h *Host) AddElement(selector string, rect common.Rect) *Element {
	el := &Element{host: h, rect: rect, style: make(map[string]string)}
	h.root.Append(el)
	h.elements[selector] = el
	return el
}

// NewSurface returns a detached surface, as a caller adopting an existing canvas would hold.
func (h *Host) NewSurface() *Surface {
	return &Surface{Element: &Element{host: h, style: make(map[string]string)}}
}

func (h *Host) Lookup(selector string) (host.Element, error) {
	if host.IsRootSelector(selector) {
		return h.root, nil
	}
	if el, ok := h.elements[selector]; ok {
		return el, nil
	}
	return nil, fmt.Errorf("%w: %q", host.ErrNotFound, selector)
}

func (h *Host) Root() host.Element {
	return h.root
}

// RootElement returns the root with its concrete type.
func (h *Host) RootElement() *Element {
	return h.root
}

func (h *Host) CreateSurface() host.Surface {
	return h.NewSurface()
}

func (h *Host) PixelRatio() float32 {
	return h.Ratio
}

func (h *Host) ViewportSize() common.Size {
	return h.Viewport
}

func (h *Host) Global() host.EventTarget {
	return h.global
}

// GlobalTarget returns the window-level target with its concrete type.
func (h *Host) GlobalTarget() *Element {
	return h.global
}

func (h *Host) ObserveResize(fn func(), elems ...host.Element) func() {
	h.nextObs++
	id := h.nextObs
	h.observers[id] = &observer{fn: fn, elems: elems}
	return func() {
		delete(h.observers, id)
	}
}

// Observers returns the number of connected resize observers.
func (h *Host) Observers() int {
	return len(h.observers)
}

func (h *Host) RequestFrame(cb host.FrameFunc) {
	h.frames = append(h.frames, cb)
}

// PendingFrames returns the number of frame callbacks waiting for the next Frame call.
func (h *Host) PendingFrames() int {
	return len(h.frames)
}

func (h *Host) Now() time.Duration {
	return h.now
}

func (h *Host) AfterFunc(d time.Duration, fn func()) func() {
	h.nextTimer++
	t := &timer{id: h.nextTimer, at: h.now + d, fn: fn}
	h.timers = append(h.timers, t)
	return func() {
		h.timers = slices.DeleteFunc(h.timers, func(other *timer) bool {
			return other.id == t.id
		})
	}
}

// PendingTimers returns the number of timers that have not fired or been cancelled.
func (h *Host) PendingTimers() int {
	return len(h.timers)
}

// Advance moves the clock forward by d, firing due timers in deadline order.
//
// Parameters:
//   - d: the amount of time to advance
func (h *Host) Advance(d time.Duration) {
	target := h.now + d
	for {
		sort.SliceStable(h.timers, func(i, j int) bool { return h.timers[i].at < h.timers[j].at })
		if len(h.timers) == 0 || h.timers[0].at > target {
			break
		}
		t := h.timers[0]
		h.timers = h.timers[1:]
		h.now = max(h.now, t.at)
		t.fn()
	}
	h.now = target
}

// Frame runs every frame callback pending at the time of the call with the current clock.
// Callbacks requested while running are deferred to the next Frame call.
//
// Returns:
//   - int: the number of callbacks run
func (h *Host) Frame() int {
	frames := h.frames
	h.frames = nil
	for _, cb := range frames {
		cb(h.now)
	}
	return len(frames)
}

// Step advances the clock by d and then runs pending frames.
//
// Returns:
//   - int: the number of callbacks run
func (h *Host) Step(d time.Duration) int {
	h.Advance(d)
	return h.Frame()
}

// ResizeViewport changes the viewport, dispatches a global resize event and notifies observers
// of the root element.
func (h *Host) ResizeViewport(size common.Size) {
	h.Viewport = size
	h.global.Dispatch(host.Event{Kind: host.Resize})
	h.notify(h.root)
}

// ResizeElement changes an element's size and notifies observers watching it.
func (h *Host) ResizeElement(el *Element, size common.Size) {
	el.rect.Width = size.Width
	el.rect.Height = size.Height
	h.notify(el)
}

func (h *Host) notify(el host.Element) {
	for _, id := range slices.Sorted(maps.Keys(h.observers)) {
		obs, ok := h.observers[id]
		if !ok {
			continue
		}
		for _, watched := range obs.elems {
			if watched == el {
				obs.fn()
				break
			}
		}
	}
}

// Element is an in-memory host.Element.
type Element struct {
	host.Dispatcher
	host     *Host
	root     bool
	rect     common.Rect
	style    map[string]string
	parent   *Element
	children []host.Element
}

func (e *Element) ClientSize() common.Size {
	if e.root {
		return e.host.Viewport
	}
	return e.rect.Size()
}

func (e *Element) BoundingRect() common.Rect {
	if e.root {
		return common.Rect{Width: e.host.Viewport.Width, Height: e.host.Viewport.Height}
	}
	return e.rect
}

// SetRect moves or resizes the element without notifying observers.
func (e *Element) SetRect(rect common.Rect) {
	e.rect = rect
}

func (e *Element) IsRoot() bool {
	return e.root
}

func (e *Element) Style(prop string) string {
	return e.style[prop]
}

func (e *Element) SetStyle(prop, value string) {
	e.style[prop] = value
}

func (e *Element) Contains(other host.Element) bool {
	o := asElement(other)
	if o == nil {
		return false
	}
	for n := o; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

func (e *Element) Append(child host.Element) {
	c := asElement(child)
	if c == nil {
		return
	}
	c.parent = e
	e.children = append(e.children, child)
}

func (e *Element) Remove(child host.Element) {
	i := slices.Index(e.children, child)
	if i < 0 {
		return
	}
	e.children = slices.Delete(e.children, i, i+1)
	if c := asElement(child); c != nil {
		c.parent = nil
	}
}

// Children returns the attached child elements.
func (e *Element) Children() []host.Element {
	return e.children
}

func asElement(el host.Element) *Element {
	switch v := el.(type) {
	case *Element:
		return v
	case *Surface:
		return v.Element
	}
	return nil
}

// Surface is an in-memory host.Surface drawing into the host's fake backend.
type Surface struct {
	*Element
	width, height int
}

// ClientSize falls back to the parent's size while the surface has no explicit rectangle,
// as a surface stretched over its container would report.
func (s *Surface) ClientSize() common.Size {
	return s.BoundingRect().Size()
}

func (s *Surface) BoundingRect() common.Rect {
	if s.rect == (common.Rect{}) && s.parent != nil {
		return s.parent.BoundingRect()
	}
	return s.rect
}

func (s *Surface) SetBackingSize(width, height int) {
	s.width, s.height = width, height
}

func (s *Surface) BackingSize() (int, int) {
	return s.width, s.height
}

func (s *Surface) Parent() host.Element {
	if s.parent == nil {
		return nil
	}
	return s.parent
}

// GraphicsContext returns the host backend, clearing its released flag to model a fresh context.
func (s *Surface) GraphicsContext() (graphics.Backend, error) {
	if s.host.ContextErr != nil {
		return nil, s.host.ContextErr
	}
	s.host.Backend.Released = false
	return s.host.Backend, nil
}
