//go:build !js

package host

import (
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// idleTimeout bounds how long the loop sleeps in WaitEventsTimeout when no frame is pending.
const idleTimeout = 100 * time.Millisecond

// Window is a desktop Host backed by a single GLFW window with an OpenGL 4.1 core context.
// The window is both the root element and the only drawable area; every surface created from it
// draws into the window's framebuffer.
//
// A Window must be created and run on the main OS thread.
type Window interface {
	Host

	// Run processes window events, timers and frame callbacks until the window is closed.
	// Buffers are swapped after any iteration that drew.
	Run()

	// Post queues fn to run on the event loop. Safe to call from any goroutine.
	//
	// Parameters:
	//   - fn: the function to run
	Post(fn func())

	// IsRunning returns true if the window is still open.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// SetTitle replaces the title bar text.
	SetTitle(title string)

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window is not initialized
	Close() error
}

// glfwHost is the implementation of the Window interface.
type glfwHost struct {
	title     string
	width     int
	height    int
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int
	vsync     bool

	win     *glfw.Window
	running bool
	drawn   bool

	root     *glfwElement
	surfaces []*glfwSurface
	global   Dispatcher

	observers map[int]func()
	nextObs   int

	frames []FrameFunc

	timers    []*glfwTimer
	nextTimer int

	mu     sync.Mutex
	posted []func()
}

type glfwTimer struct {
	id int
	at time.Duration
	fn func()
}

var _ Window = &glfwHost{}

// NewWindow creates a GLFW window with a current OpenGL 4.1 core context.
// Applies default values first, then each option in order. Locks the calling goroutine to its
// OS thread, as GLFW and OpenGL require.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if GLFW or the window could not be initialized
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	h := &glfwHost{
		title:     "oxy-shader",
		width:     1280,
		height:    720,
		minWidth:  200,
		minHeight: 150,
		vsync:     true,
		observers: make(map[int]func()),
	}
	for _, opt := range options {
		opt(h)
	}

	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(h.width, h.height, h.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.MakeContextCurrent()
	if h.vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	win.SetSizeLimits(h.minWidth, h.minHeight, sizeLimit(h.maxWidth), sizeLimit(h.maxHeight))

	h.win = win
	h.running = true
	h.root = &glfwElement{host: h, root: true, style: make(map[string]string)}

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			h.running = false
			win.SetShouldClose(true)
		}
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetCursorPosCallback
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		h.dispatch(Event{Kind: PointerMove, ClientX: float32(xpos), ClientY: float32(ypos)})
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, _ float64) {
		h.global.Dispatch(Event{Kind: Scroll})
	})

	// The framebuffer callback fires for pixel ratio changes as well as window resizes.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) {
		h.global.Dispatch(Event{Kind: Resize})
		for _, id := range slices.Sorted(maps.Keys(h.observers)) {
			if fn, ok := h.observers[id]; ok {
				fn()
			}
		}
	})

	return h, nil
}

func sizeLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

// dispatch delivers a pointer event to the attached surfaces, the root and the global target,
// mirroring how a browser bubbles a move event up to the window.
func (h *glfwHost) dispatch(ev Event) {
	for _, s := range h.surfaces {
		if s.parent != nil {
			s.Dispatch(ev)
		}
	}
	h.root.Dispatch(ev)
	h.global.Dispatch(ev)
}

func (h *glfwHost) Lookup(selector string) (Element, error) {
	if IsRootSelector(selector) || selector == "#root" {
		return h.root, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
}

func (h *glfwHost) Root() Element {
	return h.root
}

func (h *glfwHost) CreateSurface() Surface {
	s := &glfwSurface{glfwElement: &glfwElement{host: h, style: make(map[string]string)}}
	h.surfaces = append(h.surfaces, s)
	return s
}

// PixelRatio derives the ratio from the framebuffer and window sizes rather than the monitor
// content scale, since on some platforms window coordinates are already in pixels.
func (h *glfwHost) PixelRatio() float32 {
	fbWidth, _ := h.win.GetFramebufferSize()
	width, _ := h.win.GetSize()
	if width <= 0 || fbWidth <= 0 {
		return 1
	}
	return float32(fbWidth) / float32(width)
}

func (h *glfwHost) ViewportSize() common.Size {
	width, height := h.win.GetSize()
	return common.Size{Width: float32(width), Height: float32(height)}
}

func (h *glfwHost) Global() EventTarget {
	return &h.global
}

func (h *glfwHost) ObserveResize(fn func(), _ ...Element) func() {
	h.nextObs++
	id := h.nextObs
	h.observers[id] = fn
	return func() {
		delete(h.observers, id)
	}
}

func (h *glfwHost) RequestFrame(cb FrameFunc) {
	h.frames = append(h.frames, cb)
}

// Now reads the GLFW timer, which starts at zero when GLFW is initialized.
func (h *glfwHost) Now() time.Duration {
	return time.Duration(glfw.GetTime() * float64(time.Second))
}

func (h *glfwHost) AfterFunc(d time.Duration, fn func()) func() {
	h.nextTimer++
	t := &glfwTimer{id: h.nextTimer, at: h.Now() + d, fn: fn}
	h.timers = append(h.timers, t)
	return func() {
		h.timers = slices.DeleteFunc(h.timers, func(other *glfwTimer) bool {
			return other.id == t.id
		})
	}
}

func (h *glfwHost) Post(fn func()) {
	h.mu.Lock()
	h.posted = append(h.posted, fn)
	h.mu.Unlock()
	glfw.PostEmptyEvent()
}

func (h *glfwHost) IsRunning() bool {
	return h.win != nil && h.running && !h.win.ShouldClose()
}

func (h *glfwHost) SetTitle(title string) {
	h.title = title
	if h.win != nil {
		h.win.SetTitle(title)
	}
}

func (h *glfwHost) Run() {
	for h.IsRunning() {
		h.waitEvents()
		h.runPosted()
		h.runTimers()
		h.runFrames()

		if h.drawn {
			h.win.SwapBuffers()
			h.drawn = false
		}
	}
}

// waitEvents polls when a frame is pending and otherwise sleeps until input, a posted function
// or the next timer deadline.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#WaitEventsTimeout
func (h *glfwHost) waitEvents() {
	if len(h.frames) > 0 {
		glfw.PollEvents()
		return
	}
	timeout := idleTimeout
	now := h.Now()
	for _, t := range h.timers {
		if wait := t.at - now; wait < timeout {
			timeout = max(wait, 0)
		}
	}
	if timeout == 0 {
		glfw.PollEvents()
		return
	}
	glfw.WaitEventsTimeout(timeout.Seconds())
}

func (h *glfwHost) runPosted() {
	h.mu.Lock()
	posted := h.posted
	h.posted = nil
	h.mu.Unlock()
	for _, fn := range posted {
		fn()
	}
}

func (h *glfwHost) runTimers() {
	now := h.Now()
	var due []*glfwTimer
	h.timers = slices.DeleteFunc(h.timers, func(t *glfwTimer) bool {
		if t.at <= now {
			due = append(due, t)
			return true
		}
		return false
	})
	for _, t := range due {
		t.fn()
	}
}

func (h *glfwHost) runFrames() {
	if len(h.frames) == 0 {
		return
	}
	frames := h.frames
	h.frames = nil
	now := h.Now()
	for _, cb := range frames {
		cb(now)
	}
}

func (h *glfwHost) Close() error {
	if h.win == nil {
		return fmt.Errorf("window is not initialized")
	}
	h.running = false
	h.win.SetShouldClose(true)
	h.win.Destroy()
	h.win = nil
	glfw.Terminate()
	return nil
}

// glfwElement is an element of the desktop layout: either the window root or a surface.
type glfwElement struct {
	Dispatcher
	host     *glfwHost
	root     bool
	style    map[string]string
	children []Element
}

func (e *glfwElement) ClientSize() common.Size {
	return e.host.ViewportSize()
}

func (e *glfwElement) BoundingRect() common.Rect {
	size := e.ClientSize()
	return common.Rect{Width: size.Width, Height: size.Height}
}

func (e *glfwElement) IsRoot() bool {
	return e.root
}

func (e *glfwElement) Style(prop string) string {
	return e.style[prop]
}

func (e *glfwElement) SetStyle(prop, value string) {
	e.style[prop] = value
}

func (e *glfwElement) Contains(other Element) bool {
	if other == nil {
		return false
	}
	if s, ok := other.(*glfwSurface); ok && s.glfwElement == e {
		return true
	}
	if o, ok := other.(*glfwElement); ok && o == e {
		return true
	}
	for _, child := range e.children {
		if child.Contains(other) {
			return true
		}
	}
	return false
}

func (e *glfwElement) Append(child Element) {
	e.children = append(e.children, child)
	if s, ok := child.(*glfwSurface); ok {
		s.parent = e
	}
}

func (e *glfwElement) Remove(child Element) {
	i := slices.Index(e.children, child)
	if i < 0 {
		return
	}
	e.children = slices.Delete(e.children, i, i+1)
	if s, ok := child.(*glfwSurface); ok {
		s.parent = nil
	}
}

// glfwSurface draws into the window framebuffer. Its backing size is advisory: the framebuffer
// always matches the window, and the renderer's viewport uses the recorded size.
type glfwSurface struct {
	*glfwElement
	parent        Element
	width, height int
	backend       graphics.Backend
}

func (s *glfwSurface) SetBackingSize(width, height int) {
	s.width, s.height = width, height
}

func (s *glfwSurface) BackingSize() (int, int) {
	return s.width, s.height
}

func (s *glfwSurface) Parent() Element {
	return s.parent
}

func (s *glfwSurface) GraphicsContext() (graphics.Backend, error) {
	if s.host.win == nil {
		return nil, graphics.ErrContextLost
	}
	if s.backend != nil && !s.backend.ContextLost() {
		return s.backend, nil
	}
	s.host.win.MakeContextCurrent()
	b, err := graphics.NewGLBackend()
	if err != nil {
		return nil, err
	}
	s.backend = &swapTracker{Backend: b, host: s.host}
	return s.backend, nil
}

// swapTracker marks the window dirty whenever a draw call is issued, so the loop only swaps
// buffers after something was actually drawn.
type swapTracker struct {
	graphics.Backend
	host *glfwHost
}

func (t *swapTracker) DrawTriangles(first, count int32) {
	t.Backend.DrawTriangles(first, count)
	t.host.drawn = true
}
