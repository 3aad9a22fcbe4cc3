// Package renderer drives a single full-screen shader: it mounts a surface in a container, compiles
// the shader pair, keeps the backing store sized to the container and feeds time, resolution,
// pointer and custom uniforms into the program on every frame.
package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/geometry"
	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
	"github.com/Carmen-Shannon/oxy-shader/engine/host"
	"github.com/Carmen-Shannon/oxy-shader/engine/pointer"
	"github.com/Carmen-Shannon/oxy-shader/engine/profiler"
	"github.com/Carmen-Shannon/oxy-shader/engine/shader"
	"github.com/Carmen-Shannon/oxy-shader/engine/surface"
	"github.com/Carmen-Shannon/oxy-shader/engine/trace"
	"github.com/Carmen-Shannon/oxy-shader/engine/uniform"
)

// MaxFrameDelta bounds the time a single frame may advance, so a long stall does not jump ahead.
const MaxFrameDelta = 100 * time.Millisecond

// RenderListener is called before every frame is drawn with the accumulated time and the frame
// delta, both in seconds. It observes the values from before the frame advances time.
type RenderListener func(time, delta float64)

type renderListener struct {
	id int
	fn RenderListener
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	host host.Host

	// Configuration collected from builder options
	selector      string
	adopted       host.Surface
	vertexSrc     string
	fragmentSrc   string
	autoStart     bool
	autoInit      bool
	preventScroll bool
	maxPixelRatio float32
	speed         float64
	smoothing     float32
	mousePosition *common.Vec2
	mouseTarget   MouseTarget
	tracer        trace.Hook
	profiling     bool
	optErr        error

	state       State
	initialized bool
	seeded      bool
	err         error

	container   host.Element
	drawSurface host.Surface
	ctx         graphics.Backend
	program     shader.Program
	quad        geometry.Quad
	attrib      uint32
	bindings    uniform.BindingSet
	rect        common.Rect

	registry *uniform.Registry
	tracker  *pointer.Tracker
	sizing   *surface.Controller
	resizer  *surface.Coalescer
	scroller *surface.Coalescer
	profiler *profiler.Profiler
	builtins uniform.Builtins
	time     float64

	then         time.Duration
	framePending bool
	gen          int

	listeners      []renderListener
	nextListenerID int
	removers       []func()
}

// Renderer owns one drawing surface and the shader program drawn into it.
//
// All methods must be called from the host's event loop. Frames are scheduled through the host,
// at most one at a time, and run strictly in sequence.
type Renderer interface {
	// Init mounts the surface, attaches listeners and compiles the shaders. NewRenderer calls it
	// unless WithAutoInit(false) was given. Calling Init on an initialized renderer does nothing.
	//
	// Returns:
	//   - error: a *ConfigurationError, a compile or uniform validation error, or a *DisposedStateError
	Init() error

	// Start runs the frame loop from a stopped or paused state. Starting a running renderer does
	// nothing.
	//
	// Returns:
	//   - error: a *DisposedStateError after Dispose
	Start() error

	// Pause stops scheduling frames while keeping the accumulated time.
	//
	// Returns:
	//   - error: a *DisposedStateError after Dispose
	Pause() error

	// Stop stops scheduling frames and resets the time to zero.
	//
	// Returns:
	//   - error: a *DisposedStateError after Dispose
	Stop() error

	// Restart starts a stopped or paused renderer and rebuilds a disposed one.
	//
	// Returns:
	//   - error: any error from Start or Reload
	Restart() error

	// Reload tears down the surface, context and listeners and initializes again, recompiling the
	// current sources. A running renderer keeps running and a paused one stays paused. Render
	// listeners are kept.
	//
	// Returns:
	//   - error: any initialization error
	Reload() error

	// Resize schedules a throttled and debounced resize of the backing store to the container.
	Resize()

	// Render requests a single frame. While running, the pending loop frame already covers it.
	//
	// Returns:
	//   - error: a *DisposedStateError after Dispose
	Render() error

	// Compile validates the fragment shader's uniforms and rebuilds the program, its bindings and
	// the quad. On failure the program is left invalid until a later Compile succeeds.
	//
	// Returns:
	//   - error: a *uniform.MissingError, *shader.ShaderCompileError or *shader.ProgramLinkError
	Compile() error

	// On registers a listener called before every frame is drawn.
	//
	// Parameters:
	//   - listener: the render listener
	//
	// Returns:
	//   - func(): removes the listener
	On(listener RenderListener) (remove func())

	// Dispose removes every listener, releases the program, buffer and context and detaches the
	// surface. Disposing twice does nothing.
	Dispose()

	// State returns the lifecycle state.
	State() State

	// Time returns the accumulated time in seconds.
	Time() float64

	// SetTime overrides the accumulated time. The time uniform follows immediately.
	//
	// Parameters:
	//   - t: the time in seconds
	SetTime(t float64)

	// Resolution returns the backing store size in device pixels.
	//
	// Returns:
	//   - int: the width
	//   - int: the height
	Resolution() (int, int)

	// Builtins returns the built-in uniform values as of the last frame or resize.
	Builtins() uniform.Builtins

	// Uniforms returns the custom uniform registry. Setting a value while paused or stopped
	// redraws once.
	Uniforms() *uniform.Registry

	// Pointer returns the raw and smoothed pointer position.
	Pointer() pointer.State

	// Err returns the error that stopped the frame loop, or nil.
	Err() error
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer driven by the given host. Unless WithAutoInit(false) is given the
// renderer is initialized before it is returned.
//
// Parameters:
//   - h: the host environment
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: a *ConfigurationError for invalid options, or any Init error
func NewRenderer(h host.Host, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		host:          h,
		autoInit:      true,
		maxPixelRatio: surface.DefaultMaxPixelRatio,
		speed:         1,
		smoothing:     0.1,
		registry:      uniform.NewRegistry(),
		tracker:       pointer.NewTracker(),
		sizing:        surface.NewController(),
		bindings:      uniform.EmptyBindings,
		builtins:      uniform.Builtins{Mouse: pointer.Center.Array()},
	}
	r.resizer = surface.NewCoalescer(h, r.resize)
	r.scroller = surface.NewCoalescer(h, r.updateRect)

	for _, opt := range options {
		opt(r)
	}

	r.vertexSrc = common.Coalesce(r.vertexSrc, shader.DefaultVertex)
	r.fragmentSrc = common.Coalesce(r.fragmentSrc, shader.DefaultFragment)

	if r.optErr != nil {
		return nil, &ConfigurationError{Reason: "invalid uniform", Err: r.optErr}
	}
	if r.smoothing < 0 || r.smoothing >= 1 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("mouse smoothing %v is outside [0,1)", r.smoothing)}
	}

	r.registry.OnChange(r.onUniformChange)

	if r.autoInit {
		if err := r.Init(); err != nil {
			r.Dispose()
			return nil, err
		}
	}
	return r, nil
}

// NewRendererIn creates a Renderer mounted in the element matching container.
//
// Parameters:
//   - h: the host environment
//   - container: the container selector
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: a *ConfigurationError for invalid options or a missing container, or any Init error
func NewRendererIn(h host.Host, container string, options ...RendererBuilderOption) (Renderer, error) {
	return NewRenderer(h, append([]RendererBuilderOption{WithContainer(container)}, options...)...)
}

func (r *renderer) declare(name string, u uniform.Uniform) {
	if err := r.registry.Declare(name, u); err != nil {
		r.optErr = errors.Join(r.optErr, err)
	}
}

func (r *renderer) Init() error {
	if r.state == StateDisposed {
		return &DisposedStateError{Op: "init"}
	}
	if r.initialized {
		return nil
	}
	return r.setup(r.autoStart)
}

// setup performs initialization in order: container, surface, style and sizing, listeners,
// program, pointer override, then either the loop or a single forced frame.
func (r *renderer) setup(start bool) error {
	r.trace("init", "state", r.state)

	container, err := r.resolveContainer()
	if err != nil {
		return err
	}
	r.container = container

	s := r.adopted
	if s == nil {
		s = r.host.CreateSurface()
	}
	if s.Parent() == nil {
		container.Append(s)
	}
	r.drawSurface = s
	r.applyStyle()

	ctx, err := s.GraphicsContext()
	if err != nil {
		r.teardown()
		return &ConfigurationError{Reason: "graphics context unavailable", Err: err}
	}
	r.ctx = ctx
	r.initialized = true

	r.attachListeners()

	if r.profiling && r.profiler == nil {
		r.profiler = profiler.NewProfiler(r.host, nil)
	}

	if err := r.compile(); err != nil {
		return err
	}

	// The configured position seeds the pointer once; reloads keep the live position.
	if r.mousePosition != nil && !r.seeded {
		r.tracker.Set(*r.mousePosition)
	}
	r.seeded = true

	if start {
		if err := r.Start(); err != nil {
			return err
		}
	} else {
		r.sizing.Reset()
		r.resize()
		r.redraw()
	}

	if css := r.containerSize(); css.Empty() {
		slog.Warn("shader container has zero size; the surface stays invisible until the container is resized",
			"width", css.Width, "height", css.Height)
	}
	return nil
}

func (r *renderer) resolveContainer() (host.Element, error) {
	var parent host.Element
	if r.adopted != nil {
		parent = r.adopted.Parent()
	}

	var selected host.Element
	if parent == nil && !host.IsRootSelector(r.selector) {
		el, err := r.host.Lookup(r.selector)
		if err != nil {
			return nil, &ConfigurationError{Reason: "container not found", Err: err}
		}
		selected = el
	}

	return common.Coalesce(parent, selected, r.container, r.host.Root()), nil
}

func (r *renderer) applyStyle() {
	s := r.drawSurface
	s.SetStyle("contain", "strict")
	s.SetStyle("inset", "0")

	css := r.containerSize()
	s.SetStyle("width", px(css.Width))
	s.SetStyle("height", px(css.Height))

	if r.container.IsRoot() {
		s.SetStyle("position", "fixed")
		s.SetStyle("z-index", "0")
		return
	}
	s.SetStyle("position", "absolute")
	s.SetStyle("z-index", "1")
	if pos := r.container.Style("position"); pos == "" || pos == "static" {
		r.container.SetStyle("position", "relative")
	}
}

func (r *renderer) pointerTarget() host.EventTarget {
	switch r.mouseTarget {
	case MouseTargetContainer:
		return r.container
	case MouseTargetGlobal:
		return r.host.Global()
	default:
		return r.drawSurface
	}
}

func (r *renderer) attachListeners() {
	target := r.pointerTarget()
	global := r.host.Global()

	r.removers = append(r.removers,
		target.AddEventListener(host.PointerMove, func(ev host.Event) {
			r.tracker.OnPointerMove(ev.ClientX, ev.ClientY, r.rect)
		}),
		target.AddEventListener(host.TouchMove, func(ev host.Event) {
			r.tracker.OnTouchMove(ev.Touches, r.rect, r.preventScroll, ev.PreventDefault)
		}),
		global.AddEventListener(host.Resize, func(host.Event) {
			r.resizer.Trigger()
		}),
		global.AddEventListener(host.Scroll, func(host.Event) {
			r.scroller.Trigger()
		}),
		r.host.ObserveResize(r.resizer.Trigger, r.container, r.drawSurface),
	)
}

// teardown releases everything setup acquired except the render listeners.
func (r *renderer) teardown() {
	r.gen++
	r.framePending = false

	for _, remove := range r.removers {
		remove()
	}
	r.removers = nil
	r.resizer.Cancel()
	r.scroller.Cancel()

	if r.ctx != nil {
		r.program.Release(r.ctx)
		r.quad.Release(r.ctx)
		r.ctx.Release()
		r.ctx = nil
	}
	r.bindings = uniform.EmptyBindings

	if r.drawSurface != nil {
		if parent := r.drawSurface.Parent(); parent != nil {
			parent.Remove(r.drawSurface)
		}
		r.drawSurface = nil
	}
	r.initialized = false
}

func (r *renderer) Start() error {
	switch r.state {
	case StateDisposed:
		return &DisposedStateError{Op: "start"}
	case StateRunning:
		return nil
	}
	if !r.initialized {
		return notInitialized("start")
	}

	r.trace("start", "from", r.state)
	r.state = StateRunning
	r.sizing.Reset()
	r.resize()
	r.then = r.host.Now()
	r.schedule()
	return nil
}

func (r *renderer) Pause() error {
	switch r.state {
	case StateDisposed:
		return &DisposedStateError{Op: "pause"}
	case StateRunning:
		r.trace("pause")
		r.state = StatePaused
	}
	return nil
}

func (r *renderer) Stop() error {
	switch r.state {
	case StateDisposed:
		return &DisposedStateError{Op: "stop"}
	case StateStopped:
		return nil
	}
	r.trace("stop", "from", r.state)
	r.state = StateStopped
	r.SetTime(0)
	return nil
}

func (r *renderer) Restart() error {
	switch r.state {
	case StateRunning:
		return nil
	case StateDisposed:
		return r.Reload()
	default:
		return r.Start()
	}
}

func (r *renderer) Reload() error {
	r.trace("reload", "state", r.state)

	prev := r.state
	if prev == StateRunning {
		r.state = StatePaused
	}
	r.teardown()
	r.state = StateStopped
	r.err = nil

	if err := r.setup(prev == StateRunning); err != nil {
		return err
	}
	if prev == StatePaused {
		r.state = StatePaused
	}
	return nil
}

func (r *renderer) Resize() {
	if !r.initialized {
		return
	}
	r.resizer.Trigger()
}

func (r *renderer) Render() error {
	if r.state == StateDisposed {
		return &DisposedStateError{Op: "render"}
	}
	if !r.initialized {
		return notInitialized("render")
	}
	r.redraw()
	return nil
}

func (r *renderer) Compile() error {
	if r.state == StateDisposed {
		return &DisposedStateError{Op: "compile"}
	}
	if !r.initialized {
		return notInitialized("compile")
	}
	if err := r.compile(); err != nil {
		return err
	}
	if r.state.idle() {
		r.redraw()
	}
	return nil
}

// compile validates first so a missing uniform never costs the current program.
func (r *renderer) compile() error {
	r.trace("compile")
	if err := r.registry.Validate(r.fragmentSrc); err != nil {
		return err
	}

	r.program.Release(r.ctx)
	r.quad.Release(r.ctx)
	r.bindings = uniform.EmptyBindings

	program, err := shader.Compile(r.ctx, r.vertexSrc, r.fragmentSrc)
	if err != nil {
		return err
	}
	r.program = program
	r.bindings = r.registry.Bind(r.ctx, program)
	r.attrib = uint32(max(r.ctx.AttribLocation(program.Handle(), shader.PositionAttribute), 0))
	r.quad = geometry.NewQuad(r.ctx)
	r.err = nil
	return nil
}

func (r *renderer) On(listener RenderListener) func() {
	r.nextListenerID++
	id := r.nextListenerID
	r.listeners = append(r.listeners, renderListener{id: id, fn: listener})
	return func() {
		r.listeners = slices.DeleteFunc(r.listeners, func(l renderListener) bool {
			return l.id == id
		})
	}
}

func (r *renderer) Dispose() {
	if r.state == StateDisposed {
		return
	}
	r.trace("dispose", "from", r.state)
	r.teardown()
	r.listeners = nil
	r.state = StateDisposed
}

func (r *renderer) State() State {
	return r.state
}

func (r *renderer) Time() float64 {
	return r.time
}

func (r *renderer) SetTime(t float64) {
	r.time = t
	r.builtins.Time = float32(t)
}

func (r *renderer) Resolution() (int, int) {
	if r.drawSurface == nil {
		return r.sizing.Size()
	}
	return r.drawSurface.BackingSize()
}

func (r *renderer) Builtins() uniform.Builtins {
	return r.builtins
}

func (r *renderer) Uniforms() *uniform.Registry {
	return r.registry
}

func (r *renderer) Pointer() pointer.State {
	return r.tracker.State()
}

func (r *renderer) Err() error {
	return r.err
}

func (r *renderer) onUniformChange(name string) {
	if r.initialized && r.state.idle() {
		r.trace("uniform", "name", name)
		r.redraw()
	}
}

func (r *renderer) containerSize() common.Size {
	if r.container == nil {
		return common.Size{}
	}
	if r.container.IsRoot() {
		return r.host.ViewportSize()
	}
	return r.container.ClientSize()
}

// resize sizes the backing store to the container immediately. Idle renderers redraw.
func (r *renderer) resize() {
	if r.drawSurface == nil {
		return
	}
	css := r.containerSize()
	res := r.sizing.Recompute(css, r.host.PixelRatio(), r.maxPixelRatio)
	if res.Changed {
		r.drawSurface.SetBackingSize(res.Width, res.Height)
		r.drawSurface.SetStyle("width", px(css.Width))
		r.drawSurface.SetStyle("height", px(css.Height))
		r.builtins.Resolution = [2]float32{float32(res.Width), float32(res.Height)}
		r.trace("resize", "width", res.Width, "height", res.Height)
	}
	r.updateRect()

	if r.state.idle() {
		r.redraw()
	}
}

func (r *renderer) updateRect() {
	if r.drawSurface != nil {
		r.rect = r.drawSurface.BoundingRect()
	}
}

// redraw requests a frame outside the running loop. Its delta is measured from now.
func (r *renderer) redraw() {
	if r.framePending {
		return
	}
	r.then = r.host.Now()
	r.schedule()
}

func (r *renderer) schedule() {
	if r.framePending {
		return
	}
	r.framePending = true
	gen := r.gen
	r.host.RequestFrame(func(now time.Duration) {
		if gen != r.gen {
			return
		}
		r.framePending = false
		r.frame(now)
	})
}

func (r *renderer) frame(now time.Duration) {
	if r.state == StateDisposed {
		return
	}
	if err := r.draw(now); err != nil {
		r.fail(err)
		return
	}
	if r.state == StateRunning {
		r.schedule()
	}
}

func (r *renderer) draw(now time.Duration) error {
	delta := min(max(now-r.then, 0), MaxFrameDelta).Seconds()
	r.then = now

	for _, l := range slices.Clone(r.listeners) {
		l.fn(r.time, delta)
	}
	if r.state == StateDisposed || r.ctx == nil {
		return nil
	}

	if r.state == StateRunning {
		r.SetTime(r.time + delta*r.speed)
	}
	r.builtins.Mouse = r.tracker.Advance(r.smoothing).Array()

	if r.ctx.ContextLost() {
		return ErrContextLost
	}
	if !r.program.Valid() {
		return ErrInvalidProgram
	}

	w, h := r.drawSurface.BackingSize()
	r.ctx.Viewport(0, 0, int32(w), int32(h))
	r.ctx.UseProgram(r.program.Handle())
	r.quad.Bind(r.ctx, r.attrib)
	if err := r.registry.Upload(r.ctx, r.bindings, r.builtins); err != nil {
		return err
	}
	r.ctx.DrawTriangles(0, geometry.VertexCount)

	r.trace("frame", "time", r.time, "delta", delta)
	if r.profiler != nil {
		r.profiler.Tick()
	}
	return nil
}

// fail records a frame error and halts the loop without losing the accumulated time.
func (r *renderer) fail(err error) {
	r.err = err
	slog.Error("shader frame failed", "err", err)
	r.trace("error", "err", err)
	if r.state == StateRunning {
		r.state = StatePaused
	}
}

func (r *renderer) trace(op string, args ...any) {
	if r.tracer != nil {
		r.tracer(op, args...)
	}
}

func notInitialized(op string) error {
	return &ConfigurationError{Reason: "cannot " + op + " before Init"}
}

func px(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32) + "px"
}
