package renderer

import (
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/host"
	"github.com/Carmen-Shannon/oxy-shader/engine/trace"
	"github.com/Carmen-Shannon/oxy-shader/engine/uniform"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithSurface adopts an existing surface instead of creating one. A surface that already has a
// parent is mounted in that parent, even when WithContainer is also given; a detached surface is
// appended to the selected container.
//
// Parameters:
//   - s: the surface to draw into
//
// Returns:
//   - RendererBuilderOption: a function that applies the surface option to a renderer
func WithSurface(s host.Surface) RendererBuilderOption {
	return func(r *renderer) {
		r.adopted = s
	}
}

// WithContainer sets the selector of the element the surface is mounted in and sized to.
// "", "body" and "window" select the root.
//
// Parameters:
//   - selector: the container selector
//
// Returns:
//   - RendererBuilderOption: a function that applies the container option to a renderer
func WithContainer(selector string) RendererBuilderOption {
	return func(r *renderer) {
		r.selector = selector
	}
}

// WithVertex replaces the default vertex shader source.
//
// Parameters:
//   - src: the GLSL vertex source
//
// Returns:
//   - RendererBuilderOption: a function that applies the vertex option to a renderer
func WithVertex(src string) RendererBuilderOption {
	return func(r *renderer) {
		r.vertexSrc = src
	}
}

// WithFragment replaces the default fragment shader source.
//
// Parameters:
//   - src: the GLSL fragment source
//
// Returns:
//   - RendererBuilderOption: a function that applies the fragment option to a renderer
func WithFragment(src string) RendererBuilderOption {
	return func(r *renderer) {
		r.fragmentSrc = src
	}
}

// WithAutoStart starts the frame loop as soon as initialization finishes. When false (the default)
// initialization draws a single frame and leaves the renderer stopped.
//
// Parameters:
//   - enabled: whether to start automatically
//
// Returns:
//   - RendererBuilderOption: a function that applies the auto start option to a renderer
func WithAutoStart(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.autoStart = enabled
	}
}

// WithUniforms declares initial custom uniforms. Names are declared in sorted order.
//
// Parameters:
//   - uniforms: a map of uniform names to their initial values
//
// Returns:
//   - RendererBuilderOption: a function that applies the uniforms option to a renderer
func WithUniforms(uniforms map[string]uniform.Uniform) RendererBuilderOption {
	return func(r *renderer) {
		for _, name := range slices.Sorted(maps.Keys(uniforms)) {
			r.declare(name, uniforms[name])
		}
	}
}

// WithUniform declares a single initial custom uniform.
//
// Parameters:
//   - name: the uniform name as declared in GLSL
//   - u: the initial value
//
// Returns:
//   - RendererBuilderOption: a function that applies the uniform option to a renderer
func WithUniform(name string, u uniform.Uniform) RendererBuilderOption {
	return func(r *renderer) {
		r.declare(name, u)
	}
}

// WithMaxPixelRatio caps the device pixel ratio used to size the backing store. Defaults to 2.
// A value of 0 or less leaves the ratio uncapped.
//
// Parameters:
//   - ratio: the maximum pixel ratio
//
// Returns:
//   - RendererBuilderOption: a function that applies the max pixel ratio option to a renderer
func WithMaxPixelRatio(ratio float32) RendererBuilderOption {
	return func(r *renderer) {
		r.maxPixelRatio = ratio
	}
}

// WithSpeed multiplies the elapsed time before it is accumulated. Defaults to 1.
//
// Parameters:
//   - speed: the time multiplier
//
// Returns:
//   - RendererBuilderOption: a function that applies the speed option to a renderer
func WithSpeed(speed float64) RendererBuilderOption {
	return func(r *renderer) {
		r.speed = speed
	}
}

// WithMouseSmoothing sets the pointer smoothing factor in [0,1). 0 disables smoothing.
// Defaults to 0.1.
//
// Parameters:
//   - factor: the smoothing factor
//
// Returns:
//   - RendererBuilderOption: a function that applies the mouse smoothing option to a renderer
func WithMouseSmoothing(factor float32) RendererBuilderOption {
	return func(r *renderer) {
		r.smoothing = factor
	}
}

// WithMousePosition sets the normalized pointer position applied after initialization.
//
// Parameters:
//   - pos: the normalized position, origin at the bottom-left
//
// Returns:
//   - RendererBuilderOption: a function that applies the mouse position option to a renderer
func WithMousePosition(pos common.Vec2) RendererBuilderOption {
	return func(r *renderer) {
		r.mousePosition = &pos
	}
}

// WithMouseTarget selects where pointer and touch listeners are attached.
//
// Parameters:
//   - target: the listener target
//
// Returns:
//   - RendererBuilderOption: a function that applies the mouse target option to a renderer
func WithMouseTarget(target MouseTarget) RendererBuilderOption {
	return func(r *renderer) {
		r.mouseTarget = target
	}
}

// WithAutoInit controls whether NewRenderer initializes the renderer. When false, Init must be
// called before anything is drawn. Defaults to true.
//
// Parameters:
//   - enabled: whether to initialize during construction
//
// Returns:
//   - RendererBuilderOption: a function that applies the auto init option to a renderer
func WithAutoInit(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.autoInit = enabled
	}
}

// WithPreventScroll suppresses the host's default touch scrolling while touches are tracked.
//
// Parameters:
//   - enabled: whether to suppress touch scrolling
//
// Returns:
//   - RendererBuilderOption: a function that applies the prevent scroll option to a renderer
func WithPreventScroll(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.preventScroll = enabled
	}
}

// WithTracer installs a hook called on lifecycle transitions, compiles and frames.
//
// Parameters:
//   - hook: the tracing hook
//
// Returns:
//   - RendererBuilderOption: a function that applies the tracer option to a renderer
func WithTracer(hook trace.Hook) RendererBuilderOption {
	return func(r *renderer) {
		r.tracer = hook
	}
}

// WithProfiling logs frame rate and memory statistics once per second while frames are drawn.
//
// Parameters:
//   - enabled: whether to profile the frame loop
//
// Returns:
//   - RendererBuilderOption: a function that applies the profiling option to a renderer
func WithProfiling(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.profiling = enabled
	}
}
