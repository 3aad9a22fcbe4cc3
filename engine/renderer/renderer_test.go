package renderer

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/geometry"
	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
	"github.com/Carmen-Shannon/oxy-shader/engine/host"
	"github.com/Carmen-Shannon/oxy-shader/engine/host/hosttest"
	"github.com/Carmen-Shannon/oxy-shader/engine/shader"
	"github.com/Carmen-Shannon/oxy-shader/engine/surface"
	"github.com/Carmen-Shannon/oxy-shader/engine/uniform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameStep = 16 * time.Millisecond

const fooFragment = `uniform float foo;
in vec2 vUv;
out vec4 color;
void main() {
	color = vec4(vUv, foo, 1.0);
}
`

func newRenderer(t *testing.T, h *hosttest.Host, options ...RendererBuilderOption) Renderer {
	t.Helper()
	r, err := NewRenderer(h, options...)
	require.NoError(t, err)
	return r
}

// rendererIn drives a fresh renderer into the requested state.
func rendererIn(t *testing.T, state State) (Renderer, *hosttest.Host) {
	t.Helper()
	h := hosttest.New()
	r := newRenderer(t, h)
	switch state {
	case StateRunning:
		require.NoError(t, r.Start())
	case StatePaused:
		require.NoError(t, r.Start())
		require.NoError(t, r.Pause())
	case StateDisposed:
		r.Dispose()
	}
	require.Equal(t, state, r.State())
	return r, h
}

func onlySurface(t *testing.T, el *hosttest.Element) *hosttest.Surface {
	t.Helper()
	require.Len(t, el.Children(), 1)
	s, ok := el.Children()[0].(*hosttest.Surface)
	require.True(t, ok)
	return s
}

func TestAutoStartAdvancesTimeAndSizesBackingStore(t *testing.T) {
	h := hosttest.New()
	r := newRenderer(t, h, WithAutoStart(true))
	require.Equal(t, StateRunning, r.State())

	assert.Equal(t, 1, h.Step(frameStep))

	assert.Greater(t, r.Time(), 0.0)
	assert.InDelta(t, 0.016, r.Time(), 1e-9)

	w, ht := r.Resolution()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, ht)
	assert.Equal(t, [2]float32{800, 600}, r.Builtins().Resolution)

	up, ok := h.Backend.LastUpload(uniform.NameResolution)
	require.True(t, ok)
	assert.Equal(t, []float32{800, 600}, up.Values)
	assert.Equal(t, 1, h.PendingFrames(), "running loop reschedules")
}

func TestStopWhileStoppedDrawsOnce(t *testing.T) {
	h := hosttest.New()
	r := newRenderer(t, h)

	require.NoError(t, r.Stop())
	assert.Equal(t, StateStopped, r.State())

	h.Step(frameStep)
	h.Step(frameStep)

	require.Len(t, h.Backend.Draws, 1)
	assert.Equal(t, int32(geometry.VertexCount), h.Backend.Draws[0].Count)
	up, ok := h.Backend.LastUpload(uniform.NameTime)
	require.True(t, ok)
	assert.Equal(t, []float32{0}, up.Values)
}

func TestStartAfterDisposeFails(t *testing.T) {
	h := hosttest.New()
	r := newRenderer(t, h)

	require.NoError(t, r.Start())
	r.Dispose()
	err := r.Start()

	var disposed *DisposedStateError
	require.ErrorAs(t, err, &disposed)
	assert.Equal(t, "start", disposed.Op)
}

func TestPointerMoveWithoutSmoothing(t *testing.T) {
	h := hosttest.New()
	stage := h.AddElement("#stage", common.Rect{Width: 100, Height: 100})
	newRenderer(t, h, WithContainer("#stage"), WithMouseSmoothing(0))

	onlySurface(t, stage).Dispatch(host.Event{Kind: host.PointerMove, ClientX: 30, ClientY: 30})
	h.Step(frameStep)

	up, ok := h.Backend.LastUpload(uniform.NameMouse)
	require.True(t, ok)
	assert.Equal(t, []float32{0.3, 0.7}, up.Values)
}

func TestFrameDeltaIsClamped(t *testing.T) {
	h := hosttest.New()
	r := newRenderer(t, h, WithSpeed(1))
	require.NoError(t, r.Start())

	h.Step(5 * time.Second)

	assert.InDelta(t, 0.1, r.Time(), 1e-12)
}

func TestSpeedScalesTime(t *testing.T) {
	h := hosttest.New()
	r := newRenderer(t, h, WithSpeed(2), WithAutoStart(true))

	h.Step(50 * time.Millisecond)

	assert.InDelta(t, 0.1, r.Time(), 1e-9)
}

func TestStateTransitions(t *testing.T) {
	ops := map[string]func(Renderer) error{
		"start":   Renderer.Start,
		"pause":   Renderer.Pause,
		"stop":    Renderer.Stop,
		"restart": Renderer.Restart,
		"reload":  Renderer.Reload,
		"dispose": func(r Renderer) error { r.Dispose(); return nil },
	}

	const fails = State(-1)
	table := map[string]map[State]State{
		"start":   {StateStopped: StateRunning, StatePaused: StateRunning, StateRunning: StateRunning, StateDisposed: fails},
		"pause":   {StateStopped: StateStopped, StatePaused: StatePaused, StateRunning: StatePaused, StateDisposed: fails},
		"stop":    {StateStopped: StateStopped, StatePaused: StateStopped, StateRunning: StateStopped, StateDisposed: fails},
		"restart": {StateStopped: StateRunning, StatePaused: StateRunning, StateRunning: StateRunning, StateDisposed: StateStopped},
		"reload":  {StateStopped: StateStopped, StatePaused: StatePaused, StateRunning: StateRunning, StateDisposed: StateStopped},
		"dispose": {StateStopped: StateDisposed, StatePaused: StateDisposed, StateRunning: StateDisposed, StateDisposed: StateDisposed},
	}

	for op, row := range table {
		for from, want := range row {
			t.Run(op+"/"+from.String(), func(t *testing.T) {
				r, _ := rendererIn(t, from)

				err := ops[op](r)

				if want == fails {
					var disposed *DisposedStateError
					require.ErrorAs(t, err, &disposed)
					assert.Equal(t, op, disposed.Op)
					assert.Equal(t, StateDisposed, r.State())
					return
				}
				require.NoError(t, err)
				assert.Equal(t, want, r.State())
			})
		}
	}
}

func TestPauseAndStopAreIdempotent(t *testing.T) {
	r, h := rendererIn(t, StateRunning)
	h.Step(50 * time.Millisecond)
	elapsed := r.Time()
	require.Greater(t, elapsed, 0.0)

	require.NoError(t, r.Pause())
	require.NoError(t, r.Pause())
	assert.Equal(t, StatePaused, r.State())
	assert.Equal(t, elapsed, r.Time())

	h.Step(50 * time.Millisecond)
	assert.Equal(t, elapsed, r.Time(), "paused frames do not advance time")

	require.NoError(t, r.Stop())
	require.NoError(t, r.Stop())
	assert.Equal(t, StateStopped, r.State())
	assert.Zero(t, r.Time())
	assert.Zero(t, r.Builtins().Time)
}

func TestCompileRejectsUndeclaredUniform(t *testing.T) {
	h := hosttest.New()
	_, err := NewRenderer(h, WithFragment(fooFragment))

	var missing *uniform.MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "foo", missing.Name)
	assert.Empty(t, h.Backend.Sources, "validation runs before anything is compiled")
	assert.Zero(t, h.Backend.LivePrograms())

	r, err := NewRenderer(hosttest.New(), WithFragment(fooFragment), WithUniform("foo", uniform.Float(1)))
	require.NoError(t, err)
	assert.Equal(t, StateStopped, r.State())
}

func TestShaderErrorLeavesProgramInvalidUntilRecompiled(t *testing.T) {
	h := hosttest.New()
	r := newRenderer(t, h, WithAutoInit(false))
	h.Backend.CompileLogs = map[graphics.ShaderStage]string{graphics.StageFragment: "0:3: syntax error"}

	var compileErr *shader.ShaderCompileError
	require.ErrorAs(t, r.Init(), &compileErr)
	assert.Equal(t, graphics.StageFragment, compileErr.Stage)

	require.NoError(t, r.Render())
	h.Frame()
	assert.ErrorIs(t, r.Err(), ErrInvalidProgram)
	assert.Empty(t, h.Backend.Draws)

	h.Backend.CompileLogs = nil
	require.NoError(t, r.Compile())
	assert.NoError(t, r.Err())
	h.Frame()
	assert.Len(t, h.Backend.Draws, 1)
}

func TestNewRendererReturnsCompileErrors(t *testing.T) {
	h := hosttest.New()
	h.Backend.LinkLog = "link failed"

	r, err := NewRenderer(h)

	assert.Nil(t, r)
	var linkErr *shader.ProgramLinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Empty(t, h.RootElement().Children(), "surface is detached again")
}

func TestMissingContainer(t *testing.T) {
	_, err := NewRendererIn(hosttest.New(), "#missing")

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, host.ErrNotFound)
}

func TestGraphicsContextUnavailable(t *testing.T) {
	h := hosttest.New()
	h.ContextErr = errors.New("no webgl2")

	_, err := NewRenderer(h)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, h.RootElement().Children())
}

func TestInvalidOptions(t *testing.T) {
	_, err := NewRenderer(hosttest.New(), WithMouseSmoothing(1))
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = NewRenderer(hosttest.New(), WithUniform(uniform.NameTime, uniform.Float(0)))
	assert.ErrorIs(t, err, uniform.ErrReserved)
}

func TestOperationsBeforeInit(t *testing.T) {
	h := hosttest.New()
	r := newRenderer(t, h, WithAutoInit(false))

	var cfgErr *ConfigurationError
	assert.ErrorAs(t, r.Start(), &cfgErr)
	assert.ErrorAs(t, r.Render(), &cfgErr)
	assert.ErrorAs(t, r.Compile(), &cfgErr)
	assert.Empty(t, h.RootElement().Children())

	require.NoError(t, r.Init())
	require.NoError(t, r.Init())
	assert.Len(t, h.RootElement().Children(), 1)
}

func TestUniformSetRedrawsOnlyWhenIdle(t *testing.T) {
	h := hosttest.New()
	r := newRenderer(t, h, WithFragment(fooFragment), WithUniform("foo", uniform.Float(1)))
	h.Frame()
	require.Zero(t, h.PendingFrames())

	require.NoError(t, r.Uniforms().Set("foo", 2))
	assert.Equal(t, 1, h.PendingFrames())
	h.Frame()

	up, ok := h.Backend.LastUpload("foo")
	require.True(t, ok)
	assert.Equal(t, []float32{2}, up.Values)

	require.NoError(t, r.Start())
	h.Step(frameStep)
	require.NoError(t, r.Uniforms().Set("foo", 3))
	assert.Equal(t, 1, h.PendingFrames(), "the loop frame picks the value up")
}

func TestRenderListenersSeePreFrameTime(t *testing.T) {
	r, h := rendererIn(t, StateRunning)
	type call struct{ time, delta float64 }
	var calls []call
	remove := r.On(func(tm, delta float64) { calls = append(calls, call{tm, delta}) })

	h.Step(20 * time.Millisecond)
	h.Step(20 * time.Millisecond)
	remove()
	h.Step(20 * time.Millisecond)

	require.Len(t, calls, 2)
	assert.Zero(t, calls[0].time)
	assert.InDelta(t, 0.02, calls[0].delta, 1e-9)
	assert.InDelta(t, 0.02, calls[1].time, 1e-9)
}

func TestSetTimeWritesBuiltin(t *testing.T) {
	r, _ := rendererIn(t, StateStopped)

	r.SetTime(4.5)

	assert.Equal(t, 4.5, r.Time())
	assert.Equal(t, float32(4.5), r.Builtins().Time)
}

func TestReloadRebuildsAndKeepsRunning(t *testing.T) {
	r, h := rendererIn(t, StateRunning)
	frames := 0
	r.On(func(float64, float64) { frames++ })

	require.NoError(t, r.Reload())

	assert.Equal(t, StateRunning, r.State())
	assert.Equal(t, 1, h.Backend.LivePrograms())
	assert.Equal(t, 1, h.Backend.LiveBuffers())
	assert.Equal(t, 1, h.Observers())
	assert.Equal(t, 1, h.GlobalTarget().Len(host.Resize))
	assert.Len(t, h.RootElement().Children(), 1)

	h.Step(frameStep)
	assert.Equal(t, 1, frames, "render listeners survive a reload")
	assert.Equal(t, 1, h.PendingFrames())
}

func TestDisposeReleasesEverything(t *testing.T) {
	r, h := rendererIn(t, StateRunning)
	s := onlySurface(t, h.RootElement())
	frames := 0
	r.On(func(float64, float64) { frames++ })

	r.Dispose()
	r.Dispose()
	h.Step(frameStep)

	assert.Equal(t, StateDisposed, r.State())
	assert.Zero(t, frames)
	assert.Empty(t, h.Backend.Draws)
	assert.True(t, h.Backend.Released)
	assert.Zero(t, h.Backend.LivePrograms())
	assert.Zero(t, h.Backend.LiveBuffers())
	assert.Zero(t, h.Observers())
	assert.Zero(t, h.GlobalTarget().Total())
	assert.Zero(t, s.Total())
	assert.Empty(t, h.RootElement().Children())

	require.NoError(t, r.Restart())
	assert.Equal(t, StateStopped, r.State())
	h.Step(frameStep)
	assert.Zero(t, frames, "render listeners are cleared by Dispose")
}

func TestContextLossStopsLoop(t *testing.T) {
	r, h := rendererIn(t, StateRunning)
	h.Step(frameStep)
	h.Backend.Lost = true

	h.Step(frameStep)

	assert.ErrorIs(t, r.Err(), ErrContextLost)
	assert.Equal(t, StatePaused, r.State())
	assert.Zero(t, h.PendingFrames())
}

func TestRootContainerStyle(t *testing.T) {
	h := hosttest.New()
	newRenderer(t, h)
	s := onlySurface(t, h.RootElement())

	assert.Equal(t, "fixed", s.Style("position"))
	assert.Equal(t, "0", s.Style("z-index"))
	assert.Equal(t, "800px", s.Style("width"))
	assert.Equal(t, "600px", s.Style("height"))
}

func TestElementContainerStyle(t *testing.T) {
	h := hosttest.New()
	stage := h.AddElement("#stage", common.Rect{Left: 10, Top: 20, Width: 320, Height: 240})
	newRenderer(t, h, WithContainer("#stage"))
	s := onlySurface(t, stage)

	assert.Equal(t, "absolute", s.Style("position"))
	assert.Equal(t, "1", s.Style("z-index"))
	assert.Equal(t, "relative", stage.Style("position"))

	other := h.AddElement("#fixed", common.Rect{Width: 10, Height: 10})
	other.SetStyle("position", "fixed")
	newRenderer(t, h, WithContainer("#fixed"))
	assert.Equal(t, "fixed", other.Style("position"))
}

func TestAdoptedSurfaceUsesItsParent(t *testing.T) {
	h := hosttest.New()
	stage := h.AddElement("#stage", common.Rect{Width: 64, Height: 32})
	s := h.NewSurface()
	stage.Append(s)

	r := newRenderer(t, h, WithSurface(s))

	assert.Len(t, stage.Children(), 1)
	w, ht := r.Resolution()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, ht)
}

func TestAdoptedSurfaceParentWinsOverContainer(t *testing.T) {
	h := hosttest.New()
	stage := h.AddElement("#stage", common.Rect{Width: 64, Height: 32})
	h.AddElement("#other", common.Rect{Width: 300, Height: 200})
	s := h.NewSurface()
	stage.Append(s)

	r := newRenderer(t, h, WithSurface(s), WithContainer("#other"))

	assert.Same(t, stage, s.Parent())
	w, ht := r.Resolution()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, ht)
}

func TestPixelRatioCap(t *testing.T) {
	h := hosttest.New()
	h.Ratio = 3

	capped := newRenderer(t, h)
	w, _ := capped.Resolution()
	assert.Equal(t, 1600, w)
	capped.Dispose()

	uncapped := newRenderer(t, h, WithMaxPixelRatio(0))
	w, _ = uncapped.Resolution()
	assert.Equal(t, 2400, w)
}

func TestViewportResizeIsCoalesced(t *testing.T) {
	h := hosttest.New()
	r := newRenderer(t, h)
	h.Frame()

	h.ResizeViewport(common.Size{Width: 1024, Height: 768})

	w, ht := r.Resolution()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, ht)
	assert.Equal(t, [2]float32{1024, 768}, r.Builtins().Resolution)
	assert.Equal(t, 1, h.PendingFrames(), "stopped renderer redraws once")

	h.Advance(surface.DefaultDebounce)
	assert.Zero(t, h.PendingTimers())
}

func TestMousePositionOverride(t *testing.T) {
	h := hosttest.New()
	r := newRenderer(t, h, WithMousePosition(common.V2(0.25, 0.75)), WithMouseSmoothing(0))

	h.Frame()

	assert.Equal(t, common.V2(0.25, 0.75), r.Pointer().Raw)
	up, ok := h.Backend.LastUpload(uniform.NameMouse)
	require.True(t, ok)
	assert.Equal(t, []float32{0.25, 0.75}, up.Values)
}

func TestReloadKeepsLivePointer(t *testing.T) {
	h := hosttest.New()
	stage := h.AddElement("#stage", common.Rect{Width: 100, Height: 100})
	r := newRenderer(t, h, WithContainer("#stage"), WithMousePosition(common.V2(0.2, 0.2)), WithMouseSmoothing(0))

	onlySurface(t, stage).Dispatch(host.Event{Kind: host.PointerMove, ClientX: 30, ClientY: 30})
	require.NoError(t, r.Reload())
	h.Step(frameStep)

	assert.Equal(t, common.V2(0.3, 0.7), r.Pointer().Raw)
	up, ok := h.Backend.LastUpload(uniform.NameMouse)
	require.True(t, ok)
	assert.Equal(t, []float32{0.3, 0.7}, up.Values)
}

func TestTouchMovePreventsScroll(t *testing.T) {
	h := hosttest.New()
	stage := h.AddElement("#stage", common.Rect{Width: 200, Height: 100})
	r := newRenderer(t, h, WithContainer("#stage"), WithMouseTarget(MouseTargetContainer), WithPreventScroll(true))

	prevented := false
	stage.Dispatch(host.Event{
		Kind:    host.TouchMove,
		Touches: []host.Touch{{ClientX: 50, ClientY: 25}},
		Prevent: func() { prevented = true },
	})

	assert.True(t, prevented)
	assert.Equal(t, common.V2(0.25, 0.75), r.Pointer().Raw)
}

func TestGlobalMouseTarget(t *testing.T) {
	h := hosttest.New()
	r := newRenderer(t, h, WithMouseTarget(MouseTargetGlobal))

	h.GlobalTarget().Dispatch(host.Event{Kind: host.PointerMove, ClientX: 400, ClientY: 150})

	assert.Equal(t, common.V2(0.5, 0.75), r.Pointer().Raw)
}

func TestTracerSeesLifecycle(t *testing.T) {
	h := hosttest.New()
	var ops []string
	r := newRenderer(t, h, WithTracer(func(op string, _ ...any) { ops = append(ops, op) }))

	require.NoError(t, r.Start())
	h.Step(frameStep)
	r.Dispose()

	assert.Subset(t, ops, []string{"init", "compile", "resize", "start", "frame", "dispose"})
	assert.Equal(t, "init", ops[0])
	assert.Equal(t, "dispose", ops[len(ops)-1])
}

func TestParseMouseTarget(t *testing.T) {
	for name, want := range map[string]MouseTarget{
		"":          MouseTargetSurface,
		"canvas":    MouseTargetSurface,
		"container": MouseTargetContainer,
		"window":    MouseTargetGlobal,
		"global":    MouseTargetGlobal,
	} {
		got, err := ParseMouseTarget(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseMouseTarget("document")
	assert.Error(t, err)
}
