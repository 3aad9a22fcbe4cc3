//go:build js && wasm

package host

import (
	"fmt"
	"syscall/js"
	"time"

	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
)

// Browser is the Host for a page running the module as WebAssembly.
type Browser struct {
	window   js.Value
	document js.Value
	root     *jsElement
	global   *jsElement
}

var _ Host = &Browser{}

// NewBrowser returns a Host bound to the page's global window and document.
func NewBrowser() *Browser {
	w := js.Global()
	doc := w.Get("document")
	return &Browser{
		window:   w,
		document: doc,
		root:     &jsElement{v: doc.Get("body"), root: true},
		global:   &jsElement{v: w, root: true},
	}
}

func (b *Browser) Lookup(selector string) (Element, error) {
	if IsRootSelector(selector) {
		return b.root, nil
	}
	v := b.document.Call("querySelector", selector)
	if v.IsNull() {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	return &jsElement{v: v}, nil
}

// Canvas wraps an existing canvas element as a Surface so it can be adopted by a renderer.
//
// Parameters:
//   - selector: the canvas selector
//
// Returns:
//   - Surface: the adopted surface
//   - error: ErrNotFound (wrapped) if no element matches
func (b *Browser) Canvas(selector string) (Surface, error) {
	v := b.document.Call("querySelector", selector)
	if v.IsNull() {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	return &jsSurface{jsElement: &jsElement{v: v}}, nil
}

func (b *Browser) Root() Element {
	return b.root
}

func (b *Browser) CreateSurface() Surface {
	return &jsSurface{jsElement: &jsElement{v: b.document.Call("createElement", "canvas")}}
}

func (b *Browser) PixelRatio() float32 {
	dpr := b.window.Get("devicePixelRatio")
	if dpr.IsUndefined() || dpr.Float() <= 0 {
		return 1
	}
	return float32(dpr.Float())
}

func (b *Browser) ViewportSize() common.Size {
	return common.Size{
		Width:  float32(b.window.Get("innerWidth").Float()),
		Height: float32(b.window.Get("innerHeight").Float()),
	}
}

func (b *Browser) Global() EventTarget {
	return b.global
}

// ObserveResize uses ResizeObserver when the browser provides one and does nothing otherwise;
// the window resize event still covers viewport changes.
func (b *Browser) ObserveResize(fn func(), elems ...Element) func() {
	ctor := b.window.Get("ResizeObserver")
	if ctor.IsUndefined() {
		return func() {}
	}
	cb := js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		return nil
	})
	observer := ctor.New(cb)
	for _, el := range elems {
		if je, ok := unwrap(el); ok {
			observer.Call("observe", je.v)
		}
	}
	done := false
	return func() {
		if done {
			return
		}
		done = true
		observer.Call("disconnect")
		cb.Release()
	}
}

func (b *Browser) RequestFrame(cb FrameFunc) {
	var fn js.Func
	fn = js.FuncOf(func(_ js.Value, args []js.Value) any {
		fn.Release()
		cb(millis(args[0].Float()))
		return nil
	})
	b.window.Call("requestAnimationFrame", fn)
}

func (b *Browser) Now() time.Duration {
	return millis(b.window.Get("performance").Call("now").Float())
}

func (b *Browser) AfterFunc(d time.Duration, fn func()) func() {
	var cb js.Func
	done := false
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		done = true
		cb.Release()
		fn()
		return nil
	})
	id := b.window.Call("setTimeout", cb, d.Milliseconds())
	return func() {
		if done {
			return
		}
		done = true
		b.window.Call("clearTimeout", id)
		cb.Release()
	}
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

var domEvents = map[EventKind]string{
	PointerMove: "mousemove",
	TouchMove:   "touchmove",
	Resize:      "resize",
	Scroll:      "scroll",
}

type jsElement struct {
	v    js.Value
	root bool
}

func unwrap(el Element) (*jsElement, bool) {
	switch e := el.(type) {
	case *jsElement:
		return e, true
	case *jsSurface:
		return e.jsElement, true
	}
	return nil, false
}

// AddEventListener registers touch listeners as non-passive so they may suppress scrolling.
func (e *jsElement) AddEventListener(kind EventKind, fn Listener) func() {
	name := domEvents[kind]
	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		fn(toEvent(kind, args[0]))
		return nil
	})
	opts := map[string]any{"passive": kind != TouchMove}
	e.v.Call("addEventListener", name, cb, opts)
	removed := false
	return func() {
		if removed {
			return
		}
		removed = true
		e.v.Call("removeEventListener", name, cb, opts)
		cb.Release()
	}
}

func toEvent(kind EventKind, v js.Value) Event {
	ev := Event{
		Kind:    kind,
		Prevent: func() { v.Call("preventDefault") },
	}
	switch kind {
	case PointerMove:
		ev.ClientX = float32(v.Get("clientX").Float())
		ev.ClientY = float32(v.Get("clientY").Float())
	case TouchMove:
		touches := v.Get("touches")
		for i := 0; i < touches.Length(); i++ {
			t := touches.Index(i)
			ev.Touches = append(ev.Touches, Touch{
				ClientX: float32(t.Get("clientX").Float()),
				ClientY: float32(t.Get("clientY").Float()),
			})
		}
	}
	return ev
}

func (e *jsElement) ClientSize() common.Size {
	return common.Size{
		Width:  float32(e.v.Get("clientWidth").Float()),
		Height: float32(e.v.Get("clientHeight").Float()),
	}
}

func (e *jsElement) BoundingRect() common.Rect {
	r := e.v.Call("getBoundingClientRect")
	return common.Rect{
		Left:   float32(r.Get("left").Float()),
		Top:    float32(r.Get("top").Float()),
		Width:  float32(r.Get("width").Float()),
		Height: float32(r.Get("height").Float()),
	}
}

func (e *jsElement) IsRoot() bool {
	return e.root
}

func (e *jsElement) Style(prop string) string {
	return js.Global().Call("getComputedStyle", e.v).Call("getPropertyValue", prop).String()
}

func (e *jsElement) SetStyle(prop, value string) {
	e.v.Get("style").Call("setProperty", prop, value)
}

func (e *jsElement) Contains(other Element) bool {
	o, ok := unwrap(other)
	return ok && e.v.Call("contains", o.v).Bool()
}

func (e *jsElement) Append(child Element) {
	if c, ok := unwrap(child); ok {
		e.v.Call("appendChild", c.v)
	}
}

func (e *jsElement) Remove(child Element) {
	c, ok := unwrap(child)
	if !ok || !c.v.Get("parentNode").Equal(e.v) {
		return
	}
	e.v.Call("removeChild", c.v)
}

type jsSurface struct {
	*jsElement
	backend graphics.Backend
}

func (s *jsSurface) SetBackingSize(width, height int) {
	s.v.Set("width", width)
	s.v.Set("height", height)
}

func (s *jsSurface) BackingSize() (int, int) {
	return s.v.Get("width").Int(), s.v.Get("height").Int()
}

func (s *jsSurface) Parent() Element {
	p := s.v.Get("parentElement")
	if p.IsNull() {
		return nil
	}
	body := js.Global().Get("document").Get("body")
	return &jsElement{v: p, root: p.Equal(body)}
}

func (s *jsSurface) GraphicsContext() (graphics.Backend, error) {
	if s.backend != nil && !s.backend.ContextLost() {
		return s.backend, nil
	}
	b, err := graphics.NewWebGLBackend(s.v)
	if err != nil {
		return nil, err
	}
	s.backend = b
	return b, nil
}
