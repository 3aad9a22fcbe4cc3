//go:build js && wasm

package graphics

import (
	"fmt"
	"syscall/js"

	"github.com/Carmen-Shannon/oxy-shader/common"
)

// webglBackend drives a WebGL2 rendering context. WebGL hands out JS objects rather than integer
// names, so shaders, programs, buffers and uniform locations are kept in tables indexed by the
// handles given back to callers.
type webglBackend struct {
	gl js.Value

	objects   map[uint32]js.Value
	nextID    uint32
	locations []js.Value

	f32  js.Value
	lost bool
}

var _ Backend = &webglBackend{}

// NewWebGLBackend wraps the WebGL2 context of a canvas element.
//
// Parameters:
//   - canvas: the canvas element to draw into
//
// Returns:
//   - Backend: the WebGL2 backend
//   - error: an error if the browser could not provide a WebGL2 context
func NewWebGLBackend(canvas js.Value) (Backend, error) {
	ctx := canvas.Call("getContext", "webgl2")
	if ctx.IsNull() || ctx.IsUndefined() {
		return nil, fmt.Errorf("failed to acquire a webgl2 context")
	}
	return &webglBackend{
		gl:      ctx,
		objects: make(map[uint32]js.Value),
		f32:     js.Global().Get("Float32Array"),
	}, nil
}

func (b *webglBackend) put(v js.Value) uint32 {
	if v.IsNull() || v.IsUndefined() {
		return 0
	}
	b.nextID++
	b.objects[b.nextID] = v
	return b.nextID
}

func (b *webglBackend) get(id uint32) js.Value {
	if v, ok := b.objects[id]; ok {
		return v
	}
	return js.Null()
}

func (b *webglBackend) drop(id uint32) js.Value {
	v := b.get(id)
	delete(b.objects, id)
	return v
}

func (b *webglBackend) Version() GLSLVersion {
	return VersionES300
}

func (b *webglBackend) CreateShader(stage ShaderStage) ShaderHandle {
	kind := b.gl.Get("VERTEX_SHADER")
	if stage == StageFragment {
		kind = b.gl.Get("FRAGMENT_SHADER")
	}
	return ShaderHandle(b.put(b.gl.Call("createShader", kind)))
}

func (b *webglBackend) ShaderSource(shader ShaderHandle, source string) {
	b.gl.Call("shaderSource", b.get(uint32(shader)), source)
}

func (b *webglBackend) CompileShader(shader ShaderHandle) {
	b.gl.Call("compileShader", b.get(uint32(shader)))
}

func (b *webglBackend) ShaderCompiled(shader ShaderHandle) bool {
	return b.gl.Call("getShaderParameter", b.get(uint32(shader)), b.gl.Get("COMPILE_STATUS")).Truthy()
}

func (b *webglBackend) ShaderInfoLog(shader ShaderHandle) string {
	v := b.gl.Call("getShaderInfoLog", b.get(uint32(shader)))
	if v.IsNull() {
		return ""
	}
	return v.String()
}

func (b *webglBackend) DeleteShader(shader ShaderHandle) {
	b.gl.Call("deleteShader", b.drop(uint32(shader)))
}

func (b *webglBackend) CreateProgram() ProgramHandle {
	return ProgramHandle(b.put(b.gl.Call("createProgram")))
}

func (b *webglBackend) AttachShader(program ProgramHandle, shader ShaderHandle) {
	b.gl.Call("attachShader", b.get(uint32(program)), b.get(uint32(shader)))
}

func (b *webglBackend) LinkProgram(program ProgramHandle) {
	b.gl.Call("linkProgram", b.get(uint32(program)))
}

func (b *webglBackend) ProgramLinked(program ProgramHandle) bool {
	return b.gl.Call("getProgramParameter", b.get(uint32(program)), b.gl.Get("LINK_STATUS")).Truthy()
}

func (b *webglBackend) ProgramInfoLog(program ProgramHandle) string {
	v := b.gl.Call("getProgramInfoLog", b.get(uint32(program)))
	if v.IsNull() {
		return ""
	}
	return v.String()
}

func (b *webglBackend) DeleteProgram(program ProgramHandle) {
	b.gl.Call("deleteProgram", b.drop(uint32(program)))
	b.locations = b.locations[:0]
}

func (b *webglBackend) UseProgram(program ProgramHandle) {
	b.gl.Call("useProgram", b.get(uint32(program)))
}

func (b *webglBackend) UniformLocation(program ProgramHandle, name string) Location {
	loc := b.gl.Call("getUniformLocation", b.get(uint32(program)), name)
	if loc.IsNull() || loc.IsUndefined() {
		return NullLocation
	}
	b.locations = append(b.locations, loc)
	return Location(len(b.locations) - 1)
}

func (b *webglBackend) AttribLocation(program ProgramHandle, name string) int32 {
	return int32(b.gl.Call("getAttribLocation", b.get(uint32(program)), name).Int())
}

func (b *webglBackend) CreateBuffer() BufferHandle {
	return BufferHandle(b.put(b.gl.Call("createBuffer")))
}

func (b *webglBackend) BufferData(buffer BufferHandle, data []float32) {
	target := b.gl.Get("ARRAY_BUFFER")
	b.gl.Call("bindBuffer", target, b.get(uint32(buffer)))

	raw := common.SliceToBytes(data)
	arr := js.Global().Get("Uint8Array").New(len(raw))
	js.CopyBytesToJS(arr, raw)
	b.gl.Call("bufferData", target, b.f32.New(arr.Get("buffer")), b.gl.Get("STATIC_DRAW"))
}

func (b *webglBackend) BindVertexBuffer(buffer BufferHandle, attrib uint32, components int32) {
	b.gl.Call("bindBuffer", b.gl.Get("ARRAY_BUFFER"), b.get(uint32(buffer)))
	b.gl.Call("enableVertexAttribArray", attrib)
	b.gl.Call("vertexAttribPointer", attrib, components, b.gl.Get("FLOAT"), false, 0, 0)
}

func (b *webglBackend) DeleteBuffer(buffer BufferHandle) {
	b.gl.Call("deleteBuffer", b.drop(uint32(buffer)))
}

func (b *webglBackend) Viewport(x, y, width, height int32) {
	b.gl.Call("viewport", x, y, width, height)
}

func (b *webglBackend) location(loc Location) js.Value {
	if !loc.Valid() || int(loc) >= len(b.locations) {
		return js.Null()
	}
	return b.locations[loc]
}

func (b *webglBackend) Uniform1f(loc Location, v float32) {
	b.gl.Call("uniform1f", b.location(loc), v)
}

func (b *webglBackend) Uniform1i(loc Location, v int32) {
	b.gl.Call("uniform1i", b.location(loc), v)
}

func (b *webglBackend) Uniform2f(loc Location, x, y float32) {
	b.gl.Call("uniform2f", b.location(loc), x, y)
}

func (b *webglBackend) Uniform3f(loc Location, x, y, z float32) {
	b.gl.Call("uniform3f", b.location(loc), x, y, z)
}

func (b *webglBackend) Uniform4f(loc Location, x, y, z, w float32) {
	b.gl.Call("uniform4f", b.location(loc), x, y, z, w)
}

func (b *webglBackend) DrawTriangles(first, count int32) {
	b.gl.Call("drawArrays", b.gl.Get("TRIANGLES"), first, count)
}

func (b *webglBackend) ContextLost() bool {
	if b.lost {
		return true
	}
	return b.gl.Call("isContextLost").Bool()
}

// Release retires the backend without losing the canvas context. A canvas keeps handing out the
// same context, so a lost one would leave a reused canvas unable to compile anything.
func (b *webglBackend) Release() {
	if b.lost {
		return
	}
	clear(b.objects)
	b.locations = nil
	b.lost = true
}
