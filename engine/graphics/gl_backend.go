//go:build !js

package graphics

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
)

var glInitOnce = sync.OnceValue(gl.Init)

// glBackend is the desktop OpenGL 4.1 core implementation of Backend.
// A core profile needs a bound vertex array object before any attribute setup, so one is created
// alongside the backend and kept bound for its lifetime.
type glBackend struct {
	vao  uint32
	lost bool
}

var _ Backend = &glBackend{}

// NewGLBackend creates a Backend for the OpenGL context current on the calling thread.
// The GL function pointers are loaded on first use.
//
// Returns:
//   - Backend: the OpenGL backend
//   - error: an error if the GL entry points could not be loaded
func NewGLBackend() (Backend, error) {
	if err := glInitOnce(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	b := &glBackend{}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	return b, nil
}

func (b *glBackend) Version() GLSLVersion {
	return Version410
}

func (b *glBackend) CreateShader(stage ShaderStage) ShaderHandle {
	switch stage {
	case StageFragment:
		return ShaderHandle(gl.CreateShader(gl.FRAGMENT_SHADER))
	default:
		return ShaderHandle(gl.CreateShader(gl.VERTEX_SHADER))
	}
}

func (b *glBackend) ShaderSource(shader ShaderHandle, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(shader), 1, csources, nil)
	free()
}

func (b *glBackend) CompileShader(shader ShaderHandle) {
	gl.CompileShader(uint32(shader))
}

func (b *glBackend) ShaderCompiled(shader ShaderHandle) bool {
	var status int32
	gl.GetShaderiv(uint32(shader), gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (b *glBackend) ShaderInfoLog(shader ShaderHandle) string {
	var logLength int32
	gl.GetShaderiv(uint32(shader), gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	logMsg := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(uint32(shader), logLength, nil, gl.Str(logMsg))
	return strings.TrimSpace(strings.TrimRight(logMsg, "\x00"))
}

func (b *glBackend) DeleteShader(shader ShaderHandle) {
	gl.DeleteShader(uint32(shader))
}

func (b *glBackend) CreateProgram() ProgramHandle {
	return ProgramHandle(gl.CreateProgram())
}

func (b *glBackend) AttachShader(program ProgramHandle, shader ShaderHandle) {
	gl.AttachShader(uint32(program), uint32(shader))
}

func (b *glBackend) LinkProgram(program ProgramHandle) {
	gl.LinkProgram(uint32(program))
}

func (b *glBackend) ProgramLinked(program ProgramHandle) bool {
	var status int32
	gl.GetProgramiv(uint32(program), gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (b *glBackend) ProgramInfoLog(program ProgramHandle) string {
	var logLength int32
	gl.GetProgramiv(uint32(program), gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	logMsg := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(uint32(program), logLength, nil, gl.Str(logMsg))
	return strings.TrimSpace(strings.TrimRight(logMsg, "\x00"))
}

func (b *glBackend) DeleteProgram(program ProgramHandle) {
	gl.DeleteProgram(uint32(program))
}

func (b *glBackend) UseProgram(program ProgramHandle) {
	gl.UseProgram(uint32(program))
}

func (b *glBackend) UniformLocation(program ProgramHandle, name string) Location {
	return Location(gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00")))
}

func (b *glBackend) AttribLocation(program ProgramHandle, name string) int32 {
	return gl.GetAttribLocation(uint32(program), gl.Str(name+"\x00"))
}

func (b *glBackend) CreateBuffer() BufferHandle {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	return BufferHandle(vbo)
}

func (b *glBackend) BufferData(buffer BufferHandle, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buffer))
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (b *glBackend) BindVertexBuffer(buffer BufferHandle, attrib uint32, components int32) {
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buffer))
	gl.EnableVertexAttribArray(attrib)
	gl.VertexAttribPointerWithOffset(attrib, components, gl.FLOAT, false, 0, 0)
}

func (b *glBackend) DeleteBuffer(buffer BufferHandle) {
	vbo := uint32(buffer)
	gl.DeleteBuffers(1, &vbo)
}

func (b *glBackend) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (b *glBackend) Uniform1f(loc Location, v float32) {
	gl.Uniform1f(int32(loc), v)
}

func (b *glBackend) Uniform1i(loc Location, v int32) {
	gl.Uniform1i(int32(loc), v)
}

func (b *glBackend) Uniform2f(loc Location, x, y float32) {
	gl.Uniform2f(int32(loc), x, y)
}

func (b *glBackend) Uniform3f(loc Location, x, y, z float32) {
	gl.Uniform3f(int32(loc), x, y, z)
}

func (b *glBackend) Uniform4f(loc Location, x, y, z, w float32) {
	gl.Uniform4f(int32(loc), x, y, z, w)
}

func (b *glBackend) DrawTriangles(first, count int32) {
	gl.DrawArrays(gl.TRIANGLES, first, count)
}

func (b *glBackend) ContextLost() bool {
	return b.lost
}

func (b *glBackend) Release() {
	if b.lost {
		return
	}
	gl.BindVertexArray(0)
	gl.DeleteVertexArrays(1, &b.vao)
	b.lost = true
}
