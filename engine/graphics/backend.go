package graphics

import (
	"errors"
	"fmt"
)

// ShaderStage identifies the pipeline stage a shader object is compiled for.
type ShaderStage int

const (
	// StageVertex is the vertex processing stage.
	StageVertex ShaderStage = iota

	// StageFragment is the fragment (pixel) processing stage.
	StageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ShaderHandle identifies a shader object owned by a Backend. Zero is never a valid handle.
type ShaderHandle uint32

// ProgramHandle identifies a linked program owned by a Backend. Zero is never a valid handle.
type ProgramHandle uint32

// BufferHandle identifies a vertex buffer owned by a Backend. Zero is never a valid handle.
type BufferHandle uint32

// Location is a uniform binding slot inside a linked program.
type Location int32

// NullLocation marks a uniform name that the program does not use. Uploads to it are skipped.
const NullLocation Location = -1

// Valid reports whether the location refers to an active uniform.
//
// Returns:
//   - bool: false for NullLocation (or any negative location)
func (l Location) Valid() bool {
	return l >= 0
}

// GLSLVersion describes the shading language version a Backend accepts, used to build the
// #version directive for sources that omit one.
type GLSLVersion struct {
	Major int
	Minor int
	ES    bool
}

// Directive renders the version as the text following "#version", e.g. "300 es" or "410 core".
//
// Returns:
//   - string: the directive body
func (v GLSLVersion) Directive() string {
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d core", v.Major, v.Minor)
}

var (
	// VersionES300 is GLSL ES 3.00, the WebGL2 shading language.
	VersionES300 = GLSLVersion{Major: 3, Minor: 0, ES: true}

	// Version410 is desktop GLSL 4.10 core, the highest version available on every desktop platform.
	Version410 = GLSLVersion{Major: 4, Minor: 10}
)

// ErrContextLost is returned when a Backend is used after its graphics context became unavailable.
var ErrContextLost = errors.New("graphics: context lost")

// Backend is the minimal graphics capability the renderer consumes. It mirrors the small subset of
// the GL/WebGL API needed to compile a program, feed it uniforms and draw a single vertex buffer.
//
// All methods must be called from the thread (or event loop) that owns the context.
type Backend interface {
	// Version returns the shading language version used for missing #version directives.
	//
	// Returns:
	//   - GLSLVersion: the backend's preferred GLSL version
	Version() GLSLVersion

	// CreateShader allocates a shader object for the given stage.
	//
	// Parameters:
	//   - stage: the pipeline stage of the shader
	//
	// Returns:
	//   - ShaderHandle: the new shader object
	CreateShader(stage ShaderStage) ShaderHandle

	// ShaderSource replaces the source text of a shader object.
	//
	// Parameters:
	//   - shader: the shader object
	//   - source: the full GLSL source
	ShaderSource(shader ShaderHandle, source string)

	// CompileShader compiles the current source of a shader object.
	//
	// Parameters:
	//   - shader: the shader object
	CompileShader(shader ShaderHandle)

	// ShaderCompiled reports the compile status of a shader object.
	//
	// Parameters:
	//   - shader: the shader object
	//
	// Returns:
	//   - bool: true if the last compile succeeded
	ShaderCompiled(shader ShaderHandle) bool

	// ShaderInfoLog returns the driver diagnostic log of a shader object.
	//
	// Parameters:
	//   - shader: the shader object
	//
	// Returns:
	//   - string: the driver log, possibly empty
	ShaderInfoLog(shader ShaderHandle) string

	// DeleteShader releases a shader object.
	//
	// Parameters:
	//   - shader: the shader object
	DeleteShader(shader ShaderHandle)

	// CreateProgram allocates an empty program object.
	//
	// Returns:
	//   - ProgramHandle: the new program object
	CreateProgram() ProgramHandle

	// AttachShader attaches a compiled shader object to a program.
	//
	// Parameters:
	//   - program: the program object
	//   - shader: the compiled shader object
	AttachShader(program ProgramHandle, shader ShaderHandle)

	// LinkProgram links the attached stages of a program.
	//
	// Parameters:
	//   - program: the program object
	LinkProgram(program ProgramHandle)

	// ProgramLinked reports the link status of a program.
	//
	// Parameters:
	//   - program: the program object
	//
	// Returns:
	//   - bool: true if the last link succeeded
	ProgramLinked(program ProgramHandle) bool

	// ProgramInfoLog returns the driver diagnostic log of a program.
	//
	// Parameters:
	//   - program: the program object
	//
	// Returns:
	//   - string: the driver log, possibly empty
	ProgramInfoLog(program ProgramHandle) string

	// DeleteProgram releases a program object.
	//
	// Parameters:
	//   - program: the program object
	DeleteProgram(program ProgramHandle)

	// UseProgram makes a program current for subsequent uniform uploads and draws.
	//
	// Parameters:
	//   - program: the program object
	UseProgram(program ProgramHandle)

	// UniformLocation resolves the binding slot of a named uniform.
	//
	// Parameters:
	//   - program: the linked program
	//   - name: the uniform name as declared in GLSL
	//
	// Returns:
	//   - Location: the slot, or NullLocation if the program does not use the name
	UniformLocation(program ProgramHandle, name string) Location

	// AttribLocation resolves the index of a named vertex attribute.
	//
	// Parameters:
	//   - program: the linked program
	//   - name: the attribute name as declared in GLSL
	//
	// Returns:
	//   - int32: the attribute index, or -1 if the program does not use the name
	AttribLocation(program ProgramHandle, name string) int32

	// CreateBuffer allocates a vertex buffer.
	//
	// Returns:
	//   - BufferHandle: the new buffer
	CreateBuffer() BufferHandle

	// BufferData uploads static vertex data into a buffer, binding it in the process.
	//
	// Parameters:
	//   - buffer: the buffer to fill
	//   - data: tightly packed float32 vertex data
	BufferData(buffer BufferHandle, data []float32)

	// BindVertexBuffer binds a buffer and points an attribute at it.
	//
	// Parameters:
	//   - buffer: the vertex buffer
	//   - attrib: the attribute index
	//   - components: the number of float32 components per vertex
	BindVertexBuffer(buffer BufferHandle, attrib uint32, components int32)

	// DeleteBuffer releases a vertex buffer.
	//
	// Parameters:
	//   - buffer: the buffer to release
	DeleteBuffer(buffer BufferHandle)

	// Viewport sets the drawable region in device pixels.
	//
	// Parameters:
	//   - x, y: the lower-left corner
	//   - width, height: the region size
	Viewport(x, y, width, height int32)

	// Uniform1f uploads a float to the current program.
	Uniform1f(loc Location, v float32)

	// Uniform1i uploads an int to the current program.
	Uniform1i(loc Location, v int32)

	// Uniform2f uploads a vec2 to the current program.
	Uniform2f(loc Location, x, y float32)

	// Uniform3f uploads a vec3 to the current program.
	Uniform3f(loc Location, x, y, z float32)

	// Uniform4f uploads a vec4 to the current program.
	Uniform4f(loc Location, x, y, z, w float32)

	// DrawTriangles draws count vertices from the bound vertex buffer as a triangle list.
	//
	// Parameters:
	//   - first: the first vertex
	//   - count: the number of vertices
	DrawTriangles(first, count int32)

	// ContextLost reports whether the underlying context has become unavailable.
	//
	// Returns:
	//   - bool: true if the context can no longer be used
	ContextLost() bool

	// Release gives up the context. The Backend reports ContextLost afterwards.
	Release()
}
