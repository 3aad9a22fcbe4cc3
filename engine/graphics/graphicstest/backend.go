// Package graphicstest provides a recording graphics.Backend for tests that cannot open a real
// GPU context.
package graphicstest

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
)

// Upload is a single recorded uniform upload.
type Upload struct {
	Name     string
	Location graphics.Location
	Func     string
	Values   []float32
}

// Draw is a single recorded draw call.
type Draw struct {
	Program graphics.ProgramHandle
	First   int32
	Count   int32
}

// Backend is a fake graphics.Backend. Every call is recorded; compile and link results are
// controlled through the exported fields.
type Backend struct {
	// GLSL is the version reported by Version. Defaults to graphics.VersionES300.
	GLSL graphics.GLSLVersion

	// CompileLogs makes the given stage fail to compile with the mapped log.
	CompileLogs map[graphics.ShaderStage]string

	// LinkLog makes linking fail with the given log when non-empty.
	LinkLog string

	// Inactive names resolve to graphics.NullLocation.
	Inactive map[string]bool

	// Attrib is returned by AttribLocation. Defaults to 0.
	Attrib int32

	// Lost forces ContextLost to report true.
	Lost bool

	Released  bool
	Sources   map[graphics.ShaderStage]string
	Uploads   []Upload
	Draws     []Draw
	Viewports [][4]int32
	Bound     []uint32

	nextID    uint32
	stages    map[graphics.ShaderHandle]graphics.ShaderStage
	programs  map[graphics.ProgramHandle]bool
	buffers   map[graphics.BufferHandle][]float32
	locations map[string]graphics.Location
	names     map[graphics.Location]string
	current   graphics.ProgramHandle
}

var _ graphics.Backend = &Backend{}

// New returns an empty fake backend reporting GLSL ES 3.00.
func New() *Backend {
	return &Backend{
		GLSL:      graphics.VersionES300,
		Sources:   make(map[graphics.ShaderStage]string),
		stages:    make(map[graphics.ShaderHandle]graphics.ShaderStage),
		programs:  make(map[graphics.ProgramHandle]bool),
		buffers:   make(map[graphics.BufferHandle][]float32),
		locations: make(map[string]graphics.Location),
		names:     make(map[graphics.Location]string),
	}
}

func (b *Backend) id() uint32 {
	b.nextID++
	return b.nextID
}

func (b *Backend) Version() graphics.GLSLVersion {
	return b.GLSL
}

func (b *Backend) CreateShader(stage graphics.ShaderStage) graphics.ShaderHandle {
	h := graphics.ShaderHandle(b.id())
	b.stages[h] = stage
	return h
}

func (b *Backend) ShaderSource(shader graphics.ShaderHandle, source string) {
	b.Sources[b.stages[shader]] = source
}

func (b *Backend) CompileShader(graphics.ShaderHandle) {}

func (b *Backend) ShaderCompiled(shader graphics.ShaderHandle) bool {
	_, failed := b.CompileLogs[b.stages[shader]]
	return !failed
}

func (b *Backend) ShaderInfoLog(shader graphics.ShaderHandle) string {
	return b.CompileLogs[b.stages[shader]]
}

func (b *Backend) DeleteShader(shader graphics.ShaderHandle) {
	delete(b.stages, shader)
}

func (b *Backend) CreateProgram() graphics.ProgramHandle {
	h := graphics.ProgramHandle(b.id())
	b.programs[h] = true
	return h
}

func (b *Backend) AttachShader(graphics.ProgramHandle, graphics.ShaderHandle) {}

func (b *Backend) LinkProgram(graphics.ProgramHandle) {}

func (b *Backend) ProgramLinked(graphics.ProgramHandle) bool {
	return b.LinkLog == ""
}

func (b *Backend) ProgramInfoLog(graphics.ProgramHandle) string {
	return b.LinkLog
}

func (b *Backend) DeleteProgram(program graphics.ProgramHandle) {
	delete(b.programs, program)
	if b.current == program {
		b.current = 0
	}
}

func (b *Backend) UseProgram(program graphics.ProgramHandle) {
	b.current = program
}

// UniformLocation hands out one stable location per name for the lifetime of the fake.
func (b *Backend) UniformLocation(_ graphics.ProgramHandle, name string) graphics.Location {
	if b.Inactive[name] {
		return graphics.NullLocation
	}
	if loc, ok := b.locations[name]; ok {
		return loc
	}
	loc := graphics.Location(len(b.locations))
	b.locations[name] = loc
	b.names[loc] = name
	return loc
}

func (b *Backend) AttribLocation(graphics.ProgramHandle, string) int32 {
	return b.Attrib
}

func (b *Backend) CreateBuffer() graphics.BufferHandle {
	h := graphics.BufferHandle(b.id())
	b.buffers[h] = nil
	return h
}

func (b *Backend) BufferData(buffer graphics.BufferHandle, data []float32) {
	b.buffers[buffer] = append([]float32(nil), data...)
}

func (b *Backend) BindVertexBuffer(_ graphics.BufferHandle, attrib uint32, _ int32) {
	b.Bound = append(b.Bound, attrib)
}

func (b *Backend) DeleteBuffer(buffer graphics.BufferHandle) {
	delete(b.buffers, buffer)
}

func (b *Backend) Viewport(x, y, width, height int32) {
	b.Viewports = append(b.Viewports, [4]int32{x, y, width, height})
}

func (b *Backend) record(loc graphics.Location, fn string, values ...float32) {
	b.Uploads = append(b.Uploads, Upload{Name: b.names[loc], Location: loc, Func: fn, Values: values})
}

func (b *Backend) Uniform1f(loc graphics.Location, v float32) {
	b.record(loc, "1f", v)
}

func (b *Backend) Uniform1i(loc graphics.Location, v int32) {
	b.record(loc, "1i", float32(v))
}

func (b *Backend) Uniform2f(loc graphics.Location, x, y float32) {
	b.record(loc, "2f", x, y)
}

func (b *Backend) Uniform3f(loc graphics.Location, x, y, z float32) {
	b.record(loc, "3f", x, y, z)
}

func (b *Backend) Uniform4f(loc graphics.Location, x, y, z, w float32) {
	b.record(loc, "4f", x, y, z, w)
}

func (b *Backend) DrawTriangles(first, count int32) {
	b.Draws = append(b.Draws, Draw{Program: b.current, First: first, Count: count})
}

func (b *Backend) ContextLost() bool {
	return b.Lost || b.Released
}

func (b *Backend) Release() {
	b.Released = true
}

// LastUpload returns the most recent upload recorded for a uniform name.
//
// Parameters:
//   - name: the uniform name
//
// Returns:
//   - Upload: the last upload
//   - bool: false if the name was never uploaded
func (b *Backend) LastUpload(name string) (Upload, bool) {
	for i := len(b.Uploads) - 1; i >= 0; i-- {
		if b.Uploads[i].Name == name {
			return b.Uploads[i], true
		}
	}
	return Upload{}, false
}

// UploadsOf returns every upload recorded for a uniform name in call order.
func (b *Backend) UploadsOf(name string) []Upload {
	var out []Upload
	for _, u := range b.Uploads {
		if u.Name == name {
			out = append(out, u)
		}
	}
	return out
}

// LivePrograms reports how many programs were created and not yet deleted.
func (b *Backend) LivePrograms() int {
	return len(b.programs)
}

// LiveBuffers reports how many buffers were created and not yet deleted.
func (b *Backend) LiveBuffers() int {
	return len(b.buffers)
}

// BufferContents returns the data last uploaded into the only live buffer, or nil.
func (b *Backend) BufferContents() []float32 {
	for _, data := range b.buffers {
		return data
	}
	return nil
}

// HasSource reports whether the last source given to a stage contains substr.
func (b *Backend) HasSource(stage graphics.ShaderStage, substr string) bool {
	return strings.Contains(b.Sources[stage], substr)
}

// Reset drops recorded uploads, draws and viewports while keeping created objects.
func (b *Backend) Reset() {
	b.Uploads = nil
	b.Draws = nil
	b.Viewports = nil
	b.Bound = nil
}
