// Package shader compiles GLSL vertex/fragment pairs into linked programs. Sources are treated as
// opaque text: the only rewriting done is filling in a missing #version directive and a default
// float precision for fragment shaders.
package shader

import (
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
)

// DefaultVertex passes the quad position through and derives vUv in [0,1].
const DefaultVertex = `in vec4 a_position;
out vec2 vUv;
void main() {
	vUv = a_position.xy * 0.5 + 0.5;
	gl_Position = a_position;
}
`

// DefaultFragment colors the surface by UV with a blue channel pulsing over time.
const DefaultFragment = `uniform float time;
in vec2 vUv;
out vec4 color;
void main() {
	color = vec4(vUv, 0.5 + 0.5 * sin(time), 1.0);
}
`

// PositionAttribute is the vertex attribute the quad positions are fed through.
const PositionAttribute = "a_position"

// DefaultPrecision is inserted into fragment sources that declare no precision of their own.
const DefaultPrecision = "precision mediump float;"

// Program is a linked GPU program. The zero value is the invalid program.
type Program struct {
	handle graphics.ProgramHandle
}

// Valid reports whether the program linked successfully and has not been released.
func (p Program) Valid() bool {
	return p.handle != 0
}

// Handle returns the backend handle of the program.
func (p Program) Handle() graphics.ProgramHandle {
	return p.handle
}

// Release deletes the program. Releasing an invalid program is a no-op.
func (p *Program) Release(ctx graphics.Backend) {
	if p.handle == 0 {
		return
	}
	ctx.DeleteProgram(p.handle)
	p.handle = 0
}

// Prepare fills in the directives a source needs to compile on a backend: a #version line when the
// source has none and, for fragment sources, a default float precision when no precision statement
// appears anywhere in the text. Already prepared sources are returned unchanged.
//
// Parameters:
//   - stage: the stage the source is compiled for
//   - src: the GLSL source
//   - version: the version to declare when the source has none
//
// Returns:
//   - string: the prepared source
func Prepare(stage graphics.ShaderStage, src string, version graphics.GLSLVersion) string {
	src = strings.TrimLeft(src, " \t\r\n")

	header := "#version " + version.Directive()
	body := src
	if strings.HasPrefix(src, "#version") {
		header, body, _ = strings.Cut(src, "\n")
		header = strings.TrimRight(header, " \t\r")
	}
	if stage == graphics.StageFragment && !strings.Contains(src, "precision") {
		header += "\n" + DefaultPrecision
	}
	return header + "\n" + body
}

// Compile prepares, compiles and links a vertex/fragment pair. On failure the diagnostic is logged,
// every intermediate object is deleted and the invalid Program is returned with the error.
//
// Parameters:
//   - ctx: the backend to compile on
//   - vertexSrc: the vertex stage source
//   - fragmentSrc: the fragment stage source
//
// Returns:
//   - Program: the linked program, or the invalid Program on failure
//   - error: a *ShaderCompileError or *ProgramLinkError on failure
func Compile(ctx graphics.Backend, vertexSrc, fragmentSrc string) (Program, error) {
	version := ctx.Version()

	vs, err := compileStage(ctx, graphics.StageVertex, Prepare(graphics.StageVertex, vertexSrc, version))
	if err != nil {
		return Program{}, err
	}
	defer ctx.DeleteShader(vs)

	fs, err := compileStage(ctx, graphics.StageFragment, Prepare(graphics.StageFragment, fragmentSrc, version))
	if err != nil {
		return Program{}, err
	}
	defer ctx.DeleteShader(fs)

	program := ctx.CreateProgram()
	ctx.AttachShader(program, vs)
	ctx.AttachShader(program, fs)
	ctx.LinkProgram(program)

	if !ctx.ProgramLinked(program) {
		linkErr := &ProgramLinkError{Log: ctx.ProgramInfoLog(program)}
		ctx.DeleteProgram(program)
		slog.Error("shader program failed to link", "log", linkErr.Log)
		return Program{}, linkErr
	}
	return Program{handle: program}, nil
}

func compileStage(ctx graphics.Backend, stage graphics.ShaderStage, src string) (graphics.ShaderHandle, error) {
	sh := ctx.CreateShader(stage)
	ctx.ShaderSource(sh, src)
	ctx.CompileShader(sh)

	if !ctx.ShaderCompiled(sh) {
		compileErr := &ShaderCompileError{Stage: stage, Log: ctx.ShaderInfoLog(sh)}
		ctx.DeleteShader(sh)
		slog.Error("shader failed to compile", "stage", stage.String(), "log", compileErr.Log)
		return 0, compileErr
	}
	return sh, nil
}
