package shader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
	"github.com/Carmen-Shannon/oxy-shader/engine/graphics/graphicstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareAddsVersionAndPrecision(t *testing.T) {
	out := Prepare(graphics.StageFragment, "void main() {}", graphics.VersionES300)

	assert.Equal(t, "#version 300 es\nprecision mediump float;\nvoid main() {}", out)
}

func TestPrepareVertexGetsNoPrecision(t *testing.T) {
	out := Prepare(graphics.StageVertex, "void main() {}", graphics.Version410)

	assert.Equal(t, "#version 410 core\nvoid main() {}", out)
}

func TestPrepareKeepsExistingVersion(t *testing.T) {
	src := "#version 300 es\nprecision highp float;\nvoid main() {}"

	out := Prepare(graphics.StageFragment, src, graphics.Version410)

	assert.Equal(t, src, out)
}

func TestPrepareInsertsPrecisionAfterExistingVersion(t *testing.T) {
	out := Prepare(graphics.StageFragment, "#version 300 es\nvoid main() {}", graphics.VersionES300)

	assert.Equal(t, "#version 300 es\nprecision mediump float;\nvoid main() {}", out)
}

func TestPrepareIsIdempotent(t *testing.T) {
	for _, stage := range []graphics.ShaderStage{graphics.StageVertex, graphics.StageFragment} {
		once := Prepare(stage, DefaultFragment, graphics.VersionES300)
		assert.Equal(t, once, Prepare(stage, once, graphics.VersionES300), stage.String())
	}
}

func TestCompileLinksProgram(t *testing.T) {
	ctx := graphicstest.New()

	p, err := Compile(ctx, DefaultVertex, DefaultFragment)

	require.NoError(t, err)
	assert.True(t, p.Valid())
	assert.Equal(t, 1, ctx.LivePrograms())
	assert.True(t, ctx.HasSource(graphics.StageVertex, "#version 300 es"))
	assert.True(t, ctx.HasSource(graphics.StageFragment, DefaultPrecision))
}

func TestCompileReportsStageFailure(t *testing.T) {
	ctx := graphicstest.New()
	ctx.CompileLogs = map[graphics.ShaderStage]string{graphics.StageFragment: "ERROR: 0:3: 'colr' : undeclared identifier"}

	p, err := Compile(ctx, DefaultVertex, "void main() { colr = vec4(1.0); }")

	assert.False(t, p.Valid())
	var compileErr *ShaderCompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, graphics.StageFragment, compileErr.Stage)
	assert.Contains(t, compileErr.Log, "undeclared identifier")
	assert.Zero(t, ctx.LivePrograms())
}

func TestCompileReportsLinkFailure(t *testing.T) {
	ctx := graphicstest.New()
	ctx.LinkLog = "varying vUv not written"

	p, err := Compile(ctx, DefaultVertex, DefaultFragment)

	assert.False(t, p.Valid())
	var linkErr *ProgramLinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Equal(t, "varying vUv not written", linkErr.Log)
	assert.Zero(t, ctx.LivePrograms())
}

func TestProgramRelease(t *testing.T) {
	ctx := graphicstest.New()
	p, err := Compile(ctx, DefaultVertex, DefaultFragment)
	require.NoError(t, err)

	p.Release(ctx)
	p.Release(ctx)

	assert.False(t, p.Valid())
	assert.Zero(t, ctx.LivePrograms())
}

func TestScanUniforms(t *testing.T) {
	src := `
uniform float time;
uniform highp vec2 resolution;
uniform   lowp vec4   tint ;
// uniform float disabled;
/* uniform vec3 alsoDisabled; */
uniform int count;
`
	decls := ScanUniforms(src)

	assert.Equal(t, []Declaration{
		{Type: "float", Name: "time"},
		{Type: "vec2", Name: "resolution"},
		{Type: "vec4", Name: "tint"},
		{Type: "int", Name: "count"},
	}, decls)
}

func TestLoadLibrary(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("plasma.frag", "uniform float time;\nvoid main() {}")
	write("plasma.vert", "void main() { gl_Position = vec4(0.0); }")
	write("waves.glsl", "uniform vec2 mouse;\nuniform float amplitude;\nvoid main() {}")
	write("notes.txt", "not a shader")

	presets, err := LoadLibrary(dir, 2)

	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, "plasma", presets[0].Name)
	assert.Equal(t, filepath.Join(dir, "plasma.vert"), presets[0].VertexPath)
	assert.True(t, strings.HasPrefix(presets[0].Vertex, "void main()"))
	assert.Equal(t, "waves", presets[1].Name)
	assert.Equal(t, DefaultVertex, presets[1].Vertex)
	assert.Equal(t, []Declaration{{Type: "vec2", Name: "mouse"}, {Type: "float", Name: "amplitude"}}, presets[1].Uniforms)

	p, ok := Find(presets, "waves")
	assert.True(t, ok)
	assert.Equal(t, "waves", p.Name)
	_, ok = Find(presets, "missing")
	assert.False(t, ok)
}

func TestLoadLibraryMissingDirectory(t *testing.T) {
	_, err := LoadLibrary(filepath.Join(t.TempDir(), "nope"), 1)

	assert.Error(t, err)
}
