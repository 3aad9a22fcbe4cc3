package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/host/hosttest"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shader/engine/shader"
	"github.com/Carmen-Shannon/oxy-shader/engine/uniform"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
fragment = "shaders/plasma.frag"
auto_start = false
max_pixel_ratio = 1.5
speed = 0.5
mouse_smoothing = 0
mouse_position = [0.25, 0.75]
mouse_target = "container"
container = "#stage"

[uniforms.intensity]
type = "float"
value = [0.8]

[uniforms.tint]
type = "vec3"
value = [1.0, 0.5, 0.25]

[window]
title = "plasma"
width = 640
height = 480
`

const sampleYAML = `
fragment: shaders/plasma.frag
auto_start: false
speed: 2
mouse_target: window
uniforms:
  intensity:
    type: float
    value: [0.8]
window:
  width: 320
  height: 200
`

const plasmaFragment = `uniform float intensity;
uniform vec3 tint;
in vec2 vUv;
out vec4 color;
void main() {
	color = vec4(tint * intensity, 1.0);
}
`

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDecodeTOML(t *testing.T) {
	cfg, err := Decode(strings.NewReader(sampleTOML), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "shaders/plasma.frag", cfg.Fragment)
	assert.False(t, cfg.AutoStart)
	assert.Equal(t, float32(1.5), cfg.MaxPixelRatio)
	assert.Equal(t, 0.5, cfg.Speed)
	assert.Zero(t, cfg.MouseSmoothing)
	assert.Equal(t, []float32{0.25, 0.75}, cfg.MousePosition)
	assert.Equal(t, "container", cfg.MouseTarget)
	assert.Equal(t, Uniform{Type: "vec3", Value: []float32{1, 0.5, 0.25}}, cfg.Uniforms["tint"])
	assert.Equal(t, Window{Title: "plasma", Width: 640, Height: 480, VSync: true}, cfg.Window)
}

func TestDecodeYAML(t *testing.T) {
	cfg, err := Decode(strings.NewReader(sampleYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Speed)
	assert.Equal(t, "window", cfg.MouseTarget)
	assert.Equal(t, float32(0.1), cfg.MouseSmoothing, "unset keys keep their defaults")
	assert.Equal(t, 320, cfg.Window.Width)
	assert.Equal(t, "oxy-shader", cfg.Window.Title)
}

func TestDecodeEmptyYAMLUsesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeWarnsAboutUnknownKeys(t *testing.T) {
	logs := captureLogs(t)

	cfg, err := Decode(strings.NewReader("speed = 3\ncolour = \"red\"\n"), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Speed)
	assert.Contains(t, logs.String(), "key=colour")

	cfg, err = Decode(strings.NewReader("speed: 4\ncolour: red\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.Speed)
	assert.Contains(t, logs.String(), "colour")
}

func TestDecodeReplacesInvalidValues(t *testing.T) {
	logs := captureLogs(t)

	cfg, err := Decode(strings.NewReader(`
max_pixel_ratio = -1
mouse_smoothing = 1.5
mouse_position = [0.5]
mouse_target = "document"

[window]
width = 0
`), FormatTOML)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.MaxPixelRatio, cfg.MaxPixelRatio)
	assert.Equal(t, def.MouseSmoothing, cfg.MouseSmoothing)
	assert.Nil(t, cfg.MousePosition)
	assert.Equal(t, def.MouseTarget, cfg.MouseTarget)
	assert.Equal(t, def.Window.Width, cfg.Window.Width)
	assert.Contains(t, logs.String(), "invalid mouse_smoothing")
}

func TestDecodeSyntaxError(t *testing.T) {
	_, err := Decode(strings.NewReader("speed = = 1"), FormatTOML)
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatOf("a/b.yaml"))
	assert.Equal(t, FormatYAML, FormatOf("B.YML"))
	assert.Equal(t, FormatTOML, FormatOf("config.toml"))
	assert.Equal(t, FormatTOML, FormatOf("config"))
}

func TestLoadResolvesShaderPathsAgainstConfigDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "plasma.frag"), plasmaFragment)
	writeFile(t, filepath.Join(dir, "plasma.toml"), sampleTOML)

	cfg, err := Load(filepath.Join(dir, "plasma.toml"))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir())

	src, err := cfg.Source()
	require.NoError(t, err)
	assert.Equal(t, "plasma", src.Name)
	assert.Equal(t, plasmaFragment, src.Fragment)
	assert.Equal(t, shader.DefaultVertex, src.Vertex)

	paths, err := cfg.SourcePaths()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "shaders", "plasma.frag")}, paths)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)

	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().WithDir(filepath.Join(home, ".config", "oxy-shader")), cfg)
}

func TestSourceFromPresetLibrary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "waves.frag"), shader.DefaultFragment)
	writeFile(t, filepath.Join(dir, "waves.vert"), shader.DefaultVertex)

	cfg := Default()
	cfg.Presets = dir
	cfg.Preset = "waves"

	src, err := cfg.Source()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "waves.vert"), src.VertexPath)

	cfg.Preset = "ripples"
	_, err = cfg.Source()
	assert.ErrorContains(t, err, `preset "ripples" not found`)
}

func TestDefaultSource(t *testing.T) {
	src, err := Default().Source()
	require.NoError(t, err)
	assert.Equal(t, shader.DefaultFragment, src.Fragment)
	require.Len(t, src.Uniforms, 1)
	assert.Equal(t, uniform.NameTime, src.Uniforms[0].Name)
}

func TestCustomUniforms(t *testing.T) {
	cfg := Default()
	cfg.Uniforms = map[string]Uniform{
		"count": {Type: "int", Value: []float32{3}},
		"bad":   {Type: "mat4", Value: []float32{1}},
		"short": {Type: "vec2", Value: []float32{1}},
	}

	got, err := cfg.CustomUniforms()

	assert.Equal(t, map[string]uniform.Uniform{"count": uniform.Int(3)}, got)
	var kindErr *uniform.UnsupportedKindError
	assert.ErrorAs(t, err, &kindErr)
	var lenErr *uniform.LengthError
	assert.ErrorAs(t, err, &lenErr)
}

func TestOptionsConfigureRenderer(t *testing.T) {
	cfg, err := Decode(strings.NewReader(sampleTOML), FormatTOML)
	require.NoError(t, err)

	h := hosttest.New()
	h.Ratio = 2
	h.AddElement("#stage", common.Rect{Width: 100, Height: 100})
	opts, err := cfg.Options(shader.Preset{Vertex: shader.DefaultVertex, Fragment: plasmaFragment})
	require.NoError(t, err)

	r, err := renderer.NewRenderer(h, opts...)
	require.NoError(t, err)

	assert.Equal(t, renderer.StateStopped, r.State())
	assert.Equal(t, []string{"intensity", "tint"}, r.Uniforms().Names())
	assert.Equal(t, float32(0.25), r.Pointer().Raw.X)

	h.Frame()
	up, ok := h.Backend.LastUpload("tint")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0.5, 0.25}, up.Values)
	up, ok = h.Backend.LastUpload(uniform.NameMouse)
	require.True(t, ok)
	assert.Equal(t, []float32{0.25, 0.75}, up.Values, "no smoothing configured")

	w, _ := r.Resolution()
	assert.Equal(t, 150, w, "max_pixel_ratio applies")
}

func TestUniformsForMergesAnnotatedDefaults(t *testing.T) {
	dir := t.TempDir()
	frag := filepath.Join(dir, "glow.frag")
	writeFile(t, frag, "//@oxy:uniform float intensity 0.8\n//@oxy:uniform vec2 offset 0.1 0.2\nvoid main() {}")

	cfg := Default()
	cfg.Fragment = frag
	cfg.Uniforms = map[string]Uniform{
		"intensity": {Type: "float", Value: []float32{0.3}},
		"tint":      {Type: "vec3", Value: []float32{1, 1, 1}},
	}
	src, err := cfg.Source()
	require.NoError(t, err)

	got, err := cfg.UniformsFor(src)
	require.NoError(t, err)
	assert.Equal(t, map[string]uniform.Uniform{
		"intensity": uniform.Float(0.3),
		"offset":    uniform.Vec2(0.1, 0.2),
		"tint":      uniform.Vec3(1, 1, 1),
	}, got)

	bad := shader.Preset{Name: "bad", Annotations: []shader.Annotation{{
		Type:   shader.AnnotationTypeUniform,
		Args:   []shader.AnnotationArg{"vec3", "tint"},
		Values: []float32{1},
		Line:   4,
	}}}
	_, err = Default().UniformsFor(bad)
	var lenErr *uniform.LengthError
	assert.ErrorAs(t, err, &lenErr)
	assert.ErrorContains(t, err, `bad line 4: uniform "tint"`)
}
