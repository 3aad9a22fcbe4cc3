// Package config loads renderer settings from a TOML or YAML file and turns them into renderer
// options. Invalid values are reported and replaced by their defaults instead of failing the load.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shader/engine/shader"
	"github.com/Carmen-Shannon/oxy-shader/engine/surface"
	"github.com/Carmen-Shannon/oxy-shader/engine/trace"
	"github.com/Carmen-Shannon/oxy-shader/engine/uniform"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is where Load looks when no path is given.
	DefaultPath = "~/.config/oxy-shader/config.toml"

	// DefaultPresetDir is the preset library used when the file names none.
	DefaultPresetDir = "~/.config/oxy-shader/shaders"
)

// Format is the encoding of a config file.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatOf picks the format from a file extension. Anything that is not .yaml or .yml is TOML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

// Uniform is a custom uniform as written in a config file.
type Uniform struct {
	Type  string    `toml:"type" yaml:"type"`
	Value []float32 `toml:"value" yaml:"value"`
}

// Window holds the desktop window settings used by the CLI.
type Window struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	VSync  bool   `toml:"vsync" yaml:"vsync"`
}

// Config is the file representation of a renderer's options.
type Config struct {
	// Fragment and Vertex are shader source paths, relative to the config file.
	Fragment string `toml:"fragment" yaml:"fragment"`
	Vertex   string `toml:"vertex" yaml:"vertex"`

	// Preset names a shader in the preset library. It takes precedence over Fragment and Vertex.
	Preset  string `toml:"preset" yaml:"preset"`
	Presets string `toml:"presets" yaml:"presets"`

	Container      string             `toml:"container" yaml:"container"`
	AutoStart      bool               `toml:"auto_start" yaml:"auto_start"`
	MaxPixelRatio  float32            `toml:"max_pixel_ratio" yaml:"max_pixel_ratio"`
	Speed          float64            `toml:"speed" yaml:"speed"`
	MouseSmoothing float32            `toml:"mouse_smoothing" yaml:"mouse_smoothing"`
	MousePosition  []float32          `toml:"mouse_position" yaml:"mouse_position"`
	MouseTarget    string             `toml:"mouse_target" yaml:"mouse_target"`
	PreventScroll  bool               `toml:"prevent_scroll" yaml:"prevent_scroll"`
	Profiling      bool               `toml:"profiling" yaml:"profiling"`
	Trace          bool               `toml:"trace" yaml:"trace"`
	Uniforms       map[string]Uniform `toml:"uniforms" yaml:"uniforms"`
	Window         Window             `toml:"window" yaml:"window"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		AutoStart:      true,
		MaxPixelRatio:  surface.DefaultMaxPixelRatio,
		Speed:          1,
		MouseSmoothing: 0.1,
		MouseTarget:    renderer.MouseTargetSurface.String(),
		Window: Window{
			Title:  "oxy-shader",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
	}
}

// Load reads a config file. An empty path loads DefaultPath and falls back to Default when that
// file does not exist; an explicit path must exist.
//
// Parameters:
//   - path: the config file path, "~" is expanded
//
// Returns:
//   - Config: the loaded configuration
//   - error: an error if the file cannot be read or parsed
func Load(path string) (Config, error) {
	explicit := path != ""
	path = common.Coalesce(path, DefaultPath)

	resolved, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve config path: %w", err)
	}

	f, err := os.Open(resolved)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no config file, using defaults", "path", resolved)
			cfg := Default()
			cfg.dir = filepath.Dir(resolved)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f, FormatOf(resolved))
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", resolved, err)
	}
	cfg.dir = filepath.Dir(resolved)
	return cfg, nil
}

// Decode parses a config from r over the defaults. Unknown keys are logged and ignored.
// Out-of-range values are logged and replaced by their defaults.
//
// Parameters:
//   - r: the encoded config
//   - format: the encoding of r
//
// Returns:
//   - Config: the decoded configuration
//   - error: a syntax error
func Decode(r io.Reader, format Format) (Config, error) {
	cfg := Default()

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err := dec.Decode(&cfg)
		var typeErr *yaml.TypeError
		switch {
		case errors.As(err, &typeErr):
			for _, msg := range typeErr.Errors {
				slog.Warn("ignoring config entry", "reason", msg)
			}
		case errors.Is(err, io.EOF):
		case err != nil:
			return Config{}, err
		}
	default:
		err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg)
		var strictErr *toml.StrictMissingError
		switch {
		case errors.As(err, &strictErr):
			for i := range strictErr.Errors {
				slog.Warn("unrecognised config key", "key", strings.Join(strictErr.Errors[i].Key(), "."))
			}
		case err != nil:
			return Config{}, err
		}
	}

	cfg.sanitize()
	return cfg, nil
}

// sanitize replaces values the renderer would reject with their defaults.
func (c *Config) sanitize() {
	def := Default()

	if c.MaxPixelRatio < 0 {
		slog.Warn("invalid max_pixel_ratio, using default", "value", c.MaxPixelRatio, "default", def.MaxPixelRatio)
		c.MaxPixelRatio = def.MaxPixelRatio
	}
	if c.MouseSmoothing < 0 || c.MouseSmoothing >= 1 {
		slog.Warn("invalid mouse_smoothing, must be in [0,1), using default",
			"value", c.MouseSmoothing, "default", def.MouseSmoothing)
		c.MouseSmoothing = def.MouseSmoothing
	}
	if len(c.MousePosition) != 0 && len(c.MousePosition) != 2 {
		slog.Warn("invalid mouse_position, must have two components, ignoring", "value", c.MousePosition)
		c.MousePosition = nil
	}
	if _, err := renderer.ParseMouseTarget(c.MouseTarget); err != nil {
		slog.Warn("invalid mouse_target, using default", "value", c.MouseTarget, "default", def.MouseTarget)
		c.MouseTarget = def.MouseTarget
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		slog.Warn("invalid window size, using default",
			"width", c.Window.Width, "height", c.Window.Height)
		c.Window.Width, c.Window.Height = def.Window.Width, def.Window.Height
	}
}

// Dir returns the directory relative shader paths are resolved against.
func (c Config) Dir() string {
	return c.dir
}

// WithDir returns a copy resolving relative shader paths against dir.
func (c Config) WithDir(dir string) Config {
	c.dir = dir
	return c
}

// Resolve expands "~" and makes a relative path relative to the config file.
//
// Parameters:
//   - path: the path as written in the config
//
// Returns:
//   - string: the resolved path, or "" for an empty path
//   - error: an error if the home directory cannot be determined
func (c Config) Resolve(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) && c.dir != "" {
		expanded = filepath.Join(c.dir, expanded)
	}
	return expanded, nil
}

// PresetDir returns the resolved preset library directory.
func (c Config) PresetDir() (string, error) {
	return c.Resolve(common.Coalesce(c.Presets, DefaultPresetDir))
}

// Source loads the shader pair the config selects: a named preset, the configured files, or the
// built-in defaults.
//
// Returns:
//   - shader.Preset: the selected sources
//   - error: an error if a file cannot be read or the preset does not exist
func (c Config) Source() (shader.Preset, error) {
	if c.Preset != "" {
		dir, err := c.PresetDir()
		if err != nil {
			return shader.Preset{}, err
		}
		presets, err := shader.LoadLibrary(dir, 0)
		if p, ok := shader.Find(presets, c.Preset); ok {
			return p, nil
		}
		if err != nil {
			return shader.Preset{}, err
		}
		return shader.Preset{}, fmt.Errorf("preset %q not found in %s", c.Preset, dir)
	}

	if c.Fragment == "" {
		return shader.Preset{
			Name:     "default",
			Fragment: shader.DefaultFragment,
			Vertex:   shader.DefaultVertex,
			Uniforms: shader.ScanUniforms(shader.DefaultFragment),
		}, nil
	}

	frag, err := c.Resolve(c.Fragment)
	if err != nil {
		return shader.Preset{}, err
	}
	vert, err := c.Resolve(c.Vertex)
	if err != nil {
		return shader.Preset{}, err
	}
	return shader.LoadPreset(frag, vert)
}

// SourcePaths returns the files Source reads, for watching.
func (c Config) SourcePaths() ([]string, error) {
	if c.Preset != "" {
		dir, err := c.PresetDir()
		if err != nil {
			return nil, err
		}
		return []string{dir}, nil
	}
	var paths []string
	for _, p := range []string{c.Fragment, c.Vertex} {
		resolved, err := c.Resolve(p)
		if err != nil {
			return nil, err
		}
		if resolved != "" {
			paths = append(paths, resolved)
		}
	}
	return paths, nil
}

// CustomUniforms converts the configured uniforms.
//
// Returns:
//   - map[string]uniform.Uniform: the uniforms by name
//   - error: the joined errors of uniforms with an unknown type or a wrong number of values
func (c Config) CustomUniforms() (map[string]uniform.Uniform, error) {
	out := make(map[string]uniform.Uniform, len(c.Uniforms))
	var errs []error
	for name, u := range c.Uniforms {
		parsed, err := uniform.Parse(u.Type, u.Value)
		if err != nil {
			errs = append(errs, fmt.Errorf("uniform %q: %w", name, err))
			continue
		}
		out[name] = parsed
	}
	return out, errors.Join(errs...)
}

// UniformsFor merges the defaults a shader declares through @oxy:uniform annotations with the
// configured uniforms. Configured values win.
//
// Parameters:
//   - src: the shader pair to render
//
// Returns:
//   - map[string]uniform.Uniform: the uniforms by name
//   - error: the joined errors of annotations and configured uniforms that are not valid uniforms
func (c Config) UniformsFor(src shader.Preset) (map[string]uniform.Uniform, error) {
	out := make(map[string]uniform.Uniform, len(src.Annotations)+len(c.Uniforms))
	var errs []error
	for _, a := range src.Annotations {
		if a.Type != shader.AnnotationTypeUniform {
			continue
		}
		name := string(a.Args[1])
		parsed, err := uniform.Parse(string(a.Args[0]), a.Values)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s line %d: uniform %q: %w", src.Name, a.Line, name, err))
			continue
		}
		out[name] = parsed
	}

	custom, err := c.CustomUniforms()
	maps.Copy(out, custom)
	return out, errors.Join(append(errs, err)...)
}

// Options maps the config onto renderer options, using src for the shader sources.
//
// Parameters:
//   - src: the shader pair to render, usually from Source
//
// Returns:
//   - []renderer.RendererBuilderOption: the options
//   - error: an error for invalid uniforms
func (c Config) Options(src shader.Preset) ([]renderer.RendererBuilderOption, error) {
	uniforms, err := c.UniformsFor(src)
	if err != nil {
		return nil, err
	}
	target, _ := renderer.ParseMouseTarget(c.MouseTarget)

	opts := []renderer.RendererBuilderOption{
		renderer.WithVertex(src.Vertex),
		renderer.WithFragment(src.Fragment),
		renderer.WithUniforms(uniforms),
		renderer.WithAutoStart(c.AutoStart),
		renderer.WithMaxPixelRatio(c.MaxPixelRatio),
		renderer.WithSpeed(c.Speed),
		renderer.WithMouseSmoothing(c.MouseSmoothing),
		renderer.WithMouseTarget(target),
		renderer.WithPreventScroll(c.PreventScroll),
		renderer.WithProfiling(c.Profiling),
	}
	if c.Container != "" {
		opts = append(opts, renderer.WithContainer(c.Container))
	}
	if len(c.MousePosition) == 2 {
		opts = append(opts, renderer.WithMousePosition(common.V2(c.MousePosition[0], c.MousePosition[1])))
	}
	if c.Trace {
		opts = append(opts, renderer.WithTracer(trace.NewTerminalHook(os.Stderr)))
	}
	return opts, nil
}
