// pre_processor.go implements the GLSL pre-processor. It replaces @oxy: annotations with snippet
// or file sources and uniform declarations, and collects the uniform annotations so their defaults
// can be declared on a renderer.
package shader

import (
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

// snippets maps built-in include keys to their GLSL source.
var snippets = map[AnnotationArg]string{
	AnnotationArgHash: `float hash21(vec2 p) {
	p = fract(p * vec2(123.34, 456.21));
	p += dot(p, p + 45.32);
	return fract(p.x * p.y);
}`,
	AnnotationArgNoise: `//@oxy:include hash
float noise(vec2 p) {
	vec2 i = floor(p);
	vec2 f = fract(p);
	vec2 u = f * f * (3.0 - 2.0 * f);
	return mix(mix(hash21(i), hash21(i + vec2(1.0, 0.0)), u.x),
		mix(hash21(i + vec2(0.0, 1.0)), hash21(i + vec2(1.0, 1.0)), u.x), u.y);
}`,
	AnnotationArgPalette: `vec3 palette(float t, vec3 a, vec3 b, vec3 c, vec3 d) {
	return a + b * cos(6.28318 * (c * t + d));
}`,
	AnnotationArgRotate: `mat2 rotate2d(float angle) {
	float s = sin(angle);
	float c = cos(angle);
	return mat2(c, -s, s, c);
}`,
}

// PreProcessorBuilderOption is a functional option applied to a pre-processor during construction.
type PreProcessorBuilderOption func(*preProcessor)

// WithIncludeFS sets the file system quoted include paths are read from. Paths are slash-separated
// and relative to its root, including in nested includes. Without it, file includes fail.
//
// Parameters:
//   - fsys: the include file system, usually os.DirFS of the shader's directory
//
// Returns:
//   - PreProcessorBuilderOption: a function that applies the include file system to a pre-processor
func WithIncludeFS(fsys fs.FS) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.fsys = fsys
	}
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	fsys fs.FS

	// included holds the snippet keys and paths already spliced in during the current Process call.
	included map[AnnotationArg]bool

	// declarations accumulates uniform annotations during a Process call.
	declarations []Annotation
}

// PreProcessor expands @oxy: annotations in GLSL sources.
type PreProcessor interface {
	// Process replaces every annotation in source: includes with the snippet or file source, itself
	// processed, and uniform annotations with a uniform declaration.
	//
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the GLSL source
	//
	// Returns:
	//   - string: the processed source; a source without annotations is returned unchanged
	//   - error: an error for a malformed annotation, an unreadable include or a uniform declared twice
	Process(source string) (string, error)

	// Declarations returns the uniform annotations collected by the most recent Process call, in
	// source order.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor.
//
// Parameters:
//   - options: functional options to configure the pre-processor
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor(options ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil
	p.included = make(map[AnnotationArg]bool)
	return p.process(source, "")
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

// process expands one source. origin names the include the source came from, "" for the root.
func (p *preProcessor) process(source string, origin string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", withOrigin(origin, err)
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			arg := a.Args[0]
			key := arg
			if arg.IsPath() {
				key = AnnotationArg(strconv.Quote(path.Clean(arg.Path())))
			}
			if p.included[key] {
				continue
			}
			p.included[key] = true

			src, err := p.read(arg)
			if err != nil {
				return "", withOrigin(origin, fmt.Errorf("line %d: %w", a.Line, err))
			}
			expanded, err := p.process(src, string(arg))
			if err != nil {
				return "", err
			}
			out = append(out, expanded)
		case AnnotationTypeUniform:
			name := a.Args[1]
			for _, d := range p.declarations {
				if d.Args[1] == name {
					return "", withOrigin(origin, fmt.Errorf("line %d: uniform %q is already declared on line %d", a.Line, name, d.Line))
				}
			}
			out = append(out, fmt.Sprintf("uniform %s %s;", a.Args[0], name))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) read(arg AnnotationArg) (string, error) {
	if !arg.IsPath() {
		return snippets[arg], nil
	}
	if p.fsys == nil {
		return "", fmt.Errorf("cannot include %s without an include directory", arg)
	}
	b, err := fs.ReadFile(p.fsys, path.Clean(arg.Path()))
	if err != nil {
		return "", fmt.Errorf("failed to include %s: %w", arg, err)
	}
	return string(b), nil
}

func withOrigin(origin string, err error) error {
	if origin == "" {
		return err
	}
	return fmt.Errorf("%s: %w", origin, err)
}
