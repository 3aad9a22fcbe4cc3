// annotations.go defines the @oxy: annotations understood by the GLSL pre-processor. Annotations
// are single-line comments, so a source that uses them still reads as plain GLSL.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks an annotation inside a "//" comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a comment line.
type AnnotationType string

const (
	// annotationTypeInclude splices a built-in snippet or a file into the source at the annotation
	// site. Each snippet or file is included at most once per processed source.
	//
	// Syntax:
	//   //@oxy:include <snippet>
	//   //@oxy:include "<path>"
	//
	// Examples:
	//   //@oxy:include noise
	//   //@oxy:include "lib/sdf.glsl"
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeUniform emits a uniform declaration and records a default value for it, so a
	// shader can declare its own custom uniforms without any configuration.
	//
	// Syntax: //@oxy:uniform <type> <name> <component>...
	//
	// Example: //@oxy:uniform vec3 tint 1.0 0.5 0.25
	AnnotationTypeUniform AnnotationType = "uniform"
)

// Annotation is a parsed @oxy: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = snippet key, or a quoted path
	//   - uniform: [0] = GLSL type, [1] = uniform name
	Args []AnnotationArg

	// Values are the default components of a uniform annotation.
	Values []float32

	// Line is the 1-based line of the annotation in the source it was found in.
	Line int
}

// AnnotationArg is an argument of an annotation.
type AnnotationArg string

// Built-in snippets for @oxy:include.
const (
	// AnnotationArgHash provides float hash21(vec2) returning a pseudo-random value in [0,1).
	AnnotationArgHash AnnotationArg = "hash"

	// AnnotationArgNoise provides float noise(vec2), smooth value noise in [0,1). Includes hash.
	AnnotationArgNoise AnnotationArg = "noise"

	// AnnotationArgPalette provides vec3 palette(float t, vec3 a, vec3 b, vec3 c, vec3 d), a cosine
	// color palette.
	AnnotationArgPalette AnnotationArg = "palette"

	// AnnotationArgRotate provides mat2 rotate2d(float angle).
	AnnotationArgRotate AnnotationArg = "rotate"
)

// validSnippets lists the snippet keys accepted by @oxy:include. Each must have an entry in the
// pre-processor's snippet registry.
var validSnippets = []AnnotationArg{
	AnnotationArgHash,
	AnnotationArgNoise,
	AnnotationArgPalette,
	AnnotationArgRotate,
}

// validUniformTypes lists the GLSL types accepted by @oxy:uniform.
var validUniformTypes = []string{"int", "float", "vec2", "vec3", "vec4"}

// IsPath reports whether an include argument names a file rather than a built-in snippet.
func (a AnnotationArg) IsPath() bool {
	return strings.HasPrefix(string(a), `"`)
}

// Path returns the unquoted file path of an include argument.
func (a AnnotationArg) Path() string {
	p, err := strconv.Unquote(string(a))
	if err != nil {
		return string(a)
	}
	return p
}

// parseAnnotation attempts to parse a single source line as an @oxy: annotation.
// Returns nil with no error for lines that are not annotations.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	comment, ok := strings.CutPrefix(strings.TrimSpace(line), "//")
	if !ok {
		return nil, nil
	}
	after, ok := strings.CutPrefix(strings.TrimSpace(comment), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		arg := AnnotationArg(args[1])
		if arg.IsPath() {
			if _, err := strconv.Unquote(args[1]); err != nil || arg.Path() == "" {
				return nil, fmt.Errorf("line %d: invalid path %s in @oxy include annotation", lineNum, args[1])
			}
		} else if !slices.Contains(validSnippets, arg) {
			return nil, fmt.Errorf("line %d: unknown snippet %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{arg},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeUniform):
		if len(args) < 4 {
			return nil, fmt.Errorf("line %d: @oxy uniform annotation requires a type, a name and at least one component", lineNum)
		}
		if !slices.Contains(validUniformTypes, args[1]) {
			return nil, fmt.Errorf("line %d: unsupported type %q in @oxy uniform annotation", lineNum, args[1])
		}
		values := make([]float32, 0, len(args)-3)
		for _, s := range args[3:] {
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid component %q in @oxy uniform annotation: %v", lineNum, s, err)
			}
			values = append(values, float32(v))
		}
		return &Annotation{
			Type:   AnnotationTypeUniform,
			Args:   []AnnotationArg{AnnotationArg(args[1]), AnnotationArg(args[2])},
			Values: values,
			Line:   lineNum,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
