// Package uniform holds the values a renderer feeds into its shader program: the three built-in
// uniforms and any number of user-declared ones, bound by name to program locations.
package uniform

import (
	"fmt"
	"slices"
)

// Built-in uniform names. These are always bound and never user-declared.
const (
	NameTime       = "time"
	NameResolution = "resolution"
	NameMouse      = "mouse"
)

// BuiltinNames lists the built-in uniforms in upload order.
var BuiltinNames = []string{NameTime, NameResolution, NameMouse}

// IsBuiltin reports whether name is one of the built-in uniforms.
func IsBuiltin(name string) bool {
	return slices.Contains(BuiltinNames, name)
}

// Kind is the GLSL type of a uniform value.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindVec2
	KindVec3
	KindVec4
)

// Components returns the number of float32 components a value of the kind carries, or 0 for an
// unknown kind.
func (k Kind) Components() int {
	switch k {
	case KindInt, KindFloat:
		return 1
	case KindVec2:
		return 2
	case KindVec3:
		return 3
	case KindVec4:
		return 4
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindVec2:
		return "vec2"
	case KindVec3:
		return "vec3"
	case KindVec4:
		return "vec4"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindOf maps a GLSL type name to a Kind.
//
// Parameters:
//   - glslType: the type name as written in GLSL
//
// Returns:
//   - Kind: the matching kind
//   - bool: false if the type is not supported
func KindOf(glslType string) (Kind, bool) {
	switch glslType {
	case "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	case "vec2":
		return KindVec2, true
	case "vec3":
		return KindVec3, true
	case "vec4":
		return KindVec4, true
	}
	return 0, false
}

// Uniform is a typed uniform value. Int values are carried as float32 and converted on upload.
type Uniform struct {
	Kind  Kind
	Value []float32
}

// Int returns an int uniform.
func Int(v int32) Uniform {
	return Uniform{Kind: KindInt, Value: []float32{float32(v)}}
}

// Float returns a float uniform.
func Float(v float32) Uniform {
	return Uniform{Kind: KindFloat, Value: []float32{v}}
}

// Vec2 returns a vec2 uniform.
func Vec2(x, y float32) Uniform {
	return Uniform{Kind: KindVec2, Value: []float32{x, y}}
}

// Vec3 returns a vec3 uniform.
func Vec3(x, y, z float32) Uniform {
	return Uniform{Kind: KindVec3, Value: []float32{x, y, z}}
}

// Vec4 returns a vec4 uniform.
func Vec4(x, y, z, w float32) Uniform {
	return Uniform{Kind: KindVec4, Value: []float32{x, y, z, w}}
}

// Parse builds a uniform from a GLSL type name and its components.
//
// Parameters:
//   - glslType: the GLSL type name
//   - values: the components
//
// Returns:
//   - Uniform: the parsed uniform
//   - error: an *UnsupportedKindError or *LengthError when the pair is not a valid uniform
func Parse(glslType string, values []float32) (Uniform, error) {
	kind, ok := KindOf(glslType)
	if !ok {
		return Uniform{}, &UnsupportedKindError{Type: glslType, Kind: -1}
	}
	u := Uniform{Kind: kind, Value: slices.Clone(values)}
	if err := u.check(""); err != nil {
		return Uniform{}, err
	}
	return u, nil
}

func (u Uniform) check(name string) error {
	n := u.Kind.Components()
	if n == 0 {
		return &UnsupportedKindError{Name: name, Kind: u.Kind}
	}
	if len(u.Value) != n {
		return &LengthError{Name: name, Kind: u.Kind, Got: len(u.Value)}
	}
	return nil
}

func (u Uniform) clone() Uniform {
	return Uniform{Kind: u.Kind, Value: slices.Clone(u.Value)}
}

// Builtins are the per-frame values of the built-in uniforms.
type Builtins struct {
	// Time is the scaled running time in seconds.
	Time float32

	// Resolution is the drawing buffer size in device pixels.
	Resolution [2]float32

	// Mouse is the smoothed pointer position, normalized with a bottom-left origin.
	Mouse [2]float32
}
