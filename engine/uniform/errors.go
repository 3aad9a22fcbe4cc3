package uniform

import (
	"errors"
	"fmt"
)

// ErrReserved is returned when a built-in uniform name is declared as a custom uniform.
var ErrReserved = errors.New("uniform: name is reserved for a built-in")

// MissingError reports a uniform name that is neither built in nor declared.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("uniform: %q is not declared; declare it before compiling or remove it from the shader", e.Name)
}

// UnsupportedKindError reports a uniform whose type cannot be uploaded.
type UnsupportedKindError struct {
	Name string
	Kind Kind

	// Type is the GLSL type name when the error came from parsing one.
	Type string
}

func (e *UnsupportedKindError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("uniform: unsupported type %q", e.Type)
	}
	if e.Name == "" {
		return fmt.Sprintf("uniform: unsupported kind %s", e.Kind)
	}
	return fmt.Sprintf("uniform: %q has unsupported kind %s", e.Name, e.Kind)
}

// LengthError reports a value whose component count does not match its kind.
type LengthError struct {
	Name string
	Kind Kind
	Got  int
}

func (e *LengthError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("uniform: %s needs %d components, got %d", e.Kind, e.Kind.Components(), e.Got)
	}
	return fmt.Sprintf("uniform: %q is %s and needs %d components, got %d", e.Name, e.Kind, e.Kind.Components(), e.Got)
}
