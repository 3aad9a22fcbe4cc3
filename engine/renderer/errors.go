package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
)

// ErrContextLost is returned from a frame when the graphics context is no longer usable.
var ErrContextLost = graphics.ErrContextLost

// ErrInvalidProgram is returned from a frame when the last compile did not produce a program.
var ErrInvalidProgram = errors.New("renderer: no valid shader program; fix the shader and call Compile or Reload")

// ConfigurationError reports a renderer that cannot be constructed or initialized as configured.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return "renderer: " + e.Reason
	}
	return fmt.Sprintf("renderer: %s: %v", e.Reason, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// DisposedStateError reports an operation attempted on a disposed renderer.
type DisposedStateError struct {
	Op string
}

func (e *DisposedStateError) Error() string {
	return fmt.Sprintf("renderer: cannot %s a disposed renderer; call Reload or Restart first", e.Op)
}
