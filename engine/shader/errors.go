package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
)

// ShaderCompileError reports a stage that the driver refused to compile.
type ShaderCompileError struct {
	Stage graphics.ShaderStage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	if e.Log == "" {
		return fmt.Sprintf("shader: %s stage failed to compile", e.Stage)
	}
	return fmt.Sprintf("shader: %s stage failed to compile: %s", e.Stage, e.Log)
}

// ProgramLinkError reports compiled stages that could not be linked together.
type ProgramLinkError struct {
	Log string
}

func (e *ProgramLinkError) Error() string {
	if e.Log == "" {
		return "shader: program failed to link"
	}
	return fmt.Sprintf("shader: program failed to link: %s", e.Log)
}
