package shader

import (
	"regexp"
)

var (
	uniformDecl  = regexp.MustCompile(`uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*;`)
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// Declaration is a uniform declared at the top level of a GLSL source.
type Declaration struct {
	// Type is the GLSL type name, e.g. "float" or "vec2".
	Type string

	// Name is the uniform identifier.
	Name string
}

// ScanUniforms lists the single-name uniform declarations of a source in order of appearance.
// An optional precision qualifier is accepted; commented-out declarations are ignored.
// Uniform blocks and comma-separated declarations are not recognized.
//
// Parameters:
//   - src: the GLSL source
//
// Returns:
//   - []Declaration: the declarations found
func ScanUniforms(src string) []Declaration {
	src = blockComment.ReplaceAllString(src, "")
	src = lineComment.ReplaceAllString(src, "")

	var decls []Declaration
	for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
		decls = append(decls, Declaration{Type: m[1], Name: m[2]})
	}
	return decls
}
