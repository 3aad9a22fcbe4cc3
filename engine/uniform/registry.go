package uniform

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
	"github.com/Carmen-Shannon/oxy-shader/engine/shader"
)

// Binding pairs a uniform name with its location in a linked program.
type Binding struct {
	Name     string
	Location graphics.Location
}

// BindingSet holds the locations resolved for one program. It is rebuilt whenever the program is.
type BindingSet struct {
	Time       graphics.Location
	Resolution graphics.Location
	Mouse      graphics.Location
	Custom     []Binding
}

// EmptyBindings is a set where every built-in is unbound.
var EmptyBindings = BindingSet{
	Time:       graphics.NullLocation,
	Resolution: graphics.NullLocation,
	Mouse:      graphics.NullLocation,
}

// Location returns the location bound for a name, or graphics.NullLocation.
func (s BindingSet) Location(name string) graphics.Location {
	switch name {
	case NameTime:
		return s.Time
	case NameResolution:
		return s.Resolution
	case NameMouse:
		return s.Mouse
	}
	for _, b := range s.Custom {
		if b.Name == name {
			return b.Location
		}
	}
	return graphics.NullLocation
}

// Registry stores the custom uniforms of a renderer in declaration order.
type Registry struct {
	names    []string
	entries  map[string]Uniform
	onChange func(name string)
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Uniform)}
}

// Declare adds a uniform, or replaces the kind and value of an existing one. A new name only
// reaches the GPU after the next Bind.
//
// Parameters:
//   - name: the uniform name as declared in GLSL
//   - u: the initial value
//
// Returns:
//   - error: ErrReserved for built-in names, or the value's validation error
func (r *Registry) Declare(name string, u Uniform) error {
	if IsBuiltin(name) {
		return fmt.Errorf("%w: %q", ErrReserved, name)
	}
	if err := u.check(name); err != nil {
		return err
	}
	if _, ok := r.entries[name]; !ok {
		r.names = append(r.names, name)
	}
	r.entries[name] = u.clone()
	return nil
}

// Get returns a copy of a declared uniform.
//
// Parameters:
//   - name: the uniform name
//
// Returns:
//   - Uniform: the current value
//   - bool: false if the name is not declared
func (r *Registry) Get(name string) (Uniform, bool) {
	u, ok := r.entries[name]
	if !ok {
		return Uniform{}, false
	}
	return u.clone(), true
}

// Set replaces the value of a declared uniform and notifies the change hook.
//
// Parameters:
//   - name: the uniform name
//   - value: the new components, matching the declared kind
//
// Returns:
//   - error: a *MissingError for undeclared names or a *LengthError for a wrong component count
func (r *Registry) Set(name string, value ...float32) error {
	u, ok := r.entries[name]
	if !ok {
		return &MissingError{Name: name}
	}
	next := Uniform{Kind: u.Kind, Value: slices.Clone(value)}
	if err := next.check(name); err != nil {
		return err
	}
	r.entries[name] = next
	if r.onChange != nil {
		r.onChange(name)
	}
	return nil
}

// Names returns the declared names in declaration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Len returns the number of declared uniforms.
func (r *Registry) Len() int {
	return len(r.names)
}

// OnChange installs the hook Set calls after every successful change. nil removes it.
func (r *Registry) OnChange(fn func(name string)) {
	r.onChange = fn
}

// Bind resolves the locations of the built-ins and every declared uniform in a program.
// Names the program does not use bind to graphics.NullLocation.
//
// Parameters:
//   - ctx: the backend owning the program
//   - program: the linked program
//
// Returns:
//   - BindingSet: the resolved locations
func (r *Registry) Bind(ctx graphics.Backend, program shader.Program) BindingSet {
	if !program.Valid() {
		return EmptyBindings
	}
	h := program.Handle()
	set := BindingSet{
		Time:       ctx.UniformLocation(h, NameTime),
		Resolution: ctx.UniformLocation(h, NameResolution),
		Mouse:      ctx.UniformLocation(h, NameMouse),
		Custom:     make([]Binding, 0, len(r.names)),
	}
	for _, name := range r.names {
		set.Custom = append(set.Custom, Binding{Name: name, Location: ctx.UniformLocation(h, name)})
	}
	return set
}

// Validate checks that every uniform the source declares is either built in or registered.
//
// Parameters:
//   - fragmentSrc: the fragment source
//
// Returns:
//   - error: a *MissingError for the first unknown name
func (r *Registry) Validate(fragmentSrc string) error {
	return Validate(fragmentSrc, r.names)
}

// Validate checks that every uniform declared in a source is either built in or in declared.
//
// Parameters:
//   - fragmentSrc: the fragment source
//   - declared: the custom uniform names available
//
// Returns:
//   - error: a *MissingError for the first unknown name
func Validate(fragmentSrc string, declared []string) error {
	for _, d := range shader.ScanUniforms(fragmentSrc) {
		if IsBuiltin(d.Name) || slices.Contains(declared, d.Name) {
			continue
		}
		return &MissingError{Name: d.Name}
	}
	return nil
}

// Upload writes the built-ins and every bound custom uniform into the current program.
// Unbound locations are skipped.
//
// Parameters:
//   - ctx: the backend owning the current program
//   - set: the locations resolved by Bind
//   - builtins: the built-in values for this frame
//
// Returns:
//   - error: an *UnsupportedKindError or *LengthError for a value that cannot be uploaded
func (r *Registry) Upload(ctx graphics.Backend, set BindingSet, builtins Builtins) error {
	if set.Time.Valid() {
		ctx.Uniform1f(set.Time, builtins.Time)
	}
	if set.Resolution.Valid() {
		ctx.Uniform2f(set.Resolution, builtins.Resolution[0], builtins.Resolution[1])
	}
	if set.Mouse.Valid() {
		ctx.Uniform2f(set.Mouse, builtins.Mouse[0], builtins.Mouse[1])
	}
	for _, b := range set.Custom {
		if !b.Location.Valid() {
			continue
		}
		u, ok := r.entries[b.Name]
		if !ok {
			continue
		}
		if err := upload(ctx, b.Location, b.Name, u); err != nil {
			return err
		}
	}
	return nil
}

func upload(ctx graphics.Backend, loc graphics.Location, name string, u Uniform) error {
	if err := u.check(name); err != nil {
		return err
	}
	v := u.Value
	switch u.Kind {
	case KindInt:
		ctx.Uniform1i(loc, int32(v[0]))
	case KindFloat:
		ctx.Uniform1f(loc, v[0])
	case KindVec2:
		ctx.Uniform2f(loc, v[0], v[1])
	case KindVec3:
		ctx.Uniform3f(loc, v[0], v[1], v[2])
	case KindVec4:
		ctx.Uniform4f(loc, v[0], v[1], v[2], v[3])
	default:
		return &UnsupportedKindError{Name: name, Kind: u.Kind}
	}
	return nil
}
