package uniform

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-shader/engine/graphics"
	"github.com/Carmen-Shannon/oxy-shader/engine/graphics/graphicstest"
	"github.com/Carmen-Shannon/oxy-shader/engine/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, ctx *graphicstest.Backend) shader.Program {
	t.Helper()
	p, err := shader.Compile(ctx, shader.DefaultVertex, shader.DefaultFragment)
	require.NoError(t, err)
	return p
}

func TestKindComponents(t *testing.T) {
	assert.Equal(t, 1, KindInt.Components())
	assert.Equal(t, 1, KindFloat.Components())
	assert.Equal(t, 2, KindVec2.Components())
	assert.Equal(t, 3, KindVec3.Components())
	assert.Equal(t, 4, KindVec4.Components())
	assert.Equal(t, 0, Kind(42).Components())
}

func TestParse(t *testing.T) {
	u, err := Parse("vec3", []float32{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, Vec3(1, 2, 3), u)

	_, err = Parse("mat4", nil)
	var kindErr *UnsupportedKindError
	assert.True(t, errors.As(err, &kindErr))

	_, err = Parse("vec2", []float32{1})
	var lenErr *LengthError
	require.True(t, errors.As(err, &lenErr))
	assert.Equal(t, 1, lenErr.Got)
}

func TestDeclareKeepsInsertionOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Declare("zoom", Float(1)))
	require.NoError(t, r.Declare("alpha", Float(0.5)))
	require.NoError(t, r.Declare("zoom", Float(2)))

	assert.Equal(t, []string{"zoom", "alpha"}, r.Names())
	u, ok := r.Get("zoom")
	require.True(t, ok)
	assert.Equal(t, []float32{2}, u.Value)
}

func TestDeclareRejectsBuiltinAndBadValues(t *testing.T) {
	r := NewRegistry()

	assert.ErrorIs(t, r.Declare(NameTime, Float(1)), ErrReserved)

	var lenErr *LengthError
	assert.True(t, errors.As(r.Declare("tint", Uniform{Kind: KindVec4, Value: []float32{1}}), &lenErr))

	var kindErr *UnsupportedKindError
	assert.True(t, errors.As(r.Declare("odd", Uniform{Kind: Kind(9), Value: []float32{1}}), &kindErr))
	assert.Zero(t, r.Len())
}

func TestSetNotifiesHook(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Declare("strength", Float(1)))
	var changed []string
	r.OnChange(func(name string) { changed = append(changed, name) })

	require.NoError(t, r.Set("strength", 0.25))

	u, _ := r.Get("strength")
	assert.Equal(t, []float32{0.25}, u.Value)
	assert.Equal(t, []string{"strength"}, changed)
}

func TestSetErrors(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Declare("center", Vec2(0, 0)))
	calls := 0
	r.OnChange(func(string) { calls++ })

	var missing *MissingError
	require.True(t, errors.As(r.Set("nope", 1), &missing))
	assert.Equal(t, "nope", missing.Name)

	var lenErr *LengthError
	assert.True(t, errors.As(r.Set("center", 1, 2, 3), &lenErr))
	assert.Zero(t, calls)
}

func TestGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Declare("offset", Vec2(1, 2)))

	u, _ := r.Get("offset")
	u.Value[0] = 99

	again, _ := r.Get("offset")
	assert.Equal(t, []float32{1, 2}, again.Value)
}

func TestValidate(t *testing.T) {
	src := `uniform float time;
uniform vec2 resolution;
uniform mediump vec2 mouse;
uniform float intensity;
void main() {}`

	assert.NoError(t, Validate(src, []string{"intensity"}))

	err := Validate(src, nil)
	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "intensity", missing.Name)
}

func TestValidateReportsFirstMissing(t *testing.T) {
	err := Validate("uniform float a;\nuniform float b;", nil)

	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "a", missing.Name)
}

func TestBindResolvesBuiltinsAndCustom(t *testing.T) {
	ctx := graphicstest.New()
	ctx.Inactive = map[string]bool{NameMouse: true}
	r := NewRegistry()
	require.NoError(t, r.Declare("speed", Float(1)))
	p := compile(t, ctx)

	set := r.Bind(ctx, p)

	assert.True(t, set.Time.Valid())
	assert.True(t, set.Resolution.Valid())
	assert.Equal(t, graphics.NullLocation, set.Mouse)
	require.Len(t, set.Custom, 1)
	assert.True(t, set.Location("speed").Valid())
	assert.Equal(t, graphics.NullLocation, set.Location("unknown"))
}

func TestBindInvalidProgram(t *testing.T) {
	assert.Equal(t, EmptyBindings, NewRegistry().Bind(graphicstest.New(), shader.Program{}))
}

func TestUploadDispatchesByKind(t *testing.T) {
	ctx := graphicstest.New()
	r := NewRegistry()
	require.NoError(t, r.Declare("count", Int(3)))
	require.NoError(t, r.Declare("gain", Float(0.5)))
	require.NoError(t, r.Declare("center", Vec2(0.1, 0.2)))
	require.NoError(t, r.Declare("color", Vec3(1, 0, 0)))
	require.NoError(t, r.Declare("tint", Vec4(0, 0, 0, 1)))
	set := r.Bind(ctx, compile(t, ctx))

	err := r.Upload(ctx, set, Builtins{Time: 2, Resolution: [2]float32{640, 480}, Mouse: [2]float32{0.5, 0.5}})
	require.NoError(t, err)

	expect := map[string]struct {
		fn     string
		values []float32
	}{
		NameTime:       {"1f", []float32{2}},
		NameResolution: {"2f", []float32{640, 480}},
		NameMouse:      {"2f", []float32{0.5, 0.5}},
		"count":        {"1i", []float32{3}},
		"gain":         {"1f", []float32{0.5}},
		"center":       {"2f", []float32{0.1, 0.2}},
		"color":        {"3f", []float32{1, 0, 0}},
		"tint":         {"4f", []float32{0, 0, 0, 1}},
	}
	for name, want := range expect {
		got, ok := ctx.LastUpload(name)
		require.True(t, ok, name)
		assert.Equal(t, want.fn, got.Func, name)
		assert.Equal(t, want.values, got.Values, name)
	}
}

func TestUploadSkipsNullLocations(t *testing.T) {
	ctx := graphicstest.New()
	ctx.Inactive = map[string]bool{"unused": true, NameResolution: true}
	r := NewRegistry()
	require.NoError(t, r.Declare("unused", Float(1)))
	set := r.Bind(ctx, compile(t, ctx))

	require.NoError(t, r.Upload(ctx, set, Builtins{}))

	assert.Empty(t, ctx.UploadsOf("unused"))
	assert.Empty(t, ctx.UploadsOf(NameResolution))
	assert.Len(t, ctx.UploadsOf(NameTime), 1)
}

func TestUploadUnsupportedKind(t *testing.T) {
	ctx := graphicstest.New()
	r := NewRegistry()
	require.NoError(t, r.Declare("weird", Float(1)))
	set := r.Bind(ctx, compile(t, ctx))
	r.entries["weird"] = Uniform{Kind: Kind(7), Value: []float32{1}}

	err := r.Upload(ctx, set, Builtins{})

	var kindErr *UnsupportedKindError
	require.True(t, errors.As(err, &kindErr))
	assert.Equal(t, "weird", kindErr.Name)
}
