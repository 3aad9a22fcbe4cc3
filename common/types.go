// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Vec2 is a two component float32 vector. It is used for pointer positions and other
// normalized surface-space coordinates.
type Vec2 struct {
	X, Y float32
}

// V2 is a shorthand constructor for a Vec2.
//
// Parameters:
//   - x: the horizontal component
//   - y: the vertical component
//
// Returns:
//   - Vec2: the constructed vector
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Array returns the vector as a fixed-length array, the shape uniform uploads expect.
//
// Returns:
//   - [2]float32: the X and Y components in order
func (v Vec2) Array() [2]float32 {
	return [2]float32{v.X, v.Y}
}

// Size is a width/height pair measured in CSS (logical) pixels unless stated otherwise.
type Size struct {
	Width, Height float32
}

// Empty reports whether either dimension is zero or negative.
//
// Returns:
//   - bool: true if the size cannot display anything
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an axis-aligned rectangle in client (viewport) coordinates, with the origin at the top-left.
type Rect struct {
	// Left is the distance from the left edge of the viewport to the rectangle.
	Left float32
	// Top is the distance from the top edge of the viewport to the rectangle.
	Top float32
	// Width is the horizontal extent of the rectangle.
	Width float32
	// Height is the vertical extent of the rectangle.
	Height float32
}

// Size returns the width and height of the rectangle.
//
// Returns:
//   - Size: the rectangle's dimensions
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}
