//go:build !js

package host

// WindowBuilderOption is a functional option for configuring a desktop Window.
// Use the With* functions to create options.
type WindowBuilderOption func(h *glfwHost)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(h *glfwHost) {
		h.title = title
	}
}

// WithSize sets the initial window size in screen coordinates.
//
// Parameters:
//   - width: initial width
//   - height: initial height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(h *glfwHost) {
		h.width = width
		h.height = height
	}
}

// WithMinSize sets the minimum window size allowed during resize.
//
// Parameters:
//   - width: minimum width
//   - height: minimum height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(h *glfwHost) {
		h.minWidth = width
		h.minHeight = height
	}
}

// WithMaxSize sets the maximum window size allowed during resize. Zero leaves a dimension unbounded.
//
// Parameters:
//   - width: maximum width
//   - height: maximum height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(h *glfwHost) {
		h.maxWidth = width
		h.maxHeight = height
	}
}

// WithVSync toggles buffer swaps synchronized to the display refresh. Enabled by default.
func WithVSync(enabled bool) WindowBuilderOption {
	return func(h *glfwHost) {
		h.vsync = enabled
	}
}
