// Package trace provides hooks that observe renderer operations as they happen, for debugging
// lifecycle ordering.
package trace

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

// Hook is called with the name of each operation as it is entered, followed by optional
// key/value pairs.
type Hook func(op string, args ...any)

// Color derives a stable hex color for an operation name so the same operation is always printed
// in the same color. The leading digit is forced high to keep colors readable on dark terminals.
//
// Parameters:
//   - op: the operation name
//
// Returns:
//   - string: the color in "#rrggbb" form
func Color(op string) string {
	sum := 0
	for _, r := range op {
		sum += int(r) * 42
	}
	hex := fmt.Sprintf("%06x", sum&0xffffff)
	return "#F" + hex[1:]
}

// NewTerminalHook writes one line per operation to w, coloring the operation name when the output
// supports it.
//
// Parameters:
//   - w: the destination writer
//   - opts: termenv output options, e.g. termenv.WithProfile to force a color profile
//
// Returns:
//   - Hook: the hook
func NewTerminalHook(w io.Writer, opts ...termenv.OutputOption) Hook {
	out := termenv.NewOutput(w, opts...)
	var mu sync.Mutex
	return func(op string, args ...any) {
		name := out.String(op).Foreground(out.Color(Color(op))).Bold().String()

		var b strings.Builder
		b.WriteString("[oxy-shader] ")
		b.WriteString(name)
		for i := 0; i+1 < len(args); i += 2 {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		}
		if len(args)%2 == 1 {
			fmt.Fprintf(&b, " %v", args[len(args)-1])
		}
		b.WriteByte('\n')

		mu.Lock()
		defer mu.Unlock()
		_, _ = out.WriteString(b.String())
	}
}

// NewSlogHook logs each operation at debug level.
//
// Parameters:
//   - logger: the destination logger; nil uses slog.Default()
//
// Returns:
//   - Hook: the hook
func NewSlogHook(logger *slog.Logger) Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return func(op string, args ...any) {
		logger.Debug(op, args...)
	}
}

// Multi fans one call out to several hooks. nil hooks are skipped.
func Multi(hooks ...Hook) Hook {
	return func(op string, args ...any) {
		for _, h := range hooks {
			if h != nil {
				h(op, args...)
			}
		}
	}
}
