// Package transform holds resource transformers. A transformer claims
// archive entries by path, consumes their content while sources are walked
// and emits merged resources into the destination once all sources were
// seen.
package transform

import (
	"io"
	"slices"

	"github.com/maruel/natural"
)

// Sink receives merged resources. Every entry must be closed before the next
// one is created.
type Sink interface {
	Create(name string) (io.WriteCloser, error)
}

type Transformer interface {
	// Name identifies transformer in logs.
	Name() string
	// CanTransform reports whether entry with slash separated path is
	// claimed by transformer.
	CanTransform(path string) bool
	// Transform consumes content of the claimed entry.
	Transform(path string, r io.Reader) error
	// HasTransformedResource reports whether there is anything to emit.
	HasTransformedResource() bool
	// ModifyOutput emits merged resources.
	ModifyOutput(sink Sink) error
}

// sortedPaths returns map keys in natural order, so output does not depend
// on map iteration.
func sortedPaths[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
	return names
}
