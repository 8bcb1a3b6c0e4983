package transform

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Patterns selects entries with glob patterns, "**" matches any number of
// path elements. Entry is selected when it matches at least one include
// pattern and no exclude pattern.
type Patterns struct {
	include []string
	exclude []string
}

func NewPatterns(include, exclude []string) (Patterns, error) {
	for _, set := range [][]string{include, exclude} {
		for _, p := range set {
			if !doublestar.ValidatePattern(p) {
				return Patterns{}, fmt.Errorf("invalid pattern %q", p)
			}
		}
	}
	return Patterns{include: include, exclude: exclude}, nil
}

// CanTransform implements part of Transformer.
func (p Patterns) CanTransform(path string) bool {
	return matchAny(p.include, path) && !matchAny(p.exclude, path)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		// patterns were validated already
		if doublestar.MatchUnvalidated(pattern, path) {
			return true
		}
	}
	return false
}
