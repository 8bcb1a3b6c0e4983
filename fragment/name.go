package fragment

import (
	"sort"

	"github.com/maruel/natural"
)

// Name identifies fragment in ordering constraints. Zero value is the name of
// an anonymous fragment, which is different from an empty one.
type Name struct {
	value string
	valid bool
}

// Named returns Name for the given value.
func Named(s string) Name {
	return Name{value: s, valid: true}
}

// IsValid reports whether fragment has a declared name.
func (n Name) IsValid() bool {
	return n.valid
}

func (n Name) String() string {
	if !n.valid {
		return "<anonymous>"
	}
	return n.value
}

// NameSet is an unordered set of fragment names.
type NameSet map[Name]struct{}

// NewNameSet makes set from the given names.
func NewNameSet(names ...Name) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s NameSet) Add(n Name) {
	s[n] = struct{}{}
}

func (s NameSet) Has(n Name) bool {
	_, ok := s[n]
	return ok
}

func (s NameSet) Remove(n Name) {
	delete(s, n)
}

func (s NameSet) Len() int {
	return len(s)
}

// Union adds every name from other into s.
func (s NameSet) Union(other NameSet) {
	for n := range other {
		s[n] = struct{}{}
	}
}

// Subtract removes every name present in other from s.
func (s NameSet) Subtract(other NameSet) {
	for n := range other {
		delete(s, n)
	}
}

// Clone returns independent copy of the set.
func (s NameSet) Clone() NameSet {
	out := make(NameSet, len(s))
	out.Union(s)
	return out
}

// Names returns set members in natural order, anonymous name (if present)
// goes first.
func (s NameSet) Names() []Name {
	out := make([]Name, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].valid != out[j].valid {
			return !out[i].valid
		}
		return natural.Less(out[i].value, out[j].value)
	})
	return out
}

// Strings returns set members as strings in natural order. Anonymous name is
// not included.
func (s NameSet) Strings() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		if n.valid {
			out = append(out, n.value)
		}
	}
	sort.Sort(natural.StringSlice(out))
	return out
}
