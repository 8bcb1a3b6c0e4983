package fragment

import (
	"reflect"
	"testing"

	"github.com/beevik/etree"
)

// mk builds fragment directly, bypassing document extraction.
func mk(name string, before, after []string, beforeOthers, afterOthers bool) *Fragment {
	f := New(etree.NewDocument(), name+".xml")
	if name != "" {
		f.Name = Named(name)
	}
	for _, n := range before {
		f.Before.Add(Named(n))
	}
	for _, n := range after {
		f.After.Add(Named(n))
	}
	f.BeforeOthers, f.AfterOthers = beforeOthers, afterOthers
	return f
}

func TestExpandOthers(t *testing.T) {
	t.Run("after others lists every peer", func(t *testing.T) {
		a := mk("a", nil, nil, false, true)
		b := mk("b", nil, nil, false, false)
		c := mk("", nil, nil, false, false)
		frags := []*Fragment{a, b, c}

		ExpandOthers(frags)

		if !a.After.Has(Named("b")) || !a.After.Has(Name{}) {
			t.Errorf("a.After = %v, want b and anonymous", a.After.Names())
		}
		if a.After.Has(Named("a")) {
			t.Error("fragment must not list itself")
		}
		if b.After.Len() != 0 || c.After.Len() != 0 {
			t.Error("peers must not be modified")
		}
	})

	t.Run("before others lists every peer", func(t *testing.T) {
		a := mk("a", nil, nil, true, false)
		b := mk("b", nil, nil, false, false)
		frags := []*Fragment{b, a}

		ExpandOthers(frags)

		if got := a.Before.Strings(); !reflect.DeepEqual(got, []string{"b"}) {
			t.Errorf("a.Before = %v, want [b]", got)
		}
		if a.After.Len() != 0 {
			t.Errorf("a.After = %v, want empty", a.After.Names())
		}
	})

	t.Run("peer already following is skipped", func(t *testing.T) {
		a := mk("a", nil, nil, false, true)
		b := mk("b", nil, []string{"a"}, false, false)
		frags := []*Fragment{a, b}

		ExpandOthers(frags)

		if a.After.Has(Named("b")) {
			t.Error("b already declared it follows a, a must not add b")
		}
	})

	t.Run("duplicate names leak into own set", func(t *testing.T) {
		// positions are compared, not names
		a1 := mk("a", nil, nil, false, true)
		a2 := mk("a", nil, nil, false, false)
		frags := []*Fragment{a1, a2}

		ExpandOthers(frags)

		if !a1.After.Has(Named("a")) {
			t.Error("expected own name via duplicate-named peer")
		}
	})
}

func TestClose(t *testing.T) {
	t.Run("transitive before", func(t *testing.T) {
		a := mk("a", []string{"b"}, nil, false, false)
		b := mk("b", []string{"c"}, nil, false, false)
		c := mk("c", nil, nil, false, false)

		passes := Close([]*Fragment{c, b, a})

		if got := a.Before.Strings(); !reflect.DeepEqual(got, []string{"b", "c"}) {
			t.Errorf("a.Before = %v, want [b c]", got)
		}
		if got := b.Before.Strings(); !reflect.DeepEqual(got, []string{"c"}) {
			t.Errorf("b.Before = %v, want [c]", got)
		}
		if passes != 2 {
			t.Errorf("Close() = %d passes, want 2", passes)
		}
	})

	t.Run("transitive after", func(t *testing.T) {
		a := mk("a", nil, []string{"b"}, false, false)
		b := mk("b", nil, []string{"c"}, false, false)
		c := mk("c", nil, []string{"d"}, false, false)
		d := mk("d", nil, nil, false, false)

		Close([]*Fragment{a, b, c, d})

		if got := a.After.Strings(); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
			t.Errorf("a.After = %v, want [b c d]", got)
		}
		if a.Before.Len() != 0 {
			t.Errorf("a.Before = %v, want empty", a.Before.Names())
		}
	})

	t.Run("unknown names are retained", func(t *testing.T) {
		a := mk("a", []string{"missing"}, []string{"gone"}, false, false)

		passes := Close([]*Fragment{a})

		if !a.Before.Has(Named("missing")) || !a.After.Has(Named("gone")) {
			t.Error("unknown names must stay")
		}
		if passes != 1 {
			t.Errorf("Close() = %d passes, want 1", passes)
		}
	})

	t.Run("anonymous never resolves", func(t *testing.T) {
		a := mk("a", nil, nil, false, false)
		a.Before.Add(Name{})
		anon := mk("", []string{"x"}, nil, false, false)

		Close([]*Fragment{a, anon})

		if a.Before.Has(Named("x")) {
			t.Error("anonymous fragment must not be looked up by name")
		}
	})

	t.Run("cycle leaves self reference", func(t *testing.T) {
		// known edge case: closure does not guard against own name
		a := mk("a", []string{"b"}, nil, false, false)
		b := mk("b", []string{"a"}, nil, false, false)

		Close([]*Fragment{a, b})

		if !a.Before.Has(Named("a")) || !b.Before.Has(Named("b")) {
			t.Errorf("a.Before = %v, b.Before = %v, want self references", a.Before.Names(), b.Before.Names())
		}
	})

	t.Run("sets only grow", func(t *testing.T) {
		a := mk("a", []string{"b", "x"}, []string{"y"}, false, false)
		b := mk("b", []string{"c"}, []string{"z"}, false, false)
		before, after := a.Before.Clone(), a.After.Clone()

		Close([]*Fragment{a, b})

		for n := range before {
			if !a.Before.Has(n) {
				t.Errorf("lost %v from a.Before", n)
			}
		}
		for n := range after {
			if !a.After.Has(n) {
				t.Errorf("lost %v from a.After", n)
			}
		}
	})
}
