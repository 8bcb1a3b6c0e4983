package fragment

import (
	"reflect"
	"testing"

	"github.com/beevik/etree"
)

func closed(frags ...*Fragment) []*Fragment {
	ExpandOthers(frags)
	Close(frags)
	Sequence(frags)
	return frags
}

func TestSynthesize(t *testing.T) {
	t.Run("no constraints", func(t *testing.T) {
		o := Synthesize(closed(mk("", nil, nil, false, false), mk("b", nil, nil, false, false)))
		if !o.IsEmpty() {
			t.Errorf("Synthesize() = %+v, want empty", o)
		}
		if o.Element() != nil {
			t.Error("Element() must be nil for empty ordering")
		}
	})

	t.Run("after others alone", func(t *testing.T) {
		o := Synthesize(closed(
			mk("a", nil, nil, false, true),
			mk("", nil, nil, false, false),
			mk("", nil, nil, false, false),
		))
		if !o.AfterOthers || o.BeforeOthers {
			t.Errorf("Synthesize() = %+v, want after others only", o)
		}
		if o.Before.Len() != 0 || o.After.Len() != 0 {
			t.Errorf("Synthesize() names = %v / %v, want none", o.Before.Names(), o.After.Names())
		}
	})

	t.Run("after others suppressed by before name", func(t *testing.T) {
		o := Synthesize(closed(
			mk("a", nil, nil, false, true),
			mk("", nil, nil, false, false),
			mk("d", []string{"x"}, nil, false, false),
		))
		if o.AfterOthers || o.BeforeOthers {
			t.Errorf("Synthesize() = %+v, want no others markers", o)
		}
		if got := o.Before.Strings(); !reflect.DeepEqual(got, []string{"x"}) {
			t.Errorf("Before = %v, want [x]", got)
		}
		if o.After.Len() != 0 {
			t.Errorf("After = %v, want empty", o.After.Names())
		}
	})

	t.Run("before others dominates", func(t *testing.T) {
		o := Synthesize(closed(
			mk("a", nil, nil, true, false),
			mk("b", []string{"y1", "y2"}, []string{"z"}, false, false),
			mk("c", nil, []string{"w"}, false, true),
		))
		if !o.BeforeOthers || o.AfterOthers {
			t.Errorf("Synthesize() = %+v, want before others only", o)
		}
		if o.Before.Len() != 0 || o.After.Len() != 0 {
			t.Errorf("Synthesize() names = %v / %v, want none", o.Before.Names(), o.After.Names())
		}
	})

	t.Run("before wins on conflict", func(t *testing.T) {
		o := Synthesize(closed(
			mk("a", []string{"x"}, nil, false, false),
			mk("b", nil, []string{"x", "y"}, false, false),
		))
		if got := o.Before.Strings(); !reflect.DeepEqual(got, []string{"x"}) {
			t.Errorf("Before = %v, want [x]", got)
		}
		if got := o.After.Strings(); !reflect.DeepEqual(got, []string{"y"}) {
			t.Errorf("After = %v, want [y]", got)
		}
	})

	t.Run("absorbed names dropped", func(t *testing.T) {
		o := Synthesize(closed(
			mk("a", []string{"b", "ext"}, nil, false, false),
			mk("b", nil, []string{"a"}, false, false),
		))
		if got := o.Before.Strings(); !reflect.DeepEqual(got, []string{"ext"}) {
			t.Errorf("Before = %v, want [ext]", got)
		}
		if o.After.Len() != 0 {
			t.Errorf("After = %v, want empty", o.After.Names())
		}
	})
}

func TestOrderingElement(t *testing.T) {
	tests := []struct {
		name string
		o    Ordering
		want string
	}{
		{
			name: "before others",
			o:    Ordering{Before: NameSet{}, After: NameSet{}, BeforeOthers: true},
			want: `<ordering><before><others/></before></ordering>`,
		},
		{
			name: "after others",
			o:    Ordering{Before: NameSet{}, After: NameSet{}, AfterOthers: true},
			want: `<ordering><after><others/></after></ordering>`,
		},
		{
			name: "names",
			o:    Ordering{Before: NewNameSet(Named("n10"), Named("n9")), After: NewNameSet(Named("z"))},
			want: `<ordering><before><name>n9</name><name>n10</name></before><after><name>z</name></after></ordering>`,
		},
		{
			name: "names with after others",
			o:    Ordering{Before: NameSet{}, After: NewNameSet(Named("z")), AfterOthers: true},
			want: `<ordering><after><others/></after></ordering>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := tt.o.Element()
			if el == nil {
				t.Fatal("Element() = nil")
			}
			doc := etree.NewDocumentWithRoot(el)
			got, err := doc.WriteToString()
			if err != nil {
				t.Fatalf("WriteToString() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Element() = %s, want %s", got, tt.want)
			}
		})
	}
}
