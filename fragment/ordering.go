package fragment

import "github.com/beevik/etree"

// Ordering is ordering declaration of a composite made of several fragments.
type Ordering struct {
	Before       NameSet
	After        NameSet
	BeforeOthers bool
	AfterOthers  bool
}

// Synthesize derives ordering declaration of the composite from constraints
// of its (already closed) constituents. Names of constituents are dropped
// since they are absorbed, a name present on both sides stays on the before
// side only and "before others" supersedes everything else.
func Synthesize(frags []*Fragment) Ordering {
	o := Ordering{Before: NameSet{}, After: NameSet{}}

	var afterOthers bool
	for _, f := range frags {
		o.Before.Union(f.Before)
		o.After.Union(f.After)
		o.BeforeOthers = o.BeforeOthers || f.BeforeOthers
		afterOthers = afterOthers || f.AfterOthers
	}
	for _, f := range frags {
		o.Before.Remove(f.Name)
		o.After.Remove(f.Name)
	}
	o.After.Subtract(o.Before)

	o.AfterOthers = o.Before.Len() == 0 && !o.BeforeOthers && afterOthers

	if o.BeforeOthers {
		o.Before = NameSet{}
		o.After = NameSet{}
	}
	return o
}

// IsEmpty reports whether composite has nothing to declare.
func (o Ordering) IsEmpty() bool {
	return !o.BeforeOthers && !o.AfterOthers && o.Before.Len() == 0 && o.After.Len() == 0
}

// Element renders ordering declaration, nil when there is nothing to declare.
func (o Ordering) Element() *etree.Element {
	if o.IsEmpty() {
		return nil
	}
	el := etree.NewElement(tagOrdering)
	addConstraint(el, tagBefore, o.BeforeOthers, o.Before)
	addConstraint(el, tagAfter, o.AfterOthers, o.After)
	return el
}

func addConstraint(parent *etree.Element, tag string, others bool, names NameSet) {
	list := names.Strings()
	if !others && len(list) == 0 {
		return
	}
	el := parent.CreateElement(tag)
	if others {
		el.CreateElement(tagOthers)
		return
	}
	for _, n := range list {
		el.CreateElement(tagName).SetText(n)
	}
}
