package fragment

// ExpandOthers turns "before others" and "after others" markers into explicit
// constraints against every other fragment in the list. Fragments are compared
// by position, so a fragment never lists itself through its own marker, but a
// peer carrying the same name may still put that name into its set.
func ExpandOthers(frags []*Fragment) {
	for i, f := range frags {
		if f.AfterOthers {
			for j, g := range frags {
				if i != j && !g.After.Has(f.Name) {
					f.After.Add(g.Name)
				}
			}
		}
		if f.BeforeOthers {
			for j, g := range frags {
				if i != j && !g.Before.Has(f.Name) {
					f.Before.Add(g.Name)
				}
			}
		}
	}
}

// Close computes transitive closure of before and after relations. Whenever
// fragment lists a name which resolves to a known fragment, constraints of
// that fragment are added to its own. Passes are repeated until one of them
// changes nothing, which is guaranteed since sets only grow and are bounded by
// the number of distinct names. Unknown and anonymous names stay in the sets
// but never contribute anything. Returns number of passes performed.
func Close(frags []*Fragment) int {
	index := indexByName(frags)

	passes := 0
	for changed := true; changed; {
		changed = false
		passes++
		for _, f := range frags {
			b, a := f.Before.Len(), f.After.Len()
			propagate(f.Before, index, func(g *Fragment) NameSet { return g.Before })
			propagate(f.After, index, func(g *Fragment) NameSet { return g.After })
			changed = changed || b != f.Before.Len() || a != f.After.Len()
		}
	}
	return passes
}

// indexByName maps declared names to fragments, later fragments win when
// names collide.
func indexByName(frags []*Fragment) map[Name]*Fragment {
	index := make(map[Name]*Fragment, len(frags))
	for _, f := range frags {
		if f.Name.IsValid() {
			index[f.Name] = f
		}
	}
	return index
}

func propagate(set NameSet, index map[Name]*Fragment, sel func(*Fragment) NameSet) {
	for _, n := range set.Names() {
		if g, ok := index[n]; ok {
			set.Union(sel(g))
		}
	}
}
