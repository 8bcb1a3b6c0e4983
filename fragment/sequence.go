package fragment

// Compare orders two fragments by their direct constraints only: negative
// when a goes first, positive when b goes first and zero when neither
// fragment constrains the other. Relation is not guaranteed to be transitive.
func Compare(a, b *Fragment) int {
	switch {
	case a.Before.Has(b.Name):
		return -1
	case b.Before.Has(a.Name):
		return 1
	case a.After.Has(b.Name):
		return 1
	case b.After.Has(a.Name):
		return -1
	}
	return 0
}

// Sequence sorts fragments in place with Compare. With a non transitive
// comparator the algorithm decides the outcome, so this is timsort step for
// step rather than whatever the sort package does. Sort is
// stable, so mutually unconstrained fragments keep their arrival order unless
// some constraint moves them. No cycle detection is performed: conflicting
// constraints still produce some order.
func Sequence(frags []*Fragment) {
	timSort(frags, Compare)
}
