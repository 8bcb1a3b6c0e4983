package fragment

// Timsort. Fragment comparator is not a total order, so the exact sequence of
// comparisons defines the result and has to be kept as is.

const (
	minMerge  = 32
	minGallop = 7
)

type timSorter[E any] struct {
	a   []E
	cmp func(a, b E) int

	minGallop int
	runBase   []int
	runLen    []int
}

// timSort sorts a in place. Where comparator turns out to be inconsistent
// during merge, remaining elements are left in place instead of failing, so a
// is always a permutation of its input.
func timSort[E any](a []E, cmp func(a, b E) int) {
	lo, hi := 0, len(a)
	remaining := hi - lo
	if remaining < 2 {
		return
	}

	if remaining < minMerge {
		run := countRunAndMakeAscending(a, lo, hi, cmp)
		binarySort(a, lo, hi, lo+run, cmp)
		return
	}

	ts := &timSorter[E]{a: a, cmp: cmp, minGallop: minGallop}
	minRun := minRunLength(remaining)
	for remaining != 0 {
		run := countRunAndMakeAscending(a, lo, hi, cmp)
		if run < minRun {
			force := min(remaining, minRun)
			binarySort(a, lo, lo+force, lo+run, cmp)
			run = force
		}
		ts.pushRun(lo, run)
		ts.mergeCollapse()
		lo += run
		remaining -= run
	}
	ts.mergeForceCollapse()
}

// binarySort sorts a[lo:hi] given that a[lo:start] is already sorted.
// Elements equal to pivot stay before it.
func binarySort[E any](a []E, lo, hi, start int, cmp func(a, b E) int) {
	if start == lo {
		start++
	}
	for ; start < hi; start++ {
		pivot := a[start]
		left, right := lo, start
		for left < right {
			mid := int(uint(left+right) >> 1)
			if cmp(pivot, a[mid]) < 0 {
				right = mid
			} else {
				left = mid + 1
			}
		}
		copy(a[left+1:start+1], a[left:start])
		a[left] = pivot
	}
}

// countRunAndMakeAscending returns length of the run starting at lo,
// reversing it when strictly descending.
func countRunAndMakeAscending[E any](a []E, lo, hi int, cmp func(a, b E) int) int {
	runHi := lo + 1
	if runHi == hi {
		return 1
	}
	runHi++
	if cmp(a[runHi-1], a[lo]) < 0 {
		for runHi < hi && cmp(a[runHi], a[runHi-1]) < 0 {
			runHi++
		}
		reverseRange(a, lo, runHi)
	} else {
		for runHi < hi && cmp(a[runHi], a[runHi-1]) >= 0 {
			runHi++
		}
	}
	return runHi - lo
}

func reverseRange[E any](a []E, lo, hi int) {
	for hi--; lo < hi; lo, hi = lo+1, hi-1 {
		a[lo], a[hi] = a[hi], a[lo]
	}
}

func minRunLength(n int) int {
	r := 0
	for n >= minMerge {
		r |= n & 1
		n >>= 1
	}
	return n + r
}

func (ts *timSorter[E]) pushRun(base, n int) {
	ts.runBase = append(ts.runBase, base)
	ts.runLen = append(ts.runLen, n)
}

func (ts *timSorter[E]) mergeCollapse() {
	for len(ts.runLen) > 1 {
		l := ts.runLen
		n := len(l) - 2
		if n > 0 && l[n-1] <= l[n]+l[n+1] || n > 1 && l[n-2] <= l[n]+l[n-1] {
			if l[n-1] < l[n+1] {
				n--
			}
		} else if l[n] > l[n+1] {
			break
		}
		ts.mergeAt(n)
	}
}

func (ts *timSorter[E]) mergeForceCollapse() {
	for len(ts.runLen) > 1 {
		n := len(ts.runLen) - 2
		if n > 0 && ts.runLen[n-1] < ts.runLen[n+1] {
			n--
		}
		ts.mergeAt(n)
	}
}

// mergeAt merges runs i and i+1 which must be adjacent on the stack.
func (ts *timSorter[E]) mergeAt(i int) {
	a, cmp := ts.a, ts.cmp

	base1, len1 := ts.runBase[i], ts.runLen[i]
	base2, len2 := ts.runBase[i+1], ts.runLen[i+1]

	ts.runLen[i] = len1 + len2
	ts.runBase = append(ts.runBase[:i+1], ts.runBase[i+2:]...)
	ts.runLen = append(ts.runLen[:i+1], ts.runLen[i+2:]...)

	// elements of run1 already in place
	k := gallopRight(a[base2], a, base1, len1, 0, cmp)
	base1 += k
	len1 -= k
	if len1 == 0 {
		return
	}
	// elements of run2 already in place
	len2 = gallopLeft(a[base1+len1-1], a, base2, len2, len2-1, cmp)
	if len2 == 0 {
		return
	}

	if len1 <= len2 {
		ts.mergeLo(base1, len1, base2, len2)
	} else {
		ts.mergeHi(base1, len1, base2, len2)
	}
}

// gallopLeft returns position in a[base:base+n] where key belongs, left of
// any equal elements, starting the search at hint.
func gallopLeft[E any](key E, a []E, base, n, hint int, cmp func(a, b E) int) int {
	lastOfs, ofs := 0, 1
	if cmp(key, a[base+hint]) > 0 {
		maxOfs := n - hint
		for ofs < maxOfs && cmp(key, a[base+hint+ofs]) > 0 {
			lastOfs = ofs
			ofs = ofs<<1 + 1
		}
		ofs = min(ofs, maxOfs)
		lastOfs += hint
		ofs += hint
	} else {
		maxOfs := hint + 1
		for ofs < maxOfs && cmp(key, a[base+hint-ofs]) <= 0 {
			lastOfs = ofs
			ofs = ofs<<1 + 1
		}
		ofs = min(ofs, maxOfs)
		lastOfs, ofs = hint-ofs, hint-lastOfs
	}

	lastOfs++
	for lastOfs < ofs {
		m := lastOfs + (ofs-lastOfs)>>1
		if cmp(key, a[base+m]) > 0 {
			lastOfs = m + 1
		} else {
			ofs = m
		}
	}
	return ofs
}

// gallopRight is gallopLeft placing key right of any equal elements.
func gallopRight[E any](key E, a []E, base, n, hint int, cmp func(a, b E) int) int {
	lastOfs, ofs := 0, 1
	if cmp(key, a[base+hint]) < 0 {
		maxOfs := hint + 1
		for ofs < maxOfs && cmp(key, a[base+hint-ofs]) < 0 {
			lastOfs = ofs
			ofs = ofs<<1 + 1
		}
		ofs = min(ofs, maxOfs)
		lastOfs, ofs = hint-ofs, hint-lastOfs
	} else {
		maxOfs := n - hint
		for ofs < maxOfs && cmp(key, a[base+hint+ofs]) >= 0 {
			lastOfs = ofs
			ofs = ofs<<1 + 1
		}
		ofs = min(ofs, maxOfs)
		lastOfs += hint
		ofs += hint
	}

	lastOfs++
	for lastOfs < ofs {
		m := lastOfs + (ofs-lastOfs)>>1
		if cmp(key, a[base+m]) < 0 {
			ofs = m
		} else {
			lastOfs = m + 1
		}
	}
	return ofs
}

// mergeLo merges two adjacent runs when the first one is not longer, first
// run is moved aside.
func (ts *timSorter[E]) mergeLo(base1, len1, base2, len2 int) {
	a, cmp := ts.a, ts.cmp

	tmp := make([]E, len1)
	copy(tmp, a[base1:base1+len1])

	cursor1, cursor2, dest := 0, base2, base1
	a[dest] = a[cursor2]
	dest++
	cursor2++
	if len2--; len2 == 0 {
		copy(a[dest:dest+len1], tmp[cursor1:cursor1+len1])
		return
	}
	if len1 == 1 {
		copy(a[dest:dest+len2], a[cursor2:cursor2+len2])
		a[dest+len2] = tmp[cursor1]
		return
	}

	mg := ts.minGallop
outer:
	for {
		count1, count2 := 0, 0

		// one at a time until one run starts winning consistently
		for {
			if cmp(a[cursor2], tmp[cursor1]) < 0 {
				a[dest] = a[cursor2]
				dest++
				cursor2++
				count2++
				count1 = 0
				if len2--; len2 == 0 {
					break outer
				}
			} else {
				a[dest] = tmp[cursor1]
				dest++
				cursor1++
				count1++
				count2 = 0
				if len1--; len1 == 1 {
					break outer
				}
			}
			if count1|count2 >= mg {
				break
			}
		}

		for {
			count1 = gallopRight(a[cursor2], tmp, cursor1, len1, 0, cmp)
			if count1 != 0 {
				copy(a[dest:dest+count1], tmp[cursor1:cursor1+count1])
				dest += count1
				cursor1 += count1
				len1 -= count1
				if len1 <= 1 {
					break outer
				}
			}
			a[dest] = a[cursor2]
			dest++
			cursor2++
			if len2--; len2 == 0 {
				break outer
			}

			count2 = gallopLeft(tmp[cursor1], a, cursor2, len2, 0, cmp)
			if count2 != 0 {
				copy(a[dest:dest+count2], a[cursor2:cursor2+count2])
				dest += count2
				cursor2 += count2
				len2 -= count2
				if len2 == 0 {
					break outer
				}
			}
			a[dest] = tmp[cursor1]
			dest++
			cursor1++
			if len1--; len1 == 1 {
				break outer
			}
			mg--
			if count1 < minGallop && count2 < minGallop {
				break
			}
		}
		mg = max(mg, 0) + 2
	}
	ts.minGallop = max(mg, 1)

	switch {
	case len1 == 1:
		copy(a[dest:dest+len2], a[cursor2:cursor2+len2])
		a[dest+len2] = tmp[cursor1]
	case len1 == 0:
		// inconsistent comparator, rest of the second run is already in place
	default:
		copy(a[dest:dest+len1], tmp[cursor1:cursor1+len1])
	}
}

// mergeHi is mergeLo working from the end, second run is moved aside.
func (ts *timSorter[E]) mergeHi(base1, len1, base2, len2 int) {
	a, cmp := ts.a, ts.cmp

	tmp := make([]E, len2)
	copy(tmp, a[base2:base2+len2])

	cursor1, cursor2, dest := base1+len1-1, len2-1, base2+len2-1
	a[dest] = a[cursor1]
	dest--
	cursor1--
	if len1--; len1 == 0 {
		copy(a[dest-(len2-1):dest+1], tmp[:len2])
		return
	}
	if len2 == 1 {
		dest -= len1
		cursor1 -= len1
		copy(a[dest+1:dest+1+len1], a[cursor1+1:cursor1+1+len1])
		a[dest] = tmp[cursor2]
		return
	}

	mg := ts.minGallop
outer:
	for {
		count1, count2 := 0, 0

		for {
			if cmp(tmp[cursor2], a[cursor1]) < 0 {
				a[dest] = a[cursor1]
				dest--
				cursor1--
				count1++
				count2 = 0
				if len1--; len1 == 0 {
					break outer
				}
			} else {
				a[dest] = tmp[cursor2]
				dest--
				cursor2--
				count2++
				count1 = 0
				if len2--; len2 == 1 {
					break outer
				}
			}
			if count1|count2 >= mg {
				break
			}
		}

		for {
			count1 = len1 - gallopRight(tmp[cursor2], a, base1, len1, len1-1, cmp)
			if count1 != 0 {
				dest -= count1
				cursor1 -= count1
				len1 -= count1
				copy(a[dest+1:dest+1+count1], a[cursor1+1:cursor1+1+count1])
				if len1 == 0 {
					break outer
				}
			}
			a[dest] = tmp[cursor2]
			dest--
			cursor2--
			if len2--; len2 == 1 {
				break outer
			}

			count2 = len2 - gallopLeft(a[cursor1], tmp, 0, len2, len2-1, cmp)
			if count2 != 0 {
				dest -= count2
				cursor2 -= count2
				len2 -= count2
				copy(a[dest+1:dest+1+count2], tmp[cursor2+1:cursor2+1+count2])
				if len2 <= 1 {
					break outer
				}
			}
			a[dest] = a[cursor1]
			dest--
			cursor1--
			if len1--; len1 == 0 {
				break outer
			}
			mg--
			if count1 < minGallop && count2 < minGallop {
				break
			}
		}
		mg = max(mg, 0) + 2
	}
	ts.minGallop = max(mg, 1)

	switch {
	case len2 == 1:
		dest -= len1
		cursor1 -= len1
		copy(a[dest+1:dest+1+len1], a[cursor1+1:cursor1+1+len1])
		a[dest] = tmp[cursor2]
	case len2 == 0:
		// inconsistent comparator, rest of the first run is already in place
	default:
		copy(a[dest-(len2-1):dest+1], tmp[:len2])
	}
}
