// Package region implements the memory-region lattice of seven tags (Top,
// Global, Stack, Heap0..Heap3): the finite abstraction of which address
// space a value belongs to.
//
// Grounded on pkg/cpu/flags.go's idiom of a small closed enum; the join
// needs no table here, since equal regions join to themselves and any two
// distinct regions join to Top.
package region

import "fmt"

// Region identifies an abstract address space. The zero value is Top,
// matching the convention that an absent/unknown region is the safest
// default.
type Region uint8

const (
	// Top is the unknown region: joining any two distinct regions lands here.
	Top Region = iota
	// Global identifies statically allocated / global-segment storage.
	Global
	// Stack identifies the current stack frame's address space.
	Stack
	// Heap0 is the first heap region in a finite family of heap regions.
	Heap0
	Heap1
	Heap2
	Heap3
)

// heapBase is the first Region tag considered a heap region.
const heapBase = Heap0

// IsHeap reports whether r names one of the finite heap regions.
func (r Region) IsHeap() bool {
	return r >= heapBase
}

// HeapIndex returns the index i such that r == Heap(i), and ok=false if r
// does not name a heap region.
func (r Region) HeapIndex() (i int, ok bool) {
	if !r.IsHeap() {
		return 0, false
	}
	return int(r - heapBase), true
}

// Heap returns the region tag for heap index i. Only indices 0..3 are
// representable by this finite family; callers needing more should widen
// the enum rather than invent a new unbounded-region scheme.
func Heap(i int) Region {
	return heapBase + Region(i)
}

// String renders the region for logging and CLI output.
func (r Region) String() string {
	switch r {
	case Top:
		return "TOP"
	case Global:
		return "GLOBAL"
	case Stack:
		return "STACK"
	default:
		if i, ok := r.HeapIndex(); ok {
			return fmt.Sprintf("HEAP%d", i)
		}
		return fmt.Sprintf("REGION(%d)", uint8(r))
	}
}

// Join computes r1 ⊔ r2: equal regions join to themselves, distinct
// non-equal regions join to Top. Top is absorbing.
func Join(r1, r2 Region) Region {
	if r1 == r2 {
		return r1
	}
	return Top
}

// LessOrEqual follows from Join: r1 <= r2 iff Join(r1,r2) == r2.
func LessOrEqual(r1, r2 Region) bool {
	return Join(r1, r2) == r2
}

// Joins folds Join over a non-empty slice of regions. Joins of an empty
// slice is Top, the identity-adjacent default for "nothing known".
func Joins(rs []Region) Region {
	if len(rs) == 0 {
		return Top
	}
	acc := rs[0]
	for _, r := range rs[1:] {
		acc = Join(acc, r)
	}
	return acc
}
