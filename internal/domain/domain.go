// Package domain defines the abstract domain contract (spec §4.3): the
// uniform interface every numeric abstract domain (wrapped interval, BDD
// set) implements, and that internal/eval's evaluator is generic over.
//
// Grounded on the teacher's separation of "the shape of a value" (pkg/cpu.
// State) from "operations over that shape" (pkg/cpu/exec.go's dispatch) —
// here promoted to an actual Go interface since, unlike the teacher's single
// concrete Z80 machine, this module has two interchangeable implementations.
//
// A domain Value does not itself carry a memory region — per spec §3/§4.6,
// region is carried alongside a Value in a (Value, Region) pair at the
// valuation layer. internal/bdd is the one domain whose own lattice
// operations are region-sensitive (address sets), and it exposes that
// through its own concrete API rather than through this shared interface.
package domain

// Value is the contract every abstract domain element satisfies. A Value
// always has a fixed, immutable bitwidth.
type Value interface {
	// Width returns the value's bitwidth.
	Width() uint8

	// --- Lattice ---
	Join(other Value) Value
	Meet(other Value) Value
	Widen(other Value) Value
	LessOrEqual(other Value) bool
	IsTop() bool
	IsBot() bool
	HasUniqueConcretization() bool
	// GetUniqueConcretization panics if !HasUniqueConcretization().
	GetUniqueConcretization() uint64
	HasElement(v uint64) bool

	// --- Arithmetic ---
	Add(other Value) Value
	Sub(other Value) Value
	Negate() Value
	// MulDouble multiplies, returning a value at 2x this value's width
	// (capped at 64 bits).
	MulDouble(other Value) Value
	SignedDiv(other Value) Value
	UnsignedDiv(other Value) Value
	SignedRem(other Value) Value
	UnsignedRem(other Value) Value

	// --- Bitwise ---
	And(other Value) Value
	Or(other Value) Value
	Xor(other Value) Value
	Not() Value

	// --- Shifts ---
	Shl(amount Value) Value
	Shr(amount Value) Value
	Sar(amount Value) Value

	// --- Width changes ---
	Truncate(w uint8) Value
	// SignExtend(from,to) reinterprets this value as `from`-bit wide and
	// sign-extends to `to`; SignExtendTo(to) uses this value's own width
	// as `from`.
	SignExtend(from, to uint8) Value
	SignExtendTo(to uint8) Value
	ZeroExtend(from, to uint8) Value
	ZeroExtendTo(to uint8) Value

	// --- Comparisons (all return a width-1 Value) ---
	Eq(other Value) Value
	SignedLessThan(other Value) Value
	SignedLessThanOrEqual(other Value) Value
	UnsignedLessThan(other Value) Value
	UnsignedLessThanOrEqual(other Value) Value

	// --- Assumptions ---
	// AssumeULeq narrows (this, other) under the assumption this <= other
	// (unsigned), returning the pair of narrowed values.
	AssumeULeq(other Value) (Value, Value)
	AssumeSLeq(other Value) (Value, Value)

	String() string
}

// Factory constructs domain elements (external interface #2, spec §6).
type Factory interface {
	// Number returns the singleton value containing exactly v at width w.
	Number(v uint64, w uint8) Value
	// Top returns the full-range (no information) value at width w.
	Top(w uint8) Value
	// Bot returns the empty (unreachable) value at width w.
	Bot(w uint8) Value
	// Interval returns the (possibly wrapping) range [a,b] at width w, for
	// factories that support direct interval construction (wrapped interval
	// does; BDD sets may implement it by enumeration for small ranges).
	Interval(a, b uint64, w uint8) Value
	// Joins folds Join over a non-empty slice, returning Bot(w) for an
	// empty slice at the given width.
	Joins(w uint8, vs []Value) Value
}
