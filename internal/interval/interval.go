// Package interval implements the wrapped interval domain (spec §4.4): a
// sign-agnostic numeric abstraction over the "number circle" of w-bit
// values.
//
// Grounded on ajalab-go-z3/z3/bv.go's math/big-based
// AsBigSigned/AsBigUnsigned for MulDouble's exact double-width corner
// products; the scalar operations work on the endpoints through
// internal/bitnum, with no lookup tables.
package interval

import (
	"fmt"
	"math/big"

	"github.com/jakstab-go/rtlabstract/internal/bitnum"
	"github.com/jakstab-go/rtlabstract/internal/domain"
)

type kind uint8

const (
	kBot kind = iota
	kTop
	kRange
)

// Value is a wrapped interval: ⊥, ⊤_w, or [a,b]_w (spec §4.4).
type Value struct {
	kind kind
	a, b uint64
	w    uint8
}

var _ domain.Value = Value{}

func mask(w uint8) uint64 {
	if w == 64 {
		return ^uint64(0)
	}
	return (uint64(1) << w) - 1
}

// Bot returns ⊥ at width w.
func Bot(w uint8) Value { return Value{kind: kBot, w: w} }

// Top returns ⊤_w.
func Top(w uint8) Value { return Value{kind: kTop, w: w} }

// Single returns the singleton interval [v,v]_w.
func Single(v uint64, w uint8) Value { return Range(v, v, w) }

// Range returns [a,b]_w, canonicalized to Top(w) per spec §4.4 when
// b - a + 1 == 2^w (i.e. (b-a) mod 2^w == 2^w - 1, the widest possible
// span).
func Range(a, b uint64, w uint8) Value { return newRange(a, b, w) }

func newRange(a, b uint64, w uint8) Value {
	m := mask(w)
	a &= m
	b &= m
	diff := (b - a) & m
	if diff == m {
		return Top(w)
	}
	return Value{kind: kRange, a: a, b: b, w: w}
}

func (v Value) Width() uint8 { return v.w }

func (v Value) IsBot() bool { return v.kind == kBot }
func (v Value) IsTop() bool { return v.kind == kTop }

func (v Value) String() string {
	switch v.kind {
	case kBot:
		return fmt.Sprintf("BOT_%d", v.w)
	case kTop:
		return fmt.Sprintf("TOP_%d", v.w)
	default:
		return fmt.Sprintf("[0x%x,0x%x]_%d", v.a, v.b, v.w)
	}
}

func requireWidth(op string, a, b Value) {
	if a.w != b.w {
		panic(bitnum.Precondition{Op: op, Detail: fmt.Sprintf("width mismatch: %d vs %d", a.w, b.w)})
	}
}

// size returns the number of elements in [a,b]_w as a circle-relative
// count: (b-a mod 2^w) + 1. Only meaningful for kRange (Top/Bot callers
// must special-case beforehand).
func (v Value) size() uint64 {
	m := mask(v.w)
	return ((v.b-v.a)&m + 1) & m // wraps to 0 only for a genuinely full range, which newRange already turned into Top
}

// contains reports whether x is in [a,b]_w, i.e. relativeLeq_a(x,b).
func (v Value) contains(x uint64) bool {
	m := mask(v.w)
	return ((x-v.a)&m) <= ((v.b-v.a)&m)
}

func (v Value) HasElement(x uint64) bool {
	switch v.kind {
	case kBot:
		return false
	case kTop:
		return true
	default:
		return v.contains(x & mask(v.w))
	}
}

func (v Value) HasUniqueConcretization() bool {
	return v.kind == kRange && v.a == v.b
}

func (v Value) GetUniqueConcretization() uint64 {
	if !v.HasUniqueConcretization() {
		panic(bitnum.Precondition{Op: "GetUniqueConcretization", Detail: "not a singleton"})
	}
	return v.a
}

// --- Lattice ---

// Join implements spec §4.4's join: top/bot absorption, subset shortcuts,
// then the two-candidate wrap construction with smallest-size tie-break.
func (v Value) Join(otherV domain.Value) domain.Value {
	o := otherV.(Value)
	requireWidth("Join", v, o)
	if v.kind == kTop || o.kind == kTop {
		return Top(v.w)
	}
	if v.kind == kBot {
		return o
	}
	if o.kind == kBot {
		return v
	}

	if o.subsetOf(v) {
		return v
	}
	if v.subsetOf(o) {
		return o
	}

	// The two candidate unions that actually cover both operands are
	// [v.a, o.b] (going from v's start around through o's end) and
	// [o.a, v.b] (the mirror). Per spec §4.4, pick whichever has the
	// smaller covered size, tie-break toward lexicographically smaller
	// (a,b). Note the originals themselves are never valid candidates
	// here — neither contains the other (that was already handled by the
	// subsetOf checks above), so re-offering them would silently drop the
	// operand that isn't the candidate's own endpoint.
	candidates := []Value{
		newRange(v.a, o.b, v.w),
		newRange(o.a, v.b, v.w),
	}
	best := candidates[0]
	bestSize := candidateSize(best)
	for _, c := range candidates[1:] {
		cs := candidateSize(c)
		if cs < bestSize || (cs == bestSize && lexLess(c, best)) {
			best = c
			bestSize = cs
		}
	}
	return best
}

func candidateSize(v Value) uint64 {
	if v.kind == kTop {
		if v.w == 64 {
			return ^uint64(0) // 2^64 does not fit; the largest uint64 still ranks Top above every smaller range
		}
		return mask(v.w) + 1 // 2^w, as a size
	}
	return v.size()
}

func lexLess(x, y Value) bool {
	if x.a != y.a {
		return x.a < y.a
	}
	return x.b < y.b
}

// subsetOf reports whether v is wholly contained in o (same width).
func (v Value) subsetOf(o Value) bool {
	if o.kind == kTop {
		return true
	}
	if v.kind == kTop {
		return false
	}
	m := mask(v.w)
	return o.contains(v.a) && o.contains(v.b) && (v.a-o.a)&m <= (v.b-o.a)&m
}

// Meet is the dual of Join: intersect on the circle, returning ⊥ when
// disjoint.
func (v Value) Meet(otherV domain.Value) domain.Value {
	o := otherV.(Value)
	requireWidth("Meet", v, o)
	if v.kind == kBot || o.kind == kBot {
		return Bot(v.w)
	}
	if v.kind == kTop {
		return o
	}
	if o.kind == kTop {
		return v
	}
	if o.subsetOf(v) {
		return o
	}
	if v.subsetOf(o) {
		return v
	}
	// Overlapping, neither contained: the intersection of two wrapped
	// ranges that aren't nested is, in the general case, up to two disjoint
	// arcs; a single-interval domain must over-approximate with their
	// convex hull when they're not nested. We detect the two overlap
	// boundaries and return the overlapping sub-arc starting after max(a)
	// to min(b) if that's consistent, else fall back to Bot (disjoint).
	if v.contains(o.a) && o.contains(v.a) {
		// Both overlap the other's start: ranges overlap on both ends,
		// covering the whole circle already handled by full-range
		// canonicalization; treat as disjoint-safe bottom is unsound here,
		// so fall back to the smaller of the two as a sound (if imprecise)
		// approximation.
		if v.size() <= o.size() {
			return v
		}
		return o
	}
	if v.contains(o.a) {
		return newRange(o.a, v.b, v.w)
	}
	if o.contains(v.a) {
		return newRange(v.a, o.b, v.w)
	}
	return Bot(v.w)
}

func (v Value) LessOrEqual(otherV domain.Value) bool {
	o := otherV.(Value)
	requireWidth("LessOrEqual", v, o)
	if v.kind == kBot {
		return true
	}
	if o.kind == kTop {
		return true
	}
	if v.kind == kTop {
		return false
	}
	if o.kind == kBot {
		return false
	}
	return v.subsetOf(o)
}

// Widen implements spec §4.4: if the new interval is already contained,
// return the old one (stable); otherwise push whichever bound grew all the
// way to its extreme, guaranteeing termination in a bounded number of
// doublings.
func (v Value) Widen(otherV domain.Value) domain.Value {
	o := otherV.(Value)
	requireWidth("Widen", v, o)
	joined := v.Join(o).(Value)
	if joined.kind != kRange {
		return joined
	}
	if v.kind != kRange {
		return joined
	}
	if joined.subsetOf(v) {
		return v
	}
	a, b := joined.a, joined.b
	if a != v.a {
		a = 0
	}
	if b != v.b {
		b = mask(v.w)
	}
	return newRange(a, b, v.w)
}

func (v Value) Joins(others []domain.Value) domain.Value {
	acc := domain.Value(v)
	for _, o := range others {
		acc = acc.Join(o)
	}
	return acc
}

// --- Arithmetic ---

func (v Value) Add(otherV domain.Value) domain.Value {
	o := otherV.(Value)
	requireWidth("Add", v, o)
	if v.kind == kBot || o.kind == kBot {
		return Bot(v.w)
	}
	if v.kind == kTop || o.kind == kTop {
		return Top(v.w)
	}
	// Saturate to Top if the combined span can't be represented as a
	// single precise wrapped interval without losing soundness (spec
	// §4.4: if (b-a)+(d-c) >= 2^w - 1, the sum interval would itself be a
	// full circle or more).
	m := mask(v.w)
	spanA := (v.b - v.a) & m
	spanO := (o.b - o.a) & m
	total := spanA + spanO // may exceed 2^w for w<64; compare before masking
	if v.w < 64 && total >= m {
		return Top(v.w)
	}
	if v.w == 64 && (spanA > m-spanO) { // overflow check for w=64 without overflowing total itself
		return Top(v.w)
	}
	return newRange(v.a+o.a, v.b+o.b, v.w)
}

func (v Value) Sub(otherV domain.Value) domain.Value {
	o := otherV.(Value)
	return v.Add(o.Negate().(Value))
}

func (v Value) Negate() domain.Value {
	switch v.kind {
	case kBot, kTop:
		return v
	default:
		m := mask(v.w)
		na := (-v.b) & m
		nb := (-v.a) & m
		return newRange(na, nb, v.w)
	}
}

// MulDouble computes the product at width 2w (capped at 64) as the convex
// hull of the four unsigned corner products {a*c, a*d, b*c, b*d} —
// grounded on ajalab-go-z3/z3/bv.go's math/big-based exact bitvector
// arithmetic. An operand that wraps (a > b), or any non-singleton operand
// above 32 bits where products no longer fit the capped width, yields Top,
// since the corners then do not bound the product.
func (v Value) MulDouble(otherV domain.Value) domain.Value {
	o := otherV.(Value)
	requireWidth("MulDouble", v, o)
	w2 := v.w * 2
	if v.w > 32 {
		w2 = 64 // guard against overflowing uint8 width for w>32; spec's
		// bitwidth universe tops out at 64 so doubling past that saturates
		// to 64 (a 128-bit domain is out of scope for this module).
	}
	if v.kind == kBot || o.kind == kBot {
		return Bot(w2)
	}
	if v.kind == kTop || o.kind == kTop {
		return Top(w2)
	}
	if v.a > v.b || o.a > o.b || (v.w > 32 && (v.a != v.b || o.a != o.b)) {
		return Top(w2)
	}

	corners := [][2]uint64{{v.a, o.a}, {v.a, o.b}, {v.b, o.a}, {v.b, o.b}}
	var results []uint64
	for _, c := range corners {
		ua := new(big.Int).SetUint64(c[0])
		ub := new(big.Int).SetUint64(c[1])
		prod := new(big.Int).Mul(ua, ub)
		m2 := new(big.Int).Lsh(big.NewInt(1), uint(w2))
		prod.Mod(prod, m2)
		results = append(results, prod.Uint64())
	}

	lo, hi := results[0], results[0]
	for _, r := range results[1:] {
		if r < lo {
			lo = r
		}
		if r > hi {
			hi = r
		}
	}
	return newRange(lo, hi, w2)
}

func (v Value) SignedDiv(otherV domain.Value) domain.Value {
	return v.divRem(otherV.(Value), true, false)
}
func (v Value) UnsignedDiv(otherV domain.Value) domain.Value {
	return v.divRem(otherV.(Value), false, false)
}
func (v Value) SignedRem(otherV domain.Value) domain.Value {
	return v.divRem(otherV.(Value), true, true)
}
func (v Value) UnsignedRem(otherV domain.Value) domain.Value {
	return v.divRem(otherV.(Value), false, true)
}

// divRem computes division/remainder under the requested signedness only,
// applying the operation to the four endpoint corners and taking the
// unsigned convex hull of the results; the other signedness is not
// consulted, and divisor values strictly inside the interval are not
// tried. A divisor of exactly {0} yields ⊥; a zero endpoint of a wider
// divisor is skipped.
func (v Value) divRem(o Value, signed, rem bool) domain.Value {
	requireWidth("divRem", v, o)
	if v.kind == kBot || o.kind == kBot {
		return Bot(v.w)
	}
	if o.kind == kRange && o.contains(0) && o.a == 0 && o.b == 0 {
		return Bot(v.w) // divisor is exactly {0}
	}
	if v.kind == kTop || o.kind == kTop {
		return Top(v.w)
	}

	endpoints := func(val Value) []uint64 {
		if val.kind == kRange {
			return []uint64{val.a, val.b}
		}
		return nil
	}
	dividends := endpoints(v)
	divisors := endpoints(o)

	var results []uint64
	sawNonzero := false
	for _, d := range dividends {
		for _, q := range divisors {
			if q == 0 {
				continue // zero is one endpoint of an interval that also has nonzero values: skip this corner, not the whole op
			}
			sawNonzero = true
			a := bitnum.New(d, v.w)
			b := bitnum.New(q, v.w)
			var r bitnum.BitNumber
			var err error
			switch {
			case signed && !rem:
				r, err = a.SQuot(b)
			case signed && rem:
				r, err = a.SRem(b)
			case !signed && !rem:
				r, err = a.UQuot(b)
			default:
				r, err = a.URem(b)
			}
			if err != nil {
				continue
			}
			results = append(results, r.ZExtLongValue())
		}
	}
	if !sawNonzero || len(results) == 0 {
		return Bot(v.w)
	}
	lo, hi := results[0], results[0]
	for _, r := range results[1:] {
		if r < lo {
			lo = r
		}
		if r > hi {
			hi = r
		}
	}
	return newRange(lo, hi, v.w)
}

// --- Bitwise ---
// AND/OR/XOR are exact when both operands are singletons (the operation is
// applied to the two concrete values); any other pair of non-bottom
// operands yields Top. No min/max bit-splay bound is computed for ranges.

func (v Value) bitwise(otherV domain.Value, op func(bitnum.BitNumber, bitnum.BitNumber) bitnum.BitNumber) domain.Value {
	o := otherV.(Value)
	requireWidth("bitwise", v, o)
	if v.kind == kBot || o.kind == kBot {
		return Bot(v.w)
	}
	if v.HasUniqueConcretization() && o.HasUniqueConcretization() {
		r := op(bitnum.New(v.a, v.w), bitnum.New(o.a, v.w))
		return Single(r.ZExtLongValue(), v.w)
	}
	// Sound but coarse: any wrapped (non-trivial) operand forces worst case.
	return Top(v.w)
}

func (v Value) And(o domain.Value) domain.Value {
	return v.bitwise(o, bitnum.BitNumber.And)
}
func (v Value) Or(o domain.Value) domain.Value {
	return v.bitwise(o, bitnum.BitNumber.Or)
}
func (v Value) Xor(o domain.Value) domain.Value {
	return v.bitwise(o, bitnum.BitNumber.Xor)
}

func (v Value) Not() domain.Value {
	switch v.kind {
	case kBot, kTop:
		return v
	default:
		m := mask(v.w)
		return newRange((^v.b)&m, (^v.a)&m, v.w)
	}
}

// --- Shifts ---

func (v Value) Shl(amountV domain.Value) domain.Value {
	amt := amountV.(Value)
	if v.kind == kBot || amt.kind == kBot {
		return Bot(v.w)
	}
	if v.kind == kTop {
		return Top(v.w)
	}
	if amt.HasUniqueConcretization() {
		k := amt.GetUniqueConcretization()
		if k >= uint64(v.w) {
			return Single(0, v.w)
		}
		lo := bitnum.New(v.a, v.w).Shl(k).ZExtLongValue()
		hi := bitnum.New(v.b, v.w).Shl(k).ZExtLongValue()
		return newRange(lo, hi, v.w)
	}
	// Variable shift: join over the unsigned range [min,max] ∩ [0,w].
	lo, hi := shiftRange(amt, v.w)
	acc := domain.Value(Bot(v.w))
	for k := lo; k <= hi; k++ {
		shifted := bitnum.New(v.a, v.w).Shl(k)
		shifted2 := bitnum.New(v.b, v.w).Shl(k)
		acc = acc.Join(newRange(shifted.ZExtLongValue(), shifted2.ZExtLongValue(), v.w))
	}
	return acc
}

func (v Value) Shr(amountV domain.Value) domain.Value {
	return v.shiftGeneric(amountV, bitnum.BitNumber.Shr)
}

func (v Value) Sar(amountV domain.Value) domain.Value {
	return v.shiftGeneric(amountV, bitnum.BitNumber.Sar)
}

func (v Value) shiftGeneric(amountV domain.Value, op func(bitnum.BitNumber, uint64) bitnum.BitNumber) domain.Value {
	amt := amountV.(Value)
	if v.kind == kBot || amt.kind == kBot {
		return Bot(v.w)
	}
	if v.kind == kTop {
		return Top(v.w)
	}
	if amt.HasUniqueConcretization() {
		k := amt.GetUniqueConcretization()
		lo := op(bitnum.New(v.a, v.w), k).ZExtLongValue()
		hi := op(bitnum.New(v.b, v.w), k).ZExtLongValue()
		return newRange(lo, hi, v.w)
	}
	lo, hi := shiftRange(amt, v.w)
	acc := domain.Value(Bot(v.w))
	for k := lo; k <= hi; k++ {
		r1 := op(bitnum.New(v.a, v.w), k).ZExtLongValue()
		r2 := op(bitnum.New(v.b, v.w), k).ZExtLongValue()
		acc = acc.Join(newRange(r1, r2, v.w))
	}
	return acc
}

// shiftRange returns the [lo,hi] unsigned range of a shift-amount operand,
// clamped to [0,w] (spec §4.4).
func shiftRange(amt Value, w uint8) (lo, hi uint64) {
	if amt.kind != kRange {
		return 0, uint64(w)
	}
	lo, hi = amt.a, amt.b
	if amt.a > amt.b { // wrapped: conservatively take the whole non-negative span
		lo, hi = 0, uint64(w)
	}
	if hi > uint64(w) {
		hi = uint64(w)
	}
	if lo > hi {
		lo = 0
	}
	return lo, hi
}

// --- Width changes ---

func (v Value) Truncate(w2 uint8) domain.Value {
	switch v.kind {
	case kBot:
		return Bot(w2)
	case kTop:
		return Top(w2)
	default:
		// A span of 2^w2 or more values covers every w2-bit residue, so
		// truncating it gives Top; a shorter span truncates exactly to
		// [a&mask, b&mask], wrapping where the low bits wrap.
		if w2 < v.w && (v.b-v.a)&mask(v.w) >= mask(w2) {
			return Top(w2)
		}
		return newRange(v.a&mask(w2), v.b&mask(w2), w2)
	}
}

func (v Value) SignExtendTo(to uint8) domain.Value { return v.SignExtend(v.w, to) }
func (v Value) ZeroExtendTo(to uint8) domain.Value { return v.ZeroExtend(v.w, to) }

func (v Value) SignExtend(from, to uint8) domain.Value {
	switch v.kind {
	case kBot:
		return Bot(to)
	case kTop:
		if from == v.w {
			// Top at width `from`'s sign-extension is exactly the union of
			// the nonneg and neg halves sign-extended, which is simply Top
			// at the new width restricted to... no narrower claim can be
			// made than Top.
			return Top(to)
		}
		return Top(to)
	default:
		lo := bitnum.New(v.a, from).SExtend(to).ZExtLongValue()
		hi := bitnum.New(v.b, from).SExtend(to).ZExtLongValue()
		return newRange(lo, hi, to)
	}
}

func (v Value) ZeroExtend(from, to uint8) domain.Value {
	switch v.kind {
	case kBot:
		return Bot(to)
	case kTop:
		return Top(to)
	default:
		lo := bitnum.New(v.a, from).ZExtend(to).ZExtLongValue()
		hi := bitnum.New(v.b, from).ZExtend(to).ZExtLongValue()
		return newRange(lo, hi, to)
	}
}

// --- Comparisons ---

func boolResult(t, f bool) Value {
	switch {
	case t && !f:
		return Single(1, 1)
	case f && !t:
		return Single(0, 1)
	default:
		return Top(1)
	}
}

func (v Value) Eq(otherV domain.Value) domain.Value {
	o := otherV.(Value)
	requireWidth("Eq", v, o)
	if v.kind == kBot || o.kind == kBot {
		return Bot(1)
	}
	if v.HasUniqueConcretization() && o.HasUniqueConcretization() {
		return boolResult(v.a == o.a, v.a != o.a)
	}
	canTrue := !disjoint(v, o)
	canFalse := !(v.HasUniqueConcretization() && o.HasUniqueConcretization() && v.a == o.a)
	return boolResult(canTrue, canFalse)
}

func disjoint(a, b Value) bool {
	if a.kind == kTop || b.kind == kTop {
		return false
	}
	if a.kind == kBot || b.kind == kBot {
		return true
	}
	return !(a.contains(b.a) || a.contains(b.b) || b.contains(a.a))
}

func (v Value) cmp(otherV domain.Value, lt func(bitnum.BitNumber, bitnum.BitNumber) bool) Value {
	o := otherV.(Value)
	requireWidth("cmp", v, o)
	if v.kind == kBot || o.kind == kBot {
		return Bot(1)
	}
	if v.kind == kTop || o.kind == kTop {
		return Top(1)
	}
	// Determine the relation over the endpoint corners: if it agrees on
	// all four corners, the result is determined; otherwise both are
	// possible. That holds only when each operand's endpoints are its least
	// and greatest values in the compared order, so an operand that wraps
	// in that order (b before a) yields Top.
	for _, x := range []Value{v, o} {
		if x.a != x.b && !lt(bitnum.New(x.a, x.w), bitnum.New(x.b, x.w)) {
			return Top(1)
		}
	}
	corners := [][2]uint64{{v.a, o.a}, {v.a, o.b}, {v.b, o.a}, {v.b, o.b}}
	var sawTrue, sawFalse bool
	for _, c := range corners {
		r := lt(bitnum.New(c[0], v.w), bitnum.New(c[1], v.w))
		if r {
			sawTrue = true
		} else {
			sawFalse = true
		}
	}
	return boolResult(sawTrue, sawFalse)
}

func (v Value) SignedLessThan(o domain.Value) domain.Value {
	return v.cmp(o, bitnum.BitNumber.Slt)
}
func (v Value) SignedLessThanOrEqual(o domain.Value) domain.Value {
	return v.cmp(o, bitnum.BitNumber.Sleq)
}
func (v Value) UnsignedLessThan(o domain.Value) domain.Value {
	return v.cmp(o, bitnum.BitNumber.Ult)
}
func (v Value) UnsignedLessThanOrEqual(o domain.Value) domain.Value {
	return v.cmp(o, bitnum.BitNumber.Uleq)
}

// --- Assumptions ---

// AssumeULeq narrows (v, other) under "v <= other" (unsigned), per spec
// §4.4: intersect v with [0, other.b] and other with [v.a, 2^w-1].
func (v Value) AssumeULeq(otherV domain.Value) (domain.Value, domain.Value) {
	o := otherV.(Value)
	requireWidth("AssumeULeq", v, o)
	if v.kind == kBot || o.kind == kBot {
		return Bot(v.w), Bot(v.w)
	}
	m := mask(v.w)
	var oHi uint64 = m
	if o.kind == kRange {
		oHi = o.b
	}
	var vLo uint64 = 0
	if v.kind == kRange {
		vLo = v.a
	}
	narrowedV := v.Meet(newRange(0, oHi, v.w))
	narrowedO := o.Meet(newRange(vLo, m, v.w))
	return narrowedV, narrowedO
}

// AssumeSLeq narrows under the signed "v <= other" relation by shifting
// into unsigned space (XOR with the sign bit), delegating to AssumeULeq,
// then shifting back.
func (v Value) AssumeSLeq(otherV domain.Value) (domain.Value, domain.Value) {
	o := otherV.(Value)
	requireWidth("AssumeSLeq", v, o)
	signBit := uint64(1) << (v.w - 1)
	flip := func(x Value) Value {
		switch x.kind {
		case kRange:
			return newRange(x.a^signBit, x.b^signBit, x.w)
		default:
			return x
		}
	}
	vf, of := flip(v), flip(o)
	nv, no := vf.AssumeULeq(of)
	return flip(nv.(Value)), flip(no.(Value))
}

// Factory constructs wrapped-interval values, satisfying domain.Factory.
type Factory struct{}

var _ domain.Factory = Factory{}

func (Factory) Number(v uint64, w uint8) domain.Value { return Single(v, w) }
func (Factory) Top(w uint8) domain.Value              { return Top(w) }
func (Factory) Bot(w uint8) domain.Value              { return Bot(w) }
func (Factory) Interval(a, b uint64, w uint8) domain.Value {
	return newRange(a, b, w)
}

func (Factory) Joins(w uint8, vs []domain.Value) domain.Value {
	acc := domain.Value(Bot(w))
	for _, v := range vs {
		acc = acc.Join(v)
	}
	return acc
}
