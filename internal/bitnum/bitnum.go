// Package bitnum implements BitNumber, the fixed-width modular bitvector
// primitive every abstract domain in this module is built on (spec §4.1).
//
// Grounded on pkg/cpu/flags.go's overflow predicates, here computed
// directly rather than through lookup tables (math/bits for
// UMulOverflow, math/big for SMulOverflow), and on
// ajalab-go-z3/z3/bv.go's math/big-based AsBigSigned/AsBigUnsigned for the
// signed/unsigned conversions that back comparisons and division.
package bitnum

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
)

// ErrDivByZero is returned by the quotient/remainder operations when the
// divisor is zero. Per spec §4.1/§7 this is a DomainBot condition at the
// domain layer, not a panic — callers translate it into ⊥.
var ErrDivByZero = errors.New("bitnum: division by zero")

// ErrOverflow is returned by signed division/remainder when the dividend is
// sMinVal(w) and the divisor is -1 — the one case where two's complement
// signed division has no representable result.
var ErrOverflow = errors.New("bitnum: signed division overflow")

// Precondition is the panic value for width-mismatch and other usage errors
// that indicate a bug in the caller rather than a property of the abstract
// domain (spec §7: "PreconditionViolation ... signaled as a fatal assertion").
type Precondition struct {
	Op     string
	Detail string
}

func (p Precondition) Error() string {
	return fmt.Sprintf("bitnum: precondition violated in %s: %s", p.Op, p.Detail)
}

func fail(op, format string, args ...any) {
	panic(Precondition{Op: op, Detail: fmt.Sprintf(format, args...)})
}

// BitNumber is an unsigned payload masked to bitSize bits, 1..64. It is an
// immutable value type: every operation below returns a new BitNumber.
type BitNumber struct {
	val     uint64
	bitSize uint8
}

// TRUE and FALSE are the width-1 singletons used throughout the domain
// contract's comparison results.
var (
	TRUE  = New(1, 1)
	FALSE = New(0, 1)
)

// maskFor returns the bitmask for a width in 1..64.
func maskFor(w uint8) uint64 {
	if w == 64 {
		return ^uint64(0)
	}
	if w == 0 || w > 64 {
		fail("maskFor", "bitSize %d out of range [1,64]", w)
	}
	return (uint64(1) << w) - 1
}

// New constructs a BitNumber, masking val to bitSize bits.
func New(val uint64, bitSize uint8) BitNumber {
	return BitNumber{val: val & maskFor(bitSize), bitSize: bitSize}
}

// Width returns the bitvector's width.
func (b BitNumber) Width() uint8 { return b.bitSize }

// Mask returns the bitmask for b's width.
func (b BitNumber) Mask() uint64 { return maskFor(b.bitSize) }

// ZExtLongValue returns the unsigned (zero-extended to 64 bits) view.
func (b BitNumber) ZExtLongValue() uint64 { return b.val }

// SExtLongValue returns the signed (sign-extended to 64 bits) view.
func (b BitNumber) SExtLongValue() int64 {
	if b.bitSize == 64 {
		return int64(b.val)
	}
	signBit := uint64(1) << (b.bitSize - 1)
	if b.val&signBit != 0 {
		return int64(b.val | ^b.Mask())
	}
	return int64(b.val)
}

// String renders "0x<hex>:<width>" for debugging/logging/CLI output.
func (b BitNumber) String() string {
	return fmt.Sprintf("0x%x:%d", b.val, b.bitSize)
}

func requireSameWidth(op string, a, b BitNumber) {
	if a.bitSize != b.bitSize {
		fail(op, "width mismatch: %d vs %d", a.bitSize, b.bitSize)
	}
}

// --- Arithmetic (mod 2^w) ---

func (b BitNumber) Add(o BitNumber) BitNumber {
	requireSameWidth("Add", b, o)
	return New(b.val+o.val, b.bitSize)
}

func (b BitNumber) Sub(o BitNumber) BitNumber {
	requireSameWidth("Sub", b, o)
	return New(b.val-o.val, b.bitSize)
}

func (b BitNumber) Mul(o BitNumber) BitNumber {
	requireSameWidth("Mul", b, o)
	return New(b.val*o.val, b.bitSize)
}

func (b BitNumber) Neg() BitNumber {
	return New(-b.val, b.bitSize)
}

func (b BitNumber) Inc() BitNumber {
	return New(b.val+1, b.bitSize)
}

func (b BitNumber) Dec() BitNumber {
	return New(b.val-1, b.bitSize)
}

// sMinVal returns the most negative signed value representable at width w.
func sMinVal(w uint8) uint64 {
	if w == 64 {
		return uint64(1) << 63
	}
	return uint64(1) << (w - 1)
}

// UQuot is unsigned division; URem is unsigned remainder.
func (b BitNumber) UQuot(o BitNumber) (BitNumber, error) {
	requireSameWidth("UQuot", b, o)
	if o.val == 0 {
		return BitNumber{}, ErrDivByZero
	}
	return New(b.val/o.val, b.bitSize), nil
}

func (b BitNumber) URem(o BitNumber) (BitNumber, error) {
	requireSameWidth("URem", b, o)
	if o.val == 0 {
		return BitNumber{}, ErrDivByZero
	}
	return New(b.val%o.val, b.bitSize), nil
}

// SQuot is signed division over the sign-extended view; SRem is signed
// remainder. Both fail with ErrOverflow when dividing sMinVal(w) by -1.
func (b BitNumber) SQuot(o BitNumber) (BitNumber, error) {
	requireSameWidth("SQuot", b, o)
	if o.val == 0 {
		return BitNumber{}, ErrDivByZero
	}
	if b.val == sMinVal(b.bitSize) && o.SExtLongValue() == -1 {
		return BitNumber{}, ErrOverflow
	}
	q := b.SExtLongValue() / o.SExtLongValue()
	return New(uint64(q), b.bitSize), nil
}

func (b BitNumber) SRem(o BitNumber) (BitNumber, error) {
	requireSameWidth("SRem", b, o)
	if o.val == 0 {
		return BitNumber{}, ErrDivByZero
	}
	if b.val == sMinVal(b.bitSize) && o.SExtLongValue() == -1 {
		return BitNumber{}, ErrOverflow
	}
	r := b.SExtLongValue() % o.SExtLongValue()
	return New(uint64(r), b.bitSize), nil
}

// --- Bitwise ---

func (b BitNumber) And(o BitNumber) BitNumber {
	requireSameWidth("And", b, o)
	return New(b.val&o.val, b.bitSize)
}

func (b BitNumber) Or(o BitNumber) BitNumber {
	requireSameWidth("Or", b, o)
	return New(b.val|o.val, b.bitSize)
}

func (b BitNumber) Xor(o BitNumber) BitNumber {
	requireSameWidth("Xor", b, o)
	return New(b.val^o.val, b.bitSize)
}

func (b BitNumber) Not() BitNumber {
	return New(^b.val, b.bitSize)
}

// --- Shifts ---
// Shift amounts are always supplied as an already-nonnegative count (the
// evaluator zero-extends shift amounts before calling down into a domain,
// per spec §4.7); amounts >= width saturate per spec §4.1.

func (b BitNumber) Shl(amount uint64) BitNumber {
	if amount >= uint64(b.bitSize) {
		return New(0, b.bitSize)
	}
	return New(b.val<<amount, b.bitSize)
}

func (b BitNumber) Shr(amount uint64) BitNumber {
	if amount >= uint64(b.bitSize) {
		return New(0, b.bitSize)
	}
	return New(b.val>>amount, b.bitSize)
}

func (b BitNumber) Sar(amount uint64) BitNumber {
	w := uint64(b.bitSize)
	signed := b.SExtLongValue()
	if amount >= w {
		if signed < 0 {
			return New(maskFor(b.bitSize), b.bitSize) // all sign bits (1)
		}
		return New(0, b.bitSize) // all sign bits (0)
	}
	return New(uint64(signed>>amount), b.bitSize)
}

// --- Extensions ---

// Trunc narrows to a smaller (or equal) width; requires w' <= w.
func (b BitNumber) Trunc(w2 uint8) BitNumber {
	if w2 > b.bitSize {
		fail("Trunc", "target width %d exceeds source width %d", w2, b.bitSize)
	}
	return New(b.val, w2)
}

// ZExtend widens with zero fill; requires w' >= w.
func (b BitNumber) ZExtend(w2 uint8) BitNumber {
	if w2 < b.bitSize {
		fail("ZExtend", "target width %d smaller than source width %d", w2, b.bitSize)
	}
	return New(b.val, w2)
}

// SExtend widens with sign fill; requires w' >= w.
func (b BitNumber) SExtend(w2 uint8) BitNumber {
	if w2 < b.bitSize {
		fail("SExtend", "target width %d smaller than source width %d", w2, b.bitSize)
	}
	if w2 == b.bitSize {
		return b
	}
	signBit := uint64(1) << (b.bitSize - 1)
	if b.val&signBit == 0 {
		return New(b.val, w2)
	}
	// Fill bits [bitSize, w2) with 1.
	fill := (maskFor(w2) ^ b.Mask())
	return New(b.val|fill, w2)
}

// --- Comparisons ---
// Signed comparisons go through SExtLongValue (int64), never a naive
// unsigned `<` over val — that would be wrong for negative values at any
// width, including the w=64 case the spec calls out explicitly.

func (b BitNumber) Ult(o BitNumber) bool { requireSameWidth("Ult", b, o); return b.val < o.val }
func (b BitNumber) Ugt(o BitNumber) bool { requireSameWidth("Ugt", b, o); return b.val > o.val }
func (b BitNumber) Uleq(o BitNumber) bool {
	requireSameWidth("Uleq", b, o)
	return b.val <= o.val
}
func (b BitNumber) Ugeq(o BitNumber) bool {
	requireSameWidth("Ugeq", b, o)
	return b.val >= o.val
}

func (b BitNumber) Slt(o BitNumber) bool {
	requireSameWidth("Slt", b, o)
	return b.SExtLongValue() < o.SExtLongValue()
}
func (b BitNumber) Sgt(o BitNumber) bool {
	requireSameWidth("Sgt", b, o)
	return b.SExtLongValue() > o.SExtLongValue()
}
func (b BitNumber) Sleq(o BitNumber) bool {
	requireSameWidth("Sleq", b, o)
	return b.SExtLongValue() <= o.SExtLongValue()
}
func (b BitNumber) Sgeq(o BitNumber) bool {
	requireSameWidth("Sgeq", b, o)
	return b.SExtLongValue() >= o.SExtLongValue()
}

func (b BitNumber) Equal(o BitNumber) bool {
	return b.val == o.val && b.bitSize == o.bitSize
}

// --- Overflow predicates ---

// UMulOverflow reports whether b*o overflows the shared width under
// unsigned interpretation.
func (b BitNumber) UMulOverflow(o BitNumber) bool {
	requireSameWidth("UMulOverflow", b, o)
	hi, lo := bits.Mul64(b.val, o.val)
	if b.bitSize == 64 {
		return hi != 0
	}
	return hi != 0 || lo>>b.bitSize != 0
}

// SMulOverflow reports whether b*o overflows the shared width under signed
// interpretation. Computed via math/big, grounded on ajalab-go-z3/z3/bv.go's
// use of math/big for exact bitvector-width arithmetic.
func (b BitNumber) SMulOverflow(o BitNumber) bool {
	requireSameWidth("SMulOverflow", b, o)
	av := big.NewInt(b.SExtLongValue())
	bv := big.NewInt(o.SExtLongValue())
	product := new(big.Int).Mul(av, bv)

	w := uint(b.bitSize)
	max := new(big.Int).Lsh(big.NewInt(1), w-1)         // 2^(w-1)
	min := new(big.Int).Neg(max)                        // -2^(w-1)
	maxInclusive := new(big.Int).Sub(max, big.NewInt(1)) // 2^(w-1) - 1

	return product.Cmp(min) < 0 || product.Cmp(maxInclusive) > 0
}

// --- Special ---

// Log2n returns the exponent k such that val == 2^k, and ok=true, if val is
// a nonzero power of two; otherwise ok=false.
func (b BitNumber) Log2n() (k uint8, ok bool) {
	if b.val == 0 || b.val&(b.val-1) != 0 {
		return 0, false
	}
	return uint8(bits.TrailingZeros64(b.val)), true
}

// RelativeLeq tests whether c precedes d on the number-circle rooted at b,
// i.e. (c - b) <=u (d - b). Same width required for b, c, d.
func (b BitNumber) RelativeLeq(c, d BitNumber) bool {
	requireSameWidth("RelativeLeq", b, c)
	requireSameWidth("RelativeLeq", b, d)
	return c.Sub(b).Uleq(d.Sub(b))
}
