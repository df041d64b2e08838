// Package bdd implements the BDD-based set domain (spec §4.5): an abstract
// value is the characteristic function of a finite subset of {0,...,2^w-1},
// represented as a reduced, shared binary decision diagram over the value's
// w bits (variable order: bit w-1 down to bit 0, MSB first).
//
// Grounded on the teacher's pkg/search/fingerprint.go idiom of canonicalizing
// structured values through a hash-consed table before comparing them, here
// generalized from a flat fingerprint map to a proper shared node table:
// nodes are hash-consed by (variable, low-id, high-id) through xxhash so
// that structurally identical sub-functions always collapse to the same
// *node, making pointer equality a sound equality test and apply/reduce
// cheap to memoize. The explicit-enumeration fast path (used by arithmetic,
// which a bare boolean-function representation can't do natively) is backed
// by github.com/bits-and-blooms/bitset, bounded by Config.ExplicitThreshold.
package bdd

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"

	"github.com/jakstab-go/rtlabstract/internal/bitnum"
	"github.com/jakstab-go/rtlabstract/internal/domain"
	"github.com/jakstab-go/rtlabstract/internal/region"
)

// Config bounds how far this domain goes before giving up precision for
// tractability (spec §4.5 / §6): ExplicitThreshold caps how many concrete
// elements an operation will enumerate before falling back to a coarser
// result. HeapThreshold is carried alongside it (and set by the CLI's
// --heap-threshold flag), but no operation in this module reads it.
type Config struct {
	ExplicitThreshold int
	HeapThreshold     int
}

// DefaultConfig matches SPEC_FULL.md §6's defaults.
var DefaultConfig = Config{ExplicitThreshold: 5, HeapThreshold: 5}

const terminalVar = 255

type node struct {
	id       uint32
	v        uint8
	terminal bool
	val      bool
	low      *node
	high     *node
}

var (
	zeroTerminal = &node{id: 0, v: terminalVar, terminal: true, val: false}
	oneTerminal  = &node{id: 1, v: terminalVar, terminal: true, val: true}
)

type manager struct {
	mu     sync.Mutex
	table  map[uint64]*node
	nextID uint32
}

var mgr = &manager{table: make(map[uint64]*node), nextID: 2}

func nodeKey(v uint8, lowID, highID uint32) uint64 {
	var buf [9]byte
	binary.LittleEndian.PutUint32(buf[0:4], lowID)
	binary.LittleEndian.PutUint32(buf[4:8], highID)
	buf[8] = v
	return xxhash.Sum64(buf[:])
}

// getNode returns the canonical shared node for (v, low, high), applying
// the BDD reduction rule (a node whose two children are identical is
// redundant and collapses to that child).
func getNode(v uint8, low, high *node) *node {
	if low == high {
		return low
	}
	key := nodeKey(v, low.id, high.id)
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if n, ok := mgr.table[key]; ok && n.v == v && n.low == low && n.high == high {
		return n
	}
	n := &node{id: mgr.nextID, v: v, low: low, high: high}
	mgr.nextID++
	mgr.table[key] = n
	return n
}

// buildSingleton constructs the membership function for exactly x at width
// w, as a diagonal chain of length w: at each bit, the branch matching x's
// bit continues the chain, the other branch goes straight to false.
func buildSingleton(bitIndex uint8, x uint64, w uint8) *node {
	if bitIndex == w {
		return oneTerminal
	}
	pos := w - 1 - bitIndex
	rest := buildSingleton(bitIndex+1, x, w)
	if (x>>pos)&1 == 1 {
		return getNode(bitIndex, zeroTerminal, rest)
	}
	return getNode(bitIndex, rest, zeroTerminal)
}

type opKind uint8

const (
	opAnd opKind = iota
	opOr
	opXor
)

func apply(op opKind, f, g *node, memo map[[2]*node]*node) *node {
	if f.terminal && g.terminal {
		var r bool
		switch op {
		case opAnd:
			r = f.val && g.val
		case opOr:
			r = f.val || g.val
		default:
			r = f.val != g.val
		}
		if r {
			return oneTerminal
		}
		return zeroTerminal
	}
	// Short-circuit absorbing terminals.
	if op == opAnd {
		if f == zeroTerminal || g == zeroTerminal {
			return zeroTerminal
		}
		if f == oneTerminal {
			return g
		}
		if g == oneTerminal {
			return f
		}
	}
	if op == opOr {
		if f == oneTerminal || g == oneTerminal {
			return oneTerminal
		}
		if f == zeroTerminal {
			return g
		}
		if g == zeroTerminal {
			return f
		}
	}

	key := [2]*node{f, g}
	if r, ok := memo[key]; ok {
		return r
	}

	topVar := f.v
	if g.v < topVar {
		topVar = g.v
	}
	lowF, highF := f, f
	if f.v == topVar {
		lowF, highF = f.low, f.high
	}
	lowG, highG := g, g
	if g.v == topVar {
		lowG, highG = g.low, g.high
	}
	r := getNode(topVar, apply(op, lowF, lowG, memo), apply(op, highF, highG, memo))
	memo[key] = r
	return r
}

func negate(f *node, memo map[*node]*node) *node {
	if f == zeroTerminal {
		return oneTerminal
	}
	if f == oneTerminal {
		return zeroTerminal
	}
	if r, ok := memo[f]; ok {
		return r
	}
	r := getNode(f.v, negate(f.low, memo), negate(f.high, memo))
	memo[f] = r
	return r
}

// countSat counts satisfying assignments from `level` down to w-1, treating
// any variable strictly below f.v as "don't care" (contributes a factor of
// two per skipped level, per standard reduced-BDD counting).
func countSat(f *node, level, w uint8) uint64 {
	if f == zeroTerminal {
		return 0
	}
	if f == oneTerminal {
		return uint64(1) << (w - level)
	}
	if f.v > level {
		return 2 * countSat(f, level+1, w)
	}
	return countSat(f.low, level+1, w) + countSat(f.high, level+1, w)
}

// enumerate walks the BDD collecting concrete members, stopping (with
// ok=false) once more than limit elements have been found.
func enumerate(f *node, w, limit int) (*bitset.BitSet, bool) {
	bs := bitset.New(uint(1) << uint(min(w, 20)))
	count := 0
	var walk func(n *node, level uint8, prefix uint64) bool
	walk = func(n *node, level uint8, prefix uint64) bool {
		if n == zeroTerminal {
			return true
		}
		if int(level) == w {
			if n == oneTerminal {
				count++
				if count > limit {
					return false
				}
				bs.Set(uint(prefix))
			}
			return true
		}
		if n == oneTerminal || n.v > level {
			// don't-care bit: branch on both 0 and 1
			if !walk(n, level+1, prefix<<1) {
				return false
			}
			return walk(n, level+1, prefix<<1|1)
		}
		if !walk(n.low, level+1, prefix<<1) {
			return false
		}
		return walk(n.high, level+1, prefix<<1|1)
	}
	if !walk(f, 0, 0) {
		return nil, false
	}
	return bs, true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// --- Value ---

// Value is a finite subset of {0,...,2^w-1} represented as a BDD, paired
// with an optional memory region tag (spec §4.5/§4.6). A plain numeric
// domain value has region.Top; this domain is the one place region
// actually interacts with lattice operations (via WithRegion/Region and
// the joinRegion rule inside Join), which is why Value exposes them directly rather than through
// the shared domain.Value contract (see internal/domain's package doc).
type Value struct {
	w   uint8
	n   *node
	reg region.Region
	cfg Config
}

var _ domain.Value = Value{}

func newValue(w uint8, n *node, reg region.Region, cfg Config) Value {
	return Value{w: w, n: n, reg: reg, cfg: cfg}
}

// Bot returns the empty set at width w.
func Bot(w uint8) Value { return newValue(w, zeroTerminal, region.Top, DefaultConfig) }

// Top returns the full set {0,...,2^w-1} at width w.
func Top(w uint8) Value { return newValue(w, oneTerminal, region.Top, DefaultConfig) }

// Single returns the singleton set {v} at width w.
func Single(v uint64, w uint8) Value {
	return newValue(w, buildSingleton(0, v&maskFor(w), w), region.Top, DefaultConfig)
}

// Set returns the set containing exactly the given elements at width w.
// The construction is always exact, whatever the element count; the
// result carries DefaultConfig, whose ExplicitThreshold only governs later
// enumeration-based operations.
func Set(w uint8, elements ...uint64) Value {
	n := zeroTerminal
	memo := map[[2]*node]*node{}
	for _, e := range elements {
		n = apply(opOr, n, buildSingleton(0, e&maskFor(w), w), memo)
	}
	return newValue(w, n, region.Top, DefaultConfig)
}

func maskFor(w uint8) uint64 {
	if w == 64 {
		return ^uint64(0)
	}
	return (uint64(1) << w) - 1
}

func (v Value) Width() uint8 { return v.w }

func (v Value) Region() region.Region { return v.reg }

// WithRegion returns v tagged with the given region.
func (v Value) WithRegion(r region.Region) Value {
	return newValue(v.w, v.n, r, v.cfg)
}

// WithConfig returns v governed by the given thresholds.
func (v Value) WithConfig(cfg Config) Value {
	return newValue(v.w, v.n, v.reg, cfg)
}

func (v Value) IsBot() bool { return v.n == zeroTerminal }
func (v Value) IsTop() bool { return v.n == oneTerminal }

func (v Value) cardinality() uint64 {
	if v.w == 0 {
		return 0
	}
	return countSat(v.n, 0, v.w)
}

func (v Value) HasElement(x uint64) bool {
	x &= maskFor(v.w)
	n := v.n
	for level := uint8(0); level < v.w; level++ {
		if n == oneTerminal {
			return true
		}
		if n == zeroTerminal {
			return false
		}
		pos := v.w - 1 - level
		bit := (x >> pos) & 1
		if n.v > level {
			continue
		}
		if bit == 1 {
			n = n.high
		} else {
			n = n.low
		}
	}
	return n == oneTerminal
}

func (v Value) HasUniqueConcretization() bool {
	return v.cardinality() == 1
}

func (v Value) GetUniqueConcretization() uint64 {
	bs, ok := enumerate(v.n, int(v.w), 1)
	if !ok || bs.Count() != 1 {
		panic(bitnum.Precondition{Op: "GetUniqueConcretization", Detail: "not a singleton"})
	}
	idx, _ := bs.NextSet(0)
	return uint64(idx)
}

// Elements returns the concrete members of v if its cardinality is within
// the explicit-enumeration threshold, else ok=false. Exported for callers
// (such as internal/valuation's store-write rule) that need to enumerate
// an address set themselves rather than go through a domain.Value-level
// operation.
func (v Value) Elements() ([]uint64, bool) { return v.elements() }

// elements returns the concrete members of v if its cardinality is within
// the explicit-enumeration threshold, else ok=false.
func (v Value) elements() ([]uint64, bool) {
	bs, ok := enumerate(v.n, int(v.w), v.cfg.ExplicitThreshold)
	if !ok {
		return nil, false
	}
	var out []uint64
	for i, e := bs.NextSet(0); e; i, e = bs.NextSet(i + 1) {
		out = append(out, uint64(i))
	}
	return out, true
}

func (v Value) String() string {
	if v.IsBot() {
		return fmt.Sprintf("BOT_%d", v.w)
	}
	if v.IsTop() {
		return fmt.Sprintf("TOP_%d@%s", v.w, v.reg)
	}
	if els, ok := v.elements(); ok {
		return fmt.Sprintf("{%v}_%d@%s", els, v.w, v.reg)
	}
	return fmt.Sprintf("SET(card>%d)_%d@%s", v.cfg.ExplicitThreshold, v.w, v.reg)
}

// --- Lattice ---

// joinRegion pairs the operands' regions for Join: matching regions are
// kept (ok=true) and Join unions the sets; mismatched regions yield their
// region.Join, region.Top, with ok=false, and Join then returns Top at the
// operands' common width tagged with that region, since a set domain can
// no longer say which region its elements belong to once the two inputs
// disagree.
func joinRegion(a, b Value) (region.Region, bool) {
	if a.reg == b.reg {
		return a.reg, true
	}
	return region.Join(a.reg, b.reg), false
}

func (v Value) Join(otherV domain.Value) domain.Value {
	o := otherV.(Value)
	requireWidth(v, o)
	reg, exact := joinRegion(v, o)
	if !exact {
		return Top(v.w).WithRegion(reg)
	}
	memo := map[[2]*node]*node{}
	return newValue(v.w, apply(opOr, v.n, o.n, memo), reg, v.cfg)
}

func (v Value) Meet(otherV domain.Value) domain.Value {
	o := otherV.(Value)
	requireWidth(v, o)
	reg := v.reg
	if v.reg != o.reg {
		reg = region.Join(v.reg, o.reg)
	}
	memo := map[[2]*node]*node{}
	return newValue(v.w, apply(opAnd, v.n, o.n, memo), reg, v.cfg)
}

// Widen for a finite-powerset domain over a bounded universe (2^w
// elements) needs no extrapolation: the lattice already has finite height
// (an ascending chain from Bot reaches Top after at most 2^w strict
// increases), so
// Widen is just Join.
func (v Value) Widen(otherV domain.Value) domain.Value { return v.Join(otherV) }

func (v Value) LessOrEqual(otherV domain.Value) bool {
	o := otherV.(Value)
	requireWidth(v, o)
	memo := map[[2]*node]*node{}
	negMemo := map[*node]*node{}
	diff := apply(opAnd, v.n, negate(o.n, negMemo), memo)
	return diff == zeroTerminal
}

func requireWidth(a, b Value) {
	if a.w != b.w {
		panic(bitnum.Precondition{Op: "bdd", Detail: fmt.Sprintf("width mismatch: %d vs %d", a.w, b.w)})
	}
}

// --- Arithmetic: exact via enumeration within the threshold, else Top ---

func (v Value) binaryOp(otherV domain.Value, resultW uint8, f func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool)) Value {
	o := otherV.(Value)
	if v.IsBot() || o.IsBot() {
		return Bot(resultW)
	}
	as, aok := v.elements()
	bs, bok := o.elements()
	if !aok || !bok {
		return Top(resultW)
	}
	n := zeroTerminal
	memo := map[[2]*node]*node{}
	for _, a := range as {
		for _, b := range bs {
			r, ok := f(bitnum.New(a, v.w), bitnum.New(b, v.w))
			if !ok {
				continue
			}
			n = apply(opOr, n, buildSingleton(0, r.ZExtLongValue()&maskFor(resultW), resultW), memo)
		}
	}
	if n == zeroTerminal {
		return Bot(resultW)
	}
	return newValue(resultW, n, region.Top, v.cfg)
}

func (v Value) Add(o domain.Value) domain.Value {
	return v.binaryOp(o, v.w, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) { return a.Add(b), true })
}
func (v Value) Sub(o domain.Value) domain.Value {
	return v.binaryOp(o, v.w, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) { return a.Sub(b), true })
}
func (v Value) Negate() domain.Value {
	return v.binaryOp(Single(0, v.w), v.w, func(a, _ bitnum.BitNumber) (bitnum.BitNumber, bool) { return a.Neg(), true })
}
func (v Value) MulDouble(otherV domain.Value) domain.Value {
	o := otherV.(Value)
	w2 := v.w * 2
	if v.w > 32 {
		w2 = 64
	}
	return v.binaryOp(o, w2, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) {
		az := bitnum.New(a.ZExtLongValue(), w2)
		bz := bitnum.New(b.ZExtLongValue(), w2)
		return az.Mul(bz), true
	})
}
func (v Value) SignedDiv(o domain.Value) domain.Value {
	return v.binaryOp(o, v.w, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) { r, err := a.SQuot(b); return r, err == nil })
}
func (v Value) UnsignedDiv(o domain.Value) domain.Value {
	return v.binaryOp(o, v.w, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) { r, err := a.UQuot(b); return r, err == nil })
}
func (v Value) SignedRem(o domain.Value) domain.Value {
	return v.binaryOp(o, v.w, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) { r, err := a.SRem(b); return r, err == nil })
}
func (v Value) UnsignedRem(o domain.Value) domain.Value {
	return v.binaryOp(o, v.w, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) { r, err := a.URem(b); return r, err == nil })
}

func (v Value) And(o domain.Value) domain.Value {
	return v.binaryOp(o, v.w, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) { return a.And(b), true })
}
func (v Value) Or(o domain.Value) domain.Value {
	return v.binaryOp(o, v.w, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) { return a.Or(b), true })
}
func (v Value) Xor(o domain.Value) domain.Value {
	return v.binaryOp(o, v.w, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) { return a.Xor(b), true })
}
func (v Value) Not() domain.Value {
	return v.binaryOp(Single(0, v.w), v.w, func(a, _ bitnum.BitNumber) (bitnum.BitNumber, bool) { return a.Not(), true })
}

func (v Value) Shl(o domain.Value) domain.Value {
	return v.binaryOp(o, v.w, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) { return a.Shl(b.ZExtLongValue()), true })
}
func (v Value) Shr(o domain.Value) domain.Value {
	return v.binaryOp(o, v.w, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) { return a.Shr(b.ZExtLongValue()), true })
}
func (v Value) Sar(o domain.Value) domain.Value {
	return v.binaryOp(o, v.w, func(a, b bitnum.BitNumber) (bitnum.BitNumber, bool) { return a.Sar(b.ZExtLongValue()), true })
}

// --- Width changes ---

func (v Value) Truncate(w2 uint8) domain.Value {
	if v.IsBot() {
		return Bot(w2)
	}
	els, ok := v.elements()
	if !ok {
		return Top(w2)
	}
	n := zeroTerminal
	memo := map[[2]*node]*node{}
	for _, e := range els {
		n = apply(opOr, n, buildSingleton(0, e&maskFor(w2), w2), memo)
	}
	return newValue(w2, n, v.reg, v.cfg)
}

func (v Value) extendWith(from, to uint8, op func(bitnum.BitNumber, uint8) bitnum.BitNumber) domain.Value {
	if v.IsBot() {
		return Bot(to)
	}
	els, ok := v.elements()
	if !ok {
		return Top(to)
	}
	n := zeroTerminal
	memo := map[[2]*node]*node{}
	for _, e := range els {
		r := op(bitnum.New(e, from), to)
		n = apply(opOr, n, buildSingleton(0, r.ZExtLongValue(), to), memo)
	}
	return newValue(to, n, v.reg, v.cfg)
}

func (v Value) SignExtend(from, to uint8) domain.Value {
	return v.extendWith(from, to, bitnum.BitNumber.SExtend)
}
func (v Value) SignExtendTo(to uint8) domain.Value { return v.SignExtend(v.w, to) }
func (v Value) ZeroExtend(from, to uint8) domain.Value {
	return v.extendWith(from, to, bitnum.BitNumber.ZExtend)
}
func (v Value) ZeroExtendTo(to uint8) domain.Value { return v.ZeroExtend(v.w, to) }

// --- Comparisons ---

func (v Value) cmp(otherV domain.Value, op func(bitnum.BitNumber, bitnum.BitNumber) bool) domain.Value {
	o := otherV.(Value)
	if v.IsBot() || o.IsBot() {
		return Bot(1)
	}
	as, aok := v.elements()
	bs, bok := o.elements()
	if !aok || !bok {
		return Top(1)
	}
	var sawTrue, sawFalse bool
	for _, a := range as {
		for _, b := range bs {
			if op(bitnum.New(a, v.w), bitnum.New(b, v.w)) {
				sawTrue = true
			} else {
				sawFalse = true
			}
		}
	}
	switch {
	case sawTrue && !sawFalse:
		return Single(1, 1)
	case sawFalse && !sawTrue:
		return Single(0, 1)
	default:
		return Top(1)
	}
}

func (v Value) Eq(o domain.Value) domain.Value { return v.cmp(o, bitnum.BitNumber.Equal) }
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
// A finite-set domain can narrow exactly by filtering, so these are more
// precise than the interval domain's circle-narrowing: keep only the
// elements consistent with some choice of the other operand.

func (v Value) AssumeULeq(otherV domain.Value) (domain.Value, domain.Value) {
	return v.assume(otherV, bitnum.BitNumber.Uleq)
}
func (v Value) AssumeSLeq(otherV domain.Value) (domain.Value, domain.Value) {
	return v.assume(otherV, bitnum.BitNumber.Sleq)
}

func (v Value) assume(otherV domain.Value, leq func(bitnum.BitNumber, bitnum.BitNumber) bool) (domain.Value, domain.Value) {
	o := otherV.(Value)
	as, aok := v.elements()
	bs, bok := o.elements()
	if !aok || !bok {
		return v, o // can't filter without enumerating; leave unchanged (sound)
	}
	var keepA, keepB []uint64
	for _, a := range as {
		for _, b := range bs {
			if leq(bitnum.New(a, v.w), bitnum.New(b, v.w)) {
				keepA = append(keepA, a)
				keepB = append(keepB, b)
			}
		}
	}
	if len(keepA) == 0 {
		return Bot(v.w), Bot(o.w)
	}
	return Set(v.w, keepA...).WithRegion(v.reg), Set(o.w, keepB...).WithRegion(o.reg)
}

// --- Factory ---

// Factory constructs BDD set-domain values, satisfying domain.Factory.
type Factory struct{ Config Config }

var _ domain.Factory = Factory{}

func (f Factory) cfg() Config {
	if f.Config == (Config{}) {
		return DefaultConfig
	}
	return f.Config
}

func (f Factory) Number(v uint64, w uint8) domain.Value { return Single(v, w).WithConfig(f.cfg()) }
func (f Factory) Top(w uint8) domain.Value              { return Top(w).WithConfig(f.cfg()) }
func (f Factory) Bot(w uint8) domain.Value              { return Bot(w).WithConfig(f.cfg()) }

func (f Factory) Interval(a, b uint64, w uint8) domain.Value {
	cfg := f.cfg()
	m := maskFor(w)
	span := ((b - a) & m) + 1
	if span > uint64(cfg.ExplicitThreshold) || span == 0 {
		return Top(w).WithConfig(cfg)
	}
	elems := make([]uint64, 0, span)
	for x := a; ; x = (x + 1) & m {
		elems = append(elems, x)
		if x == b {
			break
		}
	}
	return Set(w, elems...).WithConfig(cfg)
}

func (f Factory) Joins(w uint8, vs []domain.Value) domain.Value {
	acc := domain.Value(Bot(w).WithConfig(f.cfg()))
	for _, v := range vs {
		acc = acc.Join(v)
	}
	return acc
}
