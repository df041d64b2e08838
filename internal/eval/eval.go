// Package eval implements the recursive abstract expression evaluator
// (spec §4.7): a pure function from an RTL expression tree, a domain
// factory, and a valuation to a domain element.
//
// Grounded on the teacher's pkg/cpu/exec.go, whose Step function dispatches
// on a decoded instruction's mnemonic to mutate concrete CPU state; the
// same dispatch-by-tag shape is reused here, generalized from mutating one
// concrete machine to interpreting an RTL expression tree against an
// abstract domain, and from a single fixed state to any domain.Factory.
package eval

import (
	"fmt"

	"github.com/jakstab-go/rtlabstract/internal/actx"
	"github.com/jakstab-go/rtlabstract/internal/domain"
	"github.com/jakstab-go/rtlabstract/internal/region"
	"github.com/jakstab-go/rtlabstract/internal/rtl"
	"github.com/jakstab-go/rtlabstract/internal/valuation"
)

// Eval recursively interprets e against factory f and valuation s,
// returning a domain.Value of width e.Width. It is pure: it never mutates
// s, and requires no cache for correctness (spec §4.7's closing line).
func Eval(ctx *actx.Context, f domain.Factory, s *valuation.State, e *rtl.Expr) domain.Value {
	ctx.RecordEvaluation()
	switch e.Kind {
	case rtl.KNumber:
		return f.Number(e.NumberValue, e.Width)

	case rtl.KNondet:
		return f.Top(e.Width)

	case rtl.KVariable:
		v, _ := s.GetVariable(e.VarName)
		return v

	case rtl.KMemory:
		addr := Eval(ctx, f, s, e.Address)
		return evalMemory(ctx, f, s, addr, e.MemWidth)

	case rtl.KBitRange:
		return evalBitRange(ctx, f, s, e)

	case rtl.KConditional:
		return evalConditional(ctx, f, s, e)

	case rtl.KOperation:
		return evalOperation(ctx, f, s, e)

	case rtl.KSpecial:
		ctx.DegradeToTop("SPECIAL", e.SpecialTag)
		return f.Top(e.Width)

	default:
		ctx.DegradeToTop(e.Kind.String(), "unrecognized expression kind")
		return f.Top(e.Width)
	}
}

// evalMemory resolves a memory read. The address's region (if the domain
// exposes one, as internal/bdd's Value does) selects the partition;
// domains without a region-bearing representation read from the
// region.Global partition (see addressSingleton).
func evalMemory(ctx *actx.Context, f domain.Factory, s *valuation.State, addr domain.Value, width uint8) domain.Value {
	reg, offset, ok := addressSingleton(addr)
	if !ok {
		// Address isn't resolvable to a single (region, offset): no sound
		// single-cell read is possible, so the result is TOP. A fuller
		// implementation would join over every cell the address set can
		// name; internal/valuation.StoreWrite does this for writes, and a
		// symmetric StoreRead could be added the same way for reads of
		// small address sets.
		ctx.DegradeToTop("MEM", "address is not a unique concretization")
		return f.Top(width)
	}
	return s.GetMemory(valuation.MemLoc{Region: reg, Offset: offset, Width: width})
}

// regionCarrier is implemented by domain values that know their own memory
// region (internal/bdd.Value); domains like internal/interval that model
// plain arithmetic values don't implement it, and default to region.Global.
type regionCarrier interface {
	Region() region.Region
}

// addressSingleton reports the (region, offset) an address value names, if
// it is precise enough to name exactly one. A domain that doesn't carry
// its own region (e.g. a plain interval used for an absolute address
// constant) defaults to Global: a concrete numeric address with no
// symbolic region information is conventionally a static/global one.
func addressSingleton(addr domain.Value) (region.Region, uint64, bool) {
	if !addr.HasUniqueConcretization() {
		return region.Top, 0, false
	}
	if rc, ok := addr.(regionCarrier); ok {
		return rc.Region(), addr.GetUniqueConcretization(), true
	}
	return region.Global, addr.GetUniqueConcretization(), true
}

func evalBitRange(ctx *actx.Context, f domain.Factory, s *valuation.State, e *rtl.Expr) domain.Value {
	base := Eval(ctx, f, s, e.Base)
	width := e.Hi - e.Lo + 1
	baseW := e.Base.Width
	mask := f.Number((uint64(1)<<width)-1, baseW).Shl(f.Number(uint64(e.Lo), baseW))
	masked := base.And(mask)
	shifted := masked.Shr(f.Number(uint64(e.Lo), baseW))
	return shifted.Truncate(e.Width)
}

func evalConditional(ctx *actx.Context, f domain.Factory, s *valuation.State, e *rtl.Expr) domain.Value {
	cond := Eval(ctx, f, s, e.Cond)
	then := Eval(ctx, f, s, e.Then)
	els := Eval(ctx, f, s, e.Else)
	if cond.HasUniqueConcretization() {
		if cond.GetUniqueConcretization() == 1 {
			return then
		}
		return els
	}
	return then.Join(els)
}

// associativeOps are left-folded over their argument list per spec §4.7.
var associativeOps = map[rtl.Operator]bool{
	rtl.OpAnd: true, rtl.OpOr: true, rtl.OpXor: true, rtl.OpPlus: true, rtl.OpMul: true,
}

func evalOperation(ctx *actx.Context, f domain.Factory, s *valuation.State, e *rtl.Expr) domain.Value {
	w := e.Width
	args := make([]domain.Value, len(e.Operands))
	for i, o := range e.Operands {
		args[i] = Eval(ctx, f, s, o)
	}

	castArg := func(v domain.Value, toW uint8) domain.Value {
		if v.Width() == toW {
			return v
		}
		if v.Width() < toW {
			return v.ZeroExtendTo(toW)
		}
		return v.Truncate(toW)
	}

	switch e.Op {
	case rtl.OpAnd, rtl.OpOr, rtl.OpXor, rtl.OpPlus:
		for i := range args {
			args[i] = castArg(args[i], w)
		}
		return foldAssociative(e.Op, args)

	case rtl.OpMul:
		// mulDouble folds at the doubled width throughout, truncating to
		// w only once at the end (DESIGN.md open question #2) — folding
		// at w and truncating after every step would silently discard
		// carry-out information intermediate products need.
		if len(args) == 0 {
			return f.Number(0, w)
		}
		acc := castArg(args[0], w)
		for _, arg := range args[1:] {
			acc = acc.MulDouble(castArg(arg, w))
			acc = acc.Truncate(w)
		}
		return acc

	case rtl.OpNot:
		return castArg(args[0], w).Not()
	case rtl.OpNeg:
		return castArg(args[0], w).Negate()

	case rtl.OpUDiv:
		return castArg(args[0], w).UnsignedDiv(castArg(args[1], w))
	case rtl.OpSDiv:
		return castArg(args[0], w).SignedDiv(castArg(args[1], w))
	case rtl.OpUMod:
		return castArg(args[0], w).UnsignedRem(castArg(args[1], w))
	case rtl.OpSMod:
		return castArg(args[0], w).SignedRem(castArg(args[1], w))

	case rtl.OpShr:
		return castArg(args[0], w).Shr(args[1].ZeroExtendTo(w))
	case rtl.OpSar:
		return castArg(args[0], w).Sar(args[1].ZeroExtendTo(w))
	case rtl.OpShl:
		return castArg(args[0], w).Shl(args[1].ZeroExtendTo(w))

	case rtl.OpRol:
		a := castArg(args[0], w)
		b := castArg(args[1], w)
		wMinusB := f.Number(uint64(w), w).Sub(b)
		return a.Shl(b).Or(a.Sar(wMinusB))
	case rtl.OpRor:
		a := castArg(args[0], w)
		b := castArg(args[1], w)
		wMinusB := f.Number(uint64(w), w).Sub(b)
		return a.Sar(b).Or(a.Shl(wMinusB))

	case rtl.OpCast:
		if !args[1].HasUniqueConcretization() {
			ctx.DegradeToTop("CAST", "target width is not a unique concrete")
			return f.Top(w)
		}
		// Width-aware (DESIGN.md open question #3): truncate when the target
		// width is at most the operand's, zero-extend when it is wider.
		to := uint8(args[1].GetUniqueConcretization())
		if to > args[0].Width() {
			return args[0].ZeroExtendTo(to)
		}
		return args[0].Truncate(to)

	case rtl.OpSignExtend, rtl.OpZeroFill:
		if !args[0].HasUniqueConcretization() || !args[1].HasUniqueConcretization() {
			ctx.DegradeToTop(e.Op.String(), "from/to width is not a unique concrete")
			return f.Top(w)
		}
		from := uint8(args[0].GetUniqueConcretization())
		to := uint8(args[1].GetUniqueConcretization())
		if e.Op == rtl.OpSignExtend {
			return args[2].SignExtend(from, to)
		}
		return args[2].ZeroExtend(from, to)

	case rtl.OpUnknown, rtl.OpFMul, rtl.OpFDiv, rtl.OpFSize, rtl.OpPowerOf, rtl.OpRolc, rtl.OpRorc:
		ctx.DegradeToTop(e.Op.String(), "operator not modeled")
		return f.Top(w)

	default:
		ctx.DegradeToTop(fmt.Sprintf("operator(%d)", e.Op), "unrecognized operator")
		return f.Top(w)
	}
}

// foldAssociative left-folds op over args (spec §4.7). The AND/OR/XOR/PLUS
// case: args[0] is the seed, each subsequent argument is combined into the
// accumulator in order (DESIGN.md open question #1 — the fold must
// combine the accumulator with each new argument, not accumulate against
// itself).
func foldAssociative(op rtl.Operator, args []domain.Value) domain.Value {
	acc := args[0]
	for _, arg := range args[1:] {
		switch op {
		case rtl.OpAnd:
			acc = acc.And(arg)
		case rtl.OpOr:
			acc = acc.Or(arg)
		case rtl.OpXor:
			acc = acc.Xor(arg)
		case rtl.OpPlus:
			acc = acc.Add(arg)
		}
	}
	return acc
}
