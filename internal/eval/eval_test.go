package eval

import (
	"bytes"
	"testing"

	"github.com/jakstab-go/rtlabstract/internal/actx"
	"github.com/jakstab-go/rtlabstract/internal/interval"
	"github.com/jakstab-go/rtlabstract/internal/region"
	"github.com/jakstab-go/rtlabstract/internal/rtl"
	"github.com/jakstab-go/rtlabstract/internal/valuation"
)

func newTestCtx() *actx.Context {
	return actx.New(&bytes.Buffer{})
}

func TestEvalArithmeticExpression(t *testing.T) {
	// (2+3)*4-5 at 32-bit -> S(15,32)
	ctx := newTestCtx()
	f := interval.Factory{}
	s := valuation.New(f, valuation.DefaultX86RegisterTable())

	e, err := rtl.Parse("(PLUS (MUL (PLUS (NUM 2 32) (NUM 3 32)) (NUM 4 32)) (NEG (NUM 5 32)))")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(ctx, f, s, e)
	if !got.HasUniqueConcretization() || got.GetUniqueConcretization() != 15 {
		t.Errorf("eval((2+3)*4-5) = %v, want S(15,32)", got)
	}
}

func TestEvalVariableLookup(t *testing.T) {
	ctx := newTestCtx()
	f := interval.Factory{}
	s := valuation.New(f, valuation.DefaultX86RegisterTable())
	s.SetVariable(valuation.Var{Name: "eax", Width: 32}, f.Number(42, 32), region.Top)

	e, err := rtl.Parse("(VAR eax 32)")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(ctx, f, s, e)
	if !got.HasUniqueConcretization() || got.GetUniqueConcretization() != 42 {
		t.Errorf("eval(eax) = %v, want S(42,32)", got)
	}
}

func TestEvalNondetIsTop(t *testing.T) {
	ctx := newTestCtx()
	f := interval.Factory{}
	s := valuation.New(f, valuation.DefaultX86RegisterTable())
	e, err := rtl.Parse("(NONDET 16)")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(ctx, f, s, e)
	if !got.IsTop() || got.Width() != 16 {
		t.Errorf("eval(nondet) = %v, want TOP_16", got)
	}
}

func TestEvalConditionalTakesUniqueBranch(t *testing.T) {
	ctx := newTestCtx()
	f := interval.Factory{}
	s := valuation.New(f, valuation.DefaultX86RegisterTable())
	s.SetVariable(valuation.Var{Name: "zf", Width: 1}, f.Number(1, 1), region.Top)

	e, err := rtl.Parse("(IF (VAR zf 1) (NUM 1 32) (NUM 0 32))")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(ctx, f, s, e)
	if !got.HasUniqueConcretization() || got.GetUniqueConcretization() != 1 {
		t.Errorf("eval(if zf then 1 else 0) = %v, want S(1,32)", got)
	}
}

func TestEvalConditionalJoinsWhenAmbiguous(t *testing.T) {
	ctx := newTestCtx()
	f := interval.Factory{}
	s := valuation.New(f, valuation.DefaultX86RegisterTable())
	// zf left unset => TOP_1, ambiguous.
	e, err := rtl.Parse("(IF (VAR zf 1) (NUM 1 32) (NUM 0 32))")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(ctx, f, s, e)
	if got.HasUniqueConcretization() {
		t.Errorf("eval(if <TOP> then 1 else 0) should join both branches, got singleton %v", got)
	}
	if !got.HasElement(0) || !got.HasElement(1) {
		t.Errorf("joined conditional should contain both 0 and 1, got %v", got)
	}
}

func TestEvalBitRangeExtraction(t *testing.T) {
	ctx := newTestCtx()
	f := interval.Factory{}
	s := valuation.New(f, valuation.DefaultX86RegisterTable())
	s.SetVariable(valuation.Var{Name: "eax", Width: 32}, f.Number(0xABCD1234, 32), region.Top)

	e, err := rtl.Parse("(BITRANGE (VAR eax 32) 15 0)")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(ctx, f, s, e)
	if !got.HasUniqueConcretization() || got.GetUniqueConcretization() != 0x1234 {
		t.Errorf("eval(eax[15:0]) = %v, want S(0x1234,16)", got)
	}
	if got.Width() != 16 {
		t.Errorf("bit-range width = %d, want 16", got.Width())
	}
}

func TestEvalCastTruncates(t *testing.T) {
	ctx := newTestCtx()
	f := interval.Factory{}
	s := valuation.New(f, valuation.DefaultX86RegisterTable())
	e, err := rtl.Parse("(CAST (NUM 0x1234 32) (NUM 8 8))")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(ctx, f, s, e)
	if !got.HasUniqueConcretization() || got.GetUniqueConcretization() != 0x34 {
		t.Errorf("eval(cast(0x1234,8)) = %v, want S(0x34,8)", got)
	}
}

func TestEvalSignExtend(t *testing.T) {
	ctx := newTestCtx()
	f := interval.Factory{}
	s := valuation.New(f, valuation.DefaultX86RegisterTable())
	e, err := rtl.Parse("(SIGN_EXTEND (NUM 8 8) (NUM 32 8) (NUM 0xFF 8))")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(ctx, f, s, e)
	if !got.HasUniqueConcretization() || got.GetUniqueConcretization() != 0xFFFFFFFF {
		t.Errorf("eval(sign_extend(0xFF,8->32)) = %v, want S(0xFFFFFFFF,32)", got)
	}
}

func TestEvalUnknownOperatorDegradesToTop(t *testing.T) {
	ctx := newTestCtx()
	f := interval.Factory{}
	s := valuation.New(f, valuation.DefaultX86RegisterTable())
	e, err := rtl.Parse("(FMUL (NUM 1 32) (NUM 2 32))")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(ctx, f, s, e)
	if !got.IsTop() {
		t.Errorf("eval(fmul) = %v, want TOP_32", got)
	}
	if ctx.Stats.TopDegradations.Load() == 0 {
		t.Error("expected at least one TOP degradation to be recorded")
	}
}

func TestEvalMemoryReadWrite(t *testing.T) {
	ctx := newTestCtx()
	f := interval.Factory{}
	s := valuation.New(f, valuation.DefaultX86RegisterTable())
	s.SetMemory(valuation.MemLoc{Region: region.Global, Offset: 0x1000, Width: 32}, f.Number(7, 32))

	e, err := rtl.Parse("(MEM (NUM 0x1000 32) 32)")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(ctx, f, s, e)
	if !got.HasUniqueConcretization() || got.GetUniqueConcretization() != 7 {
		t.Errorf("eval(mem[0x1000]) = %v, want S(7,32)", got)
	}
}

func TestEvalPlusEvaluatesBothOperands(t *testing.T) {
	ctx := newTestCtx()
	f := interval.Factory{}
	s := valuation.New(f, valuation.DefaultX86RegisterTable())
	var order []int
	s.SetVariable(valuation.Var{Name: "a", Width: 32}, f.Number(1, 32), region.Top)
	s.SetVariable(valuation.Var{Name: "b", Width: 32}, f.Number(2, 32), region.Top)
	// Evaluation order matters only for logging side effects (spec §5);
	// here we just confirm both operands get evaluated by checking the
	// result is the sum regardless, since the evaluator has no exposed
	// instrumentation hook beyond actx's logger.
	e, err := rtl.Parse("(PLUS (VAR a 32) (VAR b 32))")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(ctx, f, s, e)
	if !got.HasUniqueConcretization() || got.GetUniqueConcretization() != 3 {
		t.Errorf("eval(a+b) = %v, want S(3,32)", got)
	}
	_ = order
}
