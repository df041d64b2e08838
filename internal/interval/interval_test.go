package interval

import (
	"testing"

	"github.com/jakstab-go/rtlabstract/internal/domain"
)

func TestJoinIdempotentAndCommutative(t *testing.T) {
	vals := []Value{
		Single(5, 8),
		Range(10, 20, 8),
		Range(250, 5, 8), // wraps
		Top(8),
		Bot(8),
	}
	for _, a := range vals {
		if got := a.Join(a); got != domain.Value(a) && !sameValue(got, a) {
			t.Errorf("Join not idempotent for %v: got %v", a, got)
		}
		for _, b := range vals {
			j1 := a.Join(b)
			j2 := b.Join(a)
			if !sameValue(j1, j2) {
				t.Errorf("Join not commutative: %v join %v = %v, %v join %v = %v", a, b, j1, b, a, j2)
			}
		}
	}
}

func sameValue(a, b domain.Value) bool {
	return a.(Value) == b.(Value)
}

func TestJoinWithTopAndBot(t *testing.T) {
	x := Range(3, 9, 8)
	if !Top(8).Join(x).IsTop() {
		t.Error("join with Top must be Top")
	}
	if got := Bot(8).Join(x); !sameValue(got, domain.Value(x)) {
		t.Error("join with Bot must return the other operand")
	}
}

func TestLatticeOrderBounds(t *testing.T) {
	x := Range(3, 9, 8)
	if !Bot(8).LessOrEqual(x) {
		t.Error("Bot <= x must hold")
	}
	if !domain.Value(x).LessOrEqual(Top(8)) {
		t.Error("x <= Top must hold")
	}
	if !x.LessOrEqual(x.Join(Range(20, 30, 8))) {
		t.Error("x <= join(x,y) must hold")
	}
}

func TestRangeCanonicalizesFullSpanToTop(t *testing.T) {
	// [1,0]_8 covers all 256 values (b-a+1 == 2^8), so it must collapse to Top.
	got := Range(1, 0, 8)
	if !got.IsTop() {
		t.Errorf("Range(1,0,8) = %v, want Top", got)
	}
}

func TestAddExampleFromSpec(t *testing.T) {
	// I([-2,2],8) + I([16,64],8) -> [14,66]_8
	a := Range(uint64(int64(-2))&0xFF, 2, 8)
	b := Range(16, 64, 8)
	got := a.Add(b).(Value)
	want := Range(14, 66, 8).(Value)
	if got != want {
		t.Errorf("Add = %v, want %v", got, want)
	}
}

func TestAddSaturatesToTopWhenSpanTooWide(t *testing.T) {
	a := Range(0, 200, 8)
	b := Range(0, 200, 8)
	got := a.Add(b)
	if !got.IsTop() {
		t.Errorf("Add of two wide ranges should saturate to Top, got %v", got)
	}
}

func TestAndWorstCaseGoesTop(t *testing.T) {
	a := Range(0xF0, 0x10, 8) // wraps, non-singleton
	b := Range(0, 0xFF, 8)
	got := a.And(b)
	if !got.IsTop() {
		t.Errorf("And of non-singleton wrapped operand should be Top, got %v", got)
	}
}

func TestAndSingletonIsExact(t *testing.T) {
	a := Single(0x0F, 8)
	b := Single(0xFF, 8)
	got := a.And(b).(Value)
	want := Single(0x0F, 8).(Value)
	if got != want {
		t.Errorf("And(0x0F,0xFF) = %v, want %v", got, want)
	}
}

func TestShlByRangeExample(t *testing.T) {
	// shl(S(1,32), [0,31]) -> [1, 0x80000000]_32
	one := Single(1, 32)
	amt := Range(0, 31, 32)
	got := one.Shl(amt).(Value)
	if got.a != 1 || got.b != 0x80000000 {
		t.Errorf("Shl([0,31]) on 1 = [0x%x,0x%x], want [1,0x80000000]", got.a, got.b)
	}
}

func TestEqExample(t *testing.T) {
	// eq(S(5,32), I([0,10],32)) -> TOP_1 (could be true or false)
	a := Single(5, 32)
	b := Range(0, 10, 32)
	got := a.Eq(b)
	if !got.IsTop() {
		t.Errorf("Eq(5, [0,10]) = %v, want TOP_1", got)
	}
}

func TestEqDisjointIsFalse(t *testing.T) {
	a := Single(5, 32)
	b := Range(10, 20, 32)
	got := a.Eq(b).(Value)
	if got.a != 0 || got.kind != kRange {
		t.Errorf("Eq(5,[10,20]) = %v, want FALSE_1", got)
	}
}

func TestSignedLessThanExample(t *testing.T) {
	// signedLessThan(S(-1,32), S(1,32)) -> TRUE
	negOne := Single(0xFFFFFFFF, 32)
	one := Single(1, 32)
	got := negOne.SignedLessThan(one).(Value)
	if got.a != 1 || got.kind != kRange {
		t.Errorf("SignedLessThan(-1,1) = %v, want TRUE_1", got)
	}
}

func TestMulDoubleCornerProducts(t *testing.T) {
	a := Range(2, 3, 8)
	b := Range(4, 5, 8)
	got := a.MulDouble(b).(Value)
	if got.w != 16 {
		t.Errorf("MulDouble width = %d, want 16", got.w)
	}
	if got.a != 8 || got.b != 15 {
		t.Errorf("MulDouble([2,3],[4,5]) = [%d,%d], want [8,15]", got.a, got.b)
	}
}

func TestDivByZeroIsBot(t *testing.T) {
	a := Single(10, 8)
	zero := Single(0, 8)
	got := a.UnsignedDiv(zero)
	if !got.IsBot() {
		t.Errorf("UnsignedDiv by zero singleton = %v, want Bot", got)
	}
}

func TestTruncateExactWhenFits(t *testing.T) {
	a := Range(0x10, 0x1F, 16)
	got := a.Truncate(8).(Value)
	if got.a != 0x10 || got.b != 0x1F || got.w != 8 {
		t.Errorf("Truncate = %v, want [0x10,0x1f]_8", got)
	}
}

func TestSignExtendNegative(t *testing.T) {
	negOne8 := Single(0xFF, 8)
	got := negOne8.SignExtendTo(32).(Value)
	if got.a != 0xFFFFFFFF {
		t.Errorf("SignExtend(-1, 8->32) = 0x%x, want 0xFFFFFFFF", got.a)
	}
}

func TestZeroExtendPositive(t *testing.T) {
	v := Single(0xFF, 8)
	got := v.ZeroExtendTo(32).(Value)
	if got.a != 0xFF {
		t.Errorf("ZeroExtend(0xFF, 8->32) = 0x%x, want 0xFF", got.a)
	}
}

func TestAssumeULeqNarrows(t *testing.T) {
	v := Range(0, 100, 8)
	o := Range(50, 200, 8)
	nv, no := v.AssumeULeq(o)
	nvv, nov := nv.(Value), no.(Value)
	if nvv.b > 200 {
		t.Errorf("narrowed v upper bound should not exceed other's max: got %v", nvv)
	}
	if nov.a < 0 {
		t.Errorf("narrowed other lower bound should not go below v's min: got %v", nov)
	}
}

func TestWidenTerminatesWithinBound(t *testing.T) {
	w := uint8(8)
	cur := Single(0, w)
	maxSteps := 2*int(w) + 2
	steps := 0
	for i := 1; i < 300 && steps < maxSteps+5; i++ {
		next := cur.Join(Single(uint64(i)%256, w))
		widened := cur.Widen(next)
		steps++
		if sameValue(widened, cur) {
			break
		}
		cur = widened.(Value)
	}
	if steps > maxSteps {
		t.Errorf("widen took %d steps, want <= %d", steps, maxSteps)
	}
}

func TestWidenStableWhenAlreadyContained(t *testing.T) {
	cur := Range(0, 100, 8)
	sub := Range(10, 20, 8)
	got := cur.Widen(sub)
	if !sameValue(got, domain.Value(cur)) {
		t.Errorf("Widen of an already-contained value should be stable, got %v", got)
	}
}

func TestFactorySatisfiesInterface(t *testing.T) {
	var f domain.Factory = Factory{}
	n := f.Number(7, 8)
	if !n.HasUniqueConcretization() || n.GetUniqueConcretization() != 7 {
		t.Errorf("Factory.Number(7,8) = %v", n)
	}
	if !f.Top(8).IsTop() {
		t.Error("Factory.Top must be Top")
	}
	if !f.Bot(8).IsBot() {
		t.Error("Factory.Bot must be Bot")
	}
	joined := f.Joins(8, []domain.Value{f.Number(1, 8), f.Number(2, 8)})
	if joined.HasElement(0) {
		t.Error("Joins of {1,2} should not contain 0 (unless over-approximated to Top, which would still be sound but imprecise here)")
	}
}
