package bdd

import (
	"testing"

	"github.com/jakstab-go/rtlabstract/internal/domain"
	"github.com/jakstab-go/rtlabstract/internal/region"
)

func TestSingletonMembership(t *testing.T) {
	v := Single(5, 8)
	if !v.HasElement(5) {
		t.Error("singleton {5} must contain 5")
	}
	if v.HasElement(6) {
		t.Error("singleton {5} must not contain 6")
	}
	if !v.HasUniqueConcretization() || v.GetUniqueConcretization() != 5 {
		t.Errorf("GetUniqueConcretization = %d, want 5", v.GetUniqueConcretization())
	}
}

func TestJoinIsUnion(t *testing.T) {
	a := Single(1, 8)
	b := Single(2, 8)
	u := a.Join(b).(Value)
	if !u.HasElement(1) || !u.HasElement(2) {
		t.Errorf("union of {1} and {2} must contain both, got %v", u)
	}
	if u.HasElement(3) {
		t.Error("union of {1} and {2} must not contain 3")
	}
	els, ok := u.elements()
	if !ok || len(els) != 2 {
		t.Errorf("union cardinality = %v (ok=%v), want 2 elements", els, ok)
	}
}

func TestMeetIsIntersection(t *testing.T) {
	a := Set(8, 1, 2, 3)
	b := Set(8, 2, 3, 4)
	m := a.Meet(b).(Value)
	if m.HasElement(1) || m.HasElement(4) {
		t.Error("intersection must not contain elements unique to either side")
	}
	if !m.HasElement(2) || !m.HasElement(3) {
		t.Error("intersection must contain the shared elements")
	}
}

func TestDisjointMeetIsBot(t *testing.T) {
	a := Single(1, 8)
	b := Single(2, 8)
	if !a.Meet(b).IsBot() {
		t.Error("meet of disjoint singletons must be Bot")
	}
}

func TestLessOrEqualIsSubset(t *testing.T) {
	sub := Set(8, 1, 2)
	super := Set(8, 1, 2, 3)
	if !domain.Value(sub).LessOrEqual(super) {
		t.Error("{1,2} <= {1,2,3} must hold")
	}
	if domain.Value(super).LessOrEqual(sub) {
		t.Error("{1,2,3} <= {1,2} must not hold")
	}
}

func TestTopAbsorbsEverything(t *testing.T) {
	top := Top(8)
	v := Single(42, 8)
	if !v.Join(top).IsTop() {
		t.Error("join with Top must be Top")
	}
	if !top.HasElement(200) {
		t.Error("Top must contain every value")
	}
}

func TestAddViaEnumeration(t *testing.T) {
	a := Set(8, 1, 2)
	b := Set(8, 10, 20)
	got := a.Add(b).(Value)
	want := map[uint64]bool{11: true, 21: true, 12: true, 22: true}
	els, ok := got.elements()
	if !ok || len(els) != len(want) {
		t.Fatalf("Add result = %v, want 4 elements %v", els, want)
	}
	for _, e := range els {
		if !want[e] {
			t.Errorf("unexpected element %d in Add result", e)
		}
	}
}

func TestEqTopWhenAmbiguous(t *testing.T) {
	a := Single(5, 8)
	b := Set(8, 5, 6)
	got := a.Eq(b)
	if !got.IsTop() {
		t.Errorf("Eq(5,{5,6}) = %v, want TOP_1 (ambiguous)", got)
	}
}

func TestRegionMismatchPromotesToTop(t *testing.T) {
	a := Single(100, 32).WithRegion(region.Stack)
	b := Single(200, 32).WithRegion(region.Heap(0))
	joined := a.Join(b).(Value)
	if !joined.IsTop() {
		t.Errorf("join of mismatched regions must be Top, got %v", joined)
	}
}

func TestRegionMatchPreservesPrecision(t *testing.T) {
	a := Single(100, 32).WithRegion(region.Stack)
	b := Single(104, 32).WithRegion(region.Stack)
	joined := a.Join(b).(Value)
	if joined.IsTop() {
		t.Error("join of same-region singletons should stay precise, not saturate to Top")
	}
	if !joined.HasElement(100) || !joined.HasElement(104) {
		t.Error("joined set must contain both original elements")
	}
	if joined.Region() != region.Stack {
		t.Errorf("joined region = %v, want Stack", joined.Region())
	}
}

func TestAssumeULeqFiltersExactly(t *testing.T) {
	a := Set(8, 1, 5, 10)
	b := Set(8, 3, 8)
	na, nb := a.AssumeULeq(b)
	naE, _ := na.(Value).elements()
	nbE, _ := nb.(Value).elements()
	for _, e := range naE {
		if e == 10 {
			t.Error("10 is never <= any element of {3,8}, should be filtered out")
		}
	}
	if len(naE) == 0 || len(nbE) == 0 {
		t.Error("narrowing should not be empty here")
	}
}

func TestFactoryJoinsAndInterval(t *testing.T) {
	f := Factory{}
	iv := f.Interval(1, 3, 8).(Value)
	if !iv.HasElement(1) || !iv.HasElement(2) || !iv.HasElement(3) || iv.HasElement(4) {
		t.Errorf("Interval(1,3,8) = %v, want exactly {1,2,3}", iv)
	}
	joined := f.Joins(8, []domain.Value{f.Number(1, 8), f.Number(2, 8)}).(Value)
	if !joined.HasElement(1) || !joined.HasElement(2) {
		t.Error("Joins must union its inputs")
	}
}

func TestWidenIsJoinForFiniteLattice(t *testing.T) {
	a := Single(1, 8)
	b := Set(8, 1, 2, 3)
	w := a.Widen(b)
	j := a.Join(b)
	if w.(Value).n != j.(Value).n {
		t.Error("Widen should coincide with Join on this finite-height lattice")
	}
}
