package eval

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jakstab-go/rtlabstract/internal/bdd"
	"github.com/jakstab-go/rtlabstract/internal/domain"
	"github.com/jakstab-go/rtlabstract/internal/interval"
	"github.com/jakstab-go/rtlabstract/internal/region"
	"github.com/jakstab-go/rtlabstract/internal/rtl"
	"github.com/jakstab-go/rtlabstract/internal/valuation"
)

// TestSoundnessOverSmallWidths is spec §8 bullet 4's soundness property,
// restricted to widths small enough to exhaustively enumerate every
// concrete environment: for expr over a single free variable x at width w,
// the set of concrete results obtained by substituting every value of x
// must be a subset of the abstract result's concretization. Grounded in
// the retrieved dependency-manifest survey's use of go-cmp as the
// "assert two computed sets are equal" tool (DESIGN.md) — here used to
// diff "concrete values seen" against "concrete values the abstract result
// claims", reporting any concrete value the abstract evaluation fails to
// cover.
func TestSoundnessOverSmallWidths(t *testing.T) {
	exprs := []string{
		"(PLUS (VAR x 4) (NUM 3 4))",
		"(AND (VAR x 4) (NUM 12 4))",
		"(XOR (VAR x 3) (NUM 5 3))",
		"(MUL (VAR x 3) (NUM 2 3))",
		"(SHL (VAR x 4) (NUM 1 4))",
	}
	widths := map[string]uint8{
		"(PLUS (VAR x 4) (NUM 3 4))": 4,
		"(AND (VAR x 4) (NUM 12 4))": 4,
		"(XOR (VAR x 3) (NUM 5 3))":  3,
		"(MUL (VAR x 3) (NUM 2 3))":  3,
		"(SHL (VAR x 4) (NUM 1 4))":  4,
	}
	factories := map[string]domain.Factory{
		"interval": interval.Factory{},
		"bdd":      bdd.Factory{Config: bdd.DefaultConfig},
	}

	for _, exprText := range exprs {
		w := widths[exprText]
		e, err := rtl.Parse(exprText)
		if err != nil {
			t.Fatalf("parse %q: %v", exprText, err)
		}
		for domName, f := range factories {
			ctx := newTestCtx()
			s := valuation.New(f, valuation.DefaultX86RegisterTable())
			s.SetVariable(valuation.Var{Name: "x", Width: w}, f.Top(w), region.Top)
			abstractResult := Eval(ctx, f, s, e)

			var concreteValues []uint64
			for x := uint64(0); x < uint64(1)<<w; x++ {
				cs := valuation.New(f, valuation.DefaultX86RegisterTable())
				cs.SetVariable(valuation.Var{Name: "x", Width: w}, f.Number(x, w), region.Top)
				got := Eval(ctx, f, cs, e)
				if !got.HasUniqueConcretization() {
					t.Fatalf("%s/%s: concrete substitution x=%d did not yield a unique concretization", exprText, domName, x)
				}
				concreteValues = append(concreteValues, got.GetUniqueConcretization())
			}

			covered := make([]uint64, 0, len(concreteValues))
			for _, v := range concreteValues {
				if abstractResult.HasElement(v) {
					covered = append(covered, v)
				}
			}
			sort.Slice(concreteValues, func(i, j int) bool { return concreteValues[i] < concreteValues[j] })
			sort.Slice(covered, func(i, j int) bool { return covered[i] < covered[j] })

			if diff := cmp.Diff(concreteValues, covered); diff != "" {
				t.Errorf("%s/%s: abstract result %s does not cover every concrete value (-want +got):\n%s",
					exprText, domName, abstractResult, diff)
			}
		}
	}
}
