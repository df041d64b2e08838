package rtl

import "testing"

func TestStringRoundTripsThroughParse(t *testing.T) {
	cases := []string{
		"(NUM 5 32)",
		"(VAR eax 32)",
		"(NONDET 16)",
		"(MEM (VAR esp 32) 32)",
		"(BITRANGE (VAR eax 32) 15 0)",
		"(IF (VAR zf 1) (NUM 1 32) (NUM 0 32))",
		"(PLUS (VAR eax 32) (NUM 5 32))",
		"(MUL (PLUS (VAR eax 32) (NUM 3 32)) (NUM 4 32))",
	}
	for _, text := range cases {
		e, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		rendered := e.String()
		e2, err := Parse(rendered)
		if err != nil {
			t.Fatalf("Parse(%q) rendered from %q: %v", rendered, text, err)
		}
		if e2.String() != rendered {
			t.Errorf("String() not stable: %q round-tripped to %q then %q", text, rendered, e2.String())
		}
	}
}

func TestStringOnNilExpr(t *testing.T) {
	var e *Expr
	if got := e.String(); got != "()" {
		t.Errorf("nil.String() = %q, want ()", got)
	}
}
