package report

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jakstab-go/rtlabstract/internal/batch"
)

func TestWriteReadJSONRoundTrip(t *testing.T) {
	results := []batch.Result{
		{Label: "f1", Expression: "(PLUS (VAR x 32) (NUM 1 32))", Width: 32, Domain: "interval", Value: "[0x6,0x6]_32"},
		{Label: "f2", Expression: "(SPECIAL fpu 32)", Width: 32, Domain: "bdd", Value: "TOP_32", DegradedTop: true},
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, results); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if diff := cmp.Diff(results, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadJSONRejectsMalformed(t *testing.T) {
	_, err := ReadJSON(bytes.NewBufferString("not json"))
	if err == nil {
		t.Error("expected an error decoding malformed JSON")
	}
}
