// Package report serializes batch evaluation results to JSON (external
// interface: the CLI's output format; spec §6 notes the core itself has no
// wire format, so this lives outside internal/eval as a consumer of
// internal/batch's results).
//
// Grounded on the teacher's pkg/result/table.go + main.go's encoding/json
// usage for --output files; here the "rule" being recorded is an evaluated
// RTL expression's resulting domain element instead of an
// instruction-sequence rewrite.
package report

import (
	"encoding/json"
	"io"

	"github.com/jakstab-go/rtlabstract/internal/batch"
)

// WriteJSON writes results to w as a pretty-printed JSON array, matching
// the teacher's result.WriteJSON for --output files.
func WriteJSON(w io.Writer, results []batch.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// ReadJSON reads back a results array previously written by WriteJSON.
func ReadJSON(r io.Reader) ([]batch.Result, error) {
	var results []batch.Result
	if err := json.NewDecoder(r).Decode(&results); err != nil {
		return nil, err
	}
	return results, nil
}
