// Package mapred runs batch counting jobs over newline-delimited telemetry
// dumps. A job maps each input record to zero or more keyed counts, the
// counts are summed across a worker pool, and the merged totals are written
// out one key per line.
package mapred

import (
	"encoding/json"
	"fmt"
)

// Reserved first key elements separating bookkeeping rows from data rows in
// job output.
const (
	counterMarker   = "__counter__"
	conditionMarker = "__condition__"
)

// InputRecord is one line of a telemetry dump: the submission key, the job
// dimensions attached by the collection server, and the raw payload.
type InputRecord struct {
	Key   string          `json:"key"`
	Dims  []string        `json:"dims"`
	Value json.RawMessage `json:"value"`
}

// encodeKey renders a key tuple as its canonical line form.
func encodeKey(fields []string) (string, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("mapred: encoding key: %w", err)
	}
	return string(b), nil
}

// decodeKey parses the canonical line form back into a key tuple.
func decodeKey(s string) ([]string, error) {
	var fields []string
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, fmt.Errorf("mapred: decoding key %q: %w", s, err)
	}
	return fields, nil
}
