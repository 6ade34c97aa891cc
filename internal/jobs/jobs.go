// Package jobs defines the counting jobs run over telemetry dumps: FTU
// record formatting, app-usage formatting, and activation counting. Each job
// is a mapred mapper plus the output schema its tuples follow.
package jobs

import (
	"encoding/json"

	"github.com/dzeber/fxos-metrics/internal/payload"
)

// Tags separating the row shapes interleaved in app-usage job output.
const (
	TagInfo   = "info"
	TagApp    = "app"
	TagSearch = "search"
)

// parseValue decodes a dump record's value field into a payload tree. Some
// dumps store the payload as a JSON string, others inline it as an object.
func parseValue(raw json.RawMessage) (payload.Value, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return payload.Value{}, err
		}
		return payload.Parse([]byte(s))
	}
	return payload.Parse(raw)
}
