package jobs

import (
	"github.com/dzeber/fxos-metrics/internal/format"
	"github.com/dzeber/fxos-metrics/internal/mapred"
	"github.com/dzeber/fxos-metrics/internal/payload"
)

// ActivationsSchema lists the dimensions of the activation counting job.
// Every tuple is emitted together with all of its "All" rollups, so the
// output holds marginal totals for each dimension combination.
var ActivationsSchema = []string{"pingDate", "os", "country", "product_model"}

// ActivationsMapper builds the mapper for the activation counting job. Each
// valid first-use ping counts once under its summarized OS, country, and
// device dimensions.
func ActivationsMapper(shaper *payload.Shaper) mapred.Mapper {
	return func(rec mapred.InputRecord, emit *mapred.Context) {
		emit.IncrementCounter("records_read", "activations", 1)

		raw, err := parseValue(rec.Value)
		if err != nil {
			emit.IncrementCounter("bad_payload", "activations", 1)
			return
		}

		res, rej := shaper.ShapeFTU(raw, rec.Dims)
		if rej != nil {
			emit.WriteCondition(rej.Condition())
			return
		}
		shaped := res.Record

		// A ping without an OS version cannot be attributed to a release
		// and is rejected rather than counted under Other.
		osVal, osRej := format.OSVersion(shaped.StringPtr("os"), shaper.ValidOS)
		if osRej != nil {
			emit.WriteCondition(osRej.Condition())
			return
		}

		fields := []string{
			shaped.Text("pingDate"),
			osVal,
			format.Country(shaped.StringPtr("country"), shaper.Tables),
			format.DeviceName(shaped.StringPtr("product_model"), shaper.Tables),
		}
		emit.WriteExpanded(fields, 1)
	}
}
