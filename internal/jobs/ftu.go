package jobs

import (
	"github.com/dzeber/fxos-metrics/internal/mapred"
	"github.com/dzeber/fxos-metrics/internal/payload"
)

// FTUSchema lists the output tuple fields of the FTU formatting job, in
// order.
var FTUSchema = []string{
	"pingDate",
	"submissionDate",
	"os",
	"country",
	"product_model",
	"locale",
	"language",
	"update_channel",
	"update_channel_standardized",
	"platform_version",
	"platform_build_id",
	"icc.mcc",
	"icc.mnc",
	"icc.country",
	"icc.network",
	"icc.name",
	"network.mcc",
	"network.mnc",
	"network.country",
	"network.network",
	"network.name",
	"screenWidth",
	"screenHeight",
	"devicePixelRatio",
	"software",
	"hardware",
	"firmware_revision",
	"activationDate",
}

// FTUMapper builds the mapper for the FTU formatting job: each first-use
// ping becomes one schema-ordered tuple, with rejections and shaping
// diagnostics recorded as conditions.
func FTUMapper(shaper *payload.Shaper) mapred.Mapper {
	return func(rec mapred.InputRecord, emit *mapred.Context) {
		emit.IncrementCounter("records_read", "ftu", 1)

		raw, err := parseValue(rec.Value)
		if err != nil {
			emit.IncrementCounter("bad_payload", "ftu", 1)
			return
		}

		res, rej := shaper.ShapeFTU(raw, rec.Dims)
		if rej != nil {
			emit.WriteCondition(rej.Condition())
			return
		}
		for _, diag := range res.Diagnostics {
			emit.WriteCondition(diag)
		}
		emit.WriteDatum(res.Record.OrderedValues(FTUSchema)...)
	}
}
