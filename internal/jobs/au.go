package jobs

import (
	"github.com/dzeber/fxos-metrics/internal/mapred"
	"github.com/dzeber/fxos-metrics/internal/payload"
)

// AUInfoSchema lists the session tuple fields of the app-usage job, in
// order. The leading three identify the session; dogfood trails so the
// postprocessor can partition cohorts without counting columns.
var AUInfoSchema = []string{
	"deviceID",
	"start",
	"stop",
	"submissionDate",
	"startDate",
	"stopDate",
	"os",
	"country",
	"product_model",
	"language",
	"update_channel",
	"update_channel_standardized",
	"platform_version",
	"platform_build_id",
	"screenWidth",
	"screenHeight",
	"devicePixelRatio",
	"hardware",
	"firmware_revision",
	"dogfood",
}

// AUAppSchema lists the per-app usage tuple fields.
var AUAppSchema = []string{
	"deviceID",
	"start",
	"stop",
	"appURL",
	"date",
	"launches",
	"usageSec",
	"installs",
	"uninstalls",
	"activities",
}

// AUSearchSchema lists the per-search-provider tuple fields.
var AUSearchSchema = []string{
	"deviceID",
	"start",
	"stop",
	"provider",
	"date",
	"searches",
}

// AUMapper builds the mapper for the app-usage formatting job. Each payload
// yields one tagged info tuple plus tagged rows for its per-app usage and
// search counts.
func AUMapper(shaper *payload.Shaper) mapred.Mapper {
	return func(rec mapred.InputRecord, emit *mapred.Context) {
		emit.IncrementCounter("records_read", "appusage", 1)

		raw, err := parseValue(rec.Value)
		if err != nil {
			emit.IncrementCounter("bad_payload", "appusage", 1)
			return
		}

		res, rej := shaper.ShapeAU(raw, rec.Dims)
		if rej != nil {
			emit.WriteCondition(rej.Condition())
			return
		}
		for _, diag := range res.Diagnostics {
			emit.WriteCondition(diag)
		}

		emit.WriteTagged(TagInfo, res.Info.OrderedValues(AUInfoSchema)...)
		for _, app := range res.Apps {
			emit.WriteTagged(TagApp, app.OrderedValues(AUAppSchema)...)
		}
		for _, search := range res.Searches {
			emit.WriteTagged(TagSearch, search.OrderedValues(AUSearchSchema)...)
		}
	}
}
