package payload

import (
	"regexp"
	"time"

	"github.com/dzeber/fxos-metrics/internal/format"
	"github.com/dzeber/fxos-metrics/internal/lookup"
)

// Marker values every valid payload must carry in its info block.
const (
	appNameMarker  = "FirefoxOS"
	ReasonFTU      = "ftu"
	ReasonAppUsage = "appusage"
)

var submissionDateRe = regexp.MustCompile(`^[0-9]{8}$`)

// SubmissionDate extracts the server-side submission date from the job
// dimension list. The date sits at index 5 of a 6-element list as yyyymmdd;
// any other shape means the date is simply absent.
func SubmissionDate(dims []string) (string, bool) {
	if len(dims) != 6 {
		return "", false
	}
	sdate := dims[5]
	if !submissionDateRe.MatchString(sdate) {
		return "", false
	}
	return sdate, true
}

// Shaper turns parsed payloads into normalized flat records. All reference
// data and tuning constants are injected; a Shaper is safe for concurrent
// use.
type Shaper struct {
	Tables *lookup.Tables
	// ValidOS classifies formatted OS strings; see format.CompileValidOS.
	ValidOS *regexp.Regexp
	// EarliestPingDate is the oldest acceptable ping date. Pings dated
	// after "yesterday" in the server clock are also rejected.
	EarliestPingDate time.Time
	// Dogfood matches device IDs enrolled in the dogfood program.
	Dogfood *regexp.Regexp
	Now     func() time.Time
}

func (s *Shaper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// consistent verifies the payload's identity markers: the expected appName
// and ping reason, and agreement between the info block and the duplicated
// deviceinfo fields.
func consistent(raw Value, reason string) bool {
	info, ok := raw.Get("info")
	if !ok || info.Kind() != Object {
		return false
	}
	if text(info, "appName") != appNameMarker || text(info, "reason") != reason {
		return false
	}
	if ch, ok := raw.Get("deviceinfo.update_channel"); ok {
		if text(info, "appUpdateChannel") != ch.Text() {
			return false
		}
	}
	return text(info, "appVersion") == text(raw, "deviceinfo.platform_version") &&
		text(info, "appBuildID") == text(raw, "deviceinfo.platform_build_id")
}

func text(v Value, key string) string {
	field, ok := v.Get(key)
	if !ok {
		return ""
	}
	return field.Text()
}

// msToDate converts a millisecond epoch value (number or numeric string) to
// an ISO calendar date in UTC.
func msToDate(v Value) (string, bool) {
	ms, ok := v.Int()
	if !ok {
		return "", false
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02"), true
}

// pingDate converts and range-checks the payload's ping timestamp. The ping
// date anchors every count, so unlike other timestamps it must exist, parse,
// and fall between the earliest valid date and yesterday.
func (s *Shaper) pingDate(raw Value) (string, *format.Reject) {
	v, ok := raw.Get("pingTime")
	if !ok || v.IsNull() {
		return "", &format.Reject{Reason: format.MissingField, Detail: "no ping time"}
	}
	ms, ok := v.Int()
	if !ok {
		return "", &format.Reject{Reason: format.InvalidFormat, Detail: "invalid ping time"}
	}
	day := time.UnixMilli(ms).UTC().Truncate(24 * time.Hour)
	yesterday := s.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	if day.Before(s.EarliestPingDate) || day.After(yesterday) {
		return "", &format.Reject{Reason: format.OutOfRange, Detail: "outside date range"}
	}
	return day.Format("2006-01-02"), nil
}

// mergeUpdateChannel reconciles the two update-channel fields. The
// client-side update_channel is the designated source; a disagreeing
// app.update.channel never overrides it, but the disagreement is surfaced as
// a diagnostic so it is not silently dropped.
func mergeUpdateChannel(rec Record) (diagnostic string) {
	alt, ok := rec["app.update.channel"]
	if !ok {
		return ""
	}
	delete(rec, "app.update.channel")
	preferred, havePreferred := rec["update_channel"]
	if !havePreferred {
		rec["update_channel"] = alt
		return ""
	}
	if preferred != alt {
		return "multiple channels: update_channel = " + rec.Text("update_channel") +
			", app.update.channel = " + textAny(alt)
	}
	return ""
}

func textAny(v any) string {
	r := Record{"v": v}
	return r.Text("v")
}

// normalizeFields applies the per-field normalizers shared by the FTU and AU
// shapers: OS and device formatting, country and language lookups, channel
// standardization, and the mobile-code resolutions stored alongside the raw
// codes.
func (s *Shaper) normalizeFields(rec Record) {
	if rec.Has("update_channel") {
		rec["update_channel_standardized"] = format.StandardChannel(rec.Text("update_channel"))
	}
	if rec.Has("os") {
		rec["os"] = format.FormatOS(rec.Text("os"))
	}
	if rec.Has("product_model") {
		rec["product_model"] = format.FormatDevice(rec.Text("product_model"))
	}
	if rec.Has("country") {
		rec["country"] = format.LookupCountry(rec.Text("country"), s.Tables)
	}
	if rec.Has("locale") {
		if lang, ok := format.Language(rec.Text("locale"), s.Tables); ok {
			rec["language"] = lang
		}
	}

	// Keep the original network codes, but record what they resolve to.
	for _, group := range []string{"icc", "network"} {
		mccKey := group + ".mcc"
		mncKey := group + ".mnc"
		if !rec.Has(mccKey) {
			continue
		}
		if country, ok := s.Tables.MobileCountry(rec.Text(mccKey)); ok {
			rec[group+".country"] = country
		}
		if rec.Has(mncKey) {
			if op, ok := s.Tables.MobileOperator(rec.Text(mccKey), rec.Text(mncKey)); ok {
				rec[group+".network"] = format.FormatOperator(op)
			}
		}
	}
	if rec.Has("icc.spn") {
		rec["icc.name"] = format.FormatOperator(rec.Text("icc.spn"))
	}
	if rec.Has("network.operator") {
		rec["network.name"] = format.FormatOperator(rec.Text("network.operator"))
	}
}

// Result carries a shaped record along with any soft diagnostics raised
// while shaping it.
type Result struct {
	Record      Record
	Diagnostics []string
}

// ShapeFTU shapes a first-time-use payload into a flat normalized record.
func (s *Shaper) ShapeFTU(raw Value, dims []string) (*Result, *format.Reject) {
	if !consistent(raw, ReasonFTU) {
		return nil, &format.Reject{Reason: format.Inconsistent}
	}

	rec, rej := flatten(raw, nil)
	if rej != nil {
		return nil, rej
	}

	pingDate, rej := s.pingDate(raw)
	if rej != nil {
		return nil, rej
	}
	rec["pingDate"] = pingDate
	delete(rec, "pingTime")

	if v, ok := raw.Get("activationTime"); ok {
		if date, ok := msToDate(v); ok {
			rec["activationDate"] = date
		}
		delete(rec, "activationTime")
	}
	if sdate, ok := SubmissionDate(dims); ok {
		if t, err := time.Parse("20060102", sdate); err == nil {
			rec["submissionDate"] = t.Format("2006-01-02")
		}
	}

	result := &Result{}
	if diag := mergeUpdateChannel(rec); diag != "" {
		result.Diagnostics = append(result.Diagnostics, diag)
	}
	s.normalizeFields(rec)
	applyHooks(rec)

	result.Record = rec
	return result, nil
}

// AUResult is the shaped form of an app-usage payload: the session info
// record plus the derived per-app and per-search rows.
type AUResult struct {
	DeviceID string
	Start    int64
	Stop     int64
	Dogfood  bool

	Info        Record
	Apps        []Record
	Searches    []Record
	Diagnostics []string
}

// auSkipKeys are handled structurally rather than flattened.
var auSkipKeys = map[string]bool{
	"apps":     true,
	"searches": true,
}

// ShapeAU shapes an app-usage payload: the flat info record keyed by
// (deviceID, start, stop), plus one row per (app, usage date) and one per
// (search provider, date).
func (s *Shaper) ShapeAU(raw Value, dims []string) (*AUResult, *format.Reject) {
	if !consistent(raw, ReasonAppUsage) {
		return nil, &format.Reject{Reason: format.Inconsistent}
	}

	rec, rej := flatten(raw, auSkipKeys)
	if rej != nil {
		return nil, rej
	}

	deviceID := rec.Text("deviceID")
	start, startOK := intField(rec, "start")
	stop, stopOK := intField(rec, "stop")
	if deviceID == "" || !startOK || !stopOK {
		return nil, &format.Reject{Reason: format.MissingField, Detail: "missing identifier"}
	}

	rec["startDate"] = time.UnixMilli(start).UTC().Format("2006-01-02")
	rec["stopDate"] = time.UnixMilli(stop).UTC().Format("2006-01-02")
	if sdate, ok := SubmissionDate(dims); ok {
		if t, err := time.Parse("20060102", sdate); err == nil {
			rec["submissionDate"] = t.Format("2006-01-02")
		}
	}

	result := &AUResult{
		DeviceID: deviceID,
		Start:    start,
		Stop:     stop,
		Dogfood:  s.Dogfood != nil && s.Dogfood.MatchString(deviceID),
	}

	if diag := mergeUpdateChannel(rec); diag != "" {
		result.Diagnostics = append(result.Diagnostics, diag)
	}
	s.normalizeFields(rec)
	applyHooks(rec)
	rec["dogfood"] = result.Dogfood

	result.Info = rec
	result.Apps = s.appRows(raw, deviceID, start, stop)
	result.Searches = s.searchRows(raw, deviceID, start, stop)
	return result, nil
}

func intField(rec Record, key string) (int64, bool) {
	v, ok := rec[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

// appRows expands the nested per-app usage section into flat rows keyed by
// (appURL, usage date).
func (s *Shaper) appRows(raw Value, deviceID string, start, stop int64) []Record {
	apps, ok := raw.Get("apps")
	if !ok || apps.Kind() != Object {
		return nil
	}
	var rows []Record
	for _, url := range apps.Keys() {
		byDate, _ := apps.Field(url)
		if byDate.Kind() != Object {
			continue
		}
		for _, date := range byDate.Keys() {
			usage, _ := byDate.Field(date)
			row := Record{
				"deviceID": deviceID,
				"start":    start,
				"stop":     stop,
				"appURL":   url,
				"date":     date,
			}
			for _, metric := range []string{"launches", "usageSec", "installs", "uninstalls"} {
				if v, ok := usage.Get(metric); ok {
					if n, ok := v.Int(); ok {
						row[metric] = n
					}
				}
			}
			if v, ok := usage.Get("activities"); ok {
				row["activities"] = v.Text()
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// searchRows expands the nested search-count section into flat rows keyed by
// (provider, date).
func (s *Shaper) searchRows(raw Value, deviceID string, start, stop int64) []Record {
	searches, ok := raw.Get("searches")
	if !ok || searches.Kind() != Object {
		return nil
	}
	var rows []Record
	for _, provider := range searches.Keys() {
		byDate, _ := searches.Field(provider)
		if byDate.Kind() != Object {
			continue
		}
		for _, date := range byDate.Keys() {
			count, _ := byDate.Field(date)
			n, ok := count.Int()
			if !ok {
				continue
			}
			rows = append(rows, Record{
				"deviceID": deviceID,
				"start":    start,
				"stop":     stop,
				"provider": provider,
				"date":     date,
				"searches": n,
			})
		}
	}
	return rows
}
