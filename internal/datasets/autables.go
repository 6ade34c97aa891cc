package datasets

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/dzeber/fxos-metrics/internal/jobs"
	"github.com/dzeber/fxos-metrics/internal/mapred"
	"github.com/dzeber/fxos-metrics/internal/reconcile"
)

// AUTables is the full set of published app-usage tables built from one
// job's output.
type AUTables struct {
	// Info holds reconciled general-cohort session rows (AUInfoSchema
	// order plus trailing count).
	Info [][]string
	// Apps and Searches hold detail rows for surviving general-cohort
	// sessions.
	Apps     [][]string
	Searches [][]string
	// Multiple holds every variant of sessions whose reports disagreed on
	// descriptive fields (same columns as Info). No winner is picked; the
	// variants are published for inspection.
	Multiple [][]string
	// DogfoodDetails summarizes each dogfood device; DogfoodApps
	// aggregates dogfood app usage by app and date.
	DogfoodDetails [][]string
	DogfoodApps    [][]string
	// Conditions carries the reconciler's per-cohort diagnostic counts.
	Conditions map[string]map[string]int64
}

// CSV column sets for the app-usage tables.
var (
	AUInfoHeaders   = append(append([]string{}, jobs.AUInfoSchema...), "count")
	AUAppHeaders    = jobs.AUAppSchema
	AUSearchHeaders = jobs.AUSearchSchema

	DogfoodDetailsHeaders = []string{
		"deviceID", "sessions", "earliestStart", "latestStop", "infoChanged",
	}
	DogfoodAppsHeaders = []string{
		"appURL", "date", "launches", "usageSec", "installs", "uninstalls",
	}
)

// BuildAUTables reconciles app-usage job output into the published tables.
func BuildAUTables(out *mapred.Output, toleranceMs int64) (*AUTables, error) {
	infoRows, err := parseInfoRows(out.TaggedRows(jobs.TagInfo))
	if err != nil {
		return nil, err
	}
	res := reconcile.Reconcile(infoRows, toleranceMs)

	tables := &AUTables{Conditions: res.Conditions}

	dogfoodSessions := make(map[reconcile.SessionKey]bool)
	for _, sess := range res.Sessions {
		if sess.Dogfood {
			dogfoodSessions[sess.Key()] = true
			continue
		}
		tables.Info = append(tables.Info, infoCSV(sess))
	}
	// Conflicted sessions from both cohorts land here and nowhere else.
	for _, variant := range res.Conflicts {
		tables.Multiple = append(tables.Multiple, infoCSV(variant))
	}

	appRows := out.TaggedRows(jobs.TagApp)
	searchRows := out.TaggedRows(jobs.TagSearch)

	var dogfoodApps []mapred.Row
	for _, row := range appRows {
		key, err := detailKey(row.Fields)
		if err != nil {
			return nil, err
		}
		if res.Suppressed[key] {
			continue
		}
		if dogfoodSessions[key] {
			dogfoodApps = append(dogfoodApps, row)
			continue
		}
		tables.Apps = append(tables.Apps, row.Fields)
	}
	for _, row := range searchRows {
		key, err := detailKey(row.Fields)
		if err != nil {
			return nil, err
		}
		if res.Suppressed[key] || dogfoodSessions[key] {
			continue
		}
		tables.Searches = append(tables.Searches, row.Fields)
	}

	tables.DogfoodDetails = dogfoodDetails(res.Sessions)
	tables.DogfoodApps = aggregateDogfoodApps(dogfoodApps)

	sortTable(tables.Info)
	sortTable(tables.Apps)
	sortTable(tables.Searches)
	sortTable(tables.Multiple)
	return tables, nil
}

// parseInfoRows converts tagged info tuples into reconciler rows.
func parseInfoRows(rows []mapred.Row) ([]reconcile.InfoRow, error) {
	idx := fieldIndex(jobs.AUInfoSchema)
	out := make([]reconcile.InfoRow, 0, len(rows))
	for _, row := range rows {
		if len(row.Fields) != len(jobs.AUInfoSchema) {
			return nil, fmt.Errorf("datasets: info tuple has %d fields, want %d", len(row.Fields), len(jobs.AUInfoSchema))
		}
		start, err := strconv.ParseInt(row.Fields[idx["start"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("datasets: bad session start: %w", err)
		}
		stop, err := strconv.ParseInt(row.Fields[idx["stop"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("datasets: bad session stop: %w", err)
		}
		out = append(out, reconcile.InfoRow{
			DeviceID:       row.Fields[idx["deviceID"]],
			Start:          start,
			Stop:           stop,
			SubmissionDate: row.Fields[idx["submissionDate"]],
			Payload:        append([]string{}, row.Fields[idx["startDate"]:]...),
			Dogfood:        row.Fields[idx["dogfood"]] == "true",
			Count:          row.Count,
		})
	}
	return out, nil
}

func infoCSV(sess reconcile.InfoRow) []string {
	record := make([]string, 0, len(jobs.AUInfoSchema)+1)
	record = append(record,
		sess.DeviceID,
		strconv.FormatInt(sess.Start, 10),
		strconv.FormatInt(sess.Stop, 10),
		sess.SubmissionDate,
	)
	record = append(record, sess.Payload...)
	record = append(record, strconv.FormatInt(sess.Count, 10))
	return record
}

// detailKey extracts the session identity from an app or search tuple, whose
// leading fields are deviceID, start, stop.
func detailKey(fields []string) (reconcile.SessionKey, error) {
	if len(fields) < 3 {
		return reconcile.SessionKey{}, fmt.Errorf("datasets: detail tuple too short")
	}
	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return reconcile.SessionKey{}, fmt.Errorf("datasets: bad detail start: %w", err)
	}
	stop, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return reconcile.SessionKey{}, fmt.Errorf("datasets: bad detail stop: %w", err)
	}
	return reconcile.SessionKey{DeviceID: fields[0], Start: start, Stop: stop}, nil
}

// dogfoodDetails summarizes each dogfood device's reconciled sessions:
// session count, covered date range, and whether the descriptive fields
// changed between sessions.
func dogfoodDetails(sessions []reconcile.InfoRow) [][]string {
	// The payload slice begins at the startDate column.
	const (
		startDateAt = 0
		stopDateAt  = 1
	)

	byDevice := make(map[string][]reconcile.InfoRow)
	for _, sess := range sessions {
		if sess.Dogfood {
			byDevice[sess.DeviceID] = append(byDevice[sess.DeviceID], sess)
		}
	}

	devices := lo.Keys(byDevice)
	sort.Strings(devices)

	var rows [][]string
	for _, device := range devices {
		group := byDevice[device]
		earliest, latest := "", ""
		changed := false
		for i, sess := range group {
			startDate := payloadField(sess, startDateAt)
			stopDate := payloadField(sess, stopDateAt)
			if earliest == "" || (startDate != "" && startDate < earliest) {
				earliest = startDate
			}
			if stopDate > latest {
				latest = stopDate
			}
			// Descriptive fields follow the date columns in the payload.
			if i > 0 && !sameDescriptive(group[0], sess) {
				changed = true
			}
		}
		rows = append(rows, []string{
			device,
			strconv.Itoa(len(group)),
			earliest,
			latest,
			strconv.FormatBool(changed),
		})
	}
	return rows
}

func payloadField(sess reconcile.InfoRow, i int) string {
	if i < 0 || i >= len(sess.Payload) {
		return ""
	}
	return sess.Payload[i]
}

// sameDescriptive compares session payloads ignoring the per-session date
// columns at the front.
func sameDescriptive(a, b reconcile.InfoRow) bool {
	if len(a.Payload) != len(b.Payload) {
		return false
	}
	for i := 2; i < len(a.Payload); i++ {
		if a.Payload[i] != b.Payload[i] {
			return false
		}
	}
	return true
}

type dogfoodAppKey struct {
	url, date string
}

// aggregateDogfoodApps sums dogfood app usage by app and date.
func aggregateDogfoodApps(rows []mapred.Row) [][]string {
	idx := fieldIndex(jobs.AUAppSchema)
	type totals struct {
		launches, usageSec, installs, uninstalls int64
	}
	cells := make(map[dogfoodAppKey]*totals)

	for _, row := range rows {
		key := dogfoodAppKey{url: row.Fields[idx["appURL"]], date: row.Fields[idx["date"]]}
		cell := cells[key]
		if cell == nil {
			cell = &totals{}
			cells[key] = cell
		}
		cell.launches += parseCount(row.Fields[idx["launches"]])
		cell.usageSec += parseCount(row.Fields[idx["usageSec"]])
		cell.installs += parseCount(row.Fields[idx["installs"]])
		cell.uninstalls += parseCount(row.Fields[idx["uninstalls"]])
	}

	keys := lo.Keys(cells)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].url != keys[j].url {
			return keys[i].url < keys[j].url
		}
		return keys[i].date < keys[j].date
	})

	var out [][]string
	for _, key := range keys {
		cell := cells[key]
		out = append(out, []string{
			key.url,
			key.date,
			strconv.FormatInt(cell.launches, 10),
			strconv.FormatInt(cell.usageSec, 10),
			strconv.FormatInt(cell.installs, 10),
			strconv.FormatInt(cell.uninstalls, 10),
		})
	}
	return out
}

func sortTable(rows [][]string) {
	sort.Slice(rows, func(i, j int) bool {
		return lessStrings(rows[i], rows[j])
	})
}
