package datasets

import (
	"testing"

	"github.com/dzeber/fxos-metrics/internal/jobs"
	"github.com/dzeber/fxos-metrics/internal/mapred"
	"github.com/dzeber/fxos-metrics/internal/reconcile"
)

// infoTuple builds a tagged info row for the given session.
func infoTuple(device, start, stop, sdate, os string, dogfood bool, count int64) mapred.Row {
	fields := map[string]string{
		"deviceID":       device,
		"start":          start,
		"stop":           stop,
		"submissionDate": sdate,
		"startDate":      "2015-03-08",
		"stopDate":       "2015-03-10",
		"os":             os,
		"dogfood":        "false",
	}
	if dogfood {
		fields["dogfood"] = "true"
	}
	tuple := []string{jobs.TagInfo}
	for _, name := range jobs.AUInfoSchema {
		tuple = append(tuple, fields[name])
	}
	return mapred.Row{Fields: tuple, Count: count}
}

func appTuple(device, start, stop, url, date, launches string) mapred.Row {
	fields := map[string]string{
		"deviceID": device,
		"start":    start,
		"stop":     stop,
		"appURL":   url,
		"date":     date,
		"launches": launches,
		"usageSec": "60",
	}
	tuple := []string{jobs.TagApp}
	for _, name := range jobs.AUAppSchema {
		tuple = append(tuple, fields[name])
	}
	return mapred.Row{Fields: tuple, Count: 1}
}

func searchTuple(device, start, stop, provider, date, count string) mapred.Row {
	tuple := []string{jobs.TagSearch, device, start, stop, provider, date, count}
	return mapred.Row{Fields: tuple, Count: 1}
}

func TestBuildAUTables(t *testing.T) {
	out := &mapred.Output{Rows: []mapred.Row{
		// A clean general-cohort session: two reports on one day, then a
		// repeat on a later day.
		infoTuple("dev1", "1000", "5000", "2015-03-11", "2.0", false, 1),
		infoTuple("dev1", "1000", "5000", "2015-03-11", "2.0", false, 1),
		infoTuple("dev1", "1000", "5000", "2015-03-12", "2.0", false, 1),
		// A conflicting pair: same session, different os.
		infoTuple("dev2", "1000", "5000", "2015-03-11", "2.0", false, 1),
		infoTuple("dev2", "1000", "5000", "2015-03-12", "2.1", false, 1),
		// A dogfood session.
		infoTuple("dogfood-1", "1000", "5000", "2015-03-11", "2.0", true, 1),

		appTuple("dev1", "1000", "5000", "app://clock", "2015-03-09", "2"),
		appTuple("dev2", "1000", "5000", "app://clock", "2015-03-09", "7"),
		appTuple("dogfood-1", "1000", "5000", "app://mail", "2015-03-09", "1"),
		appTuple("dogfood-1", "1000", "5000", "app://mail", "2015-03-09", "4"),

		searchTuple("dev1", "1000", "5000", "everythingme", "2015-03-09", "3"),
		searchTuple("dev2", "1000", "5000", "everythingme", "2015-03-09", "9"),
	}}

	tables, err := BuildAUTables(out, reconcile.DefaultToleranceMs)
	if err != nil {
		t.Fatalf("BuildAUTables: %v", err)
	}

	// Only dev1 survives into the info table: dev2 conflicted, dogfood-1
	// goes to the dogfood tables.
	if len(tables.Info) != 1 {
		t.Fatalf("got %d info rows, want 1:\n%v", len(tables.Info), tables.Info)
	}
	info := tables.Info[0]
	if info[0] != "dev1" {
		t.Errorf("info deviceID = %q", info[0])
	}
	if got := info[len(info)-1]; got != "2" {
		t.Errorf("info count = %q, want 2 (same-day duplicates summed)", got)
	}
	// Earliest submission wins; the later repeat is dropped.
	if info[3] != "2015-03-11" {
		t.Errorf("info submissionDate = %q, want earliest", info[3])
	}

	// Both of dev2's variants are published, neither as the winner.
	if len(tables.Multiple) != 2 {
		t.Fatalf("got %d multiple rows, want 2:\n%v", len(tables.Multiple), tables.Multiple)
	}
	osAt := fieldIndex(jobs.AUInfoSchema)["os"]
	variants := map[string]bool{}
	for _, row := range tables.Multiple {
		if row[0] != "dev2" {
			t.Errorf("multiple row device = %q", row[0])
		}
		variants[row[osAt]] = true
	}
	if !variants["2.0"] || !variants["2.1"] {
		t.Errorf("multiple os variants = %v, want both 2.0 and 2.1", variants)
	}

	// dev2's details are suppressed; dogfood details go to their own table.
	if len(tables.Apps) != 1 {
		t.Fatalf("got %d app rows, want 1:\n%v", len(tables.Apps), tables.Apps)
	}
	if tables.Apps[0][0] != "dev1" {
		t.Errorf("app row device = %q", tables.Apps[0][0])
	}
	if len(tables.Searches) != 1 || tables.Searches[0][0] != "dev1" {
		t.Errorf("search rows = %v", tables.Searches)
	}

	if len(tables.DogfoodDetails) != 1 {
		t.Fatalf("got %d dogfood detail rows, want 1", len(tables.DogfoodDetails))
	}
	detail := tables.DogfoodDetails[0]
	if detail[0] != "dogfood-1" || detail[1] != "1" {
		t.Errorf("dogfood detail = %v", detail)
	}
	if detail[2] != "2015-03-08" || detail[3] != "2015-03-10" {
		t.Errorf("dogfood date range = %v", detail)
	}

	// The two dogfood app rows aggregate by (app, date).
	if len(tables.DogfoodApps) != 1 {
		t.Fatalf("got %d dogfood app rows, want 1:\n%v", len(tables.DogfoodApps), tables.DogfoodApps)
	}
	dapp := tables.DogfoodApps[0]
	if dapp[0] != "app://mail" || dapp[1] != "2015-03-09" {
		t.Errorf("dogfood app key = %v", dapp)
	}
	if dapp[2] != "5" {
		t.Errorf("dogfood launches = %q, want 5 (1+4)", dapp[2])
	}
	if dapp[3] != "120" {
		t.Errorf("dogfood usageSec = %q, want 120", dapp[3])
	}

	if got := tables.Conditions[reconcile.CohortGeneral][reconcile.ConditionMultiple]; got != 1 {
		t.Errorf("multiple condition = %d, want 1", got)
	}
}

func TestBuildAUTablesConflictedDogfood(t *testing.T) {
	out := &mapred.Output{Rows: []mapred.Row{
		infoTuple("dogfood-1", "1000", "5000", "2015-03-11", "2.0", true, 1),
		infoTuple("dogfood-1", "1000", "5000", "2015-03-12", "2.1", true, 1),
		appTuple("dogfood-1", "1000", "5000", "app://mail", "2015-03-09", "1"),
	}}

	tables, err := BuildAUTables(out, reconcile.DefaultToleranceMs)
	if err != nil {
		t.Fatalf("BuildAUTables: %v", err)
	}

	// A conflicted dogfood session goes to the multiple table, not into the
	// dogfood summaries, and its detail rows are suppressed.
	if len(tables.Multiple) != 2 {
		t.Fatalf("got %d multiple rows, want 2:\n%v", len(tables.Multiple), tables.Multiple)
	}
	if len(tables.DogfoodDetails) != 0 {
		t.Errorf("dogfood details = %v, want none", tables.DogfoodDetails)
	}
	if len(tables.DogfoodApps) != 0 {
		t.Errorf("dogfood apps = %v, want none", tables.DogfoodApps)
	}
	if got := tables.Conditions[reconcile.CohortDogfood][reconcile.ConditionMultiple]; got != 1 {
		t.Errorf("dogfood multiple condition = %d, want 1", got)
	}
}

func TestBuildAUTablesBadTuple(t *testing.T) {
	out := &mapred.Output{Rows: []mapred.Row{
		{Fields: []string{jobs.TagInfo, "dev1", "not-a-number"}, Count: 1},
	}}
	if _, err := BuildAUTables(out, reconcile.DefaultToleranceMs); err == nil {
		t.Fatal("expected error for malformed info tuple")
	}
}
