package datasets

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/samber/lo"

	"github.com/dzeber/fxos-metrics/internal/format"
	"github.com/dzeber/fxos-metrics/internal/jobs"
	"github.com/dzeber/fxos-metrics/internal/lookup"
	"github.com/dzeber/fxos-metrics/internal/mapred"
)

// DashboardRow is one aggregated dashboard cell: summarized dimensions and
// the number of first-use pings they cover.
type DashboardRow struct {
	Date     string
	OS       string
	Country  string
	Device   string
	Operator string
	Count    int64
}

// DashboardHeaders are the dashboard CSV columns, matching DashboardRow
// field order.
var DashboardHeaders = []string{"date", "os", "country", "device", "operator", "count"}

func (r DashboardRow) csv() []string {
	return []string{r.Date, r.OS, r.Country, r.Device, r.Operator, fmt.Sprintf("%d", r.Count)}
}

type dashboardKey struct {
	date, os, country, device, operator string
}

// BuildDashboard re-aggregates FTU job output into dashboard rows:
// long-tail values grouped under Other, counts limited to the dashboard
// window.
func BuildDashboard(out *mapred.Output, tables *lookup.Tables, validOS *regexp.Regexp, window Window) ([]DashboardRow, error) {
	idx := fieldIndex(jobs.FTUSchema)
	cells := make(map[dashboardKey]int64)

	for _, row := range out.Rows {
		if len(row.Fields) != len(jobs.FTUSchema) {
			return nil, fmt.Errorf("datasets: ftu tuple has %d fields, want %d", len(row.Fields), len(jobs.FTUSchema))
		}
		date := row.Fields[idx["pingDate"]]
		if !window.Contains(date) {
			continue
		}

		country := row.Fields[idx["country"]]
		device := row.Fields[idx["product_model"]]
		key := dashboardKey{
			date:    date,
			os:      format.SummarizeOS(row.Fields[idx["os"]], validOS),
			country: format.Country(&country, tables),
			device:  format.DeviceName(&device, tables),
			operator: format.SummarizeOperator(
				row.Fields[idx["icc.network"]],
				row.Fields[idx["icc.name"]],
				row.Fields[idx["network.network"]],
				row.Fields[idx["network.name"]],
				tables,
			),
		}
		cells[key] += row.Count
	}

	rows := lo.MapToSlice(cells, func(k dashboardKey, n int64) DashboardRow {
		return DashboardRow{
			Date:     k.date,
			OS:       k.os,
			Country:  k.country,
			Device:   k.device,
			Operator: k.operator,
			Count:    n,
		}
	})
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.OS != b.OS {
			return a.OS < b.OS
		}
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.Device != b.Device {
			return a.Device < b.Device
		}
		return a.Operator < b.Operator
	})
	return rows, nil
}

// DumpHeaders are the full FTU dump CSV columns: the job schema plus the
// count.
var DumpHeaders = append(append([]string{}, jobs.FTUSchema...), "count")

// BuildDump filters FTU job output to the dump window, keeping full tuples.
func BuildDump(out *mapred.Output, window Window) ([][]string, error) {
	idx := fieldIndex(jobs.FTUSchema)
	var rows [][]string
	for _, row := range out.Rows {
		if len(row.Fields) != len(jobs.FTUSchema) {
			return nil, fmt.Errorf("datasets: ftu tuple has %d fields, want %d", len(row.Fields), len(jobs.FTUSchema))
		}
		if !window.Contains(row.Fields[idx["pingDate"]]) {
			continue
		}
		record := append(append([]string{}, row.Fields...), fmt.Sprintf("%d", row.Count))
		rows = append(rows, record)
	}
	sort.Slice(rows, func(i, j int) bool {
		return lessStrings(rows[i], rows[j])
	})
	return rows, nil
}

func lessStrings(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
