// Package datasets postprocesses job output into the published datasets:
// the FTU dashboard and dump tables, and the app-usage info, app, search,
// and dogfood tables. Results go out as CSV or XLSX files and into a sqlite
// store for the dashboards to read.
package datasets

import (
	"strconv"
	"time"
)

// Window is an inclusive range of calendar dates.
type Window struct {
	First time.Time
	Last  time.Time
}

// WindowEnding builds the window covering the given number of days up to and
// including last.
func WindowEnding(last time.Time, days int) Window {
	last = last.UTC().Truncate(24 * time.Hour)
	return Window{
		First: last.AddDate(0, 0, -(days - 1)),
		Last:  last,
	}
}

// Contains reports whether the ISO date string falls inside the window.
// Unparseable dates fall outside every window.
func (w Window) Contains(date string) bool {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return !d.Before(w.First) && !d.After(w.Last)
}

// fieldIndex maps a schema's field names to tuple positions.
func fieldIndex(schema []string) map[string]int {
	idx := make(map[string]int, len(schema))
	for i, name := range schema {
		idx[name] = i
	}
	return idx
}

// parseCount reads a numeric tuple field, treating blanks and garbage as
// zero so one malformed row cannot sink a table build.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
