// Package reconcile turns raw app-usage session reports into a consistent
// per-device session history. Devices resend sessions across submissions and
// their clocks drift, so the raw reports contain duplicates, conflicting
// copies, and overlapping or inverted time ranges that must be resolved
// before the sessions can be counted.
package reconcile

import (
	"sort"

	"github.com/samber/lo"
)

// DefaultToleranceMs is the overlap below which two adjacent sessions are
// treated as the same boundary rather than a real inconsistency.
const DefaultToleranceMs = 5000

// Cohort labels used when partitioning diagnostic counts.
const (
	CohortDogfood = "dogfood"
	CohortGeneral = "general"
)

// Condition names recorded while reconciling.
const (
	ConditionClockSkew         = "clockskew"
	ConditionNested            = "nested"
	ConditionOverlap           = "overlap"
	ConditionNegligibleOverlap = "negligibleoverlap"
	ConditionMultiple          = "multiple"
)

// SessionKey identifies a reported session: the same device resending the
// same measurement window produces the same key.
type SessionKey struct {
	DeviceID string
	Start    int64
	Stop     int64
}

// InfoRow is one counted session report.
type InfoRow struct {
	DeviceID string
	Start    int64
	Stop     int64
	// SubmissionDate is the server-side date the report arrived, used to
	// order repeated reports of the same session.
	SubmissionDate string
	// Payload holds the remaining descriptive fields in schema order.
	Payload []string
	Dogfood bool
	Count   int64
	// Conflict marks a variant of a session whose repeated reports
	// disagreed on their descriptive fields.
	Conflict bool
}

// Key returns the row's session identity.
func (r InfoRow) Key() SessionKey {
	return SessionKey{DeviceID: r.DeviceID, Start: r.Start, Stop: r.Stop}
}

func (r InfoRow) cohort() string {
	if r.Dogfood {
		return CohortDogfood
	}
	return CohortGeneral
}

// Result is the reconciled session history.
type Result struct {
	// Sessions holds the surviving rows, ordered by device and start time.
	Sessions []InfoRow
	// Conflicts holds every variant of sessions whose repeated reports
	// disagreed on descriptive fields. No winner is picked: all variants
	// are kept here for inspection and none enters the session timeline.
	Conflicts []InfoRow
	// Suppressed lists session identities whose detail rows (per-app and
	// per-search counts) must be discarded along with the session.
	Suppressed map[SessionKey]bool
	// Conditions counts each disposition per cohort.
	Conditions map[string]map[string]int64
}

func (res *Result) condition(cohort, name string, n int64) {
	if res.Conditions[cohort] == nil {
		res.Conditions[cohort] = make(map[string]int64)
	}
	res.Conditions[cohort][name] += n
}

func (res *Result) suppress(key SessionKey) {
	res.Suppressed[key] = true
}

// Reconcile collapses duplicate reports, resolves descriptive conflicts, and
// orders each device's sessions into a consistent timeline. toleranceMs
// bounds the overlap treated as negligible; pass DefaultToleranceMs unless
// configured otherwise.
func Reconcile(rows []InfoRow, toleranceMs int64) *Result {
	res := &Result{
		Suppressed: make(map[SessionKey]bool),
		Conditions: make(map[string]map[string]int64),
	}

	collapsed := make([]InfoRow, 0, len(rows))
	for _, group := range lo.GroupBy(rows, InfoRow.Key) {
		if row, ok := collapseReports(group, res); ok {
			collapsed = append(collapsed, row)
		}
	}

	byDevice := lo.GroupBy(collapsed, func(r InfoRow) string { return r.DeviceID })
	devices := lo.Keys(byDevice)
	sort.Strings(devices)

	for _, device := range devices {
		res.reconcileDevice(byDevice[device], toleranceMs)
	}

	sort.Slice(res.Conflicts, func(i, j int) bool {
		a, b := res.Conflicts[i], res.Conflicts[j]
		if a.DeviceID != b.DeviceID {
			return a.DeviceID < b.DeviceID
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Stop != b.Stop {
			return a.Stop < b.Stop
		}
		return lessPayload(a.Payload, b.Payload)
	})
	return res
}

// collapseReports merges all reports of one session into at most one row.
// Exact duplicates (same payload and submission date) sum their counts; a
// repeated report of the same payload under a later submission date is
// dropped, keeping the earliest. Reports disagreeing on descriptive fields
// leave no single row: every variant moves to the Conflicts partition and
// the session's detail rows are suppressed.
func collapseReports(reports []InfoRow, res *Result) (InfoRow, bool) {
	sort.Slice(reports, func(i, j int) bool {
		if samePayload(reports[i].Payload, reports[j].Payload) {
			return reports[i].SubmissionDate < reports[j].SubmissionDate
		}
		return lessPayload(reports[i].Payload, reports[j].Payload)
	})

	variants := []InfoRow{reports[0]}
	for _, rep := range reports[1:] {
		last := &variants[len(variants)-1]
		if samePayload(last.Payload, rep.Payload) {
			if rep.SubmissionDate == last.SubmissionDate {
				last.Count += rep.Count
			}
			continue
		}
		variants = append(variants, rep)
	}

	if len(variants) == 1 {
		return variants[0], true
	}
	for i := range variants {
		variants[i].Conflict = true
	}
	res.Conflicts = append(res.Conflicts, variants...)
	res.condition(variants[0].cohort(), ConditionMultiple, 1)
	res.suppress(variants[0].Key())
	return InfoRow{}, false
}

// reconcileDevice orders one device's sessions and resolves timeline
// inconsistencies. A session whose start postdates its stop is clock skew
// and is dropped. A session entirely contained in its predecessor is a
// nested resend and is dropped. A session overlapping its predecessor's tail
// is kept, with the overlap recorded as negligible or real depending on the
// tolerance.
func (res *Result) reconcileDevice(sessions []InfoRow, toleranceMs int64) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Start != sessions[j].Start {
			return sessions[i].Start < sessions[j].Start
		}
		return sessions[i].Stop < sessions[j].Stop
	})

	var lastStop int64
	havePrev := false
	for _, sess := range sessions {
		if sess.Start > sess.Stop {
			res.condition(sess.cohort(), ConditionClockSkew, 1)
			res.suppress(sess.Key())
			continue
		}
		if havePrev && sess.Start < lastStop && sess.Stop <= lastStop {
			res.condition(sess.cohort(), ConditionNested, 1)
			res.suppress(sess.Key())
			continue
		}
		if havePrev {
			if overlap := lastStop - sess.Start; overlap > 0 {
				name := ConditionNegligibleOverlap
				if overlap >= toleranceMs {
					name = ConditionOverlap
				}
				res.condition(sess.cohort(), name, 1)
			}
		}
		res.Sessions = append(res.Sessions, sess)
		lastStop = sess.Stop
		havePrev = true
	}
}

func samePayload(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func lessPayload(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
