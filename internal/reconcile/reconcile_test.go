package reconcile

import (
	"testing"
)

func row(device string, start, stop int64, sdate string, payload ...string) InfoRow {
	return InfoRow{
		DeviceID:       device,
		Start:          start,
		Stop:           stop,
		SubmissionDate: sdate,
		Payload:        payload,
		Count:          1,
	}
}

func totalCount(rows []InfoRow) int64 {
	var n int64
	for _, r := range rows {
		n += r.Count
	}
	return n
}

func TestCollapseExactDuplicates(t *testing.T) {
	rows := []InfoRow{
		row("dev1", 100, 200, "2015-03-10", "2.0", "India"),
		row("dev1", 100, 200, "2015-03-10", "2.0", "India"),
		row("dev1", 100, 200, "2015-03-10", "2.0", "India"),
	}
	res := Reconcile(rows, DefaultToleranceMs)

	if len(res.Sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(res.Sessions))
	}
	if got := res.Sessions[0].Count; got != 3 {
		t.Errorf("collapsed count = %d, want total preserved (3)", got)
	}
	if res.Sessions[0].Conflict {
		t.Error("identical reports flagged as conflict")
	}
	if len(res.Suppressed) != 0 {
		t.Errorf("suppressed = %v, want none", res.Suppressed)
	}
}

func TestCollapseKeepsEarliestSubmission(t *testing.T) {
	rows := []InfoRow{
		row("dev1", 100, 200, "2015-03-12", "2.0", "India"),
		row("dev1", 100, 200, "2015-03-10", "2.0", "India"),
		row("dev1", 100, 200, "2015-03-11", "2.0", "India"),
	}
	res := Reconcile(rows, DefaultToleranceMs)

	if len(res.Sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(res.Sessions))
	}
	sess := res.Sessions[0]
	if sess.SubmissionDate != "2015-03-10" {
		t.Errorf("submission date = %q, want earliest", sess.SubmissionDate)
	}
	// Later repeats are dropped, not summed; only same-date exact
	// duplicates add to the count.
	if sess.Count != 1 {
		t.Errorf("count = %d, want 1", sess.Count)
	}
	if sess.Conflict {
		t.Error("date-only difference flagged as conflict")
	}
	if len(res.Conflicts) != 0 {
		t.Errorf("conflicts = %v, want none", res.Conflicts)
	}
}

func TestConflictingReports(t *testing.T) {
	rows := []InfoRow{
		row("dev1", 100, 200, "2015-03-11", "2.1", "Brazil"),
		row("dev1", 100, 200, "2015-03-10", "2.0", "India"),
	}
	res := Reconcile(rows, DefaultToleranceMs)

	// No winner: the session leaves the timeline and every variant is
	// surfaced for inspection.
	if len(res.Sessions) != 0 {
		t.Fatalf("got %d sessions, want 0:\n%v", len(res.Sessions), res.Sessions)
	}
	if len(res.Conflicts) != 2 {
		t.Fatalf("got %d conflict variants, want 2:\n%v", len(res.Conflicts), res.Conflicts)
	}
	for _, variant := range res.Conflicts {
		if !variant.Conflict {
			t.Errorf("variant %v not flagged as conflict", variant.Payload)
		}
	}
	if res.Conflicts[0].Payload[0] != "2.0" || res.Conflicts[1].Payload[0] != "2.1" {
		t.Errorf("variants = %v, %v, want both payloads in order",
			res.Conflicts[0].Payload, res.Conflicts[1].Payload)
	}
	key := SessionKey{DeviceID: "dev1", Start: 100, Stop: 200}
	if !res.Suppressed[key] {
		t.Error("conflicted session's details not suppressed")
	}
	if got := res.Conditions[CohortGeneral][ConditionMultiple]; got != 1 {
		t.Errorf("multiple condition = %d, want 1", got)
	}
}

func TestConflictVariantsCollapseDuplicates(t *testing.T) {
	rows := []InfoRow{
		row("dev1", 100, 200, "2015-03-10", "2.0", "India"),
		row("dev1", 100, 200, "2015-03-10", "2.0", "India"),
		row("dev1", 100, 200, "2015-03-12", "2.1", "Brazil"),
	}
	res := Reconcile(rows, DefaultToleranceMs)

	if len(res.Conflicts) != 2 {
		t.Fatalf("got %d conflict variants, want 2:\n%v", len(res.Conflicts), res.Conflicts)
	}
	if got := res.Conflicts[0].Count; got != 2 {
		t.Errorf("duplicate variant count = %d, want 2", got)
	}
	if got := res.Conditions[CohortGeneral][ConditionMultiple]; got != 1 {
		t.Errorf("multiple condition = %d, want 1 per session", got)
	}
}

func TestTimelineClassification(t *testing.T) {
	rows := []InfoRow{
		// Normal session.
		row("dev1", 1000, 5000, "2015-03-10"),
		// Starts after it stops: clock skew, dropped.
		row("dev1", 9000, 8000, "2015-03-10"),
		// Entirely inside the first: nested resend, dropped.
		row("dev1", 2000, 4000, "2015-03-10"),
		// Overlaps the first by 2000ms, under tolerance: kept.
		row("dev1", 3000, 20000, "2015-03-10"),
		// Overlaps the previous by 10000ms, over tolerance: kept.
		row("dev1", 10000, 30000, "2015-03-10"),
		// Clean follow-on.
		row("dev1", 40000, 50000, "2015-03-10"),
	}
	res := Reconcile(rows, DefaultToleranceMs)

	if len(res.Sessions) != 4 {
		t.Fatalf("got %d sessions, want 4", len(res.Sessions))
	}
	for i := 1; i < len(res.Sessions); i++ {
		if res.Sessions[i].Start < res.Sessions[i-1].Start {
			t.Fatal("sessions not ordered by start")
		}
	}

	general := res.Conditions[CohortGeneral]
	if general[ConditionClockSkew] != 1 {
		t.Errorf("clockskew = %d, want 1", general[ConditionClockSkew])
	}
	if general[ConditionNested] != 1 {
		t.Errorf("nested = %d, want 1", general[ConditionNested])
	}
	if general[ConditionNegligibleOverlap] != 1 {
		t.Errorf("negligibleoverlap = %d, want 1", general[ConditionNegligibleOverlap])
	}
	if general[ConditionOverlap] != 1 {
		t.Errorf("overlap = %d, want 1", general[ConditionOverlap])
	}

	// Dropped rows must still be suppressed from detail tables.
	if !res.Suppressed[SessionKey{DeviceID: "dev1", Start: 9000, Stop: 8000}] {
		t.Error("clockskew session not suppressed")
	}
	if !res.Suppressed[SessionKey{DeviceID: "dev1", Start: 2000, Stop: 4000}] {
		t.Error("nested session not suppressed")
	}
}

func TestZeroLengthSessionAtBoundary(t *testing.T) {
	rows := []InfoRow{
		row("dev1", 1000, 5000, "2015-03-10"),
		// Starts exactly where the previous one stops, with zero length:
		// not nested, no overlap.
		row("dev1", 5000, 5000, "2015-03-10"),
	}
	res := Reconcile(rows, DefaultToleranceMs)

	if len(res.Sessions) != 2 {
		t.Fatalf("got %d sessions, want 2:\n%v", len(res.Sessions), res.Sessions)
	}
	if len(res.Conditions) != 0 {
		t.Errorf("conditions = %v, want none", res.Conditions)
	}
	if len(res.Suppressed) != 0 {
		t.Errorf("suppressed = %v, want none", res.Suppressed)
	}
}

func TestCohortPartition(t *testing.T) {
	dog := row("dogfood-1", 9000, 8000, "2015-03-10")
	dog.Dogfood = true
	rows := []InfoRow{
		dog,
		row("dev1", 9000, 8000, "2015-03-10"),
	}
	res := Reconcile(rows, DefaultToleranceMs)

	if got := res.Conditions[CohortDogfood][ConditionClockSkew]; got != 1 {
		t.Errorf("dogfood clockskew = %d, want 1", got)
	}
	if got := res.Conditions[CohortGeneral][ConditionClockSkew]; got != 1 {
		t.Errorf("general clockskew = %d, want 1", got)
	}
}

func TestDevicesIndependent(t *testing.T) {
	rows := []InfoRow{
		row("dev1", 1000, 5000, "2015-03-10"),
		// Same window on another device is not a duplicate.
		row("dev2", 1000, 5000, "2015-03-10"),
		row("dev2", 6000, 9000, "2015-03-10"),
	}
	res := Reconcile(rows, DefaultToleranceMs)

	if len(res.Sessions) != 3 {
		t.Fatalf("got %d sessions, want 3", len(res.Sessions))
	}
	if got := totalCount(res.Sessions); got != 3 {
		t.Errorf("total count = %d, want 3", got)
	}
	if len(res.Conditions) != 0 {
		t.Errorf("conditions = %v, want none", res.Conditions)
	}
}
