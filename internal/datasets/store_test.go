package datasets

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreDashboardRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rows := []DashboardRow{
		{Date: "2015-03-10", OS: "2.0", Country: "India", Device: "Flame", Operator: "Airtel", Count: 5},
		{Date: "2015-03-11", OS: "Other", Country: "Other", Device: "Other", Operator: "Other", Count: 1},
	}
	runID, err := store.SaveDashboard(ctx, rows)
	if err != nil {
		t.Fatalf("SaveDashboard: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run ID")
	}

	loaded, err := store.LoadDashboard(ctx, runID)
	if err != nil {
		t.Fatalf("LoadDashboard: %v", err)
	}
	if len(loaded) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(loaded), len(rows))
	}
	for i := range rows {
		if loaded[i] != rows[i] {
			t.Errorf("row %d = %+v, want %+v", i, loaded[i], rows[i])
		}
	}

	// A second run gets its own ID and does not leak into the first.
	runID2, err := store.SaveDashboard(ctx, rows[:1])
	if err != nil {
		t.Fatalf("SaveDashboard: %v", err)
	}
	if runID2 == runID {
		t.Fatal("run IDs collide")
	}
	again, err := store.LoadDashboard(ctx, runID)
	if err != nil {
		t.Fatalf("LoadDashboard: %v", err)
	}
	if len(again) != len(rows) {
		t.Errorf("first run now has %d rows, want %d", len(again), len(rows))
	}
}

func TestStoreConditions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	conditions := map[string]map[string]int64{
		"general": {"clockskew": 2, "multiple": 1},
		"dogfood": {"nested": 3},
	}
	runID, err := store.SaveConditions(ctx, "au-tables", conditions)
	if err != nil {
		t.Fatalf("SaveConditions: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run ID")
	}

	var n int64
	err = store.db.QueryRowContext(ctx,
		`SELECT count FROM condition_counts WHERE run_id = ? AND cohort = ? AND condition = ?`,
		runID, "general", "clockskew").Scan(&n)
	if err != nil {
		t.Fatalf("querying condition: %v", err)
	}
	if n != 2 {
		t.Errorf("clockskew count = %d, want 2", n)
	}
}
