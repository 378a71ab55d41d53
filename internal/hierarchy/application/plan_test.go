package application

import (
	"testing"

	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

func TestBuildPlan_EmitsOnlyChangedFields(t *testing.T) {
	snapshot := &Snapshot{
		Devices: []hierarchy.Device{
			{RowID: 1, Name: "A", StoredFull: "A", StoredHead: "A", StoredL1: "A"},
			{RowID: 2, Name: "B", ParentID: 1, StoredFull: "stale", StoredL1: "A", StoredL2: "B"},
		},
		Columns: map[string]string{FieldFullPath: "fullpath", FieldHeadPath: "onlyGUpath"},
	}
	paths := map[int64]hierarchy.PathResult{
		1: {FullPath: "A", HeadPath: "A", Level1: "A"},
		2: {FullPath: `A\B`, HeadPath: "A", Level1: "A", Level2: "B"},
	}
	plan := BuildPlan(snapshot, paths, nil, DefaultConfig())

	if len(plan) != 1 {
		t.Fatalf("expected 1 update, got %d", len(plan))
	}
	update := plan[0]
	if update.RowID != 2 {
		t.Fatalf("row: got %d", update.RowID)
	}
	if got := update.Fields["fullpath"]; got != `A\B` {
		t.Fatalf("fullpath: got %v", got)
	}
	if got := update.Fields["onlyGUpath"]; got != "A" {
		t.Fatalf("head path: got %v", got)
	}
	if _, ok := update.Fields["level1"]; ok {
		t.Fatal("unchanged level1 must be omitted")
	}
}

func TestBuildPlan_EmptyStringsCompareExactly(t *testing.T) {
	snapshot := &Snapshot{
		Devices: []hierarchy.Device{
			{RowID: 1, Name: "A", StoredFull: "A", StoredHead: "old"},
		},
	}
	paths := map[int64]hierarchy.PathResult{
		1: {FullPath: "A", HeadPath: "", Level1: "A"},
	}
	plan := BuildPlan(snapshot, paths, nil, DefaultConfig())

	if len(plan) != 1 {
		t.Fatalf("expected 1 update, got %d", len(plan))
	}
	if got, ok := plan[0].Fields["onlyGUpath"]; !ok || got != "" {
		t.Fatalf("expected explicit empty head path, got %v (present=%v)", got, ok)
	}
}

func TestBuildPlan_PowerTolerance(t *testing.T) {
	snapshot := &Snapshot{
		Devices: []hierarchy.Device{
			{RowID: 1, Name: "R", Power: 3.0005, HasPower: true},
			{RowID: 2, Name: "S", Power: 1, HasPower: true},
		},
	}
	powers := map[int64]float64{
		1: 3.001, // within tolerance of stored power
		2: 2.5,
	}
	plan := BuildPlan(snapshot, nil, powers, DefaultConfig())

	if len(plan) != 1 || plan[0].RowID != 2 {
		t.Fatalf("plan: %+v", plan)
	}
	if got := plan[0].Fields["power"]; got != 2.5 {
		t.Fatalf("power: got %v", got)
	}
}

func TestBuildPlan_CleanRowOmitted(t *testing.T) {
	snapshot := &Snapshot{
		Devices: []hierarchy.Device{
			{RowID: 1, Name: "A", StoredFull: "A", StoredHead: "A", StoredL1: "A"},
		},
	}
	paths := map[int64]hierarchy.PathResult{
		1: {FullPath: "A", HeadPath: "A", Level1: "A"},
	}
	if plan := BuildPlan(snapshot, paths, nil, DefaultConfig()); len(plan) != 0 {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
}

func TestBuildPlan_PreservesInputOrder(t *testing.T) {
	snapshot := &Snapshot{
		Devices: []hierarchy.Device{
			{RowID: 5, Name: "e"},
			{RowID: 2, Name: "b"},
			{RowID: 9, Name: "i"},
		},
	}
	paths := map[int64]hierarchy.PathResult{
		5: {FullPath: "e", Level1: "e"},
		2: {FullPath: "b", Level1: "b"},
		9: {FullPath: "i", Level1: "i"},
	}
	plan := BuildPlan(snapshot, paths, nil, DefaultConfig())
	if len(plan) != 3 {
		t.Fatalf("plan size: %d", len(plan))
	}
	for i, want := range []int64{5, 2, 9} {
		if plan[i].RowID != want {
			t.Fatalf("order at %d: got %d want %d", i, plan[i].RowID, want)
		}
	}
}
