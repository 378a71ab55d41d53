package application

import (
	"errors"
	"math"
	"testing"

	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

func TestLoadSnapshot_AliasResolution(t *testing.T) {
	input := hierarchy.Columnar{
		"id":             {int64(1), int64(2)},
		"NMO_BaseName":   {"A", "B"},
		"parent_id":      {nil, int64(1)},
		"ngHeadDevice":   {"", "A"},
		"icanbeheadunit": {true, false},
		"Power":          {1.5, nil},
		"fullpath":       {"A", `A\B`},
		"onlyGUpath":     {"A", "A"},
		"level1":         {"A", "A"},
		"level2":         {"", "B"},
		"level3":         {"", ""},
	}
	diags := &hierarchy.Diagnostics{}
	snapshot, err := LoadSnapshot(input, diags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snapshot.Devices) != 2 {
		t.Fatalf("devices: got %d", len(snapshot.Devices))
	}

	a := snapshot.Devices[0]
	if a.Name != "A" || a.HasParent() || !a.CanBeHead || a.Power != 1.5 || !a.HasPower {
		t.Fatalf("device A: %+v", a)
	}
	if a.StoredFull != "A" || a.StoredHead != "A" || a.StoredL1 != "A" {
		t.Fatalf("device A stored: %+v", a)
	}

	b := snapshot.Devices[1]
	if b.Name != "B" || b.ParentID != 1 || b.HeadName != "A" || b.CanBeHead || b.HasPower {
		t.Fatalf("device B: %+v", b)
	}

	if snapshot.Column(FieldName) != "NMO_BaseName" {
		t.Fatalf("name column: got %q", snapshot.Column(FieldName))
	}
	if snapshot.Column(FieldPower) != "Power" {
		t.Fatalf("power column: got %q", snapshot.Column(FieldPower))
	}
	// Absent columns fall back to the first alias.
	if snapshot.Column(FieldFullPath) != "fullpath" {
		t.Fatalf("fullpath column: got %q", snapshot.Column(FieldFullPath))
	}
}

func TestLoadSnapshot_FirstAliasWins(t *testing.T) {
	input := hierarchy.Columnar{
		"id":         {int64(1)},
		"deviceName": {"first"},
		"name":       {"last"},
	}
	snapshot, err := LoadSnapshot(input, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snapshot.Devices[0].Name != "first" {
		t.Fatalf("name: got %q", snapshot.Devices[0].Name)
	}
}

func TestLoadSnapshot_ParentSentinels(t *testing.T) {
	input := hierarchy.Columnar{
		"id":         {int64(1), int64(2), int64(3), int64(4)},
		"deviceName": {"a", "b", "c", "d"},
		"parentId":   {nil, int64(0), int64(-1), int64(1)},
	}
	snapshot, err := LoadSnapshot(input, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := 0; i < 3; i++ {
		if snapshot.Devices[i].HasParent() {
			t.Fatalf("row %d: expected no parent, got %d", i, snapshot.Devices[i].ParentID)
		}
	}
	if snapshot.Devices[3].ParentID != 1 {
		t.Fatalf("row 3: got parent %d", snapshot.Devices[3].ParentID)
	}
}

func TestLoadSnapshot_MissingIDColumn(t *testing.T) {
	_, err := LoadSnapshot(hierarchy.Columnar{"deviceName": {"a"}}, nil)
	if !errors.Is(err, hierarchy.ErrMissingIDColumn) {
		t.Fatalf("expected missing id error, got %v", err)
	}
}

func TestLoadSnapshot_MalformedID(t *testing.T) {
	_, err := LoadSnapshot(hierarchy.Columnar{"id": {"not-a-number"}}, nil)
	if !errors.Is(err, hierarchy.ErrInvalidSnapshot) {
		t.Fatalf("expected invalid snapshot, got %v", err)
	}
}

func TestLoadSnapshot_InvalidPowerZeroedAndReported(t *testing.T) {
	input := hierarchy.Columnar{
		"id":         {int64(1), int64(2), int64(3), int64(4), int64(5)},
		"deviceName": {"a", "b", "c", "d", "e"},
		"power":      {"garbage", -2.5, "3,5", "inf", math.Inf(1)},
	}
	diags := &hierarchy.Diagnostics{}
	snapshot, err := LoadSnapshot(input, diags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(diags.InvalidPowers) != 4 {
		t.Fatalf("invalid powers: %+v", diags.InvalidPowers)
	}
	for _, row := range []int{0, 1, 3, 4} {
		if snapshot.Devices[row].Power != 0 {
			t.Fatalf("row %d: invalid power must be zeroed, got %v", row, snapshot.Devices[row].Power)
		}
	}
	// Decimal comma parses permissively.
	if snapshot.Devices[2].Power != 3.5 {
		t.Fatalf("comma decimal: got %v", snapshot.Devices[2].Power)
	}
}

func TestLoadSnapshot_ShortColumnsTreatedAbsent(t *testing.T) {
	input := hierarchy.Columnar{
		"id":         {int64(1), int64(2), int64(3)},
		"deviceName": {"a", "b"},
		"power":      {1.0},
	}
	snapshot, err := LoadSnapshot(input, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snapshot.Devices[2].Name != "" {
		t.Fatalf("trailing name: got %q", snapshot.Devices[2].Name)
	}
	if snapshot.Devices[1].HasPower || snapshot.Devices[2].HasPower {
		t.Fatal("trailing power must be absent")
	}
}

func TestLoadSnapshot_StringCoercions(t *testing.T) {
	input := hierarchy.Columnar{
		"id":        {"7"},
		"name":      {"n"},
		"parentId":  {"0"},
		"canBeHead": {"true"},
		"power":     {"2.25"},
	}
	snapshot, err := LoadSnapshot(input, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	device := snapshot.Devices[0]
	if device.RowID != 7 || device.HasParent() || !device.CanBeHead || device.Power != 2.25 {
		t.Fatalf("coercions: %+v", device)
	}
}

func TestLoadSnapshot_CountsPerField(t *testing.T) {
	input := hierarchy.Columnar{
		"id":         {int64(1), int64(2)},
		"deviceName": {"a", nil},
		"power":      {1.0, 2.0},
	}
	diags := &hierarchy.Diagnostics{}
	if _, err := LoadSnapshot(input, diags); err != nil {
		t.Fatalf("load: %v", err)
	}
	if diags.CountsPerField[FieldName] != 1 {
		t.Fatalf("name count: %d", diags.CountsPerField[FieldName])
	}
	if diags.CountsPerField[FieldPower] != 2 {
		t.Fatalf("power count: %d", diags.CountsPerField[FieldPower])
	}
}
