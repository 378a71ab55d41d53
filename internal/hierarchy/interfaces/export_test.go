package interfaces

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"device-hierarchy/internal/hierarchy/application"
	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

func sampleResult() *application.RunResult {
	return &application.RunResult{
		Table:       "AllDevice",
		Devices:     3,
		RowsUpdated: 2,
		Batches:     1,
		Plan: []hierarchy.RowUpdate{
			{RowID: 1, Fields: map[string]any{"fullpath": "A", "level1": "A"}},
			{RowID: 2, Fields: map[string]any{"fullpath": `A\B`}},
		},
		Diagnostics: &hierarchy.Diagnostics{
			DanglingParents: []hierarchy.DanglingParent{{RowID: 9, ParentID: 99}},
			PowerPasses:     2,
		},
	}
}

func TestBuildRunReportXLSX(t *testing.T) {
	data, err := BuildRunReportXLSX(sampleResult())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer book.Close()

	table, err := book.GetCellValue("summary", "B3")
	if err != nil || table != "AllDevice" {
		t.Fatalf("summary table cell: %q %v", table, err)
	}
	dangling, err := book.GetCellValue("summary", "B10")
	if err != nil || dangling != "1" {
		t.Fatalf("dangling cell: %q %v", dangling, err)
	}

	row, err := book.GetCellValue("plan", "A2")
	if err != nil || row != "1" {
		t.Fatalf("plan row cell: %q %v", row, err)
	}
	// Columns of one row are emitted sorted.
	column, err := book.GetCellValue("plan", "B2")
	if err != nil || column != "fullpath" {
		t.Fatalf("plan column cell: %q %v", column, err)
	}
}

func TestBuildRunReportPDF(t *testing.T) {
	data, err := BuildRunReportPDF(sampleResult())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("not a PDF payload")
	}
}

func TestBuildRunReport_NilResult(t *testing.T) {
	if _, err := BuildRunReportXLSX(nil); err == nil {
		t.Fatal("expected error for nil result")
	}
	if _, err := BuildRunReportPDF(nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}
