package interfaces

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"device-hierarchy/internal/hierarchy/application"
)

// BuildRunReportXLSX renders a run summary workbook: one sheet with the
// run totals and diagnostics counts, one sheet with the planned row
// updates.
func BuildRunReportXLSX(result *application.RunResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("export: nil run result")
	}
	f := excelize.NewFile()
	summarySheet := "summary"
	planSheet := "plan"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(planSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Device Hierarchy Run")
	_ = f.SetCellValue(summarySheet, "A3", "Table")
	_ = f.SetCellValue(summarySheet, "B3", result.Table)
	_ = f.SetCellValue(summarySheet, "A4", "Devices")
	_ = f.SetCellValue(summarySheet, "B4", result.Devices)
	_ = f.SetCellValue(summarySheet, "A5", "Rows updated")
	_ = f.SetCellValue(summarySheet, "B5", result.RowsUpdated)
	_ = f.SetCellValue(summarySheet, "A6", "Batches")
	_ = f.SetCellValue(summarySheet, "B6", result.Batches)
	_ = f.SetCellValue(summarySheet, "A7", "Generated")
	_ = f.SetCellValue(summarySheet, "B7", time.Now().UTC().Format(time.RFC3339))

	if diags := result.Diagnostics; diags != nil {
		_ = f.SetCellValue(summarySheet, "A9", "Duplicate names")
		_ = f.SetCellValue(summarySheet, "B9", len(diags.DuplicateNames))
		_ = f.SetCellValue(summarySheet, "A10", "Dangling parents")
		_ = f.SetCellValue(summarySheet, "B10", len(diags.DanglingParents))
		_ = f.SetCellValue(summarySheet, "A11", "Unknown heads")
		_ = f.SetCellValue(summarySheet, "B11", len(diags.UnknownHeads))
		_ = f.SetCellValue(summarySheet, "A12", "Cycles")
		_ = f.SetCellValue(summarySheet, "B12", len(diags.Cycles))
		_ = f.SetCellValue(summarySheet, "A13", "Invalid powers")
		_ = f.SetCellValue(summarySheet, "B13", len(diags.InvalidPowers))
		_ = f.SetCellValue(summarySheet, "A14", "Power passes")
		_ = f.SetCellValue(summarySheet, "B14", diags.PowerPasses)
		_ = f.SetCellValue(summarySheet, "A15", "Power converged")
		_ = f.SetCellValue(summarySheet, "B15", !diags.PowerUnconverged)
	}

	_ = f.SetCellValue(planSheet, "A1", "Row")
	_ = f.SetCellValue(planSheet, "B1", "Column")
	_ = f.SetCellValue(planSheet, "C1", "Value")
	row := 2
	for _, update := range result.Plan {
		for _, column := range sortedColumns(update.Fields) {
			_ = f.SetCellValue(planSheet, fmt.Sprintf("A%d", row), update.RowID)
			_ = f.SetCellValue(planSheet, fmt.Sprintf("B%d", row), column)
			_ = f.SetCellValue(planSheet, fmt.Sprintf("C%d", row), update.Fields[column])
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildRunReportPDF renders a one-page PDF run summary.
func BuildRunReportPDF(result *application.RunResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("export: nil run result")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Device Hierarchy Run")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Table: %s", result.Table))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Devices: %d", result.Devices))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rows updated: %d (%d batches)", result.RowsUpdated, result.Batches))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	if diags := result.Diagnostics; diags != nil {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(90, 6, "Diagnostic", "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, "Count", "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		lines := []struct {
			label string
			count int
		}{
			{"Duplicate names", len(diags.DuplicateNames)},
			{"Dangling parents", len(diags.DanglingParents)},
			{"Unknown heads", len(diags.UnknownHeads)},
			{"Cyclic ancestries", len(diags.Cycles)},
			{"Invalid powers", len(diags.InvalidPowers)},
		}
		for _, line := range lines {
			pdf.CellFormat(90, 6, line.label, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%d", line.count), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
		converged := "yes"
		if diags.PowerUnconverged {
			converged = "no"
		}
		pdf.Cell(0, 6, fmt.Sprintf("Power fixpoint: %d passes, converged: %s", diags.PowerPasses, converged))
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortedColumns(fields map[string]any) []string {
	columns := make([]string, 0, len(fields))
	for column := range fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}
