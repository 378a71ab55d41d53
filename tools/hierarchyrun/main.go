package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"device-hierarchy/internal/hierarchy/application"
	"device-hierarchy/internal/hierarchy/infrastructure/memory"
	"device-hierarchy/internal/hierarchy/infrastructure/xlsx"
	"device-hierarchy/internal/hierarchy/interfaces"
)

type config struct {
	workbook  string
	sheet     string
	outDir    string
	separator string
	apply     bool
}

func main() {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	var cfg config
	flag.StringVar(&cfg.workbook, "workbook", "", "path to the XLSX workbook")
	flag.StringVar(&cfg.sheet, "sheet", "AllDevice", "sheet holding the device table")
	flag.StringVar(&cfg.outDir, "out", ".", "directory for report files")
	flag.StringVar(&cfg.separator, "separator", `\`, "path separator")
	flag.BoolVar(&cfg.apply, "apply", false, "apply the plan to an in-memory copy and verify an empty replan")
	flag.Parse()

	if cfg.workbook == "" {
		logger.Fatal("missing -workbook")
	}

	engineCfg := application.DefaultConfig()
	engineCfg.TableName = cfg.sheet
	engineCfg.PathSeparator = cfg.separator
	engineCfg.BatchDelayMs = 0

	source, err := xlsx.NewSource(cfg.workbook)
	if err != nil {
		logger.Fatalf("source error: %v", err)
	}
	snapshot, err := source.FetchTable(context.Background(), cfg.sheet)
	if err != nil {
		logger.Fatalf("fetch error: %v", err)
	}

	computed, err := application.Compute(snapshot, engineCfg)
	if err != nil {
		logger.Fatalf("compute error: %v", err)
	}
	result := offlineResult(cfg.sheet, computed)

	fmt.Printf("devices=%d planned_rows=%d cycles=%d dangling=%d duplicates=%d\n",
		result.Devices, len(computed.Plan),
		len(computed.Diagnostics.Cycles),
		len(computed.Diagnostics.DanglingParents),
		len(computed.Diagnostics.DuplicateNames))

	if cfg.apply && len(computed.Plan) > 0 {
		table := memory.NewTable(cfg.sheet, snapshot)
		runner := application.NewRunner(table, table, engineCfg, nil, nil, logger)
		applied, err := runner.Run(context.Background(), nil)
		if err != nil {
			logger.Fatalf("apply error: %v", err)
		}
		result.RowsUpdated = applied.RowsUpdated
		result.Batches = applied.Batches
		replayed, err := table.FetchTable(context.Background(), cfg.sheet)
		if err != nil {
			logger.Fatalf("refetch error: %v", err)
		}
		recomputed, err := application.Compute(replayed, engineCfg)
		if err != nil {
			logger.Fatalf("recompute error: %v", err)
		}
		fmt.Printf("replan_rows=%d\n", len(recomputed.Plan))
	}

	xlsxBytes, err := interfaces.BuildRunReportXLSX(result)
	if err != nil {
		logger.Fatalf("xlsx report error: %v", err)
	}
	pdfBytes, err := interfaces.BuildRunReportPDF(result)
	if err != nil {
		logger.Fatalf("pdf report error: %v", err)
	}
	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		logger.Fatalf("out dir error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.outDir, "hierarchy-report.xlsx"), xlsxBytes, 0o644); err != nil {
		logger.Fatalf("write xlsx error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.outDir, "hierarchy-report.pdf"), pdfBytes, 0o644); err != nil {
		logger.Fatalf("write pdf error: %v", err)
	}
}

// offlineResult wraps a pure computation for the report. Rows count as
// updated only after an actual apply.
func offlineResult(sheet string, computed *application.ComputeResult) *application.RunResult {
	return &application.RunResult{
		Table:       sheet,
		Devices:     len(computed.Snapshot.Devices),
		Plan:        computed.Plan,
		Diagnostics: computed.Diagnostics,
	}
}
