package xlsx

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

// Source reads a columnar snapshot from an XLSX workbook. The requested
// table name selects the sheet; the first row carries the column names.
// Cells arrive as strings and rely on the loader's permissive coercions.
type Source struct {
	path string
}

// NewSource constructs a workbook source.
func NewSource(path string) (*Source, error) {
	if path == "" {
		return nil, errors.New("xlsx source: empty path")
	}
	return &Source{path: path}, nil
}

// FetchTable loads one sheet as a columnar snapshot.
func (s *Source) FetchTable(ctx context.Context, table string) (hierarchy.Columnar, error) {
	_ = ctx
	if table == "" {
		return nil, hierarchy.ErrEmptyTable
	}
	book, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	rows, err := book.GetRows(table)
	if err != nil {
		return nil, fmt.Errorf("xlsx source: sheet %q: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, hierarchy.ErrMissingIDColumn
	}

	header := rows[0]
	idIndex := -1
	snapshot := make(hierarchy.Columnar, len(header))
	for i, column := range header {
		if column == hierarchy.IDColumn {
			idIndex = i
		}
		if column != "" {
			snapshot[column] = nil
		}
	}
	for _, row := range rows[1:] {
		// Sheets often carry trailing blank rows; a row without an id is
		// not a record.
		if idIndex < 0 || idIndex >= len(row) || row[idIndex] == "" {
			continue
		}
		for i, column := range header {
			if column == "" {
				continue
			}
			if i < len(row) && row[i] != "" {
				snapshot[column] = append(snapshot[column], row[i])
			} else {
				snapshot[column] = append(snapshot[column], nil)
			}
		}
	}
	if _, ok := snapshot[hierarchy.IDColumn]; !ok {
		return nil, hierarchy.ErrMissingIDColumn
	}
	return snapshot, nil
}
