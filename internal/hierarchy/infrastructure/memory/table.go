package memory

import (
	"context"
	"fmt"
	"sync"

	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

// Table is an in-memory record table acting as both record source and
// record sink. Updates are applied atomically per call.
type Table struct {
	mu   sync.RWMutex
	name string
	data hierarchy.Columnar
}

// NewTable constructs a table from a columnar snapshot.
func NewTable(name string, data hierarchy.Columnar) *Table {
	if data == nil {
		data = hierarchy.Columnar{hierarchy.IDColumn: nil}
	}
	return &Table{name: name, data: cloneColumnar(data)}
}

// FetchTable returns a copy of the current snapshot.
func (t *Table) FetchTable(ctx context.Context, table string) (hierarchy.Columnar, error) {
	_ = ctx
	if table != t.name {
		return nil, fmt.Errorf("memory table: unknown table %q", table)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return cloneColumnar(t.data), nil
}

// ApplyUpdates applies row updates in place. Unknown rows or columns fail
// the whole call without partial effect.
func (t *Table) ApplyUpdates(ctx context.Context, table string, updates []hierarchy.RowUpdate) error {
	_ = ctx
	if table != t.name {
		return fmt.Errorf("memory table: unknown table %q", table)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make(map[int64]int, t.data.RowCount())
	for i, raw := range t.data[hierarchy.IDColumn] {
		switch id := raw.(type) {
		case int64:
			rows[id] = i
		case int:
			rows[int64(id)] = i
		case float64:
			rows[int64(id)] = i
		}
	}

	// Validate before mutating: one call is atomic.
	for _, update := range updates {
		if _, ok := rows[update.RowID]; !ok {
			return fmt.Errorf("memory table: unknown row %d", update.RowID)
		}
		for column := range update.Fields {
			if _, ok := t.data[column]; !ok {
				return fmt.Errorf("memory table: unknown column %q", column)
			}
		}
	}
	for _, update := range updates {
		row := rows[update.RowID]
		for column, value := range update.Fields {
			if row < len(t.data[column]) {
				t.data[column][row] = value
			}
		}
	}
	return nil
}

func cloneColumnar(data hierarchy.Columnar) hierarchy.Columnar {
	clone := make(hierarchy.Columnar, len(data))
	for column, values := range data {
		copied := make([]any, len(values))
		copy(copied, values)
		clone[column] = copied
	}
	return clone
}
