package hierarchy

// Columnar is a column-oriented table snapshot as returned by the record
// host: column name to the sequence of cell values, one per row. The "id"
// column defines the row count.
type Columnar map[string][]any

// IDColumn is the distinguished row-identity column of a snapshot.
const IDColumn = "id"

// RowCount returns the number of rows, defined by the id column.
func (c Columnar) RowCount() int {
	return len(c[IDColumn])
}

// Cell returns the value at (column, row), or nil when the column is
// missing or shorter than the id column.
func (c Columnar) Cell(column string, row int) any {
	values, ok := c[column]
	if !ok || row < 0 || row >= len(values) {
		return nil
	}
	return values[row]
}
