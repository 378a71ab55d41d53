package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

// TableRepository reads and updates a device table mirrored into Postgres,
// acting as record source and record sink for the engine. Column names are
// taken verbatim from the mirror, so alias resolution stays in the loader.
type TableRepository struct {
	db *sql.DB
}

// NewTableRepository constructs a repository.
func NewTableRepository(db *sql.DB) *TableRepository {
	return &TableRepository{db: db}
}

// FetchTable loads the whole table as a columnar snapshot, ordered by id.
func (r *TableRepository) FetchTable(ctx context.Context, table string) (hierarchy.Columnar, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("table repo: nil db")
	}
	if err := validateIdent(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT * FROM %q ORDER BY id ASC`, table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	snapshot := make(hierarchy.Columnar, len(columns))
	for _, column := range columns {
		snapshot[column] = nil
	}

	values := make([]any, len(columns))
	scan := make([]any, len(columns))
	for i := range values {
		scan[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		for i, column := range columns {
			snapshot[column] = append(snapshot[column], normalizeCell(values[i]))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if _, ok := snapshot[hierarchy.IDColumn]; !ok {
		return nil, hierarchy.ErrMissingIDColumn
	}
	return snapshot, nil
}

// ApplyUpdates applies one batch inside a single transaction.
func (r *TableRepository) ApplyUpdates(ctx context.Context, table string, updates []hierarchy.RowUpdate) error {
	if r == nil || r.db == nil {
		return errors.New("table repo: nil db")
	}
	if err := validateIdent(table); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, update := range updates {
		if len(update.Fields) == 0 {
			continue
		}
		assignments := make([]string, 0, len(update.Fields))
		args := make([]any, 0, len(update.Fields)+1)
		for column, value := range update.Fields {
			if err := validateIdent(column); err != nil {
				return err
			}
			args = append(args, value)
			assignments = append(assignments, fmt.Sprintf("%q = $%d", column, len(args)))
		}
		args = append(args, update.RowID)
		query := fmt.Sprintf(`UPDATE %q SET %s WHERE id = $%d`,
			table, strings.Join(assignments, ", "), len(args))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func normalizeCell(value any) any {
	switch v := value.(type) {
	case []byte:
		return string(v)
	default:
		return v
	}
}

func validateIdent(name string) error {
	if name == "" {
		return hierarchy.ErrEmptyTable
	}
	if strings.ContainsAny(name, `"; `) {
		return fmt.Errorf("table repo: invalid identifier %q", name)
	}
	return nil
}
