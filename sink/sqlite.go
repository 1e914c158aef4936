package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/runpheno/table"
	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite"
)

// WriteSQLite replaces tableName in the sqlite database at path with the
// contents of t. Every column is stored as nullable TEXT.
func WriteSQLite(ctx context.Context, path, tableName string, t *table.Table) error {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return pfx.Err(err)
	}
	defer db.Close()

	cols := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cols[i] = quoteIdent(col)
		marks[i] = "?"
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return pfx.Err(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(tableName))); err != nil {
		return pfx.Err(err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s TEXT)", quoteIdent(tableName), strings.Join(cols, " TEXT, "))); err != nil {
		return pfx.Err(err)
	}

	stmt, err := tx.PreparexContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(tableName), strings.Join(cols, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return pfx.Err(err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(t.Columns))
	for i, row := range t.Rows {
		for j, v := range row {
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return pfx.Err(fmt.Errorf("row %d: %w", i, err))
		}
	}

	return tx.Commit()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
