// Package table is a minimal in-memory string table with named, positionally
// renameable columns. Cells are nullable so that rows of uneven width can be
// padded the same way a dataframe pads them.
package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"
)

var (
	ErrWidthMismatch = errors.New("column count mismatch")
	ErrUnknownColumn = errors.New("unknown column")
)

type Row []null.String

type Table struct {
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given column names.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)

	return &Table{Columns: cols}
}

// Positional creates an empty table of the given width whose columns are named
// by their 0-based position ("0", "1", ...).
func Positional(width int) *Table {
	cols := make([]string, width)
	for i := range cols {
		cols[i] = strconv.Itoa(i)
	}

	return &Table{Columns: cols}
}

func (t *Table) Width() int { return len(t.Columns) }

func (t *Table) Len() int { return len(t.Rows) }

// Append adds a row, which must be exactly as wide as the table.
func (t *Table) Append(row Row) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row %d has %d values but the table has %d columns: %w", len(t.Rows), len(row), len(t.Columns), ErrWidthMismatch)
	}
	t.Rows = append(t.Rows, row)

	return nil
}

// Index returns the position of the first column with the given name.
func (t *Table) Index(name string) (int, error) {
	for i, col := range t.Columns {
		if col == name {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%q (have %s): %w", name, strings.Join(t.Columns, ","), ErrUnknownColumn)
}

// Rename replaces every column name by position. The number of names must
// equal the table width; nothing is renamed otherwise.
func (t *Table) Rename(names []string) error {
	if len(names) != len(t.Columns) {
		return fmt.Errorf("cannot assign %d names to %d columns: %w", len(names), len(t.Columns), ErrWidthMismatch)
	}
	copy(t.Columns, names)

	return nil
}

// Filter returns a new table holding the rows for which keep is true. Rows are
// shared with t, not copied.
func (t *Table) Filter(keep func(row Row) (bool, error)) (*Table, error) {
	out := New(t.Columns...)
	for i, row := range t.Rows {
		ok, err := keep(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if ok {
			out.Rows = append(out.Rows, row)
		}
	}

	return out, nil
}

// Derive computes a value per row from the column named from and stores it in
// the column named to, which is appended if it does not yet exist.
func (t *Table) Derive(from, to string, fn func(null.String) (null.String, error)) error {
	src, err := t.Index(from)
	if err != nil {
		return err
	}

	dst, err := t.Index(to)
	if err != nil {
		dst = len(t.Columns)
		t.Columns = append(t.Columns, to)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], null.String{})
		}
	}

	for i, row := range t.Rows {
		v, err := fn(row[src])
		if err != nil {
			return fmt.Errorf("row %d column %s: %w", i, from, err)
		}
		row[dst] = v
	}

	return nil
}

// Project returns a new table with only the named columns, in the order given.
func (t *Table) Project(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		pos, err := t.Index(name)
		if err != nil {
			return nil, err
		}
		idx[i] = pos
	}

	out := New(names...)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		projected := make(Row, len(idx))
		for i, pos := range idx {
			projected[i] = row[pos]
		}
		out.Rows = append(out.Rows, projected)
	}

	return out, nil
}

// Strings formats a row for output; missing values become empty strings.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = NullStringFormatter(v)
	}

	return out
}

func NullStringFormatter(n null.String) string {
	if !n.Valid {
		return ""
	}

	return n.String
}
