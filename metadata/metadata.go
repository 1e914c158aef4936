// Package metadata turns a headerless sample metadata export into a table of
// descriptor sub-fields keyed by the sample identifier.
package metadata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/runpheno/descriptor"
	"github.com/carbocation/runpheno/layout"
	"github.com/carbocation/runpheno/table"
	"gopkg.in/guregu/null.v3"
)

// Read reads every row of a headerless delimited file. Rows may differ in
// width.
func Read(r io.Reader, delim rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, pfx.Err(err)
	}

	return rows, nil
}

// Stats counts how many rows each filtering step let through.
type Stats struct {
	Rows        int
	WithMarker  int
	WithID      int
	NotExcluded int
	Width       int
}

// Derive keeps the rows whose descriptor contains the layout's marker, splits
// each descriptor into sub-fields, drops rows with no identifier sub-field or
// whose identifier matches the exclusion, and appends the identifier column.
//
// The table is as wide as the longest split descriptor among the marked rows
// (plus the identifier); shorter descriptors are padded with missing cells.
func Derive(rows [][]string, l layout.Layout) (*table.Table, Stats, error) {
	stats := Stats{Rows: len(rows)}

	splits := make([][]string, 0, len(rows))
	for i, row := range rows {
		if len(row) <= l.DescriptorColumn {
			return nil, stats, pfx.Err(fmt.Errorf("metadata row %d has %d columns; the descriptor is expected in column %d", i, len(row), l.DescriptorColumn))
		}

		desc := row[l.DescriptorColumn]
		if !strings.Contains(desc, l.Marker) {
			continue
		}

		fields := descriptor.Split(desc, l.FieldSeparator)
		if len(fields) > stats.Width {
			stats.Width = len(fields)
		}
		splits = append(splits, fields)
	}
	stats.WithMarker = len(splits)

	out := table.Positional(stats.Width)
	out.Columns = append(out.Columns, l.IDColumn())

	for i, fields := range splits {
		padded := descriptor.Pad(fields, stats.Width)

		var idField null.String
		if l.IDField < len(padded) {
			idField = padded[l.IDField]
		}
		if !idField.Valid {
			continue
		}
		stats.WithID++

		if l.Exclude != "" && strings.Contains(idField.String, l.Exclude) {
			continue
		}
		stats.NotExcluded++

		id, err := descriptor.Value(idField)
		if err != nil {
			return nil, stats, fmt.Errorf("Derive: marked metadata row %d, sub-field %d: %w", i, l.IDField, err)
		}

		if err := out.Append(append(padded, id)); err != nil {
			return nil, stats, fmt.Errorf("Derive: %w", err)
		}
	}

	return out, stats, nil
}

// Restrict keeps only the rows whose identifier is one of the given aliases.
func Restrict(t *table.Table, idColumn string, aliases map[string]struct{}) (*table.Table, error) {
	idx, err := t.Index(idColumn)
	if err != nil {
		return nil, fmt.Errorf("Restrict: %w", err)
	}

	return t.Filter(func(row table.Row) (bool, error) {
		_, exists := aliases[row[idx].String]
		return row[idx].Valid && exists, nil
	})
}

// Label assigns the layout's metadata names to the derived table by position
// and extracts the response label from its source column. The table must have
// exactly one column per name.
func Label(t *table.Table, l layout.Layout) error {
	if err := t.Rename(l.MetadataColumns); err != nil {
		return fmt.Errorf("Label: descriptor sub-fields do not line up with the layout: %w", err)
	}

	if err := t.Derive(l.ResponseSource, l.ResponseColumn, descriptor.Value); err != nil {
		return fmt.Errorf("Label: %w", err)
	}

	return nil
}
