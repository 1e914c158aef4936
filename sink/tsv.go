// Package sink writes finished tables to their destinations.
package sink

import (
	"encoding/csv"
	"io"

	"github.com/carbocation/pfx"
	"github.com/carbocation/runpheno/table"
)

const (
	// Delim is the character used to delimit the output
	Delim = '\t'
)

// WriteTSV writes the header followed by every row, tab-delimited. Missing
// values are written as empty fields.
func WriteTSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delim

	if err := cw.Write(t.Columns); err != nil {
		return pfx.Err(err)
	}

	for _, row := range t.Rows {
		if err := cw.Write(row.Strings()); err != nil {
			return pfx.Err(err)
		}
	}

	cw.Flush()

	return cw.Error()
}
