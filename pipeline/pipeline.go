// Package pipeline links derived metadata to sequencing runs and produces the
// relabeled per-run phenotype table.
package pipeline

import (
	"fmt"
	"log"

	"github.com/carbocation/runpheno/descriptor"
	"github.com/carbocation/runpheno/layout"
	"github.com/carbocation/runpheno/metadata"
	"github.com/carbocation/runpheno/report"
	"github.com/carbocation/runpheno/table"
)

// Run applies the whole transformation to raw metadata rows and parsed report
// runs. Any malformed row aborts the run.
func Run(metaRows [][]string, runs []*report.Run, l layout.Layout) (*table.Table, error) {
	meta, stats, err := metadata.Derive(metaRows, l)
	if err != nil {
		return nil, err
	}
	log.Printf("Metadata: %d rows, %d with marker %q, %d with an identifier, %d after excluding %q\n",
		stats.Rows, stats.WithMarker, l.Marker, stats.WithID, stats.NotExcluded, l.Exclude)

	meta, err = metadata.Restrict(meta, l.IDColumn(), report.Aliases(runs))
	if err != nil {
		return nil, err
	}
	log.Printf("Metadata: %d rows have an identifier found among %d report runs\n", meta.Len(), len(runs))

	if err := metadata.Label(meta, l); err != nil {
		return nil, err
	}

	// The response label is re-derived after the join, so only the
	// positionally named columns take part in it.
	right, err := meta.Project(l.MetadataColumns...)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	left, err := report.Project(runs, l.ReportColumns)
	if err != nil {
		return nil, err
	}

	joined, err := Join(left, right, l.IDColumn())
	if err != nil {
		return nil, err
	}
	log.Printf("Joined %d runs\n", joined.Len())

	return Finalize(joined, l)
}

// Finalize renames the joined table positionally, extracts the values of the
// key=value columns and projects down to the output columns.
func Finalize(joined *table.Table, l layout.Layout) (*table.Table, error) {
	if err := joined.Rename(l.JoinedColumns); err != nil {
		return nil, fmt.Errorf("Finalize: joined columns do not line up with the layout: %w", err)
	}

	for _, ex := range l.Extractions {
		if err := joined.Derive(ex.From, ex.To, descriptor.Value); err != nil {
			return nil, fmt.Errorf("Finalize: %w", err)
		}
	}

	out, err := joined.Project(l.Output...)
	if err != nil {
		return nil, fmt.Errorf("Finalize: %w", err)
	}

	return out, nil
}
