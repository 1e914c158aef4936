// Package report reads run reports (as exported by sequence archives) that
// associate runs with the samples they were sequenced from.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/runpheno/table"
	"github.com/gocarina/gocsv"
	"gopkg.in/guregu/null.v3"
)

const (
	RunAccessionColumn    = "run_accession"
	SampleAccessionColumn = "sample_accession"
	SampleAliasColumn     = "sample_alias"
)

// RequiredColumns are the header names a report must carry.
var RequiredColumns = []string{RunAccessionColumn, SampleAccessionColumn, SampleAliasColumn}

type Run struct {
	RunAccession    string `csv:"run_accession"`
	SampleAccession string `csv:"sample_accession"`
	SampleAlias     string `csv:"sample_alias"`
}

// Parse decodes a headered report. Columns other than the required ones are
// ignored.
func Parse(fileBytes []byte, delim rune) ([]*Run, error) {
	if err := checkHeader(fileBytes, delim); err != nil {
		return nil, pfx.Err(err)
	}

	records := []*Run{}

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		r.LazyQuotes = true
		return r
	})

	if err := gocsv.UnmarshalBytes(fileBytes, &records); err != nil {
		return nil, pfx.Err(err)
	}

	return records, nil
}

func checkHeader(fileBytes []byte, delim rune) error {
	r := csv.NewReader(bytes.NewReader(fileBytes))
	r.Comma = delim
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return fmt.Errorf("report is empty")
	} else if err != nil {
		return fmt.Errorf("Header parsing error: %w", err)
	}

	seen := make(map[string]struct{}, len(header))
	for _, col := range header {
		seen[strings.TrimSpace(col)] = struct{}{}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, exists := seen[col]; !exists {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("report header lacks %s (found %s)", strings.Join(missing, ", "), strings.Join(header, ","))
	}

	return nil
}

// Aliases returns the set of sample aliases in the report. Empty aliases are
// missing values and are left out.
func Aliases(runs []*Run) map[string]struct{} {
	out := make(map[string]struct{}, len(runs))
	for _, run := range runs {
		if run.SampleAlias == "" {
			continue
		}
		out[run.SampleAlias] = struct{}{}
	}

	return out
}

// Project builds a three-column table of run accession, sample accession and
// sample alias, in that order, and names the columns positionally. Empty cells
// are stored as missing, so an empty alias never joins.
func Project(runs []*Run, names []string) (*table.Table, error) {
	out := table.New(RequiredColumns...)
	if err := out.Rename(names); err != nil {
		return nil, fmt.Errorf("Project: %w", err)
	}

	for _, run := range runs {
		out.Rows = append(out.Rows, table.Row{
			null.NewString(run.RunAccession, run.RunAccession != ""),
			null.NewString(run.SampleAccession, run.SampleAccession != ""),
			null.NewString(run.SampleAlias, run.SampleAlias != ""),
		})
	}

	return out, nil
}
