package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/runpheno/table"
	"github.com/montanaflynn/stats"
)

type Tally struct {
	Column string
	Counts map[string]int
}

type Summary struct {
	Rows    int
	Tallies []Tally

	NumericColumn string
	NumericN      int
	Mean          float64
	Median        float64
}

// Summarize counts the values of each group column and computes the mean and
// median of the numeric column. Values that don't parse as numbers are left out
// of the numeric summary.
func Summarize(t *table.Table, groupColumns []string, numericColumn string) (Summary, error) {
	s := Summary{Rows: t.Len(), NumericColumn: numericColumn}

	for _, col := range groupColumns {
		idx, err := t.Index(col)
		if err != nil {
			return s, pfx.Err(err)
		}

		tally := Tally{Column: col, Counts: make(map[string]int)}
		for _, row := range t.Rows {
			tally.Counts[table.NullStringFormatter(row[idx])]++
		}
		s.Tallies = append(s.Tallies, tally)
	}

	if numericColumn == "" {
		return s, nil
	}

	idx, err := t.Index(numericColumn)
	if err != nil {
		return s, pfx.Err(err)
	}

	values := make(stats.Float64Data, 0, t.Len())
	for _, row := range t.Rows {
		if !row[idx].Valid {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx].String), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}

	s.NumericN = len(values)
	if s.NumericN == 0 {
		return s, nil
	}

	if s.Mean, err = stats.Mean(values); err != nil {
		return s, pfx.Err(err)
	}
	if s.Median, err = stats.Median(values); err != nil {
		return s, pfx.Err(err)
	}

	return s, nil
}

func (s Summary) String() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "%d rows", s.Rows)

	for _, tally := range s.Tallies {
		keys := make([]string, 0, len(tally.Counts))
		for k := range tally.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%d", k, tally.Counts[k])
		}
		fmt.Fprintf(&b, "; %s: %s", tally.Column, strings.Join(parts, ", "))
	}

	if s.NumericColumn != "" {
		fmt.Fprintf(&b, "; %s: n=%d mean=%.1f median=%.1f", s.NumericColumn, s.NumericN, s.Mean, s.Median)
	}

	return b.String()
}
