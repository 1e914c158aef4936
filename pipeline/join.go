package pipeline

import (
	"fmt"

	"github.com/carbocation/runpheno/table"
)

// Join inner-joins left and right on the column named key. The result holds
// the left columns followed by the right columns other than key. Rows follow
// left order; a left row matching several right rows is repeated once per
// match, in right order. Rows with a missing key never match.
func Join(left, right *table.Table, key string) (*table.Table, error) {
	li, err := left.Index(key)
	if err != nil {
		return nil, fmt.Errorf("Join: left side: %w", err)
	}
	ri, err := right.Index(key)
	if err != nil {
		return nil, fmt.Errorf("Join: right side: %w", err)
	}

	byKey := make(map[string][]table.Row)
	for _, row := range right.Rows {
		if !row[ri].Valid {
			continue
		}
		byKey[row[ri].String] = append(byKey[row[ri].String], row)
	}

	cols := append([]string{}, left.Columns...)
	cols = append(cols, dropIndex(right.Columns, ri)...)
	out := table.New(cols...)

	for _, lrow := range left.Rows {
		if !lrow[li].Valid {
			continue
		}

		for _, rrow := range byKey[lrow[li].String] {
			joined := make(table.Row, 0, len(cols))
			joined = append(joined, lrow...)
			joined = append(joined, dropIndex(rrow, ri)...)
			out.Rows = append(out.Rows, joined)
		}
	}

	return out, nil
}

func dropIndex[T any](in []T, idx int) []T {
	out := make([]T, 0, len(in)-1)
	out = append(out, in[:idx]...)

	return append(out, in[idx+1:]...)
}
