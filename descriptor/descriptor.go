// Package descriptor parses the semicolon-separated key=value blobs that
// sample metadata exports use to pack several attributes into one column.
package descriptor

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/guregu/null.v3"
)

var (
	ErrMissingValue      = errors.New("missing value")
	ErrMalformedKeyValue = errors.New("malformed key=value")
)

const (
	FieldSeparator    = ";"
	KeyValueSeparator = "="
)

type KeyValue struct {
	Key   string
	Value string
}

// Split breaks a descriptor into its sub-fields. Empty sub-fields are kept so
// that positions stay stable.
func Split(desc, sep string) []string {
	return strings.Split(desc, sep)
}

// Pad returns fields as a row of exactly width cells. Positions past the end
// of fields are missing.
func Pad(fields []string, width int) []null.String {
	out := make([]null.String, width)
	for i := 0; i < width && i < len(fields); i++ {
		out[i] = null.StringFrom(fields[i])
	}

	return out
}

// ParseKeyValue splits a sub-field such as "phenotype=R" into its key and
// value. Anything other than exactly one separator is an error.
func ParseKeyValue(field string) (KeyValue, error) {
	parts := strings.Split(field, KeyValueSeparator)
	if x := len(parts); x != 2 {
		return KeyValue{}, fmt.Errorf("expected 2 parts, %q had %d: %w", field, x, ErrMalformedKeyValue)
	}

	return KeyValue{Key: parts[0], Value: parts[1]}, nil
}

// Value returns the value half of a key=value cell.
func Value(cell null.String) (null.String, error) {
	if !cell.Valid {
		return null.String{}, ErrMissingValue
	}

	kv, err := ParseKeyValue(cell.String)
	if err != nil {
		return null.String{}, err
	}

	return null.StringFrom(kv.Value), nil
}
