package runpheno

import (
	"fmt"
	"io"

	"github.com/csimplestring/go-csv/detector"
)

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file. Tab is assumed when nothing
// can be detected, since every input to this tool is expected to be a TSV.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 && len(delimiters[0]) > 0 {
		return rune(delimiters[0][0])
	}

	return '\t'
}

// ParseDelimiter converts a command-line delimiter name into a rune. The
// special value "auto" returns 0, which callers treat as a request to run
// DetermineDelimiter on the data.
func ParseDelimiter(name string) (rune, error) {
	switch name {
	case "tab", "\\t", "\t", "":
		return '\t', nil
	case "comma", ",":
		return ',', nil
	case "space", " ":
		return ' ', nil
	case "semicolon", ";":
		return ';', nil
	case "auto":
		return 0, nil
	}

	return 0, fmt.Errorf("unrecognized delimiter %q: use tab, comma, space, semicolon or auto", name)
}
