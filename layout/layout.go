package layout

import (
	"fmt"
	"sort"
	"strings"
)

// Extraction replaces (or adds) the column To with the value half of the
// key=value cells found in column From.
type Extraction struct {
	From string
	To   string
}

// Layout pins down everything about a metadata/report pair that is specific to
// one dataset: where the descriptor lives, which sub-field holds the sample
// identifier, and the positional names given to columns at each stage.
type Layout struct {
	// 0-based column of the metadata file that holds the descriptor
	DescriptorColumn int
	FieldSeparator   string

	// Rows whose descriptor lacks Marker are dropped before anything else;
	// rows whose identifier sub-field contains Exclude are dropped after
	// splitting. An empty Exclude disables the exclusion.
	Marker  string
	Exclude string

	// 0-based sub-field of the split descriptor holding "prefix=ID"
	IDField int

	// Names for the split sub-fields plus the derived identifier, which is
	// always the last entry.
	MetadataColumns []string

	ResponseSource string
	ResponseColumn string

	// Names given, in order, to the report's run_accession, sample_accession
	// and sample_alias columns. The last one is the join key.
	ReportColumns []string

	// Names for the joined table: ReportColumns followed by one name per
	// metadata sub-field.
	JoinedColumns []string

	Extractions []Extraction
	Output      []string

	// Output columns tallied, and the numeric column averaged, in the run
	// summary.
	GroupColumns  []string
	NumericColumn string
}

var Layouts = map[string]Layout{
	"melanoma-ici": {
		DescriptorColumn: 2,
		FieldSeparator:   ";",
		Marker:           "age",
		Exclude:          "Wargo",
		IDField:          10,
		MetadataColumns: []string{
			"age", "idh", "phenotype", "type", "pi", "pt", "prog", "race", "sex",
			"stage", "id", "time", "treat", "treat_sub", "cd8", "ena", "-", "ID",
		},
		ResponseSource: "phenotype",
		ResponseColumn: "R_NR",
		ReportColumns:  []string{"variable", "sample_accession", "ID"},
		JoinedColumns: []string{
			"variable", "sample_accession", "ID", "age", "1", "phenotype", "3",
			"4", "5", "6", "7", "sex", "9", "10", "11", "12", "13", "14", "15", "16",
		},
		Extractions: []Extraction{
			{From: "phenotype", To: "R_NR"},
			{From: "sex", To: "sex"},
			{From: "age", To: "age"},
		},
		Output:        []string{"variable", "age", "R_NR", "sex"},
		GroupColumns:  []string{"R_NR", "sex"},
		NumericColumn: "age",
	},
}

const DefaultLayout = "melanoma-ici"

func LayoutNames() string {
	names := make([]string, 0, len(Layouts))
	for m := range Layouts {
		names = append(names, m)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

// New looks up a registered layout and validates it.
func New(name string) (Layout, error) {
	l, exists := Layouts[name]
	if !exists {
		return Layout{}, fmt.Errorf("Layout %s is not found. Valid layout names include: %s", name, LayoutNames())
	}

	if err := l.Validate(); err != nil {
		return Layout{}, fmt.Errorf("Layout %s: %w", name, err)
	}

	return l, nil
}

// SubFields is the number of descriptor sub-fields the layout expects.
func (l Layout) SubFields() int { return len(l.MetadataColumns) - 1 }

// IDColumn is the name of the join key.
func (l Layout) IDColumn() string { return l.MetadataColumns[len(l.MetadataColumns)-1] }

// Validate checks that the positional name lists agree with each other, so
// that a bad layout fails before any data is read.
func (l Layout) Validate() error {
	if l.DescriptorColumn < 0 {
		return fmt.Errorf("descriptor column %d is negative", l.DescriptorColumn)
	}
	if l.FieldSeparator == "" {
		return fmt.Errorf("field separator is empty")
	}
	if len(l.MetadataColumns) < 2 {
		return fmt.Errorf("need at least one sub-field name plus the identifier name, have %d names", len(l.MetadataColumns))
	}
	if l.IDField < 0 || l.IDField >= l.SubFields() {
		return fmt.Errorf("identifier sub-field %d is outside the %d named sub-fields", l.IDField, l.SubFields())
	}
	if dup := firstDuplicate(l.MetadataColumns); dup != "" {
		return fmt.Errorf("metadata column %q is named twice", dup)
	}
	if !contains(l.MetadataColumns, l.ResponseSource) {
		return fmt.Errorf("response source %q is not a metadata column", l.ResponseSource)
	}
	if len(l.ReportColumns) != 3 {
		return fmt.Errorf("need 3 report column names, have %d", len(l.ReportColumns))
	}
	if key := l.ReportColumns[2]; key != l.IDColumn() {
		return fmt.Errorf("report join column %q differs from metadata identifier column %q", key, l.IDColumn())
	}
	if want := len(l.ReportColumns) + l.SubFields(); len(l.JoinedColumns) != want {
		return fmt.Errorf("joined tables have %d columns but %d joined names were given", want, len(l.JoinedColumns))
	}
	for i, name := range l.ReportColumns {
		if l.JoinedColumns[i] != name {
			return fmt.Errorf("joined column %d is %q, expected report column %q", i, l.JoinedColumns[i], name)
		}
	}

	available := append([]string{}, l.JoinedColumns...)
	for _, ex := range l.Extractions {
		if !contains(available, ex.From) {
			return fmt.Errorf("extraction source %q is not a joined column", ex.From)
		}
		if !contains(available, ex.To) {
			available = append(available, ex.To)
		}
	}
	for _, name := range l.Output {
		if !contains(available, name) {
			return fmt.Errorf("output column %q is never produced", name)
		}
	}

	for _, name := range l.GroupColumns {
		if !contains(l.Output, name) {
			return fmt.Errorf("summary column %q is not an output column", name)
		}
	}
	if l.NumericColumn != "" && !contains(l.Output, l.NumericColumn) {
		return fmt.Errorf("summary column %q is not an output column", l.NumericColumn)
	}

	return nil
}

func firstDuplicate(names []string) string {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, exists := seen[name]; exists {
			return name
		}
		seen[name] = struct{}{}
	}

	return ""
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}

	return false
}
