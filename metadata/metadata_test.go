package metadata

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/carbocation/runpheno/descriptor"
	"github.com/carbocation/runpheno/layout"
	"github.com/carbocation/runpheno/table"
)

// descriptorFor builds a 17-field descriptor in the melanoma-ici layout.
func descriptorFor(age, phenotype, sex, id string) string {
	return strings.Join([]string{
		"age=" + age, "idh=1", "phenotype=" + phenotype, "type=cutaneous", "pi=x",
		"pt=y", "prog=no", "race=white", "sex=" + sex, "stage=IV", id,
		"time=12", "treat=PD1", "treat_sub=nivo", "cd8=high", "ena=yes", "-=na",
	}, ";")
}

func metadataRow(desc string) string {
	return fmt.Sprintf("GSM1\tSRS1\t%s\n", desc)
}

func defaultLayout(t *testing.T) layout.Layout {
	l, err := layout.New(layout.DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestRead(t *testing.T) {
	rows, err := Read(strings.NewReader("a\tb\tc\nd\te\n"), '\t')
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || len(rows[0]) != 3 || len(rows[1]) != 2 {
		t.Error("Mismatch", rows)
	}
}

func TestDeriveFilters(t *testing.T) {
	input := metadataRow(descriptorFor("61", "R", "F", "id=S1")) +
		metadataRow("source=tumor;tissue=skin") + // no marker
		metadataRow(descriptorFor("55", "NR", "M", "id=Wargo_7")) + // excluded
		metadataRow("age=40;idh=1") + // no identifier sub-field
		metadataRow(descriptorFor("70", "NR", "M", "id=S2"))

	rows, err := Read(strings.NewReader(input), '\t')
	if err != nil {
		t.Fatal(err)
	}

	tab, stats, err := Derive(rows, defaultLayout(t))
	if err != nil {
		t.Fatal(err)
	}

	if stats.Rows != 5 || stats.WithMarker != 4 || stats.WithID != 3 || stats.NotExcluded != 2 || stats.Width != 17 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if tab.Width() != 18 || tab.Columns[17] != "ID" {
		t.Error("Mismatch", tab.Columns)
	}
	if tab.Len() != 2 || tab.Rows[0][17].String != "S1" || tab.Rows[1][17].String != "S2" {
		t.Error("Mismatch", tab.Rows)
	}
}

func TestDeriveRequiresKeyValueIdentifier(t *testing.T) {
	rows, err := Read(strings.NewReader(metadataRow(descriptorFor("61", "R", "F", "S1"))), '\t')
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = Derive(rows, defaultLayout(t))
	if !errors.Is(err, descriptor.ErrMalformedKeyValue) {
		t.Errorf("expected ErrMalformedKeyValue, got %v", err)
	}
}

func TestDeriveRejectsExtraEquals(t *testing.T) {
	rows, err := Read(strings.NewReader(metadataRow(descriptorFor("61", "R", "F", "id=S1=b"))), '\t')
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := Derive(rows, defaultLayout(t)); !errors.Is(err, descriptor.ErrMalformedKeyValue) {
		t.Errorf("expected ErrMalformedKeyValue, got %v", err)
	}
}

func TestDeriveShortRow(t *testing.T) {
	rows, err := Read(strings.NewReader("GSM1\tage=1\n"), '\t')
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := Derive(rows, defaultLayout(t)); err == nil {
		t.Error("expected an error for a row without a descriptor column")
	}
}

func TestRestrictAndLabel(t *testing.T) {
	input := metadataRow(descriptorFor("61", "R", "F", "id=S1")) +
		metadataRow(descriptorFor("70", "NR", "M", "id=S2"))

	rows, err := Read(strings.NewReader(input), '\t')
	if err != nil {
		t.Fatal(err)
	}

	l := defaultLayout(t)
	tab, _, err := Derive(rows, l)
	if err != nil {
		t.Fatal(err)
	}

	tab, err = Restrict(tab, l.IDColumn(), map[string]struct{}{"S2": {}, "S9": {}})
	if err != nil {
		t.Fatal(err)
	}
	if tab.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", tab.Len())
	}

	if err := Label(tab, l); err != nil {
		t.Fatal(err)
	}

	pos, err := tab.Index("R_NR")
	if err != nil {
		t.Fatal(err)
	}
	if tab.Rows[0][pos].String != "NR" {
		t.Error("Mismatch", tab.Rows[0])
	}
}

func TestLabelWidthMismatch(t *testing.T) {
	// One extra sub-field shifts every positional name
	rows, err := Read(strings.NewReader(metadataRow(descriptorFor("61", "R", "F", "id=S1")+";extra=1")), '\t')
	if err != nil {
		t.Fatal(err)
	}

	l := defaultLayout(t)
	tab, _, err := Derive(rows, l)
	if err != nil {
		t.Fatal(err)
	}

	if err := Label(tab, l); !errors.Is(err, table.ErrWidthMismatch) {
		t.Errorf("expected ErrWidthMismatch, got %v", err)
	}
}
