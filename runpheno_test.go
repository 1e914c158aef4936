package runpheno

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const reportTSV = "run_accession\tsample_accession\tsample_alias\nERR1\tERS1\tS1\nERR2\tERS2\tS2\n"

func TestDetectDataType(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(reportTSV))
	zw.Close()

	if dt := DetectDataType(buf.Bytes()); dt != DataTypeGzip {
		t.Errorf("expected gzip, got %s", dt)
	}
	if dt := DetectDataType([]byte(reportTSV)); dt != DataTypeNoCompression {
		t.Errorf("expected uncompressed, got %s", dt)
	}
	if dt := DetectDataType([]byte{0x1f}); dt != DataTypeNoCompression {
		t.Errorf("a truncated signature should not match, got %s", dt)
	}
}

func TestMaybeDecompressGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(reportTSV))
	zw.Close()

	rc, dt, err := MaybeDecompress(io.NopCloser(&buf))
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()

	if dt != DataTypeGzip {
		t.Errorf("expected gzip, got %s", dt)
	}

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != reportTSV {
		t.Error("Mismatch", string(got))
	}
}

func TestMaybeDecompressTinyInput(t *testing.T) {
	rc, dt, err := MaybeDecompress(io.NopCloser(strings.NewReader("a\n")))
	if err != nil {
		t.Fatal(err)
	}
	if dt != DataTypeNoCompression {
		t.Errorf("expected uncompressed, got %s", dt)
	}

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a\n" {
		t.Error("Mismatch", string(got))
	}
}

func TestOpenEmptyAndShortFiles(t *testing.T) {
	dir := t.TempDir()

	for name, contents := range map[string]string{"empty.tsv": "", "short.tsv": "a\tb\n"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}

		got, err := ReadAll(context.Background(), path, nil)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if string(got) != contents {
			t.Errorf("%s: expected %q, got %q", name, contents, string(got))
		}
	}
}

type failingCloser struct {
	io.Reader
}

var errCloseFailed = errors.New("close failed")

func (failingCloser) Close() error { return errCloseFailed }

func TestMaybeDecompressCloseReportsSourceError(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(reportTSV))
	zw.Close()

	for _, src := range []io.Reader{strings.NewReader(reportTSV), &buf} {
		rc, _, err := MaybeDecompress(failingCloser{src})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.ReadAll(rc); err != nil {
			t.Fatal(err)
		}
		if err := rc.Close(); !errors.Is(err, errCloseFailed) {
			t.Errorf("expected the source's close error, got %v", err)
		}
	}
}

func TestOpenLocalGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.tsv.gz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	zw.Write([]byte(reportTSV))
	zw.Close()
	f.Close()

	got, err := ReadAll(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != reportTSV {
		t.Error("Mismatch", string(got))
	}
}

func TestOpenGSWithoutClient(t *testing.T) {
	if _, err := Open(context.Background(), "gs://bucket/report.tsv", nil); err == nil {
		t.Error("expected an error without a storage client")
	}
}

func TestSplitGSPath(t *testing.T) {
	bucket, object, err := SplitGSPath("gs://my-bucket/ena/filereport.tsv")
	if err != nil {
		t.Fatal(err)
	}
	if bucket != "my-bucket" || object != "ena/filereport.tsv" {
		t.Error("Mismatch", bucket, object)
	}

	if _, _, err := SplitGSPath("gs://my-bucket"); err == nil {
		t.Error("expected an error for a path without an object")
	}
}

func TestNeedsStorageClient(t *testing.T) {
	if NeedsStorageClient("a.tsv", "~/b.tsv") {
		t.Error("local paths need no client")
	}
	if !NeedsStorageClient("a.tsv", "gs://bucket/b.tsv") {
		t.Error("gs paths need a client")
	}
}

func TestExpandHome(t *testing.T) {
	path, err := ExpandHome("/tmp/x.tsv")
	if err != nil || path != "/tmp/x.tsv" {
		t.Error("absolute paths should be unchanged", path, err)
	}

	path, err = ExpandHome("~/x.tsv")
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(path, "~") || !strings.HasSuffix(path, "x.tsv") {
		t.Error("Mismatch", path)
	}
}

func TestDetermineDelimiter(t *testing.T) {
	if d := DetermineDelimiter(strings.NewReader(reportTSV)); d != '\t' {
		t.Errorf("expected tab, got %q", d)
	}
	if d := DetermineDelimiter(strings.NewReader(strings.ReplaceAll(reportTSV, "\t", ","))); d != ',' {
		t.Errorf("expected comma, got %q", d)
	}
}

func TestParseDelimiter(t *testing.T) {
	for name, want := range map[string]rune{"tab": '\t', "comma": ',', "auto": 0, ";": ';'} {
		got, err := ParseDelimiter(name)
		if err != nil {
			t.Error(err)
		}
		if got != want {
			t.Errorf("%s: expected %q, got %q", name, want, got)
		}
	}

	if _, err := ParseDelimiter("pipe"); err == nil {
		t.Error("expected an error")
	}
}
