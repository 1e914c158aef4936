package main

import (
	"bufio"
	"bytes"
	"context"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/runpheno"
	"github.com/carbocation/runpheno/metadata"
	"github.com/carbocation/runpheno/report"
	"github.com/carbocation/runpheno/sink"
	"github.com/carbocation/runpheno/table"
)

var (
	BufferSize = 4096 * 8
)

func loadMetadata(ctx context.Context, path string, client *storage.Client) ([][]string, error) {
	log.Printf("Reading metadata from %s\n", path)

	rc, err := runpheno.Open(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return metadata.Read(bufio.NewReaderSize(rc, BufferSize), '\t')
}

func loadReport(ctx context.Context, path, delimName string, client *storage.Client) ([]*report.Run, error) {
	log.Printf("Reading report from %s\n", path)

	delim, err := runpheno.ParseDelimiter(delimName)
	if err != nil {
		return nil, err
	}

	fileBytes, err := runpheno.ReadAll(ctx, path, client)
	if err != nil {
		return nil, err
	}

	if delim == 0 {
		delim = runpheno.DetermineDelimiter(bytes.NewReader(fileBytes))
		log.Printf("Determined report delimiter to be \"%s\"\n", string(delim))
	}

	runs, err := report.Parse(fileBytes, delim)
	if err != nil {
		return nil, err
	}
	log.Printf("Report has %d runs\n", len(runs))

	return runs, nil
}

func writeOutput(path string, out *table.Table) error {
	var f *os.File
	if path == "" {
		f = os.Stdout
	} else {
		local, err := runpheno.ExpandHome(path)
		if err != nil {
			return err
		}

		f, err = os.Create(local)
		if err != nil {
			return pfx.Err(err)
		}
		defer f.Close()
	}

	w := bufio.NewWriterSize(f, BufferSize)
	if err := sink.WriteTSV(w, out); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return pfx.Err(err)
	}

	if path != "" {
		log.Printf("Wrote %d rows to %s\n", out.Len(), path)
		return f.Close()
	}

	return nil
}
