package sink

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/pfx"
	"github.com/carbocation/runpheno/table"
)

type WrappedBigQuery struct {
	Context  context.Context
	Client   *bigquery.Client
	Project  string
	Database string
}

// Schema describes t as all-STRING, nullable BigQuery columns.
func Schema(t *table.Table) bigquery.Schema {
	schema := make(bigquery.Schema, len(t.Columns))
	for i, col := range t.Columns {
		schema[i] = &bigquery.FieldSchema{Name: col, Type: bigquery.StringFieldType}
	}

	return schema
}

// LoadBigQuery replaces BQ.Database.tableName with the contents of t by
// uploading it as a TSV load job and waiting for the job to finish.
func LoadBigQuery(BQ *WrappedBigQuery, tableName string, t *table.Table) error {
	var buf bytes.Buffer
	if err := WriteTSV(&buf, t); err != nil {
		return err
	}

	src := bigquery.NewReaderSource(&buf)
	src.SourceFormat = bigquery.CSV
	src.FieldDelimiter = string(Delim)
	src.SkipLeadingRows = 1
	src.Schema = Schema(t)

	loader := BQ.Client.DatasetInProject(BQ.Project, BQ.Database).Table(tableName).LoaderFrom(src)
	loader.CreateDisposition = bigquery.CreateIfNeeded
	loader.WriteDisposition = bigquery.WriteTruncate

	job, err := loader.Run(BQ.Context)
	if err != nil {
		return pfx.Err(err)
	}
	log.Printf("Started BigQuery load job %s into %s.%s.%s\n", job.ID(), BQ.Project, BQ.Database, tableName)

	status, err := job.Wait(BQ.Context)
	if err != nil {
		return pfx.Err(err)
	}
	if err := status.Err(); err != nil {
		return pfx.Err(fmt.Errorf("load job %s: %w", job.ID(), err))
	}

	return nil
}
