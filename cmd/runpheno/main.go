// runpheno links a headerless sample metadata export (whose third column packs
// age, phenotype, sex and the sample identifier into a semicolon-delimited
// key=value descriptor) to a sequencing run report, and writes one row per run
// with the run accession, age, response label and sex.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/carbocation/runpheno"
	_ "github.com/carbocation/runpheno/compileinfoprint"
	"github.com/carbocation/runpheno/layout"
	"github.com/carbocation/runpheno/pipeline"
	"github.com/carbocation/runpheno/sink"
)

type config struct {
	MetadataPath    string
	ReportPath      string
	OutputPath      string
	LayoutName      string
	Marker          string
	Exclude         string
	ReportDelimiter string
	Summary         bool

	SQLitePath  string
	SQLiteTable string

	BQProject string
	BQDataset string
	BQTable   string
}

func main() {
	cfg := config{}

	flag.StringVar(&cfg.MetadataPath, "metadata", "", "Path to the headerless, tab-delimited metadata file. May be gzip/bzip2/xz/zip compressed, or a gs:// path.")
	flag.StringVar(&cfg.ReportPath, "report", "", "Path to the run report with run_accession, sample_accession and sample_alias columns. May be compressed, or a gs:// path.")
	flag.StringVar(&cfg.OutputPath, "output", "", "(Optional) Path to the TSV to write. Defaults to STDOUT.")
	flag.StringVar(&cfg.LayoutName, "layout", layout.DefaultLayout, fmt.Sprintf("Metadata layout. Valid layout names include: %s", layout.LayoutNames()))
	flag.StringVar(&cfg.Marker, "marker", "", "(Optional) Override the layout's marker: only metadata rows whose descriptor contains this text are kept.")
	flag.StringVar(&cfg.Exclude, "exclude", "", "(Optional) Override the layout's exclusion: rows whose identifier sub-field contains this text are dropped.")
	flag.StringVar(&cfg.ReportDelimiter, "report-delimiter", "tab", "Delimiter of the report file: tab, comma, space, semicolon, or auto to detect it.")
	flag.BoolVar(&cfg.Summary, "summary", false, "Log counts per response label and sex, and the mean/median age, of the output?")
	flag.StringVar(&cfg.SQLitePath, "sqlite", "", "(Optional) Also write the output to this sqlite database.")
	flag.StringVar(&cfg.SQLiteTable, "sqlite-table", "runpheno", "Table to replace in the sqlite database.")
	flag.StringVar(&cfg.BQProject, "bq-project", "", "(Optional) Also load the output into BigQuery, in this project.")
	flag.StringVar(&cfg.BQDataset, "bq-dataset", "", "BigQuery dataset to load into. Required with -bq-project.")
	flag.StringVar(&cfg.BQTable, "bq-table", "runpheno", "BigQuery table to replace.")
	flag.Parse()

	if cfg.MetadataPath == "" || cfg.ReportPath == "" {
		fmt.Fprintln(os.Stderr, "Please provide --metadata and --report")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if cfg.BQProject != "" && cfg.BQDataset == "" {
		fmt.Fprintln(os.Stderr, "Please provide --bq-dataset along with --bq-project")
		flag.PrintDefaults()
		os.Exit(1)
	}

	l, err := layout.New(cfg.LayoutName)
	if err != nil {
		log.Fatalln(err)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	l = applyOverrides(l, cfg, set)

	if err := run(context.Background(), cfg, l); err != nil {
		log.Fatalln(err)
	}
}

// applyOverrides replaces the layout's marker and exclusion with the flag
// values, but only for flags that were actually passed, so that an empty
// -exclude disables the exclusion while an absent one keeps the layout's.
func applyOverrides(l layout.Layout, cfg config, set map[string]bool) layout.Layout {
	if set["marker"] {
		l.Marker = cfg.Marker
	}
	if set["exclude"] {
		l.Exclude = cfg.Exclude
	}

	return l
}

func run(ctx context.Context, cfg config, l layout.Layout) error {
	var client *storage.Client
	if runpheno.NeedsStorageClient(cfg.MetadataPath, cfg.ReportPath) {
		var err error
		client, err = storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("connecting to Google Storage: %w", err)
		}
		defer client.Close()
	}

	metaRows, err := loadMetadata(ctx, cfg.MetadataPath, client)
	if err != nil {
		return err
	}

	runs, err := loadReport(ctx, cfg.ReportPath, cfg.ReportDelimiter, client)
	if err != nil {
		return err
	}

	out, err := pipeline.Run(metaRows, runs, l)
	if err != nil {
		return err
	}

	if err := writeOutput(cfg.OutputPath, out); err != nil {
		return err
	}

	if cfg.Summary {
		s, err := pipeline.Summarize(out, l.GroupColumns, l.NumericColumn)
		if err != nil {
			return err
		}
		log.Println("Summary:", s)
	}

	if cfg.SQLitePath != "" {
		path, err := runpheno.ExpandHome(cfg.SQLitePath)
		if err != nil {
			return err
		}
		if err := sink.WriteSQLite(ctx, path, cfg.SQLiteTable, out); err != nil {
			return err
		}
		log.Printf("Wrote %d rows to table %s in %s\n", out.Len(), cfg.SQLiteTable, path)
	}

	if cfg.BQProject != "" {
		BQ := &sink.WrappedBigQuery{
			Context:  ctx,
			Project:  cfg.BQProject,
			Database: cfg.BQDataset,
		}
		BQ.Client, err = bigquery.NewClient(BQ.Context, BQ.Project)
		if err != nil {
			return fmt.Errorf("connecting to BigQuery: %w", err)
		}
		defer BQ.Client.Close()

		if err := sink.LoadBigQuery(BQ, cfg.BQTable, out); err != nil {
			return err
		}
		log.Printf("Loaded %d rows into %s.%s.%s\n", out.Len(), cfg.BQProject, cfg.BQDataset, cfg.BQTable)
	}

	return nil
}
