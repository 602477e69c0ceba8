package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"schemalens/adapters/postgres"
	"schemalens/adapters/tabular"
	"schemalens/app"
	"schemalens/domain/dataset"
	"schemalens/internal"
	"schemalens/internal/export"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "schemalens",
		Short: "SchemaLens CLI for schema inference and data quality scoring",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newExportCmd(),
		newDescribeCmd(),
		newTableCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// analysisFlags are the options shared across subcommands
type analysisFlags struct {
	sampleSize int
	threshold  float64
	noSpecial  bool
	noStats    bool
	references bool
	workers    int
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.sampleSize, "sample", 1000, "Maximum records sampled per input")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0.7, "Confidence threshold for alternative types")
	cmd.Flags().BoolVar(&f.noSpecial, "no-special", false, "Disable specialized string type detection")
	cmd.Flags().BoolVar(&f.noStats, "no-stats", false, "Skip type-specific statistics")
	cmd.Flags().BoolVar(&f.references, "references", false, "Check parent-id references against record ids")
}

func (f *analysisFlags) options() app.Options {
	opts := app.DefaultOptions()
	opts.SampleSize = f.sampleSize
	opts.ConfidenceThreshold = f.threshold
	opts.DetectSpecialTypes = !f.noSpecial
	opts.IncludeStatistics = !f.noStats
	opts.ValidateReferences = f.references
	return opts
}

func newAnalyzeCmd() *cobra.Command {
	flags := &analysisFlags{}
	var schemaOnly bool

	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Infer schemas and score data quality for one or more files",
		Long: `Infer a structural schema for each input file and score its data quality.

Accepts CSV, XLSX and JSON files. Files are analyzed concurrently up to the
worker limit and results are printed as JSON, one block per file.

Example: schemalens analyze orders.csv users.xlsx --sample 500`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args, flags, schemaOnly)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&schemaOnly, "schema-only", false, "Print only the inferred schema, skipping the quality report")
	cmd.Flags().IntVar(&flags.workers, "workers", 4, "Maximum files analyzed concurrently")

	return cmd
}

func newExportCmd() *cobra.Command {
	flags := &analysisFlags{}
	var format string
	var requiredByDefault bool

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export an inferred schema as an interchange schema document",
		Long: `Infer a schema from the input file and convert it into an interchange
schema document with inference metadata attached to each property.

Example: schemalens export orders.csv --format json-schema`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], flags, format, requiredByDefault)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", export.FormatJSONSchema, "Target schema format")
	cmd.Flags().BoolVar(&requiredByDefault, "required-by-default", false, "Mark every non-nullable field as required")

	return cmd
}

func newDescribeCmd() *cobra.Command {
	flags := &analysisFlags{}

	cmd := &cobra.Command{
		Use:   "describe [file]",
		Short: "Print a human-readable summary of an inferred schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(args[0], flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func newTableCmd() *cobra.Command {
	flags := &analysisFlags{}
	var dbURL string

	cmd := &cobra.Command{
		Use:   "table [table-name]",
		Short: "Infer a schema and score data quality for a Postgres table",
		Long: `Sample rows from a Postgres table and run the full analysis on them.

The connection URL comes from --db or the DATABASE_URL environment variable.

Example: schemalens table public.orders --db postgres://localhost/mydb --sample 2000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(cmd.Context(), args[0], dbURL, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&dbURL, "db", "", "Postgres connection URL (defaults to DATABASE_URL)")

	return cmd
}

func runAnalyze(files []string, flags *analysisFlags, schemaOnly bool) error {
	logger := internal.NewDefaultLogger()
	analyzer := app.NewAnalyzer(logger)
	opts := flags.options()

	workers := flags.workers
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, file := range files {
		file := file
		g.Go(func() error {
			records, err := tabular.NewReader(file, logger).ReadRecords()
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			out, err := analyzeRecords(analyzer, records, opts, schemaOnly)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			mu.Lock()
			defer mu.Unlock()
			fmt.Printf("==> %s\n%s\n", file, out)
			return nil
		})
	}
	return g.Wait()
}

func runExport(file string, flags *analysisFlags, format string, requiredByDefault bool) error {
	logger := internal.NewDefaultLogger()
	analyzer := app.NewAnalyzer(logger)

	records, err := tabular.NewReader(file, logger).ReadRecords()
	if err != nil {
		return err
	}
	sch, err := analyzer.InferSchema(records, flags.options())
	if err != nil {
		return err
	}
	doc, err := analyzer.ConvertToSchemaDefinition(sch, export.Options{
		RequiredByDefault: requiredByDefault,
		Format:            format,
	})
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runDescribe(file string, flags *analysisFlags) error {
	logger := internal.NewDefaultLogger()
	analyzer := app.NewAnalyzer(logger)

	records, err := tabular.NewReader(file, logger).ReadRecords()
	if err != nil {
		return err
	}
	sch, err := analyzer.InferSchema(records, flags.options())
	if err != nil {
		return err
	}
	fmt.Println(analyzer.GetSchemaDescription(sch))
	return nil
}

func runTable(ctx context.Context, table, dbURL string, flags *analysisFlags) error {
	godotenv.Load()

	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return fmt.Errorf("a Postgres URL is required (use --db or DATABASE_URL)")
	}

	logger := internal.NewDefaultLogger()
	source, err := postgres.NewRecordSource(dbURL, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	opts := flags.options()
	records, err := source.Table(ctx, table, opts.SampleSize)
	if err != nil {
		return err
	}

	analyzer := app.NewAnalyzer(logger)
	out, err := analyzeRecords(analyzer, records, opts, false)
	if err != nil {
		return err
	}
	fmt.Printf("==> %s\n%s\n", table, out)
	return nil
}

// analyzeRecords runs inference plus, unless schemaOnly, the quality pass,
// and renders the combined result as indented JSON.
func analyzeRecords(analyzer *app.Analyzer, records []dataset.Record, opts app.Options, schemaOnly bool) (string, error) {
	sch, err := analyzer.InferSchema(records, opts)
	if err != nil {
		return "", err
	}

	result := map[string]interface{}{"schema": sch}
	if !schemaOnly {
		report, err := analyzer.AnalyzeDataQuality(records, sch, opts)
		if err != nil {
			return "", err
		}
		result["report"] = report
		result["grade"] = report.Grade
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
