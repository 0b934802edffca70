package cmd

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/vmelnikov/addrlink/internal/output"
	"github.com/vmelnikov/addrlink/internal/pipeline"
	"github.com/vmelnikov/addrlink/pkg/logging"
)

// processDBOptions collects the process-db command flags. Empty string
// fields fall back to the configured values.
type processDBOptions struct {
	InputTable    string
	AddressColumn string
	IDColumn      string
	OutputTable   string
	Export        string
	ExportSheet   string
	ErrorsCSV     string
	Check         bool
	Verbose       bool
	SkipErrors    bool
	Pause         bool
}

func newProcessDBCmd() *cobra.Command {
	var opts processDBOptions

	cmd := &cobra.Command{
		Use:   "process-db",
		Short: "Link addresses from a Postgres table",
		Long:  `Reads the address column of the input table, links every address against the reference export, stores the results in the output table and writes the resolved key back to the input table.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcessDB(opts)
		},
	}

	cmd.Flags().StringVar(&opts.InputTable, "input-table", "", "Table with raw addresses (default from DB_INPUT_TABLE)")
	cmd.Flags().StringVar(&opts.AddressColumn, "address-column", "address", "Column holding the raw address")
	cmd.Flags().StringVar(&opts.IDColumn, "id-column", "", "Optional identity column used for key write-back")
	cmd.Flags().StringVar(&opts.OutputTable, "output-table", "", "Table receiving the linked results (default address_keys)")
	cmd.Flags().StringVar(&opts.Export, "db-export", "", "Reference workbook exported from the database (default ./DB_EXPORT.xlsx)")
	cmd.Flags().StringVar(&opts.ExportSheet, "db-export-sheet", "", `Sheet name inside the reference workbook (default "Sheet 1")`)
	cmd.Flags().StringVar(&opts.ErrorsCSV, "errors-csv", "", "Write failed addresses to this CSV file")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Only verify database connectivity and exit")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Mirror the run log to stdout")
	cmd.Flags().BoolVarP(&opts.SkipErrors, "skip-errors", "s", false, "Skip addresses that fail to link instead of stopping the run")
	cmd.Flags().BoolVar(&opts.Pause, "pause", false, "Wait for Enter before exiting (for double-click launches)")

	return cmd
}

// applyConfig fills unset flag values from the loaded configuration.
func (o *processDBOptions) applyConfig() {
	if o.InputTable == "" {
		o.InputTable = conf.Database.InputTable
	}
	if o.OutputTable == "" {
		o.OutputTable = conf.Database.OutputTable
	}
	if o.Export == "" {
		o.Export = conf.Files.ExportFile
	}
	if o.ExportSheet == "" {
		o.ExportSheet = conf.Files.ExportSheet
	}
}

func runProcessDB(opts processDBOptions) error {
	if opts.Pause {
		defer waitForEnter()
	}
	opts.applyConfig()

	if opts.Check {
		return checkDatabase()
	}

	if err := conf.Database.ValidateForDatabaseRun(); err != nil {
		return report(err)
	}
	if _, err := os.Stat(opts.Export); err != nil {
		return report(fmt.Errorf("%w: %s", errMissingReference, opts.Export))
	}

	logger, closeLog, logPath, err := logging.NewRunLogger(conf.Files.LogsDir, opts.Verbose)
	if err != nil {
		return err
	}
	defer closeLog()
	fmt.Printf("Run log: %s\n", logPath)

	db, err := sqlx.Connect("postgres", conf.Database.DSN())
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		return report(fmt.Errorf("failed to connect to database: %w", err))
	}
	defer db.Close()

	errMode := pipeline.StopOnError
	if opts.SkipErrors {
		errMode = pipeline.SkipErrors
	}

	lk, err := loadLinker(opts.Export, opts.ExportSheet, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to load reference data")
		return report(err)
	}

	worker := &output.PostgresWorker{
		DB:            db,
		OutputTable:   opts.OutputTable,
		InputTable:    opts.InputTable,
		IDColumn:      opts.IDColumn,
		AddressColumn: opts.AddressColumn,
		Logger:        logger,
	}

	stats, err := pipeline.ProcessDatabase(db, pipeline.DatabaseConfig{
		InputTable:    opts.InputTable,
		AddressColumn: opts.AddressColumn,
		IDColumn:      opts.IDColumn,
		Mode:          errMode,
	}, lk, worker, logger)
	if stats != nil {
		reportStats(stats, opts.ErrorsCSV, logger)
	}
	if err != nil {
		logger.WithError(err).Error("Processing failed")
		return report(fmt.Errorf("processing failed: %w", err))
	}

	logger.WithField("table", opts.OutputTable).Info("Processing finished")
	fmt.Printf("Processing finished. Results written to table %s\n", opts.OutputTable)
	return nil
}

// checkDatabase verifies the configured database is reachable.
func checkDatabase() error {
	if err := conf.Database.ValidateForDatabaseRun(); err != nil {
		return report(err)
	}

	db, err := sqlx.Connect("postgres", conf.Database.DSN())
	if err != nil {
		return report(fmt.Errorf("database check failed: %w", err))
	}
	defer db.Close()

	var one int
	if err := db.Get(&one, "SELECT 1"); err != nil {
		return report(fmt.Errorf("database check failed: %w", err))
	}

	fmt.Printf("Database %s on %s:%d is reachable\n", conf.Database.Name, conf.Database.Host, conf.Database.Port)
	return nil
}
