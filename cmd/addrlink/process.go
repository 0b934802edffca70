package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vmelnikov/addrlink/internal/linker"
	"github.com/vmelnikov/addrlink/internal/output"
	"github.com/vmelnikov/addrlink/internal/pipeline"
	"github.com/vmelnikov/addrlink/internal/refdata"
	"github.com/vmelnikov/addrlink/pkg/logging"
)

// Preflight errors, checked in this order before any work starts.
var (
	errMissingReference = errors.New("reference workbook not found: export the reference table and place the file next to the program, or set ADDRLINK_DB_EXPORT_FILE")
	errMissingInput     = errors.New("input workbook not found")
)

// processOptions collects the process command flags. Empty string
// fields fall back to the configured values.
type processOptions struct {
	Input       string
	InputSheet  string
	InputColumn string
	IDColumn    string
	Output      string
	Export      string
	ExportSheet string
	ErrorsCSV   string
	Verbose     bool
	SkipErrors  bool
	Pause       bool
}

func newProcessCmd() *cobra.Command {
	var opts processOptions

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Link addresses from an Excel workbook",
		Long:  `Reads the address column of the input workbook, links every address against the reference export and writes the resolved keys to the output workbook.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Input workbook with raw addresses (default from config: ./input.xlsx)")
	cmd.Flags().StringVar(&opts.InputSheet, "input-sheet", "", `Sheet name inside the input workbook (default "Sheet 1")`)
	cmd.Flags().StringVar(&opts.InputColumn, "input-column", "", `Header of the raw address column (default "Address")`)
	cmd.Flags().StringVar(&opts.IDColumn, "id-column", "", "Optional identity column carried through to the output")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output workbook for the linked results (default ./output.xlsx)")
	cmd.Flags().StringVar(&opts.Export, "db-export", "", "Reference workbook exported from the database (default ./DB_EXPORT.xlsx)")
	cmd.Flags().StringVar(&opts.ExportSheet, "db-export-sheet", "", `Sheet name inside the reference workbook (default "Sheet 1")`)
	cmd.Flags().StringVar(&opts.ErrorsCSV, "errors-csv", "", "Write failed addresses to this CSV file")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Mirror the run log to stdout")
	cmd.Flags().BoolVarP(&opts.SkipErrors, "skip-errors", "s", false, "Skip addresses that fail to link instead of stopping the run")
	cmd.Flags().BoolVar(&opts.Pause, "pause", false, "Wait for Enter before exiting (for double-click launches)")

	return cmd
}

// applyConfig fills unset flag values from the loaded configuration.
func (o *processOptions) applyConfig() {
	if o.Input == "" {
		o.Input = conf.Files.InputFile
	}
	if o.InputSheet == "" {
		o.InputSheet = conf.Files.InputSheet
	}
	if o.InputColumn == "" {
		o.InputColumn = conf.Files.InputColumn
	}
	if o.IDColumn == "" {
		o.IDColumn = conf.Files.IDColumn
	}
	if o.Output == "" {
		o.Output = conf.Files.OutputFile
	}
	if o.Export == "" {
		o.Export = conf.Files.ExportFile
	}
	if o.ExportSheet == "" {
		o.ExportSheet = conf.Files.ExportSheet
	}
}

func runProcess(opts processOptions) error {
	if opts.Pause {
		defer waitForEnter()
	}
	opts.applyConfig()

	if err := preflight(opts.Export, opts.Input); err != nil {
		return report(err)
	}

	logger, closeLog, logPath, err := logging.NewRunLogger(conf.Files.LogsDir, opts.Verbose)
	if err != nil {
		return err
	}
	defer closeLog()
	fmt.Printf("Run log: %s\n", logPath)

	errMode := pipeline.StopOnError
	if opts.SkipErrors {
		errMode = pipeline.SkipErrors
	}

	lk, err := loadLinker(opts.Export, opts.ExportSheet, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to load reference data")
		return report(err)
	}

	stats, err := pipeline.ProcessWorkbook(pipeline.WorkbookConfig{
		Path:     opts.Input,
		Sheet:    opts.InputSheet,
		Column:   opts.InputColumn,
		IDColumn: opts.IDColumn,
		Mode:     errMode,
	}, lk, output.NewExcelWorker(opts.Output, opts.IDColumn, logger), logger)
	if stats != nil {
		reportStats(stats, opts.ErrorsCSV, logger)
	}
	if err != nil {
		logger.WithError(err).Error("Processing failed")
		return report(fmt.Errorf("processing failed: %w", err))
	}

	logger.WithField("output", opts.Output).Info("Processing finished")
	fmt.Printf("Processing finished. Results written to %s\n", opts.Output)
	return nil
}

// preflight verifies the two workbooks the run depends on exist.
func preflight(exportPath, inputPath string) error {
	if _, err := os.Stat(exportPath); err != nil {
		return fmt.Errorf("%w: %s", errMissingReference, exportPath)
	}
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("%w: %s", errMissingInput, inputPath)
	}
	return nil
}

// loadLinker reads the reference export and builds the linker from it.
func loadLinker(path, sheet string, logger *logrus.Logger) (*linker.Linker, error) {
	rows, err := refdata.Load(path, sheet)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"reference": path,
		"rows":      len(rows),
	}).Info("Loaded reference data")
	return linker.New(rows, logger)
}

// reportStats prints the run summary and optionally writes the failed
// addresses to a CSV report.
func reportStats(stats *pipeline.Stats, errorsCSV string, logger *logrus.Logger) {
	fmt.Println(stats.Summary())
	logger.WithFields(logrus.Fields{
		"linked": stats.Successes,
		"failed": stats.Failures,
	}).Info("Run summary")

	if errorsCSV != "" && stats.Failures > 0 {
		if err := stats.ExportCSV(errorsCSV); err != nil {
			logger.WithError(err).Error("Failed to write error report")
			fmt.Println("Failed to write error report:", err.Error())
			return
		}
		fmt.Printf("Failed addresses written to %s\n", errorsCSV)
	}
}

// waitForEnter blocks until the user presses Enter, keeping the console
// window open when the tool is launched by double-click.
func waitForEnter() {
	fmt.Print("Press Enter to exit...")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
}
