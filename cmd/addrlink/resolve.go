package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vmelnikov/addrlink/internal/address"
	"github.com/vmelnikov/addrlink/internal/linker"
	"github.com/vmelnikov/addrlink/internal/refdata"
)

func newResolveCmd() *cobra.Command {
	var export, exportSheet string

	cmd := &cobra.Command{
		Use:   "resolve <address>",
		Short: "Link a single address and print its key",
		Long:  `Parses one free-form address string, links it against the reference export and prints the canonical form and the database key.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if export == "" {
				export = conf.Files.ExportFile
			}
			if exportSheet == "" {
				exportSheet = conf.Files.ExportSheet
			}
			return runResolve(strings.Join(args, " "), export, exportSheet)
		},
	}

	cmd.Flags().StringVar(&export, "db-export", "", "Reference workbook exported from the database (default ./DB_EXPORT.xlsx)")
	cmd.Flags().StringVar(&exportSheet, "db-export-sheet", "", `Sheet name inside the reference workbook (default "Sheet 1")`)

	return cmd
}

func runResolve(raw, export, exportSheet string) error {
	if _, err := os.Stat(export); err != nil {
		return fmt.Errorf("%w: %s", errMissingReference, export)
	}

	parsed, err := address.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", raw, err)
	}
	fmt.Printf("Parsed:    %s\n", parsed.String())

	rows, err := refdata.Load(export, exportSheet)
	if err != nil {
		return err
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	lk, err := linker.New(rows, logger)
	if err != nil {
		return err
	}

	key, err := lk.Link(parsed, true)
	if err != nil {
		return fmt.Errorf("%s: %w", describeLinkError(err), err)
	}

	canonical, err := lk.Value(key)
	if err != nil {
		return err
	}
	canonical.Flat = parsed.Flat

	fmt.Printf("Canonical: %s\n", canonical.String())
	fmt.Printf("Key:       %d\n", key)
	return nil
}

// describeLinkError maps the linker sentinels to user-facing phrasing.
func describeLinkError(err error) string {
	switch {
	case errors.Is(err, linker.ErrAmbiguous):
		return "address matches more than one reference entry"
	case errors.Is(err, linker.ErrFlatRange):
		return "flat is outside the known ranges for this house"
	case errors.Is(err, linker.ErrNotFound):
		return "address not found in the reference data"
	case errors.Is(err, linker.ErrNormalize):
		return "street could not be normalized"
	default:
		return "failed to link address"
	}
}
