// Package cmd provides command-line interface functionality for the
// addrlink application.
//
// This package implements the root command and manages the command-line
// interface using the cobra library. It handles configuration, logging
// setup, and command execution for the addrlink application.
//
// The package integrates with several components:
//   - Configuration management through pkg/config
//   - Reference data loading through internal/refdata
//   - Address parsing and linking through internal/address and internal/linker
//   - Manual pages through pkg/man
//   - Version information through pkg/version
package cmd

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vmelnikov/addrlink/pkg/config"
	"github.com/vmelnikov/addrlink/pkg/man"
	"github.com/vmelnikov/addrlink/pkg/version"
)

// conf holds the application configuration loaded from environment
// variables. It is populated before command execution and may be
// overridden by command-line flags.
var (
	conf config.Config
	// debug controls the logging level for the application.
	debug bool
)

// rootCmd defines the base command for the addrlink CLI application.
var rootCmd = &cobra.Command{
	Use:              "addrlink",
	Short:            "Link raw addresses to their reference database keys",
	Long:             `addrlink parses free-form Russian address strings from an Excel workbook or a Postgres table, matches each one against a reference export of canonical streets, houses and flat ranges, and writes the resolved database keys to an output workbook or table.`,
	Args:             cobra.ExactArgs(0),
	PersistentPreRun: rootCmdPreRun,
	Run:              rootCmdRun,
	SilenceUsage:     true,
	SilenceErrors:    true,
}

// rootCmdRun prints usage hints when the tool is started bare.
func rootCmdRun(cmd *cobra.Command, args []string) {
	log.Info("Use 'addrlink process' to link addresses from a workbook")
	log.Info("Use 'addrlink process-db' to link addresses from a Postgres table")
	log.Info("Use 'addrlink resolve <address>' to link a single address")
}

// rootCmdPreRun performs setup operations before executing any
// command: it loads the configuration and applies the debug flag.
func rootCmdPreRun(cmd *cobra.Command, args []string) {
	conf = config.GetEnvVars()
	if debug {
		log.SetLevel(log.DebugLevel)
	}
}

// reportedError marks a failure a command already printed to the
// console, so Execute does not print it a second time.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// report prints err to the console and marks it as reported. Commands
// use it on failure paths that must show a message before an optional
// pause prompt.
func report(err error) error {
	fmt.Println(err.Error())
	return reportedError{err: err}
}

// printUnreported prints err unless a command already reported it.
func printUnreported(err error) {
	var rep reportedError
	if !errors.As(err, &rep) {
		fmt.Println(err.Error())
	}
}

// Execute starts the command-line interface execution.
//
// If command execution fails, it prints the error message to stdout
// (unless the command already did) and exits the program with status
// code 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printUnreported(err)
		os.Exit(1)
	}
}

func init() {
	// create rootCmd-level flags
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug-level logging")

	// add sub-commands
	rootCmd.AddCommand(
		newProcessCmd(),
		newProcessDBCmd(),
		newResolveCmd(),
		man.NewManCmd(),
		version.Command(),
	)
}
