package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdout runs f and returns everything it printed to stdout.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	f()
	require.NoError(t, w.Close())

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

// TestExecute is difficult to unit test due to os.Exit calls, so we skip it

func TestReport(t *testing.T) {
	out := captureStdout(t, func() {
		err := report(errMissingInput)

		// The original error stays reachable through the wrapper and
		// the wrapper marks it as already printed.
		assert.ErrorIs(t, err, errMissingInput)
		var rep reportedError
		assert.ErrorAs(t, err, &rep)
	})
	assert.Contains(t, out, errMissingInput.Error())
}

func TestPrintUnreported(t *testing.T) {
	// An error a command already reported must not be printed again.
	out := captureStdout(t, func() {
		printUnreported(reportedError{err: errMissingInput})
	})
	assert.Empty(t, out)

	out = captureStdout(t, func() {
		printUnreported(errMissingInput)
	})
	assert.Contains(t, out, errMissingInput.Error())
}

func TestRootCmdRun(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	rootCmdRun(&cobra.Command{}, []string{})

	output := buf.String()
	assert.Contains(t, output, "Use 'addrlink process' to link addresses from a workbook")
	assert.Contains(t, output, "Use 'addrlink process-db' to link addresses from a Postgres table")
	assert.Contains(t, output, "Use 'addrlink resolve <address>' to link a single address")
}

func TestRootCmdPreRun(t *testing.T) {
	tests := []struct {
		name     string
		debug    bool
		expected log.Level
	}{
		{
			name:     "debug false",
			debug:    false,
			expected: log.InfoLevel, // default level
		},
		{
			name:     "debug true",
			debug:    true,
			expected: log.DebugLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save original debug and restore after test
			origDebug := debug
			defer func() { debug = origDebug }()

			debug = tt.debug
			log.SetLevel(log.InfoLevel)

			rootCmdPreRun(&cobra.Command{}, []string{})

			assert.Equal(t, tt.expected, log.GetLevel())

			// Check that conf is loaded with its defaults
			assert.Equal(t, "Address", conf.Files.InputColumn)
		})
	}
}

func TestInit(t *testing.T) {
	// Test that init has been called by checking rootCmd has expected flags
	flag := rootCmd.PersistentFlags().Lookup("debug")
	require.NotNil(t, flag)
	assert.Equal(t, "d", flag.Shorthand)
	assert.Equal(t, "Enable debug-level logging", flag.Usage)

	// Check that subcommands are added
	subcommands := rootCmd.Commands()
	require.Greater(t, len(subcommands), 0)

	expected := map[string]bool{
		"process":           false,
		"process-db":        false,
		"resolve <address>": false,
		"version":           false,
	}
	for _, subcmd := range subcommands {
		if _, ok := expected[subcmd.Use]; ok {
			expected[subcmd.Use] = true
		}
	}
	for use, found := range expected {
		assert.True(t, found, "%s subcommand should be present", use)
	}
}
