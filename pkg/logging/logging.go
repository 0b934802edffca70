// Package logging builds the per-run logger: every run writes a
// timestamped log file under the logs directory, and verbose runs
// additionally mirror the log to stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
)

// timestampLayout names log files like 2024.01.31_15-04-05.log.
const timestampLayout = "2006.01.02_15-04-05"

// NewRunLogger creates the run logger. The returned close function
// flushes and closes the log file; the returned path is the log file
// location for user-facing messages.
func NewRunLogger(logsDir string, verbose bool) (*log.Logger, func() error, string, error) {
	if err := os.MkdirAll(logsDir, 0o750); err != nil {
		return nil, nil, "", fmt.Errorf("failed to create logs directory %s: %w", logsDir, err)
	}

	path := filepath.Join(logsDir, time.Now().Format(timestampLayout)+".log")
	f, err := os.Create(path) // #nosec G304 -- path is built from the configured logs dir
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to create log file %s: %w", path, err)
	}

	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
	if verbose {
		logger.SetOutput(io.MultiWriter(f, os.Stdout))
	} else {
		logger.SetOutput(f)
	}

	return logger, f.Close, path, nil
}
