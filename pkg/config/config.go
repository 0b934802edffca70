// Package config provides configuration management for the addrlink
// application.
//
// Configuration is loaded from environment variables and an optional
// .env file in the working directory, using github.com/caarlos0/env
// for parsing and github.com/joho/godotenv for .env loading. The
// priority order is:
//  1. Environment variables (highest priority)
//  2. .env file in the current working directory
//  3. Defaults, which mirror the historical command-line defaults
//     (input.xlsx / "Sheet 1" / "Address" / output.xlsx / DB_EXPORT.xlsx)
//
// The .env path is validated against directory traversal before
// loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the application configuration.
type Config struct {
	Files    FilesConfig    `envPrefix:"ADDRLINK_"`
	Database DatabaseConfig `envPrefix:"DB_"`
}

// FilesConfig configures the workbook run and the run log location.
type FilesConfig struct {
	// InputFile is the workbook with raw addresses.
	InputFile string `env:"INPUT_FILE" envDefault:"./input.xlsx"`

	// InputSheet is the sheet name inside the input workbook.
	InputSheet string `env:"INPUT_SHEET" envDefault:"Sheet 1"`

	// InputColumn is the header of the raw address column.
	InputColumn string `env:"INPUT_COLUMN" envDefault:"Address"`

	// IDColumn optionally names an identity column carried through to
	// the output next to each address.
	IDColumn string `env:"ID_COLUMN"`

	// OutputFile is the workbook the results are written to.
	OutputFile string `env:"OUTPUT_FILE" envDefault:"./output.xlsx"`

	// ExportFile is the reference workbook exported from the database.
	ExportFile string `env:"DB_EXPORT_FILE" envDefault:"./DB_EXPORT.xlsx"`

	// ExportSheet is the sheet name inside the reference workbook.
	ExportSheet string `env:"DB_EXPORT_SHEET" envDefault:"Sheet 1"`

	// LogsDir is where per-run log files are written.
	LogsDir string `env:"LOGS_DIR" envDefault:"./logs"`
}

// DatabaseConfig configures the Postgres run (process-db).
type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"127.0.0.1"`
	Port     int    `env:"PORT" envDefault:"5432"`
	Name     string `env:"NAME"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"` // #nosec G117 -- database password, expected in config

	SSLMode string `env:"SSLMODE" envDefault:"disable"`

	// InputTable holds the raw addresses; OutputTable receives the
	// linked results.
	InputTable  string `env:"INPUT_TABLE"`
	OutputTable string `env:"OUTPUT_TABLE" envDefault:"address_keys"`
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	parts := []string{
		fmt.Sprintf("host=%s", d.Host),
		fmt.Sprintf("port=%d", d.Port),
		fmt.Sprintf("sslmode=%s", d.SSLMode),
	}
	if d.Name != "" {
		parts = append(parts, fmt.Sprintf("dbname=%s", d.Name))
	}
	if d.User != "" {
		parts = append(parts, fmt.Sprintf("user=%s", d.User))
	}
	if d.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", d.Password))
	}
	return strings.Join(parts, " ")
}

// GetEnvVars loads and returns the application configuration from
// environment variables and a .env file in the working directory.
//
// The function terminates the program with a non-zero status when the
// working directory cannot be resolved, the .env path escapes it, the
// .env file cannot be parsed, or validation fails.
func GetEnvVars() Config {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Printf("Error getting current working directory: %s\n", err)
		os.Exit(1)
	}

	envPath := filepath.Join(cwd, ".env")

	// Ensure the path is within our expected directory (prevent traversal)
	cleanEnvPath, err := filepath.Abs(envPath)
	if err != nil {
		fmt.Printf("Error resolving .env file path: %s\n", err)
		os.Exit(1)
	}
	cleanCwd, err := filepath.Abs(cwd)
	if err != nil {
		fmt.Printf("Error resolving current directory: %s\n", err)
		os.Exit(1)
	}
	relPath, err := filepath.Rel(cleanCwd, cleanEnvPath)
	if err != nil || strings.Contains(relPath, "..") {
		fmt.Printf("Error: .env file path traversal detected\n")
		os.Exit(1)
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Error loading .env file: %s\n", err)
			os.Exit(1)
		}
	}

	var conf Config
	if err := env.Parse(&conf); err != nil {
		fmt.Printf("Error parsing configuration from environment: %s\n", err)
		os.Exit(1)
	}

	if err := validateConfig(&conf); err != nil {
		fmt.Printf("Configuration validation error: %s\n", err)
		fmt.Println("Please check your configuration and try again.")
		os.Exit(1)
	}

	return conf
}

// validateConfig validates the configuration.
func validateConfig(conf *Config) error {
	var errors []string

	if conf.Files.InputSheet == "" {
		errors = append(errors, "input sheet name must not be empty")
	}
	if conf.Files.InputColumn == "" {
		errors = append(errors, "input column name must not be empty")
	}
	if conf.Files.ExportSheet == "" {
		errors = append(errors, "reference sheet name must not be empty")
	}
	if conf.Database.Port < 1 || conf.Database.Port > 65535 {
		errors = append(errors, "database port must be between 1 and 65535")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
