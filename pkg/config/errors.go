// Package config provides error definitions for configuration-related errors.
package config

import "errors"

// Configuration validation errors
var (
	// ErrMissingDatabaseName is returned when a database run is
	// requested without a database name.
	ErrMissingDatabaseName = errors.New("database name is required")

	// ErrMissingDatabaseUser is returned when a database run is
	// requested without a user name.
	ErrMissingDatabaseUser = errors.New("database user is required")

	// ErrMissingInputTable is returned when a database run is
	// requested without an input table.
	ErrMissingInputTable = errors.New("database input table is required")
)

// ValidateForDatabaseRun checks the fields only the database run needs.
func (d DatabaseConfig) ValidateForDatabaseRun() error {
	if d.Name == "" {
		return ErrMissingDatabaseName
	}
	if d.User == "" {
		return ErrMissingDatabaseUser
	}
	if d.InputTable == "" {
		return ErrMissingInputTable
	}
	return nil
}
