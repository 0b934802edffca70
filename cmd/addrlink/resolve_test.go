package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmelnikov/addrlink/internal/linker"
)

func TestRunResolve(t *testing.T) {
	dir := t.TempDir()
	export := filepath.Join(dir, "DB_EXPORT.xlsx")
	writeReference(t, export)

	assert.NoError(t, runResolve("пркт советский 57", export, "Sheet1"))
}

func TestRunResolveMissingReference(t *testing.T) {
	export := filepath.Join(t.TempDir(), "DB_EXPORT.xlsx")

	err := runResolve("пркт советский 57", export, "Sheet1")
	assert.ErrorIs(t, err, errMissingReference)
}

func TestRunResolveUnparseable(t *testing.T) {
	dir := t.TempDir()
	export := filepath.Join(dir, "DB_EXPORT.xlsx")
	writeReference(t, export)

	err := runResolve("квартира 5", export, "Sheet1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestRunResolveNotFound(t *testing.T) {
	dir := t.TempDir()
	export := filepath.Join(dir, "DB_EXPORT.xlsx")
	writeReference(t, export)

	err := runResolve("пркт советский 999", export, "Sheet1")
	assert.ErrorIs(t, err, linker.ErrNotFound)
}

func TestDescribeLinkError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "ambiguous", err: linker.ErrAmbiguous, expected: "more than one"},
		{name: "flat range", err: linker.ErrFlatRange, expected: "flat is outside"},
		{name: "not found", err: linker.ErrNotFound, expected: "not found"},
		{name: "normalize", err: linker.ErrNormalize, expected: "normalized"},
		{name: "other", err: assert.AnError, expected: "failed to link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, describeLinkError(tt.err), tt.expected)
		})
	}
}
