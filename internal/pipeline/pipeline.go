// Package pipeline runs the parse-link-save loop over address sources:
// a workbook column or a database table.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/vmelnikov/addrlink/internal/address"
	"github.com/vmelnikov/addrlink/internal/linker"
)

// ErrorMode controls what a per-address failure does to the run.
type ErrorMode int

const (
	// StopOnError aborts the run at the first failed address.
	StopOnError ErrorMode = iota
	// SkipErrors records the failure and continues with the next row.
	SkipErrors
)

// Record is one successfully linked address ready for output. Address
// is the canonical form from the reference data with the input flat
// carried over. ID is the optional input identity value.
type Record struct {
	Raw     string
	Address address.Address
	Key     int
	ID      string
}

// Writer persists the linked records. Implementations live in
// internal/output.
type Writer interface {
	Save(records []Record) error
}

// WorkbookConfig describes a workbook run.
type WorkbookConfig struct {
	Path     string
	Sheet    string
	Column   string // header of the raw address column
	IDColumn string // optional identity column header
	Mode     ErrorMode
}

// resolve links one raw address: parse, key lookup, canonical form
// with the input flat carried over.
func resolve(lk *linker.Linker, raw string) (address.Address, int, error) {
	parsed, err := address.Parse(raw)
	if err != nil {
		return address.Address{}, 0, err
	}
	key, err := lk.Link(parsed, true)
	if err != nil {
		return address.Address{}, 0, err
	}
	canonical, err := lk.Value(key)
	if err != nil {
		return address.Address{}, 0, err
	}
	canonical.Flat = parsed.Flat
	return canonical, key, nil
}

// ProcessWorkbook reads the address column of the input sheet, links
// every row and saves the results through w. In StopOnError mode the
// first failure aborts the run before anything is written.
func ProcessWorkbook(cfg WorkbookConfig, lk *linker.Linker, w Writer, logger *logrus.Logger) (*Stats, error) {
	f, err := excelize.OpenFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cfg.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", cfg.Sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("input sheet %q is empty", cfg.Sheet)
	}

	addrCol, idCol := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case cfg.Column:
			addrCol = i
		case cfg.IDColumn:
			if cfg.IDColumn != "" {
				idCol = i
			}
		}
	}
	if addrCol < 0 {
		return nil, fmt.Errorf("input sheet %q has no column %q", cfg.Sheet, cfg.Column)
	}
	if cfg.IDColumn != "" && idCol < 0 {
		return nil, fmt.Errorf("input sheet %q has no column %q", cfg.Sheet, cfg.IDColumn)
	}

	stats := &Stats{}
	var records []Record
	for i, row := range rows[1:] {
		raw := cellAt(row, addrCol)
		id := ""
		if idCol >= 0 {
			id = cellAt(row, idCol)
		}
		if raw == "" && id == "" {
			continue // blank trailing row
		}

		canonical, key, err := resolve(lk, raw)
		if err != nil {
			stats.AddFailure(raw, err)
			logger.WithFields(logrus.Fields{
				"row":     i + 2,
				"address": raw,
			}).WithError(err).Warn("Failed to link address")
			if cfg.Mode == StopOnError {
				return stats, fmt.Errorf("row %d (%q): %w", i+2, raw, err)
			}
			continue
		}

		stats.AddSuccess()
		rec := Record{Raw: raw, Address: canonical, Key: key, ID: id}
		logger.WithFields(logrus.Fields{
			"address": raw,
			"linked":  canonical.String(),
			"key":     key,
		}).Debug("Linked address")
		records = append(records, rec)
	}

	if err := w.Save(records); err != nil {
		return stats, fmt.Errorf("failed to save results: %w", err)
	}
	return stats, nil
}

// DatabaseConfig describes a database run.
type DatabaseConfig struct {
	InputTable    string
	AddressColumn string
	IDColumn      string // optional
	Mode          ErrorMode
}

// ProcessDatabase streams the address column of the input table, links
// every row and saves the results through w.
func ProcessDatabase(db *sqlx.DB, cfg DatabaseConfig, lk *linker.Linker, w Writer, logger *logrus.Logger) (*Stats, error) {
	cols := pq.QuoteIdentifier(cfg.AddressColumn)
	if cfg.IDColumn != "" {
		cols += ", " + pq.QuoteIdentifier(cfg.IDColumn)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", cols, pq.QuoteIdentifier(cfg.InputTable)) // #nosec G201 -- identifiers quoted above

	rows, err := db.Queryx(query)
	if err != nil {
		return nil, fmt.Errorf("failed to read input table %s: %w", cfg.InputTable, err)
	}
	defer rows.Close()

	stats := &Stats{}
	var records []Record
	n := 0
	for rows.Next() {
		n++
		var raw, id string
		if cfg.IDColumn != "" {
			var rawCol, idCol any
			if err := rows.Scan(&rawCol, &idCol); err != nil {
				return stats, fmt.Errorf("failed to scan row %d: %w", n, err)
			}
			raw, id = asString(rawCol), asString(idCol)
		} else {
			var rawCol any
			if err := rows.Scan(&rawCol); err != nil {
				return stats, fmt.Errorf("failed to scan row %d: %w", n, err)
			}
			raw = asString(rawCol)
		}

		canonical, key, err := resolve(lk, raw)
		if err != nil {
			stats.AddFailure(raw, err)
			logger.WithFields(logrus.Fields{
				"row":     n,
				"address": raw,
			}).WithError(err).Warn("Failed to link address")
			if cfg.Mode == StopOnError {
				return stats, fmt.Errorf("row %d (%q): %w", n, raw, err)
			}
			continue
		}

		stats.AddSuccess()
		records = append(records, Record{Raw: raw, Address: canonical, Key: key, ID: id})
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("failed to read input table %s: %w", cfg.InputTable, err)
	}

	if err := w.Save(records); err != nil {
		return stats, fmt.Errorf("failed to save results: %w", err)
	}
	return stats, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
