// Package output persists linked address records: a single-table
// workbook or a Postgres table with key write-back.
package output

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/vmelnikov/addrlink/internal/pipeline"
)

// resultHeader is the fixed column set of the output table.
var resultHeader = []string{"Address", "Name", "Type", "House", "Flat", "Key"}

// ExcelWorker writes all records to one sheet of a new workbook.
type ExcelWorker struct {
	Path     string
	IDColumn string // when set, an identity column is prepended
	Logger   *logrus.Logger
}

// NewExcelWorker returns a worker writing to path.
func NewExcelWorker(path, idColumn string, logger *logrus.Logger) *ExcelWorker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ExcelWorker{Path: path, IDColumn: idColumn, Logger: logger}
}

// Save writes the records and the header row to the workbook.
func (w *ExcelWorker) Save(records []pipeline.Record) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := resultHeader
	if w.IDColumn != "" {
		header = append([]string{w.IDColumn}, resultHeader...)
	}
	for c, h := range header {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, rec := range records {
		values := recordCells(rec)
		if w.IDColumn != "" {
			values = append([]any{rec.ID}, values...)
		}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", r+2, err)
			}
		}
		w.Logger.WithFields(logrus.Fields{
			"address": rec.Raw,
			"key":     rec.Key,
		}).Debug("Wrote result row")
	}

	if err := f.SaveAs(w.Path); err != nil {
		return fmt.Errorf("failed to save output workbook: %w", err)
	}
	w.Logger.WithFields(logrus.Fields{
		"path": w.Path,
		"rows": len(records),
	}).Info("Output workbook written")
	return nil
}

// recordCells renders a record into the fixed result columns.
func recordCells(rec pipeline.Record) []any {
	var flat any
	if rec.Address.Flat != nil {
		flat = *rec.Address.Flat
	} else {
		flat = ""
	}
	return []any{
		rec.Raw,
		rec.Address.Street.Name,
		rec.Address.Street.Type.Short(),
		rec.Address.House,
		flat,
		rec.Key,
	}
}
