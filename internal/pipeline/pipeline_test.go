package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vmelnikov/addrlink/internal/address"
	"github.com/vmelnikov/addrlink/internal/linker"
	"github.com/vmelnikov/addrlink/internal/refdata"
)

// memoryWriter captures saved records for assertions.
type memoryWriter struct {
	records []Record
	saves   int
}

func (w *memoryWriter) Save(records []Record) error {
	w.records = records
	w.saves++
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testLinker(t *testing.T) *linker.Linker {
	t.Helper()
	rows := []refdata.Row{
		{Key: 1, Name: "СОВЕТСКИЙ", Type: "ПР-КТ", House: "57"},
		{Key: 2, Name: "ПОБЕДЫ", Type: "ПР-КТ", House: "202"},
		{Key: 3, Name: "МЕТАЛЛУРГОВ", Type: "УЛ.", House: "2", FlatStart: address.FlatNumber(1), FlatEnd: address.FlatNumber(96)},
	}
	lk, err := linker.New(rows, quietLogger())
	require.NoError(t, err)
	return lk
}

// writeInput writes an input workbook with the given header and rows.
func writeInput(t *testing.T, header []string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	all := append([][]string{header}, rows...)
	for r, row := range all {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestProcessWorkbook(t *testing.T) {
	path := writeInput(t, []string{"Account", "Address"}, [][]string{
		{"a1", "пркт советский 57"},
		{"a2", "ул Металлургов 2 кв 48"},
	})

	w := &memoryWriter{}
	stats, err := ProcessWorkbook(WorkbookConfig{
		Path:     path,
		Sheet:    "Sheet1",
		Column:   "Address",
		IDColumn: "Account",
		Mode:     StopOnError,
	}, testLinker(t), w, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Successes)
	assert.Equal(t, 0, stats.Failures)
	require.Len(t, w.records, 2)

	assert.Equal(t, "a1", w.records[0].ID)
	assert.Equal(t, 1, w.records[0].Key)
	assert.Equal(t, "СОВЕТСКИЙ", w.records[0].Address.Street.Name)
	assert.Nil(t, w.records[0].Address.Flat)

	// The input flat is carried over onto the canonical address.
	assert.Equal(t, 3, w.records[1].Key)
	require.NotNil(t, w.records[1].Address.Flat)
	assert.Equal(t, 48, *w.records[1].Address.Flat)
}

func TestProcessWorkbookSkipErrors(t *testing.T) {
	path := writeInput(t, []string{"Address"}, [][]string{
		{"пркт советский 57"},
		{"улица Невиданная 99"},
		{"пр-кт Победы 202"},
	})

	w := &memoryWriter{}
	stats, err := ProcessWorkbook(WorkbookConfig{
		Path:   path,
		Sheet:  "Sheet1",
		Column: "Address",
		Mode:   SkipErrors,
	}, testLinker(t), w, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Successes)
	assert.Equal(t, 1, stats.Failures)
	require.Len(t, stats.Failed, 1)
	assert.Equal(t, "улица Невиданная 99", stats.Failed[0].Address)

	// Failed rows are not written.
	require.Len(t, w.records, 2)
	assert.Equal(t, 1, w.records[0].Key)
	assert.Equal(t, 2, w.records[1].Key)
}

func TestProcessWorkbookStopOnError(t *testing.T) {
	path := writeInput(t, []string{"Address"}, [][]string{
		{"улица Невиданная 99"},
		{"пркт советский 57"},
	})

	w := &memoryWriter{}
	stats, err := ProcessWorkbook(WorkbookConfig{
		Path:   path,
		Sheet:  "Sheet1",
		Column: "Address",
		Mode:   StopOnError,
	}, testLinker(t), w, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	assert.Equal(t, 1, stats.Failures)
	// Nothing reaches the writer on an aborted run.
	assert.Equal(t, 0, w.saves)
}

func TestProcessWorkbookMissingColumn(t *testing.T) {
	path := writeInput(t, []string{"Something"}, nil)

	_, err := ProcessWorkbook(WorkbookConfig{
		Path:   path,
		Sheet:  "Sheet1",
		Column: "Address",
	}, testLinker(t), &memoryWriter{}, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no column "Address"`)
}

func TestProcessWorkbookSkipsBlankRows(t *testing.T) {
	path := writeInput(t, []string{"Address"}, [][]string{
		{"пркт советский 57"},
		{""},
	})

	w := &memoryWriter{}
	stats, err := ProcessWorkbook(WorkbookConfig{
		Path:   path,
		Sheet:  "Sheet1",
		Column: "Address",
		Mode:   SkipErrors,
	}, testLinker(t), w, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Successes)
	assert.Equal(t, 0, stats.Failures)
}

func TestStats(t *testing.T) {
	stats := &Stats{}
	stats.AddSuccess()
	stats.AddSuccess()
	stats.AddFailure("ул Неизвестная 1", assert.AnError)

	assert.Equal(t, 2, stats.Successes)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, "Processing results: 2 address(es) linked, 1 failed", stats.Summary())
}

func TestStatsExportCSV(t *testing.T) {
	stats := &Stats{}
	stats.AddFailure("ул Неизвестная 1", assert.AnError)

	path := filepath.Join(t.TempDir(), "errors.csv")
	require.NoError(t, stats.ExportCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "address,error")
	assert.Contains(t, string(data), "ул Неизвестная 1")
}
