package output

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vmelnikov/addrlink/internal/address"
	"github.com/vmelnikov/addrlink/internal/pipeline"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testRecords() []pipeline.Record {
	return []pipeline.Record{
		{
			Raw: "пркт советский 57",
			Address: address.Address{
				Street: address.Street{Name: "СОВЕТСКИЙ", Type: address.TypeProspekt},
				House:  "57",
			},
			Key: 101,
		},
		{
			Raw: "ул Металлургов 2 кв 48",
			Address: address.Address{
				Street: address.Street{Name: "МЕТАЛЛУРГОВ", Type: address.TypeUlitsa},
				House:  "2",
				Flat:   address.FlatNumber(48),
			},
			Key: 102,
			ID:  "abc-1",
		},
	}
}

func TestExcelWorkerSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.xlsx")
	w := NewExcelWorker(path, "", quietLogger())

	require.NoError(t, w.Save(testRecords()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Address", "Name", "Type", "House", "Flat", "Key"}, rows[0])
	assert.Equal(t, []string{"пркт советский 57", "СОВЕТСКИЙ", "ПР-КТ", "57", "", "101"}, rows[1][:6])
	assert.Equal(t, []string{"ул Металлургов 2 кв 48", "МЕТАЛЛУРГОВ", "УЛ.", "2", "48", "102"}, rows[2])
}

func TestExcelWorkerSaveWithIDColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.xlsx")
	w := NewExcelWorker(path, "Account", quietLogger())

	require.NoError(t, w.Save(testRecords()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Account", rows[0][0])
	assert.Equal(t, "Address", rows[0][1])
	assert.Equal(t, "abc-1", rows[2][0])
	assert.Equal(t, "102", rows[2][6])
}

func TestExcelWorkerSaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.xlsx")
	w := NewExcelWorker(path, "", quietLogger())

	require.NoError(t, w.Save(nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
