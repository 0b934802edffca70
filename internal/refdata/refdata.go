// Package refdata loads the reference workbook ("DB export") that maps
// canonical street/house/flat-range rows to database keys.
package refdata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RequiredColumns is the exact header set the export sheet must carry.
var RequiredColumns = []string{"Key", "Name", "Type", "House", "Flat_start", "Flat_end"}

// Row is one reference entry. Name, Type and House are stored
// upper-case in the export. FlatStart/FlatEnd are nil when the row has
// no flat range.
type Row struct {
	Key       int
	Name      string
	Type      string
	House     string
	FlatStart *int
	FlatEnd   *int
}

// InFlatRange reports whether the row's flat range contains flat.
// Rows without a range never match.
func (r Row) InFlatRange(flat int) bool {
	return r.FlatStart != nil && r.FlatEnd != nil &&
		*r.FlatStart <= flat && flat <= *r.FlatEnd
}

// Load reads the export workbook sheet into rows, validating the
// header first.
func Load(path, sheet string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference workbook: %w", err)
	}
	defer f.Close()

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("reference sheet %q is empty", sheet)
	}

	cols, err := headerIndex(cells[0])
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(cells)-1)
	for i, rec := range cells[1:] {
		row, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("reference row %d: %w", i+2, err)
		}
		if row == nil {
			continue
		}
		rows = append(rows, *row)
	}
	return rows, nil
}

// headerIndex maps required column names to their positions,
// rejecting sheets that miss any of them.
func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(RequiredColumns))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("reference workbook is malformed, required columns: %s (missing %s)",
			strings.Join(RequiredColumns, ", "), strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRow(rec []string, cols map[string]int) (*Row, error) {
	cell := func(name string) string {
		i := cols[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	// Blank lines at the bottom of exported sheets are common.
	if cell("Key") == "" && cell("Name") == "" && cell("House") == "" {
		return nil, nil
	}

	key, err := strconv.Atoi(cell("Key"))
	if err != nil {
		return nil, fmt.Errorf("bad key %q", cell("Key"))
	}

	row := Row{
		Key:   key,
		Name:  strings.ToUpper(cell("Name")),
		Type:  strings.ToUpper(cell("Type")),
		House: strings.ToUpper(cell("House")),
	}
	if row.Name == "" || row.House == "" {
		return nil, fmt.Errorf("key %d has an empty name or house", key)
	}

	row.FlatStart, err = optionalInt(cell("Flat_start"))
	if err != nil {
		return nil, fmt.Errorf("key %d: bad Flat_start: %w", key, err)
	}
	row.FlatEnd, err = optionalInt(cell("Flat_end"))
	if err != nil {
		return nil, fmt.Errorf("key %d: bad Flat_end: %w", key, err)
	}
	return &row, nil
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	// Exports routinely render integers as "12.0".
	s = strings.TrimSuffix(s, ".0")
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
