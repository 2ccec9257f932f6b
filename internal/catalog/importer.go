// file: internal/catalog/importer.go
// version: 1.0.0
// guid: 7b3f0e96-2a54-4c1d-9d87-5e6a1c4b2f08

package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/jdfalk/qualification-planner/internal/models"
)

// Spreadsheet layout of the requirements workbook.
const (
	DefaultSheet = "need"
	// DefaultTotalCount applies when the total column is blank.
	DefaultTotalCount = 10

	headerRows    = 2
	colRequireAll = 1
	colName       = 2
	colTotal      = 3
	colFirstType  = 4
	maxTypeCols   = 9
	requireAllYes = "是"
)

// Progress receives one tick per data row. *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(n int) error
}

// ReadWorkbook reads qualification rows from sheet in the workbook at path.
func ReadWorkbook(path, sheet string, progress Progress) ([]models.Qualification, error) {
	rows, err := ReadWorkbookRows(path, sheet)
	if err != nil {
		return nil, err
	}
	return ParseRows(rows, progress)
}

// ReadWorkbookRows returns the raw rows of sheet, headers included, so callers
// can size a progress bar before parsing.
func ReadWorkbookRows(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return loadSheet(f, sheet)
}

// ReadWorkbookFrom is ReadWorkbook for an uploaded workbook.
func ReadWorkbookFrom(r io.Reader, sheet string, progress Progress) ([]models.Qualification, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	rows, err := loadSheet(f, sheet)
	if err != nil {
		return nil, err
	}
	return ParseRows(rows, progress)
}

func loadSheet(f *excelize.File, sheet string) ([][]string, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// DataRowCount returns how many rows ParseRows will visit.
func DataRowCount(rows [][]string) int {
	return max(len(rows)-headerRows, 0)
}

// ParseRows converts sheet rows into qualifications. The first two rows are
// headers. Rows with a blank name are skipped.
func ParseRows(rows [][]string, progress Progress) ([]models.Qualification, error) {
	quals := make([]models.Qualification, 0, DataRowCount(rows))
	for i := headerRows; i < len(rows); i++ {
		if progress != nil {
			_ = progress.Add(1)
		}
		row := rows[i]
		name := cell(row, colName)
		if name == "" {
			continue
		}

		total := DefaultTotalCount
		if raw := cell(row, colTotal); raw != "" {
			n, err := parseCount(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): invalid total count %q", i+1, name, raw)
			}
			total = n
		}

		types := make([]string, 0, maxTypeCols)
		for c := colFirstType; c < colFirstType+maxTypeCols; c++ {
			if t := cell(row, c); t != "" {
				types = append(types, t)
			}
		}

		quals = append(quals, models.Qualification{
			Name:            name,
			RequireAllTypes: cell(row, colRequireAll) == requireAllYes,
			Types:           types,
			TotalCount:      total,
		})
	}
	return quals, nil
}

// cell returns the trimmed, NFC-normalized value at col; rows may be ragged.
func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(norm.NFC.String(row[col]))
}

// parseCount accepts integers and whole-number floats such as "6.0".
func parseCount(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
