// file: internal/catalog/importer_test.go
// version: 1.0.0
// guid: 0c6e3b81-9f25-4d7a-a2e0-5b8d1f4c7a96

package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jdfalk/qualification-planner/internal/models"
)

type countingProgress struct{ n int }

func (c *countingProgress) Add(n int) error {
	c.n += n
	return nil
}

var sheetRows = [][]string{
	{"序号", "是否要求齐全", "资质名称", "总人数", "职称1", "职称2", "职称3"},
	{"", "", "说明行", "", "", "", ""},
	{"1", "是", " 建筑总包二级 ", "6", "建筑工程", "结构", " 给排水 "},
	{"2", "否", "市政总包二级", "", "道路", "", "桥梁"},
	{"3", "", "   "},
	{"4", "是", "机电总包二级", "3.0", "电气"},
}

func TestParseRows(t *testing.T) {
	progress := &countingProgress{}
	quals, err := ParseRows(sheetRows, progress)
	require.NoError(t, err)

	assert.Equal(t, []models.Qualification{
		{Name: "建筑总包二级", RequireAllTypes: true, Types: []string{"建筑工程", "结构", "给排水"}, TotalCount: 6},
		{Name: "市政总包二级", Types: []string{"道路", "桥梁"}, TotalCount: DefaultTotalCount},
		{Name: "机电总包二级", RequireAllTypes: true, Types: []string{"电气"}, TotalCount: 3},
	}, quals)
	assert.Equal(t, 4, progress.n)
	assert.Equal(t, 4, DataRowCount(sheetRows))
}

func TestParseRowsInvalidCount(t *testing.T) {
	rows := [][]string{{"h"}, {"h"}, {"1", "否", "x", "many", "a"}}
	_, err := ParseRows(rows, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestParseRowsHeadersOnly(t *testing.T) {
	quals, err := ParseRows(sheetRows[:1], nil)
	require.NoError(t, err)
	assert.Empty(t, quals)
	assert.Equal(t, 0, DataRowCount(sheetRows[:1]))
}

func TestReadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quals.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet(DefaultSheet)
	require.NoError(t, err)
	for i, row := range sheetRows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(DefaultSheet, cellName, &values))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	quals, err := ReadWorkbook(path, "", nil)
	require.NoError(t, err)
	require.Len(t, quals, 3)
	assert.Equal(t, "建筑总包二级", quals[0].Name)
	assert.Equal(t, DefaultTotalCount, quals[1].TotalCount)

	_, err = ReadWorkbook(path, "missing", nil)
	assert.Error(t, err)
}

func TestSync(t *testing.T) {
	current := New([]models.Qualification{
		{Name: "a", Types: []string{"x"}, TotalCount: 1},
		{Name: "b", Types: []string{"y"}, TotalCount: 2},
		{Name: "c", Types: []string{"z"}, TotalCount: 3},
	})
	imported := []models.Qualification{
		{Name: "d", Types: []string{"w"}, TotalCount: 4},
		{Name: "c", Types: []string{"z"}, TotalCount: 5},
		{Name: "a", Types: []string{"x"}, TotalCount: 1},
	}

	merged, report := Sync(current, imported)

	assert.Equal(t, []string{"a", "c", "d"}, merged.Names())
	c, _ := merged.Lookup("c")
	assert.Equal(t, 5, c.TotalCount)
	assert.Equal(t, []string{"d"}, report.Added)
	assert.Equal(t, []string{"c"}, report.Updated)
	assert.Equal(t, []string{"b"}, report.Removed)
	assert.True(t, report.Changed())
}

func TestSyncUnchanged(t *testing.T) {
	current := New(sampleQualifications())

	merged, report := Sync(current, sampleQualifications())

	assert.False(t, report.Changed())
	assert.Equal(t, current.All(), merged.All())
}

func TestSyncIntoEmpty(t *testing.T) {
	merged, report := Sync(nil, sampleQualifications())

	assert.Equal(t, New(sampleQualifications()).Names(), merged.Names())
	assert.Len(t, report.Added, 4)
	assert.Empty(t, report.Removed)
}

func TestApplyCreatesMissingCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quals.json")
	store := NewFileStore(path)

	report, err := Apply(store, sampleQualifications())
	require.NoError(t, err)
	assert.Len(t, report.Added, 4)

	c, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, New(sampleQualifications()).Names(), c.Names())

	report, err = Apply(store, sampleQualifications()[:2])
	require.NoError(t, err)
	assert.Equal(t, []string{"机电总包二级", "建筑装修专包二级"}, report.Removed)
}

func TestReadWorkbookRowsMissingFile(t *testing.T) {
	_, err := ReadWorkbookRows(filepath.Join(t.TempDir(), "absent.xlsx"), "")
	assert.ErrorContains(t, err, "failed to open workbook")
}
