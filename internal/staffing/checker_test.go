// file: internal/staffing/checker_test.go
// version: 1.0.0
// guid: 4f8c1a2e-6b3d-47e9-9a05-d2c7e1b3f890

package staffing

import (
	"testing"

	"github.com/jdfalk/qualification-planner/internal/models"
	"github.com/stretchr/testify/assert"
)

var buildingGC = models.Qualification{
	Name:            "建筑总包二级",
	RequireAllTypes: true,
	Types:           []string{"建筑工程", "结构", "给排水", "电气"},
	TotalCount:      6,
}

var municipalGC = models.Qualification{
	Name:       "市政总包二级",
	Types:      []string{"道路", "桥梁", "给排水"},
	TotalCount: 4,
}

func TestCheck_RequireAllTypes_Satisfied(t *testing.T) {
	counts := CountMap{"建筑工程": 2, "结构": 2, "给排水": 1, "电气": 1}

	res := Check(buildingGC, counts)

	assert.True(t, res.Satisfied)
	assert.Equal(t, 6, res.CurrentTotal)
	assert.Equal(t, 6, res.RequiredTotal)
	assert.True(t, res.RequireAllTypes)
	assert.Empty(t, res.Reasons)
	assert.NotNil(t, res.Reasons)
	assert.Empty(t, res.Missing)
}

func TestCheck_RequireAllTypes_MissingAndShort(t *testing.T) {
	counts := CountMap{"建筑工程": 2, "电气": 1}

	res := Check(buildingGC, counts)

	assert.False(t, res.Satisfied)
	assert.Equal(t, 3, res.CurrentTotal)
	assert.Equal(t, []string{"结构", "给排水"}, res.Missing)
	assert.Equal(t, []string{
		"缺少以下职称类型：结构、给排水",
		"总人数不足：当前 3 人，需要 6 人",
	}, res.Reasons)
	assert.Equal(t, []TitleDetail{
		{Title: "建筑工程", Count: 2, Satisfied: true},
		{Title: "结构", Count: 0, Satisfied: false},
		{Title: "给排水", Count: 0, Satisfied: false},
		{Title: "电气", Count: 1, Satisfied: true},
	}, res.Details)
}

func TestCheck_RequireAllTypes_TotalMetButTitleMissing(t *testing.T) {
	counts := CountMap{"建筑工程": 3, "结构": 2, "给排水": 1}

	res := Check(buildingGC, counts)

	assert.False(t, res.Satisfied)
	assert.Equal(t, []string{"缺少以下职称类型：电气"}, res.Reasons)
}

func TestCheck_AggregateOnly(t *testing.T) {
	res := Check(municipalGC, CountMap{"道路": 4})
	assert.True(t, res.Satisfied)
	assert.Empty(t, res.Missing)
	assert.Empty(t, res.Reasons)

	res = Check(municipalGC, CountMap{"道路": 1, "桥梁": 1})
	assert.False(t, res.Satisfied)
	assert.Equal(t, []string{"总人数不足：当前 2 人，需要 4 人"}, res.Reasons)
	assert.Len(t, res.Details, 3)
	assert.False(t, res.Details[2].Satisfied)
}

func TestCheck_IgnoresUnrelatedTitles(t *testing.T) {
	res := Check(municipalGC, CountMap{"电气": 10, "桥梁": 1})
	assert.False(t, res.Satisfied)
	assert.Equal(t, 1, res.CurrentTotal)
}

func TestCheck_IsIdempotent(t *testing.T) {
	counts := CountMap{"建筑工程": 1, "给排水": 2}
	first := Check(buildingGC, counts)
	second := Check(buildingGC, counts)
	assert.Equal(t, first, second)
	assert.Equal(t, CountMap{"建筑工程": 1, "给排水": 2}, counts)
}

func TestCheck_AcceptsAssignment(t *testing.T) {
	a := models.NewAssignment()
	a.Set("道路", 2)
	a.Set("给排水", 2)
	assert.True(t, Check(municipalGC, a).Satisfied)
}

func TestCheckAll_KeepsInputOrder(t *testing.T) {
	results := CheckAll([]models.Qualification{municipalGC, buildingGC}, CountMap{"道路": 4})
	if assert.Len(t, results, 2) {
		assert.Equal(t, "市政总包二级", results[0].Qualification)
		assert.True(t, results[0].Satisfied)
		assert.Equal(t, "建筑总包二级", results[1].Qualification)
		assert.False(t, results[1].Satisfied)
	}
	assert.False(t, AllSatisfied([]models.Qualification{municipalGC, buildingGC}, CountMap{"道路": 4}))
}
