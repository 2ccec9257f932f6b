// file: internal/catalog/catalog_test.go
// version: 1.0.0
// guid: 48c1f9e2-7a3b-4d05-b6e8-0f2d9a5c7e13

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdfalk/qualification-planner/internal/models"
)

func sampleQualifications() []models.Qualification {
	return []models.Qualification{
		{Name: "建筑总包二级", RequireAllTypes: true, Types: []string{"建筑工程", "结构", "给排水", "电气"}, TotalCount: 6},
		{Name: "市政总包二级", Types: []string{"道路", "桥梁", "给排水"}, TotalCount: 4},
		{Name: "机电总包二级", RequireAllTypes: true, Types: []string{"电气", "暖通"}, TotalCount: 3},
		{Name: "建筑装修专包二级", Types: []string{"建筑工程"}, TotalCount: 2},
	}
}

func TestCatalogLookupAndNames(t *testing.T) {
	c := New(sampleQualifications())

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []string{"建筑总包二级", "市政总包二级", "机电总包二级", "建筑装修专包二级"}, c.Names())

	q, ok := c.Lookup("市政总包二级")
	require.True(t, ok)
	assert.Equal(t, 4, q.TotalCount)

	_, ok = c.Lookup("不存在")
	assert.False(t, ok)
}

func TestCatalogFirstDuplicateWins(t *testing.T) {
	quals := sampleQualifications()
	quals = append(quals, models.Qualification{Name: "市政总包二级", Types: []string{"道路"}, TotalCount: 1})
	c := New(quals)

	q, ok := c.Lookup("市政总包二级")
	require.True(t, ok)
	assert.Equal(t, 4, q.TotalCount)
	assert.Equal(t, 5, c.Len())
}

func TestCatalogIsolatedFromInput(t *testing.T) {
	quals := sampleQualifications()
	c := New(quals)
	quals[0].Types[0] = "changed"

	q, _ := c.Lookup("建筑总包二级")
	assert.Equal(t, "建筑工程", q.Types[0])
}

func TestResolveKeepsSelectionOrder(t *testing.T) {
	c := New(sampleQualifications())

	matched, unknown := c.Resolve([]string{"机电总包二级", "缺失", "建筑总包二级"})

	require.Len(t, matched, 2)
	assert.Equal(t, "机电总包二级", matched[0].Name)
	assert.Equal(t, "建筑总包二级", matched[1].Name)
	assert.Equal(t, []string{"缺失"}, unknown)
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Names())
	assert.NotNil(t, c.All())
	_, ok := c.Lookup("x")
	assert.False(t, ok)
}

func TestCatalogSearch(t *testing.T) {
	c := New(sampleQualifications())

	assert.Equal(t, c.Names(), c.Search("  ", 0.3))
	assert.Equal(t, []string{"市政总包二级"}, c.Search("市政总包", 0.3))
	assert.Equal(t, "建筑总包二级", c.Search("建筑总包二级", 0.3)[0])
}

func TestLint(t *testing.T) {
	c := New([]models.Qualification{
		{Name: "ok", Types: []string{"a"}, TotalCount: 1},
		{Name: "", Types: []string{"a"}, TotalCount: 1},
		{Name: "ok", Types: []string{"a"}, TotalCount: 1},
		{Name: "empty", TotalCount: 0},
		{Name: "dup-title", Types: []string{"a", "b", "a"}, TotalCount: 2},
	})

	issues := Lint(c)

	problems := make([]string, 0, len(issues))
	for _, i := range issues {
		problems = append(problems, i.String())
	}
	assert.Equal(t, []string{
		`#1 "": empty name`,
		`#2 "ok": duplicate name, first defined at #0`,
		`#3 "empty": no titles listed`,
		`#3 "empty": total_count 0 is less than 1`,
		`#4 "dup-title": title "a" listed more than once`,
	}, problems)
}

func TestLintCleanCatalog(t *testing.T) {
	issues := Lint(New(sampleQualifications()))
	assert.NotNil(t, issues)
	assert.Empty(t, issues)
}
