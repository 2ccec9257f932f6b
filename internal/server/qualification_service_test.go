// file: internal/server/qualification_service_test.go
// version: 1.0.0
// guid: 7a1c3e59-2b84-4f06-9d1a-e5c8b0f24d63

package server

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/jdfalk/qualification-planner/internal/catalog"
	"github.com/jdfalk/qualification-planner/internal/models"
	"github.com/jdfalk/qualification-planner/internal/staffing"
)

// memStore is an in-memory catalog store.
type memStore struct {
	quals   []models.Qualification
	loadErr error
	saved   int
}

func (m *memStore) Load() (*catalog.Catalog, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return catalog.New(m.quals), nil
}

func (m *memStore) Save(c *catalog.Catalog) error {
	m.quals = c.All()
	m.saved++
	return nil
}

func (m *memStore) Close() error     { return nil }
func (m *memStore) Location() string { return "mem" }

func newTestService(t *testing.T, ttl time.Duration) (*QualificationService, *memStore) {
	t.Helper()
	store := &memStore{quals: testQualifications()}
	provider, err := catalog.NewProvider(store)
	require.NoError(t, err)
	return NewQualificationService(provider, 0.3, ttl), store
}

func TestServiceSearchCacheDroppedOnReload(t *testing.T) {
	qs, store := newTestService(t, time.Minute)

	assert.Equal(t, []string{"建筑总包二级", "市政总包二级"}, qs.Search("总包"))
	assert.Equal(t, 1, qs.searches.Len())

	store.quals = append(store.quals, models.Qualification{Name: "机电总包二级", Types: []string{"电气"}, TotalCount: 1})
	_, err := qs.Reload()
	require.NoError(t, err)

	assert.Equal(t, 0, qs.searches.Len())
	assert.Equal(t, []string{"建筑总包二级", "市政总包二级", "机电总包二级"}, qs.Search("总包"))
}

func TestServiceSearchWithoutCache(t *testing.T) {
	qs, _ := newTestService(t, 0)

	assert.Equal(t, []string{"市政总包二级"}, qs.Search("  市政总包二级 "))
	assert.Equal(t, 0, qs.searches.Len())
}

func TestServiceResolveNormalizesNames(t *testing.T) {
	qs, store := newTestService(t, 0)
	// A name with a combining mark, stored composed.
	store.quals = []models.Qualification{{Name: norm.NFC.String("Cafe\u0301"), Types: []string{"x"}, TotalCount: 1}}
	_, err := qs.Reload()
	require.NoError(t, err)

	matched, unknown, err := qs.Resolve([]string{"Cafe\u0301 ", "missing"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, []string{"missing"}, unknown)
}

func TestServiceResolveErrors(t *testing.T) {
	qs, _ := newTestService(t, 0)

	_, _, err := qs.Resolve(nil)
	var sel *staffing.SelectionError
	require.ErrorAs(t, err, &sel)
	assert.Equal(t, staffing.MsgEmptySelection, sel.Message)

	_, unknown, err := qs.Resolve([]string{"a", "b"})
	require.ErrorAs(t, err, &sel)
	assert.Equal(t, staffing.MsgNothingResolved, sel.Message)
	assert.Equal(t, []string{"a", "b"}, unknown)
	assert.ErrorIs(t, err, staffing.ErrNoSelection)
}

func TestServiceCompute(t *testing.T) {
	qs, _ := newTestService(t, 0)

	resp, err := qs.Compute([]string{"市政总包二级"}, "req")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalStaff)
	assert.True(t, staffing.AllSatisfied(resp.MatchedDetails, resp.FinalCounts))
}

func TestServiceVerifyNormalizesTitles(t *testing.T) {
	qs, _ := newTestService(t, 0)

	results, err := qs.Verify([]string{"建筑装修专包二级"}, map[string]int{" 建筑工程 ": 1}, "req")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Satisfied)
}

func TestServiceReloadFailureKeepsSnapshot(t *testing.T) {
	qs, store := newTestService(t, 0)
	store.loadErr = errors.New("unreadable")

	_, err := qs.Reload()
	require.Error(t, err)
	assert.Equal(t, 3, qs.Catalog().Len())
}

func TestServiceImportReadOnly(t *testing.T) {
	qs := NewQualificationService(catalog.NewStaticProvider(catalog.New(nil)), 0.3, 0)

	_, err := qs.ImportWorkbook(nil, "")
	assert.ErrorIs(t, err, ErrReadOnlyCatalog)
}
