// file: internal/server/qualification_service.go
// version: 1.0.0
// guid: 3c9e5a17-6b28-4d40-9f83-a1e7d2c4b056

package server

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jdfalk/qualification-planner/internal/cache"
	"github.com/jdfalk/qualification-planner/internal/catalog"
	"github.com/jdfalk/qualification-planner/internal/metrics"
	"github.com/jdfalk/qualification-planner/internal/models"
	"github.com/jdfalk/qualification-planner/internal/staffing"
)

// ErrReadOnlyCatalog is returned when the catalog has no backing store.
var ErrReadOnlyCatalog = errors.New("catalog has no writable store")

// QualificationService handles search, staffing computation and verification
// against the current catalog snapshot.
type QualificationService struct {
	provider  *catalog.Provider
	threshold float64
	searches  *cache.Cache[[]string]

	// generation prefixes cache keys so a search racing a reload cannot
	// store results from the old snapshot under a live key.
	generation atomic.Uint64
	importMu   sync.Mutex
}

// NewQualificationService creates a service. Search results are cached for
// cacheTTL and dropped whenever the catalog reloads.
func NewQualificationService(provider *catalog.Provider, threshold float64, cacheTTL time.Duration) *QualificationService {
	qs := &QualificationService{
		provider:  provider,
		threshold: threshold,
		searches:  cache.New[[]string](cacheTTL, 0),
	}
	provider.OnReload(func(c *catalog.Catalog) {
		qs.generation.Add(1)
		qs.searches.InvalidateAll()
		metrics.SetCatalogSize(c.Len())
	})
	metrics.SetCatalogSize(provider.Current().Len())
	return qs
}

// Catalog returns the active snapshot.
func (qs *QualificationService) Catalog() *catalog.Catalog {
	return qs.provider.Current()
}

// normalize trims and NFC-normalizes user text so composed and decomposed
// input compare equal to catalog names.
func normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Search ranks catalog names against query.
func (qs *QualificationService) Search(query string) []string {
	start := time.Now()
	defer func() { metrics.ObserveOperationDuration("search", time.Since(start)) }()

	query = normalize(query)
	key := strconv.FormatUint(qs.generation.Load(), 10) + "|" + query
	snapshot := qs.Catalog()
	results, hit := qs.searches.GetOrCompute(key, func() []string {
		return snapshot.Search(query, qs.threshold)
	})
	metrics.IncSearch(hit)
	return results
}

// Resolve maps selected names to catalog entries. Unknown names are skipped;
// an empty or wholly unknown selection is a *staffing.SelectionError.
func (qs *QualificationService) Resolve(names []string) ([]models.Qualification, []string, error) {
	if len(names) == 0 {
		return nil, nil, &staffing.SelectionError{Message: staffing.MsgEmptySelection}
	}
	cleaned := make([]string, len(names))
	for i, n := range names {
		cleaned[i] = normalize(n)
	}
	matched, unknown := qs.Catalog().Resolve(cleaned)
	if len(matched) == 0 {
		return nil, unknown, &staffing.SelectionError{Message: staffing.MsgNothingResolved, Unknown: unknown}
	}
	return matched, unknown, nil
}

// Compute resolves names and merges their staffing rules into one plan.
func (qs *QualificationService) Compute(names []string, requestID string) (*MatchResponse, error) {
	logger := NewServiceLogger("QualificationService", requestID)
	start := time.Now()
	defer func() { metrics.ObserveOperationDuration("compute", time.Since(start)) }()

	matched, unknown, err := qs.Resolve(names)
	if len(unknown) > 0 {
		logger.LogDebug("Compute", fmt.Sprintf("skipped unknown qualifications %v", unknown))
	}
	if err != nil {
		metrics.IncComputation(metrics.OutcomeNoSelection)
		return nil, err
	}

	plan, err := staffing.Merge(matched)
	if err != nil {
		metrics.IncComputation(outcomeFor(err))
		logger.LogError("Compute", err)
		return nil, err
	}
	metrics.IncComputation(metrics.OutcomeOK)
	metrics.SetLastTotalStaff(plan.TotalStaff)

	matchedNames := make([]string, len(matched))
	for i, q := range matched {
		matchedNames[i] = q.Name
	}
	logger.LogOperation("Compute", map[string]any{
		"qualifications": len(matched),
		"total_staff":    plan.TotalStaff,
	})
	return &MatchResponse{
		MatchedQualifications: matchedNames,
		MatchedDetails:        matched,
		FinalCounts:           plan.Counts,
		TypeAttributes:        plan.Attributes,
		TotalStaff:            plan.TotalStaff,
	}, nil
}

func outcomeFor(err error) string {
	if errors.Is(err, staffing.ErrNoSelection) {
		return metrics.OutcomeNoSelection
	}
	return metrics.OutcomeError
}

// Verify checks an externally supplied headcount map against each selected
// qualification, in selection order.
func (qs *QualificationService) Verify(names []string, titleCounts map[string]int, requestID string) ([]staffing.Result, error) {
	logger := NewServiceLogger("QualificationService", requestID)
	start := time.Now()
	defer func() { metrics.ObserveOperationDuration("verify", time.Since(start)) }()

	matched, unknown, err := qs.Resolve(names)
	if len(unknown) > 0 {
		logger.LogDebug("Verify", fmt.Sprintf("skipped unknown qualifications %v", unknown))
	}
	if err != nil {
		return nil, err
	}

	counts := make(staffing.CountMap, len(titleCounts))
	for title, n := range titleCounts {
		counts[normalize(title)] += n
	}
	results := staffing.CheckAll(matched, counts)
	for _, r := range results {
		metrics.IncVerification(r.Satisfied)
	}
	return results, nil
}

// Reload re-reads the catalog store.
func (qs *QualificationService) Reload() (*catalog.Catalog, error) {
	c, err := qs.provider.Reload()
	metrics.IncCatalogReload(err)
	return c, err
}

// ImportWorkbook syncs the catalog with an uploaded requirements workbook and
// reloads it. Imports are serialized.
func (qs *QualificationService) ImportWorkbook(r io.Reader, sheet string) (catalog.SyncReport, error) {
	store := qs.provider.Store()
	if store == nil {
		return catalog.SyncReport{}, ErrReadOnlyCatalog
	}
	quals, err := catalog.ReadWorkbookFrom(r, sheet, nil)
	if err != nil {
		return catalog.SyncReport{}, err
	}

	qs.importMu.Lock()
	defer qs.importMu.Unlock()

	report, err := catalog.Apply(store, quals)
	if err != nil {
		return report, err
	}
	if report.Changed() {
		if _, err := qs.Reload(); err != nil {
			return report, err
		}
	}
	return report, nil
}
