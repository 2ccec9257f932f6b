// file: internal/catalog/sync.go
// version: 1.0.0
// guid: 3d8a6f15-9c27-4e0b-a4f3-60b1e2d7c98a

package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/jdfalk/qualification-planner/internal/models"
)

// SyncReport lists the names touched by Sync.
type SyncReport struct {
	Added   []string `json:"added"`
	Updated []string `json:"updated"`
	Removed []string `json:"removed"`
}

// Changed reports whether the sync modified anything.
func (r SyncReport) Changed() bool {
	return len(r.Added)+len(r.Updated)+len(r.Removed) > 0
}

// Sync makes current match imported, keyed by name. Existing entries keep
// their position and are replaced when any field differs; new names are
// appended in import order; names missing from imported are dropped. When a
// name repeats, the last occurrence wins.
func Sync(current *Catalog, imported []models.Qualification) (*Catalog, SyncReport) {
	report := SyncReport{Added: []string{}, Updated: []string{}, Removed: []string{}}

	incoming, incomingOrder := dedupe(imported)
	existing, order := dedupe(current.All())

	for _, name := range incomingOrder {
		q := incoming[name]
		old, ok := existing[name]
		if !ok {
			order = append(order, name)
			existing[name] = q
			report.Added = append(report.Added, name)
			continue
		}
		if !old.Equal(q) {
			existing[name] = q
			report.Updated = append(report.Updated, name)
		}
	}

	merged := make([]models.Qualification, 0, len(order))
	for _, name := range order {
		if _, ok := incoming[name]; !ok {
			report.Removed = append(report.Removed, name)
			continue
		}
		merged = append(merged, existing[name])
	}
	return New(merged), report
}

// dedupe keys quals by name, keeping first-seen order and last-seen value.
func dedupe(quals []models.Qualification) (map[string]models.Qualification, []string) {
	byName := make(map[string]models.Qualification, len(quals))
	order := make([]string, 0, len(quals))
	for _, q := range quals {
		if _, ok := byName[q.Name]; !ok {
			order = append(order, q.Name)
		}
		byName[q.Name] = q
	}
	return byName, order
}

// Apply syncs the catalog in store with imported and saves it when anything
// changed. A missing catalog file counts as an empty catalog.
func Apply(store Store, imported []models.Qualification) (SyncReport, error) {
	current, err := store.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return SyncReport{}, err
		}
		current = New(nil)
	}
	merged, report := Sync(current, imported)
	if !report.Changed() {
		return report, nil
	}
	if err := store.Save(merged); err != nil {
		return report, fmt.Errorf("failed to save catalog to %s: %w", store.Location(), err)
	}
	return report, nil
}
