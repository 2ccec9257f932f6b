// file: internal/catalog/catalog.go
// version: 1.0.0
// guid: 0f3b7d29-8e61-4a5c-b2d4-93c1e7a60f85

package catalog

import (
	"github.com/jdfalk/qualification-planner/internal/matcher"
	"github.com/jdfalk/qualification-planner/internal/models"
)

// Catalog is an immutable, ordered snapshot of qualification rules.
type Catalog struct {
	quals []models.Qualification
	index map[string]int
}

// New builds a catalog. When names repeat, lookups resolve to the first entry.
func New(quals []models.Qualification) *Catalog {
	c := &Catalog{
		quals: make([]models.Qualification, len(quals)),
		index: make(map[string]int, len(quals)),
	}
	for i, q := range quals {
		q.Types = append([]string(nil), q.Types...)
		c.quals[i] = q
		if _, dup := c.index[q.Name]; !dup {
			c.index[q.Name] = i
		}
	}
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.quals)
}

// Names returns every qualification name in catalog order.
func (c *Catalog) Names() []string {
	if c == nil {
		return []string{}
	}
	names := make([]string, len(c.quals))
	for i, q := range c.quals {
		names[i] = q.Name
	}
	return names
}

// All returns a copy of every entry in catalog order.
func (c *Catalog) All() []models.Qualification {
	if c == nil {
		return []models.Qualification{}
	}
	out := make([]models.Qualification, len(c.quals))
	copy(out, c.quals)
	return out
}

// Lookup finds a qualification by exact name.
func (c *Catalog) Lookup(name string) (models.Qualification, bool) {
	if c == nil {
		return models.Qualification{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return models.Qualification{}, false
	}
	return c.quals[i], true
}

// Resolve maps selected names to catalog entries in selection order. Unknown
// names are returned separately rather than treated as errors.
func (c *Catalog) Resolve(names []string) (matched []models.Qualification, unknown []string) {
	matched = make([]models.Qualification, 0, len(names))
	for _, name := range names {
		if q, ok := c.Lookup(name); ok {
			matched = append(matched, q)
		} else {
			unknown = append(unknown, name)
		}
	}
	return matched, unknown
}

// Search ranks catalog names against a free-text query.
func (c *Catalog) Search(query string, threshold float64) []string {
	return matcher.Rank(query, c.Names(), threshold)
}
