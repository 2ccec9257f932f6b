// file: internal/catalog/lint.go
// version: 1.0.0
// guid: 95e0c7a3-1f64-4b2e-8d59-a7c3f0b1e642

package catalog

import "fmt"

// Issue is one problem found by Lint.
type Issue struct {
	Position      int    `json:"position"`
	Qualification string `json:"qualification"`
	Problem       string `json:"problem"`
}

func (i Issue) String() string {
	return fmt.Sprintf("#%d %q: %s", i.Position, i.Qualification, i.Problem)
}

// Lint reports entries the allocation engine cannot handle or that make name
// lookups ambiguous. Positions are zero-based.
func Lint(c *Catalog) []Issue {
	issues := []Issue{}
	seen := make(map[string]int)
	for i, q := range c.All() {
		add := func(format string, args ...any) {
			issues = append(issues, Issue{Position: i, Qualification: q.Name, Problem: fmt.Sprintf(format, args...)})
		}
		if q.Name == "" {
			add("empty name")
		} else if first, dup := seen[q.Name]; dup {
			add("duplicate name, first defined at #%d", first)
		} else {
			seen[q.Name] = i
		}
		if len(q.Types) == 0 {
			add("no titles listed")
		}
		if q.TotalCount < 1 {
			add("total_count %d is less than 1", q.TotalCount)
		}
		titles := make(map[string]bool, len(q.Types))
		for _, t := range q.Types {
			if t == "" {
				add("empty title")
				continue
			}
			if titles[t] {
				add("title %q listed more than once", t)
			}
			titles[t] = true
		}
	}
	return issues
}
