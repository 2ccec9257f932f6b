// file: internal/staffing/engine.go
// version: 1.1.0
// guid: 2c7a9e13-5f04-4d6b-b8e2-71a3d0f95c48

package staffing

import (
	"fmt"
	"sort"

	"github.com/jdfalk/qualification-planner/internal/models"
)

// Plan is the merged staffing requirement for a set of qualifications.
type Plan struct {
	Counts     *models.Assignment                `json:"final_counts"`
	Attributes map[string]models.TitleAttributes `json:"type_attributes"`
	Titles     []string                          `json:"title_order"` // Attributes keys in assignment order
	TotalStaff int                               `json:"total_staff"`
}

// Merge computes one title→headcount assignment that satisfies every
// qualification, letting titles shared between qualifications count toward
// all of them. The result is a deterministic heuristic, not a proven minimum.
//
// Steps: seed titles of require-all rules with one each, greedily fill the
// rule with the smallest deficit, prune, repair, prune again.
func Merge(quals []models.Qualification) (*Plan, error) {
	if len(quals) == 0 {
		return nil, ErrNoSelection
	}
	for _, q := range quals {
		if len(q.Types) == 0 && q.TotalCount > 0 {
			return nil, &InvariantError{Qualification: q.Name, Required: q.TotalCount}
		}
	}

	counts := seed(quals)
	if err := fill(quals, counts); err != nil {
		return nil, err
	}
	counts = optimize(counts, quals)

	counts, err := validateAndAdjust(counts, quals)
	if err != nil {
		return nil, err
	}
	counts = optimize(counts, quals)

	return &Plan{
		Counts:     counts,
		Attributes: titleAttributes(counts, quals),
		Titles:     counts.Titles(),
		TotalStaff: counts.Total(),
	}, nil
}

// TotalStaff sums every headcount in an assignment.
func TotalStaff(a *models.Assignment) int {
	return a.Total()
}

// seed gives every title of a require-all qualification one person.
func seed(quals []models.Qualification) *models.Assignment {
	counts := models.NewAssignment()
	for _, q := range quals {
		if !q.RequireAllTypes {
			continue
		}
		for _, t := range q.Types {
			if !counts.Has(t) {
				counts.Set(t, 1)
			}
		}
	}
	return counts
}

// fill adds one person at a time until every qualification is satisfied.
func fill(quals []models.Qualification, counts *models.Assignment) error {
	satisfied := make([]bool, len(quals))
	refresh := func() {
		for i, q := range quals {
			if !satisfied[i] && Check(q, counts).Satisfied {
				satisfied[i] = true
			}
		}
	}
	refresh()

	budget := 0
	for _, q := range quals {
		budget += max(q.TotalCount, 0)
	}
	allocated := 0

	for !allTrue(satisfied) {
		share := shareCounts(quals, satisfied)

		selected, deficit := -1, 0
		for i, q := range quals {
			if satisfied[i] {
				continue
			}
			need := q.TotalCount - counts.Sum(q.Types)
			if need <= 0 {
				continue
			}
			if selected < 0 || need < deficit {
				selected, deficit = i, need
			}
		}
		if selected < 0 {
			break
		}

		q := quals[selected]
		for ; deficit > 0; deficit-- {
			if allocated >= budget {
				return fmt.Errorf("%w: qualification %q still short after %d allocations",
					ErrIterationLimit, q.Name, allocated)
			}
			counts.Inc(pickTitle(q.Types, share, counts))
			allocated++
			refresh()
			if satisfied[selected] {
				break
			}
		}
	}
	return nil
}

// optimize makes one pass over titles, largest count first, removing a
// person wherever every qualification stays satisfied without them.
func optimize(counts *models.Assignment, quals []models.Qualification) *models.Assignment {
	out := counts.Clone()
	titles := out.Titles()
	sort.SliceStable(titles, func(i, j int) bool {
		return out.Get(titles[i]) > out.Get(titles[j])
	})

	for _, t := range titles {
		n := out.Get(t)
		if n <= 1 {
			continue
		}
		out.Set(t, n-1)
		if !AllSatisfied(quals, out) {
			out.Set(t, n)
		}
	}
	return out
}

// validateAndAdjust tops up any qualification the earlier passes left short,
// require-all rules first (smallest total first), then asserts every rule.
func validateAndAdjust(counts *models.Assignment, quals []models.Qualification) (*models.Assignment, error) {
	out := counts.Clone()
	share := shareCounts(quals, nil)

	var allTypes, partial []models.Qualification
	for _, q := range quals {
		if q.RequireAllTypes {
			allTypes = append(allTypes, q)
		} else {
			partial = append(partial, q)
		}
	}
	sort.SliceStable(allTypes, func(i, j int) bool {
		return allTypes[i].TotalCount < allTypes[j].TotalCount
	})

	for _, q := range allTypes {
		for _, t := range q.Types {
			if out.Get(t) < 1 {
				out.Set(t, 1)
			}
		}
		topUp(q, share, out)
	}
	for _, q := range partial {
		topUp(q, share, out)
	}

	for _, q := range quals {
		if q.RequireAllTypes {
			for _, t := range q.Types {
				if n := out.Get(t); n < 1 {
					return nil, &InvariantError{Qualification: q.Name, Title: t, Current: n, Required: 1}
				}
			}
		}
		if current := out.Sum(q.Types); current < q.TotalCount {
			return nil, &InvariantError{Qualification: q.Name, Current: current, Required: q.TotalCount}
		}
	}
	return out, nil
}

// topUp adds people to q's titles until its total is met.
func topUp(q models.Qualification, share map[string]int, counts *models.Assignment) {
	if len(q.Types) == 0 {
		return
	}
	for need := q.TotalCount - counts.Sum(q.Types); need > 0; need-- {
		counts.Inc(pickTitle(q.Types, share, counts))
		if counts.Sum(q.Types) >= q.TotalCount {
			return
		}
	}
}

// pickTitle prefers the title listed by the most qualifications, then the one
// with the fewest people, then the earliest in types.
func pickTitle(types []string, share map[string]int, counts *models.Assignment) string {
	best := types[0]
	for _, t := range types[1:] {
		if share[t] > share[best] || (share[t] == share[best] && counts.Get(t) < counts.Get(best)) {
			best = t
		}
	}
	return best
}

// shareCounts counts, per title, the qualifications listing it. With a
// non-nil skip, qualifications marked true are ignored.
func shareCounts(quals []models.Qualification, skip []bool) map[string]int {
	share := make(map[string]int)
	for i, q := range quals {
		if skip != nil && skip[i] {
			continue
		}
		for _, t := range q.Types {
			share[t]++
		}
	}
	return share
}

func titleAttributes(counts *models.Assignment, quals []models.Qualification) map[string]models.TitleAttributes {
	share := shareCounts(quals, nil)
	required := make(map[string]bool)
	for _, q := range quals {
		if q.RequireAllTypes {
			for _, t := range q.Types {
				required[t] = true
			}
		}
	}

	attrs := make(map[string]models.TitleAttributes, counts.Len())
	for _, t := range counts.Titles() {
		shared := share[t] > 1
		attrs[t] = models.TitleAttributes{
			Count:              counts.Get(t),
			IsShared:           shared,
			IsFromAllTypesRule: required[t],
			IsHighlighted:      shared || required[t],
		}
	}
	return attrs
}

func allTrue(flags []bool) bool {
	for _, f := range flags {
		if !f {
			return false
		}
	}
	return true
}
