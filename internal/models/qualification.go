// file: internal/models/qualification.go
// version: 1.0.0
// guid: 3e6b1f0a-92c4-4d7e-8a15-7c0d2b9e4f61

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Qualification is one staffing rule from the qualification catalog.
type Qualification struct {
	Name            string   `json:"name" yaml:"name"`
	RequireAllTypes bool     `json:"require_all_types" yaml:"require_all_types"`
	Types           []string `json:"types" yaml:"types"`
	TotalCount      int      `json:"total_count" yaml:"total_count"`
}

// HasType reports whether title is listed in the qualification's types.
func (q Qualification) HasType(title string) bool {
	for _, t := range q.Types {
		if t == title {
			return true
		}
	}
	return false
}

// Equal compares every field, including title order.
func (q Qualification) Equal(other Qualification) bool {
	if q.Name != other.Name || q.RequireAllTypes != other.RequireAllTypes || q.TotalCount != other.TotalCount {
		return false
	}
	if len(q.Types) != len(other.Types) {
		return false
	}
	for i := range q.Types {
		if q.Types[i] != other.Types[i] {
			return false
		}
	}
	return true
}

// Assignment maps titles to headcounts and remembers the order in which
// titles were first added.
type Assignment struct {
	order  []string
	counts map[string]int
}

// NewAssignment creates an empty assignment
func NewAssignment() *Assignment {
	return &Assignment{counts: make(map[string]int)}
}

// AssignmentFromMap builds an assignment from a plain map. Titles listed in
// keys come first in that order; the rest follow sorted by name.
func AssignmentFromMap(m map[string]int, keys []string) *Assignment {
	a := NewAssignment()
	for _, k := range keys {
		if v, ok := m[k]; ok {
			a.Set(k, v)
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		if !a.Has(k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		a.Set(k, m[k])
	}
	return a
}

// Get returns the count for title, zero when absent.
func (a *Assignment) Get(title string) int {
	if a == nil {
		return 0
	}
	return a.counts[title]
}

// Has reports whether title was ever set.
func (a *Assignment) Has(title string) bool {
	if a == nil {
		return false
	}
	_, ok := a.counts[title]
	return ok
}

// Set stores a count, appending the title to the order on first use.
func (a *Assignment) Set(title string, count int) {
	if _, ok := a.counts[title]; !ok {
		a.order = append(a.order, title)
	}
	a.counts[title] = count
}

// Inc adds one to title's count.
func (a *Assignment) Inc(title string) {
	a.Set(title, a.Get(title)+1)
}

// Titles returns titles in insertion order.
func (a *Assignment) Titles() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Len returns the number of titles.
func (a *Assignment) Len() int {
	if a == nil {
		return 0
	}
	return len(a.order)
}

// Sum adds up the counts of the listed titles. Duplicates are counted each time.
func (a *Assignment) Sum(titles []string) int {
	total := 0
	for _, t := range titles {
		total += a.Get(t)
	}
	return total
}

// Total is the overall headcount.
func (a *Assignment) Total() int {
	if a == nil {
		return 0
	}
	total := 0
	for _, t := range a.order {
		total += a.counts[t]
	}
	return total
}

// Map returns a copy of the counts.
func (a *Assignment) Map() map[string]int {
	out := make(map[string]int, a.Len())
	if a == nil {
		return out
	}
	for k, v := range a.counts {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy that keeps the title order.
func (a *Assignment) Clone() *Assignment {
	c := NewAssignment()
	if a == nil {
		return c
	}
	for _, t := range a.order {
		c.Set(t, a.counts[t])
	}
	return c
}

// MarshalJSON writes an object whose keys follow insertion order.
func (a *Assignment) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range a.Titles() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", a.counts[t])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a title→count object, keeping the key order of the input.
func (a *Assignment) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("assignment must be a JSON object")
	}
	a.order = nil
	a.counts = make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		title, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected assignment key %v", tok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("count for %q: %w", title, err)
		}
		a.Set(title, count)
	}
	_, err = dec.Token()
	return err
}

// TitleAttributes describes how a title in a computed plan should be displayed.
type TitleAttributes struct {
	Count              int  `json:"count"`
	IsShared           bool `json:"is_shared"`
	IsFromAllTypesRule bool `json:"is_from_all_types_rule"`
	// IsHighlighted is serialized as is_red for the existing front end.
	IsHighlighted bool `json:"is_red"`
}
