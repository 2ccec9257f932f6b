// file: internal/staffing/checker.go
// version: 1.0.0
// guid: 9d2f4a61-7c3e-4b08-a5d1-6e9b0c2f8a37

package staffing

import (
	"fmt"
	"strings"

	"github.com/jdfalk/qualification-planner/internal/models"
)

// Counts is anything that can report a headcount per title.
type Counts interface {
	Get(title string) int
}

// CountMap adapts a plain map to Counts.
type CountMap map[string]int

// Get returns the count for title, zero when absent.
func (m CountMap) Get(title string) int { return m[title] }

// TitleDetail reports one title's headcount within a qualification check.
type TitleDetail struct {
	Title     string `json:"title"`
	Count     int    `json:"count"`
	Satisfied bool   `json:"satisfied"`
}

// Result is the outcome of checking one qualification against a headcount map.
type Result struct {
	Qualification   string        `json:"qualification_name"`
	Satisfied       bool          `json:"satisfied"`
	CurrentTotal    int           `json:"current_total"`
	RequiredTotal   int           `json:"required_total"`
	RequireAllTypes bool          `json:"require_all_types"`
	Details         []TitleDetail `json:"title_details"`
	Missing         []string      `json:"missing_types,omitempty"`
	Reasons         []string      `json:"reasons"`
}

// MissingTypesReason formats the reason for titles without staff.
func MissingTypesReason(missing []string) string {
	return "缺少以下职称类型：" + strings.Join(missing, "、")
}

// InsufficientTotalReason formats the reason for a short aggregate headcount.
func InsufficientTotalReason(current, required int) string {
	return fmt.Sprintf("总人数不足：当前 %d 人，需要 %d 人", current, required)
}

// Check decides whether counts satisfy q and explains why not.
func Check(q models.Qualification, counts Counts) Result {
	res := Result{
		Qualification:   q.Name,
		RequiredTotal:   q.TotalCount,
		RequireAllTypes: q.RequireAllTypes,
		Details:         make([]TitleDetail, 0, len(q.Types)),
		Reasons:         make([]string, 0, 2),
	}

	for _, title := range q.Types {
		n := counts.Get(title)
		res.CurrentTotal += n
		res.Details = append(res.Details, TitleDetail{Title: title, Count: n, Satisfied: n >= 1})
		if n < 1 {
			res.Missing = append(res.Missing, title)
		}
	}
	totalOK := res.CurrentTotal >= q.TotalCount

	if !q.RequireAllTypes {
		res.Missing = nil
		res.Satisfied = totalOK
		if !totalOK {
			res.Reasons = append(res.Reasons, InsufficientTotalReason(res.CurrentTotal, q.TotalCount))
		}
		return res
	}

	if len(res.Missing) > 0 {
		res.Reasons = append(res.Reasons, MissingTypesReason(res.Missing))
	}
	if !totalOK {
		res.Reasons = append(res.Reasons, InsufficientTotalReason(res.CurrentTotal, q.TotalCount))
	}
	res.Satisfied = len(res.Missing) == 0 && totalOK
	return res
}

// CheckAll checks every qualification in order.
func CheckAll(quals []models.Qualification, counts Counts) []Result {
	results := make([]Result, 0, len(quals))
	for _, q := range quals {
		results = append(results, Check(q, counts))
	}
	return results
}

// AllSatisfied reports whether counts satisfy every qualification.
func AllSatisfied(quals []models.Qualification, counts Counts) bool {
	for _, q := range quals {
		if !Check(q, counts).Satisfied {
			return false
		}
	}
	return true
}
