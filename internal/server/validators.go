// file: internal/server/validators.go
// version: 2.0.0
// guid: 9b0c1d2e-3f4a-5b6c-7d8e-9f0a1b2c3d4e

package server

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Request limits
const (
	MaxSelection   = 200
	MaxNameLength  = 200
	MaxTitleCounts = 500
	MaxTitleCount  = 100000
)

// ValidationError represents a validation error with code
type ValidationError struct {
	Field   string
	Message string
	Code    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateSelection bounds the number and length of selected names. An empty
// selection is valid here; the service reports it as a missing selection.
func ValidateSelection(names []string) error {
	if len(names) > MaxSelection {
		return ValidationError{
			Field:   "qualifications",
			Message: fmt.Sprintf("at most %d qualifications can be selected", MaxSelection),
			Code:    "SELECTION_TOO_LARGE",
		}
	}
	for _, n := range names {
		if utf8.RuneCountInString(n) > MaxNameLength {
			return ValidationError{
				Field:   "qualifications",
				Message: fmt.Sprintf("name must not exceed %d characters", MaxNameLength),
				Code:    "NAME_TOO_LONG",
			}
		}
	}
	return nil
}

// ValidateTitleCounts requires every headcount to be within [0, MaxTitleCount].
// Titles are checked in sorted order so the reported one is deterministic.
func ValidateTitleCounts(counts map[string]int) error {
	if len(counts) > MaxTitleCounts {
		return ValidationError{
			Field:   "title_counts",
			Message: fmt.Sprintf("at most %d titles are accepted", MaxTitleCounts),
			Code:    "TOO_MANY_TITLES",
		}
	}
	titles := make([]string, 0, len(counts))
	for t := range counts {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	for _, t := range titles {
		if err := ValidateInteger(counts[t], "title_counts["+t+"]", 0, MaxTitleCount); err != nil {
			return err
		}
	}
	return nil
}

// ValidateInteger validates that an integer is within a range
func ValidateInteger(value int, fieldName string, minValue int, maxValue int) error {
	if value < minValue {
		return ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("must be at least %d", minValue),
			Code:    "VALUE_TOO_SMALL",
		}
	}
	if value > maxValue {
		return ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("must not exceed %d", maxValue),
			Code:    "VALUE_TOO_LARGE",
		}
	}
	return nil
}
