// file: internal/staffing/errors.go
// version: 1.0.0
// guid: 5b0e7c2d-41a9-4f83-9d6e-0a8c3f1b7e24

package staffing

import (
	"errors"
	"fmt"
)

// ErrNoSelection signals that no valid qualification was selected. It is a
// user-facing condition, not a failure of the engine.
var ErrNoSelection = errors.New("no valid qualification selected")

// User-facing messages for an unusable selection.
const (
	MsgEmptySelection  = "请至少选择一个资质"
	MsgNothingResolved = "未匹配到任何有效资质"
)

// SelectionError explains why a selection cannot be computed.
type SelectionError struct {
	Message string
	Unknown []string // names that matched no catalog entry
}

func (e *SelectionError) Error() string { return e.Message }

// Unwrap lets errors.Is match ErrNoSelection.
func (e *SelectionError) Unwrap() error { return ErrNoSelection }

// ErrInvariantViolation signals that a computed plan fails a qualification's
// staffing rule. It always indicates a defect or a malformed rule.
var ErrInvariantViolation = errors.New("staffing invariant violated")

// ErrIterationLimit signals that the greedy fill did not converge within its
// allocation budget.
var ErrIterationLimit = errors.New("allocation iteration limit exceeded")

// InvariantError describes which rule a plan failed and how.
type InvariantError struct {
	Qualification string
	Title         string // set when a required title has no staff
	Current       int
	Required      int
}

func (e *InvariantError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("%v: qualification %q title %q has %d staff, needs at least 1",
			ErrInvariantViolation, e.Qualification, e.Title, e.Current)
	}
	return fmt.Sprintf("%v: qualification %q has %d staff, needs %d",
		ErrInvariantViolation, e.Qualification, e.Current, e.Required)
}

// Unwrap lets errors.Is match ErrInvariantViolation.
func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// IsInternal reports whether err comes from a broken plan rather than from
// caller input.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInvariantViolation) || errors.Is(err, ErrIterationLimit)
}
