package model

import (
	"errors"
	"fmt"
)

// ErrNestingViolation is matched by every NestingViolationError.
var ErrNestingViolation = errors.New("nesting violation")

// NestingViolationError reports two spans that overlap without one containing
// the other, where proper nesting is required. It indicates corrupt input and
// is never recovered from.
type NestingViolationError struct {
	Reason string
	Parent Span
	Child  Span
}

func (e *NestingViolationError) Error() string {
	return fmt.Sprintf("nesting violation: %s: parent %d [%s, %s] child %d [%s, %s]",
		e.Reason,
		e.Parent.ID, e.Parent.Start, e.Parent.End,
		e.Child.ID, e.Child.Start, e.Child.End,
	)
}

func (e *NestingViolationError) Is(target error) bool {
	return target == ErrNestingViolation
}
