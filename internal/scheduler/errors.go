package scheduler

import (
	"errors"
	"fmt"
)

// ErrInvalidPeriods is returned when periodsPerDay is not positive.
var ErrInvalidPeriods = errors.New("periods per day must be positive")

// MissingTeacherError reports a subject with no entry in the subject→teacher mapping.
type MissingTeacherError struct {
	ClassID string
	Subject string
}

func (e *MissingTeacherError) Error() string {
	return fmt.Sprintf("no teacher mapped for subject %q (class %q)", e.Subject, e.ClassID)
}

// DuplicateClassError reports a class id listed more than once.
type DuplicateClassError struct {
	ClassID string
}

func (e *DuplicateClassError) Error() string {
	return fmt.Sprintf("class %q listed more than once", e.ClassID)
}
