package model

import (
	"errors"
	"fmt"
	"strings"
)

// MaxReportedProblems how many problems a client is shown
const MaxReportedProblems = 10

// ValidationError input rejected as a whole; nothing was applied.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return e.Problems[0]
	}
	return fmt.Sprintf("%d validation problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Invalid single-problem validation error
func Invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Problems: []string{fmt.Sprintf(format, args...)}}
}

// Collect returns nil when problems is empty.
func Collect(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// AsValidation unwraps a *ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Head the first MaxReportedProblems problems
func (e *ValidationError) Head() []string {
	if len(e.Problems) <= MaxReportedProblems {
		return e.Problems
	}
	return e.Problems[:MaxReportedProblems]
}
