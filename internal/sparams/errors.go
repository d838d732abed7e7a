package sparams

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an invalid parameter identifier or display mode.
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// ParseError reports a measurement file that could not be read or parsed.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FileError ties a per-file failure to the file it happened on.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// FrequencyMismatch is a non-fatal warning: File's frequency grid differs from
// the grid of Reference.
type FrequencyMismatch struct {
	File      string
	Reference string
}

func (w FrequencyMismatch) String() string {
	return fmt.Sprintf("frequencies of %q differ from the reference file %q", w.File, w.Reference)
}

// Exclusion lists files dropped from the table because their sample count
// differs from the reference grid.
type Exclusion struct {
	Files []string
}

func (w Exclusion) String() string {
	return fmt.Sprintf("excluded for a frequency point count different from the reference: %s", strings.Join(w.Files, ", "))
}

// NoDataError means no file produced any data.
type NoDataError struct {
	Failures []error
}

func (e *NoDataError) Error() string {
	if len(e.Failures) == 0 {
		return "no data could be extracted from any file"
	}
	msgs := make([]string, len(e.Failures))
	for i, err := range e.Failures {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("no data could be extracted from any file: %s", strings.Join(msgs, "; "))
}

// EmptyResultError means data was extracted but every series was excluded.
type EmptyResultError struct {
	Excluded []string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no file matches the reference frequency point count (excluded: %s)", strings.Join(e.Excluded, ", "))
}
