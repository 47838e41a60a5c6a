package frame

import (
	"fmt"
	"strings"
)

// IOError indicates the input file is missing or unreadable.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("read %s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// ParseError indicates malformed tabular input. Line is 1-based; 0 means the
// location is unknown.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TypeConversionError indicates a cell that cannot become the requested type.
type TypeConversionError struct {
	Column string
	Label  int
	Value  Value
	Reason string
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("convert column %q row %d to int64: %s", e.Column, e.Label, e.Reason)
}

// ExtractionError indicates a cell with no four-digit year in it.
type ExtractionError struct {
	Column string
	Label  int
	Value  Value
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract year from column %q row %d: no 4-digit run in %q", e.Column, e.Label, e.Value.String())
}

// ColumnNotFoundError indicates a required column is absent.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("column %q not found", e.Column)
	}
	return fmt.Sprintf("column %q not found (available: %s)", e.Column, strings.Join(e.Available, ", "))
}
