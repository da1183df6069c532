// pkg/model/errors.go
package model

import (
	"errors"
	"fmt"
)

// SchemaError indicates that a referenced column does not exist in the
// frame, or exists with the wrong kind. Cleaning operations surface it
// before mutating anything.
type SchemaError struct {
	Column string
	Reason string
}

// NewMissingColumnError creates a SchemaError for an absent column
func NewMissingColumnError(column string) *SchemaError {
	return &SchemaError{Column: column, Reason: "column not present in frame"}
}

// NewColumnKindError creates a SchemaError for a column of the wrong kind
func NewColumnKindError(column string, got SeriesKind) *SchemaError {
	return &SchemaError{
		Column: column,
		Reason: fmt.Sprintf("column is %s, expected numeric", got),
	}
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error on column %q: %s", e.Column, e.Reason)
}

// DataError indicates that a required statistic could not be computed
// because the column has zero non-missing values. The column is left
// untouched by the step that hit it; sibling columns still complete.
type DataError struct {
	Column string
	Stat   string
	Err    error
}

// NewDataError creates a DataError for a failed statistic on a column
func NewDataError(column, stat string, err error) *DataError {
	return &DataError{Column: column, Stat: stat, Err: err}
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error on column %q: cannot compute %s: %v", e.Column, e.Stat, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As
func (e *DataError) Unwrap() error {
	return e.Err
}

// IsSchemaError reports whether any error in the chain is a SchemaError
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsDataError reports whether any error in the chain is a DataError
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}
