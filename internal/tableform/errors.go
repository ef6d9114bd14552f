package tableform

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRowNotFound is returned for handles that were never issued or whose
	// row has been deleted. The table is left unchanged.
	ErrRowNotFound = errors.New("row not found")

	// ErrNotEditing is returned when input arrives for a row that shows no inputs.
	ErrNotEditing = errors.New("row is not being edited")

	// ErrNotRevertable is returned when cancelling a newly added row.
	ErrNotRevertable = errors.New("new rows cannot be reverted")

	// ErrUnknownColumn is returned for keys the schema does not declare.
	ErrUnknownColumn = errors.New("column not found")

	// ErrWrongKind is returned when an operation does not apply to the column kind.
	ErrWrongKind = errors.New("operation does not apply to column kind")
)

// SchemaError reports a malformed header definition.
type SchemaError struct {
	Cell    int // header cell index, -1 when the problem spans the whole header
	Key     string
	Message string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema error")
	if e.Cell >= 0 {
		fmt.Fprintf(&b, ": header cell %d", e.Cell)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " (key %q)", e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// FieldError identifies one field that failed validation on submit.
type FieldError struct {
	Row    int    // position of the row in the table
	Handle string // row handle
	RowID  string // row identifier, NewRowID for uncommitted rows
	Column string
	Value  string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("row %d (%s): invalid value %q for column %q", e.Row, e.RowID, e.Value, e.Column)
}

// SubmitError rejects a whole submission. Fields lists every failing field in
// row order, then column order.
type SubmitError struct {
	Fields []FieldError
}

func (e *SubmitError) Error() string {
	if len(e.Fields) == 1 {
		return "validation failed: " + e.Fields[0].Error()
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("validation failed for %d fields: %s", len(e.Fields), strings.Join(msgs, "; "))
}
