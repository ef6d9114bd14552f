package tableform

import (
	"fmt"

	"github.com/google/uuid"
)

// Table owns the rows of one editable table in display order.
type Table struct {
	schema    *Schema
	rows      []*Row
	byHandle  map[string]*Row
	newHandle func() string
}

// TableOption configures NewTable.
type TableOption func(*Table)

// WithHandleFunc replaces the row handle generator. Handles must be unique.
func WithHandleFunc(fn func() string) TableOption {
	return func(t *Table) { t.newHandle = fn }
}

// NewTable creates an empty table for schema.
func NewTable(schema *Schema, opts ...TableOption) *Table {
	t := &Table{
		schema:    schema,
		byHandle:  make(map[string]*Row),
		newHandle: uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Schema returns the table's schema.
func (t *Table) Schema() *Schema { return t.schema }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the rows in display order.
func (t *Table) Rows() []*Row {
	out := make([]*Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Row looks up a row by handle.
func (t *Table) Row(handle string) (*Row, bool) {
	r, ok := t.byHandle[handle]
	return r, ok
}

// Load appends an existing row in the Viewing state. Columns missing from
// data start empty; boolean columns may be loaded unset.
func (t *Table) Load(id string, data RowData) (*Row, error) {
	if id == "" || id == NewRowID {
		return nil, fmt.Errorf("load row: invalid row id %q", id)
	}
	for _, r := range t.rows {
		if r.ID == id {
			return nil, fmt.Errorf("load row: duplicate row id %q", id)
		}
	}
	for key := range data {
		col, ok := t.schema.Column(key)
		if !ok || col.Kind.IsControl() {
			return nil, fmt.Errorf("load row %q: %w: %s", id, ErrUnknownColumn, key)
		}
	}

	values := make(map[string]Value, t.schema.Len())
	for _, col := range t.schema.DataColumns() {
		values[col.Key] = data[col.Key]
	}
	return t.appendRow(id, StateViewing, values), nil
}

// Add appends a new, always-editable row with the NewRowID sentinel.
// Text fields start empty and booleans start false.
func (t *Table) Add() *Row {
	values := make(map[string]Value, t.schema.Len())
	for _, col := range t.schema.DataColumns() {
		v := Value{}
		if col.Kind == KindBoolean {
			v.Bool = BoolFalse
		}
		values[col.Key] = v
	}
	return t.appendRow(NewRowID, StateNew, values)
}

func (t *Table) appendRow(id string, state State, values map[string]Value) *Row {
	r := &Row{
		Handle: t.newHandle(),
		ID:     id,
		state:  state,
		values: values,
	}
	t.rows = append(t.rows, r)
	t.byHandle[r.Handle] = r
	return r
}

// Edit moves a Viewing row to Editing and snapshots its values.
// Rows that already show inputs are left alone.
func (t *Table) Edit(handle string) error {
	r, ok := t.byHandle[handle]
	if !ok {
		return ErrRowNotFound
	}
	if r.state != StateViewing {
		return nil
	}
	r.snapshot = copyValues(r.values)
	r.state = StateEditing
	return nil
}

// Cancel discards the input of an Editing row and restores its snapshot.
func (t *Table) Cancel(handle string) error {
	r, ok := t.byHandle[handle]
	if !ok {
		return ErrRowNotFound
	}
	switch r.state {
	case StateViewing:
		return nil
	case StateNew:
		return ErrNotRevertable
	}
	r.values = r.snapshot
	r.snapshot = nil
	r.invalid = nil
	r.state = StateViewing
	return nil
}

// Delete removes a row in any state. It cannot be undone. Tables whose
// schema has no delete column return ErrWrongKind.
func (t *Table) Delete(handle string) error {
	r, ok := t.byHandle[handle]
	if !ok {
		return ErrRowNotFound
	}
	if !t.schema.HasDelete() {
		return ErrWrongKind
	}
	for i, cur := range t.rows {
		if cur == r {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			break
		}
	}
	delete(t.byHandle, handle)
	r.snapshot = nil
	return nil
}

// SetValue stores user input for a text-like column of an editable row.
func (t *Table) SetValue(handle, key, text string) error {
	r, col, err := t.editableCell(handle, key)
	if err != nil {
		return err
	}
	if col.Kind.Widget() != WidgetTextInput && col.Kind.Widget() != WidgetTextArea {
		return fmt.Errorf("set %q: %w", key, ErrWrongKind)
	}
	r.values[key] = Value{Text: text}
	return nil
}

// Toggle flips a boolean column of an editable row.
func (t *Table) Toggle(handle, key string) error {
	r, col, err := t.editableCell(handle, key)
	if err != nil {
		return err
	}
	if col.Kind != KindBoolean {
		return fmt.Errorf("toggle %q: %w", key, ErrWrongKind)
	}
	v := r.values[key]
	v.Bool = v.Bool.Toggle()
	r.values[key] = v
	return nil
}

// Blur validates the current value of a column as an input losing focus
// would, setting or clearing the row's invalid marker for it.
func (t *Table) Blur(handle, key string) (bool, error) {
	r, col, err := t.editableCell(handle, key)
	if err != nil {
		return false, err
	}
	valid := col.Validate(col.extract(r.values[key]))
	r.markInvalid(key, !valid)
	return valid, nil
}

func (t *Table) editableCell(handle, key string) (*Row, Column, error) {
	r, ok := t.byHandle[handle]
	if !ok {
		return nil, Column{}, ErrRowNotFound
	}
	col, ok := t.schema.Column(key)
	if !ok || col.Kind.IsControl() {
		return nil, Column{}, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	if !r.Editable() {
		return nil, Column{}, ErrNotEditing
	}
	return r, col, nil
}
