package core

import (
	"time"

	"github.com/JonMunkholm/tableform/internal/tableform"
)

// SessionView is a read-only snapshot of an editing session, ready to render.
type SessionView struct {
	ID        string                `json:"id"`
	Form      FormInfo              `json:"form"`
	Columns   []ColumnView          `json:"columns"`
	Rows      []RowView             `json:"rows"`
	Output    tableform.OutputField `json:"output"`
	Failed    []FieldFailure        `json:"failed,omitempty"`
	Saved     bool                  `json:"saved"`
	ExpiresAt time.Time             `json:"expiresAt"`
}

// ColumnView describes one header cell.
type ColumnView struct {
	Key       string         `json:"key"`
	Label     string         `json:"label"`
	Class     string         `json:"class"`
	Kind      tableform.Kind `json:"kind"`
	Validator string         `json:"validator,omitempty"`
}

// RowView describes one row and its cells in column order.
type RowView struct {
	Handle string          `json:"handle"`
	ID     string          `json:"id"`
	State  tableform.State `json:"state"`
	Cells  []CellView      `json:"cells"`
}

// Editable reports whether the row shows inputs.
func (r RowView) Editable() bool {
	return r.State == tableform.StateEditing || r.State == tableform.StateNew
}

// CellView describes one cell. Control cells carry no value.
type CellView struct {
	Key     string              `json:"key"`
	Kind    tableform.Kind      `json:"kind"`
	Text    string              `json:"text,omitempty"`
	Bool    tableform.BoolState `json:"bool,omitempty"`
	Invalid bool                `json:"invalid,omitempty"`
}

// Widget returns the editor element of the cell.
func (c CellView) Widget() tableform.Widget { return c.Kind.Widget() }

// FieldFailure is a field rejected by the last submit.
type FieldFailure struct {
	Row    int    `json:"row"`
	RowID  string `json:"rowId"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

func buildView(sess *session) SessionView {
	schema := sess.form.Schema()
	cols := schema.Columns()

	view := SessionView{
		ID:        sess.id,
		Form:      sess.form.Info,
		Columns:   make([]ColumnView, len(cols)),
		Rows:      make([]RowView, 0, sess.table.Len()),
		Output:    sess.output,
		Failed:    sess.failed,
		Saved:     sess.saved,
		ExpiresAt: sess.expiresAt(),
	}
	for i, c := range cols {
		view.Columns[i] = ColumnView{
			Key:       c.Key,
			Label:     sess.form.Columns[i].Label,
			Class:     sess.form.Columns[i].Class,
			Kind:      c.Kind,
			Validator: c.ValidatorName(),
		}
	}

	for _, r := range sess.table.Rows() {
		rv := RowView{
			Handle: r.Handle,
			ID:     r.ID,
			State:  r.State(),
			Cells:  make([]CellView, len(cols)),
		}
		for i, c := range cols {
			cell := CellView{Key: c.Key, Kind: c.Kind}
			if !c.Kind.IsControl() {
				v := r.Value(c.Key)
				cell.Text = v.Text
				cell.Bool = v.Bool
				cell.Invalid = r.Invalid(c.Key)
			}
			rv.Cells[i] = cell
		}
		view.Rows = append(view.Rows, rv)
	}
	return view
}
