package tableform

import "fmt"

// State is the lifecycle state of a row.
type State int

const (
	StateViewing State = iota
	StateEditing
	StateNew
)

func (s State) String() string {
	switch s {
	case StateViewing:
		return "viewing"
	case StateEditing:
		return "editing"
	case StateNew:
		return "new"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// BoolState is the state of a boolean toggle. Unset is only reachable by
// loading data; toggling moves between true and false.
type BoolState int8

const (
	BoolUnset BoolState = iota
	BoolFalse
	BoolTrue
)

// BoolOf converts a Go bool.
func BoolOf(b bool) BoolState {
	if b {
		return BoolTrue
	}
	return BoolFalse
}

// Toggle flips true and false. Unset stays unset.
func (b BoolState) Toggle() BoolState {
	switch b {
	case BoolTrue:
		return BoolFalse
	case BoolFalse:
		return BoolTrue
	default:
		return b
	}
}

func (b BoolState) String() string {
	switch b {
	case BoolTrue:
		return "true"
	case BoolFalse:
		return "false"
	default:
		return "unset"
	}
}

func (b BoolState) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// Value is the content of one cell. Text is used by text kinds; boolean
// columns use Bool and keep any persisted cell text in Text.
type Value struct {
	Text string
	Bool BoolState
}

// TextValue builds a text cell value.
func TextValue(s string) Value { return Value{Text: s} }

// BoolValue builds an explicit boolean cell value.
func BoolValue(b bool) Value { return Value{Bool: BoolOf(b)} }

// RowData is the initial content of a row keyed by column key.
type RowData map[string]Value

// Row is one record of the table.
type Row struct {
	Handle string
	ID     string

	state    State
	values   map[string]Value
	snapshot map[string]Value
	invalid  map[string]bool
}

// State returns the row's lifecycle state.
func (r *Row) State() State { return r.state }

// Editable reports whether the row shows input widgets.
func (r *Row) Editable() bool { return r.state == StateEditing || r.state == StateNew }

// Value returns the current value of a column.
func (r *Row) Value(key string) Value { return r.values[key] }

// Values returns a copy of all current values.
func (r *Row) Values() map[string]Value { return copyValues(r.values) }

// Invalid reports whether the column carries the invalid marker.
func (r *Row) Invalid(key string) bool { return r.invalid[key] }

// HasSnapshot reports whether pre-edit values are held for cancel.
func (r *Row) HasSnapshot() bool { return r.snapshot != nil }

func (r *Row) markInvalid(key string, invalid bool) {
	if invalid {
		if r.invalid == nil {
			r.invalid = make(map[string]bool)
		}
		r.invalid[key] = true
		return
	}
	delete(r.invalid, key)
}

func copyValues(src map[string]Value) map[string]Value {
	if src == nil {
		return nil
	}
	dst := make(map[string]Value, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
