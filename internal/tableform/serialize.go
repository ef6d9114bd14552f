package tableform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field is one key/value pair of a serialized row.
type Field struct {
	Key   string
	Value string
}

// Record is a serialized row. Fields follow schema column order.
type Record []Field

// Get returns the value stored under key.
func (r Record) Get(key string) (string, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalJSON encodes the record as an object whose keys keep column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// OutputField is the single field the serialized table is written into.
type OutputField struct {
	Name  string
	Value string
}

// extract converts a cell value to its serialized string.
func (c Column) extract(v Value) string {
	switch c.Kind {
	case KindString, KindInt, KindFloat:
		return strings.TrimSpace(v.Text)
	case KindText:
		return v.Text
	case KindBoolean:
		switch v.Bool {
		case BoolTrue:
			return "true"
		case BoolFalse:
			return "false"
		}
		// No toggle state: fall back to the persisted cell text.
		if b, ok := ParseBool(v.Text); ok && b {
			return "true"
		}
		return "false"
	case KindEditControl, KindDeleteControl:
		return ""
	}
	panic(fmt.Sprintf("tableform: unknown kind %v", c.Kind))
}

// Serialize converts every row to a record, in row order. Editable rows are
// validated first; if any field fails, no records are returned, the failing
// fields are marked invalid and a *SubmitError lists them.
func (t *Table) Serialize() ([]Record, error) {
	cols := t.schema.DataColumns()
	records := make([]Record, 0, len(t.rows))
	var failed []FieldError

	for i, r := range t.rows {
		rec := make(Record, 0, len(cols))
		for _, col := range cols {
			val := col.extract(r.values[col.Key])
			if r.Editable() {
				ok := col.Validate(val)
				r.markInvalid(col.Key, !ok)
				if !ok {
					failed = append(failed, FieldError{
						Row:    i,
						Handle: r.Handle,
						RowID:  r.ID,
						Column: col.Key,
						Value:  val,
					})
				}
			}
			rec = append(rec, Field{Key: col.Key, Value: val})
		}
		records = append(records, rec)
	}

	if len(failed) > 0 {
		return nil, &SubmitError{Fields: failed}
	}
	return records, nil
}

// Export serializes the table into its JSON array form.
func (t *Table) Export() ([]byte, error) {
	records, err := t.Serialize()
	if err != nil {
		return nil, err
	}
	return json.Marshal(records)
}

// Submit writes the JSON array into out. On a validation failure out is not
// modified. Rows keep their states either way.
func (t *Table) Submit(out *OutputField) error {
	data, err := t.Export()
	if err != nil {
		return err
	}
	out.Value = string(data)
	return nil
}
