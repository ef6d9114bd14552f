package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/JonMunkholm/tableform/internal/tableform"
)

// StoredRow is one element of a stored output field value.
type StoredRow struct {
	ID   string
	Data tableform.RowData
}

// DecodeStored turns a stored JSON array back into loadable rows. Row IDs
// are the element positions. Keys the schema does not declare are dropped.
// Values may be JSON strings, booleans, numbers or null; boolean columns
// accept both true and "true".
func DecodeStored(schema *tableform.Schema, value string) ([]StoredRow, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(value)))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode stored rows: %w", err)
	}

	rows := make([]StoredRow, 0, len(raw))
	for i, obj := range raw {
		data := make(tableform.RowData)
		for key, v := range obj {
			col, ok := schema.Column(key)
			if !ok || col.Kind.IsControl() {
				continue
			}
			data[key] = decodeCell(col.Kind, v)
		}
		rows = append(rows, StoredRow{ID: strconv.Itoa(i), Data: data})
	}
	return rows, nil
}

func decodeCell(kind tableform.Kind, v any) tableform.Value {
	var text string
	switch x := v.(type) {
	case nil:
	case string:
		text = x
	case bool:
		if kind == tableform.KindBoolean {
			return tableform.BoolValue(x)
		}
		text = strconv.FormatBool(x)
	case json.Number:
		text = x.String()
	default:
		b, _ := json.Marshal(x)
		text = string(b)
	}

	if kind == tableform.KindBoolean {
		val := tableform.Value{Text: text}
		if b, ok := tableform.ParseBool(text); ok {
			val.Bool = tableform.BoolOf(b)
		}
		return val
	}
	return tableform.TextValue(text)
}

// loadTable builds a table of Viewing rows from a stored value. A value that
// does not decode yields an empty table and the decode error.
func loadTable(schema *tableform.Schema, value string, opts ...tableform.TableOption) (*tableform.Table, error) {
	table := tableform.NewTable(schema, opts...)
	rows, err := DecodeStored(schema, value)
	if err != nil {
		return table, err
	}
	for _, r := range rows {
		if _, err := table.Load(r.ID, r.Data); err != nil {
			return tableform.NewTable(schema, opts...), err
		}
	}
	return table, nil
}
