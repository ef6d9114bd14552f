package core

import (
	"strings"

	"github.com/JonMunkholm/tableform/internal/tableform"
)

// DefaultStoredValue is the output field value of a form nothing was saved for.
const DefaultStoredValue = "[]"

// FormInfo contains display and storage information about a form.
type FormInfo struct {
	Key         string `json:"key" yaml:"key"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description"`

	// StorageKey names the output field and the stored value.
	StorageKey string `json:"storageKey" yaml:"storage_key"`

	// Default is loaded when nothing is stored yet.
	Default string `json:"default,omitempty" yaml:"default"`
}

// ColumnDef is one header cell of a form. Class holds the cell's class
// tokens, e.g. "jstableform-key-number jstableform-type-string".
type ColumnDef struct {
	Label string `json:"label" yaml:"label"`
	Class string `json:"class" yaml:"class"`
}

// FormDefinition contains everything needed to serve one editable table.
type FormDefinition struct {
	Info    FormInfo
	Columns []ColumnDef

	schema *tableform.Schema
}

// Schema returns the schema compiled at registration.
func (d FormDefinition) Schema() *tableform.Schema { return d.schema }

// HeaderCells returns the class token lists of the header in column order.
func (d FormDefinition) HeaderCells() []tableform.HeaderCell {
	cells := make([]tableform.HeaderCell, len(d.Columns))
	for i, c := range d.Columns {
		cells[i] = tableform.ParseClassList(c.Class)
	}
	return cells
}

// compile reads the schema from the header and fills defaults.
func (d *FormDefinition) compile() error {
	if strings.TrimSpace(d.Info.Key) == "" {
		return errInvalidForm("form key is required")
	}
	if d.Info.StorageKey == "" {
		d.Info.StorageKey = d.Info.Key
	}
	if d.Info.Label == "" {
		d.Info.Label = d.Info.Key
	}
	if d.Info.Default == "" {
		d.Info.Default = DefaultStoredValue
	}
	schema, err := tableform.ReadSchema(d.HeaderCells(), tableform.WithClassPrefix(tableform.DefaultClassPrefix))
	if err != nil {
		return err
	}
	d.schema = schema
	return nil
}
