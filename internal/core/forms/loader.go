package forms

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/tableform/internal/core"
	"gopkg.in/yaml.v3"
)

// File is the layout of a form definitions file:
//
//	forms:
//	  - key: mirrors
//	    label: Mirrors
//	    storage_key: mirror_list
//	    columns:
//	      - label: Host
//	        class: jstableform-key-host jstableform-type-string
//	      - class: jstableform-key-_cmdedit
type File struct {
	Forms []FormSpec `yaml:"forms"`
}

// FormSpec is one form in a definitions file.
type FormSpec struct {
	core.FormInfo `yaml:",inline"`
	Columns       []core.ColumnDef `yaml:"columns"`
}

// Parse decodes a definitions file. Unknown fields are rejected.
func Parse(r io.Reader) ([]core.FormDefinition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse form definitions: %w", err)
	}

	defs := make([]core.FormDefinition, len(f.Forms))
	for i, spec := range f.Forms {
		defs[i] = core.FormDefinition{Info: spec.FormInfo, Columns: spec.Columns}
	}
	return defs, nil
}

// LoadFile registers every form of the definitions file at path. It stops
// at the first form that fails to register and returns the number of forms
// registered before it.
func LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read form definitions: %w", err)
	}
	defs, err := Parse(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	for i, def := range defs {
		if err := core.TryRegister(def); err != nil {
			return i, fmt.Errorf("%s: form %d: %w", path, i+1, err)
		}
	}
	return len(defs), nil
}
