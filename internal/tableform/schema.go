package tableform

import (
	"fmt"
	"strings"
)

const (
	// EditKey is the reserved key of the edit/cancel control column.
	EditKey = "_cmdedit"
	// DeleteKey is the reserved key of the delete control column.
	DeleteKey = "_cmddel"
	// NewRowID marks rows that have not been persisted yet.
	NewRowID = "_new"
	// DefaultClassPrefix namespaces the class tokens in HTML markup.
	DefaultClassPrefix = "jstableform-"
)

// HeaderCell is the class token list of one header cell.
type HeaderCell []string

// ParseClassList splits an HTML class attribute into a HeaderCell.
func ParseClassList(class string) HeaderCell {
	return HeaderCell(strings.Fields(class))
}

// Column is the definition of one column.
type Column struct {
	Key       string
	Kind      Kind
	Validator *Validator
}

// Validate reports whether value passes the column's validator.
func (c Column) Validate(value string) bool {
	return c.Validator.Valid(value)
}

// ValidatorName returns the validator name, or "" when the column has none.
func (c Column) ValidatorName() string {
	if c.Validator == nil {
		return ""
	}
	return c.Validator.Name
}

// Schema is the ordered column list read from a header.
// It is immutable once built.
type Schema struct {
	columns []Column
	index   map[string]int
	edit    int
	del     int
}

// Len returns the number of columns, control columns included.
func (s *Schema) Len() int { return len(s.columns) }

// Keys returns column keys in header order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.columns))
	for i, c := range s.columns {
		keys[i] = c.Key
	}
	return keys
}

// Columns returns all columns in header order.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// DataColumns returns the non-control columns in header order.
func (s *Schema) DataColumns() []Column {
	out := make([]Column, 0, len(s.columns))
	for _, c := range s.columns {
		if !c.Kind.IsControl() {
			out = append(out, c)
		}
	}
	return out
}

// Column looks up a column by key.
func (s *Schema) Column(key string) (Column, bool) {
	i, ok := s.index[key]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// HasDelete reports whether the schema declares a delete control column.
func (s *Schema) HasDelete() bool { return s.del >= 0 }

// SchemaOption configures ReadSchema.
type SchemaOption func(*schemaReader)

// WithClassPrefix only considers tokens carrying prefix and strips it before
// matching. Tokens without the prefix are ignored.
func WithClassPrefix(prefix string) SchemaOption {
	return func(r *schemaReader) { r.prefix = prefix }
}

type schemaReader struct {
	prefix string
}

// cellSpec is the tokenized content of one header cell.
type cellSpec struct {
	key       string
	hasKey    bool
	kind      string
	hasKind   bool
	validator string
}

// ReadSchema builds a schema from header cells given in left-to-right order.
// Reading is pure: the same cells always yield an equal schema.
func ReadSchema(cells []HeaderCell, opts ...SchemaOption) (*Schema, error) {
	r := &schemaReader{}
	for _, opt := range opts {
		opt(r)
	}

	specs := make([]cellSpec, len(cells))
	for i, cell := range cells {
		specs[i] = r.tokenize(cell)
	}

	s := &Schema{
		columns: make([]Column, 0, len(specs)),
		index:   make(map[string]int, len(specs)),
		edit:    -1,
		del:     -1,
	}
	for i, spec := range specs {
		col, err := buildColumn(i, spec)
		if err != nil {
			return nil, err
		}
		if _, dup := s.index[col.Key]; dup {
			return nil, &SchemaError{Cell: i, Key: col.Key, Message: "duplicate key"}
		}
		switch col.Kind {
		case KindEditControl:
			s.edit = i
		case KindDeleteControl:
			s.del = i
		}
		s.index[col.Key] = len(s.columns)
		s.columns = append(s.columns, col)
	}

	if s.edit < 0 {
		return nil, &SchemaError{Cell: -1, Key: EditKey, Message: "missing edit control column"}
	}
	return s, nil
}

func (r *schemaReader) tokenize(cell HeaderCell) cellSpec {
	var spec cellSpec
	for _, tok := range cell {
		if r.prefix != "" {
			if !strings.HasPrefix(tok, r.prefix) {
				continue
			}
			tok = tok[len(r.prefix):]
		}
		switch {
		case strings.HasPrefix(tok, "key-"):
			spec.key = tok[len("key-"):]
			spec.hasKey = true
		case strings.HasPrefix(tok, "type-"):
			spec.kind = tok[len("type-"):]
			spec.hasKind = true
		case strings.HasPrefix(tok, "validate-"):
			spec.validator = tok[len("validate-"):]
		}
	}
	return spec
}

func buildColumn(i int, spec cellSpec) (Column, error) {
	if !spec.hasKey || spec.key == "" {
		return Column{}, &SchemaError{Cell: i, Message: "missing key- token"}
	}

	switch spec.key {
	case EditKey:
		return Column{Key: spec.key, Kind: KindEditControl}, nil
	case DeleteKey:
		return Column{Key: spec.key, Kind: KindDeleteControl}, nil
	}
	if strings.HasPrefix(spec.key, "_") {
		return Column{}, &SchemaError{Cell: i, Key: spec.key, Message: "keys starting with _ are reserved"}
	}

	if !spec.hasKind {
		return Column{}, &SchemaError{Cell: i, Key: spec.key, Message: "missing type- token"}
	}
	kind, ok := parseDataKind(spec.kind)
	if !ok {
		return Column{}, &SchemaError{Cell: i, Key: spec.key, Message: fmt.Sprintf("unknown type %q", spec.kind)}
	}

	col := Column{Key: spec.key, Kind: kind, Validator: kind.defaultValidator()}
	if spec.validator != "" {
		v, ok := LookupValidator(spec.validator)
		if !ok {
			return Column{}, &SchemaError{Cell: i, Key: spec.key, Message: fmt.Sprintf("unknown validator %q", spec.validator)}
		}
		col.Validator = v
	}
	return col, nil
}
