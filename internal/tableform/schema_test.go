package tableform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// distroHeader mirrors the distribution versions table of the portal.
func distroHeader() []HeaderCell {
	return []HeaderCell{
		ParseClassList("jstableform-key-number jstableform-type-string jstableform-validate-versionnumber"),
		ParseClassList("jstableform-key-name jstableform-type-string jstableform-validate-versionname"),
		ParseClassList("jstableform-key-lts jstableform-type-boolean"),
		ParseClassList("jstableform-key-active jstableform-type-boolean"),
		ParseClassList("jstableform-key-_cmdedit"),
		ParseClassList("jstableform-key-_cmddel"),
	}
}

func mustSchema(t *testing.T, cells []HeaderCell, opts ...SchemaOption) *Schema {
	t.Helper()
	s, err := ReadSchema(cells, opts...)
	if err != nil {
		t.Fatalf("ReadSchema() error = %v", err)
	}
	return s
}

type columnSummary struct {
	Key       string
	Kind      Kind
	Validator string
}

func summarize(s *Schema) []columnSummary {
	var out []columnSummary
	for _, c := range s.Columns() {
		out = append(out, columnSummary{Key: c.Key, Kind: c.Kind, Validator: c.ValidatorName()})
	}
	return out
}

func TestReadSchema_HeaderOrder(t *testing.T) {
	s := mustSchema(t, distroHeader(), WithClassPrefix(DefaultClassPrefix))

	want := []columnSummary{
		{Key: "number", Kind: KindString, Validator: "versionnumber"},
		{Key: "name", Kind: KindString, Validator: "versionname"},
		{Key: "lts", Kind: KindBoolean},
		{Key: "active", Kind: KindBoolean},
		{Key: EditKey, Kind: KindEditControl},
		{Key: DeleteKey, Kind: KindDeleteControl},
	}
	if diff := cmp.Diff(want, summarize(s)); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	wantKeys := []string{"number", "name", "lts", "active", EditKey, DeleteKey}
	if diff := cmp.Diff(wantKeys, s.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if !s.HasDelete() {
		t.Error("HasDelete() = false, want true")
	}
	if got := len(s.DataColumns()); got != 4 {
		t.Errorf("len(DataColumns()) = %d, want 4", got)
	}
}

func TestReadSchema_Idempotent(t *testing.T) {
	cells := distroHeader()
	a := mustSchema(t, cells, WithClassPrefix(DefaultClassPrefix))
	b := mustSchema(t, cells, WithClassPrefix(DefaultClassPrefix))

	if diff := cmp.Diff(summarize(a), summarize(b)); diff != "" {
		t.Errorf("schemas differ (-first +second):\n%s", diff)
	}
	for _, c := range a.Columns() {
		other, _ := b.Column(c.Key)
		if c.Validator != other.Validator {
			t.Errorf("column %q: validator %p != %p", c.Key, c.Validator, other.Validator)
		}
	}
}

func TestReadSchema_DefaultValidators(t *testing.T) {
	s := mustSchema(t, []HeaderCell{
		{"key-count", "type-int"},
		{"key-ratio", "type-float"},
		{"key-label", "type-string"},
		{"key-notes", "type-text"},
		{"key-_cmdedit"},
	})

	tests := []struct {
		key  string
		want string
	}{
		{"count", "int"},
		{"ratio", "float"},
		{"label", ""},
		{"notes", ""},
		{EditKey, ""},
	}
	for _, tt := range tests {
		col, ok := s.Column(tt.key)
		if !ok {
			t.Fatalf("Column(%q) not found", tt.key)
		}
		if got := col.ValidatorName(); got != tt.want {
			t.Errorf("Column(%q).ValidatorName() = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestReadSchema_ExplicitValidatorOverridesDefault(t *testing.T) {
	for _, cell := range []HeaderCell{
		{"key-v", "type-int", "validate-versionnumber"},
		{"key-v", "validate-versionnumber", "type-int"},
	} {
		s := mustSchema(t, []HeaderCell{cell, {"key-_cmdedit"}})
		col, _ := s.Column("v")
		if col.ValidatorName() != "versionnumber" {
			t.Errorf("%v: validator = %q, want versionnumber", cell, col.ValidatorName())
		}
	}
}

func TestReadSchema_ControlColumnsIgnoreTypeAndValidator(t *testing.T) {
	s := mustSchema(t, []HeaderCell{
		{"key-_cmdedit", "type-int", "validate-int"},
		{"key-_cmddel", "type-boolean"},
	})
	edit, _ := s.Column(EditKey)
	if edit.Kind != KindEditControl || edit.Validator != nil {
		t.Errorf("edit column = %+v, want EditControl without validator", edit)
	}
	del, _ := s.Column(DeleteKey)
	if del.Kind != KindDeleteControl || del.Validator != nil {
		t.Errorf("delete column = %+v, want DeleteControl without validator", del)
	}
}

func TestReadSchema_PrefixFiltersTokens(t *testing.T) {
	s := mustSchema(t, []HeaderCell{
		{"pointer", "key-ignored", "jstableform-key-title", "jstableform-type-string"},
		{"jstableform-key-_cmdedit"},
	}, WithClassPrefix(DefaultClassPrefix))

	if diff := cmp.Diff([]string{"title", EditKey}, s.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadSchema_Errors(t *testing.T) {
	tests := []struct {
		name     string
		cells    []HeaderCell
		wantCell int
	}{
		{
			name:     "missing key",
			cells:    []HeaderCell{{"type-string"}, {"key-_cmdedit"}},
			wantCell: 0,
		},
		{
			name:     "empty key",
			cells:    []HeaderCell{{"key-_cmdedit"}, {"key-", "type-string"}},
			wantCell: 1,
		},
		{
			name:     "duplicate key",
			cells:    []HeaderCell{{"key-a", "type-string"}, {"key-a", "type-int"}, {"key-_cmdedit"}},
			wantCell: 1,
		},
		{
			name:     "reserved underscore",
			cells:    []HeaderCell{{"key-_secret", "type-string"}, {"key-_cmdedit"}},
			wantCell: 0,
		},
		{
			name:     "missing type",
			cells:    []HeaderCell{{"key-_cmdedit"}, {"key-a"}},
			wantCell: 1,
		},
		{
			name:     "unknown type",
			cells:    []HeaderCell{{"key-a", "type-date"}, {"key-_cmdedit"}},
			wantCell: 0,
		},
		{
			name:     "unknown validator",
			cells:    []HeaderCell{{"key-a", "type-string", "validate-email"}, {"key-_cmdedit"}},
			wantCell: 0,
		},
		{
			name:     "two edit columns",
			cells:    []HeaderCell{{"key-_cmdedit"}, {"key-_cmdedit"}},
			wantCell: 1,
		},
		{
			name:     "two delete columns",
			cells:    []HeaderCell{{"key-_cmdedit"}, {"key-_cmddel"}, {"key-_cmddel"}},
			wantCell: 2,
		},
		{
			name:     "no edit column",
			cells:    []HeaderCell{{"key-a", "type-string"}, {"key-_cmddel"}},
			wantCell: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSchema(tt.cells)
			if err == nil {
				t.Fatal("ReadSchema() error = nil, want SchemaError")
			}
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not *SchemaError: %v", err, err)
			}
			if se.Cell != tt.wantCell {
				t.Errorf("SchemaError.Cell = %d, want %d (%v)", se.Cell, tt.wantCell, err)
			}
		})
	}
}

func TestKind_Widget(t *testing.T) {
	tests := []struct {
		kind Kind
		want Widget
	}{
		{KindString, WidgetTextInput},
		{KindInt, WidgetTextInput},
		{KindFloat, WidgetTextInput},
		{KindText, WidgetTextArea},
		{KindBoolean, WidgetToggle},
		{KindEditControl, WidgetEditLink},
		{KindDeleteControl, WidgetDeleteLink},
	}
	for _, tt := range tests {
		if got := tt.kind.Widget(); got != tt.want {
			t.Errorf("%v.Widget() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
