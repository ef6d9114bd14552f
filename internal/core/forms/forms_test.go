package forms

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/tableform/internal/core"
	"github.com/JonMunkholm/tableform/internal/tableform"
	"github.com/google/go-cmp/cmp"
)

// resetRegistry leaves only the built-in forms registered.
func resetRegistry(t *testing.T) {
	t.Helper()
	reset := func() {
		core.Clear()
		registerDistriVersions()
	}
	reset()
	t.Cleanup(reset)
}

func TestDistriVersionsForm(t *testing.T) {
	resetRegistry(t)

	def, ok := core.Get(core.DistriVersionsKey)
	if !ok {
		t.Fatal("distri_versions is not registered")
	}
	schema := def.Schema()

	want := []string{"number", "name", "lts", "active", "current", "dev", tableform.EditKey, tableform.DeleteKey}
	if diff := cmp.Diff(want, schema.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	number, _ := schema.Column("number")
	for value, valid := range map[string]bool{"8.04": true, "10.10": true, "8.4": false, "100.04": false} {
		if got := number.Validate(value); got != valid {
			t.Errorf("number.Validate(%q) = %v, want %v", value, got, valid)
		}
	}
	name, _ := schema.Column("name")
	if !name.Validate("Hardy Heron") || name.Validate("hardy heron") {
		t.Error("name validator does not enforce two capitalized words")
	}
	if def.Info.Default != "[]" {
		t.Errorf("Default = %q, want []", def.Info.Default)
	}
}

const mirrorsYAML = `
forms:
  - key: mirrors
    label: Mirrors
    storage_key: mirror_list
    columns:
      - label: Host
        class: jstableform-key-host jstableform-type-string
      - label: Bandwidth
        class: jstableform-key-bandwidth jstableform-type-float
      - label: Notes
        class: jstableform-key-notes jstableform-type-text
      - class: jstableform-key-_cmdedit
  - key: aliases
    columns:
      - label: Alias
        class: jstableform-key-alias jstableform-type-string
      - class: jstableform-key-_cmdedit
      - class: jstableform-key-_cmddel
`

func TestParse(t *testing.T) {
	defs, err := Parse(strings.NewReader(mirrorsYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("Parse() returned %d forms, want 2", len(defs))
	}

	want := core.FormInfo{Key: "mirrors", Label: "Mirrors", StorageKey: "mirror_list"}
	if diff := cmp.Diff(want, defs[0].Info); diff != "" {
		t.Errorf("Info mismatch (-want +got):\n%s", diff)
	}
	if got := defs[0].Columns[1]; got.Label != "Bandwidth" || got.Class != "jstableform-key-bandwidth jstableform-type-float" {
		t.Errorf("Columns[1] = %+v", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown field", "forms:\n  - key: a\n    colums: []\n"},
		{"wrong shape", "forms: nope\n"},
		{"not yaml", "forms: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input)); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}

	defs, err := Parse(strings.NewReader(""))
	if err != nil || len(defs) != 0 {
		t.Errorf("Parse(empty) = %v, %v; want no forms", defs, err)
	}
}

func TestLoadFile(t *testing.T) {
	resetRegistry(t)

	path := filepath.Join(t.TempDir(), "forms.yaml")
	if err := os.WriteFile(path, []byte(mirrorsYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	n, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if n != 2 {
		t.Errorf("LoadFile() = %d, want 2", n)
	}
	if core.FormCount() != 3 {
		t.Errorf("FormCount() = %d, want 3", core.FormCount())
	}

	aliases, ok := core.Get("aliases")
	if !ok {
		t.Fatal("aliases not registered")
	}
	if aliases.Info.StorageKey != "aliases" || aliases.Info.Label != "aliases" {
		t.Errorf("defaults not applied: %+v", aliases.Info)
	}
	mirrors, _ := core.Get("mirrors")
	if col, _ := mirrors.Schema().Column("bandwidth"); col.ValidatorName() != "float" {
		t.Errorf("bandwidth validator = %q, want float", col.ValidatorName())
	}
}

func TestLoadFile_Errors(t *testing.T) {
	resetRegistry(t)
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile(missing) error = nil")
	}

	path := filepath.Join(dir, "bad.yaml")
	bad := `
forms:
  - key: ok
    columns:
      - class: jstableform-key-a jstableform-type-string
      - class: jstableform-key-_cmdedit
  - key: distri_versions
    columns:
      - class: jstableform-key-_cmdedit
`
	if err := os.WriteFile(path, []byte(bad), 0o600); err != nil {
		t.Fatal(err)
	}
	n, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "form 2") {
		t.Errorf("LoadFile() error = %v, want duplicate in form 2", err)
	}
	if n != 1 {
		t.Errorf("LoadFile() = %d, want 1", n)
	}
}
