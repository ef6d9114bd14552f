package tableform

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func seqHandles() TableOption {
	n := 0
	return WithHandleFunc(func() string {
		n++
		return fmt.Sprintf("h%d", n)
	})
}

func newDistroTable(t *testing.T) *Table {
	t.Helper()
	tbl := NewTable(mustSchema(t, distroHeader(), WithClassPrefix(DefaultClassPrefix)), seqHandles())
	if _, err := tbl.Load("0", RowData{
		"number": TextValue("8.04"),
		"name":   TextValue("Hardy Heron"),
		"lts":    BoolValue(true),
		"active": BoolValue(false),
	}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return tbl
}

func TestTable_LoadStartsViewing(t *testing.T) {
	tbl := newDistroTable(t)
	r, ok := tbl.Row("h1")
	if !ok {
		t.Fatal("Row(h1) not found")
	}
	if r.State() != StateViewing {
		t.Errorf("State() = %v, want viewing", r.State())
	}
	if r.Editable() {
		t.Error("Editable() = true for a viewing row")
	}
	if r.ID != "0" {
		t.Errorf("ID = %q, want 0", r.ID)
	}
}

func TestTable_LoadRejectsBadInput(t *testing.T) {
	tbl := newDistroTable(t)

	tests := []struct {
		name string
		id   string
		data RowData
	}{
		{"empty id", "", nil},
		{"new sentinel", NewRowID, nil},
		{"duplicate id", "0", nil},
		{"unknown column", "1", RowData{"codename": TextValue("x")}},
		{"control column", "2", RowData{EditKey: TextValue("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tbl.Load(tt.id, tt.data); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d after rejected loads, want 1", tbl.Len())
	}
}

func TestTable_AddAppendsNewRow(t *testing.T) {
	tbl := newDistroTable(t)
	r := tbl.Add()

	if r.ID != NewRowID {
		t.Errorf("ID = %q, want %q", r.ID, NewRowID)
	}
	if r.State() != StateNew {
		t.Errorf("State() = %v, want new", r.State())
	}
	if got := tbl.Rows()[tbl.Len()-1]; got != r {
		t.Error("added row is not last")
	}
	for _, key := range []string{"lts", "active"} {
		if got := r.Value(key).Bool; got != BoolFalse {
			t.Errorf("Value(%q).Bool = %v, want false", key, got)
		}
	}
	if got := r.Value("number").Text; got != "" {
		t.Errorf("Value(number) = %q, want empty", got)
	}
}

func TestTable_EditCancelRestoresSnapshot(t *testing.T) {
	tbl := newDistroTable(t)
	before := tbl.Rows()[0].Values()

	if err := tbl.Edit("h1"); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	r, _ := tbl.Row("h1")
	if r.State() != StateEditing || !r.HasSnapshot() {
		t.Fatalf("after Edit: state = %v, snapshot = %v", r.State(), r.HasSnapshot())
	}

	if err := tbl.SetValue("h1", "name", "Intrepid Ibex"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if err := tbl.SetValue("h1", "number", "bad"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if valid, err := tbl.Blur("h1", "number"); err != nil || valid {
		t.Fatalf("Blur() = (%v, %v), want (false, nil)", valid, err)
	}
	if err := tbl.Toggle("h1", "active"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	if err := tbl.Cancel("h1"); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if r.State() != StateViewing {
		t.Errorf("State() = %v, want viewing", r.State())
	}
	if r.HasSnapshot() {
		t.Error("snapshot kept after cancel")
	}
	if r.Invalid("number") {
		t.Error("invalid marker kept after cancel")
	}
	if diff := cmp.Diff(before, r.Values()); diff != "" {
		t.Errorf("values not restored (-before +after):\n%s", diff)
	}
}

func TestTable_EditCancelRestoresEveryKind(t *testing.T) {
	schema := mustSchema(t, []HeaderCell{
		{"key-label", "type-string"},
		{"key-count", "type-int"},
		{"key-ratio", "type-float"},
		{"key-notes", "type-text"},
		{"key-on", "type-boolean"},
		{"key-legacy", "type-boolean"},
		{"key-_cmdedit"},
	})
	tbl := NewTable(schema, seqHandles())
	r, err := tbl.Load("0", RowData{
		"label":  TextValue(" Hardy "),
		"count":  TextValue("12"),
		"ratio":  TextValue("0.5"),
		"notes":  TextValue("\n  two\nlines \n"),
		"on":     BoolValue(true),
		"legacy": TextValue("yes"),
	})
	if err != nil {
		t.Fatal(err)
	}
	before := r.Values()

	if err := tbl.Edit(r.Handle); err != nil {
		t.Fatal(err)
	}
	edits := map[string]string{"label": "Intrepid", "count": "12a", "ratio": "x", "notes": "changed"}
	for key, text := range edits {
		if err := tbl.SetValue(r.Handle, key, text); err != nil {
			t.Fatalf("SetValue(%s) error = %v", key, err)
		}
		if _, err := tbl.Blur(r.Handle, key); err != nil {
			t.Fatalf("Blur(%s) error = %v", key, err)
		}
	}
	for _, key := range []string{"on", "legacy"} {
		if err := tbl.Toggle(r.Handle, key); err != nil {
			t.Fatalf("Toggle(%s) error = %v", key, err)
		}
	}
	if !r.Invalid("count") || !r.Invalid("ratio") {
		t.Fatal("bad number input not marked invalid")
	}

	if err := tbl.Cancel(r.Handle); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if diff := cmp.Diff(before, r.Values()); diff != "" {
		t.Errorf("values not restored (-before +after):\n%s", diff)
	}
	if got := r.Value("legacy"); got.Bool != BoolUnset || got.Text != "yes" {
		t.Errorf("legacy = %+v, want unset with text yes", got)
	}
	for key := range edits {
		if r.Invalid(key) {
			t.Errorf("invalid marker kept for %s after cancel", key)
		}
	}
}

func TestTable_DeleteRequiresDeleteColumn(t *testing.T) {
	schema := mustSchema(t, []HeaderCell{
		{"key-label", "type-string"},
		{"key-_cmdedit"},
	})
	tbl := NewTable(schema, seqHandles())
	if _, err := tbl.Load("0", RowData{"label": TextValue("kept")}); err != nil {
		t.Fatal(err)
	}
	r := tbl.Add()

	for _, h := range []string{"h1", r.Handle} {
		if err := tbl.Delete(h); !errors.Is(err, ErrWrongKind) {
			t.Errorf("Delete(%s) error = %v, want ErrWrongKind", h, err)
		}
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
	if err := tbl.Delete("h99"); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("Delete(unknown) error = %v, want ErrRowNotFound", err)
	}
}

func TestTable_EditIsNoOpForEditableRows(t *testing.T) {
	tbl := newDistroTable(t)
	if err := tbl.Edit("h1"); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetValue("h1", "name", "Jaunty Jackalope"); err != nil {
		t.Fatal(err)
	}
	// A second edit must not overwrite the snapshot with the edited values.
	if err := tbl.Edit("h1"); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Cancel("h1"); err != nil {
		t.Fatal(err)
	}
	r, _ := tbl.Row("h1")
	if got := r.Value("name").Text; got != "Hardy Heron" {
		t.Errorf("name = %q after cancel, want Hardy Heron", got)
	}

	n := tbl.Add()
	if err := tbl.Edit(n.Handle); err != nil {
		t.Fatal(err)
	}
	if n.State() != StateNew {
		t.Errorf("Edit on new row changed state to %v", n.State())
	}
}

func TestTable_CancelNewRow(t *testing.T) {
	tbl := newDistroTable(t)
	r := tbl.Add()
	if err := tbl.Cancel(r.Handle); !errors.Is(err, ErrNotRevertable) {
		t.Errorf("Cancel(new) error = %v, want ErrNotRevertable", err)
	}
	if r.State() != StateNew || tbl.Len() != 2 {
		t.Errorf("new row changed: state = %v, len = %d", r.State(), tbl.Len())
	}
}

func TestTable_CancelViewingIsNoOp(t *testing.T) {
	tbl := newDistroTable(t)
	if err := tbl.Cancel("h1"); err != nil {
		t.Errorf("Cancel(viewing) error = %v, want nil", err)
	}
}

func TestTable_DeleteAnyState(t *testing.T) {
	tbl := newDistroTable(t)
	if _, err := tbl.Load("1", RowData{"number": TextValue("8.10")}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Edit("h2"); err != nil {
		t.Fatal(err)
	}
	n := tbl.Add()

	for _, h := range []string{"h2", n.Handle, "h1"} {
		if err := tbl.Delete(h); err != nil {
			t.Fatalf("Delete(%s) error = %v", h, err)
		}
		if _, ok := tbl.Row(h); ok {
			t.Errorf("Row(%s) still present after delete", h)
		}
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
}

func TestTable_DeletePreservesOrder(t *testing.T) {
	tbl := newDistroTable(t)
	for _, id := range []string{"1", "2"} {
		if _, err := tbl.Load(id, nil); err != nil {
			t.Fatal(err)
		}
	}
	if err := tbl.Delete("h2"); err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range tbl.Rows() {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"0", "2"}, ids); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_MissingRow(t *testing.T) {
	tbl := newDistroTable(t)
	if err := tbl.Delete("h1"); err != nil {
		t.Fatal(err)
	}

	ops := map[string]func() error{
		"edit":   func() error { return tbl.Edit("h1") },
		"cancel": func() error { return tbl.Cancel("h1") },
		"delete": func() error { return tbl.Delete("h1") },
		"set":    func() error { return tbl.SetValue("h1", "name", "x") },
		"toggle": func() error { return tbl.Toggle("h1", "lts") },
		"blur": func() error {
			_, err := tbl.Blur("h1", "name")
			return err
		},
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrRowNotFound) {
			t.Errorf("%s on deleted row: error = %v, want ErrRowNotFound", name, err)
		}
	}
}

func TestTable_InputRequiresEditableRow(t *testing.T) {
	tbl := newDistroTable(t)
	if err := tbl.SetValue("h1", "name", "x"); !errors.Is(err, ErrNotEditing) {
		t.Errorf("SetValue(viewing) error = %v, want ErrNotEditing", err)
	}
	if err := tbl.Toggle("h1", "lts"); !errors.Is(err, ErrNotEditing) {
		t.Errorf("Toggle(viewing) error = %v, want ErrNotEditing", err)
	}
}

func TestTable_WrongKindAndUnknownColumn(t *testing.T) {
	tbl := newDistroTable(t)
	r := tbl.Add()

	if err := tbl.SetValue(r.Handle, "lts", "true"); !errors.Is(err, ErrWrongKind) {
		t.Errorf("SetValue(boolean) error = %v, want ErrWrongKind", err)
	}
	if err := tbl.Toggle(r.Handle, "name"); !errors.Is(err, ErrWrongKind) {
		t.Errorf("Toggle(string) error = %v, want ErrWrongKind", err)
	}
	if err := tbl.SetValue(r.Handle, "codename", "x"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("SetValue(unknown) error = %v, want ErrUnknownColumn", err)
	}
	if err := tbl.Toggle(r.Handle, DeleteKey); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("Toggle(control) error = %v, want ErrUnknownColumn", err)
	}
}

func TestTable_ToggleTwiceRestores(t *testing.T) {
	tbl := newDistroTable(t)
	if err := tbl.Edit("h1"); err != nil {
		t.Fatal(err)
	}
	r, _ := tbl.Row("h1")
	before := r.Value("lts")
	for i := 0; i < 2; i++ {
		if err := tbl.Toggle("h1", "lts"); err != nil {
			t.Fatal(err)
		}
	}
	if got := r.Value("lts"); got != before {
		t.Errorf("lts = %+v after two toggles, want %+v", got, before)
	}
}

func TestTable_ToggleUnsetStaysUnset(t *testing.T) {
	tbl := newDistroTable(t)
	if _, err := tbl.Load("1", RowData{"lts": TextValue("")}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Edit("h2"); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Toggle("h2", "lts"); err != nil {
		t.Fatal(err)
	}
	r, _ := tbl.Row("h2")
	if got := r.Value("lts").Bool; got != BoolUnset {
		t.Errorf("lts = %v, want unset", got)
	}
}

func TestTable_BlurClearsMarker(t *testing.T) {
	tbl := newDistroTable(t)
	r := tbl.Add()

	if err := tbl.SetValue(r.Handle, "number", "8.4"); err != nil {
		t.Fatal(err)
	}
	if valid, _ := tbl.Blur(r.Handle, "number"); valid || !r.Invalid("number") {
		t.Fatalf("Blur(8.4): valid = %v, marker = %v", valid, r.Invalid("number"))
	}
	if err := tbl.SetValue(r.Handle, "number", "8.04"); err != nil {
		t.Fatal(err)
	}
	if valid, _ := tbl.Blur(r.Handle, "number"); !valid || r.Invalid("number") {
		t.Errorf("Blur(8.04): valid = %v, marker = %v", valid, r.Invalid("number"))
	}
}
