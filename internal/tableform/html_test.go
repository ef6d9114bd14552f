package tableform

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const distroMarkup = `<!DOCTYPE html>
<html><body>
<table class="other"><tr><td>unrelated</td></tr></table>
<table id="distri_versions">
  <thead>
    <tr><td class="jstableform-_jswarning" colspan="4">JavaScript is required</td></tr>
    <tr>
      <th class="jstableform-key-number jstableform-type-string jstableform-validate-versionnumber">Number</th>
      <th class="jstableform-key-name jstableform-type-string jstableform-validate-versionname">Name</th>
      <th class="jstableform-key-lts jstableform-type-boolean">LTS</th>
      <th class="jstableform-key-_cmdedit"></th>
      <th class="jstableform-key-_cmddel"></th>
    </tr>
  </thead>
  <tbody>
    <tr name="jstableform-0">
      <td name="jstableform-key-number">8.04</td>
      <td name="jstableform-key-name">Hardy Heron</td>
      <td name="jstableform-key-lts" class="jstableform-status-yes"></td>
      <td name="jstableform-key-_cmdedit">edit</td>
      <td name="jstableform-key-_cmddel">delete</td>
    </tr>
    <tr name="jstableform-1">
      <td name="jstableform-key-number">8.10</td>
      <td name="jstableform-key-name">Intrepid Ibex</td>
      <td name="jstableform-key-lts" class="jstableform-status-no"></td>
    </tr>
    <tr name="jstableform-_new"><td name="jstableform-key-number"></td></tr>
    <tr><td>footer</td></tr>
  </tbody>
</table>
</body></html>`

func TestReadHTML(t *testing.T) {
	schema, rows, err := ReadHTML(strings.NewReader(distroMarkup), WithTableID("distri_versions"))
	if err != nil {
		t.Fatalf("ReadHTML() error = %v", err)
	}

	wantKeys := []string{"number", "name", "lts", EditKey, DeleteKey}
	if diff := cmp.Diff(wantKeys, schema.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	want := []HTMLRow{
		{ID: "0", Data: RowData{
			"number": TextValue("8.04"),
			"name":   TextValue("Hardy Heron"),
			"lts":    {Bool: BoolTrue},
		}},
		{ID: "1", Data: RowData{
			"number": TextValue("8.10"),
			"name":   TextValue("Intrepid Ibex"),
			"lts":    {Bool: BoolFalse},
		}},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadHTML_FirstTableWithoutID(t *testing.T) {
	// The first table has no annotated header, so the schema is rejected.
	if _, _, err := ReadHTML(strings.NewReader(distroMarkup)); err == nil {
		t.Error("ReadHTML() without id used an unannotated table")
	}
}

func TestReadHTML_MissingTable(t *testing.T) {
	_, _, err := ReadHTML(strings.NewReader(distroMarkup), WithTableID("nope"))
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("ReadHTML() error = %v, want table not found", err)
	}
}

func TestLoadHTML_SubmitRoundTrip(t *testing.T) {
	tbl, err := LoadHTML(strings.NewReader(distroMarkup), WithTableID("distri_versions"))
	if err != nil {
		t.Fatalf("LoadHTML() error = %v", err)
	}
	for _, r := range tbl.Rows() {
		if r.State() != StateViewing {
			t.Errorf("row %s state = %v, want viewing", r.ID, r.State())
		}
	}

	out := OutputField{Name: "distri_versions"}
	if err := tbl.Submit(&out); err != nil {
		t.Fatal(err)
	}
	want := `[{"number":"8.04","name":"Hardy Heron","lts":"true"},` +
		`{"number":"8.10","name":"Intrepid Ibex","lts":"false"}]`
	if out.Value != want {
		t.Errorf("output = %s, want %s", out.Value, want)
	}
}
