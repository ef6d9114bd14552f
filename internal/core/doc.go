// Package core provides the editing sessions behind the table forms.
//
// This package holds the domain logic between the tableform component and
// any transport. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Form Registry
//
// Forms are registered at init time using [Register]. A [FormDefinition]
// names the storage key of its output field and lists its header cells with
// the class tokens the schema is read from:
//
//	core.Register(core.FormDefinition{
//	    Info: core.FormInfo{Key: "distri_versions", Label: "Distribution versions"},
//	    Columns: []core.ColumnDef{
//	        {Label: "Number", Class: "jstableform-key-number jstableform-type-string jstableform-validate-versionnumber"},
//	        {Label: "", Class: "jstableform-key-_cmdedit"},
//	    },
//	})
//
// # Sessions
//
// [Service.OpenSession] loads the stored value of a form into a fresh table
// whose rows are all Viewing. Row operations address rows by handle and
// return a [SessionView] to render. [Service.Submit] validates the table,
// writes the JSON array to storage and reloads the session from it.
// Sessions expire after an idle TTL; [Service.StartMaintenance] reaps them.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB004: Storage errors
//   - VAL001-VAL004: Validation and schema errors
//   - SES001-SES003: Session errors
//   - FRM001: Form errors
//
// # Audit Logging
//
// Every submit is recorded: saved values with their previous value at high
// severity, rejected submits with the failing fields at medium severity.
package core
