// Package tableform implements a schema-driven editable table.
//
// A table is described by its header cells. Each header cell carries class
// tokens that declare the column:
//
//	key-<NAME>        column key, also the JSON attribute name
//	type-<KIND>       string, int, float, text or boolean
//	validate-<NAME>   named validator (int, float, versionnumber, versionname)
//
// Two reserved keys describe control columns instead of data: `_cmdedit`
// holds the edit/cancel affordance and `_cmddel` the delete affordance.
//
// # Rows
//
// Every row is in one of three states:
//
//   - Viewing: read-only display of persisted values
//   - Editing: inputs shown, values mutable, a snapshot kept for cancel
//   - New: a row appended by [Table.Add]; always editable, never revertable
//
// The [Table] is the single source of truth. A view renders it and pushes
// user input back with [Table.SetValue], [Table.Toggle] and [Table.Blur].
//
// # Serialization
//
// [Table.Submit] walks the rows in order and writes a JSON array of objects,
// one per row, keys in header order, into an [OutputField]. When any field of
// an editable row fails its validator the whole submission is rejected with
// a [*SubmitError] and the output field is left untouched.
//
// A Table is not safe for concurrent use. Callers that share one between
// goroutines must serialize access.
package tableform
