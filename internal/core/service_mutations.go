package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/tableform/internal/tableform"
)

// CellInput is the posted value of one text input, identified by row handle
// and column key.
type CellInput struct {
	Handle string
	Key    string
	Value  string
}

// applyInputs writes posted input values back into the table. Cells whose
// value changed, or that carry an invalid marker, are re-validated as on
// blur. Inputs for rows that are gone or no longer editable are stale
// posts and are skipped.
func applyInputs(table *tableform.Table, inputs []CellInput) {
	for _, in := range inputs {
		row, ok := table.Row(in.Handle)
		if !ok || !row.Editable() {
			continue
		}
		if row.Value(in.Key).Text == in.Value && !row.Invalid(in.Key) {
			continue
		}
		if err := table.SetValue(in.Handle, in.Key, in.Value); err != nil {
			slog.Debug("input skipped", "row", in.Handle, "key", in.Key, "error", err)
			continue
		}
		if _, err := table.Blur(in.Handle, in.Key); err != nil {
			slog.Debug("input not validated", "row", in.Handle, "key", in.Key, "error", err)
		}
	}
}

// mutate applies pending inputs, then op, marking the session dirty.
func (s *Service) mutate(formKey, id string, inputs []CellInput, op func(*tableform.Table) error) (SessionView, error) {
	return s.withSession(formKey, id, func(sess *session) error {
		applyInputs(sess.table, inputs)
		sess.saved = false
		sess.failed = nil
		return op(sess.table)
	})
}

// ApplyInputs stores posted input values without any other action.
func (s *Service) ApplyInputs(formKey, id string, inputs []CellInput) (SessionView, error) {
	return s.mutate(formKey, id, inputs, func(*tableform.Table) error { return nil })
}

// AddRow appends a New row.
func (s *Service) AddRow(formKey, id string, inputs []CellInput) (SessionView, error) {
	return s.mutate(formKey, id, inputs, func(t *tableform.Table) error {
		t.Add()
		return nil
	})
}

// EditRow switches a Viewing row to Editing.
func (s *Service) EditRow(formKey, id, handle string, inputs []CellInput) (SessionView, error) {
	return s.mutate(formKey, id, inputs, func(t *tableform.Table) error {
		return t.Edit(handle)
	})
}

// CancelRow reverts an Editing row to its snapshot.
func (s *Service) CancelRow(formKey, id, handle string, inputs []CellInput) (SessionView, error) {
	return s.mutate(formKey, id, inputs, func(t *tableform.Table) error {
		return t.Cancel(handle)
	})
}

// DeleteRow removes a row.
func (s *Service) DeleteRow(formKey, id, handle string, inputs []CellInput) (SessionView, error) {
	return s.mutate(formKey, id, inputs, func(t *tableform.Table) error {
		return t.Delete(handle)
	})
}

// ToggleValue flips a boolean cell of an editable row.
func (s *Service) ToggleValue(formKey, id, handle, key string, inputs []CellInput) (SessionView, error) {
	return s.mutate(formKey, id, inputs, func(t *tableform.Table) error {
		return t.Toggle(handle, key)
	})
}

// SetValue stores one input value after the other pending inputs. With blur
// set the value is validated and the cell's invalid marker updated.
func (s *Service) SetValue(formKey, id, handle, key, value string, blur bool, inputs []CellInput) (SessionView, error) {
	return s.mutate(formKey, id, inputs, func(t *tableform.Table) error {
		if err := t.SetValue(handle, key, value); err != nil {
			return err
		}
		if blur {
			_, err := t.Blur(handle, key)
			return err
		}
		return nil
	})
}

// Submit serializes the session table into its output field and persists it.
// When any editable field is invalid nothing is stored: the returned view
// lists the failures and the error is a *tableform.SubmitError. After a
// successful save the table is reloaded from the stored value, so every
// row is back in the Viewing state.
func (s *Service) Submit(ctx context.Context, formKey, id string, inputs []CellInput) (SessionView, error) {
	return s.withSession(formKey, id, func(sess *session) error {
		applyInputs(sess.table, inputs)
		sess.saved = false
		info := sess.form.Info

		out := sess.output
		err := sess.table.Submit(&out)

		var se *tableform.SubmitError
		if errors.As(err, &se) {
			sess.failed = failuresOf(se)
			if _, aerr := s.LogAudit(ctx, AuditLogParams{
				Action:     ActionSubmitRejected,
				FormKey:    info.Key,
				StorageKey: info.StorageKey,
				Rows:       len(se.Fields),
				Reason:     se.Error(),
			}); aerr != nil {
				slog.Error("audit log failed", "form", info.Key, "error", aerr)
			}
			return err
		}
		if err != nil {
			return err
		}
		sess.failed = nil

		if err := s.limiter.Acquire(ctx); err != nil {
			return err
		}
		defer s.limiter.Release()

		old, _, err := s.store.Get(ctx, info.StorageKey)
		if err != nil {
			return fmt.Errorf("load %s: %w", info.StorageKey, err)
		}
		if err := s.store.Set(ctx, info.StorageKey, out.Value); err != nil {
			return fmt.Errorf("save %s: %w", info.StorageKey, err)
		}

		rows := sess.table.Len()
		sess.output = out
		sess.table = s.loadTable(sess.form, out.Value)
		sess.saved = true

		if _, err := s.LogAudit(ctx, AuditLogParams{
			Action:     ActionSubmit,
			FormKey:    info.Key,
			StorageKey: info.StorageKey,
			OldValue:   old,
			NewValue:   out.Value,
			Rows:       rows,
		}); err != nil {
			slog.Error("audit log failed", "form", info.Key, "error", err)
		}

		slog.Info("form saved", "form", info.Key, "session", sess.id, "rows", rows)
		return nil
	})
}

func failuresOf(se *tableform.SubmitError) []FieldFailure {
	out := make([]FieldFailure, len(se.Fields))
	for i, f := range se.Fields {
		out[i] = FieldFailure{Row: f.Row, RowID: f.RowID, Column: f.Column, Value: f.Value}
	}
	return out
}
