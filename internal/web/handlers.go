package web

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/JonMunkholm/tableform/internal/core"
	"github.com/JonMunkholm/tableform/internal/logging"
	"github.com/JonMunkholm/tableform/internal/tableform"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
)

// MaxFormSize bounds the body of a posted session form (1MB).
const MaxFormSize = 1 << 20

// handleIndex renders the list of registered forms.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := pageLayout("Forms", s.cfg.Server.HTMXScriptURL, formList(s.service.ListForms()))
	templ.Handler(page).ServeHTTP(w, r)
}

// handleOpenForm starts an editing session and redirects to it.
func (s *Server) handleOpenForm(w http.ResponseWriter, r *http.Request) {
	formKey := chi.URLParam(r, "form")

	view, err := s.service.OpenSession(r.Context(), formKey)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.ForSession(r.Context(), formKey, view.ID).Debug("session started", "rows", len(view.Rows))
	http.Redirect(w, r, sessionURL(formKey, view.ID), http.StatusSeeOther)
}

// handleSessionPage renders the current state of a session.
func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Session(chi.URLParam(r, "form"), chi.URLParam(r, "session"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.renderSession(w, r, view, nil, http.StatusOK)
}

// handleCloseSession discards a session and returns to the form list.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	formKey, id := chi.URLParam(r, "form"), chi.URLParam(r, "session")

	if err := s.service.CloseSession(formKey, id); err != nil && !errors.Is(err, core.ErrSessionNotFound) {
		s.respondError(w, r, err)
		return
	}
	logging.ForSession(r.Context(), formKey, id).Debug("session closed")

	switch {
	case wantsJSON(r):
		w.WriteHeader(http.StatusNoContent)
	case isHTMX(r):
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// sessionOp runs one row operation. Posted text inputs are applied first.
type sessionOp func(r *http.Request, formKey, id string, inputs []core.CellInput) (core.SessionView, error)

// sessionAction adapts a row operation to an HTTP handler.
func (s *Server) sessionAction(op sessionOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxFormSize)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data", http.StatusBadRequest)
			return
		}

		formKey, id := chi.URLParam(r, "form"), chi.URLParam(r, "session")
		view, err := op(r, formKey, id, parseInputs(r.PostForm))
		s.respondSession(w, r, view, err)
	}
}

func (s *Server) addRow(r *http.Request, formKey, id string, inputs []core.CellInput) (core.SessionView, error) {
	return s.service.AddRow(formKey, id, inputs)
}

func (s *Server) editRow(r *http.Request, formKey, id string, inputs []core.CellInput) (core.SessionView, error) {
	return s.service.EditRow(formKey, id, chi.URLParam(r, "row"), inputs)
}

func (s *Server) cancelRow(r *http.Request, formKey, id string, inputs []core.CellInput) (core.SessionView, error) {
	return s.service.CancelRow(formKey, id, chi.URLParam(r, "row"), inputs)
}

func (s *Server) deleteRow(r *http.Request, formKey, id string, inputs []core.CellInput) (core.SessionView, error) {
	return s.service.DeleteRow(formKey, id, chi.URLParam(r, "row"), inputs)
}

func (s *Server) toggleValue(r *http.Request, formKey, id string, inputs []core.CellInput) (core.SessionView, error) {
	return s.service.ToggleValue(formKey, id, chi.URLParam(r, "row"), chi.URLParam(r, "key"), inputs)
}

// setValue stores one cell. The value comes from the "value" field, or from
// the cell's own input when the whole form was posted. blur=1 validates it.
func (s *Server) setValue(r *http.Request, formKey, id string, inputs []core.CellInput) (core.SessionView, error) {
	handle, key := chi.URLParam(r, "row"), chi.URLParam(r, "key")

	value, ok := r.PostForm["value"]
	if !ok {
		value = r.PostForm[inputName(handle, key)]
	}
	var text string
	if len(value) > 0 {
		text = value[0]
	}
	blur := r.URL.Query().Get("blur") == "1" || r.PostForm.Get("blur") == "1"

	return s.service.SetValue(formKey, id, handle, key, text, blur, inputs)
}

func (s *Server) submit(r *http.Request, formKey, id string, inputs []core.CellInput) (core.SessionView, error) {
	return s.service.Submit(r.Context(), formKey, id, inputs)
}

// parseInputs collects the posted text inputs, named "v.<handle>.<key>".
func parseInputs(form url.Values) []core.CellInput {
	names := make([]string, 0, len(form))
	for name := range form {
		if strings.HasPrefix(name, inputPrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	inputs := make([]core.CellInput, 0, len(names))
	for _, name := range names {
		handle, key, ok := strings.Cut(name[len(inputPrefix):], ".")
		if !ok || handle == "" || key == "" {
			continue
		}
		inputs = append(inputs, core.CellInput{Handle: handle, Key: key, Value: form.Get(name)})
	}
	return inputs
}

// respondSession answers a session action. Operations on rows that no
// longer exist are ignored. Other failures re-render the form with an alert.
// Successful plain form posts redirect back to the session page.
func (s *Server) respondSession(w http.ResponseWriter, r *http.Request, view core.SessionView, err error) {
	if errors.Is(err, tableform.ErrRowNotFound) {
		err = nil
	}
	if err != nil && view.ID == "" {
		s.respondError(w, r, err)
		return
	}

	if err != nil {
		status := statusFor(err)
		msg := core.MapError(err)
		logError(r, err, status, msg)

		if wantsJSON(r) {
			writeJSONStatus(w, status, ErrorResponse{
				Error:   msg.Message,
				Message: msg.Message,
				Action:  msg.Action,
				Code:    msg.Code,
				Fields:  view.Failed,
			})
			return
		}
		s.renderSession(w, r, view, &msg, status)
		return
	}

	switch {
	case wantsJSON(r):
		writeJSON(w, view)
	case isHTMX(r):
		s.renderSession(w, r, view, nil, http.StatusOK)
	default:
		http.Redirect(w, r, sessionURL(view.Form.Key, view.ID), http.StatusSeeOther)
	}
}

// renderSession writes the form fragment for htmx and the full page otherwise.
func (s *Server) renderSession(w http.ResponseWriter, r *http.Request, view core.SessionView, alert *core.UserMessage, status int) {
	var c templ.Component
	if isHTMX(r) {
		c = sessionForm(view, alert)
	} else {
		c = pageLayout(view.Form.Label, s.cfg.Server.HTMXScriptURL, sessionPage(view, alert))
	}
	templ.Handler(c, templ.WithStatus(status)).ServeHTTP(w, r)
}
