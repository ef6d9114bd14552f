package web

import (
	"net/http"

	"github.com/JonMunkholm/tableform/internal/core"
	"github.com/go-chi/chi/v5"
)

// formResponse describes a form and its header for API clients.
type formResponse struct {
	core.FormInfo
	Columns []core.ColumnView `json:"columns"`
}

func newFormResponse(def core.FormDefinition) formResponse {
	cols := def.Schema().Columns()
	resp := formResponse{FormInfo: def.Info, Columns: make([]core.ColumnView, len(cols))}
	for i, c := range cols {
		resp.Columns[i] = core.ColumnView{
			Key:       c.Key,
			Label:     def.Columns[i].Label,
			Class:     def.Columns[i].Class,
			Kind:      c.Kind,
			Validator: c.ValidatorName(),
		}
	}
	return resp
}

// handleListForms returns all registered forms.
func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	forms := make([]formResponse, len(defs))
	for i, def := range defs {
		forms[i] = newFormResponse(def)
	}
	writeJSON(w, forms)
}

// handleGetForm returns one form.
func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	def, err := s.service.Form(chi.URLParam(r, "form"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, newFormResponse(def))
}

// storedValueResponse is the persisted output field of a form.
type storedValueResponse struct {
	Form       string `json:"form"`
	StorageKey string `json:"storageKey"`
	Value      string `json:"value"`
}

// handleStoredValue returns the stored output field value of a form.
func (s *Server) handleStoredValue(w http.ResponseWriter, r *http.Request) {
	formKey := chi.URLParam(r, "form")
	def, err := s.service.Form(formKey)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	value, err := s.service.StoredValue(r.Context(), formKey)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, storedValueResponse{Form: formKey, StorageKey: def.Info.StorageKey, Value: value})
}

// handleSessionJSON returns the state of an editing session.
func (s *Server) handleSessionJSON(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Session(chi.URLParam(r, "form"), chi.URLParam(r, "session"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, view)
}

// handleVersions returns the stored distribution versions. active=1 keeps
// only supported, current and development releases.
func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.service.DistributionVersions(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if r.URL.Query().Get("active") == "1" {
		active := make([]core.Version, 0, len(versions))
		for _, v := range versions {
			if v.IsActive() {
				active = append(active, v)
			}
		}
		versions = active
	}
	writeJSON(w, versions)
}
