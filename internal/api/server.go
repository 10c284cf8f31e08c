package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pbaille/orgadmin/internal/domain"
	"github.com/pbaille/orgadmin/internal/gateway"
	"github.com/pbaille/orgadmin/internal/session"
	"github.com/pbaille/orgadmin/internal/store"
)

// Server serves the operator UI endpoints over one edit session
type Server struct {
	mu   sync.Mutex
	ctrl *session.Controller
	addr string
	log  zerolog.Logger
}

// New creates a new API server
func New(ctrl *session.Controller, addr string, log zerolog.Logger) *Server {
	return &Server{ctrl: ctrl, addr: addr, log: log}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withCORS)

	r.Get("/health", s.health)
	r.Get("/summary", s.summary)
	r.Get("/companies", s.companies)
	r.Get("/config", s.config)

	r.Route("/scopes", func(r chi.Router) {
		r.Get("/", s.scopes)
		r.Post("/{kind}/new", s.openNew)
		r.Post("/{kind}/edit", s.openEdit)
		r.Post("/{kind}/save", s.save)
		r.Post("/{kind}/close", s.closeScope)
	})

	r.Route("/deletions", func(r chi.Router) {
		r.Post("/", s.requestDelete)
		r.Post("/{token}/confirm", s.confirmDelete)
		r.Post("/{token}/cancel", s.cancelDelete)
	})

	r.Get("/export/{document}", s.download)
	r.Post("/export", s.exportAll)
	r.Post("/import/{document}", s.importDocument)

	return r
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.log.Info().Str("addr", s.addr).Msg("starting server")
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for a locally served UI
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.ctrl.Store().Summary())
}

func (s *Server) companies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.ctrl.Store().CompaniesDocument())
}

func (s *Server) config(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.ctrl.Store().ConfigDocument())
}

// ScopesResponse is the state of every edit scope plus the pending deletion
type ScopesResponse struct {
	Scopes  session.Scopes           `json:"scopes"`
	Pending *session.PendingDeletion `json:"pending,omitempty"`
}

func (s *Server) scopes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, ScopesResponse{Scopes: s.ctrl.Scopes(), Pending: s.ctrl.Pending()})
}

// OpenRequest is the body of the new/edit scope endpoints
type OpenRequest struct {
	Index int                   `json:"index"`
	List  domain.ConfigListType `json:"list,omitempty"`
}

func (s *Server) openNew(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch chi.URLParam(r, "kind") {
	case "company":
		err = s.ctrl.NewCompany()
	case "department":
		err = s.ctrl.NewDepartment()
	case "person":
		err = s.ctrl.NewPerson()
	case "config":
		err = s.ctrl.NewConfigItem(req.List)
	default:
		writeError(w, http.StatusNotFound, "unknown scope")
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Scopes())
}

func (s *Server) openEdit(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		record any
		err    error
	)
	switch chi.URLParam(r, "kind") {
	case "company":
		record, err = s.ctrl.EditCompany(req.Index)
	case "department":
		record, err = s.ctrl.EditDepartment(req.Index)
	case "person":
		record, err = s.ctrl.EditPerson(req.Index)
	case "config":
		record, err = s.ctrl.EditConfigItem(req.List, req.Index)
	default:
		writeError(w, http.StatusNotFound, "unknown scope")
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	var in any
	switch kind {
	case "company":
		in = &session.CompanyInput{}
	case "department":
		in = &session.DepartmentInput{}
	case "person":
		in = &session.PersonInput{}
	case "config":
		in = &session.ConfigItemInput{}
	default:
		writeError(w, http.StatusNotFound, "unknown scope")
		return
	}
	if err := json.NewDecoder(r.Body).Decode(in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		record any
		err    error
	)
	ctx := r.Context()
	switch in := in.(type) {
	case *session.CompanyInput:
		record, err = s.ctrl.SaveCompany(ctx, *in)
	case *session.DepartmentInput:
		record, err = s.ctrl.SaveDepartment(ctx, *in)
	case *session.PersonInput:
		record, err = s.ctrl.SavePerson(ctx, *in)
	case *session.ConfigItemInput:
		record, err = s.ctrl.SaveConfigItem(ctx, *in)
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) closeScope(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch chi.URLParam(r, "kind") {
	case "company":
		s.ctrl.CloseCompany()
	case "department":
		s.ctrl.CloseDepartment()
	case "person":
		s.ctrl.ClosePerson()
	case "config":
		s.ctrl.CloseConfig()
	default:
		writeError(w, http.StatusNotFound, "unknown scope")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Scopes())
}

func (s *Server) requestDelete(w http.ResponseWriter, r *http.Request) {
	var target session.DeleteTarget
	if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.ctrl.RequestDelete(target)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, p)
}

func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.ConfirmDelete(r.Context(), chi.URLParam(r, "token")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Store().Summary())
}

func (s *Server) cancelDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.CancelDelete(chi.URLParam(r, "token")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// download offers the current document as a file attachment
func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseDocumentKind(chi.URLParam(r, "document"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	s.mu.Lock()
	doc, err := s.ctrl.Store().Document(kind)
	s.mu.Unlock()
	if err != nil {
		s.fail(w, err)
		return
	}

	data, err := gateway.Marshal(doc)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind.FileName()))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) exportAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.ExportAll(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "exported"})
}

func (s *Server) importDocument(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseDocumentKind(chi.URLParam(r, "document"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 5*1024*1024))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.ctrl.Import(kind, data)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// fail maps controller errors to status codes
func (s *Server) fail(w http.ResponseWriter, err error) {
	var verr *session.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, gateway.ErrInvalidDocument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrParentNotSaved),
		errors.Is(err, session.ErrScopeOpen),
		errors.Is(err, session.ErrNoScope),
		errors.Is(err, session.ErrStaleDeletion):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrIndexOutOfRange),
		errors.Is(err, store.ErrUnknownConfigList),
		errors.Is(err, session.ErrNoPendingDeletion):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
