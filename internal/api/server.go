// ABOUTME: HTTP JSON API server for the registrar
// ABOUTME: Routes requests with chi and wraps responses in the data/message envelope

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/campushq/registrar/internal/auth"
	"github.com/campushq/registrar/internal/store"
)

// Server serves the registrar HTTP JSON API
type Server struct {
	store    *store.SQLiteStore
	verifier *auth.JWTVerifier
	tokenTTL time.Duration
	origins  []string
	logger   *slog.Logger
}

// New creates a new API server
func New(st *store.SQLiteStore, verifier *auth.JWTVerifier, tokenTTL time.Duration, origins []string) *Server {
	return &Server{
		store:    st,
		verifier: verifier,
		tokenTTL: tokenTTL,
		origins:  origins,
		logger:   slog.Default().With("component", "api"),
	}
}

// Handler builds the route tree. All responses use the {data, message} envelope.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/institution/login", s.handleInstitutionLogin)
		r.Post("/users/login", s.handleUserLogin)

		// Institution-owned operations (bearer credential)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireInstitution(s.verifier, s.lookupInstitution))
			r.Get("/institution/me", s.handleInstitutionMe)
			r.Post("/users", s.handleCreateUser)
			r.Get("/users", s.handleListUsers)
			r.Delete("/users/{id}", s.handleDeleteUser)
			r.Post("/faculty", s.handleCreateFaculty)
			r.Get("/faculty", s.handleListFaculty)
			r.Get("/faculty/{id}", s.handleGetFaculty)
			r.Put("/faculty/{id}/profile", s.handleFacultyProfile)
			r.Put("/faculty/{id}/department", s.handleFacultyDepartment)
			r.Put("/faculty/{id}/status", s.handleFacultyStatus)
			r.Put("/faculty/{id}/incharge", s.handleFacultyInCharge)
			r.Put("/faculty/{id}/courses", s.handleFacultyCourses)
			r.Put("/faculty/{id}/courses/finish", s.handleFinishCourse)
		})

		// User-facing operations (cookie credential)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(s.verifier, s.lookupUser))
			r.Get("/users/me", s.handleUserMe)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"}, "healthy")
}

func (s *Server) lookupInstitution(r *http.Request, id string) (*auth.AuthContext, error) {
	inst, err := s.store.GetInstitution(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return &auth.AuthContext{Kind: auth.KindInstitution, SubjectID: inst.ID}, nil
}

func (s *Server) lookupUser(r *http.Request, id string) (*auth.AuthContext, error) {
	u, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return &auth.AuthContext{Kind: auth.KindUser, SubjectID: u.ID, Role: string(u.Role)}, nil
}

// envelope is the fixed response shape: {data, message}
type envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func (s *Server) respond(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data, Message: message}); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, nil, message)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
