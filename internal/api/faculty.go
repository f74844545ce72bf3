// ABOUTME: Faculty record endpoints: creation, lifecycle flags, course assignments
// ABOUTME: Deactivation is defensively rejected while assignments remain open

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campushq/registrar/internal/auth"
	"github.com/campushq/registrar/internal/store"
)

// FacultyView is the wire shape of a faculty record
type FacultyView struct {
	ID            string                   `json:"id"`
	UserID        string                   `json:"userId"`
	InstitutionID string                   `json:"institutionId"`
	DepartmentRef string                   `json:"departmentRef"`
	Designation   string                   `json:"designation"`
	DateOfJoining string                   `json:"dateOfJoining"`
	Active        bool                     `json:"isActive"`
	InCharge      bool                     `json:"isInCharge"`
	Courses       []store.CourseAssignment `json:"courses"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

func facultyView(f *store.Faculty) FacultyView {
	courses := f.Courses
	if courses == nil {
		courses = []store.CourseAssignment{}
	}
	return FacultyView{
		ID:            f.ID,
		UserID:        f.UserID,
		InstitutionID: f.InstitutionID,
		DepartmentRef: f.DepartmentRef,
		Designation:   f.Designation,
		DateOfJoining: f.DateOfJoining,
		Active:        f.Active,
		InCharge:      f.InCharge,
		Courses:       courses,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// CreateFacultyRequest is the role-binding creation payload
type CreateFacultyRequest struct {
	UserID        string `json:"userId"`
	DepartmentRef string `json:"departmentRef"`
	Designation   string `json:"designation"`
	DateOfJoining string `json:"dateOfJoining"`
}

func (s *Server) handleCreateFaculty(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	var req CreateFacultyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "userId required")
		return
	}

	u, err := s.store.GetUser(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusBadRequest, "user not found")
			return
		}
		s.logger.Error("failed to load user", "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}
	if u.Role != store.RoleFaculty {
		s.respondError(w, http.StatusBadRequest, "user does not have the faculty role")
		return
	}

	f := &store.Faculty{
		ID:            uuid.New().String(),
		UserID:        u.ID,
		InstitutionID: authCtx.SubjectID,
		DepartmentRef: req.DepartmentRef,
		Designation:   req.Designation,
		DateOfJoining: req.DateOfJoining,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.CreateFaculty(r.Context(), f); err != nil {
		if errors.Is(err, store.ErrDuplicateFaculty) {
			s.respondError(w, http.StatusConflict, "user already has a faculty record")
			return
		}
		s.logger.Error("failed to create faculty record", "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	s.logger.Info("faculty record created", "faculty_id", f.ID, "user_id", u.ID)
	s.respond(w, http.StatusCreated, facultyView(f), "faculty record created")
}

func (s *Server) handleListFaculty(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	records, err := s.store.ListFaculty(r.Context(), authCtx.SubjectID)
	if err != nil {
		s.logger.Error("failed to list faculty", "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	views := make([]FacultyView, 0, len(records))
	for _, f := range records {
		views = append(views, facultyView(f))
	}
	s.respond(w, http.StatusOK, views, "")
}

func (s *Server) handleGetFaculty(w http.ResponseWriter, r *http.Request) {
	f, ok := s.ownedFaculty(w, r)
	if !ok {
		return
	}
	s.respond(w, http.StatusOK, facultyView(f), "")
}

type profileRequest struct {
	Designation   string `json:"designation"`
	DateOfJoining string `json:"dateOfJoining"`
}

func (s *Server) handleFacultyProfile(w http.ResponseWriter, r *http.Request) {
	f, ok := s.ownedFaculty(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.UpdateFacultyProfile(r.Context(), f.ID, req.Designation, req.DateOfJoining); err != nil {
		s.logger.Error("failed to update profile", "faculty_id", f.ID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	s.respond(w, http.StatusOK, nil, "profile updated")
}

type departmentRequest struct {
	DepartmentRef string `json:"departmentRef"`
}

func (s *Server) handleFacultyDepartment(w http.ResponseWriter, r *http.Request) {
	f, ok := s.ownedFaculty(w, r)
	if !ok {
		return
	}

	var req departmentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.UpdateFacultyDepartment(r.Context(), f.ID, req.DepartmentRef); err != nil {
		s.logger.Error("failed to update department", "faculty_id", f.ID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	s.respond(w, http.StatusOK, nil, "department updated")
}

type statusRequest struct {
	Active bool `json:"isActive"`
}

func (s *Server) handleFacultyStatus(w http.ResponseWriter, r *http.Request) {
	f, ok := s.ownedFaculty(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Deactivation is gated client-side; reject it here too in case a caller
	// bypasses the gate.
	if !req.Active && len(f.Courses) > 0 {
		s.logger.Warn("deactivation rejected with open assignments",
			"faculty_id", f.ID, "open", len(f.Courses))
		s.respondError(w, http.StatusConflict,
			fmt.Sprintf("cannot deactivate: %d course assignments still open", len(f.Courses)))
		return
	}

	if err := s.store.SetFacultyActive(r.Context(), f.ID, req.Active); err != nil {
		s.logger.Error("failed to update status", "faculty_id", f.ID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	s.logger.Info("faculty status changed", "faculty_id", f.ID, "is_active", req.Active)
	s.respond(w, http.StatusOK, nil, "status updated")
}

type inChargeRequest struct {
	InCharge bool `json:"isInCharge"`
}

func (s *Server) handleFacultyInCharge(w http.ResponseWriter, r *http.Request) {
	f, ok := s.ownedFaculty(w, r)
	if !ok {
		return
	}

	var req inChargeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SetFacultyInCharge(r.Context(), f.ID, req.InCharge); err != nil {
		s.logger.Error("failed to update in-charge flag", "faculty_id", f.ID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	s.respond(w, http.StatusOK, nil, "in-charge flag updated")
}

type coursesRequest struct {
	Courses []store.CourseAssignment `json:"courses"`
}

func (s *Server) handleFacultyCourses(w http.ResponseWriter, r *http.Request) {
	f, ok := s.ownedFaculty(w, r)
	if !ok {
		return
	}

	var req coursesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.ReplaceAssignments(r.Context(), f.ID, req.Courses); err != nil {
		if errors.Is(err, store.ErrDuplicateAssignment) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("failed to replace assignments", "faculty_id", f.ID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	s.respond(w, http.StatusOK, nil, "courses updated")
}

func (s *Server) handleFinishCourse(w http.ResponseWriter, r *http.Request) {
	f, ok := s.ownedFaculty(w, r)
	if !ok {
		return
	}

	var req store.CourseAssignment
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.FinishAssignment(r.Context(), f.ID, req); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "assignment not open")
			return
		}
		s.logger.Error("failed to finish assignment", "faculty_id", f.ID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return
	}

	s.logger.Info("assignment finished", "faculty_id", f.ID, "assignment", req.Key())
	s.respond(w, http.StatusOK, nil, "course finished")
}

// ownedFaculty loads the faculty record from the URL and verifies it belongs
// to the authenticated institution. Writes the error response itself.
func (s *Server) ownedFaculty(w http.ResponseWriter, r *http.Request) (*store.Faculty, bool) {
	authCtx := auth.MustFromContext(r.Context())
	id := chi.URLParam(r, "id")

	f, err := s.store.GetFaculty(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "faculty record not found")
			return nil, false
		}
		s.logger.Error("failed to load faculty record", "faculty_id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "an error occurred")
		return nil, false
	}

	if f.InstitutionID != authCtx.SubjectID {
		// Hide other institutions' records entirely
		s.respondError(w, http.StatusNotFound, "faculty record not found")
		return nil, false
	}

	return f, true
}
