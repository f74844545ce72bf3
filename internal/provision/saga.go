// ABOUTME: Two-phase faculty provisioning saga with compensating rollback
// ABOUTME: Phase one creates the identity, phase two binds the faculty record

package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campushq/registrar/internal/api"
	"github.com/campushq/registrar/internal/client"
)

// phase is the saga's internal progress marker
type phase int

const (
	phaseIdle phase = iota
	phaseIdentityCreated
	phaseComplete
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseIdentityCreated:
		return "identity-created"
	case phaseComplete:
		return "complete"
	case phaseFailed:
		return "failed"
	}
	return "unknown"
}

// ErrNoIdentity is returned when the binding phase runs without a created
// identity to bind to.
var ErrNoIdentity = errors.New("no identity created for binding")

// BindingError reports a failed binding phase. Err is the primary failure;
// Compensated records whether the orphaned identity was deleted, and
// CompensationErr holds the delete failure when it was not. OrphanedIdentity
// is set only when cleanup failed and the identity still exists remotely.
type BindingError struct {
	Err              error
	Compensated      bool
	CompensationErr  error
	OrphanedIdentity string
}

func (e *BindingError) Error() string {
	if !e.Compensated {
		return fmt.Sprintf("binding faculty record: %v (identity %s left orphaned: %v)",
			e.Err, e.OrphanedIdentity, e.CompensationErr)
	}
	return fmt.Sprintf("binding faculty record: %v (identity rolled back)", e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }

// UserFields describes the identity half of a provisioning request
type UserFields struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// FacultyFields describes the role-binding half of a provisioning request
type FacultyFields struct {
	DepartmentRef string
	Designation   string
	DateOfJoining string
}

// Saga drives one faculty provisioning attempt. It is single-use: a Saga that
// has completed or failed refuses further work. On a binding failure the saga
// compensates by deleting the identity it created in phase one; a compensation
// failure is reported alongside the primary error, never in place of it.
type Saga struct {
	api        *client.Client
	credential string
	logger     *slog.Logger

	state    phase
	identity *api.UserView
}

// New returns an idle saga bound to one institution credential.
func New(apiClient *client.Client, credential string, logger *slog.Logger) *Saga {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saga{
		api:        apiClient,
		credential: credential,
		logger:     logger.With("component", "provision"),
		state:      phaseIdle,
	}
}

// State reports the saga's progress as a readable label.
func (s *Saga) State() string { return s.state.String() }

// CreateFaculty runs the full two-phase flow: create the identity, then bind
// the faculty record. On success the bound record is returned; on a phase-two
// failure the returned error is a *BindingError describing the rollback.
func (s *Saga) CreateFaculty(ctx context.Context, user UserFields, faculty FacultyFields) (*api.FacultyView, error) {
	if err := s.CreateIdentity(ctx, user); err != nil {
		return nil, err
	}
	return s.CreateBinding(ctx, faculty)
}

// CreateIdentity runs phase one. The created identity always carries the
// faculty role; callers provisioning other roles go through the plain user
// operations instead.
func (s *Saga) CreateIdentity(ctx context.Context, user UserFields) error {
	if s.state != phaseIdle {
		return fmt.Errorf("saga already %s", s.state)
	}

	view, err := s.api.CreateUser(ctx, s.credential, api.CreateUserRequest{
		Name:     user.Name,
		Email:    user.Email,
		Phone:    user.Phone,
		Role:     "faculty",
		Password: user.Password,
	})
	if err != nil {
		s.state = phaseFailed
		return fmt.Errorf("creating identity: %w", err)
	}

	s.identity = view
	s.state = phaseIdentityCreated
	s.logger.Debug("identity created", "user_id", view.ID)
	return nil
}

// CreateBinding runs phase two against the identity from phase one. A failure
// triggers the compensating delete so no identity is left without its record.
func (s *Saga) CreateBinding(ctx context.Context, faculty FacultyFields) (*api.FacultyView, error) {
	if s.state != phaseIdentityCreated || s.identity == nil {
		if s.state == phaseIdle {
			return nil, ErrNoIdentity
		}
		return nil, fmt.Errorf("saga already %s", s.state)
	}

	view, err := s.api.CreateFaculty(ctx, s.credential, api.CreateFacultyRequest{
		UserID:        s.identity.ID,
		DepartmentRef: faculty.DepartmentRef,
		Designation:   faculty.Designation,
		DateOfJoining: faculty.DateOfJoining,
	})
	if err == nil {
		s.state = phaseComplete
		s.logger.Debug("faculty bound", "faculty_id", view.ID, "user_id", s.identity.ID)
		return view, nil
	}

	s.state = phaseFailed
	bindErr := &BindingError{Err: err}

	s.logger.Warn("binding failed, compensating", "user_id", s.identity.ID, "error", err)
	if compErr := s.api.DeleteUser(ctx, s.credential, s.identity.ID); compErr != nil {
		bindErr.CompensationErr = compErr
		bindErr.OrphanedIdentity = s.identity.ID
		s.logger.Error("compensation failed, identity orphaned",
			"user_id", s.identity.ID, "error", compErr)
	} else {
		bindErr.Compensated = true
	}
	return nil, bindErr
}
