// ABOUTME: Deactivation gate requiring open course assignments to be resolved
// ABOUTME: Confirmation clears the in-charge flag before flipping the status

package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/campushq/registrar/internal/api"
	"github.com/campushq/registrar/internal/client"
	"github.com/campushq/registrar/internal/store"
)

// GateError reports why a deactivation could not be confirmed
type GateError struct {
	OpenAssignments int
	InFlight        int
}

func (e *GateError) Error() string {
	if e.InFlight > 0 {
		return fmt.Sprintf("cannot deactivate: %d assignment finishes still in flight", e.InFlight)
	}
	return fmt.Sprintf("cannot deactivate: %d course assignments still open", e.OpenAssignments)
}

// impactItem is one open assignment blocking the deactivation
type impactItem struct {
	assignment store.CourseAssignment
	inFlight   bool
}

// Gate walks one faculty deactivation from request to confirmation. The
// faculty's open assignments are the gate's impact set; each must be finished
// before Confirm will proceed. The gate is advisory on the client side only;
// the API applies the same check again on confirmation.
type Gate struct {
	api        *client.Client
	credential string
	faculty    *api.FacultyView
	logger     *slog.Logger

	mu    sync.Mutex
	items map[string]*impactItem
	done  bool
}

// RequestDeactivation opens a gate for an active faculty record. Inactive
// records cannot be deactivated again.
func RequestDeactivation(apiClient *client.Client, credential string, faculty *api.FacultyView, logger *slog.Logger) (*Gate, error) {
	if faculty == nil {
		return nil, fmt.Errorf("no faculty record")
	}
	if !faculty.Active {
		return nil, fmt.Errorf("faculty %s is already inactive", faculty.ID)
	}
	if logger == nil {
		logger = slog.Default()
	}

	items := make(map[string]*impactItem, len(faculty.Courses))
	for _, a := range faculty.Courses {
		items[a.Key()] = &impactItem{assignment: a}
	}
	return &Gate{
		api:        apiClient,
		credential: credential,
		faculty:    faculty,
		logger:     logger.With("component", "lifecycle"),
		items:      items,
	}, nil
}

// Impact lists the assignments still blocking confirmation, in no particular
// order.
func (g *Gate) Impact() []store.CourseAssignment {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]store.CourseAssignment, 0, len(g.items))
	for _, item := range g.items {
		out = append(out, item.assignment)
	}
	return out
}

// FinishAssignment resolves one blocking assignment remotely and, on success,
// removes it from the impact set. Finishing an assignment the gate does not
// track is an error; finishing one already in flight is a no-op.
func (g *Gate) FinishAssignment(ctx context.Context, a store.CourseAssignment) error {
	key := a.Key()

	g.mu.Lock()
	item, ok := g.items[key]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("assignment %s is not blocking this deactivation", key)
	}
	if item.inFlight {
		g.mu.Unlock()
		return nil
	}
	item.inFlight = true
	g.mu.Unlock()

	if err := g.api.FinishCourse(ctx, g.credential, g.faculty.ID, a); err != nil {
		g.mu.Lock()
		item.inFlight = false
		g.mu.Unlock()
		return fmt.Errorf("finishing assignment %s: %w", key, err)
	}

	g.mu.Lock()
	delete(g.items, key)
	g.mu.Unlock()
	g.logger.Debug("assignment finished", "faculty_id", g.faculty.ID, "assignment", key)
	return nil
}

// CanConfirm reports whether the impact set is empty with nothing in flight.
func (g *Gate) CanConfirm() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.items) == 0
}

// Confirm performs the deactivation. When assignments still block, the
// returned error is a *GateError and no request is made. The in-charge flag is
// cleared first so no inactive record retains departmental charge; a failure
// there aborts the whole confirmation and leaves the record active.
func (g *Gate) Confirm(ctx context.Context) error {
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		return fmt.Errorf("deactivation already confirmed")
	}
	if n := len(g.items); n > 0 {
		inFlight := 0
		for _, item := range g.items {
			if item.inFlight {
				inFlight++
			}
		}
		g.mu.Unlock()
		return &GateError{OpenAssignments: n, InFlight: inFlight}
	}
	g.mu.Unlock()

	if g.faculty.InCharge {
		if err := g.api.SetFacultyInCharge(ctx, g.credential, g.faculty.ID, false); err != nil {
			return fmt.Errorf("clearing in-charge flag: %w", err)
		}
		g.faculty.InCharge = false
	}

	if err := g.api.SetFacultyStatus(ctx, g.credential, g.faculty.ID, false); err != nil {
		return fmt.Errorf("deactivating faculty %s: %w", g.faculty.ID, err)
	}

	g.mu.Lock()
	g.done = true
	g.mu.Unlock()
	g.logger.Info("faculty deactivated", "faculty_id", g.faculty.ID)
	return nil
}

// Reactivate flips an inactive record back to active. Reactivation has no
// impact set to work through and no gate; the cleared in-charge flag stays
// cleared until granted again explicitly.
func Reactivate(ctx context.Context, apiClient *client.Client, credential, facultyID string) error {
	if err := apiClient.SetFacultyStatus(ctx, credential, facultyID, true); err != nil {
		return fmt.Errorf("reactivating faculty %s: %w", facultyID, err)
	}
	return nil
}
