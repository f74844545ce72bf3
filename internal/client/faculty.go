// ABOUTME: Faculty record operations: creation, lifecycle flags, course assignments
// ABOUTME: Course list updates are validated for duplicates before any request

package client

import (
	"context"
	"net/http"

	"github.com/campushq/registrar/internal/api"
	"github.com/campushq/registrar/internal/store"
)

// CreateFaculty creates the role binding for an existing faculty-role user.
func (c *Client) CreateFaculty(ctx context.Context, token string, req api.CreateFacultyRequest) (*api.FacultyView, error) {
	var view api.FacultyView
	if err := c.doInstitution(ctx, http.MethodPost, "/api/v1/faculty", token, req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetFaculty fetches a faculty record with its open assignments.
func (c *Client) GetFaculty(ctx context.Context, token, id string) (*api.FacultyView, error) {
	var view api.FacultyView
	if err := c.doInstitution(ctx, http.MethodGet, "/api/v1/faculty/"+id, token, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ListFaculty lists the institution's faculty records.
func (c *Client) ListFaculty(ctx context.Context, token string) ([]api.FacultyView, error) {
	var views []api.FacultyView
	if err := c.doInstitution(ctx, http.MethodGet, "/api/v1/faculty", token, nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// SetFacultyStatus flips the active flag.
func (c *Client) SetFacultyStatus(ctx context.Context, token, id string, active bool) error {
	return c.doInstitution(ctx, http.MethodPut, "/api/v1/faculty/"+id+"/status", token,
		map[string]bool{"isActive": active}, nil)
}

// SetFacultyInCharge flips the in-charge flag.
func (c *Client) SetFacultyInCharge(ctx context.Context, token, id string, inCharge bool) error {
	return c.doInstitution(ctx, http.MethodPut, "/api/v1/faculty/"+id+"/incharge", token,
		map[string]bool{"isInCharge": inCharge}, nil)
}

// UpdateFacultyProfile updates designation and date of joining.
func (c *Client) UpdateFacultyProfile(ctx context.Context, token, id, designation, dateOfJoining string) error {
	return c.doInstitution(ctx, http.MethodPut, "/api/v1/faculty/"+id+"/profile", token,
		map[string]string{"designation": designation, "dateOfJoining": dateOfJoining}, nil)
}

// UpdateFacultyDepartment moves the record to another department.
func (c *Client) UpdateFacultyDepartment(ctx context.Context, token, id, departmentRef string) error {
	return c.doInstitution(ctx, http.MethodPut, "/api/v1/faculty/"+id+"/department", token,
		map[string]string{"departmentRef": departmentRef}, nil)
}

// UpdateFacultyCourses replaces the course list. Duplicate tuples are rejected
// locally before any request is sent.
func (c *Client) UpdateFacultyCourses(ctx context.Context, token, id string, courses []store.CourseAssignment) error {
	if err := store.ValidateAssignments(courses); err != nil {
		return err
	}
	return c.doInstitution(ctx, http.MethodPut, "/api/v1/faculty/"+id+"/courses", token,
		map[string]any{"courses": courses}, nil)
}

// FinishCourse removes one open assignment from a faculty record.
func (c *Client) FinishCourse(ctx context.Context, token, id string, a store.CourseAssignment) error {
	return c.doInstitution(ctx, http.MethodPut, "/api/v1/faculty/"+id+"/courses/finish", token, a, nil)
}
