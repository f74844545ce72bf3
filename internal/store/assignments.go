// ABOUTME: CourseAssignment value type and duplicate validation
// ABOUTME: An assignment is open while present; removal is its terminal state

package store

import (
	"fmt"
)

// CourseAssignment represents one open course assignment on a faculty record.
// The (CourseID, Semester, Batch) tuple is unique within a record.
type CourseAssignment struct {
	CourseID string `json:"courseId"`
	Semester int    `json:"semester"`
	Batch    string `json:"batch"`
}

// Key returns the identity of the assignment within its faculty record
func (a CourseAssignment) Key() string {
	return fmt.Sprintf("%s/%d/%s", a.CourseID, a.Semester, a.Batch)
}

// ValidateAssignments rejects lists containing duplicate (course, semester,
// batch) tuples or assignments with an empty course ID. Callers run this before
// any network or database write.
func ValidateAssignments(assignments []CourseAssignment) error {
	seen := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		if a.CourseID == "" {
			return fmt.Errorf("assignment has empty course id")
		}
		key := a.Key()
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAssignment, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}
