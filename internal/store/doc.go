// Package store provides persistent storage for the registrar using SQLite.
//
// # Data Models
//
//   - Institution: institution account that owns faculty records
//   - User: identity record with a role discriminant (student, faculty, admin)
//   - Faculty: role binding between a user and an institution, carrying
//     lifecycle flags (active, in-charge) and open course assignments
//   - CourseAssignment: (course, semester, batch) tuple, unique per record;
//     removal is the terminal "finished" state
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Deleting a user cascades to its faculty record; deleting a faculty record
// cascades to its assignments.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: requested entity does not exist
//   - ErrDuplicateEmail: email already registered
//   - ErrDuplicateFaculty: user already has a faculty record
//   - ErrDuplicateAssignment: course list contains a repeated tuple
//
// All methods accept context.Context for cancellation support.
//
// Use NewSQLiteStore(":memory:") for tests.
package store
