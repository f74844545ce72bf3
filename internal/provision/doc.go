// Package provision creates faculty members atomically from the client's
// point of view. The remote API has no combined operation: a faculty member is
// a user identity plus a separate faculty record, created by two requests. The
// saga orders them, and when the second request fails it deletes the identity
// the first one created, so the institution never accumulates faculty-role
// users with no faculty record. If the delete itself fails the orphan is
// reported rather than hidden.
package provision
