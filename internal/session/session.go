// ABOUTME: Dual-slot session store tracking the institution and user principals
// ABOUTME: Each slot has independent identity, credential, and check state

package session

import (
	"fmt"
	"log/slog"
	"sync"
)

// Kind identifies one of the two independent principal kinds tracked
// concurrently by the client.
type Kind string

const (
	KindInstitution Kind = "institution"
	KindUser        Kind = "user"
)

// Kinds lists both slots in bootstrap order
var Kinds = []Kind{KindInstitution, KindUser}

// Role is the closed set of user roles. The institution kind has no role.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// Identity is the normalized identity data held in a slot
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  Role // empty for the institution kind
}

// Session is one slot's state. Authenticated implies a non-empty Credential.
// Checked becomes true once the gateway has resolved the slot and stays true
// until an explicit logout re-enters checked-but-unauthenticated.
type Session struct {
	Identity      *Identity
	Credential    string
	Authenticated bool
	Checked       bool
}

// Store holds the two independent principal slots. Mutations are slot-scoped;
// nothing an operation does to one slot can leak into the other. Credential
// changes propagate to the durable keyring so a later process can reconstruct
// the slot before verification.
type Store struct {
	mu      sync.RWMutex
	slots   map[Kind]*Session
	keyring Keyring
	logger  *slog.Logger
}

// NewStore creates a store with both slots empty and unchecked
func NewStore(keyring Keyring) *Store {
	return &Store{
		slots: map[Kind]*Session{
			KindInstitution: {},
			KindUser:        {},
		},
		keyring: keyring,
		logger:  slog.Default().With("component", "session"),
	}
}

// Slot returns a copy of the slot's current state. An unknown kind yields the
// zero Session (unchecked, unauthenticated).
func (s *Store) Slot(kind Kind) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[kind]
	if !ok {
		return Session{}
	}
	copied := *slot
	if slot.Identity != nil {
		id := *slot.Identity
		copied.Identity = &id
	}
	return copied
}

// SetAuthenticated marks the slot authenticated with the given identity and
// credential, persisting the credential to the keyring.
func (s *Store) SetAuthenticated(kind Kind, identity *Identity, credential string) error {
	if credential == "" {
		return fmt.Errorf("authenticated slot requires a credential")
	}

	s.mu.Lock()
	slot := s.slots[kind]
	slot.Identity = identity
	slot.Credential = credential
	slot.Authenticated = true
	slot.Checked = true
	s.mu.Unlock()

	if err := s.keyring.Store(kind, credential); err != nil {
		// Slot state is already correct for this process; persistence failure
		// only affects the next one.
		s.logger.Warn("failed to persist credential", "kind", kind, "error", err)
	}

	s.logger.Debug("slot authenticated", "kind", kind, "subject", identity.ID)
	return nil
}

// SetUnauthenticated clears the slot's identity and credential and marks the
// slot checked. The durable credential is left alone; use Logout to drop it.
func (s *Store) SetUnauthenticated(kind Kind) {
	s.mu.Lock()
	slot := s.slots[kind]
	slot.Identity = nil
	slot.Credential = ""
	slot.Authenticated = false
	slot.Checked = true
	s.mu.Unlock()

	s.logger.Debug("slot unauthenticated", "kind", kind)
}

// MarkChecked records that verification ran for the slot without changing its
// auth state. Used when no persisted credential was found at all.
func (s *Store) MarkChecked(kind Kind) {
	s.mu.Lock()
	s.slots[kind].Checked = true
	s.mu.Unlock()
}

// Logout clears the slot and deletes its durable credential. The other slot's
// keyring entry is untouched.
func (s *Store) Logout(kind Kind) {
	s.SetUnauthenticated(kind)

	if err := s.keyring.Delete(kind); err != nil {
		s.logger.Warn("failed to delete persisted credential", "kind", kind, "error", err)
	}

	s.logger.Info("logged out", "kind", kind)
}
