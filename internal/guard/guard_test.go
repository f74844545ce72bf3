// ABOUTME: Tests for the pure route-guard decisions
// ABOUTME: Covers the full slot-state grid for both guard variants

package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campushq/registrar/internal/session"
)

func slot(checked, authed bool, role session.Role) session.Session {
	s := session.Session{Checked: checked, Authenticated: authed}
	if authed {
		s.Identity = &session.Identity{ID: "id-1", Role: role}
		s.Credential = "tok"
	}
	return s
}

func TestProtected_Pending(t *testing.T) {
	d := Protected(slot(false, false, ""), session.KindUser, session.RoleFaculty)
	assert.Equal(t, ActionPending, d.Action)
}

func TestProtected_UnauthenticatedRedirectsToLogin(t *testing.T) {
	d := Protected(slot(true, false, ""), session.KindInstitution, "")
	assert.Equal(t, ActionRedirect, d.Action)
	assert.Equal(t, "/institution/login", d.Target)

	d = Protected(slot(true, false, ""), session.KindUser, session.RoleStudent)
	assert.Equal(t, ActionRedirect, d.Action)
	assert.Equal(t, "/student/login", d.Target)
}

func TestProtected_AuthenticatedRenders(t *testing.T) {
	d := Protected(slot(true, true, ""), session.KindInstitution, "")
	assert.Equal(t, ActionRender, d.Action)

	d = Protected(slot(true, true, session.RoleFaculty), session.KindUser, session.RoleFaculty)
	assert.Equal(t, ActionRender, d.Action)
}

func TestProtected_RoleMismatchRedirectsToRequiredLogin(t *testing.T) {
	// A student session cannot render faculty content; it is sent to the
	// faculty login, not its own dashboard.
	d := Protected(slot(true, true, session.RoleStudent), session.KindUser, session.RoleFaculty)
	assert.Equal(t, ActionRedirect, d.Action)
	assert.Equal(t, "/faculty/login", d.Target)

	d = Protected(slot(true, true, session.RoleAdmin), session.KindUser, session.RoleStudent)
	assert.Equal(t, ActionRedirect, d.Action)
	assert.Equal(t, "/student/login", d.Target)
}

func TestPublicOnly_Pending(t *testing.T) {
	d := PublicOnly(slot(false, false, ""), session.KindInstitution)
	assert.Equal(t, ActionPending, d.Action)
}

func TestPublicOnly_UnauthenticatedRenders(t *testing.T) {
	d := PublicOnly(slot(true, false, ""), session.KindUser)
	assert.Equal(t, ActionRender, d.Action)
}

func TestPublicOnly_AuthenticatedRedirectsToDashboard(t *testing.T) {
	d := PublicOnly(slot(true, true, ""), session.KindInstitution)
	assert.Equal(t, ActionRedirect, d.Action)
	assert.Equal(t, "/institution", d.Target)

	for role, want := range map[session.Role]string{
		session.RoleStudent: "/student",
		session.RoleFaculty: "/faculty",
		session.RoleAdmin:   "/admin",
	} {
		d := PublicOnly(slot(true, true, role), session.KindUser)
		assert.Equal(t, ActionRedirect, d.Action)
		assert.Equal(t, want, d.Target, "role %s", role)
	}
}

// Every reachable slot state must produce exactly one decision; redirects
// always carry a target and the other actions never do.
func TestGuards_EveryStateDecided(t *testing.T) {
	states := []session.Session{
		slot(false, false, ""),
		slot(true, false, ""),
		slot(true, true, ""),
		slot(true, true, session.RoleStudent),
		slot(true, true, session.RoleFaculty),
		slot(true, true, session.RoleAdmin),
	}
	roles := []session.Role{"", session.RoleStudent, session.RoleFaculty, session.RoleAdmin}

	for _, kind := range session.Kinds {
		for _, s := range states {
			for _, required := range roles {
				check := func(d Decision) {
					switch d.Action {
					case ActionRedirect:
						assert.NotEmpty(t, d.Target)
					case ActionPending, ActionRender:
						assert.Empty(t, d.Target)
					default:
						t.Fatalf("unknown action %d", d.Action)
					}
				}
				check(Protected(s, kind, required))
				check(PublicOnly(s, kind))
			}
		}
	}
}
