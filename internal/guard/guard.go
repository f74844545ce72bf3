// ABOUTME: Pure route-guard decisions over session slot state
// ABOUTME: Every evaluation yields exactly one of pending, redirect, or render

package guard

import (
	"github.com/campushq/registrar/internal/session"
)

// Action is the kind of decision a guard produces
type Action int

const (
	// ActionPending means verification has not resolved yet; render nothing
	ActionPending Action = iota
	// ActionRender means the requested content may be shown
	ActionRender
	// ActionRedirect means navigation must go to Decision.Target instead
	ActionRedirect
)

// Decision is the outcome of evaluating a guard. Target is set only for
// ActionRedirect.
type Decision struct {
	Action Action
	Target string
}

func pending() Decision           { return Decision{Action: ActionPending} }
func render() Decision            { return Decision{Action: ActionRender} }
func redirect(to string) Decision { return Decision{Action: ActionRedirect, Target: to} }

// LoginPath returns the login location for an actor kind. For the user kind
// the location is role-specific; an unknown or empty role falls back to the
// generic user login.
func LoginPath(kind session.Kind, role session.Role) string {
	if kind == session.KindInstitution {
		return "/institution/login"
	}
	switch role {
	case session.RoleStudent:
		return "/student/login"
	case session.RoleFaculty:
		return "/faculty/login"
	case session.RoleAdmin:
		return "/admin/login"
	}
	return "/login"
}

// DashboardPath returns the post-login location for an identity
func DashboardPath(kind session.Kind, role session.Role) string {
	if kind == session.KindInstitution {
		return "/institution"
	}
	switch role {
	case session.RoleStudent:
		return "/student"
	case session.RoleFaculty:
		return "/faculty"
	case session.RoleAdmin:
		return "/admin"
	}
	return "/"
}

// Protected guards content that requires an authenticated slot. A non-empty
// requiredRole additionally pins the user slot to one role; a session of the
// right kind but wrong role is redirected to the required role's own login
// rather than rendered.
func Protected(s session.Session, kind session.Kind, requiredRole session.Role) Decision {
	if !s.Checked {
		return pending()
	}
	if !s.Authenticated {
		return redirect(LoginPath(kind, requiredRole))
	}
	if requiredRole != "" && (s.Identity == nil || s.Identity.Role != requiredRole) {
		return redirect(LoginPath(kind, requiredRole))
	}
	return render()
}

// PublicOnly guards content meant for unauthenticated visitors, such as login
// screens. An authenticated slot is sent to its own dashboard.
func PublicOnly(s session.Session, kind session.Kind) Decision {
	if !s.Checked {
		return pending()
	}
	if s.Authenticated {
		role := session.Role("")
		if s.Identity != nil {
			role = s.Identity.Role
		}
		return redirect(DashboardPath(kind, role))
	}
	return render()
}
