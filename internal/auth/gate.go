package auth

import (
	"net/url"
	"strings"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// RouteClass is the access class of a request path.
type RouteClass string

const (
	RoutePublic      RouteClass = "public"
	RouteAuthOnly    RouteClass = "auth_only"
	RouteStudentArea RouteClass = "student_area"
	RouteModArea     RouteClass = "mod_area"
	RouteAdminArea   RouteClass = "admin_area"
)

// LoginPath is where unauthenticated visitors of a gated area are sent.
const LoginPath = "/login"

var routeTable = []struct {
	prefix string
	class  RouteClass
}{
	{"/login", RouteAuthOnly},
	{"/register", RouteAuthOnly},
	{"/forgotpassword", RouteAuthOnly},
	{"/dashboard", RouteStudentArea},
	{"/mod", RouteModArea},
	{"/admin", RouteAdminArea},
}

var areaRoles = map[RouteClass]domain.Role{
	RouteStudentArea: domain.RoleStudent,
	RouteModArea:     domain.RoleMod,
	RouteAdminArea:   domain.RoleAdmin,
}

// Classify maps a request path to its route class by segment prefix. Matching ignores
// case, query strings and trailing slashes; anything not listed is public.
func Classify(path string) RouteClass {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.ToLower(path)
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	for _, entry := range routeTable {
		if path == entry.prefix || strings.HasPrefix(path, entry.prefix+"/") {
			return entry.class
		}
	}
	return RoutePublic
}

// IsArea reports whether the class is one of the role-gated areas.
func (c RouteClass) IsArea() bool {
	_, ok := areaRoles[c]
	return ok
}

// SessionKind enumerates the per-request session states.
type SessionKind int

const (
	Unauthenticated SessionKind = iota
	AuthenticatedNoRole
	AuthenticatedRole
)

func (k SessionKind) String() string {
	switch k {
	case AuthenticatedNoRole:
		return "authenticated_no_role"
	case AuthenticatedRole:
		return "authenticated_role"
	default:
		return "unauthenticated"
	}
}

// SessionState is the resolved session of one request.
type SessionState struct {
	Kind SessionKind
	Role domain.Role
}

// StateOf derives the session state from resolved claims. Nil claims are unauthenticated;
// a role outside the known set counts as no role.
func StateOf(claims *Claims) SessionState {
	if claims == nil {
		return SessionState{Kind: Unauthenticated}
	}
	if !claims.Role.Known() {
		return SessionState{Kind: AuthenticatedNoRole}
	}
	return SessionState{Kind: AuthenticatedRole, Role: claims.Role}
}

// Decision is the outcome of a routing decision.
type Decision struct {
	Allow    bool   `json:"allow"`
	Redirect string `json:"redirect,omitempty"`
}

func allow() Decision { return Decision{Allow: true} }

func redirectTo(path string) Decision { return Decision{Redirect: path} }

// HomeFor returns the landing area of a role.
func HomeFor(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "/admin"
	case domain.RoleMod:
		return "/mod"
	default:
		return "/dashboard"
	}
}

// LoginRedirect builds the login location that returns the visitor to original afterwards.
func LoginRedirect(original string) string {
	if original == "" {
		return LoginPath
	}
	return LoginPath + "?redirect=" + url.QueryEscape(original)
}

// Decide is the single routing decision used by the page gate and the client navigation
// endpoint. original is the requested path (with query) used for the login redirect.
func Decide(state SessionState, class RouteClass, original string) Decision {
	switch state.Kind {
	case AuthenticatedRole:
		switch {
		case class == RouteAuthOnly:
			return redirectTo(HomeFor(state.Role))
		case class.IsArea() && areaRoles[class] != state.Role:
			return redirectTo(HomeFor(state.Role))
		default:
			return allow()
		}
	case AuthenticatedNoRole:
		if class == RouteAdminArea || class == RouteModArea {
			return redirectTo(HomeFor(domain.RoleStudent))
		}
		return allow()
	default:
		if class.IsArea() {
			return redirectTo(LoginRedirect(original))
		}
		return allow()
	}
}

// DecidePath classifies path and decides for the given claims.
func DecidePath(claims *Claims, path string) Decision {
	return Decide(StateOf(claims), Classify(path), path)
}
