package auth

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := map[string]RouteClass{
		"/":                      RoutePublic,
		"/about":                 RoutePublic,
		"/blogs/ielts-tips":      RoutePublic,
		"/login":                 RouteAuthOnly,
		"/login?redirect=%2Fmod": RouteAuthOnly,
		"/register/":             RouteAuthOnly,
		"/forgotpassword":        RouteAuthOnly,
		"/dashboard":             RouteStudentArea,
		"/dashboard/materials":   RouteStudentArea,
		"/mod":                   RouteModArea,
		"/mod/gallery":           RouteModArea,
		"/modules":               RoutePublic,
		"/admin":                 RouteAdminArea,
		"/admin/users/42":        RouteAdminArea,
		"/administrator":         RoutePublic,
		"/DASHBOARD":             RouteStudentArea,
		"/Admin/users":           RouteAdminArea,
		"/MOD/gallery/":          RouteModArea,
		"/Login?redirect=%2Fmod": RouteAuthOnly,
	}
	for path, want := range cases {
		assert.Equal(t, want, Classify(path), path)
	}
}

func TestDecideGrid(t *testing.T) {
	const original = "/requested/path"
	login := LoginRedirect(original)

	states := map[string]SessionState{
		"none":    {Kind: Unauthenticated},
		"norole":  {Kind: AuthenticatedNoRole},
		"student": {Kind: AuthenticatedRole, Role: domain.RoleStudent},
		"mod":     {Kind: AuthenticatedRole, Role: domain.RoleMod},
		"admin":   {Kind: AuthenticatedRole, Role: domain.RoleAdmin},
	}
	classes := []RouteClass{RoutePublic, RouteAuthOnly, RouteStudentArea, RouteModArea, RouteAdminArea}

	// "" means allow.
	expected := map[string][]string{
		"none":    {"", "", login, login, login},
		"norole":  {"", "", "", "/dashboard", "/dashboard"},
		"student": {"", "/dashboard", "", "/dashboard", "/dashboard"},
		"mod":     {"", "/mod", "/mod", "", "/mod"},
		"admin":   {"", "/admin", "/admin", "/admin", ""},
	}

	for name, state := range states {
		for i, class := range classes {
			got := Decide(state, class, original)
			want := expected[name][i]
			label := fmt.Sprintf("%s/%s", name, class)
			if want == "" {
				assert.True(t, got.Allow, label)
				assert.Empty(t, got.Redirect, label)
			} else {
				assert.False(t, got.Allow, label)
				assert.Equal(t, want, got.Redirect, label)
			}
		}
	}
}

func TestHomeFor(t *testing.T) {
	assert.Equal(t, "/admin", HomeFor(domain.RoleAdmin))
	assert.Equal(t, "/mod", HomeFor(domain.RoleMod))
	assert.Equal(t, "/dashboard", HomeFor(domain.RoleStudent))
	assert.Equal(t, "/dashboard", HomeFor(domain.RoleNone))
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, SessionState{Kind: Unauthenticated}, StateOf(nil))

	claims := &Claims{SessionUser: domain.SessionUser{UserID: "u1"}}
	assert.Equal(t, SessionState{Kind: AuthenticatedNoRole}, StateOf(claims))

	claims.Role = "tutor"
	assert.Equal(t, SessionState{Kind: AuthenticatedNoRole}, StateOf(claims))

	claims.Role = domain.RoleMod
	assert.Equal(t, SessionState{Kind: AuthenticatedRole, Role: domain.RoleMod}, StateOf(claims))
}

func TestDecidePathLoginRedirectIsEscaped(t *testing.T) {
	got := DecidePath(nil, "/dashboard")
	assert.Equal(t, "/login?redirect=%2Fdashboard", got.Redirect)

	got = DecidePath(nil, "/admin/users?page=2")
	assert.Equal(t, "/login?redirect=%2Fadmin%2Fusers%3Fpage%3D2", got.Redirect)
}
