package route

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		fragment     string
		active       bool
		wantRedirect string
		wantKind     Kind
		wantCourseID string
	}{
		{name: "empty fragment defaults to login", fragment: "", active: false, wantKind: KindLogin},
		{name: "empty fragment with session redirects to dashboard", fragment: "", active: true, wantRedirect: FragmentDashboard},
		{name: "login without session", fragment: "#/login", active: false, wantKind: KindLogin},
		{name: "register without session", fragment: "#/register", active: false, wantKind: KindRegister},
		{name: "login with session redirects", fragment: "#/login", active: true, wantRedirect: FragmentDashboard},
		{name: "register with session redirects", fragment: "#/register", active: true, wantRedirect: FragmentDashboard},
		{name: "dashboard without session redirects", fragment: "#/dashboard", active: false, wantRedirect: FragmentLogin},
		{name: "course list without session redirects", fragment: "#/dashboard/courses", active: false, wantRedirect: FragmentLogin},
		{name: "edit without session redirects", fragment: "#/dashboard/courses/edit/3", active: false, wantRedirect: FragmentLogin},
		{name: "dashboard with session", fragment: "#/dashboard", active: true, wantKind: KindDashboard},
		{name: "course list with session", fragment: "#/dashboard/courses", active: true, wantKind: KindCourseList},
		{name: "create with session", fragment: "#/dashboard/courses/create", active: true, wantKind: KindCourseCreate},
		{name: "edit extracts id", fragment: "#/dashboard/courses/edit/42", active: true, wantKind: KindCourseEdit, wantCourseID: "42"},
		{name: "edit id passes through unvalidated", fragment: "#/dashboard/courses/edit/abc", active: true, wantKind: KindCourseEdit, wantCourseID: "abc"},
		{name: "unknown fragment is not found", fragment: "#/bogus", active: true, wantKind: KindNotFound},
		{name: "unknown fragment without session is not found", fragment: "#/bogus", active: false, wantKind: KindNotFound},
		{name: "unknown dashboard child is not found", fragment: "#/dashboard/unknown", active: true, wantKind: KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.fragment, tt.active)

			if tt.wantRedirect != "" {
				if res.Redirect != tt.wantRedirect {
					t.Fatalf("Resolve(%q, %v) redirect = %q, want %q", tt.fragment, tt.active, res.Redirect, tt.wantRedirect)
				}
				return
			}
			if res.Redirect != "" {
				t.Fatalf("Resolve(%q, %v) unexpected redirect %q", tt.fragment, tt.active, res.Redirect)
			}
			if res.Route.Kind != tt.wantKind {
				t.Errorf("Resolve(%q, %v) kind = %d, want %d", tt.fragment, tt.active, res.Route.Kind, tt.wantKind)
			}
			if res.Route.CourseID != tt.wantCourseID {
				t.Errorf("Resolve(%q, %v) course id = %q, want %q", tt.fragment, tt.active, res.Route.CourseID, tt.wantCourseID)
			}
		})
	}
}

func TestEditFragmentRoundTrip(t *testing.T) {
	frag := EditFragment("17")
	res := Resolve(frag, true)
	if res.Route.Kind != KindCourseEdit {
		t.Fatalf("expected edit route, got kind %d", res.Route.Kind)
	}
	if res.Route.CourseID != "17" {
		t.Errorf("course id = %q, want %q", res.Route.CourseID, "17")
	}
}

func TestRedirectIsRewriteNotRecursion(t *testing.T) {
	// One redirect step lands on a fragment that itself resolves cleanly.
	first := Resolve("#/dashboard/courses", false)
	if first.Redirect != FragmentLogin {
		t.Fatalf("expected redirect to login, got %q", first.Redirect)
	}
	second := Resolve(first.Redirect, false)
	if second.Redirect != "" || second.Route.Kind != KindLogin {
		t.Errorf("redirect target should resolve directly to login, got %+v", second)
	}
}
