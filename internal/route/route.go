// Package route maps URL-style fragments to views. The dispatcher is a
// pure function of (fragment, session state): no state survives between
// invocations, and redirects are expressed as fragment rewrites the
// caller re-dispatches, never as in-process recursion.
package route

import "strings"

// Kind enumerates every navigable view. The console matches it
// exhaustively, so adding a route without a view is a compile-time
// visible hole rather than a lookup miss.
type Kind int

const (
	KindLogin Kind = iota
	KindRegister
	KindDashboard
	KindCourseList
	KindCourseCreate
	KindCourseEdit
	KindNotFound
)

// Fragments for the fixed routes.
const (
	FragmentLogin        = "#/login"
	FragmentRegister     = "#/register"
	FragmentDashboard    = "#/dashboard"
	FragmentCourseList   = "#/dashboard/courses"
	FragmentCourseCreate = "#/dashboard/courses/create"

	editPrefix = "#/dashboard/courses/edit/"
)

// DefaultFragment is where an empty fragment lands.
const DefaultFragment = FragmentLogin

// Route is a tagged route descriptor. CourseID is set only for
// KindCourseEdit and is the raw trailing segment, unvalidated.
type Route struct {
	Kind     Kind
	CourseID string
}

// Resolution is the dispatcher's verdict: either a redirect fragment to
// re-dispatch, or a route to render.
type Resolution struct {
	Redirect string
	Route    Route
}

// EditFragment builds the edit fragment for a course id.
func EditFragment(id string) string {
	return editPrefix + id
}

// Resolve applies the transition rules in order:
//  1. dashboard routes require an active session → redirect to login
//  2. login/register with an active session → redirect to dashboard
//  3. edit-course pattern → course edit with the extracted id
//  4. known exact route → that route
//  5. anything else → not found
func Resolve(fragment string, sessionActive bool) Resolution {
	if fragment == "" {
		fragment = DefaultFragment
	}

	if strings.HasPrefix(fragment, FragmentDashboard) && !sessionActive {
		return Resolution{Redirect: FragmentLogin}
	}

	if (fragment == FragmentLogin || fragment == FragmentRegister) && sessionActive {
		return Resolution{Redirect: FragmentDashboard}
	}

	if strings.HasPrefix(fragment, editPrefix) {
		segments := strings.Split(fragment, "/")
		return Resolution{Route: Route{Kind: KindCourseEdit, CourseID: segments[len(segments)-1]}}
	}

	switch fragment {
	case FragmentLogin:
		return Resolution{Route: Route{Kind: KindLogin}}
	case FragmentRegister:
		return Resolution{Route: Route{Kind: KindRegister}}
	case FragmentDashboard:
		return Resolution{Route: Route{Kind: KindDashboard}}
	case FragmentCourseList:
		return Resolution{Route: Route{Kind: KindCourseList}}
	case FragmentCourseCreate:
		return Resolution{Route: Route{Kind: KindCourseCreate}}
	default:
		return Resolution{Route: Route{Kind: KindNotFound}}
	}
}
