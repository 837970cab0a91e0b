// Package view splits each screen into a pure view-state builder (given
// session + data, decide what to display) and an effect layer (given a
// user intent, perform the API call). The console renders the view
// structs; nothing here touches a terminal or the network except Effects.
package view

import (
	"fmt"

	"github.com/courseboard/courseboard/internal/model"
	"github.com/courseboard/courseboard/internal/route"
)

// Login is the sign-in screen.
type Login struct {
	Title        string
	RegisterHint string
}

// Register is the account-creation screen.
type Register struct {
	Title     string
	LoginHint string
}

// Dashboard is the landing screen after login.
type Dashboard struct {
	Greeting   string
	CanCreate  bool
	CoursesTo  string
	CreateTo   string
	LogoutHint string
}

// CourseRow is one course in the list, with the actions the current
// user may take on it.
type CourseRow struct {
	ID         int
	Title      string
	Instructor string
	Capacity   int
	Enrolled   int
	CanEdit    bool
	CanEnroll  bool
}

// CourseList is the course catalogue screen.
type CourseList struct {
	Title  string
	Empty  bool
	Rows   []CourseRow
	BackTo string
}

// CourseForm is the create/edit screen. Editing carries the current
// values as defaults and offers deletion.
type CourseForm struct {
	Heading    string
	CourseID   string
	Title      string
	Instructor string
	Capacity   int
	Editing    bool
	CancelTo   string
}

// NotFound is rendered for unknown fragments and failed authorization
// prechecks.
type NotFound struct {
	Message string
	BackTo  string
}

// BuildLogin produces the sign-in view state.
func BuildLogin() Login {
	return Login{
		Title:        "Sign In",
		RegisterHint: "No account yet? Register at " + route.FragmentRegister,
	}
}

// BuildRegister produces the registration view state.
func BuildRegister() Register {
	return Register{
		Title:     "Create Account",
		LoginHint: "Already registered? Sign in at " + route.FragmentLogin,
	}
}

// BuildDashboard produces the dashboard for the signed-in user.
func BuildDashboard(user model.User) Dashboard {
	roleLabel := "Student"
	if user.IsAdmin() {
		roleLabel = "Administrator"
	}
	return Dashboard{
		Greeting:   fmt.Sprintf("Welcome, %s (%s)", user.Name, roleLabel),
		CanCreate:  user.IsAdmin(),
		CoursesTo:  route.FragmentCourseList,
		CreateTo:   route.FragmentCourseCreate,
		LogoutHint: "Logging out returns to " + route.FragmentLogin,
	}
}

// BuildCourseList produces the catalogue: admins get edit actions,
// students get enroll actions.
func BuildCourseList(user model.User, courses []model.Course) CourseList {
	rows := make([]CourseRow, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, CourseRow{
			ID:         c.ID,
			Title:      c.Title,
			Instructor: c.Instructor,
			Capacity:   c.Capacity,
			Enrolled:   len(c.Enrolled),
			CanEdit:    user.IsAdmin(),
			CanEnroll:  user.Role == model.RoleStudent,
		})
	}
	return CourseList{
		Title:  "Available Courses",
		Empty:  len(rows) == 0,
		Rows:   rows,
		BackTo: route.FragmentDashboard,
	}
}

// BuildCourseCreate produces the creation form, or nil when the user is
// not an administrator (the screen renders as not found).
func BuildCourseCreate(user model.User) *CourseForm {
	if !user.IsAdmin() {
		return nil
	}
	return &CourseForm{
		Heading:  "Create New Course",
		CancelTo: route.FragmentCourseList,
	}
}

// BuildCourseEdit produces the edit form for an existing course, or nil
// when the user is not an administrator.
func BuildCourseEdit(user model.User, course model.Course) *CourseForm {
	if !user.IsAdmin() {
		return nil
	}
	return &CourseForm{
		Heading:    fmt.Sprintf("Edit Course: %s", course.Title),
		CourseID:   fmt.Sprintf("%d", course.ID),
		Title:      course.Title,
		Instructor: course.Instructor,
		Capacity:   course.Capacity,
		Editing:    true,
		CancelTo:   route.FragmentCourseList,
	}
}

// BuildNotFound produces the fallback view with a way back.
func BuildNotFound() NotFound {
	return NotFound{
		Message: "Sorry, the page you are looking for does not exist.",
		BackTo:  route.FragmentDashboard,
	}
}
