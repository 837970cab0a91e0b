package view

import (
	"testing"

	"github.com/courseboard/courseboard/internal/model"
	"github.com/courseboard/courseboard/internal/route"
)

var (
	admin   = model.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: model.RoleAdmin}
	student = model.User{ID: 2, Name: "Sam", Email: "sam@example.com", Role: model.RoleStudent}
)

func TestBuildDashboardRoleGating(t *testing.T) {
	d := BuildDashboard(admin)
	if !d.CanCreate {
		t.Error("admin dashboard should offer course creation")
	}
	if d.Greeting != "Welcome, Ada (Administrator)" {
		t.Errorf("greeting = %q", d.Greeting)
	}

	d = BuildDashboard(student)
	if d.CanCreate {
		t.Error("student dashboard should not offer course creation")
	}
	if d.Greeting != "Welcome, Sam (Student)" {
		t.Errorf("greeting = %q", d.Greeting)
	}
}

func TestBuildCourseListActions(t *testing.T) {
	courses := []model.Course{
		{ID: 1, Title: "Go", Instructor: "Pike", Capacity: 10, Enrolled: []string{"a@x.com"}},
		{ID: 2, Title: "SQL", Instructor: "Codd", Capacity: 5},
	}

	v := BuildCourseList(admin, courses)
	if v.Empty {
		t.Error("list with courses should not be empty")
	}
	for _, row := range v.Rows {
		if !row.CanEdit || row.CanEnroll {
			t.Errorf("admin row %d: CanEdit=%v CanEnroll=%v", row.ID, row.CanEdit, row.CanEnroll)
		}
	}
	if v.Rows[0].Enrolled != 1 || v.Rows[0].Capacity != 10 {
		t.Errorf("row 0 counts = %d/%d", v.Rows[0].Enrolled, v.Rows[0].Capacity)
	}

	v = BuildCourseList(student, courses)
	for _, row := range v.Rows {
		if row.CanEdit || !row.CanEnroll {
			t.Errorf("student row %d: CanEdit=%v CanEnroll=%v", row.ID, row.CanEdit, row.CanEnroll)
		}
	}
}

func TestBuildCourseListEmpty(t *testing.T) {
	v := BuildCourseList(student, nil)
	if !v.Empty {
		t.Error("nil course slice should render as empty")
	}
	if v.BackTo != route.FragmentDashboard {
		t.Errorf("BackTo = %q", v.BackTo)
	}
}

func TestBuildCourseCreateAdminOnly(t *testing.T) {
	if form := BuildCourseCreate(student); form != nil {
		t.Error("students must not get the creation form")
	}
	form := BuildCourseCreate(admin)
	if form == nil {
		t.Fatal("admin should get the creation form")
	}
	if form.Editing {
		t.Error("creation form should not be in editing mode")
	}
	if form.CancelTo != route.FragmentCourseList {
		t.Errorf("CancelTo = %q", form.CancelTo)
	}
}

func TestBuildCourseEditAdminOnly(t *testing.T) {
	course := model.Course{ID: 7, Title: "Go", Instructor: "Pike", Capacity: 10, Enrolled: []string{"a@x.com"}}

	if form := BuildCourseEdit(student, course); form != nil {
		t.Error("students must not get the edit form")
	}

	form := BuildCourseEdit(admin, course)
	if form == nil {
		t.Fatal("admin should get the edit form")
	}
	if !form.Editing {
		t.Error("edit form should be in editing mode")
	}
	if form.CourseID != "7" || form.Title != "Go" || form.Instructor != "Pike" || form.Capacity != 10 {
		t.Errorf("form defaults = %+v", form)
	}
}

func TestBuildNotFound(t *testing.T) {
	v := BuildNotFound()
	if v.BackTo != route.FragmentDashboard {
		t.Errorf("BackTo = %q", v.BackTo)
	}
	if v.Message == "" {
		t.Error("not-found view should carry a message")
	}
}
