package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/courseboard/courseboard/internal/apiclient"
	"github.com/courseboard/courseboard/internal/model"
	"github.com/courseboard/courseboard/internal/session"
	"github.com/rs/zerolog"
)

// courseBackend is a stateful fake of the course API: login hands out a
// token carrying the email, enrollment repeats the duplicate and
// capacity checks under a lock the way the real server does atomically.
type courseBackend struct {
	mu     sync.Mutex
	course model.Course
}

func (b *courseBackend) bearerEmail(r *http.Request) string {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return strings.TrimPrefix(token, "tok-")
}

func (b *courseBackend) serve(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode login: %v", err)
		}
		resp := model.AuthResponse{
			Token: "tok-" + req.Email,
			User:  model.User{ID: 1, Name: "Student", Email: req.Email, Role: model.RoleStudent},
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": resp})
	})

	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"message":"logged out"}}`)
	})

	mux.HandleFunc("/courses", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"courses": []model.Course{b.course}},
		})
	})

	mux.HandleFunc("/courses/1", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"course": b.course},
		})
	})

	mux.HandleFunc("/courses/1/enroll", func(w http.ResponseWriter, r *http.Request) {
		email := b.bearerEmail(r)
		b.mu.Lock()
		defer b.mu.Unlock()

		if b.course.HasStudent(email) {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"error":{"code":"ALREADY_ENROLLED","message":"You are already enrolled in this course."}}`)
			return
		}
		if b.course.SeatsLeft() <= 0 {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"error":{"code":"COURSE_FULL","message":"This course is already full."}}`)
			return
		}
		b.course.Enrolled = append(b.course.Enrolled, email)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"course": b.course},
		})
	})

	return httptest.NewServer(mux)
}

// newClient builds an effect layer with its own session state, so two
// clients act as two different users against the same backend.
func newClient(t *testing.T, baseURL string) *Effects {
	t.Helper()
	api := apiclient.New(baseURL, zerolog.Nop())
	store := session.NewStore(t.TempDir(), api, zerolog.Nop())
	api.SetTokenSource(store)
	return NewEffects(api, store, zerolog.Nop())
}

func TestEnrollSingleSeatScenario(t *testing.T) {
	backend := &courseBackend{
		course: model.Course{ID: 1, Title: "Go", Instructor: "Pike", Capacity: 1, Enrolled: []string{}},
	}
	srv := backend.serve(t)
	defer srv.Close()
	ctx := context.Background()

	alice := newClient(t, srv.URL)
	if err := alice.Login(ctx, "a@x.com", "pw"); err != nil {
		t.Fatalf("alice login: %v", err)
	}

	course, err := alice.Enroll(ctx, "1")
	if err != nil {
		t.Fatalf("first enrollment: %v", err)
	}
	if len(course.Enrolled) != 1 || course.Enrolled[0] != "a@x.com" {
		t.Errorf("roster = %v", course.Enrolled)
	}

	// Re-enrolling the same student is rejected before capacity matters.
	if _, err := alice.Enroll(ctx, "1"); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Errorf("duplicate enrollment: got %v, want ErrAlreadyEnrolled", err)
	}

	// A second student sees the full course.
	bob := newClient(t, srv.URL)
	if err := bob.Login(ctx, "b@x.com", "pw"); err != nil {
		t.Fatalf("bob login: %v", err)
	}
	if _, err := bob.Enroll(ctx, "1"); !errors.Is(err, ErrCourseFull) {
		t.Errorf("over-capacity enrollment: got %v, want ErrCourseFull", err)
	}

	// The roster never exceeded capacity.
	final, err := bob.FetchCourse(ctx, "1")
	if err != nil {
		t.Fatalf("fetch course: %v", err)
	}
	if len(final.Enrolled) != 1 {
		t.Errorf("final roster = %v", final.Enrolled)
	}
}

func TestEnrollRequiresSession(t *testing.T) {
	backend := &courseBackend{
		course: model.Course{ID: 1, Title: "Go", Capacity: 5},
	}
	srv := backend.serve(t)
	defer srv.Close()

	anon := newClient(t, srv.URL)
	if _, err := anon.Enroll(context.Background(), "1"); err == nil {
		t.Error("enrollment without a session should fail")
	}
}

func TestFetchCourses(t *testing.T) {
	backend := &courseBackend{
		course: model.Course{ID: 1, Title: "Go", Instructor: "Pike", Capacity: 5},
	}
	srv := backend.serve(t)
	defer srv.Close()

	e := newClient(t, srv.URL)
	courses, err := e.FetchCourses(context.Background())
	if err != nil {
		t.Fatalf("FetchCourses: %v", err)
	}
	if len(courses) != 1 || courses[0].Title != "Go" {
		t.Errorf("courses = %+v", courses)
	}
}

func TestMapEnrollError(t *testing.T) {
	if got := mapEnrollError(&apiclient.StatusError{StatusCode: 409, Code: "ALREADY_ENROLLED"}); !errors.Is(got, ErrAlreadyEnrolled) {
		t.Errorf("ALREADY_ENROLLED mapped to %v", got)
	}
	if got := mapEnrollError(&apiclient.StatusError{StatusCode: 409, Code: "COURSE_FULL"}); !errors.Is(got, ErrCourseFull) {
		t.Errorf("COURSE_FULL mapped to %v", got)
	}
	other := &apiclient.StatusError{StatusCode: 500, Code: "INTERNAL_ERROR"}
	if got := mapEnrollError(other); got != other {
		t.Errorf("unrelated error rewritten to %v", got)
	}
}
