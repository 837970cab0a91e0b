package view

import (
	"context"
	"errors"

	"github.com/courseboard/courseboard/internal/apiclient"
	"github.com/courseboard/courseboard/internal/model"
	"github.com/courseboard/courseboard/internal/session"
	"github.com/rs/zerolog"
)

// Enrollment rejections, phrased for display.
var (
	ErrAlreadyEnrolled = errors.New("You are already enrolled in this course.")
	ErrCourseFull      = errors.New("This course is already full.")
)

// Effects performs the domain actions behind the views. Each method maps
// one user intent to API and session-store calls.
type Effects struct {
	api   *apiclient.Client
	store *session.Store
	log   zerolog.Logger
}

// NewEffects creates the effect layer.
func NewEffects(api *apiclient.Client, store *session.Store, log zerolog.Logger) *Effects {
	return &Effects{
		api:   api,
		store: store,
		log:   log.With().Str("component", "effects").Logger(),
	}
}

// Login authenticates and persists the session.
func (e *Effects) Login(ctx context.Context, email, password string) error {
	_, err := e.store.Authenticate(ctx, email, password)
	return err
}

// Register creates an account and logs it in.
func (e *Effects) Register(ctx context.Context, name, email, password string) error {
	_, err := e.store.Register(ctx, name, email, password)
	return err
}

// Logout ends the session.
func (e *Effects) Logout(ctx context.Context) error {
	return e.store.EndSession(ctx)
}

// FetchCourses loads the full course list.
func (e *Effects) FetchCourses(ctx context.Context) ([]model.Course, error) {
	var out struct {
		Courses []model.Course `json:"courses"`
	}
	if err := e.api.Get(ctx, "/courses", &out); err != nil {
		return nil, err
	}
	return out.Courses, nil
}

// FetchCourse loads a single course by its raw id segment.
func (e *Effects) FetchCourse(ctx context.Context, id string) (*model.Course, error) {
	var out struct {
		Course model.Course `json:"course"`
	}
	if err := e.api.Get(ctx, "/courses/"+id, &out); err != nil {
		return nil, err
	}
	return &out.Course, nil
}

// Enroll adds the current user to a course roster. The course is fetched
// fresh first so the duplicate and capacity prechecks run against current
// data; the server repeats both checks atomically, so a double submit
// that slips past the precheck still comes back as the same rejection.
func (e *Effects) Enroll(ctx context.Context, id string) (*model.Course, error) {
	sess, err := e.store.Current()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, session.ErrInvalidCredentials
	}

	course, err := e.FetchCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.HasStudent(sess.User.Email) {
		return nil, ErrAlreadyEnrolled
	}
	if course.SeatsLeft() <= 0 {
		return nil, ErrCourseFull
	}

	var out struct {
		Course model.Course `json:"course"`
	}
	if err := e.api.Post(ctx, "/courses/"+id+"/enroll", struct{}{}, &out); err != nil {
		return nil, mapEnrollError(err)
	}
	return &out.Course, nil
}

// CreateCourse creates a course with an empty roster.
func (e *Effects) CreateCourse(ctx context.Context, title, instructor string, capacity int) error {
	payload := model.CourseRequest{Title: title, Instructor: instructor, Capacity: capacity}
	return e.api.Post(ctx, "/courses", payload, nil)
}

// UpdateCourse replaces a course's editable fields.
func (e *Effects) UpdateCourse(ctx context.Context, id, title, instructor string, capacity int) error {
	payload := model.CourseRequest{Title: title, Instructor: instructor, Capacity: capacity}
	return e.api.Put(ctx, "/courses/"+id, payload, nil)
}

// DeleteCourse removes a course.
func (e *Effects) DeleteCourse(ctx context.Context, id string) error {
	return e.api.Delete(ctx, "/courses/"+id)
}

// mapEnrollError translates the server's enrollment rejections into the
// same errors the precheck raises.
func mapEnrollError(err error) error {
	var statusErr *apiclient.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case "ALREADY_ENROLLED":
			return ErrAlreadyEnrolled
		case "COURSE_FULL":
			return ErrCourseFull
		}
	}
	return err
}
