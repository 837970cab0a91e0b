package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/courseboard/courseboard/internal/config"
	"github.com/courseboard/courseboard/internal/model"
	"github.com/courseboard/courseboard/internal/repository"
	"github.com/courseboard/courseboard/internal/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors for course operations.
var (
	ErrCourseNotFound        = errors.New("course not found")
	ErrCourseFull            = errors.New("course is full")
	ErrAlreadyEnrolled       = errors.New("already enrolled in this course")
	ErrCapacityBelowEnrolled = errors.New("capacity below enrolled count")
)

// enrollAttempts bounds the classify-and-retry loop in Enroll. The
// conditional update itself is atomic; retries only cover the window
// between a failed update and its classification read.
const enrollAttempts = 3

// CourseService handles course business logic and publishes roster
// changes to the per-course monitor channel.
type CourseService struct {
	courseRepo *repository.CourseRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(courseRepo *repository.CourseRepository, rdb *redis.Client, log zerolog.Logger) *CourseService {
	return &CourseService{courseRepo: courseRepo, rdb: rdb, log: log}
}

// GetByID retrieves a course by its ID.
func (s *CourseService) GetByID(ctx context.Context, id int) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// List retrieves all courses.
func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

// Create inserts a new course with an empty roster.
func (s *CourseService) Create(ctx context.Context, course *model.Course) error {
	return s.courseRepo.Create(ctx, course)
}

// Update modifies title, instructor and capacity. Capacity may not drop
// below the current roster size; the repository enforces the guard in the
// same statement as the write.
func (s *CourseService) Update(ctx context.Context, course *model.Course) (*model.Course, error) {
	rows, err := s.courseRepo.Update(ctx, course)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// No row changed: either the course is gone or the guard fired.
		if _, err := s.GetByID(ctx, course.ID); err != nil {
			return nil, err
		}
		return nil, ErrCapacityBelowEnrolled
	}
	return s.GetByID(ctx, course.ID)
}

// Delete removes a course by its ID.
func (s *CourseService) Delete(ctx context.Context, id int) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.courseRepo.Delete(ctx, id)
}

// Enroll adds email to the course roster. The append is a single
// conditional update, so the capacity and no-duplicate invariants hold
// under concurrent enrollments; when it matches no row, a fresh read
// classifies the rejection.
func (s *CourseService) Enroll(ctx context.Context, id int, email string) (*model.Course, error) {
	for attempt := 0; attempt < enrollAttempts; attempt++ {
		course, err := s.courseRepo.Enroll(ctx, id, email)
		if err == nil {
			s.publishEnrollment(ctx, course, email)
			return course, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		course, err = s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if course.HasStudent(email) {
			return nil, ErrAlreadyEnrolled
		}
		if course.SeatsLeft() <= 0 {
			return nil, ErrCourseFull
		}
		// The roster moved between the update and the read; try again.
	}
	return nil, ErrCourseFull
}

// publishEnrollment pushes a roster-change event to the course monitor
// channel. Monitoring is best effort; failures are logged, not returned.
func (s *CourseService) publishEnrollment(ctx context.Context, course *model.Course, email string) {
	event := websocket.EnrollmentEvent{
		Event:     websocket.EventEnrolled,
		CourseID:  course.ID,
		Email:     email,
		Enrolled:  len(course.Enrolled),
		Capacity:  course.Capacity,
		SeatsLeft: course.SeatsLeft(),
		At:        time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Warn().Err(err).Int("course_id", course.ID).Msg("Marshal enrollment event failed")
		return
	}
	channel := config.CacheKey.CourseMonitorChannel(course.ID)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("Publish enrollment event failed")
	}
}
