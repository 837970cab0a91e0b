package repository

import (
	"context"

	"github.com/courseboard/courseboard/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRepository handles course data access. The roster lives in a
// TEXT[] column, so enrollment order is the array order.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// GetByID retrieves a course by its ID.
func (r *CourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, instructor, capacity, enrolled, created_at, updated_at
		 FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Instructor, &c.Capacity, &c.Enrolled, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List retrieves all courses in creation order.
func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, instructor, capacity, enrolled, created_at, updated_at
		 FROM courses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Instructor, &c.Capacity, &c.Enrolled, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Create inserts a new course with an empty roster.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	if c.Enrolled == nil {
		c.Enrolled = []string{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, instructor, capacity, enrolled)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		c.Title, c.Instructor, c.Capacity, c.Enrolled,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update modifies a course's title, instructor and capacity. The capacity
// guard runs in the same statement so a roster grown by a concurrent
// enrollment can never end up above the new capacity. Returns the number
// of rows updated.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses
		 SET title = $1, instructor = $2, capacity = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4 AND cardinality(enrolled) <= $3`,
		c.Title, c.Instructor, c.Capacity, c.ID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Enroll appends email to the roster as one conditional update: the row
// only changes when the email is absent and a seat is free. Returns the
// updated course, or pgx.ErrNoRows when no row matched; the caller
// classifies why.
func (r *CourseRepository) Enroll(ctx context.Context, id int, email string) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx,
		`UPDATE courses
		 SET enrolled = array_append(enrolled, $2), updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1
		   AND NOT ($2 = ANY(enrolled))
		   AND cardinality(enrolled) < capacity
		 RETURNING id, title, instructor, capacity, enrolled, created_at, updated_at`,
		id, email,
	).Scan(&c.ID, &c.Title, &c.Instructor, &c.Capacity, &c.Enrolled, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a course by its ID.
func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return err
}
