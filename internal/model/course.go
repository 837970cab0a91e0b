package model

import "time"

// Course represents a course offering. Enrolled holds student emails in
// enrollment order and may never exceed Capacity.
type Course struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Instructor string    `json:"instructor"`
	Capacity   int       `json:"capacity"`
	Enrolled   []string  `json:"enrolled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SeatsLeft returns the number of open seats on the course.
func (c *Course) SeatsLeft() int {
	return c.Capacity - len(c.Enrolled)
}

// HasStudent reports whether the given email is already on the roster.
func (c *Course) HasStudent(email string) bool {
	for _, e := range c.Enrolled {
		if e == email {
			return true
		}
	}
	return false
}

// CourseRequest is the payload for creating or updating a course.
// The roster is never written through this payload; enrollment has its
// own endpoint.
type CourseRequest struct {
	Title      string `json:"title" binding:"required,min=2,max=200"`
	Instructor string `json:"instructor" binding:"required,min=2,max=100"`
	Capacity   int    `json:"capacity" binding:"required,min=1"`
}
