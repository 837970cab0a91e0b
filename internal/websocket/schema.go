package websocket

// Event discriminates server-to-client monitor messages.
type Event string

const (
	EventEnrolled Event = "enrolled"
	EventSnapshot Event = "snapshot"
	EventError    Event = "error"
)

// EnrollmentEvent is published whenever a student joins a course roster.
// The same shape doubles as the initial snapshot (empty Email).
type EnrollmentEvent struct {
	Event     Event  `json:"event"`
	CourseID  int    `json:"course_id"`
	Email     string `json:"email,omitempty"`
	Enrolled  int    `json:"enrolled"`
	Capacity  int    `json:"capacity"`
	SeatsLeft int    `json:"seats_left"`
	At        string `json:"at"`
}

// ErrorEvent is sent before the server closes a misbehaving stream.
type ErrorEvent struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
