package model

// User is a directory entry looked up by PS code.
type User struct {
	PSCode     string `json:"psCode"`
	Name       string `json:"name"`
	Position   string `json:"position"`
	Department string `json:"department"`
}

// AttendanceRecord is one person attending one event.
// Points and Date as stored on the row are informational only; the pipeline
// resolves both from the joined event.
type AttendanceRecord struct {
	Name       string  `json:"name"`
	Position   string  `json:"position"`
	Department string  `json:"department"`
	Event      string  `json:"event"`
	Points     float64 `json:"points"`
	Date       string  `json:"date"`
	Timestamp  string  `json:"timestamp"`
}

// EventEntry is one retained attendance inside a participant summary.
type EventEntry struct {
	EventName string  `json:"eventName"`
	Date      string  `json:"date"`
	Points    float64 `json:"points"`
	Timestamp string  `json:"timestamp"`
}

// ParticipantSummary is derived per participant and never persisted.
type ParticipantSummary struct {
	Name            string       `json:"name"`
	Position        string       `json:"position"`
	Department      string       `json:"department"`
	AttendanceCount int          `json:"attendanceCount"`
	TotalPoints     float64      `json:"totalPoints"`
	Events          []EventEntry `json:"events"`
	LastAttendance  string       `json:"lastAttendance,omitempty"`
}

// DetailedRecord is a filtered attendance row with its resolved points and date.
type DetailedRecord struct {
	AttendanceRecord
	EventPoints float64 `json:"eventPoints"`
	EventDate   string  `json:"eventDate"`
}

// Submission is the payload sent to the backend when recording attendance.
type Submission struct {
	Name       string `json:"name"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Event      string `json:"event"`
	Points     int    `json:"points"`
	Date       string `json:"date"`
}
