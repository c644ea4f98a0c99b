package models

import "time"

// DateLayout is the calendar date format used on the wire and in SQL.
const DateLayout = "2006-01-02"

// ClockLayout is the wall-clock format for session start and end times.
const ClockLayout = "15:04"

const (
	SessionTypeLive       = "live"
	SessionTypeRecorded   = "recorded"
	SessionTypeEvaluation = "evaluation"
)

const (
	SessionStatusScheduled = "scheduled"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

type Session struct {
	ID              int64     `json:"id"`
	MentorID        int64     `json:"mentor_id"`
	MentorName      string    `json:"mentor_name"`
	SessionType     string    `json:"session_type"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Rate            int64     `json:"rate"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
