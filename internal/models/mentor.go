package models

import "time"

const (
	MentorStatusActive   = "active"
	MentorStatusInactive = "inactive"
)

type Mentor struct {
	ID             int64     `json:"id"`
	UserID         *int64    `json:"user_id,omitempty"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          *string   `json:"phone"`
	AvatarURL      *string   `json:"avatar"`
	JoinedDate     string    `json:"joined_date"`
	Specialization string    `json:"specialization"`
	HourlyRate     int64     `json:"hourly_rate"`
	TotalSessions  int       `json:"total_sessions"`
	TotalEarnings  int64     `json:"total_earnings"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
