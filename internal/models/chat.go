package models

import "time"

type ChatMessage struct {
	ID         int64     `json:"id"`
	MentorID   int64     `json:"mentor_id"`
	SenderID   int64     `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole string    `json:"sender_role"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"timestamp"`
}

type ChatThread struct {
	MentorID     int64        `json:"mentor_id"`
	MentorName   string       `json:"mentor_name"`
	MentorAvatar *string      `json:"mentor_avatar,omitempty"`
	LastMessage  *ChatMessage `json:"last_message,omitempty"`
	UnreadCount  int          `json:"unread_count"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
