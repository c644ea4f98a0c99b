package repository

import (
	"context"
	"database/sql"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
)

type ThreadRepository struct {
	db DBTX
}

func NewThreadRepository(db DBTX) *ThreadRepository {
	return &ThreadRepository{db: db}
}

// ListForAdmin returns one thread per mentor that has at least one message.
func (r *ThreadRepository) ListForAdmin(ctx context.Context) ([]models.ChatThread, error) {
	query := `
		SELECT
			m.id,
			m.name,
			m.avatar_url,
			lm.id,
			lm.sender_id,
			lm.sender_name,
			lm.sender_role,
			lm.content,
			lm.is_read,
			lm.created_at,
			COALESCE(uc.unread_count, 0)
		FROM mentors m
		JOIN LATERAL (
			SELECT id, sender_id, sender_name, sender_role, content, is_read, created_at
			FROM messages
			WHERE mentor_id = m.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS unread_count
			FROM messages
			WHERE mentor_id = m.id
			  AND sender_role = 'mentor'
			  AND is_read = FALSE
		) uc ON TRUE
		ORDER BY lm.created_at DESC, m.id DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	threads := make([]models.ChatThread, 0)
	for rows.Next() {
		var thread models.ChatThread
		var messageID sql.NullInt64
		var messageSenderID sql.NullInt64
		var messageSenderName sql.NullString
		var messageSenderRole sql.NullString
		var messageContent sql.NullString
		var messageIsRead sql.NullBool
		var messageCreatedAt sql.NullTime

		if err := rows.Scan(
			&thread.MentorID,
			&thread.MentorName,
			&thread.MentorAvatar,
			&messageID,
			&messageSenderID,
			&messageSenderName,
			&messageSenderRole,
			&messageContent,
			&messageIsRead,
			&messageCreatedAt,
			&thread.UnreadCount,
		); err != nil {
			return nil, err
		}

		if messageID.Valid {
			thread.LastMessage = &models.ChatMessage{
				ID:         messageID.Int64,
				MentorID:   thread.MentorID,
				SenderID:   messageSenderID.Int64,
				SenderName: messageSenderName.String,
				SenderRole: messageSenderRole.String,
				Content:    messageContent.String,
				IsRead:     messageIsRead.Bool,
				CreatedAt:  messageCreatedAt.Time,
			}
			thread.UpdatedAt = messageCreatedAt.Time
		}

		threads = append(threads, thread)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return threads, nil
}
