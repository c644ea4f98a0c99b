package repository

import (
	"context"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
)

type CreateMessageInput struct {
	MentorID   int64
	SenderID   int64
	SenderName string
	SenderRole string
	Content    string
}

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, input CreateMessageInput) (*models.ChatMessage, error) {
	query := `
		INSERT INTO messages (mentor_id, sender_id, sender_name, sender_role, content, is_read)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id, mentor_id, sender_id, sender_name, sender_role, content, is_read, created_at
	`

	var message models.ChatMessage
	err := r.db.QueryRow(ctx, query,
		input.MentorID,
		input.SenderID,
		input.SenderName,
		input.SenderRole,
		input.Content,
	).Scan(
		&message.ID,
		&message.MentorID,
		&message.SenderID,
		&message.SenderName,
		&message.SenderRole,
		&message.Content,
		&message.IsRead,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &message, nil
}

func (r *MessageRepository) ListByMentor(
	ctx context.Context,
	mentorID int64,
	limit int,
	offset int,
) ([]models.ChatMessage, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE mentor_id = $1`, mentorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, mentor_id, sender_id, sender_name, sender_role, content, is_read, created_at
		FROM messages
		WHERE mentor_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, mentorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var message models.ChatMessage
		if err := rows.Scan(
			&message.ID,
			&message.MentorID,
			&message.SenderID,
			&message.SenderName,
			&message.SenderRole,
			&message.Content,
			&message.IsRead,
			&message.CreatedAt,
		); err != nil {
			return nil, 0, err
		}

		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// MarkReadFromRole marks the thread's unread messages written by the other side as read.
func (r *MessageRepository) MarkReadFromRole(
	ctx context.Context,
	mentorID int64,
	senderRole string,
	messageIDs []int64,
) error {
	if len(messageIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		UPDATE messages
		SET is_read = TRUE
		WHERE mentor_id = $1
		  AND sender_role = $2
		  AND id = ANY($3)
		  AND is_read = FALSE
	`, mentorID, senderRole, messageIDs)
	return err
}
