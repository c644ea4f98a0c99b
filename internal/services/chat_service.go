package services

import (
	"context"
	"errors"
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/metrics"
	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxChatMessageLength = 4000

type ChatService struct {
	db          *pgxpool.Pool
	threadRepo  *repository.ThreadRepository
	messageRepo *repository.MessageRepository
	mentorRepo  *repository.MentorRepository
	userRepo    *repository.UserRepository
}

// ChatDelivery is a stored message plus every other user that should receive it live.
type ChatDelivery struct {
	Message      *models.ChatMessage
	RecipientIDs []int64
}

func NewChatService(
	db *pgxpool.Pool,
	threadRepo *repository.ThreadRepository,
	messageRepo *repository.MessageRepository,
	mentorRepo *repository.MentorRepository,
	userRepo *repository.UserRepository,
) *ChatService {
	return &ChatService{
		db:          db,
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		mentorRepo:  mentorRepo,
		userRepo:    userRepo,
	}
}

func (s *ChatService) ListThreads(ctx context.Context, actor Actor) ([]models.ChatThread, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.threadRepo.ListForAdmin(ctx)
}

// ListMessages returns a page of the thread, newest first, and marks the other side's
// messages on that page as read. Mentors always read their own thread.
func (s *ChatService) ListMessages(
	ctx context.Context,
	actor Actor,
	mentorID int64,
	page int,
	limit int,
) ([]models.ChatMessage, int, error) {
	if page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}
	mentor, err := s.threadMentor(ctx, actor, mentorID)
	if err != nil {
		return nil, 0, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessageRepo := repository.NewMessageRepository(tx)

	messages, total, err := txMessageRepo.ListByMentor(ctx, mentor.ID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	otherRole := otherChatRole(actor.Role)
	messageIDs := make([]int64, 0, len(messages))
	for _, message := range messages {
		if message.SenderRole == otherRole {
			messageIDs = append(messageIDs, message.ID)
		}
	}

	if err := txMessageRepo.MarkReadFromRole(ctx, mentor.ID, otherRole, messageIDs); err != nil {
		return nil, 0, err
	}

	for i := range messages {
		if messages[i].SenderRole == otherRole {
			messages[i].IsRead = true
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

func (s *ChatService) SendMessage(
	ctx context.Context,
	actor Actor,
	mentorID int64,
	content string,
) (*ChatDelivery, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || len(trimmed) > maxChatMessageLength {
		return nil, ErrInvalidInput
	}

	mentor, err := s.threadMentor(ctx, actor, mentorID)
	if err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	message, err := s.messageRepo.Create(ctx, repository.CreateMessageInput{
		MentorID:   mentor.ID,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		SenderRole: sender.Role,
		Content:    trimmed,
	})
	if err != nil {
		return nil, err
	}
	metrics.ChatMessagesSent.WithLabelValues(sender.Role).Inc()

	adminIDs, err := s.userRepo.ListIDsByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	recipients := make([]int64, 0, len(adminIDs)+1)
	if mentor.UserID != nil && *mentor.UserID != sender.ID {
		recipients = append(recipients, *mentor.UserID)
	}
	for _, adminID := range adminIDs {
		if adminID != sender.ID {
			recipients = append(recipients, adminID)
		}
	}

	return &ChatDelivery{
		Message:      message,
		RecipientIDs: recipients,
	}, nil
}

func (s *ChatService) threadMentor(ctx context.Context, actor Actor, mentorID int64) (*models.Mentor, error) {
	switch {
	case actor.IsAdmin():
		if mentorID <= 0 {
			return nil, ErrInvalidInput
		}
		mentor, err := s.mentorRepo.GetByID(ctx, mentorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrMentorNotFound
			}
			return nil, err
		}
		return mentor, nil
	case actor.IsMentor():
		mentor, err := s.mentorRepo.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrMentorNotFound
			}
			return nil, err
		}
		return mentor, nil
	default:
		return nil, ErrForbidden
	}
}

func otherChatRole(role string) string {
	if role == models.RoleAdmin {
		return models.RoleMentor
	}
	return models.RoleAdmin
}
