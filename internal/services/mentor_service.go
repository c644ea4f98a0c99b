package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxAvatarBytes = 2 << 20

var allowedAvatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type mentorByUserReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Mentor, error)
}

// mentorIDForActor resolves the mentor record that a mentor login acts for.
func mentorIDForActor(ctx context.Context, reader mentorByUserReader, actor Actor) (int64, error) {
	if !actor.IsMentor() {
		return 0, ErrForbidden
	}
	mentor, err := reader.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrMentorNotFound
		}
		return 0, err
	}
	return mentor.ID, nil
}

type CreateMentorInput struct {
	Name           string
	Email          string
	Phone          *string
	AvatarURL      *string
	Specialization string
	HourlyRate     int64
}

type MentorProfileInput struct {
	Name           *string
	Phone          *string
	Specialization *string
}

type MentorService struct {
	db          *pgxpool.Pool
	mentorRepo  *repository.MentorRepository
	storage     StorageService
	invalidator DashboardInvalidator
}

func NewMentorService(
	db *pgxpool.Pool,
	mentorRepo *repository.MentorRepository,
	storage StorageService,
	invalidator DashboardInvalidator,
) *MentorService {
	if storage == nil {
		storage = DisabledStorage{}
	}
	return &MentorService{
		db:          db,
		mentorRepo:  mentorRepo,
		storage:     storage,
		invalidator: invalidatorOrNop(invalidator),
	}
}

func (s *MentorService) ListMentors(ctx context.Context, filter repository.MentorListFilter) ([]models.Mentor, int, error) {
	if filter.Status != "" && !validMentorStatus(filter.Status) {
		return nil, 0, ErrInvalidStatus
	}
	return s.mentorRepo.List(ctx, filter)
}

func (s *MentorService) GetMentor(ctx context.Context, mentorID int64) (*models.Mentor, error) {
	return s.mentorRepo.GetByID(ctx, mentorID)
}

func (s *MentorService) CreateMentor(ctx context.Context, input CreateMentorInput) (*models.Mentor, error) {
	name := strings.TrimSpace(input.Name)
	email, err := normalizeEmail(input.Email)
	if err != nil || name == "" || input.HourlyRate < 0 {
		return nil, ErrInvalidInput
	}

	mentor, err := s.mentorRepo.Create(ctx, repository.CreateMentorInput{
		Name:           name,
		Email:          email,
		Phone:          trimmedOrNil(input.Phone),
		AvatarURL:      trimmedOrNil(input.AvatarURL),
		Specialization: strings.TrimSpace(input.Specialization),
		HourlyRate:     input.HourlyRate,
	})
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	s.invalidator.Invalidate(ctx)
	return mentor, nil
}

func (s *MentorService) UpdateMentor(
	ctx context.Context,
	mentorID int64,
	input repository.UpdateMentorInput,
) (*models.Mentor, error) {
	if err := validateMentorUpdate(&input); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	mentor, err := repository.NewMentorRepository(tx).UpdatePartial(ctx, mentorID, input)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	if mentor.UserID != nil && (input.Name != nil || input.AvatarURL != nil) {
		if err := repository.NewUserRepository(tx).UpdateProfile(ctx, *mentor.UserID, input.Name, input.AvatarURL); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, mentor.ID)
	return mentor, nil
}

func (s *MentorService) DeleteMentor(ctx context.Context, mentorID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMentorRepo := repository.NewMentorRepository(tx)
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", mentorID); err != nil {
		return err
	}
	hasDependents, err := txMentorRepo.HasDependents(ctx, mentorID)
	if err != nil {
		return err
	}
	if hasDependents {
		return ErrMentorHasDependents
	}
	if err := txMentorRepo.Delete(ctx, mentorID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.invalidator.Invalidate(ctx, mentorID)
	return nil
}

func (s *MentorService) GetProfile(ctx context.Context, actor Actor) (*models.Mentor, error) {
	mentorID, err := mentorIDForActor(ctx, s.mentorRepo, actor)
	if err != nil {
		return nil, err
	}
	return s.mentorRepo.GetByID(ctx, mentorID)
}

func (s *MentorService) UpdateProfile(ctx context.Context, actor Actor, input MentorProfileInput) (*models.Mentor, error) {
	mentorID, err := mentorIDForActor(ctx, s.mentorRepo, actor)
	if err != nil {
		return nil, err
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, ErrInvalidInput
	}
	return s.UpdateMentor(ctx, mentorID, repository.UpdateMentorInput{
		Name:           trimmedOrNil(input.Name),
		Phone:          trimmedOrNil(input.Phone),
		Specialization: trimmedPtr(input.Specialization),
	})
}

// UploadAvatar stores the image and points the mentor and their login at it. The
// previous image is removed on a best-effort basis.
func (s *MentorService) UploadAvatar(
	ctx context.Context,
	actor Actor,
	file multipart.File,
	filename string,
	size int64,
) (*models.Mentor, error) {
	mentorID, err := mentorIDForActor(ctx, s.mentorRepo, actor)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedAvatarExtensions[ext] || size <= 0 || size > maxAvatarBytes {
		return nil, ErrInvalidInput
	}

	current, err := s.mentorRepo.GetByID(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("%d-%d%s", mentorID, time.Now().UnixNano(), ext)
	avatarURL, err := s.storage.UploadFile(ctx, file, objectName, "avatars")
	if err != nil {
		return nil, err
	}

	updated, err := s.UpdateMentor(ctx, mentorID, repository.UpdateMentorInput{AvatarURL: &avatarURL})
	if err != nil {
		return nil, err
	}

	if current.AvatarURL != nil && *current.AvatarURL != "" {
		if err := s.storage.DeleteFile(ctx, *current.AvatarURL); err != nil {
			log.Printf("avatar cleanup for mentor %d: %v", mentorID, err)
		}
	}
	return updated, nil
}

func validateMentorUpdate(input *repository.UpdateMentorInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return ErrInvalidInput
		}
		input.Name = &name
	}
	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return ErrInvalidInput
		}
		input.Email = &email
	}
	if input.Status != nil && !validMentorStatus(*input.Status) {
		return ErrInvalidStatus
	}
	if input.HourlyRate != nil && *input.HourlyRate < 0 {
		return ErrInvalidInput
	}
	if input.TotalSessions != nil && *input.TotalSessions < 0 {
		return ErrInvalidInput
	}
	if input.TotalEarnings != nil && *input.TotalEarnings < 0 {
		return ErrInvalidInput
	}
	input.Phone = trimmedPtr(input.Phone)
	input.Specialization = trimmedPtr(input.Specialization)
	return nil
}

func validMentorStatus(status string) bool {
	return status == models.MentorStatusActive || status == models.MentorStatusInactive
}

func normalizeEmail(raw string) (string, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(parsed.Address), nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

// trimmedOrNil trims the value and drops it when nothing is left.
func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
