package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/payout"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionInput struct {
	MentorID    int64
	SessionType string
	Date        string
	StartTime   string
	EndTime     string
	Rate        int64
	Status      string
	Notes       *string
}

type SessionService struct {
	db          *pgxpool.Pool
	sessionRepo *repository.SessionRepository
	mentorRepo  *repository.MentorRepository
	invalidator DashboardInvalidator
}

func NewSessionService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	mentorRepo *repository.MentorRepository,
	invalidator DashboardInvalidator,
) *SessionService {
	return &SessionService{
		db:          db,
		sessionRepo: sessionRepo,
		mentorRepo:  mentorRepo,
		invalidator: invalidatorOrNop(invalidator),
	}
}

func (s *SessionService) ListSessions(
	ctx context.Context,
	actor Actor,
	filter repository.SessionListFilter,
) ([]models.Session, int, error) {
	if actor.IsMentor() {
		mentorID, err := mentorIDForActor(ctx, s.mentorRepo, actor)
		if err != nil {
			return nil, 0, err
		}
		filter.MentorID = mentorID
	} else if !actor.IsAdmin() {
		return nil, 0, ErrForbidden
	}

	if err := validateSessionFilter(filter); err != nil {
		return nil, 0, err
	}
	return s.sessionRepo.List(ctx, filter)
}

func (s *SessionService) GetSession(ctx context.Context, actor Actor, sessionID int64) (*models.Session, error) {
	if actor.IsAdmin() {
		return s.sessionRepo.GetByID(ctx, sessionID)
	}
	mentorID, err := mentorIDForActor(ctx, s.mentorRepo, actor)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.GetByIDForMentor(ctx, sessionID, mentorID)
}

func (s *SessionService) CreateSession(ctx context.Context, input SessionInput) (*models.Session, error) {
	normalized, err := normalizeSessionInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureMentor(ctx, normalized.MentorID); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.Create(ctx, normalized)
	if err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, session.MentorID)
	return session, nil
}

// UpdateSession replaces the session. While an active payout covers the session its
// mentor, type, rate, date and status are frozen.
func (s *SessionService) UpdateSession(ctx context.Context, sessionID int64, input SessionInput) (*models.Session, error) {
	normalized, err := normalizeSessionInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureMentor(ctx, normalized.MentorID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txPayoutRepo := repository.NewPayoutRepository(tx)

	locked, err := txSessionRepo.ListByIDsForUpdate(ctx, []int64{sessionID})
	if err != nil {
		return nil, err
	}
	if len(locked) == 0 {
		return nil, pgx.ErrNoRows
	}
	current := locked[0]

	active, err := txPayoutRepo.ActiveSessionIDs(ctx, []int64{sessionID})
	if err != nil {
		return nil, err
	}
	if len(active) > 0 && payoutFieldsChanged(current, normalized) {
		return nil, ErrSessionLocked
	}

	updated, err := txSessionRepo.Update(ctx, sessionID, repository.UpdateSessionInput(normalized))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, current.MentorID, updated.MentorID)
	return updated, nil
}

// DeleteSession refuses sessions that any payout still lists.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)

	locked, err := txSessionRepo.ListByIDsForUpdate(ctx, []int64{sessionID})
	if err != nil {
		return err
	}
	if len(locked) == 0 {
		return pgx.ErrNoRows
	}

	referenced, err := txSessionRepo.IsReferencedByPayout(ctx, sessionID)
	if err != nil {
		return err
	}
	if referenced {
		return ErrSessionLocked
	}
	if err := txSessionRepo.Delete(ctx, sessionID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.invalidator.Invalidate(ctx, locked[0].MentorID)
	return nil
}

func (s *SessionService) ListAvailableSessions(ctx context.Context, mentorID int64) ([]models.Session, error) {
	if err := s.ensureMentor(ctx, mentorID); err != nil {
		return nil, err
	}
	return s.sessionRepo.ListAvailableForPayout(ctx, mentorID)
}

func (s *SessionService) ensureMentor(ctx context.Context, mentorID int64) error {
	if _, err := s.mentorRepo.GetByID(ctx, mentorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMentorNotFound
		}
		return err
	}
	return nil
}

func payoutFieldsChanged(current models.Session, next repository.CreateSessionInput) bool {
	return current.MentorID != next.MentorID ||
		current.SessionType != next.SessionType ||
		current.Rate != next.Rate ||
		current.Date != next.Date ||
		current.Status != next.Status
}

func normalizeSessionInput(input SessionInput) (repository.CreateSessionInput, error) {
	if input.MentorID <= 0 || input.Rate <= 0 || input.Rate > payout.MaxSessionRate {
		return repository.CreateSessionInput{}, ErrInvalidInput
	}

	sessionType := strings.ToLower(strings.TrimSpace(input.SessionType))
	if !payout.KnownSessionType(sessionType) {
		return repository.CreateSessionInput{}, ErrInvalidInput
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status == "" {
		status = models.SessionStatusScheduled
	}
	if !validSessionStatus(status) {
		return repository.CreateSessionInput{}, ErrInvalidStatus
	}

	date := strings.TrimSpace(input.Date)
	if !validDate(date) {
		return repository.CreateSessionInput{}, ErrInvalidInput
	}

	duration, err := sessionDuration(input.StartTime, input.EndTime)
	if err != nil {
		return repository.CreateSessionInput{}, err
	}

	return repository.CreateSessionInput{
		MentorID:        input.MentorID,
		SessionType:     sessionType,
		Date:            date,
		StartTime:       strings.TrimSpace(input.StartTime),
		EndTime:         strings.TrimSpace(input.EndTime),
		DurationMinutes: duration,
		Rate:            input.Rate,
		Status:          status,
		Notes:           trimmedOrNil(input.Notes),
	}, nil
}

// sessionDuration returns the minutes between two HH:MM clock times on the same day.
func sessionDuration(startTime, endTime string) (int, error) {
	start, err := time.Parse(models.ClockLayout, strings.TrimSpace(startTime))
	if err != nil {
		return 0, ErrInvalidInput
	}
	end, err := time.Parse(models.ClockLayout, strings.TrimSpace(endTime))
	if err != nil {
		return 0, ErrInvalidInput
	}
	if !end.After(start) {
		return 0, ErrInvalidInput
	}
	return int(end.Sub(start) / time.Minute), nil
}

func validateSessionFilter(filter repository.SessionListFilter) error {
	if filter.SessionType != "" && !payout.KnownSessionType(filter.SessionType) {
		return ErrInvalidInput
	}
	if filter.Status != "" && !validSessionStatus(filter.Status) {
		return ErrInvalidStatus
	}
	if filter.From != "" && !validDate(filter.From) {
		return ErrInvalidInput
	}
	if filter.To != "" && !validDate(filter.To) {
		return ErrInvalidInput
	}
	return nil
}

func validSessionStatus(status string) bool {
	switch status {
	case models.SessionStatusScheduled, models.SessionStatusCompleted, models.SessionStatusCancelled:
		return true
	default:
		return false
	}
}

func validDate(value string) bool {
	_, err := time.Parse(models.DateLayout, value)
	return err == nil
}
