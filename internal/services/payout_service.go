package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhishekjoshi1998/EduPayout/internal/metrics"
	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/payout"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ratesProvider interface {
	CurrentRates(ctx context.Context) (payout.Rates, error)
}

type PayoutStatusUpdate struct {
	Status      string
	PaymentDate *string
	Message     *string
}

type PayoutService struct {
	db          *pgxpool.Pool
	payoutRepo  *repository.PayoutRepository
	sessionRepo *repository.SessionRepository
	mentorRepo  *repository.MentorRepository
	rates       ratesProvider
	invalidator DashboardInvalidator
	now         func() time.Time
}

func NewPayoutService(
	db *pgxpool.Pool,
	payoutRepo *repository.PayoutRepository,
	sessionRepo *repository.SessionRepository,
	mentorRepo *repository.MentorRepository,
	rates ratesProvider,
	invalidator DashboardInvalidator,
) *PayoutService {
	return &PayoutService{
		db:          db,
		payoutRepo:  payoutRepo,
		sessionRepo: sessionRepo,
		mentorRepo:  mentorRepo,
		rates:       rates,
		invalidator: invalidatorOrNop(invalidator),
		now:         time.Now,
	}
}

// PreviewPayout calculates the payout for the selection without storing anything.
func (s *PayoutService) PreviewPayout(ctx context.Context, sessionIDs []int64) (*payout.Result, error) {
	if err := checkSelection(sessionIDs); err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListByIDs(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}
	return s.calculate(ctx, s.payoutRepo, sessionIDs, sessions)
}

// CreatePayout locks the selected sessions, calculates the payout and stores it as pending.
func (s *PayoutService) CreatePayout(ctx context.Context, sessionIDs []int64) (*models.Payout, error) {
	if err := checkSelection(sessionIDs); err != nil {
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

	sessions, err := txSessionRepo.ListByIDsForUpdate(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}
	result, err := s.calculate(ctx, txPayoutRepo, sessionIDs, sessions)
	if err != nil {
		return nil, err
	}

	created, err := txPayoutRepo.Create(ctx, result.Payout())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.PayoutsCreated.Inc()
	metrics.PayoutAmountCreated.Add(float64(created.FinalAmount))
	s.invalidator.Invalidate(ctx, created.MentorID)
	return created, nil
}

type activeSessionFinder interface {
	ActiveSessionIDs(ctx context.Context, sessionIDs []int64) ([]int64, error)
}

func (s *PayoutService) calculate(
	ctx context.Context,
	finder activeSessionFinder,
	sessionIDs []int64,
	sessions []models.Session,
) (*payout.Result, error) {
	if len(sessions) != len(sessionIDs) {
		return nil, fmt.Errorf("%w: unknown session in selection", ErrInvalidInput)
	}

	active, err := finder.ActiveSessionIDs(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return nil, fmt.Errorf("%w: session %d", ErrSessionLocked, active[0])
	}

	rates, err := s.rates.CurrentRates(ctx)
	if err != nil {
		return nil, err
	}
	return payout.Calculate(sessions, rates)
}

func (s *PayoutService) ListPayouts(
	ctx context.Context,
	actor Actor,
	filter repository.PayoutListFilter,
) ([]models.Payout, int, *models.PayoutSummary, error) {
	var summary *models.PayoutSummary
	if actor.IsMentor() {
		mentorID, err := mentorIDForActor(ctx, s.mentorRepo, actor)
		if err != nil {
			return nil, 0, nil, err
		}
		filter.MentorID = mentorID
		filter.SearchStatus = true

		totals, err := s.payoutRepo.Summary(ctx, mentorID)
		if err != nil {
			return nil, 0, nil, err
		}
		summary = &totals
	} else if !actor.IsAdmin() {
		return nil, 0, nil, ErrForbidden
	}

	if filter.Status != "" && !payout.KnownStatus(filter.Status) {
		return nil, 0, nil, ErrInvalidStatus
	}
	if (filter.From != "" && !validDate(filter.From)) || (filter.To != "" && !validDate(filter.To)) {
		return nil, 0, nil, ErrInvalidInput
	}

	payouts, total, err := s.payoutRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, nil, err
	}
	return payouts, total, summary, nil
}

func (s *PayoutService) GetPayout(ctx context.Context, actor Actor, payoutID int64) (*models.Payout, error) {
	if actor.IsAdmin() {
		return s.payoutRepo.GetByID(ctx, payoutID)
	}
	mentorID, err := mentorIDForActor(ctx, s.mentorRepo, actor)
	if err != nil {
		return nil, err
	}
	return s.payoutRepo.GetByIDForMentor(ctx, payoutID, mentorID)
}

// UpdatePayoutStatus applies one lifecycle step. Marking a payout paid stamps the
// payment date and issues its receipt in the same transaction.
func (s *PayoutService) UpdatePayoutStatus(
	ctx context.Context,
	payoutID int64,
	update PayoutStatusUpdate,
) (*models.Payout, error) {
	nextStatus := strings.ToLower(strings.TrimSpace(update.Status))
	if !payout.KnownStatus(nextStatus) {
		return nil, ErrInvalidStatus
	}
	today := s.now().UTC().Format(models.DateLayout)
	paymentDate := today
	if update.PaymentDate != nil && strings.TrimSpace(*update.PaymentDate) != "" {
		paymentDate = strings.TrimSpace(*update.PaymentDate)
		if !validDate(paymentDate) {
			return nil, ErrInvalidInput
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPayoutRepo := repository.NewPayoutRepository(tx)
	txReceiptRepo := repository.NewReceiptRepository(tx)

	current, err := txPayoutRepo.GetByIDForUpdate(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if !payout.CanTransition(current.Status, nextStatus) {
		return nil, ErrInvalidStateTransition
	}

	var updated *models.Payout
	if nextStatus == models.PayoutStatusPaid {
		receiptID := uuid.NewString()
		updated, err = txPayoutRepo.MarkPaid(ctx, payoutID, current.Status, paymentDate, receiptID)
		if err != nil {
			return nil, transitionError(err)
		}
		if _, err := txReceiptRepo.Create(ctx, repository.CreateReceiptInput{
			ID:        receiptID,
			PayoutID:  payoutID,
			MentorID:  current.MentorID,
			IssueDate: today,
			Message:   trimmedOrNil(update.Message),
		}); err != nil {
			return nil, err
		}
	} else {
		updated, err = txPayoutRepo.UpdateStatusIfCurrent(ctx, payoutID, current.Status, nextStatus)
		if err != nil {
			return nil, transitionError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.PayoutTransitions.WithLabelValues(nextStatus).Inc()
	if nextStatus == models.PayoutStatusPaid {
		metrics.ReceiptsIssued.Inc()
	}
	s.invalidator.Invalidate(ctx, updated.MentorID)
	return updated, nil
}

func checkSelection(sessionIDs []int64) error {
	if len(sessionIDs) == 0 {
		return payout.ErrNoSessions
	}
	seen := make(map[int64]struct{}, len(sessionIDs))
	for _, id := range sessionIDs {
		if id <= 0 {
			return ErrInvalidInput
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %d", payout.ErrDuplicateSession, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func transitionError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrInvalidStateTransition
	}
	return err
}
