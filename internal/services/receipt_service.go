package services

import (
	"context"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/jackc/pgx/v5"
)

var receiptStatusOrder = map[string]int{
	models.ReceiptStatusIssued:     0,
	models.ReceiptStatusViewed:     1,
	models.ReceiptStatusDownloaded: 2,
}

type ReceiptService struct {
	receiptRepo *repository.ReceiptRepository
	payoutRepo  *repository.PayoutRepository
	sessionRepo *repository.SessionRepository
	mentorRepo  *repository.MentorRepository
}

func NewReceiptService(
	receiptRepo *repository.ReceiptRepository,
	payoutRepo *repository.PayoutRepository,
	sessionRepo *repository.SessionRepository,
	mentorRepo *repository.MentorRepository,
) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		payoutRepo:  payoutRepo,
		sessionRepo: sessionRepo,
		mentorRepo:  mentorRepo,
	}
}

func (s *ReceiptService) ListReceipts(
	ctx context.Context,
	filter repository.ReceiptListFilter,
) ([]models.ReceiptRecord, int, error) {
	if _, ok := receiptStatusOrder[filter.Status]; filter.Status != "" && !ok {
		return nil, 0, ErrInvalidStatus
	}
	return s.receiptRepo.List(ctx, filter)
}

// GetReceipt builds the receipt view. A mentor opening their own receipt marks it viewed.
func (s *ReceiptService) GetReceipt(ctx context.Context, actor Actor, receiptID string) (*models.Receipt, error) {
	return s.open(ctx, actor, receiptID, models.ReceiptStatusViewed)
}

// PrintReceipt is GetReceipt for the printable copy; a mentor printing marks it downloaded.
func (s *ReceiptService) PrintReceipt(ctx context.Context, actor Actor, receiptID string) (*models.Receipt, error) {
	return s.open(ctx, actor, receiptID, models.ReceiptStatusDownloaded)
}

func (s *ReceiptService) open(ctx context.Context, actor Actor, receiptID string, mentorStatus string) (*models.Receipt, error) {
	record, err := s.receiptRepo.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		mentorID, err := mentorIDForActor(ctx, s.mentorRepo, actor)
		if err != nil {
			return nil, err
		}
		if record.MentorID != mentorID {
			return nil, pgx.ErrNoRows
		}
		if receiptStatusOrder[mentorStatus] > receiptStatusOrder[record.Status] {
			if err := s.receiptRepo.AdvanceStatus(ctx, record.ID, mentorStatus); err != nil {
				return nil, err
			}
			record.Status = mentorStatus
		}
	}

	paid, err := s.payoutRepo.GetByID(ctx, record.PayoutID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListByIDs(ctx, paid.SessionIDs)
	if err != nil {
		return nil, err
	}

	return buildReceipt(*record, *paid, sessions), nil
}

func buildReceipt(record models.ReceiptRecord, paid models.Payout, sessions []models.Session) *models.Receipt {
	return &models.Receipt{
		ID:          record.ID,
		PayoutID:    paid.ID,
		MentorID:    record.MentorID,
		MentorName:  record.MentorName,
		IssueDate:   record.IssueDate,
		PaymentDate: paid.PaymentDate,
		DateRange:   paid.DateRange,
		Sessions:    sessions,
		BasePayout:  paid.BasePayout,
		Breakdown:   paid.Breakdown,
		Taxes:       paid.Taxes,
		PlatformFee: paid.PlatformFee,
		FinalAmount: paid.FinalAmount,
		Status:      record.Status,
		Message:     record.Message,
	}
}
