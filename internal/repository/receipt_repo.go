package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreateReceiptInput struct {
	ID        string
	PayoutID  int64
	MentorID  int64
	IssueDate string
	Message   *string
}

type ReceiptListFilter struct {
	MentorID int64
	Search   string
	Status   string
	Offset   int
	Limit    int
}

type ReceiptRepository struct {
	db DBTX
}

func NewReceiptRepository(db DBTX) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

const receiptSelect = `
	SELECT r.id::text, r.payout_id, r.mentor_id, m.name, r.issue_date::text, r.status, r.message,
		   r.created_at, r.updated_at
	FROM receipts r
	JOIN mentors m ON m.id = r.mentor_id
`

func scanReceipt(row pgx.Row) (*models.ReceiptRecord, error) {
	var receipt models.ReceiptRecord
	err := row.Scan(
		&receipt.ID,
		&receipt.PayoutID,
		&receipt.MentorID,
		&receipt.MentorName,
		&receipt.IssueDate,
		&receipt.Status,
		&receipt.Message,
		&receipt.CreatedAt,
		&receipt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *ReceiptRepository) Create(ctx context.Context, input CreateReceiptInput) (*models.ReceiptRecord, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO receipts (id, payout_id, mentor_id, issue_date, status, message)
		VALUES ($1::uuid, $2, $3, $4::date, 'issued', $5)
	`, input.ID, input.PayoutID, input.MentorID, input.IssueDate, input.Message)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, input.ID)
}

func (r *ReceiptRepository) GetByID(ctx context.Context, receiptID string) (*models.ReceiptRecord, error) {
	return scanReceipt(r.db.QueryRow(ctx, receiptSelect+` WHERE r.id = $1::uuid`, receiptID))
}

func (r *ReceiptRepository) List(ctx context.Context, filter ReceiptListFilter) ([]models.ReceiptRecord, int, error) {
	args := make([]any, 0, 5)
	whereParts := []string{"TRUE"}

	if filter.MentorID > 0 {
		args = append(args, filter.MentorID)
		whereParts = append(whereParts, fmt.Sprintf("r.mentor_id = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		whereParts = append(whereParts, fmt.Sprintf("(LOWER(m.name) LIKE $%[1]d OR r.id::text LIKE $%[1]d)", len(args)))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("r.status = $%d", len(args)))
	}
	where := strings.Join(whereParts, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM receipts r JOIN mentors m ON m.id = r.mentor_id WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := receiptSelect + ` WHERE ` + where + ` ORDER BY r.issue_date DESC, r.created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	receipts := make([]models.ReceiptRecord, 0)
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, 0, err
		}
		receipts = append(receipts, *receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

// AdvanceStatus moves the receipt forward to nextStatus and never back.
func (r *ReceiptRepository) AdvanceStatus(ctx context.Context, receiptID string, nextStatus string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE receipts
		SET status = $2, updated_at = NOW()
		WHERE id = $1::uuid
		  AND array_position(ARRAY['issued', 'viewed', 'downloaded'], status)
			< array_position(ARRAY['issued', 'viewed', 'downloaded'], $2::text)
	`, receiptID, nextStatus)
	return err
}
