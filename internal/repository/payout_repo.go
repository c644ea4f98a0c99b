package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/jackc/pgx/v5"
)

type PayoutListFilter struct {
	MentorID int64
	Search   string
	// SearchStatus widens the free-text search to the payout status.
	SearchStatus bool
	Status       string
	From         string
	To           string
	Offset       int
	Limit        int
}

type PayoutRepository struct {
	db DBTX
}

func NewPayoutRepository(db DBTX) *PayoutRepository {
	return &PayoutRepository{db: db}
}

const payoutSelect = `
	SELECT p.id, p.mentor_id, m.name, p.range_from::text, p.range_to::text,
		   COALESCE(
			   (SELECT array_agg(ps.session_id ORDER BY ps.session_id) FROM payout_sessions ps WHERE ps.payout_id = p.id),
			   '{}'::bigint[]
		   ),
		   p.base_payout, p.breakdown, p.taxes, p.platform_fee, p.final_amount, p.status,
		   p.payment_date::text, p.receipt_id::text, p.created_at, p.updated_at
	FROM payouts p
	JOIN mentors m ON m.id = p.mentor_id
`

func scanPayout(row pgx.Row) (*models.Payout, error) {
	var payout models.Payout
	err := row.Scan(
		&payout.ID,
		&payout.MentorID,
		&payout.MentorName,
		&payout.DateRange.From,
		&payout.DateRange.To,
		&payout.SessionIDs,
		&payout.BasePayout,
		&payout.Breakdown,
		&payout.Taxes,
		&payout.PlatformFee,
		&payout.FinalAmount,
		&payout.Status,
		&payout.PaymentDate,
		&payout.ReceiptID,
		&payout.CreatedAt,
		&payout.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func collectPayouts(rows pgx.Rows) ([]models.Payout, error) {
	defer rows.Close()

	payouts := make([]models.Payout, 0)
	for rows.Next() {
		payout, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, *payout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payouts, nil
}

// Create stores the payout row and its session links. Run it inside a transaction.
func (r *PayoutRepository) Create(ctx context.Context, payout models.Payout) (*models.Payout, error) {
	var payoutID int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO payouts (mentor_id, range_from, range_to, base_payout, breakdown, taxes, platform_fee, final_amount, status)
		VALUES ($1, $2::date, $3::date, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		payout.MentorID,
		payout.DateRange.From,
		payout.DateRange.To,
		payout.BasePayout,
		payout.Breakdown,
		payout.Taxes,
		payout.PlatformFee,
		payout.FinalAmount,
		payout.Status,
	).Scan(&payoutID)
	if err != nil {
		return nil, err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO payout_sessions (payout_id, session_id)
		SELECT $1, UNNEST($2::bigint[])
	`, payoutID, payout.SessionIDs)
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, payoutID)
}

func (r *PayoutRepository) GetByID(ctx context.Context, payoutID int64) (*models.Payout, error) {
	return scanPayout(r.db.QueryRow(ctx, payoutSelect+` WHERE p.id = $1`, payoutID))
}

func (r *PayoutRepository) GetByIDForUpdate(ctx context.Context, payoutID int64) (*models.Payout, error) {
	return scanPayout(r.db.QueryRow(ctx, payoutSelect+` WHERE p.id = $1 FOR UPDATE OF p`, payoutID))
}

func (r *PayoutRepository) GetByIDForMentor(ctx context.Context, payoutID int64, mentorID int64) (*models.Payout, error) {
	return scanPayout(r.db.QueryRow(ctx, payoutSelect+` WHERE p.id = $1 AND p.mentor_id = $2`, payoutID, mentorID))
}

func (r *PayoutRepository) List(ctx context.Context, filter PayoutListFilter) ([]models.Payout, int, error) {
	args := make([]any, 0, 8)
	whereParts := []string{"TRUE"}

	if filter.MentorID > 0 {
		args = append(args, filter.MentorID)
		whereParts = append(whereParts, fmt.Sprintf("p.mentor_id = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		clause := fmt.Sprintf("LOWER(m.name) LIKE $%d", len(args))
		if filter.SearchStatus {
			clause = fmt.Sprintf("(%s OR p.status LIKE $%d)", clause, len(args))
		}
		whereParts = append(whereParts, clause)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("p.status = $%d", len(args)))
	}
	// A half-open range does not filter.
	from, to := strings.TrimSpace(filter.From), strings.TrimSpace(filter.To)
	if from != "" && to != "" {
		args = append(args, from, to)
		whereParts = append(whereParts, fmt.Sprintf(
			"p.range_from <= $%d::date AND p.range_to >= $%d::date",
			len(args),
			len(args)-1,
		))
	}
	where := strings.Join(whereParts, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM payouts p JOIN mentors m ON m.id = p.mentor_id WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := payoutSelect + ` WHERE ` + where + ` ORDER BY p.created_at DESC, p.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	payouts, err := collectPayouts(rows)
	if err != nil {
		return nil, 0, err
	}
	return payouts, total, nil
}

func (r *PayoutRepository) ListRecent(ctx context.Context, mentorID int64, limit int) ([]models.Payout, error) {
	args := []any{limit}
	where := "TRUE"
	if mentorID > 0 {
		args = append(args, mentorID)
		where = "p.mentor_id = $2"
	}
	rows, err := r.db.Query(ctx, payoutSelect+` WHERE `+where+` ORDER BY p.created_at DESC, p.id DESC LIMIT $1`, args...)
	if err != nil {
		return nil, err
	}
	return collectPayouts(rows)
}

// ActiveSessionIDs returns those of the given sessions already covered by a non-cancelled payout.
func (r *PayoutRepository) ActiveSessionIDs(ctx context.Context, sessionIDs []int64) ([]int64, error) {
	if len(sessionIDs) == 0 {
		return []int64{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ps.session_id
		FROM payout_sessions ps
		JOIN payouts p ON p.id = ps.payout_id
		WHERE ps.session_id = ANY($1)
		  AND p.status <> 'cancelled'
		ORDER BY ps.session_id
	`, sessionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PayoutRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	payoutID int64,
	currentStatus string,
	nextStatus string,
) (*models.Payout, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE payouts
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, payoutID, currentStatus, nextStatus)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, payoutID)
}

func (r *PayoutRepository) MarkPaid(
	ctx context.Context,
	payoutID int64,
	currentStatus string,
	paymentDate string,
	receiptID string,
) (*models.Payout, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE payouts
		SET status = 'paid',
			payment_date = $3::date,
			receipt_id = $4::uuid,
			updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, payoutID, currentStatus, paymentDate, receiptID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, payoutID)
}

func (r *PayoutRepository) Summary(ctx context.Context, mentorID int64) (models.PayoutSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(final_amount) FILTER (WHERE status IN ('paid', 'processing')), 0),
			COALESCE(SUM(final_amount) FILTER (WHERE status IN ('processing', 'pending')), 0)
		FROM payouts
		WHERE mentor_id = $1
	`
	var summary models.PayoutSummary
	if err := r.db.QueryRow(ctx, query, mentorID).Scan(&summary.TotalEarnings, &summary.PendingEarnings); err != nil {
		return models.PayoutSummary{}, err
	}
	return summary, nil
}

type PayoutTotals struct {
	PaidAmount         int64
	PendingCount       int
	PendingAmount      int64
	CurrentMonthAmount int64
}

// Totals aggregates payouts of one mentor, or of everyone when mentorID is zero.
func (r *PayoutRepository) Totals(ctx context.Context, mentorID int64) (PayoutTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(final_amount) FILTER (WHERE status = 'paid'), 0),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COALESCE(SUM(final_amount) FILTER (WHERE status IN ('pending', 'processing')), 0),
			COALESCE(SUM(final_amount) FILTER (
				WHERE status = 'paid'
				  AND date_trunc('month', payment_date) = date_trunc('month', CURRENT_DATE)
			), 0)
		FROM payouts
	`
	args := []any{}
	if mentorID > 0 {
		query += ` WHERE mentor_id = $1`
		args = append(args, mentorID)
	}
	var totals PayoutTotals
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&totals.PaidAmount,
		&totals.PendingCount,
		&totals.PendingAmount,
		&totals.CurrentMonthAmount,
	)
	if err != nil {
		return PayoutTotals{}, err
	}
	return totals, nil
}
