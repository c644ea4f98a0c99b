package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreateSessionInput struct {
	MentorID        int64
	SessionType     string
	Date            string
	StartTime       string
	EndTime         string
	DurationMinutes int
	Rate            int64
	Status          string
	Notes           *string
}

type UpdateSessionInput struct {
	MentorID        int64
	SessionType     string
	Date            string
	StartTime       string
	EndTime         string
	DurationMinutes int
	Rate            int64
	Status          string
	Notes           *string
}

type SessionListFilter struct {
	MentorID    int64
	Search      string
	SessionType string
	Status      string
	From        string
	To          string
	Offset      int
	Limit       int
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionSelect = `
	SELECT s.id, s.mentor_id, m.name, s.session_type, s.session_date::text,
		   left(s.start_time::text, 5), left(s.end_time::text, 5),
		   s.duration_minutes, s.rate, s.status, s.notes, s.created_at, s.updated_at
	FROM sessions s
	JOIN mentors m ON m.id = s.mentor_id
`

func scanSession(row pgx.Row) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.MentorID,
		&session.MentorName,
		&session.SessionType,
		&session.Date,
		&session.StartTime,
		&session.EndTime,
		&session.DurationMinutes,
		&session.Rate,
		&session.Status,
		&session.Notes,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func collectSessions(rows pgx.Rows) ([]models.Session, error) {
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	var sessionID int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sessions (mentor_id, session_type, session_date, start_time, end_time, duration_minutes, rate, status, notes)
		VALUES ($1, $2, $3::date, $4::time, $5::time, $6, $7, $8, $9)
		RETURNING id
	`,
		input.MentorID,
		input.SessionType,
		input.Date,
		input.StartTime,
		input.EndTime,
		input.DurationMinutes,
		input.Rate,
		input.Status,
		input.Notes,
	).Scan(&sessionID)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, sessionID)
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	return scanSession(r.db.QueryRow(ctx, sessionSelect+` WHERE s.id = $1`, sessionID))
}

func (r *SessionRepository) GetByIDForMentor(ctx context.Context, sessionID int64, mentorID int64) (*models.Session, error) {
	return scanSession(r.db.QueryRow(ctx, sessionSelect+` WHERE s.id = $1 AND s.mentor_id = $2`, sessionID, mentorID))
}

// ListByIDsForUpdate locks the selected sessions for the rest of the transaction.
func (r *SessionRepository) ListByIDsForUpdate(ctx context.Context, sessionIDs []int64) ([]models.Session, error) {
	if len(sessionIDs) == 0 {
		return []models.Session{}, nil
	}
	rows, err := r.db.Query(ctx, sessionSelect+`
		WHERE s.id = ANY($1)
		ORDER BY s.session_date ASC, s.start_time ASC, s.id ASC
		FOR UPDATE OF s
	`, sessionIDs)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

func (r *SessionRepository) ListByIDs(ctx context.Context, sessionIDs []int64) ([]models.Session, error) {
	if len(sessionIDs) == 0 {
		return []models.Session{}, nil
	}
	rows, err := r.db.Query(ctx, sessionSelect+`
		WHERE s.id = ANY($1)
		ORDER BY s.session_date ASC, s.start_time ASC, s.id ASC
	`, sessionIDs)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

func (r *SessionRepository) List(ctx context.Context, filter SessionListFilter) ([]models.Session, int, error) {
	args := make([]any, 0, 8)
	whereParts := []string{"TRUE"}

	if filter.MentorID > 0 {
		args = append(args, filter.MentorID)
		whereParts = append(whereParts, fmt.Sprintf("s.mentor_id = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		whereParts = append(whereParts, fmt.Sprintf(
			"(LOWER(m.name) LIKE $%[1]d OR LOWER(s.session_type) LIKE $%[1]d OR LOWER(COALESCE(s.notes, '')) LIKE $%[1]d)",
			len(args),
		))
	}
	if sessionType := strings.TrimSpace(filter.SessionType); sessionType != "" {
		args = append(args, sessionType)
		whereParts = append(whereParts, fmt.Sprintf("s.session_type = $%d", len(args)))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("s.status = $%d", len(args)))
	}
	if from := strings.TrimSpace(filter.From); from != "" {
		args = append(args, from)
		whereParts = append(whereParts, fmt.Sprintf("s.session_date >= $%d::date", len(args)))
	}
	if to := strings.TrimSpace(filter.To); to != "" {
		args = append(args, to)
		whereParts = append(whereParts, fmt.Sprintf("s.session_date <= $%d::date", len(args)))
	}
	where := strings.Join(whereParts, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM sessions s JOIN mentors m ON m.id = s.mentor_id WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := sessionSelect + ` WHERE ` + where + ` ORDER BY s.session_date DESC, s.start_time DESC, s.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	sessions, err := collectSessions(rows)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// ListAvailableForPayout returns completed sessions of the mentor that no active payout covers.
func (r *SessionRepository) ListAvailableForPayout(ctx context.Context, mentorID int64) ([]models.Session, error) {
	rows, err := r.db.Query(ctx, sessionSelect+`
		WHERE s.mentor_id = $1
		  AND s.status = 'completed'
		  AND NOT EXISTS (
			SELECT 1
			FROM payout_sessions ps
			JOIN payouts p ON p.id = ps.payout_id
			WHERE ps.session_id = s.id
			  AND p.status <> 'cancelled'
		  )
		ORDER BY s.session_date ASC, s.start_time ASC, s.id ASC
	`, mentorID)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

func (r *SessionRepository) ListUpcoming(ctx context.Context, mentorID int64, limit int) ([]models.Session, error) {
	args := []any{limit}
	where := `s.status = 'scheduled' AND s.session_date >= CURRENT_DATE`
	if mentorID > 0 {
		args = append(args, mentorID)
		where += ` AND s.mentor_id = $2`
	}
	rows, err := r.db.Query(ctx, sessionSelect+` WHERE `+where+`
		ORDER BY s.session_date ASC, s.start_time ASC, s.id ASC
		LIMIT $1
	`, args...)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

func (r *SessionRepository) Update(ctx context.Context, sessionID int64, input UpdateSessionInput) (*models.Session, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET mentor_id = $2,
			session_type = $3,
			session_date = $4::date,
			start_time = $5::time,
			end_time = $6::time,
			duration_minutes = $7,
			rate = $8,
			status = $9,
			notes = $10,
			updated_at = NOW()
		WHERE id = $1
	`,
		sessionID,
		input.MentorID,
		input.SessionType,
		input.Date,
		input.StartTime,
		input.EndTime,
		input.DurationMinutes,
		input.Rate,
		input.Status,
		input.Notes,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, sessionID)
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IsReferencedByPayout reports whether any payout, cancelled or not, lists the session.
func (r *SessionRepository) IsReferencedByPayout(ctx context.Context, sessionID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payout_sessions WHERE session_id = $1)`, sessionID).
		Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

type SessionCounts struct {
	Total     int
	Completed int
	Upcoming  int
}

func (r *SessionRepository) Counts(ctx context.Context, mentorID int64) (SessionCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'scheduled' AND session_date >= CURRENT_DATE)
		FROM sessions
	`
	args := []any{}
	if mentorID > 0 {
		query += ` WHERE mentor_id = $1`
		args = append(args, mentorID)
	}
	var counts SessionCounts
	if err := r.db.QueryRow(ctx, query, args...).Scan(&counts.Total, &counts.Completed, &counts.Upcoming); err != nil {
		return SessionCounts{}, err
	}
	return counts, nil
}
