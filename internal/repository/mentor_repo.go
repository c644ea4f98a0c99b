package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/jackc/pgx/v5"
)

type MentorListFilter struct {
	Search string
	Status string
	Offset int
	Limit  int
}

type CreateMentorInput struct {
	UserID         *int64
	Name           string
	Email          string
	Phone          *string
	AvatarURL      *string
	Specialization string
	HourlyRate     int64
}

type UpdateMentorInput struct {
	Name           *string
	Email          *string
	Phone          *string
	AvatarURL      *string
	Specialization *string
	HourlyRate     *int64
	TotalSessions  *int
	TotalEarnings  *int64
	Status         *string
}

type MentorRepository struct {
	db DBTX
}

func NewMentorRepository(db DBTX) *MentorRepository {
	return &MentorRepository{db: db}
}

const mentorColumns = `
	id, user_id, name, email, phone, avatar_url, joined_date::text, specialization,
	hourly_rate, total_sessions, total_earnings, status, created_at, updated_at
`

func scanMentor(row pgx.Row) (*models.Mentor, error) {
	var mentor models.Mentor
	err := row.Scan(
		&mentor.ID,
		&mentor.UserID,
		&mentor.Name,
		&mentor.Email,
		&mentor.Phone,
		&mentor.AvatarURL,
		&mentor.JoinedDate,
		&mentor.Specialization,
		&mentor.HourlyRate,
		&mentor.TotalSessions,
		&mentor.TotalEarnings,
		&mentor.Status,
		&mentor.CreatedAt,
		&mentor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &mentor, nil
}

func (r *MentorRepository) Create(ctx context.Context, input CreateMentorInput) (*models.Mentor, error) {
	query := `
		INSERT INTO mentors (user_id, name, email, phone, avatar_url, specialization, hourly_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + mentorColumns
	return scanMentor(r.db.QueryRow(ctx, query,
		input.UserID,
		input.Name,
		input.Email,
		input.Phone,
		input.AvatarURL,
		input.Specialization,
		input.HourlyRate,
	))
}

func (r *MentorRepository) GetByID(ctx context.Context, mentorID int64) (*models.Mentor, error) {
	query := `SELECT ` + mentorColumns + ` FROM mentors WHERE id = $1`
	return scanMentor(r.db.QueryRow(ctx, query, mentorID))
}

func (r *MentorRepository) GetByUserID(ctx context.Context, userID int64) (*models.Mentor, error) {
	query := `SELECT ` + mentorColumns + ` FROM mentors WHERE user_id = $1`
	return scanMentor(r.db.QueryRow(ctx, query, userID))
}

func (r *MentorRepository) GetByEmail(ctx context.Context, email string) (*models.Mentor, error) {
	query := `SELECT ` + mentorColumns + ` FROM mentors WHERE email = $1`
	return scanMentor(r.db.QueryRow(ctx, query, email))
}

func (r *MentorRepository) List(ctx context.Context, filter MentorListFilter) ([]models.Mentor, int, error) {
	args := make([]any, 0, 4)
	whereParts := []string{"TRUE"}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		whereParts = append(whereParts, fmt.Sprintf(
			"(LOWER(name) LIKE $%[1]d OR LOWER(email) LIKE $%[1]d OR LOWER(specialization) LIKE $%[1]d)",
			len(args),
		))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(whereParts, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM mentors WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + mentorColumns + ` FROM mentors WHERE ` + where + ` ORDER BY name ASC, id ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	mentors := make([]models.Mentor, 0)
	for rows.Next() {
		mentor, err := scanMentor(rows)
		if err != nil {
			return nil, 0, err
		}
		mentors = append(mentors, *mentor)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return mentors, total, nil
}

func (r *MentorRepository) UpdatePartial(ctx context.Context, mentorID int64, input UpdateMentorInput) (*models.Mentor, error) {
	query := `
		UPDATE mentors
		SET name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			avatar_url = COALESCE($5, avatar_url),
			specialization = COALESCE($6, specialization),
			hourly_rate = COALESCE($7, hourly_rate),
			total_sessions = COALESCE($8, total_sessions),
			total_earnings = COALESCE($9, total_earnings),
			status = COALESCE($10, status),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + mentorColumns
	return scanMentor(r.db.QueryRow(ctx, query,
		mentorID,
		input.Name,
		input.Email,
		input.Phone,
		input.AvatarURL,
		input.Specialization,
		input.HourlyRate,
		input.TotalSessions,
		input.TotalEarnings,
		input.Status,
	))
}

func (r *MentorRepository) LinkUser(ctx context.Context, mentorID int64, userID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE mentors
		SET user_id = $2, updated_at = NOW()
		WHERE id = $1 AND user_id IS NULL
	`, mentorID, userID)
	return err
}

// HasDependents reports whether any session, payout or chat message still points at the mentor.
func (r *MentorRepository) HasDependents(ctx context.Context, mentorID int64) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM sessions WHERE mentor_id = $1)
			OR EXISTS (SELECT 1 FROM payouts WHERE mentor_id = $1)
			OR EXISTS (SELECT 1 FROM messages WHERE mentor_id = $1)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, mentorID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *MentorRepository) Delete(ctx context.Context, mentorID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM mentors WHERE id = $1`, mentorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *MentorRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM mentors WHERE status = $1`, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
