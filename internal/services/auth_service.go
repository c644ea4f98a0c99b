package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/abhishekjoshi1998/EduPayout/internal/metrics"
	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/abhishekjoshi1998/EduPayout/pkg/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthService struct {
	db        *pgxpool.Pool
	userRepo  *repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(
	db *pgxpool.Pool,
	userRepo *repository.UserRepository,
	jwtSecret string,
	tokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		db:        db,
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Login returns the matching user and a signed token. Unknown emails and wrong passwords
// both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.LoginFailures.Inc()
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		metrics.LoginFailures.Inc()
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateTokenWithTTL(strconv.FormatInt(user.ID, 10), user.Role, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

type BootstrapAccount struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// EnsureAccount creates the account unless one with the same email exists. Mentor
// accounts are linked to the mentor record with the same email, created when missing.
func (s *AuthService) EnsureAccount(ctx context.Context, account BootstrapAccount) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if email == "" || account.Password == "" {
		return false, nil
	}
	if account.Role != models.RoleAdmin && account.Role != models.RoleMentor {
		return false, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txUserRepo := repository.NewUserRepository(tx)
	txMentorRepo := repository.NewMentorRepository(tx)

	created := false
	user, err := txUserRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return false, err
		}

		hashed, err := utils.HashPassword(account.Password)
		if err != nil {
			return false, err
		}
		user = &models.User{
			Email:        email,
			PasswordHash: hashed,
			Name:         strings.TrimSpace(account.Name),
			Role:         account.Role,
		}
		if err := txUserRepo.CreateUser(ctx, user); err != nil {
			return false, err
		}
		created = true
	}

	if user.Role == models.RoleMentor {
		if err := linkMentorAccount(ctx, txMentorRepo, user); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return created, nil
}

func linkMentorAccount(ctx context.Context, mentorRepo *repository.MentorRepository, user *models.User) error {
	if _, err := mentorRepo.GetByUserID(ctx, user.ID); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	mentor, err := mentorRepo.GetByEmail(ctx, user.Email)
	if err == nil {
		return mentorRepo.LinkUser(ctx, mentor.ID, user.ID)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	_, err = mentorRepo.Create(ctx, repository.CreateMentorInput{
		UserID: &user.ID,
		Name:   user.Name,
		Email:  user.Email,
	})
	return err
}
