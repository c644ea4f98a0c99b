package main

import (
	"context"
	"fmt"
	"log"

	"github.com/abhishekjoshi1998/EduPayout/internal/config"
	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/payout"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/abhishekjoshi1998/EduPayout/internal/services"
	"github.com/jackc/pgx/v5/pgxpool"
)

// bootstrap seeds the payout settings row and the configured default accounts.
func bootstrap(ctx context.Context, cfg *config.Config, db *pgxpool.Pool) error {
	settingsService := services.NewSettingsService(repository.NewSettingsRepository(db), payout.Rates{
		GSTPercent:         cfg.GSTPercent,
		PlatformFeePercent: cfg.PlatformFeePercent,
	})
	if err := settingsService.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("seed payout settings: %w", err)
	}

	authService := services.NewAuthService(db, repository.NewUserRepository(db), cfg.JWTSecret, cfg.JWTTTL)
	accounts := []services.BootstrapAccount{
		{Email: cfg.DefaultAdminEmail, Password: cfg.DefaultAdminPassword, Name: cfg.DefaultAdminName, Role: models.RoleAdmin},
		{Email: cfg.DefaultMentorEmail, Password: cfg.DefaultMentorPass, Name: cfg.DefaultMentorName, Role: models.RoleMentor},
	}
	for _, account := range accounts {
		created, err := authService.EnsureAccount(ctx, account)
		if err != nil {
			return fmt.Errorf("bootstrap %s account: %w", account.Role, err)
		}
		if created {
			log.Printf("Created default %s account %s", account.Role, account.Email)
		}
	}
	return nil
}
