package services

import (
	"context"
	"errors"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/payout"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/jackc/pgx/v5"
)

type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	defaults     payout.Rates
}

func NewSettingsService(settingsRepo *repository.SettingsRepository, defaults payout.Rates) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, defaults: defaults}
}

// EnsureDefaults seeds the configured rates on first start.
func (s *SettingsService) EnsureDefaults(ctx context.Context) error {
	if err := s.defaults.Validate(); err != nil {
		return err
	}
	return s.settingsRepo.EnsureDefaults(ctx, s.defaults.GSTPercent, s.defaults.PlatformFeePercent)
}

func (s *SettingsService) GetSettings(ctx context.Context) (*models.PayoutSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.PayoutSettings{
			GSTPercent:         s.defaults.GSTPercent,
			PlatformFeePercent: s.defaults.PlatformFeePercent,
		}, nil
	}
	return settings, err
}

func (s *SettingsService) UpdateSettings(ctx context.Context, gstPercent, platformFeePercent int64) (*models.PayoutSettings, error) {
	rates := payout.Rates{GSTPercent: gstPercent, PlatformFeePercent: platformFeePercent}
	if err := rates.Validate(); err != nil {
		return nil, ErrInvalidInput
	}
	return s.settingsRepo.Update(ctx, gstPercent, platformFeePercent)
}

// CurrentRates returns the rates new payouts are calculated with.
func (s *SettingsService) CurrentRates(ctx context.Context) (payout.Rates, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return payout.Rates{}, err
	}
	return payout.Rates{GSTPercent: settings.GSTPercent, PlatformFeePercent: settings.PlatformFeePercent}, nil
}
