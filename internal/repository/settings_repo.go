package repository

import (
	"context"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
)

type SettingsRepository struct {
	db DBTX
}

func NewSettingsRepository(db DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// EnsureDefaults writes the initial rates unless a settings row already exists.
func (r *SettingsRepository) EnsureDefaults(ctx context.Context, gstPercent, platformFeePercent int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (id, gst_percent, platform_fee_percent)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING
	`, gstPercent, platformFeePercent)
	return err
}

func (r *SettingsRepository) Get(ctx context.Context) (*models.PayoutSettings, error) {
	var settings models.PayoutSettings
	err := r.db.QueryRow(ctx, `
		SELECT gst_percent, platform_fee_percent, updated_at
		FROM settings
		WHERE id = 1
	`).Scan(&settings.GSTPercent, &settings.PlatformFeePercent, &settings.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *SettingsRepository) Update(ctx context.Context, gstPercent, platformFeePercent int64) (*models.PayoutSettings, error) {
	var settings models.PayoutSettings
	err := r.db.QueryRow(ctx, `
		INSERT INTO settings (id, gst_percent, platform_fee_percent, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET gst_percent = EXCLUDED.gst_percent,
			platform_fee_percent = EXCLUDED.platform_fee_percent,
			updated_at = NOW()
		RETURNING gst_percent, platform_fee_percent, updated_at
	`, gstPercent, platformFeePercent).Scan(&settings.GSTPercent, &settings.PlatformFeePercent, &settings.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
