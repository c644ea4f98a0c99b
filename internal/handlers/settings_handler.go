package handlers

import (
	"context"
	"errors"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/services"
	"github.com/gofiber/fiber/v2"
)

type settingsApplicationService interface {
	GetSettings(ctx context.Context) (*models.PayoutSettings, error)
	UpdateSettings(ctx context.Context, gstPercent, platformFeePercent int64) (*models.PayoutSettings, error)
}

type SettingsHandler struct {
	service settingsApplicationService
}

type updateSettingsRequest struct {
	GSTPercent         *int64 `json:"gst_percent"`
	PlatformFeePercent *int64 `json:"platform_fee_percent"`
}

func NewSettingsHandler(service settingsApplicationService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.service.GetSettings(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load settings"})
	}
	return c.JSON(fiber.Map{"settings": settings})
}

// UpdateSettings only affects payouts created afterwards; stored payouts keep their amounts.
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.GSTPercent == nil || req.PlatformFeePercent == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "gst_percent and platform_fee_percent are required"})
	}

	settings, err := h.service.UpdateSettings(c.Context(), *req.GSTPercent, *req.PlatformFeePercent)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Percentages must be between 0 and 100"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update settings"})
	}
	return c.JSON(fiber.Map{"settings": settings})
}
