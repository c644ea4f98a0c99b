package handlers

import (
	"context"
	"errors"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/services"
	"github.com/gofiber/fiber/v2"
)

type dashboardApplicationService interface {
	AdminDashboard(ctx context.Context) (*models.AdminDashboard, error)
	MentorDashboard(ctx context.Context, actor services.Actor) (*models.MentorDashboard, error)
}

type DashboardHandler struct {
	service dashboardApplicationService
}

func NewDashboardHandler(service dashboardApplicationService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) AdminDashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.AdminDashboard(c.Context())
	if err != nil {
		return mapDashboardError(c, err)
	}
	return c.JSON(fiber.Map{"dashboard": dashboard})
}

func (h *DashboardHandler) MentorDashboard(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}

	dashboard, err := h.service.MentorDashboard(c.Context(), actor)
	if err != nil {
		return mapDashboardError(c, err)
	}
	return c.JSON(fiber.Map{"dashboard": dashboard})
}

func mapDashboardError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrMentorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentor not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load dashboard"})
	}
}
