package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/payout"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/abhishekjoshi1998/EduPayout/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type payoutApplicationService interface {
	PreviewPayout(ctx context.Context, sessionIDs []int64) (*payout.Result, error)
	CreatePayout(ctx context.Context, sessionIDs []int64) (*models.Payout, error)
	ListPayouts(ctx context.Context, actor services.Actor, filter repository.PayoutListFilter) ([]models.Payout, int, *models.PayoutSummary, error)
	GetPayout(ctx context.Context, actor services.Actor, payoutID int64) (*models.Payout, error)
	UpdatePayoutStatus(ctx context.Context, payoutID int64, update services.PayoutStatusUpdate) (*models.Payout, error)
}

type PayoutHandler struct {
	service payoutApplicationService
}

func NewPayoutHandler(service payoutApplicationService) *PayoutHandler {
	return &PayoutHandler{service: service}
}

type payoutSelectionRequest struct {
	SessionIDs []int64 `json:"session_ids"`
}

type updatePayoutStatusRequest struct {
	Status      string  `json:"status"`
	PaymentDate *string `json:"payment_date"`
	Message     *string `json:"message"`
}

func (h *PayoutHandler) ListPayouts(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}

	mentorID, err := parseOptionalID(c.Query("mentor_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}

	window := parsePage(c)
	payouts, total, summary, err := h.service.ListPayouts(c.Context(), actor, repository.PayoutListFilter{
		MentorID: mentorID,
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   strings.ToLower(strings.TrimSpace(c.Query("status"))),
		From:     strings.TrimSpace(c.Query("from")),
		To:       strings.TrimSpace(c.Query("to")),
		Offset:   window.offset(),
		Limit:    window.limit,
	})
	if err != nil {
		return mapPayoutError(c, err)
	}

	response := fiber.Map{
		"payouts":    payouts,
		"pagination": window.meta(total),
	}
	if summary != nil {
		response["summary"] = summary
	}
	return c.JSON(response)
}

func (h *PayoutHandler) PreviewPayout(c *fiber.Ctx) error {
	var req payoutSelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := h.service.PreviewPayout(c.Context(), req.SessionIDs)
	if err != nil {
		return mapPayoutError(c, err)
	}

	return c.JSON(fiber.Map{"payout": result.Payout()})
}

func (h *PayoutHandler) CreatePayout(c *fiber.Ctx) error {
	var req payoutSelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	created, err := h.service.CreatePayout(c.Context(), req.SessionIDs)
	if err != nil {
		return mapPayoutError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payout": created})
}

func (h *PayoutHandler) GetPayout(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}

	payoutID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout id"})
	}

	found, err := h.service.GetPayout(c.Context(), actor, payoutID)
	if err != nil {
		return mapPayoutError(c, err)
	}

	return c.JSON(fiber.Map{"payout": found})
}

func (h *PayoutHandler) UpdatePayoutStatus(c *fiber.Ctx) error {
	payoutID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout id"})
	}

	var req updatePayoutStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(req.Status) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status is required"})
	}

	updated, err := h.service.UpdatePayoutStatus(c.Context(), payoutID, services.PayoutStatusUpdate{
		Status:      req.Status,
		PaymentDate: req.PaymentDate,
		Message:     req.Message,
	})
	if err != nil {
		return mapPayoutError(c, err)
	}

	return c.JSON(fiber.Map{"payout": updated})
}

func mapPayoutError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, payout.ErrNoSessions),
		errors.Is(err, payout.ErrMixedMentors),
		errors.Is(err, payout.ErrSessionNotCompleted),
		errors.Is(err, payout.ErrDuplicateSession),
		errors.Is(err, payout.ErrInvalidRate),
		errors.Is(err, payout.ErrUnknownSessionType),
		errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSessionLocked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrMentorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentor not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payout not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process payout request"})
	}
}
