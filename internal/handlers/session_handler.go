package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/payout"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/abhishekjoshi1998/EduPayout/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type SessionHandler struct {
	service sessionApplicationService
}

type sessionApplicationService interface {
	ListSessions(ctx context.Context, actor services.Actor, filter repository.SessionListFilter) ([]models.Session, int, error)
	GetSession(ctx context.Context, actor services.Actor, sessionID int64) (*models.Session, error)
	CreateSession(ctx context.Context, input services.SessionInput) (*models.Session, error)
	UpdateSession(ctx context.Context, sessionID int64, input services.SessionInput) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID int64) error
	ListAvailableSessions(ctx context.Context, mentorID int64) ([]models.Session, error)
}

func NewSessionHandler(service sessionApplicationService) *SessionHandler {
	return &SessionHandler{service: service}
}

type sessionRequest struct {
	MentorID    int64   `json:"mentor_id"`
	SessionType string  `json:"session_type"`
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Rate        int64   `json:"rate"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes"`
}

func (r sessionRequest) input() services.SessionInput {
	return services.SessionInput{
		MentorID:    r.MentorID,
		SessionType: r.SessionType,
		Date:        r.Date,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Rate:        r.Rate,
		Status:      r.Status,
		Notes:       r.Notes,
	}
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}

	mentorID, err := parseOptionalID(c.Query("mentor_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}

	window := parsePage(c)
	sessions, total, err := h.service.ListSessions(c.Context(), actor, repository.SessionListFilter{
		MentorID:    mentorID,
		Search:      strings.TrimSpace(c.Query("search")),
		SessionType: strings.ToLower(strings.TrimSpace(c.Query("type"))),
		Status:      strings.ToLower(strings.TrimSpace(c.Query("status"))),
		From:        strings.TrimSpace(c.Query("from")),
		To:          strings.TrimSpace(c.Query("to")),
		Offset:      window.offset(),
		Limit:       window.limit,
	})
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{
		"sessions":   sessions,
		"pagination": window.meta(total),
	})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}

	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.GetSession(c.Context(), actor, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.Rate <= 0 || req.Rate > payout.MaxSessionRate {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("rate must be between 1 and %d", payout.MaxSessionRate)})
	}

	session, err := h.service.CreateSession(c.Context(), req.input())
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) UpdateSession(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	session, err := h.service.UpdateSession(c.Context(), sessionID, req.input())
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}
	if ok, err := requireConfirmation(c); !ok {
		return err
	}

	if err := h.service.DeleteSession(c.Context(), sessionID); err != nil {
		return mapSessionError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SessionHandler) ListAvailableSessions(c *fiber.Ctx) error {
	mentorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}

	sessions, err := h.service.ListAvailableSessions(c.Context(), mentorID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

func mapSessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrSessionLocked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrMentorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentor not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process session request"})
	}
}
