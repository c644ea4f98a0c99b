package handlers

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/abhishekjoshi1998/EduPayout/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type receiptApplicationService interface {
	ListReceipts(ctx context.Context, filter repository.ReceiptListFilter) ([]models.ReceiptRecord, int, error)
	GetReceipt(ctx context.Context, actor services.Actor, receiptID string) (*models.Receipt, error)
	PrintReceipt(ctx context.Context, actor services.Actor, receiptID string) (*models.Receipt, error)
}

type ReceiptHandler struct {
	service receiptApplicationService
}

func NewReceiptHandler(service receiptApplicationService) *ReceiptHandler {
	return &ReceiptHandler{service: service}
}

func (h *ReceiptHandler) ListReceipts(c *fiber.Ctx) error {
	mentorID, err := parseOptionalID(c.Query("mentor_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}

	window := parsePage(c)
	receipts, total, err := h.service.ListReceipts(c.Context(), repository.ReceiptListFilter{
		MentorID: mentorID,
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Offset:   window.offset(),
		Limit:    window.limit,
	})
	if err != nil {
		return mapReceiptError(c, err)
	}

	return c.JSON(fiber.Map{
		"receipts":   receipts,
		"pagination": window.meta(total),
	})
}

func (h *ReceiptHandler) GetReceipt(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}
	receiptID, err := parseReceiptID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid receipt id"})
	}

	receipt, err := h.service.GetReceipt(c.Context(), actor, receiptID)
	if err != nil {
		return mapReceiptError(c, err)
	}
	return c.JSON(fiber.Map{"receipt": receipt})
}

func (h *ReceiptHandler) PrintReceipt(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}
	receiptID, err := parseReceiptID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid receipt id"})
	}

	receipt, err := h.service.PrintReceipt(c.Context(), actor, receiptID)
	if err != nil {
		return mapReceiptError(c, err)
	}

	var page bytes.Buffer
	if err := receiptTemplate.Execute(&page, receipt); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to render receipt"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(page.Bytes())
}

func parseReceiptID(c *fiber.Ctx) (string, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func mapReceiptError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrMentorNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Receipt not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process receipt request"})
	}
}
