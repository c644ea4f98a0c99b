package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/repository"
	"github.com/abhishekjoshi1998/EduPayout/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type mentorApplicationService interface {
	ListMentors(ctx context.Context, filter repository.MentorListFilter) ([]models.Mentor, int, error)
	GetMentor(ctx context.Context, mentorID int64) (*models.Mentor, error)
	CreateMentor(ctx context.Context, input services.CreateMentorInput) (*models.Mentor, error)
	UpdateMentor(ctx context.Context, mentorID int64, input repository.UpdateMentorInput) (*models.Mentor, error)
	DeleteMentor(ctx context.Context, mentorID int64) error
	GetProfile(ctx context.Context, actor services.Actor) (*models.Mentor, error)
	UpdateProfile(ctx context.Context, actor services.Actor, input services.MentorProfileInput) (*models.Mentor, error)
	UploadAvatar(ctx context.Context, actor services.Actor, file multipart.File, filename string, size int64) (*models.Mentor, error)
}

type MentorHandler struct {
	service mentorApplicationService
}

func NewMentorHandler(service mentorApplicationService) *MentorHandler {
	return &MentorHandler{service: service}
}

type createMentorRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone"`
	AvatarURL      *string `json:"avatar"`
	Specialization string  `json:"specialization"`
	HourlyRate     int64   `json:"hourly_rate"`
}

type updateMentorRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	AvatarURL      *string `json:"avatar"`
	Specialization *string `json:"specialization"`
	HourlyRate     *int64  `json:"hourly_rate"`
	TotalSessions  *int    `json:"total_sessions"`
	TotalEarnings  *int64  `json:"total_earnings"`
	Status         *string `json:"status"`
}

type updateProfileRequest struct {
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	Specialization *string `json:"specialization"`
}

func (h *MentorHandler) ListMentors(c *fiber.Ctx) error {
	window := parsePage(c)
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	if status != "" && status != models.MentorStatusActive && status != models.MentorStatusInactive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be active or inactive"})
	}

	mentors, total, err := h.service.ListMentors(c.Context(), repository.MentorListFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Status: status,
		Offset: window.offset(),
		Limit:  window.limit,
	})
	if err != nil {
		return mapMentorError(c, err)
	}

	return c.JSON(fiber.Map{
		"mentors":    mentors,
		"pagination": window.meta(total),
	})
}

func (h *MentorHandler) GetMentor(c *fiber.Ctx) error {
	mentorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}

	mentor, err := h.service.GetMentor(c.Context(), mentorID)
	if err != nil {
		return mapMentorError(c, err)
	}
	return c.JSON(fiber.Map{"mentor": mentor})
}

func (h *MentorHandler) CreateMentor(c *fiber.Ctx) error {
	var req createMentorRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if req.HourlyRate < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hourly_rate must not be negative"})
	}

	mentor, err := h.service.CreateMentor(c.Context(), services.CreateMentorInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		AvatarURL:      req.AvatarURL,
		Specialization: req.Specialization,
		HourlyRate:     req.HourlyRate,
	})
	if err != nil {
		return mapMentorError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"mentor": mentor})
}

func (h *MentorHandler) UpdateMentor(c *fiber.Ctx) error {
	mentorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}

	var req updateMentorRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	mentor, err := h.service.UpdateMentor(c.Context(), mentorID, repository.UpdateMentorInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		AvatarURL:      req.AvatarURL,
		Specialization: req.Specialization,
		HourlyRate:     req.HourlyRate,
		TotalSessions:  req.TotalSessions,
		TotalEarnings:  req.TotalEarnings,
		Status:         req.Status,
	})
	if err != nil {
		return mapMentorError(c, err)
	}
	return c.JSON(fiber.Map{"mentor": mentor})
}

func (h *MentorHandler) DeleteMentor(c *fiber.Ctx) error {
	mentorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}
	if ok, err := requireConfirmation(c); !ok {
		return err
	}

	if err := h.service.DeleteMentor(c.Context(), mentorID); err != nil {
		return mapMentorError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *MentorHandler) GetProfile(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}

	mentor, err := h.service.GetProfile(c.Context(), actor)
	if err != nil {
		return mapMentorError(c, err)
	}
	return c.JSON(fiber.Map{"profile": mentor})
}

func (h *MentorHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.Name == nil && req.Phone == nil && req.Specialization == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No profile fields to update"})
	}

	mentor, err := h.service.UpdateProfile(c.Context(), actor, services.MentorProfileInput{
		Name:           req.Name,
		Phone:          req.Phone,
		Specialization: req.Specialization,
	})
	if err != nil {
		return mapMentorError(c, err)
	}
	return c.JSON(fiber.Map{"profile": mentor})
}

func (h *MentorHandler) UploadAvatar(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is empty"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open avatar file"})
	}
	defer file.Close()

	mentor, err := h.service.UploadAvatar(c.Context(), actor, file, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": "avatar must be a jpg, jpeg, png, or webp file up to 2MB"})
		}
		return mapMentorError(c, err)
	}

	return c.JSON(fiber.Map{
		"avatar_url": mentor.AvatarURL,
		"profile":    mentor,
	})
}

func mapMentorError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A mentor with this email already exists"})
	case errors.Is(err, services.ErrMentorHasDependents):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrStorageNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storage service is not configured"})
	case errors.Is(err, services.ErrMentorNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentor not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process mentor request"})
	}
}
