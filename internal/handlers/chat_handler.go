package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/middleware"
	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/services"
	chatws "github.com/abhishekjoshi1998/EduPayout/internal/websocket"
	"github.com/abhishekjoshi1998/EduPayout/pkg/utils"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type chatApplicationService interface {
	ListThreads(ctx context.Context, actor services.Actor) ([]models.ChatThread, error)
	ListMessages(ctx context.Context, actor services.Actor, mentorID int64, page int, limit int) ([]models.ChatMessage, int, error)
	SendMessage(ctx context.Context, actor services.Actor, mentorID int64, content string) (*services.ChatDelivery, error)
}

type ChatHandler struct {
	service   chatApplicationService
	hub       *chatws.Hub
	jwtSecret string
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func NewChatHandler(service chatApplicationService, hub *chatws.Hub, jwtSecret string) *ChatHandler {
	return &ChatHandler{
		service:   service,
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

func (h *ChatHandler) ListThreads(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}

	threads, err := h.service.ListThreads(c.Context(), actor)
	if err != nil {
		return mapChatError(c, err)
	}

	return c.JSON(fiber.Map{"threads": threads})
}

// GetMessages serves both /admin/chat/:mentorId/messages and the mentor's own /mentor/chat/messages.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}

	mentorID, err := threadParam(c, actor)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}

	window := parsePage(c)
	messages, total, err := h.service.ListMessages(c.Context(), actor, mentorID, window.page, window.limit)
	if err != nil {
		return mapChatError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages":   messages,
		"pagination": window.meta(total),
	})
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return invalidToken(c)
	}

	mentorID, err := threadParam(c, actor)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor id"})
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	delivery, err := h.service.SendMessage(c.Context(), actor, mentorID, req.Content)
	if err != nil {
		return mapChatError(c, err)
	}
	h.hub.Publish(delivery)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": delivery.Message})
}

func (h *ChatHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *ChatHandler) HandleWebSocket(conn *websocket.Conn) {
	rawUserID, _ := conn.Locals("user_id").(string)
	role, _ := conn.Locals("role").(string)
	userID, err := strconv.ParseInt(rawUserID, 10, 64)
	if err != nil {
		_ = conn.Close()
		return
	}

	client := chatws.NewClient(h.hub, conn, userID)
	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump(h.service, role)
}

// parseWSClaims accepts ?token= for browsers that cannot set headers on the upgrade,
// then falls back to the Authorization header or the session cookie.
func (h *ChatHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	if tokenString := strings.TrimSpace(c.Query("token")); tokenString != "" {
		return utils.ValidateToken(tokenString, h.jwtSecret)
	}

	claims := middleware.OptionalClaims(c, h.jwtSecret)
	if claims == nil {
		return nil, errors.New("missing token")
	}
	return claims, nil
}

// threadParam returns the thread's mentor id for admins; mentors always use their own thread.
func threadParam(c *fiber.Ctx, actor services.Actor) (int64, error) {
	if !actor.IsAdmin() {
		return 0, nil
	}
	return parseIDParam(c, "mentorId")
}

func mapChatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrMentorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentor not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Thread not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process chat request"})
	}
}
