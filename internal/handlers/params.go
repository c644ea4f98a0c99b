package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/services"
	"github.com/gofiber/fiber/v2"
)

var errInvalidID = errors.New("invalid id")

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseProfileUserID(c *fiber.Ctx) (int64, error) {
	userIDValue := c.Locals("user_id")
	userIDStr, ok := userIDValue.(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(userIDStr, 10, 64)
}

func actorFromContext(c *fiber.Ctx) (services.Actor, error) {
	userID, err := parseProfileUserID(c)
	if err != nil {
		return services.Actor{}, err
	}
	role, ok := c.Locals("role").(string)
	if !ok {
		return services.Actor{}, strconv.ErrSyntax
	}
	return services.Actor{UserID: userID, Role: role}, nil
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// parseOptionalID reads an optional positive id from the query string; zero means unset.
func parseOptionalID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// requireConfirmation answers 428 unless the caller repeated the request with ?confirm=true.
func requireConfirmation(c *fiber.Ctx) (bool, error) {
	if c.QueryBool("confirm") {
		return true, nil
	}
	return false, c.Status(fiber.StatusPreconditionRequired).JSON(fiber.Map{
		"error": "Confirmation required: repeat the request with ?confirm=true",
	})
}

func invalidToken(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
}
