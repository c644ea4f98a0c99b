package middleware

import (
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// TokenCookie carries the session token for the console pages.
const TokenCookie = "edupayout_token"

func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, errMessage := bearerOrCookie(c)
		if errMessage != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": errMessage,
			})
		}

		claims, err := utils.ValidateToken(tokenString, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RequireRole must run after AuthRequired.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, ok := c.Locals("role").(string)
		if !ok || current != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
		return c.Next()
	}
}

// OptionalClaims validates whatever token the request carries and returns nil when
// there is none or it is invalid.
func OptionalClaims(c *fiber.Ctx, secret string) *utils.Claims {
	tokenString, errMessage := bearerOrCookie(c)
	if errMessage != "" {
		return nil
	}
	claims, err := utils.ValidateToken(tokenString, secret)
	if err != nil {
		return nil
	}
	return claims
}

func bearerOrCookie(c *fiber.Ctx) (string, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if cookie := strings.TrimSpace(c.Cookies(TokenCookie)); cookie != "" {
			return cookie, ""
		}
		return "", "Missing authorization header"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid authorization header format"
	}
	return parts[1], ""
}
