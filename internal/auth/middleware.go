package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RequireToken rejects requests without a bearer token before any work
// happens. The token is the Teams SSO token already validated by the gateway;
// here it only gates access and identifies the caller in logs.
func RequireToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(strings.TrimPrefix(c.Get("Authorization"), "Bearer "))
		if token == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No access token was found in request header.",
			})
		}

		c.Locals("accessToken", token)
		if upn := callerUpn(token); upn != "" {
			c.Locals("callerUpn", upn)
		}

		return c.Next()
	}
}

// callerUpn extracts the UPN claim without verifying the signature.
func callerUpn(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, key := range []string{"upn", "preferred_username"} {
		if upn, ok := claims[key].(string); ok {
			return upn
		}
	}
	return ""
}

// CallerUpn returns the UPN stashed by RequireToken, empty when the token
// carried none.
func CallerUpn(c *fiber.Ctx) string {
	if upn, ok := c.Locals("callerUpn").(string); ok {
		return upn
	}
	return ""
}
