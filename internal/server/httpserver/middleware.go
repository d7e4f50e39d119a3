package httpserver

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/bookmate-auth/internal/common"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/auth"
)

const claimsKey = "claims"

// requireBearer validates the Authorization bearer token and stores its claims
// in the request locals.
func (s *HTTPServer) requireBearer(c *fiber.Ctx) error {
	header := c.Get(common.AuthorizationHeader)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) || strings.TrimSpace(token) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(messageResponse{Message: msgMissingToken})
	}

	claims, err := s.tokens.Validate(strings.TrimSpace(token))
	if err != nil {
		msg := msgInvalidToken
		if errors.Is(err, common.ErrTokenExpired) {
			msg = msgTokenExpired
		}
		s.logger.Debug(c.UserContext(), "bearer rejected", "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(messageResponse{Message: msg})
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

func claimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsKey).(*auth.Claims)
	return claims
}
