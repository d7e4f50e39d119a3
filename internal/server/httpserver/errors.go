package httpserver

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/bookmate-auth/internal/common"
)

// Response messages returned to clients.
const (
	msgRegistered         = "User registered. Please confirm your email."
	msgConfirmed          = "Email confirmed!"
	msgDuplicateEmail     = "Email already registered"
	msgUserNotFound       = "User not found"
	msgInvalidCredentials = "Invalid credentials"
	msgEmailNotConfirmed  = "Email not confirmed"
	msgInvalidBody        = "Invalid request body"
	msgTimeout            = "Request timed out"
	msgInternal           = "Internal server error"
	msgMissingToken       = "Missing bearer token"
	msgInvalidToken       = "Invalid token"
	msgTokenExpired       = "Token expired"
)

type messageResponse struct {
	Message string `json:"message"`
}

// statusFor maps workflow errors to an HTTP status and client message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		return fiber.StatusBadRequest, msgDuplicateEmail
	case errors.Is(err, common.ErrInvalidInput):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound, msgUserNotFound
	case errors.Is(err, common.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, common.ErrEmailNotConfirmed):
		return fiber.StatusBadRequest, msgEmailNotConfirmed
	case errors.Is(err, common.ErrTimeout):
		return fiber.StatusGatewayTimeout, msgTimeout
	}
	return fiber.StatusInternalServerError, msgInternal
}

func (s *HTTPServer) writeError(c *fiber.Ctx, err error) error {
	status, msg := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(messageResponse{Message: msg})
}

// handleFiberError renders errors escaping handlers, such as unknown routes.
func (s *HTTPServer) handleFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(messageResponse{Message: fe.Message})
	}
	return s.writeError(c, err)
}
